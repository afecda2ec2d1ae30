package services

import (
	"context"
	"fmt"

	"finbook/internal/cache"
	"finbook/internal/core"
	"finbook/internal/events"
	applog "finbook/internal/log"
	"finbook/internal/mockbank"
	"finbook/internal/storage"
)

// Publisher sends expense lifecycle events. Publishing is best-effort;
// the service never fails a write because of it.
type Publisher interface {
	Publish(ctx context.Context, ev *events.ExpenseEvent) error
}

// ExpenseService orchestrates expense operations across storage, the
// summary cache and the event stream. Every successful mutation
// invalidates the owner's cached summary before the call returns.
type ExpenseService struct {
	storage   *storage.SQLiteRepository
	cache     *cache.SummaryCache
	publisher Publisher
	listLimit int
	logger    *applog.Logger
}

func NewExpenseService(store *storage.SQLiteRepository, summaryCache *cache.SummaryCache, publisher Publisher, listLimit int, logger *applog.Logger) *ExpenseService {
	return &ExpenseService{
		storage:   store,
		cache:     summaryCache,
		publisher: publisher,
		listLimit: listLimit,
		logger:    logger.WithComponent(applog.ComponentExpense),
	}
}

// CreateExpense validates and persists a new expense, then invalidates
// the owner's summary cache entry.
func (s *ExpenseService) CreateExpense(ctx context.Context, userID int64, category, description string, amount core.Money) (core.Expense, error) {
	expense := core.Expense{
		UserID:      userID,
		Category:    category,
		Description: description,
		Amount:      amount,
	}
	if err := expense.Validate(); err != nil {
		return core.Expense{}, err
	}

	created, err := s.storage.CreateExpense(ctx, expense)
	if err != nil {
		return core.Expense{}, fmt.Errorf("save expense: %w", err)
	}

	s.cache.Invalidate(ctx, userID)
	s.publishEvent(ctx, events.NewExpenseEvent(events.TypeExpenseCreated, userID, created.ID))

	s.logger.InfoContext(ctx, "Expense created",
		applog.FieldUserID, userID,
		applog.FieldExpenseID, created.ID,
		applog.FieldCategory, created.Category,
		applog.FieldAmountCents, created.Amount.Cents,
		applog.FieldOperation, applog.OpCreate)
	return created, nil
}

// DeleteExpense removes an expense owned by the caller and invalidates
// the caller's summary cache entry. Non-owned expenses yield
// storage.ErrNotFound and leave every cache entry untouched.
func (s *ExpenseService) DeleteExpense(ctx context.Context, userID, expenseID int64) error {
	if err := s.storage.DeleteExpense(ctx, expenseID, userID); err != nil {
		return err
	}

	s.cache.Invalidate(ctx, userID)
	s.publishEvent(ctx, events.NewExpenseEvent(events.TypeExpenseDeleted, userID, expenseID))

	s.logger.InfoContext(ctx, "Expense deleted",
		applog.FieldUserID, userID,
		applog.FieldExpenseID, expenseID,
		applog.FieldOperation, applog.OpDelete)
	return nil
}

// ListExpenses returns the caller's most recent expenses, newest first.
func (s *ExpenseService) ListExpenses(ctx context.Context, userID int64) ([]core.Expense, error) {
	return s.storage.ListExpenses(ctx, userID, s.listLimit)
}

// Summary returns the caller's per-category totals through the cache.
// The second return value reports whether the result was cached.
func (s *ExpenseService) Summary(ctx context.Context, userID int64) ([]core.CategoryTotal, bool, error) {
	return s.cache.Get(ctx, userID, func(ctx context.Context) ([]core.CategoryTotal, error) {
		return s.storage.SumByCategory(ctx, userID)
	})
}

// ImportMock bulk-inserts a batch of mock bank transactions for the
// caller and invalidates the caller's summary cache entry.
func (s *ExpenseService) ImportMock(ctx context.Context, userID int64) ([]core.Expense, error) {
	transactions := mockbank.FetchTransactions(ctx, userID)

	created, err := s.storage.CreateExpenses(ctx, transactions)
	if err != nil {
		return nil, fmt.Errorf("import transactions: %w", err)
	}

	s.cache.Invalidate(ctx, userID)

	ev := events.NewExpenseEvent(events.TypeExpenseImported, userID, 0)
	ev.Count = len(created)
	s.publishEvent(ctx, ev)

	s.logger.InfoContext(ctx, "Mock transactions imported",
		applog.FieldUserID, userID,
		applog.FieldImported, len(created),
		applog.FieldOperation, applog.OpImport)
	return created, nil
}

func (s *ExpenseService) publishEvent(ctx context.Context, ev *events.ExpenseEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, ev); err != nil {
		// The write already succeeded; the event stream is best-effort.
		s.logger.WarnContext(ctx, "Failed to publish expense event",
			applog.FieldUserID, ev.UserID,
			applog.FieldError, err.Error())
	}
}
