// Package mockbank generates fake bank transactions for the import
// endpoint. A real integration would replace FetchTransactions with
// calls to a bank aggregation API.
package mockbank

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"finbook/internal/core"
)

// BatchSize is the number of transactions returned per import.
const BatchSize = 5

var categories = []string{"groceries", "transportation", "entertainment", "rent", "other"}

// FetchTransactions returns a batch of mock transactions for the user,
// one per day going backwards from now, with random amounts between
// 5.00 and 300.99.
func FetchTransactions(_ context.Context, userID int64) []core.Expense {
	base := time.Now().UTC()
	transactions := make([]core.Expense, 0, BatchSize)
	for i := 0; i < BatchSize; i++ {
		cents := int64(rand.Intn(296)+5)*100 + int64(rand.Intn(100))
		transactions = append(transactions, core.Expense{
			UserID:      userID,
			Category:    categories[i%len(categories)],
			Description: fmt.Sprintf("Mock transaction %s", uuid.NewString()[:8]),
			Amount:      core.Money{Cents: cents},
			CreatedAt:   base.AddDate(0, 0, -i),
		})
	}
	return transactions
}
