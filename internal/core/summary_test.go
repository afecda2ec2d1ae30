package core

import (
	"reflect"
	"testing"
)

func TestSummarizeByCategory(t *testing.T) {
	t.Run("no expenses yields empty summary", func(t *testing.T) {
		got := SummarizeByCategory(nil)
		if len(got) != 0 {
			t.Errorf("expected empty summary, got %v", got)
		}
	})

	t.Run("partitions exactly by category", func(t *testing.T) {
		expenses := []Expense{
			{Category: "groceries", Amount: Money{Cents: 1250}},
			{Category: "transport", Amount: Money{Cents: 300}},
			{Category: "groceries", Amount: Money{Cents: 750}},
			{Category: "rent", Amount: Money{Cents: 90000}},
		}

		got := SummarizeByCategory(expenses)
		want := []CategoryTotal{
			{Category: "groceries", Total: Money{Cents: 2000}},
			{Category: "rent", Total: Money{Cents: 90000}},
			{Category: "transport", Total: Money{Cents: 300}},
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("SummarizeByCategory = %v, want %v", got, want)
		}
	})

	t.Run("order is stable across calls", func(t *testing.T) {
		expenses := []Expense{
			{Category: "b", Amount: Money{Cents: 1}},
			{Category: "a", Amount: Money{Cents: 2}},
			{Category: "c", Amount: Money{Cents: 3}},
		}
		first := SummarizeByCategory(expenses)
		for i := 0; i < 10; i++ {
			if !reflect.DeepEqual(first, SummarizeByCategory(expenses)) {
				t.Fatal("summary order changed between calls")
			}
		}
	})

	t.Run("total equals exact sum of many small amounts", func(t *testing.T) {
		var expenses []Expense
		for i := 0; i < 1000; i++ {
			expenses = append(expenses, Expense{Category: "micro", Amount: Money{Cents: 1}})
		}
		got := SummarizeByCategory(expenses)
		if len(got) != 1 || got[0].Total.Cents != 1000 {
			t.Errorf("expected exactly 10.00, got %v", got)
		}
	})
}
