// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "fmt"

// Collection names one of the four tracked record collections. The value
// doubles as the local storage key and as the remote sub-path segment.
type Collection string

const (
	CollectionTransactions Collection = "transactions"
	CollectionBudgets      Collection = "budgets"
	CollectionGoals        Collection = "goals"
	CollectionRecurring    Collection = "recurring"
)

// Collections lists every tracked collection in a stable order.
var Collections = []Collection{
	CollectionTransactions,
	CollectionBudgets,
	CollectionGoals,
	CollectionRecurring,
}

// ParseCollection converts s to a [Collection], rejecting unknown names.
func ParseCollection(s string) (Collection, error) {
	c := Collection(s)
	if !c.Valid() {
		return "", fmt.Errorf("unknown collection %q", s)
	}
	return c, nil
}

// Valid reports whether c is one of the tracked collections.
func (c Collection) Valid() bool {
	switch c {
	case CollectionTransactions, CollectionBudgets, CollectionGoals, CollectionRecurring:
		return true
	}
	return false
}

// NewestFirst reports whether newly created records are placed at the head of
// the collection. Transactions are kept newest first, everything else in
// creation order.
func (c Collection) NewestFirst() bool {
	return c == CollectionTransactions
}

// OrderField returns the payload field the remote store orders a full read
// by, or an empty string when the collection is read unordered.
func (c Collection) OrderField() string {
	if c == CollectionTransactions {
		return "date"
	}
	return ""
}

func (c Collection) String() string {
	return string(c)
}
