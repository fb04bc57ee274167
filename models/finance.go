// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType tells income from expense.
type TransactionType string

const (
	TransactionIncome  TransactionType = "income"
	TransactionExpense TransactionType = "expense"
)

// Transaction is the payload of a record in the transactions collection.
type Transaction struct {
	ID          string          `json:"-"`
	Type        TransactionType `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	Description string          `json:"description,omitempty"`
	// Date is the day the money moved. Stored in UTC so the remote store can
	// order transactions by comparing the serialized value.
	Date      time.Time  `json:"date"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}

// Budget is a spending limit for one category over a period.
type Budget struct {
	ID       string          `json:"-"`
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
	Period   string          `json:"period,omitempty"`
	Spent    decimal.Decimal `json:"spent"`
}

// Goal is a savings target.
type Goal struct {
	ID           string          `json:"-"`
	Name         string          `json:"name"`
	TargetAmount decimal.Decimal `json:"targetAmount"`
	Saved        decimal.Decimal `json:"saved"`
	Deadline     *time.Time      `json:"deadline,omitempty"`
	Emoji        string          `json:"emoji,omitempty"`
	Color        string          `json:"color,omitempty"`
}

// RecurringItem is a transaction template that repeats on a schedule.
type RecurringItem struct {
	ID            string          `json:"-"`
	Type          TransactionType `json:"type"`
	Amount        decimal.Decimal `json:"amount"`
	Category      string          `json:"category"`
	Description   string          `json:"description,omitempty"`
	Frequency     string          `json:"frequency"`
	NextDate      *time.Time      `json:"nextDate,omitempty"`
	IsActive      bool            `json:"isActive"`
	LastProcessed *time.Time      `json:"lastProcessed"`
}
