// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MKhiriev/kharcha-sync/models"
)

type clientFinanceService struct {
	sync ClientSyncService
	now  func() time.Time
}

// NewClientFinanceService wraps the orchestrator with typed finance records.
func NewClientFinanceService(syncService ClientSyncService) ClientFinanceService {
	return &clientFinanceService{sync: syncService, now: time.Now}
}

// ── transactions ────────────────────────────────────────────────────────────

func (f *clientFinanceService) AddTransaction(ctx context.Context, tx models.Transaction) (models.Transaction, error) {
	now := f.now().UTC()
	tx.CreatedAt = &now
	tx.Date = tx.Date.UTC()
	return add(ctx, f.sync, models.CollectionTransactions, tx.ID, tx, setTransactionID)
}

func (f *clientFinanceService) UpdateTransaction(ctx context.Context, id string, fields models.Payload) (models.Transaction, error) {
	return update(ctx, f.sync, models.CollectionTransactions, id, fields, setTransactionID)
}

func (f *clientFinanceService) DeleteTransaction(ctx context.Context, id string) error {
	return f.sync.Delete(ctx, models.CollectionTransactions, id)
}

func (f *clientFinanceService) Transactions() ([]models.Transaction, error) {
	return list(f.sync, models.CollectionTransactions, setTransactionID)
}

// ── budgets ─────────────────────────────────────────────────────────────────

// AddBudget starts the budget with nothing spent.
func (f *clientFinanceService) AddBudget(ctx context.Context, budget models.Budget) (models.Budget, error) {
	budget.Spent = decimal.Zero
	return add(ctx, f.sync, models.CollectionBudgets, budget.ID, budget, setBudgetID)
}

func (f *clientFinanceService) UpdateBudget(ctx context.Context, id string, fields models.Payload) (models.Budget, error) {
	return update(ctx, f.sync, models.CollectionBudgets, id, fields, setBudgetID)
}

func (f *clientFinanceService) DeleteBudget(ctx context.Context, id string) error {
	return f.sync.Delete(ctx, models.CollectionBudgets, id)
}

func (f *clientFinanceService) Budgets() ([]models.Budget, error) {
	return list(f.sync, models.CollectionBudgets, setBudgetID)
}

// ── goals ───────────────────────────────────────────────────────────────────

// AddGoal starts the goal with nothing saved.
func (f *clientFinanceService) AddGoal(ctx context.Context, goal models.Goal) (models.Goal, error) {
	goal.Saved = decimal.Zero
	return add(ctx, f.sync, models.CollectionGoals, goal.ID, goal, setGoalID)
}

func (f *clientFinanceService) UpdateGoal(ctx context.Context, id string, fields models.Payload) (models.Goal, error) {
	return update(ctx, f.sync, models.CollectionGoals, id, fields, setGoalID)
}

func (f *clientFinanceService) DeleteGoal(ctx context.Context, id string) error {
	return f.sync.Delete(ctx, models.CollectionGoals, id)
}

func (f *clientFinanceService) Goals() ([]models.Goal, error) {
	return list(f.sync, models.CollectionGoals, setGoalID)
}

// ── recurring ───────────────────────────────────────────────────────────────

// AddRecurring creates a template that has never been processed.
func (f *clientFinanceService) AddRecurring(ctx context.Context, item models.RecurringItem) (models.RecurringItem, error) {
	item.LastProcessed = nil
	return add(ctx, f.sync, models.CollectionRecurring, item.ID, item, setRecurringID)
}

func (f *clientFinanceService) UpdateRecurring(ctx context.Context, id string, fields models.Payload) (models.RecurringItem, error) {
	return update(ctx, f.sync, models.CollectionRecurring, id, fields, setRecurringID)
}

func (f *clientFinanceService) DeleteRecurring(ctx context.Context, id string) error {
	return f.sync.Delete(ctx, models.CollectionRecurring, id)
}

func (f *clientFinanceService) RecurringItems() ([]models.RecurringItem, error) {
	return list(f.sync, models.CollectionRecurring, setRecurringID)
}

// ── generic helpers ─────────────────────────────────────────────────────────

func setTransactionID(v *models.Transaction, id string) { v.ID = id }
func setBudgetID(v *models.Budget, id string)           { v.ID = id }
func setGoalID(v *models.Goal, id string)               { v.ID = id }
func setRecurringID(v *models.RecurringItem, id string) { v.ID = id }

func add[T any](ctx context.Context, s ClientSyncService, c models.Collection, id string, v T, setID func(*T, string)) (T, error) {
	var zero T
	payload, err := models.EncodePayload(v)
	if err != nil {
		return zero, err
	}

	record, err := s.Create(ctx, models.Record{ID: id, Collection: c, Payload: payload})
	if err != nil {
		return zero, err
	}
	return decode(record, setID)
}

func update[T any](ctx context.Context, s ClientSyncService, c models.Collection, id string, fields models.Payload, setID func(*T, string)) (T, error) {
	var zero T
	record, err := s.Update(ctx, c, id, fields)
	if err != nil {
		return zero, err
	}
	return decode(record, setID)
}

func list[T any](s ClientSyncService, c models.Collection, setID func(*T, string)) ([]T, error) {
	records, err := s.Records(c)
	if err != nil {
		return nil, err
	}

	out := make([]T, 0, len(records))
	for _, r := range records {
		v, err := decode(r, setID)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func decode[T any](r models.Record, setID func(*T, string)) (T, error) {
	var v T
	if err := r.Decode(&v); err != nil {
		return v, fmt.Errorf("%w: %w", ErrInvalidDataProvided, err)
	}
	setID(&v, r.ID)
	return v, nil
}
