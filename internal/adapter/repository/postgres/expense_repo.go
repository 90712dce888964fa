package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/iho/tripledger/internal/domain"
	"github.com/iho/tripledger/internal/usecase"
)

// ExpenseRepository implements usecase.ExpenseRepository.
type ExpenseRepository struct {
	db DBTX
}

// NewExpenseRepository creates a new ExpenseRepository.
func NewExpenseRepository(db DBTX) *ExpenseRepository {
	return &ExpenseRepository{db: db}
}

// Create inserts an expense and its shares within a transaction.
func (r *ExpenseRepository) Create(ctx context.Context, tx usecase.Transaction, expense *domain.Expense) error {
	ptx, err := pgxTx(tx)
	if err != nil {
		return err
	}

	if _, err := ptx.Exec(ctx, `
		INSERT INTO expenses (id, trip_id, paid_by_user_id, description, category, amount, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`,
		expense.ID,
		expense.TripID,
		expense.PaidByUserID,
		expense.Description,
		expense.Category,
		decimalToNumeric(expense.Amount),
		expense.CreatedAt,
	); err != nil {
		return fmt.Errorf("insert expense %s: %w", expense.ID, err)
	}

	for i, share := range expense.Shares {
		if _, err := ptx.Exec(ctx, `
			INSERT INTO expense_shares (expense_id, user_id, amount, position)
			VALUES ($1, $2, $3, $4)
		`, expense.ID, share.UserID, decimalToNumeric(share.Amount), i); err != nil {
			return fmt.Errorf("insert share of %s for %s: %w", expense.ID, share.UserID, err)
		}
	}

	return nil
}

// ListByTrip returns a trip's expenses in creation order with their shares.
func (r *ExpenseRepository) ListByTrip(ctx context.Context, tripID string) ([]*domain.Expense, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, trip_id, paid_by_user_id, description, category, amount, created_at
		FROM expenses
		WHERE trip_id = $1
		ORDER BY created_at, id
	`, tripID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	expenses := make([]*domain.Expense, 0)
	byID := make(map[string]*domain.Expense)
	for rows.Next() {
		var (
			e      domain.Expense
			amount pgtype.Numeric
		)
		if err := rows.Scan(
			&e.ID,
			&e.TripID,
			&e.PaidByUserID,
			&e.Description,
			&e.Category,
			&amount,
			&e.CreatedAt,
		); err != nil {
			return nil, err
		}
		e.Amount = numericToDecimal(amount)
		e.Shares = []domain.Share{}
		expenses = append(expenses, &e)
		byID[e.ID] = &e
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(expenses) == 0 {
		return expenses, nil
	}

	if err := r.attachShares(ctx, tripID, byID); err != nil {
		return nil, err
	}

	return expenses, nil
}

func (r *ExpenseRepository) attachShares(ctx context.Context, tripID string, byID map[string]*domain.Expense) error {
	rows, err := r.db.Query(ctx, `
		SELECT s.expense_id, s.user_id, s.amount
		FROM expense_shares s
		JOIN expenses e ON e.id = s.expense_id
		WHERE e.trip_id = $1
		ORDER BY s.expense_id, s.position
	`, tripID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			share  domain.Share
			amount pgtype.Numeric
		)
		if err := rows.Scan(&share.ExpenseID, &share.UserID, &amount); err != nil {
			return err
		}
		share.Amount = numericToDecimal(amount)

		// Shares of an expense inserted after the expense query ran are skipped.
		if e, ok := byID[share.ExpenseID]; ok {
			e.Shares = append(e.Shares, share)
		}
	}

	return rows.Err()
}
