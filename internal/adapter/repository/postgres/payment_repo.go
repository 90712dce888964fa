package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/iho/tripledger/internal/domain"
	"github.com/iho/tripledger/internal/usecase"
)

// PaymentRepository implements usecase.PaymentRepository.
type PaymentRepository struct {
	db DBTX
}

// NewPaymentRepository creates a new PaymentRepository.
func NewPaymentRepository(db DBTX) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// Create inserts a payment within a transaction.
func (r *PaymentRepository) Create(ctx context.Context, tx usecase.Transaction, payment *domain.Payment) error {
	ptx, err := pgxTx(tx)
	if err != nil {
		return err
	}

	_, err = ptx.Exec(ctx, `
		INSERT INTO payments (id, trip_id, from_user_id, to_user_id, amount, method, note, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		payment.ID,
		payment.TripID,
		payment.FromUserID,
		payment.ToUserID,
		decimalToNumeric(payment.Amount),
		payment.Method,
		payment.Note,
		payment.CreatedAt,
	)

	return err
}

// ListByTrip returns a trip's payments in creation order.
func (r *PaymentRepository) ListByTrip(ctx context.Context, tripID string) ([]*domain.Payment, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, trip_id, from_user_id, to_user_id, amount, method, note, created_at
		FROM payments
		WHERE trip_id = $1
		ORDER BY created_at, id
	`, tripID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	payments := make([]*domain.Payment, 0)
	for rows.Next() {
		var (
			p      domain.Payment
			amount pgtype.Numeric
		)
		if err := rows.Scan(
			&p.ID,
			&p.TripID,
			&p.FromUserID,
			&p.ToUserID,
			&amount,
			&p.Method,
			&p.Note,
			&p.CreatedAt,
		); err != nil {
			return nil, err
		}
		p.Amount = numericToDecimal(amount)
		payments = append(payments, &p)
	}

	return payments, rows.Err()
}
