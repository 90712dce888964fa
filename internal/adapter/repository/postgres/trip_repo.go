package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/iho/tripledger/internal/domain"
	"github.com/iho/tripledger/internal/usecase"
)

// TripRepository implements usecase.TripRepository.
type TripRepository struct {
	db DBTX
}

// NewTripRepository creates a new TripRepository.
func NewTripRepository(db DBTX) *TripRepository {
	return &TripRepository{db: db}
}

// Create inserts a trip within a transaction.
func (r *TripRepository) Create(ctx context.Context, tx usecase.Transaction, trip *domain.Trip) error {
	ptx, err := pgxTx(tx)
	if err != nil {
		return err
	}

	_, err = ptx.Exec(ctx, `
		INSERT INTO trips (id, name, description, currency, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, trip.ID, trip.Name, trip.Description, trip.Currency, trip.CreatedBy, trip.CreatedAt)
	if pgErrorCode(err) == pgErrForeignKeyViolation {
		return fmt.Errorf("trip creator %s: %w", trip.CreatedBy, domain.ErrUserNotFound)
	}

	return err
}

// GetByID retrieves a trip.
func (r *TripRepository) GetByID(ctx context.Context, id string) (*domain.Trip, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, name, description, currency, created_by, created_at
		FROM trips
		WHERE id = $1
	`, id)

	trip, err := scanTrip(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrTripNotFound
	}

	return trip, err
}

// ListByUser returns the trips a user takes part in, newest first.
func (r *TripRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.Trip, error) {
	rows, err := r.db.Query(ctx, `
		SELECT t.id, t.name, t.description, t.currency, t.created_by, t.created_at
		FROM trips t
		JOIN trip_participants p ON p.trip_id = t.id
		WHERE p.user_id = $1
		ORDER BY t.created_at DESC, t.id DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	trips := make([]*domain.Trip, 0)
	for rows.Next() {
		trip, err := scanTrip(rows)
		if err != nil {
			return nil, err
		}
		trips = append(trips, trip)
	}

	return trips, rows.Err()
}

// AddParticipant inserts a participant within a transaction.
func (r *TripRepository) AddParticipant(ctx context.Context, tx usecase.Transaction, participant *domain.Participant) error {
	ptx, err := pgxTx(tx)
	if err != nil {
		return err
	}

	_, err = ptx.Exec(ctx, `
		INSERT INTO trip_participants (trip_id, user_id, role, joined_at)
		VALUES ($1, $2, $3, $4)
	`, participant.TripID, participant.User.ID, string(participant.Role), participant.JoinedAt)

	switch pgErrorCode(err) {
	case pgErrUniqueViolation:
		return domain.ErrAlreadyParticipant
	case pgErrForeignKeyViolation:
		return fmt.Errorf("participant %s: %w", participant.User.ID, domain.ErrUserNotFound)
	}

	return err
}

// GetParticipant returns domain.ErrNotParticipant when the user is not in the trip.
func (r *TripRepository) GetParticipant(ctx context.Context, tripID, userID string) (*domain.Participant, error) {
	row := r.db.QueryRow(ctx, participantSelect+`
		WHERE p.trip_id = $1 AND p.user_id = $2
	`, tripID, userID)

	participant, err := scanParticipant(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotParticipant
	}

	return participant, err
}

// ListParticipants returns participants in join order.
func (r *TripRepository) ListParticipants(ctx context.Context, tripID string) ([]*domain.Participant, error) {
	rows, err := r.db.Query(ctx, participantSelect+`
		WHERE p.trip_id = $1
		ORDER BY p.position
	`, tripID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	participants := make([]*domain.Participant, 0)
	for rows.Next() {
		participant, err := scanParticipant(rows)
		if err != nil {
			return nil, err
		}
		participants = append(participants, participant)
	}

	return participants, rows.Err()
}

const participantSelect = `
		SELECT p.trip_id, p.role, p.joined_at, u.id, u.name, u.username, u.email, u.created_at
		FROM trip_participants p
		JOIN users u ON u.id = p.user_id`

func scanTrip(row pgx.Row) (*domain.Trip, error) {
	var trip domain.Trip
	if err := row.Scan(
		&trip.ID,
		&trip.Name,
		&trip.Description,
		&trip.Currency,
		&trip.CreatedBy,
		&trip.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &trip, nil
}

func scanParticipant(row pgx.Row) (*domain.Participant, error) {
	var (
		p    domain.Participant
		role string
	)
	if err := row.Scan(
		&p.TripID,
		&role,
		&p.JoinedAt,
		&p.User.ID,
		&p.User.Name,
		&p.User.Username,
		&p.User.Email,
		&p.User.CreatedAt,
	); err != nil {
		return nil, err
	}
	p.Role = domain.Role(role)
	return &p, nil
}
