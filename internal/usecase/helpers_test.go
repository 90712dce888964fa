package usecase_test

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"go.uber.org/mock/gomock"

	"github.com/iho/tripledger/internal/domain"
	"github.com/iho/tripledger/internal/usecase"
	"github.com/iho/tripledger/internal/usecase/mocks"
)

// expectTx wires a transaction that is begun once and committed when commit
// is set. Rollback is always allowed because callers defer it.
func expectTx(ctrl *gomock.Controller, txMgr *mocks.MockTransactionManager, commit bool) *mocks.MockTransaction {
	tx := mocks.NewMockTransaction(ctrl)
	txMgr.EXPECT().Begin(gomock.Any()).Return(tx, nil)
	if commit {
		tx.EXPECT().Commit(gomock.Any()).Return(nil)
	}
	tx.EXPECT().Rollback(gomock.Any()).Return(nil).AnyTimes()
	return tx
}

// sequentialIDs returns an IDGenerator mock that yields id-1, id-2, ...
func sequentialIDs(ctrl *gomock.Controller) *mocks.MockIDGenerator {
	idGen := mocks.NewMockIDGenerator(ctrl)
	var n int
	idGen.EXPECT().Generate().DoAndReturn(func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}).AnyTimes()
	return idGen
}

func passthroughRetrier(ctrl *gomock.Controller) *mocks.MockRetrier {
	retrier := mocks.NewMockRetrier(ctrl)
	retrier.EXPECT().Retry(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, op func() error) error {
		return op()
	}).AnyTimes()
	return retrier
}

func participant(tripID, userID string, role domain.Role) *domain.Participant {
	return &domain.Participant{
		TripID: tripID,
		User:   domain.User{ID: userID, Name: "User " + userID},
		Role:   role,
	}
}

// stubTripRepository serves a fixed trip and its participants.
type stubTripRepository struct {
	trip         *domain.Trip
	participants []*domain.Participant
}

func (s *stubTripRepository) Create(context.Context, usecase.Transaction, *domain.Trip) error {
	return nil
}
func (s *stubTripRepository) GetByID(_ context.Context, id string) (*domain.Trip, error) {
	if s.trip == nil || s.trip.ID != id {
		return nil, domain.ErrTripNotFound
	}
	return s.trip, nil
}
func (s *stubTripRepository) ListByUser(context.Context, string, int, int) ([]*domain.Trip, error) {
	return []*domain.Trip{s.trip}, nil
}
func (s *stubTripRepository) AddParticipant(_ context.Context, _ usecase.Transaction, p *domain.Participant) error {
	s.participants = append(s.participants, p)
	return nil
}
func (s *stubTripRepository) GetParticipant(_ context.Context, tripID, userID string) (*domain.Participant, error) {
	for _, p := range s.participants {
		if p.TripID == tripID && p.User.ID == userID {
			return p, nil
		}
	}
	return nil, domain.ErrNotParticipant
}
func (s *stubTripRepository) ListParticipants(context.Context, string) ([]*domain.Participant, error) {
	return s.participants, nil
}

type stubExpenseRepository struct {
	expenses []*domain.Expense
	listErr  error
	onList   func()
}

func (s *stubExpenseRepository) Create(_ context.Context, _ usecase.Transaction, e *domain.Expense) error {
	s.expenses = append(s.expenses, e)
	return nil
}
func (s *stubExpenseRepository) ListByTrip(context.Context, string) ([]*domain.Expense, error) {
	expenses, err := s.expenses, s.listErr
	if s.onList != nil {
		s.onList()
	}
	return expenses, err
}

type stubPaymentRepository struct {
	payments []*domain.Payment
}

func (s *stubPaymentRepository) Create(_ context.Context, _ usecase.Transaction, p *domain.Payment) error {
	s.payments = append(s.payments, p)
	return nil
}
func (s *stubPaymentRepository) ListByTrip(context.Context, string) ([]*domain.Payment, error) {
	return s.payments, nil
}

// memoryCache is an in-process usecase.Cache.
type memoryCache struct {
	mu   sync.Mutex
	data map[string][]byte
	sets int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: make(map[string][]byte)}
}

func (c *memoryCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.data[key], nil
}
func (c *memoryCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	c.sets++
	return nil
}
func (c *memoryCache) Incr(_ context.Context, key string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var n int64
	if raw, ok := c.data[key]; ok {
		var err error
		if n, err = strconv.ParseInt(string(raw), 10, 64); err != nil {
			return 0, err
		}
	}
	n++
	c.data[key] = []byte(strconv.FormatInt(n, 10))
	return n, nil
}

// interleavingCache runs beforeSet once, right before the first Set lands.
type interleavingCache struct {
	*memoryCache
	beforeSet func()
}

func (c *interleavingCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if hook := c.beforeSet; hook != nil {
		c.beforeSet = nil
		hook()
	}
	return c.memoryCache.Set(ctx, key, value, ttl)
}
