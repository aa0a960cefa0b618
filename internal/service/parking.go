package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gopkg.in/guregu/null.v4"

	"github.com/iliyamo/parking-registry/internal/model"
	"github.com/iliyamo/parking-registry/internal/queue"
	"github.com/iliyamo/parking-registry/internal/repository"
)

// SessionManager admits clients into parking lots and releases them.  Each
// call runs in one store transaction that locks the lot row before the
// availability counter is read.
type SessionManager struct {
	store  repository.SessionStore
	events EventPublisher
	log    *logrus.Logger
	now    func() time.Time
}

// Option customises a SessionManager.
type Option func(*SessionManager)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(m *SessionManager) { m.now = now }
}

// WithPublisher sets the publisher used after a transaction commits.
func WithPublisher(p EventPublisher) Option {
	return func(m *SessionManager) { m.events = p }
}

// NewSessionManager builds a manager on top of store.
func NewSessionManager(store repository.SessionStore, log *logrus.Logger, opts ...Option) *SessionManager {
	m := &SessionManager{store: store, events: NopPublisher{}, log: log, now: time.Now}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Admit opens a session for clientID in parkingID and takes one place.
func (m *SessionManager) Admit(ctx context.Context, clientID, parkingID uint64) (*model.ClientParking, error) {
	var (
		session   *model.ClientParking
		available int
	)
	err := m.store.InTx(ctx, func(tx repository.Tx) error {
		if _, err := tx.GetClient(ctx, clientID); err != nil {
			return notFound(err, "client %d", clientID)
		}
		lot, err := tx.GetParkingForUpdate(ctx, parkingID)
		if err != nil {
			return notFound(err, "parking %d", parkingID)
		}
		if !lot.Opened {
			return fmt.Errorf("%w: parking %d is closed", ErrInvalidState, parkingID)
		}
		if !lot.HasFreePlace() {
			return fmt.Errorf("%w: parking %d has no available places", ErrInvalidState, parkingID)
		}

		s := &model.ClientParking{
			ClientID:  clientID,
			ParkingID: parkingID,
			TimeIn:    m.timestamp(),
		}
		if err := tx.CreateSession(ctx, s); err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return fmt.Errorf("%w: client %d already has a session in parking %d", ErrConflict, clientID, parkingID)
			}
			return err
		}
		if err := tx.AdjustAvailable(ctx, parkingID, -1); err != nil {
			return capacity(err, parkingID)
		}
		session = s
		available = lot.CountAvailablePlaces - 1
		return nil
	})
	if err != nil {
		return nil, err
	}

	m.publish(ctx, queue.EventEntered, session, available)
	return session, nil
}

// Release closes the session of clientID in parkingID and frees its place.
// The client must have a credit card on file and the session must still be
// open.
func (m *SessionManager) Release(ctx context.Context, clientID, parkingID uint64) (*model.ClientParking, error) {
	var (
		session   *model.ClientParking
		available int
	)
	err := m.store.InTx(ctx, func(tx repository.Tx) error {
		client, err := tx.GetClient(ctx, clientID)
		if err != nil {
			return notFound(err, "client %d", clientID)
		}
		lot, err := tx.GetParkingForUpdate(ctx, parkingID)
		if err != nil {
			return notFound(err, "parking %d", parkingID)
		}
		s, err := tx.GetSessionForUpdate(ctx, clientID, parkingID)
		if err != nil {
			return notFound(err, "session for client %d in parking %d", clientID, parkingID)
		}
		if !client.CanPay() {
			return fmt.Errorf("%w: client %d has no credit card", ErrInvalidState, clientID)
		}
		if !s.IsOpen() {
			return fmt.Errorf("%w: session %d is already closed", ErrInvalidState, s.ID)
		}

		out := m.timestamp()
		if out.Before(s.TimeIn) {
			out = s.TimeIn
		}
		if err := tx.CloseSession(ctx, s.ID, out); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("%w: session %d is already closed", ErrInvalidState, s.ID)
			}
			return err
		}
		if err := tx.AdjustAvailable(ctx, parkingID, 1); err != nil {
			return capacity(err, parkingID)
		}
		s.TimeOut = null.TimeFrom(out)
		session = s
		available = lot.CountAvailablePlaces + 1
		return nil
	})
	if err != nil {
		return nil, err
	}

	m.publish(ctx, queue.EventExited, session, available)
	return session, nil
}

// timestamp is the current clock reading in UTC at the precision stored by
// DATETIME(6) columns.
func (m *SessionManager) timestamp() time.Time {
	return m.now().UTC().Truncate(time.Microsecond)
}

func (m *SessionManager) publish(ctx context.Context, kind string, s *model.ClientParking, available int) {
	ev := queue.ParkingEvent{
		ID:                   uuid.NewString(),
		Type:                 kind,
		SessionID:            s.ID,
		ClientID:             s.ClientID,
		ParkingID:            s.ParkingID,
		TimeIn:               s.TimeIn.Format(time.RFC3339Nano),
		CountAvailablePlaces: available,
		OccurredAt:           m.timestamp().Format(time.RFC3339Nano),
	}
	if s.TimeOut.Valid {
		out := s.TimeOut.Time.Format(time.RFC3339Nano)
		ev.TimeOut = &out
	}
	if err := m.events.Publish(ctx, ev); err != nil {
		m.log.WithError(err).WithFields(logrus.Fields{
			"event":      kind,
			"session_id": s.ID,
		}).Warn("publish parking event failed")
	}
}

func notFound(err error, format string, args ...any) error {
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf(format+" %w", append(args, ErrNotFound)...)
	}
	return err
}

func capacity(err error, parkingID uint64) error {
	if errors.Is(err, repository.ErrCapacity) {
		return fmt.Errorf("%w: parking %d availability out of range", ErrInvalidState, parkingID)
	}
	return err
}
