package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/parking-registry/internal/model"
)

// ClientStore persists clients.  Clients are immutable once created.
type ClientStore interface {
	Create(ctx context.Context, c *model.Client) error
	GetByID(ctx context.Context, id uint64) (*model.Client, error)
	List(ctx context.Context) ([]*model.Client, error)
}

// ParkingStore persists parking lots outside of session transactions.
type ParkingStore interface {
	Create(ctx context.Context, p *model.Parking) error
	GetByID(ctx context.Context, id uint64) (*model.Parking, error)
	List(ctx context.Context) ([]*model.Parking, error)
}

// Tx is the set of operations available inside a session transaction.
// Lookups that end in ForUpdate lock the row until the transaction ends.
type Tx interface {
	GetClient(ctx context.Context, id uint64) (*model.Client, error)
	GetParkingForUpdate(ctx context.Context, id uint64) (*model.Parking, error)
	GetSessionForUpdate(ctx context.Context, clientID, parkingID uint64) (*model.ClientParking, error)
	CreateSession(ctx context.Context, s *model.ClientParking) error
	CloseSession(ctx context.Context, id uint64, timeOut time.Time) error
	AdjustAvailable(ctx context.Context, parkingID uint64, delta int) error
}

// SessionStore runs fn inside a single transaction.  The transaction is
// committed when fn returns nil and rolled back otherwise.
type SessionStore interface {
	InTx(ctx context.Context, fn func(Tx) error) error
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}
