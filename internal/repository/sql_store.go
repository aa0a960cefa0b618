package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/parking-registry/internal/model"
)

// SQLStore runs session transactions against MySQL.  It bundles the
// repositories so a single sql.Tx spans every read and write of an
// admission or release.
type SQLStore struct {
	db       *sql.DB
	Clients  *ClientRepo
	Parkings *ParkingRepo
	Sessions *ClientParkingRepo
}

// NewSQLStore wires the repositories around db.
func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{
		db:       db,
		Clients:  NewClientRepo(db),
		Parkings: NewParkingRepo(db),
		Sessions: NewClientParkingRepo(db),
	}
}

// InTx begins a transaction, runs fn and commits when fn succeeds.  Any
// error from fn or from the commit rolls the transaction back.
func (s *SQLStore) InTx(ctx context.Context, fn func(Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := fn(&sqlTx{store: s, tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

type sqlTx struct {
	store *SQLStore
	tx    *sql.Tx
}

func (t *sqlTx) GetClient(ctx context.Context, id uint64) (*model.Client, error) {
	return getClient(ctx, t.tx, id)
}

func (t *sqlTx) GetParkingForUpdate(ctx context.Context, id uint64) (*model.Parking, error) {
	return t.store.Parkings.GetByIDForUpdateTx(ctx, t.tx, id)
}

func (t *sqlTx) GetSessionForUpdate(ctx context.Context, clientID, parkingID uint64) (*model.ClientParking, error) {
	return t.store.Sessions.GetByPairForUpdateTx(ctx, t.tx, clientID, parkingID)
}

func (t *sqlTx) CreateSession(ctx context.Context, s *model.ClientParking) error {
	return t.store.Sessions.CreateTx(ctx, t.tx, s)
}

func (t *sqlTx) CloseSession(ctx context.Context, id uint64, timeOut time.Time) error {
	return t.store.Sessions.CloseTx(ctx, t.tx, id, timeOut)
}

func (t *sqlTx) AdjustAvailable(ctx context.Context, parkingID uint64, delta int) error {
	return t.store.Parkings.AdjustAvailableTx(ctx, t.tx, parkingID, delta)
}
