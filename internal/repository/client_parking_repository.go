package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/parking-registry/internal/model"
)

// ClientParkingRepo provides data access to the client_parking table.
// All writes happen inside a caller-supplied transaction; the caller is
// responsible for committing or rolling back.  Timestamps are stored and
// returned in UTC.
type ClientParkingRepo struct {
	db *sql.DB
}

// NewClientParkingRepo returns a new ClientParkingRepo bound to the provided database.
func NewClientParkingRepo(db *sql.DB) *ClientParkingRepo { return &ClientParkingRepo{db: db} }

// CreateTx inserts a session row.  A second row for the same client and
// parking violates unique_client_parking and yields ErrConflict.
func (r *ClientParkingRepo) CreateTx(ctx context.Context, tx *sql.Tx, s *model.ClientParking) error {
	const q = `INSERT INTO client_parking (client_id, parking_id, time_in, time_out) VALUES (?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q, s.ClientID, s.ParkingID, s.TimeIn.UTC(), s.TimeOut)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrConflict
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	return nil
}

// GetByPairForUpdateTx returns the session for a client and parking lot
// and locks it.  ErrNotFound is returned when the pair has no session.
func (r *ClientParkingRepo) GetByPairForUpdateTx(ctx context.Context, tx *sql.Tx, clientID, parkingID uint64) (*model.ClientParking, error) {
	const q = `SELECT id, client_id, parking_id, time_in, time_out
	           FROM client_parking
	           WHERE client_id = ? AND parking_id = ?
	           FOR UPDATE`
	var s model.ClientParking
	err := tx.QueryRowContext(ctx, q, clientID, parkingID).
		Scan(&s.ID, &s.ClientID, &s.ParkingID, &s.TimeIn, &s.TimeOut)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	s.TimeIn = s.TimeIn.UTC()
	if s.TimeOut.Valid {
		s.TimeOut.Time = s.TimeOut.Time.UTC()
	}
	return &s, nil
}

// CloseTx stamps time_out on an open session.  Only rows whose time_out
// is still NULL are updated; ErrNotFound is returned otherwise.
func (r *ClientParkingRepo) CloseTx(ctx context.Context, tx *sql.Tx, id uint64, timeOut time.Time) error {
	const q = `UPDATE client_parking SET time_out = ? WHERE id = ? AND time_out IS NULL`
	res, err := tx.ExecContext(ctx, q, timeOut.UTC(), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
