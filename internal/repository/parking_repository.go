package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/parking-registry/internal/model"
)

// ParkingRepo encapsulates database queries related to parking lots.
// The available counter is written only through AdjustAvailable, which
// the session transaction calls after locking the row.
type ParkingRepo struct {
	db *sql.DB
}

// NewParkingRepo constructs a ParkingRepo with the provided DB handle.
func NewParkingRepo(db *sql.DB) *ParkingRepo {
	return &ParkingRepo{db: db}
}

const parkingColumns = "id, address, opened, count_places, count_available_places"

// Create inserts a new parking lot and populates its ID.
func (r *ParkingRepo) Create(ctx context.Context, p *model.Parking) error {
	const q = `INSERT INTO parking (address, opened, count_places, count_available_places)
	           VALUES (?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, p.Address, p.Opened, p.CountPlaces, p.CountAvailablePlaces)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	return nil
}

// GetByID fetches a parking lot by id without locking it.
func (r *ParkingRepo) GetByID(ctx context.Context, id uint64) (*model.Parking, error) {
	return getParking(ctx, r.db, "SELECT "+parkingColumns+" FROM parking WHERE id = ?", id)
}

// List returns all parking lots ordered by id.
func (r *ParkingRepo) List(ctx context.Context) ([]*model.Parking, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+parkingColumns+" FROM parking ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*model.Parking, 0)
	for rows.Next() {
		p := new(model.Parking)
		if err := rows.Scan(&p.ID, &p.Address, &p.Opened, &p.CountPlaces, &p.CountAvailablePlaces); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetByIDForUpdateTx loads a parking lot and locks its row for the rest
// of the transaction so concurrent admissions serialise on the counter.
func (r *ParkingRepo) GetByIDForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Parking, error) {
	return getParking(ctx, tx, "SELECT "+parkingColumns+" FROM parking WHERE id = ? FOR UPDATE", id)
}

// AdjustAvailableTx adds delta to count_available_places.  The update is
// guarded in SQL so the counter can never leave [0, count_places]; when
// the guard rejects the change ErrCapacity is returned.
func (r *ParkingRepo) AdjustAvailableTx(ctx context.Context, tx *sql.Tx, id uint64, delta int) error {
	const q = `UPDATE parking
	           SET count_available_places = count_available_places + ?
	           WHERE id = ?
	             AND count_available_places + ? >= 0
	             AND count_available_places + ? <= count_places`
	res, err := tx.ExecContext(ctx, q, delta, id, delta, delta)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrCapacity
	}
	return nil
}

func getParking(ctx context.Context, q querier, query string, id uint64) (*model.Parking, error) {
	var p model.Parking
	err := q.QueryRowContext(ctx, query, id).
		Scan(&p.ID, &p.Address, &p.Opened, &p.CountPlaces, &p.CountAvailablePlaces)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}
