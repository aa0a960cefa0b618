package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/parking-registry/internal/model"
)

// ClientRepo encapsulates all database queries related to clients.  It
// depends on a sql.DB connection which should be configured elsewhere.
type ClientRepo struct {
	db *sql.DB
}

// NewClientRepo constructs a ClientRepo with the provided DB handle.
func NewClientRepo(db *sql.DB) *ClientRepo {
	return &ClientRepo{db: db}
}

const clientColumns = "id, name, surname, credit_card, car_number"

// Create inserts a new client.  On success the client's ID field is
// populated with the auto-generated value.
func (r *ClientRepo) Create(ctx context.Context, c *model.Client) error {
	const q = "INSERT INTO clients (name, surname, credit_card, car_number) VALUES (?, ?, ?, ?)"
	res, err := r.db.ExecContext(ctx, q, c.Name, c.Surname, c.CreditCard, c.CarNumber)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)
	return nil
}

// GetByID fetches a client by its ID.  It returns ErrNotFound if no row
// is found.
func (r *ClientRepo) GetByID(ctx context.Context, id uint64) (*model.Client, error) {
	return getClient(ctx, r.db, id)
}

// List returns all clients ordered by id.
func (r *ClientRepo) List(ctx context.Context) ([]*model.Client, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+clientColumns+" FROM clients ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*model.Client, 0)
	for rows.Next() {
		c := new(model.Client)
		if err := rows.Scan(&c.ID, &c.Name, &c.Surname, &c.CreditCard, &c.CarNumber); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func getClient(ctx context.Context, q querier, id uint64) (*model.Client, error) {
	var c model.Client
	err := q.QueryRowContext(ctx, "SELECT "+clientColumns+" FROM clients WHERE id = ?", id).
		Scan(&c.ID, &c.Name, &c.Surname, &c.CreditCard, &c.CarNumber)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}
