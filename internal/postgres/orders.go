package postgres

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"

	"github.com/imrishuroy/royal-pizza/internal/orders"
)

const uniqueViolation = "23505"

const orderColumns = `id, order_number, customer_name, customer_phone, items, pickup_time, status, total_amount, created_at`

// OrderStore persists orders in the orders table. Lines are stored as a
// JSONB array in their wire format.
type OrderStore struct {
	db Pool
}

// NewOrderStore returns an OrderStore using db.
func NewOrderStore(db Pool) *OrderStore {
	return &OrderStore{db: db}
}

// Create inserts o and returns the row as the database stored it.
func (s *OrderStore) Create(ctx context.Context, o orders.Order) (*orders.Order, error) {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return nil, errors.Wrap(err, "marshal order items")
	}
	row := s.db.QueryRow(ctx,
		`INSERT INTO orders (`+orderColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+orderColumns,
		o.ID, o.OrderNumber, o.Customer.Name, o.Customer.Phone, items,
		o.PickupTime.UTC(), string(o.Status), o.TotalAmount, o.CreatedAt.UTC())

	stored, err := scanOrder(row)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return nil, orders.ErrNotPersisted
	case err != nil:
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, orders.ErrDuplicateID
		}
		return nil, errors.Wrap(err, "insert order")
	}
	return stored, nil
}

// FindByID returns the order with id, or (nil, nil) when absent.
func (s *OrderStore) FindByID(ctx context.Context, id string) (*orders.Order, error) {
	row := s.db.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	o, err := scanOrder(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "select order")
	}
	return o, nil
}

// CountByNumberPrefix counts orders whose number starts with prefix.
func (s *OrderStore) CountByNumberPrefix(ctx context.Context, prefix string) (int, error) {
	var n int64
	err := s.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM orders WHERE order_number LIKE $1 || '%'`, prefix).Scan(&n)
	if err != nil {
		return 0, errors.Wrap(err, "count orders")
	}
	return int(n), nil
}

// Ping checks database connectivity.
func (s *OrderStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

func scanOrder(row pgx.Row) (*orders.Order, error) {
	var (
		o          orders.Order
		status     string
		items      []byte
		pickupTime time.Time
		createdAt  time.Time
	)
	err := row.Scan(&o.ID, &o.OrderNumber, &o.Customer.Name, &o.Customer.Phone, &items,
		&pickupTime, &status, &o.TotalAmount, &createdAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(items, &o.Items); err != nil {
		return nil, errors.Wrap(err, "decode order items")
	}
	o.Status = orders.Status(status)
	o.PickupTime = pickupTime.UTC()
	o.CreatedAt = createdAt.UTC()
	return &o, nil
}
