package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"

	"github.com/imrishuroy/royal-pizza/internal/catalog"
)

const pizzaColumns = `id, name, description, ingredients, price_small, price_medium, price_large, image_url, is_available`

// CatalogStore reads and seeds the pizzas table.
type CatalogStore struct {
	db Pool
}

// NewCatalogStore returns a CatalogStore using db.
func NewCatalogStore(db Pool) *CatalogStore {
	return &CatalogStore{db: db}
}

// GetPizza returns the pizza with id, or (nil, nil) when absent.
func (s *CatalogStore) GetPizza(ctx context.Context, id string) (*catalog.Pizza, error) {
	row := s.db.QueryRow(ctx, `SELECT `+pizzaColumns+` FROM pizzas WHERE id = $1`, id)
	p, err := scanPizza(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "select pizza")
	}
	return p, nil
}

// ListAvailable returns the pizzas currently on the menu, ordered by name.
func (s *CatalogStore) ListAvailable(ctx context.Context) ([]catalog.Pizza, error) {
	rows, err := s.db.Query(ctx, `SELECT `+pizzaColumns+` FROM pizzas WHERE is_available ORDER BY name`)
	if err != nil {
		return nil, errors.Wrap(err, "list pizzas")
	}
	defer rows.Close()

	var out []catalog.Pizza
	for rows.Next() {
		p, err := scanPizza(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan pizza")
		}
		out = append(out, *p)
	}
	return out, errors.Wrap(rows.Err(), "list pizzas")
}

// Insert writes p. Unless overwrite is set an existing id is left untouched
// and catalog.ErrExists is returned.
func (s *CatalogStore) Insert(ctx context.Context, p catalog.Pizza, overwrite bool) error {
	if !p.Price.Valid() {
		return errors.Errorf("pizza %s: negative price", p.ID)
	}
	conflict := `ON CONFLICT (id) DO NOTHING`
	if overwrite {
		conflict = `ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			ingredients = EXCLUDED.ingredients,
			price_small = EXCLUDED.price_small,
			price_medium = EXCLUDED.price_medium,
			price_large = EXCLUDED.price_large,
			image_url = EXCLUDED.image_url,
			is_available = EXCLUDED.is_available`
	}
	ingredients := p.Ingredients
	if ingredients == nil {
		ingredients = []string{}
	}
	tag, err := s.db.Exec(ctx,
		`INSERT INTO pizzas (`+pizzaColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) `+conflict,
		p.ID, p.Name, p.Description, ingredients,
		p.Price.Small, p.Price.Medium, p.Price.Large, p.ImageURL, p.IsAvailable)
	if err != nil {
		return errors.Wrap(err, "insert pizza")
	}
	if tag.RowsAffected() == 0 {
		return catalog.ErrExists
	}
	return nil
}

// Ping checks database connectivity.
func (s *CatalogStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

func scanPizza(row pgx.Row) (*catalog.Pizza, error) {
	var p catalog.Pizza
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Ingredients,
		&p.Price.Small, &p.Price.Medium, &p.Price.Large, &p.ImageURL, &p.IsAvailable)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
