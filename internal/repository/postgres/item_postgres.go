package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/maxviazov/marketplace-items-service/internal/model"
	"github.com/maxviazov/marketplace-items-service/internal/repository"
)

// itemColumns is the projection every item query scans with scanItem.
const itemColumns = `id::text, title, description, latitude, longitude, categories, owner_id, image_urls, created_at`

// newestFirst must match the items_created_at_id_idx index.
const newestFirst = `ORDER BY created_at DESC, id DESC`

// ItemRepository is the Postgres item store. It implements
// repository.ItemRepository and repository.SnapshotReader.
type ItemRepository struct {
	pool *pgxpool.Pool
	tx   *txManager
}

func NewItemRepository(pool *pgxpool.Pool) *ItemRepository {
	return &ItemRepository{pool: pool, tx: &txManager{pool: pool}}
}

func scanItem(row pgx.Row, extra ...any) (model.Item, error) {
	var it model.Item
	dest := []any{&it.ID, &it.Title, &it.Description, &it.Latitude, &it.Longitude, &it.Categories, &it.OwnerID, &it.ImageURLs, &it.CreatedAt}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return model.Item{}, err
	}
	it.CreatedAt = it.CreatedAt.UTC()
	return it, nil
}

func (r *ItemRepository) Create(ctx context.Context, it model.Item) (model.Item, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.Item{}, err
	}
	categories, images := it.Categories, it.ImageURLs
	if categories == nil {
		categories = []string{}
	}
	if images == nil {
		images = []string{}
	}
	exec := getQ(ctx, r.pool)
	row := exec.QueryRow(ctx,
		`INSERT INTO items (id, title, description, latitude, longitude, categories, owner_id, image_urls, created_at)
		 VALUES ($1::uuid, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING `+itemColumns,
		it.ID, it.Title, it.Description, it.Latitude, it.Longitude, categories, it.OwnerID, images, it.CreatedAt,
	)
	out, err := scanItem(row)
	if err != nil {
		return model.Item{}, mapPgError(err)
	}
	return out, nil
}

func (r *ItemRepository) GetByID(ctx context.Context, id string) (model.Item, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.Item{}, err
	}
	exec := getQ(ctx, r.pool)
	row := exec.QueryRow(ctx, `SELECT `+itemColumns+` FROM items WHERE id = $1::uuid`, id)
	out, err := scanItem(row)
	if err != nil {
		return model.Item{}, mapPgError(err)
	}
	return out, nil
}

func (r *ItemRepository) List(ctx context.Context, p repository.Page) (repository.PageResult[model.Item], error) {
	if err := ensurePool(r.pool); err != nil {
		return repository.PageResult[model.Item]{}, err
	}
	limit, offset := sanitizeLimitOffset(p.Limit, p.Offset)
	exec := getQ(ctx, r.pool)
	rows, err := exec.Query(ctx,
		`SELECT `+itemColumns+`, COUNT(*) OVER() AS total
		 FROM items
		 `+newestFirst+`
		 LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return repository.PageResult[model.Item]{}, mapPgError(err)
	}
	defer rows.Close()
	res := repository.PageResult[model.Item]{Items: make([]model.Item, 0, limit)}
	for rows.Next() {
		var total int
		it, err := scanItem(rows, &total)
		if err != nil {
			return repository.PageResult[model.Item]{}, mapPgError(err)
		}
		res.Items = append(res.Items, it)
		res.Total = total
	}
	if err := rows.Err(); err != nil {
		return repository.PageResult[model.Item]{}, mapPgError(err)
	}
	// the window function yields no row past the end, so count separately
	if len(res.Items) == 0 && offset > 0 {
		total, err := r.Count(ctx)
		if err != nil {
			return repository.PageResult[model.Item]{}, err
		}
		res.Total = total
	}
	return res, nil
}

func (r *ItemRepository) Count(ctx context.Context) (int, error) {
	if err := ensurePool(r.pool); err != nil {
		return 0, err
	}
	var n int
	if err := getQ(ctx, r.pool).QueryRow(ctx, `SELECT COUNT(*) FROM items`).Scan(&n); err != nil {
		return 0, mapPgError(err)
	}
	return n, nil
}

func (r *ItemRepository) ListNewest(ctx context.Context, limit int) ([]model.Item, error) {
	if err := ensurePool(r.pool); err != nil {
		return nil, err
	}
	if limit <= 0 {
		return []model.Item{}, nil
	}
	exec := getQ(ctx, r.pool)
	rows, err := exec.Query(ctx,
		`SELECT `+itemColumns+` FROM items `+newestFirst+` LIMIT $1`,
		min(limit, maxReadLimit),
	)
	if err != nil {
		return nil, mapPgError(err)
	}
	defer rows.Close()
	items := make([]model.Item, 0, min(limit, defaultPageLimit))
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, mapPgError(err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, mapPgError(err)
	}
	return items, nil
}

// CountAndListNewest runs both reads in one read-only REPEATABLE READ
// transaction so the count and the rows describe the same snapshot.
func (r *ItemRepository) CountAndListNewest(ctx context.Context, limit int) (int, []model.Item, error) {
	var (
		total int
		items []model.Item
	)
	err := r.tx.withinTx(ctx, snapshotTx, func(ctx context.Context) error {
		var err error
		if total, err = r.Count(ctx); err != nil {
			return err
		}
		items, err = r.ListNewest(ctx, limit)
		return err
	})
	if err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

var (
	_ repository.ItemRepository = (*ItemRepository)(nil)
	_ repository.SnapshotReader = (*ItemRepository)(nil)
)
