package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/ogurasousui/hr-records/internal/core/catalog"
	pgdb "github.com/ogurasousui/hr-records/internal/platform/db/postgres"
)

// CatalogRepository は国・部署・身分証明書種別の参照データを読み込みます。
type CatalogRepository struct {
	pool pgdb.Queryer
}

// NewCatalogRepository は CatalogRepository を生成します。
func NewCatalogRepository(pool pgdb.Queryer) *CatalogRepository {
	return &CatalogRepository{pool: pool}
}

// FindCountryByID は ID で国を取得します。
func (r *CatalogRepository) FindCountryByID(ctx context.Context, id int64) (*catalog.Country, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	var c catalog.Country
	if err := exec.QueryRow(ctx, `SELECT id, code, name FROM countries WHERE id = $1`, id).
		Scan(&c.ID, &c.Code, &c.Name); err != nil {
		return nil, translateCatalogError(err)
	}
	return &c, nil
}

// FindAreaByID は ID で部署を取得します。
func (r *CatalogRepository) FindAreaByID(ctx context.Context, id int64) (*catalog.Area, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	var a catalog.Area
	if err := exec.QueryRow(ctx, `SELECT id, name FROM areas WHERE id = $1`, id).
		Scan(&a.ID, &a.Name); err != nil {
		return nil, translateCatalogError(err)
	}
	return &a, nil
}

// FindIdentificationTypeByID は ID で身分証明書種別を取得します。
func (r *CatalogRepository) FindIdentificationTypeByID(ctx context.Context, id int64) (*catalog.IdentificationType, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	var it catalog.IdentificationType
	if err := exec.QueryRow(ctx, `SELECT id, abbreviation, name FROM identification_types WHERE id = $1`, id).
		Scan(&it.ID, &it.Abbreviation, &it.Name); err != nil {
		return nil, translateCatalogError(err)
	}
	return &it, nil
}

// ListCountries は国の一覧を返します。
func (r *CatalogRepository) ListCountries(ctx context.Context) ([]catalog.Country, error) {
	return listRows(ctx, r.pool, `SELECT id, code, name FROM countries ORDER BY id`, func(row pgx.Rows) (catalog.Country, error) {
		var c catalog.Country
		err := row.Scan(&c.ID, &c.Code, &c.Name)
		return c, err
	})
}

// ListAreas は部署の一覧を返します。
func (r *CatalogRepository) ListAreas(ctx context.Context) ([]catalog.Area, error) {
	return listRows(ctx, r.pool, `SELECT id, name FROM areas ORDER BY id`, func(row pgx.Rows) (catalog.Area, error) {
		var a catalog.Area
		err := row.Scan(&a.ID, &a.Name)
		return a, err
	})
}

// ListIdentificationTypes は身分証明書種別の一覧を返します。
func (r *CatalogRepository) ListIdentificationTypes(ctx context.Context) ([]catalog.IdentificationType, error) {
	return listRows(ctx, r.pool, `SELECT id, abbreviation, name FROM identification_types ORDER BY id`, func(row pgx.Rows) (catalog.IdentificationType, error) {
		var it catalog.IdentificationType
		err := row.Scan(&it.ID, &it.Abbreviation, &it.Name)
		return it, err
	})
}

func listRows[T any](ctx context.Context, pool pgdb.Queryer, query string, scan func(pgx.Rows) (T, error)) ([]T, error) {
	exec := pgdb.QueryerFromContext(ctx, pool)
	rows, err := exec.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]T, 0)
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func translateCatalogError(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return catalog.ErrNotFound
	}
	return err
}
