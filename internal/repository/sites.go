package repository

import (
	"context"
	"time"

	"github.com/sanctuary-platform/console/backend/internal/domain"
)

func (r *Repository) CreateSite(site *domain.Site) error {
	query := `
		INSERT INTO sites (name, slug, city)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	if err := r.dbpool.QueryRowContext(ctx, query, site.Name, site.Slug, site.City).Scan(&site.ID, &site.CreatedAt, &site.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetSiteByID(id int64) (*domain.Site, error) {
	query := `
		SELECT name, slug, city, created_at, version
		FROM sites WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	site := &domain.Site{
		ID: id,
	}

	dst := []any{&site.Name, &site.Slug, &site.City, &site.CreatedAt, &site.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}

	return site, nil
}

func (r *Repository) GetAllSites() ([]*domain.Site, error) {
	query := `
		SELECT id, name, slug, city, created_at, version FROM sites
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sites := make([]*domain.Site, 0)
	for rows.Next() {
		site := &domain.Site{}
		dst := []any{&site.ID, &site.Name, &site.Slug, &site.City, &site.CreatedAt, &site.Version}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		sites = append(sites, site)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return sites, nil
}
