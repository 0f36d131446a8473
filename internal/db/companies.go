package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jonathan/jobtracker/internal/types"
)

const companyColumns = `id, name, slug, website, industry, size, description, created_at, updated_at`

func scanCompany(row pgx.Row) (*types.Company, error) {
	var c types.Company
	err := row.Scan(&c.ID, &c.Name, &c.Slug, &c.Website, &c.Industry, &c.Size, &c.Description,
		&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// FindCompanyByName looks a company up case-insensitively
func (db *DB) FindCompanyByName(ctx context.Context, name string) (*types.Company, error) {
	c, err := scanCompany(db.pool.QueryRow(ctx,
		`SELECT `+companyColumns+` FROM companies WHERE lower(name) = lower($1)`, name))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get company: %w", err)
	}
	return c, nil
}

// CreateCompany inserts a company. A concurrent insert of the same name returns the existing row.
func (db *DB) CreateCompany(ctx context.Context, company *types.Company) (*types.Company, error) {
	size := company.Size
	if size == "" {
		size = types.CompanySizeUnknown
	}
	c, err := scanCompany(db.pool.QueryRow(ctx,
		`INSERT INTO companies (name, slug, website, industry, size, description)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT ((lower(name))) DO UPDATE SET name = companies.name
		 RETURNING `+companyColumns,
		company.Name, types.Slugify(company.Name), company.Website, company.Industry, size, company.Description,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create company: %w", err)
	}
	return c, nil
}
