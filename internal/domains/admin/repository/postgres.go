package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"portfolio-cms/internal/domains/admin/model"
)

type AdminRepository interface {
	GetByEmail(ctx context.Context, email string) (*model.Admin, error)
}

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) AdminRepository {
	return &postgresRepository{pool: pool}
}

func (r *postgresRepository) GetByEmail(ctx context.Context, email string) (*model.Admin, error) {
	var admin model.Admin
	err := r.pool.QueryRow(ctx, `
		SELECT id, email, name, password_hash, created_at
		FROM admins WHERE email = $1`, email,
	).Scan(&admin.ID, &admin.Email, &admin.Name, &admin.PasswordHash, &admin.CreatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("admin lookup: %w", err)
	}
	return &admin, nil
}
