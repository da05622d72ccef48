package repo

import (
	"context"
	"database/sql"

	"lojinha/internal/domain"
)

// PrincipalRepo reads login identities issued by the upstream auth system.
// This service never writes them.
type PrincipalRepo interface {
	FindById(ctx context.Context, id string) (*domain.Principal, error)
}

type principalRepo struct {
	db *sql.DB
}

func NewPrincipalRepo(db *sql.DB) PrincipalRepo {
	return &principalRepo{db: db}
}

func (r *principalRepo) FindById(ctx context.Context, id string) (*domain.Principal, error) {
	var p domain.Principal
	err := r.db.QueryRowContext(ctx,
		`SELECT id, email FROM principals WHERE id = $1`, id,
	).Scan(&p.ID, &p.Email)
	if err == sql.ErrNoRows {
		return nil, nil // not found
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}
