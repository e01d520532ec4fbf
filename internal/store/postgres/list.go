package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gosuda/taskflow/internal/domain"
)

type ListRepo struct {
	pool *pgxpool.Pool
}

func NewListRepo(pool *pgxpool.Pool) *ListRepo {
	return &ListRepo{pool: pool}
}

func (r *ListRepo) Create(ctx context.Context, l *domain.List) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO lists (id, board_id, title, created_at) VALUES ($1, $2, $3, $4)`,
		l.ID, l.BoardID, l.Title, l.CreatedAt,
	)
	if err != nil {
		return mapError("listRepo.Create", err)
	}

	return nil
}

func (r *ListRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.List, error) {
	l := domain.List{Cards: []*domain.Card{}}

	err := r.pool.QueryRow(ctx,
		`SELECT id, board_id, title, created_at FROM lists WHERE id = $1`,
		id,
	).Scan(&l.ID, &l.BoardID, &l.Title, &l.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("listRepo.GetByID: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("listRepo.GetByID: %w", err)
	}

	return &l, nil
}

// ListByBoard returns the lists of a board in creation order.
func (r *ListRepo) ListByBoard(ctx context.Context, boardID uuid.UUID) ([]*domain.List, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, board_id, title, created_at FROM lists
		 WHERE board_id = $1 ORDER BY seq
		 LIMIT 1000`,
		boardID,
	)
	if err != nil {
		return nil, fmt.Errorf("listRepo.ListByBoard: %w", err)
	}
	defer rows.Close()

	lists := []*domain.List{}
	for rows.Next() {
		l := domain.List{Cards: []*domain.Card{}}
		if err := rows.Scan(&l.ID, &l.BoardID, &l.Title, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("listRepo.ListByBoard: scan: %w", err)
		}
		lists = append(lists, &l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listRepo.ListByBoard: rows: %w", err)
	}

	return lists, nil
}

// Delete removes the list. Its cards go with it (ON DELETE CASCADE).
func (r *ListRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM lists WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("listRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("listRepo.Delete: %w", domain.ErrNotFound)
	}

	return nil
}
