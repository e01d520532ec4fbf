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

type BoardRepo struct {
	pool *pgxpool.Pool
}

func NewBoardRepo(pool *pgxpool.Pool) *BoardRepo {
	return &BoardRepo{pool: pool}
}

func (r *BoardRepo) Create(ctx context.Context, b *domain.Board) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO boards (id, title, description, owner_id, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		b.ID, b.Title, b.Description, b.Owner.ID, b.CreatedAt,
	)
	if err != nil {
		return mapError("boardRepo.Create", err)
	}

	return nil
}

// GetByID returns the board with its owner and members. Lists are left nil;
// callers assemble them from ListRepo and CardRepo.
func (r *BoardRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Board, error) {
	var b domain.Board

	err := r.pool.QueryRow(ctx,
		`SELECT b.id, b.title, b.description, b.created_at, u.id, u.name
		 FROM boards b JOIN users u ON u.id = b.owner_id
		 WHERE b.id = $1`,
		id,
	).Scan(&b.ID, &b.Title, &b.Description, &b.CreatedAt, &b.Owner.ID, &b.Owner.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("boardRepo.GetByID: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("boardRepo.GetByID: %w", err)
	}

	members, err := r.members(ctx, []uuid.UUID{b.ID})
	if err != nil {
		return nil, fmt.Errorf("boardRepo.GetByID: %w", err)
	}
	b.Members = members[b.ID]
	if b.Members == nil {
		b.Members = []domain.UserRef{}
	}

	return &b, nil
}

// ListForUser returns the boards userID owns or is a member of, oldest first.
func (r *BoardRepo) ListForUser(ctx context.Context, userID uuid.UUID) ([]*domain.Board, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT b.id, b.title, b.description, b.created_at, u.id, u.name
		 FROM boards b JOIN users u ON u.id = b.owner_id
		 WHERE b.owner_id = $1
		    OR EXISTS (SELECT 1 FROM board_members m WHERE m.board_id = b.id AND m.user_id = $1)
		 ORDER BY b.created_at, b.id
		 LIMIT 500`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("boardRepo.ListForUser: %w", err)
	}
	defer rows.Close()

	var (
		boards []*domain.Board
		ids    []uuid.UUID
	)
	for rows.Next() {
		var b domain.Board
		if err := rows.Scan(&b.ID, &b.Title, &b.Description, &b.CreatedAt, &b.Owner.ID, &b.Owner.Name); err != nil {
			return nil, fmt.Errorf("boardRepo.ListForUser: scan: %w", err)
		}
		b.Members = []domain.UserRef{}
		boards = append(boards, &b)
		ids = append(ids, b.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("boardRepo.ListForUser: rows: %w", err)
	}
	if len(boards) == 0 {
		return []*domain.Board{}, nil
	}

	members, err := r.members(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("boardRepo.ListForUser: %w", err)
	}
	for _, b := range boards {
		if m, ok := members[b.ID]; ok {
			b.Members = m
		}
	}

	return boards, nil
}

func (r *BoardRepo) members(ctx context.Context, boardIDs []uuid.UUID) (map[uuid.UUID][]domain.UserRef, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT m.board_id, u.id, u.name
		 FROM board_members m JOIN users u ON u.id = m.user_id
		 WHERE m.board_id = ANY($1)
		 ORDER BY m.added_at, u.id`,
		boardIDs,
	)
	if err != nil {
		return nil, fmt.Errorf("members: %w", err)
	}
	defer rows.Close()

	out := make(map[uuid.UUID][]domain.UserRef, len(boardIDs))
	for rows.Next() {
		var (
			boardID uuid.UUID
			ref     domain.UserRef
		)
		if err := rows.Scan(&boardID, &ref.ID, &ref.Name); err != nil {
			return nil, fmt.Errorf("members: scan: %w", err)
		}
		out[boardID] = append(out[boardID], ref)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("members: rows: %w", err)
	}

	return out, nil
}

func (r *BoardRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM boards WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("boardRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("boardRepo.Delete: %w", domain.ErrNotFound)
	}

	return nil
}

// AddMember grants userID edit rights. Adding an existing member is a no-op.
func (r *BoardRepo) AddMember(ctx context.Context, boardID, userID uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO board_members (board_id, user_id) VALUES ($1, $2)
		 ON CONFLICT (board_id, user_id) DO NOTHING`,
		boardID, userID,
	)
	if err != nil {
		return mapError("boardRepo.AddMember", err)
	}

	return nil
}

func (r *BoardRepo) ListMembers(ctx context.Context, boardID uuid.UUID) ([]domain.UserRef, error) {
	members, err := r.members(ctx, []uuid.UUID{boardID})
	if err != nil {
		return nil, fmt.Errorf("boardRepo.ListMembers: %w", err)
	}
	if members[boardID] == nil {
		return []domain.UserRef{}, nil
	}
	return members[boardID], nil
}
