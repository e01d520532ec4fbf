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

const cardColumns = `c.id, c.list_id, c.title, c.description, c.priority, c.due_date, c.assigned_to, u.name, c.created_at`

type CardRepo struct {
	pool *pgxpool.Pool
}

func NewCardRepo(pool *pgxpool.Pool) *CardRepo {
	return &CardRepo{pool: pool}
}

func (r *CardRepo) Create(ctx context.Context, c *domain.Card) error {
	var assignee *uuid.UUID
	if c.AssignedTo != nil {
		assignee = &c.AssignedTo.ID
	}

	_, err := r.pool.Exec(ctx,
		`INSERT INTO cards (id, list_id, title, description, priority, due_date, assigned_to, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		c.ID, c.ListID, c.Title, c.Description, c.Priority, c.DueDate, assignee, c.CreatedAt,
	)
	if err != nil {
		return mapError("cardRepo.Create", err)
	}

	return nil
}

func (r *CardRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Card, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+cardColumns+`
		 FROM cards c LEFT JOIN users u ON u.id = c.assigned_to
		 WHERE c.id = $1`,
		id,
	)

	c, err := scanCard(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("cardRepo.GetByID: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("cardRepo.GetByID: %w", err)
	}

	return c, nil
}

// ListByBoard returns every card on the board ordered by list position.
func (r *CardRepo) ListByBoard(ctx context.Context, boardID uuid.UUID) ([]*domain.Card, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+cardColumns+`
		 FROM cards c
		 JOIN lists l ON l.id = c.list_id
		 LEFT JOIN users u ON u.id = c.assigned_to
		 WHERE l.board_id = $1
		 ORDER BY c.seq
		 LIMIT 5000`,
		boardID,
	)
	if err != nil {
		return nil, fmt.Errorf("cardRepo.ListByBoard: %w", err)
	}
	defer rows.Close()

	cards := []*domain.Card{}
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			return nil, fmt.Errorf("cardRepo.ListByBoard: scan: %w", err)
		}
		cards = append(cards, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("cardRepo.ListByBoard: rows: %w", err)
	}

	return cards, nil
}

// Move reassigns the card to listID and puts it after every card already there.
func (r *CardRepo) Move(ctx context.Context, id, listID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE cards SET list_id = $1, seq = nextval(pg_get_serial_sequence('cards', 'seq'))
		 WHERE id = $2`,
		listID, id,
	)
	if err != nil {
		return mapError("cardRepo.Move", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("cardRepo.Move: %w", domain.ErrNotFound)
	}

	return nil
}

func (r *CardRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM cards WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("cardRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("cardRepo.Delete: %w", domain.ErrNotFound)
	}

	return nil
}

func scanCard(row pgx.Row) (*domain.Card, error) {
	var (
		c            domain.Card
		assigneeID   *uuid.UUID
		assigneeName *string
	)
	if err := row.Scan(
		&c.ID, &c.ListID, &c.Title, &c.Description, &c.Priority,
		&c.DueDate, &assigneeID, &assigneeName, &c.CreatedAt,
	); err != nil {
		return nil, err
	}
	if assigneeID != nil {
		c.AssignedTo = &domain.UserRef{ID: *assigneeID, Name: derefStr(assigneeName)}
	}
	return &c, nil
}
