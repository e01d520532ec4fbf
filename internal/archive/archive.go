// Package archive stores point-in-time snapshots of boards in an
// S3-compatible bucket.
package archive

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/gosuda/taskflow/internal/domain"
)

// ObjectStore is the slice of object storage the archiver needs.
type ObjectStore interface {
	Put(ctx context.Context, key string, body []byte, contentType string) error
	Get(ctx context.Context, key string) ([]byte, error)
	// List returns the keys under prefix. Missing prefixes yield no keys.
	List(ctx context.Context, prefix string) ([]string, error)
}

const (
	contentType   = "application/yaml"
	keyTimeLayout = "20060102T150405Z"
)

// Document is the stored form of a board.
type Document struct {
	ExportedAt time.Time     `yaml:"exported_at"`
	Board      BoardDocument `yaml:"board"`
}

type BoardDocument struct {
	ID          uuid.UUID      `yaml:"id"`
	Title       string         `yaml:"title"`
	Description string         `yaml:"description,omitempty"`
	Owner       string         `yaml:"owner"`
	Members     []string       `yaml:"members,omitempty"`
	Lists       []ListDocument `yaml:"lists"`
}

type ListDocument struct {
	ID    uuid.UUID      `yaml:"id"`
	Title string         `yaml:"title"`
	Cards []CardDocument `yaml:"cards"`
}

type CardDocument struct {
	ID          uuid.UUID  `yaml:"id"`
	Title       string     `yaml:"title"`
	Description string     `yaml:"description,omitempty"`
	Priority    string     `yaml:"priority"`
	DueDate     *time.Time `yaml:"due_date,omitempty"`
	Assignee    string     `yaml:"assignee,omitempty"`
}

// NewDocument converts b, keeping list and card order.
func NewDocument(b *domain.Board, at time.Time) Document {
	doc := Document{
		ExportedAt: at.UTC(),
		Board: BoardDocument{
			ID:          b.ID,
			Title:       b.Title,
			Description: b.Description,
			Owner:       b.Owner.Name,
			Lists:       make([]ListDocument, 0, len(b.Lists)),
		},
	}
	for _, m := range b.Members {
		doc.Board.Members = append(doc.Board.Members, m.Name)
	}
	for _, l := range b.Lists {
		ld := ListDocument{ID: l.ID, Title: l.Title, Cards: make([]CardDocument, 0, len(l.Cards))}
		for _, c := range l.Cards {
			cd := CardDocument{
				ID:          c.ID,
				Title:       c.Title,
				Description: c.Description,
				Priority:    string(c.Priority),
				DueDate:     c.DueDate,
			}
			if c.AssignedTo != nil {
				cd.Assignee = c.AssignedTo.Name
			}
			ld.Cards = append(ld.Cards, cd)
		}
		doc.Board.Lists = append(doc.Board.Lists, ld)
	}
	return doc
}

type Archiver struct {
	store  ObjectStore
	prefix string
	now    func() time.Time
	log    zerolog.Logger
}

type Option func(*Archiver)

// WithClock overrides the time source used for keys and exported_at.
func WithClock(now func() time.Time) Option {
	return func(a *Archiver) { a.now = now }
}

func WithLogger(l zerolog.Logger) Option {
	return func(a *Archiver) { a.log = l }
}

func New(store ObjectStore, prefix string, opts ...Option) *Archiver {
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	a := &Archiver{store: store, prefix: prefix, now: time.Now, log: zerolog.Nop()}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Key returns the object key for a snapshot of boardID taken at t.
func (a *Archiver) Key(boardID uuid.UUID, t time.Time) string {
	return path.Join(a.prefix+boardID.String(), t.UTC().Format(keyTimeLayout)+".yaml")
}

// Export stores a snapshot of b and returns its key.
func (a *Archiver) Export(ctx context.Context, b *domain.Board) (string, error) {
	at := a.now()
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(NewDocument(b, at)); err != nil {
		return "", fmt.Errorf("archive.Export: encode: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("archive.Export: encode: %w", err)
	}

	key := a.Key(b.ID, at)
	if err := a.store.Put(ctx, key, buf.Bytes(), contentType); err != nil {
		return "", fmt.Errorf("archive.Export: put %s: %w", key, err)
	}
	a.log.Info().Str("board_id", b.ID.String()).Str("key", key).Int("cards", b.CardCount()).Msg("archive: board exported")
	return key, nil
}

// Latest reads back the newest snapshot of boardID.
func (a *Archiver) Latest(ctx context.Context, boardID uuid.UUID) (*Document, error) {
	keys, err := a.store.List(ctx, a.prefix+boardID.String()+"/")
	if err != nil {
		return nil, fmt.Errorf("archive.Latest: list: %w", err)
	}
	if len(keys) == 0 {
		return nil, fmt.Errorf("archive.Latest: board %s: %w", boardID, domain.ErrNotFound)
	}
	// Keys embed a sortable timestamp.
	latest := slices.Max(keys)

	body, err := a.store.Get(ctx, latest)
	if err != nil {
		return nil, fmt.Errorf("archive.Latest: get %s: %w", latest, err)
	}
	var doc Document
	if err := yaml.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("archive.Latest: decode %s: %w", latest, err)
	}
	return &doc, nil
}
