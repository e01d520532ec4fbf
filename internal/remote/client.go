package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gosuda/taskflow/internal/domain"
)

const apiPrefix = "/api/v1"

// maxErrorBody caps how much of an error response is read.
const maxErrorBody = 64 << 10

// Tokens is the credential pair issued by the auth endpoints.
type Tokens struct {
	AccessToken  string `json:"access_token"`  //nolint:gosec // G117: auth response DTO
	RefreshToken string `json:"refresh_token"` //nolint:gosec // G117: auth response DTO
}

// Client talks to the board service over HTTP/JSON.
type Client struct {
	base *url.URL
	http *http.Client
	log  zerolog.Logger

	mu    sync.RWMutex
	token string
}

var (
	_ Service = (*Client)(nil)
	_ Watcher = (*Client)(nil)
)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithToken sets the bearer token sent with every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// New creates a Client for the service rooted at baseURL (scheme and host,
// e.g. "http://localhost:8080").
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("remote.New: parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("remote.New: unsupported scheme %q", u.Scheme)
	}

	c := &Client{
		base: u,
		http: NewHTTPClient(DefaultTransportConfig()),
		log:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// SetToken replaces the bearer token, e.g. after login.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) bearer() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// --- Auth ---

func (c *Client) Register(ctx context.Context, email, password, name string) (*Tokens, error) {
	in := map[string]string{"email": email, "password": password, "name": name}
	var out Tokens
	if err := c.do(ctx, http.MethodPost, "/auth/register", in, &out); err != nil {
		return nil, fmt.Errorf("remote.Register: %w", err)
	}
	return &out, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (*Tokens, error) {
	in := map[string]string{"email": email, "password": password}
	var out Tokens
	if err := c.do(ctx, http.MethodPost, "/auth/login", in, &out); err != nil {
		return nil, fmt.Errorf("remote.Login: %w", err)
	}
	return &out, nil
}

func (c *Client) Refresh(ctx context.Context, refreshToken string) (string, error) {
	in := map[string]string{"refresh_token": refreshToken}
	var out Tokens
	if err := c.do(ctx, http.MethodPost, "/auth/refresh", in, &out); err != nil {
		return "", fmt.Errorf("remote.Refresh: %w", err)
	}
	return out.AccessToken, nil
}

// Me returns the user the current token belongs to.
func (c *Client) Me(ctx context.Context) (*domain.User, error) {
	var out domain.User
	if err := c.do(ctx, http.MethodGet, "/me", nil, &out); err != nil {
		return nil, fmt.Errorf("remote.Me: %w", err)
	}
	return &out, nil
}

// --- Boards ---

func (c *Client) GetBoard(ctx context.Context, id uuid.UUID) (*domain.Board, error) {
	var out domain.Board
	if err := c.do(ctx, http.MethodGet, "/boards/"+id.String(), nil, &out); err != nil {
		return nil, fmt.Errorf("remote.GetBoard: %w", err)
	}
	if out.Lists == nil {
		out.Lists = []*domain.List{}
	}
	return &out, nil
}

func (c *Client) ListBoards(ctx context.Context) ([]*domain.Board, error) {
	var out []*domain.Board
	if err := c.do(ctx, http.MethodGet, "/boards", nil, &out); err != nil {
		return nil, fmt.Errorf("remote.ListBoards: %w", err)
	}
	return out, nil
}

func (c *Client) CreateBoard(ctx context.Context, req CreateBoardRequest) (*domain.Board, error) {
	var out domain.Board
	if err := c.do(ctx, http.MethodPost, "/boards", req, &out); err != nil {
		return nil, fmt.Errorf("remote.CreateBoard: %w", err)
	}
	return &out, nil
}

func (c *Client) DeleteBoard(ctx context.Context, id uuid.UUID) error {
	if err := c.do(ctx, http.MethodDelete, "/boards/"+id.String(), nil, nil); err != nil {
		return fmt.Errorf("remote.DeleteBoard: %w", err)
	}
	return nil
}

// AddMember grants the user registered under email edit rights on a board.
func (c *Client) AddMember(ctx context.Context, boardID uuid.UUID, email string) (*domain.Board, error) {
	var out domain.Board
	in := map[string]string{"email": email}
	if err := c.do(ctx, http.MethodPost, "/boards/"+boardID.String()+"/members", in, &out); err != nil {
		return nil, fmt.Errorf("remote.AddMember: %w", err)
	}
	return &out, nil
}

// --- Lists ---

func (c *Client) CreateList(ctx context.Context, req CreateListRequest) (*domain.List, error) {
	var out domain.List
	if err := c.do(ctx, http.MethodPost, "/lists", req, &out); err != nil {
		return nil, fmt.Errorf("remote.CreateList: %w", err)
	}
	return &out, nil
}

func (c *Client) DeleteList(ctx context.Context, id uuid.UUID) error {
	if err := c.do(ctx, http.MethodDelete, "/lists/"+id.String(), nil, nil); err != nil {
		return fmt.Errorf("remote.DeleteList: %w", err)
	}
	return nil
}

// --- Cards ---

func (c *Client) CreateCard(ctx context.Context, req CreateCardRequest) (*domain.Card, error) {
	var out domain.Card
	if err := c.do(ctx, http.MethodPost, "/cards", req, &out); err != nil {
		return nil, fmt.Errorf("remote.CreateCard: %w", err)
	}
	return &out, nil
}

func (c *Client) DeleteCard(ctx context.Context, id uuid.UUID) error {
	if err := c.do(ctx, http.MethodDelete, "/cards/"+id.String(), nil, nil); err != nil {
		return fmt.Errorf("remote.DeleteCard: %w", err)
	}
	return nil
}

func (c *Client) MoveCard(ctx context.Context, req MoveCardRequest) error {
	if err := c.do(ctx, http.MethodPut, "/cards/"+req.CardID.String()+"/move", req, nil); err != nil {
		return fmt.Errorf("remote.MoveCard: %w", err)
	}
	return nil
}

// do sends one JSON request under the API prefix and decodes a JSON response
// into out when out is non-nil.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base.String()+apiPrefix+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok := c.bearer(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	c.log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Msg("remote: request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeStatusError(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeStatusError(resp *http.Response) error {
	se := &StatusError{}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, se); err != nil {
			se.Detail = strings.TrimSpace(string(raw))
		}
	}
	// The status line wins over whatever the body claims.
	se.Status = resp.StatusCode
	if se.Title == "" {
		se.Title = http.StatusText(resp.StatusCode)
	}
	return se
}

// IsStatus reports whether err carries a response with the given status.
func IsStatus(err error, status int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Status == status
}
