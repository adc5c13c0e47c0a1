// Package leaderboardapi is the client for the upstream leaderboard REST API.
package leaderboardapi

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
	"time"

	"github.com/okian/racerdash/internal/domain/model"
	"github.com/okian/racerdash/pkg/logger"
	"github.com/okian/racerdash/pkg/metrics"
)

const (
	// DefaultAccoladeReason is sent when an accolade is granted without a reason.
	DefaultAccoladeReason = "Granted via dashboard"

	maxBodyBytes = 4 << 20
	maxErrorBody = 512
)

// Client calls the upstream API. All methods take the caller's session;
// a session with a token adds "Authorization: Bearer <token>".
type Client struct {
	base    *url.URL
	http    *http.Client
	timeout time.Duration
	log     logger.Logger
	now     func() time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout bounds each call. Zero leaves the transport default.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d >= 0 {
			c.timeout = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// WithClock sets the time source used for grant timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// New creates a client for baseURL, e.g. https://leaderboard.runasp.net/api.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBaseURL, baseURL)
	}
	if u.Path == "" {
		u.Path = "/"
	}
	c := &Client{
		base: u,
		http: http.DefaultClient,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = logger.Get()
	}
	c.log = c.log.Named("upstream")
	return c, nil
}

// BaseURL returns the upstream base URL.
func (c *Client) BaseURL() *url.URL {
	u := *c.base
	return &u
}

// CreateContestantRequest is the body of POST /Racer/.
type CreateContestantRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// PointGrantRequest is the body of POST /Racer/{id}/Start.
type PointGrantRequest struct {
	Number   float64  `json:"number"`
	RacerID  model.ID `json:"racerId"`
	DateTime string   `json:"dateTime"`
	Reason   string   `json:"reason"`
}

// AccoladeGrantRequest is the body of POST /Racer/{id}/Accolade.
type AccoladeGrantRequest struct {
	RacerID    model.ID `json:"racerId"`
	AccoladeID model.ID `json:"accoladeId"`
	DateTime   string   `json:"dateTime"`
	Reason     string   `json:"reason"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Contestants lists every contestant with totals and accolades.
func (c *Client) Contestants(ctx context.Context, s *Session) ([]model.Contestant, error) {
	var out []model.Contestant
	if err := c.do(ctx, s, "contestants", http.MethodGet, []string{"Racer", "Details"}, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ContestantDetails fetches one contestant's full record including point grants.
func (c *Client) ContestantDetails(ctx context.Context, s *Session, name string) (model.Contestant, error) {
	var out []model.Contestant
	if err := c.do(ctx, s, "contestant_details", http.MethodGet, []string{"Racer", "Search", url.PathEscape(name)}, nil, &out); err != nil {
		return model.Contestant{}, err
	}
	if len(out) == 0 {
		return model.Contestant{}, fmt.Errorf("%w: %s", ErrDetailNotFound, name)
	}
	return out[0], nil
}

// CreateContestant adds a contestant.
func (c *Client) CreateContestant(ctx context.Context, s *Session, req CreateContestantRequest) error {
	return c.do(ctx, s, "create_contestant", http.MethodPost, []string{"Racer/"}, req, nil)
}

// AddPoints appends a point grant. RacerID and DateTime default to id and now.
func (c *Client) AddPoints(ctx context.Context, s *Session, id model.ID, req PointGrantRequest) error {
	if req.RacerID.IsZero() {
		req.RacerID = id
	}
	if req.DateTime == "" {
		req.DateTime = c.stamp()
	}
	return c.do(ctx, s, "add_points", http.MethodPost, []string{"Racer", url.PathEscape(id.String()), "Start"}, req, nil)
}

// GrantAccolade appends an accolade grant. Empty fields get defaults.
func (c *Client) GrantAccolade(ctx context.Context, s *Session, id model.ID, req AccoladeGrantRequest) error {
	if req.RacerID.IsZero() {
		req.RacerID = id
	}
	if req.DateTime == "" {
		req.DateTime = c.stamp()
	}
	if strings.TrimSpace(req.Reason) == "" {
		req.Reason = DefaultAccoladeReason
	}
	return c.do(ctx, s, "grant_accolade", http.MethodPost, []string{"Racer", url.PathEscape(id.String()), "Accolade"}, req, nil)
}

// DeleteContestant removes a contestant.
func (c *Client) DeleteContestant(ctx context.Context, s *Session, id model.ID) error {
	return c.do(ctx, s, "delete_contestant", http.MethodDelete, []string{"Racer", url.PathEscape(id.String())}, nil, nil)
}

// Accolades fetches the accolade type catalog.
func (c *Client) Accolades(ctx context.Context, s *Session) ([]model.AccoladeType, error) {
	var out []model.AccoladeType
	if err := c.do(ctx, s, "accolades", http.MethodGet, []string{"Accolade"}, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Login exchanges credentials for a token and begins s with it.
func (c *Client) Login(ctx context.Context, s *Session, username, password string) (string, error) {
	var raw []byte
	if err := c.do(ctx, nil, "login", http.MethodPost, []string{"Auth", "Login"}, loginRequest{Username: username, Password: password}, &raw); err != nil {
		return "", err
	}
	token := decodeToken(raw)
	if token == "" {
		return "", ErrEmptyToken
	}
	if s != nil {
		if err := s.Begin(token); err != nil {
			c.log.Warn(ctx, "persist session token", logger.Error(err))
		}
	}
	return token, nil
}

// decodeToken accepts {"token"|"accessToken"|"jwt": "..."}, a JSON string or a raw body.
func decodeToken(raw []byte) string {
	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err == nil {
		for _, k := range []string{"token", "accessToken", "jwt"} {
			if v, ok := obj[k].(string); ok && v != "" {
				return v
			}
		}
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(string(raw))
}

func (c *Client) stamp() string {
	return c.now().UTC().Format("2006-01-02T15:04:05.000Z07:00")
}

func (c *Client) do(ctx context.Context, s *Session, op, method string, segments []string, body, out any) (err error) {
	start := time.Now()
	defer func() {
		metrics.RecordUpstreamRequest(op, outcome(err), float64(time.Since(start).Microseconds())/1000)
		if err != nil {
			c.log.Warn(ctx, "upstream call failed", logger.String("op", op), logger.Error(err))
		}
	}()

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", op, err)
		}
		reader = bytes.NewReader(b)
	}

	target := c.base.JoinPath(segments...)
	req, err := http.NewRequestWithContext(ctx, method, target.String(), reader)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := s.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrTransport, op, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("%w: %s: read body: %w", ErrTransport, op, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := strings.TrimSpace(string(data))
		if len(msg) > maxErrorBody {
			msg = msg[:maxErrorBody]
		}
		return &StatusError{Op: op, Code: resp.StatusCode, Body: msg}
	}

	c.log.Debug(ctx, "upstream call", logger.String("op", op), logger.Int("status", resp.StatusCode))
	switch v := out.(type) {
	case nil:
		return nil
	case *[]byte:
		*v = data
		return nil
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return fmt.Errorf("%w: %s: empty body", ErrDecode, op)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrDecode, op, err)
	}
	return nil
}

// IsUnauthorized reports whether err is a 401 or 403 from upstream.
func IsUnauthorized(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && (se.Code == http.StatusUnauthorized || se.Code == http.StatusForbidden)
}
