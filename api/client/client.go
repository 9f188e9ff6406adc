package client

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

	"WorldCup/api/bracket"

	"github.com/sirupsen/logrus"
)

const (
	DefaultBaseURL = "http://localhost:8888/api/v1"
	DefaultTimeout = 10 * time.Second
)

// ErrDataFetch is returned (wrapped in a *FetchError) for any transport
// failure or non-2xx answer from the game API.
var ErrDataFetch = errors.New("data fetch failed")

type FetchError struct {
	Op         string
	StatusCode int
	Message    string
	Err        error
}

func (e *FetchError) Error() string {
	switch {
	case e.StatusCode != 0:
		return fmt.Sprintf("%s: status %d: %s", e.Op, e.StatusCode, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	default:
		return e.Op + ": " + e.Message
	}
}

func (e *FetchError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrDataFetch, e.Err}
	}
	return []error{ErrDataFetch}
}

type Contestant struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	FileName  string `json:"file_name"`
	MediaURL  string `json:"media_url,omitempty"`
	SortOrder int    `json:"sort_order"`
}

// Entry converts the API row into the value the bracket engine plays with.
func (c Contestant) Entry() bracket.Contestant {
	return bracket.Contestant{ID: c.ID, Name: c.Name, FileName: c.FileName, SortOrder: c.SortOrder}
}

type Game struct {
	ID          uint         `json:"id"`
	PublicID    string       `json:"public_id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Contestants []Contestant `json:"contestants"`
}

func (g Game) Entries() []bracket.Contestant {
	out := make([]bracket.Contestant, 0, len(g.Contestants))
	for _, c := range g.Contestants {
		out = append(out, c.Entry())
	}
	return out
}

type GameSummary struct {
	ID              uint   `json:"id"`
	PublicID        string `json:"public_id"`
	Title           string `json:"title"`
	Description     string `json:"description"`
	ContestantCount int64  `json:"contestant_count"`
}

type GameList struct {
	Games []GameSummary `json:"games"`
	Total int64         `json:"total"`
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     logrus.FieldLogger
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

func WithLogger(l logrus.FieldLogger) Option {
	return func(c *Client) { c.logger = l }
}

func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
		logger:     logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type envelope struct {
	Response json.RawMessage `json:"response"`
	Error    json.RawMessage `json:"error"`
}

func (c *Client) do(ctx context.Context, op, method, endpoint string, headers map[string]string, body, result interface{}) error {
	u := c.baseURL + endpoint
	log := c.logger.WithFields(logrus.Fields{"op": op, "url": u})

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode %s request: %w", op, err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return &FetchError{Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	log.Debug("Making API request")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.WithError(err).Error("HTTP request failed")
		return &FetchError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		log.WithError(err).Error("Failed to read response body")
		return &FetchError{Op: op, Err: err}
	}

	var env envelope
	_ = json.Unmarshal(raw, &env)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := strings.Trim(string(env.Error), `"`)
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		log.WithFields(logrus.Fields{
			"status_code": resp.StatusCode,
			"response":    string(raw),
		}).Error("API request failed")
		return &FetchError{Op: op, StatusCode: resp.StatusCode, Message: msg}
	}

	if result != nil {
		if len(env.Response) == 0 {
			return &FetchError{Op: op, Message: "empty response"}
		}
		if err := json.Unmarshal(env.Response, result); err != nil {
			log.WithError(err).Error("Failed to unmarshal response")
			return &FetchError{Op: op, Err: err}
		}
	}
	return nil
}

// GetGame fetches a game and its contestants in play order. id may be the
// numeric id or the public uuid.
func (c *Client) GetGame(ctx context.Context, id string) (*Game, error) {
	var game Game
	if err := c.do(ctx, "get game", http.MethodGet, "/games/"+url.PathEscape(id), nil, nil, &game); err != nil {
		return nil, err
	}
	return &game, nil
}

func (c *Client) ListGames(ctx context.Context) (*GameList, error) {
	var list GameList
	if err := c.do(ctx, "list games", http.MethodGet, "/games?limit=100", nil, nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// SaveResult stores a finished playthrough under the given session id.
func (c *Client) SaveResult(ctx context.Context, session string, res bracket.Result) error {
	endpoint := fmt.Sprintf("/games/%d/result", res.GameID)
	headers := map[string]string{"X-Session-ID": session}
	return c.do(ctx, "save result", http.MethodPut, endpoint, headers, res, nil)
}

func (c *Client) LoadResult(ctx context.Context, session string, gameID uint) (*bracket.Result, error) {
	var res bracket.Result
	endpoint := fmt.Sprintf("/games/%d/result", gameID)
	headers := map[string]string{"X-Session-ID": session}
	if err := c.do(ctx, "load result", http.MethodGet, endpoint, headers, nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}
