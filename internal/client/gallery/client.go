// Package gallery provides the browsing client: incremental
// cursor-based fetch with jump and filter controls over the
// gallery HTTP API.
package gallery

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/lanmedia/gallery/internal/models"
)

type State int

const (
	StateIdle State = iota
	StateLoading
	StateError
)

var (
	// ErrJumpUnavailable: favorites mode is exhaustive and has no
	// cursor semantics, so there is no offset to jump to.
	ErrJumpUnavailable = errors.New("jump is unavailable while a favorites filter is active")

	ErrIndexOutOfRange = errors.New("index out of range")
)

type Config struct {
	BaseURL  string
	Username string
	PageSize int
	Timeout  time.Duration
}

// Client accumulates gallery pages for an infinite-scroll
// consumer. All methods are safe for a single goroutine plus
// callbacks; internal state is mutex-guarded anyway so late
// responses can be discarded safely.
type Client struct {
	baseURL    string
	username   string
	pageSize   int
	httpClient *http.Client

	mu       sync.Mutex
	state    State
	lastErr  error
	cursor   *string
	items    []models.MediaEntry
	total    int
	gen      uint64
	favUser  string
	viewUser string
}

func New(cfg Config) *Client {
	if cfg.PageSize <= 0 {
		cfg.PageSize = 20
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	start := "0"

	return &Client{
		baseURL:  cfg.BaseURL,
		username: cfg.Username,
		pageSize: cfg.PageSize,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		cursor: &start,
	}
}

// --- session ---

// Login builds the session identity. For the admin user an
// image root can be activated in the same step.
func (c *Client) Login(ctx context.Context, username, imageRoot, projectName string) (models.User, error) {
	user := models.NewUser(username)
	if user.Username == "" {
		return models.User{}, errors.New("username must not be empty")
	}

	if user.IsAdmin && imageRoot != "" {
		if err := c.SetImageRoot(ctx, imageRoot, projectName); err != nil {
			return models.User{}, err
		}
	}

	c.mu.Lock()
	c.username = user.Username
	c.mu.Unlock()

	return user, nil
}

// --- low-level API calls ---

type Health struct {
	Status       string `json:"status"`
	ImageRootSet bool   `json:"imageRootSet"`
	ProjectName  string `json:"projectName"`
}

func (c *Client) Health(ctx context.Context) (Health, error) {
	var health Health
	if err := c.getJSON(ctx, "/health", nil, &health); err != nil {
		return Health{}, err
	}
	return health, nil
}

func (c *Client) SetImageRoot(ctx context.Context, path, projectName string) error {
	body := map[string]string{
		"path":        path,
		"projectName": projectName,
	}
	var resp struct {
		Success bool `json:"success"`
	}
	return c.postJSON(ctx, "/set-image-root", body, &resp)
}

func (c *Client) Users(ctx context.Context) ([]string, error) {
	var resp struct {
		Users []string `json:"users"`
	}
	if err := c.getJSON(ctx, "/users", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Users, nil
}

// FavoriteCount returns the size of the user's favorite set.
func (c *Client) FavoriteCount(ctx context.Context, username string) (int, error) {
	var resp struct {
		Favorites []string `json:"favorites"`
	}
	if err := c.getJSON(ctx, "/favorites/"+url.PathEscape(username), nil, &resp); err != nil {
		return 0, err
	}
	return len(resp.Favorites), nil
}

func (c *Client) fetchPage(ctx context.Context, cursor, favUser string) (models.Page, error) {
	query := url.Values{}
	query.Set("cursor", cursor)
	query.Set("limit", strconv.Itoa(c.pageSize))
	if favUser != "" {
		query.Set("favUser", favUser)
	}
	if c.username != "" {
		query.Set("user", c.username)
	}

	var page models.Page
	if err := c.getJSON(ctx, "/images", query, &page); err != nil {
		return models.Page{}, err
	}
	return page, nil
}

// --- cursor state machine ---

// LoadMore requests the next page. It reports whether a request
// was actually issued: calls while one is in flight, or after the
// cursor is exhausted, are suppressed.
func (c *Client) LoadMore(ctx context.Context) (bool, error) {
	c.mu.Lock()

	if c.state == StateLoading || c.cursor == nil {
		c.mu.Unlock()
		return false, nil
	}

	cursor := *c.cursor
	favUser := c.activeFavUser()
	gen := c.gen
	c.state = StateLoading
	c.mu.Unlock()

	page, err := c.fetchPage(ctx, cursor, favUser)

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.gen {
		// a filter change or jump superseded this request
		return false, nil
	}

	if err != nil {
		c.state = StateError
		c.lastErr = err
		return true, err
	}

	c.state = StateIdle
	c.lastErr = nil
	c.items = append(c.items, page.Items...)
	c.cursor = page.NextCursor
	c.total = page.Total

	return true, nil
}

// OnLastItemVisible is the infinite-scroll trigger: it loads the
// next page exactly when more data exists and no request is in flight.
func (c *Client) OnLastItemVisible(ctx context.Context) error {
	_, err := c.LoadMore(ctx)
	return err
}

// JumpToIndex discards accumulated items and restarts the window
// at a zero-based offset. Unavailable in favorites mode.
func (c *Client) JumpToIndex(ctx context.Context, index int) error {
	c.mu.Lock()

	if c.activeFavUser() != "" {
		c.mu.Unlock()
		return ErrJumpUnavailable
	}
	if index < 0 || (c.total > 0 && index >= c.total) {
		c.mu.Unlock()
		return ErrIndexOutOfRange
	}

	c.resetLocked(strconv.Itoa(index))
	c.mu.Unlock()

	_, err := c.LoadMore(ctx)
	return err
}

// JumpToPage restarts the window at the beginning of a one-based page.
func (c *Client) JumpToPage(ctx context.Context, page int) error {
	if page < 1 {
		return ErrIndexOutOfRange
	}
	return c.JumpToIndex(ctx, (page-1)*c.pageSize)
}

// ShowOnlyFavorites toggles the own-favorites filter. Activating
// it clears any viewed-user filter; both reset the cursor and
// refetch from the start.
func (c *Client) ShowOnlyFavorites(ctx context.Context, on bool) error {
	c.mu.Lock()
	if on {
		c.favUser = c.username
		c.viewUser = ""
	} else {
		c.favUser = ""
	}
	c.resetLocked("0")
	c.mu.Unlock()

	_, err := c.LoadMore(ctx)
	return err
}

// ViewUserFavorites shows another user's favorites; empty username
// returns to the full gallery. Mutually exclusive with the
// own-favorites filter.
func (c *Client) ViewUserFavorites(ctx context.Context, username string) error {
	c.mu.Lock()
	c.viewUser = username
	c.favUser = ""
	c.resetLocked("0")
	c.mu.Unlock()

	_, err := c.LoadMore(ctx)
	return err
}

// resetLocked reseeds the cursor and invalidates in-flight
// responses. Caller holds the lock.
func (c *Client) resetLocked(cursor string) {
	c.gen++
	c.state = StateIdle
	c.lastErr = nil
	c.items = nil
	c.total = 0
	c.cursor = &cursor
}

func (c *Client) activeFavUser() string {
	if c.favUser != "" {
		return c.favUser
	}
	return c.viewUser
}

// --- favorites toggle ---

// ToggleFavorite flips the favorite state of mediaID for the
// logged-in user. The change is applied optimistically and rolled
// back if the server rejects it.
func (c *Client) ToggleFavorite(ctx context.Context, mediaID string) (bool, error) {
	c.mu.Lock()
	previous, present := c.markFavoriteLocked(mediaID, func(was bool) bool { return !was })
	c.mu.Unlock()

	path := "/favorites/" + url.PathEscape(c.username) + "/" + url.PathEscape(mediaID)

	var resp struct {
		IsFavorited bool `json:"isFavorited"`
	}
	if err := c.postJSON(ctx, path, nil, &resp); err != nil {
		// rollback: the toggle failed, the UI must show the prior state
		c.mu.Lock()
		if present {
			c.markFavoriteLocked(mediaID, func(bool) bool { return previous })
		}
		c.mu.Unlock()
		return previous, err
	}

	c.mu.Lock()
	c.markFavoriteLocked(mediaID, func(bool) bool { return resp.IsFavorited })
	if c.favUser != "" && !resp.IsFavorited {
		// unfavorited while browsing own favorites: drop it from view
		c.dropItemLocked(mediaID)
	}
	c.mu.Unlock()

	return resp.IsFavorited, nil
}

func (c *Client) markFavoriteLocked(mediaID string, next func(bool) bool) (previous, present bool) {
	for i := range c.items {
		if c.items[i].ID == mediaID {
			previous = c.items[i].IsFavorited
			c.items[i].IsFavorited = next(previous)
			return previous, true
		}
	}
	return false, false
}

func (c *Client) dropItemLocked(mediaID string) {
	for i := range c.items {
		if c.items[i].ID == mediaID {
			c.items = append(c.items[:i], c.items[i+1:]...)
			c.total--
			return
		}
	}
}

// --- accessors ---

func (c *Client) Items() []models.MediaEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	items := make([]models.MediaEntry, len(c.items))
	copy(items, c.items)
	return items
}

func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Client) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// HasMore reports whether the cursor is still armed.
func (c *Client) HasMore() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cursor != nil
}

func (c *Client) Total() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.total
}

// --- transport ---

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}

	return c.do(req, out)
}

func (c *Client) postJSON(ctx context.Context, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var apiErr struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error != "" {
			return fmt.Errorf("server returned %d: %s", resp.StatusCode, apiErr.Error)
		}
		return fmt.Errorf("server returned %d", resp.StatusCode)
	}

	if out == nil {
		return nil
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
