package posts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrUnavailable means the post service could not be reached in time.
	ErrUnavailable = errors.New("post service unavailable")
	// ErrBadResponse means the post service answered with a non-success
	// status or a payload that could not be decoded.
	ErrBadResponse = errors.New("post service bad response")
	ErrNotFound    = errors.New("post not found")
)

type Photo struct {
	ID       int64  `json:"id"`
	Filename string `json:"filename"`
}

type Post struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
	Photos    []Photo   `json:"photos"`
}

// Client fetches posts from the post service. Bulk reads go through the
// internal API and authenticate with the shared internal key instead of
// the caller's token.
type Client struct {
	baseURL     string
	internalKey string
	http        *http.Client
}

func NewClient(baseURL, internalKey string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 5 * time.Second}
	}
	return &Client{baseURL: baseURL, internalKey: internalKey, http: httpClient}
}

// ListByAuthors returns all posts authored by the given users, newest first.
func (c *Client) ListByAuthors(ctx context.Context, authorIDs []int64) ([]Post, error) {
	ids := make([]string, len(authorIDs))
	for i, id := range authorIDs {
		ids[i] = strconv.FormatInt(id, 10)
	}

	u := c.baseURL + "/internal/posts/by_users?user_ids=" + strings.Join(ids, ",")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build posts request: %w", err)
	}
	req.Header.Set("X-Internal-Key", c.internalKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrBadResponse, resp.StatusCode)
	}

	var result []Post
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: decode posts: %v", ErrBadResponse, err)
	}
	return result, nil
}

// Get fetches a single post by id on behalf of the calling user.
func (c *Client) Get(ctx context.Context, token string, postID int64) (Post, error) {
	u := c.baseURL + "/posts/" + strconv.FormatInt(postID, 10)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Post{}, fmt.Errorf("build post request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return Post{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return Post{}, ErrNotFound
	case resp.StatusCode != http.StatusOK:
		return Post{}, fmt.Errorf("%w: status %d", ErrBadResponse, resp.StatusCode)
	}

	var post Post
	if err := json.NewDecoder(resp.Body).Decode(&post); err != nil {
		return Post{}, fmt.Errorf("%w: decode post: %v", ErrBadResponse, err)
	}
	return post, nil
}
