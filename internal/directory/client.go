package directory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrNotFound means the directory answered and the user does not exist.
	ErrNotFound = errors.New("user not found")
	// ErrUnavailable means the directory could not be reached or answered
	// garbage. Callers must not confuse this with ErrNotFound.
	ErrUnavailable = errors.New("user service unavailable")
)

const cacheTTL = 60 * time.Second

type Profile struct {
	ID           int64  `json:"id"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Login        string `json:"login"`
	ProfilePhoto string `json:"profile_photo,omitempty"`
}

// Client resolves user ids to public profile fields via the user service.
// A redis client may be nil; caching is an optimization, never a requirement.
type Client struct {
	baseURL string
	http    *http.Client
	cache   *redis.Client
}

func NewClient(baseURL string, httpClient *http.Client, cache *redis.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 3 * time.Second}
	}
	return &Client{baseURL: baseURL, http: httpClient, cache: cache}
}

func (c *Client) Resolve(ctx context.Context, token string, userID int64) (Profile, error) {
	if p, ok := c.cachedProfile(ctx, userID); ok {
		return p, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/users/"+strconv.FormatInt(userID, 10), nil)
	if err != nil {
		return Profile{}, fmt.Errorf("build user request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return Profile{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return Profile{}, ErrNotFound
	case resp.StatusCode != http.StatusOK:
		return Profile{}, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var profile Profile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return Profile{}, fmt.Errorf("%w: decode profile: %v", ErrUnavailable, err)
	}
	if profile.ID == 0 || profile.Login == "" {
		return Profile{}, fmt.Errorf("%w: incomplete profile for user %d", ErrUnavailable, userID)
	}

	c.cacheProfile(ctx, profile)
	return profile, nil
}

func (c *Client) Search(ctx context.Context, token, query string, excludeID int64, limit int) ([]Profile, error) {
	u := c.baseURL + "/users/search?query=" + url.QueryEscape(query)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var matches []Profile
	if err := json.NewDecoder(resp.Body).Decode(&matches); err != nil {
		return nil, fmt.Errorf("%w: decode search results: %v", ErrUnavailable, err)
	}

	results := make([]Profile, 0, len(matches))
	for _, m := range matches {
		if m.ID == excludeID {
			continue
		}
		results = append(results, m)
		if limit > 0 && len(results) == limit {
			break
		}
	}
	return results, nil
}

func (c *Client) cachedProfile(ctx context.Context, userID int64) (Profile, bool) {
	if c.cache == nil {
		return Profile{}, false
	}
	raw, err := c.cache.Get(ctx, profileKey(userID)).Bytes()
	if err != nil {
		return Profile{}, false
	}
	var p Profile
	if err := json.Unmarshal(raw, &p); err != nil {
		return Profile{}, false
	}
	return p, true
}

func (c *Client) cacheProfile(ctx context.Context, p Profile) {
	if c.cache == nil {
		return
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return
	}
	if err := c.cache.Set(ctx, profileKey(p.ID), raw, cacheTTL).Err(); err != nil {
		log.Printf("directory cache set error: %v", err)
	}
}

func profileKey(userID int64) string {
	return "directory:user:" + strconv.FormatInt(userID, 10)
}
