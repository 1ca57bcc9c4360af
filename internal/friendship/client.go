package friendship

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Client is the friend-service consumer used by the feed assembler. It
// crosses the service boundary over HTTP even when both services share a
// binary, so feed-side failure handling sees real transport errors.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 5 * time.Second}
	}
	return &Client{baseURL: baseURL, http: httpClient}
}

// FriendIDs fetches the caller's accepted friend ids with the caller's own
// credential forwarded.
func (c *Client) FriendIDs(ctx context.Context, token string) ([]int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/friends", nil)
	if err != nil {
		return nil, fmt.Errorf("build friends request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("friend service request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("friend service status %d", resp.StatusCode)
	}

	var friends []struct {
		FriendID int64 `json:"friend_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&friends); err != nil {
		return nil, fmt.Errorf("decode friends: %w", err)
	}

	ids := make([]int64, len(friends))
	for i, f := range friends {
		ids[i] = f.FriendID
	}
	return ids, nil
}
