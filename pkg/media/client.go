package media

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Client fetches product imagery from the upstream catalog media API.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// PhotoURL resolves a product article to the URL of its primary photo.
func (c *Client) PhotoURL(ctx context.Context, article string) (string, error) {
	endpoint := fmt.Sprintf("%s/api/products/%s/photo", c.baseURL, url.PathEscape(article))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("media request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", fmt.Errorf("media: no photo for article %s", article)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("media: unexpected status %d for article %s", resp.StatusCode, article)
	}

	var payload struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("media: decode response: %w", err)
	}
	if payload.URL == "" {
		return "", fmt.Errorf("media: empty photo url for article %s", article)
	}
	return payload.URL, nil
}
