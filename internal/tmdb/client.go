// Package tmdb is a thin client for The Movie Database REST API. It
// backs the admin movie lookup and the best-effort rating shown on the
// movie detail endpoint. Without an API key the client is disabled and
// every call returns ErrDisabled.
package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// ErrDisabled is returned when no API key is configured.
var ErrDisabled = errors.New("tmdb: no api key configured")

// ErrNotFound is returned when the search yields no results.
var ErrNotFound = errors.New("tmdb: movie not found")

// SearchResult is the slice of a TMDB movie record this application
// uses.
type SearchResult struct {
	Title       string  `json:"title"`
	Overview    string  `json:"overview"`
	ReleaseDate string  `json:"release_date"`
	PosterPath  string  `json:"poster_path"`
	VoteAverage float64 `json:"vote_average"`
}

// Client talks to the TMDB v3 API with a bearer token.
type Client struct {
	baseURL string
	key     string
	http    *http.Client
}

// New builds a Client. Pass an empty key to disable lookups.
func New(baseURL, key string) *Client {
	return &Client{
		baseURL: baseURL,
		key:     key,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// SearchMovie returns the first search hit for the title and year.
func (c *Client) SearchMovie(ctx context.Context, title string, year int) (*SearchResult, error) {
	if c.key == "" {
		return nil, ErrDisabled
	}

	q := url.Values{}
	q.Set("query", title)
	if year > 0 {
		q.Set("year", strconv.Itoa(year))
	}
	endpoint := fmt.Sprintf("%s/search/movie?%s", c.baseURL, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.key)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tmdb: search returned %s", resp.Status)
	}

	var body struct {
		Results []SearchResult `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}
	if len(body.Results) == 0 {
		return nil, ErrNotFound
	}
	return &body.Results[0], nil
}

// Rating returns the vote average for the best title/year match.
func (c *Client) Rating(ctx context.Context, title string, year int) (float64, error) {
	res, err := c.SearchMovie(ctx, title, year)
	if err != nil {
		return 0, err
	}
	return res.VoteAverage, nil
}
