// Package client talks to the placeplanner HTTP API.
package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"placeplanner/shared/go/models"
)

// ErrNotFound is returned for 404 responses.
var ErrNotFound = errors.New("not found")

// StatusError is any other non-2xx response.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d", e.Code)
	}
	return fmt.Sprintf("server returned %d: %s", e.Code, e.Message)
}

// Client is a placeplanner API client. Calls that take a Scope authenticate
// as scope.UserID; the others use the client's own user.
type Client struct {
	baseURL    string
	user       string
	httpClient *http.Client
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New creates a client for the server at baseURL acting as user.
func New(baseURL, user string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		user:    user,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListPlaces returns catalog entries matching q.
func (c *Client) ListPlaces(ctx context.Context, q models.CatalogQuery) ([]models.CatalogEntry, error) {
	params := url.Values{}
	if q.Category != "" {
		params.Set("category", q.Category)
	}
	if q.Search != "" {
		params.Set("q", q.Search)
	}
	if q.Near != nil {
		params.Set("lat", strconv.FormatFloat(q.Near.Lat, 'f', -1, 64))
		params.Set("lon", strconv.FormatFloat(q.Near.Lon, 'f', -1, 64))
	}

	var out struct {
		Places []models.CatalogEntry `json:"places"`
	}
	if err := c.do(ctx, c.user, http.MethodGet, "/places", params, nil, &out); err != nil {
		return nil, err
	}
	return out.Places, nil
}

// GetPlace returns one catalog place.
func (c *Client) GetPlace(ctx context.Context, id string) (models.Place, error) {
	var out struct {
		Place models.Place `json:"place"`
	}
	if err := c.do(ctx, c.user, http.MethodGet, "/places/"+url.PathEscape(id), nil, nil, &out); err != nil {
		return models.Place{}, err
	}
	return out.Place, nil
}

// Categories lists the distinct catalog categories.
func (c *Client) Categories(ctx context.Context) ([]string, error) {
	var out struct {
		Categories []string `json:"categories"`
	}
	if err := c.do(ctx, c.user, http.MethodGet, "/places/categories", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Categories, nil
}

// ListUserPlaces returns the saved places of scope.
func (c *Client) ListUserPlaces(ctx context.Context, scope models.Scope) ([]models.UserPlace, error) {
	var out struct {
		Places []models.UserPlace `json:"places"`
	}
	if err := c.do(ctx, scope.UserID, http.MethodGet, placesPath(scope), nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Places, nil
}

// CreateUserPlace saves place into scope. Saving a duplicate returns the
// stored record.
func (c *Client) CreateUserPlace(ctx context.Context, scope models.Scope, place models.Place) (models.UserPlace, error) {
	var out struct {
		Place models.UserPlace `json:"place"`
	}
	body := struct {
		Place models.Place `json:"place"`
	}{Place: place}
	if err := c.do(ctx, scope.UserID, http.MethodPost, placesPath(scope), nil, body, &out); err != nil {
		return models.UserPlace{}, err
	}
	return out.Place, nil
}

// PatchUserPlace writes explicit values into a saved place.
func (c *Client) PatchUserPlace(ctx context.Context, scope models.Scope, id string, patch models.UserPlacePatch) (models.UserPlace, error) {
	var out struct {
		Place models.UserPlace `json:"place"`
	}
	if err := c.do(ctx, scope.UserID, http.MethodPatch, placesPath(scope)+"/"+url.PathEscape(id), nil, patch, &out); err != nil {
		return models.UserPlace{}, err
	}
	return out.Place, nil
}

// DeleteUserPlace removes a saved place.
func (c *Client) DeleteUserPlace(ctx context.Context, scope models.Scope, id string) error {
	return c.do(ctx, scope.UserID, http.MethodDelete, placesPath(scope)+"/"+url.PathEscape(id), nil, nil, nil)
}

// ListCollections returns the client user's collections, default first.
func (c *Client) ListCollections(ctx context.Context) ([]models.Collection, error) {
	var out struct {
		Collections []models.Collection `json:"collections"`
	}
	if err := c.do(ctx, c.user, http.MethodGet, "/collections", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Collections, nil
}

// CreateCollection adds a named collection.
func (c *Client) CreateCollection(ctx context.Context, name string) (models.Collection, error) {
	var out struct {
		Collection models.Collection `json:"collection"`
	}
	body := models.CollectionRequest{Name: name}
	if err := c.do(ctx, c.user, http.MethodPost, "/collections", nil, body, &out); err != nil {
		return models.Collection{}, err
	}
	return out.Collection, nil
}

// DeleteCollection removes a named collection and its places.
func (c *Client) DeleteCollection(ctx context.Context, id string) error {
	return c.do(ctx, c.user, http.MethodDelete, "/collections/"+url.PathEscape(id), nil, nil, nil)
}

func placesPath(scope models.Scope) string {
	if scope.IsDefault() {
		return "/user-places"
	}
	return "/collections/" + url.PathEscape(scope.CollectionID()) + "/places"
}

func (c *Client) do(ctx context.Context, user, method, path string, params url.Values, body, result any) error {
	apiURL := c.baseURL + path
	if len(params) > 0 {
		apiURL += "?" + params.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, apiURL, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if user != "" {
		req.Header.Set("Authorization", "Bearer "+user)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr struct {
			Error string `json:"error"`
		}
		data, _ := io.ReadAll(resp.Body)
		if json.Unmarshal(data, &apiErr) != nil || apiErr.Error == "" {
			apiErr.Error = strings.TrimSpace(string(data))
		}
		return &StatusError{Code: resp.StatusCode, Message: apiErr.Error}
	}

	if result == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
