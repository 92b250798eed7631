package apod

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"nasapuff"
	"nasapuff/pkg/consts"
)

// ErrNoURL is returned when a successful response carries no url field.
var ErrNoURL = errors.New("apod: response has no url")

// StatusError is returned when the APOD API answers with a non-2xx status.
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("apod: unexpected status %s", e.Status)
}

// Client fetches today's record from the APOD API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// NewClient builds a client against baseURL. A nil httpClient means http.DefaultClient.
func NewClient(httpClient *http.Client, baseURL, apiKey string) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{httpClient: httpClient, baseURL: baseURL, apiKey: apiKey}
}

// Fetch performs one GET with the api key as query parameter and decodes the body.
// No retries: every failure is returned to the caller.
func (c *Client) Fetch(ctx context.Context) (*nasapuff.ApodModel, error) {

	u, err := makeRequest(c.baseURL, map[string]string{consts.ParamApiKey: c.apiKey})
	if err != nil {
		return nil, fmt.Errorf("apod: build request url: %w", err)
	}

	return getMetadata(ctx, c.httpClient, u)
}

// makeRequest adds params to the query of baseUrl.
func makeRequest(baseUrl string, params map[string]string) (string, error) {
	ur, err := url.Parse(baseUrl)
	if err != nil {
		return "", err
	}

	q := ur.Query()
	for k, v := range params {
		q.Set(k, v)
	}

	ur.RawQuery = q.Encode()
	return ur.String(), nil
}

func getMetadata(ctx context.Context, hc *http.Client, u string) (*nasapuff.ApodModel, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	resp, err := hc.Do(req)
	if err != nil {
		return nil, err
	}

	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return nil, &StatusError{Code: resp.StatusCode, Status: resp.Status}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	// null bodies and records without a string url decode without error
	var check struct {
		URL *string `json:"url"`
	}
	if err := json.Unmarshal(body, &check); err != nil {
		return nil, fmt.Errorf("apod: decode body: %w", err)
	}
	if check.URL == nil {
		return nil, ErrNoURL
	}

	var metadata nasapuff.ApodModel
	if err := json.Unmarshal(body, &metadata); err != nil {
		return nil, fmt.Errorf("apod: decode body: %w", err)
	}

	return &metadata, nil
}
