package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	DefaultBaseURL = "https://www.echecs.asso.fr/"

	maxPageSize = 10 * 1024 * 1024
)

// TransportError is a connectivity-level failure: DNS, refused connection,
// timeout, or a broken body read. Callers use it to tell network trouble
// apart from server-side failures.
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// HTTPStatusError is a non-2xx response from the source.
type HTTPStatusError struct {
	URL        string
	StatusCode int
	Status     string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("fetch %s: HTTP %s", e.URL, e.Status)
}

// Client fetches tournament result pages. One GET per cycle, no retries; the
// polling schedule is the retry schedule.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
	}
}

// TournamentURL builds the results page URL for a round. The round is
// zero-padded to two digits, the source rejects single-digit round actions.
func (c *Client) TournamentURL(tournamentID, round int) string {
	return fmt.Sprintf("%sResultats.aspx?URL=Tournois/Id/%d/%d&Action=%02d",
		c.baseURL, tournamentID, tournamentID, round)
}

// FetchPage performs the GET for one cycle and returns the raw markup.
func (c *Client) FetchPage(ctx context.Context, tournamentID, round int) (string, error) {
	url := c.TournamentURL(tournamentID, round)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &TransportError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &HTTPStatusError{URL: url, StatusCode: resp.StatusCode, Status: resp.Status}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPageSize))
	if err != nil {
		return "", &TransportError{URL: url, Err: err}
	}
	return string(data), nil
}
