// Package client provides a Go client SDK for the Homebase API.
//
// Example usage:
//
//	c := client.New("http://localhost:8080")
//
//	user, err := c.Login(ctx, "admin@example.com", "secret")
//
//	contacts, err := c.Contacts().List(ctx)
//
//	created, err := c.Notes().Create(ctx, client.Note{
//	    Title:   "Kickoff",
//	    Content: "Spoke with @Client A about scope.",
//	})
//
// Authentication is cookie-based: New installs a cookie jar so the
// session cookie set by Login rides along on subsequent requests. Use
// WithToken for non-interactive API access instead.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"github.com/homebasehq/homebase/validate"
)

// Client communicates with the Homebase REST API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// Option configures the Client.
type Option func(*Client)

// WithToken sets a bearer token for authentication, bypassing cookie
// sessions.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// WithHTTPClient sets a custom http.Client. The caller is responsible
// for its cookie jar if session auth is wanted.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithTimeout sets the default request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// New creates a Homebase API client.
func New(baseURL string, opts ...Option) *Client {
	jar, _ := cookiejar.New(nil)
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			Jar:     jar,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// APIError is a non-2xx response from the API. Validation and
// uniqueness rejections carry structured field errors; everything else
// carries the server's error message.
type APIError struct {
	StatusCode int
	Message    string
	Errors     []validate.FieldError
}

func (e *APIError) Error() string {
	if len(e.Errors) > 0 {
		return fmt.Sprintf("api error %d: %s: %s", e.StatusCode, e.Errors[0].Field, e.Errors[0].Message)
	}
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// FieldErrors returns the structured field errors, if any.
func (e *APIError) FieldErrors() []validate.FieldError {
	return e.Errors
}

// dateLayouts are the accepted date input formats, first match wins.
var dateLayouts = []string{"2006-01-02", "01/02/2006", "2006/01/02", time.RFC3339}

// NormalizeDate parses a user-entered date string in any accepted
// layout.
func NormalizeDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// ---- Internal helpers ----

func (c *Client) buildRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

func (c *Client) do(req *http.Request, target any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("performing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}

	if resp.StatusCode == http.StatusNoContent || target == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, body any, target any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
		reader = strings.NewReader(string(b))
	}

	req, err := c.buildRequest(ctx, method, path, reader)
	if err != nil {
		return err
	}
	return c.do(req, target)
}

func decodeError(resp *http.Response) error {
	bodyBytes, _ := io.ReadAll(resp.Body)

	var fieldBody struct {
		Errors []validate.FieldError `json:"errors"`
	}
	if err := json.Unmarshal(bodyBytes, &fieldBody); err == nil && len(fieldBody.Errors) > 0 {
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    resp.Status,
			Errors:     fieldBody.Errors,
		}
	}

	var env struct {
		Error string `json:"error"`
	}
	_ = json.Unmarshal(bodyBytes, &env)
	msg := env.Error
	if msg == "" {
		msg = resp.Status
	}
	return &APIError{StatusCode: resp.StatusCode, Message: msg}
}
