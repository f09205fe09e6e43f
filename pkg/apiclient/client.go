package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"vows-and-wishes/pkg/validator"
)

const maxResponseBytes = 1 << 20

// Client talks to the Vows & Wishes HTTP API. It holds no session state:
// calls that need auth take the bearer token explicitly.
type Client struct {
	baseURL    string
	httpClient *http.Client
	validator  *validator.CustomValidator
}

type Option func(*Client)

// WithHTTPClient replaces the default http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the per-request timeout of the default http.Client
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		validator:  validator.NewValidator(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Ping(ctx context.Context) error {
	var out struct {
		OK bool `json:"ok"`
	}
	return c.do(ctx, http.MethodGet, "/api/ping", "", nil, &out)
}

// ListServices sends only the filters that are set
func (c *Client) ListServices(ctx context.Context, filter ServiceFilter) ([]Service, error) {
	q := url.Values{}
	if filter.Category != "" {
		q.Set("category", filter.Category)
	}
	if filter.Location != "" {
		q.Set("location", filter.Location)
	}
	if filter.Search != "" {
		q.Set("search", filter.Search)
	}

	path := "/api/services"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var services []Service
	if err := c.do(ctx, http.MethodGet, path, "", nil, &services); err != nil {
		return nil, err
	}
	for i := range services {
		if err := c.validator.Validate(&services[i]); err != nil {
			return nil, &DecodeError{Endpoint: path, Err: err}
		}
	}
	return services, nil
}

func (c *Client) GetService(ctx context.Context, serviceID string) (*Service, error) {
	if strings.TrimSpace(serviceID) == "" {
		return nil, ErrEmptyServiceID
	}
	var svc Service
	if err := c.do(ctx, http.MethodGet, "/api/services/"+url.PathEscape(serviceID), "", nil, &svc); err != nil {
		return nil, err
	}
	return &svc, nil
}

func (c *Client) Availability(ctx context.Context, serviceID string) (*Availability, error) {
	if strings.TrimSpace(serviceID) == "" {
		return nil, ErrEmptyServiceID
	}
	var out Availability
	if err := c.do(ctx, http.MethodGet, "/api/appointments/availability/"+url.PathEscape(serviceID), "", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Book submits a reservation; token may be empty for a guest booking
func (c *Client) Book(ctx context.Context, token string, req BookRequest) (*BookingResult, error) {
	if strings.TrimSpace(req.ServiceID) == "" {
		return nil, ErrEmptyServiceID
	}
	var out BookingResult
	if err := c.do(ctx, http.MethodPost, "/api/appointments/book", token, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	var out AuthResult
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/login", "", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Register(ctx context.Context, req RegisterRequest) (*AuthResult, error) {
	var out AuthResult
	if err := c.do(ctx, http.MethodPost, "/api/register", "", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Profile(ctx context.Context, token string) (*User, error) {
	var out User
	if err := c.do(ctx, http.MethodGet, "/api/profile", token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateProfile(ctx context.Context, token string, req UpdateProfileRequest) (*User, error) {
	var out profileResult
	if err := c.do(ctx, http.MethodPut, "/api/update-profile", token, req, &out); err != nil {
		return nil, err
	}
	return out.User, nil
}

func (c *Client) Logout(ctx context.Context, token string) error {
	var out messageResult
	return c.do(ctx, http.MethodPost, "/api/logout", token, nil, &out)
}

func (c *Client) Chat(ctx context.Context, token, serviceID string) (*ChatLink, error) {
	if strings.TrimSpace(serviceID) == "" {
		return nil, ErrEmptyServiceID
	}
	var out ChatLink
	if err := c.do(ctx, http.MethodGet, "/api/chat/"+url.PathEscape(serviceID), token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// InitData asks the backend to seed its sample catalog; it is a no-op once seeded
func (c *Client) InitData(ctx context.Context) (*SeedResult, error) {
	var out SeedResult
	if err := c.do(ctx, http.MethodPost, "/api/init-data", "", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// do sends the request and decodes a 2xx body into out, validating structs.
// Non-2xx answers become *APIError.
func (c *Client) do(ctx context.Context, method, path, token string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("read %s %s: %w", method, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{StatusCode: resp.StatusCode, Detail: parseDetail(raw)}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &DecodeError{Endpoint: path, Err: err}
	}
	if _, isSlice := out.(*[]Service); isSlice {
		return nil
	}
	if err := c.validator.Validate(out); err != nil {
		return &DecodeError{Endpoint: path, Err: err}
	}
	return nil
}

// parseDetail pulls a string "detail" out of an error body, then a string "message"
func parseDetail(raw []byte) string {
	var body struct {
		Detail  json.RawMessage `json:"detail"`
		Message json.RawMessage `json:"message"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}
	for _, field := range []json.RawMessage{body.Detail, body.Message} {
		var text string
		if len(field) > 0 && json.Unmarshal(field, &text) == nil && text != "" {
			return text
		}
	}
	return ""
}
