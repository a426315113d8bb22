// Package client is a typed HTTP client for the academy API.
// Authenticated calls take an explicit Session; the client holds no token state.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	defaultTimeout = 30 * time.Second
	apiPrefix      = "/api/admin/"
	fileFormKey    = "image"
)

var ErrNoSession = errors.New("session token is empty")

// APIError is a non-2xx answer of the API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (s Session) Expired(now time.Time) bool {
	return s.Token == "" || (!s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt))
}

type Record map[string]any

// ID returns the numeric id of the record, 0 when missing.
func (r Record) ID() int {
	switch id := r["id"].(type) {
	case float64:
		return int(id)
	case json.Number:
		n, _ := id.Int64()
		return int(n)
	}
	return 0
}

type File struct {
	Name        string
	ContentType string
	Body        io.Reader
}

type ListOptions struct {
	Limit  int
	Offset int
}

type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
}

func New(baseURL string, opts ...Option) (*Client, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("base url must be absolute: %s", baseURL)
	}

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout:   defaultTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		userAgent: "academy-client",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) Login(ctx context.Context, username, password string) (Session, error) {
	body, err := json.Marshal(map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return Session{}, err
	}

	var sess Session
	if err := c.do(ctx, http.MethodPost, apiPrefix+"login", nil, bytes.NewReader(body), "application/json", &sess); err != nil {
		return Session{}, err
	}
	return sess, nil
}

// Verify returns the username the session belongs to.
func (c *Client) Verify(ctx context.Context, sess Session) (string, error) {
	if sess.Token == "" {
		return "", ErrNoSession
	}
	var resp struct {
		Username string `json:"username"`
	}
	if err := c.do(ctx, http.MethodGet, apiPrefix+"verify", &sess, nil, "", &resp); err != nil {
		return "", err
	}
	return resp.Username, nil
}

func (c *Client) List(ctx context.Context, resource string, opts ListOptions) ([]Record, error) {
	path := apiPrefix + url.PathEscape(resource)
	query := url.Values{}
	if opts.Limit > 0 {
		query.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Offset > 0 {
		query.Set("offset", strconv.Itoa(opts.Offset))
	}
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	var records []Record
	if err := c.do(ctx, http.MethodGet, path, nil, nil, "", &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (c *Client) Get(ctx context.Context, resource string, id int) (Record, error) {
	var rec Record
	if err := c.do(ctx, http.MethodGet, recordPath(resource, id), nil, nil, "", &rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (c *Client) Create(ctx context.Context, sess Session, resource string, fields map[string]any) (Record, error) {
	return c.sendJSON(ctx, sess, http.MethodPost, apiPrefix+url.PathEscape(resource), fields)
}

func (c *Client) Update(ctx context.Context, sess Session, resource string, id int, fields map[string]any) (Record, error) {
	return c.sendJSON(ctx, sess, http.MethodPut, recordPath(resource, id), fields)
}

// CreateWithFile sends the fields and the file as a multipart form.
func (c *Client) CreateWithFile(ctx context.Context, sess Session, resource string, fields map[string]string, file File) (Record, error) {
	return c.sendMultipart(ctx, sess, http.MethodPost, apiPrefix+url.PathEscape(resource), fields, file)
}

func (c *Client) UpdateWithFile(ctx context.Context, sess Session, resource string, id int, fields map[string]string, file File) (Record, error) {
	return c.sendMultipart(ctx, sess, http.MethodPut, recordPath(resource, id), fields, file)
}

func (c *Client) Delete(ctx context.Context, sess Session, resource string, id int) error {
	if sess.Token == "" {
		return ErrNoSession
	}
	return c.do(ctx, http.MethodDelete, recordPath(resource, id), &sess, nil, "", nil)
}

func (c *Client) sendJSON(ctx context.Context, sess Session, method, path string, fields map[string]any) (Record, error) {
	if sess.Token == "" {
		return nil, ErrNoSession
	}
	body, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("marshal fields: %w", err)
	}

	var rec Record
	if err := c.do(ctx, method, path, &sess, bytes.NewReader(body), "application/json", &rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (c *Client) sendMultipart(
	ctx context.Context,
	sess Session,
	method, path string,
	fields map[string]string,
	file File,
) (Record, error) {
	if sess.Token == "" {
		return nil, ErrNoSession
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			return nil, fmt.Errorf("write field %s: %w", name, err)
		}
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, fileFormKey, file.Name))
	if file.ContentType != "" {
		header.Set("Content-Type", file.ContentType)
	}
	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, fmt.Errorf("create file part: %w", err)
	}
	if _, err := io.Copy(part, file.Body); err != nil {
		return nil, fmt.Errorf("copy file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	var rec Record
	if err := c.do(ctx, method, path, &sess, &buf, writer.FormDataContentType(), &rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (c *Client) do(
	ctx context.Context,
	method, path string,
	sess *Session,
	body io.Reader,
	contentType string,
	out any,
) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if sess != nil {
		req.Header.Set("Authorization", "Bearer "+sess.Token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		apiErr.Message = http.StatusText(resp.StatusCode)
		return apiErr
	}

	var body struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(raw, &body) == nil && body.Error != "" {
		apiErr.Message = body.Error
	} else if text := strings.TrimSpace(string(raw)); text != "" {
		apiErr.Message = text
	} else {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}

func recordPath(resource string, id int) string {
	return apiPrefix + url.PathEscape(resource) + "/" + strconv.Itoa(id)
}
