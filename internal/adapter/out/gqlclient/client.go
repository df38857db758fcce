package gqlclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"myfeed/pkg/logger"

	"github.com/google/uuid"
	"github.com/vektah/gqlparser/v2/gqlerror"
)

var (
	ErrUnexpectedStatus = errors.New("unexpected http status")
	ErrEmptyData        = errors.New("response has no data")
)

// ResponseError carries the errors array of a GraphQL response.
type ResponseError struct {
	Errors gqlerror.List
}

func (e *ResponseError) Error() string {
	return e.Errors.Error()
}

// HasCode reports whether any error carries extensions.code == code.
func (e *ResponseError) HasCode(code string) bool {
	for _, err := range e.Errors {
		if c, _ := err.Extensions["code"].(string); c == code {
			return true
		}
	}
	return false
}

type Client struct {
	endpoint string
	http     *http.Client
	token    string
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

func New(endpoint string, opts ...Option) *Client {
	c := &Client{
		endpoint: endpoint,
		http:     &http.Client{Timeout: 30 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type request struct {
	Query         string         `json:"query"`
	OperationName string         `json:"operationName,omitempty"`
	Variables     map[string]any `json:"variables,omitempty"`
}

type response struct {
	Data   json.RawMessage `json:"data"`
	Errors gqlerror.List   `json:"errors"`
}

// Request performs one round trip and decodes response.data into out (which
// may be nil).
func (c *Client) Request(ctx context.Context, doc Document, vars map[string]any, out any) error {
	body, err := json.Marshal(request{
		Query:         doc.Query,
		OperationName: doc.OperationName,
		Variables:     vars,
	})
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", requestID)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	log := logger.FromContext(ctx)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", doc.OperationName, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	log.Debug("graphql request",
		"operation", doc.OperationName,
		"status", resp.StatusCode,
		"request_id", requestID,
		"duration", time.Since(start),
	)

	var gr response
	if err := json.Unmarshal(raw, &gr); err != nil {
		if resp.StatusCode/100 != 2 {
			return fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
		}
		return fmt.Errorf("decode response: %w", err)
	}
	if len(gr.Errors) > 0 {
		return &ResponseError{Errors: gr.Errors}
	}
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if len(gr.Data) == 0 || string(gr.Data) == "null" {
		return ErrEmptyData
	}
	if err := json.Unmarshal(gr.Data, out); err != nil {
		return fmt.Errorf("decode data: %w", err)
	}
	return nil
}
