// Package client uploads files to the analysis service and turns every
// outcome into a model.Result.
package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/helmcode/codelinter/pkg/model"
	"github.com/helmcode/codelinter/pkg/parser"
)

// FileField is the multipart field the service reads the upload from.
const FileField = "file"

// DefaultMaxResponseBytes bounds how much of a response body is read.
const DefaultMaxResponseBytes = 32 << 20

type Client struct {
	endpoint string
	client   *http.Client
	logger   *log.Logger
	maxBody  int64
}

type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. Its timeout, if any,
// is the only timeout applied to a submission.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.client = hc }
}

// WithTimeout sets the HTTP client timeout. Zero means no timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.client.Timeout = d }
}

// WithLogger sends request diagnostics to l.
func WithLogger(l *log.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithMaxResponseBytes caps the response body size. Larger bodies are
// treated as unparseable.
func WithMaxResponseBytes(n int64) Option {
	return func(c *Client) { c.maxBody = n }
}

func New(endpoint string, opts ...Option) *Client {
	c := &Client{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 60 * time.Second},
		logger:   log.New(io.Discard, "", 0),
		maxBody:  DefaultMaxResponseBytes,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Endpoint returns the URL submissions are posted to.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Submit uploads file and waits for the service's verdict. It never returns
// an error: transport failures and unreadable responses become
// NetworkErrorResult, and unrecognized JSON becomes a client or internal
// error result depending on the HTTP status. No retry is attempted.
func (c *Client) Submit(ctx context.Context, file model.File) model.Result {
	if err := file.Validate(); err != nil {
		return model.FileClientErrorResult{Description: err.Error()}
	}

	body, contentType, err := encodeUpload(file)
	if err != nil {
		c.logger.Printf("encode upload %s: %v", file.Name, err)
		return model.FileClientErrorResult{Description: err.Error()}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, body)
	if err != nil {
		c.logger.Printf("build request: %v", err)
		return model.NetworkErrorResult{}
	}
	requestID := uuid.NewString()
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)

	c.logger.Printf("[%s] POST %s (%s, %d bytes)", requestID, c.endpoint, file.Name, file.Size())
	start := time.Now()

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Printf("[%s] request failed after %s: %v", requestID, time.Since(start).Round(time.Millisecond), err)
		return model.NetworkErrorResult{}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		c.logger.Printf("[%s] read response: %v", requestID, err)
		return model.NetworkErrorResult{}
	}
	if int64(len(data)) > c.maxBody {
		c.logger.Printf("[%s] response exceeds %d bytes", requestID, c.maxBody)
		return model.NetworkErrorResult{}
	}
	c.logger.Printf("[%s] HTTP %d in %s", requestID, resp.StatusCode, time.Since(start).Round(time.Millisecond))

	return c.interpret(requestID, resp, data)
}

func (c *Client) interpret(requestID string, resp *http.Response, data []byte) model.Result {
	result, err := parser.ParseResult(data)
	if err == nil {
		return result
	}
	c.logger.Printf("[%s] %v", requestID, err)

	var unknown *parser.UnknownTypeError
	switch {
	case errors.Is(err, parser.ErrNotJSON):
		return model.NetworkErrorResult{}
	case errors.As(err, &unknown):
		desc := unknown.Message
		if desc == "" {
			desc = fmt.Sprintf("unexpected response (HTTP %s): %v", resp.Status, err)
		}
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return model.FileClientErrorResult{Description: desc}
		}
		return model.InternalErrorResult{Description: desc}
	default:
		return model.InternalErrorResult{Description: err.Error()}
	}
}

func encodeUpload(file model.File) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile(FileField, filepath.Base(file.Name))
	if err != nil {
		return nil, "", fmt.Errorf("client: create form file: %w", err)
	}
	if _, err := part.Write(file.Data); err != nil {
		return nil, "", fmt.Errorf("client: write form file: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("client: close multipart writer: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}
