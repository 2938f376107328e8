// Package grobid talks to the external document-structuring service that
// converts PDFs into TEI markup, and parses that markup into typed citation
// data.
package grobid

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/time/rate"

	"github.com/citegraph/citecheck/internal/citation"
)

const (
	// DefaultBaseURL is the extraction service's default endpoint.
	DefaultBaseURL = "http://localhost:8070"

	// DefaultTimeout bounds one full-document extraction. Large PDFs can
	// take tens of seconds to segment.
	DefaultTimeout = 2 * time.Minute

	// RateLimit caps concurrent pressure on the service; extraction is
	// CPU-bound on the service side.
	RateLimit = 2.0

	apiPathFulltext = "/api/processFulltextDocument"
	apiPathIsAlive  = "/api/isalive"
)

// Client is a rate-limited HTTP client for the extraction service.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithBaseURL sets the service endpoint.
func WithBaseURL(url string) ClientOption {
	return func(c *Client) {
		if url != "" {
			c.baseURL = url
		}
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates an extraction-service client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(RateLimit), 1),
		baseURL:    DefaultBaseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// IsAlive checks whether the service is reachable and answering.
func (c *Client) IsAlive(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+apiPathIsAlive, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return classifyTransportError(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return &APIError{StatusCode: resp.StatusCode}
	}
	return nil
}

// ProcessFulltext uploads a PDF and returns the service's TEI markup.
func (c *Client) ProcessFulltext(ctx context.Context, pdfPath string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	f, err := os.Open(pdfPath)
	if err != nil {
		return nil, fmt.Errorf("opening pdf: %w", err)
	}
	defer f.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("input", filepath.Base(pdfPath))
	if err != nil {
		return nil, fmt.Errorf("building upload form: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, fmt.Errorf("reading pdf: %w", err)
	}
	// Ask for citation coordinates so contexts carry page positions.
	if err := writer.WriteField("teiCoordinates", "ref"); err != nil {
		return nil, fmt.Errorf("building upload form: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("building upload form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+apiPathFulltext, &body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Accept", "application/xml")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classifyTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &APIError{StatusCode: resp.StatusCode, Message: string(bytes.TrimSpace(msg))}
	}

	tei, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	return tei, nil
}

// ExtractCitations uploads a PDF and parses the result into citation data.
func (c *Client) ExtractCitations(ctx context.Context, pdfPath string) (*citation.Data, error) {
	tei, err := c.ProcessFulltext(ctx, pdfPath)
	if err != nil {
		return nil, err
	}
	return ParseTEI(tei), nil
}

// classifyTransportError distinguishes "service down" from "service too
// slow"; the two carry different operator guidance.
func classifyTransportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}
