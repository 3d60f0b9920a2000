// Package azure runs recognition with the Azure AI Document Intelligence
// read model. A page raster is uploaded as PNG, and the analyze operation
// is polled until it settles.
package azure

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/time/rate"

	"github.com/nao1215/pageocr/internal/model"
	"github.com/nao1215/pageocr/internal/ocr"
	"github.com/nao1215/pageocr/internal/render"
)

// Name is the engine name.
const Name = "azure"

var (
	// ErrOperationFailed is returned when the analyze operation ends in a
	// state other than succeeded.
	ErrOperationFailed = errors.New("analyze operation failed")

	// ErrUnexpectedStatus is returned for an HTTP status the protocol does
	// not allow at that point.
	ErrUnexpectedStatus = errors.New("unexpected status")

	// ErrMissingOperation is returned when an accepted request carries no
	// Operation-Location header.
	ErrMissingOperation = errors.New("missing operation location")

	// ErrInvalidEndpoint is returned for an empty or malformed endpoint.
	ErrInvalidEndpoint = errors.New("invalid endpoint")
)

var _ ocr.Engine = (*Client)(nil)

// Client implements ocr.Engine against Document Intelligence.
type Client struct {
	client *http.Client
	logger *slog.Logger

	endpoint     string
	key          string
	apiVersion   string
	model        string
	pollInterval time.Duration
	timeout      time.Duration

	// The JSON and text steps of a page share one raster; the analysis of
	// the most recent raster is reused so the page is uploaded once.
	mu         sync.Mutex
	lastImage  *image.RGBA
	lastLocale string
	lastResult *AnalyzeResult
}

// Option configures a Client.
type Option func(*Client)

// WithKey sets the subscription key.
func WithKey(key string) Option {
	return func(c *Client) { c.key = key }
}

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.client = hc
		}
	}
}

// WithAPIVersion sets the api-version query parameter.
func WithAPIVersion(v string) Option {
	return func(c *Client) {
		if v != "" {
			c.apiVersion = v
		}
	}
}

// WithModel sets the analyze model, e.g. prebuilt-read.
func WithModel(m string) Option {
	return func(c *Client) {
		if m != "" {
			c.model = m
		}
	}
}

// WithPollInterval sets the minimum delay between result polls.
func WithPollInterval(d time.Duration) Option {
	return func(c *Client) {
		if d >= 0 {
			c.pollInterval = d
		}
	}
}

// WithTimeout bounds one analysis, upload and polling included.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a client for the resource at endpoint.
func New(endpoint string, options ...Option) (*Client, error) {
	u, err := url.Parse(endpoint)
	if endpoint == "" || err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidEndpoint, endpoint)
	}

	c := &Client{
		client: http.DefaultClient,
		logger: slog.Default(),

		endpoint:     strings.TrimRight(endpoint, "/"),
		apiVersion:   "2024-11-30",
		model:        "prebuilt-read",
		pollInterval: time.Second,
		timeout:      2 * time.Minute,
	}

	for _, option := range options {
		option(c)
	}

	return c, nil
}

// Name implements ocr.Engine.
func (c *Client) Name() string { return Name }

// Close implements ocr.Engine.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lastImage, c.lastResult = nil, nil
	return nil
}

// RecognizeText implements ocr.TranscriptRecognizer.
func (c *Client) RecognizeText(ctx context.Context, img image.Image, locales []language.Tag) (string, error) {
	result, err := c.analyze(ctx, img, locales)
	if err != nil {
		return "", err
	}
	return result.Content, nil
}

// RecognizeRegions implements ocr.RegionRecognizer. Each line of the first
// page is a region with one candidate.
func (c *Client) RecognizeRegions(ctx context.Context, img image.Image, locales []language.Tag) ([]ocr.Region, error) {
	result, err := c.analyze(ctx, img, locales)
	if err != nil {
		return nil, err
	}
	if len(result.Pages) == 0 {
		return []ocr.Region{}, nil
	}

	b := img.Bounds()
	return regionsFromPage(result.Pages[0], model.Size{Width: b.Dx(), Height: b.Dy()}), nil
}

func (c *Client) analyze(ctx context.Context, img image.Image, locales []language.Tag) (*AnalyzeResult, error) {
	locale := ""
	if len(locales) > 0 {
		locale = locales[0].String()
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	rgba, _ := img.(*image.RGBA)
	if c.lastResult != nil && rgba != nil && c.lastImage == rgba && c.lastLocale == locale {
		c.logger.Debug("reusing analysis of current raster")
		return c.lastResult, nil
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	data, err := render.EncodePNG(img)
	if err != nil {
		return nil, err
	}

	operationURL, err := c.submit(ctx, data, locale)
	if err != nil {
		return nil, err
	}

	result, err := c.poll(ctx, operationURL)
	if err != nil {
		return nil, err
	}

	c.lastImage, c.lastLocale, c.lastResult = rgba, locale, result
	return result, nil
}

func (c *Client) submit(ctx context.Context, data []byte, locale string) (string, error) {
	u, err := url.Parse(c.endpoint + "/documentintelligence/documentModels/" + c.model + ":analyze")
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidEndpoint, err)
	}

	query := u.Query()
	query.Set("api-version", c.apiVersion)
	if locale != "" {
		query.Set("locale", locale)
	}
	u.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "image/png")
	req.Header.Set("Ocp-Apim-Subscription-Key", c.key)

	c.logger.Debug("submitting analyze request",
		"endpoint", c.endpoint, "model", c.model, "bytes", len(data))

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("submit analyze request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		return "", convertError(resp)
	}

	operationURL := resp.Header.Get("Operation-Location")
	if operationURL == "" {
		return "", ErrMissingOperation
	}
	return operationURL, nil
}

func (c *Client) poll(ctx context.Context, operationURL string) (*AnalyzeResult, error) {
	// rate.Every(0) is rate.Inf, so a zero interval polls back to back.
	limiter := rate.NewLimiter(rate.Every(c.pollInterval), 1)

	for {
		if err := wait(ctx, limiter.Reserve().Delay()); err != nil {
			return nil, fmt.Errorf("wait for analyze result: %w", err)
		}

		operation, err := c.fetch(ctx, operationURL)
		if err != nil {
			return nil, err
		}

		switch operation.Status {
		case OperationStatusRunning, OperationStatusNotStarted:
			c.logger.Debug("analyze operation pending", "status", operation.Status)
			continue
		case OperationStatusSucceeded:
			return &operation.Result, nil
		default:
			if operation.Error != nil {
				return nil, fmt.Errorf("%w: %s: %s: %s", ErrOperationFailed,
					operation.Status, operation.Error.Code, operation.Error.Message)
			}
			return nil, fmt.Errorf("%w: %s", ErrOperationFailed, operation.Status)
		}
	}
}

// wait sleeps for d or until ctx is done.
func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (c *Client) fetch(ctx context.Context, operationURL string) (*AnalyzeOperation, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, operationURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", c.key)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("poll analyze result: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, convertError(resp)
	}

	var operation AnalyzeOperation
	if err := json.NewDecoder(resp.Body).Decode(&operation); err != nil {
		return nil, fmt.Errorf("decode analyze result: %w", err)
	}
	return &operation, nil
}

// regionsFromPage converts the lines of an analyzed page to regions. The
// service reports polygons in page units, which for image input are the
// raster's pixels; they are normalized against the page size it reports.
func regionsFromPage(page Page, raster model.Size) []ocr.Region {
	pageSize := model.Size{Width: int(math.Round(page.Width)), Height: int(math.Round(page.Height))}
	if pageSize.Width <= 0 || pageSize.Height <= 0 {
		pageSize = raster
	}

	regions := make([]ocr.Region, 0, len(page.Lines))
	for _, line := range page.Lines {
		cand := ocr.Candidate{
			Text:       line.Content,
			Confidence: lineConfidence(line, page.Words),
		}
		if r, ok := polygonBounds(line.Polygon); ok {
			n := ocr.FromPixelRect(r, pageSize)
			cand.Box = &n
		}
		regions = append(regions, ocr.Region{Candidates: []ocr.Candidate{cand}})
	}
	return regions
}

// polygonBounds returns the axis-aligned bounds of a flat x,y polygon.
func polygonBounds(polygon []float64) (image.Rectangle, bool) {
	if len(polygon) < 4 || len(polygon)%2 != 0 {
		return image.Rectangle{}, false
	}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for i := 0; i < len(polygon); i += 2 {
		x, y := polygon[i], polygon[i+1]
		minX, maxX = math.Min(minX, x), math.Max(maxX, x)
		minY, maxY = math.Min(minY, y), math.Max(maxY, y)
	}

	r := image.Rect(
		int(math.Floor(minX)), int(math.Floor(minY)),
		int(math.Ceil(maxX)), int(math.Ceil(maxY)),
	)
	return r, !r.Empty()
}

// lineConfidence averages the confidence of the words inside the line's spans.
func lineConfidence(line Line, words []Word) float64 {
	var sum float64
	var n int
	for _, w := range words {
		for _, s := range line.Spans {
			if w.Span.Offset >= s.Offset && w.Span.Offset+w.Span.Length <= s.Offset+s.Length {
				sum += w.Confidence
				n++
				break
			}
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

func convertError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	var body ErrorResponse
	if err := json.Unmarshal(data, &body); err == nil && body.Error.Message != "" {
		return fmt.Errorf("%w %d: %s: %s", ErrUnexpectedStatus, resp.StatusCode, body.Error.Code, body.Error.Message)
	}
	if len(data) == 0 {
		return fmt.Errorf("%w %d: %s", ErrUnexpectedStatus, resp.StatusCode, http.StatusText(resp.StatusCode))
	}
	return fmt.Errorf("%w %d: %s", ErrUnexpectedStatus, resp.StatusCode, strings.TrimSpace(string(data)))
}
