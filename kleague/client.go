package kleague

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"runtime/debug"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/zntus/jbfc-kakao-chatbot/logger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/net/html/charset"
)

var (
	Version = "dev"
	Commit  = "unknown"
)

// TracerName names the tracer upstream request spans are recorded under.
const TracerName = "github.com/zntus/jbfc-kakao-chatbot/kleague"

// DefaultTimeout bounds a single upstream request.
const DefaultTimeout = 10 * time.Second

// Error describes a failed upstream request.
type Error struct {
	URL      string
	Method   string
	Status   int
	Body     string
	TheError error
}

func (e *Error) Error() string {
	if e == nil || e.TheError == nil {
		return ""
	}
	return e.TheError.Error()
}

func (e *Error) Unwrap() error {
	return e.TheError
}

func newError(url, method string, status int, body string, err error) error {
	return errors.Mark(&Error{
		URL:      url,
		Method:   method,
		Status:   status,
		Body:     body,
		TheError: err,
	}, ErrUpstream)
}

// UserAgent identifies the bot, with the VCS revision when available.
func UserAgent() string {
	gitSHA := Commit
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range info.Settings {
			if setting.Key == "vcs.revision" {
				gitSHA = setting.Value
			}
		}
	}
	return "Mozilla/5.0 (compatible; jbfc-kakao-chatbot/" + Version + "; " + gitSHA + ")"
}

// UpstreamObserver is told about every upstream request. Status is 0 when no
// response was received.
type UpstreamObserver func(endpoint string, status int, elapsed time.Duration)

// ClientOptions configures a Client.
type ClientOptions struct {
	Timeout   time.Duration
	UserAgent string
	Logger    logger.Logger
	Observer  UpstreamObserver
	// TracerProvider records one client span per request. Nil uses the
	// global provider.
	TracerProvider trace.TracerProvider
	// Transport overrides the HTTP transport, mostly for tests.
	Transport http.RoundTripper
}

// Client performs upstream requests for the portal and media clients.
type Client struct {
	follow    *http.Client
	noFollow  *http.Client
	userAgent string
	logger    logger.Logger
	observe   UpstreamObserver
	tracer    trace.Tracer
}

// NewClient returns a Client. Zero options fall back to DefaultTimeout,
// UserAgent() and a silent logger.
func NewClient(opts ClientOptions) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = UserAgent()
	}
	if opts.Logger == nil {
		opts.Logger = logger.NewConsoleLogger(logger.LevelNone)
	}
	if opts.TracerProvider == nil {
		opts.TracerProvider = otel.GetTracerProvider()
	}
	transport := opts.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	return &Client{
		follow: &http.Client{Timeout: opts.Timeout, Transport: transport},
		noFollow: &http.Client{
			Timeout:   opts.Timeout,
			Transport: transport,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		userAgent: opts.UserAgent,
		logger:    opts.Logger.WithPrefix("[upstream]"),
		observe:   opts.Observer,
		tracer:    opts.TracerProvider.Tracer(TracerName, trace.WithInstrumentationVersion(Version)),
	}
}

type request struct {
	endpoint string
	method   string
	url      string
	form     url.Values
	header   http.Header
	// noRedirect returns 3xx responses instead of following them.
	noRedirect bool
}

type response struct {
	status int
	header http.Header
	body   []byte
}

// safeBodyPreview returns a truncated, loggable preview of a response body.
func safeBodyPreview(body []byte, contentType string, maxChars int) string {
	if maxChars == 0 {
		maxChars = 200
	}
	lower := strings.ToLower(contentType)
	for _, binaryType := range []string{"image/", "video/", "audio/", "application/octet-stream"} {
		if strings.Contains(lower, binaryType) {
			hash := sha256.Sum256(body)
			return fmt.Sprintf("<binary: %d bytes, sha256=%s>", len(body), hex.EncodeToString(hash[:8]))
		}
	}
	runes := []rune(string(body))
	if len(runes) > maxChars {
		return string(runes[:maxChars]) + fmt.Sprintf("[truncated, total: %d chars]", len(runes))
	}
	return string(runes)
}

// do sends r and returns the charset-decoded body. Any status above 299
// (above 399 with noRedirect) is an error marked ErrUpstream.
func (c *Client) do(ctx context.Context, r request) (*response, error) {
	ctx, span := c.tracer.Start(ctx, r.endpoint,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", r.method),
			attribute.String("url.full", r.url),
		))
	defer span.End()

	fail := func(status int, body string, err error) (*response, error) {
		span.SetStatus(codes.Error, err.Error())
		span.RecordError(err)
		return nil, newError(r.url, r.method, status, body, err)
	}

	var body io.Reader
	if r.form != nil {
		body = strings.NewReader(r.form.Encode())
	}
	req, err := http.NewRequestWithContext(ctx, r.method, r.url, body)
	if err != nil {
		return fail(0, "", fmt.Errorf("error creating request: %w", err))
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept-Language", "ko-KR,ko;q=0.9")
	if r.form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded; charset=UTF-8")
	}
	for k, vals := range r.header {
		for _, v := range vals {
			req.Header.Add(k, v)
		}
	}

	hc := c.follow
	if r.noRedirect {
		hc = c.noFollow
	}
	c.logger.Trace("sending request: %s %s", r.method, r.url)
	started := time.Now()
	resp, err := hc.Do(req)
	if err != nil {
		c.record(r.endpoint, 0, started)
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			span.RecordError(err)
			return nil, err
		}
		return fail(0, "", fmt.Errorf("error sending request: %w", err))
	}
	defer resp.Body.Close()
	c.record(r.endpoint, resp.StatusCode, started)
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	contentType := resp.Header.Get("Content-Type")
	reader, err := charset.NewReader(resp.Body, contentType)
	if err != nil {
		return fail(resp.StatusCode, "", fmt.Errorf("error decoding %q: %w", contentType, err))
	}
	respBody, err := io.ReadAll(reader)
	if err != nil {
		return fail(resp.StatusCode, "", fmt.Errorf("error reading response body: %w", err))
	}
	c.logger.Debug("%s response status: %s, body: %s", r.endpoint, resp.Status, safeBodyPreview(respBody, contentType, 200))

	limit := 299
	if r.noRedirect {
		limit = 399
	}
	if resp.StatusCode > limit {
		return fail(resp.StatusCode, string(respBody), fmt.Errorf("request failed with status (%s)", resp.Status))
	}
	return &response{status: resp.StatusCode, header: resp.Header, body: respBody}, nil
}

func (c *Client) record(endpoint string, status int, started time.Time) {
	if c.observe != nil {
		c.observe(endpoint, status, time.Since(started))
	}
}
