// Package fetch retrieves release resources over HTTPS into local files.
//
// Downloads stream to a ".partial" sibling and are renamed into place
// only after the full body has been written, so later pipeline stages
// never see a truncated file at the destination path.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/orca-dev/orca-install/internal/config"
	"github.com/orca-dev/orca-install/internal/httputil"
	"github.com/orca-dev/orca-install/internal/log"
	"github.com/orca-dev/orca-install/internal/progress"
)

// DownloadError indicates a transport failure or a non-success response
// from the release host.
type DownloadError struct {
	URL        string
	StatusCode int // 0 when the transport failed before a response
	Err        error
}

func (e *DownloadError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("download %s: unexpected status %d", log.SanitizeURL(e.URL), e.StatusCode)
	}
	return fmt.Sprintf("download %s: %v", log.SanitizeURL(e.URL), e.Err)
}

func (e *DownloadError) Unwrap() error {
	return e.Err
}

type options struct {
	client    *http.Client
	headers   map[string]string
	logger    log.Logger
	progress  bool
	allowHTTP bool
}

// Option configures a fetch.
type Option func(*options)

// WithHeader adds a request header, e.g. an Accept header for content
// negotiation with the release host's API.
func WithHeader(key, value string) Option {
	return func(o *options) {
		o.headers[key] = value
	}
}

// WithClient overrides the HTTP client (for testing).
func WithClient(c *http.Client) Option {
	return func(o *options) {
		o.client = c
	}
}

// WithLogger sets the logger. Defaults to the global logger.
func WithLogger(l log.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithProgress toggles the terminal progress bar. Defaults to on when
// stdout is a terminal.
func WithProgress(enabled bool) Option {
	return func(o *options) {
		o.progress = enabled
	}
}

// WithAllowHTTP permits plain-HTTP URLs. Only tests fetching from local
// loopback servers pass this; release downloads stay HTTPS-only.
func WithAllowHTTP() Option {
	return func(o *options) {
		o.allowHTTP = true
	}
}

// newClient builds the hardened client used for release downloads.
func newClient() *http.Client {
	return httputil.NewSecureClient(httputil.ClientOptions{
		Timeout: config.GetAPITimeout(),
	})
}

// Fetch downloads url into dest. Any non-200 response or transport error
// returns a *DownloadError and leaves no file at dest.
func Fetch(ctx context.Context, url, dest string, opts ...Option) error {
	o := &options{
		headers:  make(map[string]string),
		logger:   log.Default(),
		progress: progress.ShouldShowProgress(),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.client == nil {
		o.client = newClient()
	}

	if !o.allowHTTP && !strings.HasPrefix(url, "https://") {
		return &DownloadError{URL: url, Err: fmt.Errorf("URL must use HTTPS")}
	}

	o.logger.Debug("fetching resource", "url", log.SanitizeURL(url), "dest", dest)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return &DownloadError{URL: url, Err: err}
	}

	// Explicitly request an uncompressed response so the checksum covers
	// the bytes on the wire.
	req.Header.Set("Accept-Encoding", "identity")
	for key, value := range o.headers {
		req.Header.Set(key, value)
	}

	resp, err := o.client.Do(req)
	if err != nil {
		return &DownloadError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &DownloadError{URL: url, StatusCode: resp.StatusCode}
	}

	if encoding := resp.Header.Get("Content-Encoding"); encoding != "" && encoding != "identity" {
		return &DownloadError{URL: url, Err: fmt.Errorf("compressed responses not supported (got %s)", encoding)}
	}

	if err := writeBody(resp, dest, o); err != nil {
		return &DownloadError{URL: url, Err: err}
	}

	o.logger.Debug("fetch completed", "dest", dest)
	return nil
}

// writeBody streams the response body to dest via a partial file and an
// atomic rename.
func writeBody(resp *http.Response, dest string, o *options) error {
	partial := dest + ".partial"

	out, err := os.Create(partial)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	var w io.Writer = out
	var pw *progress.Writer
	if o.progress && resp.ContentLength > 0 {
		pw = progress.NewWriter(out, resp.ContentLength, os.Stdout)
		w = pw
	}

	if _, err := io.Copy(w, resp.Body); err != nil {
		out.Close()
		os.Remove(partial)
		return fmt.Errorf("failed to write file: %w", err)
	}
	if pw != nil {
		pw.Finish()
	}

	if err := out.Close(); err != nil {
		os.Remove(partial)
		return fmt.Errorf("failed to close file: %w", err)
	}

	if err := os.Rename(partial, dest); err != nil {
		os.Remove(partial)
		return fmt.Errorf("failed to finalize download: %w", err)
	}

	return nil
}
