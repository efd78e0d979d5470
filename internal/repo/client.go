// Package repo is the network edge of the installer. It performs GET requests
// against the MeldMC Maven repository and returns raw bytes; parsing and
// fallback policy live with the callers.
package repo

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	// DefaultTimeout bounds a single fetch, connect to last byte.
	DefaultTimeout = 30 * time.Second

	maxRedirects = 10
)

// UserAgent is sent with every request. cmd sets it from build info.
var UserAgent = "meldmc-installer/dev"

// ErrNetwork matches every *NetworkError via errors.Is.
var ErrNetwork = errors.New("network error")

// NetworkError reports a failed or non-200 fetch.
type NetworkError struct {
	URL        string
	StatusCode int // 0 when the request never got a response
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrNetwork) match any NetworkError.
func (e *NetworkError) Is(target error) bool { return target == ErrNetwork }

// Options configures a Client. Zero value uses DefaultTimeout.
type Options struct {
	Timeout time.Duration
	// HTTPClient, if set, is wrapped instead of a fresh http.Client.
	HTTPClient *http.Client
}

// Client fetches repository documents. Safe for concurrent use.
type Client struct {
	rc *resty.Client
}

// NewClient returns a client with redirects enabled and no retries.
func NewClient(opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	var rc *resty.Client
	if opts.HTTPClient != nil {
		rc = resty.NewWithClient(opts.HTTPClient)
	} else {
		rc = resty.New()
	}
	rc.SetTimeout(timeout).
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(maxRedirects)).
		SetRetryCount(0).
		SetHeader("User-Agent", UserAgent)

	return &Client{rc: rc}
}

// Fetch GETs url and returns the response body. Any status other than 200
// is reported as a *NetworkError carrying the status code.
func (c *Client) Fetch(ctx context.Context, url string) ([]byte, error) {
	resp, err := c.rc.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, &NetworkError{URL: url, Err: err}
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, &NetworkError{
			URL:        url,
			StatusCode: resp.StatusCode(),
			Err:        fmt.Errorf("unexpected status %s", resp.Status()),
		}
	}
	return resp.Body(), nil
}

// Pending is an in-flight Fetch started with Go.
type Pending struct {
	URL  string
	done chan struct{}
	data []byte
	err  error
}

// Go starts Fetch on its own goroutine. The caller joins it with Wait or
// selects on Done from whatever loop owns its state.
func (c *Client) Go(ctx context.Context, url string) *Pending {
	return Start(ctx, url, c.Fetch)
}

// Start runs fetch(ctx, url) on its own goroutine and returns its handle.
func Start(ctx context.Context, url string, fetch func(context.Context, string) ([]byte, error)) *Pending {
	p := &Pending{URL: url, done: make(chan struct{})}
	go func() {
		defer close(p.done)
		p.data, p.err = fetch(ctx, url)
	}()
	return p
}

// Done is closed once the fetch has finished.
func (p *Pending) Done() <-chan struct{} { return p.done }

// Wait blocks until the fetch finishes and returns its result.
func (p *Pending) Wait() ([]byte, error) {
	<-p.done
	return p.data, p.err
}
