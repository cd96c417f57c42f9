package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/dnscache"
)

// Fetcher streams the resource named by uri into dest, creating dest's
// parent directory as needed. Implementations need not verify checksums or
// extract archives; [Acquire] handles both on top of any Fetcher.
type Fetcher interface {
	Fetch(ctx context.Context, uri, dest string) error
}

// HTTPFetcher fetches http/https/ftp sources over a DNS-cached, retrying
// HTTP client. Retries only cover transient failures (network errors, 5xx);
// a 4xx response fails immediately.
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
	resolver  *dnscache.Resolver
}

// NewHTTPFetcher builds an HTTPFetcher whose transport resolves
// hostnames through a cached resolver, refreshed on the interval given
// by refresh. A non-positive refresh disables the periodic refresh;
// entries then live for the resolver's lifetime.
func NewHTTPFetcher(refresh time.Duration) *HTTPFetcher {
	resolver := &dnscache.Resolver{}
	if refresh > 0 {
		go func() {
			ticker := time.NewTicker(refresh)
			defer ticker.Stop()
			for range ticker.C {
				resolver.Refresh(true)
			}
		}()
	}

	dialer := &net.Dialer{Timeout: 30 * time.Second, KeepAlive: 30 * time.Second}

	return &HTTPFetcher{
		resolver:  resolver,
		userAgent: "corebuild/1.0",
		client: &http.Client{
			Timeout: 5 * time.Minute,
			Transport: &http.Transport{
				DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
					host, port, err := net.SplitHostPort(addr)
					if err != nil {
						return nil, err
					}
					ips, err := resolver.LookupHost(ctx, host)
					if err != nil {
						return nil, err
					}
					var lastErr error
					for _, ip := range ips {
						conn, err := dialer.DialContext(ctx, network, net.JoinHostPort(ip, port))
						if err == nil {
							return conn, nil
						}
						lastErr = err
					}
					return nil, lastErr
				},
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// Fetch downloads uri to dest, retrying transient failures with exponential
// backoff via cenkalti/backoff/v4.
func (f *HTTPFetcher) Fetch(ctx context.Context, uri, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return &FetchError{URI: uri, Cause: err}
	}

	policy := backoff.WithContext(backoff.NewExponentialBackOff(), ctx)

	op := func() error {
		err := f.doFetch(ctx, uri, dest)
		if err == nil {
			return nil
		}
		if errors.Is(err, errHTTPStatus) {
			return backoff.Permanent(err)
		}
		return err
	}

	if err := backoff.Retry(op, backoff.WithMaxRetries(policy, 4)); err != nil {
		return &FetchError{URI: uri, Cause: err}
	}
	return nil
}

func (f *HTTPFetcher) doFetch(ctx context.Context, uri, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return fmt.Errorf("server error: status %d", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %d", errHTTPStatus, resp.StatusCode)
	}

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		return err
	}
	return nil
}

// LocalFetcher copies a source named as a path relative to RecipeDir.
type LocalFetcher struct {
	RecipeDir string
}

func (f *LocalFetcher) Fetch(_ context.Context, uri, dest string) error {
	src := filepath.Join(f.RecipeDir, uri)

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return &FetchError{URI: uri, Cause: err}
	}

	in, err := os.Open(src)
	if err != nil {
		return &FetchError{URI: uri, Cause: err}
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return &FetchError{URI: uri, Cause: err}
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return &FetchError{URI: uri, Cause: err}
	}
	return nil
}

// remoteSchemes are the URI schemes routed to the network fetcher;
// anything else is a path relative to the recipe directory.
var remoteSchemes = map[string]bool{"http": true, "https": true, "ftp": true}

// isRemote reports whether uri should be treated as a network source.
func isRemote(uri string) bool {
	u, err := url.Parse(uri)
	if err != nil {
		return false
	}
	return remoteSchemes[u.Scheme]
}

// DefaultFetcher composites HTTPFetcher and LocalFetcher by URI scheme, so
// callers get a single [Fetcher] usable across an entire recipe's source
// list.
type DefaultFetcher struct {
	HTTP  *HTTPFetcher
	Local *LocalFetcher
}

// NewDefaultFetcher builds a DefaultFetcher rooted at recipeDir for
// resolving relative sources.
func NewDefaultFetcher(recipeDir string) *DefaultFetcher {
	return &DefaultFetcher{
		HTTP:  NewHTTPFetcher(5 * time.Minute),
		Local: &LocalFetcher{RecipeDir: recipeDir},
	}
}

func (f *DefaultFetcher) Fetch(ctx context.Context, uri, dest string) error {
	if isRemote(uri) {
		return f.HTTP.Fetch(ctx, uri, dest)
	}
	return f.Local.Fetch(ctx, uri, dest)
}
