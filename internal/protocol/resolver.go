package protocol

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/nao1215/randcrawl/internal/model"
)

// drainLimit caps how much of a check response body is read before the
// connection is closed.
const drainLimit = 4 * 1024

// HostLookup resolves a hostname to its addresses. *net.Resolver satisfies it.
type HostLookup interface {
	LookupIPAddr(ctx context.Context, host string) ([]net.IPAddr, error)
}

// Resolver resolves a URL's host and determines which transport answers.
//
// Results are never cached: every call performs a fresh lookup and fresh
// checks, even for a host resolved a moment ago.
type Resolver struct {
	client  *http.Client
	lookup  HostLookup
	timeout time.Duration
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithLookup replaces the address lookup. Tests use it to fake DNS.
func WithLookup(lookup HostLookup) ResolverOption {
	return func(r *Resolver) {
		r.lookup = lookup
	}
}

// WithResolveTimeout bounds each of the lookup and the two checks.
func WithResolveTimeout(timeout time.Duration) ResolverOption {
	return func(r *Resolver) {
		r.timeout = timeout
	}
}

// NewResolver creates a Resolver that checks hosts through client.
// The client should come from the transport package so checks carry the
// identification headers and the configured proxy.
func NewResolver(client *http.Client, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		client:  client,
		lookup:  net.DefaultResolver,
		timeout: 3 * time.Second,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve parses rawURL, looks up its host and checks HTTPS then HTTP.
//
// It returns a *model.CrawlError of kind KindResolution wrapping
// model.ErrHostNotFound when the lookup fails, or model.ErrNoTransport when
// neither check receives a response.
func (r *Resolver) Resolve(ctx context.Context, rawURL string) (model.ResolvedHost, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return model.ResolvedHost{}, model.NewResolutionError(rawURL, fmt.Errorf("%w: %w", model.ErrHostNotFound, err))
	}
	hostname := u.Hostname()
	if hostname == "" {
		return model.ResolvedHost{}, model.NewResolutionError(rawURL, fmt.Errorf("%w: missing host", model.ErrHostNotFound))
	}

	ip, err := r.lookupAddress(ctx, hostname)
	if err != nil {
		return model.ResolvedHost{}, model.NewResolutionError(rawURL, fmt.Errorf("%w: %w", model.ErrHostNotFound, err))
	}

	host := model.ResolvedHost{
		IPAddress: ip,
		Hostname:  hostname,
		Port:      u.Port(),
	}

	var attemptErrs []error
	for _, proto := range []model.Protocol{model.ProtocolSecure, model.ProtocolPlain} {
		host.Protocol = proto
		if err := r.reach(ctx, host.Origin()); err != nil {
			attemptErrs = append(attemptErrs, fmt.Errorf("%s: %w", proto, err))
			continue
		}
		return host, nil
	}

	return model.ResolvedHost{}, model.NewResolutionError(rawURL, fmt.Errorf("%w: %w", model.ErrNoTransport, errors.Join(attemptErrs...)))
}

// lookupAddress returns the first IPv4 address of hostname, or the first
// address of any family when there is no IPv4 one.
func (r *Resolver) lookupAddress(ctx context.Context, hostname string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	addrs, err := r.lookup.LookupIPAddr(ctx, hostname)
	if err != nil {
		return "", err
	}
	if len(addrs) == 0 {
		return "", fmt.Errorf("no addresses for %s", hostname)
	}
	for _, a := range addrs {
		if v4 := a.IP.To4(); v4 != nil {
			return v4.String(), nil
		}
	}
	return addrs[0].IP.String(), nil
}

// reach issues a GET against origin. Any HTTP response, whatever its status,
// counts as success.
func (r *Resolver) reach(ctx context.Context, origin string) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, origin, nil)
	if err != nil {
		return err
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, drainLimit))
	return nil
}
