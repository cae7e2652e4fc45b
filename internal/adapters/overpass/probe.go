package overpass

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"time"
)

// Probe checks that the host of rawURL resolves and accepts a TCP
// connection. It sends no HTTP request.
func Probe(ctx context.Context, rawURL string, timeout time.Duration) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("probe %q: %w", rawURL, err)
	}

	host := u.Hostname()
	if host == "" {
		return fmt.Errorf("probe %q: missing host", rawURL)
	}
	port := u.Port()
	if port == "" {
		port = "80"
		if u.Scheme == "https" {
			port = "443"
		}
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var r net.Resolver
	if _, err := r.LookupHost(ctx, host); err != nil {
		return fmt.Errorf("probe %q: resolve: %w", host, err)
	}

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", net.JoinHostPort(host, port))
	if err != nil {
		return fmt.Errorf("probe %q: connect: %w", host, err)
	}
	conn.Close()

	return nil
}
