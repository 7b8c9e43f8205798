// Package httpclient builds a hardened HTTP client for fetching version
// feeds and downloading archives, grounded on the teacher's
// internal/version.NewHTTPClient. No package in this module calls New:
// cmd/vx hands http.DefaultClient to the installer and providers.
package httpclient

import (
	"fmt"
	"net"
	"net/http"
	"time"
)

// Options configures the client's timeout and domain allow-list.
type Options struct {
	Timeout        time.Duration
	AllowedDomains []string // empty means "no restriction"
}

// New builds an *http.Client hardened against decompression bombs and
// SSRF via redirect (blocks redirects to private/loopback/link-local
// addresses and enforces HTTPS on every hop).
func New(opts Options) *http.Client {
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			DisableCompression:    true,
			DialContext:           (&net.Dialer{Timeout: 10 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
			TLSHandshakeTimeout:   10 * time.Second,
			ResponseHeaderTimeout: 10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
			MaxIdleConns:          10,
			IdleConnTimeout:       90 * time.Second,
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if req.URL.Scheme != "https" {
				return fmt.Errorf("refusing redirect to non-HTTPS URL: %s", req.URL)
			}
			if len(via) >= 5 {
				return fmt.Errorf("too many redirects")
			}
			if len(opts.AllowedDomains) > 0 && !domainAllowed(req.URL.Hostname(), opts.AllowedDomains) {
				return fmt.Errorf("refusing redirect to disallowed domain: %s", req.URL.Hostname())
			}
			return checkSSRF(req.URL.Hostname())
		},
	}
}

func domainAllowed(host string, allowed []string) bool {
	for _, d := range allowed {
		if host == d {
			return true
		}
	}
	return false
}

// checkSSRF resolves host and rejects it if any resulting address is
// private, loopback, or link-local, preventing DNS-rebinding-based
// access to the driver's own host network.
func checkSSRF(host string) error {
	if ip := net.ParseIP(host); ip != nil {
		return validateIP(ip, host)
	}
	ips, err := net.LookupIP(host)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", host, err)
	}
	for _, ip := range ips {
		if err := validateIP(ip, host); err != nil {
			return err
		}
	}
	return nil
}

func validateIP(ip net.IP, host string) error {
	if ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() {
		return fmt.Errorf("refusing request to blocked address %s (%s)", ip, host)
	}
	return nil
}
