package security

import (
	"context"
	"net/netip"
	"net/url"
	"strings"

	"golang.org/x/net/idna"
)

// MaxTargetURLLength bounds the raw url query accepted by the media proxy.
const MaxTargetURLLength = 2048

// Rejection reasons. They are surfaced to callers verbatim.
const (
	ReasonTooLong             = "url too long"
	ReasonInvalidURL          = "invalid url"
	ReasonUnsupportedProtocol = "unsupported protocol"
	ReasonForbiddenHostname   = "forbidden hostname"
	ReasonForbiddenAddress    = "forbidden address"
	ReasonDNSLookupFailed     = "dns lookup failed"
)

// RejectionError reports why a target URL was refused.
type RejectionError struct {
	Reason string
	Host   string
}

func (e *RejectionError) Error() string {
	return e.Reason
}

// TargetValidator checks that a URL points at a public http(s) host.
type TargetValidator struct {
	resolver Resolver
}

func NewTargetValidator(resolver Resolver) *TargetValidator {
	return &TargetValidator{resolver: resolver}
}

// Validate runs the checks in a fixed order and stops at the first failure:
// length, parse, scheme, hostname, literal address, then DNS where every
// resolved address must be public.
func (v *TargetValidator) Validate(ctx context.Context, raw string) (*url.URL, error) {
	if len(raw) > MaxTargetURLLength {
		return nil, &RejectionError{Reason: ReasonTooLong}
	}

	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Scheme == "" {
		return nil, &RejectionError{Reason: ReasonInvalidURL}
	}
	u.Scheme = strings.ToLower(u.Scheme)
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, &RejectionError{Reason: ReasonUnsupportedProtocol}
	}
	if u.Host == "" {
		return nil, &RejectionError{Reason: ReasonInvalidURL}
	}

	return u, v.ValidateHost(ctx, u.Hostname())
}

// ValidateHost applies the hostname, literal address and DNS checks. It is
// also used to re-check redirect targets.
func (v *TargetValidator) ValidateHost(ctx context.Context, hostname string) error {
	if IsForbiddenHostname(hostname) {
		return &RejectionError{Reason: ReasonForbiddenHostname, Host: hostname}
	}

	if addr, err := netip.ParseAddr(hostname); err == nil {
		if IsForbiddenAddr(addr) {
			return &RejectionError{Reason: ReasonForbiddenAddress, Host: hostname}
		}
		return nil
	}

	ascii, err := idna.Lookup.ToASCII(hostname)
	if err != nil {
		return &RejectionError{Reason: ReasonInvalidURL, Host: hostname}
	}
	if IsForbiddenHostname(ascii) {
		return &RejectionError{Reason: ReasonForbiddenHostname, Host: hostname}
	}

	addrs, err := v.resolver.LookupAddrs(ctx, ascii)
	if err != nil || len(addrs) == 0 {
		return &RejectionError{Reason: ReasonDNSLookupFailed, Host: hostname}
	}
	for _, addr := range addrs {
		if IsForbiddenAddr(addr) {
			return &RejectionError{Reason: ReasonForbiddenAddress, Host: hostname}
		}
	}
	return nil
}
