package security

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/netip"
	"time"

	"github.com/miekg/dns"
)

// Resolver looks up every address a hostname resolves to.
type Resolver interface {
	LookupAddrs(ctx context.Context, host string) ([]netip.Addr, error)
}

// SystemResolver uses the pure-Go resolver from the standard library.
type SystemResolver struct {
	r *net.Resolver
}

func NewSystemResolver() *SystemResolver {
	return &SystemResolver{r: &net.Resolver{PreferGo: true}}
}

func (s *SystemResolver) LookupAddrs(ctx context.Context, host string) ([]netip.Addr, error) {
	return s.r.LookupNetIP(ctx, "ip", host)
}

// DNSResolver queries explicit upstream servers for A and AAAA records.
// Servers are tried in order until one answers with at least one record.
type DNSResolver struct {
	servers []string
	client  *dns.Client
}

func NewDNSResolver(servers []string, timeout time.Duration) *DNSResolver {
	normalized := make([]string, 0, len(servers))
	for _, s := range servers {
		if _, _, err := net.SplitHostPort(s); err != nil {
			s = net.JoinHostPort(s, "53")
		}
		normalized = append(normalized, s)
	}
	return &DNSResolver{
		servers: normalized,
		client:  &dns.Client{Net: "udp", Timeout: timeout},
	}
}

func (r *DNSResolver) LookupAddrs(ctx context.Context, host string) ([]netip.Addr, error) {
	if len(r.servers) == 0 {
		return nil, errors.New("no DNS servers configured")
	}
	var lastErr error
	for _, server := range r.servers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var addrs []netip.Addr
		for _, qtype := range []uint16{dns.TypeA, dns.TypeAAAA} {
			found, err := r.query(ctx, host, server, qtype)
			if err != nil {
				lastErr = err
				continue
			}
			addrs = append(addrs, found...)
		}
		if len(addrs) > 0 {
			return addrs, nil
		}
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no A or AAAA records for %s", host)
	}
	return nil, lastErr
}

func (r *DNSResolver) query(ctx context.Context, host, server string, qtype uint16) ([]netip.Addr, error) {
	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(host), qtype)
	msg.RecursionDesired = true

	resp, _, err := r.client.ExchangeContext(ctx, msg, server)
	if err != nil {
		return nil, fmt.Errorf("dns query to %s: %w", server, err)
	}
	if resp.Rcode != dns.RcodeSuccess {
		return nil, fmt.Errorf("dns query to %s: %s", server, dns.RcodeToString[resp.Rcode])
	}

	var addrs []netip.Addr
	for _, rr := range resp.Answer {
		var ip net.IP
		switch rec := rr.(type) {
		case *dns.A:
			ip = rec.A
		case *dns.AAAA:
			ip = rec.AAAA
		default:
			continue
		}
		if addr, ok := netip.AddrFromSlice(ip); ok {
			addrs = append(addrs, addr.Unmap())
		}
	}
	return addrs, nil
}
