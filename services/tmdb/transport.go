package tmdb

import (
	"context"
	"encoding/json"
	"log"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"
)

const dohEndpoint = "https://dns.google/resolve"

// dohResolver resolves one hostname through Google DNS-over-HTTPS and caches
// the answer. Some ISPs block TMDB at the DNS level; resolving out-of-band
// and pinning the dial address sidesteps that without touching domain logic.
type dohResolver struct {
	host   string
	client *http.Client

	mu         sync.Mutex
	ip         string
	resolvedAt time.Time
}

type dohAnswer struct {
	Answer []struct {
		Data string `json:"data"`
		Type int    `json:"type"`
	} `json:"Answer"`
}

func (r *dohResolver) lookup(ctx context.Context) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.ip != "" && time.Since(r.resolvedAt) < time.Hour {
		return r.ip
	}

	reqURL := dohEndpoint + "?" + url.Values{"name": {r.host}, "type": {"A"}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return r.ip
	}
	resp, err := r.client.Do(req)
	if err != nil {
		log.Printf("[tmdb] dns-over-https lookup for %s failed: %v", r.host, err)
		return r.ip
	}
	defer resp.Body.Close()

	var answer dohAnswer
	if err := json.NewDecoder(resp.Body).Decode(&answer); err != nil {
		return r.ip
	}
	for _, a := range answer.Answer {
		if a.Type == 1 && net.ParseIP(a.Data) != nil { // A record
			r.ip = a.Data
			r.resolvedAt = time.Now()
			break
		}
	}
	return r.ip
}

// NewPinnedTransport returns a transport whose dials for pinHost go to an
// address resolved via DNS-over-HTTPS. Dials for any other host, and dials
// when resolution fails, use the default resolver. TLS verification still
// runs against the original hostname.
func NewPinnedTransport(pinHost string) *http.Transport {
	resolver := &dohResolver{
		host:   pinHost,
		client: &http.Client{Timeout: 10 * time.Second},
	}
	dialer := &net.Dialer{Timeout: 10 * time.Second, KeepAlive: 30 * time.Second}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = func(ctx context.Context, network, addr string) (net.Conn, error) {
		host, port, err := net.SplitHostPort(addr)
		if err != nil {
			return dialer.DialContext(ctx, network, addr)
		}
		if host == pinHost {
			if ip := resolver.lookup(ctx); ip != "" {
				return dialer.DialContext(ctx, network, net.JoinHostPort(ip, port))
			}
		}
		return dialer.DialContext(ctx, network, addr)
	}
	return transport
}

// NewHTTPClient builds the gateway's HTTP client. When pinTMDBHost is set the
// transport resolves api.themoviedb.org via DNS-over-HTTPS.
func NewHTTPClient(pinTMDBHost bool) *http.Client {
	client := &http.Client{Timeout: 30 * time.Second}
	if pinTMDBHost {
		u, err := url.Parse(defaultBaseURL)
		if err != nil {
			return client
		}
		client.Transport = NewPinnedTransport(u.Hostname())
		log.Printf("[tmdb] dns-over-https pinning enabled for %s", u.Hostname())
	}
	return client
}
