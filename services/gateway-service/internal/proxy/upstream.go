// Package proxy forwards gateway traffic to the backing services.
package proxy

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"
	"time"

	"github.com/prrathnayake/conveyancers-marketplace/platform/httpx"
)

// PathPrefix is stripped from every proxied request.
const PathPrefix = "/api"

// Upstream is one backing service behind the gateway.
type Upstream struct {
	name   string
	target *url.URL
	apiKey string
	client *http.Client
	proxy  *httputil.ReverseProxy
}

type UpstreamConfig struct {
	Name    string
	BaseURL string
	// APIKey replaces the client's key on the forwarded request.
	APIKey  string
	Timeout time.Duration
}

func NewUpstream(cfg UpstreamConfig, logger *slog.Logger) (*Upstream, error) {
	target, err := url.Parse(strings.TrimSpace(cfg.BaseURL))
	if err != nil || target.Scheme == "" || target.Host == "" {
		return nil, fmt.Errorf("upstream %s: invalid base url %q", cfg.Name, cfg.BaseURL)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.ResponseHeaderTimeout = cfg.Timeout

	u := &Upstream{
		name:   cfg.Name,
		target: target,
		apiKey: cfg.APIKey,
		client: &http.Client{Transport: transport, Timeout: cfg.Timeout},
	}
	log := logger.With("module", "proxy", "layer", "adapter", "upstream", cfg.Name)
	u.proxy = &httputil.ReverseProxy{
		Transport: transport,
		Rewrite:   u.rewrite,
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			log.WarnContext(r.Context(), "upstream request failed",
				"operation", "proxy",
				"outcome", "failure",
				"path", r.URL.Path,
				"error", err,
			)
			httpx.WriteError(w, r, http.StatusServiceUnavailable, u.name+"_unavailable", u.name+" service unavailable")
		},
	}
	return u, nil
}

func (u *Upstream) Name() string { return u.name }

func (u *Upstream) rewrite(pr *httputil.ProxyRequest) {
	pr.Out.URL.Path = StripPrefix(pr.In.URL.Path)
	pr.Out.URL.RawPath = ""
	pr.SetURL(u.target)
	pr.SetXForwarded()
	pr.Out.Header.Set(httpx.HeaderAPIKey, u.apiKey)
	if id := httpx.RequestIDFromContext(pr.In.Context()); id != "" {
		pr.Out.Header.Set(httpx.HeaderRequestID, id)
	}
	if role := pr.In.Header.Get(httpx.HeaderActorRole); role != "" {
		pr.Out.Header.Set(httpx.HeaderActorRole, role)
	}
}

func (u *Upstream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	u.proxy.ServeHTTP(w, r)
}

// Ping calls the upstream's health endpoint.
func (u *Upstream) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.target.JoinPath("healthz").String(), nil)
	if err != nil {
		return err
	}
	resp, err := u.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s health: %w", u.name, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s health: status %d", u.name, resp.StatusCode)
	}
	return nil
}

// StripPrefix maps "/api/payments/hold" to "/payments/hold".
func StripPrefix(path string) string {
	trimmed := strings.TrimPrefix(path, PathPrefix)
	if !strings.HasPrefix(trimmed, "/") {
		trimmed = "/" + trimmed
	}
	return trimmed
}
