// Package urlgen builds canonical resource URLs from named route templates.
package urlgen

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
)

// Generator maps route names to gin-style templates ("/api/books/:id").
type Generator struct {
	base *url.URL

	mu     sync.RWMutex
	routes map[string]string
}

// New returns a Generator. An empty baseURL makes Absolute derive scheme and
// host from the request being served.
func New(baseURL string) (*Generator, error) {
	g := &Generator{routes: make(map[string]string)}

	if baseURL != "" {
		u, err := url.Parse(strings.TrimRight(baseURL, "/"))
		if err != nil {
			return nil, fmt.Errorf("invalid base url: %w", err)
		}
		if u.Scheme == "" || u.Host == "" {
			return nil, fmt.Errorf("base url %q must be absolute", baseURL)
		}
		g.base = u
	}

	return g, nil
}

// Register records the template for name, replacing any previous one.
func (g *Generator) Register(name, template string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.routes[name] = template
}

// Path fills the template's :params. Every placeholder must be supplied.
func (g *Generator) Path(name string, params map[string]string) (string, error) {
	g.mu.RLock()
	template, ok := g.routes[name]
	g.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("unknown route %q", name)
	}

	segments := strings.Split(template, "/")
	for i, seg := range segments {
		if !strings.HasPrefix(seg, ":") {
			continue
		}
		key := seg[1:]
		value, ok := params[key]
		if !ok {
			return "", fmt.Errorf("route %q: missing parameter %q", name, key)
		}
		segments[i] = url.PathEscape(value)
	}

	return strings.Join(segments, "/"), nil
}

// Absolute returns scheme://host + Path. r may be nil when a base URL is configured.
func (g *Generator) Absolute(r *http.Request, name string, params map[string]string) (string, error) {
	path, err := g.Path(name, params)
	if err != nil {
		return "", err
	}

	if g.base != nil {
		return g.base.String() + path, nil
	}
	if r == nil {
		return "", fmt.Errorf("route %q: no base url and no request", name)
	}

	return requestScheme(r) + "://" + r.Host + path, nil
}

func requestScheme(r *http.Request) string {
	// Header do client gửi lên: chỉ chấp nhận http/https.
	proto := strings.ToLower(strings.TrimSpace(strings.Split(r.Header.Get("X-Forwarded-Proto"), ",")[0]))
	if proto == "http" || proto == "https" {
		return proto
	}
	if r.TLS != nil {
		return "https"
	}
	return "http"
}
