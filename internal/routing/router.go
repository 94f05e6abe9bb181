// Package routing splits traffic between the public marketing host and the
// creator host. Route is a pure function of host and path.
package routing

import (
	"net"
	"strings"
)

const (
	DashboardPrefix = "/dashboard"
	AuthPrefix      = "/auth"
	OverviewPath    = "/dashboard/overview"
)

type Kind int

const (
	PassThrough Kind = iota
	Redirect
)

func (k Kind) String() string {
	switch k {
	case PassThrough:
		return "pass_through"
	case Redirect:
		return "redirect"
	}
	return "unknown"
}

// Decision is the router output. Host and Path are set only for redirects.
type Decision struct {
	Kind Kind
	Host string
	Path string
}

// Hosts configures the router. PublicAliases (for example a www host)
// behave exactly like Public.
type Hosts struct {
	Public        string
	PublicAliases []string
	Creator       string
	Dev           []string
	APIPrefix     string
}

type Router struct {
	public    string
	aliases   map[string]struct{}
	creator   string
	dev       map[string]struct{}
	apiPrefix string
}

func NewRouter(h Hosts) *Router {
	dev := make(map[string]struct{}, len(h.Dev))
	for _, d := range h.Dev {
		if d = NormalizeHost(d); d != "" {
			dev[d] = struct{}{}
		}
	}
	aliases := make(map[string]struct{}, len(h.PublicAliases))
	for _, a := range h.PublicAliases {
		if a = NormalizeHost(a); a != "" {
			aliases[a] = struct{}{}
		}
	}
	apiPrefix := strings.TrimSuffix(h.APIPrefix, "/")
	if apiPrefix == "" {
		apiPrefix = "/api"
	}
	return &Router{
		public:    NormalizeHost(h.Public),
		aliases:   aliases,
		creator:   NormalizeHost(h.Creator),
		dev:       dev,
		apiPrefix: apiPrefix,
	}
}

func (r *Router) PublicHost() string  { return r.public }
func (r *Router) CreatorHost() string { return r.creator }

// IsPublicHost reports whether host is the public host or one of its
// aliases.
func (r *Router) IsPublicHost(host string) bool {
	h := NormalizeHost(host)
	if h == r.public {
		return true
	}
	_, ok := r.aliases[h]
	return ok
}

func (r *Router) IsDevHost(host string) bool {
	_, ok := r.dev[NormalizeHost(host)]
	return ok
}

// Route applies the host rules in order; the first match wins. Prefixes
// match on raw path text, so "/dashboards" counts as a dashboard path.
func (r *Router) Route(host, path string) Decision {
	if path == "" {
		path = "/"
	}
	if strings.HasPrefix(path, r.apiPrefix) {
		return Decision{Kind: PassThrough}
	}

	h := NormalizeHost(host)
	gated := strings.HasPrefix(path, DashboardPrefix) || strings.HasPrefix(path, AuthPrefix)

	if r.IsPublicHost(h) {
		if gated {
			return Decision{Kind: Redirect, Host: r.creator, Path: path}
		}
		return Decision{Kind: PassThrough}
	}

	dev := r.IsDevHost(h)
	if h == r.creator || dev {
		switch {
		case path == "/":
			return Decision{Kind: Redirect, Host: host, Path: OverviewPath}
		case gated:
			return Decision{Kind: PassThrough}
		case dev:
			return Decision{Kind: PassThrough}
		default:
			return Decision{Kind: Redirect, Host: r.public, Path: path}
		}
	}

	return Decision{Kind: PassThrough}
}

// NormalizeHost lower-cases a Host header value and drops any port.
func NormalizeHost(host string) string {
	host = strings.ToLower(strings.TrimSpace(host))
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	return strings.TrimSuffix(host, ".")
}
