package admission

import "strings"

// Page is a dashboard page known to the admission layer.
type Page struct {
	Name         string
	Path         string
	AllowPending bool
}

var pages = []Page{
	{Name: "overview", Path: OverviewPath},
	{Name: "games", Path: "/dashboard/games"},
	{Name: "upload", Path: "/dashboard/upload"},
	{Name: "analytics", Path: "/dashboard/analytics"},
	{Name: "earnings", Path: "/dashboard/earnings"},
	{Name: "settings", Path: "/dashboard/settings", AllowPending: true},
	{Name: "creator-enrollment", Path: EnrollmentPath},
	{Name: "pending-approval", Path: PendingApprovalPath},
	{Name: "rejected", Path: RejectedPath},
}

var pagesByPath = func() map[string]Page {
	m := make(map[string]Page, len(pages))
	for _, p := range pages {
		m[p.Path] = p
	}
	return m
}()

// Pages returns the dashboard page registry in display order.
func Pages() []Page {
	out := make([]Page, len(pages))
	copy(out, pages)
	return out
}

// LookupPage resolves a request path, ignoring a trailing slash.
func LookupPage(path string) (Page, bool) {
	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}
	p, ok := pagesByPath[path]
	return p, ok
}

// DecidePage runs Decide with the page's own allowPending flag. Unknown
// paths are evaluated as ordinary dashboard pages.
func DecidePage(session Session, path string) Decision {
	page, ok := LookupPage(path)
	if !ok {
		return Decide(Input{Session: session, Path: path})
	}
	return Decide(Input{Session: session, Path: page.Path, AllowPending: page.AllowPending})
}
