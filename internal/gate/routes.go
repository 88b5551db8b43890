package gate

import (
	"sort"
	"strings"
)

// Route is the navigation target together with its static authorization requirement.
type Route struct {
	Path         string
	RequiresAuth bool
}

// RouteTable maps route paths to their requirements.
// Keys ending in "/" match every path below them; exact keys win over prefixes,
// and longer prefixes win over shorter ones.
type RouteTable struct {
	exact    map[string]bool
	prefixes []string
	byPrefix map[string]bool
}

// NewRouteTable builds a table from path -> requiresAuth entries.
func NewRouteTable(entries map[string]bool) RouteTable {
	t := RouteTable{
		exact:    make(map[string]bool, len(entries)),
		byPrefix: make(map[string]bool),
	}
	for path, requiresAuth := range entries {
		t.exact[path] = requiresAuth
		if strings.HasSuffix(path, "/") {
			t.prefixes = append(t.prefixes, path)
			t.byPrefix[path] = requiresAuth
		}
	}
	sort.Slice(t.prefixes, func(i, j int) bool {
		return len(t.prefixes[i]) > len(t.prefixes[j])
	})
	return t
}

// Resolve returns the Route for path. Paths with no entry do not require auth.
func (t RouteTable) Resolve(path string) Route {
	if requiresAuth, ok := t.exact[path]; ok {
		return Route{Path: path, RequiresAuth: requiresAuth}
	}
	for _, prefix := range t.prefixes {
		// "/" is registered for the home page only; it must not swallow every path.
		if prefix == "/" {
			continue
		}
		if strings.HasPrefix(path, prefix) {
			return Route{Path: path, RequiresAuth: t.byPrefix[prefix]}
		}
	}
	return Route{Path: path}
}
