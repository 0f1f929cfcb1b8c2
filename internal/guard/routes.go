package guard

import (
	"errors"
	"strings"

	"github.com/branchd-dev/storefront/internal/models"
)

// ErrRouteNotFound is reported when a path matches no route in the table
var ErrRouteNotFound = errors.New("route not found")

// Route is one entry of the route table. Pattern segments starting with ':' capture
// a path parameter.
type Route struct {
	Pattern string
	Public  bool
	Roles   []models.Role
}

// Table is an ordered list of routes; the first match wins
type Table []Route

// DefaultTable is the storefront route table
var DefaultTable = Table{
	{Pattern: "/sign-in", Public: true},
	{Pattern: "/sign-up", Public: true},
	{Pattern: "/unauthorized", Public: true},
	{Pattern: "/admin", Roles: []models.Role{models.RoleAdmin}},
	{Pattern: "/home"},
	{Pattern: "/"},
	{Pattern: "/product/:productId"},
}

// Result is the outcome of checking a path against the table
type Result struct {
	Route    *Route
	Decision Decision
	Target   string
	Params   map[string]string
}

// Match finds the route for path and extracts its parameters
func (t Table) Match(path string) (*Route, map[string]string, error) {
	segments := split(path)
	for i := range t {
		if params, ok := match(split(t[i].Pattern), segments); ok {
			return &t[i], params, nil
		}
	}
	return nil, nil, ErrRouteNotFound
}

// Check runs the guard for path. Unknown paths are treated as public and the
// ErrRouteNotFound error is returned alongside an Allow result.
func (t Table) Check(path string, isAuthenticated bool, role models.Role) (Result, error) {
	route, params, err := t.Match(path)
	if err != nil {
		return Result{Decision: Allow}, err
	}

	res := Result{Route: route, Params: params, Decision: Allow}
	if !route.Public {
		res.Decision = Decide(isAuthenticated, route.Roles, role)
		res.Target = res.Decision.Target()
	}
	return res, nil
}

func split(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

func match(pattern, segments []string) (map[string]string, bool) {
	if len(pattern) != len(segments) {
		return nil, false
	}
	params := map[string]string{}
	for i, p := range pattern {
		if name, ok := strings.CutPrefix(p, ":"); ok {
			if segments[i] == "" {
				return nil, false
			}
			params[name] = segments[i]
			continue
		}
		if p != segments[i] {
			return nil, false
		}
	}
	return params, true
}
