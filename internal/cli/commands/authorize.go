package commands

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/branchd-dev/storefront/internal/flows"
	"github.com/branchd-dev/storefront/internal/guard"
)

var (
	// ErrNotSignedIn is returned for a route that requires a session
	ErrNotSignedIn = errors.New("not signed in. Run 'storefront login' first")
	// ErrUnauthorized is returned for a route the signed-in role may not open
	ErrUnauthorized = errors.New("unauthorized: this command requires the admin role")
)

// routeAnnotation names the storefront route a command stands for
const routeAnnotation = "route"

// withRoute marks cmd as the CLI form of a storefront route
func withRoute(cmd *cobra.Command, route string) *cobra.Command {
	if cmd.Annotations == nil {
		cmd.Annotations = map[string]string{}
	}
	cmd.Annotations[routeAnnotation] = route
	return cmd
}

// routePath fills the ':param' segments of a route pattern from the positional args
func routePath(pattern string, args []string) string {
	segments := strings.Split(pattern, "/")
	next := 0
	for i, seg := range segments {
		if strings.HasPrefix(seg, ":") && next < len(args) {
			segments[i] = args[next]
			next++
		}
	}
	return strings.Join(segments, "/")
}

// Authorize runs the route guard for commands that carry a route
func Authorize(cmd *cobra.Command, args []string) error {
	pattern, found := cmd.Annotations[routeAnnotation]
	if !found {
		return nil
	}

	env := envFrom(cmd)
	store, err := env.Session(cmd.Context())
	if err != nil {
		return err
	}
	sess := store.Session()

	path := routePath(pattern, args)
	res, err := guard.DefaultTable.Check(path, sess.IsAuthenticated, sess.User.Role)
	if errors.Is(err, guard.ErrRouteNotFound) {
		env.Logger.Warn().Str("path", path).Msg("Command route is not in the route table")
	}

	env.Logger.Debug().
		Str("path", path).
		Str("decision", res.Decision.String()).
		Str("target", res.Target).
		Msg("Route guard")

	switch res.Decision {
	case guard.RedirectSignIn:
		return ErrNotSignedIn
	case guard.RedirectUnauthorized:
		return ErrUnauthorized
	}
	return nil
}

// flowError turns a flow failure into a command error. Backend failures were
// already notified by the flow; validation messages are printed per field.
func (e *Env) flowError(err error) error {
	var verr *flows.ValidationError
	switch {
	case errors.As(err, &verr):
		names := make([]string, 0, len(verr.Fields))
		for name := range verr.Fields {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(e.Err, "  %s\n", verr.Fields[name])
		}
		return reported(err)
	case errors.Is(err, flows.ErrBusy), errors.Is(err, flows.ErrFlowClosed), errors.Is(err, flows.ErrInvalidTransition):
		return err
	default:
		return reported(err)
	}
}
