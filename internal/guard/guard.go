// Package guard holds the pre-condition checks run before a client route is
// entered. A check either allows the route or names where to go instead.
package guard

import "github.com/ghaggin/yoga/internal/state"

const (
	LoginPath    = "/login"
	SessionsPath = "/sessions"
)

type Decision struct {
	Allow    bool
	Redirect string
}

func allow() Decision {
	return Decision{Allow: true}
}

func redirect(path string) Decision {
	return Decision{Redirect: path}
}

type Check func(h *state.Holder) Decision

// RequireAuth sends anonymous visitors to the login page.
func RequireAuth(h *state.Holder) Decision {
	if !h.IsLogged() {
		return redirect(LoginPath)
	}
	return allow()
}

// RequireGuest keeps logged-in users off the login and register pages.
func RequireGuest(h *state.Holder) Decision {
	if h.IsLogged() {
		return redirect(SessionsPath)
	}
	return allow()
}

// RequireAdmin sends non-admin identities back to the session list.
func RequireAdmin(h *state.Holder) Decision {
	if !h.IsAdmin() {
		return redirect(SessionsPath)
	}
	return allow()
}

// All runs checks in order and returns the first redirect.
func All(checks ...Check) Check {
	return func(h *state.Holder) Decision {
		for _, check := range checks {
			if d := check(h); !d.Allow {
				return d
			}
		}
		return allow()
	}
}
