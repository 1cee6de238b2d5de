package view

import "github.com/ghaggin/yoga/internal/state"

type Link struct {
	Label string
	Path  string
}

// App is the navigation shell shown on every page.
type App struct {
	state *state.Holder
}

func NewApp(h *state.Holder) *App {
	return &App{state: h}
}

func (a *App) Links() []Link {
	if a.state.IsLogged() {
		return []Link{
			{Label: "Sessions", Path: PathSessions},
			{Label: "Account", Path: PathMe},
		}
	}
	return []Link{
		{Label: "Login", Path: PathLogin},
		{Label: "Register", Path: PathRegister},
	}
}

func (a *App) Logout() Outcome {
	a.state.LogOut()
	return redirect(PathHome, "")
}
