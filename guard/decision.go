package guard

// State is the outcome of evaluating one navigation attempt
type State int

const (
	Evaluating State = iota
	Allowed
	RedirectToLogin
	RedirectToHome
	Denied // role check failed; no redirect is issued
)

func (s State) String() string {
	switch s {
	case Evaluating:
		return "evaluating"
	case Allowed:
		return "allowed"
	case RedirectToLogin:
		return "redirect_to_login"
	case RedirectToHome:
		return "redirect_to_home"
	case Denied:
		return "denied"
	default:
		return "unknown"
	}
}

// Decision is what the guard returns for a route. Redirect is set only for
// the redirect states.
type Decision struct {
	State    State
	Redirect string
}

// Allowed reports whether navigation may proceed
func (d Decision) Allowed() bool {
	return d.State == Allowed
}
