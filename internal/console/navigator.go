package console

// Authenticator reports whether the user is signed in.
// *leaderboardapi.Session satisfies it.
type Authenticator interface {
	Authenticated() bool
}

// Navigator tracks the current page. Pages that need a session send the
// user to the sign in page first and resume once signed in.
type Navigator struct {
	auth    Authenticator
	current Page
	history []Page
}

// NewNavigator starts on the dashboard, or on sign in without a session.
func NewNavigator(auth Authenticator) *Navigator {
	n := &Navigator{auth: auth}
	n.current = n.resolve(DashboardPage{})
	return n
}

// Current returns the page being shown.
func (n *Navigator) Current() Page { return n.current }

// Go moves to p and returns the page actually shown.
func (n *Navigator) Go(p Page) Page {
	if p == nil {
		return n.current
	}
	next := n.resolve(p)
	if next != n.current {
		n.history = append(n.history, n.current)
	}
	n.current = next
	return next
}

// Replace moves to p without recording the current page in history.
func (n *Navigator) Replace(p Page) Page {
	if p == nil {
		return n.current
	}
	n.current = n.resolve(p)
	return n.current
}

// Back returns to the previous page that is still reachable.
func (n *Navigator) Back() Page {
	for len(n.history) > 0 {
		prev := n.history[len(n.history)-1]
		n.history = n.history[:len(n.history)-1]
		if _, ok := prev.(LoginPage); ok {
			continue
		}
		if n.allowed(prev) {
			n.current = prev
			return prev
		}
	}
	n.current = n.resolve(n.home())
	return n.current
}

// SignedIn continues to the page the sign in page was guarding.
func (n *Navigator) SignedIn() Page {
	next := Page(DashboardPage{})
	if lp, ok := n.current.(LoginPage); ok && lp.Next != nil {
		next = lp.Next
	}
	return n.Replace(next)
}

// SignedOut drops history and shows the public leaderboard.
func (n *Navigator) SignedOut() Page {
	n.history = nil
	n.current = PublicLeaderboardPage{}
	return n.current
}

func (n *Navigator) resolve(p Page) Page {
	if n.allowed(p) {
		return p
	}
	return LoginPage{Next: p}
}

func (n *Navigator) allowed(p Page) bool {
	return p.public() || (n.auth != nil && n.auth.Authenticated())
}

func (n *Navigator) home() Page {
	if n.auth != nil && n.auth.Authenticated() {
		return DashboardPage{}
	}
	return PublicLeaderboardPage{}
}
