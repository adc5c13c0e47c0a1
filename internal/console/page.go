package console

import "github.com/okian/racerdash/internal/domain/model"

// Page is one screen of the console. The set of pages is closed.
type Page interface {
	// Title is the heading printed above the page.
	Title() string
	// public pages render without a signed in session.
	public() bool
}

// LoginPage asks for credentials. Next is where to go once signed in.
type LoginPage struct {
	Next Page
}

// DashboardPage lists contestants with their management commands.
type DashboardPage struct{}

// AddContestantPage prompts for a new contestant.
type AddContestantPage struct{}

// ContestantDetailsPage shows one contestant's shelf and activity log.
type ContestantDetailsPage struct {
	Name string
	ID   model.ID
}

// ResultsPage lists every grant between From and To.
type ResultsPage struct {
	From string
	To   string
}

// PublicLeaderboardPage shows the standings to anyone.
type PublicLeaderboardPage struct{}

func (LoginPage) Title() string { return "Sign in" }
func (DashboardPage) Title() string { return "Dashboard" }
func (AddContestantPage) Title() string { return "Add contestant" }
func (p ContestantDetailsPage) Title() string { return "Contestant: " + p.Name }
func (ResultsPage) Title() string { return "Results" }
func (PublicLeaderboardPage) Title() string { return "Leaderboard" }

func (LoginPage) public() bool { return true }
func (DashboardPage) public() bool { return false }
func (AddContestantPage) public() bool { return false }
func (ContestantDetailsPage) public() bool { return false }
func (ResultsPage) public() bool { return false }
func (PublicLeaderboardPage) public() bool { return true }

// IsPublic reports whether p renders without a session.
func IsPublic(p Page) bool { return p != nil && p.public() }
