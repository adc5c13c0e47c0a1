package api

import (
	"net/http"
	"time"

	"github.com/okian/racerdash/internal/adapters/leaderboardapi"
	"github.com/okian/racerdash/internal/app"
)

type sessionResponse struct {
	Authenticated bool       `json:"authenticated"`
	Token         string     `json:"token,omitempty"`
	ExpiresAt     *time.Time `json:"expiresAt,omitempty"`
	Upstream      bool       `json:"upstream"`
}

// handleLogin handles POST /session/login. With upstream auth disabled the
// body is ignored and the caller is signed in without a token.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	const op = "api.session_login"
	var in app.LoginInput
	if s.deps.AuthEnabled() {
		if err := decodeBody(w, r, &in); err != nil {
			s.fail(w, r, op, err)
			return
		}
	}
	sess := &leaderboardapi.Session{}
	if err := s.deps.Login(r.Context(), sess, in); err != nil {
		s.fail(w, r, op, err)
		return
	}
	resp := sessionResponse{
		Authenticated: sess.Authenticated(),
		Token:         sess.Token(),
		Upstream:      s.deps.AuthEnabled(),
	}
	if exp, ok := sess.ExpiresAt(); ok {
		resp.ExpiresAt = &exp
	}
	writeJSON(w, http.StatusOK, resp)
}
