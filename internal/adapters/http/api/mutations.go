package api

import (
	"net/http"
	"strings"

	"github.com/okian/racerdash/internal/adapters/leaderboardapi"
	"github.com/okian/racerdash/internal/app"
	"github.com/okian/racerdash/internal/domain/model"
)

type mutationResponse struct {
	Kind         string `json:"kind"`
	OK           bool   `json:"ok"`
	Notice       string `json:"notice"`
	Error        string `json:"error,omitempty"`
	Refreshed    any    `json:"refreshed,omitempty"`
	RefreshError string `json:"refreshError,omitempty"`
}

type pointsRequest struct {
	app.PointsInput
	Name string `json:"name"`
}

type accoladeRequest struct {
	app.AccoladeInput
	Name string `json:"name"`
}

// writeMutation reports a submitted mutation. The refreshed view is
// included whether or not the mutation itself succeeded.
func writeMutation[T any](w http.ResponseWriter, okStatus int, res app.MutationResult[T]) {
	resp := mutationResponse{
		Kind:   res.Kind,
		OK:     res.OK(),
		Notice: res.Notice,
	}
	if res.RefreshErr != nil {
		resp.RefreshError = res.RefreshErr.Error()
	} else {
		resp.Refreshed = res.Refreshed
	}
	status := okStatus
	if res.Err != nil {
		resp.Error = res.Err.Error()
		status = http.StatusBadGateway
		if leaderboardapi.IsUnauthorized(res.Err) {
			status = http.StatusUnauthorized
		}
	}
	writeJSON(w, status, resp)
}

func pathID(r *http.Request) model.ID {
	return model.ID(strings.TrimSpace(r.PathValue("id")))
}

// handleCreateContestant handles POST /views/contestants.
func (s *Server) handleCreateContestant(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_contestant"
	var in app.ContestantInput
	if err := decodeBody(w, r, &in); err != nil {
		s.fail(w, r, op, err)
		return
	}
	res, err := s.deps.CreateContestant(r.Context(), sessionFrom(r), in)
	if err != nil {
		s.fail(w, r, op, err)
		return
	}
	writeMutation(w, http.StatusCreated, res)
}

// handleAddPoints handles POST /views/contestants/{id}/points.
func (s *Server) handleAddPoints(w http.ResponseWriter, r *http.Request) {
	const op = "api.add_points"
	var in pointsRequest
	if err := decodeBody(w, r, &in); err != nil {
		s.fail(w, r, op, err)
		return
	}
	ref := app.ContestantRef{ID: pathID(r), Name: strings.TrimSpace(in.Name)}
	res, err := s.deps.AddPoints(r.Context(), sessionFrom(r), ref, in.PointsInput)
	if err != nil {
		s.fail(w, r, op, err)
		return
	}
	writeMutation(w, http.StatusOK, res)
}

// handleGrantAccolade handles POST /views/contestants/{id}/accolades.
func (s *Server) handleGrantAccolade(w http.ResponseWriter, r *http.Request) {
	const op = "api.grant_accolade"
	var in accoladeRequest
	if err := decodeBody(w, r, &in); err != nil {
		s.fail(w, r, op, err)
		return
	}
	ref := app.ContestantRef{ID: pathID(r), Name: strings.TrimSpace(in.Name)}
	res, err := s.deps.GrantAccolade(r.Context(), sessionFrom(r), ref, in.AccoladeInput)
	if err != nil {
		s.fail(w, r, op, err)
		return
	}
	writeMutation(w, http.StatusOK, res)
}

// handleDeleteContestant handles DELETE /views/contestants/{id}.
func (s *Server) handleDeleteContestant(w http.ResponseWriter, r *http.Request) {
	const op = "api.delete_contestant"
	res, err := s.deps.DeleteContestant(r.Context(), sessionFrom(r), pathID(r))
	if err != nil {
		s.fail(w, r, op, err)
		return
	}
	writeMutation(w, http.StatusOK, res)
}
