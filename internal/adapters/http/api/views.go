package api

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/okian/racerdash/internal/app"
	"github.com/okian/racerdash/internal/domain/awards"
	"github.com/okian/racerdash/internal/domain/export"
	"github.com/okian/racerdash/internal/domain/model"
	"github.com/okian/racerdash/internal/domain/table"
	"github.com/okian/racerdash/pkg/logger"
	"github.com/okian/racerdash/pkg/metrics"
)

type contestantExtra struct {
	Contestant model.Contestant     `json:"contestant"`
	Shelf      []awards.Badge       `json:"shelf"`
	EmptyShelf string               `json:"emptyShelf,omitempty"`
	Catalog    []model.AccoladeType `json:"catalog"`
}

type resultsExtra struct {
	Failures []app.DetailFailure `json:"failures,omitempty"`
}

func contestantInfo(v app.ContestantView) contestantExtra {
	x := contestantExtra{Contestant: v.Contestant, Shelf: v.Shelf, Catalog: v.Catalog}
	if len(v.Shelf) == 0 {
		x.Shelf = []awards.Badge{}
		x.EmptyShelf = awards.EmptyShelf
	}
	return x
}

// handleLeaderboard handles GET /views/leaderboard.
func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	const op = "api.views_leaderboard"
	q, err := parseTableQuery(r.URL.Query(), s.maxPageSize)
	if err != nil {
		s.fail(w, r, op, err)
		return
	}
	rows, err := s.deps.Leaderboard(r.Context(), sessionFrom(r))
	if err != nil {
		s.fail(w, r, op, err)
		return
	}
	e, err := newEngine(s, rows, app.LeaderboardColumns(), q)
	if err != nil {
		s.fail(w, r, op, err)
		return
	}
	defer e.Close()
	writeJSON(w, http.StatusOK, renderPage(app.TableLeaderboard, e))
}

// handleContestantLog handles GET /views/contestants/{name}/log.
func (s *Server) handleContestantLog(w http.ResponseWriter, r *http.Request) {
	const op = "api.views_contestant_log"
	q, err := parseTableQuery(r.URL.Query(), s.maxPageSize)
	if err != nil {
		s.fail(w, r, op, err)
		return
	}
	view, err := s.deps.ContestantLog(r.Context(), sessionFrom(r), r.PathValue("name"))
	if err != nil {
		s.fail(w, r, op, err)
		return
	}
	e, err := newEngine(s, view.Log, app.ContestantLogColumns(), q)
	if err != nil {
		s.fail(w, r, op, err)
		return
	}
	defer e.Close()
	resp := renderPage(app.TableContestant, e)
	resp.Extra = contestantInfo(view)
	writeJSON(w, http.StatusOK, resp)
}

// handleResults handles GET /views/results?from=&to=.
func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	const op = "api.views_results"
	q, err := parseTableQuery(r.URL.Query(), s.maxPageSize)
	if err != nil {
		s.fail(w, r, op, err)
		return
	}
	view, err := s.deps.Results(r.Context(), sessionFrom(r), r.URL.Query().Get("from"), r.URL.Query().Get("to"))
	if err != nil {
		s.fail(w, r, op, err)
		return
	}
	e, err := newEngine(s, view.Rows, app.ResultsColumns(), q)
	if err != nil {
		s.fail(w, r, op, err)
		return
	}
	defer e.Close()
	resp := renderPage(app.TableResults, e)
	if len(view.Failures) > 0 {
		resp.Extra = resultsExtra{Failures: view.Failures}
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleExportLeaderboard handles GET /export/leaderboard.xlsx.
func (s *Server) handleExportLeaderboard(w http.ResponseWriter, r *http.Request) {
	const op = "api.export_leaderboard"
	q, err := parseTableQuery(r.URL.Query(), 0)
	if err != nil {
		s.fail(w, r, op, err)
		return
	}
	rows, err := s.deps.Leaderboard(r.Context(), sessionFrom(r))
	if err != nil {
		s.fail(w, r, op, err)
		return
	}
	writeExport(s, w, r, op, app.TableLeaderboard, rows, app.LeaderboardColumns(), q)
}

// handleExportContestantLog handles GET /export/contestants/{name}/log.xlsx.
func (s *Server) handleExportContestantLog(w http.ResponseWriter, r *http.Request) {
	const op = "api.export_contestant_log"
	q, err := parseTableQuery(r.URL.Query(), 0)
	if err != nil {
		s.fail(w, r, op, err)
		return
	}
	view, err := s.deps.ContestantLog(r.Context(), sessionFrom(r), r.PathValue("name"))
	if err != nil {
		s.fail(w, r, op, err)
		return
	}
	writeExport(s, w, r, op, app.TableContestant, view.Log, app.ContestantLogColumns(), q)
}

// handleExportResults handles GET /export/results.xlsx?from=&to=.
func (s *Server) handleExportResults(w http.ResponseWriter, r *http.Request) {
	const op = "api.export_results"
	q, err := parseTableQuery(r.URL.Query(), 0)
	if err != nil {
		s.fail(w, r, op, err)
		return
	}
	view, err := s.deps.Results(r.Context(), sessionFrom(r), r.URL.Query().Get("from"), r.URL.Query().Get("to"))
	if err != nil {
		s.fail(w, r, op, err)
		return
	}
	writeExport(s, w, r, op, app.TableResults, view.Rows, app.ResultsColumns(), q)
}

// writeExport writes every filtered and sorted row as a workbook. The file
// is built in memory so a failure can still be reported as JSON.
func writeExport[T any](s *Server, w http.ResponseWriter, r *http.Request, op, name string, rows []T, cols []table.Column[T], q tableQuery) {
	e, err := newEngine(s, rows, cols, q)
	if err != nil {
		s.fail(w, r, op, err)
		return
	}
	defer e.Close()

	var buf bytes.Buffer
	if err := export.Table(&buf, e, s.export); err != nil {
		metrics.RecordExport(name, "error")
		s.fail(w, r, op, err)
		return
	}
	metrics.RecordExport(name, "ok")
	filename := export.FileNameOr(r.URL.Query().Get("filename"), name, s.now())
	s.logger.Debug(r.Context(), "export written",
		logger.String("table", name),
		logger.String("file", filename),
		logger.Int("bytes", buf.Len()))
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
