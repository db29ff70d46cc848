package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/verte-zerg/weekboard/internal/model"
	"github.com/verte-zerg/weekboard/internal/stats"
)

// WeeksResponse lists stored weeks.
type WeeksResponse struct {
	Current int                 `json:"current"`
	Weeks   []stats.WeekSummary `json:"weeks"`
}

// SelectRequest is the body of POST /api/weeks/select.
type SelectRequest struct {
	Index *int `json:"index" validate:"required,gte=0"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

func (s *Server) weeksPayload() WeeksResponse {
	weeks := stats.Summaries(s.st)
	if weeks == nil {
		weeks = []stats.WeekSummary{}
	}
	return WeeksResponse{Current: s.st.CurrentIndex(), Weeks: weeks}
}

func (s *Server) listWeeks(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, s.weeksPayload())
}

func (s *Server) currentWeek(w http.ResponseWriter, r *http.Request) {
	s.renderReport(w, r, -1)
}

func (s *Server) weekAt(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil || index < 0 {
		s.renderError(w, r, http.StatusBadRequest, "week index must be a non-negative integer")
		return
	}
	s.renderReport(w, r, index)
}

func (s *Server) renderReport(w http.ResponseWriter, r *http.Request, index int) {
	report, err := stats.BuildReport(s.st, index, s.targets)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, stats.ErrNoWeeks) || errors.Is(err, stats.ErrWeekNotFound) {
			status = http.StatusNotFound
		}
		s.renderError(w, r, status, err.Error())
		return
	}
	render.JSON(w, r, report)
}

func (s *Server) selectWeek(w http.ResponseWriter, r *http.Request) {
	var req SelectRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		s.renderError(w, r, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		s.renderError(w, r, http.StatusBadRequest, "index is required and must be >= 0")
		return
	}
	if !s.st.Select(*req.Index) {
		s.renderError(w, r, http.StatusNotFound, stats.ErrWeekNotFound.Error())
		return
	}
	render.JSON(w, r, s.weeksPayload())
}

func (s *Server) triggerRefresh(w http.ResponseWriter, r *http.Request) {
	if !s.limiter.Allow() {
		w.Header().Set("Retry-After", "5")
		s.renderError(w, r, http.StatusTooManyRequests, "refresh rate limit exceeded")
		return
	}
	s.refresh.Trigger()
	render.Status(r, http.StatusAccepted)
	render.JSON(w, r, s.refresh.Status())
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, s.refresh.Status())
}

func (s *Server) standings(w http.ResponseWriter, r *http.Request) {
	standings := stats.MonthlyStandings(s.st.Weeks())
	if standings == nil {
		standings = []model.Standing{}
	}
	render.JSON(w, r, standings)
}

func (s *Server) renderError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	render.Status(r, status)
	render.JSON(w, r, ErrorResponse{Error: msg})
}
