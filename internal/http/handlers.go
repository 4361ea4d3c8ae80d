package http

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"fintrack/internal/core"
	"fintrack/internal/export"
	"fintrack/internal/log"
	"fintrack/internal/services"
)

type transactionResponse struct {
	Transaction core.Transaction `json:"transaction"`
	Warning     string           `json:"warning,omitempty"`
}

type tokenResponse struct {
	Token  services.Token  `json:"token"`
	Action services.Action `json:"action"`
}

type confirmResponse struct {
	Action  services.Action `json:"action"`
	View    services.View   `json:"view"`
	Warning string          `json:"warning,omitempty"`
}

type settingResponse struct {
	Value   core.Money `json:"value"`
	Warning string     `json:"warning,omitempty"`
}

type themeResponse struct {
	Theme   core.Theme `json:"theme"`
	Warning string     `json:"warning,omitempty"`
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	f, ok, err := filterFromQuery(r.URL.Query())
	if err != nil {
		writeError(w, err)
		return
	}
	if ok {
		if err := s.tracker.SetFilter(f); err != nil {
			writeError(w, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, s.tracker.View())
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[core.Type][]string{
		core.Income:  core.CategoriesFor(core.Income),
		core.Expense: core.CategoriesFor(core.Expense),
	})
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	d, err := parseDraft(w, r)
	if err != nil {
		writeError(w, err)
		return
	}
	tx, err := s.tracker.AddTransaction(r.Context(), d)
	s.writeTransaction(w, http.StatusCreated, tx, err)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	tx, err := s.tracker.Transaction(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, transactionResponse{Transaction: tx})
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	d, err := parseDraft(w, r)
	if err != nil {
		writeError(w, err)
		return
	}
	tx, err := s.tracker.EditTransaction(r.Context(), r.PathValue("id"), d)
	s.writeTransaction(w, http.StatusOK, tx, err)
}

func (s *Server) writeTransaction(w http.ResponseWriter, status int, tx core.Transaction, err error) {
	warn, err := warning(err)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, status, transactionResponse{Transaction: tx, Warning: warn})
}

func (s *Server) handleRequestDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	tok, err := s.tracker.RequestDelete(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, tokenResponse{Token: tok, Action: services.Action{Kind: services.ActionDelete, TransactionID: id}})
}

func (s *Server) handleRequestReset(w http.ResponseWriter, r *http.Request) {
	tok := s.tracker.RequestReset()
	writeJSON(w, http.StatusAccepted, tokenResponse{Token: tok, Action: services.Action{Kind: services.ActionReset}})
}

func (s *Server) handleConfirm(w http.ResponseWriter, r *http.Request) {
	a, err := s.tracker.Confirm(r.Context(), services.Token(r.PathValue("token")))
	warn, err := warning(err)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, confirmResponse{Action: a, View: s.tracker.View(), Warning: warn})
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	if !s.tracker.Cancel(services.Token(r.PathValue("token"))) {
		writeError(w, services.ErrUnknownToken)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"cancelled": true})
}

func (s *Server) handleSetBudget(w http.ResponseWriter, r *http.Request) {
	s.handleSetting(w, r, s.tracker.SetBudget)
}

func (s *Server) handleSetSavings(w http.ResponseWriter, r *http.Request) {
	s.handleSetting(w, r, s.tracker.SetSavingsGoal)
}

func (s *Server) handleSetting(w http.ResponseWriter, r *http.Request, set func(context.Context, string) (core.Money, error)) {
	raw, err := parseValue(w, r, "value")
	if err != nil {
		writeError(w, err)
		return
	}
	v, err := set(r.Context(), raw)
	warn, err := warning(err)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settingResponse{Value: v, Warning: warn})
}

func (s *Server) handleSetFilter(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(w, r)
	if err := p.Parse(); err != nil {
		writeError(w, err)
		return
	}
	f, err := core.ParseFilter(p.Get("month"), p.Get("year"))
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.tracker.SetFilter(f); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.tracker.View())
}

func (s *Server) handleClearFilter(w http.ResponseWriter, r *http.Request) {
	s.tracker.ClearFilter()
	writeJSON(w, http.StatusOK, s.tracker.View())
}

func (s *Server) handleToggleTheme(w http.ResponseWriter, r *http.Request) {
	th, err := s.tracker.ToggleTheme(r.Context())
	warn, err := warning(err)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, themeResponse{Theme: th, Warning: warn})
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	name, n, err := s.tracker.Export(&buf)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set("X-Row-Count", strconv.Itoa(n))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleExportSheet(w http.ResponseWriter, r *http.Request) {
	if s.publisher == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "spreadsheet export is not configured"})
		return
	}
	filter, rows := s.tracker.Selection()
	jobID, err := export.QueueSheetExport(r.Context(), s.publisher, filter, rows, s.now())
	if err != nil {
		if !errors.Is(err, export.ErrNothingToExport) {
			s.logger.ErrorContext(r.Context(), "Failed to queue sheet export",
				log.NewFields().WithOperation(log.OpExport).WithError(err).ToSlice()...)
		}
		writeError(w, err)
		return
	}
	s.logger.InfoContext(r.Context(), "Sheet export queued", log.FieldOperation, log.OpExport, log.FieldJobID, jobID)
	writeJSON(w, http.StatusAccepted, map[string]string{"job_id": jobID})
}
