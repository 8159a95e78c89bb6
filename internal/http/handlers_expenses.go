package http

import (
	"errors"
	"net/http"

	"tripmate/internal/ledger"
	"tripmate/internal/log"
)

type expenseRequest struct {
	Title      string `json:"title"`
	Amount     string `json:"amount"`
	Category   string `json:"category"`
	SplitNames string `json:"splitNames"`
	SplitCount int    `json:"splitCount"`
	Date       string `json:"date"`
}

func (r expenseRequest) draft() ledger.Draft {
	return ledger.Draft{
		Title:      r.Title,
		Amount:     r.Amount,
		Category:   r.Category,
		SplitNames: r.SplitNames,
		SplitCount: r.SplitCount,
		Date:       r.Date,
	}
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	expenses, err := s.deps.Expenses.ListExpenses(r.Context(), user.ID, r.PathValue("tripID"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toExpensePayloads(expenses))
}

func (s *Server) handleGetExpense(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	expense, err := s.deps.Expenses.GetExpense(r.Context(), user.ID, r.PathValue("tripID"), r.PathValue("expenseID"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toExpensePayload(*expense))
}

// handleCreateExpense runs the request through the entry form so the API
// applies the same validation and split derivation as interactive entry.
func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	tripID := r.PathValue("tripID")
	var req expenseRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	form := ledger.NewForm(tripID, s.deps.Expenses.FormPersister(user.ID))
	if err := form.Begin(); err != nil {
		writeDomainError(w, err)
		return
	}
	if err := form.SetDraft(req.draft()); err != nil {
		writeDomainError(w, err)
		return
	}
	created, err := form.Submit(r.Context())
	if err != nil {
		s.writeFormError(w, form, err)
		return
	}
	s.logger.InfoContext(r.Context(), "expense created",
		log.FieldUserID, user.ID,
		log.FieldTripID, tripID,
		log.FieldExpenseID, created.ID,
	)
	writeJSON(w, http.StatusCreated, toExpensePayload(*created))
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	tripID := r.PathValue("tripID")
	expenseID := r.PathValue("expenseID")
	var req expenseRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	existing, err := s.deps.Expenses.GetExpense(r.Context(), user.ID, tripID, expenseID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	form := ledger.NewForm(tripID, s.deps.Expenses.FormPersister(user.ID))
	if err := form.BeginEdit(*existing); err != nil {
		writeDomainError(w, err)
		return
	}
	if err := form.SetDraft(req.draft()); err != nil {
		writeDomainError(w, err)
		return
	}
	updated, err := form.Submit(r.Context())
	if err != nil {
		s.writeFormError(w, form, err)
		return
	}
	writeJSON(w, http.StatusOK, toExpensePayload(*updated))
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	err := s.deps.Expenses.DeleteExpense(r.Context(), user.ID, r.PathValue("tripID"), r.PathValue("expenseID"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) writeFormError(w http.ResponseWriter, form *ledger.Form, err error) {
	if errors.Is(err, ledger.ErrValidation) {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:  err.Error(),
			Fields: form.FieldErrors(),
		})
		return
	}
	writeDomainError(w, err)
}
