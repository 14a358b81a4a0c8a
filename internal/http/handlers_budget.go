package http

import (
	"net/http"
	"strings"
	"time"

	"fintrack/internal/core"
)

type budgetRequest struct {
	Name        string `json:"name"`
	Category    string `json:"category"`
	Amount      string `json:"amount"`
	Period      string `json:"period"`
	StartDate   string `json:"startDate"` // YYYY-MM-DD
	EndDate     string `json:"endDate"`
	IsRecurring *bool  `json:"isRecurring"`
	Description string `json:"description"`
}

func (s *Server) decodeBudget(r *http.Request, uid int64) (core.Budget, error) {
	var req budgetRequest
	if err := decodeJSON(r, &req); err != nil {
		return core.Budget{}, err
	}

	amount, err := core.ParseAmount(req.Amount)
	if err != nil {
		return core.Budget{}, err
	}

	b := core.Budget{
		UserID:      uid,
		Name:        strings.TrimSpace(req.Name),
		Category:    strings.TrimSpace(req.Category),
		Amount:      amount,
		Period:      core.PeriodKind(req.Period),
		IsRecurring: true,
		Description: strings.TrimSpace(req.Description),
		StartDate:   time.Now(),
	}
	if b.Period == "" {
		b.Period = core.Monthly
	}
	if b.Name == "" {
		b.Name = b.Category
	}
	if req.IsRecurring != nil {
		b.IsRecurring = *req.IsRecurring
	}
	if strings.TrimSpace(req.StartDate) != "" {
		if b.StartDate, err = parseDate(req.StartDate); err != nil {
			return core.Budget{}, core.ErrMissingDate
		}
	}
	if strings.TrimSpace(req.EndDate) != "" {
		end, err := parseDate(req.EndDate)
		if err != nil {
			return core.Budget{}, core.ErrInvalidDates
		}
		// Inclusive end of day so the window covers the whole date.
		end = time.Date(end.Year(), end.Month(), end.Day(), 23, 59, 59, int(999*time.Millisecond), end.Location())
		b.EndDate = &end
	}

	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}
	return b, nil
}

func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	b, err := s.decodeBudget(r, uid)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	if err := s.store.CreateBudget(r.Context(), &b); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toBudgetDTO(b))
}

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	budgets, err := s.store.ListBudgets(r.Context(), uid)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	out := make([]budgetDTO, len(budgets))
	for i, b := range budgets {
		out[i] = toBudgetDTO(b)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetBudget(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	b, err := s.store.GetBudget(r.Context(), uid, id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toBudgetDTO(b))
}

func (s *Server) handleUpdateBudget(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	b, err := s.decodeBudget(r, uid)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	b.ID = id

	if err := s.store.UpdateBudget(r.Context(), &b); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toBudgetDTO(b))
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.store.DeleteBudget(r.Context(), uid, id); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleBudgetProgress is the budget-detail read path: resolve the
// current window, aggregate spending, report progress.
func (s *Server) handleBudgetProgress(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	b, err := s.store.GetBudget(r.Context(), uid, id)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	progress, err := s.budgets.ComputeProgress(r.Context(), b, time.Now())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, budgetProgressResponse{
		Budget: toBudgetDTO(b),
		Progress: progressDTO{
			TotalSpent:      progress.TotalSpent,
			Remaining:       progress.Remaining,
			PercentageSpent: progress.PercentageSpent,
			IsOverspent:     progress.IsOverspent,
		},
		Period: periodDTO{
			StartDate: progress.Period.Start,
			EndDate:   progress.Period.End,
		},
	})
}
