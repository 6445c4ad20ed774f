package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/naufalhakim/catatin/internal/common"
	"github.com/naufalhakim/catatin/internal/export"
	"github.com/naufalhakim/catatin/internal/model"
	"github.com/naufalhakim/catatin/internal/service"
)

const maxRequestBody = 1 << 20 // 1 MiB

func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: invalid request body: %v", common.ErrValidationFailed, err)
	}
	return nil
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid id", common.ErrValidationFailed)
	}
	return id, nil
}

type parseRequest struct {
	Text string `json:"text"`
}

type parseResponse struct {
	Candidates []model.ExpenseCandidate `json:"candidates"`
	Success    bool                     `json:"success"`
}

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request, ownerID string) {
	var req parseRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	candidates, err := s.engine.Parse(r.Context(), ownerID, req.Text, time.Now())
	if err != nil {
		s.writeError(w, err)
		return
	}

	if candidates == nil {
		candidates = []model.ExpenseCandidate{}
	}
	s.writeJSON(w, http.StatusOK, parseResponse{Candidates: candidates, Success: true})
}

type saveBatchRequest struct {
	Candidates []model.ExpenseCandidate `json:"candidates"`
}

type saveBatchResponse struct {
	Saved   int64 `json:"saved"`
	Success bool  `json:"success"`
}

func (s *Server) handleSaveBatch(w http.ResponseWriter, r *http.Request, ownerID string) {
	var req saveBatchRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	count, err := s.engine.Commit(r.Context(), ownerID, req.Candidates)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, saveBatchResponse{Saved: count, Success: true})
}

type expenseRequest struct {
	Item       string `json:"item"`
	Amount     int64  `json:"amount"`
	CategoryID *int64 `json:"categoryId"`
	Date       string `json:"date"`
	Notes      string `json:"notes"`
}

func (req *expenseRequest) toExpense(ownerID string) (*model.Expense, error) {
	date, err := time.Parse(model.DateLayout, req.Date)
	if err != nil {
		return nil, fmt.Errorf("%w: date must be %s", common.ErrValidationFailed, model.DateLayout)
	}
	if req.Item == "" {
		return nil, fmt.Errorf("%w: item must not be empty", common.ErrValidationFailed)
	}
	if req.Amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", common.ErrValidationFailed)
	}
	return &model.Expense{
		OwnerID:     ownerID,
		Item:        req.Item,
		Amount:      req.Amount,
		CategoryID:  req.CategoryID,
		ExpenseDate: date,
		Notes:       req.Notes,
	}, nil
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request, ownerID string) {
	var req expenseRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	expense, err := req.toExpense(ownerID)
	if err != nil {
		s.writeError(w, err)
		return
	}

	saved, err := s.store.CreateExpense(r.Context(), expense)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, saved)
}

func (s *Server) handleGetExpense(w http.ResponseWriter, r *http.Request, ownerID string) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	expense, err := s.store.GetExpense(r.Context(), id, ownerID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, expense)
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request, ownerID string) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	var req expenseRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	expense, err := req.toExpense(ownerID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	expense.ID = id

	if err := s.store.UpdateExpense(r.Context(), expense); err != nil {
		s.writeError(w, err)
		return
	}

	updated, err := s.store.GetExpense(r.Context(), id, ownerID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request, ownerID string) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	if err := s.store.DeleteExpense(r.Context(), id, ownerID); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request, ownerID string) {
	filter, err := parseExpenseFilter(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	expenses, err := s.store.ListExpenses(r.Context(), ownerID, filter)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if expenses == nil {
		expenses = []model.Expense{}
	}
	s.writeJSON(w, http.StatusOK, expenses)
}

func parseExpenseFilter(r *http.Request) (service.ExpenseFilter, error) {
	var filter service.ExpenseFilter
	q := r.URL.Query()

	if v := q.Get("start"); v != "" {
		t, err := time.Parse(model.DateLayout, v)
		if err != nil {
			return filter, fmt.Errorf("%w: start must be %s", common.ErrValidationFailed, model.DateLayout)
		}
		filter.StartDate = &t
	}
	if v := q.Get("end"); v != "" {
		t, err := time.Parse(model.DateLayout, v)
		if err != nil {
			return filter, fmt.Errorf("%w: end must be %s", common.ErrValidationFailed, model.DateLayout)
		}
		filter.EndDate = &t
	}
	if v := q.Get("category"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return filter, fmt.Errorf("%w: category must be an id", common.ErrValidationFailed)
		}
		filter.CategoryID = &id
	}
	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 0 {
			return filter, fmt.Errorf("%w: invalid limit", common.ErrValidationFailed)
		}
		filter.Limit = limit
	}
	if v := q.Get("offset"); v != "" {
		offset, err := strconv.Atoi(v)
		if err != nil || offset < 0 {
			return filter, fmt.Errorf("%w: invalid offset", common.ErrValidationFailed)
		}
		filter.Offset = offset
	}
	return filter, nil
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request, ownerID string) {
	categories, err := s.store.ListCategories(r.Context(), ownerID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if categories == nil {
		categories = []model.Category{}
	}
	s.writeJSON(w, http.StatusOK, categories)
}

type categoryRequest struct {
	Name  string `json:"name"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request, ownerID string) {
	var req categoryRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if req.Name == "" {
		s.writeError(w, fmt.Errorf("%w: name must not be empty", common.ErrValidationFailed))
		return
	}

	created, err := s.store.CreateCategory(r.Context(), ownerID, req.Name, req.Icon, req.Color)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request, ownerID string) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	if err := s.store.DeleteCategory(r.Context(), id, ownerID); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type dashboardResponse struct {
	MonthTotal int64                   `json:"monthTotal"`
	TodayTotal int64                   `json:"todayTotal"`
	MonthCount int64                   `json:"monthCount"`
	ByCategory []categoryTotalResponse `json:"byCategory"`
	Recent     []model.Expense         `json:"recent"`
}

type categoryTotalResponse struct {
	CategoryID *int64 `json:"categoryId"`
	Name       string `json:"name"`
	Color      string `json:"color"`
	Total      int64  `json:"total"`
	Count      int64  `json:"count"`
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request, ownerID string) {
	summary, err := s.store.GetDashboard(r.Context(), ownerID, time.Now())
	if err != nil {
		s.writeError(w, err)
		return
	}

	resp := dashboardResponse{
		MonthTotal: summary.MonthTotal,
		TodayTotal: summary.TodayTotal,
		MonthCount: summary.MonthCount,
		ByCategory: make([]categoryTotalResponse, 0, len(summary.ByCategory)),
		Recent:     summary.Recent,
	}
	for _, total := range summary.ByCategory {
		resp.ByCategory = append(resp.ByCategory, categoryTotalResponse{
			CategoryID: total.CategoryID,
			Name:       total.Name,
			Color:      total.Color,
			Total:      total.Total,
			Count:      total.Count,
		})
	}
	if resp.Recent == nil {
		resp.Recent = []model.Expense{}
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request, ownerID string) {
	filter, err := parseExpenseFilter(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = "csv"
	}

	expenses, err := s.store.ListExpenses(r.Context(), ownerID, filter)
	if err != nil {
		s.writeError(w, err)
		return
	}

	rows, err := export.BuildRows(r.Context(), s.store, ownerID, expenses)
	if err != nil {
		s.writeError(w, err)
		return
	}

	switch format {
	case "csv":
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="expenses.csv"`)
		if err := export.WriteCSV(w, rows); err != nil {
			s.logger.Error("csv export failed", "error", err)
		}
	case "json":
		w.Header().Set("Content-Disposition", `attachment; filename="expenses.json"`)
		s.writeJSON(w, http.StatusOK, rows)
	default:
		s.writeError(w, fmt.Errorf("%w: unsupported format %q", common.ErrValidationFailed, format))
	}
}

func (s *Server) handleListAttempts(w http.ResponseWriter, r *http.Request, ownerID string) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 0 {
			s.writeError(w, fmt.Errorf("%w: invalid limit", common.ErrValidationFailed))
			return
		}
		limit = parsed
	}

	attempts, err := s.store.ListParsingAttempts(r.Context(), ownerID, limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if attempts == nil {
		attempts = []model.ParsingAttempt{}
	}
	s.writeJSON(w, http.StatusOK, attempts)
}
