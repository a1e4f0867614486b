package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"expensetracker/internal/core"
	"expensetracker/internal/store"
)

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	expenses, err := s.expenses.List(r.Context(), filter)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if expenses == nil {
		expenses = []core.Expense{}
	}
	writeJSON(w, r, http.StatusOK, expenses)
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var e core.Expense
	if err := json.NewDecoder(r.Body).Decode(&e); err != nil {
		writeError(w, r, http.StatusBadRequest, "malformed request body")
		return
	}
	e.ID = 0
	e.Description = sanitizeInput(e.Description)

	id, err := s.expenses.Create(r.Context(), e)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	e.ID = id
	writeJSON(w, r, http.StatusCreated, e)
}

func (s *Server) handleGetExpense(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	e, err := s.expenses.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, e)
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var e core.Expense
	if err := json.NewDecoder(r.Body).Decode(&e); err != nil {
		writeError(w, r, http.StatusBadRequest, "malformed request body")
		return
	}
	e.ID = id
	e.Description = sanitizeInput(e.Description)

	if err := s.expenses.Update(r.Context(), e); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, e)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := s.expenses.Delete(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.expenses.ListUsers(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if users == nil {
		users = []core.User{}
	}
	writeJSON(w, r, http.StatusOK, users)
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.expenses.ListCategories(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if categories == nil {
		categories = []core.Category{}
	}
	writeJSON(w, r, http.StatusOK, categories)
}

// parseFilter reads the optional query parameters of the expense listing.
// Every parameter is independent; absent means unconstrained.
func parseFilter(r *http.Request) (store.Filter, error) {
	var f store.Filter
	q := r.URL.Query()

	if v := strings.TrimSpace(q.Get("user_id")); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return store.Filter{}, errBadQueryParam("user_id")
		}
		f.UserID = &id
	}
	if v := strings.TrimSpace(q.Get("category")); v != "" {
		f.Category = &v
	}
	if v := strings.TrimSpace(q.Get("start_date")); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			return store.Filter{}, errBadQueryParam("start_date")
		}
		f.From = &d
	}
	if v := strings.TrimSpace(q.Get("end_date")); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			return store.Filter{}, errBadQueryParam("end_date")
		}
		f.To = &d
	}
	return f, nil
}

type badQueryParam string

func errBadQueryParam(name string) error { return badQueryParam(name) }

func (b badQueryParam) Error() string { return "invalid query parameter: " + string(b) }

// pathID parses the numeric path segment, answering 400 itself on failure.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, r, http.StatusBadRequest, "invalid "+name+" in path")
		return 0, false
	}
	return id, true
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
