package http

import (
	"net/http"

	"expensetracker/internal/core"
	"expensetracker/internal/stats"
)

func (s *Server) handleUserStatistics(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "userID")
	if !ok {
		return
	}
	result, err := s.statistics.UserStatistics(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, result)
}

func (s *Server) handleTopSpendingDays(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "userID")
	if !ok {
		return
	}
	topDays, err := s.statistics.TopSpendingDays(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, struct {
		TopSpendingDays []stats.DayTotal `json:"topSpendingDays"`
	}{TopSpendingDays: topDays})
}

func (s *Server) handleMonthlyChange(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "userID")
	if !ok {
		return
	}
	change, err := s.statistics.MonthlyChange(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, struct {
		MonthlyChange stats.Change `json:"monthlyChange"`
	}{MonthlyChange: change})
}

func (s *Server) handlePredictNextMonth(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "userID")
	if !ok {
		return
	}
	predicted, err := s.statistics.PredictNextMonth(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, struct {
		NextMonthPrediction core.Money `json:"nextMonthPrediction"`
	}{NextMonthPrediction: predicted})
}
