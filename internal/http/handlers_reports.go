package http

import (
	"context"
	"net/http"

	"budget/internal/log"
	"budget/internal/reports"
)

// getSummary returns the caller's summary, serving from cache when the
// aggregates have not been invalidated by a write.
func (s *Server) getSummary(ctx context.Context, userID int64) (reports.Summary, error) {
	key := summaryCacheKey(userID)

	if summary, found := s.summaryCache.Get(key); found {
		log.FromContext(ctx).DebugContext(ctx, "Summary cache hit", log.FieldUserID, userID)
		return summary, nil
	}

	txs, err := s.transactions.FindAll(ctx, userID)
	if err != nil {
		return reports.Summary{}, err
	}

	summary := reports.BuildSummary(txs)
	s.summaryCache.Set(key, summary)
	log.FromContext(ctx).DebugContext(ctx, "Summary cached", log.FieldUserID, userID)
	return summary, nil
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	identity, err := caller(r)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	summary, err := s.getSummary(r.Context(), identity.UserID)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	identity, err := caller(r)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	summary, err := s.getSummary(r.Context(), identity.UserID)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	png, err := reports.ExpenseChartPNG(summary)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	if png == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}
