package api

import "net/http"

// handleLLMStats reports rolling latency statistics for provider calls.
func (s *Server) handleLLMStats(w http.ResponseWriter, r *http.Request) {
	if s.llmClient == nil || s.llmClient.Stats == nil {
		writeFailure(w, http.StatusServiceUnavailable, "no provider statistics available")
		return
	}

	snap := s.llmClient.Stats.Snapshot()
	writeSuccess(w, http.StatusOK, map[string]any{
		"model":       s.llmClient.Model(),
		"calls":       snap.Count,
		"min_ms":      snap.MinMs,
		"max_ms":      snap.MaxMs,
		"avg_ms":      snap.AvgMs,
		"p50_ms":      snap.P50Ms,
		"p95_ms":      snap.P95Ms,
		"queue_depth": s.orchestrator.QueueDepth(),
	})
}
