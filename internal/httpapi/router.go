package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"boosterdraft/internal/draftmodel"
	"boosterdraft/internal/api/response"
)

func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealthz)

	s.router.Get("/", s.handleUploadForm)
	s.router.Post("/api/start", s.handleStartDraft)

	s.router.Get("/api/drafts", s.handleListDrafts)
	s.router.Get("/api/drafts/{draftID}", s.handleGetDraft)

	s.router.Get("/{draftID}", s.handleDraftPage)

	s.router.Get("/ws/{draftID}", s.handleWebSocket)
	s.router.Get("/ws/{draftID}/{seatID}", s.handleWebSocket)
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	response.JSON(w, http.StatusOK, map[string]interface{}{
		"status":        "ok",
		"service":       "boosterdraft-server",
		"active_drafts": s.reg.ActiveCount(),
	})
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	draftID := draftmodel.DraftID(chi.URLParam(r, "draftID"))
	seatID := draftmodel.SeatID(chi.URLParam(r, "seatID"))
	s.hub.ServeWs(w, r, draftID, seatID)
}
