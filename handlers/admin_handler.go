package handlers

import (
	"net/http"

	"github.com/Dosada05/hackmate/services"
)

// AdminHandler обслуживает модерацию хакатонов. Все роуты за
// middleware.RequireAdmin, поэтому роль здесь повторно не проверяем.
type AdminHandler struct {
	hackathonService services.HackathonService
}

func NewAdminHandler(hackathonService services.HackathonService) *AdminHandler {
	return &AdminHandler{hackathonService: hackathonService}
}

func (h *AdminHandler) ListPendingHandler(w http.ResponseWriter, r *http.Request) {
	hackathons, err := h.hackathonService.ListPending(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"hackathons": hackathons}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *AdminHandler) ApproveHandler(w http.ResponseWriter, r *http.Request) {
	hackathonID, err := getIDFromURL(r, "hackathonID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.hackathonService.Approve(r.Context(), hackathonID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"status": "approved"}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *AdminHandler) RejectHandler(w http.ResponseWriter, r *http.Request) {
	hackathonID, err := getIDFromURL(r, "hackathonID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.hackathonService.Reject(r.Context(), hackathonID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"status": "rejected"}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
