package handlers

import (
	"net/http"

	"github.com/Dosada05/hackmate/middleware"
	"github.com/Dosada05/hackmate/models"
	"github.com/Dosada05/hackmate/services"
)

type HackathonHandler struct {
	hackathonService services.HackathonService
}

func NewHackathonHandler(hackathonService services.HackathonService) *HackathonHandler {
	return &HackathonHandler{hackathonService: hackathonService}
}

// ListHandler отдает только одобренные хакатоны. Фильтры приходят
// query-параметрами и применяются на стороне базы.
func (h *HackathonHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := models.HackathonFilter{
		Search:          q.Get("search"),
		Location:        q.Get("location"),
		Organizer:       q.Get("organizer"),
		OnlineOnly:      q.Get("online") == "true",
		OnlyTeamsNeeded: q.Get("teams_needed") == "true",
	}

	hackathons, err := h.hackathonService.List(r.Context(), filter)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"hackathons": hackathons}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *HackathonHandler) GetHandler(w http.ResponseWriter, r *http.Request) {
	hackathonID, err := getIDFromURL(r, "hackathonID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	hackathon, err := h.hackathonService.GetByID(r.Context(), hackathonID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"hackathon": hackathon}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *HackathonHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	var input services.CreateHackathonInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	hackathon, err := h.hackathonService.Create(r.Context(), input, currentUserID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"hackathon": hackathon}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *HackathonHandler) JoinHandler(w http.ResponseWriter, r *http.Request) {
	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	hackathonID, err := getIDFromURL(r, "hackathonID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	participant, err := h.hackathonService.Join(r.Context(), hackathonID, currentUserID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"participant": participant}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *HackathonHandler) UploadLogoHandler(w http.ResponseWriter, r *http.Request) {
	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}
	role, _ := middleware.GetUserRoleFromContext(r.Context())

	hackathonID, err := getIDFromURL(r, "hackathonID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	file, header, err := r.FormFile("logo")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	hackathon, err := h.hackathonService.UploadLogo(r.Context(), hackathonID, currentUserID, role == models.RoleAdmin, contentType, file)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"hackathon": hackathon}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
