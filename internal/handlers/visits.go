package handlers

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/stanstork/visitor-kiosk-api/internal/models"
	"github.com/stanstork/visitor-kiosk-api/internal/service"
)

type VisitHandler struct {
	engine   *service.VisitEngine
	verifier *service.Verifier
	logger   zerolog.Logger
}

func NewVisitHandler(engine *service.VisitEngine, verifier *service.Verifier, logger zerolog.Logger) *VisitHandler {
	return &VisitHandler{engine: engine, verifier: verifier, logger: logger.With().Str("handler", "visits").Logger()}
}

type checkInRequest struct {
	FullName string     `json:"full_name" validate:"required,max=200,nocontrol"`
	Company  *string    `json:"company" validate:"omitempty,max=200,nocontrol"`
	Phone    *string    `json:"phone" validate:"omitempty,max=50,nocontrol"`
	HostID   FlexibleID `json:"host_id" validate:"required,gt=0"`
	Purpose  string     `json:"purpose" validate:"required,max=500,nocontrol"`
}

func (req *checkInRequest) normalize() {
	req.FullName = strings.TrimSpace(req.FullName)
	req.Company = trimOptional(req.Company)
	req.Phone = trimOptional(req.Phone)
	req.Purpose = strings.TrimSpace(req.Purpose)
}

type checkInResponse struct {
	Success bool   `json:"success"`
	VisitID int64  `json:"visit_id"`
	QRToken string `json:"qr_token"`
}

func (h *VisitHandler) CheckIn(w http.ResponseWriter, r *http.Request) {
	var req checkInRequest
	if err := decodeRequest(w, r, &req); err != nil {
		writeError(w, h.logger, r, err)
		return
	}

	result, err := h.engine.CheckIn(r.Context(), service.CheckInInput{
		FullName: req.FullName,
		Company:  req.Company,
		Phone:    req.Phone,
		HostID:   int64(req.HostID),
		Purpose:  req.Purpose,
	})
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, checkInResponse{Success: true, VisitID: result.VisitID, QRToken: result.Token})
}

func (h *VisitHandler) ListActiveVisits(w http.ResponseWriter, r *http.Request) {
	visits, err := h.engine.ListActive(r.Context())
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	if visits == nil {
		visits = []models.VisitSummary{}
	}
	writeJSON(w, http.StatusOK, visits)
}

func (h *VisitHandler) VerifyToken(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimSpace(mux.Vars(r)["token"])
	detail, err := h.verifier.Verify(r.Context(), token)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (h *VisitHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "visit")
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	if _, err := h.engine.Checkout(r.Context(), id); err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, successBody{Success: true})
}
