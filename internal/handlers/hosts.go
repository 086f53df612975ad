package handlers

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/stanstork/visitor-kiosk-api/internal/models"
	"github.com/stanstork/visitor-kiosk-api/internal/service"
)

type HostHandler struct {
	registry *service.HostRegistry
	logger   zerolog.Logger
}

func NewHostHandler(registry *service.HostRegistry, logger zerolog.Logger) *HostHandler {
	return &HostHandler{registry: registry, logger: logger.With().Str("handler", "hosts").Logger()}
}

type createHostRequest struct {
	FullName string `json:"full_name" validate:"required,max=200,nocontrol"`
	Email    string `json:"email" validate:"required,max=320,nocontrol"`
}

func (req *createHostRequest) normalize() {
	req.FullName = strings.TrimSpace(req.FullName)
	req.Email = strings.TrimSpace(req.Email)
}

// hostOption is the public shape of an active host in the kiosk dropdown.
type hostOption struct {
	ID       int64  `json:"id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}

func (h *HostHandler) CreateHost(w http.ResponseWriter, r *http.Request) {
	var req createHostRequest
	if err := decodeRequest(w, r, &req); err != nil {
		writeError(w, h.logger, r, err)
		return
	}

	host, err := h.registry.CreateHost(r.Context(), req.FullName, req.Email)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int64{"id": host.ID})
}

func (h *HostHandler) ListActiveHosts(w http.ResponseWriter, r *http.Request) {
	hosts, err := h.registry.ListActiveHosts(r.Context())
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	options := make([]hostOption, 0, len(hosts))
	for _, host := range hosts {
		options = append(options, hostOption{ID: host.ID, FullName: host.FullName, Email: host.Email})
	}
	writeJSON(w, http.StatusOK, options)
}

func (h *HostHandler) ListAllHosts(w http.ResponseWriter, r *http.Request) {
	hosts, err := h.registry.ListAllHosts(r.Context())
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	if hosts == nil {
		hosts = []models.Host{}
	}
	writeJSON(w, http.StatusOK, hosts)
}

func (h *HostHandler) EnableHost(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, true)
}

func (h *HostHandler) DisableHost(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, false)
}

func (h *HostHandler) setActive(w http.ResponseWriter, r *http.Request, active bool) {
	id, err := pathID(r, "id", "host")
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	if err := h.registry.SetActive(r.Context(), id, active); err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, successBody{Success: true, ID: id})
}
