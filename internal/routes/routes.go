package routes

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/stanstork/visitor-kiosk-api/internal/handlers"
)

type Handlers struct {
	Health  *handlers.HealthHandler
	Hosts   *handlers.HostHandler
	Visits  *handlers.VisitHandler
	Reports *handlers.ReportHandler
	Metrics http.Handler // optional
}

// NewRouter sets up the API routes. Middleware passed here runs after route
// matching, so it can see the route template.
func NewRouter(h Handlers, mw ...mux.MiddlewareFunc) *mux.Router {
	router := mux.NewRouter()
	for _, m := range mw {
		router.Use(m)
	}

	// Health check route
	router.HandleFunc("/health", h.Health.HealthCheck).Methods(http.MethodGet)
	if h.Metrics != nil {
		router.Handle("/metrics", h.Metrics).Methods(http.MethodGet)
	}

	// Host registry
	router.HandleFunc("/hosts", h.Hosts.CreateHost).Methods(http.MethodPost)
	router.HandleFunc("/hosts", h.Hosts.ListActiveHosts).Methods(http.MethodGet)
	router.HandleFunc("/hosts/all", h.Hosts.ListAllHosts).Methods(http.MethodGet)
	router.HandleFunc("/hosts/{id}/enable", h.Hosts.EnableHost).Methods(http.MethodPost)
	router.HandleFunc("/hosts/{id}/disable", h.Hosts.DisableHost).Methods(http.MethodPost)

	// Visit lifecycle
	router.HandleFunc("/checkin", h.Visits.CheckIn).Methods(http.MethodPost)
	router.HandleFunc("/visits/active", h.Visits.ListActiveVisits).Methods(http.MethodGet)
	router.HandleFunc("/visits/verify/{token}", h.Visits.VerifyToken).Methods(http.MethodGet)
	router.HandleFunc("/visits/{id}/checkout", h.Visits.Checkout).Methods(http.MethodPost)

	// Reporting
	router.HandleFunc("/visits/history", h.Reports.History).Methods(http.MethodGet)
	router.HandleFunc("/stats", h.Reports.Stats).Methods(http.MethodGet)
	router.HandleFunc("/export/csv", h.Reports.ExportCSV).Methods(http.MethodGet)
	router.HandleFunc("/export/xlsx", h.Reports.ExportXLSX).Methods(http.MethodGet)
	router.HandleFunc("/visits/export", h.Reports.ExportCSVLegacy).Methods(http.MethodGet)

	return router
}
