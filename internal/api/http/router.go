package http

import (
	"net/http"

	"blooddrive-backend/internal/domain"
	"blooddrive-backend/internal/security"
	"blooddrive-backend/internal/service"
	"blooddrive-backend/internal/storage"

	"github.com/gorilla/mux"
)

// Services bundles everything the HTTP API calls into.
type Services struct {
	Auth          service.AuthService
	Donors        service.DonorService
	Requests      service.RequestService
	Donations     service.DonationService
	Reports       service.ReportService
	Notifications service.NotificationService
	// Storage serves report downloads. Nil disables the download route.
	Storage storage.StorageInterface
}

type handler struct {
	svc Services
}

// NewRouter builds the /api/v1 router. Every route is named; the name selects
// its security level in config.EndpointSecurityConfig.
func NewRouter(svc Services, tokens security.TokenManager) *mux.Router {
	h := &handler{svc: svc}
	r := mux.NewRouter()
	r.Use(requestLogger, recoverer)

	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(NewAuthMiddleware(tokens).Handler)

	// Auth
	api.HandleFunc("/auth/signup", h.signup).Methods(http.MethodPost).Name("Signup")
	api.HandleFunc("/auth/login", h.login).Methods(http.MethodPost).Name("Login")
	api.HandleFunc("/auth/refresh", h.refresh).Methods(http.MethodPost).Name("Refresh")

	// Donors
	api.HandleFunc("/donors", h.listDonors).Methods(http.MethodGet).Name("ListDonors")
	api.HandleFunc("/donors", h.registerDonor).Methods(http.MethodPost).Name("RegisterDonor")
	api.HandleFunc("/donors/eligible", h.listEligible).Methods(http.MethodGet).Name("ListEligible")
	api.HandleFunc("/donors/nearby", h.nearbyDonors).Methods(http.MethodGet).Name("NearbyDonors")
	api.HandleFunc("/donors/{id:[0-9]+}", h.getDonor).Methods(http.MethodGet).Name("GetDonor")
	api.HandleFunc("/donors/{id:[0-9]+}", h.updateDonor).Methods(http.MethodPut).Name("UpdateDonor")
	api.HandleFunc("/donors/{id:[0-9]+}", h.deleteDonor).Methods(http.MethodDelete).Name("DeleteDonor")
	api.HandleFunc("/donors/{id:[0-9]+}/eligibility", h.donorEligibility).Methods(http.MethodGet).Name("DonorEligibility")

	// Admin
	api.HandleFunc("/admin/donors", h.bulkAddDonors).Methods(http.MethodPost).Name("BulkAddDonors")
	api.HandleFunc("/admin/donors/{id:[0-9]+}/donations", h.listDonations).Methods(http.MethodGet).Name("ListDonations")
	api.HandleFunc("/admin/donors/{id:[0-9]+}/donations", h.logDonation).Methods(http.MethodPost).Name("LogDonation")
	api.HandleFunc("/admin/donors/{id:[0-9]+}/donations", h.resetDonations).Methods(http.MethodDelete).Name("ResetDonations")
	api.HandleFunc("/admin/dashboard", h.dashboard).Methods(http.MethodGet).Name("Dashboard")
	api.HandleFunc("/admin/reports/donors", h.exportDonors).Methods(http.MethodPost).Name("ExportDonors")

	// Requests
	api.HandleFunc("/requests", h.createRequest).Methods(http.MethodPost).Name("CreateRequest")
	api.HandleFunc("/requests/incoming", h.incomingRequests).Methods(http.MethodGet).Name("IncomingRequests")
	api.HandleFunc("/requests/mine", h.myRequests).Methods(http.MethodGet).Name("MyRequests")
	api.HandleFunc("/requests/{id:[0-9]+}/approve", h.approveRequest).Methods(http.MethodPost).Name("ApproveRequest")
	api.HandleFunc("/requests/{id:[0-9]+}/reject", h.rejectRequest).Methods(http.MethodPost).Name("RejectRequest")
	api.HandleFunc("/requests/{id:[0-9]+}/complete", h.completeRequest).Methods(http.MethodPost).Name("CompleteRequest")
	api.HandleFunc("/requests/{id:[0-9]+}/assign", h.assignRequest).Methods(http.MethodPost).Name("AssignRequest")

	// Notifications
	api.HandleFunc("/notifications", h.listNotifications).Methods(http.MethodGet).Name("ListNotifications")
	api.HandleFunc("/notifications/{id:[0-9]+}/read", h.markNotification).Methods(http.MethodPost).Name("MarkNotification")

	// Report downloads
	if svc.Storage != nil {
		api.HandleFunc("/download/{key}", h.download).Methods(http.MethodGet).Name("Download")
	}

	return r
}

// actor returns the authenticated caller. Routes behind SecurityAccess or
// SecurityAdmin always have one.
func actor(r *http.Request) domain.Actor {
	a, _ := ActorFromContext(r.Context())
	return a
}
