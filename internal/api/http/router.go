package http

import (
	"net/http"

	"github.com/gorilla/mux"
)

// NewRouter wires the REST surface. All routes live under /api/v1.
func NewRouter(machines *MachineHandler, rentals *RentalHandler, notifications *NotificationHandler) *mux.Router {
	r := mux.NewRouter()
	r.Use(RequestID, AccessLog)

	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/machines", machines.List).Methods(http.MethodGet)
	api.HandleFunc("/machines", machines.Register).Methods(http.MethodPost)
	api.HandleFunc("/machines/{id}", machines.Get).Methods(http.MethodGet)
	api.HandleFunc("/machines/{id}", machines.Update).Methods(http.MethodPut)
	api.HandleFunc("/machines/{id}", machines.Delete).Methods(http.MethodDelete)
	api.HandleFunc("/machines/{id}/availability", machines.Availability).Methods(http.MethodGet)

	api.HandleFunc("/rentals", rentals.List).Methods(http.MethodGet)
	api.HandleFunc("/rentals", rentals.Create).Methods(http.MethodPost)
	api.HandleFunc("/rentals/{id}", rentals.Get).Methods(http.MethodGet)
	api.HandleFunc("/rentals/{id}", rentals.Update).Methods(http.MethodPut)
	api.HandleFunc("/rentals/{id}", rentals.Delete).Methods(http.MethodDelete)

	api.HandleFunc("/notifications", notifications.List).Methods(http.MethodGet)
	api.HandleFunc("/notifications/{id}/read", notifications.MarkAsRead).Methods(http.MethodPut)

	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	return r
}
