package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/junusg25/kamer-modul-sub006/internal/domain"
	"github.com/junusg25/kamer-modul-sub006/internal/repository"
	"github.com/junusg25/kamer-modul-sub006/internal/service"
)

type RentalHandler struct {
	svc service.RentalService
}

func NewRentalHandler(svc service.RentalService) *RentalHandler {
	return &RentalHandler{svc: svc}
}

type createRentalRequest struct {
	MachineID         int32  `json:"machine_id"`
	CustomerID        int32  `json:"customer_id"`
	StartDate         string `json:"start_date"`
	PlannedReturnDate string `json:"planned_return_date"`
	Status            string `json:"status"`
	Notes             string `json:"notes"`
	CreatedBy         *int32 `json:"created_by"`
}

type updateRentalRequest struct {
	Status            string  `json:"status"`
	StartDate         *string `json:"start_date"`
	PlannedReturnDate *string `json:"planned_return_date"`
	Notes             *string `json:"notes"`
}

// rentalResponse wraps a rental with its time-derived display status so
// clients never compute overdue themselves.
type rentalResponse struct {
	*domain.Rental
	DisplayStatus domain.RentalStatus `json:"display_status"`
}

func toRentalResponse(rt *domain.Rental) rentalResponse {
	return rentalResponse{Rental: rt, DisplayStatus: domain.Classify(rt, time.Now().UTC())}
}

func toRentalResponses(rentals []domain.Rental) []rentalResponse {
	out := make([]rentalResponse, len(rentals))
	now := time.Now().UTC()
	for i := range rentals {
		out[i] = rentalResponse{Rental: &rentals[i], DisplayStatus: domain.Classify(&rentals[i], now)}
	}
	return out
}

func (h *RentalHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := repository.RentalFilter{Status: q.Get("status")}
	var err error
	if f.MachineID, err = queryInt32(q.Get("machine_id")); err != nil {
		writeError(w, err)
		return
	}
	if f.CustomerID, err = queryInt32(q.Get("customer_id")); err != nil {
		writeError(w, err)
		return
	}
	if f.Page, f.PageSize, err = queryPage(q); err != nil {
		writeError(w, err)
		return
	}
	if raw := q.Get("from"); raw != "" {
		t, err := parseDate(raw)
		if err != nil {
			writeError(w, err)
			return
		}
		f.From = &t
	}
	if raw := q.Get("to"); raw != "" {
		t, err := parseDate(raw)
		if err != nil {
			writeError(w, err)
			return
		}
		f.To = &t
	}
	rentals, total, err := h.svc.List(r.Context(), f)
	if err != nil {
		writeError(w, err)
		return
	}
	page, pageSize := defaultPage(f.Page, f.PageSize)
	writeJSON(w, http.StatusOK, listResponse{Data: toRentalResponses(rentals), Total: total, Page: page, PageSize: pageSize})
}

func (h *RentalHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRentalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("malformed body: %w", domain.ErrInvalidInput))
		return
	}

	start, err := parseDate(req.StartDate)
	if err != nil {
		writeError(w, err)
		return
	}
	in := service.CreateRentalInput{
		MachineID:  req.MachineID,
		CustomerID: req.CustomerID,
		StartDate:  start,
		Notes:      req.Notes,
		CreatedBy:  req.CreatedBy,
	}
	if req.PlannedReturnDate != "" {
		t, err := parseDate(req.PlannedReturnDate)
		if err != nil {
			writeError(w, err)
			return
		}
		in.PlannedReturnDate = &t
	}
	switch req.Status {
	case "", string(domain.RentalStatusActive):
	case string(domain.RentalStatusReserved):
		in.RequestReserved = true
	default:
		writeError(w, fmt.Errorf("status %q not allowed on create: %w", req.Status, domain.ErrInvalidInput))
		return
	}

	rt, err := h.svc.Create(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toRentalResponse(rt))
}

func (h *RentalHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	rt, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRentalResponse(rt))
}

// Update dispatches on the status field: returned and cancelled route
// through the release path so the reservation queue advances, an absent
// status is a plain field update, anything else is rejected.
func (h *RentalHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req updateRentalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("malformed body: %w", domain.ErrInvalidInput))
		return
	}

	switch req.Status {
	case string(domain.RentalStatusReturned), string(domain.RentalStatusCancelled):
		rt, err := h.svc.Release(r.Context(), id, domain.RentalStatus(req.Status))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toRentalResponse(rt))
		return
	case "":
	default:
		writeError(w, fmt.Errorf("status %q cannot be set directly: %w", req.Status, domain.ErrInvalidInput))
		return
	}

	in := service.UpdateRentalInput{Notes: req.Notes}
	if req.StartDate != nil {
		t, err := parseDate(*req.StartDate)
		if err != nil {
			writeError(w, err)
			return
		}
		in.StartDate = &t
	}
	if req.PlannedReturnDate != nil {
		t, err := parseDate(*req.PlannedReturnDate)
		if err != nil {
			writeError(w, err)
			return
		}
		in.PlannedReturnDate = &t
	}

	rt, err := h.svc.Update(r.Context(), id, in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRentalResponse(rt))
}

func (h *RentalHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.svc.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func parseDate(raw string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad date %q, want YYYY-MM-DD: %w", raw, domain.ErrInvalidInput)
	}
	return t, nil
}
