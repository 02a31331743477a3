package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/junusg25/kamer-modul-sub006/internal/domain"
	"github.com/junusg25/kamer-modul-sub006/internal/repository"
	"github.com/junusg25/kamer-modul-sub006/internal/service"
)

type MachineHandler struct {
	svc service.MachineService
}

func NewMachineHandler(svc service.MachineService) *MachineHandler {
	return &MachineHandler{svc: svc}
}

type registerMachineRequest struct {
	ModelID        int32  `json:"model_id"`
	SerialNumber   string `json:"serial_number"`
	Condition      string `json:"condition"`
	Location       string `json:"location"`
	Notes          string `json:"notes"`
	RateDayCents   int32  `json:"rate_day_cents"`
	RateWeekCents  int32  `json:"rate_week_cents"`
	RateMonthCents int32  `json:"rate_month_cents"`
}

type updateMachineRequest struct {
	Condition      *string `json:"condition"`
	RentalStatus   *string `json:"rental_status"`
	Location       *string `json:"location"`
	Notes          *string `json:"notes"`
	RateDayCents   *int32  `json:"rate_day_cents"`
	RateWeekCents  *int32  `json:"rate_week_cents"`
	RateMonthCents *int32  `json:"rate_month_cents"`
}

func (h *MachineHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := repository.MachineFilter{
		Status:    q.Get("status"),
		Condition: q.Get("condition"),
		Search:    q.Get("search"),
	}
	var err error
	if f.ModelID, err = queryInt32(q.Get("model_id")); err != nil {
		writeError(w, err)
		return
	}
	if f.Page, f.PageSize, err = queryPage(q); err != nil {
		writeError(w, err)
		return
	}
	machines, total, err := h.svc.List(r.Context(), f)
	if err != nil {
		writeError(w, err)
		return
	}
	if machines == nil {
		machines = []domain.Machine{}
	}
	page, pageSize := defaultPage(f.Page, f.PageSize)
	writeJSON(w, http.StatusOK, listResponse{Data: machines, Total: total, Page: page, PageSize: pageSize})
}

func (h *MachineHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerMachineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("malformed body: %w", domain.ErrInvalidInput))
		return
	}
	m := &domain.Machine{
		ModelID:        req.ModelID,
		SerialNumber:   req.SerialNumber,
		Condition:      domain.MachineCondition(req.Condition),
		Location:       req.Location,
		Notes:          req.Notes,
		RateDayCents:   req.RateDayCents,
		RateWeekCents:  req.RateWeekCents,
		RateMonthCents: req.RateMonthCents,
	}
	if err := h.svc.Register(r.Context(), m); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

func (h *MachineHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	m, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (h *MachineHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req updateMachineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("malformed body: %w", domain.ErrInvalidInput))
		return
	}
	patch := service.MachinePatch{
		Location:       req.Location,
		Notes:          req.Notes,
		RateDayCents:   req.RateDayCents,
		RateWeekCents:  req.RateWeekCents,
		RateMonthCents: req.RateMonthCents,
	}
	if req.Condition != nil {
		c := domain.MachineCondition(*req.Condition)
		patch.Condition = &c
	}
	if req.RentalStatus != nil {
		s := domain.MachineStatus(*req.RentalStatus)
		patch.RentalStatus = &s
	}
	m, err := h.svc.Update(r.Context(), id, patch)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (h *MachineHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.svc.Remove(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (h *MachineHandler) Availability(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	av, err := h.svc.Availability(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if av.Queue == nil {
		av.Queue = []domain.Rental{}
	}
	writeJSON(w, http.StatusOK, av)
}

func pathID(r *http.Request) (int32, error) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("bad id %q: %w", raw, domain.ErrInvalidInput)
	}
	return int32(id), nil
}

// queryInt32 parses an optional numeric query parameter. Absent means zero;
// anything unparseable is the caller's mistake, not a value to ignore.
func queryInt32(raw string) (int32, error) {
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("bad numeric value %q: %w", raw, domain.ErrInvalidInput)
	}
	return int32(v), nil
}

func queryPage(q url.Values) (page, pageSize int32, err error) {
	if page, err = queryInt32(q.Get("page")); err != nil {
		return 0, 0, err
	}
	if pageSize, err = queryInt32(q.Get("page_size")); err != nil {
		return 0, 0, err
	}
	return page, pageSize, nil
}

func defaultPage(page, pageSize int32) (int32, int32) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 200 {
		pageSize = 50
	}
	return page, pageSize
}
