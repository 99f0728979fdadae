package http

import (
	"context"
	"net/http"
	"time"

	"blooddrive-backend/internal/domain"
)

type approvalResponse struct {
	Request          *domain.BloodRequest `json:"request"`
	NextEligibleDate time.Time            `json:"next_eligible_date"`
}

func (h *handler) createRequest(w http.ResponseWriter, r *http.Request) {
	var in domain.RequestInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}

	var caller *domain.Actor
	if a, ok := ActorFromContext(r.Context()); ok {
		caller = &a
	}
	req, err := h.svc.Requests.CreateRequest(r.Context(), caller, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, req)
}

func (h *handler) incomingRequests(w http.ResponseWriter, r *http.Request) {
	status := domain.RequestStatus(r.URL.Query().Get("status"))
	reqs, err := h.svc.Requests.ListIncoming(r.Context(), actor(r), status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNilRequests(reqs))
}

func (h *handler) myRequests(w http.ResponseWriter, r *http.Request) {
	reqs, err := h.svc.Requests.ListMine(r.Context(), actor(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNilRequests(reqs))
}

func (h *handler) approveRequest(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	req, next, err := h.svc.Requests.ApproveRequest(r.Context(), actor(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, approvalResponse{Request: req, NextEligibleDate: next})
}

func (h *handler) rejectRequest(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.svc.Requests.RejectRequest)
}

func (h *handler) completeRequest(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.svc.Requests.CompleteRequest)
}

func (h *handler) transition(w http.ResponseWriter, r *http.Request,
	apply func(context.Context, domain.Actor, int32) (*domain.BloodRequest, error)) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	req, err := apply(r.Context(), actor(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}

func (h *handler) assignRequest(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var body struct {
		DonorID int32 `json:"donor_id"`
	}
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	if body.DonorID <= 0 {
		writeError(w, r, domain.NewValidationError("donor_id", "is required"))
		return
	}
	req, err := h.svc.Requests.AssignDonor(r.Context(), actor(r), id, body.DonorID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}

func nonNilRequests(reqs []domain.BloodRequest) []domain.BloodRequest {
	if reqs == nil {
		return []domain.BloodRequest{}
	}
	return reqs
}
