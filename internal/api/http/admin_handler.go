package http

import (
	"net/http"

	"blooddrive-backend/internal/domain"
	"blooddrive-backend/internal/utils"
)

func (h *handler) listDonations(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	donations, err := h.svc.Donations.ListDonations(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if donations == nil {
		donations = []domain.Donation{}
	}
	writeJSON(w, http.StatusOK, donations)
}

// logDonation records an admin-entered donation. The idempotency key may come
// from the body or the Idempotency-Key header; a replay answers 200 with the
// original donation.
func (h *handler) logDonation(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var in domain.DonationInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	if in.IdempotencyKey == "" {
		in.IdempotencyKey = r.Header.Get("Idempotency-Key")
	}

	donation, created, err := h.svc.Donations.LogDonation(r.Context(), actor(r), id, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, donation)
}

func (h *handler) resetDonations(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	n, err := h.svc.Donations.ResetDonations(r.Context(), actor(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"deleted": n})
}

func (h *handler) dashboard(w http.ResponseWriter, r *http.Request) {
	var (
		dash *utils.Dashboard
		err  error
	)
	if r.URL.Query().Get("refresh") == "true" {
		dash, err = h.svc.Reports.RefreshDashboard(r.Context())
	} else {
		dash, err = h.svc.Reports.Dashboard(r.Context())
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dash)
}

func (h *handler) exportDonors(w http.ResponseWriter, r *http.Request) {
	url, err := h.svc.Reports.ExportDonors(r.Context(), actor(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"url": url})
}
