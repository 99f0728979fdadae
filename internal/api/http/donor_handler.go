package http

import (
	"net/http"

	"blooddrive-backend/internal/domain"
	"blooddrive-backend/internal/service"
	"blooddrive-backend/internal/utils"
)

// listDonors serves the admin-style donor table. Query parameters:
// q, search_field, city, address, blood_group, sort, dir.
func (h *handler) listDonors(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var filter utils.DonorFilter
	if v := q.Get("q"); v != "" {
		field, err := utils.ParseSearchField(q.Get("search_field"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		filter.Search = &utils.SearchQuery{Field: field, Value: v}
	}
	filter.Location = utils.LocationQuery{City: q.Get("city"), Address: q.Get("address")}
	filter.BloodGroup = q.Get("blood_group")

	field, dir, err := utils.ParseSort(q.Get("sort"), q.Get("dir"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	donors, err := h.svc.Donors.ListDonors(r.Context(), service.DonorListQuery{Filter: filter, SortField: field, SortDir: dir})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, donors)
}

func (h *handler) listEligible(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	donors, err := h.svc.Donors.ListEligibleDonors(r.Context(), domain.BloodType(q.Get("blood_type")), q.Get("city"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, donors)
}

func (h *handler) nearbyDonors(w http.ResponseWriter, r *http.Request) {
	lat, err := queryFloat(r, "lat", true)
	if err != nil {
		writeError(w, r, err)
		return
	}
	lng, err := queryFloat(r, "lng", true)
	if err != nil {
		writeError(w, r, err)
		return
	}
	radius, err := queryFloat(r, "radius_km", false)
	if err != nil {
		writeError(w, r, err)
		return
	}

	donors, err := h.svc.Donors.NearbyDonors(r.Context(), lat, lng, radius, domain.BloodType(r.URL.Query().Get("blood_type")))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if donors == nil {
		donors = []domain.NearbyDonor{}
	}
	writeJSON(w, http.StatusOK, donors)
}

func (h *handler) registerDonor(w http.ResponseWriter, r *http.Request) {
	var d domain.Donor
	if err := decodeJSON(w, r, &d); err != nil {
		writeError(w, r, err)
		return
	}
	d.ID = 0
	created, err := h.svc.Donors.RegisterDonor(r.Context(), actor(r), &d)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *handler) getDonor(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	d, err := h.svc.Donors.GetDonor(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (h *handler) donorEligibility(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	st, err := h.svc.Donors.Eligibility(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (h *handler) updateDonor(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var d domain.Donor
	if err := decodeJSON(w, r, &d); err != nil {
		writeError(w, r, err)
		return
	}
	d.ID = id
	updated, err := h.svc.Donors.UpdateDonor(r.Context(), actor(r), &d)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *handler) deleteDonor(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.svc.Donors.DeleteDonor(r.Context(), actor(r), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) bulkAddDonors(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Donors []*domain.Donor `json:"donors"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.svc.Donors.BulkCreateDonors(r.Context(), actor(r), req.Donors); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"created": len(req.Donors), "donors": req.Donors})
}
