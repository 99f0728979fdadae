package domain

import "time"

type RequestStatus string

const (
	RequestStatusPending   RequestStatus = "pending"
	RequestStatusApproved  RequestStatus = "approved"
	RequestStatusRejected  RequestStatus = "rejected"
	RequestStatusCompleted RequestStatus = "completed"
)

func (s RequestStatus) Valid() bool {
	switch s {
	case RequestStatusPending, RequestStatusApproved, RequestStatusRejected, RequestStatusCompleted:
		return true
	}
	return false
}

// Terminal states accept no further transitions.
func (s RequestStatus) Terminal() bool {
	return s == RequestStatusRejected || s == RequestStatusCompleted
}

// requestTransitions is the one-directional transition graph.
var requestTransitions = map[RequestStatus][]RequestStatus{
	RequestStatusPending:  {RequestStatusApproved, RequestStatusRejected},
	RequestStatusApproved: {RequestStatusCompleted},
}

// CanTransition reports whether a request may move from one status to another.
func CanTransition(from, to RequestStatus) bool {
	for _, next := range requestTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type UrgencyLevel string

const (
	UrgencyNormal      UrgencyLevel = "normal"
	UrgencyCritical    UrgencyLevel = "critical"
	UrgencyNeededToday UrgencyLevel = "needed_today"
)

func (u UrgencyLevel) Valid() bool {
	switch u {
	case UrgencyNormal, UrgencyCritical, UrgencyNeededToday:
		return true
	}
	return false
}

type BloodRequest struct {
	ID            int32         `json:"id"`
	RequesterID   *int32        `json:"requester_id,omitempty"`
	RequesterName string        `json:"requester_name"`
	DonorID       *int32        `json:"donor_id,omitempty"`
	BloodType     BloodType     `json:"blood_type"`
	City          string        `json:"city"`
	Address       string        `json:"address"`
	ContactPhone  string        `json:"contact_phone"`
	Reason        string        `json:"reason,omitempty"`
	Urgency       UrgencyLevel  `json:"urgency"`
	Status        RequestStatus `json:"status"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// RequestedBy reports whether the request was filed by the given auth identity.
func (r *BloodRequest) RequestedBy(userID int32) bool {
	return r.RequesterID != nil && *r.RequesterID == userID
}

// RequestInput carries the caller-supplied fields of a new request.
type RequestInput struct {
	RequesterName string       `json:"requester_name"`
	DonorID       *int32       `json:"donor_id,omitempty"`
	BloodType     BloodType    `json:"blood_type"`
	City          string       `json:"city"`
	Address       string       `json:"address"`
	ContactPhone  string       `json:"contact_phone"`
	Reason        string       `json:"reason,omitempty"`
	Urgency       UrgencyLevel `json:"urgency"`
}

// Approval is everything the store needs to approve a request atomically.
type Approval struct {
	RequestID        int32
	DonorID          int32
	Donation         *Donation
	DonatedAt        time.Time
	NextEligibleDate time.Time
}
