package domain

import "time"

const (
	NotificationRequestReceived = "BLOOD_REQUEST"
	NotificationRequestApproved = "REQUEST_APPROVED"
	NotificationRequestRejected = "REQUEST_REJECTED"
	NotificationEligibleAgain   = "ELIGIBLE_AGAIN"
)

type Notification struct {
	ID         int32             `json:"id"`
	UserID     int32             `json:"user_id"`
	Title      string            `json:"title"`
	Message    string            `json:"message"`
	IsRead     bool              `json:"is_read"`
	Attributes map[string]string `json:"attributes"`
	CreatedAt  time.Time         `json:"created_at"`
}
