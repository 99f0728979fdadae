package domain

// ChangeKind names the entity family a mutation touched.
type ChangeKind string

const (
	ChangeDonor    ChangeKind = "donor"
	ChangeDonation ChangeKind = "donation"
	ChangeRequest  ChangeKind = "request"
)

// ChangeEvent is published after a mutation commits.
type ChangeEvent struct {
	Kind ChangeKind `json:"kind"`
	ID   int32      `json:"id"`
	Op   string     `json:"op"`
}
