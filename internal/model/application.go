package model

import "time"

// Application statuses. "applied" is the only status a freshly created
// application can have; the rest are reachable through updates.
const (
	StatusApplied   = "applied"
	StatusInterview = "interview"
	StatusOffer     = "offer"
	StatusRejected  = "rejected"
	StatusPending   = "pending"
)

// Application is a job application owned by a single user.
//
// Every read, update, and delete is scoped to UserID. Cross-owner access
// surfaces as "not found", never "forbidden".
type Application struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Company     string    `json:"company"`
	Role        string    `json:"role"`
	Status      string    `json:"status"`
	SubmittedAt time.Time `json:"submittedAt"`
	URL         string    `json:"url,omitempty"`
	Notes       string    `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
