// Package queue defines message payloads exchanged over the message broker.
package queue

// Queue names used for domain events.  Each event type has its own
// durable queue; the activity consumer drains both.
const (
	RequestApprovedQueue   = "request.approved"
	DonationCompletedQueue = "donation.completed"
)

// RequestApprovedEvent is published when a listing owner approves a
// foster or adoption request.  It carries enough information for
// downstream consumers to log or notify without querying the primary
// database.
type RequestApprovedEvent struct {
	PetID       uint64 `json:"pet_id"`
	PetName     string `json:"pet_name"`
	RequestID   uint64 `json:"request_id"`
	RequestType string `json:"request_type"`
	OwnerID     uint64 `json:"owner_id"`
	RequesterID uint64 `json:"requester_id"`
	NewStatus   string `json:"new_status"`
	ApprovedAt  string `json:"approved_at"`
}

// DonationCompletedEvent is published when a donation passes payment
// verification.
type DonationCompletedEvent struct {
	DonationID  uint64  `json:"donation_id"`
	OrderRef    string  `json:"order_ref"`
	DonorID     uint64  `json:"donor_id"`
	DonorName   string  `json:"donor_name"`
	RecipientID uint64  `json:"recipient_id"`
	Amount      float64 `json:"amount"`
	Currency    string  `json:"currency"`
	Purpose     string  `json:"purpose"`
	CompletedAt string  `json:"completed_at"`
}
