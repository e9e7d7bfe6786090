package model

import "time"

// Request types and statuses for the `pet_requests` table.
const (
	RequestFoster   = "foster"
	RequestAdoption = "adoption"

	RequestPending  = "pending"
	RequestApproved = "approved"
	RequestRejected = "rejected"
)

// PetRequest records a user's expression of interest in fostering or
// adopting a specific pet.  At most one pending request may exist per
// (pet, requester) pair; once approved or rejected a request is never
// reopened, though a new request after rejection is allowed.
//
// Fields:
//  ID           – primary key identifier.
//  PetID        – listing this request targets.
//  RequesterID  – account that submitted the request.
//  RequestType  – RequestFoster or RequestAdoption.
//  Status       – RequestPending until the listing owner resolves it.
//  Message      – optional message to the owner.
//  ContactPhone – contact number, defaults to the requester's phone.
//  CreatedAt    – submission timestamp.
type PetRequest struct {
	ID           uint64    // pet_requests.id
	PetID        uint64    // pet_requests.pet_id
	RequesterID  uint64    // pet_requests.requester_id
	RequestType  string    // pet_requests.request_type
	Status       string    // pet_requests.status
	Message      string    // pet_requests.message
	ContactPhone string    // pet_requests.contact_phone
	CreatedAt    time.Time // pet_requests.created_at
}
