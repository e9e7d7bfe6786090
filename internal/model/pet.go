package model

import "time"

// Listing statuses.  A pet only moves to StatusFostered or
// StatusAdopted through request approval; CurrentCaretaker is set in
// the same write.
const (
	StatusAvailable   = "available"
	StatusFostered    = "fostered"
	StatusAdopted     = "adopted"
	StatusPending     = "pending"
	StatusUnavailable = "unavailable"
)

// Pet represents a pet listing as stored in the `pets` table.
//
// Fields:
//  ID               – primary key identifier.
//  Name             – pet name.
//  Species          – species (dog, cat, bird, rabbit, hamster, other).
//  Breed            – breed, "Mixed breed" when unknown.
//  Age              – age bracket (puppy/kitten, young, adult, senior, unknown).
//  Gender           – male, female or unknown.
//  Size             – small, medium, large, extra-large.
//  Color            – coat color.
//  Description      – free-text description.
//  City/State/Country/Pincode – listing location.
//  Temperament      – comma separated temperament tags.
//  Status           – listing status, see constants above.
//  AvailableFor     – fostering, adoption or both.
//  PostedBy         – account that created the listing.
//  CurrentCaretaker – account currently caring for the pet (nil until
//                     a request is approved).
//  Urgency          – low, medium, high or emergency.
//  Featured         – whether the listing is promoted on the home page.
//  Views            – view counter, incremented on every detail read.
//  CreatedAt        – creation timestamp.
//  UpdatedAt        – last update timestamp.
type Pet struct {
	ID               uint64    // pets.id
	Name             string    // pets.name
	Species          string    // pets.species
	Breed            string    // pets.breed
	Age              string    // pets.age
	Gender           string    // pets.gender
	Size             string    // pets.size
	Color            string    // pets.color
	Description      string    // pets.description
	City             string    // pets.city
	State            string    // pets.state
	Country          string    // pets.country
	Pincode          string    // pets.pincode
	Temperament      string    // pets.temperament (comma list)
	Status           string    // pets.status
	AvailableFor     string    // pets.available_for
	PostedBy         uint64    // pets.posted_by
	CurrentCaretaker *uint64   // pets.current_caretaker (nullable)
	Urgency          string    // pets.urgency
	Featured         bool      // pets.featured
	Views            uint64    // pets.views
	CreatedAt        time.Time // pets.created_at
	UpdatedAt        time.Time // pets.updated_at
}
