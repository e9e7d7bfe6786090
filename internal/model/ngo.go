package model

import "time"

// NGOProfile is an organization's public page, owned by exactly one
// account of role `ngo`.  It corresponds to a row in the
// `ngo_profiles` table.  Organization name and registration number
// are unique across all profiles.  The aggregate rating columns are
// recomputed from `ngo_reviews` whenever a review is added, and
// TotalDonations is incremented when a donation to the owning account
// is verified.
//
// Fields:
//  ID             – primary key identifier.
//  AccountID      – owning account (unique).
//  OrgName        – unique organization name.
//  RegNumber      – unique registration number.
//  Description    – organization description.
//  Website        – optional website URL.
//  Email          – contact email.
//  Phone          – contact number.
//  Street/City/State/Country/Pincode – address fields.
//  Logo           – logo image URL.
//  Services       – comma separated service tags (rescue, medical,
//                   shelter, adoption, fostering, veterinary, training).
//  Verified       – admin-settable verification flag.
//  TotalDonations – running total of completed donations received.
//  RatingAverage  – arithmetic mean of all review ratings.
//  RatingCount    – number of reviews.
//  CreatedAt      – creation timestamp.
//  UpdatedAt      – last update timestamp.
type NGOProfile struct {
	ID             uint64    // ngo_profiles.id
	AccountID      uint64    // ngo_profiles.account_id
	OrgName        string    // ngo_profiles.org_name
	RegNumber      string    // ngo_profiles.reg_number
	Description    string    // ngo_profiles.description
	Website        string    // ngo_profiles.website
	Email          string    // ngo_profiles.email
	Phone          string    // ngo_profiles.phone
	Street         string    // ngo_profiles.street
	City           string    // ngo_profiles.city
	State          string    // ngo_profiles.state
	Country        string    // ngo_profiles.country
	Pincode        string    // ngo_profiles.pincode
	Logo           string    // ngo_profiles.logo
	Services       string    // ngo_profiles.services (comma list)
	Verified       bool      // ngo_profiles.verified
	TotalDonations float64   // ngo_profiles.total_donations
	RatingAverage  float64   // ngo_profiles.rating_average
	RatingCount    uint32    // ngo_profiles.rating_count
	CreatedAt      time.Time // ngo_profiles.created_at
	UpdatedAt      time.Time // ngo_profiles.updated_at
}

// NGOReview is a single review left on an NGO profile.  Each
// reviewer may review a given NGO at most once; the pair
// (ngo_id, reviewer_id) is unique.
//
// Fields:
//  ID         – primary key identifier.
//  NGOID      – reviewed profile.
//  ReviewerID – account that wrote the review.
//  Rating     – 1 to 5.
//  Comment    – optional free-text comment.
//  CreatedAt  – creation timestamp.
type NGOReview struct {
	ID         uint64    // ngo_reviews.id
	NGOID      uint64    // ngo_reviews.ngo_id
	ReviewerID uint64    // ngo_reviews.reviewer_id
	Rating     uint8     // ngo_reviews.rating
	Comment    string    // ngo_reviews.comment
	CreatedAt  time.Time // ngo_reviews.created_at
}
