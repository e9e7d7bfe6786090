package model

import "time"

// Donation payment statuses.  A donation is created pending and only
// reaches PaymentCompleted through the verify endpoint.
const (
	PaymentPending   = "pending"
	PaymentCompleted = "completed"
	PaymentFailed    = "failed"
	PaymentRefunded  = "refunded"
)

// Donation records a payment from a donor account to an NGO account,
// stored in the `donations` table.  Donor name and email are
// snapshotted at creation time so that later account edits do not
// rewrite donation history; anonymous donations snapshot the name
// "Anonymous" instead.  OrderRef is the payment-provider order
// reference handed to the client; the provider integration itself is
// a stub and OrderRef is generated locally.
//
// Fields:
//  ID          – primary key identifier.
//  DonorID     – donating account.
//  RecipientID – receiving account (must own an NGO profile).
//  DonorName   – snapshot of the donor's display name.
//  DonorEmail  – snapshot of the donor's email.
//  Amount      – donated amount in currency units, at least 1.
//  Currency    – ISO currency code, defaults to INR.
//  Status      – payment status, see constants above.
//  Method      – payment method label (razorpay, upi, card, ...).
//  OrderRef    – unique provider order reference.
//  PaymentRef  – provider payment id, set on verification.
//  Signature   – provider signature, set on verification.
//  Type        – one-time, monthly or annual.
//  Purpose     – general, medical, food, shelter or rescue.
//  Message     – optional message from the donor.
//  Anonymous   – whether the donor asked to stay anonymous.
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type Donation struct {
	ID          uint64    // donations.id
	DonorID     uint64    // donations.donor_id
	RecipientID uint64    // donations.recipient_id
	DonorName   string    // donations.donor_name
	DonorEmail  string    // donations.donor_email
	Amount      float64   // donations.amount
	Currency    string    // donations.currency
	Status      string    // donations.status
	Method      string    // donations.method
	OrderRef    string    // donations.order_ref
	PaymentRef  string    // donations.payment_ref
	Signature   string    // donations.signature
	Type        string    // donations.donation_type
	Purpose     string    // donations.purpose
	Message     string    // donations.message
	Anonymous   bool      // donations.anonymous
	CreatedAt   time.Time // donations.created_at
	UpdatedAt   time.Time // donations.updated_at
}
