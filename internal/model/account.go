package model

import "time"

// Account roles.  The role is stored as a plain string in the
// `accounts.role` column and drives the role middleware.
const (
	RoleUser  = "user"
	RoleNGO   = "ngo"
	RoleAdmin = "admin"
)

// Account represents an application account as stored in the
// `accounts` table.  Accounts carry identity and profile fields plus
// a handful of denormalized NGO fields that are copied from the NGO
// profile when one is created or verified.  Relationship lists
// (posted / fostered / adopted pets) are not stored on the account
// row itself: posted pets derive from `pets.posted_by`, the other
// two live in the `account_pets` table.
//
// Fields:
//  ID           – primary key identifier.
//  Name         – display name.
//  Email        – unique email address, stored lowercase.
//  PasswordHash – bcrypt hash of the password.
//  Phone        – optional contact number.
//  Role         – one of RoleUser, RoleNGO, RoleAdmin.
//  Avatar       – avatar image URL.
//  City/State/Country/Pincode – profile location fields.
//  OrgName      – denormalized organization name (NGO accounts only).
//  OrgRegNumber – denormalized registration number.
//  OrgVerified  – denormalized verification flag, admin-settable only.
//  IsActive     – whether the account is active.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type Account struct {
	ID           uint64    // accounts.id
	Name         string    // accounts.name
	Email        string    // accounts.email
	PasswordHash string    // accounts.password_hash
	Phone        string    // accounts.phone
	Role         string    // accounts.role
	Avatar       string    // accounts.avatar
	City         string    // accounts.city
	State        string    // accounts.state
	Country      string    // accounts.country
	Pincode      string    // accounts.pincode
	OrgName      string    // accounts.org_name
	OrgRegNumber string    // accounts.org_reg_number
	OrgVerified  bool      // accounts.org_verified
	IsActive     bool      // accounts.is_active
	CreatedAt    time.Time // accounts.created_at
	UpdatedAt    time.Time // accounts.updated_at
}

// Pet relationship kinds recorded in the `account_pets` table.  A
// row is appended when a foster or adoption request is approved.
const (
	RelationFostered = "fostered"
	RelationAdopted  = "adopted"
)
