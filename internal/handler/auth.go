package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/tanvichauhan7/fostertails/internal/config"
	"github.com/tanvichauhan7/fostertails/internal/middleware"
	"github.com/tanvichauhan7/fostertails/internal/model"
	"github.com/tanvichauhan7/fostertails/internal/repository"
	"github.com/tanvichauhan7/fostertails/internal/utils"
)

// AccountStore is the persistence surface the auth endpoints need.
// repository.AccountRepo satisfies it.
type AccountStore interface {
	Create(ctx context.Context, name, email, password, phone, role string, cost int) (uint64, error)
	GetByEmail(ctx context.Context, email string) (model.Account, error)
	GetByID(ctx context.Context, id uint64) (model.Account, error)
	UpdateProfile(ctx context.Context, id uint64, p repository.ProfileUpdate) error
	UpdatePassword(ctx context.Context, id uint64, password string, cost int) error
	PetRelations(ctx context.Context, id uint64) (posted, fostered, adopted []uint64, err error)
}

// AuthHandler bundles dependencies for account endpoints.
type AuthHandler struct {
	Cfg      config.Config
	Accounts AccountStore
}

func NewAuthHandler(cfg config.Config, accounts AccountStore) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Accounts: accounts}
}

// ----- DTOs -----

type registerReq struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Phone    string `json:"phone"`
	Role     string `json:"role" validate:"omitempty,oneof=user ngo"`
}

type loginReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type profileReq struct {
	Name    *string `json:"name"`
	Phone   *string `json:"phone"`
	Avatar  *string `json:"avatar"`
	City    *string `json:"city"`
	State   *string `json:"state"`
	Country *string `json:"country"`
	Pincode *string `json:"pincode"`
}

type changePasswordReq struct {
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=6"`
}

type orgDetailsView struct {
	OrganizationName   string `json:"organizationName,omitempty"`
	RegistrationNumber string `json:"registrationNumber,omitempty"`
	Verified           bool   `json:"verified"`
}

type accountView struct {
	ID          uint64         `json:"id"`
	Name        string         `json:"name"`
	Email       string         `json:"email"`
	Phone       string         `json:"phone,omitempty"`
	Role        string         `json:"role"`
	Avatar      string         `json:"avatar,omitempty"`
	Location    locationView   `json:"location"`
	NGODetails  orgDetailsView `json:"ngoDetails"`
	PetsPosted  []uint64       `json:"petsPosted,omitempty"`
	PetsFoster  []uint64       `json:"petsFostered,omitempty"`
	PetsAdopted []uint64       `json:"petsAdopted,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
}

func viewAccount(a model.Account) accountView {
	return accountView{
		ID:     a.ID,
		Name:   a.Name,
		Email:  a.Email,
		Phone:  a.Phone,
		Role:   a.Role,
		Avatar: a.Avatar,
		Location: locationView{
			City: a.City, State: a.State, Country: a.Country, Pincode: a.Pincode,
		},
		NGODetails: orgDetailsView{
			OrganizationName:   a.OrgName,
			RegistrationNumber: a.OrgRegNumber,
			Verified:           a.OrgVerified,
		},
		CreatedAt: a.CreatedAt,
	}
}

// setSessionCookie issues the signed token and attaches it as an
// HTTP-only cookie.  Secure is only set in production so local dev
// over plain HTTP keeps working.
func (h *AuthHandler) setSessionCookie(c echo.Context, accountID uint64) error {
	token, exp, err := utils.NewSessionToken(h.Cfg.JWTSecret, accountID, h.Cfg.SessionTTLDays)
	if err != nil {
		return err
	}
	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  exp,
		HttpOnly: true,
		Secure:   h.Cfg.IsProd(),
		SameSite: http.SameSiteStrictMode,
	})
	return nil
}

// Register creates an account and starts a session immediately.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if !bindAndValidate(c, &req) {
		return nil
	}
	role := req.Role
	if role == "" {
		role = model.RoleUser
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	id, err := h.Accounts.Create(ctx, req.Name, req.Email, req.Password, req.Phone, role, h.Cfg.BcryptCost)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return fail(c, http.StatusBadRequest, "Email already registered")
		}
		return failErr(c, "Server error while registering", err, !h.Cfg.IsProd())
	}
	acct, err := h.Accounts.GetByID(ctx, id)
	if err != nil {
		return failErr(c, "Server error while registering", err, !h.Cfg.IsProd())
	}
	if err := h.setSessionCookie(c, id); err != nil {
		return failErr(c, "Server error while registering", err, !h.Cfg.IsProd())
	}
	return ok(c, http.StatusCreated, "Registered successfully", echo.Map{"user": viewAccount(acct)})
}

// Login verifies credentials and starts a session.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if !bindAndValidate(c, &req) {
		return nil
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	acct, err := h.Accounts.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(c, http.StatusUnauthorized, "Invalid credentials")
		}
		return failErr(c, "Server error while logging in", err, !h.Cfg.IsProd())
	}
	if !utils.VerifyPassword(acct.PasswordHash, req.Password) {
		return fail(c, http.StatusUnauthorized, "Invalid credentials")
	}
	if err := h.setSessionCookie(c, acct.ID); err != nil {
		return failErr(c, "Server error while logging in", err, !h.Cfg.IsProd())
	}
	return ok(c, http.StatusOK, "Logged in successfully", echo.Map{"user": viewAccount(acct)})
}

// Logout clears the session cookie.
func (h *AuthHandler) Logout(c echo.Context) error {
	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.Cfg.IsProd(),
		SameSite: http.SameSiteStrictMode,
	})
	return ok(c, http.StatusOK, "Logged out successfully", nil)
}

// Me returns the authenticated account together with its pet
// relationship lists.
func (h *AuthHandler) Me(c echo.Context) error {
	acct, err := currentAccount(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "Not authorized")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	view := viewAccount(acct)
	posted, fostered, adopted, err := h.Accounts.PetRelations(ctx, acct.ID)
	if err != nil {
		return failErr(c, "Server error while loading profile", err, !h.Cfg.IsProd())
	}
	view.PetsPosted = posted
	view.PetsFoster = fostered
	view.PetsAdopted = adopted
	return ok(c, http.StatusOK, "", echo.Map{"user": view})
}

// UpdateProfile applies a partial update to the caller's profile.
func (h *AuthHandler) UpdateProfile(c echo.Context) error {
	acct, err := currentAccount(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "Not authorized")
	}
	var req profileReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	upd := repository.ProfileUpdate{
		Name: req.Name, Phone: req.Phone, Avatar: req.Avatar,
		City: req.City, State: req.State, Country: req.Country, Pincode: req.Pincode,
	}
	if err := h.Accounts.UpdateProfile(ctx, acct.ID, upd); err != nil {
		return failErr(c, "Server error while updating profile", err, !h.Cfg.IsProd())
	}
	fresh, err := h.Accounts.GetByID(ctx, acct.ID)
	if err != nil {
		return failErr(c, "Server error while updating profile", err, !h.Cfg.IsProd())
	}
	return ok(c, http.StatusOK, "Profile updated successfully", echo.Map{"user": viewAccount(fresh)})
}

// ChangePassword verifies the old password before storing a new hash.
// The session account has its hash blanked by the middleware, so the
// record is re-read here.
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	acct, err := currentAccount(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "Not authorized")
	}
	var req changePasswordReq
	if !bindAndValidate(c, &req) {
		return nil
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	stored, err := h.Accounts.GetByID(ctx, acct.ID)
	if err != nil {
		return failErr(c, "Server error while changing password", err, !h.Cfg.IsProd())
	}
	if !utils.VerifyPassword(stored.PasswordHash, req.OldPassword) {
		return fail(c, http.StatusBadRequest, "Current password is incorrect")
	}
	if err := h.Accounts.UpdatePassword(ctx, acct.ID, req.NewPassword, h.Cfg.BcryptCost); err != nil {
		return failErr(c, "Server error while changing password", err, !h.Cfg.IsProd())
	}
	return ok(c, http.StatusOK, "Password changed successfully", nil)
}
