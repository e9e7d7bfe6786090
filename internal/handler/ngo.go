package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/tanvichauhan7/fostertails/internal/config"
	"github.com/tanvichauhan7/fostertails/internal/model"
	"github.com/tanvichauhan7/fostertails/internal/repository"
)

// NGOStore is the persistence surface the NGO endpoints need.
// repository.NGORepo satisfies it.
type NGOStore interface {
	Create(ctx context.Context, n model.NGOProfile) (uint64, error)
	GetByID(ctx context.Context, id uint64) (model.NGOProfile, error)
	GetByAccount(ctx context.Context, accountID uint64) (model.NGOProfile, error)
	NameOrRegExists(ctx context.Context, orgName, regNumber string) (bool, error)
	Search(ctx context.Context, q repository.NGOSearchQuery) ([]model.NGOProfile, int64, error)
	Verified(ctx context.Context, limit int) ([]model.NGOProfile, error)
	Update(ctx context.Context, id uint64, u repository.NGOUpdate) error
	AddReview(ctx context.Context, v model.NGOReview) error
	ReviewsForNGO(ctx context.Context, ngoID uint64) ([]model.NGOReview, error)
	SetVerified(ctx context.Context, id uint64) error
}

// NGOHandler bundles dependencies for NGO profile endpoints.
type NGOHandler struct {
	Cfg  config.Config
	NGOs NGOStore
}

func NewNGOHandler(cfg config.Config, ngos NGOStore) *NGOHandler {
	if ngos == nil {
		panic("nil store passed to NewNGOHandler")
	}
	return &NGOHandler{Cfg: cfg, NGOs: ngos}
}

// ----- DTOs -----

type ngoCreateReq struct {
	OrganizationName   string       `json:"organizationName" validate:"required"`
	RegistrationNumber string       `json:"registrationNumber" validate:"required"`
	Description        string       `json:"description" validate:"required,min=20"`
	Website            string       `json:"website"`
	Email              string       `json:"email" validate:"required,email"`
	Phone              string       `json:"phone" validate:"required"`
	Address            locationView `json:"address"`
	Logo               string       `json:"logo"`
	Services           []string     `json:"services"`
}

type ngoUpdateReq struct {
	OrganizationName   *string       `json:"organizationName"`
	RegistrationNumber *string       `json:"registrationNumber"`
	Description        *string       `json:"description"`
	Website            *string       `json:"website"`
	Email              *string       `json:"email"`
	Phone              *string       `json:"phone"`
	Address            *locationView `json:"address"`
	Logo               *string       `json:"logo"`
	Services           []string      `json:"services"`
}

type reviewReq struct {
	Rating  uint8  `json:"rating" validate:"required,gte=1,lte=5"`
	Comment string `json:"comment"`
}

type reviewView struct {
	ID        uint64    `json:"id"`
	User      uint64    `json:"user"`
	Rating    uint8     `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type ngoView struct {
	ID                 uint64       `json:"id"`
	User               uint64       `json:"user"`
	OrganizationName   string       `json:"organizationName"`
	RegistrationNumber string       `json:"registrationNumber"`
	Description        string       `json:"description"`
	Website            string       `json:"website,omitempty"`
	Email              string       `json:"email"`
	Phone              string       `json:"phone"`
	Address            locationView `json:"address"`
	Logo               string       `json:"logo,omitempty"`
	Services           []string     `json:"services"`
	Verified           bool         `json:"verified"`
	TotalDonations     float64      `json:"totalDonations"`
	Rating             echo.Map     `json:"rating"`
	Reviews            []reviewView `json:"reviews,omitempty"`
	CreatedAt          time.Time    `json:"createdAt"`
	UpdatedAt          time.Time    `json:"updatedAt"`
}

func viewNGO(n model.NGOProfile) ngoView {
	return ngoView{
		ID:                 n.ID,
		User:               n.AccountID,
		OrganizationName:   n.OrgName,
		RegistrationNumber: n.RegNumber,
		Description:        n.Description,
		Website:            n.Website,
		Email:              n.Email,
		Phone:              n.Phone,
		Address: locationView{
			Street: n.Street, City: n.City, State: n.State,
			Country: n.Country, Pincode: n.Pincode,
		},
		Logo:           n.Logo,
		Services:       splitTags(n.Services),
		Verified:       n.Verified,
		TotalDonations: n.TotalDonations,
		Rating:         echo.Map{"average": n.RatingAverage, "count": n.RatingCount},
		CreatedAt:      n.CreatedAt,
		UpdatedAt:      n.UpdatedAt,
	}
}

func viewNGOs(profiles []model.NGOProfile) []ngoView {
	out := make([]ngoView, 0, len(profiles))
	for _, n := range profiles {
		out = append(out, viewNGO(n))
	}
	return out
}

// Create handles POST /api/ngos, restricted to the `ngo` role.  An
// account may own at most one profile, and organization name and
// registration number are globally unique.
func (h *NGOHandler) Create(c echo.Context) error {
	acct, err := currentAccount(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "Not authorized")
	}
	var req ngoCreateReq
	if !bindAndValidate(c, &req) {
		return nil
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.NGOs.GetByAccount(ctx, acct.ID); err == nil {
		return fail(c, http.StatusBadRequest, "NGO profile already exists for this user")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return failErr(c, "Server error while creating NGO profile", err, !h.Cfg.IsProd())
	}
	taken, err := h.NGOs.NameOrRegExists(ctx, req.OrganizationName, req.RegistrationNumber)
	if err != nil {
		return failErr(c, "Server error while creating NGO profile", err, !h.Cfg.IsProd())
	}
	if taken {
		return fail(c, http.StatusBadRequest, "Organization name or registration number already exists")
	}

	id, err := h.NGOs.Create(ctx, model.NGOProfile{
		AccountID:   acct.ID,
		OrgName:     req.OrganizationName,
		RegNumber:   req.RegistrationNumber,
		Description: req.Description,
		Website:     req.Website,
		Email:       req.Email,
		Phone:       req.Phone,
		Street:      req.Address.Street,
		City:        req.Address.City,
		State:       req.Address.State,
		Country:     req.Address.Country,
		Pincode:     req.Address.Pincode,
		Logo:        req.Logo,
		Services:    joinTags(req.Services),
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return fail(c, http.StatusBadRequest, "Organization name or registration number already exists")
		}
		return failErr(c, "Server error while creating NGO profile", err, !h.Cfg.IsProd())
	}
	created, err := h.NGOs.GetByID(ctx, id)
	if err != nil {
		return failErr(c, "Server error while creating NGO profile", err, !h.Cfg.IsProd())
	}
	return ok(c, http.StatusCreated, "NGO profile created successfully", echo.Map{"ngo": viewNGO(created)})
}

// List handles GET /api/ngos with filters and pagination.
func (h *NGOHandler) List(c echo.Context) error {
	page, limit := pageParams(c, 10)
	q := repository.NGOSearchQuery{
		City:     c.QueryParam("city"),
		State:    c.QueryParam("state"),
		Services: splitTags(c.QueryParam("services")),
		Search:   c.QueryParam("search"),
		Page:     page,
		PageSize: limit,
	}
	switch c.QueryParam("verified") {
	case "true":
		v := true
		q.Verified = &v
	case "false":
		v := false
		q.Verified = &v
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	profiles, total, err := h.NGOs.Search(ctx, q)
	if err != nil {
		return failErr(c, "Server error while fetching NGOs", err, !h.Cfg.IsProd())
	}
	return ok(c, http.StatusOK, "", echo.Map{
		"count":       len(profiles),
		"total":       total,
		"totalPages":  totalPages(total, limit),
		"currentPage": page,
		"ngos":        viewNGOs(profiles),
	})
}

// VerifiedList handles GET /api/ngos/verified.
func (h *NGOHandler) VerifiedList(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	profiles, err := h.NGOs.Verified(ctx, 12)
	if err != nil {
		return failErr(c, "Server error", err, !h.Cfg.IsProd())
	}
	return ok(c, http.StatusOK, "", echo.Map{"count": len(profiles), "ngos": viewNGOs(profiles)})
}

// GetOne handles GET /api/ngos/:id, returning the profile together
// with its reviews.
func (h *NGOHandler) GetOne(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "Invalid NGO id")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	n, err := h.NGOs.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(c, http.StatusNotFound, "NGO not found")
		}
		return failErr(c, "Server error while fetching NGO", err, !h.Cfg.IsProd())
	}
	view := viewNGO(n)
	if reviews, err := h.NGOs.ReviewsForNGO(ctx, id); err == nil {
		for _, v := range reviews {
			view.Reviews = append(view.Reviews, reviewView{
				ID: v.ID, User: v.ReviewerID, Rating: v.Rating,
				Comment: v.Comment, CreatedAt: v.CreatedAt,
			})
		}
	}
	return ok(c, http.StatusOK, "", echo.Map{"ngo": view})
}

// Update handles PUT /api/ngos/:id, permitted to the owner or an
// admin.  The verified flag cannot be changed here.
func (h *NGOHandler) Update(c echo.Context) error {
	acct, err := currentAccount(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "Not authorized")
	}
	id, err := parseID(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "Invalid NGO id")
	}
	var req ngoUpdateReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	n, err := h.NGOs.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(c, http.StatusNotFound, "NGO not found")
		}
		return failErr(c, "Server error while updating NGO profile", err, !h.Cfg.IsProd())
	}
	if n.AccountID != acct.ID && acct.Role != model.RoleAdmin {
		return fail(c, http.StatusForbidden, "You are not authorized to update this NGO profile")
	}

	upd := repository.NGOUpdate{
		OrgName: req.OrganizationName, RegNumber: req.RegistrationNumber,
		Description: req.Description, Website: req.Website,
		Email: req.Email, Phone: req.Phone, Logo: req.Logo,
	}
	if req.Address != nil {
		upd.Street = &req.Address.Street
		upd.City = &req.Address.City
		upd.State = &req.Address.State
		upd.Country = &req.Address.Country
		upd.Pincode = &req.Address.Pincode
	}
	if req.Services != nil {
		tags := joinTags(req.Services)
		upd.Services = &tags
	}
	if err := h.NGOs.Update(ctx, id, upd); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return fail(c, http.StatusBadRequest, "Organization name or registration number already exists")
		}
		return failErr(c, "Server error while updating NGO profile", err, !h.Cfg.IsProd())
	}
	fresh, err := h.NGOs.GetByID(ctx, id)
	if err != nil {
		return failErr(c, "Server error while updating NGO profile", err, !h.Cfg.IsProd())
	}
	return ok(c, http.StatusOK, "NGO profile updated successfully", echo.Map{"ngo": viewNGO(fresh)})
}

// AddReview handles POST /api/ngos/:id/review.  One review per
// reviewer per NGO.
func (h *NGOHandler) AddReview(c echo.Context) error {
	acct, err := currentAccount(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "Not authorized")
	}
	id, err := parseID(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "Invalid NGO id")
	}
	var req reviewReq
	if !bindAndValidate(c, &req) {
		return nil
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.NGOs.GetByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(c, http.StatusNotFound, "NGO not found")
		}
		return failErr(c, "Server error while adding review", err, !h.Cfg.IsProd())
	}
	err = h.NGOs.AddReview(ctx, model.NGOReview{
		NGOID: id, ReviewerID: acct.ID, Rating: req.Rating, Comment: req.Comment,
	})
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyReviewed) {
			return fail(c, http.StatusBadRequest, "You have already reviewed this NGO")
		}
		return failErr(c, "Server error while adding review", err, !h.Cfg.IsProd())
	}
	fresh, err := h.NGOs.GetByID(ctx, id)
	if err != nil {
		return failErr(c, "Server error while adding review", err, !h.Cfg.IsProd())
	}
	return ok(c, http.StatusOK, "Review added successfully", echo.Map{
		"rating": echo.Map{"average": fresh.RatingAverage, "count": fresh.RatingCount},
	})
}

// Verify handles PUT /api/ngos/:id/verify, admin only.
func (h *NGOHandler) Verify(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "Invalid NGO id")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.NGOs.SetVerified(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(c, http.StatusNotFound, "NGO not found")
		}
		return failErr(c, "Server error while verifying NGO", err, !h.Cfg.IsProd())
	}
	return ok(c, http.StatusOK, "NGO verified successfully", nil)
}
