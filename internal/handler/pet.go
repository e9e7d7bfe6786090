package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/tanvichauhan7/fostertails/internal/config"
	"github.com/tanvichauhan7/fostertails/internal/model"
	"github.com/tanvichauhan7/fostertails/internal/queue"
	"github.com/tanvichauhan7/fostertails/internal/repository"
)

// PetStore is the persistence surface the pet endpoints need.
// repository.PetRepo satisfies it.
type PetStore interface {
	Create(ctx context.Context, p model.Pet) (uint64, error)
	GetByID(ctx context.Context, id uint64) (model.Pet, error)
	IncrementViews(ctx context.Context, id uint64) error
	Update(ctx context.Context, id uint64, u repository.PetUpdate) error
	Delete(ctx context.Context, id uint64) error
	Search(ctx context.Context, q repository.PetSearchQuery) ([]model.Pet, int64, error)
	Featured(ctx context.Context, limit int) ([]model.Pet, error)
	ByOwner(ctx context.Context, ownerID uint64) ([]model.Pet, error)
	HasPendingRequest(ctx context.Context, petID, requesterID uint64) (bool, error)
	CreateRequest(ctx context.Context, q model.PetRequest) (uint64, error)
	RequestsForPet(ctx context.Context, petID uint64) ([]model.PetRequest, error)
	ResolveRequest(ctx context.Context, petID, requestID uint64, status string) (model.PetRequest, error)
}

// PetHandler bundles dependencies for listing endpoints.
// PublishApproved is optional; when nil no event is emitted.
type PetHandler struct {
	Cfg             config.Config
	Pets            PetStore
	PublishApproved func(context.Context, queue.RequestApprovedEvent) error
}

func NewPetHandler(cfg config.Config, pets PetStore) *PetHandler {
	if pets == nil {
		panic("nil store passed to NewPetHandler")
	}
	return &PetHandler{Cfg: cfg, Pets: pets}
}

// ----- DTOs -----

type petCreateReq struct {
	Name         string   `json:"name" validate:"required"`
	Species      string   `json:"species" validate:"required,oneof=dog cat bird rabbit hamster other"`
	Breed        string   `json:"breed"`
	Age          string   `json:"age" validate:"omitempty,oneof=puppy/kitten young adult senior unknown"`
	Gender       string   `json:"gender" validate:"omitempty,oneof=male female unknown"`
	Size         string   `json:"size" validate:"omitempty,oneof=small medium large extra-large"`
	Color        string   `json:"color"`
	Description  string   `json:"description" validate:"required,min=20"`
	Location     locationView `json:"location"`
	Temperament  []string `json:"temperament"`
	AvailableFor string   `json:"availableFor" validate:"required,oneof=fostering adoption both"`
	Urgency      string   `json:"urgency" validate:"omitempty,oneof=low medium high emergency"`
}

type petUpdateReq struct {
	Name         *string  `json:"name"`
	Species      *string  `json:"species"`
	Breed        *string  `json:"breed"`
	Age          *string  `json:"age"`
	Gender       *string  `json:"gender"`
	Size         *string  `json:"size"`
	Color        *string  `json:"color"`
	Description  *string  `json:"description"`
	Location     *locationView `json:"location"`
	Temperament  []string `json:"temperament"`
	Status       *string  `json:"status"`
	AvailableFor *string  `json:"availableFor"`
	Urgency      *string  `json:"urgency"`
	Featured     *bool    `json:"featured"`
}

type submitRequestReq struct {
	RequestType  string `json:"requestType" validate:"required,oneof=foster adoption"`
	Message      string `json:"message"`
	ContactPhone string `json:"contactPhone"`
}

type resolveRequestReq struct {
	Status string `json:"status" validate:"required,oneof=approved rejected"`
}

type requestView struct {
	ID           uint64    `json:"id"`
	User         uint64    `json:"user"`
	RequestType  string    `json:"requestType"`
	Status       string    `json:"status"`
	Message      string    `json:"message,omitempty"`
	ContactPhone string    `json:"contactPhone,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

type petView struct {
	ID               uint64        `json:"id"`
	Name             string        `json:"name"`
	Species          string        `json:"species"`
	Breed            string        `json:"breed,omitempty"`
	Age              string        `json:"age"`
	Gender           string        `json:"gender"`
	Size             string        `json:"size"`
	Color            string        `json:"color,omitempty"`
	Description      string        `json:"description"`
	Location         locationView  `json:"location"`
	Temperament      []string      `json:"temperament"`
	Status           string        `json:"status"`
	AvailableFor     string        `json:"availableFor"`
	PostedBy         uint64        `json:"postedBy"`
	CurrentCaretaker *uint64       `json:"currentCaretaker,omitempty"`
	Urgency          string        `json:"urgency"`
	Featured         bool          `json:"featured"`
	Views            uint64        `json:"views"`
	Requests         []requestView `json:"requests,omitempty"`
	CreatedAt        time.Time     `json:"createdAt"`
	UpdatedAt        time.Time     `json:"updatedAt"`
}

func viewRequest(q model.PetRequest) requestView {
	return requestView{
		ID:           q.ID,
		User:         q.RequesterID,
		RequestType:  q.RequestType,
		Status:       q.Status,
		Message:      q.Message,
		ContactPhone: q.ContactPhone,
		CreatedAt:    q.CreatedAt,
	}
}

func viewPet(p model.Pet) petView {
	return petView{
		ID:          p.ID,
		Name:        p.Name,
		Species:     p.Species,
		Breed:       p.Breed,
		Age:         p.Age,
		Gender:      p.Gender,
		Size:        p.Size,
		Color:       p.Color,
		Description: p.Description,
		Location: locationView{
			City: p.City, State: p.State, Country: p.Country, Pincode: p.Pincode,
		},
		Temperament:      splitTags(p.Temperament),
		Status:           p.Status,
		AvailableFor:     p.AvailableFor,
		PostedBy:         p.PostedBy,
		CurrentCaretaker: p.CurrentCaretaker,
		Urgency:          p.Urgency,
		Featured:         p.Featured,
		Views:            p.Views,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}

func viewPets(pets []model.Pet) []petView {
	out := make([]petView, 0, len(pets))
	for _, p := range pets {
		out = append(out, viewPet(p))
	}
	return out
}

// Create handles POST /api/pets.
func (h *PetHandler) Create(c echo.Context) error {
	acct, err := currentAccount(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "Not authorized")
	}
	var req petCreateReq
	if !bindAndValidate(c, &req) {
		return nil
	}
	if req.Location.City == "" {
		return fail(c, http.StatusBadRequest, "Please provide all required fields: name, species, description, city, and availableFor")
	}

	p := model.Pet{
		Name:         req.Name,
		Species:      req.Species,
		Breed:        req.Breed,
		Age:          req.Age,
		Gender:       req.Gender,
		Size:         req.Size,
		Color:        req.Color,
		Description:  req.Description,
		City:         req.Location.City,
		State:        req.Location.State,
		Country:      req.Location.Country,
		Pincode:      req.Location.Pincode,
		Temperament:  joinTags(req.Temperament),
		Status:       model.StatusAvailable,
		AvailableFor: req.AvailableFor,
		PostedBy:     acct.ID,
		Urgency:      req.Urgency,
	}
	if p.Breed == "" {
		p.Breed = "Mixed breed"
	}
	if p.Age == "" {
		p.Age = "unknown"
	}
	if p.Gender == "" {
		p.Gender = "unknown"
	}
	if p.Size == "" {
		p.Size = "medium"
	}
	if p.Urgency == "" {
		p.Urgency = "medium"
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	id, err := h.Pets.Create(ctx, p)
	if err != nil {
		return failErr(c, "Server error while creating pet listing", err, !h.Cfg.IsProd())
	}
	created, err := h.Pets.GetByID(ctx, id)
	if err != nil {
		return failErr(c, "Server error while creating pet listing", err, !h.Cfg.IsProd())
	}
	return ok(c, http.StatusCreated, "Pet listing created successfully", echo.Map{"pet": viewPet(created)})
}

// List handles GET /api/pets with filters and pagination.
func (h *PetHandler) List(c echo.Context) error {
	page, limit := pageParams(c, 12)
	q := repository.PetSearchQuery{
		Species:      c.QueryParam("species"),
		City:         c.QueryParam("city"),
		State:        c.QueryParam("state"),
		Age:          c.QueryParam("age"),
		Gender:       c.QueryParam("gender"),
		Size:         c.QueryParam("size"),
		Status:       c.QueryParam("status"),
		AvailableFor: c.QueryParam("availableFor"),
		Urgency:      c.QueryParam("urgency"),
		Search:       c.QueryParam("search"),
		Page:         page,
		PageSize:     limit,
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	pets, total, err := h.Pets.Search(ctx, q)
	if err != nil {
		return failErr(c, "Server error while fetching pets", err, !h.Cfg.IsProd())
	}
	return ok(c, http.StatusOK, "", echo.Map{
		"count":       len(pets),
		"total":       total,
		"totalPages":  totalPages(total, limit),
		"currentPage": page,
		"pets":        viewPets(pets),
	})
}

// Featured handles GET /api/pets/featured.
func (h *PetHandler) Featured(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	pets, err := h.Pets.Featured(ctx, 6)
	if err != nil {
		return failErr(c, "Server error", err, !h.Cfg.IsProd())
	}
	return ok(c, http.StatusOK, "", echo.Map{"count": len(pets), "pets": viewPets(pets)})
}

// GetOne handles GET /api/pets/:id.  Reading a listing bumps its view
// counter; the count is not deduplicated by viewer.
func (h *PetHandler) GetOne(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "Invalid pet id")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p, err := h.Pets.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(c, http.StatusNotFound, "Pet not found")
		}
		return failErr(c, "Server error while fetching pet", err, !h.Cfg.IsProd())
	}
	if err := h.Pets.IncrementViews(ctx, id); err == nil {
		p.Views++
	}

	view := viewPet(p)
	if requests, err := h.Pets.RequestsForPet(ctx, id); err == nil {
		for _, q := range requests {
			view.Requests = append(view.Requests, viewRequest(q))
		}
	}
	return ok(c, http.StatusOK, "", echo.Map{"pet": view})
}

// Update handles PUT /api/pets/:id, permitted to the owner or an admin.
func (h *PetHandler) Update(c echo.Context) error {
	acct, err := currentAccount(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "Not authorized")
	}
	id, err := parseID(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "Invalid pet id")
	}
	var req petUpdateReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p, err := h.Pets.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(c, http.StatusNotFound, "Pet not found")
		}
		return failErr(c, "Server error while updating pet", err, !h.Cfg.IsProd())
	}
	if p.PostedBy != acct.ID && acct.Role != model.RoleAdmin {
		return fail(c, http.StatusForbidden, "You are not authorized to update this pet listing")
	}

	upd := repository.PetUpdate{
		Name: req.Name, Species: req.Species, Breed: req.Breed, Age: req.Age,
		Gender: req.Gender, Size: req.Size, Color: req.Color, Description: req.Description,
		Status: req.Status, AvailableFor: req.AvailableFor, Urgency: req.Urgency,
		Featured: req.Featured,
	}
	if req.Location != nil {
		upd.City = &req.Location.City
		upd.State = &req.Location.State
		upd.Country = &req.Location.Country
		upd.Pincode = &req.Location.Pincode
	}
	if req.Temperament != nil {
		tags := joinTags(req.Temperament)
		upd.Temperament = &tags
	}
	if err := h.Pets.Update(ctx, id, upd); err != nil {
		return failErr(c, "Server error while updating pet", err, !h.Cfg.IsProd())
	}
	fresh, err := h.Pets.GetByID(ctx, id)
	if err != nil {
		return failErr(c, "Server error while updating pet", err, !h.Cfg.IsProd())
	}
	return ok(c, http.StatusOK, "Pet listing updated successfully", echo.Map{"pet": viewPet(fresh)})
}

// Delete handles DELETE /api/pets/:id, permitted to the owner or an admin.
func (h *PetHandler) Delete(c echo.Context) error {
	acct, err := currentAccount(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "Not authorized")
	}
	id, err := parseID(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "Invalid pet id")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p, err := h.Pets.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(c, http.StatusNotFound, "Pet not found")
		}
		return failErr(c, "Server error while deleting pet", err, !h.Cfg.IsProd())
	}
	if p.PostedBy != acct.ID && acct.Role != model.RoleAdmin {
		return fail(c, http.StatusForbidden, "You are not authorized to delete this pet listing")
	}
	if err := h.Pets.Delete(ctx, id); err != nil {
		return failErr(c, "Server error while deleting pet", err, !h.Cfg.IsProd())
	}
	return ok(c, http.StatusOK, "Pet listing deleted successfully", nil)
}

// SubmitRequest handles POST /api/pets/:id/request.  Listings accept
// requests only while available, and a requester may hold at most one
// pending request per listing.
func (h *PetHandler) SubmitRequest(c echo.Context) error {
	acct, err := currentAccount(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "Not authorized")
	}
	id, err := parseID(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "Invalid pet id")
	}
	var req submitRequestReq
	if !bindAndValidate(c, &req) {
		return nil
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p, err := h.Pets.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(c, http.StatusNotFound, "Pet not found")
		}
		return failErr(c, "Server error while submitting request", err, !h.Cfg.IsProd())
	}
	if p.Status != model.StatusAvailable {
		return fail(c, http.StatusBadRequest,
			"This pet is currently "+p.Status+" and not accepting new requests")
	}
	pending, err := h.Pets.HasPendingRequest(ctx, id, acct.ID)
	if err != nil {
		return failErr(c, "Server error while submitting request", err, !h.Cfg.IsProd())
	}
	if pending {
		return fail(c, http.StatusBadRequest, "You already have a pending request for this pet")
	}

	contact := req.ContactPhone
	if contact == "" {
		contact = acct.Phone
	}
	if _, err := h.Pets.CreateRequest(ctx, model.PetRequest{
		PetID:        id,
		RequesterID:  acct.ID,
		RequestType:  req.RequestType,
		Message:      req.Message,
		ContactPhone: contact,
	}); err != nil {
		return failErr(c, "Server error while submitting request", err, !h.Cfg.IsProd())
	}
	return ok(c, http.StatusOK, "Request submitted successfully", nil)
}

// ResolveRequest handles PUT /api/pets/:id/request/:requestId.  Only
// the listing owner may resolve requests.  Approval moves the listing
// to fostered or adopted, records the requester as caretaker and
// appends the listing to the requester's relationship list; rejection
// writes only the request status.
func (h *PetHandler) ResolveRequest(c echo.Context) error {
	acct, err := currentAccount(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "Not authorized")
	}
	id, err := parseID(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "Invalid pet id")
	}
	requestID, err := parseID(c, "requestId")
	if err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request id")
	}
	var req resolveRequestReq
	if !bindAndValidate(c, &req) {
		return nil
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p, err := h.Pets.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(c, http.StatusNotFound, "Pet not found")
		}
		return failErr(c, "Server error while updating request", err, !h.Cfg.IsProd())
	}
	if p.PostedBy != acct.ID {
		return fail(c, http.StatusForbidden, "You are not authorized to manage requests for this pet")
	}

	resolved, err := h.Pets.ResolveRequest(ctx, id, requestID, req.Status)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(c, http.StatusNotFound, "Request not found")
		}
		return failErr(c, "Server error while updating request", err, !h.Cfg.IsProd())
	}

	if req.Status == model.RequestApproved && h.PublishApproved != nil {
		newStatus := model.StatusFostered
		if resolved.RequestType == model.RequestAdoption {
			newStatus = model.StatusAdopted
		}
		ev := queue.RequestApprovedEvent{
			PetID:       p.ID,
			PetName:     p.Name,
			RequestID:   resolved.ID,
			RequestType: resolved.RequestType,
			OwnerID:     acct.ID,
			RequesterID: resolved.RequesterID,
			NewStatus:   newStatus,
			ApprovedAt:  time.Now().UTC().Format(time.RFC3339),
		}
		go func() { _ = h.PublishApproved(context.Background(), ev) }()
	}
	return ok(c, http.StatusOK, "Request "+req.Status+" successfully", echo.Map{
		"request": viewRequest(resolved),
	})
}

// MyPosted handles GET /api/pets/my/posted.
func (h *PetHandler) MyPosted(c echo.Context) error {
	acct, err := currentAccount(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "Not authorized")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	pets, err := h.Pets.ByOwner(ctx, acct.ID)
	if err != nil {
		return failErr(c, "Server error", err, !h.Cfg.IsProd())
	}
	return ok(c, http.StatusOK, "", echo.Map{"count": len(pets), "pets": viewPets(pets)})
}
