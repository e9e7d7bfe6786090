package handler // handler defines http handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/tanvichauhan7/fostertails/internal/middleware"
	"github.com/tanvichauhan7/fostertails/internal/model"
)

// Every response uses the same JSON envelope: {"success": bool,
// "message"?: string, ...payload}.  Error responses may additionally
// carry an "error" field with internal detail in dev mode.

// ok writes a success envelope with optional message and payload keys.
func ok(c echo.Context, status int, message string, data echo.Map) error {
	body := echo.Map{"success": true}
	if message != "" {
		body["message"] = message
	}
	for k, v := range data {
		body[k] = v
	}
	return c.JSON(status, body)
}

// fail writes an error envelope.
func fail(c echo.Context, status int, message string) error {
	return c.JSON(status, echo.Map{"success": false, "message": message})
}

// failErr writes a 500 envelope.  The underlying error detail is only
// included when dev is true; in production the message stands alone.
func failErr(c echo.Context, message string, err error, dev bool) error {
	body := echo.Map{"success": false, "message": message}
	if dev && err != nil {
		body["error"] = err.Error()
	}
	return c.JSON(http.StatusInternalServerError, body)
}

// currentAccount extracts the account attached by the session
// middleware.  Routes registered behind the gate always have one; a
// miss indicates a wiring bug and is reported as 401.
func currentAccount(c echo.Context) (model.Account, error) {
	acct, ok := middleware.AccountFrom(c)
	if !ok {
		return model.Account{}, errors.New("no account in context")
	}
	return acct, nil
}

// parseID parses a numeric path parameter.
func parseID(c echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}

// pageParams reads ?page= and ?limit= with defaults and caps.
func pageParams(c echo.Context, defLimit int) (page, limit int) {
	page, _ = strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	limit, _ = strconv.Atoi(c.QueryParam("limit"))
	if limit < 1 {
		limit = defLimit
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit
}

// totalPages computes the page count for a result set.
func totalPages(total int64, limit int) int64 {
	if limit <= 0 {
		return 0
	}
	return (total + int64(limit) - 1) / int64(limit)
}

// splitTags converts a stored comma list into a JSON-friendly slice.
func splitTags(s string) []string {
	if s == "" {
		return []string{}
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// joinTags normalizes a tag slice into the stored comma list.
func joinTags(tags []string) string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(strings.ToLower(t)); t != "" {
			out = append(out, t)
		}
	}
	return strings.Join(out, ",")
}

// locationView is the nested location object shared by account, pet
// and NGO payloads.
type locationView struct {
	Street  string `json:"street,omitempty"`
	City    string `json:"city"`
	State   string `json:"state,omitempty"`
	Country string `json:"country,omitempty"`
	Pincode string `json:"pincode,omitempty"`
}
