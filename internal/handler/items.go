package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/lost-and-found/internal/model"
	"github.com/iliyamo/lost-and-found/internal/repository"
)

// ItemHandler serves the item report, search and listing endpoints.
type ItemHandler struct {
	Items   *repository.ItemRepo
	Claims  *repository.ClaimRepo
	Timeout time.Duration
	Log     logrus.FieldLogger
}

func NewItemHandler(items *repository.ItemRepo, claims *repository.ClaimRepo, timeout time.Duration, log logrus.FieldLogger) *ItemHandler {
	return &ItemHandler{Items: items, Claims: claims, Timeout: timeout, Log: log}
}

// reportReq is the body of POST /items/lost and POST /items/found.  Only the
// date field matching the route is read.
type reportReq struct {
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	UserID       *uint64 `json:"user_id"`
	Location     string  `json:"location"`
	DateLost     string  `json:"date_lost"`
	DateFound    string  `json:"date_found"`
	Category     *string `json:"category"`
	ContactEmail *string `json:"contact_email"`
}

type itemResp struct {
	Message string     `json:"message"`
	Item    model.Item `json:"item"`
}

type itemDetailResp struct {
	Item   model.Item    `json:"item"`
	Claims []model.Claim `json:"claims"`
}

// ReportLost records a lost item.  POST /items/lost
func (h *ItemHandler) ReportLost(c echo.Context) error { return h.report(c, model.KindLost) }

// ReportFound records a found item.  POST /items/found
func (h *ItemHandler) ReportFound(c echo.Context) error { return h.report(c, model.KindFound) }

func (h *ItemHandler) report(c echo.Context, kind model.ItemKind) error {
	var req reportReq
	if err := c.Bind(&req); err != nil {
		return fail(c, h.Log, ValidationError("invalid body"))
	}

	dateField, rawDate := "date_lost", req.DateLost
	if kind == model.KindFound {
		dateField, rawDate = "date_found", req.DateFound
	}

	f := model.ItemFields{
		Title:        strings.TrimSpace(req.Title),
		Description:  strings.TrimSpace(req.Description),
		Location:     strings.TrimSpace(req.Location),
		Category:     trimmedOrNil(req.Category),
		ContactEmail: trimmedOrNil(req.ContactEmail),
	}
	if req.UserID != nil {
		f.UserID = *req.UserID
	}
	rawDate = strings.TrimSpace(rawDate)

	var missing []string
	for _, p := range []struct {
		name  string
		blank bool
	}{
		{"title", f.Title == ""},
		{"description", f.Description == ""},
		{"user_id", f.UserID == 0},
		{"location", f.Location == ""},
		{dateField, rawDate == ""},
	} {
		if p.blank {
			missing = append(missing, p.name)
		}
	}
	if len(missing) > 0 {
		return fail(c, h.Log, ValidationError("missing required fields: "+strings.Join(missing, ", ")))
	}

	date, err := model.ParseDate(rawDate)
	if err != nil {
		return fail(c, h.Log, ValidationError("invalid "+dateField+" format, use YYYY-MM-DD"))
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.Timeout)
	defer cancel()

	it := model.NewItem(kind, f, date)
	if err := h.Items.Create(ctx, it); err != nil {
		if errors.Is(err, repository.ErrUnknownUser) {
			return fail(c, h.Log, ValidationError("unknown user"))
		}
		return fail(c, h.Log, err)
	}

	h.Log.WithFields(logrus.Fields{"kind": kind, "item_id": it.Fields().ID}).Info("item reported")
	return c.JSON(http.StatusCreated, itemResp{
		Message: "Successful addition of " + string(kind) + " item",
		Item:    it,
	})
}

func searchQuery(c echo.Context) repository.ItemSearchQuery {
	return repository.ItemSearchQuery{
		Query:    strings.TrimSpace(c.QueryParam("q")),
		Location: strings.TrimSpace(c.QueryParam("location")),
	}
}

// SearchLost lists lost items filtered by ?q= and ?location=.  GET /items/lost
func (h *ItemHandler) SearchLost(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.Timeout)
	defer cancel()

	items, err := h.Items.SearchLost(ctx, searchQuery(c))
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, items)
}

// SearchFound is SearchLost for found items.  GET /items/found
func (h *ItemHandler) SearchFound(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.Timeout)
	defer cancel()

	items, err := h.Items.SearchFound(ctx, searchQuery(c))
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, items)
}

// ListItems returns every item of both kinds with a "type" tag.  GET /items
func (h *ItemHandler) ListItems(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.Timeout)
	defer cancel()

	items, err := h.Items.ListAll(ctx)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, items)
}

// GetLost returns one lost item with its claims.  GET /items/lost/:id
func (h *ItemHandler) GetLost(c echo.Context) error { return h.detail(c, model.KindLost) }

// GetFound returns one found item with its claims.  GET /items/found/:id
func (h *ItemHandler) GetFound(c echo.Context) error { return h.detail(c, model.KindFound) }

func (h *ItemHandler) detail(c echo.Context, kind model.ItemKind) error {
	id, err := pathID(c)
	if err != nil {
		return fail(c, h.Log, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.Timeout)
	defer cancel()

	it, err := h.Items.GetByID(ctx, kind, id)
	if err != nil {
		if errors.Is(err, repository.ErrItemNotFound) {
			return fail(c, h.Log, NotFoundError("item not found"))
		}
		return fail(c, h.Log, err)
	}
	claims, err := h.Claims.ListByItem(ctx, kind, id)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, itemDetailResp{Item: it, Claims: claims})
}

// pathID parses the :id path parameter as a positive integer.
func pathID(c echo.Context) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, ValidationError("invalid item id")
	}
	return id, nil
}
