package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/lost-and-found/internal/model"
	"github.com/iliyamo/lost-and-found/internal/queue"
	"github.com/iliyamo/lost-and-found/internal/repository"
)

// ClaimEvents receives committed claims.  It is implemented by the RabbitMQ
// publisher; a nil ClaimEvents disables publishing.
type ClaimEvents interface {
	PublishItemClaimed(ctx context.Context, ev queue.ItemClaimedEvent) error
}

// ClaimHandler serves POST /items/:id/claim.
type ClaimHandler struct {
	Claims  *repository.ClaimRepo
	Events  ClaimEvents
	Timeout time.Duration
	Log     logrus.FieldLogger
}

func NewClaimHandler(claims *repository.ClaimRepo, events ClaimEvents, timeout time.Duration, log logrus.FieldLogger) *ClaimHandler {
	return &ClaimHandler{Claims: claims, Events: events, Timeout: timeout, Log: log}
}

type claimReq struct {
	ClaimantID *uint64 `json:"claimant_id"`
	Message    *string `json:"message"`
	ItemType   string  `json:"item_type"`
}

type claimResp struct {
	Message string `json:"message"`
	ClaimID uint64 `json:"claim_id"`
}

// Claim records a claim against a pending item and marks it finished.
// The item is lost unless the body names item_type "found".
func (h *ClaimHandler) Claim(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return fail(c, h.Log, err)
	}

	var req claimReq
	if err := c.Bind(&req); err != nil {
		return fail(c, h.Log, ValidationError("invalid body"))
	}
	if req.ClaimantID == nil || *req.ClaimantID == 0 {
		return fail(c, h.Log, ValidationError("claimant_id is required"))
	}
	kind, err := model.ParseItemKind(req.ItemType)
	if err != nil {
		return fail(c, h.Log, ValidationError("item_type must be lost or found"))
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.Timeout)
	defer cancel()

	claim, err := h.Claims.Claim(ctx, repository.ClaimRequest{
		ItemKind:   kind,
		ItemID:     id,
		ClaimantID: *req.ClaimantID,
		Message:    trimmedOrNil(req.Message),
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrItemNotFound):
			return fail(c, h.Log, NotFoundError("item not found"))
		case errors.Is(err, repository.ErrAlreadyClaimed):
			return fail(c, h.Log, ConflictError("item already claimed"))
		case errors.Is(err, repository.ErrUnknownUser):
			return fail(c, h.Log, ValidationError("unknown user"))
		}
		return fail(c, h.Log, err)
	}

	log := h.Log.WithFields(logrus.Fields{"claim_id": claim.ID, "kind": kind, "item_id": id})
	log.Info("item claimed")
	if h.Events != nil {
		// the claim is committed; a broker failure must not change the response
		if err := h.Events.PublishItemClaimed(ctx, queue.NewItemClaimedEvent(claim)); err != nil {
			log.WithError(err).Warn("publish item.claimed failed")
		}
	}

	return c.JSON(http.StatusCreated, claimResp{Message: "Claim submitted successfully", ClaimID: claim.ID})
}
