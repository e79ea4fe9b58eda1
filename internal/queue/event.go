// Package queue defines message payloads exchanged over the message broker
// and the consumer that records them.
package queue

import (
	"time"

	"github.com/iliyamo/lost-and-found/internal/model"
)

// ItemClaimedEvent is published after a claim has been committed.  It
// carries enough for downstream consumers to log or notify without querying
// the primary database.
type ItemClaimedEvent struct {
	ClaimID    uint64  `json:"claim_id"`
	ItemID     uint64  `json:"item_id"`
	ItemKind   string  `json:"item_kind"`
	ClaimantID uint64  `json:"claimant_id"`
	Message    *string `json:"message"`
	ClaimedAt  string  `json:"claimed_at"`
}

// NewItemClaimedEvent builds the event for a committed claim.
func NewItemClaimedEvent(c *model.Claim) ItemClaimedEvent {
	return ItemClaimedEvent{
		ClaimID:    c.ID,
		ItemID:     c.ItemID,
		ItemKind:   string(c.ItemKind),
		ClaimantID: c.ClaimantID,
		Message:    c.Message,
		ClaimedAt:  c.CreatedAt.UTC().Format(time.RFC3339),
	}
}
