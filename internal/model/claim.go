package model

import "time"

// Claim records a claimant's assertion against one item.  The item is
// referenced by kind and id because lost and found items live in separate
// tables.  Claims are immutable once written.
type Claim struct {
	ID         uint64    `json:"id"`
	ItemKind   ItemKind  `json:"item_kind"`
	ItemID     uint64    `json:"item_id"`
	ClaimantID uint64    `json:"claimant_id"`
	Message    *string   `json:"message"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}
