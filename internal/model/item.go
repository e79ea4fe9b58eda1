package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Item statuses.  An item starts pending and becomes finished exactly once,
// when a claim against it succeeds.
const (
	StatusPending  = "pending"
	StatusFinished = "finished"
)

// ItemKind discriminates the two item variants.  It is also the item
// reference type stored on claims.
type ItemKind string

const (
	KindLost  ItemKind = "lost"
	KindFound ItemKind = "found"
)

// ParseItemKind accepts "lost" or "found" in any case; empty means lost.
func ParseItemKind(s string) (ItemKind, error) {
	switch ItemKind(strings.ToLower(strings.TrimSpace(s))) {
	case "", KindLost:
		return KindLost, nil
	case KindFound:
		return KindFound, nil
	}
	return "", fmt.Errorf("unknown item kind %q", s)
}

// Table returns the store table holding items of this kind.
func (k ItemKind) Table() string {
	if k == KindFound {
		return "founditems"
	}
	return "lostitems"
}

// DateColumn returns the name of the variant-specific date column.
func (k ItemKind) DateColumn() string {
	if k == KindFound {
		return "date_found"
	}
	return "date_lost"
}

// Label is the value of the "type" field in mixed item listings.
func (k ItemKind) Label() string {
	if k == KindFound {
		return "Found"
	}
	return "Lost"
}

// ItemFields is the column set shared by lost and found items.
type ItemFields struct {
	ID           uint64    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	UserID       uint64    `json:"user_id"`
	Location     string    `json:"location"`
	Category     *string   `json:"category"`
	ContactEmail *string   `json:"contact_email"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}

// LostItem is a row of the `lostitems` table.
type LostItem struct {
	ItemFields
	DateLost Date `json:"date_lost"`
}

// FoundItem is a row of the `founditems` table.
type FoundItem struct {
	ItemFields
	DateFound Date `json:"date_found"`
}

// Item is implemented by *LostItem and *FoundItem.
type Item interface {
	Kind() ItemKind
	Fields() *ItemFields
	// EventDate is the date the item was lost or found.
	EventDate() Date
}

func (i *LostItem) Kind() ItemKind       { return KindLost }
func (i *LostItem) Fields() *ItemFields  { return &i.ItemFields }
func (i *LostItem) EventDate() Date      { return i.DateLost }
func (i *FoundItem) Kind() ItemKind      { return KindFound }
func (i *FoundItem) Fields() *ItemFields { return &i.ItemFields }
func (i *FoundItem) EventDate() Date     { return i.DateFound }

// NewItem builds a pending item of the given kind.
func NewItem(kind ItemKind, f ItemFields, date Date) Item {
	f.Status = StatusPending
	if f.CreatedAt.IsZero() {
		f.CreatedAt = time.Now().UTC().Truncate(time.Second)
	}
	if kind == KindFound {
		return &FoundItem{ItemFields: f, DateFound: date}
	}
	return &LostItem{ItemFields: f, DateLost: date}
}

// TaggedItem wraps an item for heterogeneous listings.  It serializes as
// the item's own fields plus "type": "Lost" or "Found".
type TaggedItem struct {
	Item Item
}

func (t TaggedItem) MarshalJSON() ([]byte, error) {
	switch v := t.Item.(type) {
	case *LostItem:
		return json.Marshal(struct {
			*LostItem
			Type string `json:"type"`
		}{v, KindLost.Label()})
	case *FoundItem:
		return json.Marshal(struct {
			*FoundItem
			Type string `json:"type"`
		}{v, KindFound.Label()})
	}
	return nil, fmt.Errorf("model: cannot tag %T", t.Item)
}

// Tag wraps each item in a TaggedItem.
func Tag[T Item](items []T) []TaggedItem {
	out := make([]TaggedItem, 0, len(items))
	for _, it := range items {
		out = append(out, TaggedItem{Item: it})
	}
	return out
}
