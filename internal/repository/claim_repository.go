package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/iliyamo/lost-and-found/internal/model"
)

// ClaimRepo records claims and drives the pending → finished transition of
// the claimed item.
type ClaimRepo struct {
	db *sql.DB
}

// NewClaimRepo returns a new ClaimRepo bound to the given database.
func NewClaimRepo(db *sql.DB) *ClaimRepo { return &ClaimRepo{db: db} }

// ClaimRequest carries the input of a claim.  Message is nil when the
// claimant left no message.
type ClaimRequest struct {
	ItemKind   model.ItemKind
	ItemID     uint64
	ClaimantID uint64
	Message    *string
}

// Claim marks the item finished and records the claim in one transaction.
//
// The status guard is the conditional UPDATE: only the transaction that
// moves the row from pending to finished inserts a claim, every other
// caller sees zero affected rows and gets ErrAlreadyClaimed.  The unique
// (item_kind, item_id) key on claims backs this up at the store level.
// ErrItemNotFound and ErrUnknownUser report a missing item or claimant.
// On any error nothing is persisted.
func (r *ClaimRepo) Claim(ctx context.Context, req ClaimRequest) (*model.Claim, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin claim: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	table := req.ItemKind.Table()

	var status string
	err = tx.QueryRowContext(ctx, "SELECT status FROM "+table+" WHERE id = ?", req.ItemID).Scan(&status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("load item status: %w", err)
	}
	if status != model.StatusPending {
		return nil, ErrAlreadyClaimed
	}

	res, err := tx.ExecContext(ctx,
		"UPDATE "+table+" SET status = ? WHERE id = ? AND status = ?",
		model.StatusFinished, req.ItemID, model.StatusPending)
	if err != nil {
		return nil, fmt.Errorf("update item status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("update item status: %w", err)
	}
	if n == 0 {
		// another claim finished the item after our read
		return nil, ErrAlreadyClaimed
	}

	c := &model.Claim{
		ItemKind:   req.ItemKind,
		ItemID:     req.ItemID,
		ClaimantID: req.ClaimantID,
		Message:    req.Message,
		Status:     model.StatusPending,
		CreatedAt:  time.Now().UTC().Truncate(time.Second),
	}
	res, err = tx.ExecContext(ctx,
		`INSERT INTO claims (item_kind, item_id, claimant_id, message, status, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		string(c.ItemKind), c.ItemID, c.ClaimantID, nullString(c.Message), c.Status, c.CreatedAt)
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return nil, ErrAlreadyClaimed
		case isForeignKeyViolation(err):
			return nil, ErrUnknownUser
		}
		return nil, fmt.Errorf("insert claim: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("insert claim: %w", err)
	}
	c.ID = uint64(id)

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit claim: %w", err)
	}
	committed = true
	return c, nil
}

// ListByItem returns the claims recorded against one item, oldest first.
func (r *ClaimRepo) ListByItem(ctx context.Context, kind model.ItemKind, itemID uint64) ([]model.Claim, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, item_kind, item_id, claimant_id, message, status, created_at
		 FROM claims WHERE item_kind = ? AND item_id = ? ORDER BY id ASC`,
		string(kind), itemID)
	if err != nil {
		return nil, fmt.Errorf("list claims: %w", err)
	}
	defer rows.Close()

	out := []model.Claim{}
	for rows.Next() {
		var (
			c   model.Claim
			k   string
			msg sql.NullString
		)
		if err := rows.Scan(&c.ID, &k, &c.ItemID, &c.ClaimantID, &msg, &c.Status, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan claim: %w", err)
		}
		c.ItemKind = model.ItemKind(k)
		c.Message = stringPtr(msg)
		out = append(out, c)
	}
	return out, rows.Err()
}
