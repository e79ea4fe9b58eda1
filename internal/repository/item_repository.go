package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/iliyamo/lost-and-found/internal/model"
)

// ItemRepo persists lost and found items.  Both variants share one code
// path; the item kind selects the table and the date column.
type ItemRepo struct {
	db *sql.DB
}

// NewItemRepo returns a new ItemRepo bound to the given database.
func NewItemRepo(db *sql.DB) *ItemRepo { return &ItemRepo{db: db} }

// ItemSearchQuery filters an item listing.  Empty fields do not filter.
// Query matches title or description; Location matches location.  Both
// are case-insensitive substring matches and combine with AND.
type ItemSearchQuery struct {
	Query    string
	Location string
}

func itemColumns(kind model.ItemKind) string {
	return "id, title, description, user_id, location, " + kind.DateColumn() +
		", category, contact_email, status, created_at"
}

// Create inserts a new item and sets its ID.  A user_id that references no
// user yields ErrUnknownUser.
func (r *ItemRepo) Create(ctx context.Context, it model.Item) error {
	kind := it.Kind()
	f := it.Fields()
	q := fmt.Sprintf(`INSERT INTO %s (title, description, user_id, location, %s, category, contact_email, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`, kind.Table(), kind.DateColumn())
	res, err := r.db.ExecContext(ctx, q,
		f.Title, f.Description, f.UserID, f.Location, it.EventDate(),
		nullString(f.Category), nullString(f.ContactEmail), f.Status, f.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrUnknownUser
		}
		return fmt.Errorf("insert %s item: %w", kind, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert %s item: %w", kind, err)
	}
	f.ID = uint64(id)
	return nil
}

// SearchLost returns lost items matching q, ordered by id.
func (r *ItemRepo) SearchLost(ctx context.Context, q ItemSearchQuery) ([]*model.LostItem, error) {
	return searchItems(ctx, r.db, model.KindLost, q, func(s rowScanner) (*model.LostItem, error) {
		var it model.LostItem
		return &it, scanItem(s, &it.ItemFields, &it.DateLost)
	})
}

// SearchFound returns found items matching q, ordered by id.
func (r *ItemRepo) SearchFound(ctx context.Context, q ItemSearchQuery) ([]*model.FoundItem, error) {
	return searchItems(ctx, r.db, model.KindFound, q, func(s rowScanner) (*model.FoundItem, error) {
		var it model.FoundItem
		return &it, scanItem(s, &it.ItemFields, &it.DateFound)
	})
}

// ListAll returns every lost item followed by every found item, each tagged
// with its kind.
func (r *ItemRepo) ListAll(ctx context.Context) ([]model.TaggedItem, error) {
	lost, err := r.SearchLost(ctx, ItemSearchQuery{})
	if err != nil {
		return nil, err
	}
	found, err := r.SearchFound(ctx, ItemSearchQuery{})
	if err != nil {
		return nil, err
	}
	return append(model.Tag(lost), model.Tag(found)...), nil
}

// GetByID loads one item of the given kind.  It returns ErrItemNotFound
// when the id does not exist.
func (r *ItemRepo) GetByID(ctx context.Context, kind model.ItemKind, id uint64) (model.Item, error) {
	var (
		it   model.Item
		f    *model.ItemFields
		date *model.Date
	)
	if kind == model.KindFound {
		fi := &model.FoundItem{}
		it, f, date = fi, &fi.ItemFields, &fi.DateFound
	} else {
		li := &model.LostItem{}
		it, f, date = li, &li.ItemFields, &li.DateLost
	}

	q := "SELECT " + itemColumns(kind) + " FROM " + kind.Table() + " WHERE id = ?"
	if err := scanItem(r.db.QueryRowContext(ctx, q, id), f, date); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("load %s item: %w", kind, err)
	}
	return it, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(s rowScanner, f *model.ItemFields, date *model.Date) error {
	var category, contact sql.NullString
	err := s.Scan(&f.ID, &f.Title, &f.Description, &f.UserID, &f.Location, date,
		&category, &contact, &f.Status, &f.CreatedAt)
	if err != nil {
		return err
	}
	f.Category = stringPtr(category)
	f.ContactEmail = stringPtr(contact)
	return nil
}

func searchItems[T any](ctx context.Context, db *sql.DB, kind model.ItemKind, q ItemSearchQuery, scan func(rowScanner) (T, error)) ([]T, error) {
	where := []string{}
	args := []any{}

	if q.Query != "" {
		pat := likePattern(q.Query)
		where = append(where, "(LOWER(title) LIKE LOWER(?) ESCAPE '!' OR LOWER(description) LIKE LOWER(?) ESCAPE '!')")
		args = append(args, pat, pat)
	}
	if q.Location != "" {
		where = append(where, "LOWER(location) LIKE LOWER(?) ESCAPE '!'")
		args = append(args, likePattern(q.Location))
	}

	cond := "1=1"
	if len(where) > 0 {
		cond = strings.Join(where, " AND ")
	}

	query := "SELECT " + itemColumns(kind) + " FROM " + kind.Table() + " WHERE " + cond + " ORDER BY id ASC"
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search %s items: %w", kind, err)
	}
	defer rows.Close()

	out := []T{}
	for rows.Next() {
		it, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s item: %w", kind, err)
		}
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// likePattern wraps s in % wildcards, escaping LIKE metacharacters with '!'
// so that the input matches literally.  Case folding happens in SQL, with
// the same LOWER() applied to the column and the pattern.
func likePattern(s string) string {
	r := strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")
	return "%" + r.Replace(s) + "%"
}
