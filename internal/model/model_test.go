package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestParseDateRoundTrip(t *testing.T) {
	for _, s := range []string{"2025-12-09", "2024-02-29", "1999-01-01", "2030-10-31"} {
		d, err := ParseDate(s)
		require.NoError(t, err, s)
		assert.Equal(t, s, d.String())

		b, err := json.Marshal(d)
		require.NoError(t, err)
		assert.Equal(t, `"`+s+`"`, string(b))
	}
}

func TestParseDateRejectsMalformed(t *testing.T) {
	for _, s := range []string{"", "2025-13-01", "2025-02-30", "2023-02-29", "09/12/2025", "2025-1-9", "2025-12-09T10:00:00", "yesterday"} {
		_, err := ParseDate(s)
		assert.Error(t, err, s)
	}
}

func TestDateScan(t *testing.T) {
	var d Date
	require.NoError(t, d.Scan(time.Date(2025, 12, 9, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2025-12-09", d.String())

	require.NoError(t, d.Scan("2024-06-01"))
	assert.Equal(t, "2024-06-01", d.String())

	require.NoError(t, d.Scan([]byte("2024-06-02 00:00:00+00:00")))
	assert.Equal(t, "2024-06-02", d.String())

	assert.Error(t, d.Scan(42))
	assert.Error(t, d.Scan("06/02"))

	v, err := d.Value()
	require.NoError(t, err)
	assert.Equal(t, "2024-06-02", v)
}

func TestParseItemKind(t *testing.T) {
	k, err := ParseItemKind("")
	require.NoError(t, err)
	assert.Equal(t, KindLost, k)

	k, err = ParseItemKind(" Found ")
	require.NoError(t, err)
	assert.Equal(t, KindFound, k)
	assert.Equal(t, "founditems", k.Table())
	assert.Equal(t, "date_found", k.DateColumn())

	_, err = ParseItemKind("stolen")
	assert.Error(t, err)
}

func TestNewItemIsPending(t *testing.T) {
	d, _ := ParseDate("2025-12-09")
	it := NewItem(KindFound, ItemFields{Title: "Keys", Status: StatusFinished}, d)

	found, ok := it.(*FoundItem)
	require.True(t, ok)
	assert.Equal(t, StatusPending, found.Status)
	assert.False(t, found.CreatedAt.IsZero())
	assert.Equal(t, d, it.EventDate())
}

func TestItemJSONIsFlat(t *testing.T) {
	d, _ := ParseDate("2025-12-09")
	created := time.Date(2025, 12, 10, 8, 30, 0, 0, time.UTC)
	lost := &LostItem{
		ItemFields: ItemFields{ID: 7, Title: "iPhone 12", Description: "black case", UserID: 3, Location: "Library", Status: StatusPending, CreatedAt: created},
		DateLost:   d,
	}

	var got map[string]any
	b, err := json.Marshal(lost)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(b, &got))

	assert.Equal(t, "2025-12-09", got["date_lost"])
	assert.Equal(t, "2025-12-10T08:30:00Z", got["created_at"])
	assert.Equal(t, float64(3), got["user_id"])
	assert.Nil(t, got["category"])
	assert.NotContains(t, got, "type")
}

func TestTaggedItemAddsType(t *testing.T) {
	d, _ := ParseDate("2025-12-09")
	items := append(
		Tag([]*LostItem{{ItemFields: ItemFields{ID: 1, Title: "Wallet"}, DateLost: d}}),
		Tag([]*FoundItem{{ItemFields: ItemFields{ID: 1, Title: "Umbrella"}, DateFound: d}})...,
	)

	b, err := json.Marshal(items)
	require.NoError(t, err)

	var got []map[string]any
	require.NoError(t, json.Unmarshal(b, &got))
	require.Len(t, got, 2)
	assert.Equal(t, "Lost", got[0]["type"])
	assert.Equal(t, "2025-12-09", got[0]["date_lost"])
	assert.Equal(t, "Found", got[1]["type"])
	assert.Equal(t, "2025-12-09", got[1]["date_found"])
	assert.Equal(t, "Umbrella", got[1]["title"])
}

func TestNewUserHashesPassword(t *testing.T) {
	loc := "Paris"
	u, err := NewUser("  Alice@Example.COM ", "s3cret", &loc, bcrypt.MinCost)
	require.NoError(t, err)

	assert.Equal(t, "alice@example.com", u.Email)
	assert.NotEqual(t, "s3cret", u.PasswordHash)
	assert.True(t, u.CheckPassword("s3cret"))
	assert.False(t, u.CheckPassword("wrong"))

	other, err := NewUser("bob@example.com", "s3cret", nil, bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotEqual(t, u.PasswordHash, other.PasswordHash, "hashes are salted")

	pub, err := json.Marshal(u.Public())
	require.NoError(t, err)
	assert.NotContains(t, string(pub), "password")
	assert.JSONEq(t, `{"id":0,"email":"alice@example.com","location":"Paris"}`, string(pub))
}
