package screen

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/courtside-lab/project-courtside/internal/core/query"
	"github.com/courtside-lab/project-courtside/internal/core/record"
	"github.com/stretchr/testify/require"
)

func writeScreen(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

const bookingsYAML = `
name: bookings
endpoint: /bookings
search_fields: [id, resolvedStadiumName, status, note]
sort_types:
  createdAt: date
  finalValue: number
  resolvedStadiumName: text
joins:
  - relation: detail
    endpoint: /booking-details
  - relation: stadium
    endpoint: /stadiums
  - relation: user
    endpoint: /users
bills:
  endpoint: /bills
`

func TestLoadBookingsScreen(t *testing.T) {
	dir := t.TempDir()
	writeScreen(t, dir, "bookings.yaml", bookingsYAML)

	repo, err := NewFileSystemRepository(dir)
	require.NoError(t, err)
	require.Equal(t, 1, repo.Len())

	def, err := repo.Get("bookings")
	require.NoError(t, err)
	require.Equal(t, "/bookings", def.Endpoint)
	require.Equal(t, DomainBooking, def.StatusDomain)
	require.NotNil(t, def.Bills)

	// defaults filled per relation
	require.Equal(t, record.SemID, def.Joins[0].ForeignKey)
	require.Equal(t, record.SemBookingID, def.Joins[0].KeyField)
	require.False(t, def.Joins[0].Indexable())

	require.Equal(t, record.SemStadiumID, def.Joins[1].ForeignKey)
	require.Equal(t, record.SemID, def.Joins[1].KeyField)
	require.True(t, def.Joins[1].Indexable())

	cfg := def.QueryConfig(10)
	require.Equal(t, 10, cfg.PageSize)
	require.Equal(t, query.FieldDate, cfg.SortTypes["createdAt"])
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "missing endpoint", body: "name: broken\n"},
		{name: "unknown relation", body: "name: broken\nendpoint: /x\njoins:\n  - relation: arena\n    endpoint: /arenas\n"},
		{name: "relation without endpoint", body: "name: broken\nendpoint: /x\njoins:\n  - relation: stadium\n"},
		{name: "bad sort type", body: "name: broken\nendpoint: /x\nsort_types:\n  id: fancy\n"},
		{name: "bad status domain", body: "name: broken\nendpoint: /x\nstatus_domain: invoice\n"},
		{name: "duplicate relation", body: "name: broken\nendpoint: /x\njoins:\n  - relation: user\n    endpoint: /users\n  - relation: user\n    endpoint: /users\n"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			writeScreen(t, dir, "broken.yaml", tc.body)
			_, err := NewFileSystemRepository(dir)
			require.Error(t, err)
		})
	}
}

func TestDuplicateScreenName(t *testing.T) {
	dir := t.TempDir()
	writeScreen(t, dir, "a.yaml", "name: bookings\nendpoint: /bookings\n")
	writeScreen(t, dir, "b.yaml", "name: bookings\nendpoint: /other\n")

	_, err := NewFileSystemRepository(dir)
	require.ErrorContains(t, err, "duplicate screen name")
}

func TestMissingDirIsEmptyRepository(t *testing.T) {
	repo, err := NewFileSystemRepository(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	require.Equal(t, 0, repo.Len())

	_, err = repo.Get("bookings")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestBillDomain(t *testing.T) {
	dir := t.TempDir()
	writeScreen(t, dir, "bills.yaml", "name: bills\nendpoint: /bills\nstatus_domain: bill\n")

	repo, err := NewFileSystemRepository(dir)
	require.NoError(t, err)

	def, err := repo.Get("bills")
	require.NoError(t, err)
	require.Equal(t, "PAID", string(def.Canonicalizer()("paid")))
	require.Len(t, def.Statuses(), 3)
}
