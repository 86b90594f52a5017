package index

import (
	"testing"

	"github.com/courtside-lab/project-courtside/internal/core/record"
	"github.com/stretchr/testify/require"
)

func TestBuildSkipsUnidentifiableRecords(t *testing.T) {
	records := []record.RawRecord{
		{"id": "s1", "name": "Alpha Court"},
		{"name": "no identifier"},
		{"id": nil, "name": "null identifier"},
		{"_id": "s2", "name": "Beta Court"},
	}

	ix := Build(records, record.SemID)
	require.Len(t, ix, 2)

	got, ok := ix.Lookup("s1")
	require.True(t, ok)
	require.Equal(t, "Alpha Court", record.String(got, record.SemName))

	_, ok = ix.Lookup("s2")
	require.True(t, ok)
}

func TestBuildNumericIdentifiers(t *testing.T) {
	ix := Build([]record.RawRecord{{"id": float64(7), "name": "Seven"}}, record.SemID)
	_, ok := ix.Lookup("7")
	require.True(t, ok)
}

func TestMissing(t *testing.T) {
	ix := Build([]record.RawRecord{{"id": "a"}, {"id": "b"}}, record.SemID)

	missing := ix.Missing([]string{"a", "c", "", "c", "d", "b"})
	require.Equal(t, []string{"c", "d"}, missing)

	ix.Add("c", record.RawRecord{"id": "c"})
	require.Equal(t, []string{"d"}, ix.Missing([]string{"a", "c", "d"}))
}

func TestAddIdempotentOverwrite(t *testing.T) {
	ix := make(Index)
	ix.Add("u1", record.RawRecord{"id": "u1", "name": "first"})
	ix.Add("u1", record.RawRecord{"id": "u1", "name": "second"})

	got, ok := ix.Lookup("u1")
	require.True(t, ok)
	require.Equal(t, "second", record.String(got, record.SemName))

	ix.Add("", record.RawRecord{"name": "dropped"})
	require.Len(t, ix, 1)
}
