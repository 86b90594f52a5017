package resource

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/courtside-lab/project-courtside/internal/core/record"
	"github.com/stretchr/testify/require"
)

func TestDecodeCollectionShapes(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{name: "bare array", body: `[{"id":"a"},{"id":"b"}]`, want: 2},
		{name: "result envelope", body: `{"result":[{"id":"a"}]}`, want: 1},
		{name: "empty array", body: `[]`, want: 0},
		{name: "empty envelope", body: `{"result":[]}`, want: 0},
		{name: "object without result", body: `{"data":[{"id":"a"}]}`, want: 0},
		{name: "result not an array", body: `{"result":"nope"}`, want: 0},
		{name: "scalar", body: `42`, want: 0},
		{name: "garbage", body: `{{{{`, want: 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Len(t, DecodeCollection([]byte(tc.body)), tc.want)
		})
	}
}

func TestDecodeRecord(t *testing.T) {
	r, err := DecodeRecord([]byte(`{"id":"u1","name":"Ann"}`))
	require.NoError(t, err)
	require.Equal(t, "u1", record.ID(r, record.SemID))

	r, err = DecodeRecord([]byte(`{"result":{"id":"u2"}}`))
	require.NoError(t, err)
	require.Equal(t, "u2", record.ID(r, record.SemID))

	_, err = DecodeRecord([]byte(`[1,2,3]`))
	require.Error(t, err)
}

func TestClientCollection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/bookings":
			w.Write([]byte(`{"result":[{"id":"b1"},{"id":"b2"}]}`))
		case "/stadiums":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)

	records, err := c.Collection(context.Background(), "/bookings")
	require.NoError(t, err)
	require.Len(t, records, 2)

	_, err = c.Collection(context.Background(), "/stadiums")
	require.Error(t, err)
	var fe *FetchError
	require.True(t, errors.As(err, &fe))
	require.Equal(t, "/stadiums", fe.Resource)
}

func TestClientRecord(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/users/u1":
			w.Write([]byte(`{"id":"u1","fullName":"Ann"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)

	r, err := c.Record(context.Background(), "/users", "u1")
	require.NoError(t, err)
	require.Equal(t, "Ann", record.String(r, record.SemName))

	_, err = c.Record(context.Background(), "/users", "missing")
	var fe *FetchError
	require.True(t, errors.As(err, &fe))
	require.Equal(t, "missing", fe.Key)
}
