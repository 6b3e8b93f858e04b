package devicesource

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFetchActivityDecodesBatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/device-activity", r.URL.Path)
		require.Equal(t, "user 1", r.URL.Query().Get("user_id"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"user_id":"user 1","date":"2024-03-08","activity_type":"running","value":30,"unit":"minutes"},
			{"user_id":"user 1","date":"2024-03-09","activity_type":"sleep","value":7.5}
		]`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	batch, err := client.FetchActivity(context.Background(), "user 1")
	require.NoError(t, err)
	require.Len(t, batch, 2)

	require.NotNil(t, batch[0].ActivityType)
	require.Equal(t, "running", *batch[0].ActivityType)
	require.Nil(t, batch[1].Unit, "absent fields stay nil for the domain layer to reject")
}

func TestFetchActivityRejectsBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	_, err := client.FetchActivity(context.Background(), "user-1")
	require.Error(t, err)
	require.Contains(t, err.Error(), "status 500")
}

func TestFetchActivityRejectsBadPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"not":"a list"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	_, err := client.FetchActivity(context.Background(), "user-1")
	require.Error(t, err)
}
