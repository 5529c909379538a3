package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/inkveil/inkveil/internal/api"
	"github.com/inkveil/inkveil/internal/client/models"
	"github.com/inkveil/inkveil/internal/common"
	"github.com/stretchr/testify/require"
)

func TestLoginStoresTokens(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/login", r.URL.Path)
		var req api.LoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "alice", req.Username)
		require.Equal(t, []byte("verifier"), req.Verifier)
		json.NewEncoder(w).Encode(api.TokenPair{AccessToken: "at1", RefreshToken: "rt1"})
	}))
	defer srv.Close()

	c := NewRESTClient(srv.URL)
	require.NoError(t, c.Login(context.Background(), "alice", []byte("verifier")))

	access, refresh := c.Tokens()
	require.Equal(t, "at1", access)
	require.Equal(t, "rt1", refresh)
}

func TestLogin_BadVerifier(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(api.ErrorResponse{Error: "unauthorized"})
	}))
	defer srv.Close()

	c := NewRESTClient(srv.URL)
	err := c.Login(context.Background(), "alice", []byte("wrong"))
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestGetSalt(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/salt", r.URL.Path)
		require.Equal(t, "alice", r.URL.Query().Get("username"))
		json.NewEncoder(w).Encode(api.SaltResponse{Salt: []byte("salt-bytes")})
	}))
	defer srv.Close()

	c := NewRESTClient(srv.URL)
	salt, err := c.GetSalt(context.Background(), "alice")
	require.NoError(t, err)
	require.Equal(t, []byte("salt-bytes"), salt)
}

func TestServerUnreachable(t *testing.T) {
	c := NewRESTClient("http://127.0.0.1:1")
	err := c.Ping(context.Background())
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestExpiredTokenIsRefreshedOnce(t *testing.T) {
	var syncCalls, refreshCalls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/entries/sync":
			syncCalls++
			if r.Header.Get(common.AccessTokenHeaderName) != "Bearer fresh" {
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(api.ErrorResponse{Error: common.ErrTokenExpired.Error()})
				return
			}
			json.NewEncoder(w).Encode(api.SyncResponse{})
		case "/api/token/refresh":
			refreshCalls++
			var req api.RefreshRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			require.Equal(t, "rt-old", req.RefreshToken)
			json.NewEncoder(w).Encode(api.TokenPair{AccessToken: "fresh", RefreshToken: "rt-new"})
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	c := NewRESTClient(srv.URL)
	c.SetTokens("stale", "rt-old")

	_, err := c.SyncEntries(context.Background(), nil)
	require.NoError(t, err)
	require.Equal(t, 2, syncCalls)
	require.Equal(t, 1, refreshCalls)

	access, refresh := c.Tokens()
	require.Equal(t, "fresh", access)
	require.Equal(t, "rt-new", refresh)
}

func TestSyncEntries_RoundTrip(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req api.SyncRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Entries, 1)
		require.Equal(t, "e1", req.Entries[0].Id)
		json.NewEncoder(w).Encode(api.SyncResponse{Entries: []api.Entry{
			{Id: "e1", EncryptedTitle: []byte("t"), EncryptedContent: []byte("c"), IV: []byte("iv"), CreatedAt: now, UpdatedAt: now},
			{Id: "e2", EncryptedTitle: []byte("t2"), EncryptedContent: []byte("c2"), IV: []byte("iv2"), CreatedAt: now, UpdatedAt: now},
		}})
	}))
	defer srv.Close()

	c := NewRESTClient(srv.URL)
	got, err := c.SyncEntries(context.Background(), []*models.Entry{
		{Id: "e1", EncryptedTitle: []byte("t"), EncryptedContent: []byte("c"), IV: []byte("iv"), CreatedAt: now, UpdatedAt: now},
	})
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "e2", got[1].Id)
}

func TestCreateSwitch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/switches", r.URL.Path)
		var req api.CreateSwitchRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, int64(259200), req.TimerIntervalSeconds)
		require.Equal(t, []byte("payload-key"), req.PayloadKey)
		json.NewEncoder(w).Encode(api.CreateSwitchResponse{Id: "sw1", UploadURL: "https://blobs/put/sw1"})
	}))
	defer srv.Close()

	c := NewRESTClient(srv.URL)
	sw := &models.Switch{
		EncryptedName: []byte("name"),
		NameIV:        []byte("iv"),
		TimerInterval: 72 * time.Hour,
		HasPayload:    true,
		PayloadIV:     []byte("piv"),
	}
	id, uploadURL, err := c.CreateSwitch(context.Background(), sw, []byte("payload-key"))
	require.NoError(t, err)
	require.Equal(t, "sw1", id)
	require.Equal(t, "https://blobs/put/sw1", uploadURL)
}

func TestCheckIn_Triggered(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/switches/sw1/checkin", r.URL.Path)
		json.NewEncoder(w).Encode(api.CheckInResponse{Triggered: true})
	}))
	defer srv.Close()

	c := NewRESTClient(srv.URL)
	_, err := c.CheckIn(context.Background(), "sw1")
	require.ErrorIs(t, err, common.ErrSwitchTriggered)
}

func TestGetDisclosure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/disclosure/sw1", r.URL.Path)
		json.NewEncoder(w).Encode(api.DisclosureResponse{PayloadURL: "https://blobs/get/sw1", IV: []byte("piv")})
	}))
	defer srv.Close()

	c := NewRESTClient(srv.URL)
	payloadURL, iv, err := c.GetDisclosure(context.Background(), "sw1")
	require.NoError(t, err)
	require.Equal(t, "https://blobs/get/sw1", payloadURL)
	require.Equal(t, []byte("piv"), iv)
}

func TestGetDisclosure_NotTriggered(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(api.ErrorResponse{Error: "not found"})
	}))
	defer srv.Close()

	c := NewRESTClient(srv.URL)
	_, _, err := c.GetDisclosure(context.Background(), "sw1")
	require.ErrorIs(t, err, common.ErrorNotFound)
}
