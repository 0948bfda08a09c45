package ledger

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetBalance(t *testing.T) {
	t.Run("returns raw balance", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v1/balances/0xabc", r.URL.Path)
			w.Write([]byte(`{"address":"0xabc","balance":4200}`))
		}))
		defer srv.Close()

		c := NewHTTPClient(srv.URL, time.Second)
		bal, err := c.GetBalance(context.Background(), "0xabc")
		require.NoError(t, err)
		assert.Equal(t, int64(4200), bal)
	})

	t.Run("missing wallet is not a zero balance", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer srv.Close()

		c := NewHTTPClient(srv.URL, time.Second)
		_, err := c.GetBalance(context.Background(), "0xmissing")
		assert.ErrorIs(t, err, ErrWalletNotFound)
	})

	t.Run("unreachable ledger surfaces as unavailable", func(t *testing.T) {
		c := NewHTTPClient("http://127.0.0.1:1", 200*time.Millisecond)
		_, err := c.GetBalance(context.Background(), "0xabc")
		assert.ErrorIs(t, err, ErrLedgerUnavailable)
	})
}

func TestTransfer_OutcomeMapping(t *testing.T) {
	t.Run("success returns tx ref", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`{"tx_ref":"tx_42"}`))
		}))
		defer srv.Close()

		c := NewHTTPClient(srv.URL, time.Second)
		ref, err := c.Transfer(context.Background(), "0xa", "0xb", 100)
		require.NoError(t, err)
		assert.Equal(t, "tx_42", ref)
	})

	t.Run("timeout is ambiguous, not rejected", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(300 * time.Millisecond)
		}))
		defer srv.Close()

		c := NewHTTPClient(srv.URL, 100*time.Millisecond)
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		defer cancel()

		_, err := c.Transfer(ctx, "0xa", "0xb", 100)
		assert.ErrorIs(t, err, ErrSettlementAmbiguous)
	})

	t.Run("gateway timeout is ambiguous", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusGatewayTimeout)
		}))
		defer srv.Close()

		c := NewHTTPClient(srv.URL, time.Second)
		_, err := c.Transfer(context.Background(), "0xa", "0xb", 100)
		assert.ErrorIs(t, err, ErrSettlementAmbiguous)
	})

	t.Run("4xx is a clean rejection", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnprocessableEntity)
		}))
		defer srv.Close()

		c := NewHTTPClient(srv.URL, time.Second)
		_, err := c.Transfer(context.Background(), "0xa", "0xb", 100)
		assert.ErrorIs(t, err, ErrSettlementRejected)
	})
}

func TestIsActiveMember(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/members/0xactive":
			w.Write([]byte(`{"address":"0xactive","active":true}`))
		case "/v1/members/0xsuspended":
			w.Write([]byte(`{"address":"0xsuspended","active":false}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, time.Second)

	active, err := c.IsActiveMember(context.Background(), "0xactive")
	require.NoError(t, err)
	assert.True(t, active)

	active, err = c.IsActiveMember(context.Background(), "0xsuspended")
	require.NoError(t, err)
	assert.False(t, active)

	active, err = c.IsActiveMember(context.Background(), "0xunknown")
	require.NoError(t, err)
	assert.False(t, active, "an address with no membership record is simply not a member")
}
