package ledger_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	infraledger "github.com/obiora/bankcore/infra/ledger"
	"github.com/obiora/bankcore/pkg/domain/transaction"
	"github.com/obiora/bankcore/pkg/ledger"
	"github.com/obiora/bankcore/pkg/money"
)

func newClient(t *testing.T, handler http.Handler) *infraledger.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return infraledger.New(srv.URL, time.Second, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestDebit_SendsSmallestUnitPayload(t *testing.T) {
	var got map[string]any
	client := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/accounts/debit", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))

	err := client.Debit(context.Background(), "0123456789", money.Must(20_200, money.NGN),
		"TXN-1", "cash withdrawal", transaction.TypeWithdrawal)

	require.NoError(t, err)
	assert.Equal(t, float64(2_020_000), got["amount"])
	assert.Equal(t, "NGN", got["currency"])
	assert.Equal(t, "TXN-1", got["reference"])
	assert.Equal(t, "WITHDRAWAL", got["type"])
}

func TestErrorCodeMapping(t *testing.T) {
	cases := []struct {
		code string
		want error
	}{
		{"INSUFFICIENT_FUNDS", ledger.ErrInsufficientFunds},
		{"LIMIT_EXCEEDED", ledger.ErrLimitExceeded},
		{"UNSUPPORTED_CURRENCY", ledger.ErrUnsupportedCurrency},
		{"SOMETHING_ELSE", ledger.ErrUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.code, func(t *testing.T) {
			client := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusUnprocessableEntity)
				_ = json.NewEncoder(w).Encode(map[string]string{"code": tc.code, "message": "rejected"})
			}))

			err := client.Debit(context.Background(), "0123456789", money.Must(100, money.NGN),
				"TXN-1", "", transaction.TypeWithdrawal)

			require.ErrorIs(t, err, tc.want)
		})
	}
}

func TestGetBalance(t *testing.T) {
	client := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/accounts/0123456789/balance", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"accountNumber":   "0123456789",
			"ledgerBalance":   10_000_000,
			"reservedBalance": 2_500_000,
			"currency":        "NGN",
		})
	}))

	balance, err := client.GetBalance(context.Background(), "0123456789")

	require.NoError(t, err)
	assert.Equal(t, money.Must(100_000, money.NGN), balance.Ledger)
	assert.Equal(t, money.Must(25_000, money.NGN), balance.Reserved)

	available, err := balance.Available()
	require.NoError(t, err)
	assert.Equal(t, money.Must(75_000, money.NGN), available)
}

func TestHold(t *testing.T) {
	client := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/accounts/holds", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]string{"holdId": "hold-7"})
	}))

	hold, err := client.Hold(context.Background(), "0123456789", money.Must(5_000, money.NGN),
		"TXN-1", "pre-settlement hold")

	require.NoError(t, err)
	assert.Equal(t, "hold-7", hold.HoldID)
	assert.Equal(t, "0123456789", hold.AccountNumber)
}

func TestUnreachableServiceIsUnavailable(t *testing.T) {
	client := infraledger.New("http://127.0.0.1:1", time.Second,
		slog.New(slog.NewTextHandler(io.Discard, nil)))

	err := client.ValidateLimits(context.Background(), "0123456789",
		money.Must(100, money.NGN), transaction.TypeWithdrawal, transaction.ChannelMobileApp)

	require.ErrorIs(t, err, ledger.ErrUnavailable)
}
