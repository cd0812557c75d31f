package wallet

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitwit/checkout/clients"
	"github.com/vitwit/checkout/types"
)

const testWallet = "0x70997970C51812dc3A010C7d01b50e0d17dc79C8"

func newTestService(t *testing.T, handler http.HandlerFunc) *Service {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewService(clients.NewCrossmint(srv.URL, "test-key", srv.Client(), nil), nil, nil)
}

func balanceHandler(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}
}

func TestBalance_NormalizesMinorUnits(t *testing.T) {
	svc := newTestService(t, balanceHandler(
		`[{"token":"usdc","decimals":4,"balances":{"base-sepolia":"150000"}}]`))

	got, err := svc.Balance(context.Background(), testWallet, types.TokenUSDC, types.ChainBaseSepolia)
	require.NoError(t, err)
	assert.True(t, got.Equal(decimal.RequireFromString("15")), "got %s", got)
}

func TestBalance_DefaultsToTwoDecimals(t *testing.T) {
	svc := newTestService(t, balanceHandler(
		`[{"token":"credit","balances":{"base-sepolia":"1000"}}]`))

	got, err := svc.Balance(context.Background(), testWallet, types.TokenCredit, types.ChainBaseSepolia)
	require.NoError(t, err)
	assert.True(t, got.Equal(decimal.RequireFromString("10")), "got %s", got)
}

func TestBalance_TokenMatchIsCaseInsensitive(t *testing.T) {
	svc := newTestService(t, balanceHandler(
		`[{"token":"USDC","decimals":2,"balances":{"ethereum-sepolia":"500"}}]`))

	got, err := svc.Balance(context.Background(), testWallet, types.TokenUSDC, types.ChainEthereumSepolia)
	require.NoError(t, err)
	assert.True(t, got.Equal(decimal.RequireFromString("5")))
}

func TestBalance_CreditMatchesByKeyword(t *testing.T) {
	// Credit records may carry provider-specific symbols; the keyword
	// predicate must still locate them.
	svc := newTestService(t, balanceHandler(
		`[{"token":"agent-credit","decimals":2,"balances":{"base-sepolia":"300"}}]`))

	got, err := svc.Balance(context.Background(), testWallet, types.TokenCredit, types.ChainBaseSepolia)
	require.NoError(t, err)
	assert.True(t, got.Equal(decimal.RequireFromString("3")))
}

func TestBalance_NotFoundCases(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"payload is not a collection", `{"token":"usdc"}`},
		{"no record matches the token", `[{"token":"weth","decimals":18,"balances":{"base-sepolia":"1"}}]`},
		{"record lacks the chain entry", `[{"token":"usdc","decimals":2,"balances":{"ethereum-sepolia":"100"}}]`},
		{"raw amount is not numeric", `[{"token":"usdc","decimals":2,"balances":{"base-sepolia":"lots"}}]`},
		{"empty collection", `[]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(t, balanceHandler(tt.body))
			_, err := svc.Balance(context.Background(), testWallet, types.TokenUSDC, types.ChainBaseSepolia)
			require.Error(t, err)

			var cerr *types.CheckoutError
			require.ErrorAs(t, err, &cerr)
			assert.Equal(t, types.ErrBalanceNotFound, cerr.Code)
		})
	}
}

func TestBalances_FormatsSupportedChains(t *testing.T) {
	svc := newTestService(t, balanceHandler(
		`[{"token":"usdc","decimals":4,"balances":{"base-sepolia":"150000","ethereum-sepolia":"12345","polygon":"999"}}]`))

	got, err := svc.Balances(context.Background(), testWallet, types.TokenUSDC)
	require.NoError(t, err)
	require.Len(t, got, 2, "unsupported chains must be filtered out")

	byChain := map[types.Chain]string{}
	for _, b := range got {
		byChain[b.Chain] = b.Balance
	}
	assert.Equal(t, "15.00", byChain[types.ChainBaseSepolia])
	assert.Equal(t, "1.2345", byChain[types.ChainEthereumSepolia])
}

func TestFormatBalance(t *testing.T) {
	tests := []struct {
		amount   string
		decimals int
		want     string
	}{
		{"15", 4, "15.00"},
		{"15.1234", 4, "15.1234"},
		{"15.1200", 4, "15.12"},
		{"0.5", 1, "0.50"},
		{"7", 2, "7.00"},
	}

	for _, tt := range tests {
		got := FormatBalance(decimal.RequireFromString(tt.amount), tt.decimals)
		assert.Equal(t, tt.want, got, "amount %s decimals %d", tt.amount, tt.decimals)
	}
}

func TestSubmitTransaction_Success(t *testing.T) {
	var gotSigner, gotChain string
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodGet:
			_, _ = w.Write([]byte(`{"config":{"adminSigner":{"locator":"evm-keypair:0xabc"}}}`))
		case r.Method == http.MethodPost:
			var req types.TransactionRequest
			require.NoError(t, jsonDecode(r, &req))
			gotSigner = req.Params.Signer
			gotChain = req.Params.Chain
			_, _ = w.Write([]byte(`{"id":"tx-123","status":"in_progress"}`))
		}
	})

	tx, err := svc.SubmitTransaction(context.Background(), testWallet, "0xdeadbeef", types.ChainBaseSepolia)
	require.NoError(t, err)
	assert.Equal(t, "tx-123", tx.ID)
	assert.Equal(t, types.TxInProgress, tx.Status)
	assert.Equal(t, "evm-keypair:0xabc", gotSigner)
	assert.Equal(t, "base-sepolia", gotChain)
}

func TestSubmitTransaction_AcceptsWalletLocator(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.Method == http.MethodGet {
			_, _ = w.Write([]byte(`{"config":{"adminSigner":{"locator":"evm-keypair:0xabc"}}}`))
			return
		}
		_, _ = w.Write([]byte(`{"id":"tx-456","status":"in_progress"}`))
	})

	tx, err := svc.SubmitTransaction(context.Background(),
		"email:shopper@example.com:evm-smart-wallet", "0xdeadbeef", types.ChainBaseSepolia)
	require.NoError(t, err)
	assert.Equal(t, "tx-456", tx.ID)
}

func TestSubmitTransaction_SignerNotFound(t *testing.T) {
	svc := newTestService(t, balanceHandler(`{"config":{}}`))

	_, err := svc.SubmitTransaction(context.Background(), testWallet, "0xdeadbeef", types.ChainBaseSepolia)
	require.Error(t, err)

	var cerr *types.CheckoutError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, types.ErrSignerNotFound, cerr.Code)
}

func TestSubmitTransaction_MissingTransactionID(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.Method == http.MethodGet {
			_, _ = w.Write([]byte(`{"config":{"adminSigner":{"locator":"evm-keypair:0xabc"}}}`))
			return
		}
		_, _ = w.Write([]byte(`{"status":"pending"}`))
	})

	_, err := svc.SubmitTransaction(context.Background(), testWallet, "0xdeadbeef", types.ChainBaseSepolia)
	require.Error(t, err)

	var cerr *types.CheckoutError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, types.ErrSubmissionFailed, cerr.Code)
}

func TestSubmitTransaction_ValidatesInputs(t *testing.T) {
	svc := newTestService(t, balanceHandler(`{}`))

	_, err := svc.SubmitTransaction(context.Background(), "not-an-address", "0xdeadbeef", types.ChainBaseSepolia)
	var cerr *types.CheckoutError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, types.ErrInvalidAddress, cerr.Code)

	_, err = svc.SubmitTransaction(context.Background(), testWallet, "not-hex", types.ChainBaseSepolia)
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, types.ErrInvalidTransaction, cerr.Code)
}

func jsonDecode(r *http.Request, out interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(out)
}
