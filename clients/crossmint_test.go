package clients

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitwit/checkout/types"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Crossmint {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewCrossmint(srv.URL, "sk_test", srv.Client(), nil)
}

func TestGetOrder_RequestShape(t *testing.T) {
	var gotPath, gotAPIKey, gotChain, gotAgent string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAPIKey = r.Header.Get("X-API-KEY")
		gotChain = r.Header.Get("X-Chain")
		gotAgent = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte(`{"orderId":"order-1","phase":"completed"}`))
	})

	order, err := client.GetOrder(context.Background(), "order-1", "base-sepolia")
	require.NoError(t, err)
	assert.Equal(t, "/api/2022-06-09/orders/order-1", gotPath)
	assert.Equal(t, "sk_test", gotAPIKey)
	assert.Equal(t, "base-sepolia", gotChain)
	assert.Equal(t, "checkout/1.0", gotAgent)
	assert.Equal(t, "order-1", order.OrderID)
	assert.Equal(t, types.PhaseCompleted, order.Phase)
}

func TestGetBalances_RequestShape(t *testing.T) {
	var gotPath, gotQuery string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(`[{"token":"usdc","decimals":2,"balances":{"base-sepolia":"100"}}]`))
	})

	records, err := client.GetBalances(context.Background(), "0xabc", "usdc")
	require.NoError(t, err)
	assert.Equal(t, "/api/v1-alpha2/wallets/0xabc/balances", gotPath)
	assert.Equal(t, "tokens=usdc", gotQuery)
	require.Len(t, records, 1)
	assert.Equal(t, "usdc", records[0].Token)
}

func TestGetBalances_MalformedPayload(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"unexpected":"shape"}`))
	})

	_, err := client.GetBalances(context.Background(), "0xabc", "usdc")
	require.Error(t, err)

	var cerr *types.CheckoutError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, types.ErrBalanceNotFound, cerr.Code)
}

func TestGetTransaction_RequestShape(t *testing.T) {
	var gotPath, gotChain string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotChain = r.Header.Get("X-Chain")
		_, _ = w.Write([]byte(`{"id":"tx-1","status":"completed"}`))
	})

	tx, err := client.GetTransaction(context.Background(), "0xabc", "tx-1", "ethereum-sepolia")
	require.NoError(t, err)
	assert.Equal(t, "/api/2022-06-09/wallets/0xabc/transactions/tx-1", gotPath)
	assert.Equal(t, "ethereum-sepolia", gotChain)
	assert.Equal(t, types.TxCompleted, tx.Status)
}

func TestDoRaw_ErrorEnvelopeUnwrapping(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"message field", `{"message":"order not found"}`, "order not found"},
		{"error field", `{"error":"forbidden"}`, "forbidden"},
		{"opaque body", `upstream unavailable`, "upstream unavailable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := client.GetOrder(context.Background(), "order-1", "base-sepolia")
			require.Error(t, err)
			assert.Contains(t, err.Error(), "HTTP 404")
			assert.Contains(t, err.Error(), tt.want)

			var cerr *types.CheckoutError
			require.ErrorAs(t, err, &cerr)
			assert.Equal(t, types.ErrRemoteCallFailed, cerr.Code)
		})
	}
}

func TestSubmitOrder_EncodesRecipientOmission(t *testing.T) {
	var gotBody []byte
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		_, _ = w.Write([]byte(`{"totalAmount":"5.00","currency":"usdc"}`))
	})

	_, err := client.SubmitOrder(context.Background(), &types.OrderRequest{
		Payment:   types.PaymentDetails{Method: "base-sepolia", Currency: "usdc", PayerAddress: "0xabc"},
		LineItems: []types.LineItem{{ProductLocator: "amazon:B0TEST"}},
	})
	require.NoError(t, err)
	assert.NotContains(t, string(gotBody), "recipient",
		"a quote pre-check must not serialize an empty recipient")
}
