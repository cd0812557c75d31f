// Package clients provides thin HTTP clients for the remote collaborators
// of the checkout flow: the Crossmint order/wallet API and the product
// search API. Clients only move bytes and decode envelopes; policy lives
// in the services built on top of them.
package clients

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/vitwit/checkout/logger"
	"github.com/vitwit/checkout/types"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	userAgent      = "checkout/1.0"
	ordersPath     = "/api/2022-06-09/orders"
	walletsPath    = "/api/2022-06-09/wallets"
	balancesPath   = "/api/v1-alpha2/wallets"
	defaultTimeout = 30 * time.Second
)

// Crossmint is a client for the order, wallet, and balance endpoints.
// Requests are keyed by API key header; order and transaction reads may
// additionally scope to a chain via the X-Chain header.
type Crossmint struct {
	baseURL string
	apiKey  string
	client  *http.Client
	log     logger.Logger
}

// NewCrossmint creates a Crossmint API client. A nil httpClient gets a
// default client with a 30s timeout; a nil log gets a noop logger.
func NewCrossmint(baseURL, apiKey string, httpClient *http.Client, log logger.Logger) *Crossmint {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	if log == nil {
		log = logger.NoopLogger{}
	}
	return &Crossmint{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  httpClient,
		log:     log,
	}
}

// SubmitOrder posts an order request. A request without a recipient acts
// as a quote pre-check; with a recipient it creates a real order.
func (c *Crossmint) SubmitOrder(ctx context.Context, req *types.OrderRequest) (*types.OrderResponse, error) {
	var resp types.OrderResponse
	if err := c.do(ctx, http.MethodPost, ordersPath, req, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetOrder fetches an order record, scoped to the chain it was created on.
func (c *Crossmint) GetOrder(ctx context.Context, orderID, chain string) (*types.Order, error) {
	var order types.Order
	path := fmt.Sprintf("%s/%s", ordersPath, url.PathEscape(orderID))
	headers := map[string]string{"X-Chain": chain}
	if err := c.do(ctx, http.MethodGet, path, nil, headers, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// GetBalances fetches the per-token balance records of a wallet. A payload
// that is not a well-formed record collection is reported as a
// balance_not_found error rather than a decode fault.
func (c *Crossmint) GetBalances(ctx context.Context, walletAddress, token string) ([]types.BalanceRecord, error) {
	path := fmt.Sprintf("%s/%s/balances?tokens=%s",
		balancesPath, url.PathEscape(walletAddress), url.QueryEscape(token))

	raw, err := c.doRaw(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, err
	}

	var records []types.BalanceRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, &types.CheckoutError{
			Code:    types.ErrBalanceNotFound,
			Message: fmt.Sprintf("malformed balance payload for token '%s'", token),
		}
	}
	return records, nil
}

// GetWallet fetches a wallet record, including its signer configuration.
func (c *Crossmint) GetWallet(ctx context.Context, walletAddress string) (*types.Wallet, error) {
	var wallet types.Wallet
	path := fmt.Sprintf("%s/%s", walletsPath, url.PathEscape(walletAddress))
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &wallet); err != nil {
		return nil, err
	}
	return &wallet, nil
}

// CreateTransaction submits a transaction batch on a wallet.
func (c *Crossmint) CreateTransaction(ctx context.Context, walletAddress string, req *types.TransactionRequest) (*types.Transaction, error) {
	var tx types.Transaction
	path := fmt.Sprintf("%s/%s/transactions", walletsPath, url.PathEscape(walletAddress))
	if err := c.do(ctx, http.MethodPost, path, req, nil, &tx); err != nil {
		return nil, err
	}
	return &tx, nil
}

// GetTransaction fetches a wallet transaction record.
func (c *Crossmint) GetTransaction(ctx context.Context, walletAddress, transactionID, chain string) (*types.Transaction, error) {
	var tx types.Transaction
	path := fmt.Sprintf("%s/%s/transactions/%s",
		walletsPath, url.PathEscape(walletAddress), url.PathEscape(transactionID))
	headers := map[string]string{"X-Chain": chain}
	if err := c.do(ctx, http.MethodGet, path, nil, headers, &tx); err != nil {
		return nil, err
	}
	return &tx, nil
}

func (c *Crossmint) do(ctx context.Context, method, path string, body interface{}, headers map[string]string, out interface{}) error {
	raw, err := c.doRaw(ctx, method, path, body, headers)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &types.CheckoutError{
			Code:    types.ErrRemoteCallFailed,
			Message: fmt.Sprintf("malformed response from %s: %v", path, err),
		}
	}
	return nil
}

func (c *Crossmint) doRaw(ctx context.Context, method, path string, body interface{}, headers map[string]string) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, &types.CheckoutError{
				Code:    types.ErrRemoteCallFailed,
				Message: fmt.Sprintf("encode request for %s: %v", path, err),
			}
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, &types.CheckoutError{
			Code:    types.ErrRemoteCallFailed,
			Message: fmt.Sprintf("build request for %s: %v", path, err),
		}
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-KEY", c.apiKey)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	c.log.Debug("crossmint request", map[string]any{"method": method, "path": path})

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &types.CheckoutError{
			Code:    types.ErrRemoteCallFailed,
			Message: fmt.Sprintf("request to %s failed: %v", path, err),
		}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &types.CheckoutError{
			Code:    types.ErrRemoteCallFailed,
			Message: fmt.Sprintf("read response from %s: %v", path, err),
		}
	}

	c.log.Debug("crossmint response", map[string]any{"path": path, "status": resp.StatusCode})

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &types.CheckoutError{
			Code:    types.ErrRemoteCallFailed,
			Message: fmt.Sprintf("HTTP %d: %s", resp.StatusCode, types.UnwrapRemoteMessage(string(raw))),
		}
	}
	return raw, nil
}
