// Package checkout turns a product identifier into a completed,
// on-chain-settled purchase: it resolves a payment configuration, quotes
// the total, reconciles it against a live wallet balance, submits the
// order, and observes settlement on the remote system of record.
package checkout

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/vitwit/checkout/clients"
	"github.com/vitwit/checkout/config"
	"github.com/vitwit/checkout/coordinator"
	"github.com/vitwit/checkout/logger"
	"github.com/vitwit/checkout/metrics"
	"github.com/vitwit/checkout/polling"
	"github.com/vitwit/checkout/search"
	"github.com/vitwit/checkout/types"
	"github.com/vitwit/checkout/wallet"
)

// Checkout is the main struct wiring all checkout services together.
type Checkout struct {
	cfg config.Config

	log             logger.Logger
	metrics         metrics.Recorder
	httpClient      *http.Client
	timeout         time.Duration
	pollInterval    time.Duration
	maxPollAttempts int

	wallets *wallet.Service
	orders  *coordinator.Service
	poller  *polling.Poller
	search  *search.Service
}

// New creates a Checkout instance from a validated configuration.
func New(cfg config.Config, opts ...Option) *Checkout {
	c := &Checkout{
		cfg:             cfg,
		log:             logger.NoopLogger{},
		metrics:         metrics.NoopRecorder{},
		timeout:         30 * time.Second,
		pollInterval:    polling.DefaultInterval,
		maxPollAttempts: polling.DefaultMaxAttempts,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: c.timeout}
	}

	crossmint := clients.NewCrossmint(cfg.CrossmintAPIBase, cfg.CrossmintAPIKey, c.httpClient, c.log)
	searchAPI := clients.NewSearchAPI(cfg.SearchAPIBase, cfg.SearchAPIKey, c.httpClient, c.log)

	c.wallets = wallet.NewService(crossmint, c.log, c.metrics)
	c.orders = coordinator.NewService(crossmint, c.wallets, cfg.AgentWalletAddress, cfg.Recipient(), c.log, c.metrics)
	c.poller = polling.NewPoller(crossmint, c.pollInterval, c.maxPollAttempts, c.log, c.metrics)
	c.search = search.NewService(searchAPI, c.log)
	return c
}

// WalletAddress returns the configured payer wallet.
func (c *Checkout) WalletAddress() string {
	return c.cfg.AgentWalletAddress
}

// SearchProducts queries orderable product listings. The second return
// is the raw listing count before the orderability filter.
func (c *Checkout) SearchProducts(ctx context.Context, query string) ([]types.Product, int, error) {
	return c.search.Search(ctx, query)
}

// CreateOrder runs the purchase flow for a listing. Empty token or chain
// fall back to the configured default payment method.
func (c *Checkout) CreateOrder(ctx context.Context, asin, token, chain string) (*coordinator.OrderResult, error) {
	if token == "" {
		token = c.cfg.DefaultToken
	}
	if chain == "" {
		chain = c.cfg.DefaultChain
	}
	return c.orders.CreateOrder(ctx, asin, token, chain)
}

// SendTransaction submits a prepared serialized transaction from a
// create-order handoff through the payer wallet's delegated signer.
func (c *Checkout) SendTransaction(ctx context.Context, serializedTransaction, token, chain string) (*types.Transaction, error) {
	cfg, err := types.ResolvePaymentConfig(token, chain)
	if err != nil {
		return nil, err
	}
	return c.wallets.SubmitTransaction(ctx, c.cfg.AgentWalletAddress, serializedTransaction, cfg.Chain)
}

// CheckOrderStatus samples an order once and describes its state.
func (c *Checkout) CheckOrderStatus(ctx context.Context, orderID, chain string) (string, error) {
	_, sentence, err := c.poller.CheckOrder(ctx, orderID, chain)
	return sentence, err
}

// PollOrderStatus blocks until the order reaches a terminal state or the
// poll budget is exhausted.
func (c *Checkout) PollOrderStatus(ctx context.Context, orderID, chain string) (string, error) {
	return c.poller.PollOrder(ctx, orderID, chain)
}

// CheckTransactionStatus samples a settlement transaction once.
func (c *Checkout) CheckTransactionStatus(ctx context.Context, transactionID, chain string) (string, error) {
	return c.poller.CheckTransaction(ctx, c.cfg.AgentWalletAddress, transactionID, chain)
}

// TokenBalances lists formatted per-chain balances for a token. An empty
// wallet address selects the configured payer wallet.
func (c *Checkout) TokenBalances(ctx context.Context, walletAddress, token string) ([]wallet.ChainBalance, error) {
	userToken := types.Token(strings.ToLower(token))
	if !userToken.Supported() {
		return nil, &types.CheckoutError{
			Code:    types.ErrUnsupportedPaymentMethod,
			Message: fmt.Sprintf("unsupported token: %s", token),
		}
	}
	if walletAddress == "" {
		walletAddress = c.cfg.AgentWalletAddress
	}
	return c.wallets.Balances(ctx, walletAddress, userToken)
}

// Balance returns the numeric balance of a token on one chain for the
// configured payer wallet.
func (c *Checkout) Balance(ctx context.Context, token, chain string) (decimal.Decimal, error) {
	cfg, err := types.ResolvePaymentConfig(token, chain)
	if err != nil {
		return decimal.Zero, err
	}
	return c.wallets.Balance(ctx, c.cfg.AgentWalletAddress, cfg.Token, cfg.Chain)
}

// Version information
const Version = "1.0.0"
