// Package coordinator drives the order-and-payment lifecycle: resolve the
// payment configuration, obtain a quote, reconcile it against the payer's
// live balance, submit the order, and interpret the settlement outcome.
package coordinator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/vitwit/checkout/clients"
	"github.com/vitwit/checkout/logger"
	"github.com/vitwit/checkout/metrics"
	"github.com/vitwit/checkout/types"
	"github.com/vitwit/checkout/wallet"
)

// Outcome classifies the terminal result of a create-order flow.
type Outcome string

const (
	// OutcomeCreated means the order was accepted and is awaiting settlement.
	OutcomeCreated Outcome = "created"
	// OutcomeInsufficientFunds is a valid terminal business outcome, not an
	// error: the payer cannot cover the quoted total.
	OutcomeInsufficientFunds Outcome = "insufficient-funds"
)

// OrderResult reports the terminal state of a create-order flow. When
// SerializedTransaction is non-empty the caller must submit it through
// the wallet service before the order can settle; the coordinator never
// signs or submits that transaction itself.
type OrderResult struct {
	Outcome               Outcome
	OrderID               string
	Price                 string
	Currency              string
	SerializedTransaction string
	Message               string
}

// Service is the checkout order coordinator. It is stateless: every
// record it touches lives in the remote system of record, and its only
// state-changing operation is the order submission itself.
type Service struct {
	client       *clients.Crossmint
	wallets      *wallet.Service
	payerAddress string
	recipient    types.Recipient
	log          logger.Logger
	metrics      metrics.Recorder
}

// NewService creates an order coordinator for a fixed payer wallet and
// recipient. The recipient bag is owned by configuration and passed
// through opaquely; the remote service enforces its required fields.
func NewService(client *clients.Crossmint, wallets *wallet.Service, payerAddress string, recipient types.Recipient, log logger.Logger, rec metrics.Recorder) *Service {
	if log == nil {
		log = logger.NoopLogger{}
	}
	if rec == nil {
		rec = metrics.NoopRecorder{}
	}
	return &Service{
		client:       client,
		wallets:      wallets,
		payerAddress: payerAddress,
		recipient:    recipient,
		log:          log,
		metrics:      rec,
	}
}

// ProductLocator builds the line-item locator for an Amazon listing.
func ProductLocator(asin string) string {
	return fmt.Sprintf("amazon:%s", asin)
}

// Quote requests an advisory price quote for a set of product locators
// under a resolved payment configuration. The returned total is only an
// early optimization: the order submission response carries the
// authoritative figures.
func (s *Service) Quote(ctx context.Context, productLocators []string, cfg types.PaymentConfig, payerAddress string) (*types.Quote, error) {
	items := make([]types.LineItem, 0, len(productLocators))
	for _, locator := range productLocators {
		items = append(items, types.LineItem{ProductLocator: locator})
	}

	resp, err := s.client.SubmitOrder(ctx, &types.OrderRequest{
		Payment: types.PaymentDetails{
			Method:       cfg.Chain.String(),
			Currency:     cfg.Token.String(),
			PayerAddress: payerAddress,
		},
		LineItems: items,
	})
	if err != nil {
		return nil, err
	}

	total, err := decimal.NewFromString(resp.TotalAmount)
	if err != nil {
		return nil, &types.CheckoutError{
			Code:    types.ErrRemoteCallFailed,
			Message: fmt.Sprintf("quote returned unparseable total '%s'", resp.TotalAmount),
		}
	}
	return &types.Quote{TotalAmount: total, Currency: resp.Currency}, nil
}

// CreateOrder runs the purchase state machine for a single listing:
//
//	Init → ConfigResolved → Quoted → BalanceChecked → Submitted →
//	{InsufficientFunds, AwaitingSettlement}
//
// Any remote failure terminates the flow with an error naming the step;
// the submission is never retried, since a duplicate submission could
// double-purchase.
func (s *Service) CreateOrder(ctx context.Context, asin, token, chain string) (*OrderResult, error) {
	start := time.Now()
	correlationID := uuid.NewString()

	cfg, err := types.ResolvePaymentConfig(token, chain)
	if err != nil {
		return nil, err
	}

	flow := map[string]any{
		"correlationId": correlationID,
		"asin":          asin,
		"token":         cfg.Token.String(),
		"chain":         cfg.Chain.String(),
		"payer":         s.payerAddress,
	}
	s.log.Info("order flow started", flow)
	defer func() {
		s.metrics.ObserveLatency("create_order", time.Since(start), map[string]string{"chain": cfg.Chain.String()})
	}()

	locator := ProductLocator(asin)
	quote, err := s.Quote(ctx, []string{locator}, cfg, s.payerAddress)
	if err != nil {
		return nil, fmt.Errorf("get quote: %w", err)
	}
	s.log.Info("quote received", map[string]any{
		"correlationId": correlationID,
		"totalAmount":   quote.TotalAmount.String(),
		"currency":      quote.Currency,
	})

	balance, err := s.payerBalance(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("check balance: %w", err)
	}
	s.log.Info("balance checked", map[string]any{
		"correlationId":  correlationID,
		"balance":        balance.String(),
		"requiredAmount": quote.TotalAmount.String(),
		"difference":     balance.Sub(quote.TotalAmount).StringFixed(2),
	})

	// Early, non-binding optimization: skip the submission when the payer
	// clearly cannot cover the quoted total. The authoritative decision
	// still belongs to the submission response below.
	if balance.LessThan(quote.TotalAmount) {
		s.metrics.IncCounter("insufficient_funds", map[string]string{"chain": cfg.Chain.String()})
		return &OrderResult{
			Outcome:  OutcomeInsufficientFunds,
			Price:    quote.TotalAmount.String(),
			Currency: quote.Currency,
			Message: fmt.Sprintf(
				"Insufficient balance: The total amount including fees is %s %s.\n"+
					"Your current balance is %s %s on %s (short by %s).\n\n"+
					"Would you like to try again with a different payment method?",
				quote.TotalAmount.String(), quote.Currency,
				balance.String(), cfg.Token.String(), cfg.Chain.String(),
				quote.TotalAmount.Sub(balance).StringFixed(2)),
		}, nil
	}

	resp, err := s.client.SubmitOrder(ctx, &types.OrderRequest{
		Recipient: &s.recipient,
		Payment: types.PaymentDetails{
			Method:       cfg.Chain.String(),
			Currency:     cfg.Token.String(),
			PayerAddress: s.payerAddress,
		},
		LineItems: []types.LineItem{{ProductLocator: locator}},
	})
	if err != nil {
		return nil, fmt.Errorf("submit order: %w", err)
	}

	// The submission response is ground truth: a balance read and the
	// authoritative quote can diverge, so the response decides.
	if resp.Payment != nil && resp.Payment.Status == types.PaymentStatusInsufficientFunds {
		s.metrics.IncCounter("insufficient_funds", map[string]string{"chain": cfg.Chain.String()})
		total, currency := responseQuote(resp)
		s.log.Info("order rejected for insufficient funds", map[string]any{
			"correlationId": correlationID,
			"totalAmount":   total,
			"currency":      currency,
		})
		return &OrderResult{
			Outcome:  OutcomeInsufficientFunds,
			Price:    total,
			Currency: currency,
			Message: fmt.Sprintf(
				"Insufficient funds: The total amount including fees is %s %s.\n"+
					"Please choose a different payment method or top up your wallet.",
				total, currency),
		}, nil
	}

	result := &OrderResult{Outcome: OutcomeCreated}
	if resp.Order != nil {
		result.OrderID = resp.Order.OrderID
		if resp.Order.Payment != nil && resp.Order.Payment.Preparation != nil {
			result.SerializedTransaction = resp.Order.Payment.Preparation.SerializedTransaction
		}
	}
	result.Price, result.Currency = responseQuote(resp)

	s.metrics.IncCounter("order_created", map[string]string{"chain": cfg.Chain.String()})
	s.log.Info("order created", map[string]any{
		"correlationId":  correlationID,
		"orderId":        result.OrderID,
		"price":          result.Price,
		"currency":       result.Currency,
		"hasTransaction": result.SerializedTransaction != "",
	})
	return result, nil
}

// payerBalance reads the payer's balance for the resolved configuration.
// A missing balance record counts as zero rather than a failure: the
// submission response still gets the final say.
func (s *Service) payerBalance(ctx context.Context, cfg types.PaymentConfig) (decimal.Decimal, error) {
	balance, err := s.wallets.Balance(ctx, s.payerAddress, cfg.Token, cfg.Chain)
	if err != nil {
		var cerr *types.CheckoutError
		if errors.As(err, &cerr) && cerr.Code == types.ErrBalanceNotFound {
			return decimal.Zero, nil
		}
		return decimal.Zero, err
	}
	return balance, nil
}

func responseQuote(resp *types.OrderResponse) (total, currency string) {
	if resp.Quote != nil {
		return resp.Quote.TotalPrice, resp.Quote.Currency
	}
	return resp.TotalAmount, resp.Currency
}
