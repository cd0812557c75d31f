// Package polling samples eventually-consistent remote order and
// transaction records until a terminal condition or a retry budget is
// exhausted.
package polling

import (
	"context"
	"fmt"
	"time"

	"github.com/vitwit/checkout/clients"
	"github.com/vitwit/checkout/logger"
	"github.com/vitwit/checkout/metrics"
	"github.com/vitwit/checkout/types"
)

const (
	// DefaultMaxAttempts is the purchase-flow retry budget (~100s ceiling
	// at the default interval).
	DefaultMaxAttempts = 50
	// ExtendedMaxAttempts is the budget for non-purchase observation flows.
	ExtendedMaxAttempts = 90
	// DefaultInterval is the fixed delay between samples.
	DefaultInterval = 2 * time.Second

	// TimeoutSentence is returned when the budget is exhausted without a
	// terminal state. A timeout is an outcome, not an error.
	TimeoutSentence = "Timed out waiting for order completion."
)

// Human-readable status sentences. Terminal detection never depends on
// this text: classification is by phase and payment-status codes.
const (
	sentenceInsufficientFunds = "Insufficient funds: Please add credits to your wallet and try again."
	sentenceCompleted         = "Order completed! Your item(s) are on the way."
	sentenceFailed            = "Order failed. All items could not be delivered. Refunds are automatic."
	sentenceAwaitingPayment   = "Order is awaiting payment. Please complete payment to proceed."
)

// Poller drives cooperative status polling. The loop blocks the calling
// request between samples; there is no background scheduler.
type Poller struct {
	client      *clients.Crossmint
	interval    time.Duration
	maxAttempts int
	log         logger.Logger
	metrics     metrics.Recorder
}

// NewPoller creates a poller. A non-positive maxAttempts selects the
// extended observation budget; the purchase flow passes
// DefaultMaxAttempts explicitly.
func NewPoller(client *clients.Crossmint, interval time.Duration, maxAttempts int, log logger.Logger, rec metrics.Recorder) *Poller {
	if maxAttempts <= 0 {
		maxAttempts = ExtendedMaxAttempts
	}
	if interval < 0 {
		interval = DefaultInterval
	}
	if log == nil {
		log = logger.NoopLogger{}
	}
	if rec == nil {
		rec = metrics.NoopRecorder{}
	}
	return &Poller{
		client:      client,
		interval:    interval,
		maxAttempts: maxAttempts,
		log:         log,
		metrics:     rec,
	}
}

// CheckOrder fetches an order once and classifies it. The returned
// sentence describes the state for a human; terminal reports whether
// further polling could change the outcome. An insufficient-funds payment
// status is near-terminal: reported immediately rather than polled
// further.
func (p *Poller) CheckOrder(ctx context.Context, orderID, chain string) (terminal bool, sentence string, err error) {
	order, err := p.client.GetOrder(ctx, orderID, chain)
	if err != nil {
		return false, "", err
	}

	if order.Payment != nil && order.Payment.Status == types.PaymentStatusInsufficientFunds {
		return true, sentenceInsufficientFunds, nil
	}

	switch order.Phase {
	case types.PhaseCompleted:
		return true, sentenceCompleted, nil
	case types.PhaseFailed:
		return true, sentenceFailed, nil
	case types.PhaseAwaitingPayment:
		return false, sentenceAwaitingPayment, nil
	default:
		return false, fmt.Sprintf("Order is in phase: %s", order.Phase), nil
	}
}

// PollOrder samples the order until a terminal state or the attempt
// budget runs out, sleeping the configured interval between samples.
// A failed sample is non-terminal: a just-created order can read as
// missing until the remote catches up, so the failure consumes an
// attempt and the loop retries. An error surfaces only on context
// cancellation or when no sample succeeded at all. Exhausting the
// budget returns TimeoutSentence with a nil error.
func (p *Poller) PollOrder(ctx context.Context, orderID, chain string) (string, error) {
	var lastErr error
	sampled := false
	for attempt := 0; attempt < p.maxAttempts; attempt++ {
		terminal, sentence, err := p.CheckOrder(ctx, orderID, chain)
		switch {
		case err != nil:
			if ctx.Err() != nil {
				return "", err
			}
			lastErr = err
			p.log.Warn("poll sample failed", map[string]any{
				"orderId": orderID,
				"attempt": attempt + 1,
				"error":   err.Error(),
			})
		case terminal:
			p.metrics.IncCounter("poll_terminal", map[string]string{"chain": chain})
			p.log.Info("poll reached terminal state", map[string]any{
				"orderId": orderID,
				"attempt": attempt + 1,
			})
			return sentence, nil
		default:
			sampled = true
		}
		if err := p.wait(ctx); err != nil {
			return "", err
		}
	}

	if !sampled && lastErr != nil {
		return "", lastErr
	}
	p.metrics.IncCounter("poll_timeout", map[string]string{"chain": chain})
	return TimeoutSentence, nil
}

// CheckTransaction fetches a wallet transaction once and maps its status
// code to a fixed sentence, passing unrecognized codes through verbatim.
func (p *Poller) CheckTransaction(ctx context.Context, walletLocator, transactionID, chain string) (string, error) {
	tx, err := p.client.GetTransaction(ctx, walletLocator, transactionID, chain)
	if err != nil {
		return "", err
	}

	switch tx.Status {
	case types.TxCompleted:
		return "Transaction completed!", nil
	case types.TxInProgress:
		return "Transaction is still in progress.", nil
	case types.TxExpired:
		return "Transaction expired.", nil
	case types.TxFailed:
		return "Transaction failed.", nil
	case types.TxRefund:
		return "Transaction refunded.", nil
	default:
		return fmt.Sprintf("Transaction status: %s", tx.Status), nil
	}
}

func (p *Poller) wait(ctx context.Context) error {
	if p.interval <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(p.interval)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
