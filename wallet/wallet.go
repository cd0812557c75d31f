// Package wallet reads normalized token balances and submits prepared
// transactions through a wallet's delegated signer.
package wallet

import (
	"context"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/shopspring/decimal"
	"github.com/vitwit/checkout/clients"
	"github.com/vitwit/checkout/logger"
	"github.com/vitwit/checkout/metrics"
	"github.com/vitwit/checkout/types"
)

// DefaultDecimals applies when a balance record omits its decimal
// precision. Policy choice, not an upstream guarantee: precision is
// heterogeneous per token and callers must tolerate it.
const DefaultDecimals = 2

// ChainBalance is one formatted per-chain balance line.
type ChainBalance struct {
	Chain   types.Chain
	Balance string
}

// Service resolves wallet balances and executes delegated transaction
// submission.
type Service struct {
	client  *clients.Crossmint
	log     logger.Logger
	metrics metrics.Recorder
}

// NewService creates a wallet service.
func NewService(client *clients.Crossmint, log logger.Logger, rec metrics.Recorder) *Service {
	if log == nil {
		log = logger.NoopLogger{}
	}
	if rec == nil {
		rec = metrics.NoopRecorder{}
	}
	return &Service{client: client, log: log, metrics: rec}
}

// Balance returns the displayed balance of a token on one chain:
// raw minor units scaled down by the record's decimal precision.
// Missing records, missing chain entries, and malformed payloads are all
// reported as balance_not_found, never as a fault.
func (s *Service) Balance(ctx context.Context, walletAddress string, token types.Token, chain types.Chain) (decimal.Decimal, error) {
	records, err := s.client.GetBalances(ctx, walletAddress, token.String())
	if err != nil {
		return decimal.Zero, err
	}

	record, ok := findRecord(records, token)
	if !ok {
		return decimal.Zero, notFound(token)
	}

	raw, ok := record.Balances[chain.String()]
	if !ok {
		return decimal.Zero, notFound(token)
	}

	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, notFound(token)
	}
	return amount.Shift(int32(-recordDecimals(record))), nil
}

// Balances returns formatted balance lines for every supported chain that
// both settles the token and has an entry in the wallet's record.
func (s *Service) Balances(ctx context.Context, walletAddress string, token types.Token) ([]ChainBalance, error) {
	records, err := s.client.GetBalances(ctx, walletAddress, token.String())
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, notFound(token)
	}

	record, ok := findRecord(records, token)
	if !ok || record.Balances == nil {
		return nil, notFound(token)
	}

	decimals := recordDecimals(record)
	var out []ChainBalance
	for chain := range types.SupportedChains {
		if !chain.SupportsToken(token) {
			continue
		}
		raw, ok := record.Balances[chain.String()]
		if !ok {
			continue
		}
		amount, err := decimal.NewFromString(raw)
		if err != nil {
			continue
		}
		out = append(out, ChainBalance{
			Chain:   chain,
			Balance: FormatBalance(amount.Shift(int32(-decimals)), decimals),
		})
	}

	if len(out) == 0 {
		return nil, notFound(token)
	}
	return out, nil
}

// SubmitTransaction resolves the wallet's delegated signer and submits a
// prepared serialized transaction as a single-call batch. The wallet may
// be identified by hex address or provider locator. The signer is looked
// up per call because its locator may rotate. No retries: without
// idempotency keys a resubmission risks double execution.
func (s *Service) SubmitTransaction(ctx context.Context, walletAddress, serializedTransaction string, chain types.Chain) (*types.Transaction, error) {
	if !isWalletLocator(walletAddress) {
		return nil, &types.CheckoutError{
			Code:    types.ErrInvalidAddress,
			Message: fmt.Sprintf("invalid wallet address: %s", walletAddress),
		}
	}
	if _, err := hexutil.Decode(serializedTransaction); err != nil {
		return nil, &types.CheckoutError{
			Code:    types.ErrInvalidTransaction,
			Message: fmt.Sprintf("invalid serialized transaction: %v", err),
		}
	}

	w, err := s.client.GetWallet(ctx, walletAddress)
	if err != nil {
		return nil, err
	}
	if w.Config == nil || w.Config.AdminSigner == nil || w.Config.AdminSigner.Locator == "" {
		return nil, &types.CheckoutError{
			Code:    types.ErrSignerNotFound,
			Message: "admin signer not found",
		}
	}

	req := &types.TransactionRequest{
		Params: types.TransactionParams{
			Calls:  []types.TransactionCall{{Transaction: serializedTransaction}},
			Chain:  chain.String(),
			Signer: w.Config.AdminSigner.Locator,
		},
	}
	tx, err := s.client.CreateTransaction(ctx, walletAddress, req)
	if err != nil {
		return nil, err
	}
	if tx.ID == "" {
		return nil, &types.CheckoutError{
			Code:    types.ErrSubmissionFailed,
			Message: "failed to send transaction: no transaction ID returned",
		}
	}

	s.metrics.IncCounter("transaction_submitted", map[string]string{"chain": chain.String()})
	s.log.Info("transaction submitted", map[string]any{
		"wallet": walletAddress,
		"txId":   tx.ID,
		"status": tx.Status,
		"chain":  chain.String(),
	})
	return tx, nil
}

// isWalletLocator reports whether the identifier addresses a wallet:
// either a 0x hex address or a provider locator such as
// "email:shopper@example.com:evm-smart-wallet".
func isWalletLocator(id string) bool {
	return common.IsHexAddress(id) || strings.Contains(id, ":")
}

// findRecord locates the balance record for a token. The credit token
// matches via its keyword predicate; everything else by case-insensitive
// equality. The asymmetry is deliberate: credit records may carry
// provider-specific symbols that a plain compare would miss.
func findRecord(records []types.BalanceRecord, token types.Token) (*types.BalanceRecord, bool) {
	for i := range records {
		recorded := types.Token(records[i].Token)
		if token.IsCredit() {
			if recorded.IsCredit() {
				return &records[i], true
			}
			continue
		}
		if strings.EqualFold(records[i].Token, token.String()) {
			return &records[i], true
		}
	}
	return nil, false
}

func recordDecimals(record *types.BalanceRecord) int {
	if record.Decimals <= 0 {
		return DefaultDecimals
	}
	return record.Decimals
}

// FormatBalance renders a display amount with up to decimals fractional
// digits, never fewer than two.
func FormatBalance(amount decimal.Decimal, decimals int) string {
	if decimals < DefaultDecimals {
		decimals = DefaultDecimals
	}
	fixed := amount.StringFixed(int32(decimals))

	// Trim trailing zeros beyond the two-digit minimum.
	if idx := strings.IndexByte(fixed, '.'); idx >= 0 {
		min := idx + 1 + DefaultDecimals
		end := len(fixed)
		for end > min && fixed[end-1] == '0' {
			end--
		}
		fixed = fixed[:end]
	}
	return fixed
}

func notFound(token types.Token) error {
	return &types.CheckoutError{
		Code:    types.ErrBalanceNotFound,
		Message: fmt.Sprintf("no balance information found for token '%s'", token),
	}
}
