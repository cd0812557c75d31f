package types

import (
	"fmt"
	"strings"
)

// Token represents a currency accepted for checkout payments.
type Token string

const (
	TokenUSDC   Token = "usdc"
	TokenCredit Token = "credit"
)

// Chain represents supported blockchain networks.
type Chain string

const (
	ChainEthereumSepolia Chain = "ethereum-sepolia" // testnet
	ChainBaseSepolia     Chain = "base-sepolia"     // testnet
)

// SupportedChains maps each chain to the tokens it can settle.
var SupportedChains = map[Chain][]Token{
	ChainEthereumSepolia: {TokenUSDC, TokenCredit},
	ChainBaseSepolia:     {TokenUSDC, TokenCredit},
}

// SupportedTokens is the global set of payment methods, independent of chain.
var SupportedTokens = []Token{TokenCredit, TokenUSDC}

// PaymentConfig is a validated (token, chain) pair. Immutable once resolved.
type PaymentConfig struct {
	Token Token `json:"token"`
	Chain Chain `json:"chain"`
}

// ResolvePaymentConfig validates and normalizes a requested token/chain pair
// against the support matrix. Matching is case-insensitive; no whitespace is
// trimmed. Validation order: payment method, then chain, then token-on-chain.
func ResolvePaymentConfig(token, chain string) (PaymentConfig, error) {
	userToken := Token(strings.ToLower(token))
	userChain := Chain(strings.ToLower(chain))

	if !userToken.Supported() {
		return PaymentConfig{}, &CheckoutError{
			Code:    ErrUnsupportedPaymentMethod,
			Message: fmt.Sprintf("unsupported payment method: %s", userToken),
		}
	}

	supported, ok := SupportedChains[userChain]
	if !ok {
		return PaymentConfig{}, &CheckoutError{
			Code:    ErrUnsupportedChain,
			Message: fmt.Sprintf("unsupported chain: %s", userChain),
		}
	}

	found := false
	for _, t := range supported {
		if t == userToken {
			found = true
			break
		}
	}
	if !found {
		return PaymentConfig{}, &CheckoutError{
			Code:    ErrUnsupportedTokenOnChain,
			Message: fmt.Sprintf("token '%s' is not supported on chain '%s'", userToken, userChain),
		}
	}

	return PaymentConfig{Token: userToken, Chain: userChain}, nil
}

// Supported reports whether the token is an accepted payment method on any chain.
func (t Token) Supported() bool {
	for _, s := range SupportedTokens {
		if s == t {
			return true
		}
	}
	return false
}

// IsCredit reports whether the token is the platform credit token.
// Credit matching is keyword-driven rather than a generic string compare:
// balance records for credits may carry provider-specific symbols, so any
// token naming containing the credit keyword is treated as credit.
func (t Token) IsCredit() bool {
	return strings.Contains(strings.ToLower(string(t)), string(TokenCredit))
}

// SupportsToken reports whether the chain settles the given token.
func (c Chain) SupportsToken(t Token) bool {
	for _, s := range SupportedChains[c] {
		if s == t {
			return true
		}
	}
	return false
}

func (t Token) String() string { return string(t) }

func (c Chain) String() string { return string(c) }
