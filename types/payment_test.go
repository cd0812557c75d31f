package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolvePaymentConfig_SupportMatrix(t *testing.T) {
	for chain, tokens := range SupportedChains {
		for _, token := range tokens {
			cfg, err := ResolvePaymentConfig(token.String(), chain.String())
			require.NoError(t, err)
			assert.Equal(t, token, cfg.Token)
			assert.Equal(t, chain, cfg.Chain)
		}
	}
}

func TestResolvePaymentConfig_CaseInsensitive(t *testing.T) {
	upper, err := ResolvePaymentConfig("USDC", "Base-Sepolia")
	require.NoError(t, err)
	lower, err := ResolvePaymentConfig("usdc", "base-sepolia")
	require.NoError(t, err)
	assert.Equal(t, lower, upper)
}

func TestResolvePaymentConfig_UnsupportedToken(t *testing.T) {
	_, err := ResolvePaymentConfig("doge", "base-sepolia")
	require.Error(t, err)

	cerr, ok := err.(*CheckoutError)
	require.True(t, ok)
	assert.Equal(t, ErrUnsupportedPaymentMethod, cerr.Code)
}

func TestResolvePaymentConfig_UnsupportedChain(t *testing.T) {
	_, err := ResolvePaymentConfig("usdc", "base")
	require.Error(t, err)

	cerr, ok := err.(*CheckoutError)
	require.True(t, ok)
	assert.Equal(t, ErrUnsupportedChain, cerr.Code)
}

func TestResolvePaymentConfig_TokenCheckedBeforeChain(t *testing.T) {
	// An invalid token reports method-unsupported even when the chain is
	// also invalid.
	_, err := ResolvePaymentConfig("doge", "no-such-chain")
	require.Error(t, err)

	cerr, ok := err.(*CheckoutError)
	require.True(t, ok)
	assert.Equal(t, ErrUnsupportedPaymentMethod, cerr.Code)
}

func TestResolvePaymentConfig_NoWhitespaceTrimming(t *testing.T) {
	_, err := ResolvePaymentConfig(" usdc", "base-sepolia")
	require.Error(t, err)
}

func TestTokenIsCredit(t *testing.T) {
	assert.True(t, TokenCredit.IsCredit())
	assert.True(t, Token("CREDIT").IsCredit())
	assert.True(t, Token("agent-credit").IsCredit())
	assert.False(t, TokenUSDC.IsCredit())
}

func TestChainSupportsToken(t *testing.T) {
	assert.True(t, ChainBaseSepolia.SupportsToken(TokenUSDC))
	assert.False(t, Chain("base").SupportsToken(TokenUSDC))
}
