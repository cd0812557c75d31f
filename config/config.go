// Package config loads and validates the environment-derived runtime
// configuration. Components receive an explicit Config at construction
// instead of reading ambient process state.
package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/vitwit/checkout/types"
)

var validate = validator.New()

// Config aggregates runtime configuration for the checkout services.
type Config struct {
	// CrossmintAPIBase is the order/wallet API origin.
	CrossmintAPIBase string `validate:"required,url"`
	// CrossmintAPIKey authenticates order, balance, and wallet calls.
	// Startup must fail fast when it is absent.
	CrossmintAPIKey string `validate:"required"`
	// SearchAPIBase is the product search API origin. Empty selects the
	// hosted search API.
	SearchAPIBase string `validate:"omitempty,url"`
	// SearchAPIKey authenticates the product search API. Optional: the
	// search tool reports its own error when unset.
	SearchAPIKey string
	// AgentWalletAddress is the payer wallet. Startup must fail fast when
	// it is absent.
	AgentWalletAddress string `validate:"required"`

	// Recipient delivery details, passed through opaquely to the order
	// service, which enforces its own required fields.
	RecipientEmail      string `validate:"omitempty,email"`
	RecipientName       string
	RecipientLine1      string
	RecipientLine2      string
	RecipientCity       string
	RecipientState      string
	RecipientPostalCode string
	RecipientCountry    string

	// DefaultToken and DefaultChain apply when a create-order call omits
	// an explicit payment configuration.
	DefaultToken string
	DefaultChain string

	LogLevel string
}

// Load reads configuration from environment variables and validates it.
// Missing credentials are a fatal configuration error.
func Load() (Config, error) {
	cfg := Config{
		CrossmintAPIBase:    getEnv("CROSSMINT_API_BASE", "https://staging.crossmint.com"),
		CrossmintAPIKey:     os.Getenv("CROSSMINT_API_KEY"),
		SearchAPIBase:       os.Getenv("SEARCH_API_BASE"),
		SearchAPIKey:        os.Getenv("SEARCH_API_KEY"),
		AgentWalletAddress:  os.Getenv("AGENT_WALLET_ADDRESS"),
		RecipientEmail:      os.Getenv("RECIPIENT_EMAIL"),
		RecipientName:       os.Getenv("RECIPIENT_NAME"),
		RecipientLine1:      os.Getenv("RECIPIENT_ADDRESS_LINE1"),
		RecipientLine2:      os.Getenv("RECIPIENT_ADDRESS_LINE2"),
		RecipientCity:       os.Getenv("RECIPIENT_CITY"),
		RecipientState:      os.Getenv("RECIPIENT_STATE"),
		RecipientPostalCode: os.Getenv("RECIPIENT_POSTAL_CODE"),
		RecipientCountry:    os.Getenv("RECIPIENT_COUNTRY"),
		DefaultToken:        getEnv("DEFAULT_PAYMENT_TOKEN", string(types.TokenUSDC)),
		DefaultChain:        getEnv("DEFAULT_PAYMENT_CHAIN", string(types.ChainBaseSepolia)),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
	}

	if err := validate.Struct(cfg); err != nil {
		return Config{}, &types.CheckoutError{
			Code:    types.ErrConfigError,
			Message: fmt.Sprintf("invalid configuration: %v", err),
		}
	}
	return cfg, nil
}

// Recipient assembles the delivery details bag for order submissions.
func (c Config) Recipient() types.Recipient {
	return types.Recipient{
		Email: c.RecipientEmail,
		PhysicalAddress: types.PhysicalAddress{
			Name:       c.RecipientName,
			Line1:      c.RecipientLine1,
			Line2:      c.RecipientLine2,
			City:       c.RecipientCity,
			State:      c.RecipientState,
			PostalCode: c.RecipientPostalCode,
			Country:    c.RecipientCountry,
		},
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}
