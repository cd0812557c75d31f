package types

import "encoding/json"

// CheckoutError is a typed error carrying a machine-readable code and an
// optional data payload for logging.
type CheckoutError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func (e *CheckoutError) Error() string {
	return e.Message
}

// Common error codes
const (
	ErrUnsupportedPaymentMethod = "unsupported_payment_method"
	ErrUnsupportedChain         = "unsupported_chain"
	ErrUnsupportedTokenOnChain  = "unsupported_token_on_chain"
	ErrBalanceNotFound          = "balance_not_found"
	ErrSignerNotFound           = "signer_not_found"
	ErrSubmissionFailed         = "submission_failed"
	ErrRemoteCallFailed         = "remote_call_failed"
	ErrInvalidAddress           = "invalid_address"
	ErrInvalidTransaction       = "invalid_transaction"
	ErrConfigError              = "config_error"
)

// remoteErrorEnvelope is the JSON error body shape most remote
// collaborators answer with.
type remoteErrorEnvelope struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// UnwrapRemoteMessage extracts a human-readable message from a raw remote
// error body. Best effort: when the body is a JSON envelope its message
// (or error) field wins, otherwise the raw text is returned unchanged.
func UnwrapRemoteMessage(raw string) string {
	var env remoteErrorEnvelope
	if err := json.Unmarshal([]byte(raw), &env); err == nil {
		if env.Message != "" {
			return env.Message
		}
		if env.Error != "" {
			return env.Error
		}
	}
	return raw
}
