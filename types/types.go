package types

import (
	"github.com/shopspring/decimal"
)

// OrderPhase represents the coarse lifecycle stage of a remote order.
type OrderPhase string

const (
	PhaseAwaitingPayment OrderPhase = "awaiting-payment"
	PhaseCompleted       OrderPhase = "completed"
	PhaseFailed          OrderPhase = "failed"
)

// Terminal reports whether no further polling can change the phase.
func (p OrderPhase) Terminal() bool {
	return p == PhaseCompleted || p == PhaseFailed
}

// PaymentStatusInsufficientFunds is the settlement-leg sentinel the remote
// order service uses when the payer wallet cannot cover the quoted total.
// It is a valid terminal business outcome, not an error.
const PaymentStatusInsufficientFunds = "crypto-payer-insufficient-funds"

// TransactionStatus represents the settlement state of an on-chain
// transaction submitted through the wallet service.
type TransactionStatus string

const (
	TxCompleted  TransactionStatus = "completed"
	TxInProgress TransactionStatus = "in_progress"
	TxExpired    TransactionStatus = "expired"
	TxFailed     TransactionStatus = "failed"
	TxRefund     TransactionStatus = "refund"
)

// Quote is the priced total for a set of line items. Advisory until an
// order is actually submitted; the submission response carries the
// authoritative figures.
type Quote struct {
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Currency    string          `json:"currency"`
}

// LineItem identifies a product by locator reference (e.g. "amazon:<asin>").
type LineItem struct {
	ProductLocator string `json:"productLocator"`
}

// PaymentDetails is the payment leg of an order request. The remote
// contract names the chain "method" and the token "currency".
type PaymentDetails struct {
	Method       string `json:"method"`
	Currency     string `json:"currency"`
	PayerAddress string `json:"payerAddress"`
}

// PhysicalAddress is the shipping destination passed through to the order
// service. All fields except Line2 must be present or the remote rejects
// the request.
type PhysicalAddress struct {
	Name       string `json:"name"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

// Recipient carries delivery details for physical goods.
type Recipient struct {
	Email           string          `json:"email"`
	PhysicalAddress PhysicalAddress `json:"physicalAddress"`
}

// OrderRequest is the order/quote submission payload. A request without a
// recipient acts as a quote pre-check; with a recipient it creates an order.
type OrderRequest struct {
	Recipient *Recipient     `json:"recipient,omitempty"`
	Payment   PaymentDetails `json:"payment"`
	LineItems []LineItem     `json:"lineItems"`
}

// OrderQuote is the quote block of an order submission response.
// TotalPrice is set on order creation, TotalAmount on quote pre-checks.
type OrderQuote struct {
	TotalPrice string `json:"totalPrice,omitempty"`
	Currency   string `json:"currency,omitempty"`
}

// OrderPayment is the payment leg of a remote order record.
type OrderPayment struct {
	Status      string            `json:"status,omitempty"`
	Preparation *OrderPreparation `json:"preparation,omitempty"`
}

// OrderPreparation carries the client-side transaction the payer must
// submit before the order can settle.
type OrderPreparation struct {
	SerializedTransaction string `json:"serializedTransaction,omitempty"`
}

// Order is a remote order record. Created by submission, mutated only by
// the remote service, polled read-only afterwards.
type Order struct {
	OrderID string        `json:"orderId,omitempty"`
	Phase   OrderPhase    `json:"phase,omitempty"`
	Payment *OrderPayment `json:"payment,omitempty"`
}

// OrderResponse is the order-submission response envelope. Quote pre-checks
// answer with the top-level TotalAmount/Currency pair; real submissions
// answer with the nested Order and Quote blocks.
type OrderResponse struct {
	Order   *Order        `json:"order,omitempty"`
	Quote   *OrderQuote   `json:"quote,omitempty"`
	Payment *OrderPayment `json:"payment,omitempty"`

	TotalAmount string `json:"totalAmount,omitempty"`
	Currency    string `json:"currency,omitempty"`
}

// BalanceRecord is one per-token entry of the wallet balance endpoint.
// Balances maps chain name to a raw integer amount in minor units; the
// displayed amount is raw / 10^Decimals. Decimals of 0 means the upstream
// omitted it and callers apply the default of 2.
type BalanceRecord struct {
	Token    string            `json:"token"`
	Decimals int               `json:"decimals"`
	Balances map[string]string `json:"balances"`
}

// Transaction is a remote wallet transaction record.
type Transaction struct {
	ID     string            `json:"id"`
	Status TransactionStatus `json:"status"`
}

// TransactionCall references one serialized transaction in a batch.
type TransactionCall struct {
	Transaction string `json:"transaction"`
}

// TransactionParams is the delegated-submission payload: a single-call
// batch referencing the admin signer by locator.
type TransactionParams struct {
	Calls  []TransactionCall `json:"calls"`
	Chain  string            `json:"chain"`
	Signer string            `json:"signer"`
}

// TransactionRequest wraps TransactionParams for the wallet transactions
// endpoint.
type TransactionRequest struct {
	Params TransactionParams `json:"params"`
}

// WalletConfig is the signer configuration block of a wallet record.
type WalletConfig struct {
	AdminSigner *AdminSigner `json:"adminSigner,omitempty"`
}

// AdminSigner identifies the delegated signer authorized to execute
// transactions on a wallet. Fetched per submission, never cached: the
// locator may rotate.
type AdminSigner struct {
	Locator string `json:"locator"`
}

// Wallet is a remote wallet record.
type Wallet struct {
	Config *WalletConfig `json:"config,omitempty"`
}

// Product is one normalized search result listing.
type Product struct {
	Title   string  `json:"title"`
	Price   float64 `json:"price"`
	ASIN    string  `json:"asin"`
	Rating  float64 `json:"rating,omitempty"`
	Reviews int     `json:"reviews,omitempty"`
	URL     string  `json:"url"`
}
