// Package mcpserver exposes the checkout operations as MCP tools. Every
// handler converts failures into textual results: a failed purchase
// attempt must never fault out of the tool boundary.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	checkout "github.com/vitwit/checkout"
	"github.com/vitwit/checkout/logger"
)

const (
	serverName    = "crossmint-checkout"
	serverVersion = checkout.Version
)

// Server wraps an MCP server around a Checkout instance.
type Server struct {
	mcp      *server.MCPServer
	checkout *checkout.Checkout
	log      logger.Logger
}

// New creates the MCP server and registers the checkout tool set.
func New(c *checkout.Checkout, log logger.Logger) *Server {
	if log == nil {
		log = logger.NoopLogger{}
	}
	s := &Server{
		mcp:      server.NewMCPServer(serverName, serverVersion),
		checkout: c,
		log:      log,
	}
	s.registerTools()
	return s
}

// ServeStdio runs the server over the stdio transport, blocking until the
// stream closes.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

func (s *Server) registerTools() {
	s.mcp.AddTool(mcp.NewTool(
		"search",
		mcp.WithDescription("Search for products on Amazon"),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query for Amazon products")),
	), s.handleSearch)

	s.mcp.AddTool(mcp.NewTool(
		"create-order",
		mcp.WithDescription("Create an order for an Amazon product"),
		mcp.WithString("asin", mcp.Required(), mcp.Description("Amazon ASIN of the product to order")),
		mcp.WithString("token", mcp.Description("Token to use for payment (usdc or credit); defaults to the configured payment method")),
		mcp.WithString("chain", mcp.Description("Chain to use for payment (ethereum-sepolia or base-sepolia); defaults to the configured chain")),
	), s.handleCreateOrder)

	s.mcp.AddTool(mcp.NewTool(
		"send-transaction",
		mcp.WithDescription("Send a transaction to complete the order"),
		mcp.WithString("serializedTransaction", mcp.Required(), mcp.Description("Serialized transaction data from create-order")),
		mcp.WithString("token", mcp.Required(), mcp.Description("Token to use for payment (usdc or credit)")),
		mcp.WithString("chain", mcp.Required(), mcp.Description("Chain to use for payment (ethereum-sepolia or base-sepolia)")),
	), s.handleSendTransaction)

	s.mcp.AddTool(mcp.NewTool(
		"check-order-status",
		mcp.WithDescription("Check the current status of an order"),
		mcp.WithString("orderId", mcp.Required(), mcp.Description("Order ID to check status for")),
		mcp.WithString("chain", mcp.Required(), mcp.Description("Chain the order was created on")),
	), s.handleCheckOrderStatus)

	s.mcp.AddTool(mcp.NewTool(
		"poll-order-status",
		mcp.WithDescription("Poll an order until it is completed, failed, or times out (max ~100 seconds). Only use this during the purchase flow."),
		mcp.WithString("orderId", mcp.Required(), mcp.Description("Order ID to poll for status")),
		mcp.WithString("chain", mcp.Required(), mcp.Description("Chain the order was created on")),
	), s.handlePollOrderStatus)

	s.mcp.AddTool(mcp.NewTool(
		"check-transaction-status",
		mcp.WithDescription("Check the status of a settlement transaction sent with send-transaction"),
		mcp.WithString("transactionId", mcp.Required(), mcp.Description("Transaction ID to check status for")),
		mcp.WithString("chain", mcp.Required(), mcp.Description("Chain the transaction was sent on")),
	), s.handleCheckTransactionStatus)

	s.mcp.AddTool(mcp.NewTool(
		"get-token-balance",
		mcp.WithDescription("Get the balance for a specific token (usdc or credit) on all supported chains"),
		mcp.WithString("walletAddress", mcp.Description("Wallet address to check balance for (defaults to agent wallet)")),
		mcp.WithString("token", mcp.Required(), mcp.Description("Token to check balance for (must be one of: usdc, credit)")),
	), s.handleGetTokenBalance)
}

func (s *Server) handleSearch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	query, _ := args["query"].(string)

	products, total, err := s.checkout.SearchProducts(ctx, query)
	if err != nil {
		return textResult(fmt.Sprintf("Failed to search Amazon: %s", err.Error())), nil
	}
	// A fully filtered result set still renders as an empty list; the
	// no-results message is reserved for an empty raw response.
	if total == 0 {
		return textResult("No results found."), nil
	}

	formatted, err := json.MarshalIndent(products, "", "  ")
	if err != nil {
		return textResult(fmt.Sprintf("Failed to search Amazon: %s", err.Error())), nil
	}
	return textResult(string(formatted)), nil
}

func (s *Server) handleCreateOrder(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	asin, _ := args["asin"].(string)
	token, _ := args["token"].(string)
	chain, _ := args["chain"].(string)

	result, err := s.checkout.CreateOrder(ctx, asin, token, chain)
	if err != nil {
		return textResult(fmt.Sprintf("Failed to create order: %s", err.Error())), nil
	}
	if result.Message != "" {
		return textResult(result.Message), nil
	}

	details, _ := json.MarshalIndent(map[string]string{
		"orderId":               result.OrderID,
		"price":                 result.Price,
		"currency":              result.Currency,
		"serializedTransaction": result.SerializedTransaction,
	}, "", "  ")
	return textResult(fmt.Sprintf("Order created! Order ID: %s, Price: %s %s\nDetails: %s",
		result.OrderID, result.Price, result.Currency, details)), nil
}

func (s *Server) handleSendTransaction(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	serializedTransaction, _ := args["serializedTransaction"].(string)
	token, _ := args["token"].(string)
	chain, _ := args["chain"].(string)

	tx, err := s.checkout.SendTransaction(ctx, serializedTransaction, token, chain)
	if err != nil {
		return textResult(fmt.Sprintf("Transaction failed. The purchase process cannot continue. Error: %s", err.Error())), nil
	}
	return textResult(fmt.Sprintf("Transaction sent! Transaction ID: %s, Status: %s", tx.ID, tx.Status)), nil
}

func (s *Server) handleCheckOrderStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	orderID, _ := args["orderId"].(string)
	chain, _ := args["chain"].(string)

	status, err := s.checkout.CheckOrderStatus(ctx, orderID, chain)
	if err != nil {
		return textResult(fmt.Sprintf("Failed to check order status: %s", err.Error())), nil
	}
	return textResult(fmt.Sprintf("Status for order %s: %s", orderID, status)), nil
}

func (s *Server) handlePollOrderStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	orderID, _ := args["orderId"].(string)
	chain, _ := args["chain"].(string)

	result, err := s.checkout.PollOrderStatus(ctx, orderID, chain)
	if err != nil {
		return textResult(fmt.Sprintf("Failed to poll order: %s", err.Error())), nil
	}
	return textResult(fmt.Sprintf("Polling result for order %s: %s", orderID, result)), nil
}

func (s *Server) handleCheckTransactionStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	transactionID, _ := args["transactionId"].(string)
	chain, _ := args["chain"].(string)

	status, err := s.checkout.CheckTransactionStatus(ctx, transactionID, chain)
	if err != nil {
		return textResult(fmt.Sprintf("Failed to check transaction status: %s", err.Error())), nil
	}
	return textResult(fmt.Sprintf("Status for transaction %s: %s", transactionID, status)), nil
}

func (s *Server) handleGetTokenBalance(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	walletAddress, _ := args["walletAddress"].(string)
	token, _ := args["token"].(string)

	balances, err := s.checkout.TokenBalances(ctx, walletAddress, token)
	if err != nil {
		return textResult(fmt.Sprintf("Failed to get balance: %s", err.Error())), nil
	}

	if walletAddress == "" {
		walletAddress = s.checkout.WalletAddress()
	}
	upper := strings.ToUpper(token)
	lines := make([]string, 0, len(balances))
	for _, b := range balances {
		lines = append(lines, fmt.Sprintf("%s balance on %s: %s", upper, b.Chain, b.Balance))
	}
	return textResult(fmt.Sprintf("%s balances for %s:\n%s", upper, walletAddress, strings.Join(lines, "\n"))), nil
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.NewTextContent(text)},
	}
}
