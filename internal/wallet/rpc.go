package wallet

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/idilsaglam/catbus/internal/config"
)

// maxResponseSize bounds a wallet bridge response.
const maxResponseSize = 1 << 20

// Wallet bridge JSON-RPC methods.
const (
	MethodConnect   = "wallet_connect"
	MethodRunesMint = "runes_mint"
	MethodRunesEtch = "runes_etch"
)

// RPCConnector talks JSON-RPC 2.0 over HTTP to a wallet bridge, the local
// process that relays requests to the user's browser wallet.
type RPCConnector struct {
	endpoint   string
	network    string
	message    string
	timeout    time.Duration
	httpClient *http.Client
	logger     *zap.Logger
	newID      func() string
}

var _ Connector = (*RPCConnector)(nil)

// RPCOption configures an RPCConnector.
type RPCOption func(*RPCConnector)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) RPCOption {
	return func(r *RPCConnector) {
		r.httpClient = c
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) RPCOption {
	return func(r *RPCConnector) {
		r.logger = logger
	}
}

// NewRPCConnector creates a connector for the bridge configured in cfg.
func NewRPCConnector(cfg config.WalletConfig, opts ...RPCOption) *RPCConnector {
	r := &RPCConnector{
		endpoint:   cfg.Endpoint,
		network:    cfg.Network,
		message:    cfg.Message,
		timeout:    cfg.Timeout,
		httpClient: &http.Client{},
		logger:     zap.NewNop(),
		newID:      func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      string `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      string          `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *rpcError       `json:"error"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

type connectParams struct {
	Addresses []string `json:"addresses"`
	Message   string   `json:"message"`
	Network   string   `json:"network"`
}

type connectResult struct {
	Addresses []Address `json:"addresses"`
}

// Connect implements Connector.
func (r *RPCConnector) Connect(ctx context.Context) (Addresses, error) {
	var res connectResult
	err := r.call(ctx, MethodConnect, connectParams{
		Addresses: []string{PurposeOrdinals, PurposePayment},
		Message:   r.message,
		Network:   r.network,
	}, &res)
	if err != nil {
		if re, ok := err.(*rpcError); ok {
			return Addresses{}, &ConnectError{Code: re.Code, Message: re.Message}
		}
		return Addresses{}, &ConnectError{Err: err}
	}

	var out Addresses
	for _, a := range res.Addresses {
		switch a.Purpose {
		case PurposeOrdinals:
			out.Ordinals = a
		case PurposePayment:
			out.Payment = a
		}
	}
	if out.Ordinals.Address == "" {
		return Addresses{}, &ConnectError{Message: "wallet returned no ordinals address"}
	}
	if out.Payment.Address == "" {
		return Addresses{}, &ConnectError{Message: "wallet returned no payment address"}
	}
	r.logger.Info("wallet connected",
		zap.String("ordinals", out.Ordinals.Address),
		zap.String("payment", out.Payment.Address))
	return out, nil
}

// SubmitOrder implements Connector.
func (r *RPCConnector) SubmitOrder(ctx context.Context, order Order) (Receipt, error) {
	var (
		method string
		params any
	)
	switch {
	case order.Kind == Mint && order.Mint != nil:
		method, params = MethodRunesMint, order.Mint
	case order.Kind == Etch && order.Etch != nil:
		method, params = MethodRunesEtch, order.Etch
	default:
		return Receipt{}, &OrderError{Kind: order.Kind, Message: "order has no parameters for its kind"}
	}

	var rec Receipt
	if err := r.call(ctx, method, params, &rec); err != nil {
		if re, ok := err.(*rpcError); ok {
			return Receipt{}, &OrderError{Kind: order.Kind, Code: re.Code, Message: re.Message}
		}
		return Receipt{}, &OrderError{Kind: order.Kind, Err: err}
	}
	rec.Kind = order.Kind
	r.logger.Info("order accepted",
		zap.String("kind", string(order.Kind)),
		zap.String("reference", rec.Reference()))
	return rec, nil
}

// call performs one JSON-RPC exchange. RPC error objects come back as *rpcError.
func (r *RPCConnector) call(ctx context.Context, method string, params, result any) error {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	id := r.newID()
	body, err := json.Marshal(rpcRequest{JSONRPC: "2.0", ID: id, Method: method, Params: params})
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	r.logger.Debug("wallet request", zap.String("method", method), zap.String("id", id))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("wallet bridge returned HTTP %d", resp.StatusCode)
	}

	var rr rpcResponse
	if err := json.Unmarshal(respBody, &rr); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if rr.ID != id {
		return fmt.Errorf("response id %q does not match request id %q", rr.ID, id)
	}
	if rr.Error != nil {
		r.logger.Debug("wallet error", zap.String("method", method), zap.Int("code", rr.Error.Code), zap.String("message", rr.Error.Message))
		return rr.Error
	}
	if len(rr.Result) == 0 || string(rr.Result) == "null" {
		return fmt.Errorf("%s: empty result", method)
	}
	if err := json.Unmarshal(rr.Result, result); err != nil {
		return fmt.Errorf("decode %s result: %w", method, err)
	}
	return nil
}
