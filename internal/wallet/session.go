package wallet

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// Environment overrides for the connected addresses.
const (
	EnvOrdinalsAddress = "CATBUS_ORDINALS_ADDRESS"
	EnvPaymentAddress  = "CATBUS_PAYMENT_ADDRESS"
)

// Session sources.
const (
	SourceEnv     = "env"
	SourceConnect = "connect"
)

// SessionInfo is a read-only view of the session.
type SessionInfo struct {
	Addresses   Addresses `json:"addresses"`
	Network     string    `json:"network"`
	Source      string    `json:"source"`      // "env" | "connect"
	ConnectedAt time.Time `json:"connectedAt"` // when the addresses were set
}

// Session remembers the connected wallet addresses for the life of the
// process. It is never written to disk.
type Session struct {
	mu      sync.RWMutex
	network string
	info    *SessionInfo
	now     func() time.Time
}

// NewSession returns an empty session for network.
func NewSession(network string) *Session {
	return &Session{network: network, now: time.Now}
}

// NewSessionFromEnv returns a session preset from CATBUS_ORDINALS_ADDRESS and
// CATBUS_PAYMENT_ADDRESS when both are set, and an empty one when neither is.
func NewSessionFromEnv(network string, getenv func(string) string) (*Session, error) {
	s := NewSession(network)
	ord := strings.TrimSpace(getenv(EnvOrdinalsAddress))
	pay := strings.TrimSpace(getenv(EnvPaymentAddress))
	switch {
	case ord == "" && pay == "":
		return s, nil
	case ord == "" || pay == "":
		return nil, fmt.Errorf("set both %s and %s", EnvOrdinalsAddress, EnvPaymentAddress)
	}
	addrs := Addresses{
		Ordinals: Address{Address: ord, Purpose: PurposeOrdinals},
		Payment:  Address{Address: pay, Purpose: PurposePayment},
	}
	if err := s.Set(addrs, SourceEnv); err != nil {
		return nil, err
	}
	return s, nil
}

// Network is the network addresses are validated against.
func (s *Session) Network() string { return s.network }

// Set validates and stores addrs.
func (s *Session) Set(addrs Addresses, source string) error {
	if err := ValidateAddress(addrs.Ordinals.Address, s.network); err != nil {
		return fmt.Errorf("ordinals address: %w", err)
	}
	if err := ValidateAddress(addrs.Payment.Address, s.network); err != nil {
		return fmt.Errorf("payment address: %w", err)
	}
	s.mu.Lock()
	s.info = &SessionInfo{
		Addresses:   addrs,
		Network:     s.network,
		Source:      source,
		ConnectedAt: s.now(),
	}
	s.mu.Unlock()
	return nil
}

// Addresses returns the connected addresses, if any.
func (s *Session) Addresses() (Addresses, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.info == nil {
		return Addresses{}, false
	}
	return s.info.Addresses, true
}

// Info returns a copy of the session state, if connected.
func (s *Session) Info() (SessionInfo, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.info == nil {
		return SessionInfo{}, false
	}
	return *s.info, true
}

// Clear forgets the connected addresses.
func (s *Session) Clear() {
	s.mu.Lock()
	s.info = nil
	s.mu.Unlock()
}

// Connect runs c.Connect and stores the result.
func (s *Session) Connect(ctx context.Context, c Connector) (Addresses, error) {
	addrs, err := c.Connect(ctx)
	if err != nil {
		return Addresses{}, err
	}
	if err := s.Set(addrs, SourceConnect); err != nil {
		return Addresses{}, &ConnectError{Message: "wallet returned an unusable address", Err: err}
	}
	return addrs, nil
}

// EnsureConnected returns the session's addresses, connecting first when there are none.
func (s *Session) EnsureConnected(ctx context.Context, c Connector) (Addresses, error) {
	if addrs, ok := s.Addresses(); ok {
		return addrs, nil
	}
	return s.Connect(ctx, c)
}

// Submit builds an order from form with the connected addresses and sends it.
func (s *Session) Submit(ctx context.Context, c Connector, form OrderForm) (Receipt, error) {
	addrs, ok := s.Addresses()
	if !ok {
		return Receipt{}, ErrNotConnected
	}
	order, err := BuildOrder(form, addrs, s.network)
	if err != nil {
		return Receipt{}, err
	}
	return c.SubmitOrder(ctx, order)
}
