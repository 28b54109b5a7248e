// Package wallettest provides a mock wallet.Connector for tests.
package wallettest

import (
	"context"
	"sync"

	"github.com/idilsaglam/catbus/internal/wallet"
)

// Valid mainnet addresses for fixtures.
const (
	OrdinalsAddress = "bc1p5d7rjq7g6rdk2yhzks9smlaqtedr4dekq08ge8ztwac72sfr9rusxg3297"
	PaymentAddress  = "bc1qw508d6qejxtdg4y5r3zarvary0c5xw7kv8f3t4"
)

// Addresses returns fixture addresses valid on Mainnet.
func Addresses() wallet.Addresses {
	return wallet.Addresses{
		Ordinals: wallet.Address{Address: OrdinalsAddress, Purpose: wallet.PurposeOrdinals, AddressType: "p2tr"},
		Payment:  wallet.Address{Address: PaymentAddress, Purpose: wallet.PurposePayment, AddressType: "p2wpkh"},
	}
}

// MockConnector is a thread-safe wallet.Connector.
//
// Usage:
//
//	mock := &MockConnector{Addrs: wallettest.Addresses()}
//	mock := &MockConnector{ConnectErr: &wallet.ConnectError{Code: wallet.CodeUserRejected}}
//
// Block, when non-nil, makes Connect wait until it is closed or ctx is done.
type MockConnector struct {
	mu         sync.Mutex
	Addrs      wallet.Addresses
	ConnectErr error
	Receipt    wallet.Receipt
	OrderErr   error
	Block      chan struct{}

	connects int
	orders   []wallet.Order
}

var _ wallet.Connector = (*MockConnector)(nil)

// Connect implements wallet.Connector.
func (m *MockConnector) Connect(ctx context.Context) (wallet.Addresses, error) {
	m.mu.Lock()
	m.connects++
	block := m.Block
	m.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return wallet.Addresses{}, &wallet.ConnectError{Err: ctx.Err()}
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ConnectErr != nil {
		return wallet.Addresses{}, m.ConnectErr
	}
	return m.Addrs, nil
}

// SubmitOrder implements wallet.Connector.
func (m *MockConnector) SubmitOrder(_ context.Context, order wallet.Order) (wallet.Receipt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders = append(m.orders, order)
	if m.OrderErr != nil {
		return wallet.Receipt{}, m.OrderErr
	}
	rec := m.Receipt
	rec.Kind = order.Kind
	return rec, nil
}

// Connects returns how many times Connect was called.
func (m *MockConnector) Connects() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connects
}

// Orders returns the orders submitted so far.
func (m *MockConnector) Orders() []wallet.Order {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]wallet.Order, len(m.orders))
	copy(out, m.orders)
	return out
}
