package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idilsaglam/catbus/internal/registry"
	"github.com/idilsaglam/catbus/internal/wallet"
	"github.com/idilsaglam/catbus/internal/wallet/wallettest"
)

func newTestModel(t *testing.T, mock *wallettest.MockConnector) (Model, *registry.Registry, *wallet.Session) {
	t.Helper()
	reg := registry.NewDefault()
	session := wallet.NewSession("Mainnet")
	m := New(Options{Registry: reg, Connector: mock, Session: session})
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return next.(Model), reg, session
}

func send(t *testing.T, m Model, msgs ...tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, msg := range msgs {
		var next tea.Model
		next, cmd = m.Update(msg)
		m = next.(Model)
	}
	return m, cmd
}

func keyRunes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

var (
	keySpace = tea.KeyMsg{Type: tea.KeySpace}
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyEsc   = tea.KeyMsg{Type: tea.KeyEsc}
)

func TestUpvoteSelected(t *testing.T) {
	m, reg, _ := newTestModel(t, nil)

	m, _ = send(t, m, keySpace, keyRunes("+"))
	p, err := reg.Get(1)
	require.NoError(t, err)
	assert.Equal(t, 14, p.Votes)
	assert.Contains(t, m.View(), "14 votes")
	assert.False(t, m.failure)
}

func TestAddProposalTwoSteps(t *testing.T) {
	m, reg, _ := newTestModel(t, nil)

	m, _ = send(t, m, keyRunes("a"))
	require.True(t, m.adding)

	m, _ = send(t, m, keyRunes("Rune Stickers"), keyEnter)
	assert.Equal(t, 1, m.addStep)
	assert.Equal(t, "Rune Stickers", m.draftName)
	assert.Equal(t, 3, reg.Len())

	m, _ = send(t, m, keyRunes("Sticker packs for every rune"), keyEnter)
	assert.False(t, m.adding)
	assert.Equal(t, "Your proposal has been submitted for voting!", m.status)
	require.Equal(t, 4, reg.Len())

	p, err := reg.Get(4)
	require.NoError(t, err)
	assert.Equal(t, "Rune Stickers", p.Name)
	assert.Equal(t, 0, p.Votes)

	it, ok := m.list.SelectedItem().(proposalItem)
	require.True(t, ok)
	assert.Equal(t, 4, it.ID)
}

func TestAddProposalRejectsBlankInput(t *testing.T) {
	m, reg, _ := newTestModel(t, nil)

	m, _ = send(t, m, keyRunes("a"), keyRunes("   "), keyEnter)
	assert.True(t, m.adding)
	assert.Equal(t, 0, m.addStep)
	assert.NotEmpty(t, m.addErr)

	m, _ = send(t, m, keyRunes("Name"), keyEnter, keyEnter)
	assert.True(t, m.adding)
	assert.Equal(t, "Please provide a name and description.", m.addErr)
	assert.Equal(t, 3, reg.Len())
}

func TestAddProposalCancel(t *testing.T) {
	m, reg, _ := newTestModel(t, nil)

	m, _ = send(t, m, keyRunes("a"), keyRunes("q"), keyEsc)
	assert.False(t, m.adding)
	assert.Equal(t, 3, reg.Len())

	// q typed while adding must not have quit; now it does
	_, cmd := send(t, m, keyRunes("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
}

func TestConnectWallet(t *testing.T) {
	mock := &wallettest.MockConnector{Addrs: wallettest.Addresses()}
	m, _, session := newTestModel(t, mock)

	m, cmd := send(t, m, keyRunes("c"))
	require.NotNil(t, cmd)
	assert.True(t, m.connecting)

	m, _ = send(t, m, cmd())
	assert.False(t, m.connecting)
	assert.False(t, m.failure)
	assert.Contains(t, m.status, wallettest.OrdinalsAddress)

	addrs, ok := session.Addresses()
	require.True(t, ok)
	assert.Equal(t, wallettest.PaymentAddress, addrs.Payment.Address)
	assert.Equal(t, 1, mock.Connects())
}

func TestConnectWalletRejected(t *testing.T) {
	mock := &wallettest.MockConnector{ConnectErr: &wallet.ConnectError{Code: wallet.CodeUserRejected, Message: "User rejected"}}
	m, _, session := newTestModel(t, mock)

	m, cmd := send(t, m, keyRunes("c"))
	m, _ = send(t, m, cmd())
	assert.True(t, m.failure)
	assert.Equal(t, "Connection rejected or failed. Please try again.", m.status)

	_, ok := session.Addresses()
	assert.False(t, ok)
}

func TestConnectWalletCancel(t *testing.T) {
	mock := &wallettest.MockConnector{Addrs: wallettest.Addresses(), Block: make(chan struct{})}
	m, _, session := newTestModel(t, mock)

	m, cmd := send(t, m, keyRunes("c"))
	m, _ = send(t, m, keyEsc)
	m, _ = send(t, m, cmd())
	assert.Equal(t, "Connection cancelled.", m.status)

	_, ok := session.Addresses()
	assert.False(t, ok)
}

func TestRegistryChangeRefreshesList(t *testing.T) {
	m, reg, _ := newTestModel(t, nil)

	_, err := reg.Submit("Outside", "submitted over HTTP")
	require.NoError(t, err)
	assert.Len(t, m.list.Items(), 3)

	m, _ = send(t, m, registryChangedMsg{})
	assert.Len(t, m.list.Items(), 4)
}
