package cli

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idilsaglam/catbus/internal/config"
	"github.com/idilsaglam/catbus/internal/registry"
	"github.com/idilsaglam/catbus/internal/tui"
	"github.com/idilsaglam/catbus/internal/ui"
	"github.com/idilsaglam/catbus/internal/wallet"
	"github.com/idilsaglam/catbus/internal/wallet/wallettest"
)

func testOptions(t *testing.T) (Options, *wallettest.MockConnector, *bytes.Buffer) {
	t.Helper()
	ui.SetColorMode("never")
	t.Cleanup(func() { ui.SetColorMode("auto") })

	mock := &wallettest.MockConnector{Addrs: wallettest.Addresses(), Receipt: wallet.Receipt{FundTransactionID: "beef"}}
	out := &bytes.Buffer{}
	return Options{
		Config:    *config.DefaultConfig(),
		Registry:  registry.NewDefault(),
		Session:   wallet.NewSession("Mainnet"),
		Connector: mock,
		Out:       out,
	}, mock, out
}

func TestRunUsage(t *testing.T) {
	opt, _, out := testOptions(t)
	ctx := context.Background()

	assert.Equal(t, 2, Run(ctx, nil, opt))
	assert.Contains(t, out.String(), "Subcommands:")
	assert.Equal(t, 0, Run(ctx, []string{"help"}, opt))
	assert.Equal(t, 2, Run(ctx, []string{"frobnicate"}, opt))
}

func TestList(t *testing.T) {
	opt, _, out := testOptions(t)

	require.Equal(t, 0, Run(context.Background(), []string{"ls"}, opt))
	s := out.String()
	assert.Contains(t, s, "Proposals")
	assert.Contains(t, s, "Catbus Graffiti")
	assert.Contains(t, s, "Memeconomics Charts")
	assert.Contains(t, s, "⬆ 24")
	assert.Contains(t, s, "• A colourful set of ordinals")
	assert.NotContains(t, s, "wallet:")
}

func TestMintConnectsAndSubmits(t *testing.T) {
	opt, mock, out := testOptions(t)

	require.Equal(t, 0, Run(context.Background(), []string{"mint", "NAP", "-repeats", "2"}, opt))
	assert.Contains(t, out.String(), "✔ Order submitted! Reference: beef")
	assert.Equal(t, 1, mock.Connects())

	orders := mock.Orders()
	require.Len(t, orders, 1)
	require.NotNil(t, orders[0].Mint)
	assert.Equal(t, "NAP", orders[0].Mint.RuneName)
	assert.Equal(t, 2, orders[0].Mint.Repeats)
	assert.Equal(t, wallettest.OrdinalsAddress, orders[0].Mint.DestinationAddress)

	// the session is reused for the next order
	require.Equal(t, 0, Run(context.Background(), []string{"mint", "-fee-rate", "5", "NAP"}, opt))
	assert.Equal(t, 1, mock.Connects())
	assert.Equal(t, 5, mock.Orders()[1].Mint.FeeRate)
}

func TestEtchFlags(t *testing.T) {
	opt, mock, _ := testOptions(t)

	args := []string{"etch", "CATBUS•NAP", "-symbol", "N", "-premine", "1000", "-mintable", "-amount", "100", "-cap", "21000"}
	require.Equal(t, 0, Run(context.Background(), args, opt))

	orders := mock.Orders()
	require.Len(t, orders, 1)
	p := orders[0].Etch
	require.NotNil(t, p)
	assert.Equal(t, "CATBUS•NAP", p.RuneName)
	assert.Equal(t, "N", p.Symbol)
	assert.Equal(t, "1000", p.Premine)
	assert.True(t, p.IsMintable)
	require.NotNil(t, p.Terms)
	assert.Equal(t, "21000", p.Terms.Cap)
}

func TestOrderUsageErrors(t *testing.T) {
	opt, mock, _ := testOptions(t)
	ctx := context.Background()

	assert.Equal(t, 2, Run(ctx, []string{"mint"}, opt))
	assert.Equal(t, 2, Run(ctx, []string{"mint", "NAP", "extra"}, opt))
	assert.Equal(t, 2, Run(ctx, []string{"mint", "NAP", "-bogus"}, opt))
	assert.Equal(t, 2, Run(ctx, []string{"mint", "NAP", "-repeats", "many"}, opt))
	assert.Equal(t, 2, Run(ctx, []string{"etch", "NAP", "-divisibility", "-1"}, opt))

	assert.Zero(t, mock.Connects(), "invalid forms never reach the wallet")
	assert.Empty(t, mock.Orders())
}

func TestMintRejected(t *testing.T) {
	opt, mock, _ := testOptions(t)
	mock.ConnectErr = &wallet.ConnectError{Code: wallet.CodeUserRejected, Message: "User rejected"}

	assert.Equal(t, 1, Run(context.Background(), []string{"mint", "NAP"}, opt))
	assert.Empty(t, mock.Orders())
}

func TestConnect(t *testing.T) {
	opt, _, out := testOptions(t)

	require.Equal(t, 0, Run(context.Background(), []string{"connect"}, opt))
	assert.Contains(t, out.String(), "✔ connected")
	assert.Contains(t, out.String(), wallettest.PaymentAddress)

	out.Reset()
	require.Equal(t, 0, Run(context.Background(), []string{"ls"}, opt))
	assert.Contains(t, out.String(), "wallet: "+wallettest.OrdinalsAddress)
}

func TestUIHandsOverCollaborators(t *testing.T) {
	opt, _, _ := testOptions(t)
	opt.Config.Wallet.Timeout = 30 * time.Second

	var got tui.Options
	opt.RunUI = func(o tui.Options) error {
		got = o
		return nil
	}
	require.Equal(t, 0, Run(context.Background(), []string{"ui"}, opt))
	assert.Same(t, opt.Registry, got.Registry)
	assert.Same(t, opt.Session, got.Session)
	assert.Equal(t, 30*time.Second, got.ConnectTimeout)

	opt.RunUI = func(tui.Options) error { return errors.New("no tty") }
	assert.Equal(t, 1, Run(context.Background(), []string{"ui"}, opt))
}
