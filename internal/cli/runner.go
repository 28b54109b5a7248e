package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/idilsaglam/catbus/internal/config"
	"github.com/idilsaglam/catbus/internal/httpapi"
	"github.com/idilsaglam/catbus/internal/metrics"
	"github.com/idilsaglam/catbus/internal/model"
	"github.com/idilsaglam/catbus/internal/registry"
	"github.com/idilsaglam/catbus/internal/tui"
	"github.com/idilsaglam/catbus/internal/ui"
	"github.com/idilsaglam/catbus/internal/wallet"
)

// Options carry the wired collaborators from main.
type Options struct {
	Config    config.Config
	Logger    *zap.Logger
	Registry  *registry.Registry
	Session   *wallet.Session
	Connector wallet.Connector
	Metrics   *metrics.Metrics
	Out       io.Writer // defaults to os.Stdout

	// RunUI starts the interactive board; tests swap it out.
	RunUI func(tui.Options) error
}

// Run dispatches subcommands and returns an exit code (0 ok, 1 error, 2 usage).
func Run(ctx context.Context, args []string, opt Options) int {
	if opt.Out == nil {
		opt.Out = os.Stdout
	}
	if opt.Logger == nil {
		opt.Logger = zap.NewNop()
	}
	if opt.RunUI == nil {
		opt.RunUI = tui.Run
	}
	if len(args) == 0 {
		PrintHelp(opt.Out)
		return 2
	}
	cmd, a := args[0], args[1:]

	switch cmd {
	case "help", "-h", "--help":
		PrintHelp(opt.Out)
		return 0

	case "ls":
		return doList(opt)

	case "ui":
		return doUI(opt)

	case "serve":
		return doServe(ctx, a, opt)

	case "connect":
		return doConnect(ctx, opt)

	case "mint":
		return doMint(ctx, a, opt)

	case "etch":
		return doEtch(ctx, a, opt)
	}

	ui.Fail("unknown subcommand: " + cmd)
	fmt.Fprintln(os.Stderr)
	PrintHelp(os.Stderr)
	return 2
}

func PrintHelp(w io.Writer) {
	fmt.Fprintf(w, `catbus - vote on collection proposals and launch runes

Usage:
  catbus [-config file] [-theme name] [-color auto|always|never] <subcommand> [args]

Subcommands:
  ls                         List proposals with their votes
  ui                         Interactive board (upvote, propose, connect)
  serve [-addr host:port]    Serve the HTTP API
  connect                    Connect the wallet and print its addresses
  mint <rune> [flags]        Mint a rune (-repeats N, -fee-rate N)
  etch <rune> [flags]        Etch a rune (-divisibility N, -symbol S, -premine N,
                             -mintable, -amount N, -cap N, -fee-rate N)

Examples:
  catbus ls
  catbus mint UNCOMMON•GOODS -repeats 3
  catbus etch CATBUS•NAP -symbol 🐱 -premine 1000 -mintable -amount 100 -cap 21000
`)
}

// -------------- subcommand impls ----------------

func doList(opt Options) int {
	proposals := opt.Registry.List()

	most := 0
	for _, p := range proposals {
		if p.Votes > most {
			most = p.Votes
		}
	}

	t := ui.Current()
	header := fmt.Sprintf("%s  %s %d  %s %d",
		ui.C(t.Title, "Proposals"),
		ui.C(t.Votes, t.SymVote), opt.Registry.TotalVotes(),
		ui.C(t.Accent, "Total"), len(proposals),
	)

	lines := []string{header, ""}
	lines = append(lines, proposalLines(proposals, most)...)
	lines = append(lines, "")
	if addrs, ok := opt.Session.Addresses(); ok {
		lines = append(lines, ui.C(t.Success, "wallet: "+addrs.Ordinals.Address))
	}
	lines = append(lines, ui.C(t.Muted, "Tip: upvote and propose with `catbus ui`"))
	ui.Panel(opt.Out, lines)
	return 0
}

func proposalLines(proposals []model.Proposal, most int) []string {
	if len(proposals) == 0 {
		return []string{ui.C(ui.Current().Muted, "no proposals")}
	}
	t := ui.Current()
	out := make([]string, 0, 2*len(proposals))
	for _, p := range proposals {
		out = append(out, fmt.Sprintf("%s %s %s %s",
			ui.Dim(fmt.Sprintf("%2d.", p.ID)),
			ui.C(t.Votes, ui.VoteBar(p.Votes, most, 12)),
			ui.C(t.Votes, fmt.Sprintf("%3d", p.Votes)),
			ui.Truncate(p.Name, 40),
		))
		out = append(out, "    "+ui.C(t.Muted, t.SymBullet+" "+ui.Truncate(p.Description, 60)))
	}
	return out
}

func doUI(opt Options) int {
	err := opt.RunUI(tui.Options{
		Registry:       opt.Registry,
		Connector:      opt.Connector,
		Session:        opt.Session,
		Logger:         opt.Logger,
		ConnectTimeout: opt.Config.Wallet.Timeout,
	})
	if err != nil {
		ui.Fail("ui: " + err.Error())
		return 1
	}
	return 0
}

func doServe(ctx context.Context, args []string, opt Options) int {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	addr := fs.String("addr", opt.Config.Server.Addr, "listen address")
	if err := fs.Parse(args); err != nil {
		ui.Fail("serve: " + err.Error())
		return 2
	}

	h := httpapi.NewHandler(opt.Registry, opt.Connector, opt.Session, opt.Metrics, opt.Logger)
	ui.OK(opt.Out, "serving on http://"+*addr)
	if err := httpapi.Serve(ctx, *addr, h); err != nil {
		ui.Fail("serve: " + err.Error())
		return 1
	}
	return 0
}

func doConnect(ctx context.Context, opt Options) int {
	addrs, err := opt.Session.Connect(ctx, opt.Connector)
	if opt.Metrics != nil {
		opt.Metrics.ObserveConnect(err)
	}
	if err != nil {
		return walletFailure("connect", err)
	}
	ui.OK(opt.Out, "connected")
	fmt.Fprintf(opt.Out, "  ordinals: %s\n  payment:  %s\n", addrs.Ordinals.Address, addrs.Payment.Address)
	return 0
}

func doMint(ctx context.Context, args []string, opt Options) int {
	fs := flag.NewFlagSet("mint", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	form := wallet.OrderForm{Action: string(wallet.Mint)}
	fs.StringVar(&form.Repeats, "repeats", "", "number of mints (default 1)")
	fs.StringVar(&form.FeeRate, "fee-rate", "", "fee rate in sat/vB (default 1)")

	name, err := parseWithRune(fs, args)
	if err != nil {
		ui.Fail("mint: " + err.Error())
		ui.Hint("usage: catbus mint <rune> [-repeats N] [-fee-rate N]")
		return 2
	}
	form.RuneName = name
	return submit(ctx, opt, form)
}

func doEtch(ctx context.Context, args []string, opt Options) int {
	fs := flag.NewFlagSet("etch", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	form := wallet.OrderForm{Action: string(wallet.Etch)}
	mintable := fs.Bool("mintable", false, "open the rune to public mints")
	fs.StringVar(&form.Divisibility, "divisibility", "", "decimal places (default 0)")
	fs.StringVar(&form.Symbol, "symbol", "", "currency symbol (default ¤)")
	fs.StringVar(&form.Premine, "premine", "", "amount etched to you (default 0)")
	fs.StringVar(&form.Amount, "amount", "", "amount per mint")
	fs.StringVar(&form.Cap, "cap", "", "maximum number of mints")
	fs.StringVar(&form.FeeRate, "fee-rate", "", "fee rate in sat/vB (default 1)")

	name, err := parseWithRune(fs, args)
	if err != nil {
		ui.Fail("etch: " + err.Error())
		ui.Hint("usage: catbus etch <rune> [-divisibility N] [-symbol S] [-premine N] [-mintable] [-amount N] [-cap N] [-fee-rate N]")
		return 2
	}
	form.RuneName = name
	if *mintable {
		form.IsMintable = "true"
	}
	return submit(ctx, opt, form)
}

// parseWithRune accepts the rune name before or after the flags.
func parseWithRune(fs *flag.FlagSet, args []string) (string, error) {
	var name string
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		name, args = args[0], args[1:]
	}
	if err := fs.Parse(args); err != nil {
		return "", err
	}
	switch {
	case name == "" && fs.NArg() == 1:
		name = fs.Arg(0)
	case fs.NArg() > 0:
		return "", fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}
	if strings.TrimSpace(name) == "" {
		return "", errors.New("missing rune name")
	}
	return name, nil
}

func submit(ctx context.Context, opt Options, form wallet.OrderForm) int {
	kind := wallet.OrderKind(form.Action)

	// Validate before prompting the wallet.
	if err := wallet.CheckForm(form); err != nil {
		return walletFailure(string(kind), err)
	}

	if _, ok := opt.Session.Addresses(); !ok {
		_, err := opt.Session.Connect(ctx, opt.Connector)
		if opt.Metrics != nil {
			opt.Metrics.ObserveConnect(err)
		}
		if err != nil {
			return walletFailure("connect", err)
		}
	}

	rec, err := opt.Session.Submit(ctx, opt.Connector, form)
	if opt.Metrics != nil {
		opt.Metrics.ObserveOrder(kind, err)
	}
	if err != nil {
		return walletFailure(string(kind), err)
	}
	opt.Logger.Info("order submitted", zap.String("kind", string(kind)), zap.String("reference", rec.Reference()))
	ui.OK(opt.Out, "Order submitted! Reference: "+rec.Reference())
	return 0
}

func walletFailure(op string, err error) int {
	var fe *wallet.FormError
	switch {
	case errors.As(err, &fe):
		ui.Fail(op + ": " + fe.Error())
		return 2
	case errors.Is(err, wallet.ErrRejected):
		ui.Fail(op + ": rejected in the wallet")
	case errors.Is(err, context.DeadlineExceeded):
		ui.Fail(op + ": the wallet did not answer in time")
	default:
		ui.Fail(op + ": " + err.Error())
	}
	if errors.Is(err, wallet.ErrNotConnected) || errors.Is(err, wallet.ErrRejected) {
		ui.Hint("Hint: run `catbus connect`, or set " + wallet.EnvOrdinalsAddress + " and " + wallet.EnvPaymentAddress)
	}
	return 1
}
