// Package tui is the interactive proposal board: browse, upvote, submit and
// connect a wallet from the terminal.
package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/idilsaglam/catbus/internal/model"
	"github.com/idilsaglam/catbus/internal/registry"
	"github.com/idilsaglam/catbus/internal/ui"
	"github.com/idilsaglam/catbus/internal/wallet"
)

// Options are the collaborators the board works with.
type Options struct {
	Registry  *registry.Registry
	Connector wallet.Connector
	Session   *wallet.Session
	Logger    *zap.Logger
	// ConnectTimeout bounds the wallet prompt; zero means no limit.
	ConnectTimeout time.Duration
}

// proposalItem adapts model.Proposal to bubbles/list.Item
type proposalItem struct {
	model.Proposal
}

func (i proposalItem) Title() string       { return i.Name }
func (i proposalItem) Description() string { return i.Proposal.Description }
func (i proposalItem) FilterValue() string { return i.Name + " " + i.Proposal.Description }

// registryChangedMsg is sent when the registry was mutated outside Update.
type registryChangedMsg struct{}

// connectedMsg carries the result of an asynchronous wallet connect.
type connectedMsg struct {
	addrs wallet.Addresses
	err   error
}

// Model is the Bubble Tea model for the board.
type Model struct {
	list    list.Model
	opt     Options
	status  string
	failure bool

	// Inline submit: name first, then description
	adding    bool
	addStep   int
	draftName string
	ti        textinput.Model
	addErr    string

	connecting    bool
	cancelConnect context.CancelFunc
}

// Custom delegate: vote count, name, and a muted description line
type itemDelegate struct{}

func (d itemDelegate) Height() int                               { return 2 }
func (d itemDelegate) Spacing() int                              { return 1 }
func (d itemDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(proposalItem)
	if !ok {
		return
	}
	votes := votesStyle.Render(fmt.Sprintf("%s %3d", symVote, it.Votes))
	prefix := "  "
	name := it.Name
	if index == m.Index() {
		prefix = selectedStyle.Render("> ")
		name = titleStyle.Render(name)
	}
	width := m.Width() - 10
	if width < 20 {
		width = 20
	}
	fmt.Fprintf(w, "%s%s  %s\n", prefix, votes, name)
	fmt.Fprint(w, "         "+mutedStyle.Render(ui.Truncate(it.Proposal.Description, width)))
}

var (
	upvoteBind  = key.NewBinding(key.WithKeys(" ", "enter", "+"), key.WithHelp("space", "upvote"))
	addBind     = key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "propose"))
	connectBind = key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "connect wallet"))
)

// New builds the board model from the registry's current contents.
func New(opt Options) Model {
	if opt.Logger == nil {
		opt.Logger = zap.NewNop()
	}

	l := list.New(toItems(opt.Registry.List()), itemDelegate{}, 0, 0)
	l.SetShowHelp(true)
	l.SetShowPagination(true)
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.Styles.Title = titleStyle
	l.Styles.HelpStyle = helpStyle
	l.Styles.PaginationStyle = helpStyle
	l.FilterInput.Prompt = "/ "
	l.SetStatusBarItemName("proposal", "proposals")
	l.AdditionalShortHelpKeys = func() []key.Binding { return []key.Binding{upvoteBind, addBind, connectBind} }
	l.AdditionalFullHelpKeys = func() []key.Binding { return []key.Binding{upvoteBind, addBind, connectBind} }

	m := Model{list: l, opt: opt}
	m.ti = textinput.New()
	m.ti.Prompt = "> "
	m.ti.CharLimit = 280
	m.updateTitle()
	return m
}

// Run starts the board full screen and returns when the user quits.
func Run(opt Options) error {
	m := New(opt)
	p := tea.NewProgram(m, tea.WithAltScreen())

	// Send must not block the event loop when the mutation came from Update itself.
	unsubscribe := opt.Registry.Subscribe(func(registry.Event) {
		go p.Send(registryChangedMsg{})
	})
	defer unsubscribe()

	final, err := p.Run()
	if fm, ok := final.(Model); ok && fm.cancelConnect != nil {
		fm.cancelConnect()
	}
	return err
}

func toItems(ps []model.Proposal) []list.Item {
	items := make([]list.Item, 0, len(ps))
	for _, p := range ps {
		items = append(items, proposalItem{p})
	}
	return items
}

func (m *Model) updateTitle() {
	title := fmt.Sprintf("%s   %s %d  %s %d",
		titleStyle.Render("Proposals"),
		votesStyle.Render(symVote), m.opt.Registry.TotalVotes(),
		accentStyle.Render("Total"), m.opt.Registry.Len(),
	)
	if addrs, ok := m.opt.Session.Addresses(); ok {
		title += "   " + successStyle.Render("● "+shortAddress(addrs.Ordinals.Address))
	}
	m.list.Title = title
}

func (m *Model) refresh() tea.Cmd {
	cmd := m.list.SetItems(toItems(m.opt.Registry.List()))
	m.updateTitle()
	return cmd
}

func (m *Model) setStatus(msg string, failure bool) {
	m.status = msg
	m.failure = failure
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd { return nil }

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch x := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(x.Width, x.Height)
		return m, nil
	case registryChangedMsg:
		return m, m.refresh()
	case connectedMsg:
		return m.finishConnect(x), nil
	}

	if m.adding {
		return m.updateAdding(msg)
	}

	if km, ok := msg.(tea.KeyMsg); ok && m.list.FilterState() != list.Filtering {
		switch km.String() {
		case "q":
			return m, tea.Quit
		case "esc":
			if m.connecting {
				m.cancelConnect()
				return m, nil
			}
			if m.list.FilterState() == list.FilterApplied {
				break
			}
			return m, tea.Quit
		case " ", "enter", "+":
			return m.upvoteSelected()
		case "a":
			m.adding = true
			m.addStep = 0
			m.addErr = ""
			m.ti.SetValue("")
			m.ti.Placeholder = "Collection name..."
			m.ti.Focus()
			return m, textinput.Blink
		case "c":
			return m.startConnect()
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) upvoteSelected() (tea.Model, tea.Cmd) {
	it, ok := m.list.SelectedItem().(proposalItem)
	if !ok {
		return m, nil
	}
	p, err := m.opt.Registry.Upvote(it.ID)
	if err != nil {
		m.opt.Logger.Debug("upvote failed", zap.Int("id", it.ID), zap.Error(err))
		m.setStatus(err.Error(), true)
		return m, m.refresh()
	}
	m.setStatus(fmt.Sprintf("Upvoted %q (%d votes)", p.Name, p.Votes), false)
	return m, m.refresh()
}

func (m Model) updateAdding(msg tea.Msg) (tea.Model, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok {
		switch km.String() {
		case "enter":
			value := strings.TrimSpace(m.ti.Value())
			if m.addStep == 0 {
				if value == "" {
					m.addErr = "Please provide a name and description."
					return m, nil
				}
				m.draftName = value
				m.addStep = 1
				m.addErr = ""
				m.ti.SetValue("")
				m.ti.Placeholder = "Description..."
				return m, nil
			}
			p, err := m.opt.Registry.Submit(m.draftName, value)
			if err != nil {
				var ve *registry.ValidationError
				if errors.As(err, &ve) {
					m.addErr = "Please provide a name and description."
				} else {
					m.addErr = err.Error()
				}
				return m, nil
			}
			m.opt.Logger.Info("proposal submitted", zap.Int("id", p.ID), zap.String("name", p.Name))
			m.closeAdd()
			m.setStatus("Your proposal has been submitted for voting!", false)
			cmd := m.refresh()
			m.list.Select(len(m.list.Items()) - 1)
			return m, cmd
		case "esc":
			m.closeAdd()
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.ti, cmd = m.ti.Update(msg)
	return m, cmd
}

func (m *Model) closeAdd() {
	m.adding = false
	m.addStep = 0
	m.draftName = ""
	m.addErr = ""
	m.ti.SetValue("")
	m.ti.Blur()
}

func (m Model) startConnect() (tea.Model, tea.Cmd) {
	if m.connecting {
		return m, nil
	}
	if m.opt.Connector == nil {
		m.setStatus("No wallet connector configured.", true)
		return m, nil
	}
	var (
		ctx    context.Context
		cancel context.CancelFunc
	)
	if m.opt.ConnectTimeout > 0 {
		ctx, cancel = context.WithTimeout(context.Background(), m.opt.ConnectTimeout)
	} else {
		ctx, cancel = context.WithCancel(context.Background())
	}
	m.connecting = true
	m.cancelConnect = cancel
	m.setStatus("Connecting…", false)

	session, conn := m.opt.Session, m.opt.Connector
	return m, func() tea.Msg {
		addrs, err := session.Connect(ctx, conn)
		return connectedMsg{addrs: addrs, err: err}
	}
}

func (m Model) finishConnect(msg connectedMsg) Model {
	if m.cancelConnect != nil {
		m.cancelConnect()
	}
	m.connecting = false
	m.cancelConnect = nil

	switch {
	case msg.err == nil:
		m.opt.Logger.Info("wallet connected", zap.String("ordinals", msg.addrs.Ordinals.Address))
		m.setStatus("Connected, ordinals: "+msg.addrs.Ordinals.Address, false)
	case errors.Is(msg.err, wallet.ErrRejected):
		m.setStatus("Connection rejected or failed. Please try again.", true)
	case errors.Is(msg.err, context.Canceled):
		m.setStatus("Connection cancelled.", true)
	default:
		m.opt.Logger.Warn("wallet connect failed", zap.Error(msg.err))
		m.setStatus(msg.err.Error(), true)
	}
	m.updateTitle()
	return m
}

func (m *Model) resize(w, h int) {
	listHeight := h - 4
	if m.adding {
		listHeight = h - 7
	}
	if listHeight < 3 {
		listHeight = 3
	}
	m.list.SetSize(w-4, listHeight)
	m.ti.Width = w - 12
}

// View implements tea.Model.
func (m Model) View() string {
	content := m.list.View()
	if m.status != "" {
		style := mutedStyle
		if m.failure {
			style = errorStyle
		}
		content += "\n" + style.Render(m.status)
	}
	if m.adding {
		title := "New proposal: name"
		if m.addStep == 1 {
			title = "New proposal: description for " + titleStyle.Render(m.draftName)
		}
		if m.addErr != "" {
			title += "  " + errorStyle.Render(m.addErr)
		}
		content += "\n" + inputBox(title+"\n"+m.ti.View())
	}
	return panelString(content)
}

func shortAddress(addr string) string {
	if len(addr) <= 16 {
		return addr
	}
	return addr[:8] + "…" + addr[len(addr)-6:]
}
