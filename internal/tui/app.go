// Package tui is the terminal front end. It follows the bubbletea model:
// key presses become messages, Update folds them into the App, and View
// renders the App from the current session snapshot.
package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/greenplate/campus-client/internal/domain"
	"github.com/greenplate/campus-client/internal/service"
	"github.com/greenplate/campus-client/internal/shell"
	"github.com/greenplate/campus-client/internal/state"
)

type StateSource interface {
	Snapshot() state.Snapshot
}

type Authenticator interface {
	Login(ctx context.Context, in service.LoginInput) (domain.Session, error)
}

type SessionControl interface {
	CompleteOnboarding()
	ConfirmVerification() error
	Logout(ctx context.Context) error
}

type Cart interface {
	Add(ctx context.Context, item domain.MenuItem, stallID string) error
	Remove(ctx context.Context, item domain.MenuItem, stallID string)
	Lines() []domain.CartLine
	Total() domain.Money
	ItemCount() int
}

type Checkout interface {
	Checkout(ctx context.Context) (domain.PaymentOutcome, error)
}

type Orders interface {
	Load(ctx context.Context) error
	LoadIncoming(ctx context.Context) error
	Accept(ctx context.Context, id string) (domain.Order, error)
	MarkReady(ctx context.Context, id string) (domain.Order, error)
	MarkPickedUp(ctx context.Context, id string) (domain.Order, error)
	CompleteManually(ctx context.Context, id string) (domain.Order, error)
	FindByPickupCode(ctx context.Context, code string) (domain.Order, error)
	Active() []domain.Order
	Past() []domain.Order
}

type Deals interface {
	List(ctx context.Context) ([]domain.Deal, error)
	ListForStall(ctx context.Context, stallID string) ([]domain.Deal, error)
	Post(ctx context.Context, deal domain.Deal) (domain.Deal, error)
	Claim(ctx context.Context, dealID string) (domain.Order, error)
}

type Menu interface {
	Stalls(ctx context.Context) ([]domain.Stall, error)
}

type Team interface {
	ListTeam(ctx context.Context) ([]domain.StaffMember, error)
	AddMember(ctx context.Context, email string) error
	RemoveMember(ctx context.Context, uid string) error
	UpdateEmail(ctx context.Context, uid, newEmail string) error
}

type Dashboard interface {
	Stats(ctx context.Context) (service.Stats, error)
}

// Deps are the services the screens drive.
type Deps struct {
	State     StateSource
	Auth      Authenticator
	Session   SessionControl
	Cart      Cart
	Checkout  Checkout
	Orders    Orders
	Deals     Deals
	Menu      Menu
	Team      Team
	Dashboard Dashboard
}

// resultMsg ends an async operation. apply runs on the update loop so it may
// touch the App.
type resultMsg struct {
	status string
	err    error
	apply  func(a *App)
}

type App struct {
	ctx  context.Context
	deps Deps

	screen shell.Screen
	tab    int
	cursor int

	width  int
	height int

	busy           bool
	busyLabel      string
	spinner        spinner.Model
	cancelCheckout context.CancelFunc
	status         string
	errMsg         string

	auth     authForm
	dealForm dealForm

	search    textinput.Model
	searching bool
	pickup    textinput.Model
	lookingUp bool
	newMember textinput.Model
	adding    bool
	// editUID is the member whose email newMember edits; empty means invite.
	editUID string

	deals      []domain.Deal
	stallDeals []domain.Deal
	stalls     []domain.Stall
	stats      *service.Stats
	team       []domain.StaffMember
	found      *domain.Order
}

// NewApp builds the root model. ctx bounds every call the screens make.
func NewApp(ctx context.Context, deps Deps) *App {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = accentStyle

	app := &App{
		ctx:       ctx,
		deps:      deps,
		spinner:   sp,
		auth:      newAuthForm(),
		dealForm:  newDealForm(),
		search:    newInput("search the menu", 64),
		pickup:    newInput("GP-1234", 32),
		newMember: newInput("new.staff@campus.edu", 128),
	}
	app.screen = shell.Select(deps.State.Snapshot())

	return app
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, a.enterScreen())
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case spinner.TickMsg:
		if !a.busy {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case resultMsg:
		a.busy = false
		a.cancelCheckout = nil
		if msg.err != nil {
			a.errMsg = service.Describe(msg.err)
			zap.L().Debug("operation failed", zap.String("op", a.busyLabel), zap.Error(msg.err))
		} else {
			a.errMsg = ""
			if msg.status != "" {
				a.status = msg.status
			}
		}
		if msg.apply != nil {
			msg.apply(a)
		}
		return a, a.syncScreen()

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			if a.cancelCheckout != nil {
				a.cancelCheckout()
			}
			return a, tea.Quit
		}
		return a.handleKey(msg)
	}

	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if a.busy {
		if key == "esc" && a.cancelCheckout != nil {
			a.cancelCheckout()
		}
		return a, nil
	}

	switch a.screen {
	case shell.ScreenSplash:
		switch key {
		case "enter", " ":
			a.deps.Session.CompleteOnboarding()
			return a, a.syncScreen()
		case "q":
			return a, tea.Quit
		}
		return a, nil

	case shell.ScreenAuth:
		return a.updateAuth(msg)

	case shell.ScreenVerification:
		switch key {
		case "enter":
			if err := a.deps.Session.ConfirmVerification(); err != nil {
				a.errMsg = service.Describe(err)
				return a, nil
			}
			return a, a.syncScreen()
		case "L":
			return a, a.logout()
		case "q":
			return a, tea.Quit
		}
		return a, nil

	case shell.ScreenStaffLoading:
		switch key {
		case "L":
			return a, a.logout()
		case "q":
			return a, tea.Quit
		}
		return a, nil
	}

	return a.updateHome(msg)
}

// syncScreen re-runs the gates and, when the screen changed, resets the
// per-screen state and starts its loads.
func (a *App) syncScreen() tea.Cmd {
	next := shell.Select(a.deps.State.Snapshot())
	if next == a.screen {
		return nil
	}

	zap.L().Debug("screen changed", zap.Stringer("from", a.screen), zap.Stringer("to", next))
	a.screen = next
	a.tab = 0
	a.cursor = 0
	a.found = nil
	a.stats = nil
	a.team = nil
	a.stallDeals = nil

	return a.enterScreen()
}

func (a *App) enterScreen() tea.Cmd {
	switch a.screen {
	case shell.ScreenAuth:
		return a.auth.focus()
	case shell.ScreenStudentHome:
		return a.run("Loading deals and menu", func(ctx context.Context) resultMsg {
			deals, dealsErr := a.deps.Deals.List(ctx)
			stalls, menuErr := a.deps.Menu.Stalls(ctx)
			err := dealsErr
			if err == nil {
				err = menuErr
			}
			return resultMsg{err: err, apply: func(a *App) {
				if dealsErr == nil {
					a.deals = deals
				}
				if menuErr == nil {
					a.stalls = stalls
				}
			}}
		})
	case shell.ScreenStaffHome:
		return a.loadStats()
	}

	return nil
}

// run marks the App busy and performs fn off the update loop.
func (a *App) run(label string, fn func(ctx context.Context) resultMsg) tea.Cmd {
	a.busy = true
	a.busyLabel = label
	a.errMsg = ""
	ctx := a.ctx

	return tea.Batch(a.spinner.Tick, func() tea.Msg { return fn(ctx) })
}

func (a *App) logout() tea.Cmd {
	return a.run("Signing out", func(ctx context.Context) resultMsg {
		err := a.deps.Session.Logout(ctx)
		return resultMsg{status: "Signed out.", err: err, apply: func(a *App) {
			a.auth.reset()
			a.deals = nil
			a.stalls = nil
		}}
	})
}

func (a *App) moveCursor(delta, size int) {
	if size == 0 {
		a.cursor = 0
		return
	}
	a.cursor = min(max(a.cursor+delta, 0), size-1)
}
