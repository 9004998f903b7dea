package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/greenplate/campus-client/internal/domain"
	"github.com/greenplate/campus-client/internal/service"
	"github.com/greenplate/campus-client/internal/shell"
)

type menuRow struct {
	stall domain.Stall
	item  domain.MenuItem
}

func (a *App) tabID() string {
	tabs := shell.Tabs(a.screen)
	if len(tabs) == 0 {
		return ""
	}

	return tabs[a.tab].ID
}

func (a *App) updateHome(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case a.dealForm.editing:
		return a.updateDealForm(msg)
	case a.searching:
		return a.updateSearch(msg)
	case a.lookingUp:
		return a.updatePickupInput(msg)
	case a.adding:
		return a.updateNewMember(msg)
	}

	key := msg.String()
	tabs := shell.Tabs(a.screen)

	switch key {
	case "q":
		return a, tea.Quit
	case "L":
		return a, a.logout()
	case "tab", "right":
		a.selectTab((a.tab + 1) % len(tabs))
		return a, a.enterTab()
	case "shift+tab", "left":
		a.selectTab((a.tab + len(tabs) - 1) % len(tabs))
		return a, a.enterTab()
	case "1", "2", "3", "4", "5":
		if i := int(key[0] - '1'); i < len(tabs) {
			a.selectTab(i)
			return a, a.enterTab()
		}
		return a, nil
	case "up", "k":
		a.moveCursor(-1, a.rowCount())
		return a, nil
	case "down", "j":
		a.moveCursor(1, a.rowCount())
		return a, nil
	}

	if a.screen == shell.ScreenStudentHome {
		return a, a.studentKey(key)
	}

	return a, a.staffKey(key)
}

func (a *App) selectTab(i int) {
	a.tab = i
	a.cursor = 0
	a.errMsg = ""
}

// enterTab loads what the newly selected tab shows.
func (a *App) enterTab() tea.Cmd {
	switch a.tabID() {
	case "orders":
		return a.refreshOrders()
	case "stats":
		return a.loadStats()
	case "kitchen":
		return a.refreshIncoming()
	case "team":
		return a.loadTeam()
	case "deals":
		if a.screen == shell.ScreenStaffHome {
			return a.loadStallDeals()
		}
	}

	return nil
}

func (a *App) rowCount() int {
	snap := a.deps.State.Snapshot()

	switch a.tabID() {
	case "deals":
		if a.screen == shell.ScreenStudentHome {
			return len(a.deals)
		}
		return len(a.stallDeals)
	case "menu":
		return len(a.menuRows())
	case "cart":
		return len(a.deps.Cart.Lines())
	case "orders":
		return len(snap.Orders)
	case "kitchen":
		return len(snap.Incoming)
	case "team":
		return len(a.team)
	}

	return 0
}

func (a *App) menuRows() []menuRow {
	var rows []menuRow
	for _, stall := range service.Search(a.stalls, a.search.Value()) {
		for _, item := range stall.Items {
			rows = append(rows, menuRow{stall: stall, item: item})
		}
	}

	return rows
}

func (a *App) studentKey(key string) tea.Cmd {
	switch a.tabID() {
	case "deals":
		switch key {
		case "enter", "c":
			if a.cursor < len(a.deals) {
				return a.claim(a.deals[a.cursor])
			}
		case "r":
			return a.loadDeals()
		}

	case "menu":
		rows := a.menuRows()
		switch key {
		case "/":
			a.searching = true
			return a.search.Focus()
		case "enter", "a", "+":
			if a.cursor < len(rows) {
				row := rows[a.cursor]
				if !row.item.IsAvailable {
					a.errMsg = row.item.Name + " is sold out."
					return nil
				}
				if err := a.deps.Cart.Add(a.ctx, row.item, row.stall.StallID); err != nil {
					a.errMsg = service.Describe(err)
					return nil
				}
				a.status = fmt.Sprintf("Added %s. Cart: %d items, %s.", row.item.Name, a.deps.Cart.ItemCount(), a.deps.Cart.Total())
			}
		case "-", "x":
			if a.cursor < len(rows) {
				row := rows[a.cursor]
				a.deps.Cart.Remove(a.ctx, row.item, row.stall.StallID)
				a.status = fmt.Sprintf("Cart: %d items, %s.", a.deps.Cart.ItemCount(), a.deps.Cart.Total())
			}
		case "r":
			return a.loadMenu()
		}

	case "cart":
		lines := a.deps.Cart.Lines()
		switch key {
		case "-", "x":
			if a.cursor < len(lines) {
				line := lines[a.cursor]
				a.deps.Cart.Remove(a.ctx, line.Item, line.StallID)
				a.moveCursor(0, len(a.deps.Cart.Lines()))
			}
		case "+", "a":
			if a.cursor < len(lines) {
				line := lines[a.cursor]
				if err := a.deps.Cart.Add(a.ctx, line.Item, line.StallID); err != nil {
					a.errMsg = service.Describe(err)
				}
			}
		case "c", "enter":
			return a.checkout()
		}

	case "orders":
		if key == "r" {
			return a.refreshOrders()
		}
	}

	return nil
}

func (a *App) staffKey(key string) tea.Cmd {
	switch a.tabID() {
	case "stats":
		if key == "r" {
			return a.loadStats()
		}

	case "kitchen":
		incoming := a.deps.State.Snapshot().Incoming
		if key == "r" {
			return a.refreshIncoming()
		}
		if a.cursor >= len(incoming) {
			return nil
		}
		return a.advance(incoming[a.cursor], key)

	case "pickup":
		switch key {
		case "/", "enter":
			a.lookingUp = true
			a.pickup.SetValue("")
			return a.pickup.Focus()
		}
		if a.found != nil {
			return a.advance(*a.found, key)
		}

	case "deals":
		switch key {
		case "n", "enter":
			return a.dealForm.start()
		case "r":
			return a.loadStallDeals()
		}

	case "team":
		switch key {
		case "n":
			a.adding = true
			a.editUID = ""
			a.newMember.SetValue("")
			return a.newMember.Focus()
		case "e":
			if a.cursor < len(a.team) {
				a.adding = true
				a.editUID = a.team[a.cursor].UID
				a.newMember.SetValue(a.team[a.cursor].Email)
				return a.newMember.Focus()
			}
		case "d":
			if a.cursor < len(a.team) {
				member := a.team[a.cursor]
				return a.run("Removing "+member.Email, func(ctx context.Context) resultMsg {
					if err := a.deps.Team.RemoveMember(ctx, member.UID); err != nil {
						return resultMsg{err: err}
					}
					team, err := a.deps.Team.ListTeam(ctx)
					return resultMsg{status: "Removed " + member.Email + ".", err: err, apply: func(a *App) {
						if err == nil {
							a.team = team
							a.moveCursor(0, len(team))
						}
					}}
				})
			}
		case "r":
			return a.loadTeam()
		}
	}

	return nil
}

// advance applies the kitchen key to order.
func (a *App) advance(order domain.Order, key string) tea.Cmd {
	var (
		step  func(context.Context, string) (domain.Order, error)
		label string
	)

	switch key {
	case "a":
		step, label = a.deps.Orders.Accept, "Accepting"
	case "y":
		step, label = a.deps.Orders.MarkReady, "Marking ready"
	case "p":
		step, label = a.deps.Orders.MarkPickedUp, "Handing over"
	case "m":
		step, label = a.deps.Orders.CompleteManually, "Completing"
	default:
		return nil
	}

	return a.run(label+" "+order.PickupCode, func(ctx context.Context) resultMsg {
		updated, err := step(ctx, order.ID)
		if err != nil {
			return resultMsg{err: err}
		}
		return resultMsg{status: fmt.Sprintf("%s is now %s.", updated.PickupCode, updated.Status), apply: func(a *App) {
			if a.found != nil && a.found.ID == updated.ID {
				a.found = &updated
			}
		}}
	})
}

func (a *App) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "esc":
		a.searching = false
		a.search.Blur()
		a.cursor = 0
		return a, nil
	}

	var cmd tea.Cmd
	a.search, cmd = a.search.Update(msg)
	a.cursor = 0
	return a, cmd
}

func (a *App) updatePickupInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.lookingUp = false
		a.pickup.Blur()
		return a, nil
	case "enter":
		a.lookingUp = false
		a.pickup.Blur()
		code := a.pickup.Value()
		return a, a.run("Looking up "+code, func(ctx context.Context) resultMsg {
			order, err := a.deps.Orders.FindByPickupCode(ctx, code)
			return resultMsg{err: err, apply: func(a *App) {
				if err != nil {
					a.found = nil
					return
				}
				a.found = &order
			}}
		})
	}

	var cmd tea.Cmd
	a.pickup, cmd = a.pickup.Update(msg)
	return a, cmd
}

func (a *App) updateNewMember(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.adding = false
		a.newMember.Blur()
		return a, nil
	case "enter":
		a.adding = false
		a.newMember.Blur()
		email := strings.TrimSpace(a.newMember.Value())
		uid := a.editUID
		label, done := "Adding "+email, "Invited "+email+"."
		if uid != "" {
			label, done = "Updating "+email, "Updated email to "+email+"."
		}
		return a, a.run(label, func(ctx context.Context) resultMsg {
			var err error
			if uid != "" {
				err = a.deps.Team.UpdateEmail(ctx, uid, email)
			} else {
				err = a.deps.Team.AddMember(ctx, email)
			}
			if err != nil {
				return resultMsg{err: err}
			}
			team, err := a.deps.Team.ListTeam(ctx)
			return resultMsg{status: done, err: err, apply: func(a *App) {
				if err == nil {
					a.team = team
				}
			}}
		})
	}

	var cmd tea.Cmd
	a.newMember, cmd = a.newMember.Update(msg)
	return a, cmd
}

func (a *App) claim(deal domain.Deal) tea.Cmd {
	return a.run("Claiming "+deal.Name, func(ctx context.Context) resultMsg {
		order, err := a.deps.Deals.Claim(ctx, deal.ID)
		if err != nil {
			return resultMsg{err: err}
		}
		deals, listErr := a.deps.Deals.List(ctx)
		return resultMsg{
			status: fmt.Sprintf("Reserved %s. Show %s at %s.", deal.Name, order.PickupCode, order.StallName),
			apply: func(a *App) {
				if listErr == nil {
					a.deals = deals
					a.moveCursor(0, len(deals))
				}
			},
		}
	})
}

func (a *App) checkout() tea.Cmd {
	ctx, cancel := context.WithCancel(a.ctx)
	cmd := a.run("Waiting for payment in your browser (esc to cancel)", func(context.Context) resultMsg {
		defer cancel()
		outcome, err := a.deps.Checkout.Checkout(ctx)
		if err != nil {
			return resultMsg{err: err}
		}
		return resultMsg{status: fmt.Sprintf("Paid. Order %s is confirmed.", outcome.OrderID), apply: func(a *App) {
			a.cursor = 0
		}}
	})
	a.cancelCheckout = cancel

	return cmd
}

func (a *App) loadDeals() tea.Cmd {
	return a.run("Loading deals", func(ctx context.Context) resultMsg {
		deals, err := a.deps.Deals.List(ctx)
		return resultMsg{err: err, apply: func(a *App) {
			if err == nil {
				a.deals = deals
				a.moveCursor(0, len(deals))
			}
		}}
	})
}

func (a *App) loadMenu() tea.Cmd {
	return a.run("Loading menu", func(ctx context.Context) resultMsg {
		stalls, err := a.deps.Menu.Stalls(ctx)
		return resultMsg{err: err, apply: func(a *App) {
			if err == nil {
				a.stalls = stalls
			}
		}}
	})
}

func (a *App) refreshOrders() tea.Cmd {
	return a.run("Loading orders", func(ctx context.Context) resultMsg {
		return resultMsg{err: a.deps.Orders.Load(ctx)}
	})
}

func (a *App) refreshIncoming() tea.Cmd {
	return a.run("Loading incoming orders", func(ctx context.Context) resultMsg {
		return resultMsg{err: a.deps.Orders.LoadIncoming(ctx)}
	})
}

func (a *App) loadStats() tea.Cmd {
	return a.run("Loading dashboard", func(ctx context.Context) resultMsg {
		if err := a.deps.Orders.LoadIncoming(ctx); err != nil {
			return resultMsg{err: err}
		}
		stats, err := a.deps.Dashboard.Stats(ctx)
		return resultMsg{err: err, apply: func(a *App) {
			if err == nil {
				a.stats = &stats
			}
		}}
	})
}

func (a *App) loadTeam() tea.Cmd {
	return a.run("Loading team", func(ctx context.Context) resultMsg {
		team, err := a.deps.Team.ListTeam(ctx)
		return resultMsg{err: err, apply: func(a *App) {
			if err == nil {
				a.team = team
				a.moveCursor(0, len(team))
			}
		}}
	})
}

func (a *App) loadStallDeals() tea.Cmd {
	profile := a.deps.State.Snapshot().Session.StaffProfile
	if profile == nil {
		return nil
	}
	stallID := profile.StallID

	return a.run("Loading your deals", func(ctx context.Context) resultMsg {
		deals, err := a.deps.Deals.ListForStall(ctx, stallID)
		return resultMsg{err: err, apply: func(a *App) {
			if err == nil {
				a.stallDeals = deals
				a.moveCursor(0, len(deals))
			}
		}}
	})
}
