package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/greenplate/campus-client/internal/domain"
	"github.com/greenplate/campus-client/internal/shell"
)

var (
	green = lipgloss.Color("#16a34a")

	accentStyle   = lipgloss.NewStyle().Foreground(green)
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#f0fdf4")).Background(green).Padding(0, 1)
	tabStyle      = lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("#6b7280"))
	activeTab     = tabStyle.Foreground(green).Bold(true).Underline(true)
	selectedStyle = lipgloss.NewStyle().Foreground(green).Bold(true)
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6b7280"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#dc2626"))
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#0d9488"))
	boxStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(green).Padding(0, 1)
)

func (a *App) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("GreenPlate"))
	if sess := a.deps.State.Snapshot().Session; sess.IsAuthenticated() {
		b.WriteString(mutedStyle.Render(fmt.Sprintf("  %s · %s", sess.Identity.Email, sess.Role)))
	}
	b.WriteString("\n")

	if tabs := shell.Tabs(a.screen); len(tabs) > 0 {
		rendered := make([]string, len(tabs))
		for i, tab := range tabs {
			label := fmt.Sprintf("%d %s", i+1, tab.Label)
			if i == a.tab {
				rendered[i] = activeTab.Render(label)
			} else {
				rendered[i] = tabStyle.Render(label)
			}
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, rendered...))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString(a.body())
	b.WriteString("\n\n")
	b.WriteString(a.footer())

	return b.String()
}

func (a *App) footer() string {
	var lines []string
	switch {
	case a.busy:
		lines = append(lines, a.spinner.View()+" "+a.busyLabel)
	case a.errMsg != "":
		lines = append(lines, errorStyle.Render(a.errMsg))
	case a.status != "":
		lines = append(lines, statusStyle.Render(a.status))
	}
	lines = append(lines, mutedStyle.Render(a.help()))

	return strings.Join(lines, "\n")
}

func (a *App) help() string {
	switch a.screen {
	case shell.ScreenSplash:
		return "enter continue · q quit"
	case shell.ScreenAuth:
		return "tab next field · ctrl+r switch role · ctrl+n toggle sign up · enter submit · ctrl+c quit"
	case shell.ScreenVerification:
		return "enter I've been verified · L sign out · q quit"
	case shell.ScreenStaffLoading:
		return "L sign out · q quit"
	}

	common := "tab/1-5 switch · ↑/↓ move · L sign out · q quit"
	switch a.tabID() {
	case "deals":
		if a.screen == shell.ScreenStudentHome {
			return "enter claim · r refresh · " + common
		}
		if a.dealForm.editing {
			return "tab next field · enter submit · esc cancel"
		}
		return "n new deal · r refresh · " + common
	case "menu":
		return "/ search · a add · x remove · r refresh · " + common
	case "cart":
		return "a add one · x remove one · c checkout · " + common
	case "orders", "stats":
		return "r refresh · " + common
	case "kitchen":
		return "a accept · y ready · p picked up · m complete · r refresh · " + common
	case "pickup":
		return "/ enter code · p picked up · m complete · " + common
	case "team":
		return "n add · e edit email · d remove · r refresh · " + common
	}

	return common
}

func (a *App) body() string {
	switch a.screen {
	case shell.ScreenSplash:
		return boxStyle.Render("Rescue surplus food from campus stalls.\n\n" +
			"Claim discounted deals before they go to waste,\n" +
			"order from the menu, and pick up with a code.")
	case shell.ScreenAuth:
		return a.authView()
	case shell.ScreenVerification:
		return boxStyle.Render("Your account is awaiting verification.\n\n" +
			"Show your campus ID at the help desk, then press enter.")
	case shell.ScreenStaffLoading:
		return a.spinner.View() + " Loading your stall profile..."
	}

	switch a.tabID() {
	case "deals":
		if a.screen == shell.ScreenStudentHome {
			return a.dealsView()
		}
		return a.dealFormView()
	case "menu":
		return a.menuView()
	case "cart":
		return a.cartView()
	case "orders":
		return a.ordersView()
	case "profile":
		return a.profileView()
	case "stats":
		return a.statsView()
	case "kitchen":
		return a.kitchenView()
	case "pickup":
		return a.pickupView()
	case "team":
		return a.teamView()
	}

	return ""
}

func (a *App) authView() string {
	f := a.auth
	mode := "Sign in"
	if f.signUp {
		mode = "Create account"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s as %s\n\n", selectedStyle.Render(mode), f.role)
	fmt.Fprintf(&b, "Email\n%s\n\nPassword\n%s", f.inputs[0].View(), f.inputs[1].View())
	if f.signUp {
		b.WriteString(mutedStyle.Render("\n\nAt least 8 characters with a letter and a digit."))
	}

	return boxStyle.Render(b.String())
}

// row renders one list line, marking the cursor position.
func (a *App) row(i int, text string) string {
	if i == a.cursor {
		return selectedStyle.Render("› " + text)
	}

	return "  " + text
}

func (a *App) dealsView() string {
	if len(a.deals) == 0 {
		return mutedStyle.Render("No deals right now. Check back after lunch.")
	}

	lines := make([]string, 0, len(a.deals))
	for i, d := range a.deals {
		text := fmt.Sprintf("%-24s %-16s %8s %s  %d left · %dm · %.1fkg CO₂",
			d.Name, d.StallName, d.DiscountedPrice, mutedStyle.Strikethrough(true).Render(d.OriginalPrice.String()),
			d.Quantity, d.TimeLeftMinutes, d.CarbonSavedKg)
		lines = append(lines, a.row(i, text))
	}

	return strings.Join(lines, "\n")
}

func (a *App) menuView() string {
	var b strings.Builder
	if a.searching || a.search.Value() != "" {
		b.WriteString(a.search.View())
		b.WriteString("\n\n")
	}

	rows := a.menuRows()
	if len(rows) == 0 {
		b.WriteString(mutedStyle.Render("Nothing matches."))
		return b.String()
	}

	stall := ""
	for i, r := range rows {
		if r.stall.StallID != stall {
			stall = r.stall.StallID
			b.WriteString(accentStyle.Render(r.stall.StallName) + "\n")
		}
		text := fmt.Sprintf("%-28s %8s", r.item.Name, r.item.UnitPrice)
		if !r.item.IsAvailable {
			text += mutedStyle.Render("  sold out")
		}
		if n := a.quantityInCart(r.stall.StallID, r.item.ItemID); n > 0 {
			text += statusStyle.Render(fmt.Sprintf("  ×%d", n))
		}
		b.WriteString(a.row(i, text) + "\n")
	}

	return strings.TrimRight(b.String(), "\n")
}

func (a *App) quantityInCart(stallID, itemID string) int {
	for _, line := range a.deps.Cart.Lines() {
		if line.StallID == stallID && line.Item.ItemID == itemID {
			return line.Quantity
		}
	}

	return 0
}

func (a *App) cartView() string {
	lines := a.deps.Cart.Lines()
	if len(lines) == 0 {
		return mutedStyle.Render("Your cart is empty. Add something from the menu.")
	}

	out := make([]string, 0, len(lines)+2)
	for i, line := range lines {
		out = append(out, a.row(i, fmt.Sprintf("%-28s ×%-3d %8s", line.Item.Name, line.Quantity, line.Subtotal())))
	}
	out = append(out, "", selectedStyle.Render(fmt.Sprintf("Total (%d items): %s", a.deps.Cart.ItemCount(), a.deps.Cart.Total())))

	return strings.Join(out, "\n")
}

func (a *App) ordersView() string {
	active, past := a.deps.Orders.Active(), a.deps.Orders.Past()
	if len(active)+len(past) == 0 {
		return mutedStyle.Render("No orders yet.")
	}

	var b strings.Builder
	i := 0
	section := func(title string, orders []domain.Order) {
		if len(orders) == 0 {
			return
		}
		b.WriteString(accentStyle.Render(title) + "\n")
		for _, o := range orders {
			b.WriteString(a.row(i, orderLine(o)) + "\n")
			i++
		}
	}
	section("Active", active)
	section("Past", past)

	return strings.TrimRight(b.String(), "\n")
}

func orderLine(o domain.Order) string {
	amount := ""
	if o.Purchase != nil {
		amount = o.Purchase.Amount.String()
	}

	return fmt.Sprintf("%-10s %-9s %-30s %-14s %8s", o.PickupCode, o.Status, o.Title(), o.StallName, amount)
}

func (a *App) profileView() string {
	sess := a.deps.State.Snapshot().Session
	name := sess.Identity.DisplayName
	if name == "" {
		name = sess.Identity.Email
	}

	return boxStyle.Render(fmt.Sprintf("%s\n%s\n\nRole: %s\nVerified: %t",
		selectedStyle.Render(name), sess.Identity.Email, sess.Role, sess.Verified))
}

func (a *App) statsView() string {
	if a.stats == nil {
		return mutedStyle.Render("No numbers yet.")
	}

	s := a.stats
	return boxStyle.Render(fmt.Sprintf(
		"Stall %s\n\nActive deals      %d (%d units left)\nCompleted claims  %d\nPaid orders       %d\nCO₂ saved         %.1f kg\n\nQueue  reserved %d · claimed %d · paid %d · ready %d",
		s.StallID, s.ActiveDeals, s.UnitsLeft, s.CompletedClaims, s.PaidOrders, s.CarbonSavedKg,
		s.Queue[domain.StatusReserved], s.Queue[domain.StatusClaimed], s.Queue[domain.StatusPaid], s.Queue[domain.StatusReady]))
}

func (a *App) kitchenView() string {
	incoming := a.deps.State.Snapshot().Incoming
	if len(incoming) == 0 {
		return mutedStyle.Render("The queue is clear.")
	}

	lines := make([]string, 0, len(incoming))
	for i, o := range incoming {
		lines = append(lines, a.row(i, fmt.Sprintf("%-9s %s", o.Kind, orderLine(o))))
	}

	return strings.Join(lines, "\n")
}

func (a *App) pickupView() string {
	var b strings.Builder
	b.WriteString("Pickup code\n")
	b.WriteString(a.pickup.View())
	b.WriteString("\n\n")

	if a.found == nil {
		b.WriteString(mutedStyle.Render("Press / and type the code the student shows you."))
		return b.String()
	}

	o := a.found
	b.WriteString(boxStyle.Render(fmt.Sprintf("%s\n%s\nStatus: %s\nKind: %s",
		selectedStyle.Render(o.PickupCode), o.Title(), o.Status, o.Kind)))

	return b.String()
}

func (a *App) teamView() string {
	var b strings.Builder
	if a.adding {
		title := "Invite by email"
		if a.editUID != "" {
			title = "New email"
		}
		b.WriteString(title + "\n" + a.newMember.View() + "\n\n")
	}

	if len(a.team) == 0 {
		b.WriteString(mutedStyle.Render("No team members loaded."))
		return b.String()
	}
	for i, m := range a.team {
		b.WriteString(a.row(i, fmt.Sprintf("%-32s %-8s %s", m.Email, m.Role, m.Status)) + "\n")
	}

	return strings.TrimRight(b.String(), "\n")
}

func (a *App) dealFormView() string {
	if !a.dealForm.editing {
		if len(a.stallDeals) == 0 {
			return mutedStyle.Render("Press n to post a surplus deal for your stall.")
		}
		lines := make([]string, 0, len(a.stallDeals))
		for i, d := range a.stallDeals {
			state := fmt.Sprintf("%d left", d.Quantity)
			if d.IsClaimed {
				state = "claimed"
			}
			lines = append(lines, a.row(i, fmt.Sprintf("%-24s %8s  %s · %dm", d.Name, d.DiscountedPrice, state, d.TimeLeftMinutes)))
		}
		return strings.Join(lines, "\n")
	}

	var b strings.Builder
	for i, in := range a.dealForm.inputs {
		label := dealLabels[i]
		if i == a.dealForm.focus {
			label = selectedStyle.Render(label)
		}
		fmt.Fprintf(&b, "%s\n%s\n", label, in.View())
	}

	return boxStyle.Render(strings.TrimRight(b.String(), "\n"))
}
