package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/greenplate/campus-client/internal/domain"
	"github.com/greenplate/campus-client/internal/service"
)

func newInput(placeholder string, limit int) textinput.Model {
	in := textinput.New()
	in.Placeholder = placeholder
	in.CharLimit = limit
	in.Prompt = "› "
	return in
}

type authForm struct {
	inputs []textinput.Model
	active int
	role   domain.Role
	signUp bool
}

func newAuthForm() authForm {
	email := newInput("you@campus.edu", 128)
	password := newInput("password", 128)
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	return authForm{
		inputs: []textinput.Model{email, password},
		role:   domain.RoleStudent,
	}
}

func (f *authForm) focus() tea.Cmd {
	for i := range f.inputs {
		f.inputs[i].Blur()
	}
	return f.inputs[f.active].Focus()
}

func (f *authForm) reset() {
	for i := range f.inputs {
		f.inputs[i].SetValue("")
	}
	f.active = 0
	f.signUp = false
}

func (f *authForm) input() service.LoginInput {
	return service.LoginInput{
		Email:    f.inputs[0].Value(),
		Password: f.inputs[1].Value(),
		Role:     f.role,
		SignUp:   f.signUp,
	}
}

func (a *App) updateAuth(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	f := &a.auth

	switch msg.String() {
	case "tab", "down":
		f.active = (f.active + 1) % len(f.inputs)
		return a, f.focus()
	case "shift+tab", "up":
		f.active = (f.active + len(f.inputs) - 1) % len(f.inputs)
		return a, f.focus()
	case "ctrl+r":
		if f.role == domain.RoleStudent {
			f.role = domain.RoleStaff
		} else {
			f.role = domain.RoleStudent
		}
		return a, nil
	case "ctrl+n":
		f.signUp = !f.signUp
		return a, nil
	case "enter":
		if f.active < len(f.inputs)-1 {
			f.active++
			return a, f.focus()
		}
		in := f.input()
		label := "Signing in"
		if in.SignUp {
			label = "Creating account"
		}
		return a, a.run(label, func(ctx context.Context) resultMsg {
			sess, err := a.deps.Auth.Login(ctx, in)
			if err != nil {
				return resultMsg{err: err}
			}
			return resultMsg{status: fmt.Sprintf("Signed in as %s.", sess.Identity.Email), apply: func(a *App) {
				a.auth.inputs[1].SetValue("")
			}}
		})
	}

	var cmd tea.Cmd
	f.inputs[f.active], cmd = f.inputs[f.active].Update(msg)
	return a, cmd
}

var errBadNumber = errors.New("prices and quantities must be numbers")

const (
	dealName = iota
	dealDescription
	dealOriginal
	dealDiscounted
	dealQuantity
	dealMinutes
	dealCarbon
)

var dealLabels = []string{"Name", "Description", "Original price (₹)", "Discounted price (₹)", "Quantity", "Minutes left", "CO₂ saved (kg)"}

type dealForm struct {
	inputs  []textinput.Model
	focus   int
	editing bool
}

func newDealForm() dealForm {
	placeholders := []string{"Veg Biryani", "Leftover from lunch service", "120", "60", "5", "45", "0.8"}
	inputs := make([]textinput.Model, len(placeholders))
	for i, p := range placeholders {
		inputs[i] = newInput(p, 120)
	}

	return dealForm{inputs: inputs}
}

func (f *dealForm) start() tea.Cmd {
	f.editing = true
	f.focus = 0
	for i := range f.inputs {
		f.inputs[i].SetValue("")
		f.inputs[i].Blur()
	}
	return f.inputs[0].Focus()
}

func (f *dealForm) stop() {
	f.editing = false
	for i := range f.inputs {
		f.inputs[i].Blur()
	}
}

func (f *dealForm) move(delta int) tea.Cmd {
	f.inputs[f.focus].Blur()
	f.focus = (f.focus + delta + len(f.inputs)) % len(f.inputs)
	return f.inputs[f.focus].Focus()
}

// deal parses the form. Empty numeric fields count as zero and are left to
// the service's validation.
func (f *dealForm) deal() (domain.Deal, error) {
	value := func(i int) string { return strings.TrimSpace(f.inputs[i].Value()) }
	number := func(i int) (float64, error) {
		if value(i) == "" {
			return 0, nil
		}
		n, err := strconv.ParseFloat(value(i), 64)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", dealLabels[i], errBadNumber)
		}
		return n, nil
	}

	var nums [7]float64
	for _, i := range []int{dealOriginal, dealDiscounted, dealQuantity, dealMinutes, dealCarbon} {
		n, err := number(i)
		if err != nil {
			return domain.Deal{}, err
		}
		nums[i] = n
	}

	return domain.Deal{
		Name:            value(dealName),
		Description:     value(dealDescription),
		OriginalPrice:   domain.MoneyFromMajor(nums[dealOriginal]),
		DiscountedPrice: domain.MoneyFromMajor(nums[dealDiscounted]),
		Quantity:        int(nums[dealQuantity]),
		TimeLeftMinutes: int(nums[dealMinutes]),
		CarbonSavedKg:   nums[dealCarbon],
	}, nil
}

func (a *App) updateDealForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	f := &a.dealForm

	switch msg.String() {
	case "esc":
		f.stop()
		return a, nil
	case "tab", "down":
		return a, f.move(1)
	case "shift+tab", "up":
		return a, f.move(-1)
	case "enter":
		if f.focus < len(f.inputs)-1 {
			return a, f.move(1)
		}
		deal, err := f.deal()
		if err != nil {
			a.errMsg = err.Error()
			return a, nil
		}
		return a, a.run("Posting deal", func(ctx context.Context) resultMsg {
			posted, err := a.deps.Deals.Post(ctx, deal)
			if err != nil {
				return resultMsg{err: err}
			}
			deals, listErr := a.deps.Deals.ListForStall(ctx, posted.StallID)
			return resultMsg{status: fmt.Sprintf("Posted %s (%d left).", posted.Name, posted.Quantity), apply: func(a *App) {
				a.dealForm.stop()
				if listErr == nil {
					a.stallDeals = deals
				}
			}}
		})
	}

	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return a, cmd
}
