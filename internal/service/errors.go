package service

import (
	"errors"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/greenplate/campus-client/internal/backend"
	"github.com/greenplate/campus-client/internal/domain"
	"github.com/greenplate/campus-client/internal/identity"
	"github.com/greenplate/campus-client/internal/payment"
	"github.com/greenplate/campus-client/internal/repository"
)

var (
	ErrEmptyCart           = errors.New("cart is empty")
	ErrNotAuthenticated    = errors.New("sign in as a student to place an order")
	ErrMultiStallCart      = errors.New("cart holds items from more than one stall")
	ErrOrderIntent         = errors.New("could not create order")
	ErrVerification        = errors.New("payment could not be verified")
	ErrCheckoutInProgress  = errors.New("a checkout is already in progress")
	ErrStudentOnly         = errors.New("only students can do this")
	ErrStaffOnly           = errors.New("only stall staff can do this")
	ErrManagerOnly         = errors.New("only the stall manager can manage the team")
	ErrStaffProfilePending = errors.New("staff profile is still loading")
	ErrNoRole              = errors.New("choose a role first")

	ErrSDKLoad           = payment.ErrSDKLoad
	ErrWidgetBusy        = payment.ErrWidgetBusy
	ErrDealUnavailable   = domain.ErrDealUnavailable
	ErrInvalidTransition = domain.ErrInvalidTransition
	ErrOrderNotFound     = repository.ErrOrderNotFound
	ErrDealNotFound      = repository.ErrDealNotFound
)

// PaymentError is a payment the gateway did not complete, including a
// dismissed widget.
type PaymentError struct {
	Reason string
}

func (e *PaymentError) Error() string {
	return e.Reason
}

// Cancelled reports whether the user closed the widget.
func (e *PaymentError) Cancelled() bool {
	return e.Reason == payment.ReasonCancelled
}

type OnboardingStep string

const (
	StepVerifyStaff OnboardingStep = "verify-staff"
	StepActivate    OnboardingStep = "activate"
	StepProfile     OnboardingStep = "profile"
)

// StaffOnboardingError reports which staff sign-in step failed and which ones
// had already succeeded on the backend.
type StaffOnboardingError struct {
	Step      OnboardingStep
	Completed []OnboardingStep
	Err       error
}

func (e *StaffOnboardingError) Error() string {
	if len(e.Completed) == 0 {
		return fmt.Sprintf("staff %s failed: %v", e.Step, e.Err)
	}

	done := make([]string, 0, len(e.Completed))
	for _, s := range e.Completed {
		done = append(done, string(s))
	}

	return fmt.Sprintf("staff %s failed after %s: %v", e.Step, strings.Join(done, ", "), e.Err)
}

func (e *StaffOnboardingError) Unwrap() error {
	return e.Err
}

// Describe turns any error from this package into a message fit for the UI.
func Describe(err error) string {
	if err == nil {
		return ""
	}

	var (
		payErr   *PaymentError
		staffErr *StaffOnboardingError
		apiErr   *backend.APIError
		invalid  validation.Errors
	)

	switch {
	case errors.As(err, &payErr):
		if payErr.Cancelled() {
			return "Payment cancelled. Your cart is still here."
		}
		return "Payment failed: " + payErr.Reason
	case errors.As(err, &staffErr):
		if len(staffErr.Completed) > 0 {
			return fmt.Sprintf("Staff sign-in stopped at %s. Earlier steps already went through; sign in again to finish. (%s)",
				staffErr.Step, describeCause(staffErr.Err))
		}
		return "Staff sign-in failed: " + describeCause(staffErr.Err)
	case errors.As(err, &invalid):
		return "Please check your input: " + invalid.Error()
	}

	msg := describeCause(err)
	if msg == "" && errors.As(err, &apiErr) {
		return apiErr.Message
	}
	if msg == "" {
		return "Something went wrong. Please try again."
	}

	return msg
}

func describeCause(err error) string {
	switch {
	case errors.Is(err, identity.ErrUserNotFound):
		return "No account exists for this email."
	case errors.Is(err, identity.ErrWrongPassword), errors.Is(err, identity.ErrInvalidCredentials):
		return "Incorrect email or password."
	case errors.Is(err, identity.ErrEmailExists):
		return "An account with this email already exists."
	case errors.Is(err, identity.ErrWeakPassword):
		return "Password is too weak."
	case errors.Is(err, identity.ErrTooManyAttempts):
		return "Too many attempts. Try again later."
	case errors.Is(err, identity.ErrNotSignedIn):
		return "Your session has ended. Please sign in again."
	case errors.Is(err, identity.ErrUnavailable):
		return "Sign-in service is unreachable."
	case errors.Is(err, backend.ErrUnauthorized):
		return "You are not allowed to do that with this account."
	case errors.Is(err, backend.ErrNetwork):
		return "Cannot reach the server. Check your connection."
	case errors.Is(err, backend.ErrNotFound):
		return "Not found on the server."
	case errors.Is(err, ErrSDKLoad):
		return "Payment SDK failed to load."
	case errors.Is(err, ErrWidgetBusy):
		return "A payment window is already open."
	case errors.Is(err, ErrOrderIntent):
		return "Could not create the order. Please try again."
	case errors.Is(err, ErrVerification):
		return "Payment went through but could not be verified. Contact the stall with your payment id."
	case errors.Is(err, ErrEmptyCart),
		errors.Is(err, ErrNotAuthenticated),
		errors.Is(err, ErrMultiStallCart),
		errors.Is(err, ErrCheckoutInProgress),
		errors.Is(err, ErrStudentOnly),
		errors.Is(err, ErrStaffOnly),
		errors.Is(err, ErrManagerOnly),
		errors.Is(err, ErrStaffProfilePending),
		errors.Is(err, ErrNoRole),
		errors.Is(err, ErrInvalidDeal),
		errors.Is(err, ErrDealUnavailable),
		errors.Is(err, ErrOrderNotFound),
		errors.Is(err, ErrDealNotFound):
		return sentence(err)
	case errors.Is(err, ErrInvalidTransition):
		return "That order cannot move to this status."
	}

	return ""
}

// sentence returns the innermost message of a wrapped error, capitalised.
func sentence(err error) string {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			break
		}
		err = next
	}

	msg := err.Error()
	if msg == "" {
		return msg
	}

	return strings.ToUpper(msg[:1]) + msg[1:] + "."
}
