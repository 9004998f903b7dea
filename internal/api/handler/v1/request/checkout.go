package request

import (
	validation "github.com/go-ozzo/ozzo-validation"
)

// PaymentSuccessRequest is what the checkout widget hands its success handler.
type PaymentSuccessRequest struct {
	RazorpayPaymentID string `json:"razorpay_payment_id"`
	RazorpayOrderID   string `json:"razorpay_order_id"`
	RazorpaySignature string `json:"razorpay_signature"`
}

func (req *PaymentSuccessRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.RazorpayPaymentID, validation.Required),
		validation.Field(&req.RazorpayOrderID, validation.Required),
		validation.Field(&req.RazorpaySignature, validation.Required),
	)
}

type PaymentFailureRequest struct {
	Reason    string `json:"reason"`
	Code      string `json:"code,omitempty"`
	Dismissed bool   `json:"dismissed,omitempty"`
}

func (req *PaymentFailureRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Reason, validation.Length(0, 500)),
	)
}
