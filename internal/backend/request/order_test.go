package request

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCreateOrderRequest_Validate(t *testing.T) {
	valid := CreateOrderRequest{StallID: "s1", Items: []OrderItem{{ItemID: "i1", Quantity: 2}}}
	assert.NoError(t, valid.Validate())

	noStall := CreateOrderRequest{Items: valid.Items}
	assert.Error(t, noStall.Validate())

	noItems := CreateOrderRequest{StallID: "s1"}
	assert.ErrorIs(t, noItems.Validate(), errNoItems)

	zeroQty := CreateOrderRequest{StallID: "s1", Items: []OrderItem{{ItemID: "i1", Quantity: 0}}}
	assert.ErrorContains(t, zeroQty.Validate(), "items[0]")
}

func TestVerifyOrderRequest_Validate(t *testing.T) {
	req := VerifyOrderRequest{
		PaymentID: "pay_1", OrderID: "order_1", Signature: "sig_1",
		StallID: "s1", Items: []OrderItem{{ItemID: "i1", Quantity: 1}}, Amount: 24000,
	}
	assert.NoError(t, req.Validate())

	req.Signature = ""
	assert.Error(t, req.Validate())

	req.Signature = "sig_1"
	req.Amount = 0
	assert.ErrorIs(t, req.Validate(), errNonPositiveAmount)
}

func TestEmailRequests_Validate(t *testing.T) {
	assert.NoError(t, (&AddMemberRequest{Email: "cook@campus.edu"}).Validate())
	assert.Error(t, (&AddMemberRequest{Email: "cook"}).Validate())
	assert.Error(t, (&AddMemberRequest{}).Validate())

	assert.NoError(t, (&UpdateEmailRequest{UID: "u1", NewEmail: "new@campus.edu"}).Validate())
	assert.Error(t, (&UpdateEmailRequest{UID: "u1", NewEmail: "no-at-sign"}).Validate())
	assert.Error(t, (&UpdateEmailRequest{NewEmail: "new@campus.edu"}).Validate())
}
