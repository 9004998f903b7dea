package v1

import (
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/greenplate/campus-client/internal/api/handler/v1/request"
	"github.com/greenplate/campus-client/internal/api/handler/v1/response"
	"github.com/greenplate/campus-client/internal/domain"
	"github.com/greenplate/campus-client/internal/payment"
)

const CheckoutTemplate = "checkout.html"

var errSDKNotReady = errors.New("payment SDK is not loaded yet")

type CheckoutSessions interface {
	Options(id string) (domain.WidgetOptions, error)
	Resolve(id string, outcome domain.PaymentOutcome) error
}

type SDKSource interface {
	Script() ([]byte, bool)
}

type CheckoutHandler struct {
	sessions CheckoutSessions
	sdk      SDKSource
	basePath string
}

func NewCheckoutHandler(sessions CheckoutSessions, sdk SDKSource, basePath string) *CheckoutHandler {
	return &CheckoutHandler{
		sessions: sessions,
		sdk:      sdk,
		basePath: basePath,
	}
}

// widgetOptions is the configuration object the Razorpay script expects.
type widgetOptions struct {
	Key         string            `json:"key"`
	Amount      int64             `json:"amount"`
	Currency    string            `json:"currency"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	OrderID     string            `json:"order_id"`
	Prefill     map[string]string `json:"prefill"`
	Theme       map[string]string `json:"theme"`
}

type checkoutPage struct {
	Title       string
	SessionID   string
	SDKPath     string
	SuccessPath string
	FailurePath string
	Amount      string
	Options     template.JS
}

// HandleCheckoutPage godoc
// @Summary      Render the payment widget for a pending checkout
// @Tags         checkout
// @Produce      html
// @Param        sessionID   path      string  true  "checkout session id"
// @Success      200
// @Failure      404      {object}   response.Err
// @Failure      409      {object}   response.Err
// @Router       /checkout/{sessionID} [get]
func (h *CheckoutHandler) HandleCheckoutPage(ctx *gin.Context) {
	sessionID := ctx.Param("sessionID")

	opts, err := h.sessions.Options(sessionID)
	if err != nil {
		h.renderSessionErr(ctx, err)
		return
	}

	payload, err := json.Marshal(widgetOptions{
		Key:         opts.Key,
		Amount:      int64(opts.Amount),
		Currency:    opts.Currency,
		Name:        opts.MerchantName,
		Description: opts.Description,
		OrderID:     opts.OrderID,
		Prefill:     map[string]string{"email": opts.PrefillEmail, "name": opts.PrefillName},
		Theme:       map[string]string{"color": opts.ThemeColor},
	})
	if err != nil {
		response.RenderErr(ctx, response.ErrInternalServerError(fmt.Errorf("json.Marshal -> %w", err)))
		return
	}

	ctx.HTML(http.StatusOK, CheckoutTemplate, checkoutPage{
		Title:       opts.MerchantName,
		SessionID:   sessionID,
		SDKPath:     "/sdk/checkout.js",
		SuccessPath: fmt.Sprintf("%s/checkout/%s/success", h.basePath, sessionID),
		FailurePath: fmt.Sprintf("%s/checkout/%s/failure", h.basePath, sessionID),
		Amount:      opts.Amount.String(),
		Options:     template.JS(payload),
	})
}

// HandleSDK godoc
// @Summary      Serve the cached gateway checkout script
// @Tags         checkout
// @Produce      application/javascript
// @Success      200
// @Failure      503      {object}   response.Err
// @Router       /sdk/checkout.js [get]
func (h *CheckoutHandler) HandleSDK(ctx *gin.Context) {
	script, ok := h.sdk.Script()
	if !ok {
		response.RenderErr(ctx, response.ErrServiceUnavailable(errSDKNotReady))
		return
	}

	ctx.Data(http.StatusOK, "application/javascript; charset=utf-8", script)
}

// HandlePaymentSuccess godoc
// @Summary      Report a successful payment from the widget
// @Tags         checkout
// @Accept       json
// @Produce      json
// @Param        sessionID   path      string  true  "checkout session id"
// @Param        request     body      request.PaymentSuccessRequest true "gateway credentials"
// @Success      200      {object}   response.ResolveResponse
// @Failure      400      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      409      {object}   response.Err
// @Router       /checkout/{sessionID}/success [post]
func (h *CheckoutHandler) HandlePaymentSuccess(ctx *gin.Context) {
	var req request.PaymentSuccessRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	sessionID := ctx.Param("sessionID")
	err := h.sessions.Resolve(sessionID, domain.PaymentOutcome{
		PaymentID: req.RazorpayPaymentID,
		OrderID:   req.RazorpayOrderID,
		Signature: req.RazorpaySignature,
	})
	if err != nil {
		h.renderSessionErr(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, response.ResolveResponse{SessionID: sessionID, Outcome: "success"})
}

// HandlePaymentFailure godoc
// @Summary      Report a failed or dismissed payment from the widget
// @Tags         checkout
// @Accept       json
// @Produce      json
// @Param        sessionID   path      string  true  "checkout session id"
// @Param        request     body      request.PaymentFailureRequest true "failure reason"
// @Success      200      {object}   response.ResolveResponse
// @Failure      400      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      409      {object}   response.Err
// @Router       /checkout/{sessionID}/failure [post]
func (h *CheckoutHandler) HandlePaymentFailure(ctx *gin.Context) {
	var req request.PaymentFailureRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	reason := req.Reason
	switch {
	case req.Dismissed:
		reason = payment.ReasonCancelled
	case reason == "":
		reason = payment.ReasonDefault
	}

	sessionID := ctx.Param("sessionID")
	if err := h.sessions.Resolve(sessionID, domain.PaymentOutcome{Failed: true, Reason: reason}); err != nil {
		h.renderSessionErr(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, response.ResolveResponse{SessionID: sessionID, Outcome: "failure"})
}

func (h *CheckoutHandler) renderSessionErr(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, payment.ErrSessionNotFound):
		response.RenderErr(ctx, response.ErrNotFound(err))
	case errors.Is(err, payment.ErrSessionResolved):
		response.RenderErr(ctx, response.ErrConflict(err))
	default:
		response.RenderErr(ctx, response.ErrInternalServerError(fmt.Errorf("v1.CheckoutHandler -> %w", err)))
	}
}

// HandleHealthcheck godoc
// @Summary      Liveness of the widget host
// @Tags         health
// @Produce      json
// @Success      200      {object}   response.HealthResponse
// @Router       / [get]
func HandleHealthcheck(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, response.HealthResponse{Status: "ok"})
}
