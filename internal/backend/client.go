package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/greenplate/campus-client/internal/backend/request"
	"github.com/greenplate/campus-client/internal/domain"
)

const maxErrorBody = 4 << 10

var errUIDRequired = errors.New("uid is required")

// TokenSource hands out bearer tokens, refreshing them when stale.
type TokenSource interface {
	Token(ctx context.Context, force bool) (string, error)
}

type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
}

func NewClient(baseURL string, timeout time.Duration, tokens TokenSource) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		tokens:  tokens,
	}
}

func (c *Client) VerifyStudent(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/auth/verify-student", nil, nil)
}

func (c *Client) VerifyStaff(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/auth/verify-staff", nil, nil)
}

func (c *Client) ActivateStaff(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/staff/activate", nil, nil)
}

func (c *Client) GetStaffProfile(ctx context.Context) (domain.StaffProfile, error) {
	var dto staffProfileDTO
	if err := c.do(ctx, http.MethodGet, "/staff/me", nil, &dto); err != nil {
		return domain.StaffProfile{}, err
	}

	return domain.StaffProfile{
		Role:    domain.StaffRole(strings.ToLower(dto.Role)),
		StallID: dto.StallID,
		Email:   dto.Email,
	}, nil
}

// GetOrders returns the signed-in student's purchase orders. The endpoint has
// answered with a bare list and with {"orders": [...]}; anything else is
// logged and treated as no orders.
func (c *Client) GetOrders(ctx context.Context) ([]domain.Order, error) {
	var raw []byte
	if err := c.do(ctx, http.MethodGet, "/user/orders", nil, &raw); err != nil {
		return nil, err
	}

	return decodeOrders(raw, "/user/orders"), nil
}

func (c *Client) GetPaidOrders(ctx context.Context) ([]domain.Order, error) {
	var raw []byte
	if err := c.do(ctx, http.MethodGet, "/staff/orders?status=PAID", nil, &raw); err != nil {
		return nil, err
	}

	return decodeOrders(raw, "/staff/orders"), nil
}

func (c *Client) GetMenu(ctx context.Context) ([]domain.Stall, error) {
	var resp menuResponse
	if err := c.do(ctx, http.MethodGet, "/user/menu", nil, &resp); err != nil {
		return nil, err
	}

	stalls := make([]domain.Stall, 0, len(resp.Stalls))
	for _, s := range resp.Stalls {
		stalls = append(stalls, s.toDomain())
	}

	return stalls, nil
}

func (c *Client) CreateOrderIntent(ctx context.Context, req domain.OrderIntentRequest) (domain.OrderIntent, error) {
	items := make([]request.OrderItem, 0, len(req.Items))
	body := createOrderRequest{StallID: req.StallID}
	for _, item := range req.Items {
		items = append(items, request.OrderItem{ItemID: item.ItemID, Quantity: item.Quantity})
		body.Items = append(body.Items, createOrderItemDTO{ItemID: item.ItemID, Quantity: item.Quantity})
	}

	validated := request.CreateOrderRequest{StallID: req.StallID, Items: items}
	if err := validated.Validate(); err != nil {
		return domain.OrderIntent{}, fmt.Errorf("req.Validate -> %w", err)
	}

	var resp createOrderResponse
	if err := c.do(ctx, http.MethodPost, "/user/order/create", body, &resp); err != nil {
		return domain.OrderIntent{}, err
	}

	// The gateway order amount is already in minor units, the same unit as Money.
	return domain.OrderIntent{
		ID:       resp.ID,
		Amount:   domain.Money(math.Round(resp.Amount)),
		Currency: resp.Currency,
		KeyID:    resp.KeyID,
	}, nil
}

func (c *Client) VerifyOrder(ctx context.Context, v domain.OrderVerification) error {
	items := make([]request.OrderItem, 0, len(v.Items))
	body := verifyOrderRequest{
		RazorpayPaymentID: v.PaymentID,
		RazorpayOrderID:   v.OrderID,
		RazorpaySignature: v.Signature,
		StallID:           v.StallID,
		Amount:            v.Amount.Major(),
	}
	for _, item := range v.Items {
		items = append(items, request.OrderItem{ItemID: item.ItemID, Quantity: item.Quantity})
		body.Items = append(body.Items, orderItemDTO{
			ItemID:   item.ItemID,
			Name:     item.Name,
			Price:    item.UnitPrice.Major(),
			Quantity: item.Quantity,
		})
	}

	validated := request.VerifyOrderRequest{
		PaymentID: v.PaymentID,
		OrderID:   v.OrderID,
		Signature: v.Signature,
		StallID:   v.StallID,
		Items:     items,
		Amount:    int64(v.Amount),
	}
	if err := validated.Validate(); err != nil {
		return fmt.Errorf("req.Validate -> %w", err)
	}

	return c.do(ctx, http.MethodPost, "/user/order/verify", body, nil)
}

// ListStaff accepts a bare list or {"staff": [...]}.
func (c *Client) ListStaff(ctx context.Context) ([]domain.StaffMember, error) {
	var raw []byte
	if err := c.do(ctx, http.MethodGet, "/staff/list", nil, &raw); err != nil {
		return nil, err
	}

	var list []staffMemberDTO
	if err := json.Unmarshal(raw, &list); err != nil {
		var wrapped struct {
			Staff []staffMemberDTO `json:"staff"`
		}
		if err := json.Unmarshal(raw, &wrapped); err != nil {
			zap.L().Warn("unexpected staff list shape", zap.Error(err))
			return []domain.StaffMember{}, nil
		}
		list = wrapped.Staff
	}

	members := make([]domain.StaffMember, 0, len(list))
	for _, m := range list {
		members = append(members, domain.StaffMember{
			UID:    m.UID,
			Email:  m.Email,
			Role:   domain.StaffRole(strings.ToLower(m.Role)),
			Status: m.Status,
		})
	}

	return members, nil
}

func (c *Client) AddStaffMember(ctx context.Context, email string) error {
	req := request.AddMemberRequest{Email: email}
	if err := req.Validate(); err != nil {
		return fmt.Errorf("req.Validate -> %w", err)
	}

	return c.do(ctx, http.MethodPost, "/staff/add-member", addMemberRequest{Email: email}, nil)
}

func (c *Client) DeleteStaffMember(ctx context.Context, uid string) error {
	if uid == "" {
		return errUIDRequired
	}

	return c.do(ctx, http.MethodDelete, "/staff/"+url.PathEscape(uid), nil, nil)
}

func (c *Client) UpdateStaffEmail(ctx context.Context, uid, newEmail string) error {
	req := request.UpdateEmailRequest{UID: uid, NewEmail: newEmail}
	if err := req.Validate(); err != nil {
		return fmt.Errorf("req.Validate -> %w", err)
	}

	return c.do(ctx, http.MethodPut, "/staff/"+url.PathEscape(uid)+"/email", updateEmailRequest{NewEmail: newEmail}, nil)
}

func decodeOrders(raw []byte, path string) []domain.Order {
	var list []orderDTO
	if err := json.Unmarshal(raw, &list); err != nil {
		var wrapped struct {
			Orders []orderDTO `json:"orders"`
		}
		if err := json.Unmarshal(raw, &wrapped); err != nil || wrapped.Orders == nil {
			zap.L().Warn("unexpected orders shape, using empty list", zap.String("path", path), zap.Error(err))
			return []domain.Order{}
		}
		list = wrapped.Orders
	}

	orders := make([]domain.Order, 0, len(list))
	for _, dto := range list {
		orders = append(orders, dto.toDomain())
	}

	return orders
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("json.Marshal -> %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("http.NewRequestWithContext -> %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)

	if c.tokens != nil {
		token, err := c.tokens.Token(ctx, false)
		if err != nil {
			return fmt.Errorf("c.tokens.Token -> %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		zap.L().Warn("backend request failed",
			zap.String("method", method), zap.String("path", path),
			zap.String("request_id", requestID), zap.Error(err))
		return fmt.Errorf("%w: %s %s: %w", ErrNetwork, method, path, err)
	}
	defer resp.Body.Close()

	zap.L().Debug("backend request",
		zap.String("method", method), zap.String("path", path),
		zap.Int("status", resp.StatusCode), zap.Duration("took", time.Since(start)),
		zap.String("request_id", requestID))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newAPIError(resp)
	}

	switch out := out.(type) {
	case nil:
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	case *[]byte:
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("%w: %s %s: %w", ErrNetwork, method, path, err)
		}
		*out = data
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("decode %s %s -> %w", method, path, err)
	}

	return nil
}

func newAPIError(resp *http.Response) *APIError {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var payload struct {
		Message string `json:"message"`
		Detail  any    `json:"detail"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(data, &payload) == nil {
		switch {
		case payload.Message != "":
			apiErr.Message = payload.Message
		case payload.Detail != nil:
			if s, ok := payload.Detail.(string); ok {
				apiErr.Message = s
			} else if b, err := json.Marshal(payload.Detail); err == nil {
				apiErr.Message = string(b)
			}
		case payload.Error != "":
			apiErr.Message = payload.Error
		}
	}

	return apiErr
}
