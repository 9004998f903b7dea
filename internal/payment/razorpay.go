package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/greenplate/campus-client/internal/domain"
)

const (
	ReasonCancelled = "payment cancelled"
	ReasonDefault   = "Payment failed"
)

var errSDKNotLoaded = errors.New("payment SDK not loaded")

// Launcher shows the checkout page at url to the user.
type Launcher func(url string) error

// Razorpay drives the hosted Razorpay checkout through the local widget host.
type Razorpay struct {
	sdk      *SDKLoader
	sessions *Sessions
	hostURL  string
	launch   Launcher
}

func NewRazorpay(sdk *SDKLoader, sessions *Sessions, hostURL string, launch Launcher) *Razorpay {
	return &Razorpay{
		sdk:      sdk,
		sessions: sessions,
		hostURL:  strings.TrimRight(hostURL, "/"),
		launch:   launch,
	}
}

func (g *Razorpay) LoadSDK(ctx context.Context) error {
	_, err := g.sdk.Load(ctx)
	return err
}

// Open shows the widget and waits for its single outcome. Failures while
// opening, user dismissal and ctx cancellation all come back as failed
// outcomes; only a second concurrent Open is an error.
func (g *Razorpay) Open(ctx context.Context, opts domain.WidgetOptions) (domain.PaymentOutcome, error) {
	if _, ok := g.sdk.Script(); !ok {
		return failed(errSDKNotLoaded.Error()), nil
	}

	sess, err := g.sessions.open(opts)
	if err != nil {
		return domain.PaymentOutcome{}, err
	}
	defer g.sessions.close(sess.id)

	url := fmt.Sprintf("%s/checkout/%s", g.hostURL, sess.id)
	zap.L().Info("payment window opened", zap.String("url", url), zap.String("order_id", opts.OrderID))

	if err := g.launch(url); err != nil {
		zap.L().Warn("payment window launch failed", zap.Error(err))
		return failed(err.Error()), nil
	}

	select {
	case outcome := <-sess.result:
		if outcome.Failed && outcome.Reason == "" {
			outcome.Reason = ReasonDefault
		}
		return outcome, nil
	case <-ctx.Done():
		if err := g.sessions.Resolve(sess.id, failed(ReasonCancelled)); err != nil {
			// The page resolved at the same moment; its outcome wins.
			return <-sess.result, nil
		}
		<-sess.result
		return failed(ReasonCancelled), nil
	}
}

func failed(reason string) domain.PaymentOutcome {
	return domain.PaymentOutcome{Failed: true, Reason: reason}
}
