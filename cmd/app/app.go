package app

import (
	"context"
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/greenplate/campus-client/internal/api"
	"github.com/greenplate/campus-client/internal/backend"
	"github.com/greenplate/campus-client/internal/config"
	"github.com/greenplate/campus-client/internal/db"
	"github.com/greenplate/campus-client/internal/domain"
	"github.com/greenplate/campus-client/internal/identity"
	"github.com/greenplate/campus-client/internal/logger"
	"github.com/greenplate/campus-client/internal/payment"
	"github.com/greenplate/campus-client/internal/repository"
	"github.com/greenplate/campus-client/internal/repository/dao"
	"github.com/greenplate/campus-client/internal/service"
	"github.com/greenplate/campus-client/internal/state"
	"github.com/greenplate/campus-client/internal/tui"
)

const defaultConfigPath = "./cmd/app/config.yml"

func Start() error {
	configPath := os.Getenv("GREENPLATE_CONFIG")
	if configPath == "" {
		configPath = defaultConfigPath
	}

	conf, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to initialize config -> %w", err)
	}

	if err = logger.Init(conf.App.Environment, conf.App.LogLevel, conf.App.LogFile); err != nil {
		return fmt.Errorf("failed to initialize logger -> %w", err)
	}
	defer func() { _ = zap.L().Sync() }()

	config.Watch(configPath, func(level string) {
		if err := logger.SetLevel(level); err != nil {
			zap.L().Warn("ignoring log level", zap.String("level", level), zap.Error(err))
		}
	})

	policy, err := domain.ParseClaimPolicy(conf.Deals.ClaimPolicy)
	if err != nil {
		return fmt.Errorf("failed to parse claim policy -> %w", err)
	}

	gormDB, err := db.Open(conf.Store)
	if err != nil {
		return fmt.Errorf("failed to initialize database -> %w", err)
	}
	if err = dao.InitTables(gormDB); err != nil {
		return fmt.Errorf("failed to initialize tables -> %w", err)
	}

	cartRepo := repository.NewCartRepository(dao.NewCartDAO(gormDB))
	dealRepo := repository.NewDealRepository(dao.NewDealDAO(gormDB))
	orderRepo := repository.NewOrderRepository(dao.NewOrderDAO(gormDB))

	firebase := identity.NewFirebase(identity.Config{
		APIKey:      conf.Firebase.APIKey,
		IdentityURL: conf.Firebase.IdentityURL,
		TokenURL:    conf.Firebase.TokenURL,
		RefreshSkew: conf.Firebase.RefreshSkew,
		Timeout:     conf.Backend.Timeout,
	})
	client := backend.NewClient(conf.Backend.BaseURL, conf.Backend.Timeout, firebase)

	sdk := payment.NewSDKLoader(conf.Payment.SDKURL, conf.Backend.Timeout)
	sessions := payment.NewSessions()
	gateway := payment.NewRazorpay(sdk, sessions, conf.API.BaseURL, payment.BrowserLauncher(conf.Payment.OpenBrowser))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	server := api.NewServer(conf, sessions, sdk)
	ln, err := server.Listen()
	if err != nil {
		return fmt.Errorf("failed to start the widget host -> %w", err)
	}
	serverErr := make(chan error, 1)
	go func() {
		err := server.ServeListener(ctx, ln)
		if err != nil {
			zap.L().Error("widget host stopped with error", zap.Error(err))
		}
		serverErr <- err
	}()

	store := state.NewStore()
	store.OnChange(func(prev, next state.Snapshot) {
		if prev.Session.Role != next.Session.Role || prev.Session.Identity.UID != next.Session.Identity.UID {
			zap.L().Info("session changed",
				zap.String("uid", next.Session.Identity.UID),
				zap.String("role", string(next.Session.Role)),
				zap.Bool("verified", next.Session.Verified))
		}
	})

	menu := service.NewMenuService(client, conf.Menu.CacheTTL)
	cart := service.NewCartService(cartRepo)
	orders := service.NewOrderService(store, client, orderRepo)
	deals := service.NewDealService(store, dealRepo, menu, orders, policy, conf.Deals.PickupPrefix)
	checkout := service.NewCheckoutService(store, cart, client, gateway, orders, service.Merchant{
		Name:        conf.Payment.MerchantName,
		Description: conf.Payment.Description,
		ThemeColor:  conf.Payment.ThemeColor,
	})
	auth := service.NewAuthService(firebase, client, store, cart, orders, service.VerificationMode(conf.Verification.Mode))
	session := service.NewSessionService(store, firebase, cart, menu)

	app := tui.NewApp(ctx, tui.Deps{
		State:     store,
		Auth:      auth,
		Session:   session,
		Cart:      cart,
		Checkout:  checkout,
		Orders:    orders,
		Deals:     deals,
		Menu:      menu,
		Team:      service.NewStaffService(store, client),
		Dashboard: service.NewDashboardService(store, dealRepo, orderRepo, policy),
	})

	_, runErr := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if errors.Is(runErr, tea.ErrProgramKilled) {
		runErr = nil
	}

	cancel()
	<-serverErr

	if runErr != nil {
		return fmt.Errorf("failed to run the terminal app -> %w", runErr)
	}

	return nil
}
