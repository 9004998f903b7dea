package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/greenplate/campus-client/docs"
	v1 "github.com/greenplate/campus-client/internal/api/handler/v1"
	"github.com/greenplate/campus-client/internal/api/middleware"
	"github.com/greenplate/campus-client/internal/config"
)

const (
	basePath        = "/api/v1"
	shutdownTimeout = 5 * time.Second
)

// Server hosts the payment widget page and receives its callbacks.
type Server struct {
	Config *config.AppConfig
	Router *gin.Engine
}

func NewServer(conf *config.AppConfig, sessions v1.CheckoutSessions, sdk v1.SDKSource) *Server {
	gin.SetMode(conf.Gin.Mode)
	engine := gin.New()
	engine.SetHTMLTemplate(v1.CheckoutPage)

	s := &Server{
		Config: conf,
		Router: engine,
	}

	s.MountMiddlewares()

	checkoutHandler := v1.NewCheckoutHandler(sessions, sdk, basePath)
	s.MountHandlers(checkoutHandler)

	return s
}

func (s *Server) MountMiddlewares() {
	s.Router.Use(middleware.Logger())
	s.Router.Use(gin.Recovery())
	s.Router.Use(requestid.New())
	s.Router.Use(middleware.ConfigCORS(s.Config.API.AllowedCORSDomains))
}

func (s *Server) MountHandlers(checkoutHandler *v1.CheckoutHandler) {
	s.Router.GET("/checkout/:sessionID", checkoutHandler.HandleCheckoutPage)
	s.Router.GET("/sdk/checkout.js", checkoutHandler.HandleSDK)

	callbacks := s.Router.Group(basePath)
	{
		callbacks.POST("/checkout/:sessionID/success", checkoutHandler.HandlePaymentSuccess)
		callbacks.POST("/checkout/:sessionID/failure", checkoutHandler.HandlePaymentFailure)
	}

	s.Router.GET("/", v1.HandleHealthcheck)

	if !s.Config.API.EnableSwagger {
		return
	}

	docs.SwaggerInfo.Host = s.Config.API.BaseURL
	docs.SwaggerInfo.BasePath = "/"
	docs.SwaggerInfo.Title = "GreenPlate payment widget host"
	docs.SwaggerInfo.Description = "Local pages and callbacks used to run the hosted payment widget."
	docs.SwaggerInfo.Version = "1.0"
	s.Router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))
}

// Listen binds the configured loopback port.
func (s *Server) Listen() (net.Listener, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:"+s.Config.API.Port)
	if err != nil {
		return nil, fmt.Errorf("net.Listen -> %w", err)
	}

	return ln, nil
}

// Serve listens on the configured port until ctx is done, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context) error {
	ln, err := s.Listen()
	if err != nil {
		return err
	}

	return s.ServeListener(ctx, ln)
}

func (s *Server) ServeListener(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zap.L().Info(fmt.Sprintf("widget host listening at %v", ln.Addr()))
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("srv.Serve -> %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("srv.Shutdown -> %w", err)
	}

	return nil
}
