package server

import (
	"membership-checkout-bridge/internal/handler"
	"membership-checkout-bridge/internal/service"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
)

type Server struct {
	echo            *echo.Echo
	webhookHandler  *handler.WebhookHandler
	checkoutHandler *handler.CheckoutHandler
}

func NewServer(processor service.WebhookProcessor, checkoutService service.CheckoutService, logger zerolog.Logger) *Server {
	e := echo.New()
	e.HideBanner = true

	e.Use(requestLogger(logger))
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	s := &Server{
		echo:            e,
		webhookHandler:  handler.NewWebhookHandler(processor, logger),
		checkoutHandler: handler.NewCheckoutHandler(checkoutService),
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.echo.Group("/api")

	api.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})

	api.GET("/config", s.checkoutHandler.GetConfig)
	api.GET("/products", s.checkoutHandler.GetProducts)
	api.POST("/checkout/session", s.checkoutHandler.CreateSession)
	api.POST("/billing-portal", s.checkoutHandler.BillingPortal)

	// Raw-body route: signature verification needs the exact wire bytes,
	// so nothing may bind or transform the body before the handler.
	api.POST("/stripe/webhook", s.webhookHandler.StripeWebhook)
}

func requestLogger(logger zerolog.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod: true,
		LogURI:    true,
		LogStatus: true,
		LogError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			evt := logger.Info()
			if v.Error != nil {
				evt = logger.Error().Err(v.Error)
			}
			evt.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Msg("request")
			return nil
		},
	})
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown() error {
	return s.echo.Close()
}
