package handler

import (
	"net/http"

	"membership-checkout-bridge/internal/dto"
	"membership-checkout-bridge/internal/service"

	"github.com/labstack/echo/v4"
)

type CheckoutHandler struct {
	checkoutService service.CheckoutService
}

func NewCheckoutHandler(checkoutService service.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{checkoutService: checkoutService}
}

func (h *CheckoutHandler) CreateSession(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.CheckoutSessionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	resp, err := h.checkoutService.CreateSession(ctx, &req)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	return c.JSON(http.StatusOK, resp)
}

func (h *CheckoutHandler) BillingPortal(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.BillingPortalRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	resp, err := h.checkoutService.BillingPortal(ctx, req.CustomerID)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	return c.JSON(http.StatusOK, resp)
}

func (h *CheckoutHandler) GetConfig(c echo.Context) error {
	return c.JSON(http.StatusOK, h.checkoutService.PlanConfig())
}

func (h *CheckoutHandler) GetProducts(c echo.Context) error {
	ctx := c.Request().Context()

	resp, err := h.checkoutService.ProductDetails(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}

	return c.JSON(http.StatusOK, resp)
}
