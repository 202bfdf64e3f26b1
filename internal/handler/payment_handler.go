package handler

import (
	"net/http"

	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

type PaymentHandler struct {
	uc *usecase.PaymentUsecase
}

// DI
func NewPaymentHandler(uc *usecase.PaymentUsecase) *PaymentHandler {
	return &PaymentHandler{uc: uc}
}

// checkout開始もreconcileも認証なし。session IDの所持が資格になる。
func (h *PaymentHandler) RegisterRoutes(e *echo.Echo) {
	e.POST("/create-checkout-session", h.createSession)
	e.PATCH("/payment-success", h.reconcile)
}

type CheckoutRequest struct {
	OrderID      string `json:"orderId"`
	ProductID    int64  `json:"productId"`
	TrackingID   string `json:"trackingId"`
	ProductTitle string `json:"productTitle"`
	TotalPrice   string `json:"totalPrice"`
	Email        string `json:"email"`
}

func (h *PaymentHandler) createSession(c echo.Context) error {
	var req CheckoutRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid body"})
	}

	out, err := h.uc.CreateCheckout(c.Request().Context(), usecase.CreateCheckoutInput{
		OrderID:      req.OrderID,
		ProductID:    req.ProductID,
		TrackingID:   req.TrackingID,
		ProductTitle: req.ProductTitle,
		TotalPrice:   req.TotalPrice,
		Email:        req.Email,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *PaymentHandler) reconcile(c echo.Context) error {
	out, err := h.uc.Reconcile(c.Request().Context(), c.QueryParam("session_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
