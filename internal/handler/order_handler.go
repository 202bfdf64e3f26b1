package handler

import (
	"context"
	"net/http"
	"strconv"

	"app/internal/config"
	"app/internal/domain/model"
	"app/internal/middleware"
	repo "app/internal/repository"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

type OrderHandler struct {
	uc *usecase.OrderUsecase
}

// DI
func NewOrderHandler(uc *usecase.OrderUsecase) *OrderHandler {
	return &OrderHandler{uc: uc}
}

func (h *OrderHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	e.GET("/all-orders", h.list)

	auth := middleware.AuthEmail(cfg)
	e.POST("/orders", h.create, auth)
	e.GET("/order/:id", h.detail, auth)
	e.GET("/orders-by-email", h.listByEmail, auth)
	e.GET("/orders/pending", h.listPendingForSeller, auth)
	e.GET("/orders/approved", h.listApprovedForSeller, auth)
	e.PATCH("/orders/:id/approved", h.approve, auth)
	e.PATCH("/orders/:id/reject", h.reject, auth)
	e.PATCH("/orders/cancel/:id", h.cancel, auth)
}

type OrderCreateRequest struct {
	ProductID int64  `json:"productId"`
	Note      string `json:"note"`
}

func (h *OrderHandler) create(c echo.Context) error {
	email, ok := getEmailFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "unauthorized"})
	}

	var req OrderCreateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid body"})
	}

	out, err := h.uc.Place(c.Request().Context(), email, usecase.PlaceOrderInput{
		ProductID: req.ProductID,
		Note:      req.Note,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *OrderHandler) list(c echo.Context) error {
	out, err := h.uc.List(c.Request().Context(), repo.OrderFilter{
		Search: c.QueryParam("search"),
		Status: c.QueryParam("status"),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) detail(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid id"})
	}

	out, err := h.uc.Get(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) listByEmail(c echo.Context) error {
	email, ok := getEmailFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "unauthorized"})
	}

	out, err := h.uc.ListByEmail(c.Request().Context(), email, c.QueryParam("search"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) listPendingForSeller(c echo.Context) error {
	return h.listForSeller(c, model.OrderStatusPending)
}

func (h *OrderHandler) listApprovedForSeller(c echo.Context) error {
	return h.listForSeller(c, model.OrderStatusApproved)
}

func (h *OrderHandler) listForSeller(c echo.Context, status model.OrderStatus) error {
	email, ok := getEmailFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "unauthorized"})
	}

	out, err := h.uc.ListBySeller(c.Request().Context(), email, status)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) approve(c echo.Context) error {
	return h.transition(c, h.uc.Approve)
}

func (h *OrderHandler) reject(c echo.Context) error {
	return h.transition(c, h.uc.Reject)
}

func (h *OrderHandler) cancel(c echo.Context) error {
	return h.transition(c, h.uc.Cancel)
}

func (h *OrderHandler) transition(c echo.Context, fn func(ctx context.Context, id int64) (model.Order, error)) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid id"})
	}

	out, err := fn(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
