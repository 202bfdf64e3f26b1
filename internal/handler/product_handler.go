package handler

import (
	"net/http"
	"strconv"

	"app/internal/config"
	"app/internal/middleware"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

type ErrorResponse struct {
	Message string `json:"message"`
}

func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}
	if he, ok := usecase.AsHTTPError(err); ok {
		return c.JSON(he.Status, ErrorResponse{Message: he.Message})
	}

	//500
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "internal error"})
}

// 認証ゲートが入れた検証済みemailを取り出す
func getEmailFromContext(c echo.Context) (string, bool) {
	raw := c.Get(middleware.CtxEmailKey)
	email, ok := raw.(string)
	if !ok || email == "" {
		return "", false
	}
	return email, true
}

// 商品カタログのAPI
type ProductHandler struct {
	uc *usecase.ProductUsecase
}

// DI
func NewProductHandler(uc *usecase.ProductUsecase) *ProductHandler {
	return &ProductHandler{uc: uc}
}

// 公開ルートと認証必須ルートを登録
func (h *ProductHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	e.GET("/all-products", h.list)
	e.GET("/all-products/display", h.listPaged)
	e.GET("/latest-products", h.latest)
	e.GET("/product/:id", h.detail)
	e.POST("/add-product", h.create)

	auth := middleware.AuthEmail(cfg)
	e.GET("/products-by-email", h.listByEmail, auth)
	e.PATCH("/product/:id", h.update, auth)
	e.DELETE("/product/:id", h.delete, auth)
	e.PATCH("/products/:id/show-on-home", h.showOnHome, auth)
}

func (h *ProductHandler) list(c echo.Context) error {
	out, err := h.uc.List(c.Request().Context(), c.QueryParam("search"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ProductHandler) listPaged(c echo.Context) error {
	// page（default 1）
	page := 1
	if v := c.QueryParam("page"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid page"})
		}
		page = p
	}

	// limit（default 9）
	limit := 9
	if v := c.QueryParam("limit"); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid limit"})
		}
		limit = l
	}

	out, err := h.uc.ListPaged(c.Request().Context(), c.QueryParam("search"), page, limit)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ProductHandler) latest(c echo.Context) error {
	out, err := h.uc.ListLatest(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ProductHandler) listByEmail(c echo.Context) error {
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

func (h *ProductHandler) detail(c echo.Context) error {
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

type ProductCreateRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Price       string `json:"price"`
	Email       string `json:"email"`
	ShowOnHome  bool   `json:"showOnHome"`
}

func (h *ProductHandler) create(c echo.Context) error {
	var req ProductCreateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid body"})
	}

	out, err := h.uc.Create(c.Request().Context(), usecase.CreateProductInput{
		Title:        req.Title,
		Description:  req.Description,
		Category:     req.Category,
		Price:        req.Price,
		CreatorEmail: req.Email,
		ShowOnHome:   req.ShowOnHome,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

type ProductUpdateRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
	Price       *string `json:"price"`
}

func (h *ProductHandler) update(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid id"})
	}

	var req ProductUpdateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid body"})
	}

	out, err := h.uc.Update(c.Request().Context(), id, usecase.UpdateProductInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Price:       req.Price,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ProductHandler) delete(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid id"})
	}

	out, err := h.uc.Delete(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

type ShowOnHomeRequest struct {
	ShowOnHome bool `json:"showOnHome"`
}

func (h *ProductHandler) showOnHome(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid id"})
	}

	var req ShowOnHomeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid body"})
	}

	out, err := h.uc.SetShowOnHome(c.Request().Context(), id, req.ShowOnHome)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
