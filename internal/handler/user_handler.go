package handler

import (
	"net/http"

	"app/internal/config"
	"app/internal/middleware"
	repo "app/internal/repository"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

type UserHandler struct {
	uc *usecase.UserUsecase
}

// DI
func NewUserHandler(uc *usecase.UserUsecase) *UserHandler {
	return &UserHandler{uc: uc}
}

func (h *UserHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	e.POST("/users", h.register)
	e.GET("/users", h.getByEmail)
	e.GET("/users/:email/role", h.getRole)
	e.GET("/manage-users", h.list)

	//role・accountStatusの変更はadminのみ
	e.PATCH("/update-user", h.update, middleware.AuthEmail(cfg), middleware.AdminRoleGuard())
}

type UserRegisterRequest struct {
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	Role        string `json:"role"`
}

func (h *UserHandler) register(c echo.Context) error {
	var req UserRegisterRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid body"})
	}

	out, err := h.uc.Register(c.Request().Context(), usecase.RegisterUserInput{
		Email:       req.Email,
		DisplayName: req.DisplayName,
		Role:        req.Role,
	})
	if err != nil {
		return writeError(c, err)
	}

	if out.User == nil {
		//既存emailは登録せずメッセージだけ返す
		return c.JSON(http.StatusOK, out)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *UserHandler) getByEmail(c echo.Context) error {
	out, err := h.uc.GetByEmail(c.Request().Context(), c.QueryParam("email"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *UserHandler) getRole(c echo.Context) error {
	out, err := h.uc.GetRole(c.Request().Context(), c.Param("email"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *UserHandler) list(c echo.Context) error {
	out, err := h.uc.List(c.Request().Context(), repo.UserFilter{
		Search: c.QueryParam("search"),
		Role:   c.QueryParam("role"),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

type UserUpdateRequest struct {
	Email         string `json:"email"`
	Role          string `json:"role"`
	AccountStatus string `json:"accountStatus"`
}

func (h *UserHandler) update(c echo.Context) error {
	var req UserUpdateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid body"})
	}

	out, err := h.uc.Update(c.Request().Context(), usecase.UpdateUserInput{
		Email:         req.Email,
		Role:          req.Role,
		AccountStatus: req.AccountStatus,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
