package handler

import (
	"net/http"

	"app/internal/config"
	"app/internal/middleware"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

type TrackingHandler struct {
	uc *usecase.TrackingUsecase
}

// DI
func NewTrackingHandler(uc *usecase.TrackingUsecase) *TrackingHandler {
	return &TrackingHandler{uc: uc}
}

func (h *TrackingHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	auth := middleware.AuthEmail(cfg)
	e.POST("/add-tracking", h.add, auth)
	e.GET("/tracking/:trackingId", h.history, auth)
}

type AddTrackingRequest struct {
	TrackingID string `json:"trackingId"`
	Status     string `json:"status"`
	Location   string `json:"location"`
	Note       string `json:"note"`
}

func (h *TrackingHandler) add(c echo.Context) error {
	var req AddTrackingRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid body"})
	}

	out, err := h.uc.Add(c.Request().Context(), usecase.AddTrackingInput{
		TrackingID: req.TrackingID,
		Status:     req.Status,
		Location:   req.Location,
		Note:       req.Note,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *TrackingHandler) history(c echo.Context) error {
	out, err := h.uc.History(c.Request().Context(), c.Param("trackingId"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
