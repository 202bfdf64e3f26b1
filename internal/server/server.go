package server

import (
	"net/http"
	"time"

	"app/internal/config"
	"app/internal/handler"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type Handlers struct {
	User     *handler.UserHandler
	Product  *handler.ProductHandler
	Order    *handler.OrderHandler
	Tracking *handler.TrackingHandler
	Payment  *handler.PaymentHandler
}

// New はechoを組み立てて返す。起動はStartで行う。
func New(cfg config.Config, h Handlers) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.Use(echomw.Recover())
	e.Use(echomw.CORS())
	e.Use(requestLogger())

	e.GET("/", func(c echo.Context) error {
		return c.String(http.StatusOK, "Garments Tracker is Running")
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	h.User.RegisterRoutes(e, cfg)
	h.Product.RegisterRoutes(e, cfg)
	h.Order.RegisterRoutes(e, cfg)
	h.Tracking.RegisterRoutes(e, cfg)
	h.Payment.RegisterRoutes(e)

	return e
}

func Start(e *echo.Echo, cfg config.Config) error {
	addr := cfg.Port
	if addr[0] != ':' {
		addr = ":" + addr
	}

	//外部I/O待ちでハンドラが無限に塞がらないように上限を入れる
	s := &http.Server{
		Addr:         addr,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	zap.L().Info("garments tracker listening", zap.String("addr", addr))
	return e.StartServer(s)
}

// zapでmethod/path/status/latencyを出す
func requestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			zap.L().Info("request",
				zap.String("method", c.Request().Method),
				zap.String("path", c.Request().URL.Path),
				zap.Int("status", c.Response().Status),
				zap.Duration("latency", time.Since(start)),
			)
			return err
		}
	}
}
