package middleware

import (
	"errors"
	"net/http"
	"strings"

	"app/internal/config"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
)

const (
	CtxEmailKey = "email" // string
	CtxRoleKey  = "role"  // string
)

// bearerトークン検証の認証ゲート。
// 欠落・形式不正・検証失敗はすべて401。成功時は検証済みemailをcontextへ入れる。
func AuthEmail(cfg config.Config) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			//Authorizationヘッダを取得
			authz := c.Request().Header.Get("Authorization")
			if authz == "" {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			//Bearer形式か確認してtokenを抜く
			parts := strings.SplitN(authz, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}
			rawToken := strings.TrimSpace(parts[1])
			if rawToken == "" {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			//JWTをパースして検証する
			token, err := jwt.Parse(rawToken, func(t *jwt.Token) (interface{}, error) {
				if t.Method != jwt.SigningMethodHS256 {
					return nil, errors.New("unexpected signing method")
				}
				return []byte(cfg.JWTSecret), nil
			})
			if err != nil || token == nil || !token.Valid {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			//検証済みemailを取り出す
			email, ok := claims["email"].(string)
			if !ok || strings.TrimSpace(email) == "" {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			//roleは任意。なければuser扱い。
			role, _ := claims["role"].(string)
			if role == "" {
				role = "user"
			}

			//contextへ保存
			c.Set(CtxEmailKey, email)
			c.Set(CtxRoleKey, role)

			return next(c)
		}
	}
}

type errorResponse struct {
	Message string `json:"message"`
}

func errorJSON(msg string) errorResponse {
	return errorResponse{Message: msg}
}
