package usecase

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"strings"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"go.uber.org/zap"
)

type UserUsecase struct {
	users repo.UserRepository
}

// DI
func NewUserUsecase(users repo.UserRepository) *UserUsecase {
	return &UserUsecase{users: users}
}

type RegisterUserInput struct {
	Email       string
	DisplayName string
	Role        string
}

type RegisterUserOutput struct {
	Message string      `json:"message"`
	User    *model.User `json:"user,omitempty"`
}

// 登録はemailで冪等。既存emailはエラーではなくメッセージを返す。
func (u *UserUsecase) Register(ctx context.Context, in RegisterUserInput) (RegisterUserOutput, error) {
	email := strings.TrimSpace(in.Email)
	if email == "" || !isEmailLike(email) {
		return RegisterUserOutput{}, NewHTTPError(http.StatusBadRequest, "invalid email")
	}

	_, err := u.users.FindByEmail(ctx, email)
	if err == nil {
		return RegisterUserOutput{Message: "user already exists"}, nil
	}
	if !errors.Is(err, repo.ErrNotFound) {
		zap.L().Error("user lookup failed", zap.String("email", email), zap.Error(err))
		return RegisterUserOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	role := model.RoleUser
	switch model.Role(in.Role) {
	case model.RoleManager, model.RoleAdmin:
		role = model.Role(in.Role)
	}

	created, err := u.users.Create(ctx, model.User{
		Email:         email,
		DisplayName:   strings.TrimSpace(in.DisplayName),
		Role:          role,
		AccountStatus: model.AccountStatusPending,
	})
	if err != nil {
		// 同時登録で先を越されたケースも「既に存在」で返す
		if errors.Is(err, repo.ErrDuplicate) {
			return RegisterUserOutput{Message: "user already exists"}, nil
		}
		zap.L().Error("user create failed", zap.String("email", email), zap.Error(err))
		return RegisterUserOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return RegisterUserOutput{Message: "user created", User: &created}, nil
}

// emailで1件取得。見つからなければnilを返す（404にしない）。
func (u *UserUsecase) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, NewHTTPError(http.StatusBadRequest, "email is required")
	}

	user, err := u.users.FindByEmail(ctx, email)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		zap.L().Error("user lookup failed", zap.String("email", email), zap.Error(err))
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return &user, nil
}

type RoleOutput struct {
	Role model.Role `json:"role"`
}

// 未登録ユーザーはデフォルトroleを返す。エラーにはしない。
func (u *UserUsecase) GetRole(ctx context.Context, email string) (RoleOutput, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return RoleOutput{}, NewHTTPError(http.StatusBadRequest, "email is required")
	}

	user, err := u.users.FindByEmail(ctx, email)
	if errors.Is(err, repo.ErrNotFound) {
		return RoleOutput{Role: model.RoleUser}, nil
	}
	if err != nil {
		zap.L().Error("user lookup failed", zap.String("email", email), zap.Error(err))
		return RoleOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return RoleOutput{Role: user.Role}, nil
}

func (u *UserUsecase) List(ctx context.Context, f repo.UserFilter) ([]model.User, error) {
	items, err := u.users.List(ctx, f)
	if err != nil {
		zap.L().Error("user list failed", zap.Error(err))
		return []model.User{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return items, nil
}

type UpdateUserInput struct {
	Email         string
	Role          string
	AccountStatus string
}

// role/accountStatusの部分更新。最低1フィールド必須。
func (u *UserUsecase) Update(ctx context.Context, in UpdateUserInput) (map[string]interface{}, error) {
	email := strings.TrimSpace(in.Email)
	if email == "" {
		return nil, NewHTTPError(http.StatusBadRequest, "email is required")
	}

	fields := map[string]interface{}{}

	if in.Role != "" {
		switch model.Role(in.Role) {
		case model.RoleUser, model.RoleManager, model.RoleAdmin:
			fields["role"] = in.Role
		default:
			return nil, NewHTTPError(http.StatusBadRequest, "invalid role")
		}
	}

	if in.AccountStatus != "" {
		switch model.AccountStatus(in.AccountStatus) {
		case model.AccountStatusPending, model.AccountStatusActive, model.AccountStatusBlocked:
			fields["account_status"] = in.AccountStatus
		default:
			return nil, NewHTTPError(http.StatusBadRequest, "invalid account status")
		}
	}

	if len(fields) == 0 {
		return nil, NewHTTPError(http.StatusBadRequest, "nothing to update")
	}

	if err := u.users.UpdateByEmail(ctx, email, fields); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			// 旧実装はmatchなしでも200を返す。更新件数だけ伝える。
			return map[string]interface{}{"matchedCount": 0, "modifiedCount": 0}, nil
		}
		zap.L().Error("user update failed", zap.String("email", email), zap.Error(err))
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return map[string]interface{}{"matchedCount": 1, "modifiedCount": 1}, nil
}

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// 簡易メール形式をチェック
func isEmailLike(s string) bool {
	return emailRe.MatchString(s)
}
