package usecase

import (
	"context"
	"testing"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type UserRepoMock struct{ mock.Mock }

func (m *UserRepoMock) FindByEmail(ctx context.Context, email string) (model.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(model.User)
	return u, args.Error(1)
}

func (m *UserRepoMock) Create(ctx context.Context, u model.User) (model.User, error) {
	args := m.Called(ctx, u)
	created, _ := args.Get(0).(model.User)
	return created, args.Error(1)
}

func (m *UserRepoMock) List(ctx context.Context, f repo.UserFilter) ([]model.User, error) {
	args := m.Called(ctx, f)
	items, _ := args.Get(0).([]model.User)
	return items, args.Error(1)
}

func (m *UserRepoMock) UpdateByEmail(ctx context.Context, email string, fields map[string]interface{}) error {
	args := m.Called(ctx, email, fields)
	return args.Error(0)
}

func TestUserUsecase_Register_InvalidEmail(t *testing.T) {
	uc := NewUserUsecase(new(UserRepoMock))

	_, err := uc.Register(context.Background(), RegisterUserInput{Email: "not-an-email"})
	assertErrContains(t, err, "invalid email")
}

func TestUserUsecase_Register_CreatesWithPendingStatus(t *testing.T) {
	users := new(UserRepoMock)
	users.On("FindByEmail", mock.Anything, "new@example.com").Return(model.User{}, repo.ErrNotFound)
	users.On("Create", mock.Anything, mock.MatchedBy(func(u model.User) bool {
		return u.Email == "new@example.com" &&
			u.Role == model.RoleUser &&
			u.AccountStatus == model.AccountStatusPending
	})).Return(model.User{ID: 1, Email: "new@example.com", Role: model.RoleUser}, nil)

	uc := NewUserUsecase(users)

	out, err := uc.Register(context.Background(), RegisterUserInput{
		Email:       "new@example.com",
		DisplayName: "New User",
	})
	require.NoError(t, err)
	require.NotNil(t, out.User)
	assert.Equal(t, "user created", out.Message)
	users.AssertExpectations(t)
}

// 既存emailはエラーではなくメッセージ（冪等）
func TestUserUsecase_Register_ExistingEmailIsIdempotent(t *testing.T) {
	users := new(UserRepoMock)
	users.On("FindByEmail", mock.Anything, "taken@example.com").Return(model.User{ID: 1, Email: "taken@example.com"}, nil)

	uc := NewUserUsecase(users)

	out, err := uc.Register(context.Background(), RegisterUserInput{Email: "taken@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "user already exists", out.Message)
	assert.Nil(t, out.User)
	users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

// 同時登録でinsert側が負けたケースも「既に存在」
func TestUserUsecase_Register_DuplicateInsertRace(t *testing.T) {
	users := new(UserRepoMock)
	users.On("FindByEmail", mock.Anything, "race@example.com").Return(model.User{}, repo.ErrNotFound)
	users.On("Create", mock.Anything, mock.Anything).Return(model.User{}, repo.ErrDuplicate)

	uc := NewUserUsecase(users)

	out, err := uc.Register(context.Background(), RegisterUserInput{Email: "race@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "user already exists", out.Message)
}

// 未登録emailのroleはデフォルトのuser。エラーにしない。
func TestUserUsecase_GetRole_DefaultsToUser(t *testing.T) {
	users := new(UserRepoMock)
	users.On("FindByEmail", mock.Anything, "ghost@example.com").Return(model.User{}, repo.ErrNotFound)

	uc := NewUserUsecase(users)

	out, err := uc.GetRole(context.Background(), "ghost@example.com")
	require.NoError(t, err)
	assert.Equal(t, model.RoleUser, out.Role)
}

func TestUserUsecase_GetRole_ReturnsStoredRole(t *testing.T) {
	users := new(UserRepoMock)
	users.On("FindByEmail", mock.Anything, "boss@example.com").Return(model.User{Role: model.RoleAdmin}, nil)

	uc := NewUserUsecase(users)

	out, err := uc.GetRole(context.Background(), "boss@example.com")
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, out.Role)
}

func TestUserUsecase_GetByEmail_MissingParam(t *testing.T) {
	uc := NewUserUsecase(new(UserRepoMock))

	_, err := uc.GetByEmail(context.Background(), "")
	assertErrContains(t, err, "email is required")
}

// 見つからない場合はnil（200でnullを返す旧挙動の踏襲）
func TestUserUsecase_GetByEmail_NotFoundReturnsNil(t *testing.T) {
	users := new(UserRepoMock)
	users.On("FindByEmail", mock.Anything, "ghost@example.com").Return(model.User{}, repo.ErrNotFound)

	uc := NewUserUsecase(users)

	out, err := uc.GetByEmail(context.Background(), "ghost@example.com")
	require.NoError(t, err)
	assert.Nil(t, out)
}

func TestUserUsecase_Update_Validation(t *testing.T) {
	uc := NewUserUsecase(new(UserRepoMock))

	_, err := uc.Update(context.Background(), UpdateUserInput{})
	assertErrContains(t, err, "email is required")

	_, err = uc.Update(context.Background(), UpdateUserInput{Email: "a@b.co"})
	assertErrContains(t, err, "nothing to update")

	_, err = uc.Update(context.Background(), UpdateUserInput{Email: "a@b.co", Role: "emperor"})
	assertErrContains(t, err, "invalid role")

	_, err = uc.Update(context.Background(), UpdateUserInput{Email: "a@b.co", AccountStatus: "frozen"})
	assertErrContains(t, err, "invalid account status")
}

func TestUserUsecase_Update_PatchesRoleAndStatus(t *testing.T) {
	users := new(UserRepoMock)
	users.On("UpdateByEmail", mock.Anything, "a@b.co", map[string]interface{}{
		"role":           "manager",
		"account_status": "active",
	}).Return(nil)

	uc := NewUserUsecase(users)

	out, err := uc.Update(context.Background(), UpdateUserInput{
		Email:         "a@b.co",
		Role:          "manager",
		AccountStatus: "active",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, out["matchedCount"])
	users.AssertExpectations(t)
}
