package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"go.uber.org/zap"
)

const homeProductLimit = 6

type ProductUsecase struct {
	products repo.ProductRepository
}

// DI
func NewProductUsecase(products repo.ProductRepository) *ProductUsecase {
	return &ProductUsecase{products: products}
}

func (u *ProductUsecase) List(ctx context.Context, search string) ([]model.Product, error) {
	items, err := u.products.List(ctx, repo.ProductFilter{Search: search})
	if err != nil {
		zap.L().Error("product list failed", zap.Error(err))
		return []model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return items, nil
}

type ProductPageOutput struct {
	Products []model.Product `json:"products"`
	Total    int64           `json:"total"`
}

// ページネーション付き一覧。skip = (page-1)*limit。
func (u *ProductUsecase) ListPaged(ctx context.Context, search string, page, limit int) (ProductPageOutput, error) {
	if page < 1 {
		return ProductPageOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if limit < 1 || limit > 100 {
		return ProductPageOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}

	items, total, err := u.products.ListPaged(ctx, repo.ProductFilter{
		Search: search,
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		zap.L().Error("product page failed", zap.Error(err))
		return ProductPageOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return ProductPageOutput{Products: items, Total: total}, nil
}

// ホーム表示フラグ付きの新着を上位6件返す
func (u *ProductUsecase) ListLatest(ctx context.Context) ([]model.Product, error) {
	items, err := u.products.ListHome(ctx, homeProductLimit)
	if err != nil {
		zap.L().Error("latest products failed", zap.Error(err))
		return []model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return items, nil
}

// 出品者本人の商品一覧
func (u *ProductUsecase) ListByEmail(ctx context.Context, email, search string) ([]model.Product, error) {
	if strings.TrimSpace(email) == "" {
		return []model.Product{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	items, err := u.products.List(ctx, repo.ProductFilter{Search: search, Email: email})
	if err != nil {
		zap.L().Error("seller products failed", zap.String("email", email), zap.Error(err))
		return []model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return items, nil
}

// 見つからなければnilを返す（404にしない）。
func (u *ProductUsecase) Get(ctx context.Context, id int64) (*model.Product, error) {
	if id <= 0 {
		return nil, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	p, err := u.products.FindByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		zap.L().Error("product lookup failed", zap.Int64("id", id), zap.Error(err))
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return &p, nil
}

type CreateProductInput struct {
	Title        string
	Description  string
	Category     string
	Price        string
	CreatorEmail string
	ShowOnHome   bool
}

func (u *ProductUsecase) Create(ctx context.Context, in CreateProductInput) (model.Product, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "title is required")
	}
	email := strings.TrimSpace(in.CreatorEmail)
	if email == "" || !isEmailLike(email) {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "invalid creator email")
	}

	created, err := u.products.Create(ctx, model.Product{
		Title:        title,
		Description:  in.Description,
		Category:     in.Category,
		Price:        in.Price,
		CreatorEmail: email,
		ShowOnHome:   in.ShowOnHome,
	})
	if err != nil {
		zap.L().Error("product create failed", zap.Error(err))
		return model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return created, nil
}

type UpdateProductInput struct {
	Title       *string
	Description *string
	Category    *string
	Price       *string
}

func (u *ProductUsecase) Update(ctx context.Context, id int64, in UpdateProductInput) (map[string]interface{}, error) {
	if id <= 0 {
		return nil, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	fields := map[string]interface{}{}
	if in.Title != nil {
		if strings.TrimSpace(*in.Title) == "" {
			return nil, NewHTTPError(http.StatusBadRequest, "title must not be empty")
		}
		fields["title"] = *in.Title
	}
	if in.Description != nil {
		fields["description"] = *in.Description
	}
	if in.Category != nil {
		fields["category"] = *in.Category
	}
	if in.Price != nil {
		fields["price"] = *in.Price
	}
	if len(fields) == 0 {
		return nil, NewHTTPError(http.StatusBadRequest, "nothing to update")
	}

	if err := u.products.Update(ctx, id, fields); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return map[string]interface{}{"matchedCount": 0, "modifiedCount": 0}, nil
		}
		zap.L().Error("product update failed", zap.Int64("id", id), zap.Error(err))
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return map[string]interface{}{"matchedCount": 1, "modifiedCount": 1}, nil
}

func (u *ProductUsecase) Delete(ctx context.Context, id int64) (map[string]interface{}, error) {
	if id <= 0 {
		return nil, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	if err := u.products.Delete(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return map[string]interface{}{"deletedCount": 0}, nil
		}
		zap.L().Error("product delete failed", zap.Int64("id", id), zap.Error(err))
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return map[string]interface{}{"deletedCount": 1}, nil
}

// ホーム表示フラグの切り替え
func (u *ProductUsecase) SetShowOnHome(ctx context.Context, id int64, show bool) (map[string]interface{}, error) {
	if id <= 0 {
		return nil, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	if err := u.products.Update(ctx, id, map[string]interface{}{"show_on_home": show}); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return map[string]interface{}{"matchedCount": 0, "modifiedCount": 0}, nil
		}
		zap.L().Error("show-on-home toggle failed", zap.Int64("id", id), zap.Error(err))
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return map[string]interface{}{"matchedCount": 1, "modifiedCount": 1}, nil
}
