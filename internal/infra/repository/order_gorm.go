package repository

import (
	"context"
	"errors"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
)

type OrderGormRepository struct {
	db *gorm.DB
}

func NewOrderGormRepository(db *gorm.DB) *OrderGormRepository {
	return &OrderGormRepository{db: db}
}

func (r *OrderGormRepository) FindByID(ctx context.Context, id int64) (model.Order, error) {
	var o model.Order
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Order{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Order{}, err
	}
	return o, nil
}

func (r *OrderGormRepository) FindByTrackingID(ctx context.Context, trackingID string) (model.Order, error) {
	var o model.Order
	err := r.db.WithContext(ctx).Where("tracking_id = ?", trackingID).First(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Order{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Order{}, err
	}
	return o, nil
}

func (r *OrderGormRepository) List(ctx context.Context, f repo.OrderFilter) ([]model.Order, error) {
	q := r.db.WithContext(ctx).Model(&model.Order{})

	//free-text検索（order_number/email/product_title/statusのOR部分一致）
	if f.Search != "" {
		pat := "%" + f.Search + "%"
		q = q.Where(
			"orders.order_number ILIKE ? OR orders.email ILIKE ? OR orders.product_title ILIKE ? OR orders.status ILIKE ?",
			pat, pat, pat, pat,
		)
	}

	//status絞り込み（"all"はsentinel）
	if f.Status != "" && f.Status != "all" {
		q = q.Where("orders.status = ?", f.Status)
	}

	//購入者絞り込み
	if f.Email != "" {
		q = q.Where("orders.email = ?", f.Email)
	}

	//出品者絞り込み（商品の作成者でjoin）
	if f.SellerEmail != "" {
		q = q.Joins("JOIN products ON products.id = orders.product_id").
			Where("products.creator_email = ?", f.SellerEmail)
	}

	var items []model.Order
	if err := q.Order("orders.created_at desc").Find(&items).Error; err != nil {
		return []model.Order{}, err
	}
	return items, nil
}

func (r *OrderGormRepository) Create(ctx context.Context, o model.Order) (model.Order, error) {
	if err := r.db.WithContext(ctx).Create(&o).Error; err != nil {
		if isUniqueViolation(err) {
			return model.Order{}, repo.ErrDuplicate
		}
		return model.Order{}, err
	}
	return o, nil
}

func (r *OrderGormRepository) UpdateStatus(ctx context.Context, id int64, from model.OrderStatus, fields map[string]interface{}) error {
	res := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ? AND status = ?", id, from).
		Updates(fields)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *OrderGormRepository) SetPaymentStatus(ctx context.Context, trackingID string, status model.PaymentStatus) error {
	res := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("tracking_id = ?", trackingID).
		Update("payment_status", status)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// NextOrderNumber は採番カウンタを原子的にインクリメントして次の番号を返す。
// 最新注文read→+1だと同時作成で重複するため、単一行のUPDATE ... RETURNINGで採番する。
func (r *OrderGormRepository) NextOrderNumber(ctx context.Context) (int64, error) {
	var next int64
	err := r.db.WithContext(ctx).Raw(
		"UPDATE order_sequences SET value = value + 1 WHERE id = 1 RETURNING value",
	).Scan(&next).Error
	if err != nil {
		return 0, err
	}
	if next == 0 {
		return 0, errors.New("order sequence row missing")
	}
	return next, nil
}

// EnsureSequence は採番カウンタの行を用意する（起動時に一度だけ呼ぶ）。
func (r *OrderGormRepository) EnsureSequence(ctx context.Context) error {
	return r.db.WithContext(ctx).Exec(
		"INSERT INTO order_sequences (id, value) VALUES (1, 0) ON CONFLICT (id) DO NOTHING",
	).Error
}
