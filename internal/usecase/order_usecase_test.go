package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// =====================
// TxManager / TxRepos mocks
// =====================

// TxManagerMock は WithinTx に渡すreposを固定してunitテストを回す。
// fnがエラーを返したらrollback相当として記録する。
type TxManagerMock struct {
	mock.Mock
	Repos      repo.TxRepos
	rolledBack bool
}

func (m *TxManagerMock) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	// 呼ばれた事実だけ記録（ctxの具体値は問わない）
	m.Called(ctx)
	err := fn(m.Repos)
	m.rolledBack = err != nil
	return err
}

type TxReposMock struct {
	orders   repo.OrderRepository
	tracking repo.TrackingRepository
}

func (r *TxReposMock) Orders() repo.OrderRepository      { return r.orders }
func (r *TxReposMock) Tracking() repo.TrackingRepository { return r.tracking }

func newTxMock(orders repo.OrderRepository, tracking repo.TrackingRepository) *TxManagerMock {
	tx := &TxManagerMock{Repos: &TxReposMock{orders: orders, tracking: tracking}}
	tx.On("WithinTx", mock.Anything).Return(nil)
	return tx
}

// =====================
// Repository mocks
// =====================

type OrderRepoMock struct{ mock.Mock }

func (m *OrderRepoMock) FindByID(ctx context.Context, id int64) (model.Order, error) {
	args := m.Called(ctx, id)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *OrderRepoMock) FindByTrackingID(ctx context.Context, trackingID string) (model.Order, error) {
	args := m.Called(ctx, trackingID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *OrderRepoMock) List(ctx context.Context, f repo.OrderFilter) ([]model.Order, error) {
	args := m.Called(ctx, f)
	items, _ := args.Get(0).([]model.Order)
	return items, args.Error(1)
}

func (m *OrderRepoMock) Create(ctx context.Context, o model.Order) (model.Order, error) {
	args := m.Called(ctx, o)
	created, _ := args.Get(0).(model.Order)
	return created, args.Error(1)
}

func (m *OrderRepoMock) UpdateStatus(ctx context.Context, id int64, from model.OrderStatus, fields map[string]interface{}) error {
	args := m.Called(ctx, id, from, fields)
	return args.Error(0)
}

func (m *OrderRepoMock) SetPaymentStatus(ctx context.Context, trackingID string, status model.PaymentStatus) error {
	args := m.Called(ctx, trackingID, status)
	return args.Error(0)
}

func (m *OrderRepoMock) NextOrderNumber(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type ProductRepoMock struct{ mock.Mock }

func (m *ProductRepoMock) List(ctx context.Context, f repo.ProductFilter) ([]model.Product, error) {
	args := m.Called(ctx, f)
	items, _ := args.Get(0).([]model.Product)
	return items, args.Error(1)
}

func (m *ProductRepoMock) ListPaged(ctx context.Context, f repo.ProductFilter) ([]model.Product, int64, error) {
	args := m.Called(ctx, f)
	items, _ := args.Get(0).([]model.Product)
	return items, args.Get(1).(int64), args.Error(2)
}

func (m *ProductRepoMock) ListHome(ctx context.Context, limit int) ([]model.Product, error) {
	args := m.Called(ctx, limit)
	items, _ := args.Get(0).([]model.Product)
	return items, args.Error(1)
}

func (m *ProductRepoMock) FindByID(ctx context.Context, id int64) (model.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

func (m *ProductRepoMock) Create(ctx context.Context, p model.Product) (model.Product, error) {
	args := m.Called(ctx, p)
	created, _ := args.Get(0).(model.Product)
	return created, args.Error(1)
}

func (m *ProductRepoMock) Update(ctx context.Context, id int64, fields map[string]interface{}) error {
	args := m.Called(ctx, id, fields)
	return args.Error(0)
}

func (m *ProductRepoMock) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type TrackingRepoMock struct{ mock.Mock }

func (m *TrackingRepoMock) Append(ctx context.Context, ev model.TrackingEvent) (model.TrackingEvent, error) {
	args := m.Called(ctx, ev)
	created, _ := args.Get(0).(model.TrackingEvent)
	return created, args.Error(1)
}

func (m *TrackingRepoMock) ListByTrackingID(ctx context.Context, trackingID string) ([]model.TrackingEvent, error) {
	args := m.Called(ctx, trackingID)
	items, _ := args.Get(0).([]model.TrackingEvent)
	return items, args.Error(1)
}

// =====================
// Helper: error contains（HTTPErrorの実装詳細に依存しない）
// =====================

func assertErrContains(t *testing.T, err error, wantSubstr string) {
	t.Helper()
	if assert.Error(t, err) {
		assert.True(t, strings.Contains(err.Error(), wantSubstr), "err=%q want contains %q", err.Error(), wantSubstr)
	}
}

// =====================
// Place tests
// =====================

func TestOrderUsecase_Place_Unauthorized(t *testing.T) {
	orders := new(OrderRepoMock)
	uc := NewOrderUsecase(newTxMock(orders, new(TrackingRepoMock)), orders, new(ProductRepoMock))

	_, err := uc.Place(context.Background(), "", PlaceOrderInput{ProductID: 1})
	assertErrContains(t, err, "unauthorized")
}

func TestOrderUsecase_Place_MissingProduct(t *testing.T) {
	orders := new(OrderRepoMock)
	uc := NewOrderUsecase(newTxMock(orders, new(TrackingRepoMock)), orders, new(ProductRepoMock))

	_, err := uc.Place(context.Background(), "buyer@example.com", PlaceOrderInput{})
	assertErrContains(t, err, "productId")
}

func TestOrderUsecase_Place_GeneratesSequentialNumber(t *testing.T) {
	ctx := context.Background()

	orders := new(OrderRepoMock)
	products := new(ProductRepoMock)
	tracking := new(TrackingRepoMock)

	products.On("FindByID", mock.Anything, int64(7)).Return(model.Product{
		ID:    7,
		Title: "Denim Jacket",
		Price: "49.99",
	}, nil)

	orders.On("NextOrderNumber", mock.Anything).Return(int64(1), nil).Once()
	orders.On("NextOrderNumber", mock.Anything).Return(int64(2), nil).Once()

	orders.On("Create", mock.Anything, mock.MatchedBy(func(o model.Order) bool {
		return o.OrderNumber == "ORD001" && o.Status == model.OrderStatusPending
	})).Return(model.Order{OrderNumber: "ORD001", TrackingID: "t-1", Status: model.OrderStatusPending}, nil).Once()
	orders.On("Create", mock.Anything, mock.MatchedBy(func(o model.Order) bool {
		return o.OrderNumber == "ORD002"
	})).Return(model.Order{OrderNumber: "ORD002", TrackingID: "t-2", Status: model.OrderStatusPending}, nil).Once()

	tracking.On("Append", mock.Anything, mock.MatchedBy(func(ev model.TrackingEvent) bool {
		return ev.Status == model.TrackingOrderCreated
	})).Return(model.TrackingEvent{}, nil).Twice()

	uc := NewOrderUsecase(newTxMock(orders, tracking), orders, products)

	first, err := uc.Place(ctx, "buyer@example.com", PlaceOrderInput{ProductID: 7})
	require.NoError(t, err)
	assert.Equal(t, "ORD001", first.OrderNumber)

	second, err := uc.Place(ctx, "buyer@example.com", PlaceOrderInput{ProductID: 7})
	require.NoError(t, err)
	assert.Equal(t, "ORD002", second.OrderNumber)

	orders.AssertExpectations(t)
	tracking.AssertExpectations(t)
}

// 999を超えても桁が切り詰められないこと
func TestOrderUsecase_Place_NumberWidensBeyond999(t *testing.T) {
	orders := new(OrderRepoMock)
	products := new(ProductRepoMock)
	tracking := new(TrackingRepoMock)

	products.On("FindByID", mock.Anything, int64(1)).Return(model.Product{ID: 1, Title: "Tee"}, nil)
	orders.On("NextOrderNumber", mock.Anything).Return(int64(1000), nil)
	orders.On("Create", mock.Anything, mock.MatchedBy(func(o model.Order) bool {
		return o.OrderNumber == "ORD1000"
	})).Return(model.Order{OrderNumber: "ORD1000", TrackingID: "t-1000"}, nil)
	tracking.On("Append", mock.Anything, mock.Anything).Return(model.TrackingEvent{}, nil)

	uc := NewOrderUsecase(newTxMock(orders, tracking), orders, products)

	out, err := uc.Place(context.Background(), "buyer@example.com", PlaceOrderInput{ProductID: 1})
	require.NoError(t, err)
	assert.Equal(t, "ORD1000", out.OrderNumber)
}

// イベント追記に失敗したら注文行ごと巻き戻ること
func TestOrderUsecase_Place_RollsBackWhenEventAppendFails(t *testing.T) {
	orders := new(OrderRepoMock)
	products := new(ProductRepoMock)
	tracking := new(TrackingRepoMock)

	products.On("FindByID", mock.Anything, int64(1)).Return(model.Product{ID: 1, Title: "Tee"}, nil)
	orders.On("NextOrderNumber", mock.Anything).Return(int64(1), nil)
	orders.On("Create", mock.Anything, mock.Anything).
		Return(model.Order{OrderNumber: "ORD001", TrackingID: "t-1"}, nil)
	tracking.On("Append", mock.Anything, mock.Anything).
		Return(model.TrackingEvent{}, errors.New("insert failed"))

	tx := newTxMock(orders, tracking)
	uc := NewOrderUsecase(tx, orders, products)

	_, err := uc.Place(context.Background(), "buyer@example.com", PlaceOrderInput{ProductID: 1})
	assertErrContains(t, err, "db error")

	//作成とイベント追記が同一トランザクション内で走り、エラーで巻き戻る
	orders.AssertCalled(t, "Create", mock.Anything, mock.Anything)
	assert.True(t, tx.rolledBack)
}

// ゼロ埋めフォーマットの確認
func TestOrderNumberPadding(t *testing.T) {
	cases := map[int64]string{
		1:    "ORD001",
		25:   "ORD025",
		999:  "ORD999",
		1000: "ORD1000",
		1234: "ORD1234",
	}
	for n, want := range cases {
		assert.Equal(t, want, fmt.Sprintf("ORD%03d", n))
	}
}

// =====================
// Transition tests
// =====================

func TestOrderUsecase_Cancel_NonPendingFails(t *testing.T) {
	orders := new(OrderRepoMock)
	tracking := new(TrackingRepoMock)

	orders.On("FindByID", mock.Anything, int64(5)).Return(model.Order{
		ID:         5,
		TrackingID: "t-5",
		Status:     model.OrderStatusApproved,
	}, nil)

	uc := NewOrderUsecase(newTxMock(orders, tracking), orders, new(ProductRepoMock))

	_, err := uc.Cancel(context.Background(), 5)
	assertErrContains(t, err, "invalid status transition")

	//遷移もイベント追記も起きていない
	orders.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	tracking.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
}

func TestOrderUsecase_Cancel_PendingSucceeds(t *testing.T) {
	orders := new(OrderRepoMock)
	tracking := new(TrackingRepoMock)

	pending := model.Order{ID: 5, TrackingID: "t-5", Status: model.OrderStatusPending}
	cancelled := model.Order{ID: 5, TrackingID: "t-5", Status: model.OrderStatusCancelled}

	orders.On("FindByID", mock.Anything, int64(5)).Return(pending, nil).Once()
	orders.On("UpdateStatus", mock.Anything, int64(5), model.OrderStatusPending, mock.MatchedBy(func(f map[string]interface{}) bool {
		_, hasTS := f["cancelled_at"]
		return f["status"] == model.OrderStatusCancelled && hasTS
	})).Return(nil).Once()
	tracking.On("Append", mock.Anything, mock.MatchedBy(func(ev model.TrackingEvent) bool {
		return ev.TrackingID == "t-5" && ev.Status == model.TrackingOrderCancelled
	})).Return(model.TrackingEvent{}, nil).Once()
	orders.On("FindByID", mock.Anything, int64(5)).Return(cancelled, nil).Once()

	uc := NewOrderUsecase(newTxMock(orders, tracking), orders, new(ProductRepoMock))

	out, err := uc.Cancel(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusCancelled, out.Status)

	orders.AssertExpectations(t)
	tracking.AssertExpectations(t)
}

// 遷移は通ったのにイベント追記で落ちたら、遷移ごと巻き戻って再試行できること
func TestOrderUsecase_Cancel_RollsBackWhenEventAppendFails(t *testing.T) {
	orders := new(OrderRepoMock)
	tracking := new(TrackingRepoMock)

	orders.On("FindByID", mock.Anything, int64(5)).Return(model.Order{
		ID: 5, TrackingID: "t-5", Status: model.OrderStatusPending,
	}, nil)
	orders.On("UpdateStatus", mock.Anything, int64(5), model.OrderStatusPending, mock.Anything).Return(nil)
	tracking.On("Append", mock.Anything, mock.Anything).
		Return(model.TrackingEvent{}, errors.New("insert failed"))

	tx := newTxMock(orders, tracking)
	uc := NewOrderUsecase(tx, orders, new(ProductRepoMock))

	_, err := uc.Cancel(context.Background(), 5)
	assertErrContains(t, err, "db error")
	assert.True(t, tx.rolledBack)
}

// read後に他リクエストが先に遷移させたケースは400
func TestOrderUsecase_Cancel_LostRace(t *testing.T) {
	orders := new(OrderRepoMock)
	tracking := new(TrackingRepoMock)

	orders.On("FindByID", mock.Anything, int64(5)).Return(model.Order{
		ID: 5, TrackingID: "t-5", Status: model.OrderStatusPending,
	}, nil)
	orders.On("UpdateStatus", mock.Anything, int64(5), model.OrderStatusPending, mock.Anything).
		Return(repo.ErrNotFound)

	uc := NewOrderUsecase(newTxMock(orders, tracking), orders, new(ProductRepoMock))

	_, err := uc.Cancel(context.Background(), 5)
	assertErrContains(t, err, "invalid status transition")
	tracking.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
}

func TestOrderUsecase_Approve_SetsTimestampAndEvent(t *testing.T) {
	orders := new(OrderRepoMock)
	tracking := new(TrackingRepoMock)

	pending := model.Order{ID: 9, TrackingID: "t-9", Status: model.OrderStatusPending}
	approved := model.Order{ID: 9, TrackingID: "t-9", Status: model.OrderStatusApproved}

	orders.On("FindByID", mock.Anything, int64(9)).Return(pending, nil).Once()
	orders.On("UpdateStatus", mock.Anything, int64(9), model.OrderStatusPending, mock.MatchedBy(func(f map[string]interface{}) bool {
		_, hasTS := f["approved_at"]
		return f["status"] == model.OrderStatusApproved && hasTS
	})).Return(nil).Once()
	tracking.On("Append", mock.Anything, mock.MatchedBy(func(ev model.TrackingEvent) bool {
		return ev.Status == model.TrackingOrderApproved
	})).Return(model.TrackingEvent{}, nil).Once()
	orders.On("FindByID", mock.Anything, int64(9)).Return(approved, nil).Once()

	uc := NewOrderUsecase(newTxMock(orders, tracking), orders, new(ProductRepoMock))

	out, err := uc.Approve(context.Background(), 9)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusApproved, out.Status)

	orders.AssertExpectations(t)
}

func TestOrderUsecase_ListBySeller_RequiresEmail(t *testing.T) {
	orders := new(OrderRepoMock)
	uc := NewOrderUsecase(newTxMock(orders, new(TrackingRepoMock)), orders, new(ProductRepoMock))

	_, err := uc.ListBySeller(context.Background(), "", model.OrderStatusPending)
	assertErrContains(t, err, "unauthorized")
}

func TestOrderUsecase_ListBySeller_FiltersByStatus(t *testing.T) {
	orders := new(OrderRepoMock)
	orders.On("List", mock.Anything, repo.OrderFilter{
		SellerEmail: "seller@example.com",
		Status:      string(model.OrderStatusApproved),
	}).Return([]model.Order{{ID: 1}}, nil)

	uc := NewOrderUsecase(newTxMock(orders, new(TrackingRepoMock)), orders, new(ProductRepoMock))

	out, err := uc.ListBySeller(context.Background(), "seller@example.com", model.OrderStatusApproved)
	require.NoError(t, err)
	assert.Len(t, out, 1)
	orders.AssertExpectations(t)
}
