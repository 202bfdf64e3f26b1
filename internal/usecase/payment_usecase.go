package usecase

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"app/internal/domain/model"
	"app/internal/metrics"
	repo "app/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// 外部プロバイダ呼び出しの上限
const providerTimeout = 10 * time.Second

type CheckoutSessionInput struct {
	OrderID      string
	ProductID    int64
	TrackingID   string
	ProductTitle string
	Amount       int64 // minor units
	Currency     string
	Email        string
}

// プロバイダから見えるcheckoutセッションの状態
type CheckoutSession struct {
	ID            string
	URL           string
	Paid          bool
	TransactionID string
	Amount        int64
	Currency      string
	Email         string
	Metadata      map[string]string
}

// CheckoutProvider は外部決済プロバイダとの契約。
type CheckoutProvider interface {
	CreateSession(ctx context.Context, in CheckoutSessionInput) (CheckoutSession, error)
	GetSession(ctx context.Context, sessionID string) (CheckoutSession, error)
}

type PaymentUsecase struct {
	provider CheckoutProvider
	payments repo.PaymentRepository
	orders   repo.OrderRepository
	tracking repo.TrackingRepository
}

// DI
func NewPaymentUsecase(provider CheckoutProvider, payments repo.PaymentRepository, orders repo.OrderRepository, tracking repo.TrackingRepository) *PaymentUsecase {
	return &PaymentUsecase{provider: provider, payments: payments, orders: orders, tracking: tracking}
}

type CreateCheckoutInput struct {
	OrderID      string
	ProductID    int64
	TrackingID   string
	ProductTitle string
	TotalPrice   string
	Email        string
}

type CreateCheckoutOutput struct {
	URL string `json:"url"`
}

// CreateCheckout は1明細のhosted checkoutセッションを作ってリダイレクトURLを返す。
func (u *PaymentUsecase) CreateCheckout(ctx context.Context, in CreateCheckoutInput) (CreateCheckoutOutput, error) {
	if strings.TrimSpace(in.OrderID) == "" {
		return CreateCheckoutOutput{}, NewHTTPError(http.StatusBadRequest, "orderId is required")
	}
	if in.ProductID <= 0 {
		return CreateCheckoutOutput{}, NewHTTPError(http.StatusBadRequest, "productId is required")
	}
	if strings.TrimSpace(in.TrackingID) == "" {
		return CreateCheckoutOutput{}, NewHTTPError(http.StatusBadRequest, "trackingId is required")
	}
	if strings.TrimSpace(in.ProductTitle) == "" {
		return CreateCheckoutOutput{}, NewHTTPError(http.StatusBadRequest, "productTitle is required")
	}
	if strings.TrimSpace(in.Email) == "" {
		return CreateCheckoutOutput{}, NewHTTPError(http.StatusBadRequest, "email is required")
	}

	amount, err := toMinorUnits(in.TotalPrice)
	if err != nil {
		return CreateCheckoutOutput{}, NewHTTPError(http.StatusBadRequest, "invalid totalPrice")
	}

	cctx, cancel := context.WithTimeout(ctx, providerTimeout)
	defer cancel()

	sess, err := u.provider.CreateSession(cctx, CheckoutSessionInput{
		OrderID:      in.OrderID,
		ProductID:    in.ProductID,
		TrackingID:   in.TrackingID,
		ProductTitle: in.ProductTitle,
		Amount:       amount,
		Currency:     "usd",
		Email:        in.Email,
	})
	if err != nil {
		zap.L().Error("checkout session create failed", zap.String("orderId", in.OrderID), zap.Error(err))
		metrics.OperationErrorsTotal.WithLabelValues("checkout_create").Inc()
		return CreateCheckoutOutput{}, NewHTTPError(http.StatusInternalServerError, "payment provider error")
	}

	return CreateCheckoutOutput{URL: sess.URL}, nil
}

type ReconcileOutput struct {
	Paid       bool   `json:"paid"`
	TrackingID string `json:"trackingId,omitempty"`
	Message    string `json:"message,omitempty"`
}

// Reconcile はcheckoutセッションの完了を注文・決済レコードへ反映する。
// transaction IDのユニーク制約が冪等性の要。同じセッションで何度呼んでも
// Paymentは1件、Order_Paidイベントも1件しかできない。
func (u *PaymentUsecase) Reconcile(ctx context.Context, sessionID string) (ReconcileOutput, error) {
	if strings.TrimSpace(sessionID) == "" {
		return ReconcileOutput{}, NewHTTPError(http.StatusBadRequest, "session_id is required")
	}

	cctx, cancel := context.WithTimeout(ctx, providerTimeout)
	defer cancel()

	sess, err := u.provider.GetSession(cctx, sessionID)
	if err != nil {
		zap.L().Error("checkout session fetch failed", zap.String("sessionId", sessionID), zap.Error(err))
		metrics.OperationErrorsTotal.WithLabelValues("payment_reconcile").Inc()
		return ReconcileOutput{}, NewHTTPError(http.StatusInternalServerError, "payment provider error")
	}

	txID := sess.TransactionID
	if txID == "" {
		txID = sess.ID
	}

	//既に取り込み済みなら既存レコードを返して終わり
	existing, err := u.payments.FindByTransactionID(ctx, txID)
	if err == nil {
		return ReconcileOutput{Paid: true, TrackingID: existing.TrackingID, Message: "already recorded"}, nil
	}
	if !errors.Is(err, repo.ErrNotFound) {
		zap.L().Error("payment lookup failed", zap.String("transactionId", txID), zap.Error(err))
		return ReconcileOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	//未決済なら何も書かない
	if !sess.Paid {
		return ReconcileOutput{Paid: false, Message: "payment not completed"}, nil
	}

	trackingID := sess.Metadata["trackingId"]
	orderID := sess.Metadata["orderId"]
	productID := parseInt64(sess.Metadata["productId"])

	//tracking IDから注文を解決してから支払フラグを立てる。
	//注文が見つからなくても決済自体は成立しているのでPaymentレコードは残す。
	order, err := u.orders.FindByTrackingID(ctx, trackingID)
	if err != nil && !errors.Is(err, repo.ErrNotFound) {
		zap.L().Error("order lookup failed", zap.String("trackingId", trackingID), zap.Error(err))
		return ReconcileOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if err == nil {
		if orderID == "" {
			orderID = order.OrderNumber
		}
		if err := u.orders.SetPaymentStatus(ctx, trackingID, model.PaymentStatusPaid); err != nil && !errors.Is(err, repo.ErrNotFound) {
			zap.L().Error("payment status update failed", zap.String("trackingId", trackingID), zap.Error(err))
			return ReconcileOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}
	} else {
		zap.L().Warn("no order for paid session", zap.String("trackingId", trackingID), zap.String("sessionId", sessionID))
	}

	created, err := u.payments.Create(ctx, model.Payment{
		TransactionID: txID,
		OrderID:       orderID,
		ProductID:     productID,
		TrackingID:    trackingID,
		Email:         sess.Email,
		Amount:        sess.Amount,
		Currency:      sess.Currency,
		Status:        model.PaymentStatusPaid,
		PaidAt:        time.Now(),
	})
	if err != nil {
		//同時reconcileは片方がユニーク違反で落ちる。冪等応答に倒す。
		if errors.Is(err, repo.ErrDuplicate) {
			return ReconcileOutput{Paid: true, TrackingID: trackingID, Message: "already recorded"}, nil
		}
		zap.L().Error("payment create failed", zap.String("transactionId", txID), zap.Error(err))
		metrics.OperationErrorsTotal.WithLabelValues("payment_reconcile").Inc()
		return ReconcileOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	_, err = u.tracking.Append(ctx, model.TrackingEvent{
		TrackingID: trackingID,
		Status:     model.TrackingOrderPaid,
		Detail:     trackingDetail(model.TrackingOrderPaid),
	})
	if err != nil && !errors.Is(err, repo.ErrDuplicate) {
		zap.L().Error("tracking append failed", zap.String("trackingId", trackingID), zap.Error(err))
		return ReconcileOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	metrics.PaymentsReconciledTotal.Inc()
	return ReconcileOutput{Paid: true, TrackingID: created.TrackingID}, nil
}

// toMinorUnits は"49.99"のような金額文字列を最小通貨単位へ変換する。
// floatを経由すると49.99*100=4998.99...で切り捨て事故になるためdecimalで計算する。
func toMinorUnits(price string) (int64, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(price))
	if err != nil {
		return 0, err
	}
	if d.IsNegative() {
		return 0, errors.New("negative amount")
	}
	return d.Mul(decimal.NewFromInt(100)).IntPart(), nil
}

func parseInt64(s string) int64 {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}
