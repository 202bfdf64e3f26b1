package main

import (
	"context"

	"app/internal/config"
	"app/internal/domain/model"
	"app/internal/handler"
	"app/internal/infra/db"
	"app/internal/infra/payment"
	infraRepo "app/internal/infra/repository"
	"app/internal/logger"
	"app/internal/server"
	"app/internal/usecase"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	//.envはローカル用。なくてもよい。
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg.GoEnv)
	defer func() { _ = log.Sync() }()

	//DB接続
	gormDB, err := db.Connect(cfg)
	if err != nil {
		log.Fatal("db connect failed", zap.Error(err))
	}
	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Product{},
		&model.Order{},
		&model.OrderSequence{},
		&model.TrackingEvent{},
		&model.Payment{},
	); err != nil {
		log.Fatal("migrate failed", zap.Error(err))
	}

	//Repository（GORM実装）生成
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	orderRepo := infraRepo.NewOrderGormRepository(gormDB)
	trackingRepo := infraRepo.NewTrackingGormRepository(gormDB)
	paymentRepo := infraRepo.NewPaymentGormRepository(gormDB)
	txManager := infraRepo.NewTxManagerGorm(gormDB)

	//採番カウンタの行を用意
	if err := orderRepo.EnsureSequence(context.Background()); err != nil {
		log.Fatal("order sequence init failed", zap.Error(err))
	}

	//決済プロバイダ
	checkout := payment.NewStripeProvider(cfg.StripeSecretKey, cfg.SiteDomain)

	//Usecase生成
	userUC := usecase.NewUserUsecase(userRepo)
	productUC := usecase.NewProductUsecase(productRepo)
	orderUC := usecase.NewOrderUsecase(txManager, orderRepo, productRepo)
	trackingUC := usecase.NewTrackingUsecase(trackingRepo)
	paymentUC := usecase.NewPaymentUsecase(checkout, paymentRepo, orderRepo, trackingRepo)

	//Handler生成
	h := server.Handlers{
		User:     handler.NewUserHandler(userUC),
		Product:  handler.NewProductHandler(productUC),
		Order:    handler.NewOrderHandler(orderUC),
		Tracking: handler.NewTrackingHandler(trackingUC),
		Payment:  handler.NewPaymentHandler(paymentUC),
	}

	//Server起動
	e := server.New(cfg, h)
	if err := server.Start(e, cfg); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}
