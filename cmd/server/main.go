package main // Entry point package

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/qrdine/qrdine-server/internal/config"
	"github.com/qrdine/qrdine-server/internal/database"
	"github.com/qrdine/qrdine-server/internal/gateway"
	"github.com/qrdine/qrdine-server/internal/handler"
	"github.com/qrdine/qrdine-server/internal/queue"
	"github.com/qrdine/qrdine-server/internal/repository"
	"github.com/qrdine/qrdine-server/internal/router"
	queue_publisher "github.com/qrdine/qrdine-server/internal/service"
	"github.com/qrdine/qrdine-server/internal/workflow"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database connect failed: %v", err)
	}
	defer db.Close()

	// Redis backs the response cache and the rate limiter.  nil means
	// unreachable: both middlewares then pass requests straight through.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; cache and rate limiting disabled")
	}

	menuRepo := repository.NewMenuRepo(db)
	tableRepo := repository.NewTableRepo(db)
	orderRepo := repository.NewOrderRepo(db)
	userRepo := repository.NewUserRepo(db)
	otpRepo := repository.NewOTPRepo(db)

	// Collaborators are optional; a deployment without payment keys or
	// SMTP credentials still serves the table flow.  The nil checks
	// stay on the concrete types so the workflow sees a nil interface.
	var payments workflow.PaymentGateway
	if cfg.RazorpayKeyID != "" && cfg.RazorpaySecret != "" {
		payments = gateway.NewRazorpayGateway(cfg.RazorpayKeyID, cfg.RazorpaySecret, "")
	} else {
		log.Println("payment gateway not configured; online payment endpoints disabled")
	}
	var mailer workflow.Notifier
	if cfg.SMTPHost != "" {
		mailer = gateway.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, "")
	} else {
		log.Println("smtp not configured; otp and bill emails disabled")
	}

	wf := workflow.New(workflow.Config{
		ScanBaseURL: cfg.ScanBaseURL,
		SessionTTL:  time.Duration(cfg.SessionTTLMin) * time.Minute,
		Currency:    cfg.Currency,
	}, menuRepo, tableRepo, orderRepo, payments, mailer, queue_publisher.New())

	// Background consumer mirrors lifecycle events into logs/orders.log.
	go func() {
		if err := queue.StartOrderEventsConsumer(); err != nil {
			log.Printf("order events consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	e.HideBanner = true

	cacheCfg := config.LoadCacheConfig()
	rlCfg := config.LoadRateLimitConfig()

	router.RegisterRoutes(e)
	router.RegisterMenu(e, handler.NewMenuHandler(menuRepo), cacheCfg, rdb)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, userRepo, otpRepo, mailer), rlCfg, rdb)
	router.RegisterTables(e, handler.NewTableHandler(wf, tableRepo), cfg.JWTSecret, rlCfg, rdb)
	router.RegisterOrders(e, handler.NewOrderHandler(wf, orderRepo), handler.NewPaymentHandler(wf), cfg.JWTSecret)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
