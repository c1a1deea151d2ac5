package main

import (
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"

	"github.com/siwamsingh/bookstore-backend/internal/auth"
	"github.com/siwamsingh/bookstore-backend/internal/config"
	httpctl "github.com/siwamsingh/bookstore-backend/internal/controllers/http"
	"github.com/siwamsingh/bookstore-backend/internal/infra/mysql"
	"github.com/siwamsingh/bookstore-backend/internal/infra/rabbitmq"
	"github.com/siwamsingh/bookstore-backend/internal/infra/razorpay"
	mysqlrepo "github.com/siwamsingh/bookstore-backend/internal/repository/mysql"
	"github.com/siwamsingh/bookstore-backend/internal/services"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := mysql.New(cfg.MySQLDSN())
	if err != nil {
		log.Fatalf("db: connect: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("db: handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetMaxIdleConns(20)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)
	sqlDB.SetConnMaxIdleTime(1 * time.Minute)
	defer sqlDB.Close()

	orderRepo := mysqlrepo.NewOrderRepository(db)
	productRepo := mysqlrepo.NewProductRepository(db)
	couponRepo := mysqlrepo.NewCouponRepository(db)
	addressRepo := mysqlrepo.NewAddressRepository(db)

	gateway := razorpay.NewClient(
		cfg.RazorpayBaseURL,
		cfg.RazorpayKeyID,
		cfg.RazorpayKeySecret,
		cfg.RazorpayWebhookSecret,
		10*time.Second,
	)

	publisher, err := rabbitmq.NewPublisher(cfg.RabbitURL, cfg.RabbitExchange)
	if err != nil {
		log.Fatalf("failed to init publisher: %v", err)
	}
	defer publisher.Close()

	s := services.NewOrderService(orderRepo, productRepo, couponRepo, addressRepo, gateway, publisher, cfg.Currency)

	redisClient := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisHost + ":6379",
		DB:           0,
		PoolSize:     200,
		MinIdleConns: 20,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  500 * time.Millisecond,
		WriteTimeout: 500 * time.Millisecond,
	})
	s.SetRedisClient(redisClient)

	verifier := auth.NewVerifier(cfg.JWTSecret)
	handler := httpctl.NewHandler(s, redisClient)

	if os.Getenv("GIN_MODE") == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(httpctl.TraceLogger(), gin.Recovery())

	handler.RegisterRoutes(r, verifier)

	log.Printf("Starting bookstore backend on port %s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server run: %v", err)
	}
}
