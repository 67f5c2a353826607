package app

import (
	"context"
	"database/sql"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/go-sql-driver/mysql"
	"github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"

	"github.com/lordfalah/wasshoes-sub000/configs"
	"github.com/lordfalah/wasshoes-sub000/internal/adapter/cache"
	apphttp "github.com/lordfalah/wasshoes-sub000/internal/adapter/http"
	"github.com/lordfalah/wasshoes-sub000/internal/adapter/http/middleware"
	"github.com/lordfalah/wasshoes-sub000/internal/adapter/kafka"
	"github.com/lordfalah/wasshoes-sub000/internal/adapter/payment"
	"github.com/lordfalah/wasshoes-sub000/internal/adapter/queue"
	"github.com/lordfalah/wasshoes-sub000/internal/adapter/repo"
	"github.com/lordfalah/wasshoes-sub000/internal/logging"
	"github.com/lordfalah/wasshoes-sub000/internal/usecase"
)

type App struct {
	Router *gin.Engine
}

func InitWithConfig(cfg configs.Config) (*App, func(), error) {
	logging.Init("wasshoes-api", "./logs/app.log")
	log := logging.New("bootstrap")

	// init database
	db, err := sql.Open("mysql", cfg.MySQL.DSN)
	if err != nil {
		return nil, nil, err
	}
	db.SetConnMaxLifetime(cfg.MySQL.ConnMaxLifetime)
	db.SetMaxOpenConns(cfg.MySQL.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MySQL.MaxIdleConns)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := db.PingContext(ctx); err != nil {
		cancel()
		return nil, nil, err
	}
	cancel()

	log.Info("wasshoes-api: starting up", "env", cfg.App.Env)

	// init redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       0,
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, nil, err
	}

	// init rabbitmq
	conn, err := amqp091.Dial(cfg.Rabbit.URL)
	if err != nil {
		return nil, nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		return nil, nil, err
	}

	// infra
	orderRepo := repo.NewMySQLOrderRepo(db)
	cartRepo := repo.NewMySQLCartRepo(db)
	paketRepo := repo.NewMySQLPaketRepo(db)
	outboxRepo := repo.NewMySQLOutboxRepo(db)
	idem := cache.NewRedisIdempotencyStore(rdb, cfg.Idempotency.TTL)
	statusCache := cache.NewRedisStatusCache(rdb, cfg.Cache.StatusTTL)
	gateway := payment.NewClient(payment.Config{
		SnapBaseURL: cfg.Payment.SnapBaseURL,
		APIBaseURL:  cfg.Payment.APIBaseURL,
		ServerKey:   cfg.Payment.ServerKey,
		Timeout:     cfg.Payment.Timeout,
	})
	producer, err := queue.NewRabbitProducer(ch)
	if err != nil {
		return nil, nil, err
	}

	// usecases
	cartSvc := usecase.NewCartService(cartRepo, paketRepo)
	checkout := usecase.NewCheckout(orderRepo, cartRepo, paketRepo, gateway, idem, outboxRepo)
	notif := usecase.NewNotification(orderRepo, gateway, producer, statusCache, cfg.Payment.ServerKey)
	orders := usecase.NewOrders(orderRepo, gateway, producer, statusCache)

	// event consumers
	setupQueue(ch, statusCache)
	setupKafkaListener(cfg, orders)

	// handlers + router
	txHandler := apphttp.NewTransactionHandler(checkout, notif, orders)
	cartHandler := apphttp.NewCartHandler(cartSvc, paketRepo, cfg)
	paketHandler := apphttp.NewPaketHandler(paketRepo)
	storeHandler := apphttp.NewStoreOrderHandler(orders)
	tokenHandler := apphttp.NewTokenHandler(cfg)
	authz := middleware.NewAuthz(cfg)
	router := apphttp.NewRouter(txHandler, cartHandler, paketHandler, storeHandler, tokenHandler, authz)

	cleanup := func() {
		_ = db.Close()
		_ = rdb.Close()
		_ = ch.Close()
		_ = conn.Close()
	}

	return &App{Router: router}, cleanup, nil
}

func setupQueue(ch *amqp091.Channel, statusCache usecase.StatusCache) {
	h := queue.NewStatusChangedHandler(statusCache)

	router := queue.NewRouter(ch, queue.WithPrefetch(50))
	router.Register("order.status.changed.q", queue.JSONHandler[usecase.StatusChangedMsg]{HandleFunc: h.HandleStatusChanged})

	if err := router.Start(); err != nil {
		panic(err)
	}
}

func setupKafkaListener(cfg configs.Config, orders *usecase.Orders) {
	grp, err := kafka.NewGroup(cfg.Kafka.Brokers, cfg.Kafka.GroupID)
	if err != nil {
		panic(err)
	}

	h := kafka.NewLaundryStatusHandler(orders)
	consumer := kafka.NewConsumer(grp, []string{cfg.Kafka.LaundryTopic}, h.Handle)

	// Runs for the life of the process.
	go func() {
		if err := consumer.Start(context.Background()); err != nil {
			logging.New("kafka-consumer").Error("consumer stopped", "error", err)
		}
	}()
}
