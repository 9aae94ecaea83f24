package main

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"quickscan-service/auth"
	"quickscan-service/catalog"
	"quickscan-service/config"
	"quickscan-service/consumers"
	"quickscan-service/controllers"
	"quickscan-service/database"
	"quickscan-service/engine"
	"quickscan-service/history"
	"quickscan-service/logger"
	"quickscan-service/middlewares"
	"quickscan-service/models"
	"quickscan-service/notify"
	"quickscan-service/orders"
	"quickscan-service/rabbitmq"
	"quickscan-service/scanner"
	"quickscan-service/session"
	"quickscan-service/storage"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.LoadConfig()

	log := logger.GetLogger()
	defer func() {
		_ = log.Sync()
	}()

	kv := openStorage(cfg, log)
	defer database.CloseDB()

	catalogStore := catalog.New(kv)
	ledger := history.New(kv)
	orderCollection := orders.New(kv)
	counters := session.NewCounters()

	eng := engine.New(engine.Deps{
		Catalog: catalogStore,
		History: ledger,
		Orders:  orderCollection,
		Session: counters,
		Users:   auth.ContextProvider{},
		Sink:    notify.LogSink{Log: log},
		Log:     log,
	})

	// Device-originated detections are attributed to the configured
	// scanner user and always create orders.
	deviceUser := &models.User{ID: cfg.ScannerUserID, Role: "operator"}
	onDetect := func(code string) {
		ctx := auth.WithUser(context.Background(), deviceUser)
		if _, err := eng.ResolveAndFulfill(ctx, code, engine.ModeCreateOrder); err != nil {
			log.Warn("device scan fulfillment failed", zap.String("code", code), zap.Error(err))
		}
	}

	// Wedge devices type raw keystrokes; line devices send one code per
	// line. Both feed the same detection handler.
	var src scanner.Source
	if cfg.ScannerWedge {
		src = scanner.NewWedgeSource(cfg.ScannerDevice, scanner.WedgeConfig{
			IdleFlush: cfg.WedgeIdleFlush,
		}, log)
	} else {
		src = scanner.NewReaderSource(cfg.ScannerDevice)
	}
	adapter := scanner.NewAdapter(src, onDetect, scanner.Config{
		AutoClose:      cfg.ScannerAutoClose,
		AcquireTimeout: cfg.ScannerAcquireTimeout,
		SettleDelay:    cfg.ScannerSettleDelay,
	}, log)
	defer func() {
		if err := adapter.Close(); err != nil {
			log.Warn("scanner teardown failed", zap.Error(err))
		}
	}()

	// Events are best effort; the service runs without a broker.
	if cfg.RabbitMQURL == "" {
		log.Info("RABBITMQ_URL not set, fulfillment events disabled")
	} else if rmq, err := rabbitmq.NewRabbitMQ(cfg); err != nil {
		log.Warn("RabbitMQ unavailable, fulfillment events disabled", zap.Error(err))
	} else {
		defer rmq.Close()
		if err := rmq.SetupQueues(); err != nil {
			log.Fatal("failed to setup RabbitMQ queues", zap.Error(err))
		}
		oc := &consumers.OrderConsumer{
			Orders:  orderCollection,
			Catalog: catalogStore,
			Cfg:     cfg,
			Log:     log,
		}
		oc.Start(rmq.Channel)
		controllers.SetRabbitMQ(rmq)
	}

	controllers.SetEngine(eng)
	controllers.SetScanner(adapter)
	controllers.SetHistory(ledger)
	controllers.SetSession(counters)
	controllers.SetCatalog(catalogStore)
	controllers.SetOrders(orderCollection)
	controllers.SetPaymentCheckDelay(cfg.PaymentCheckDelay)

	r := gin.Default()
	r.Use(middlewares.PrometheusMiddleware())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authGroup := r.Group("/api")
	authGroup.Use(middlewares.AuthMiddleware(cfg))
	{
		authGroup.POST("/scan", controllers.Scan)
		authGroup.POST("/scanner/start", controllers.StartScanner)
		authGroup.POST("/scanner/stop", controllers.StopScanner)
		authGroup.POST("/scanner/restart", controllers.RestartScanner)
		authGroup.GET("/scanner/status", controllers.ScannerStatus)
		authGroup.GET("/scan-history", controllers.GetScanHistory)
		authGroup.DELETE("/scan-history", controllers.ClearScanHistory)
		authGroup.GET("/session", controllers.GetSession)
		authGroup.GET("/products", controllers.ListProducts)
		authGroup.POST("/products", controllers.UpsertProduct)
		authGroup.GET("/orders", controllers.GetUserOrders)
		authGroup.GET("/orders/:id", controllers.GetOrderDetails)
		authGroup.PUT("/orders/:id/status", controllers.UpdateOrderStatus)
	}

	log.Info("quickscan service starting", zap.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal("failed to start server", zap.Error(err))
	}
}

func openStorage(cfg *config.Config, log *zap.Logger) storage.KV {
	switch cfg.StorageBackend {
	case "mysql":
		if err := database.InitDB(cfg); err != nil {
			log.Fatal("database initialization failed", zap.Error(err))
		}
		log.Info("using mysql storage backend")
		return database.NewStore()
	case "memory":
		log.Info("using in-memory storage backend")
		return storage.NewMemStore()
	default:
		fs, err := storage.NewFileStore(cfg.DataDir)
		if err != nil {
			log.Fatal("failed to open data dir", zap.Error(err))
		}
		log.Info("using file storage backend", zap.String("dir", cfg.DataDir))
		return fs
	}
}
