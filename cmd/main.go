package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"cedarcart/internal/app/shop/config"
	"cedarcart/internal/app/shop/entity"
	"cedarcart/internal/app/shop/handler"
	"cedarcart/internal/app/shop/repository"
	"cedarcart/internal/app/shop/service"
	"cedarcart/internal/app/shop/util"
	"cedarcart/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logger.Init("cedarcart", logLevel)

	if cfg.Logstash.Enabled {
		if err := logger.InitLogstash(cfg.Logstash.Address, "cedarcart", logLevel); err != nil {
			logger.Warn().Err(err).Msg("Failed to connect to Logstash, using stdout only")
		} else {
			logger.Info().Str("logstash_addr", cfg.Logstash.Address).Msg("Connected to Logstash")
		}
	}

	db, err := connectDB(cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to database")
	}
	logger.Info().
		Str("host", cfg.Database.Host).
		Str("database", cfg.Database.DBName).
		Msg("Connected to PostgreSQL")

	if err := migrate(db); err != nil {
		logger.Fatal().Err(err).Msg("Failed to run migrations")
	}
	logger.Info().Msg("Database migrations applied")

	redisClient, err := util.NewRedisClient(cfg.Redis.Address(), cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer redisClient.Close()
	logger.Info().Str("addr", cfg.Redis.Address()).Msg("Connected to Redis")

	kafkaProducer := util.NewKafkaProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	defer kafkaProducer.Close()
	logger.Info().Str("topic", cfg.Kafka.Topic).Msg("Initialized Kafka producer")

	jwtManager := util.NewJWTManager(cfg.JWT.Secret, cfg.JWT.TokenDuration)

	if err := os.MkdirAll(cfg.Upload.Dir, 0o755); err != nil {
		logger.Fatal().Err(err).Msg("Failed to create upload directory")
	}

	userRepo := repository.NewUserRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	productRepo := repository.NewProductRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	txManager := repository.NewTxManager(db)

	userService := service.NewUserService(userRepo, jwtManager)
	catalogService := service.NewCatalogService(categoryRepo, productRepo, reviewRepo, redisClient, kafkaProducer)
	reviewService := service.NewReviewService(productRepo, reviewRepo, txManager, kafkaProducer)
	orderService := service.NewOrderService(orderRepo, txManager, kafkaProducer)
	statsService := service.NewStatsService(orderRepo, redisClient)

	// Админская учетная запись должна существовать до первого запроса
	if err := userService.EnsureAdmin(context.Background(), cfg.Admin.Username, cfg.Admin.Email, cfg.Admin.Password); err != nil {
		logger.Fatal().Err(err).Msg("Failed to ensure admin account")
	}

	// Периодический прогрев кеша отчета о продажах
	cronScheduler := cron.New()
	if _, err := cronScheduler.AddFunc("@hourly", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := statsService.RefreshSalesReport(ctx); err != nil {
			logger.Error().Err(err).Msg("Failed to refresh sales report")
		}
	}); err != nil {
		logger.Fatal().Err(err).Msg("Failed to schedule sales report refresh")
	}
	cronScheduler.Start()
	defer cronScheduler.Stop()

	authMiddleware := handler.NewAuthMiddleware(jwtManager)
	router := handler.SetupRoutes(handler.Handlers{
		User:    handler.NewUserHandler(userService),
		Catalog: handler.NewCatalogHandler(catalogService),
		Review:  handler.NewReviewHandler(reviewService),
		Order:   handler.NewOrderHandler(orderService, statsService),
		Upload:  handler.NewUploadHandler(cfg.Upload),
	}, authMiddleware, cfg)

	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", cfg.Server.Address()).Msg("Starting cedarcart")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down cedarcart...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Info().Msg("cedarcart stopped gracefully")
}

// connectDB подключается к PostgreSQL через GORM
// Использует retry logic с 10 попытками для устойчивости при запуске в Docker
func connectDB(cfg config.DatabaseConfig) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	}

	var db *gorm.DB
	var err error

	for i := 0; i < 10; i++ {
		db, err = gorm.Open(postgres.Open(cfg.DSN()), gormConfig)
		if err == nil {
			sqlDB, sqlErr := db.DB()
			if sqlErr != nil {
				err = sqlErr
			} else {
				pingErr := sqlDB.Ping()
				if pingErr != nil {
					err = pingErr
				} else {
					sqlDB.SetMaxOpenConns(25)
					sqlDB.SetMaxIdleConns(5)
					sqlDB.SetConnMaxLifetime(5 * time.Minute)
					sqlDB.SetConnMaxIdleTime(1 * time.Minute)
					return db, nil
				}
			}
		}
		logger.Warn().
			Int("attempt", i+1).
			Err(err).
			Msg("Failed to connect to database, retrying...")
		time.Sleep(3 * time.Second)
	}

	return nil, fmt.Errorf("failed to connect after 10 attempts: %w", err)
}

// migrate создает и обновляет схему БД
func migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&entity.User{},
		&entity.Category{},
		&entity.Product{},
		&entity.Review{},
		&entity.Order{},
		&entity.OrderItem{},
	); err != nil {
		return err
	}

	// Уникальность имени категории без учета регистра; AutoMigrate
	// не умеет выражения в индексах
	return db.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_categories_name_lower ON categories (LOWER(name))").Error
}
