package main

import (
	"context"
	"log"

	"app/cache"
	"app/config"
	"app/database"
	"app/handlers"
	"app/mailer"
	"app/routes"
	"app/store"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("Error loading .env file, using environment variables")
	}

	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// Monetary values serialize as JSON numbers, not quoted strings.
	decimal.MarshalJSONWithoutQuotes = true

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Invalid configuration: %v", err)
	}

	ctx := context.Background()

	var (
		users    store.UserStore
		products store.ProductStore
		bills    store.BillStore
		reports  store.ReportStore
	)

	if cfg.DatabaseURL == "" {
		// Demo mode: everything lives in memory and vanishes on restart.
		logrus.Warn("DATABASE_URL is not set, running with in-memory stores")
		users = store.NewMemoryUserStore()
		products = store.NewMemoryProductStore()
		bills = store.NewMemoryBillStore()
		reports = store.NewMemoryReportStore()
	} else {
		if err := database.Migrate(cfg.DatabaseURL); err != nil {
			logrus.Fatalf("Migration failed: %v", err)
		}
		pool, err := database.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			logrus.Fatalf("Unable to connect to database: %v", err)
		}
		defer pool.Close()

		users = store.NewPostgresUserStore(pool)
		products = store.NewPostgresProductStore(pool)
		bills = store.NewPostgresBillStore(pool)
		reports = store.NewPostgresReportStore(pool)
	}

	var reportCache *cache.ReportCache
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logrus.Fatalf("Invalid REDIS_URL: %v", err)
		}
		rdb := redis.NewClient(opts)
		if err := rdb.Ping(ctx).Err(); err != nil {
			logrus.Warnf("Redis unreachable, report caching disabled: %v", err)
		} else {
			reportCache = cache.NewReportCache(rdb)
			defer rdb.Close()
		}
	}

	mail := mailer.New(cfg.ResendAPIKey, cfg.MailFromName, cfg.MailFrom, cfg.AppBaseURL)

	app := fiber.New()
	app.Use(cors.New())

	routes.Setup(app, cfg.JWTSecret, routes.Handlers{
		Auth:     handlers.NewAuthHandler(users, mail, cfg),
		Products: handlers.NewProductHandler(products),
		Bills:    handlers.NewBillHandler(bills, products, reportCache),
		Reports:  handlers.NewReportHandler(bills, reports, reportCache, cfg),
		Reset:    handlers.NewResetHandler(products, bills),
	})

	logrus.Infof("Listening on :%s", cfg.Port)
	log.Fatal(app.Listen(":" + cfg.Port))
}
