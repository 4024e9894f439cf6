package main

import (
	"log"
	"time"

	"school-admin-app/config"
	"school-admin-app/database"
	billingapi "school-admin-app/internal/api/billing"
	plansapi "school-admin-app/internal/api/plans"
	stripewebhooks "school-admin-app/internal/api/stripewebhook"
	routes "school-admin-app/internal/app/http"
	"school-admin-app/internal/domain/billing"
	"school-admin-app/internal/domain/plans"
	"school-admin-app/internal/domain/schools"
	stripeinfra "school-admin-app/internal/infra/stripe"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()

	db, err := database.Open(cfg.DBURL)
	if err != nil {
		logger.Fatal("database init failed", zap.Error(err))
	}

	gateway := stripeinfra.NewClient(cfg.StripeSecretKey)

	schoolStore := schools.NewStore(db)
	planStore := plans.NewStore(db)
	repo := billing.NewRepository(db)
	processor := billing.NewProcessor(repo, schoolStore, planStore, logger)

	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.CORSOrigin},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.RegisterRoutes(r, routes.Handlers{
		Webhook:   stripewebhooks.NewHandler(processor, cfg.StripeWebhookSecret, logger),
		Billing:   billingapi.NewHandler(schoolStore, planStore, repo, gateway, cfg.AppURL, logger),
		Plans:     plansapi.NewHandler(planStore),
		JWTSecret: cfg.JWTSecret,
	})

	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
