package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/flatlogic/usermgmt-backend/internal/config"
	"github.com/flatlogic/usermgmt-backend/internal/database"
	"github.com/flatlogic/usermgmt-backend/internal/handler"
	"github.com/flatlogic/usermgmt-backend/internal/mail"
	"github.com/flatlogic/usermgmt-backend/internal/oauth"
	"github.com/flatlogic/usermgmt-backend/internal/queue"
	"github.com/flatlogic/usermgmt-backend/internal/repository"
	"github.com/flatlogic/usermgmt-backend/internal/reset"
	"github.com/flatlogic/usermgmt-backend/internal/router"
	"github.com/flatlogic/usermgmt-backend/internal/service"
)

func main() {
	// .env is optional; real deployments set variables in the environment.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.Sync(ctx, db); err != nil {
		cancel()
		log.Fatalf("schema sync: %v", err)
	}
	cancel()

	users := repository.NewUserRepo(db)
	files := repository.NewFileRepo(db)
	products := repository.NewProductRepo(db)

	sender := mail.NewSender(cfg.Mail)
	dispatch := queue.NewDispatcher(cfg.BrokerURL, sender)
	if cfg.BrokerURL != "" {
		go queue.StartEmailConsumer(cfg.BrokerURL, sender)
	}

	authSvc := service.NewAuthService(cfg, users, dispatch)
	userSvc := service.NewUserService(cfg, users, files, authSvc)
	productSvc := service.NewProductService(cfg, products)

	providers := oauth.NewRegistry(cfg)
	rdb := config.NewRedisClient()

	reset.Start(db, &cfg)

	e := echo.New()
	e.HideBanner = true
	router.Register(e, router.Deps{
		Cfg:       &cfg,
		Users:     users,
		Redis:     rdb,
		Auth:      handler.NewAuthHandler(cfg, authSvc, files, providers),
		User:      handler.NewUserHandler(users, files, userSvc),
		Product:   handler.NewProductHandler(productSvc),
		File:      handler.NewFileHandler(&cfg),
		Analytics: handler.NewAnalyticsHandler(),
	})

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
