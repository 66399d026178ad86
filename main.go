package main

import (
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/lyftr/sms-webhook/config"
	"github.com/lyftr/sms-webhook/controller"
	"github.com/lyftr/sms-webhook/dao"
	"github.com/lyftr/sms-webhook/log"
	"github.com/lyftr/sms-webhook/metrics"
	"github.com/lyftr/sms-webhook/service"
	"github.com/lyftr/sms-webhook/util"
)

func main() {
	//a .env file is optional, real deployments set the environment directly
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	if err := log.Init(cfg.LogLevel); err != nil {
		log.Fatal(err)
	}

	if util.IsBlank(cfg.WebhookSecret) {
		zap.L().Warn("WEBHOOK_SECRET not set, /webhook and /health/ready will return 503")
	}

	//create db client
	dbClient, err := dao.GetClient(cfg.DBPath)
	if err != nil {
		log.Fatal(err)
	}

	webhookService := service.NewService(dao.NewMessageDao(dbClient), cfg.WebhookSecret)
	registry := metrics.NewRegistry()

	//attach http handlers
	e := echo.New()
	e.HideBanner = true
	e.Use(controller.RequestLogger(registry))
	e.Use(middleware.BodyLimit("64K"))
	e.Use(middleware.Recover())

	bindRoutes(e, webhookService, registry)

	//start http server
	log.Fatal(e.Start(":" + cfg.HTTPPort))
}

func bindRoutes(e *echo.Echo, srv service.Service, registry *metrics.Registry) {

	e.POST("/webhook", controller.GetWebhookFunc(srv, registry))

	e.GET("/messages", controller.GetMessagesFunc(srv))

	e.GET("/stats", controller.GetStatsFunc(srv))

	e.GET("/health/live", controller.GetHealthLiveFunc())

	e.GET("/health/ready", controller.GetHealthReadyFunc(srv))

	e.GET("/metrics", controller.GetMetricsFunc(registry))
}
