package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"

	"storepay/config"
	"storepay/database"
	"storepay/handler"
	"storepay/lib"
	"storepay/middleware"
	"storepay/repository"
	"storepay/router"
	"storepay/scheduler"
)

func main() {
	config.SetupEnvFile()
	config.SetupLogfile()

	if err := config.InitOperationLoggers(); err != nil {
		log.Fatalf("Error initializing operation loggers: %v", err)
	}

	app := fiber.New(fiber.Config{
		CaseSensitive: true,
		AppName:       "Storepay",
	})

	database.ConnectDB()
	database.SetupMongoDB()
	database.InitRedis()

	middleware.PrometheusInit()
	lib.PrometheusInit()

	paypalCfg := config.GetPayPalConfig()

	var sessions lib.SessionStore
	if database.RedisClient != nil {
		sessions = repository.NewRedisSessionStore()
	} else {
		sessions = repository.NewMemorySessionStore()
	}

	tokens := lib.NewTokenCache(paypalCfg, sessions)
	client := lib.NewClient(paypalCfg, tokens)
	client.SetRecorder(repository.NewMongoRecorder())

	records := repository.NewGormRecordStore()
	ledger := repository.NewTransactionLedger(records, client)

	syncScheduler := scheduler.NewLedgerScheduler(ledger, records)
	syncScheduler.Start()

	handler.Setup(client, ledger, sessions)
	router.SetupRoutes(app)

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(":" + config.Config("PORT", "8080")); err != nil {
			log.Fatalf("Error starting server: %v", err)
		}
	}()

	<-sigs
	log.Println("Shutting down server...")

	syncScheduler.Stop()
	if err := app.Shutdown(); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}
	config.OpLogManager.Shutdown()

	log.Println("Server stopped gracefully.")
}
