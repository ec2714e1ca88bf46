package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.elastic.co/apm/module/apmfiber"

	"storepay/handler"
	"storepay/middleware"
)

// SetupRoutes setup router api
func SetupRoutes(app *fiber.App) {
	api := app.Group("/api", logger.New())
	api.Use(apmfiber.Middleware())
	api.Use(middleware.TrackMetrics())

	orders := api.Group("/orders")
	orders.Post("/", handler.CreateOrder)
	orders.Get("/:id", handler.GetOrder)
	orders.Patch("/:id", handler.UpdateOrder)
	orders.Post("/:id/confirm-payment-source", handler.ConfirmPaymentSource)
	orders.Post("/:id/capture", handler.CaptureOrder)
	orders.Post("/:id/authorize", handler.AuthorizeOrder)

	payments := api.Group("/payments")
	payments.Post("/authorizations/:id/capture", handler.CaptureAuthorization)
	payments.Post("/authorizations/:id/reauthorize", handler.ReauthorizeAuthorization)
	payments.Post("/authorizations/:id/void", handler.VoidAuthorization)
	payments.Post("/captures/:id/refund", handler.RefundCapture)

	user := api.Group("/user")
	user.Post("/login", handler.Login)
	user.Post("/register", handler.CreateUser)

	admin := api.Group("/admin", middleware.Protected(), middleware.AdminOnly(false))
	admin.Get("/ledger/:orderId", handler.GetLedgerChain)
	admin.Get("/ledger/:orderId/export", handler.ExportLedger)
	admin.Post("/ledger/:orderId/sync", handler.SyncLedger)
	admin.Get("/processor-events", handler.ListProcessorEvents)

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
}
