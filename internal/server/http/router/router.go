package router

import (
	"log/slog"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/polkiloo/tgmarket/internal/server/http/handlers"
	"github.com/polkiloo/tgmarket/internal/server/http/middleware"
)

// Setup configures gin router with handlers and middleware.
func Setup(facade handlers.MarketFacade, logger *slog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestLogger(logger))
	engine.Use(middleware.DecompressRequest(middleware.MaxRequestBody))
	engine.Use(gzip.Gzip(gzip.DefaultCompression))

	authHandler := handlers.NewAuthHandler(facade)
	catalogHandler := handlers.NewCatalogHandler(facade)
	orderHandler := handlers.NewOrderHandler(facade)
	proposalHandler := handlers.NewProposalHandler(facade)
	reviewHandler := handlers.NewReviewHandler(facade)
	ledgerHandler := handlers.NewLedgerHandler(facade)

	api := engine.Group("/api")
	user := api.Group("/user")
	user.POST("/register", authHandler.Register)
	user.POST("/login", authHandler.Login)
	user.POST("/telegram", authHandler.TelegramLogin)
	user.POST("/logout", authHandler.Logout)

	authed := api.Group("")
	authed.Use(middleware.AuthRequired(facade))

	authed.GET("/user/balance", ledgerHandler.Balance)
	authed.GET("/user/ledger", ledgerHandler.Entries)
	authed.GET("/user/orders", orderHandler.List)
	authed.PUT("/user/telegram-chat", authHandler.LinkTelegramChat)

	authed.POST("/services", catalogHandler.Create)
	authed.GET("/services", catalogHandler.List)
	authed.GET("/services/:id", catalogHandler.Get)
	authed.GET("/services/:id/reviews", reviewHandler.List)
	authed.GET("/services/:id/review-eligibility", reviewHandler.Eligibility)

	authed.POST("/orders", orderHandler.Create)
	authed.GET("/orders/:id", orderHandler.Get)
	authed.POST("/orders/:id/transitions", orderHandler.Transition)
	authed.POST("/orders/:id/review", reviewHandler.Leave)
	authed.GET("/orders/:id/messages", orderHandler.Messages)

	authed.POST("/proposals", proposalHandler.Create)
	authed.GET("/proposals/:id", proposalHandler.Get)
	authed.POST("/proposals/:id/accept", proposalHandler.Accept)
	authed.POST("/proposals/:id/reject", proposalHandler.Reject)

	authed.POST("/admin/deposits", ledgerHandler.Deposit)
	authed.GET("/admin/users/:id/reconcile", ledgerHandler.Reconcile)

	return engine
}
