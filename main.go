package main

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"estate-service/internal/config"
	"estate-service/internal/db"
	"estate-service/internal/handlers"
	"estate-service/internal/middleware"
	"estate-service/internal/observability"
	"estate-service/internal/rabbitmq"
	"estate-service/internal/repositories"
	"estate-service/internal/security"
	"estate-service/internal/telemetry"
	"estate-service/internal/ws"
)

func main() {
	cfg := config.Load()
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET_KEY is required")
	}

	database, err := db.Connect(cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("failed to connect to db: %v", err)
	}
	defer database.Close()

	shutdownTracer, err := telemetry.InitTracer(context.Background(), "estate-service", cfg.OTLPEndpoint)
	if err != nil {
		log.Fatalf("failed to init tracing: %v", err)
	}
	defer shutdownTracer(context.Background())

	publisher := rabbitmq.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange)
	defer publisher.Close()
	log.Printf("event publisher mode=%s", rabbitmq.PublisherMode(publisher))
	observability.SetPublisher(publisher)
	audit := telemetry.NewAuditEmitter(publisher, "audit.estate", "estate-service", cfg.Environment)

	tokens := security.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
	hasher := security.PasswordHasher{Cost: cfg.BcryptCost}

	userRepo := repositories.NewUserRepo(database)
	postRepo := repositories.NewPostRepo(database)
	chatRepo := repositories.NewChatRepo(database)
	messageRepo := repositories.NewMessageRepo(database)

	hub := ws.NewHub()

	authHandler := handlers.NewAuthHandler(userRepo, hasher, tokens, audit)
	postHandler := handlers.NewPostHandler(postRepo, audit)
	userHandler := handlers.NewUserHandler(userRepo, postRepo, chatRepo, hasher, audit)
	chatHandler := handlers.NewChatHandler(chatRepo, userRepo, audit)
	messageHandler := handlers.NewMessageHandler(messageRepo, chatRepo, userRepo, hub, audit)
	chatWS := ws.NewChatWebSocketHandler(hub, chatRepo, tokens)

	router := gin.Default()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware("estate-service"))
	router.Use(observability.HTTPMetricsMiddleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.ClientOrigin},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		AllowCredentials: true,
	}))

	requireAuth := middleware.RequireAuth(tokens)
	optionalAuth := middleware.OptionalAuth(tokens)

	api := router.Group("/api")
	{
		api.POST("/auth/register", authHandler.Register)
		api.POST("/auth/login", authHandler.Login)
		api.POST("/auth/logout", authHandler.Logout)

		api.GET("/posts", optionalAuth, postHandler.GetPosts)
		api.GET("/posts/:id", optionalAuth, postHandler.GetPost)
		api.POST("/posts", requireAuth, postHandler.CreatePost)
		api.PUT("/posts/:id", requireAuth, postHandler.UpdatePost)
		api.DELETE("/posts/:id", requireAuth, postHandler.DeletePost)
		api.POST("/posts/save", requireAuth, postHandler.SavePost)

		api.GET("/users", userHandler.GetUsers)
		api.GET("/users/search/:id", requireAuth, userHandler.GetUser)
		api.PUT("/users/:id", requireAuth, userHandler.UpdateUser)
		api.DELETE("/users/:id", requireAuth, userHandler.DeleteUser)
		api.GET("/users/profilePosts", requireAuth, userHandler.ProfilePosts)
		api.GET("/users/notifications", requireAuth, userHandler.Notifications)

		api.GET("/chats", requireAuth, chatHandler.GetChats)
		api.GET("/chats/:id", requireAuth, chatHandler.GetChat)
		api.POST("/chats", requireAuth, chatHandler.CreateChat)
		api.PUT("/chats/read/:id", requireAuth, chatHandler.ReadChat)
		api.PUT("/chats/:id", requireAuth, chatHandler.DeleteChat)

		api.GET("/messages/:chatId", requireAuth, messageHandler.GetMessages)
		api.POST("/messages/:chatId", requireAuth, messageHandler.CreateMessage)
		api.PUT("/messages/:id", requireAuth, messageHandler.UpdateMessage)
	}

	router.GET("/ws/chats/:chat_id", chatWS.Handle)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/health", func(c *gin.Context) {
		if err := database.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "db unreachable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	handlers.RegisterDebugRoutes(router, audit, cfg.DebugRoutes)

	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
