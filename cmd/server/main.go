package main

import (
	"log"
	"os"
	"strconv"

	"speakcoach/config"
	"speakcoach/controllers"
	"speakcoach/db"
	"speakcoach/internal/ratelimit"
	"speakcoach/middlewares"
	"speakcoach/routes"
	"speakcoach/services"
	"speakcoach/utils"
	"speakcoach/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	// Load the configuration from the specified YAML file
	cfg, err := config.LoadConfig("./config/config.prod.yml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	utils.SetJWTSecret(cfg.JWT.Secret)

	// Connect to MongoDB using the URI from the configuration. Without a
	// database the server still runs; discussion history then lives in
	// memory and is lost on restart.
	var store services.HistoryStore
	if cfg.Database.URI != "" {
		if err := db.ConnectMongoDB(cfg.Database.URI); err != nil {
			log.Fatalf("Failed to connect to MongoDB: %v", err)
		}
		log.Println("Connected to MongoDB")
		store = db.NewMongoHistoryStore()
	} else {
		log.Println("No database URI configured, using in-memory history store")
		store = db.NewMemoryHistoryStore()
	}

	// Redis backs per-caller rate limiting; skip it when unconfigured.
	var limiter *ratelimit.Limiter
	if cfg.Redis.Addr != "" {
		if err := ratelimit.InitRedis(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB); err != nil {
			log.Printf("Redis unavailable, rate limiting disabled: %v", err)
		} else {
			limiter = ratelimit.NewLimiter(ratelimit.DefaultConfig())
		}
	}

	generator := buildGenerator(cfg)

	var speaker services.Speaker = services.NullSpeaker{}
	if cfg.Speech.AudioDir != "" {
		os.MkdirAll(cfg.Speech.AudioDir, os.ModePerm)
		speaker = services.NewFileSpeaker(cfg.Speech.AudioDir)
	}

	controllers.InitAssessmentController(services.NewEvaluationService(cfg))
	discussionService := services.NewDiscussionService(generator, speaker, store)
	controllers.InitDiscussionController(discussionService)
	controllers.InitHistoryController(store)
	websocket.InitDiscussionHandler(discussionService)

	// Set up the Gin router and configure routes
	router := setupRouter(cfg, limiter)
	port := strconv.Itoa(cfg.Server.Port)
	log.Printf("Server starting on port %s", port)

	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// buildGenerator selects the text generation backend for discussions.
func buildGenerator(cfg *config.Config) services.TextGenerator {
	if cfg.AI.Provider == "gemini" {
		gen, err := services.NewGeminiGenerator(cfg.AI.ApiKey)
		if err != nil {
			log.Printf("Gemini client unavailable, falling back to chat endpoint: %v", err)
		} else {
			return gen
		}
	}
	return services.NewChatGenerator(cfg)
}

func setupRouter(cfg *config.Config, limiter *ratelimit.Limiter) *gin.Engine {
	router := gin.Default()

	// Set trusted proxies (adjust as needed)
	router.SetTrustedProxies([]string{"127.0.0.1", "localhost"})

	// Configure CORS for your frontend (e.g., localhost:5173 for Vite)
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:5173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Retry-After"},
		AllowCredentials: true,
	}))
	router.OPTIONS("/*path", func(c *gin.Context) { c.Status(204) })

	// Synthesized utterances are served as static files.
	if cfg.Speech.AudioDir != "" {
		router.Static("/audio", cfg.Speech.AudioDir)
	}

	// WebSocket speech channel. Browsers cannot set headers on WebSocket
	// requests, so the handler validates a token query parameter itself.
	router.GET("/ws/discussion", websocket.DiscussionSpeechHandler)

	// Protected routes (JWT auth)
	auth := router.Group("/")
	auth.Use(middlewares.AuthMiddleware(cfg.AI.ServiceToken))
	auth.Use(middlewares.RateLimitMiddleware(limiter))
	{
		routes.SetupAssessmentRoutes(auth)
		routes.SetupDiscussionRoutes(auth)
		routes.SetupHistoryRoutes(auth)
	}

	return router
}
