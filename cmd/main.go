package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/franciscosanchezn/gin-pizza-orders/docs" // Import generated docs
	"github.com/franciscosanchezn/gin-pizza-orders/internal/cache"
	"github.com/franciscosanchezn/gin-pizza-orders/internal/catalog"
	"github.com/franciscosanchezn/gin-pizza-orders/internal/config"
	"github.com/franciscosanchezn/gin-pizza-orders/internal/controllers"
	"github.com/franciscosanchezn/gin-pizza-orders/internal/database"
	"github.com/franciscosanchezn/gin-pizza-orders/internal/events"
	"github.com/franciscosanchezn/gin-pizza-orders/internal/middleware"
	"github.com/franciscosanchezn/gin-pizza-orders/internal/services"
	"github.com/franciscosanchezn/gin-pizza-orders/internal/web"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

var (
	db              *gorm.DB
	redisClient     *redis.Client
	publisher       *events.Publisher
	orderService    services.OrderService
	orderController controllers.OrderController
	apiController   controllers.APIController
	configuration   *config.Config
)

// @title Pizza Orders API
// @version 1.0
// @description Place pizza orders and track their status
// @host localhost:8080
// @BasePath /
func main() {
	// Load environment variables
	loadDotenvFile()

	// Initialize logger
	setUpLogger()

	// Load configuration
	configuration = loadConfig()
	applyLogLevel(configuration)

	// Initialize database connection
	setupDatabase(configuration)

	// Optional collaborators, disabled when their URL is empty
	orderCache := setupCache(configuration)
	orderEvents := setupEvents(configuration)

	// Initialize services and controllers
	menu := catalog.Default()
	orderService = services.NewOrderService(db, menu, orderCache, orderEvents)
	orderController = controllers.NewOrderController(orderService, menu, configuration.DefaultPageSize)
	apiController = controllers.NewAPIController(orderService, menu, configuration.DefaultPageSize)

	// Initialize Gin router
	var router *gin.Engine = setupRouter()

	// Start the server
	addr := fmt.Sprintf("%v:%d", configuration.Host, configuration.Port)
	server := &http.Server{Addr: addr, Handler: router}
	go func() {
		log.Infof("Starting server on %s", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("Server stopped unexpectedly")
		}
	}()

	waitForShutdown(server)
}

// checkPanicErr checks if an error occurred and panics if it did
func checkPanicErr(err error) {
	if err != nil {
		panic(err)
	}
}

// loadDotenvFile loads environment variables from a .env file
// If the file is not found, it will log a warning and use system environment variables
func loadDotenvFile() {
	if err := godotenv.Load(); err != nil {
		log.Warn("No .env file found, using system environment variables")
	}
}

// setUpLogger initializes the logger with a JSON formatter and sets the log level based on the environment
func setUpLogger() {
	log.SetFormatter(&log.JSONFormatter{})
	log.SetLevel(config.LevelForEnvironment(config.GetEnvWithDefault("APP_ENV", "development")))
}

// applyLogLevel honours an explicit LOG_LEVEL over the environment default
// and hands the result to every package logger
func applyLogLevel(conf *config.Config) {
	if os.Getenv("LOG_LEVEL") != "" {
		level, err := log.ParseLevel(conf.LogLevel)
		if err != nil {
			log.WithError(err).Warn("Ignoring invalid LOG_LEVEL")
		} else {
			log.SetLevel(level)
		}
	}
	level := log.GetLevel()
	database.SetLogLevel(level)
	services.SetLogLevel(level)
	events.SetLogLevel(level)
}

// loadConfig loads the application configuration from environment variables
// It returns a Config struct or panics if there is an error
func loadConfig() *config.Config {
	log.Info("Loading configuration from environment variables")
	conf, err := config.LoadConfig()
	checkPanicErr(err)
	log.Infof("Configuration loaded: %s", conf)
	return conf
}

// setupDatabase initializes the database connection and migrates the schema
func setupDatabase(conf *config.Config) *gorm.DB {
	var err error
	db, err = database.InitDatabase(database.FromConfig(conf))
	checkPanicErr(err)
	checkPanicErr(database.Migrate(db))
	return db
}

// setupCache connects to redis when REDIS_URL is set
func setupCache(conf *config.Config) services.OrderCache {
	if conf.RedisURL == "" {
		log.Info("REDIS_URL not set, order cache disabled")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var err error
	redisClient, err = cache.Connect(ctx, conf.RedisURL)
	if err != nil {
		log.WithError(err).Warn("Redis unavailable, order cache disabled")
		return nil
	}
	log.WithField("ttl", conf.OrderCacheTTL.String()).Info("Order cache enabled")
	return cache.NewRedisOrderCache(redisClient, conf.OrderCacheTTL)
}

// setupEvents connects to RabbitMQ when AMQP_URL is set
func setupEvents(conf *config.Config) services.OrderEventPublisher {
	if conf.AMQPURL == "" {
		log.Info("AMQP_URL not set, order events disabled")
		return nil
	}

	var err error
	publisher, err = events.NewPublisher(conf.AMQPURL, conf.AMQPExchange)
	if err != nil {
		log.WithError(err).Warn("RabbitMQ unavailable, order events disabled")
		return nil
	}
	return publisher
}

// setupRouter initializes the Gin router and sets up the routes
// It returns the configured router
func setupRouter() *gin.Engine {
	if configuration.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.RequestID(), middleware.Logger(log.StandardLogger()), gin.Recovery())

	tmpl, err := web.Templates()
	checkPanicErr(err)
	router.SetHTMLTemplate(tmpl)

	// Define routes
	setupRoutes(router)

	return router
}

// setupRoutes defines the routes for the Gin router
func setupRoutes(router *gin.Engine) {
	// Health check endpoint
	router.GET("/health", healthCheckHandler)

	// Order pages and JSON API
	controllers.RegisterRoutes(router, orderController, apiController)

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}

// waitForShutdown blocks until SIGINT or SIGTERM, then drains the server and closes connections
func waitForShutdown(server *http.Server) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.WithError(err).Error("Server forced to shutdown")
	}

	if publisher != nil {
		if err := publisher.Close(); err != nil {
			log.WithError(err).Warn("Failed to close RabbitMQ publisher")
		}
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.WithError(err).Warn("Failed to close redis client")
		}
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
	log.Info("Server exited")
}

// healthCheckHandler handles the health check endpoint
// @Summary Health check
// @Description Check if the service is running
// @Tags health
// @Accept json
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheckHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   "gin-pizza-orders",
	})
}
