package app

import (
	"context"
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/studyforge/study-assistant/api"
	"github.com/studyforge/study-assistant/config"
	"github.com/studyforge/study-assistant/database"
	"github.com/studyforge/study-assistant/router"
	"github.com/studyforge/study-assistant/services"
	cronjobs "github.com/studyforge/study-assistant/services/cron"
	"github.com/studyforge/study-assistant/services/provider"
	"github.com/studyforge/study-assistant/utils/blob"
	"github.com/studyforge/study-assistant/utils/cache"
)

func SetupAndRunServer() error {

	// Load ENV
	if err := config.LoadENV(); err != nil {
		log.Println("No .env file loaded:", err)
	}

	getEnv, err := config.Get()
	if err != nil {
		return err
	}

	// Open the embedded database and run migrations
	store, err := database.Open(getEnv.DB_PATH)
	if err != nil {
		return err
	}
	if err := store.Init(); err != nil {
		return err
	}

	// Seed the local profile on first launch
	if _, err := store.EnsureDefaultUser(context.Background(), getEnv.DEFAULT_USER_NAME, getEnv.DEFAULT_USER_EMAIL); err != nil {
		return err
	}

	// Blob store backs study state and database snapshots
	blobs, err := blob.NewFileStore(getEnv.BLOB_DIR)
	if err != nil {
		return err
	}

	// Optional Redis read cache
	var redisCache *cache.RedisCache
	if getEnv.REDIS_URL != "" {
		redisCache, err = cache.NewRedisCache(getEnv.REDIS_URL)
		if err != nil {
			log.Printf("Warning: Failed to connect to Redis: %v. Course list caching will be disabled.", err)
			redisCache = nil
		}
	}

	// Content provider (nil disables generation and chat endpoints)
	contentProvider := provider.NewOpenAIProvider(provider.Config{
		APIKey:  getEnv.OPENAI_API_KEY,
		BaseURL: getEnv.OPENAI_BASE_URL,
		Model:   getEnv.OPENAI_MODEL,
	})

	// Services
	courseService := services.NewCourseService(store, redisCache)
	progressTracker := services.NewProgressTracker(store, redisCache)
	chatService := services.NewChatService(store)
	studyState, err := services.NewStudyStateService(blobs)
	if err != nil {
		return err
	}
	// Saving a course derives a subject and per-module tasks
	courseService.AddListener(studyState)

	// Background jobs
	var cronManager *cronjobs.Manager
	if getEnv.CRON_ENABLED {
		cronManager = cronjobs.NewManager(store, blobs, getEnv.SNAPSHOT_ENABLED)
		if err := cronManager.Start(); err != nil {
			log.Println("Warning: Failed to start cron jobs:", err)
			cronManager = nil
		}
	}

	// Defer closing DB and stopping cron jobs
	defer func() {
		if cronManager != nil {
			cronManager.Stop()
		}
		store.Close()
		if redisCache != nil {
			redisCache.Close()
		}
	}()

	// Init API
	var server *api.APIServer = api.NewAPIServer(fmt.Sprintf(":%d", getEnv.PORT))
	app := server.GetEngine()

	// Attach Middleware
	app.Use(logger.New())
	app.Use(recover.New())

	// Setup Routes
	var providerIface provider.Provider
	if contentProvider != nil {
		providerIface = contentProvider
	}
	router.SetupRoutes(app, router.Deps{
		Store:    store,
		Courses:  courseService,
		Tracker:  progressTracker,
		Chats:    chatService,
		Study:    studyState,
		Provider: providerIface,
	})

	// Get the PORT & Start the Server
	return server.Run()
}
