package api

import (
	"log"

	"github.com/fieldflow/timelog_service/config"
	"github.com/fieldflow/timelog_service/infra/queue"
	"github.com/fieldflow/timelog_service/internal/api/rest/handlers"
	"github.com/fieldflow/timelog_service/internal/api/rest/middleware"
	"github.com/fieldflow/timelog_service/internal/domain"
	"github.com/fieldflow/timelog_service/internal/helper"
	"github.com/fieldflow/timelog_service/internal/policy"
	"github.com/fieldflow/timelog_service/internal/repository"
	"github.com/fieldflow/timelog_service/internal/services"
	"github.com/fieldflow/timelog_service/pkg/cloudinary"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func StartServer(cfg config.Config) {
	app := fiber.New()

	// ---------- CORS ----------
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.BaseURL,
		AllowHeaders:     "Content-Type, Accept, Authorization",
		AllowMethods:     "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		AllowCredentials: true,
	}))

	// ---------- DB ----------
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.DatabaseDSN,
		PreferSimpleProtocol: true,
	}), &gorm.Config{})
	if err != nil {
		log.Fatalf("database connection error: %v", err)
	}
	log.Println("database connected")

	// ---------- MIGRATION (guarded by advisory lock) ----------
	const migrateLockID int64 = 20260817

	if err := db.Exec("SELECT pg_advisory_lock(?)", migrateLockID).Error; err != nil {
		log.Fatalf("migration lock error: %v", err)
	}
	defer func() {
		_ = db.Exec("SELECT pg_advisory_unlock(?)", migrateLockID).Error
	}()

	if err := Migrate(db); err != nil {
		log.Fatalf("migration error: %v", err)
	}
	log.Println("migration successful")

	// ---------- Infra ----------
	kafkaProducer := queue.NewProducer(
		cfg.KafkaBroker,
		cfg.KafkaTopic,
		cfg.KafkaUsername,
		cfg.KafkaPassword,
	)
	cld, err := cloudinary.New()
	if err != nil {
		log.Fatalf("cloudinary init error: %v", err)
	}
	up := cloudinary.NewCloudinaryUploader(cld)

	authHelper := helper.SetupAuth(cfg.AccessSecret)

	// ---------- Repositories ----------
	userRepo := repository.NewUserRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	teamRepo := repository.NewTeamRepository(db)
	timeLogRepo := repository.NewTimeLogRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	// ---------- Policy & Services ----------
	gate := policy.New(teamRepo)
	userSvc := services.NewUserService(userRepo, authHelper)
	timeLogSvc := services.NewTimeLogService(
		timeLogRepo,
		userRepo,
		orderRepo,
		auditRepo,
		gate,
		kafkaProducer,
	)

	// ---------- Handlers ----------
	userHandler := handlers.NewUserHandler(userSvc, authHelper)
	timeLogHandler := handlers.NewTimeLogHandler(timeLogSvc, authHelper)
	uploadHandler := handlers.NewUploadHandler(up, timeLogSvc)
	orderHandler := handlers.NewOrderHandler(orderRepo, userSvc)

	api := app.Group("/api")
	userHandler.SetupPublicRoutes(api)

	api.Use(middleware.AuthMiddleware(authHelper))
	userHandler.SetupProtectedRoutes(api)
	timeLogHandler.SetupRoutes(api)
	uploadHandler.SetupRoutes(api)
	orderHandler.SetupRoutes(api, middleware.AdminOnly(userSvc))

	// ---------- Health ----------
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// ---------- Listen ----------
	addr := cfg.ServerPort
	log.Println("listening on", addr)
	log.Fatal(app.Listen(addr))
}

// Migrate creates the schema and backfills the hourly_rate column that older
// user tables are missing.
func Migrate(db *gorm.DB) error {
	hadHourlyRate := db.Migrator().HasTable(&domain.User{}) &&
		db.Migrator().HasColumn(&domain.User{}, "hourly_rate")

	if err := db.AutoMigrate(
		&domain.User{},
		&domain.Order{},
		&domain.Team{},
		&domain.TeamMember{},
		&domain.TimeLog{},
		&domain.AuditLog{},
	); err != nil {
		return err
	}

	// existing rows predate the column default
	if !hadHourlyRate {
		if err := db.Model(&domain.User{}).
			Where("hourly_rate IS NULL OR hourly_rate = 0").
			Update("hourly_rate", domain.DefaultHourlyRate).Error; err != nil {
			return err
		}
	}

	return nil
}
