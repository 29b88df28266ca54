package server

import (
	"backend-fittrack/internal/auth"
	"backend-fittrack/internal/config"
	"backend-fittrack/internal/db"
	"backend-fittrack/internal/motion"
	"backend-fittrack/internal/stream"
	"backend-fittrack/internal/workout"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

type Server struct {
	App      *fiber.App
	Cfg      config.Config
	DB       *pgxpool.Pool
	Redis    *redis.Client
	Stream   *stream.Hub
	Sessions *workout.Manager
}

func NewServer(cfg config.Config, pool *pgxpool.Pool, redisClient *redis.Client) *Server {
	app := fiber.New()
	app.Use(recover.New())
	app.Use(logger.New())

	hub := stream.NewHub(redisClient)

	var querier db.Querier
	if pool != nil {
		querier = pool
	}
	workoutSvc := workout.NewService(querier)

	motionCfg := motion.DefaultConfig()
	if cfg.CountdownSec > 0 {
		motionCfg.CountdownSec = cfg.CountdownSec
	}

	s := &Server{
		App:      app,
		Cfg:      cfg,
		DB:       pool,
		Redis:    redisClient,
		Stream:   hub,
		Sessions: workout.NewManager(motionCfg, workoutSvc, hub),
	}

	registerRoutes(s, workoutSvc)
	return s
}

func registerRoutes(s *Server, workoutSvc *workout.Service) {
	s.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	identity := auth.Identity(s.Cfg.JWTSecret)

	workout.RegisterRoutes(s.App.Group("/workouts"), workoutSvc, s.Sessions, identity)
	stream.RegisterRoutes(s.App.Group("/stream"), s.Stream)
}
