package server

import (
	"net/http"
	"time"

	"github.com/IvaVarya/SERVER/internal/auth"
	"github.com/IvaVarya/SERVER/internal/config"
	"github.com/IvaVarya/SERVER/internal/directory"
	"github.com/IvaVarya/SERVER/internal/feed"
	"github.com/IvaVarya/SERVER/internal/friendship"
	"github.com/IvaVarya/SERVER/internal/posts"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

type Server struct {
	App   *fiber.App
	Cfg   config.Config
	DB    *pgxpool.Pool
	Redis *redis.Client
}

func NewServer(cfg config.Config, db *pgxpool.Pool, redisClient *redis.Client) *Server {
	app := fiber.New()
	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(logger.New())

	s := &Server{
		App:   app,
		Cfg:   cfg,
		DB:    db,
		Redis: redisClient,
	}

	registerRoutes(s)
	return s
}

func registerRoutes(s *Server) {
	s.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	timeout := time.Duration(s.Cfg.HTTPTimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	outbound := &http.Client{Timeout: timeout}

	jwtMiddleware := auth.JWTMiddleware(s.Cfg.JWTSecret)

	dir := directory.NewClient(s.Cfg.UserServiceURL, outbound, s.Redis)
	friendship.RegisterRoutes(s.App.Group("/friends"), friendship.NewService(s.DB, dir), jwtMiddleware)

	friendClient := friendship.NewClient(s.Cfg.FriendServiceURL, outbound)
	postClient := posts.NewClient(s.Cfg.PostServiceURL, s.Cfg.InternalKey, outbound)
	feed.RegisterRoutes(s.App.Group("/feed"), feed.NewService(friendClient, postClient), jwtMiddleware)
}
