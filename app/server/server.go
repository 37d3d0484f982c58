package server

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strconv"

	"claimrag/app/agent"
	"claimrag/app/api"
	"claimrag/app/middleware"
	"claimrag/app/rag"
	"claimrag/model"
	"claimrag/store"
	"claimrag/types"

	"github.com/gofiber/fiber/v2"
)

var config = fiber.Config{
	ErrorHandler: api.ErrorHandler,
}

type Server struct {
	listenAddr string
	logger     *slog.Logger
	app        *fiber.App
}

func NewServer(addr string) *Server {
	return &Server{
		listenAddr: addr,
		logger:     slog.Default(),
	}
}

func (s *Server) Stop() {
	if s.app != nil {
		if err := s.app.Shutdown(); err != nil {
			s.logger.Error("error shutting down fiber app", "error", err.Error())
		}
	}
	s.logger.Info("server stopped")
}

func (s *Server) Run() {
	ctx := context.Background()
	port, _ := strconv.Atoi(os.Getenv("PG_PORT"))
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		os.Getenv("PG_HOST"), port, os.Getenv("PG_USER"), os.Getenv("PG_PASS"), os.Getenv("PG_DB_NAME"))
	pool, err := store.NewPostgresStore(ctx, connStr)
	if err != nil {
		log.Fatal("error to connect to Postgres database ", err)
		return
	}

	if err := pool.Init(ctx); err != nil {
		log.Fatal("error to create tables ", err)
		return
	}

	embedder := model.NewOllamaEmbedderFromEnv()
	collection, err := pool.EnsureCollection(ctx, types.CollectionName, embedder.Model())
	if err != nil {
		log.Fatal("error to ensure collection ", err)
		return
	}

	llm := agent.NewClient(os.Getenv("GROQ_API_KEY"))
	analyzer := rag.NewAnalyzer(pool, embedder, llm, agent.DefaultRetryPolicy(), collection.ID)

	var (
		app            = fiber.New(config)
		checkHandler   = api.NewCheckHandler(pool, collection.ID)
		analyzeHandler = api.NewAnalyzeHandler(analyzer)
		check          = app.Group("/check")
		apiv1          = app.Group("/api/v1")
	)
	s.app = app

	app.Use(middleware.PlugStatic("/"))
	app.Static("/", "./static")

	check.Get("/healthy", checkHandler.HandleHealthy)
	apiv1.Post("/analyze", analyzeHandler.HandleAnalyze)

	err = app.Listen(s.listenAddr)
	if err != nil {
		s.logger.Error("error to start server", "error", err.Error())
		return
	}
}
