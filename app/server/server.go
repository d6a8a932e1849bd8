package server

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"expenseai/app/agent"
	"expenseai/app/api"
	"expenseai/app/middleware"
	"expenseai/model"
	"expenseai/store"
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
			s.logger.Error("error to shut down server", "error", err.Error())
		}
	}
	s.logger.Info("server stopped")
}

// NewApp wires middleware and routes around the injected collaborators.
// CORS stays wide open so browser frontends on other origins can call the
// API directly.
func NewApp(vectorStore store.VectorStorer, embedder model.EmbedderInterface, lmStudio agent.Generator) *fiber.App {
	var (
		app           = fiber.New(config)
		uploadHandler = api.NewUploadHandler(vectorStore, embedder)
		chatHandler   = api.NewChatHandler(vectorStore, embedder, lmStudio)
		checkHandler  = api.NewCheckHandler(lmStudio)
	)

	app.Use(cors.New())
	app.Use(middleware.RequestID())

	app.Post("/upload_expenses", uploadHandler.HandleUploadExpenses)
	app.Post("/chat", chatHandler.HandleChat)
	app.Get("/health", checkHandler.HandleHealth)
	app.Get("/", checkHandler.HandleRoot)

	return app
}

func (s *Server) Run() {
	ctx := context.Background()

	vectorStore, err := newVectorStore(ctx)
	if err != nil {
		log.Fatal("error to connect to vector store", err)
		return
	}

	embedder := model.NewOllamaEmbedder(os.Getenv("OLLAMA_EMBEDDING_URL"), os.Getenv("OLLAMA_EMBEDDING_MODEL"))
	lmStudio := agent.NewLMStudio(os.Getenv("LM_STUDIO_URL"))

	s.app = NewApp(vectorStore, embedder, lmStudio)

	if err := s.app.Listen(s.listenAddr); err != nil {
		s.logger.Error("error to start server", "error", err.Error())
	}
}

// newVectorStore picks the index backend: Postgres with pgvector by
// default, the in-memory store when VECTOR_STORE=memory.
func newVectorStore(ctx context.Context) (store.VectorStorer, error) {
	if os.Getenv("VECTOR_STORE") == "memory" {
		return store.NewMemoryStore(), nil
	}

	port, _ := strconv.Atoi(os.Getenv("PG_PORT"))
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		os.Getenv("PG_HOST"), port, os.Getenv("PG_USER"), os.Getenv("PG_PASS"), os.Getenv("PG_DB_NAME"))
	pg, err := store.NewPostgresStore(ctx, connStr)
	if err != nil {
		return nil, err
	}
	if err := pg.Init(ctx); err != nil {
		return nil, err
	}
	return pg, nil
}
