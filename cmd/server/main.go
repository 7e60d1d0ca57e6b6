package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/velic22/chirp/internal/config"
	"github.com/velic22/chirp/internal/database"
	postgresrepo "github.com/velic22/chirp/internal/repository/postgres"
	"github.com/velic22/chirp/internal/service"
	"github.com/velic22/chirp/internal/transport/http/handlers"
	"github.com/velic22/chirp/internal/transport/http/middleware"
	"github.com/velic22/chirp/internal/transport/ws"
	"github.com/velic22/chirp/pkg/logger"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Database
	pool, err := database.Connect(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("database connect failed")
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal().Err(err).Msg("migrations failed")
	}
	logger.Info().Msg("connected to database")

	// Repositories
	userRepo := postgresrepo.NewUserRepo(pool)
	messageRepo := postgresrepo.NewMessageRepo(pool)
	postRepo := postgresrepo.NewPostRepo(pool)
	likeRepo := postgresrepo.NewLikeRepo(pool)
	bookmarkRepo := postgresrepo.NewBookmarkRepo(pool)

	// Services
	authService := service.NewAuthService(userRepo, cfg.JWTSecret)
	userService := service.NewUserService(userRepo)
	chatService := service.NewChatService(messageRepo, userRepo)
	postService := service.NewPostService(postRepo, likeRepo, bookmarkRepo, userRepo)

	// Delivery relay: created here, torn down with the server
	hub := ws.NewHub()
	chatService.SetNotifier(ws.NewHubNotifier(hub))

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService)
	chatHandler := handlers.NewChatHandler(chatService)
	postHandler := handlers.NewPostHandler(postService)

	// Middleware
	auth := middleware.Auth(cfg.JWTSecret)
	authLimit := middleware.RateLimit(middleware.NewIPRateLimiter(rate.Limit(20.0/60.0), 10))
	apiLimit := middleware.RateLimit(middleware.NewIPRateLimiter(rate.Limit(10.0), 50))

	// Routes
	mux := http.NewServeMux()

	// Public
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status": "ok"}`))
	})
	mux.Handle("POST /api/v1/auth/register", authLimit(http.HandlerFunc(authHandler.Register)))
	mux.Handle("POST /api/v1/auth/login", authLimit(http.HandlerFunc(authHandler.Login)))
	mux.HandleFunc("GET /ws", ws.ServeWS(hub, cfg.JWTSecret))

	// Protected - Chat
	mux.Handle("GET /api/v1/chat", auth(http.HandlerFunc(chatHandler.GetHistory)))
	mux.Handle("POST /api/v1/chat", auth(http.HandlerFunc(chatHandler.Send)))
	mux.Handle("POST /api/v1/chat/seen", auth(http.HandlerFunc(chatHandler.MarkSeen)))
	mux.Handle("POST /api/v1/chat/start", auth(http.HandlerFunc(chatHandler.StartChat)))
	mux.Handle("GET /api/v1/conversations", auth(http.HandlerFunc(chatHandler.ListConversations)))

	// Protected - Users
	mux.Handle("GET /api/v1/users", auth(http.HandlerFunc(userHandler.Get)))
	mux.Handle("PUT /api/v1/users", auth(http.HandlerFunc(userHandler.Update)))
	mux.Handle("GET /api/v1/users/search", auth(http.HandlerFunc(userHandler.Search)))

	// Protected - Posts
	mux.Handle("GET /api/v1/posts", auth(http.HandlerFunc(postHandler.List)))
	mux.Handle("POST /api/v1/posts", auth(http.HandlerFunc(postHandler.Create)))
	mux.Handle("GET /api/v1/posts/{id}", auth(http.HandlerFunc(postHandler.Get)))
	mux.Handle("POST /api/v1/posts/{id}/like", auth(http.HandlerFunc(postHandler.ToggleLike)))
	mux.Handle("POST /api/v1/posts/{id}/repost", auth(http.HandlerFunc(postHandler.ToggleRepost)))
	mux.Handle("POST /api/v1/posts/{id}/bookmark", auth(http.HandlerFunc(postHandler.ToggleBookmark)))
	mux.Handle("GET /api/v1/bookmarks", auth(http.HandlerFunc(postHandler.ListBookmarks)))

	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.ServerPort),
		Handler: middleware.CORS(apiLimit(mux)),
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		hub.Run(gctx)
		return nil
	})

	g.Go(func() error {
		logger.Info().Str("addr", server.Addr).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Fatal().Err(err).Msg("server error")
	}
	logger.Info().Msg("server stopped")
}
