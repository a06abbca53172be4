package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/pokercount/backend/internal/auth"
	"github.com/pokercount/backend/internal/events"
	eventskafka "github.com/pokercount/backend/internal/events/kafka"
	"github.com/pokercount/backend/internal/middleware"
	"github.com/pokercount/backend/internal/service"
	"github.com/pokercount/backend/internal/settle"
	"github.com/pokercount/backend/internal/storage/sqlite"
	"github.com/pokercount/backend/pkg/logging"
)

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	logging.Setup()

	dbPath := getEnv("DB_PATH", "./data/pokercount.db")
	port := getEnv("PORT", "8080")
	jwtSecret := getEnv("JWT_SECRET", "")
	if jwtSecret == "" {
		slog.Warn("JWT_SECRET not set, using an insecure development secret")
		jwtSecret = "insecure-dev-secret"
	}
	tokenDuration, err := time.ParseDuration(getEnv("TOKEN_DURATION", "24h"))
	if err != nil {
		slog.Error("Invalid TOKEN_DURATION", "error", err)
		os.Exit(1)
	}
	lockTimeout, err := time.ParseDuration(getEnv("LOCK_TIMEOUT", "5s"))
	if err != nil {
		slog.Error("Invalid LOCK_TIMEOUT", "error", err)
		os.Exit(1)
	}

	// Initialize SQLite storage
	store, err := sqlite.New(dbPath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", dbPath)

	// Settlement events go to Kafka when brokers are configured.
	var publisher events.Publisher = events.Noop{}
	if brokers := getEnv("KAFKA_BROKERS", ""); brokers != "" {
		kafkaPublisher := eventskafka.NewPublisher(strings.Split(brokers, ","))
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
		slog.Info("Kafka publisher enabled", "brokers", brokers)
	}

	engine := settle.NewEngine(store, publisher, settle.WithLockTimeout(lockTimeout))

	jwtManager := auth.NewJWTManager(jwtSecret, tokenDuration)
	authenticator := auth.NewPasswordAuthenticator(store)

	authSvc := service.NewAuthService(authenticator, jwtManager)
	groupSvc := service.NewGroupService(store)
	sessionSvc := service.NewSessionService(store)
	settlementSvc := service.NewSettlementService(store, engine)

	requireAuth := middleware.RequireAuth(jwtManager)
	protected := func(h http.HandlerFunc) http.Handler {
		return requireAuth(h)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("POST /auth/register", authSvc.Register)
	mux.HandleFunc("POST /auth/login", authSvc.Login)

	mux.Handle("POST /groups", protected(groupSvc.CreateGroup))
	mux.Handle("GET /groups", protected(groupSvc.ListGroups))
	mux.Handle("GET /groups/{groupID}", protected(groupSvc.GetGroup))
	mux.Handle("DELETE /groups/{groupID}", protected(groupSvc.DeleteGroup))
	mux.Handle("POST /groups/{groupID}/join", protected(groupSvc.JoinGroup))
	mux.Handle("POST /groups/{groupID}/players", protected(groupSvc.AddPlayer))
	mux.Handle("DELETE /groups/{groupID}/players/{playerID}", protected(groupSvc.RemovePlayer))

	mux.Handle("POST /groups/{groupID}/sessions", protected(sessionSvc.CreateSession))
	mux.Handle("GET /groups/{groupID}/sessions/{sessionID}", protected(sessionSvc.GetSession))
	mux.Handle("DELETE /groups/{groupID}/sessions/{sessionID}", protected(sessionSvc.DeleteSession))

	mux.Handle("GET /groups/{groupID}/settlements", protected(settlementSvc.GetSettlements))
	mux.Handle("POST /groups/{groupID}/settlements/{settlementID}/settle", protected(settlementSvc.MarkSettled))

	handler := middleware.Logging(middleware.Metrics(middleware.CORS(mux)))

	// Wrap with h2c so HTTP/2 clients work without TLS.
	h2cHandler := h2c.NewHandler(handler, &http2.Server{})

	addr := fmt.Sprintf(":%s", port)
	slog.Info("Server starting", "address", addr, "url", fmt.Sprintf("http://localhost%s", addr))
	if err := http.ListenAndServe(addr, h2cHandler); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
