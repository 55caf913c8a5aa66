package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/green-tasty/preorder-gateway/internal/api/handlers"
	"github.com/green-tasty/preorder-gateway/internal/api/middleware"
	"github.com/green-tasty/preorder-gateway/internal/cart"
	"github.com/green-tasty/preorder-gateway/internal/client"
	"github.com/green-tasty/preorder-gateway/internal/config"
	healthchecks "github.com/green-tasty/preorder-gateway/internal/health"
	"github.com/green-tasty/preorder-gateway/internal/metrics"
	"github.com/green-tasty/preorder-gateway/internal/reservation"
	"github.com/green-tasty/preorder-gateway/internal/session"
	"github.com/green-tasty/preorder-gateway/internal/storage"
	"github.com/green-tasty/preorder-gateway/internal/telemetry"
	"github.com/rs/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {

	// Logger setup
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Load config
	cfg := config.MustLoad()

	// Tracing setup
	shutdownTracing, err := telemetry.Setup(context.Background(), cfg)
	if err != nil {
		slog.Error("❌ Error setting up tracing", "error", err.Error())
		os.Exit(1)
	}

	// Storage setup
	var store storage.Storage

	switch cfg.Storage.Backend {
	case "redis":
		redisClient, err := storage.NewRedisClient(cfg)
		if err != nil {
			slog.Error("❌ Error accessing the redis instance", "error", err.Error())
			os.Exit(1)
		}

		store = storage.NewRedisStorage(redisClient)
	default:
		store, err = storage.NewFileStorage(cfg.Storage.Path)
		if err != nil {
			slog.Error("❌ Error opening the snapshot directory", "error", err.Error())
			os.Exit(1)
		}
	}

	defer func() {
		if err := store.Close(); err != nil {
			slog.Error("⚠️ Error closing storage", slog.String("error", err.Error()))
		} else {
			slog.Info("✅ Storage closed")
		}
	}()

	sessionStore := session.New(store)

	httpClient := &http.Client{
		Timeout:   cfg.Upstream.Timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}

	api := client.New(cfg.Upstream.BaseURL, httpClient, sessionStore)

	cartStore := cart.NewStore(api)
	if err := cart.AttachPersistence(context.Background(), cartStore, store); err != nil {
		slog.Error("❌ Error restoring the cart snapshot", "error", err.Error())
		os.Exit(1)
	}

	flowManager := reservation.NewManager(api)

	cartHandler := handlers.NewCartHandler(cartStore)
	bookingHandler := handlers.NewBookingHandler(flowManager, api)
	feedbackHandler := handlers.NewFeedbackHandler(api)
	sessionHandler := handlers.NewSessionHandler(sessionStore, cartStore)
	sessionMiddleware := middleware.NewSessionMiddleware(sessionStore)

	healthHandler, err := healthchecks.NewHealthHandler(cfg, &healthchecks.Endpoints{
		Storage:    store,
		HTTPClient: httpClient,
	})
	if err != nil {
		slog.Error("❌ Error setting up health checks", "error", err.Error())
		os.Exit(1)
	}

	slog.Info("storage initialized", slog.String("env", cfg.Env), slog.String("backend", cfg.Storage.Backend), slog.String("version", "1.0.0"))

	// Setup router
	routerMux := http.NewServeMux()
	routerMux.HandleFunc("GET /api/v1/cart", cartHandler.GetCart())
	routerMux.HandleFunc("POST /api/v1/cart/refresh", sessionMiddleware.RequireSession(cartHandler.RefreshCart()))
	routerMux.HandleFunc("POST /api/v1/cart/dishes", cartHandler.AddDish())
	routerMux.HandleFunc("PATCH /api/v1/cart/items/{reservationId}", cartHandler.UpdateItem())
	routerMux.HandleFunc("DELETE /api/v1/cart/items/{reservationId}/dishes/{dishId}", cartHandler.RemoveDish())
	routerMux.HandleFunc("POST /api/v1/cart/items/{reservationId}/submit", sessionMiddleware.RequireSession(cartHandler.SubmitItem()))
	routerMux.HandleFunc("POST /api/v1/cart/items/{reservationId}/edit", cartHandler.StartEdit())
	routerMux.HandleFunc("POST /api/v1/cart/items/{reservationId}/edit/cancel", cartHandler.CancelEdit())
	routerMux.HandleFunc("DELETE /api/v1/cart", cartHandler.ClearCart())
	routerMux.HandleFunc("GET /api/v1/slots", bookingHandler.Slots())
	routerMux.HandleFunc("POST /api/v1/flows", bookingHandler.OpenFlow())
	routerMux.HandleFunc("GET /api/v1/flows/{id}", bookingHandler.GetFlow())
	routerMux.HandleFunc("PATCH /api/v1/flows/{id}", bookingHandler.UpdateFlow())
	routerMux.HandleFunc("POST /api/v1/flows/{id}/submit", sessionMiddleware.RequireSession(bookingHandler.SubmitFlow()))
	routerMux.HandleFunc("POST /api/v1/flows/{id}/reedit", bookingHandler.ReeditFlow())
	routerMux.HandleFunc("POST /api/v1/flows/{id}/cancel", sessionMiddleware.RequireSession(bookingHandler.CancelFlowReservation()))
	routerMux.HandleFunc("GET /api/v1/flows/{id}/qr", bookingHandler.FlowQR())
	routerMux.HandleFunc("DELETE /api/v1/flows/{id}", bookingHandler.CloseFlow())
	routerMux.HandleFunc("DELETE /api/v1/reservations/{id}", sessionMiddleware.RequireSession(bookingHandler.CancelReservation()))
	routerMux.HandleFunc("POST /api/v1/feedback", sessionMiddleware.RequireSession(feedbackHandler.SubmitFeedback()))
	routerMux.HandleFunc("GET /api/v1/session", sessionHandler.GetSession())
	routerMux.HandleFunc("PUT /api/v1/session/token", sessionHandler.SetToken())
	routerMux.HandleFunc("POST /api/v1/session/logout", sessionHandler.Logout())
	routerMux.Handle("GET /healthz", healthHandler.Handler())
	routerMux.Handle("GET /metrics", metrics.Handler())

	// Middleware chaining
	var handler http.Handler = routerMux
	handler = metrics.Middleware(handler)
	handler = middleware.Logging(handler)
	handler = cors.New(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Request-ID"},
		AllowCredentials: true,
	}).Handler(handler)

	// Setup http server
	server := http.Server{
		Addr:    cfg.Addr,
		Handler: handler,
	}

	slog.Info("🚀 Server is starting...", slog.String("address", cfg.Addr))

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			slog.Error("❌ Failed to start server", slog.Any("error", err.Error()))
		}
	}()

	<-done

	slog.Warn("🛑 Shutdown signal received. Preparing to stop the server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("⚠️ Server shutdown encountered an issue", slog.String("error", err.Error()))
	} else {
		slog.Info("✅ Server shut down gracefully. All connections closed.")
	}

	if err := shutdownTracing(shutdownCtx); err != nil {
		slog.Error("⚠️ Tracing shutdown encountered an issue", slog.String("error", err.Error()))
	}
}
