package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sagebrush-ag/fireline/internal/scheduler"
)

var (
	servePort      int
	serveScheduler bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		if serveScheduler {
			sched := scheduler.New(env.Store, env.Engine, env.Sweeper, env.Reporter, cfg.Scheduler)
			if err := sched.Start(ctx); err != nil {
				return err
			}
		}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: newRouter(env),
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			drainAndShutdown(srv)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

// shutdownDrainTimeout bounds how long in-flight requests may keep
// running once a shutdown signal arrives.
const shutdownDrainTimeout = 10 * time.Second

// drainAndShutdown stops the server on a fresh context so requests
// already in flight get the full drain window.
func drainAndShutdown(srv *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownDrainTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zap.L().Warn("server shutdown", zap.Error(err))
	}
}

// newRouter wires every API route.
func newRouter(env *appEnv) http.Handler {
	a := &api{env: env}

	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "Authorization"},
		MaxAge:         300,
	}))
	r.Use(requestLogger)

	r.Get("/health", a.health)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/users", a.createUser)
		r.Get("/users/{userID}", a.getUser)
		r.Get("/users/{userID}/preferences", a.getPreferences)
		r.Put("/users/{userID}/preferences", a.putPreferences)

		r.Post("/farms", a.createFarm)
		r.Get("/farms/{farmID}", a.getFarm)
		r.Get("/farms/{farmID}/fields", a.listFarmFields)
		r.Get("/farms/{farmID}/metrics/water", a.farmWaterMetrics)

		r.Post("/fields", a.createField)
		r.Get("/fields", a.listFields)
		r.Get("/fields/{fieldID}", a.getField)
		r.Post("/fields/{fieldID}/readings", a.insertReading)
		r.Get("/fields/{fieldID}/readings/latest", a.latestReading)
		r.Get("/fields/{fieldID}/snapshot", a.fieldSnapshot)
		r.Post("/fields/{fieldID}/recommend", a.recommend)
		r.Get("/fields/{fieldID}/metrics/water", a.fieldWaterMetrics)
		r.Get("/fields/{fieldID}/metrics/fire", a.fieldFireMetrics)

		r.Get("/recommendations", a.listRecommendations)
		r.Get("/recommendations/{recID}", a.getRecommendation)
		r.Post("/recommendations/{recID}/accept", a.acceptRecommendation)
		r.Get("/recommendations/{recID}/explain", a.explainRecommendation)

		r.Post("/psps/sweep", a.pspsSweep)

		r.Get("/alerts", a.listAlerts)
		r.Get("/alerts/critical", a.criticalAlerts)
		r.Post("/alerts/{alertID}/ack", a.acknowledgeAlert)
	})

	return r
}

// requestLogger logs method, path, and elapsed time for each request.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		next.ServeHTTP(w, r)
		zap.L().Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("elapsed", time.Since(started)),
		)
	})
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	serveCmd.Flags().BoolVar(&serveScheduler, "scheduler", false, "also run the recurring agent sweeps")
	rootCmd.AddCommand(serveCmd)
}
