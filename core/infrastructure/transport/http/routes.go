package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/sqlgate/sqlgate/core/config"
	"github.com/sqlgate/sqlgate/core/gateway/executor"
	"github.com/sqlgate/sqlgate/core/infrastructure/logging"
	"github.com/sqlgate/sqlgate/core/infrastructure/transport/http/middleware"
)

// RegisterRoutes registers all HTTP routes. /health and /metrics are
// open; everything under /v1 requires the API key.
func RegisterRoutes(r *chi.Mux, exec *executor.Executor, cfg *config.Config) error {
	log := logging.New("routes")
	log.Infof("Registering HTTP routes")

	r.Get("/health", handleHealth)
	r.Method("GET", "/metrics", promhttp.Handler())

	var rateLimiter middleware.RateLimiter
	if rl := cfg.Server.RateLimit; rl.Enabled() {
		opt, err := redis.ParseURL(rl.RedisURL)
		if err != nil {
			return err
		}
		rateLimiter = middleware.NewRedisRateLimiter(redis.NewClient(opt))
		log.Infof("Rate limiting enabled: %d request(s) per %s", rl.Limit, rl.Window)
	}

	r.Route("/v1", func(v1 chi.Router) {
		v1.Use(middleware.APIKeyAuth(cfg.Server.APIKey))

		if rateLimiter != nil {
			rl := cfg.Server.RateLimit
			v1.Use(middleware.RateLimitByClient(rateLimiter, rl.Limit, rl.Window.Std()))
		}

		v1.Get("/servers", handleServers(exec))
		v1.Get("/databases", handleDatabases(exec))
		v1.Post("/query", handleQuery(exec))
	})

	log.Debugf("Routes registered: GET /health, GET /metrics, GET /v1/servers, GET /v1/databases, POST /v1/query")
	return nil
}
