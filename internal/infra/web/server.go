package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"subscription-credit-sync/internal/config"
	red "subscription-credit-sync/internal/infra/redis"
	"subscription-credit-sync/internal/infra/worker"
	"subscription-credit-sync/internal/usecase"
)

type Server struct {
	lifecycleUC usecase.LifecycleUseCase
	ledgerUC    usecase.CreditLedgerUseCase
	statsUC     usecase.StatsUseCase
	limiter     *red.RateLimiter
	pool        *worker.Pool
	cfg         *config.Config
	log         *zerolog.Logger

	httpSrv *http.Server
}

func NewServer(
	lifecycleUC usecase.LifecycleUseCase,
	ledgerUC usecase.CreditLedgerUseCase,
	statsUC usecase.StatsUseCase,
	limiter *red.RateLimiter,
	pool *worker.Pool,
	cfg *config.Config,
	logger *zerolog.Logger,
) *Server {
	return &Server{
		lifecycleUC: lifecycleUC,
		ledgerUC:    ledgerUC,
		statsUC:     statsUC,
		limiter:     limiter,
		pool:        pool,
		cfg:         cfg,
		log:         logger,
	}
}

// Router builds the full route tree. Split out from Start so tests can mount
// it on httptest.Server.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(s.jwtMiddleware)
			r.Post("/notifications", s.notificationsHandler())
		})

		r.Group(func(r chi.Router) {
			r.Use(s.adminMiddleware)
			r.Get("/stats", s.statsHandler())
			r.Get("/balances/{uid}", s.balanceGetHandler())
			r.Post("/balances/{uid}/consume", s.consumeHandler())
			r.Post("/balances/{uid}/refund", s.refundHandler())
		})
	})

	return r
}

func (s *Server) Start() error {
	s.httpSrv = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Server.Port),
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	s.log.Info().Int("port", s.cfg.Server.Port).Msg("http server listening")
	if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}

// jwtMiddleware authenticates the provider's change notifications. Tokens are
// HS256 signed with the shared webhook secret.
func (s *Server) jwtMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tok := bearerToken(r)
		if tok == "" {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		opts := []jwt.ParserOption{jwt.WithValidMethods([]string{"HS256"})}
		if s.cfg.Webhook.Issuer != "" {
			opts = append(opts, jwt.WithIssuer(s.cfg.Webhook.Issuer))
		}
		claims := &jwt.RegisteredClaims{}
		parsed, err := jwt.ParseWithClaims(tok, claims, func(t *jwt.Token) (any, error) {
			return []byte(s.cfg.Webhook.JWTSecret), nil
		}, opts...)
		if err != nil || !parsed.Valid {
			s.log.Warn().Err(err).Msg("rejected notification token")
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// adminMiddleware provides simple Bearer token authentication for the admin API.
func (s *Server) adminMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.cfg.Server.AdminAPIKey == "" {
			s.log.Error().Msg("Admin API key is not configured")
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}

		tok := bearerToken(r)
		if tok == "" {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		if tok != s.cfg.Server.AdminAPIKey {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) string {
	hdr := r.Header.Get("Authorization")
	if hdr == "" {
		return ""
	}
	parts := strings.SplitN(hdr, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
