package internal

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/IBM/pgxpoolprometheus"
	"github.com/getsentry/sentry-go"
	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redis_rate/v9"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.uber.org/multierr"

	"github.com/2beens/fittrack/internal/config"
	"github.com/2beens/fittrack/internal/db"
	"github.com/2beens/fittrack/internal/middleware"
	"github.com/2beens/fittrack/internal/progress"
	"github.com/2beens/fittrack/internal/telemetry/metrics"
	"github.com/2beens/fittrack/internal/telemetry/tracing"
	"github.com/2beens/fittrack/internal/templates"
	"github.com/2beens/fittrack/internal/tracking"
	"github.com/2beens/fittrack/internal/workouts"
	"github.com/2beens/fittrack/pkg"
)

const samplesRateLimitKey = "samples"

type Server struct {
	httpServer        *http.Server
	metricsHttpServer *http.Server
	versionInfo       string

	config      *config.Config
	dbPool      *pgxpool.Pool
	redisClient *redis.Client
	rateLimiter middleware.RequestRateLimiter

	recorder        *tracking.Recorder
	ledger          *progress.Ledger
	workoutsService *workouts.Service
	templatesRepo   templates.Repo

	// metrics
	metricsManager *metrics.Manager
	promRegistry   *prometheus.Registry
	otelShutdown   func()
}

type NewServerParams struct {
	Config      *config.Config
	VersionInfo string
	// Transport feeds location samples to tracking sessions. Samples can
	// always be posted over the API; nil means no other source.
	Transport tracking.Transport
}

func NewServer(
	ctx context.Context,
	params NewServerParams,
) (*Server, error) {
	cfg := params.Config
	s := &Server{
		config:      cfg,
		versionInfo: params.VersionInfo,
	}

	var (
		progressStore progress.Store
		workoutsRepo  workouts.Repo
		templatesRepo templates.Repo
		collectors    []prometheus.Collector
	)
	switch cfg.Storage {
	case "postgres":
		dbParams := db.NewDBPoolParams{
			DBHost:         cfg.PostgresHost,
			DBPort:         cfg.PostgresPort,
			DBName:         cfg.PostgresDBName,
			DBUser:         cfg.PostgresUser,
			DBPassword:     cfg.PostgresPassword,
			TracingEnabled: cfg.HoneycombEnabled,
		}
		if cfg.MigrateOnStart {
			if err := db.MigrateUp(dbParams); err != nil {
				return nil, fmt.Errorf("migrate db: %w", err)
			}
		}

		dbPool, err := db.NewDBPool(ctx, dbParams)
		if err != nil {
			return nil, fmt.Errorf("new db pool: %w", err)
		}
		if err := dbPool.Ping(ctx); err != nil {
			log.Warnf("failed to ping db: %s", err)
		}

		s.dbPool = dbPool
		progressStore = progress.NewPsqlStore(dbPool)
		workoutsRepo = workouts.NewPsqlRepo(dbPool)
		templatesRepo = templates.NewPsqlRepo(dbPool)
		collectors = append(collectors, pgxpoolprometheus.NewCollector(
			dbPool,
			map[string]string{"db_name": cfg.PostgresDBName},
		))
	default:
		log.Debugln("using in-memory storage")
		progressStore = progress.NewMemoryStore()
		workoutsRepo = workouts.NewMemoryRepo()
		templatesRepo = templates.NewMemoryRepo()
	}

	s.promRegistry = metrics.SetupPrometheus(collectors...)
	s.metricsManager = metrics.NewManager("fittrack", "main", s.promRegistry)
	s.metricsManager.GaugeLifeSignal.Set(0)

	var bestCache progress.BestCache
	switch cfg.BestCache {
	case "redis":
		rdb := redis.NewClient(&redis.Options{
			Addr:     net.JoinHostPort(cfg.RedisHost, cfg.RedisPort),
			Password: cfg.RedisPassword,
			DB:       0, // use default DB
		})
		rdbStatus := rdb.Ping(ctx)
		if err := rdbStatus.Err(); err != nil {
			log.Errorf("--> failed to ping redis: %s", err)
		} else {
			log.Debugf("redis ping: %s", rdbStatus.Val())
		}

		s.redisClient = rdb
		s.rateLimiter = redis_rate.NewLimiter(rdb)
		bestCache = progress.NewRedisBestCache(rdb)
	default:
		bestCache = progress.NewMemoryBestCache(0)
	}

	// use honeycomb distro to setup OpenTelemetry SDK
	otelShutdown, err := tracing.HoneycombSetup(cfg.HoneycombEnabled, "fittrack", s.redisClient)
	if err != nil {
		s.closeStorage()
		return nil, err
	}
	s.otelShutdown = otelShutdown

	s.ledger = progress.NewLedger(progressStore, bestCache, s.metricsManager)
	s.templatesRepo = templatesRepo
	s.workoutsService = workouts.NewService(workoutsRepo, s.ledger, templatesRepo, s.metricsManager)
	s.recorder = tracking.NewRecorder(tracking.RecorderParams{
		CardioOptions:  cfg.CardioOptions(),
		Transport:      params.Transport,
		MetricsManager: s.metricsManager,
		OnComplete:     []tracking.CompletionHook{s.workoutsService.OnSessionComplete},
	})

	return s, nil
}

func (s *Server) routerSetup() *mux.Router {
	r := mux.NewRouter()
	r.Use(otelmux.Middleware("fittrack-router"))

	trackingHandler := tracking.NewHandler(s.recorder)
	r.HandleFunc("/sessions", trackingHandler.HandleStart).Methods("POST", "OPTIONS").Name("start-session")
	r.HandleFunc("/sessions/current", trackingHandler.HandleCurrent).Methods("GET", "OPTIONS").Name("current-session")
	r.HandleFunc("/sessions/current", trackingHandler.HandleDiscard).Methods("DELETE", "OPTIONS").Name("discard-session")
	r.HandleFunc("/sessions/current/route", trackingHandler.HandleCurrentRoute).Methods("GET", "OPTIONS").Name("current-route")
	r.HandleFunc("/sessions/current/pause", trackingHandler.HandlePause).Methods("POST", "OPTIONS").Name("pause-session")
	r.HandleFunc("/sessions/current/resume", trackingHandler.HandleResume).Methods("POST", "OPTIONS").Name("resume-session")
	r.HandleFunc("/sessions/current/stop", trackingHandler.HandleStop).Methods("POST", "OPTIONS").Name("stop-session")

	samplesRouter := r.PathPrefix("/sessions/current/samples").Subrouter()
	samplesRouter.HandleFunc("", trackingHandler.HandleSamples).Methods("POST", "OPTIONS").Name("session-samples")
	if s.rateLimiter != nil && s.config.SamplesPerMinute > 0 {
		samplesRouter.Use(middleware.RateLimit(s.rateLimiter, samplesRateLimitKey, s.config.SamplesPerMinute))
	}

	workoutsHandler := workouts.NewHandler(s.workoutsService)
	r.HandleFunc("/strength", workoutsHandler.HandleStrength).Methods("POST", "OPTIONS").Name("new-strength")
	r.HandleFunc("/cardio/manual", workoutsHandler.HandleManualCardio).Methods("POST", "OPTIONS").Name("new-manual-cardio")
	r.HandleFunc("/workouts/list/page/{page}/size/{size}", workoutsHandler.HandleList).Methods("GET", "OPTIONS").Name("list-workouts")
	r.HandleFunc("/workouts/route/{id}", workoutsHandler.HandleRoute).Methods("GET", "OPTIONS").Name("workout-route")

	templatesHandler := templates.NewHandler(s.templatesRepo)
	r.HandleFunc("/templates", templatesHandler.HandleList).Methods("GET", "OPTIONS").Name("list-templates")
	r.HandleFunc("/templates", templatesHandler.HandleAdd).Methods("POST", "OPTIONS").Name("new-template")
	r.HandleFunc("/templates/{id}", templatesHandler.HandleGet).Methods("GET", "OPTIONS").Name("get-template")

	progressHandler := progress.NewHandler(s.ledger)
	r.HandleFunc("/progress/{template}/history/{kind}", progressHandler.HandleHistory).Methods("GET", "OPTIONS").Name("progress-history")
	r.HandleFunc("/progress/{template}/best/{kind}", progressHandler.HandleBest).Methods("GET", "OPTIONS").Name("progress-best")
	r.HandleFunc("/progress/{template}/latest", progressHandler.HandleLatest).Methods("GET", "OPTIONS").Name("progress-latest")

	r.HandleFunc("/version", func(w http.ResponseWriter, _ *http.Request) {
		pkg.WriteTextResponseOK(w, s.versionInfo)
	}).Methods("GET").Name("version")

	// all the rest - unhandled paths
	r.HandleFunc("/{unknown}", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}).Methods("GET", "POST", "PUT", "DELETE", "OPTIONS").Name("unknown")

	r.Use(middleware.PanicRecovery(s.metricsManager))
	r.Use(middleware.LogRequest())
	r.Use(middleware.RequestMetrics(s.metricsManager))
	r.Use(middleware.Cors(s.config.AllowedOrigins))
	r.Use(middleware.APITokenCheck(s.config.APIToken))
	r.Use(middleware.DrainAndCloseRequest(s.config.MaxBodyBytes))

	return r
}

// Router exposes the configured API router without listening.
func (s *Server) Router() http.Handler {
	return s.routerSetup()
}

func (s *Server) Serve(host string, port, metricsPort int) {
	ipAndPort := net.JoinHostPort(host, strconv.Itoa(port))
	s.httpServer = &http.Server{
		Handler:      s.routerSetup(),
		Addr:         ipAndPort,
		WriteTimeout: time.Minute,
		ReadTimeout:  time.Minute,
		ConnState:    s.connStateMetrics,
	}

	metricsRouter := mux.NewRouter()
	metricsRouter.Handle("/metrics", promhttp.HandlerFor(
		s.promRegistry,
		promhttp.HandlerOpts{},
	))
	metricsAddr := net.JoinHostPort(host, strconv.Itoa(metricsPort))
	s.metricsHttpServer = &http.Server{
		Addr:    metricsAddr,
		Handler: metricsRouter,
	}

	go func() {
		log.Infof(" > server listening on: [%s]", ipAndPort)
		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("main service, listen and serve: %s", err)
		}
	}()

	go func() {
		log.Debugf(" > metrics listening on: [%s]", metricsAddr)
		err := s.metricsHttpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("metrics service, listen and serve: %s", err)
		}
	}()

	s.metricsManager.GaugeLifeSignal.Set(1)
}

// GracefulShutdown closes the API first, so no session can start after the
// active one is stopped and saved. Storage is closed last.
func (s *Server) GracefulShutdown() {
	log.Debug("graceful shutdown initiated ...")

	s.metricsManager.GaugeLifeSignal.Set(0)

	maxWaitDuration := time.Second * 15
	ctx, timeoutCancel := context.WithTimeout(context.Background(), maxWaitDuration)
	defer timeoutCancel()

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			log.Error(" >>> failed to gracefully shutdown http server")
		}
		log.Warnln("server shut down")
	}

	if session, ok := s.recorder.Current(); ok && session.State().Active() {
		log.Infof("stopping active session %s before shutdown", session.ID())
		if _, err := s.recorder.Stop(ctx); err != nil {
			log.Errorf("stop session %s on shutdown: %s", session.ID(), err)
		}
	}

	if s.metricsHttpServer != nil {
		if err := s.metricsHttpServer.Shutdown(ctx); err != nil {
			log.Error(" >>> failed to gracefully shutdown metrics http server")
		}
		log.Warnln("metrics server shut down")
	}

	s.otelShutdown()
	log.Trace("otel shut down ...")

	s.closeStorage()

	if ok := sentry.Flush(5 * time.Second); ok {
		log.Debugf("sentry flush ok: %t", ok)
	}
}

func (s *Server) closeStorage() {
	var err error
	if s.redisClient != nil {
		err = multierr.Append(err, s.redisClient.Close())
	}
	if s.dbPool != nil {
		log.Debugln("closing db pool ...")
		s.dbPool.Close() // blocking operation
		log.Debugln("db pool closed")
	}
	if err != nil {
		log.Errorf("failed to close storage conns: %s", err)
	}
}

func (s *Server) connStateMetrics(_ net.Conn, state http.ConnState) {
	switch state {
	case http.StateNew:
		s.metricsManager.GaugeRequests.Add(1)
	case http.StateClosed:
		s.metricsManager.GaugeRequests.Add(-1)
	default:
		// do nothing
	}
}
