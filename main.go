package main

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/qubeshub/com-oaipmh/config"
	"github.com/qubeshub/com-oaipmh/models"
	"github.com/qubeshub/com-oaipmh/providers"
	"github.com/qubeshub/com-oaipmh/providers/publications"
	"github.com/qubeshub/com-oaipmh/providers/resources"
	"github.com/qubeshub/com-oaipmh/schema"
	"github.com/qubeshub/com-oaipmh/schema/dublincore"
	"github.com/qubeshub/com-oaipmh/services"
	"github.com/qubeshub/com-oaipmh/storage"
)

var (
	requestsTotal *prometheus.CounterVec
	errorsTotal   *prometheus.CounterVec
)

func init() {
	requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "oaipmh_requests_total",
			Help: "Total number of OAI-PMH requests, per verb.",
		},
		[]string{"verb"},
	)
	errorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "oaipmh_protocol_errors_total",
			Help: "Total number of OAI-PMH protocol errors, per error code.",
		},
		[]string{"code"},
	)
	prometheus.MustRegister(requestsTotal, errorsTotal)
}

var knownVerbs = map[string]bool{
	"Identify":            true,
	"ListMetadataFormats": true,
	"ListSets":            true,
	"ListIdentifiers":     true,
	"ListRecords":         true,
	"GetRecord":           true,
}

func main() {
	logging, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("can't initialize zap logger: %v", err)
	}
	defer logging.Sync()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal("Config load error", zap.Error(err))
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		logging.Fatal("Failed to connect to database", zap.Error(err))
	}
	logging.Info("Successfully connected to repository database.")

	logging.Info("Running database auto-migration...")
	db.AutoMigrate(&models.Publication{}, &models.Resource{}, &models.ResumptionToken{})

	// Setup Providers
	providerRegistry := providers.NewRegistry()
	enabled := strings.Split(cfg.EnabledProviders, ",")
	for _, name := range enabled {
		switch strings.TrimSpace(name) {
		case "publications":
			providerRegistry.Register("publications", publications.New(cfg, logging))
		case "resources":
			providerRegistry.Register("resources", resources.New(cfg, logging))
		default:
			logging.Warn("Unknown provider in config", zap.String("provider_name", name))
		}
	}
	if providerRegistry.Len() == 0 {
		logging.Fatal("No valid providers enabled. Check ENABLED_PROVIDERS in .env")
	}
	logging.Info("Active providers loaded", zap.Strings("providers", enabled))

	schemaRegistry := schema.NewRegistry(dublincore.New())
	tokenStore := storage.NewTokenStore(db, time.Duration(cfg.TokenTTLMinutes)*time.Minute)

	opts := services.Options{
		Config:    cfg,
		Logger:    logging,
		Executor:  storage.NewExecutor(db),
		Tokens:    tokenStore,
		Schemas:   schemaRegistry,
		Providers: providerRegistry,
	}
	// Fail fast on wiring mistakes instead of per request.
	if _, err := services.New(opts); err != nil {
		logging.Fatal("Service wiring invalid", zap.Error(err))
	}

	// Setup Router
	router := gin.Default()
	router.Use(gin.Recovery())
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "com-oaipmh"})
	})
	setupOAIRoutes(router, opts, logging)

	// Setup Cron
	sweeper := cron.New()
	sweeper.AddFunc(cfg.SweepSchedule, func() {
		removed, err := tokenStore.Sweep()
		if err != nil {
			logging.Error("Token sweep failed", zap.Error(err))
		} else if removed > 0 {
			logging.Info("Token sweep completed", zap.Int64("removed", removed))
		}
	})
	sweeper.Start()

	logging.Info("Starting server", zap.String("port", cfg.HTTPPort))
	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		logging.Fatal("Failed to run server", zap.Error(err))
	}
}

// setupOAIRoutes mounts the protocol endpoint for GET and POST.
func setupOAIRoutes(router *gin.Engine, opts services.Options, log *zap.Logger) {
	handler := func(c *gin.Context) {
		value := func(name string) string {
			if v := c.Query(name); v != "" {
				return v
			}
			return c.PostForm(name)
		}
		params := services.Params{
			Verb:            value("verb"),
			Identifier:      value("identifier"),
			MetadataPrefix:  value("metadataPrefix"),
			From:            value("from"),
			Until:           value("until"),
			Set:             value("set"),
			ResumptionToken: value("resumptionToken"),
		}

		verbLabel := params.Verb
		if !knownVerbs[verbLabel] {
			verbLabel = "invalid"
		}
		requestsTotal.WithLabelValues(verbLabel).Inc()

		svc, err := services.New(opts)
		if err != nil {
			log.Error("Service construction failed", zap.Error(err))
			c.String(http.StatusInternalServerError, "internal error")
			return
		}
		if err := svc.Dispatch(params); err != nil {
			log.Error("Request failed", zap.String("verb", params.Verb), zap.Error(err))
			c.String(http.StatusInternalServerError, "internal error")
			return
		}
		if code, ok := svc.ProtocolError(); ok {
			errorsTotal.WithLabelValues(string(code)).Inc()
		}

		body, err := svc.Response()
		if err != nil {
			log.Error("Response serialization failed", zap.Error(err))
			c.String(http.StatusInternalServerError, "internal error")
			return
		}
		c.Data(http.StatusOK, "text/xml; charset=utf-8", []byte(body))
	}

	router.GET("/oai", handler)
	router.POST("/oai", handler)
}
