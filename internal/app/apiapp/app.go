package apiapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/minio/minio-go/v7"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Scaleupapp-nirpeksh/creatorgenius-ai/internal/config"
	"github.com/Scaleupapp-nirpeksh/creatorgenius-ai/internal/domain/enums"
	"github.com/Scaleupapp-nirpeksh/creatorgenius-ai/internal/domain/rules"
	"github.com/Scaleupapp-nirpeksh/creatorgenius-ai/internal/infra/httpclient"
	"github.com/Scaleupapp-nirpeksh/creatorgenius-ai/internal/jobs/cleanup"
	s3infra "github.com/Scaleupapp-nirpeksh/creatorgenius-ai/internal/infra/s3"
	pgrepo "github.com/Scaleupapp-nirpeksh/creatorgenius-ai/internal/repo/postgres"
	redrepo "github.com/Scaleupapp-nirpeksh/creatorgenius-ai/internal/repo/redis"
	authsvc "github.com/Scaleupapp-nirpeksh/creatorgenius-ai/internal/services/auth"
	billingsvc "github.com/Scaleupapp-nirpeksh/creatorgenius-ai/internal/services/billing"
	feedbacksvc "github.com/Scaleupapp-nirpeksh/creatorgenius-ai/internal/services/feedback"
	ideasvc "github.com/Scaleupapp-nirpeksh/creatorgenius-ai/internal/services/ideas"
	insightsvc "github.com/Scaleupapp-nirpeksh/creatorgenius-ai/internal/services/insights"
	llmsvc "github.com/Scaleupapp-nirpeksh/creatorgenius-ai/internal/services/llm"
	quotasvc "github.com/Scaleupapp-nirpeksh/creatorgenius-ai/internal/services/quota"
	ratesvc "github.com/Scaleupapp-nirpeksh/creatorgenius-ai/internal/services/rate"
	scriptsvc "github.com/Scaleupapp-nirpeksh/creatorgenius-ai/internal/services/scripts"
	searchsvc "github.com/Scaleupapp-nirpeksh/creatorgenius-ai/internal/services/search"
	userssvc "github.com/Scaleupapp-nirpeksh/creatorgenius-ai/internal/services/users"
)

type App struct {
	cfg        config.Config
	logger     *zap.Logger
	server     *http.Server
	postgres   *pgxpool.Pool
	redis      *goredis.Client
	s3         *minio.Client
	httpRouter http.Handler
	cleanup    *cleanup.Job
}

func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	limits, err := buildLimitTable(cfg.Quota)
	if err != nil {
		return nil, fmt.Errorf("build limit table: %w", err)
	}

	defaultLoc, err := time.LoadLocation(cfg.Quota.DefaultTimezone)
	if err != nil {
		return nil, fmt.Errorf("load default timezone %q: %w", cfg.Quota.DefaultTimezone, err)
	}

	r := chi.NewRouter()
	ApplyMiddlewares(r, log)

	var pool *pgxpool.Pool
	if p, err := pgrepo.NewPool(ctx, cfg.Postgres.DSN); err != nil {
		log.Warn("postgres init failed, continuing in degraded mode", zap.Error(err))
	} else {
		pool = p
	}
	if pool != nil && cfg.Postgres.Migrate {
		if err := pgrepo.Migrate(cfg.Postgres.DSN); err != nil {
			return nil, fmt.Errorf("run migrations: %w", err)
		}
	}

	redisClient := redrepo.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	sessionRepo := redrepo.NewSessionRepo(redisClient)
	rateRepo := redrepo.NewRateRepo(redisClient)

	userRepo := pgrepo.NewUserRepo(pool)
	usageRepo := pgrepo.NewUsageRepo(pool)
	storageCounts := pgrepo.NewStorageCountRepo(pool)
	ideaRepo := pgrepo.NewIdeaRepo(pool)
	scriptRepo := pgrepo.NewScriptRepo(pool)
	insightRepo := pgrepo.NewInsightRepo(pool)
	feedbackRepo := pgrepo.NewFeedbackRepo(pool)
	purchaseRepo := pgrepo.NewPurchaseRepo(pool)
	billingStore := pgrepo.NewBillingStore(pool, purchaseRepo, userRepo)

	jwtManager := authsvc.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTAccessTTL)
	authService := authsvc.NewService(jwtManager, &authUserStore{repo: userRepo}, sessionRepo, cfg.Auth.RefreshTTL)
	userService := userssvc.NewService(&userDirectory{repo: userRepo})

	quotaService := quotasvc.NewService(usageRepo, storageCounts, limits, cfg.Quota.RenewalDay, defaultLoc, log)
	rateLimiter := ratesvc.NewLimiter(rateRepo, cfg.Rate.GeneratePerMinute, cfg.Rate.GeneratePer10Sec)

	provider := llmsvc.NewOpenAI(cfg.LLM.APIKey, cfg.LLM.BaseURL, httpclient.New(cfg.LLM.Timeout))
	generator := llmsvc.NewGenerator(provider, cfg.LLM.Model, cfg.LLM.MaxTokens, cfg.LLM.Temperature)

	var s3Client *minio.Client
	if c, err := s3infra.NewClient(s3infra.Config{
		Endpoint:  cfg.S3.Endpoint,
		AccessKey: cfg.S3.AccessKey,
		SecretKey: cfg.S3.SecretKey,
		UseSSL:    cfg.S3.UseSSL,
	}); err != nil {
		log.Warn("s3 init failed, continuing in degraded mode", zap.Error(err))
	} else {
		s3Client = c
	}
	scriptExporter := scriptsvc.NewS3Exporter(s3Client, cfg.S3.Bucket)

	ideaService := ideasvc.NewService(ideaRepo, quotaService, generator, log)
	scriptService := scriptsvc.NewService(scriptRepo, quotaService, generator, scriptExporter, log)
	insightService := insightsvc.NewService(insightRepo, quotaService, generator, log)
	searchService := searchsvc.NewService(quotaService, generator)
	feedbackService := feedbacksvc.NewService(feedbackRepo)
	billingService := billingsvc.NewService(purchaseRepo, billingStore, cfg.Billing.Provider, log)
	cleanupJob := cleanup.New(purchaseRepo, userRepo, 24*time.Hour, log)

	RegisterRoutes(r, Dependencies{
		AuthService:     authService,
		UserService:     userService,
		QuotaService:    quotaService,
		RateLimiter:     rateLimiter,
		IdeaService:     ideaService,
		ScriptService:   scriptService,
		InsightService:  insightService,
		SearchService:   searchService,
		FeedbackService: feedbackService,
		BillingService:  billingService,
		Logger:          log,
		Config:          cfg,
	})

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	return &App{
		cfg:        cfg,
		logger:     log,
		server:     server,
		postgres:   pool,
		redis:      redisClient,
		s3:         s3Client,
		httpRouter: r,
		cleanup:    cleanupJob,
	}, nil
}

// StartJobs launches the periodic maintenance loop. It returns immediately;
// the loop stops when ctx is canceled.
func (a *App) StartJobs(ctx context.Context) {
	if a.cleanup == nil || a.postgres == nil {
		return
	}
	go a.cleanup.RunEvery(ctx, time.Hour)
}

func (a *App) Run() error {
	a.logger.Info("api server started", zap.String("addr", a.cfg.HTTP.Addr))
	err := a.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error

	if err := a.server.Shutdown(ctx); err != nil {
		shutdownErr = err
	}
	if a.postgres != nil {
		a.postgres.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil && shutdownErr == nil {
			shutdownErr = err
		}
	}

	return shutdownErr
}

func (a *App) Handler() http.Handler {
	return a.httpRouter
}

// buildLimitTable validates the configured ceilings against the tier and
// feature enums, so a typo in config fails boot instead of minting a phantom
// counter.
func buildLimitTable(cfg config.QuotaConfig) (*rules.LimitTable, error) {
	ceilings := map[enums.Tier]rules.TierCeilings{}

	for rawTier, tierCfg := range cfg.Limits {
		tier, err := enums.ParseTier(rawTier)
		if err != nil {
			return nil, err
		}

		tc := rules.TierCeilings{
			Daily:   map[enums.Feature]int{},
			Monthly: map[enums.Feature]int{},
			Storage: map[enums.CollectionKind]int{},
		}
		for rawFeature, limit := range tierCfg.Daily {
			feature, err := enums.ParseFeature(rawFeature)
			if err != nil {
				return nil, err
			}
			tc.Daily[feature] = limit
		}
		for rawFeature, limit := range tierCfg.Monthly {
			feature, err := enums.ParseFeature(rawFeature)
			if err != nil {
				return nil, err
			}
			tc.Monthly[feature] = limit
		}
		for rawKind, limit := range tierCfg.Storage {
			kind, err := enums.ParseCollectionKind(rawKind)
			if err != nil {
				return nil, err
			}
			tc.Storage[kind] = limit
		}
		ceilings[tier] = tc
	}

	return rules.NewLimitTable(ceilings)
}
