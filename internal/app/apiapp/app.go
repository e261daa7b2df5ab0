package apiapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/minio/minio-go/v7"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Web-Spark-Develoer/connect-naija-safe/internal/config"
	s3infra "github.com/Web-Spark-Develoer/connect-naija-safe/internal/infra/s3"
	resetjob "github.com/Web-Spark-Develoer/connect-naija-safe/internal/jobs/reset"
	pgrepo "github.com/Web-Spark-Develoer/connect-naija-safe/internal/repo/postgres"
	redrepo "github.com/Web-Spark-Develoer/connect-naija-safe/internal/repo/redis"
	authsvc "github.com/Web-Spark-Develoer/connect-naija-safe/internal/services/auth"
	discoverysvc "github.com/Web-Spark-Develoer/connect-naija-safe/internal/services/discovery"
	interestsvc "github.com/Web-Spark-Develoer/connect-naija-safe/internal/services/interests"
	likessvc "github.com/Web-Spark-Develoer/connect-naija-safe/internal/services/likes"
	matchessvc "github.com/Web-Spark-Develoer/connect-naija-safe/internal/services/matches"
	messagesvc "github.com/Web-Spark-Develoer/connect-naija-safe/internal/services/messages"
	photosvc "github.com/Web-Spark-Develoer/connect-naija-safe/internal/services/photos"
	presencesvc "github.com/Web-Spark-Develoer/connect-naija-safe/internal/services/presence"
	profilesvc "github.com/Web-Spark-Develoer/connect-naija-safe/internal/services/profiles"
	ratesvc "github.com/Web-Spark-Develoer/connect-naija-safe/internal/services/rate"
	swipesvc "github.com/Web-Spark-Develoer/connect-naija-safe/internal/services/swipes"
)

type App struct {
	cfg            config.Config
	logger         *zap.Logger
	server         *http.Server
	postgres       *pgxpool.Pool
	redis          *goredis.Client
	s3             *minio.Client
	httpRouter     http.Handler
	messageService *messagesvc.Service
	resetJob       *resetjob.Job
	stopFanout     context.CancelFunc
}

func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	r := chi.NewRouter()
	ApplyMiddlewares(r, log)

	var pool *pgxpool.Pool
	if p, err := pgrepo.NewPool(ctx, cfg.Postgres.DSN, cfg.Postgres.MaxConns); err != nil {
		log.Warn("postgres init failed, continuing in degraded mode", zap.Error(err))
	} else {
		pool = p
	}

	redisClient := redrepo.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	sessionRepo := redrepo.NewSessionRepo(redisClient)
	rateRepo := redrepo.NewRateRepo(redisClient)
	cacheRepo := redrepo.NewCacheRepo(redisClient)
	broadcastRepo := redrepo.NewBroadcastRepo(redisClient)

	profileRepo := pgrepo.NewProfileRepo(pool)
	swipeRepo := pgrepo.NewSwipeRepo(pool)
	matchRepo := pgrepo.NewMatchRepo(pool)
	messageRepo := pgrepo.NewMessageRepo(pool)
	photoRepo := pgrepo.NewPhotoRepo(pool)
	interestRepo := pgrepo.NewInterestRepo(pool)
	blockRepo := pgrepo.NewBlockRepo(pool)
	reportRepo := pgrepo.NewReportRepo(pool)

	jwtManager := authsvc.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTAccessTTL)
	authService := authsvc.NewService(jwtManager, sessionRepo, cfg.Auth.RefreshTTL)

	profileService := profilesvc.NewService(profilesvc.Dependencies{
		Store:        profileRepo,
		Cache:        cacheRepo,
		CacheKeysFor: func(userID int64) []string {
			return []string{
				redrepo.ProfileKey(userID),
				redrepo.DiscoveryKey(userID),
			}
		},
	})

	presenceService := presencesvc.NewService(profileRepo, cfg.Presence.OnlineWindow)

	interestService := interestsvc.NewService(pool, interestRepo, interestsvc.Config{
		MaxSelected: cfg.Limits.MaxInterests,
	})

	discoveryService := discoverysvc.NewService(discoverysvc.Dependencies{
		Profiles:  profileRepo,
		Swipes:    swipeRepo,
		Blocks:    blockRepo,
		Photos:    photoRepo,
		Interests: interestRepo,
		Cache:     cacheRepo,
		Logger:    log,
	}, discoverysvc.Config{
		PageSize:     cfg.Discovery.PageSize,
		CacheTTL:     cfg.Discovery.CacheTTL,
		OnlineWindow: cfg.Presence.OnlineWindow,
	})

	swipeService := swipesvc.NewService(swipesvc.Dependencies{
		Pool:       pool,
		SwipeStore: swipeRepo,
		QuotaStore: profileRepo,
		MatchStore: matchRepo,
		Cache:      cacheRepo,
	})

	likeService := likessvc.NewService(likessvc.Dependencies{
		Tiers:    profileRepo,
		Incoming: swipeRepo,
		Cache:    cacheRepo,
		Logger:   log,
	}, likessvc.Config{})

	matchesService := matchessvc.NewService(matchessvc.Dependencies{
		Pool:        pool,
		MatchStore:  matchRepo,
		BlockStore:  blockRepo,
		ReportStore: reportRepo,
		Cache:       cacheRepo,
	})

	rateLimiter := ratesvc.NewLimiter(rateRepo, cfg.Limits.MsgRatePerMinute, cfg.Limits.MsgRatePer10Sec)

	messageService := messagesvc.NewService(messagesvc.Dependencies{
		Pool:         pool,
		MessageStore: messageRepo,
		MatchStore:   matchRepo,
		RateLimiter:  rateLimiter,
		Broadcaster:  broadcastRepo,
		Cache:        cacheRepo,
		Logger:       log,
	}, messagesvc.Config{
		MaxMessageLength: cfg.Limits.MaxMessageLength,
	})

	var s3Client *minio.Client
	if c, err := s3infra.NewClient(s3infra.Config{
		Endpoint:  cfg.S3.Endpoint,
		Region:    cfg.S3.Region,
		AccessKey: cfg.S3.AccessKey,
		SecretKey: cfg.S3.SecretKey,
		UseSSL:    cfg.S3.UseSSL,
	}); err != nil {
		log.Warn("s3 init failed, continuing in degraded mode", zap.Error(err))
	} else {
		s3Client = c
	}

	photoStorage := photosvc.NewS3Storage(s3Client, cfg.S3.Bucket, cfg.S3.PublicURL)
	photoService := photosvc.NewService(pool, photoRepo, photoStorage, photosvc.Config{
		MaxPhotos: cfg.Limits.MaxPhotos,
	})

	resetJob := resetjob.New(profileRepo, cfg.Limits.Allowances, log)

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	RegisterRoutes(r, Dependencies{
		AuthService:      authService,
		ProfileService:   profileService,
		PresenceService:  presenceService,
		InterestService:  interestService,
		DiscoveryService: discoveryService,
		SwipeService:     swipeService,
		LikeService:      likeService,
		MatchService:     matchesService,
		MessageService:   messageService,
		PhotoService:     photoService,
		Logger:           log,
		Config:           cfg,
	})

	return &App{
		cfg:            cfg,
		logger:         log,
		server:         server,
		postgres:       pool,
		redis:          redisClient,
		s3:             s3Client,
		httpRouter:     r,
		messageService: messageService,
		resetJob:       resetJob,
	}, nil
}

func (a *App) Run() error {
	fanoutCtx, cancel := context.WithCancel(context.Background())
	a.stopFanout = cancel
	go func() {
		if err := a.messageService.Run(fanoutCtx); err != nil && !errors.Is(err, context.Canceled) {
			a.logger.Warn("message fanout stopped", zap.Error(err))
		}
	}()

	a.logger.Info("api server started", zap.String("addr", a.cfg.HTTP.Addr))
	err := a.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// RunDailyReset replenishes swipe allowances and clears expired boosts.
// Invoked by the scheduler loop in cmd/api.
func (a *App) RunDailyReset(ctx context.Context) error {
	return a.resetJob.Run(ctx)
}

func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error

	if a.stopFanout != nil {
		a.stopFanout()
	}
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
