package app

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	config "github.com/DRSN-tech/grocery-cart/internal/cfg"
	v1Grpc "github.com/DRSN-tech/grocery-cart/internal/delivery/v1/grpc"
	v1Http "github.com/DRSN-tech/grocery-cart/internal/delivery/v1/http"
	"github.com/DRSN-tech/grocery-cart/internal/infrastructure/commerce"
	"github.com/DRSN-tech/grocery-cart/internal/infrastructure/kafka"
	minioInfra "github.com/DRSN-tech/grocery-cart/internal/infrastructure/minio"
	"github.com/DRSN-tech/grocery-cart/internal/repository/memory"
	s3Repo "github.com/DRSN-tech/grocery-cart/internal/repository/minio"
	"github.com/DRSN-tech/grocery-cart/internal/repository/pgdb"
	pgdbConv "github.com/DRSN-tech/grocery-cart/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/grocery-cart/internal/repository/redis"
	"github.com/DRSN-tech/grocery-cart/internal/usecase"
	"github.com/DRSN-tech/grocery-cart/pkg/clients"
	"github.com/DRSN-tech/grocery-cart/pkg/closer"
	"github.com/DRSN-tech/grocery-cart/pkg/e"
	"github.com/DRSN-tech/grocery-cart/pkg/logger"
	"github.com/DRSN-tech/grocery-cart/pkg/postgres"
	"github.com/go-chi/chi/v5"
	"github.com/jimlawless/whereami"
	"golang.org/x/sync/errgroup"
)

const (
	initTimeout         = 10 * time.Second
	shutdownTimeout     = 15 * time.Second
	topicTimeout        = 10 * time.Second
	outboxPollInterval  = 5 * time.Second
	healthCheckInterval = 10 * time.Second
)

// App держит серверы, фоновые процессы и порядок их остановки.
type App struct {
	cfg    *config.Config
	logger logger.Logger
	closer *closer.Closer

	httpSrv  *v1Http.Server
	grpcSrv  *v1Grpc.GRPCServer
	health   *v1Grpc.HealthChecker
	registry *usecase.SessionRegistry
	outbox   *kafka.OutboxWorker

	// bgCtx живет до начала остановки, его отмена прерывает фоновые загрузки чеков
	bgCtx    context.Context
	bgCancel context.CancelFunc
}

func NewApp(cfg *config.Config, logger logger.Logger) (*App, error) {
	a := &App{
		cfg:    cfg,
		logger: logger,
		closer: closer.NewCloser(0, logger),
	}
	a.bgCtx, a.bgCancel = context.WithCancel(context.Background())

	if err := a.init(); err != nil {
		// Закрываем то, что успели открыть
		a.bgCancel()
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if closeErr := a.closer.Close(ctx); closeErr != nil {
			logger.Warnf("cleanup after failed init: %v", closeErr)
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return a, nil
}

func (a *App) init() error {
	initCtx, cancel := context.WithTimeout(context.Background(), initTimeout)
	defer cancel()

	a.grpcSrv = v1Grpc.NewGRPCServer(a.cfg.Grpc, a.logger)
	a.health = a.grpcSrv.RegisterServices()
	a.closer.Add("gRPC server", a.grpcSrv.Stop)

	commerceClient := commerce.NewClient(a.cfg.Commerce, a.logger)

	var (
		cartStore    usecase.CartStore
		sessionStore usecase.SessionStore
		cacheRepo    usecase.CacheRepository
		recorder     usecase.CheckoutRecorder
		receipts     usecase.ReceiptArchiver
	)

	if a.cfg.Cart.StoreBackend == config.StoreBackendMemory {
		// Локальный режим: без Postgres, Redis, MinIO и Kafka. Журнал, чеки и кэш каталога отключены
		store := memory.NewStore()
		cartStore, sessionStore = store, store
		a.logger.Warnf("cart store: memory, carts are lost on restart; journal, receipts and catalog cache are disabled")
	} else {
		infra, err := a.initInfra(initCtx)
		if err != nil {
			return err
		}
		cartStore, sessionStore = infra.cartStore, infra.sessionStore
		cacheRepo, recorder, receipts = infra.cacheRepo, infra.recorder, infra.receipts
	}

	a.registry = usecase.NewSessionRegistry(cartStore, sessionStore, a.logger, a.cfg.Cart.IdleTTL, a.cfg.Cart.StoreTimeout)
	a.closer.Add("session registry", a.registry.FlushAll)

	catalogUC := usecase.NewCatalogUC(commerceClient, cacheRepo, a.logger)
	checkoutUC := usecase.NewCheckoutCoordinator(commerceClient, recorder, receipts, a.logger, usecase.CheckoutOptions{
		OrderTimeout:       a.cfg.Commerce.OrderTimeout,
		DefaultAddress:     a.cfg.Cart.DefaultAddress,
		ClearCartOnSuccess: a.cfg.Checkout.ClearCartOnSuccess,
	})

	r := chi.NewRouter()
	router := v1Http.NewRouter(r, a.logger)
	router.Init(v1Http.UseCases{
		Sessions: a.registry,
		Catalog:  catalogUC,
		Cart:     usecase.NewCartUC(catalogUC),
		Session:  usecase.NewSessionUC(commerceClient, sessionStore, a.logger),
		Checkout: checkoutUC,
	}, a.cfg.Cart.SessionHeader, a.cfg.Http.SwaggerURL)

	a.httpSrv = v1Http.NewServer(r, a.cfg.Http)
	a.closer.Add("HTTP server", a.httpSrv.Stop)

	return nil
}

// infra — внешние зависимости, нужные всем хранилищам, кроме memory.
type infra struct {
	cartStore    usecase.CartStore
	sessionStore usecase.SessionStore
	cacheRepo    usecase.CacheRepository
	recorder     usecase.CheckoutRecorder
	receipts     usecase.ReceiptArchiver
}

func (a *App) initInfra(ctx context.Context) (*infra, error) {
	db, err := initPGDB(ctx, a.logger, a.cfg)
	if err != nil {
		return nil, err
	}
	a.closer.AddFunc("postgres", db.Close)

	redisClient := clients.NewRedisClient(a.cfg.Redis)
	if err := redisClient.Ping(ctx); err != nil {
		a.logger.Errorf(err, "failed to connect to redis")
		return nil, err
	}
	a.closer.Add("redis", func(context.Context) error { return redisClient.Close() })

	minioClient, err := clients.NewMinIOClient(a.cfg.Minio)
	if err != nil {
		a.logger.Errorf(err, "failed to initialize minio client")
		return nil, err
	}
	if err := clients.EnsureBucket(ctx, minioClient, a.cfg.Minio.BucketName); err != nil {
		a.logger.Errorf(err, "failed to initialize MinIO bucket")
		return nil, err
	}

	producer := kafka.NewProducer(a.logger, a.cfg.Kafka)
	a.closer.Add("kafka producer", func(context.Context) error { return producer.Close() })
	if err := producer.EnsureTopic(topicTimeout); err != nil {
		// Outbox дождется брокера, события не теряются
		a.logger.Warnf("kafka topic not ensured, relay will retry: %v", err)
	}

	outboxRepo := pgdb.NewOutboxEventRepo(db.Pool, pgdbConv.OutboxEventConverter{})
	a.outbox = kafka.NewOutboxWorker(outboxRepo, a.logger, producer, db.Dsn, pgdb.OutboxChannel, outboxPollInterval)
	a.closer.AddFunc("outbox worker", a.outbox.Stop)

	archive := minioInfra.NewReceiptArchive(s3Repo.NewReceiptRepo(minioClient, a.cfg.Minio), a.logger, a.bgCtx)
	a.closer.Add("receipt archive", archive.Wait)

	a.health.AddProbe(v1Grpc.Probe{Name: "postgres", Check: db.Ping})
	a.health.AddProbe(v1Grpc.Probe{Name: "redis", Check: redisClient.Ping})
	a.health.AddProbe(v1Grpc.Probe{Name: "kafka", Check: producer.Ping})

	res := &infra{
		cacheRepo: redis.NewCacheRepo(redisClient, a.cfg.Redis, a.logger),
		recorder:  usecase.NewCheckoutJournal(db.Pool, outboxRepo, kafka.NewEventEncoder()),
		receipts:  archive,
	}

	if a.cfg.Cart.StoreBackend == config.StoreBackendRedis {
		repo := redis.NewCartRepo(redisClient, a.cfg.Redis)
		res.cartStore, res.sessionStore = repo, repo
		a.logger.Infof("cart store: redis")
	} else {
		res.cartStore = pgdb.NewCartRepo(db.Pool, pgdbConv.CartConverter{})
		res.sessionStore = pgdb.NewSessionRepo(db.Pool, pgdbConv.SessionConverter{})
		a.logger.Infof("cart store: postgres")
	}

	return res, nil
}

// Run запускает серверы и фоновые процессы и блокируется до сигнала остановки или ошибки сервера.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.Infof("HTTP server started on port %s", a.cfg.Http.Port)
		if err := a.httpSrv.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return e.Wrap("HTTP server", err)
		}
		return nil
	})

	g.Go(func() error {
		a.logger.Infof("gRPC server starting on %s:%s", a.cfg.Grpc.NetworkMode, a.cfg.Grpc.Port)
		if err := a.grpcSrv.Start(); err != nil {
			return e.Wrap("gRPC server", err)
		}
		return nil
	})

	g.Go(func() error {
		a.registry.RunJanitor(gCtx, a.cfg.Cart.JanitorPeriod)
		return nil
	})

	g.Go(func() error {
		a.health.Run(gCtx, healthCheckInterval)
		return nil
	})

	if a.outbox != nil {
		a.outbox.Start(a.bgCtx)
	}

	// Остановка начинается по сигналу или при падении любого сервера
	g.Go(func() error {
		<-gCtx.Done()
		a.logger.Infof("shutting down...")
		return a.shutdown()
	})

	if err := g.Wait(); err != nil {
		a.logger.Errorf(err, "application stopped with error")
		return err
	}

	a.logger.Infof("Application shutdown complete")
	return nil
}

func (a *App) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err := a.closer.Close(ctx)
	a.bgCancel()

	return err
}

func initPGDB(ctx context.Context, logger logger.Logger, cfg *config.Config) (*postgres.PgDatabase, error) {
	db, err := postgres.Connect(ctx, cfg.Db)
	if err != nil {
		logger.Errorf(err, "failed to connect to database")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	if err := db.RunMigrations(logger); err != nil {
		logger.Errorf(err, "failed to run migrations")
		db.Close()
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return db, nil
}
