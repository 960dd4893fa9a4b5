package server

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"WaveFuse/internal/handler/api"
	"WaveFuse/internal/repository"
	icache "WaveFuse/internal/service/cache"
	"WaveFuse/internal/services/fusion"
	scorers "WaveFuse/internal/services/scorers"
	"WaveFuse/internal/usecase"
	pkgcache "WaveFuse/pkg/cache"
	pkgch "WaveFuse/pkg/clickhouse"
	"WaveFuse/pkg/config"
	xhttp "WaveFuse/pkg/http"
	pkgkafka "WaveFuse/pkg/kafka"
	applogger "WaveFuse/pkg/logger"
	"WaveFuse/pkg/queue"
)

// App owns every long-lived component and drives startup and shutdown.
type App struct {
	cfg         *config.Config
	collector   *usecase.TickCollector
	consumer    *pkgkafka.Consumer
	kh          pkgkafka.MessageHandler
	chClient    *pkgch.Client
	httpServer  *xhttp.Server
	httpHandler xhttp.Handler
	jobQueue    *queue.RedisQueue
	logger      *applogger.Logger
	TickProc    *usecase.TickProcessor
}

// New wires the collector-side components; HTTP wiring happens in Run.
func New(
	cfg *config.Config,
	collector *usecase.TickCollector,
	consumer *pkgkafka.Consumer,
	kh pkgkafka.MessageHandler,
	chClient *pkgch.Client,
) *App {
	return &App{
		cfg:       cfg,
		collector: collector,
		consumer:  consumer,
		kh:        kh,
		chClient:  chClient,
	}
}

// SetHTTPHandler overrides the handler built in Run, mainly for tests.
func (a *App) SetHTTPHandler(h xhttp.Handler) { a.httpHandler = h }

// engineConfig builds the fusion policy from defaults plus YAML overrides.
func engineConfig(cfg *config.Config) fusion.Config {
	ec := fusion.DefaultConfig()
	if cfg.Engine.BuyThreshold != 0 {
		ec.BuyThreshold = cfg.Engine.BuyThreshold
	}
	if cfg.Engine.SellThreshold != 0 {
		ec.SellThreshold = cfg.Engine.SellThreshold
	}
	if cfg.Engine.VetoCap != 0 {
		ec.VetoCap = cfg.Engine.VetoCap
	}
	if cfg.Engine.ConflictSpread != 0 {
		ec.ConflictSpread = cfg.Engine.ConflictSpread
	}
	if cfg.Engine.MinMeanConfidence != 0 {
		ec.MinMeanConfidence = cfg.Engine.MinMeanConfidence
	}
	if len(cfg.Engine.SevereRiskTerms) > 0 {
		ec.SevereRiskTerms = cfg.Engine.SevereRiskTerms
	}
	if len(cfg.Engine.GrowthIndustries) > 0 {
		ec.GrowthIndustries = cfg.Engine.GrowthIndustries
	}
	if len(cfg.Engine.DefensiveIndustries) > 0 {
		ec.DefensiveIndustries = cfg.Engine.DefensiveIndustries
	}
	return ec
}

// Run brings the whole service up and blocks until SIGINT or SIGTERM.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// console logger at info unless overridden later by collectors
	l, _ := applogger.New(&applogger.Config{Level: "info", Format: "console", Output: "stdout"})
	a.logger = l

	// assemble the advisory handler and its stores unless one was injected
	var httpHandler xhttp.Handler
	if a.httpHandler != nil {
		httpHandler = a.httpHandler
	} else if a.chClient != nil {
		store := repository.NewCHPriceStore(a.chClient)
		store.SetLogger(l)
		technical := scorers.NewHTTPTechnicalScorer(a.cfg)
		sentiment := scorers.NewHTTPSentimentScorer(a.cfg)
		macro := scorers.NewHTTPMacroScorer(a.cfg)
		engine := fusion.New(engineConfig(a.cfg))
		advisor := usecase.NewAdvisor(store, technical, sentiment, macro, engine)

		h := api.NewAdviceEchoHandler(l, advisor)

		if a.cfg.Advisor.Redis.Enabled {
			rdb := redis.NewClient(&redis.Options{
				Addr:     a.cfg.Advisor.Redis.Addr,
				Password: a.cfg.Advisor.Redis.Password,
				DB:       a.cfg.Advisor.Redis.DB,
			})
			h.SetCache(icache.NewRedisCache(rdb))
			results := pkgcache.NewLayeredCache(pkgcache.NewRedisCache(rdb))
			h.SetResultStore(results)
			job := usecase.NewAdviseBatchJob(advisor, results, a.cfg.Advisor.BatchResultTTL)
			a.jobQueue = queue.NewRedisQueue(l, &queue.QueueConfig{
				Workers:    a.cfg.Advisor.Queue.Workers,
				QueueSize:  a.cfg.Advisor.Queue.QueueSize,
				RetryLimit: a.cfg.Advisor.Queue.RetryLimit,
				RetryDelay: a.cfg.Advisor.Queue.RetryDelay,
			}, rdb, queue.ModeProducerConsumer)
			a.jobQueue.RegisterJob(job)
			a.jobQueue.RegisterJob(usecase.NewLogArchiveJob(a.chClient.DB()))
			if err := a.jobQueue.Start(); err != nil {
				l.Error("job queue start error", applogger.Error(err))
			} else {
				h.SetJobQueue(a.jobQueue)
				l.AddCollector(&applogger.CollectionConfig{
					TimeInterval:   30 * time.Second,
					CountThreshold: 200,
					Topic:          "app.logs",
					Publisher:      a.jobQueue,
				})
				l.Info("advisory job queue started")
			}
		} else {
			h.SetCache(icache.NewTTLCache())
		}

		httpHandler = h
	}

	serverOpts := []xhttp.ServerOption{
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	}
	if a.chClient != nil {
		serverOpts = append(serverOpts, xhttp.WithHealthCheck(a.chClient.Health))
	}
	a.httpServer = xhttp.NewServer(httpHandler, serverOpts...)

	// market data collector
	go func() {
		if err := a.collector.Start(ctx); err != nil {
			l.Error("market stream collector failed", applogger.Error(err))
		}
	}()
	l.Info("market stream collector up", applogger.Strings("symbols", a.cfg.Finnhub.Symbols))

	// bar-ingest consumer, when a handler is wired
	if a.consumer != nil && a.kh != nil {
		a.consumer.RegisterHandler(a.kh)
		go func() {
			if err := a.consumer.Start(); err != nil {
				l.Error("bar ingest consumer failed", applogger.Error(err))
			}
		}()
		l.Info("bar ingest consumer up", applogger.String("topic", a.kh.Topic()))
	}

	// advisory HTTP API
	if err := a.httpServer.Start(); err != nil {
		l.Error("http listener failed to start", applogger.Error(err))
		return err
	}

	// block until asked to stop
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	l.Info("stop signal received")
	return a.shutdown(ctx)
}

// shutdown stops components in dependency order: intake first, then the
// HTTP surface, then queue and storage clients.
func (a *App) shutdown(ctx context.Context) error {
	l := a.logger
	if l == nil {
		var err error
		if l, err = applogger.New(&applogger.Config{Level: "info", Format: "console", Output: "stdout"}); err != nil {
			log.Printf("failed to create logger: %v", err)
			return err
		}
	}
	l.Info("draining components")

	// stream and pipeline first, stopping new work
	if err := a.collector.Shutdown(ctx); err != nil {
		l.Warn("collector drain failed", applogger.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		l.Error("http drain failed", applogger.Error(err))
	}

	// Flush aggregated logs, then drain the job queue before closing its redis client
	if a.logger != nil {
		a.logger.RemoveCollector()
	}
	if a.jobQueue != nil {
		if err := a.jobQueue.Stop(shutdownCtx); err != nil {
			l.Warn("job queue stop error", applogger.Error(err))
		}
	}

	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			l.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	if a.consumer != nil {
		if err := a.consumer.Stop(ctx); err != nil {
			l.Warn("consumer drain failed", applogger.Error(err))
		}
	}

	if a.TickProc != nil {
		a.TickProc.Close()
	}

	l.Info("shutdown finished")
	return nil
}
