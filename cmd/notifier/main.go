// cmd/notifier/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"wecelebrate-notifier/internal/automation"
	"wecelebrate-notifier/internal/catalog"
	awsclients "wecelebrate-notifier/internal/common/aws"
	"wecelebrate-notifier/internal/common/camunda"
	"wecelebrate-notifier/internal/common/config"
	"wecelebrate-notifier/internal/common/database"
	"wecelebrate-notifier/internal/common/logger"
	"wecelebrate-notifier/internal/common/observability"
	"wecelebrate-notifier/internal/delivery"
	"wecelebrate-notifier/internal/events"
	"wecelebrate-notifier/internal/history"
	"wecelebrate-notifier/internal/models"
	"wecelebrate-notifier/internal/storage"
	"wecelebrate-notifier/internal/storage/postgres"
	"wecelebrate-notifier/internal/storage/rediscache"

	managerules "wecelebrate-notifier/internal/workers/automation/manage-rules"
	scheduledtriggers "wecelebrate-notifier/internal/workers/automation/scheduled-triggers"
	triggerevent "wecelebrate-notifier/internal/workers/automation/trigger-event"
	queryhistory "wecelebrate-notifier/internal/workers/history/query-history"
	managetemplates "wecelebrate-notifier/internal/workers/templates/manage-templates"
	provisionsite "wecelebrate-notifier/internal/workers/templates/provision-site"
	renderpreview "wecelebrate-notifier/internal/workers/templates/render-preview"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	bootLog := logger.New("info", "console")

	configPath := flag.String("config", "", "path to a config file; defaults to configs/config.yaml lookup")
	flag.Parse()

	var cfg *config.Config
	var err error
	if *configPath != "" {
		cfg, err = config.LoadFromFile(*configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		bootLog.Fatal("config load failed", zap.Error(err))
	}
	bootLog.Sync()

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting notifier...",
		zap.String("app", cfg.App.Name),
		zap.String("environment", cfg.App.Environment),
	)

	obs := observability.New(cfg.Observability.ServiceName, cfg.Observability.JaegerEndpoint)
	defer obs.Shutdown()

	ctx := context.Background()

	// --- PostgreSQL ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	if cfg.Database.Postgres.RunMigrations {
		if err := postgres.RunMigrations(pg.DB); err != nil {
			zapLog.Fatal("migrations failed", zap.Error(err))
		}
		version, dirty, _ := postgres.MigrationVersion(pg.DB)
		zapLog.Info("Migrations applied", zap.Uint("version", version), zap.Bool("dirty", dirty))
	}

	store := postgres.New(pg.DB)

	// --- Redis site-template cache ---
	var sites storage.SiteTemplateStore = store
	if cfg.Cache.Enabled {
		redis := database.NewRedis(cfg.Database.Redis)
		err = retryWithBackoff(func() error {
			return redis.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "Redis connection")
		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		defer redis.Close()
		sites = rediscache.New(store, redis.Client, config.GetDuration(cfg.Cache.SiteTemplateTTLMs), cfg.Cache.KeyPrefix, log)
		zapLog.Info("Redis site-template cache enabled")
	}

	// --- History: Elasticsearch index and Kafka events ---
	historyOpts := []history.Option{history.WithDefaultLimit(cfg.History.DefaultLimit)}

	if cfg.History.SearchEnabled {
		var esClient *database.ElasticsearchClient
		err = retryWithBackoff(func() error {
			var err error
			esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return esClient.Ping(ctx)
		}, 15, 2*time.Second, zapLog, "Elasticsearch connection")
		if err != nil {
			zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
		}
		index := history.NewESIndex(esClient.Client, cfg.Database.Elasticsearch.HistoryIndex)
		if err := index.EnsureIndex(ctx); err != nil {
			zapLog.Fatal("history index setup failed", zap.Error(err))
		}
		historyOpts = append(historyOpts, history.WithIndex(index))
		zapLog.Info("Elasticsearch history search enabled",
			zap.String("url", cfg.Database.Elasticsearch.GetURL()),
			zap.String("index", cfg.Database.Elasticsearch.HistoryIndex))
	}

	if cfg.Events.Enabled {
		publisher := events.NewKafkaPublisher(cfg.Events.Brokers, cfg.Events.Topic)
		defer publisher.Close()
		historyOpts = append(historyOpts, history.WithPublisher(publisher))
		zapLog.Info("Kafka history events enabled", zap.Strings("brokers", cfg.Events.Brokers), zap.String("topic", cfg.Events.Topic))
	}

	recorder := history.NewRecorder(store, log, historyOpts...)

	// --- Delivery providers ---
	dispatcher, err := buildDispatcher(ctx, cfg, log)
	if err != nil {
		zapLog.Fatal("delivery setup failed", zap.Error(err))
	}

	// --- Domain services ---
	cat := catalog.NewService(store, sites, log)
	rules := automation.NewRuleService(store, log)
	engine := automation.NewEngine(store, cat, dispatcher, recorder, log, automation.WithObservability(obs))

	if cfg.App.SeedOnStart {
		created, err := cat.SeedGlobalTemplates(ctx)
		if err != nil {
			zapLog.Fatal("global template seed failed", zap.Error(err))
		}
		zapLog.Info("Global templates seeded", zap.Int("created", created))
	}

	// --- Zeebe ---
	var zeebe *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		zeebe, err = camunda.NewClientWithConfig(&camunda.ClientConfig{
			GatewayAddress:         cfg.Camunda.BrokerAddress,
			UsePlaintextConnection: true,
			RequestTimeout:         config.GetDuration(cfg.Camunda.RequestTimeout),
		})
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

	// --- Workers ---
	var workers []*camunda.Worker
	start := func(taskType string, enabled bool, maxJobs int, timeout time.Duration, handler camunda.JobHandler) {
		if !enabled {
			zapLog.Info("worker disabled", zap.String("taskType", taskType))
			return
		}
		workers = append(workers, camunda.StartWorker(zeebe.GetClient(), camunda.WorkerOptions{
			TaskType:      taskType,
			MaxJobsActive: maxJobs,
			Timeout:       timeout,
		}, handler, log))
	}
	mustHandler := func(name string, err error) {
		if err != nil {
			zapLog.Fatal("failed to create handler", zap.String("worker", name), zap.Error(err))
		}
	}

	teCfg := triggerevent.FromAppConfig(cfg)
	teHandler, err := triggerevent.NewHandler(teCfg, engine, log)
	mustHandler(triggerevent.TaskType, err)
	start(triggerevent.TaskType, teCfg.Enabled, teCfg.MaxJobsActive, teCfg.Timeout, teHandler)

	stCfg := scheduledtriggers.FromAppConfig(cfg)
	stHandler, err := scheduledtriggers.NewHandler(stCfg, engine, log)
	mustHandler(scheduledtriggers.TaskType, err)
	start(scheduledtriggers.TaskType, stCfg.Enabled, stCfg.MaxJobsActive, stCfg.Timeout, stHandler)

	mrCfg := managerules.FromAppConfig(cfg)
	mrHandler, err := managerules.NewHandler(mrCfg, rules, log)
	mustHandler(managerules.TaskType, err)
	start(managerules.TaskType, mrCfg.Enabled, mrCfg.MaxJobsActive, mrCfg.Timeout, mrHandler)

	rpCfg := renderpreview.FromAppConfig(cfg)
	rpHandler, err := renderpreview.NewHandler(rpCfg, cat, obs, log)
	mustHandler(renderpreview.TaskType, err)
	start(renderpreview.TaskType, rpCfg.Enabled, rpCfg.MaxJobsActive, rpCfg.Timeout, rpHandler)

	psCfg := provisionsite.FromAppConfig(cfg)
	psHandler, err := provisionsite.NewHandler(psCfg, cat, log)
	mustHandler(provisionsite.TaskType, err)
	start(provisionsite.TaskType, psCfg.Enabled, psCfg.MaxJobsActive, psCfg.Timeout, psHandler)

	mtCfg := managetemplates.FromAppConfig(cfg)
	mtHandler, err := managetemplates.NewHandler(mtCfg, cat, log)
	mustHandler(managetemplates.TaskType, err)
	start(managetemplates.TaskType, mtCfg.Enabled, mtCfg.MaxJobsActive, mtCfg.Timeout, mtHandler)

	qhCfg := queryhistory.FromAppConfig(cfg)
	qhHandler, err := queryhistory.NewHandler(qhCfg, recorder, log)
	mustHandler(queryhistory.TaskType, err)
	start(queryhistory.TaskType, qhCfg.Enabled, qhCfg.MaxJobsActive, qhCfg.Timeout, qhHandler)

	zapLog.Info("Workers registered", zap.Int("count", len(workers)))

	// --- Health & Metrics Server ---
	server := newOpsServer(cfg.Observability.MetricsAddress, zeebe, pg)
	go serveOps(server, zapLog)

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, w := range workers {
		w.Stop()
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping health server", zap.Error(err))
	}
	if err := zeebe.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Notifier stopped gracefully")
}

// buildDispatcher registers a sender per configured channel. Email uses SES
// or SMTP; SMS and push go through SNS when enabled.
func buildDispatcher(ctx context.Context, cfg *config.Config, log logger.Logger) (*delivery.Dispatcher, error) {
	d := delivery.NewDispatcher(log)
	aws := cfg.Delivery.AWS

	switch cfg.Delivery.EmailProvider {
	case "smtp":
		d.Register(models.ChannelEmail, delivery.NewSMTPSender(cfg.Delivery.SMTP))
	case "ses":
		if aws.SES.Enabled {
			client, err := awsclients.NewSESClient(ctx, aws.Region)
			if err != nil {
				return nil, fmt.Errorf("ses client: %w", err)
			}
			d.Register(models.ChannelEmail, delivery.NewSESSender(client, aws.SES.FromEmail))
		}
	}

	if aws.SNS.Enabled {
		client, err := awsclients.NewSNSClient(ctx, aws.Region)
		if err != nil {
			return nil, fmt.Errorf("sns client: %w", err)
		}
		d.Register(models.ChannelSMS, delivery.NewSMSSender(client, aws.SNS.DefaultSMSSenderID, aws.SNS.DefaultRegion))
		if aws.SNS.PlatformApplicationARN != "" {
			d.Register(models.ChannelPush, delivery.NewPushSender(client, aws.SNS.PlatformApplicationARN))
		}
	}

	for _, ch := range []models.Channel{models.ChannelEmail, models.ChannelSMS, models.ChannelPush} {
		if !d.Configured(ch) {
			log.Warn("Delivery channel not configured", map[string]interface{}{"channel": string(ch)})
		}
	}
	return d, nil
}
