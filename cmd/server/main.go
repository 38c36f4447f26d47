// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"chat-automation/internal/api"
	"chat-automation/internal/approval"
	"chat-automation/internal/automation"
	"chat-automation/internal/chat"
	"chat-automation/internal/classifier"
	"chat-automation/internal/common/aws"
	"chat-automation/internal/common/camunda"
	"chat-automation/internal/common/config"
	"chat-automation/internal/common/database"
	"chat-automation/internal/common/logger"
	"chat-automation/internal/common/observability"
	"chat-automation/internal/mailbox"
	"chat-automation/internal/models"
	"chat-automation/internal/scraper"
	"chat-automation/internal/store"
	"chat-automation/internal/workflow"
	"chat-automation/migrations"

	rda "chat-automation/internal/workers/automation/run-direct-automation"
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

	cfg, err := config.Load()
	if err != nil {
		bootLog.Fatal("config load failed", zap.Error(err))
	}
	bootLog.Sync()

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting chat automation server...",
		zap.String("version", cfg.App.Version),
		zap.String("workflowMode", cfg.Workflow.Mode),
	)

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx := context.Background()
	health := map[string]api.HealthCheck{}

	// --- Init PostgreSQL with retry ---
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

	if err := pg.Migrate(ctx, migrations.InitSchema); err != nil {
		zapLog.Fatal("schema migration failed", zap.Error(err))
	}
	health["postgres"] = pg.Ping
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Redis with retry ---
	var rdb *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		rdb, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return rdb.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")
	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer rdb.Close()
	health["redis"] = rdb.Ping
	zapLog.Info("Redis connected successfully")

	// --- Init Elasticsearch with retry (optional) ---
	var logSearch models.AutomationLogSearcher
	if cfg.Database.Elasticsearch.Enabled {
		var esClient *database.ElasticsearchClient
		err = retryWithBackoff(func() error {
			var err error
			esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return esClient.Ping()
		}, 15, 2*time.Second, zapLog, "Elasticsearch connection")
		if err != nil {
			zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
		}

		if err := esClient.EnsureIndex(ctx, cfg.Database.Elasticsearch.LogIndex, store.LogIndexMapping); err != nil {
			zapLog.Fatal("elasticsearch index setup failed", zap.Error(err))
		}
		logSearch = store.NewLogSearchIndex(esClient.Client, cfg.Database.Elasticsearch.LogIndex)
		health["elasticsearch"] = func(context.Context) error { return esClient.Ping() }
		zapLog.Info("Elasticsearch connected successfully",
			zap.String("index", cfg.Database.Elasticsearch.LogIndex))
	} else {
		zapLog.Info("Elasticsearch disabled, automation log search unavailable")
	}

	// --- Init Zeebe client (zeebe mode or enabled workers) ---
	var zeebe *camunda.Client
	if cfg.Workflow.Mode == config.WorkflowModeZeebe || config.GetWorkerConfig(cfg, rda.TaskType).Enabled {
		err = retryWithBackoff(func() error {
			var err error
			zeebe, err = camunda.NewClientWithConfig(&camunda.ClientConfig{
				GatewayAddress:         cfg.Camunda.BrokerAddress,
				UsePlaintextConnection: true,
				ConnectionTimeout:      10 * time.Second,
				RequestTimeout:         config.GetDuration(cfg.Camunda.RequestTimeout),
			})
			return err
		}, 10, 2*time.Second, zapLog, "Zeebe client initialization")
		if err != nil {
			zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
		}
		health["zeebe"] = zeebe.HealthCheck
		zapLog.Info("Zeebe client connected successfully")
	}

	// --- Init SNS notifier (optional) ---
	var notifier approval.Notifier
	if cfg.Notifications.SNS.Enabled {
		sns, err := aws.NewSNSClient(ctx, cfg.Notifications.SNS.Region, cfg.Notifications.SNS.TopicARN)
		if err != nil {
			zapLog.Fatal("sns client init failed", zap.Error(err))
		}
		notifier = sns
		zapLog.Info("SNS notifications enabled", zap.String("topicArn", cfg.Notifications.SNS.TopicARN))
	}

	// --- Init External Service Clients ---
	mb := mailbox.NewClient(cfg.Mailbox, log)
	cls := classifier.NewClient(
		cfg.APIs.Classifier.BaseURL,
		cfg.APIs.Classifier.APIKey,
		config.GetDuration(cfg.APIs.Classifier.Timeout),
		cfg.APIs.Classifier.MaxRetries,
		log,
	)
	scr := scraper.NewClient(
		cfg.APIs.Scraper.BaseURL,
		config.GetDuration(cfg.APIs.Scraper.Timeout),
		cfg.APIs.Scraper.MaxRetries,
		log,
	)

	var executor workflow.Executor
	switch cfg.Workflow.Mode {
	case config.WorkflowModeZeebe:
		executor = workflow.NewZeebeExecutor(zeebe, cfg.Workflow.ProcessID, log)
	default:
		executor = workflow.NewWebhookExecutor(cfg.Workflow.WebhookURL, config.GetDuration(cfg.Workflow.Timeout), log)
	}
	zapLog.Info("All external service clients initialized")

	// --- Domain wiring ---
	registry := automation.NewRegistry()
	dispatcher := automation.NewDispatcher(registry, automation.NewFormatter(log), automation.NewHandlers(mb), log)

	turns := store.NewConversationStore(pg.DB)
	logs := store.NewAutomationLogStore(pg.DB)
	routing := store.NewRoutingStats(rdb.Client)
	recorder := store.NewLogRecorder(logs, logSearch, log)

	orchestrator := chat.NewOrchestrator(cls, dispatcher, scr, turns, recorder, routing, log)
	resolver := approval.NewResolver(turns, executor, store.NewApprovalLock(rdb.Client, store.DefaultApprovalTTL), notifier, log)

	handler := api.NewHandler(api.Deps{
		Chat:      orchestrator,
		Approvals: resolver,
		Turns:     turns,
		Logs:      logs,
		LogSearch: logSearch,
		Recorder:  recorder,
		Routing:   routing,
		Scraper:   scr,
		Mailbox:   mb,
		Registry:  registry,
		Health:    health,
		Version:   cfg.App.Version,
	}, log)

	// --- Zeebe workers ---
	var workers []*camunda.CamundaWorker
	if wcfg := config.GetWorkerConfig(cfg, rda.TaskType); wcfg.Enabled {
		h := rda.NewHandler(rda.LoadConfig(wcfg), dispatcher, log)
		w := camunda.NewWorker(zeebe.GetClient(), rda.TaskType, wcfg.MaxJobsActive, config.GetDuration(wcfg.Timeout), h, zapLog)
		w.Start()
		workers = append(workers, w)
	} else {
		zapLog.Info("worker disabled", zap.String("taskType", rda.TaskType))
	}

	// --- HTTP Server ---
	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      api.NewRouter(handler, obs, log),
		ReadTimeout:  config.GetDuration(cfg.Server.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.Server.WriteTimeout),
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(sigCtx)
	g.Go(func() error {
		zapLog.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// --- Graceful Shutdown ---
	g.Go(func() error {
		<-gctx.Done()
		zapLog.Info("Shutdown signal received, stopping server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		for _, w := range workers {
			w.Stop(shutdownCtx)
		}
		if zeebe != nil {
			if err := zeebe.Close(); err != nil {
				zapLog.Error("Error closing Zeebe client", zap.Error(err))
			}
		}
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		zapLog.Error("server stopped with error", zap.Error(err))
		return
	}
	zapLog.Info("Chat automation server stopped gracefully")
}
