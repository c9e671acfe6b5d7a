package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/reflection"

	grpcadapter "github.com/simaogato/networth-backend/internal/adapter/grpc"
	httpadapter "github.com/simaogato/networth-backend/internal/adapter/http"
	"github.com/simaogato/networth-backend/internal/adapter/marketdata"
	"github.com/simaogato/networth-backend/internal/adapter/repository/postgres"
	"github.com/simaogato/networth-backend/internal/config"
	"github.com/simaogato/networth-backend/internal/logger"
	"github.com/simaogato/networth-backend/internal/scheduler"
	"github.com/simaogato/networth-backend/internal/usecase/dashboard"
	"github.com/simaogato/networth-backend/internal/usecase/dividend"
	"github.com/simaogato/networth-backend/internal/usecase/investment"
	"github.com/simaogato/networth-backend/internal/usecase/liability"
	"github.com/simaogato/networth-backend/internal/usecase/paymentrule"
	"github.com/simaogato/networth-backend/internal/usecase/pricing"
)

const jobTimeout = 30 * time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		// Logger is not configured yet
		bootstrap := logger.New(logger.Config{Level: "info"})
		bootstrap.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty})
	logger.SetGlobalLogger(log)

	// 1. Setup Database
	// Add 2-second delay to ensure Postgres is up (Simple retry)
	time.Sleep(2 * time.Second)

	db, err := postgres.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	if err := db.Migrate(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply database schema")
	}

	// 2. Initialize Repositories (Postgres)
	assetRepo := postgres.NewAssetRepository(db)
	transactionRepo := postgres.NewTransactionRepository(db)
	dividendRepo := postgres.NewDividendRepository(db)
	liabilityRepo := postgres.NewLiabilityRepository(db)
	ruleRepo := postgres.NewPaymentRuleRepository(db)

	// 3. Market data
	if cfg.AlphaVantageAPIKey == "" {
		log.Warn().Msg("ALPHA_VANTAGE_API_KEY is not set, quotes and dividend history will fail")
	}
	marketData := marketdata.NewClient(cfg.AlphaVantageAPIKey, cfg.QuoteCacheTTL, log)

	// 4. Initialize Services (Use Cases)
	investmentService := investment.NewInvestmentService(assetRepo, transactionRepo, dividendRepo, marketData, log)
	dividendService := dividend.NewDividendService(assetRepo, transactionRepo, dividendRepo, marketData, log)
	liabilityService := liability.NewLiabilityService(liabilityRepo, log)
	ruleService := paymentrule.NewPaymentRuleService(ruleRepo, liabilityRepo, log)
	dashboardService := dashboard.NewDashboardService(assetRepo, liabilityRepo)
	refresher := pricing.NewRefresher(assetRepo, investmentService, cfg.PriceRefreshInterval, log)
	refresher.Cache = marketData

	// 5. Start gRPC Server
	grpcServer := grpclib.NewServer(
		grpclib.ChainUnaryInterceptor(
			grpcadapter.ObservabilityInterceptor(log),
			grpcadapter.AuthInterceptor(cfg.APIToken),
		),
	)
	grpcadapter.RegisterFinanceServiceServer(grpcServer, grpcadapter.NewServer(
		investmentService,
		dividendService,
		liabilityService,
		ruleService,
		dashboardService,
		log,
	))
	reflection.Register(grpcServer)

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		log.Fatal().Err(err).Str("addr", cfg.GRPCAddr).Msg("Failed to listen")
	}

	go func() {
		log.Info().Str("addr", cfg.GRPCAddr).Msg("gRPC server listening")
		if err := grpcServer.Serve(lis); err != nil {
			log.Fatal().Err(err).Msg("Failed to serve gRPC server")
		}
	}()

	// 6. Start HTTP Server (health, metrics, cron triggers)
	httpServer := httpadapter.New(httpadapter.Config{
		Addr:       cfg.HTTPAddr,
		CronSecret: cfg.CronSecret,
		Rules:      ruleService,
		Prices:     refresher,
		Log:        log,
	})

	go func() {
		if err := httpServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to serve HTTP server")
		}
	}()

	// 7. In-process scheduler
	var sched *scheduler.Scheduler
	if cfg.SchedulerEnabled {
		sched = scheduler.New(log, jobTimeout)
		jobs := []struct {
			schedule string
			job      scheduler.Job
		}{
			{cfg.PaymentRulesSchedule, scheduler.NewBatchJob("payment-rules", "Executed", "payments", ruleService.ExecuteDueRules, log)},
			{cfg.PriceRefreshSchedule, scheduler.NewBatchJob("price-refresh", "Updated", "prices", refresher.RefreshAll, log)},
			{cfg.DividendSyncSchedule, scheduler.NewBatchJob("dividend-sync", "Synced", "assets", dividendService.SyncAll, log)},
		}
		for _, j := range jobs {
			if err := sched.AddJob(j.schedule, j.job); err != nil {
				log.Fatal().Err(err).Str("job", j.job.Name()).Msg("Failed to register job")
			}
		}
		sched.Start()
	}

	// Graceful shutdown
	waitForShutdown(log, grpcServer, httpServer, sched)
}

// waitForShutdown waits for SIGTERM or SIGINT and gracefully shuts down the servers
func waitForShutdown(log zerolog.Logger, grpcServer *grpclib.Server, httpServer *httpadapter.Server, sched *scheduler.Scheduler) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	sig := <-sigChan
	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully")

	if sched != nil {
		sched.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown failed")
	}

	grpcServer.GracefulStop()
	log.Info().Msg("gRPC server stopped")
}
