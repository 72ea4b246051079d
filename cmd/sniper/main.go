package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"gem-sniper/internal/domain"
	"gem-sniper/internal/engine"
	"gem-sniper/internal/execution"
	"gem-sniper/internal/feed"
	"gem-sniper/internal/observability"
	"gem-sniper/internal/reporting"
	"gem-sniper/internal/rules"
	"gem-sniper/internal/solana"
	"gem-sniper/internal/storage"
	chstore "gem-sniper/internal/storage/clickhouse"
	"gem-sniper/internal/storage/memory"
	"gem-sniper/internal/storage/migrations"
	pgstore "gem-sniper/internal/storage/postgres"
	"gem-sniper/internal/wallet"
)

func main() {
	loadEnvFile()

	// Parse flags
	mode := flag.String("mode", "simulated", "Trading mode: simulated or live")
	feedEndpoint := flag.String("feed-endpoint", envOr("FEED_ENDPOINT", feed.DefaultEndpoint), "Token event WebSocket endpoint")
	tradeEndpoint := flag.String("trade-endpoint", envOr("TRADE_ENDPOINT", execution.DefaultPortalEndpoint), "Trading API endpoint (live mode)")
	apiKey := flag.String("api-key", os.Getenv("TRADE_API_KEY"), "Trading API key (live mode)")
	rpcEndpoint := flag.String("rpc-endpoint", os.Getenv("SOLANA_RPC_ENDPOINT"), "Solana RPC HTTP endpoint (live mode balance seed)")
	walletPubkey := flag.String("wallet", os.Getenv("WALLET_PUBKEY"), "Wallet public key (live mode balance seed)")
	rulesPath := flag.String("rules", "rules.json", "Strategy rules file (JSON)")

	balance := flag.Float64("balance", 1.0, "Starting balance in SOL (simulated mode)")
	buySize := flag.Float64("buy-size", 0.1, "Position size in SOL")
	maxSlippage := flag.Float64("max-slippage", 25, "Slippage tolerance in percent")
	priorityFee := flag.Float64("priority-fee", 0.001, "Priority fee in SOL")
	batchCapacity := flag.Int("batch-capacity", 10, "Max concurrently tracked tokens")
	inactivityLimit := flag.Duration("inactivity-limit", 30*time.Second, "Stale position threshold")

	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string for the trade log (empty for in-memory)")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string for run summaries (empty for in-memory)")
	capturePath := flag.String("capture", "", "Record decoded feed events to a JSONL file")
	reportPath := flag.String("report", "", "Write the run report (Markdown) to this path")
	csvPath := flag.String("csv", "", "Write the trade table (CSV) to this path")
	metricsAddr := flag.String("metrics-addr", ":9090", "Prometheus metrics HTTP address (empty to disable)")

	flag.Parse()

	logger := log.New(os.Stdout, "[sniper] ", log.LstdFlags)

	cfg := domain.Config{
		Balance:         *balance,
		BuySize:         *buySize,
		MaxSlippagePct:  *maxSlippage,
		PriorityFee:     *priorityFee,
		BatchCapacity:   *batchCapacity,
		InactivityLimit: *inactivityLimit,
		Mode:            domain.Mode(*mode),
	}

	if err := run(cfg, runOptions{
		feedEndpoint:  *feedEndpoint,
		tradeEndpoint: *tradeEndpoint,
		apiKey:        *apiKey,
		rpcEndpoint:   *rpcEndpoint,
		walletPubkey:  *walletPubkey,
		rulesPath:     *rulesPath,
		postgresDSN:   *postgresDSN,
		clickhouseDSN: *clickhouseDSN,
		capturePath:   *capturePath,
		reportPath:    *reportPath,
		csvPath:       *csvPath,
		metricsAddr:   *metricsAddr,
		logger:        logger,
	}); err != nil {
		logger.Fatalf("Error: %v", err)
	}

	logger.Println("Shutdown complete")
}

type runOptions struct {
	feedEndpoint  string
	tradeEndpoint string
	apiKey        string
	rpcEndpoint   string
	walletPubkey  string
	rulesPath     string
	postgresDSN   string
	clickhouseDSN string
	capturePath   string
	reportPath    string
	csvPath       string
	metricsAddr   string
	logger        *log.Logger
}

func run(cfg domain.Config, opts runOptions) error {
	logger := opts.logger

	enter, exit, err := rules.Load(opts.rulesPath)
	if err != nil {
		return err
	}
	logger.Printf("Loaded strategy: %d enter rule-sets, %d exit rule-sets", enter.Len(), exit.Len())

	// Context cancelled on the first signal; a second one forces exit.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, initiating graceful shutdown...", sig)
		cancel()
		sig = <-sigCh
		logger.Printf("Received second signal %v, forcing immediate shutdown", sig)
		os.Exit(1)
	}()

	metrics := observability.NewMetrics("gem_sniper")
	if opts.metricsAddr != "" {
		go serveMetrics(opts.metricsAddr, logger)
	}

	// Stores (interfaces; in-memory unless a DSN is given)
	var tradeLog storage.TradeLogStore = memory.NewTradeLogStore()
	var runSummaries storage.RunSummaryStore = memory.NewRunSummaryStore()

	if opts.postgresDSN != "" {
		pool, err := pgstore.NewPool(ctx, opts.postgresDSN)
		if err != nil {
			return fmt.Errorf("connect to postgres: %w", err)
		}
		defer pool.Close()
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			return fmt.Errorf("postgres migrations: %w", err)
		}
		tradeLog = pgstore.NewTradeLogStore(pool)
	}
	if opts.clickhouseDSN != "" {
		conn, err := migrations.RunClickhouseMigrations(ctx, opts.clickhouseDSN)
		if err != nil {
			return fmt.Errorf("clickhouse migrations: %w", err)
		}
		defer conn.Close()
		runSummaries = chstore.NewRunSummaryStore(conn)
	}

	// Submitter and ledger per mode
	var submitter execution.Submitter
	var ledger wallet.Ledger

	switch cfg.Mode {
	case domain.ModeLive:
		if opts.apiKey == "" {
			return fmt.Errorf("--api-key is required for live mode")
		}
		if opts.rpcEndpoint == "" || opts.walletPubkey == "" {
			return fmt.Errorf("--rpc-endpoint and --wallet are required for live mode")
		}
		rpc := solana.NewHTTPClient(opts.rpcEndpoint)
		seeded, err := wallet.SeedFromRPC(ctx, rpc, opts.walletPubkey)
		if err != nil {
			return fmt.Errorf("seed balance: %w", err)
		}
		cfg.Balance = seeded.Balance()
		logger.Printf("Wallet %s holds %.4f SOL", opts.walletPubkey, cfg.Balance)
		ledger = seeded
		submitter = execution.NewPortalSubmitter(opts.apiKey,
			execution.WithEndpoint(opts.tradeEndpoint),
			execution.WithLogger(logger))
	case domain.ModeSimulated:
		ledger = wallet.NewMemoryLedger(cfg.Balance)
		submitter = execution.NewSimSubmitter(execution.NewLatencyModel())
	default:
		return fmt.Errorf("unknown mode %q", cfg.Mode)
	}

	// Feed, optionally teed into a capture file
	client, err := feed.NewClient(ctx, opts.feedEndpoint, nil)
	if err != nil {
		return fmt.Errorf("connect feed: %w", err)
	}
	defer client.Close()

	var source feed.Feed = client
	if opts.capturePath != "" {
		recorder, err := feed.CreateRecorder(opts.capturePath)
		if err != nil {
			return fmt.Errorf("open capture file: %w", err)
		}
		defer recorder.Close()
		tee := feed.Tee(client, recorder, logger)
		defer tee.Close()
		source = tee
		logger.Printf("Recording feed events to %s", opts.capturePath)
	}

	eng, err := engine.New(engine.Options{
		Config:    cfg,
		Feed:      source,
		Submitter: submitter,
		Ledger:    ledger,
		Enter:     enter,
		Exit:      exit,
		TradeLog:  tradeLog,
		Metrics:   metrics,
		Logger:    logger,
	})
	if err != nil {
		return err
	}

	runErr := eng.Run(ctx)
	if runErr != nil && runErr != context.Canceled {
		logger.Printf("Run ended with error: %v", runErr)
	}

	if err := finishRun(eng, tradeLog, runSummaries, enter, exit, opts); err != nil {
		logger.Printf("Report error: %v", err)
	}
	return runErr
}

// finishRun persists the run summary and writes the requested report files.
func finishRun(eng *engine.Engine, tradeLog storage.TradeLogStore, runSummaries storage.RunSummaryStore, enter, exit *rules.Compiled, opts runOptions) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	summary := eng.Summary()
	if err := runSummaries.Insert(ctx, summary); err != nil {
		opts.logger.Printf("Persist run summary: %v", err)
	}

	report, err := reporting.NewGenerator(tradeLog).Generate(ctx, summary, eng.Transcript(), enter, exit)
	if err != nil {
		return err
	}

	if opts.reportPath != "" {
		if err := os.WriteFile(opts.reportPath, []byte(reporting.RenderMarkdown(report)), 0o644); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		opts.logger.Printf("Report written to %s", opts.reportPath)
	}
	if opts.csvPath != "" {
		if err := os.WriteFile(opts.csvPath, []byte(reporting.RenderCSV(report.Trades)), 0o644); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
		opts.logger.Printf("Trade table written to %s", opts.csvPath)
	}
	return nil
}

func serveMetrics(addr string, logger *log.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", observability.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	logger.Printf("Starting metrics server on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
		logger.Printf("Metrics server error: %v", err)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// loadEnvFile loads environment variables from .env file if it exists.
func loadEnvFile() {
	data, err := os.ReadFile(".env")
	if err != nil {
		return // File doesn't exist, use system env vars
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		// Don't override existing env vars
		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
}
