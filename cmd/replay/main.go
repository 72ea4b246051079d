package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gem-sniper/internal/domain"
	"gem-sniper/internal/engine"
	"gem-sniper/internal/execution"
	"gem-sniper/internal/feed"
	"gem-sniper/internal/reporting"
	"gem-sniper/internal/rules"
	"gem-sniper/internal/storage/memory"
	"gem-sniper/internal/wallet"
)

func main() {
	// Parse flags
	capturePath := flag.String("capture", "", "JSONL event capture to replay (required)")
	rulesPath := flag.String("rules", "rules.json", "Strategy rules file (JSON)")
	speed := flag.Float64("speed", 0, "Playback speed multiplier (0 replays without pacing)")
	withLatency := flag.Bool("with-latency", false, "Apply the execution latency model during replay")

	balance := flag.Float64("balance", 1.0, "Starting balance in SOL")
	buySize := flag.Float64("buy-size", 0.1, "Position size in SOL")
	maxSlippage := flag.Float64("max-slippage", 25, "Slippage tolerance in percent")
	priorityFee := flag.Float64("priority-fee", 0.001, "Priority fee in SOL")
	batchCapacity := flag.Int("batch-capacity", 10, "Max concurrently tracked tokens")
	inactivityLimit := flag.Duration("inactivity-limit", 30*time.Second, "Stale position threshold")

	reportPath := flag.String("report", "", "Write the run report (Markdown) to this path")
	csvPath := flag.String("csv", "", "Write the trade table (CSV) to this path")

	flag.Parse()

	logger := log.New(os.Stderr, "[replay] ", log.LstdFlags)

	if *capturePath == "" {
		logger.Fatal("--capture is required")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, shutting down...", sig)
		cancel()
	}()

	cfg := domain.Config{
		Balance:         *balance,
		BuySize:         *buySize,
		MaxSlippagePct:  *maxSlippage,
		PriorityFee:     *priorityFee,
		BatchCapacity:   *batchCapacity,
		InactivityLimit: *inactivityLimit,
		Mode:            domain.ModeSimulated,
	}

	if err := run(ctx, cfg, *capturePath, *rulesPath, *speed, *withLatency, *reportPath, *csvPath, logger); err != nil {
		logger.Fatalf("Error: %v", err)
	}
}

func run(ctx context.Context, cfg domain.Config, capturePath, rulesPath string, speed float64, withLatency bool, reportPath, csvPath string, logger *log.Logger) error {
	enter, exit, err := rules.Load(rulesPath)
	if err != nil {
		return err
	}

	replayCfg := feed.DefaultReplayConfig()
	replayCfg.Speed = speed
	replayCfg.Logger = logger
	source, err := feed.OpenReplay(capturePath, &replayCfg)
	if err != nil {
		return fmt.Errorf("open capture: %w", err)
	}
	defer source.Close()

	// Without pacing a real latency model would stall the whole replay, so
	// the delay-free submitter is the default.
	var submitter execution.Submitter = instantSubmitter{fee: cfg.PriorityFee}
	if withLatency {
		submitter = execution.NewSimSubmitter(execution.NewLatencyModel())
	}

	tradeLog := memory.NewTradeLogStore()
	eng, err := engine.New(engine.Options{
		Config:    cfg,
		Feed:      source,
		Submitter: submitter,
		Ledger:    wallet.NewMemoryLedger(cfg.Balance),
		Enter:     enter,
		Exit:      exit,
		TradeLog:  tradeLog,
		Logger:    logger,
	})
	if err != nil {
		return err
	}

	logger.Printf("Replaying %s (speed=%g)", capturePath, speed)
	if err := eng.Run(ctx); err != nil && err != context.Canceled {
		return err
	}

	reportCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	report, err := reporting.NewGenerator(tradeLog).Generate(reportCtx, eng.Summary(), eng.Transcript(), enter, exit)
	if err != nil {
		return err
	}

	if reportPath != "" {
		if err := os.WriteFile(reportPath, []byte(reporting.RenderMarkdown(report)), 0o644); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		logger.Printf("Report written to %s", reportPath)
	} else {
		fmt.Print(reporting.RenderMarkdown(report))
	}
	if csvPath != "" {
		if err := os.WriteFile(csvPath, []byte(reporting.RenderCSV(report.Trades)), 0o644); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
		logger.Printf("Trade table written to %s", csvPath)
	}
	return nil
}

// instantSubmitter lands every order immediately at the configured fee.
type instantSubmitter struct {
	fee float64
}

func (s instantSubmitter) Submit(_ context.Context, _ execution.Order) execution.Receipt {
	return execution.Receipt{Success: true, Fee: s.fee}
}
