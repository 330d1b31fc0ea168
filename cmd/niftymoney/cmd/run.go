package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/sanjaymgicganja8597-maker/Nifty-money/advisor"
	"github.com/sanjaymgicganja8597-maker/Nifty-money/config"
	"github.com/sanjaymgicganja8597-maker/Nifty-money/internal/logger"
	"github.com/sanjaymgicganja8597-maker/Nifty-money/internal/metrics"
	"github.com/sanjaymgicganja8597-maker/Nifty-money/journal"
	"github.com/sanjaymgicganja8597-maker/Nifty-money/market"
	"github.com/sanjaymgicganja8597-maker/Nifty-money/notify"
	"github.com/sanjaymgicganja8597-maker/Nifty-money/sim"
	"github.com/sanjaymgicganja8597-maker/Nifty-money/stream"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the simulator with the live API and tick stream",
	Long: `Run the paper-trading simulator: the synthetic feed ticks on a fixed
cadence, triggers and limit orders are evaluated on every tick, and the HTTP
server exposes the websocket stream, the JSON API and Prometheus metrics.

Example:
  niftymoney run --config examples/configs/basic.yaml`,
	RunE: runRun,
}

var (
	runConfigPath string
	runEnvFile    string
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runConfigPath, "config", "f", "", "path to config file (YAML or JSON)")
	runCmd.Flags().StringVar(&runEnvFile, "env", "", "path to .env file with GEMINI_API_KEY")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg := config.Default()
	if runConfigPath != "" {
		var err error
		cfg, err = config.LoadFromFile(runConfigPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
	}
	cfg.LoadEnv(runEnvFile)

	log := logger.Init("niftymoney", logger.ParseLevel(cfg.Log.Level))

	j, err := openJournal(cfg.Journal)
	if err != nil {
		return fmt.Errorf("create journal: %w", err)
	}
	defer j.Close()

	seed := cfg.Market.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))
	instruments := market.SeedHistories(market.Catalog(), rng, cfg.Market.Window)
	feed := market.NewFeed(instruments, rng, cfg.Market.Volatility)

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	hub := stream.NewHub(log)
	go hub.Run()
	defer hub.Close()

	// The broadcast hook closes over the server, which needs the engine; the
	// variable is assigned before Run starts stepping.
	var server *stream.Server
	engine := sim.NewEngine(feed, cfg.Account.Capital,
		sim.WithJournal(j),
		sim.WithLogger(log),
		sim.WithMetrics(m),
		sim.WithNotifier(&notify.LogNotifier{Log: log}),
		sim.WithStepHook(func(map[string]float64) {
			hub.Broadcast(server.Snapshot())
		}),
	)

	var adv *advisor.Client
	if cfg.Advisor.APIKey != "" {
		opts := []advisor.Option{advisor.WithLogger(log)}
		if cfg.Advisor.Model != "" {
			opts = append(opts, advisor.WithModel(cfg.Advisor.Model))
		}
		adv = advisor.NewClient(cfg.Advisor.APIKey, opts...)
	} else {
		log.Info("GEMINI_API_KEY not set, advisor disabled")
	}

	server = stream.NewServer(engine, hub, adv, reg, log)

	interval, err := cfg.Simulation.ParseInterval()
	if err != nil {
		return fmt.Errorf("simulation interval: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	httpSrv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: server.Handler(),
	}
	go func() {
		log.Info("http server listening", slog.String("addr", cfg.Server.Addr))
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("http server", slog.String("err", err.Error()))
			stop()
		}
	}()

	log.Info("simulation started",
		slog.Float64("capital", cfg.Account.Capital),
		slog.Duration("interval", interval),
		slog.Int64("seed", seed),
	)
	engine.Run(ctx, interval)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http shutdown", slog.String("err", err.Error()))
	}
	log.Info("simulation stopped")
	return nil
}

func openJournal(jc config.JournalConfig) (journal.Journal, error) {
	switch jc.Type {
	case "", "none":
		return journal.Nop{}, nil
	case "csv":
		return journal.NewCSV(jc.FillsFile, jc.EquityFile)
	default:
		return journal.NewSQLite(jc.DBPath)
	}
}
