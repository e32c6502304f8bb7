package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"lob/internal/common"
	"lob/internal/config"
	"lob/internal/engine"
	"lob/internal/shard"
)

func main() {
	envPath := flag.String("env", "", "Path to a .env file (defaults to ./.env)")
	flag.Parse()

	cfg, err := config.Load(*envPath)
	if err != nil {
		log.Fatal().Err(err).Msg("unable to load config")
	}
	setupLogging(cfg)

	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGTERM,
		syscall.SIGINT,
	)
	defer stop()

	// One engine per symbol, each owned by its own shard.
	shards := make(map[string]*shard.Shard, len(cfg.Symbols))
	for _, symbol := range cfg.Symbols {
		eng := engine.New(symbol, engine.WithLogger(log.Logger))
		shards[symbol] = shard.New(ctx, eng, cfg.QueueSize, logReporter{})
	}
	defer func() {
		for symbol, s := range shards {
			if err := s.Stop(); err != nil {
				log.Error().Err(err).Str("symbol", symbol).Msg("unable to stop shard")
			}
		}
	}()

	for _, symbol := range cfg.Symbols {
		if err := runScenario(ctx, shards[symbol]); err != nil {
			log.Error().Err(err).Str("symbol", symbol).Msg("scenario failed")
			return
		}
	}
}

func setupLogging(cfg config.Config) {
	zerolog.SetGlobalLevel(cfg.LogLevel)
	zerolog.TimeFieldFormat = time.RFC3339Nano
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}

// logReporter surfaces fills as log lines.
type logReporter struct{}

func (logReporter) ReportFills(symbol string, fills []common.Fill) error {
	for _, f := range fills {
		log.Info().
			Str("symbol", symbol).
			Str("trade", f.TradeID.String()).
			Uint64("buy", f.BuyOrderID).
			Uint64("sell", f.SellOrderID).
			Stringer("taker", f.Taker).
			Str("price", f.Price.StringFixed(2)).
			Int64("quantity", f.Quantity).
			Msg("execution")
	}
	return nil
}
