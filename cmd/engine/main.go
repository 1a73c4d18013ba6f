package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/JoeShih716/go-payments-engine/internal/app/engine"
	memory_adapter "github.com/JoeShih716/go-payments-engine/internal/app/engine/adapter/out/memory"
	mysql_adapter "github.com/JoeShih716/go-payments-engine/internal/app/engine/adapter/out/mysql"
	"github.com/JoeShih716/go-payments-engine/internal/app/engine/usecase"
	"github.com/JoeShih716/go-payments-engine/internal/config"
	"github.com/JoeShih716/go-payments-engine/pkg/logger"
	"github.com/JoeShih716/go-payments-engine/pkg/mysql"
	"github.com/JoeShih716/go-payments-engine/pkg/wal"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) (retErr error) {
	fs := flag.NewFlagSet("engine", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "path to YAML config file")
	journalPath := fs.String("journal", "", "append applied actions to this file (JSON lines)")
	logLevel := fs.String("log-level", "", "log level: debug, info, warn, error")
	mode := fs.String("mode", "", "engine mode: direct, mutex, sequencer")
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "usage: engine [flags] <transactions.csv>")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return errors.New("missing input file as first positional argument")
	}

	// 1. 載入設定 (flag 最後覆寫)
	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("init config: %w", err)
	}
	if *journalPath != "" {
		cfg.Journal.Path = *journalPath
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}
	if *mode != "" {
		cfg.Engine.Mode = *mode
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("init config: %w", err)
		}
	}

	// 2. Logger 輸出到 stderr，stdout 只放報表
	log, err := logger.New(cfg.Log, stderr)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	// 3. 建立帳本，依設定決定使用哪種包裝
	processor := usecase.NewProcessor(memory_adapter.NewClientLedger(), memory_adapter.NewTransferLedger())
	applier, stopApplier := newApplier(ctx, cfg.Engine, processor)
	defer stopApplier()
	log.Info("ledger ready", zap.String("mode", cfg.Engine.Mode))
	var opts []engine.RunnerOption

	// 4. 稽核 journal (選用)
	if cfg.Journal.Path != "" {
		journal, err := wal.NewWAL(cfg.Journal.Path)
		if err != nil {
			return fmt.Errorf("open journal: %w", err)
		}
		defer func() {
			if cerr := journal.Close(); cerr != nil {
				retErr = errors.Join(retErr, fmt.Errorf("close journal: %w", cerr))
			}
		}()
		opts = append(opts, engine.WithJournal(journal))
		log.Info("journal enabled", zap.String("path", cfg.Journal.Path))
	}

	// 5. MySQL 快照輸出 (選用)
	if cfg.MySQL.Enabled {
		dbClient, err := mysql.NewClient(ctx, cfg.MySQL.Config, log)
		if err != nil {
			return fmt.Errorf("connect mysql: %w", err)
		}
		defer dbClient.Close()
		log.Info("connected to mysql", zap.String("host", cfg.MySQL.Host))

		sink := mysql_adapter.NewSnapshotSink(dbClient)
		if err := sink.Migrate(ctx); err != nil {
			return err
		}
		opts = append(opts, engine.WithSnapshotSink(sink))
	}

	// 6. 讀取輸入並執行
	inputPath := fs.Arg(0)
	input, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer input.Close()

	runner := engine.NewRunner(applier, log, opts...)
	log.Info("reading data", zap.String("path", inputPath))

	if _, err := runner.Run(ctx, input, stdout); err != nil {
		return fmt.Errorf("run %s: %w", runner.RunID(), err)
	}
	return nil
}

// newApplier 依執行模式建立 Applier
// 回傳的 stop 會停止 Sequencer 並等待 loop 結束
func newApplier(ctx context.Context, cfg config.EngineConfig, processor *usecase.Processor) (engine.Applier, func()) {
	switch cfg.Mode {
	case config.ModeMutex:
		return usecase.NewMutexProcessor(processor), func() {}
	case config.ModeSequencer:
		seqCtx, cancel := context.WithCancel(ctx)
		seq := usecase.NewSequencer(processor, cfg.Buffer)
		seq.Start(seqCtx)
		return seq.Applier(seqCtx), func() {
			cancel()
			<-seq.Done()
		}
	default:
		return processor, func() {}
	}
}
