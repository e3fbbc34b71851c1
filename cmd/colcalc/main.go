package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/leengari/colcalc/internal/config"
	"github.com/leengari/colcalc/internal/engine"
	"github.com/leengari/colcalc/internal/logging"
	"github.com/leengari/colcalc/internal/network"
	"github.com/leengari/colcalc/internal/projection"
	"github.com/leengari/colcalc/internal/repl"
	"github.com/leengari/colcalc/internal/storage"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config file")
	serverMode := flag.Bool("server", false, "Run in server mode")
	port := flag.Int("port", 0, "Port to listen on (overrides config)")
	file := flag.String("file", "", "Dataset to load")
	formula := flag.String("formula", "", "Formula to apply to -file")
	out := flag.String("out", "", "Write the computed dataset to this csv/json file")
	flag.Parse()

	conf, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	logger, closeFn := logging.SetupLogger(conf.Logging, os.Stderr)
	defer closeFn()
	slog.SetDefault(logger)

	eng := engine.New(projection.Options{
		ResultKey:     conf.Engine.ResultKey,
		FailureMarker: conf.Engine.FailureMarker,
		Workers:       conf.Engine.Workers,
	}, logger)

	// Register logging observer for lifecycle tracing
	eng.AddObserver(engine.NewLoggingObserver())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	storageOpts := storage.Options{Charset: conf.Storage.Charset}

	switch {
	case *serverMode:
		if *port != 0 {
			conf.Server.Port = *port
		}
		slog.Info("Starting Server mode...")
		network.Start(conf.Server.Port, eng)

	case *file != "" && *formula != "":
		if err := runOnce(ctx, eng, storageOpts, *file, *formula, *out); err != nil {
			slog.Error("run failed", "error", err)
			closeFn()
			os.Exit(1)
		}

	default:
		session := repl.NewSession(eng, storageOpts, os.Stdout)
		if *file != "" {
			ds, err := storage.Load(*file, storageOpts, logger)
			if err != nil {
				slog.Error("failed to load dataset", "file", *file, "error", err)
				closeFn()
				os.Exit(1)
			}
			session.SetDataset(ds)
		}
		slog.Info("Starting REPL mode...")
		repl.Start(ctx, session, os.Stdin)
	}
}

func runOnce(ctx context.Context, eng *engine.Engine, opts storage.Options, file, text, out string) error {
	ds, err := storage.Load(file, opts, slog.Default())
	if err != nil {
		return err
	}

	f, err := eng.CompileText(text)
	if err != nil {
		return err
	}

	res, err := eng.Run(ctx, f, ds)
	if err != nil {
		return err
	}

	if out != "" {
		if err := storage.Save(out, res.Dataset); err != nil {
			return err
		}
		slog.Info("Dataset saved", "path", out, "rows", len(res.Dataset.Rows))
	} else {
		repl.PrintDataset(os.Stdout, res.Dataset)
	}
	fmt.Println(res.Message)
	return nil
}
