package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"vestacal/internal/config"
	"vestacal/internal/digest"
	appLog "vestacal/internal/log"
	"vestacal/internal/pipeline"
	"vestacal/internal/summarize"
	"vestacal/internal/vestaboard"
)

type flagConfig struct {
	configPath string
	date       string
	timezone   string
	output     string
	refresh    bool
	push       bool
}

func main() {
	flags := parseFlags()

	files := flag.Args()
	if len(files) == 0 {
		fmt.Fprintln(os.Stderr, "usage: vestacal [flags] <ics-file> [<ics-file>...]")
		flag.PrintDefaults()
		os.Exit(1)
	}

	// .env is optional; secrets may come from the real environment.
	_ = godotenv.Load()

	conf := config.DefaultConfig()
	if flags.configPath != "" {
		var err error
		conf, err = config.Load(flags.configPath)
		if err != nil {
			appLog.Error("failed to load config", err, "config_path", flags.configPath)
			os.Exit(1)
		}
	}
	appLog.SetLevel(appLog.ParseLevel(conf.LogLevel))

	loc := pipeline.ResolveTimezone(flags.timezone, conf.DefaultTimezone)

	if err := os.MkdirAll(flags.output, 0o755); err != nil {
		appLog.Error("output folder not writable", err, "output", flags.output)
		os.Exit(1)
	}

	runner := pipeline.NewRunner(loc, conf.LookAheadDays, time.Duration(conf.FileDeadlineSeconds)*time.Second)

	var summarizer summarize.Summarizer
	if s := summarize.NewOpenAI(os.Getenv("OPENAI_API_KEY"), conf.OpenAIModel); s != nil {
		summarizer = s
	}
	formatter := digest.NewFormatter(summarizer)
	formatter.TimedTitleLimit = conf.TimedTitleLimit
	formatter.AllDayTitleLimit = conf.AllDayTitleLimit

	var board *vestaboard.Client
	if flags.push {
		board = vestaboard.NewClient(os.Getenv("VESTABOARD_READ_WRITE_KEY"))
		if !board.IsConfigured() {
			appLog.Warn("-push set but VESTABOARD_READ_WRITE_KEY is empty; skipping board updates")
			board = nil
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if !flags.refresh {
		date := flags.date
		if date == "" {
			date = time.Now().In(loc).Format(time.DateOnly)
		}
		if err := runOnce(ctx, runner, formatter, board, files, date, flags.output); err != nil {
			appLog.Error("run failed", err)
			os.Exit(1)
		}
		return
	}

	// Refresh mode: re-run the batch pipeline on the configured cron
	// schedule, always for the current date, and push fresh digests.
	appLog.Info("starting in refresh mode", "schedule", conf.RefreshCron)

	run := func() {
		date := time.Now().In(loc).Format(time.DateOnly)
		if err := runOnce(ctx, runner, formatter, board, files, date, flags.output); err != nil {
			appLog.Error("scheduled run failed", err, "date", date)
		}
	}
	run()

	c := cron.New()
	if _, err := c.AddFunc(conf.RefreshCron, run); err != nil {
		appLog.Error("invalid refresh schedule", err, "schedule", conf.RefreshCron)
		os.Exit(1)
	}
	c.Start()
	defer c.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	appLog.Info("signal received, shutting down", "signal", sig.String())
}

// runOnce executes one full batch pass: extraction, artifact writing, and
// an optional board push.
func runOnce(ctx context.Context, runner *pipeline.Runner, formatter *digest.Formatter, board *vestaboard.Client, files []string, date, output string) error {
	res, err := runner.Run(ctx, files, date)
	if err != nil {
		if errors.Is(err, pipeline.ErrAllFilesFailed) {
			return fmt.Errorf("%w (%d files)", err, len(files))
		}
		return err
	}
	for _, ferr := range res.Failures {
		fmt.Fprintf(os.Stderr, "warning: %v\n", ferr)
	}

	target, _ := pipeline.ParseTargetDate(date)

	subsetPath := filepath.Join(output, digest.SubsetFileName)
	if err := os.WriteFile(subsetPath, []byte(digest.CalendarSubset(res.Occurrences)), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", subsetPath, err)
	}
	fmt.Printf("Filtered calendar written to: %s\n", subsetPath)

	text := formatter.Digest(ctx, res.Occurrences, target)
	digestPath := filepath.Join(output, digest.DigestFileName)
	if err := os.WriteFile(digestPath, []byte(text), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", digestPath, err)
	}
	fmt.Printf("Formatted events written to: %s\n", digestPath)

	if board != nil {
		if err := board.SendText(ctx, text); err != nil {
			// The artifacts are already on disk; a board failure is not fatal.
			appLog.Warn("board update failed", "err", err)
		} else {
			appLog.Info("board updated")
		}
	}
	return nil
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "", "Path to config file (defaults used when empty)")
	flag.StringVar(&cfg.date, "date", "", "Target date in YYYY-MM-DD format (default: today)")
	flag.StringVar(&cfg.timezone, "timezone", "", "Target timezone (default: from config)")
	flag.StringVar(&cfg.output, "output", ".", "Output folder for artifacts")
	flag.BoolVar(&cfg.refresh, "refresh", false, "Re-run on the configured cron schedule instead of once")
	flag.BoolVar(&cfg.push, "push", false, "Push the digest to the Vestaboard after each run")

	flag.Parse()

	return cfg
}
