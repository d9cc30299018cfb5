package main

import (
	"fmt"
	"io"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"chapterfind/internal/classify"
	"chapterfind/internal/config"
	"chapterfind/internal/deps"
	"chapterfind/internal/logging"
	"chapterfind/internal/media/silence"
	"chapterfind/internal/notifications"
	"chapterfind/internal/session"
	"chapterfind/internal/store"
	"chapterfind/internal/whisper"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var profileFlag string
	var outputDirFlag string
	var testRunFlag bool
	var testRunMinutes int
	var forceTestRun bool

	cmd := &cobra.Command{
		Use:   "run <file-or-directory>",
		Short: "Detect chapter boundaries in an audiobook file or directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			if profileFlag != "" {
				cfg.Whisper.Profile = profileFlag
			}
			if outputDirFlag != "" {
				expanded, err := config.ExpandPath(outputDirFlag)
				if err != nil {
					return fmt.Errorf("resolve output directory: %w", err)
				}
				cfg.Output.Dir = expanded
			}
			if testRunFlag {
				cfg.TestRun.Enabled = true
			}
			if testRunMinutes > 0 {
				cfg.TestRun.Enabled = true
				cfg.TestRun.DurationMinutes = testRunMinutes
			}
			if forceTestRun {
				cfg.TestRun.Force = true
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			return runSession(cmd, ctx, cfg, args[0])
		},
	}

	cmd.Flags().StringVar(&profileFlag, "profile", "", "Transcription profile (fast, flexible, accurate)")
	cmd.Flags().StringVarP(&outputDirFlag, "output-dir", "o", "", "Directory for the chapter and silence files")
	cmd.Flags().BoolVar(&testRunFlag, "test-run", false, "Process only the configured trial duration")
	cmd.Flags().IntVar(&testRunMinutes, "test-run-minutes", 0, "Trial duration in minutes (implies --test-run)")
	cmd.Flags().BoolVar(&forceTestRun, "force-test-run", false, "Recreate truncated trial files even when they exist")
	return cmd
}

func runSession(cmd *cobra.Command, ctx *commandContext, cfg *config.Config, inputPath string) error {
	signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	lockPath := filepath.Join(cfg.Logging.Dir, "chapterfind.lock")
	lock := flock.New(lockPath)
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire run lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("another chapterfind run is already in progress (lock %s)", lockPath)
	}
	defer lock.Unlock()

	statuses := deps.CheckBinaries(deps.Requirements(cfg))
	if missing := deps.Missing(statuses); len(missing) > 0 {
		return fmt.Errorf("missing required tools: %s (run `chapterfind deps` for details)", strings.Join(missing, ", "))
	}

	var history *store.Store
	if cfg.Store.Enabled {
		history, err = store.Open(cfg.Store.Path)
		if err != nil {
			logger.Warn("run history disabled", logging.Error(err))
			history = nil
		} else {
			defer history.Close()
		}
	}

	profile, err := cfg.ResolveProfile()
	if err != nil {
		return err
	}

	detector := silence.NewDetector(cfg.Tools.FFmpeg, silence.Options{
		ThresholdDB:        cfg.Silence.ThresholdDB,
		MinDurationSeconds: cfg.Silence.MinDurationSeconds,
		EndMarginSeconds:   cfg.Silence.EndMarginSeconds,
	}, logger)

	words := cfg.Targets.Words
	if cfg.Targets.NumbersOnly {
		words = classify.NumericTargets()
	}
	matcher := classify.NewMatcher(words, cfg.Targets.FirstWordOnly)

	engine := whisper.NewCLI(whisper.Config{
		Binary:      cfg.Tools.Whisper,
		ComputeType: cfg.Whisper.ComputeType,
		Device:      cfg.Whisper.Device,
		ModelDir:    cfg.Whisper.ModelDir,
	})
	checker := classify.New(engine, cfg.Tools.FFmpeg, cfg.Snippet.DurationSeconds, matcher, whisper.Request{
		Profile:  profile,
		Language: cfg.Whisper.Language,
		Prompt:   cfg.Whisper.Prompt,
	}, logger)

	notifier := notifications.NewService(cfg)
	out := cmd.OutOrStdout()
	progress := newProgressRenderer(out)

	events := session.Events{
		SourceStart: func(source string, index, total int) {
			if index == 1 {
				if err := notifier.NotifyRunStarted(signalCtx, total, cfg.TestRun.Enabled); err != nil {
					logger.Warn("start notification failed", logging.Error(err))
				}
			}
			progress.sourceStart(source, index, total)
		},
		SilenceProgress: progress.silenceProgress,
		ChapterFound:    progress.chapterFound,
	}

	controller := session.NewController(cfg, detector, checker, logger, history, events)
	summary, err := controller.Run(signalCtx, inputPath)
	progress.finish()
	if err != nil {
		if notifyErr := notifier.NotifyRunFailed(signalCtx, err); notifyErr != nil {
			logger.Warn("failure notification failed", logging.Error(notifyErr))
		}
		return err
	}
	if err := notifier.NotifyRunCompleted(signalCtx, summary.ChapterCount, summary.Elapsed); err != nil {
		logger.Warn("completion notification failed", logging.Error(err))
	}

	printSummary(out, cfg, summary)
	return nil
}

func printSummary(out io.Writer, cfg *config.Config, summary *session.Summary) {
	rows := [][]string{
		{"Sources", fmt.Sprintf("%d processed, %d skipped of %d", summary.SourcesProcessed, summary.SourcesSkipped, summary.SourcesTotal)},
		{"Silences", fmt.Sprintf("%d", summary.SilenceCount)},
		{"Chapters", fmt.Sprintf("%d", summary.ChapterCount)},
		{"Silence detection", formatDuration(summary.SilenceTime)},
		{"Transcription", formatDuration(summary.TranscriptionTime)},
		{"Other", formatDuration(summary.OtherTime)},
		{"Elapsed", formatDuration(summary.Elapsed)},
	}
	if cfg.Output.Enabled {
		rows = append(rows,
			[]string{"Chapter file", summary.ChapterFile},
		)
		if cfg.Output.Silence {
			rows = append(rows, []string{"Silence file", summary.SilenceFile})
		}
	}

	fmt.Fprintln(out, renderTable([]string{"Metric", "Value"}, rows, []columnAlignment{alignLeft, alignLeft}))

	if len(summary.Chapters) > 0 {
		chapterRows := make([][]string, 0, len(summary.Chapters))
		for _, chapter := range summary.Chapters {
			chapterRows = append(chapterRows, []string{chapter.Timestamp, chapter.Title, filepath.Base(chapter.Source)})
		}
		fmt.Fprintln(out, renderTable([]string{"Timestamp", "Title", "Source"}, chapterRows, []columnAlignment{alignRight, alignLeft, alignLeft}))
	}
}

func formatDuration(d time.Duration) string {
	return d.Round(time.Millisecond).String()
}
