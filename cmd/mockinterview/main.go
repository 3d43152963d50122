package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pavelanni/mockinterview/internal/handler"
	appI18n "github.com/pavelanni/mockinterview/internal/i18n"
	"github.com/pavelanni/mockinterview/internal/metrics"
	"github.com/pavelanni/mockinterview/internal/session"
	"github.com/pavelanni/mockinterview/internal/store"
	"github.com/pavelanni/mockinterview/internal/terminal"
)

func main() {
	// A missing .env file is fine; flags, environment and config still apply.
	_ = godotenv.Load()

	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "mockinterview",
		Short: "Timed mock technical interviews with heuristic scoring",
	}

	serve := serveCmd()
	root.AddCommand(serve, interviewCmd(), exportCmd(), questionsCmd())

	// Make "serve" the default when no subcommand is given.
	root.RunE = serve.RunE

	// Register serve flags on root so bare `mockinterview --addr ...` still works.
	root.Flags().AddFlagSet(serve.Flags())

	return root
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP interview server",
		RunE:  runServe,
	}
	f := cmd.Flags()
	f.StringP("addr", "a", ":8080", "HTTP listen address")
	f.Duration("shutdown-timeout", 10*time.Second, "Grace period for in-flight requests on shutdown")
	f.Int("event-buffer", handler.DefaultEventCapacity, "Number of session events kept for polling clients")
	addSessionFlags(cmd)
	addCommonFlags(cmd)
	return cmd
}

func interviewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "interview",
		Short: "Run an interview in the terminal",
		RunE:  runInterview,
	}
	addSessionFlags(cmd)
	addCommonFlags(cmd)
	return cmd
}

// addSessionFlags registers the flags that configure a session controller.
func addSessionFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringP("catalog", "c", "", "Question catalog YAML file (default: built-in catalog)")
	f.Int("easy", 2, "Easy questions per interview")
	f.Int("medium", 2, "Medium questions per interview")
	f.Int("hard", 2, "Hard questions per interview")
	f.Duration("pacing-delay", session.DefaultPacingDelay, "Pause after each scored answer")
	f.Duration("info-delay", session.DefaultInfoDelay, "Pause after the upload and after identity collection")
	f.Bool("review", false, "Ask an LLM for an advisory comment on each answer")
	f.String("llm-url", "http://localhost:11434/v1", "OpenAI-compatible API base URL")
	f.String("llm-key", "ollama", "API key for LLM")
	f.String("llm-model", "llama3.2", "LLM model name")
	f.String("prompt-variant", "standard", "Review prompt variant (strict, standard, lenient)")
	f.Duration("review-timeout", session.DefaultReviewTimeout, "Time budget for reviewing a finished interview")
}

func addCommonFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("db", "mockinterview.db", "SQLite database path")
	f.StringP("lang", "l", "en", "Message language (en, ru)")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
}

func setupLogging(v *viper.Viper) {
	var logLevel slog.Level
	switch strings.ToLower(v.GetString("log-level")) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	handlerOpts := &slog.HandlerOptions{Level: logLevel}
	var logHandler slog.Handler
	switch strings.ToLower(v.GetString("log-format")) {
	case "json":
		logHandler = slog.NewJSONHandler(os.Stderr, handlerOpts)
	default:
		logHandler = slog.NewTextHandler(os.Stderr, handlerOpts)
	}
	slog.SetDefault(slog.New(logHandler))
}

// viperForCmd binds a command's flags and environment to a fresh viper instance.
func viperForCmd(cmd *cobra.Command) *viper.Viper {
	v := viper.New()
	_ = v.BindPFlags(cmd.Flags())

	v.SetEnvPrefix("MOCKINTERVIEW")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("mockinterview")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/mockinterview")
	v.AddConfigPath("/etc/mockinterview")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			slog.Warn("error reading config file", "error", err)
		}
	} else {
		slog.Info("loaded config file", "path", v.ConfigFileUsed())
	}

	return v
}

func runServe(cmd *cobra.Command, _ []string) error {
	v := viperForCmd(cmd)
	setupLogging(v)

	if err := appI18n.Init(v.GetString("lang")); err != nil {
		return fmt.Errorf("init i18n: %w", err)
	}

	db, err := store.New(v.GetString("db"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	m := metrics.New(true)
	events := handler.NewEventLog(v.GetInt("event-buffer"))
	ctrl, err := newController(cmd.Context(), v, db, events, m)
	if err != nil {
		return err
	}
	defer ctrl.Close()

	if offer, err := ctrl.Start(); err != nil {
		return fmt.Errorf("start session: %w", err)
	} else if offer != nil {
		slog.Info("interview available to resume", "candidate", offer.Candidate.ID, "answered", offer.Answered, "total", offer.Total)
	}

	h, err := handler.New(handler.Config{Controller: ctrl, Store: db, Events: events, Metrics: m})
	if err != nil {
		return fmt.Errorf("create handler: %w", err)
	}

	addr := v.GetString("addr")
	srv := &http.Server{
		Addr:              addr,
		Handler:           h.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting server",
			"addr", addr,
			"db", v.GetString("db"),
			"lang", v.GetString("lang"),
			"review", v.GetBool("review"),
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), v.GetDuration("shutdown-timeout"))
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func runInterview(cmd *cobra.Command, _ []string) error {
	v := viperForCmd(cmd)
	setupLogging(v)

	lang := v.GetString("lang")
	if err := appI18n.Init(lang); err != nil {
		return fmt.Errorf("init i18n: %w", err)
	}

	db, err := store.New(v.GetString("db"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	ctrl, err := newController(cmd.Context(), v, db)
	if err != nil {
		return err
	}
	defer ctrl.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err = terminal.New(ctrl, os.Stdin, os.Stdout, lang).Run(ctx)
	if errors.Is(err, context.Canceled) || errors.Is(err, terminal.ErrInputClosed) {
		return nil
	}
	return err
}
