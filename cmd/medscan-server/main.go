package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/medscan/medscan/internal/config"
	"github.com/medscan/medscan/internal/domain/analysis"
	"github.com/medscan/medscan/internal/domain/reference"
	"github.com/medscan/medscan/internal/platform/auth"
	"github.com/medscan/medscan/internal/platform/db"
	"github.com/medscan/medscan/internal/platform/middleware"
	"github.com/medscan/medscan/internal/platform/narrative"
	"github.com/medscan/medscan/internal/platform/ocr"
)

const version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:   "medscan-server",
		Short: "Lab report analysis API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(analyzeCmd())
	rootCmd.AddCommand(tokenCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the analysis API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	var dir string
	cmd.PersistentFlags().StringVar(&dir, "dir", "migrations", "migrations directory")

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			pool, err := connect()
			if err != nil {
				return err
			}
			defer pool.Close()

			count, err := db.NewMigrator(pool, dir).Up(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("applied %d migration(s)\n", count)
			return nil
		},
	}

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			pool, err := connect()
			if err != nil {
				return err
			}
			defer pool.Close()

			statuses, err := db.NewMigrator(pool, dir).Status(cmd.Context())
			if err != nil {
				return err
			}
			for _, s := range statuses {
				state := "pending"
				if s.Applied {
					state = "applied " + s.AppliedAt.Format(time.RFC3339)
				}
				fmt.Printf("%3d  %-40s %s\n", s.Version, s.Name, state)
			}
			return nil
		},
	}

	cmd.AddCommand(upCmd, statusCmd)
	return cmd
}

// analyzeCmd runs the document pipeline once against a local file and prints
// the analysis as JSON. Useful for checking a scanner setup without the
// server running.
func analyzeCmd() *cobra.Command {
	var (
		panel string
		age   int
		sex   string
	)
	cmd := &cobra.Command{
		Use:   "analyze <file>",
		Short: "Analyze a single lab report file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			reg, err := reference.BuildRegistry()
			if err != nil {
				return err
			}

			engine := ocr.NewEngine(ocr.Config{}, logger)
			svc := analysis.NewService(reg, analysis.NewDocumentReader(engine), logger)

			a, err := svc.AnalyzeDocument(cmd.Context(), analysis.DocumentRequest{
				Data:  data,
				Panel: reference.Panel(panel),
				Patient: reference.PatientContext{
					Age: age,
					Sex: reference.Sex(sex),
				},
			})
			if err != nil {
				return err
			}

			out, err := json.MarshalIndent(a, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}
	cmd.Flags().StringVar(&panel, "panel", "cbc", "test panel (cbc, metabolic, lipid, cardiac)")
	cmd.Flags().IntVar(&age, "age", 0, "patient age in years")
	cmd.Flags().StringVar(&sex, "sex", "", "patient sex (male, female)")
	return cmd
}

// tokenCmd mints an HS256 bearer token for local clients.
func tokenCmd() *cobra.Command {
	var (
		subject string
		ttl     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token signed with AUTH_SECRET",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.AuthSecret == "" {
				return fmt.Errorf("AUTH_SECRET is not configured")
			}
			token, err := auth.IssueToken([]byte(cfg.AuthSecret), subject, ttl)
			if err != nil {
				return err
			}
			fmt.Println(token)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "local-client", "token subject")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	return cmd
}

func connect() (*pgxpool.Pool, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required for this command")
	}
	return db.NewPool(context.Background(), cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
}

func runServer() error {
	// Logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" || os.Getenv("ENV") == "" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	// Config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	// Reference table
	reg, err := reference.BuildRegistry()
	if err != nil {
		logger.Fatal().Err(err).Msg("reference table is malformed")
	}

	// Recognition engine and pipeline service
	engine := ocr.NewEngine(ocr.Config{
		Workers:     cfg.OCRWorkers,
		PassTimeout: cfg.OCRPassTimeout(),
	}, logger)
	svc := analysis.NewService(reg, analysis.NewDocumentReader(engine), logger)

	// Database is optional: without it analyses are returned but not stored.
	var pool *pgxpool.Pool
	if cfg.DatabaseURL != "" {
		ctx := context.Background()
		pool, err = db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer pool.Close()
		svc.SetStore(analysis.NewStorePG(pool))
		logger.Info().Msg("connected to database")
	} else {
		logger.Warn().Msg("DATABASE_URL not set, analyses will not be persisted")
	}

	// Narrative generation is optional too; without a provider the
	// deterministic rule-based summary is used.
	narrator, err := narrative.NewGenerator(narrative.Config{
		OpenAIKey:    cfg.OpenAIKey,
		AnthropicKey: cfg.AnthropicKey,
		OllamaURL:    cfg.OllamaURL,
		Model:        cfg.NarrativeModel,
	}, logger)
	switch {
	case err == nil:
		svc.SetNarrator(narrator)
	case errors.Is(err, narrative.ErrNoProvider):
		logger.Info().Msg("no narrative provider configured, using rule-based summaries")
	default:
		logger.Fatal().Err(err).Msg("failed to initialize narrative provider")
	}

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(middleware.BodyLimit(cfg.BodyLimit))

	// Health checks
	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": version,
		})
	})
	if pool != nil {
		e.GET("/healthz/db", db.HealthHandler(pool))
	}

	// API group
	v1 := e.Group("/v1")
	if cfg.ResolvedAuthMode() == "development" {
		v1.Use(auth.DevAuth())
	} else {
		v1.Use(auth.JWT([]byte(cfg.AuthSecret)))
	}
	v1.Use(middleware.RateLimit(middleware.DefaultRateLimitConfig()))
	// Leave room for both recognition passes plus preprocessing.
	v1.Use(middleware.RequestTimeout(2*cfg.OCRPassTimeout() + 30*time.Second))

	analysis.NewHandler(svc).RegisterRoutes(v1)

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}
