package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	uconfig "grace/cmd/grace/config"
	"grace/cmd/grace/ui"
	"grace/internal/client"
	"grace/internal/config"
	"grace/internal/hub"
	"grace/internal/logging"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Version is stamped at build time via -ldflags.
var Version = "0.3.0-dev"

var (
	// Global flags
	verbose    bool
	backendURL string
	userID     string
	workspace  string
	interval   time.Duration

	// Logger for non-interactive subcommands
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "grace",
	Short: "Grace - live dashboard for your agent platform",
	Long: `Grace is a terminal dashboard for an agent platform backend.

It polls the backend's world context and surfaces new insights, active
missions, and pending approvals as conversation events, with one-shot
auto-opened workspaces for missions and governance decisions.

Run without arguments to start the interactive dashboard.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip zap init for interactive mode (it has its own UI and the
		// categorized file logger).
		if cmd.Use == "grace" && cmd.CalledAs() == "grace" {
			return nil
		}

		zapCfg := zap.NewProductionConfig()
		if verbose {
			zapCfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zapCfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInteractive()
	},
}

// versionCmd prints the version
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the grace version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("grace %s\n", Version)
	},
}

// healthCmd does a one-shot backend health check
var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check backend reachability and system health",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, backend, err := loadBackend()
		if err != nil {
			return err
		}
		logger.Debug("checking backend", zap.String("url", cfg.Backend.BaseURL))

		ctx, cancel := context.WithTimeout(cmd.Context(), cfg.GetBackendTimeout())
		defer cancel()

		snap, err := backend.FetchContext(ctx)
		if err != nil {
			return fmt.Errorf("backend unreachable: %w", err)
		}

		status := "unknown"
		if snap.SystemHealth != nil {
			status = snap.SystemHealth.Status
		}
		fmt.Printf("backend: %s\nstatus: %s\nmissions: %d\napprovals: %d\n",
			cfg.Backend.BaseURL, status, len(snap.ActiveMissions), len(snap.PendingApprovals))
		return nil
	},
}

// contextCmd dumps one raw world-context snapshot as JSON
var contextCmd = &cobra.Command{
	Use:   "context",
	Short: "Fetch one world-context snapshot and print it as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, backend, err := loadBackend()
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), cfg.GetBackendTimeout())
		defer cancel()

		snap, err := backend.FetchContext(ctx)
		if err != nil {
			return fmt.Errorf("fetch failed: %w", err)
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(snap)
	},
}

// loadConfig loads the workspace yaml config and applies flag overrides.
// Flags win over file and environment values.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(config.Path(workspace))
	if err != nil {
		return nil, err
	}
	if backendURL != "" {
		cfg.Backend.BaseURL = backendURL
	}
	if userID != "" {
		cfg.Backend.UserID = userID
	}
	if interval > 0 {
		cfg.Hub.PollInterval = interval.String()
	}
	if verbose {
		cfg.Logging.DebugMode = true
		cfg.Logging.Level = "debug"
	}
	return cfg, nil
}

// loadBackend builds the API client for one-shot subcommands.
func loadBackend() (*config.Config, *client.Client, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	backend := client.New(client.Config{
		BaseURL: cfg.Backend.BaseURL,
		UserID:  cfg.Backend.UserID,
		Timeout: cfg.GetBackendTimeout(),
	})
	return cfg, backend, nil
}

// runInteractive starts the full dashboard: categorized logging, config
// hot-reload, poll engine, and the bubbletea shell.
func runInteractive() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if err := logging.Initialize(workspace, loggingSettings(cfg)); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer logging.CloseAll()
	logging.Boot("grace %s starting, backend %s", Version, cfg.Backend.BaseURL)

	prefs, err := uconfig.Load()
	if err != nil {
		logging.Boot("user preferences unavailable, using defaults: %v", err)
		prefs = uconfig.DefaultConfig()
	}
	if cfg.Backend.UserID == config.DefaultConfig().Backend.UserID && prefs.UserID != "" {
		cfg.Backend.UserID = prefs.UserID
	}

	backend := client.New(client.Config{
		BaseURL: cfg.Backend.BaseURL,
		UserID:  cfg.Backend.UserID,
		Timeout: cfg.GetBackendTimeout(),
	})

	opts := hub.Options{
		Client:        backend,
		PollInterval:  cfg.GetPollInterval(),
		MaxNewPerKind: cfg.GetMaxNewPerKind(),
		AutoOpen:      cfg.Hub.AutoOpenWorkspaces,
	}

	styles := ui.NewStyles(ui.ThemeByName(prefs.Theme))

	return runDashboard(opts, styles, cfg.Backend.UserID, cfg.Backend.BaseURL, func(engine *hub.Engine) {
		// Config hot-reload: poll interval changes apply to the running
		// loop without a restart.
		watcher, err := config.NewWatcher(workspace, func(next *config.Config) {
			engine.SetPollInterval(next.GetPollInterval())
		})
		if err != nil {
			logging.Boot("config watcher unavailable: %v", err)
			return
		}
		if err := watcher.Start(context.Background()); err != nil {
			logging.Boot("config watcher failed to start: %v", err)
		}
	})
}

func loggingSettings(cfg *config.Config) logging.Settings {
	return logging.Settings{
		DebugMode:  cfg.Logging.DebugMode,
		Categories: cfg.Logging.Categories,
		Level:      cfg.Logging.Level,
		JSONFormat: cfg.Logging.JSONFormat,
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&backendURL, "backend-url", "", "Grace backend base URL (overrides config)")
	rootCmd.PersistentFlags().StringVar(&userID, "user", "", "User id sent with chat and approval actions")
	rootCmd.PersistentFlags().StringVarP(&workspace, "workspace", "w", ".", "Workspace directory")
	rootCmd.PersistentFlags().DurationVar(&interval, "interval", 0, "Poll interval, e.g. 3s (overrides config)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(contextCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
