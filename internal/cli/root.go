// Package cli provides the command-line interface for the dashboard service.
package cli

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"stockdeck/internal/advisor"
	"stockdeck/internal/analysis/indicators"
	"stockdeck/internal/config"
	"stockdeck/internal/provider"
	"stockdeck/internal/store"
	"stockdeck/internal/strategy"
	"stockdeck/internal/stream"
)

// Version information
const (
	Version = "0.1.0"
)

// App holds the application dependencies shared by the commands.
type App struct {
	Config     *config.Config
	Logger     zerolog.Logger
	Provider   provider.Provider
	Indicators *indicators.Engine
	Strategies *strategy.Engine
	Advisor    *advisor.Advisor
	Store      *store.Store
	Hub        *stream.Hub
	Poller     *stream.Poller
	Monitor    *stream.AlertMonitor
}

// NewApp builds the component graph from configuration.
func NewApp(cfg *config.Config, logger zerolog.Logger) *App {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	mock := provider.NewMockProvider(cfg.Provider.MockSeed)
	if cfg.UsesMockPrimary() {
		app.Provider = mock
		logger.Debug().Msg("Mock provider is primary")
	} else {
		kite := provider.NewKiteProvider(provider.KiteConfig{
			APIKey:      cfg.Credentials.KiteAPIKey,
			AccessToken: cfg.Credentials.KiteAccessToken,
		})
		app.Provider = provider.NewFallbackProvider(kite, mock, provider.FallbackConfig{
			Timeout:         cfg.Provider.Timeout,
			RetryAttempts:   cfg.Provider.RetryAttempts,
			BreakerFailures: cfg.Provider.BreakerFailures,
			BreakerCooldown: cfg.Provider.BreakerCooldown,
		}, logger)
		logger.Debug().Msg("Kite provider is primary with mock fallback")
	}

	app.Indicators = indicators.NewDefaultEngine(cfg.Market.TradingDays)
	app.Strategies = strategy.NewEngine(cfg.Market.TradingDays)
	app.Store = store.New(0)

	var llm advisor.LLMClient
	if cfg.Advisor.Enabled && cfg.Credentials.OpenAIAPIKey != "" {
		llm = advisor.NewOpenAIClient(cfg.Credentials.OpenAIAPIKey, cfg.Advisor.Model)
		logger.Debug().Str("model", cfg.Advisor.Model).Msg("Advisor enabled")
	}
	app.Advisor = advisor.New(llm, logger)

	app.Hub = stream.NewHubWithConfig(stream.HubConfig{
		BufferSize:           cfg.Stream.BufferSize,
		SubscriberBufferSize: cfg.Stream.SubscriberBufferSize,
	})
	app.Poller = stream.NewPoller(app.Provider, app.Hub, cfg.Stream.PollInterval, logger)
	app.Monitor = stream.NewAlertMonitor(app.Store, logger)

	return app
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(cfg *config.Config, logger zerolog.Logger) *cobra.Command {
	app := NewApp(cfg, logger)

	rootCmd := &cobra.Command{
		Use:   "stockdeck",
		Short: "Stockdeck - market dashboard backend",
		Long: `Stockdeck serves quotes, technical indicators, options analytics, and
rule-based trade ideas over an HTTP API. Without broker credentials it runs
entirely on deterministic mock data.

Use 'stockdeck serve' to start the API server, or 'stockdeck quote' and
'stockdeck analyze' for one-off lookups from the terminal.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if debug, _ := cmd.Flags().GetBool("debug"); debug {
				app.Logger = app.Logger.Level(zerolog.DebugLevel)
			}
		},
	}

	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/stockdeck)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	rootCmd.AddCommand(newServeCmd(app))
	rootCmd.AddCommand(newQuoteCmd(app))
	rootCmd.AddCommand(newAnalyzeCmd(app))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{"version": Version})
			} else {
				output.Printf("stockdeck v%s\n", Version)
			}
		},
	}
}
