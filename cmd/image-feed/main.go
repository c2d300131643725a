package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/brizzai/image-feed/internal/auth"
	"github.com/brizzai/image-feed/internal/config"
	"github.com/brizzai/image-feed/internal/feed"
	"github.com/brizzai/image-feed/internal/logger"
	"github.com/brizzai/image-feed/internal/metrics"
	"github.com/brizzai/image-feed/internal/profile"
	"github.com/brizzai/image-feed/internal/requester"
	"github.com/brizzai/image-feed/internal/session"
	"github.com/brizzai/image-feed/internal/tui"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func main() {
	Execute()
}

// errNotSignedIn is returned by commands that need a stored access token
var errNotSignedIn = errors.New("not signed in, run `image-feed login` first")

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "image-feed",
	Short: "Browse the Unsplash photo feed from the terminal",
	Long: `image-feed signs in to Unsplash with OAuth and shows the photo feed of the
signed-in user. Without a subcommand it starts the interactive terminal UI.`,
	SilenceUsage: true,
	RunE:         runTUI,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	// Place version check in PreRun to ensure flags are parsed first
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		versionFlag, _ := cmd.Flags().GetBool("version")
		if versionFlag {
			pterm.Info.Println(config.GetVersionInfo())
			os.Exit(0)
		}
	}

	if err := rootCmd.Execute(); err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
}

func init() {
	config.InitFlags(rootCmd.PersistentFlags())
	rootCmd.PersistentFlags().BoolP("version", "v", false, "Show version information")

	rootCmd.AddCommand(loginCmd, logoutCmd, feedCmd, photoCmd, likeCmd, unlikeCmd, profileCmd)
}

// components are the services a command works with
type components struct {
	config      *config.Config
	session     *session.Manager
	auth        *auth.Service
	feed        *feed.Service
	profile     *profile.Service
	avatar      *profile.ImageService
	interceptor auth.Interceptor
}

// buildComponents loads the configuration and assembles the dependency graph
func buildComponents(cmd *cobra.Command) (*components, error) {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return nil, err
	}

	c := &components{config: cfg}
	app := fx.New(
		fx.Supply(cfg),
		config.Module,
		logger.Module,
		requester.Module,
		auth.Module,
		feed.Module,
		profile.Module,
		session.Module,
		fx.Invoke(func(log *zap.Logger) {
			log.Debug("Starting", zap.String("version", config.GetVersionInfo()), zap.String("command", cmd.Name()))
		}),
		fx.Populate(&c.session, &c.auth, &c.feed, &c.profile, &c.avatar, &c.interceptor),
		fx.NopLogger,
	)
	if err := app.Err(); err != nil {
		return nil, fmt.Errorf("failed to initialize: %w", err)
	}
	return c, nil
}

// signalContext is cancelled on interrupt or termination
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// serveMetrics starts the Prometheus endpoint when one is configured
func serveMetrics(ctx context.Context, cfg *config.MetricsConfig) {
	if cfg.Addr == "" {
		return
	}
	go func() {
		if err := metrics.Serve(ctx, cfg.Addr, cfg.Path); err != nil {
			logger.Error("Metrics endpoint failed", zap.Error(err))
		}
	}()
}

// startCallback starts the loopback listener when one is configured and
// returns its code channel and bound address
func startCallback(ctx context.Context, c *components) (<-chan string, string, error) {
	if c.config.Unsplash.CallbackAddr == "" {
		return nil, "", nil
	}
	listener := auth.NewCallbackListener(c.config.Unsplash.CallbackAddr, c.interceptor)
	addr, done, err := listener.Run(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("failed to start callback listener: %w", err)
	}
	go func() {
		if err := <-done; err != nil {
			logger.Error("Callback listener stopped", zap.Error(err))
		}
	}()
	return listener.Codes(), addr.String(), nil
}

// runTUI is the main function that runs the TUI
func runTUI(cmd *cobra.Command, args []string) error {
	defer func() {
		if r := recover(); r != nil {
			pterm.Error.Printf("\nCaught panic: %v\n", r)
			pterm.Error.Printf("%s\n", debug.Stack())
			os.Exit(2)
		}
	}()

	c, err := buildComponents(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := signalContext()
	defer cancel()

	serveMetrics(ctx, &c.config.Metrics)
	codes, callbackAddr, err := startCallback(ctx, c)
	if err != nil {
		return err
	}

	model := tui.NewAppModel(ctx, tui.Deps{
		Session:           c.session,
		Feed:              c.feed,
		Interceptor:       c.interceptor,
		Callback:          codes,
		CallbackAddr:      callbackAddr,
		PrefetchThreshold: c.config.Feed.PrefetchThreshold,
	})

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("error running program: %w", err)
	}
	return nil
}
