package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/rail-service/bridge_sdk/internal/infrastructure/config"
	"github.com/rail-service/bridge_sdk/pkg/bridge"
	"github.com/rail-service/bridge_sdk/pkg/graceful"
	"github.com/rail-service/bridge_sdk/pkg/logger"
	"github.com/rail-service/bridge_sdk/pkg/tracing"
)

// app carries what every subcommand needs once the root has set it up
type app struct {
	loadConfig    func() (*config.Config, error)
	clientOptions []bridge.ClientOption

	sandbox bool
	baseURL string
	dump    bool
	timeout time.Duration

	out      io.Writer
	cfg      *config.Config
	log      *logger.Logger
	client   *bridge.Client
	shutdown *graceful.ShutdownManager
}

// Execute runs bridgectl and exits non-zero on failure
func Execute() {
	ctx, stop := graceful.NotifyContext(context.Background())
	defer stop()

	a := &app{loadConfig: config.Load}
	err := newRootCmd(a).ExecuteContext(ctx)
	_ = a.teardown(ctx)
	if err != nil {
		stop()
		os.Exit(1)
	}
}

func newRootCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "bridgectl",
		Short:        "Command line client for the Bridge API",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return a.teardown(cmd.Context())
		},
	}

	cmd.PersistentFlags().BoolVar(&a.sandbox, "sandbox", false, "use the Bridge sandbox environment")
	cmd.PersistentFlags().StringVar(&a.baseURL, "base-url", "", "override the API base URL")
	cmd.PersistentFlags().BoolVar(&a.dump, "dump", false, "print materialized objects with go-spew instead of JSON")
	cmd.PersistentFlags().DurationVar(&a.timeout, "timeout", 0, "overall deadline per call, including rate limit retries")

	cmd.AddCommand(
		resourcesCmd(),
		listCmd(a),
		getCmd(a),
		createCmd(a),
		updateCmd(a),
		deleteCmd(a),
		balancesCmd(a),
		ratesCmd(a),
		customerWalletsCmd(a),
		onboardCmd(a),
		pingCmd(a),
	)
	return cmd
}

func (a *app) setup(cmd *cobra.Command) error {
	a.out = cmd.OutOrStdout()
	if offline(cmd) {
		return nil
	}

	cfg, err := a.loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cmd.Flags().Changed("sandbox") {
		cfg.Bridge.SandboxMode = a.sandbox
	}
	if a.baseURL != "" {
		cfg.Bridge.BaseURL = a.baseURL
	}
	a.cfg = cfg
	a.log = logger.New(cfg.LogLevel, cfg.Environment)
	a.shutdown = graceful.NewShutdownManager(a.log)
	a.shutdown.Register("logger", func(context.Context) error {
		_ = a.log.Sync()
		return nil
	})

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	flush, err := tracing.InitTracer(ctx, cfg.TracerConfig(), a.log.Zap())
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	a.shutdown.Register("tracing", graceful.ShutdownFunc(flush))

	clientCfg := cfg.BridgeClientConfig()
	if a.timeout > 0 {
		clientCfg.Timeout = a.timeout
	}
	bridge.SetDefaultConfig(clientCfg)

	a.client, err = bridge.NewDefaultClient(a.log.Zap(), a.clientOptions...)
	if err != nil {
		return fmt.Errorf("failed to create bridge client: %w", err)
	}
	a.log.Debug("bridge client ready", "base_url", a.client.Config().BaseURL, "sandbox", clientCfg.SandboxMode)
	return nil
}

func (a *app) teardown(ctx context.Context) error {
	if a.shutdown == nil {
		return nil
	}
	// Traces are still flushed after an interrupt cancelled the command context.
	if err := a.shutdown.Shutdown(context.WithoutCancel(ctx), 5*time.Second); err != nil {
		a.log.Warn("shutdown incomplete", "error", err)
	}
	return nil
}

// offline reports whether cmd runs without a configured client
func offline(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations["offline"] == "true" || c.Name() == "help" || c.Name() == "completion" {
			return true
		}
	}
	return false
}
