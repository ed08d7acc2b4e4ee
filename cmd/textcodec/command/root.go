// Package command implements the textcodec command tree.
package command

import (
	"context"
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wippyai/textcodec"
	"github.com/wippyai/textcodec/config"
	"github.com/wippyai/textcodec/hostcall"
	"github.com/wippyai/textcodec/hostcodec"
	"github.com/wippyai/textcodec/internal/logging"
	"github.com/wippyai/textcodec/sandbox"
)

// app carries the flags and the bridge shared by every subcommand.
type app struct {
	configPath  string
	logLevel    string
	useSandbox  bool
	showMetrics bool
	interactive bool

	cfg      *config.Config
	logger   *zap.Logger
	gatherer *prometheus.Registry
	host     *hostcodec.Host
	registry *hostcall.Registry
	sandbox  *sandbox.Sandbox
	guest    *sandbox.Guest
	bridge   textcodec.Bridge
}

// Execute runs the command line in os.Args.
func Execute(ctx context.Context) error {
	a := &app{}
	defer a.teardown(context.WithoutCancel(ctx))
	return a.root().ExecuteContext(ctx)
}

func (a *app) root() *cobra.Command {
	root := &cobra.Command{
		Use:   "textcodec",
		Short: "UTF-8 <-> UTF-16 conversion through the host bridge.",
		Long: "textcodec encodes and decodes text the way a sandboxed script does:\n" +
			"every conversion is a bridge call served by the codec host.\n\n" +
			"With --sandbox the calls cross a wazero guest through host_invoke.",
		Args:              cobra.NoArgs,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			if !a.showMetrics {
				return nil
			}
			return a.writeMetrics(cmd.ErrOrStderr())
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.interactive {
				return runInteractive(cmd.Context(), a.bridge, a.bridgeName())
			}
			return cmd.Help()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "path to a TOML config file")
	flags.StringVar(&a.logLevel, "log-level", "", "override log.level (debug, info, warn, error)")
	flags.BoolVar(&a.useSandbox, "sandbox", false, "route bridge calls through a wazero guest")
	flags.BoolVar(&a.showMetrics, "metrics", false, "print bridge metrics to stderr on exit")
	root.Flags().BoolVarP(&a.interactive, "interactive", "i", false, "start the interactive TUI")

	root.AddCommand(
		a.encodeCommand(),
		a.decodeCommand(),
		a.opsCommand(),
		a.configCommand(),
		a.interactiveCommand(),
	)
	return root
}

// setup loads the config and builds the bridge for the invoked command.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg := config.Default()
	if a.configPath != "" {
		var err error
		if cfg, err = config.Load(a.configPath); err != nil {
			return err
		}
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	a.cfg = cfg

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	a.logger = logger
	hostcall.SetLogger(logger)

	a.gatherer = prometheus.NewRegistry()
	metrics := hostcall.NewMetrics(a.gatherer)

	a.host = hostcodec.New(
		hostcodec.WithMaxDecoders(cfg.Bridge.MaxOpenDecoders),
		hostcodec.WithMetrics(metrics),
	)
	a.registry = hostcall.NewRegistry(
		hostcall.WithMaxPayload(cfg.Bridge.MaxPayloadBytes),
		hostcall.WithMetrics(metrics),
	)
	if err := a.registry.RegisterHost(a.host); err != nil {
		return err
	}
	a.bridge = a.registry

	if !a.useSandbox {
		return nil
	}

	a.sandbox, err = sandbox.New(ctx, a.registry, sandbox.Config{
		MemoryLimitPages: cfg.Sandbox.MemoryLimitPages,
		ModuleName:       cfg.Sandbox.ModuleName,
	})
	if err != nil {
		return err
	}
	a.guest, err = a.sandbox.NewGuest(ctx, "")
	if err != nil {
		return err
	}
	a.bridge = a.guest
	logger.Debug("bridge routed through sandbox", zap.String("guest", a.guest.Name()))
	return nil
}

func (a *app) bridgeName() string {
	if a.guest != nil {
		return "sandbox:" + a.guest.Name()
	}
	return "registry"
}

func (a *app) writeMetrics(w io.Writer) error {
	families, err := a.gatherer.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}

// teardown releases whatever setup managed to build.
func (a *app) teardown(ctx context.Context) {
	if a.guest != nil {
		_ = a.guest.Close(ctx)
	}
	if a.sandbox != nil {
		_ = a.sandbox.Close(ctx)
	}
	if a.registry != nil {
		_ = a.registry.Close()
	}
	if a.host != nil {
		_ = a.host.Close()
	}
	if a.logger != nil {
		_ = a.logger.Sync()
		hostcall.SetLogger(nil)
	}
}
