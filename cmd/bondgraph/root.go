package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dd0wney/cluso-bondgraph/pkg/bondgraph"
	"github.com/dd0wney/cluso-bondgraph/pkg/compose"
	"github.com/dd0wney/cluso-bondgraph/pkg/config"
	"github.com/dd0wney/cluso-bondgraph/pkg/library"
	"github.com/dd0wney/cluso-bondgraph/pkg/logging"
	"github.com/dd0wney/cluso-bondgraph/pkg/metrics"
	"github.com/dd0wney/cluso-bondgraph/pkg/namespace"
	"github.com/dd0wney/cluso-bondgraph/pkg/specfile"
	"github.com/dd0wney/cluso-bondgraph/pkg/units"
)

// app is the state shared by every subcommand of one invocation.
type app struct {
	configPath string
	overrides  config.Config

	cfg     *config.Config
	logger  logging.Logger
	metrics *metrics.Registry
	units   *units.Registry
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "bondgraph",
		Short:         "Compose bond-graph models from reusable templates",
		Long:          `bondgraph merges the templates of a YAML library into a host model as directed by a specification file, then prints, queries or serves the frozen result.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg == nil || !a.cfg.Metrics {
				return nil
			}
			return renderMetrics(cmd.OutOrStdout(), a.metrics)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "", "configuration file")
	flags.StringVarP(&a.overrides.Library, "library", "l", "", "template library file (env "+config.EnvLibrary+")")
	flags.StringVar(&a.overrides.LogLevel, "log-level", "", "debug, info, warn or error (env "+config.EnvLogLevel+")")
	flags.StringVar(&a.overrides.PortPolicy, "port-policy", "", "lenient or strict (env "+config.EnvPortPolicy+")")
	flags.BoolVar(&a.overrides.Metrics, "metrics", false, "print composition metrics when done (env "+config.EnvMetrics+")")

	root.AddCommand(
		newComposeCmd(a),
		newQueryCmd(a),
		newServeCmd(a),
		newGraphCmd(a),
		newTemplatesCmd(a),
	)
	return root
}

// setup loads the configuration, lets explicit flags win over the file and
// environment, and builds the logger and metrics registry.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("library") {
		cfg.Library = a.overrides.Library
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = a.overrides.LogLevel
	}
	if flags.Changed("port-policy") {
		cfg.PortPolicy = a.overrides.PortPolicy
	}
	if flags.Changed("metrics") {
		cfg.Metrics = a.overrides.Metrics
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = logging.NewJSONLogger(cmd.ErrOrStderr(), cfg.Level())
	a.metrics = metrics.NewRegistry()
	a.units = units.NewRegistry()
	return nil
}

func (a *app) loadLibrary() (*library.Library, error) {
	base := namespace.Defaults()
	for _, pair := range sortedPairs(a.cfg.Namespaces) {
		base.Add(pair[0], pair[1])
	}

	loader := library.NewLoader(
		library.WithUnits(a.units),
		library.WithNamespaces(base),
		library.WithLogger(a.logger),
		library.WithMetrics(a.metrics))
	return loader.LoadFile(a.cfg.Library)
}

// specPath picks the positional argument over the configured specification.
func (a *app) specPath(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if a.cfg.Specification != "" {
		return a.cfg.Specification, nil
	}
	return "", errors.New("no specification given (argument, config file or " + config.EnvSpecification + ")")
}

// composeModel loads the library and the specification and composes the
// model they describe.
func (a *app) composeModel(ctx context.Context, args []string) (*bondgraph.Model, *library.Library, error) {
	path, err := a.specPath(args)
	if err != nil {
		return nil, nil, err
	}

	lib, err := a.loadLibrary()
	if err != nil {
		return nil, nil, err
	}
	src, err := specfile.ParseFile(path, lib.Namespaces)
	if err != nil {
		return nil, nil, err
	}

	c := compose.NewComposer(lib.Registry,
		compose.WithUnits(a.units),
		compose.WithPortPolicy(a.cfg.Policy()),
		compose.WithLogger(a.logger),
		compose.WithMetrics(a.metrics))
	model, err := c.Compose(ctx, src)
	if err != nil {
		return nil, nil, err
	}
	if model == nil {
		return nil, nil, fmt.Errorf("%s: specification has no components", path)
	}
	return model, lib, nil
}
