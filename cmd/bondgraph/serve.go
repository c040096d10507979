package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/dd0wney/cluso-bondgraph/pkg/graphql"
	"github.com/dd0wney/cluso-bondgraph/pkg/logging"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd(a *app) *cobra.Command {
	var (
		addr     string
		maxDepth int
	)

	cmd := &cobra.Command{
		Use:   "serve [specification]",
		Short: "Serve a composed model over GraphQL",
		Long:  `serve composes the model once and answers GraphQL queries at /graphql. Prometheus metrics are exposed at /metrics.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			model, _, err := a.composeModel(ctx, args)
			if err != nil {
				return err
			}
			e, err := graphql.NewExecutor(model,
				graphql.WithMaxDepth(maxDepth),
				graphql.WithLogger(a.logger),
				graphql.WithMetrics(a.metrics))
			if err != nil {
				return err
			}

			srv := &http.Server{
				Addr:              addr,
				Handler:           newMux(e, a),
				ReadHeaderTimeout: 5 * time.Second,
			}

			errc := make(chan error, 1)
			go func() { errc <- srv.ListenAndServe() }()
			fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render("✓ serving "+model.URI()+" on "+addr))
			a.logger.Info("server started", logging.String("addr", addr), logging.ModelURI(model.URI()))

			select {
			case err := <-errc:
				if !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			a.logger.Info("server stopping")
			return srv.Shutdown(shutdownCtx)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&addr, "addr", "localhost:8080", "listen address")
	flags.IntVar(&maxDepth, "max-depth", graphql.DefaultMaxDepth, "maximum query depth")
	return cmd
}

func newMux(e *graphql.Executor, a *app) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/graphql", graphql.NewHandler(e))
	mux.Handle("/metrics", promhttp.HandlerFor(a.metrics.GetPrometheusRegistry(), promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}
