package main

import (
	"context"
	"errors"
	"net/http"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"go-linerecord-pipeline/internal/api"
	"go-linerecord-pipeline/internal/api/handler"
	"go-linerecord-pipeline/internal/pipeline"
	"go-linerecord-pipeline/internal/store"
	"go-linerecord-pipeline/pkg/router"
	"go-linerecord-pipeline/pkg/utils"
)

func newServeCmd(c *cli) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the jobs HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				c.cfg.Server.Addr = addr
			}
			return c.serve(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides config)")
	return cmd
}

// serve runs the API until ctx is cancelled, then shuts the server down and
// waits for running jobs.
func (c *cli) serve(ctx context.Context) error {
	db, err := store.Open(c.cfg.Database.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	h := &handler.JobHandler{
		Store: db,
		Runner: &pipeline.Runner{
			Store:   db,
			Outputs: utils.NewOutputManager(c.cfg.Output.Dir),
			Logger:  c.logger,
		},
		Defaults:   c.cfg.Processor,
		JobTimeout: c.cfg.Jobs.Timeout,
		DataDir:    c.cfg.Jobs.DataDir,
		Logger:     c.logger,
	}
	r := router.New(c.logger)
	api.RegisterRoutes(r, h)
	srv := r.Server(c.cfg.Server.Addr)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c.logger.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		c.logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), utils.ParseDuration(c.cfg.Server.ShutdownTimeout))
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	h.Wait()
	return err
}
