package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/mip-org/mip/pkg/repo"
)

// serveCommand creates the serve command for self-hosted repositories.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve [dir]",
		Short: "Serve a package repository from a directory of archives",
		Long: `Serve a package repository over HTTP from a directory of archives.

The server exposes /index.json built from the manifests inside the archives,
and serves the archives under /packages/. Point another machine's index_url
at it to install from this repository:

  index_url = "http://host:8417/index.json"`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			return c.runServe(cmd.Context(), addr, dir)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8417", "listen address")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr, dir string) error {
	logger := loggerFromContext(ctx)

	server := &http.Server{
		Addr:              addr,
		Handler:           repo.New(dir),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("serving repository", "addr", addr, "dir", dir)
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
