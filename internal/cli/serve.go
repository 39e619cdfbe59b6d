package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/rasterd/internal/server"
	"github.com/matzehuels/rasterd/pkg/pipeline"
)

// shutdownTimeout bounds the drain of in-flight requests on SIGTERM.
const shutdownTimeout = 10 * time.Second

// serveCommand creates the serve command running the HTTP gateway.
func (c *CLI) serveCommand() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP rendering gateway",
		Long: `Serve starts the long-lived rendering gateway. The headless browser is
launched lazily on the first PNG request and reused until shutdown.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if port != 0 {
				cfg.Port = port
			}

			renderer, err := pipeline.New(cfg, c.Logger)
			if err != nil {
				return err
			}
			defer renderer.Close()

			srv := &http.Server{
				Addr:              cfg.Addr(),
				Handler:           server.New(cfg, renderer, c.Logger).Routes(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() { errCh <- srv.ListenAndServe() }()

			c.Logger.Info("gateway listening",
				"addr", cfg.Addr(),
				"kroki", cfg.KrokiURL,
				"fonts", cfg.FontsDir)

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-cmd.Context().Done():
			}

			c.Logger.Info("shutting down", "timeout", shutdownTimeout)
			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(ctx)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (overrides configuration)")

	return cmd
}
