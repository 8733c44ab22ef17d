package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/flowwatch/internal/adapters/driving/mcp"
	"github.com/custodia-labs/flowwatch/internal/logger"
)

var serveMCPPort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the scheduler with optional MCP access",
	Long: `Runs the scheduler in the foreground and reloads the vocabulary file
when it changes. With --mcp-port the MCP server is served over HTTP
alongside it. Stops cleanly on Ctrl+C.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&serveMCPPort, "mcp-port", 0, "also serve MCP over HTTP on this port")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if scheduler == nil {
		return errors.New("scheduler not configured")
	}

	var server *mcp.Server
	if serveMCPPort > 0 {
		var err error
		if server, err = newMCPServer(); err != nil {
			return err
		}
	}

	log := logger.Component("serve")
	g, ctx := errgroup.WithContext(cmd.Context())

	if schedulerEnabled() {
		g.Go(func() error {
			err := scheduler.Start(ctx)
			if err != nil && ctx.Err() != nil {
				return nil
			}
			return err
		})
	} else {
		cmd.Println("Scheduler is disabled (scheduler.enabled = false).")
	}

	if server != nil {
		addr := fmt.Sprintf(":%d", serveMCPPort)
		cmd.Printf("MCP server listening on http://localhost%s\n", addr)
		g.Go(func() error {
			return server.RunHTTP(ctx, addr)
		})
	}

	if vocabularyWatcher != nil {
		g.Go(func() error {
			if err := vocabularyWatcher.Watch(ctx); err != nil {
				// Keep serving with the vocabulary already loaded.
				log.Warn("vocabulary watch stopped", "error", err)
			}
			return nil
		})
	}

	cmd.Println("Serving. Press Ctrl+C to stop.")
	return g.Wait()
}
