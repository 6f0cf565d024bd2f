package cli

import (
	"errors"
	"fmt"
	"net"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/mcp"
)

var (
	mcpPort     int
	mcpHost     string
	mcpReadOnly bool
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Model Context Protocol server",
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the knowledge base to MCP clients",
	Long: `Serves search, ask and ingestion to AI assistants over the Model Context
Protocol. Stdio is used unless --port is given.

Tools:     search, ask, ingest_repository, ingest_web
Resources: sercha-rag://sources, sercha-rag://sources/{id}, sercha-rag://stats

--read-only leaves out the ingest tools.

Client configuration:
  {
    "mcpServers": {
      "sercha-rag": {
        "command": "/path/to/sercha-rag",
        "args": ["mcp", "serve", "--read-only"]
      }
    }
  }`,
	Args: cobra.NoArgs,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntVarP(&mcpPort, "port", "p", 0, "serve streamable HTTP on this port instead of stdio")
	mcpServeCmd.Flags().StringVar(&mcpHost, "host", "127.0.0.1", "interface to bind when --port is set")
	mcpServeCmd.Flags().BoolVar(&mcpReadOnly, "read-only", false, "leave out the ingest tools")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

// mcpPorts selects the services offered to MCP clients.
func mcpPorts(readOnly bool) *mcp.Ports {
	ports := &mcp.Ports{
		Retrieval: retrievalService,
		Source:    sourceService,
	}
	if !readOnly {
		ports.Ingestion = ingestionService
	}
	return ports
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	if retrievalService == nil {
		return errors.New("retrieval service not configured")
	}
	if mcpPort < 0 || mcpPort > 65535 {
		return fmt.Errorf("invalid port %d", mcpPort)
	}

	server, err := mcp.NewServer(mcpPorts(mcpReadOnly), mcp.WithVersion(version))
	if err != nil {
		return err
	}

	if mcpPort == 0 {
		return server.Run(cmd.Context())
	}

	addr := net.JoinHostPort(mcpHost, strconv.Itoa(mcpPort))
	if !mcpReadOnly && mcpHost != "127.0.0.1" && mcpHost != "localhost" {
		cmd.PrintErrln(paint(cmd.ErrOrStderr(), warningStyle,
			"warning: ingestion is reachable from "+mcpHost+"; consider --read-only"))
	}
	cmd.PrintErrf("MCP server listening on http://%s\n", addr)
	return server.RunHTTP(cmd.Context(), addr)
}
