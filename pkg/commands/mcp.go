package commands

import (
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"tableflip.dev/timebox/pkg/runner/mcp"
)

type mcpOptions struct {
	transport   string
	httpHost    string
	httpPort    int
	httpPath    string
	httpTLSCert string
	httpTLSKey  string
}

func addMCP(topLevel *cobra.Command) {
	mo := &mcpOptions{}

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "start the Model Context Protocol server",
		Long: `Launch an MCP server that lets assistants read, edit and save your
daily timeboxes through the Model Context Protocol. It shares the local store
and session with the other commands.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			e, err := load(cmd.Context())
			if err != nil {
				return err
			}
			runner, err := mo.runner(func(line string) {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), line)
			})
			if err != nil {
				return err
			}
			runner.App = e.Service
			runner.Version = version
			return runner.Do(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&mo.transport, "transport", string(mcp.TransportHTTP), "transport to use: http or stdio")
	cmd.Flags().StringVar(&mo.httpHost, "http-host", "127.0.0.1", "host/interface for HTTP transport")
	cmd.Flags().IntVar(&mo.httpPort, "http-port", 8080, "port for HTTP transport (use 0 for random)")
	cmd.Flags().StringVar(&mo.httpPath, "http-path", "/mcp", "HTTP endpoint path")
	cmd.Flags().StringVar(&mo.httpTLSCert, "http-tls-cert", "", "TLS certificate file for HTTPS")
	cmd.Flags().StringVar(&mo.httpTLSKey, "http-tls-key", "", "TLS private key file for HTTPS")

	topLevel.AddCommand(cmd)
}

// runner validates the flags. announce receives the listening URL.
func (mo *mcpOptions) runner(announce func(string)) (mcp.Runner, error) {
	path := strings.TrimSpace(mo.httpPath)
	if path == "" {
		path = "/mcp"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	runner := mcp.Runner{
		Name:             "timebox",
		HTTPEndpointPath: path,
		HTTPServerCert:   strings.TrimSpace(mo.httpTLSCert),
		HTTPServerKey:    strings.TrimSpace(mo.httpTLSKey),
	}

	switch strings.ToLower(strings.TrimSpace(mo.transport)) {
	case "", string(mcp.TransportHTTP):
		host := strings.TrimSpace(mo.httpHost)
		if host == "" {
			host = "127.0.0.1"
		}
		if mo.httpPort < 0 || mo.httpPort > 65535 {
			return runner, fmt.Errorf("invalid http-port %d", mo.httpPort)
		}
		scheme := "http"
		if runner.HTTPServerCert != "" && runner.HTTPServerKey != "" {
			scheme = "https"
		}

		runner.Transport = mcp.TransportHTTP
		runner.HTTPListenAddr = net.JoinHostPort(host, strconv.Itoa(mo.httpPort))
		runner.OnHTTPListening = func(a net.Addr) {
			announce("MCP HTTP server listening on " + listenURL(scheme, host, a, path))
		}
	case string(mcp.TransportStdio):
		runner.Transport = mcp.TransportStdio
	default:
		return runner, fmt.Errorf("unsupported transport %q (expected http or stdio)", mo.transport)
	}
	return runner, nil
}

// listenURL renders the address clients should use. Wildcard hosts are
// replaced by the bound IP or loopback.
func listenURL(scheme, host string, a net.Addr, path string) string {
	tcpAddr, ok := a.(*net.TCPAddr)
	if !ok {
		return a.String() + path
	}

	display := host
	if display == "" || display == "0.0.0.0" || display == "::" {
		if tcpAddr.IP != nil && !tcpAddr.IP.IsUnspecified() {
			display = tcpAddr.IP.String()
		} else {
			display = "127.0.0.1"
		}
	}
	return fmt.Sprintf("%s://%s%s", scheme, net.JoinHostPort(display, strconv.Itoa(tcpAddr.Port)), path)
}
