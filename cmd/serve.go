package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zjrosen/regform/internal/log"
	"github.com/zjrosen/regform/internal/mockserver"
	"github.com/zjrosen/regform/internal/tracing"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run a local mock registration endpoint",
	Long: `Run a local mock of the registration endpoint. It validates requests with
the same rules as the form and answers like the real service.

Point the form at it with:
  regform --endpoint http://localhost:9009/registration`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "address to listen on (overrides config)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	// The server always logs requests; --debug only lowers the level.
	log.InitWithWriter(cmd.ErrOrStderr())
	defer log.Reset()
	if cfg.Debug {
		log.SetMinLevel(log.LevelDebug)
	} else {
		log.SetMinLevel(log.LevelInfo)
	}

	provider, shutdown, err := startTracing()
	if err != nil {
		return err
	}
	defer shutdown()

	srv := newServer(provider)
	log.Info(log.CatServer, "mock endpoint listening", "addr", cfg.Server.Addr, "path", mockserver.RegistrationPath)
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Listening on %s%s\n", cfg.Server.Addr, mockserver.RegistrationPath)

	return srv.ListenAndServe(cmd.Context())
}

// newServer builds the mock server from cfg, honoring --addr.
func newServer(provider *tracing.Provider) *mockserver.Server {
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}
	return mockserver.New(mockserver.Config{
		Addr:           cfg.Server.Addr,
		TakenUsernames: cfg.Server.TakenUsernames,
		Latency:        cfg.Server.Latency,
		RememberFor:    cfg.Server.RememberFor,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Tracer:         provider.Tracer(),
	})
}
