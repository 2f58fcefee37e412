package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjrosen/regform/internal/client"
	"github.com/zjrosen/regform/internal/config"
	"github.com/zjrosen/regform/internal/form"
	"github.com/zjrosen/regform/internal/log"
	"github.com/zjrosen/regform/internal/tracing"
	"github.com/zjrosen/regform/internal/ui/regform"
	"github.com/zjrosen/regform/internal/ui/styles"
)

func init() {
	// Force lipgloss/termenv to query terminal background color BEFORE
	// any Bubble Tea program starts. This prevents the terminal's OSC 11
	// response from racing with Bubble Tea's input loop and appearing as
	// garbage text in input fields.
	//
	// See: https://github.com/charmbracelet/bubbletea/issues/1036
	_ = lipgloss.HasDarkBackground()
}

// defaultConfigPath is where config init writes when no --config is given.
const defaultConfigPath = ".regform/config.yaml"

var (
	version   = "dev"
	cfgFile   string
	cfg       config.Config
	configErr error
)

var rootCmd = &cobra.Command{
	Use:           "regform",
	Short:         "A terminal registration form",
	Long:          `Fill in and submit the "Create an Account" registration form from the terminal.`,
	Version:       version,
	SilenceUsage:  true,
	RunE:          runForm,
	PersistentPreRunE: func(*cobra.Command, []string) error {
		return loadConfig()
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: .regform/config.yaml or ~/.config/regform/config.yaml)")
	rootCmd.PersistentFlags().String("endpoint", "", "registration endpoint URL")
	rootCmd.PersistentFlags().Duration("timeout", 0, "request timeout, e.g. 5s")
	rootCmd.PersistentFlags().Bool("debug", false, "write a debug log (also REGFORM_DEBUG=1)")

	_ = viper.BindPFlag("endpoint", rootCmd.PersistentFlags().Lookup("endpoint"))
	_ = viper.BindPFlag("timeout", rootCmd.PersistentFlags().Lookup("timeout"))
	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
}

func initConfig() {
	configErr = readConfig(viper.GetViper(), cfgFile)
}

// readConfig registers defaults on v and reads the config file.
// Lookup order when explicit is empty:
// 1. .regform/config.yaml (current directory)
// 2. ~/.config/regform/config.yaml (user config)
// A missing file is not an error; defaults and env still apply.
func readConfig(v *viper.Viper, explicit string) error {
	config.SetDefaults(v)

	if explicit != "" {
		v.SetConfigFile(explicit)
	} else if _, err := os.Stat(defaultConfigPath); err == nil {
		v.SetConfigFile(defaultConfigPath)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "regform"))
		}
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("reading config: %w", err)
	}
	return nil
}

// loadConfig decodes the global viper into cfg.
func loadConfig() error {
	if configErr != nil {
		return configErr
	}
	loaded, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}
	cfg = loaded
	return nil
}

// configPath is the file config commands write to.
func configPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	if used := viper.ConfigFileUsed(); used != "" {
		return used
	}
	return defaultConfigPath
}

// startDebugLog opens the debug log when --debug, debug: true or
// REGFORM_DEBUG is set. The returned cleanup is always safe to call.
func startDebugLog(prefix string) (func(), error) {
	if !cfg.Debug && os.Getenv("REGFORM_DEBUG") == "" {
		return func() {}, nil
	}

	cleanup, err := log.InitWithTeaLog(cfg.LogPath, prefix)
	if err != nil {
		return nil, fmt.Errorf("initializing logging: %w", err)
	}
	log.SetMinLevel(log.ParseLevel(cfg.LogLevel))
	log.Info(log.CatConfig, "regform starting", "version", version, "config", viper.ConfigFileUsed(), "endpoint", cfg.Endpoint)
	return cleanup, nil
}

// startTracing builds the tracer provider. The returned shutdown flushes
// pending spans.
func startTracing() (*tracing.Provider, func(), error) {
	provider, err := tracing.NewProvider(cfg.Tracing)
	if err != nil {
		return nil, nil, fmt.Errorf("initializing tracing: %w", err)
	}
	shutdown := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := provider.Shutdown(ctx); err != nil {
			log.ErrorErr(log.CatTrace, "tracer shutdown failed", err)
		}
	}
	return provider, shutdown, nil
}

func newClient(provider *tracing.Provider) *client.HTTPClient {
	return client.New(client.Config{
		Endpoint:  cfg.Endpoint,
		Timeout:   cfg.Timeout,
		UserAgent: userAgent(),
		Tracer:    provider.Tracer(),
	})
}

func userAgent() string {
	v := "dev"
	if fields := strings.Fields(version); len(fields) > 0 {
		v = fields[0]
	}
	return "regform/" + v
}

func runForm(cmd *cobra.Command, _ []string) error {
	cleanupLog, err := startDebugLog("regform")
	if err != nil {
		return err
	}
	defer cleanupLog()

	if err := styles.ApplyTheme(styles.ThemeConfig{
		Mode:    cfg.Theme.Mode,
		Accent:  cfg.Theme.Accent,
		Muted:   cfg.Theme.Muted,
		Error:   cfg.Theme.Error,
		Success: cfg.Theme.Success,
	}); err != nil {
		return fmt.Errorf("invalid theme: %w", err)
	}

	provider, shutdown, err := startTracing()
	if err != nil {
		return err
	}
	defer shutdown()

	c := newClient(provider)
	defer func() { _ = c.Close() }()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	model := newProgramModel(ctx, form.New(c))
	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("running program: %w", err)
	}
	return nil
}

var zonesOnce sync.Once

// newProgramModel builds the form model for a tea.Program. The global zone
// manager must exist before the first View.
func newProgramModel(ctx context.Context, ctrl *form.Controller) regform.Model {
	zonesOnce.Do(zone.NewGlobal)
	return regform.New(ctx, ctrl)
}

// Execute runs the root command. SIGINT and SIGTERM cancel the command
// context, which aborts any in-flight submission.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
