package cmd

import (
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/wfunc/lobbyclient/config"
	"github.com/wfunc/lobbyclient/directory"
	"github.com/wfunc/lobbyclient/lobby"
	"github.com/wfunc/lobbyclient/logger"
	"github.com/wfunc/lobbyclient/monitor"
	"github.com/wfunc/lobbyclient/persistence"
	"github.com/wfunc/lobbyclient/services"
)

var (
	cfgFile string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "lobbyclient",
	Short: "Browse, create and join game rooms from the terminal",
	Long: `lobbyclient connects to a room directory, shows the live list of
open rooms and lets the player create, join or randomly join one.

Run without a subcommand to start the terminal UI.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.LoadConfig(".", cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Sync()
	},
	RunE: runPlay,
}

// Execute is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	flags.String("directory-url", "", "websocket URL of the room directory")
	flags.String("nickname", "", "player name to prefill or log in with")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.String("metrics-addr", "", "serve Prometheus metrics on this address")

	viper.BindPFlag(config.DirectoryURLKey, flags.Lookup("directory-url"))
	viper.BindPFlag(config.NicknameKey, flags.Lookup("nickname"))
	viper.BindPFlag(config.LogLevelKey, flags.Lookup("log-level"))
	viper.BindPFlag(config.MetricsAddressKey, flags.Lookup("metrics-addr"))
}

// app holds everything a front end needs besides its presenter.
type app struct {
	client  *directory.Client
	monitor *monitor.Monitor
	metrics *http.Server
	db      *persistence.GormDatabase
	history *services.HistoryService
}

func newApp() (*app, error) {
	a := &app{
		client: directory.NewClient(directory.Options{
			URL:               cfg.Client.DirectoryURL,
			ClientID:          uuid.NewString(),
			QueueSize:         cfg.Client.EventQueueSize,
			HeartbeatInterval: cfg.Client.HeartbeatInterval,
			DialTimeout:       cfg.Client.DialTimeout,
		}),
		monitor: monitor.NewMonitor("lobby"),
	}

	if cfg.Metrics.Address != "" {
		a.metrics = a.monitor.StartServer(cfg.Metrics.Address)
		logger.Log.Infof("Serving metrics on %s", cfg.Metrics.Address)
	}

	if cfg.History.Driver != "" {
		db, err := persistence.Open(cfg.History.Driver, cfg.History.DSN)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("open history: %w", err)
		}
		a.db = db
		a.history = services.NewHistoryService(db)
	}
	return a, nil
}

func (a *app) lobbyOptions() []lobby.Option {
	opts := []lobby.Option{lobby.WithMetrics(a.monitor)}
	if a.history != nil {
		opts = append(opts, lobby.WithHistory(a.history))
	}
	return opts
}

// nickname prefers the configured name, then the last one used.
func (a *app) nickname() string {
	if cfg.Client.Nickname != "" || a.history == nil {
		return cfg.Client.Nickname
	}
	name, err := a.history.LastNickname()
	if err != nil && !errors.Is(err, persistence.ErrRecordNotFound) {
		logger.Log.Warnf("Failed to read last nickname: %v", err)
	}
	return name
}

func (a *app) close() {
	if err := a.client.Close(); err != nil {
		logger.Log.Warnf("Failed to close directory client: %v", err)
	}
	if a.metrics != nil {
		a.metrics.Close()
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			logger.Log.Warnf("Failed to close history: %v", err)
		}
	}
}
