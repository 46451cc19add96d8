package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/wfunc/lobbyclient/broadcast"
	"github.com/wfunc/lobbyclient/lobby"
	"github.com/wfunc/lobbyclient/logger"
	"github.com/wfunc/lobbyclient/view"
)

// The terminal owns stdout/stderr while the UI runs.
const tuiLogFile = "lobbyclient.log"

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Start the terminal UI (default)",
	Args:  cobra.NoArgs,
	RunE:  runPlay,
}

func init() {
	rootCmd.AddCommand(playCmd)
}

func runPlay(cmd *cobra.Command, args []string) error {
	output := cfg.Log.Output
	if output == "stderr" || output == "stdout" {
		output = tuiLogFile
	}
	if err := logger.Init(cfg.Log.Level, output); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	fanout := broadcast.NewFanout(a.monitor)
	l := lobby.New(a.client, fanout, a.lobbyOptions()...)
	tui := view.NewTUI(l.Actions(), a.nickname())
	fanout.Add(tui)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		l.Start()
		err := l.Run(ctx, a.client.Events())
		tui.Stop()
		done <- err
	}()

	logger.Log.Infof("Starting lobby client against %s", cfg.Client.DirectoryURL)
	if err := tui.Run(); err != nil {
		return fmt.Errorf("terminal UI: %w", err)
	}

	cancel()
	if err := <-done; err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
