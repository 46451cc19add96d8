package cmd

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/wfunc/lobbyclient/logger"
	"github.com/wfunc/lobbyclient/persistence"
	"github.com/wfunc/lobbyclient/services"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history [nickname]",
	Short: "List the rooms a player recently joined",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := logger.Init(cfg.Log.Level, cfg.Log.Output); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		if cfg.History.Driver == "" {
			return errors.New("history is disabled (history.driver is empty)")
		}

		db, err := persistence.Open(cfg.History.Driver, cfg.History.DSN)
		if err != nil {
			return fmt.Errorf("open history: %w", err)
		}
		defer db.Close()
		history := services.NewHistoryService(db)

		nickname := cfg.Client.Nickname
		if len(args) == 1 {
			nickname = args[0]
		}
		if nickname == "" {
			if nickname, err = history.LastNickname(); err != nil {
				if errors.Is(err, persistence.ErrRecordNotFound) {
					fmt.Fprintln(cmd.OutOrStdout(), "No history yet.")
					return nil
				}
				return err
			}
		}

		records, err := history.RecentJoins(nickname, historyLimit)
		if err != nil {
			return err
		}
		if len(records) == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "%s has not joined any rooms.\n", nickname)
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "JOINED\tROOM\tCREATED")
		for _, r := range records {
			fmt.Fprintf(w, "%s\t%s\t%t\n", r.JoinedAt.Format("2006-01-02 15:04:05"), r.RoomName, r.Created)
		}
		return w.Flush()
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "number of joins to list")
	rootCmd.AddCommand(historyCmd)
}
