package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-shellwords"
	"github.com/spf13/cobra"
	"github.com/wfunc/lobbyclient/broadcast"
	"github.com/wfunc/lobbyclient/lobby"
	"github.com/wfunc/lobbyclient/logger"
	"github.com/wfunc/lobbyclient/view"
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Drive the lobby from a line-oriented prompt",
	Long: `shell prints every panel switch, status change and room-list change
as a line and reads commands from stdin. Type 'help' for the command list.`,
	Args: cobra.NoArgs,
	RunE: runShell,
}

func init() {
	rootCmd.AddCommand(shellCmd)
}

const shellHelp = `commands:
  login [name]            connect with a player name
  create [name] [max]     open the create panel, or create a room
  cancel                  back to the options panel
  list                    show the room list (joins the lobby)
  rooms                   print the rooms currently listed
  join <name>             join a room by name
  random                  join a random room
  back                    leave the room list
  leave                   leave the current room
  status                  print the connection status
  quit                    exit`

func runShell(cmd *cobra.Command, args []string) error {
	if err := logger.Init(cfg.Log.Level, cfg.Log.Output); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	text := view.NewText(cmd.OutOrStdout())
	l := lobby.New(a.client, broadcast.NewFanout(text, a.monitor), a.lobbyOptions()...)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	l.Start()
	go l.Run(ctx, a.client.Events())

	if name := a.nickname(); name != "" {
		text.Printf("last player name: %s\n", name)
	}
	text.Printf("type 'help' for commands, 'quit' to exit\n")
	return shellLoop(cmd.InOrStdin(), l, text)
}

func shellLoop(in io.Reader, l *lobby.Lobby, text *view.Text) error {
	actions := l.Actions()
	scanner := bufio.NewScanner(in)
	for {
		text.Printf("> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		words, err := shellwords.Parse(line)
		if err != nil {
			text.Printf("parse error: %v\n", err)
			continue
		}

		switch words[0] {
		case "quit", "exit":
			return nil
		case "help":
			text.Printf("%s\n", shellHelp)
		case "login":
			actions.Login(arg(words, 1))
		case "create":
			if len(words) == 1 {
				actions.ShowCreateRoom()
				continue
			}
			maxPlayers := arg(words, 2)
			if maxPlayers == "" {
				maxPlayers = "4"
			}
			actions.CreateRoom(words[1], maxPlayers)
		case "cancel":
			actions.Cancel()
		case "list":
			actions.ShowRoomList()
		case "rooms":
			text.PrintRooms()
		case "join":
			if len(words) < 2 {
				text.Printf("usage: join <name>\n")
				continue
			}
			actions.JoinRoom(strings.Join(words[1:], " "))
		case "random":
			actions.JoinRandomRoom()
		case "back":
			actions.Back()
		case "leave":
			actions.LeaveRoom()
		case "status":
			l.Submit(func() {
				text.Printf("%s (panel: %s)\n", l.Session().StatusText(), l.Panel())
			})
		default:
			text.Printf("unknown command %q\n", words[0])
		}
	}
}

func arg(words []string, i int) string {
	if i < len(words) {
		return words[i]
	}
	return ""
}
