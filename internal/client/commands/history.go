package commands

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/lox/pokertable/internal/client"
	"github.com/lox/pokertable/internal/history"
	"github.com/lox/pokertable/internal/tui"
)

// HistoryCommand summarizes recorded hand histories
type HistoryCommand struct {
	Dir        string `arg:"" optional:"" help:"Directory of .phh files (defaults to ui.history_dir)"`
	PlayerName string `name:"name" short:"n" help:"Player to report results for (defaults to player.name)"`
	Limit      int    `help:"Show only the last N hands (0 = all)"`
}

func (cmd *HistoryCommand) Run(flags *GlobalFlags) error {
	dir, name := cmd.Dir, cmd.PlayerName
	if dir == "" || name == "" {
		cfg, err := client.LoadConfig(flags.Config)
		if err != nil {
			return fmt.Errorf("error loading config: %w", err)
		}
		if dir == "" {
			dir = cfg.UI.HistoryDir
		}
		if name == "" {
			name = cfg.Player.Name
		}
	}
	if dir == "" {
		return fmt.Errorf("no history directory given and ui.history_dir is not set")
	}

	hands, err := history.LoadDir(dir)
	if err != nil {
		return err
	}
	if len(hands) == 0 {
		return fmt.Errorf("no hands found in %s", dir)
	}

	shown := hands
	if cmd.Limit > 0 && cmd.Limit < len(shown) {
		shown = shown[len(shown)-cmd.Limit:]
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "Hand\tTable\tPlayers\tPot\tResult")
	var stats history.Stats
	for _, h := range hands {
		if i := h.Index(name); i >= 0 {
			stats.Add(history.ResultFor(h, i))
		}
	}
	for _, h := range shown {
		result := "-"
		if i := h.Index(name); i >= 0 {
			result = fmt.Sprintf("%+d", h.Net(i))
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\n", h.HandID, h.Table, len(h.Players), h.Pot(), result)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if name != "" {
		fmt.Println()
		fmt.Println(tui.HeaderStyle.Render(name) + " " + stats.Summary())
	}
	return stats.Validate()
}
