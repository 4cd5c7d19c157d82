package commands

import (
	"fmt"
	"os"
	"time"

	"consumelog-backend/lib/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(historyCmd)
}

var historyCmd = &cobra.Command{
	Use:   "history <origin url>",
	Short: "Prints the journaled responder outcomes for an origin, oldest first.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := readConfig()
		if cfg.EventLog == "" {
			serviceutil.Fatal("no event log configured", fmt.Errorf("event_log is empty in consumelog.json5"))
		}

		journal := openJournal(cmd.Context(), cfg.EventLog)
		outcomes, err := journal.Pull(cmd.Context(), args[0])
		if err != nil {
			serviceutil.Fatal("failed to read event log", err)
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Time", "Database", "Responder", "Success", "Message"})
		for _, o := range outcomes {
			t.AppendRow(table.Row{
				o.Time.Format(time.ANSIC),
				o.Database,
				o.Responder,
				o.Success,
				o.Message,
			})
		}
		t.SetStyle(table.StyleRounded)
		t.Render()
	},
}
