package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"github.com/hlsplay/hlsplay/history"
	"github.com/hlsplay/hlsplay/icon"
	"github.com/hlsplay/hlsplay/style"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().BoolP("json", "j", false, "Output as JSON")
	historyCmd.Flags().Bool("clear", false, "Delete every entry")
	historyCmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")
	historyCmd.MarkFlagsMutuallyExclusive("json", "clear")
	historyCmd.SetOut(os.Stdout)
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List played sources",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if lo.Must(cmd.Flags().GetBool("clear")) {
			clearHistory(lo.Must(cmd.Flags().GetBool("yes")))
			return
		}

		entries, err := history.Sorted()
		handleErr(err)

		if lo.Must(cmd.Flags().GetBool("json")) {
			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			handleErr(encoder.Encode(entries))
			return
		}

		if len(entries) == 0 {
			cmd.Println(style.Faint("No history"))
			return
		}

		for _, entry := range entries {
			cmd.Printf("%s %s\n", style.Faint(entry.PlayedAt.Format(time.DateTime)), entry)
		}
	},
}

func clearHistory(yes bool) {
	if !yes {
		var confirmed bool
		handleErr(survey.AskOne(&survey.Confirm{
			Message: "Delete every history entry?",
			Default: false,
		}, &confirmed))

		if !confirmed {
			return
		}
	}

	handleErr(history.Clear())
	fmt.Printf("%s history cleared\n", style.Fg(style.AnsiGreen)(icon.Get(icon.Success)))
}
