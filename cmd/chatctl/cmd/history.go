package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(historyCmd)
}

var historyCmd = &cobra.Command{
	Use:   "history [contact-id]",
	Short: "Print the persisted messages of one contact",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, closeFn, err := openStore()
		if err != nil {
			return err
		}
		defer closeFn()

		out := cmd.OutOrStdout()
		messages := s.Load(args[0])
		if len(messages) == 0 {
			fmt.Fprintf(out, "no messages for %s\n", args[0])
			return nil
		}
		for _, m := range messages {
			ts := time.UnixMilli(m.Timestamp).UTC().Format(time.RFC3339)
			fmt.Fprintf(out, "%s  %-4s  %s\n", ts, m.Sender, m.Text)
		}
		return nil
	},
}
