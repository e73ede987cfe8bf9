package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(contactsCmd)
}

var contactsCmd = &cobra.Command{
	Use:   "contacts",
	Short: "List contacts with persisted history",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, closeFn, err := openStore()
		if err != nil {
			return err
		}
		defer closeFn()

		ids, err := s.Contacts()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(ids) == 0 {
			fmt.Fprintf(out, "no conversations under %s\n", s.Namespace())
			return nil
		}
		for _, id := range ids {
			fmt.Fprintf(out, "%s\t%d messages\n", id, len(s.Load(id)))
		}
		return nil
	},
}
