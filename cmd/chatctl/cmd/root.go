package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mustafizur/chat/backend/internal/service/store"
	"github.com/mustafizur/chat/backend/internal/storage/kv"
)

var (
	backendName string
	storePath   string
	namespace   string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "chatctl",
	Short: "Inspect persisted conversations",
	Long: `chatctl opens a conversation store read-only and prints the contacts
that have saved history or the messages of a single contact.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVarP(&backendName, "backend", "b", "pebble", "store backend (pebble|sqlite)")
	rootCmd.PersistentFlags().StringVarP(&storePath, "path", "p", "data/chat.pebble", "store path")
	rootCmd.PersistentFlags().StringVarP(&namespace, "namespace", "n", store.DefaultNamespace, "key namespace")
}

// openStore opens the configured backend without write access where the
// backend supports it. The returned func closes the backend.
func openStore() (*store.Store, func(), error) {
	var (
		backend kv.Store
		err     error
	)
	switch backendName {
	case "pebble":
		backend, err = kv.OpenPebbleReadOnly(storePath)
	case "sqlite":
		backend, err = kv.OpenSQLite(storePath)
	default:
		return nil, nil, fmt.Errorf("unsupported backend %q", backendName)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("open %s store at %s: %w", backendName, storePath, err)
	}
	return store.New(backend, namespace, nil), func() { backend.Close() }, nil
}
