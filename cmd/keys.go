package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bactn/vidloader/pkg/loader/keystore"
	"github.com/bactn/vidloader/pkg/loader/scheme"
)

var keyID string

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Manage the persistent content-key store",
}

var keysImportCmd = &cobra.Command{
	Use:   "import <key-url> <key-file>",
	Short: "Import a content key obtained during download",
	Long: `Import stores the raw key bytes from <key-file> under the identifier
derived from <key-url>, the same derivation rewritten playlists use.
Pass --id to store under an explicit identifier instead.`,
	Args: cobra.ExactArgs(2),
	RunE: runKeysImport,
}

var keysListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored key identifiers",
	Args:  cobra.NoArgs,
	RunE:  runKeysList,
}

var keysDeleteCmd = &cobra.Command{
	Use:   "delete <key-id>",
	Short: "Delete a stored key",
	Args:  cobra.ExactArgs(1),
	RunE:  runKeysDelete,
}

func init() {
	keysImportCmd.Flags().StringVar(&keyID, "id", "",
		"store under this identifier instead of deriving one")

	keysCmd.AddCommand(keysImportCmd)
	keysCmd.AddCommand(keysListCmd)
	keysCmd.AddCommand(keysDeleteCmd)
	rootCmd.AddCommand(keysCmd)
}

func openKeyStore() (*keystore.Store, error) {
	path := viper.GetString("keys.database_path")
	if path == "" {
		return nil, fmt.Errorf("key database path is not configured")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create key database directory: %w", err)
	}
	return keystore.Open(path)
}

func runKeysImport(cmd *cobra.Command, args []string) error {
	keyURL, keyFile := args[0], args[1]

	key, err := os.ReadFile(keyFile)
	if err != nil {
		return fmt.Errorf("failed to read key file: %w", err)
	}
	if len(key) == 0 {
		return fmt.Errorf("key file is empty: %s", keyFile)
	}

	id := keyID
	if id == "" {
		id = keystore.DeriveKeyID(keyURL)
	}

	store, err := openKeyStore()
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Save(cmd.Context(), id, key); err != nil {
		return err
	}

	fmt.Printf("Stored %d key bytes as %s\n", len(key), scheme.KeyURL(id))
	return nil
}

func runKeysList(cmd *cobra.Command, args []string) error {
	store, err := openKeyStore()
	if err != nil {
		return err
	}
	defer store.Close()

	ids, err := store.List(cmd.Context())
	if err != nil {
		return err
	}

	for _, id := range ids {
		fmt.Println(scheme.KeyURL(id))
	}
	return nil
}

func runKeysDelete(cmd *cobra.Command, args []string) error {
	store, err := openKeyStore()
	if err != nil {
		return err
	}
	defer store.Close()

	return store.Delete(cmd.Context(), args[0])
}
