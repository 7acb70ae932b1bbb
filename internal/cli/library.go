package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"crashsig/config"
	"crashsig/internal/adapter/cache"
	"crashsig/internal/adapter/store"
	"crashsig/internal/signature"
	"crashsig/internal/usecase"
)

func signatureOptions(cfg *config.Config) []signature.Option {
	return []signature.Option{signature.WithDiffWindow(cfg.Library.DiffWindow)}
}

// loadLibrary opens the library index of the root directory and parses every
// signature in it.
func loadLibrary(cfg *config.Config, dir string) ([]usecase.LibraryEntry, error) {
	dbPath := config.LibraryDBPath(dir)
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("no library index found. Run 'crashsig index' first")
	}

	st, err := store.NewBoltStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open library index: %w", err)
	}
	defer st.Close()

	migration, err := st.CheckMigration(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to check library index: %w", err)
	}
	if migration.NeedsRebuild || migration.NeedsMigration {
		return nil, fmt.Errorf("library index is out of date (%s). Run 'crashsig index' again", migration.Reason)
	}

	c, err := cache.NewSignatureCache(cfg.Library.CacheSize, signatureOptions(cfg)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create signature cache: %w", err)
	}
	return usecase.LoadLibrary(st, c)
}

func printJSON(v any) error {
	output, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(output))
	return nil
}
