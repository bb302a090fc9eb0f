// Package cli implements the sea command surface: tool registry queries,
// configuration access, and the HTTP serve mode.
package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sea-labs/sea/config"
	"github.com/sea-labs/sea/tool"
)

// resolveConfig loads configuration honoring the persistent --config flag.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	explicit, _ := cmd.Flags().GetString("config")
	path, err := config.Discover(explicit)
	if err != nil {
		return nil, exitError(exitRuntime, "%s", err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, exitError(exitRuntime, "%s", err)
	}
	return cfg, nil
}

// resolveToolStore opens the registration store honoring --store-path.
func resolveToolStore(cmd *cobra.Command) (*tool.FileStore, error) {
	path, _ := cmd.Flags().GetString("store-path")
	if strings.TrimSpace(path) != "" {
		return tool.NewFileStore(path), nil
	}
	store, err := tool.NewDefaultFileStore()
	if err != nil {
		return nil, exitError(exitRuntime, "%s", err)
	}
	return store, nil
}

// resolveManager builds a manager over the builtins plus stored custom
// categories.
func resolveManager(cmd *cobra.Command) (*tool.Manager, error) {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return nil, err
	}
	store, err := resolveToolStore(cmd)
	if err != nil {
		return nil, err
	}
	stored, err := tool.LoadStored(cmd.Context(), store)
	if err != nil {
		return nil, exitError(exitRuntime, "%s", err)
	}

	manager, err := tool.NewManager(cfg, tool.WithCustomRegistrations(stored))
	if err != nil {
		return nil, exitError(exitRuntime, "%s", err)
	}
	return manager, nil
}

// printJSON renders v as indented JSON on the command's stdout.
func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return exitError(exitRuntime, "encoding output: %v", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}
