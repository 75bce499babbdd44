// Root command for the helixctl CLI.
// Implements: prd007-helixctl-cli R1; prd006-configuration-directories R1, R2.
package main

import (
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/helix/internal/paths"
	"github.com/mesh-intelligence/helix/pkg/helix"
)

// Exit codes per prd007-helixctl-cli R8.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// Global flag values.
var (
	flagConfigDir string
	flagDataDir   string
	flagJSON      bool
)

// configDataDir holds the data_dir value loaded from config.yaml.
// Set by PersistentPreRunE so all subcommands can use it.
var configDataDir string

var rootCmd = &cobra.Command{
	Use:     "helixctl",
	Short:   "Helixctl inspects Helix kernel snapshots",
	Version: helix.Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configDir, err := resolveConfigDir()
		if err != nil {
			return err
		}

		cfg, err := loadConfig(configDir)
		if err != nil {
			return err
		}

		configDataDir = cfg.GetString(cfgKeyDataDir)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfigDir, "config-dir", "", "configuration directory (default: $(CWD)/.helix)")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "data directory (default: $(CWD)/.helix-db)")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "output as JSON")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(traceCmd)
	rootCmd.AddCommand(relationsCmd)
}

// resolveDataDir returns the data directory path following prd006 R2
// precedence: --data-dir flag > config.yaml data_dir > HELIX_DATA_DIR env >
// default $(CWD)/.helix-db.
func resolveDataDir() (string, error) {
	return paths.ResolveDataDir(flagDataDir, configDataDir)
}

// resolveConfigDir returns the configuration directory following prd006 R1
// precedence: --config-dir flag > HELIX_CONFIG_DIR env > DefaultConfigDir().
func resolveConfigDir() (string, error) {
	return paths.ResolveConfigDir(flagConfigDir)
}
