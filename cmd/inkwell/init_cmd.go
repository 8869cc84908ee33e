package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/inkwell-cms/inkwell/internal/config"
	"github.com/inkwell-cms/inkwell/internal/sync"
)

func init() {
	rootCmd.AddCommand(newInitCmd())
}

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the config file and workspace layout",
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			cfg := &config.Config{
				Workspace: viper.GetString("workspace"),
				ServerURL: viper.GetString("server_url"),
				APIKey:    viper.GetString("api_key"),
				Locale:    viper.GetString("locale"),
				Path:      viper.ConfigFileUsed(),
			}
			if cfg.Workspace == "" {
				cfg.Workspace = filepath.Join(home, "Inkwell")
			}
			if cfg.Path == "" {
				configPath, _ := cmd.Flags().GetString("config")
				cfg.Path = configPath
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			for _, store := range []string{sync.StoreContent, sync.StoreMedia} {
				if err := os.MkdirAll(filepath.Join(cfg.Workspace, store), 0o755); err != nil {
					return err
				}
			}
			if err := cfg.Save(); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s\n", green("workspace"), cfg.Workspace)
			fmt.Fprintf(out, "%s %s\n", green("config"), cfg.Path)
			return nil
		},
	}
}
