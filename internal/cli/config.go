package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	yaml "gopkg.in/yaml.v3"

	stego "github.com/yyyoichi/stego_zero"
	"github.com/yyyoichi/stego_zero/internal/config"
)

func (a *App) configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Handle the stego configuration file",
		Args:  exactArgs(),
		RunE: func(cmd *cobra.Command, args []string) error {
			return fmt.Errorf("%w: config needs a subcommand (init, show)", stego.ErrUsage)
		},
	}
	cmd.AddCommand(a.configInitCmd(), a.configShowCmd())
	return cmd
}

func (a *App) configInitCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with the default settings",
		Args:  exactArgs(),
		// the file does not exist yet, so skip reading it
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.At(a.cfgFile)
			if err != nil {
				return err
			}
			if _, err := os.Stat(cfg.Path()); err == nil && !force {
				return fmt.Errorf("config file %s already exists, use --force to overwrite", cfg.Path())
			}
			if err := cfg.Write(); err != nil {
				return err
			}
			a.print(status{Success: true, OutputPath: cfg.Path()})
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}

func (a *App) configShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as YAML",
		Args:  exactArgs(),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg
			if cfg.SealKey != "" {
				cfg.SealKey = "<redacted>"
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			defer enc.Close()
			return enc.Encode(cfg)
		},
	}
}
