package cmd

import (
	"fmt"

	"github.com/harrison/fuzz/internal/config"
	"github.com/spf13/cobra"
)

// NewConfigCommand creates the 'fuzz config' command group
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and write fuzz configuration",
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigWriteCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	var flags configFlags
	var files []string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as YAML",
		Long: `Show merges every configuration layer the check command would use,
including the flags given here, and prints the result.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(files, &flags, nil)
			if err != nil {
				return err
			}
			data, err := cfg.Marshal()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	flags.bind(cmd.Flags())
	cmd.Flags().StringArrayVarP(&files, "config", "c", nil, "Load configuration from FILE (repeatable)")

	return cmd
}

func newConfigWriteCommand() *cobra.Command {
	var flags configFlags

	cmd := &cobra.Command{
		Use:   "write [FILE]",
		Short: "Write the configuration given by flags to FILE",
		Long: `Write saves the configuration given on the command line, and only that,
to FILE (default ` + config.FileName + `) so later runs pick it up.

Example:
  fuzz config write -X '/generated/' -B check_id_tag`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.FileName
			if len(args) == 1 {
				path = args[0]
			}
			cfg, err := flags.overrides()
			if err != nil {
				return err
			}
			if err := cfg.Save(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Configuration written to %s\n", path)
			return nil
		},
	}

	flags.bind(cmd.Flags())

	return cmd
}
