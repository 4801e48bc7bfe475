package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spboyer/knapsack/internal/projectconfig"
	"github.com/spboyer/knapsack/internal/wizard"
	"github.com/spf13/cobra"
)

func newInitCommand() *cobra.Command {
	var (
		yes   bool
		force bool
	)

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Create a .knapsack.yaml project configuration",
		Long: `Create a .knapsack.yaml file with solver, data, decode, cache and output
settings.

A guided wizard collects the settings; use --yes to accept the defaults
without prompting. An existing file is left untouched unless --force is given.

If no directory is specified, the current directory is used.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			return initCommandE(cmd, dir, yes, force)
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Accept defaults without prompting")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing .knapsack.yaml")

	return cmd
}

func initCommandE(cmd *cobra.Command, dir string, yes, force bool) error {
	out := cmd.OutOrStdout()
	path := filepath.Join(dir, projectconfig.FileName)

	if _, err := os.Stat(path); err == nil && !force {
		fmt.Fprintf(out, "%s already exists, leaving it untouched (use --force to overwrite)\n", path) //nolint:errcheck
		return nil
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("checking %s: %w", path, err)
	}

	spec := wizard.DefaultSpec()
	if !yes {
		var err error
		spec, err = wizard.RunInitWizard(cmd.InOrStdin(), out, spec)
		if err != nil {
			return err
		}
	}

	content, err := wizard.GenerateConfig(spec)
	if err != nil {
		return fmt.Errorf("failed to generate %s: %w", projectconfig.FileName, err)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	fmt.Fprintf(out, "Created %s\n", path) //nolint:errcheck
	return nil
}
