package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/treelint/treelint/pkg/config"
	"github.com/treelint/treelint/pkg/errors"
)

const starterConfig = `# treelint configuration
# Run "treelint check" from this directory to lint the tree.

mode: strict

ignore:
  - "node_modules/**"
  - "dist/**"

# Uncomment to start from a preset: treelint ships "go" and "node".
# extends: go

rules:
  forbidden_names:
    - ".DS_Store"
    - "Thumbs.db"

layout:
  README.md: file
`

func newInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write a starter config file",
		Long:  `Create a .treelint.yaml with a minimal, commented configuration.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}

			if existing := config.Find(dir); existing != "" && !force {
				return errors.Newf(errors.ErrInvalidInput,
					"%s already exists (use --force to overwrite)", existing)
			}

			path := filepath.Join(dir, ".treelint.yaml")
			if err := os.WriteFile(path, []byte(starterConfig), 0o644); err != nil {
				return errors.Wrapf(err, errors.ErrConfigLoad, "writing %s", path)
			}

			fmt.Printf("Wrote %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")
	return cmd
}
