package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dhruv-ramu/FragmentFusion/internal/infra/fsproject"
	"github.com/dhruv-ramu/FragmentFusion/internal/usecase"
)

func initCmd() *cobra.Command {
	var force bool

	c := &cobra.Command{
		Use:   "init [dir]",
		Short: "Scaffold a FragmentFusion project (config, workflow config, data tree)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			root, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("invalid project path: %w", err)
			}

			if err := usecase.NewInitProject(fsproject.NewInitializer()).Execute(root, force); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s project initialized at %s\n", mark(true), root)
			return nil
		},
	}

	c.Flags().BoolVar(&force, "force", false, "Overwrite existing scaffold files")
	return c
}
