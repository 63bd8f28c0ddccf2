package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/openupm/openupm-cli/pkg/core/manifest"
	"github.com/openupm/openupm-cli/pkg/core/upm"
	errs "github.com/openupm/openupm-cli/pkg/errors"
	"github.com/openupm/openupm-cli/pkg/pipeline"
)

// removeCommand creates the remove command.
func (c *CLI) removeCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "remove <pkg> [<pkg>...]",
		Aliases: []string{"rm", "uninstall"},
		Short:   "Remove packages from the project manifest",
		Long: `Remove packages from Packages/manifest.json, together with their scopes.
Scoped registries left without scopes are removed as well.

If any package is not a dependency of the project, nothing is removed.`,
		Example: `  openupm remove com.example.pkg
  openupm remove com.example.pkg com.example.other`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRemove(cmd.Context(), args)
		},
	}
}

func (c *CLI) runRemove(ctx context.Context, args []string) error {
	names := make([]upm.DomainName, len(args))
	for i, arg := range args {
		ref, err := upm.ParsePackageReference(arg)
		if err != nil {
			return err
		}
		if ref.Version != "" {
			return errs.New(errs.ErrCodeInvalidInput, "remove takes package names without versions: %s", arg)
		}
		names[i] = ref.Name
	}
	dir, err := c.projectDir()
	if err != nil {
		return err
	}

	runner := pipeline.NewRunner(nil, nil, loggerFromContext(ctx))
	removed, err := runner.Remove(ctx, pipeline.Env{ProjectDir: dir}, names)
	if err != nil {
		return err
	}
	for _, p := range removed {
		printSuccess("removed %s", pkgVersion(string(p.Name), p.Version))
	}
	printDetail("updated %s", manifest.Path(dir))
	return nil
}
