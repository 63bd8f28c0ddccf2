package cli

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/openupm/openupm-cli/pkg/core/manifest"
	"github.com/openupm/openupm-cli/pkg/core/upm"
	"github.com/openupm/openupm-cli/pkg/pipeline"
)

// addCommand creates the add command.
func (c *CLI) addCommand() *cobra.Command {
	var opts pipeline.AddOptions

	cmd := &cobra.Command{
		Use:     "add <pkg>[@version] [<pkg>[@version]...]",
		Aliases: []string{"install", "i"},
		Short:   "Add packages to the project manifest",
		Long: `Add packages to Packages/manifest.json.

Each package is resolved from the configured registry, falling back to the
Unity registry for packages the registry does not know. Its dependencies are
resolved too, and every package served by the registry is added to the
registry's scopes.

The version may be omitted (latest), a dist-tag, an exact version, or a git,
http or file URL. If any package fails, the manifest is not changed.`,
		Example: `  openupm add com.example.pkg
  openupm add com.example.pkg@1.2.0 com.example.other
  openupm add --test com.example.pkg
  openupm add com.example.pkg@git+https://github.com/example/pkg.git`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runAdd(cmd.Context(), args, opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.Force, "force", "f", false, "add packages even if incompatible or with unresolved dependencies")
	cmd.Flags().BoolVarP(&opts.Testable, "test", "t", false, "also list packages under testables")

	return cmd
}

func (c *CLI) runAdd(ctx context.Context, args []string, opts pipeline.AddOptions) error {
	refs, err := parseReferences(args)
	if err != nil {
		return err
	}
	dir, err := c.projectDir()
	if err != nil {
		return err
	}
	s, err := c.newSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	env, err := pipeline.NewEnv(dir, s.cfg)
	if err != nil {
		return err
	}
	if env.EditorVersion.Parsed == nil {
		printWarning("Unknown editor version %q; skipping compatibility checks", env.EditorVersion.Raw)
	}

	logger := loggerFromContext(ctx)
	prog := newProgress(logger)
	spin := c.spinner(ctx, "Resolving packages...")
	spin.Start()
	res, err := s.runner.Add(ctx, env, refs, opts)
	spin.Stop()
	if err != nil {
		return err
	}
	prog.done("add")

	for _, p := range res.Packages {
		name := string(p.Name)
		switch p.Status {
		case pipeline.StatusAdded:
			printSuccess("added %s", pkgVersion(name, p.Version))
		case pipeline.StatusModified:
			printUpgrade(name, p.Previous, p.Version)
		case pipeline.StatusExisted:
			printInfo("existed %s", pkgVersion(name, p.Version))
		}
		if p.Upstream {
			printDetail("from upstream registry %s", env.Upstream.URL)
		}
	}
	if res.Dirty {
		printDetail("updated %s", manifest.Path(dir))
		printDetail("open the project in the editor to install the changes")
	}
	return nil
}

// parseReferences parses name[@version] arguments.
func parseReferences(args []string) ([]upm.PackageReference, error) {
	refs := make([]upm.PackageReference, len(args))
	for i, arg := range args {
		ref, err := upm.ParsePackageReference(arg)
		if err != nil {
			return nil, err
		}
		refs[i] = ref
	}
	return refs, nil
}

// spinner returns a spinner on stderr, or a silent one when debug logs
// are being written there.
func (c *CLI) spinner(ctx context.Context, message string) *Spinner {
	if c.Logger.GetLevel() <= log.DebugLevel {
		return newSpinner(ctx, nil, message)
	}
	return newSpinner(ctx, spinnerOutput, message)
}
