package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/openupm/openupm-cli/pkg/core/project"
	"github.com/openupm/openupm-cli/pkg/core/upm"
	errs "github.com/openupm/openupm-cli/pkg/errors"
	"github.com/openupm/openupm-cli/pkg/pipeline"
	"github.com/openupm/openupm-cli/pkg/render/nodelink"
)

// Output formats of the deps command.
const (
	formatTree = "tree"
	formatDOT  = "dot"
	formatSVG  = "svg"
)

type depsOptions struct {
	deep   bool
	format string
	output string
}

// depsCommand creates the deps command.
func (c *CLI) depsCommand() *cobra.Command {
	opts := depsOptions{format: formatTree}

	cmd := &cobra.Command{
		Use:   "deps <pkg>[@version]",
		Short: "Show the dependencies of a package",
		Long: `Show where each dependency of a package resolves from.

Without --deep only direct dependencies are listed. Inside a project, the
project's editor decides which packages are built in.`,
		Example: `  openupm deps com.example.pkg
  openupm deps --deep com.example.pkg@1.2.0
  openupm deps --deep --format svg -o deps.svg com.example.pkg`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runDeps(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.deep, "deep", "d", false, "resolve dependencies recursively")
	cmd.Flags().StringVar(&opts.format, "format", opts.format, "output format: tree, dot or svg")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write output to a file instead of stdout")

	return cmd
}

func (c *CLI) runDeps(ctx context.Context, arg string, opts depsOptions) error {
	switch opts.format {
	case formatTree, formatDOT, formatSVG:
	default:
		return errs.New(errs.ErrCodeInvalidInput, "invalid format %q (must be one of: tree, dot, svg)", opts.format)
	}
	ref, err := upm.ParsePackageReference(arg)
	if err != nil {
		return err
	}
	s, err := c.newSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	env, err := c.depsEnv(ctx, s)
	if err != nil {
		return err
	}

	spin := c.spinner(ctx, "Resolving dependencies...")
	spin.Start()
	g, err := s.runner.Dependencies(ctx, env, ref, opts.deep)
	spin.Stop()
	if err != nil {
		return err
	}

	var out []byte
	switch opts.format {
	case formatTree:
		out = []byte(nodelink.ToTree(g, nodelink.Options{Detailed: true}))
	case formatDOT:
		out = []byte(nodelink.ToDOT(g, nodelink.Options{Detailed: true}))
	case formatSVG:
		out, err = nodelink.RenderSVG(ctx, nodelink.ToDOT(g, nodelink.Options{}))
		if err != nil {
			return err
		}
	}

	if opts.output != "" {
		if err := os.WriteFile(opts.output, out, 0o644); err != nil {
			return errs.Wrap(errs.ErrCodeInternal, err, "write %s", opts.output)
		}
		printSuccess("wrote %s", opts.output)
	} else if _, err := stdout.Write(out); err != nil {
		return err
	}

	if failed := len(g.Failed()); failed > 0 {
		printWarning("%d of %d packages could not be resolved", failed, g.Len())
	}
	return nil
}

// depsEnv builds the environment for deps. Outside a project there is no
// editor, so nothing counts as built in.
func (c *CLI) depsEnv(ctx context.Context, s *session) (pipeline.Env, error) {
	dir, err := c.projectDir()
	if err != nil {
		return pipeline.Env{}, err
	}
	env, err := pipeline.NewEnv(dir, s.cfg)
	if err == nil {
		return env, nil
	}
	loggerFromContext(ctx).Debug("not in a project", "dir", dir, "err", errs.UserMessage(err))
	env = pipeline.Env{ProjectDir: dir, Primary: s.cfg.Primary(), EditorVersion: project.EditorVersion{}}
	env.Upstream, env.UpstreamEnabled = s.cfg.Fallback()
	return env, nil
}
