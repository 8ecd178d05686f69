package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"termaid"
)

const stdinName = "-"

// renderOpts holds the flags of the render command.
type renderOpts struct {
	renderFlags
	output string // directory for <name>.txt files; stdout when empty
	jobs   int    // files rendered at once
}

func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{jobs: runtime.GOMAXPROCS(0)}
	cmd := &cobra.Command{
		Use:   "render [file...]",
		Short: "Render diagram files as text",
		Long: `Render reads each file ("-" or no argument for standard input) and prints
its drawing. Several files render concurrently and print in argument order,
each under a heading.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				args = []string{stdinName}
			}
			return c.runRender(cmd.Context(), cmd, args, &opts)
		},
	}
	opts.register(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write each drawing to <dir>/<name>.txt instead of stdout")
	cmd.Flags().IntVarP(&opts.jobs, "jobs", "j", opts.jobs, "number of files rendered at once")
	return cmd
}

// document is one input and its drawing.
type document struct {
	name    string
	source  string
	drawing string
}

func (c *CLI) runRender(ctx context.Context, cmd *cobra.Command, args []string, opts *renderOpts) error {
	ropts := c.options(cmd, &opts.renderFlags)
	docs := make([]document, len(args))
	for i, name := range args {
		src, err := readSource(name, cmd.InOrStdin())
		if err != nil {
			return err
		}
		docs[i] = document{name: name, source: src}
	}

	prog := newProgress(c.Logger)
	if err := renderAll(ctx, docs, ropts, opts.jobs); err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Rendered %d diagram(s)", len(docs)))

	if opts.output != "" {
		return writeFiles(opts.output, docs)
	}
	return printDocs(cmd.OutOrStdout(), docs)
}

// renderAll fills in each drawing, running up to jobs renders at once. The
// first failure cancels the renders that have not started.
func renderAll(ctx context.Context, docs []document, opts termaid.Options, jobs int) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(jobs, 1))
	for i := range docs {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			out, err := termaid.Render(docs[i].source, opts)
			if err != nil {
				return errors.Wrapf(err, "%s", docs[i].name)
			}
			docs[i].drawing = out
			return nil
		})
	}
	return g.Wait()
}

func readSource(name string, stdin io.Reader) (string, error) {
	var (
		data []byte
		err  error
	)
	if name == stdinName {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(name)
	}
	if err != nil {
		return "", errors.Wrapf(err, "reading %s", name)
	}
	return string(data), nil
}

func printDocs(w io.Writer, docs []document) error {
	for i, d := range docs {
		if len(docs) > 1 {
			if i > 0 {
				fmt.Fprintln(w)
			}
			heading.Fprintf(w, "==> %s <==\n", d.name)
		}
		if _, err := fmt.Fprintln(w, d.drawing); err != nil {
			return errors.Wrap(err, "writing output")
		}
	}
	return nil
}

// writeFiles stores each drawing as <dir>/<base name>.txt; standard input
// is saved as stdin.txt.
func writeFiles(dir string, docs []document) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "creating %s", dir)
	}
	for _, d := range docs {
		base := "stdin"
		if d.name != stdinName {
			base = strings.TrimSuffix(filepath.Base(d.name), filepath.Ext(d.name))
		}
		path := filepath.Join(dir, base+".txt")
		if err := os.WriteFile(path, []byte(d.drawing+"\n"), 0o644); err != nil {
			return errors.Wrapf(err, "writing %s", path)
		}
	}
	return nil
}
