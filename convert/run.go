package convert

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/ByLCY/deckflow/binding"
	"github.com/ByLCY/deckflow/layout"
	"github.com/ByLCY/deckflow/state"
	"github.com/ByLCY/deckflow/templates"
)

// stdinSource names standard input on the command line.
const stdinSource = "-"

type options struct {
	src       string
	dst       string
	planPath  string
	dataPath  string
	overwrite bool
}

// Run is the action of "convert" subcommand.
func Run(ctx context.Context, cmd *cli.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("convert")

	opts, err := commandOptions(cmd, log)
	if err != nil {
		return err
	}
	applyOverrides(cmd, env)

	runID, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("unable to generate run id: %w", err)
	}
	log = log.With(zap.Stringer("run", runID))

	log.Info("Processing starting", zap.String("source", opts.src), zap.String("destination", opts.dst),
		zap.String("template", env.Cfg.Conversion.Template))
	defer func(start time.Time) {
		log.Info("Processing completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	return process(ctx, opts, env, log)
}

// RunPlan is the action of "plan" subcommand: it outputs pagination and
// placement as JSON without rendering anything.
func RunPlan(ctx context.Context, cmd *cli.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("plan")

	opts, err := commandOptions(cmd, log)
	if err != nil {
		return err
	}
	applyOverrides(cmd, env)

	data, _, err := readSource(opts.src)
	if err != nil {
		return err
	}
	p, err := newPipeline(opts, env, log)
	if err != nil {
		return err
	}
	res, err := p.Layout(ctx, data)
	if err != nil {
		return err
	}

	if cmd.Args().Len() < 2 {
		return layout.EncodePlan(cmd.Root().Writer, res.Plan())
	}
	if err := layout.WriteDebugJSON(res.Plan(), opts.dst); err != nil {
		return fmt.Errorf("unable to write plan: %w", err)
	}
	log.Info("Plan written", zap.String("file", opts.dst), zap.Int("slides", len(res.Deck.Slides)))
	return nil
}

// RunTemplates is the action of "templates" subcommand.
func RunTemplates(ctx context.Context, cmd *cli.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	if dir := cmd.String("dir"); dir != "" {
		env.Cfg.Conversion.TemplatesDir = dir
		env.Templates = nil
	}
	list, err := env.TemplateCache().List()
	if err != nil {
		// broken user templates do not hide good ones
		env.Log.Named("templates").Warn("Some templates could not be loaded", zap.Error(err))
	}
	return writeTemplateList(cmd.Root().Writer, list, env.Cfg.Conversion.Template)
}

func commandOptions(cmd *cli.Command, log *zap.Logger) (options, error) {
	var opts options

	opts.src = cmd.Args().Get(0)
	if len(opts.src) == 0 {
		return opts, errors.New("no input source has been specified")
	}
	if opts.src != stdinSource {
		src, err := filepath.Abs(opts.src)
		if err != nil {
			return opts, err
		}
		opts.src = src
	}

	opts.dst = cmd.Args().Get(1)
	if len(opts.dst) == 0 {
		wd, err := os.Getwd()
		if err != nil {
			return opts, fmt.Errorf("unable to get working directory: %w", err)
		}
		opts.dst = wd
	}
	dst, err := filepath.Abs(opts.dst)
	if err != nil {
		return opts, err
	}
	opts.dst = dst
	if cmd.Args().Len() > 2 {
		log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[2:]))
	}

	opts.planPath = cmd.String("plan")
	opts.dataPath = cmd.String("data")
	opts.overwrite = cmd.Bool("overwrite")
	return opts, nil
}

// applyOverrides lets command line flags take precedence over configuration.
func applyOverrides(cmd *cli.Command, env *state.LocalEnv) {
	if v := cmd.String("template"); v != "" {
		env.Cfg.Conversion.Template = v
	}
	if cmd.IsSet("layout") {
		env.Cfg.Conversion.Layout = cmd.String("layout")
	}
	if cmd.IsSet("break-level") {
		env.Cfg.Conversion.BreakLevel = cmd.Int("break-level")
	}
	if cmd.Bool("overwrite") {
		env.Cfg.Conversion.Overwrite = true
	}
}

// process handles conversion independently of CLI framework.
func process(ctx context.Context, opts options, env *state.LocalEnv, log *zap.Logger) error {
	data, baseDir, err := readSource(opts.src)
	if err != nil {
		return err
	}

	p, err := newPipeline(opts, env, log)
	if err != nil {
		return err
	}
	res, err := p.Layout(ctx, data)
	if err != nil {
		return err
	}
	if len(res.Deck.Slides) == 0 {
		return errors.New("nothing to convert, source has no content")
	}

	if opts.planPath != "" {
		if err := layout.WriteDebugJSON(res.Plan(), opts.planPath); err != nil {
			return fmt.Errorf("unable to write plan: %w", err)
		}
		log.Debug("Plan written", zap.String("file", opts.planPath))
	}

	out := buildOutputPath(opts.src, opts.dst, res.Title())
	if _, err := os.Stat(out); err == nil && !(opts.overwrite || env.Cfg.Conversion.Overwrite) {
		return fmt.Errorf("output file already exists: %s", out)
	}

	pdf, err := p.Render(ctx, res, baseDir)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
		return fmt.Errorf("unable to create output directory: %w", err)
	}
	if err := os.WriteFile(out, pdf, 0644); err != nil {
		return fmt.Errorf("unable to write output file: %w", err)
	}
	log.Info("Slides written", zap.String("file", out), zap.Int("slides", len(res.Deck.Slides)), zap.Int("bytes", len(pdf)))
	return nil
}

func newPipeline(opts options, env *state.LocalEnv, log *zap.Logger) (*Pipeline, error) {
	p := &Pipeline{Cache: env.TemplateCache(), Conv: env.Cfg.Conversion, Log: log}
	if opts.dataPath != "" {
		data, err := binding.LoadData(opts.dataPath)
		if err != nil {
			return nil, err
		}
		p.Data = data
	}
	return p, nil
}

// readSource returns source contents and directory used to resolve relative
// image paths.
func readSource(src string) ([]byte, string, error) {
	if src == stdinSource {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, "", fmt.Errorf("unable to read standard input: %w", err)
		}
		wd, _ := os.Getwd()
		return data, wd, nil
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return nil, "", fmt.Errorf("unable to read source: %w", err)
	}
	return data, filepath.Dir(src), nil
}

func writeTemplateList(w io.Writer, list []templates.Summary, current string) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tKIND\tLAYOUTS")
	for _, s := range list {
		id := s.ID
		if id == current {
			id += " *"
		}
		kind := "user"
		if s.Builtin {
			kind = "builtin"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", id, s.Name, kind, strings.Join(s.Layouts, ", "))
	}
	return tw.Flush()
}
