package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jptrs93/brsproto/internal/baseline"
	"github.com/jptrs93/brsproto/internal/config"
	"github.com/jptrs93/brsproto/internal/generate"
	"github.com/jptrs93/brsproto/internal/generate/brs"
	"github.com/jptrs93/brsproto/internal/logging"
	"github.com/jptrs93/brsproto/internal/parser"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/spf13/cobra"
	"google.golang.org/protobuf/reflect/protoreflect"
)

func main() {
	root := &cobra.Command{
		Use:   "brsproto COMMAND [options] [PROTO...]",
		Short: "Generate BrightScript protobuf encoders and decoders",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	generateCmd := &cobra.Command{
		Use:   "generate [options] [PROTO...]",
		Short: "Generate runtime.brs and one module per message",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd.Context(), cmd, args)
		},
	}
	baselineCmd := &cobra.Command{
		Use:   "baseline [options] [PROTO...]",
		Short: "Write reference encodings for single-field scalar messages",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBaseline(cmd.Context(), cmd, args)
		},
	}
	for _, cmd := range []*cobra.Command{generateCmd, baselineCmd} {
		config.RegisterFlags(cmd.Flags())
		root.AddCommand(cmd)
	}

	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func setup(cmd *cobra.Command, args []string) (config.Config, log.Logger, error) {
	cfg, err := config.FromFlags(cmd.Flags(), args)
	if err != nil {
		return cfg, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, nil, err
	}
	logger, err := logging.New(os.Stderr, cfg.LogLevel)
	if err != nil {
		return cfg, nil, err
	}
	return cfg, logger, nil
}

// load discovers the proto inputs and returns their import-relative names
// along with a parser rooted at the import paths.
func load(cfg config.Config, logger log.Logger) ([]string, *parser.Parser, error) {
	files, err := parser.Discover(cfg.ProtoPaths)
	if err != nil {
		return nil, nil, err
	}
	importPaths := cfg.ImportPaths
	if len(importPaths) == 0 {
		importPaths = parser.ImportRoots(cfg.ProtoPaths)
	}
	names, err := parser.RelativeNames(importPaths, files)
	if err != nil {
		return nil, nil, err
	}
	level.Debug(logger).Log("msg", "discovered proto files", "count", len(names), "import_paths", fmt.Sprint(importPaths))
	return names, &parser.Parser{ImportPaths: importPaths, Logger: logger}, nil
}

func runGenerate(ctx context.Context, cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup(cmd, args)
	if err != nil {
		return err
	}
	names, p, err := load(cfg, logger)
	if err != nil {
		return err
	}
	files, err := p.Parse(ctx, names)
	if err != nil {
		return err
	}

	gen := brs.Generator{}
	outputs, err := gen.Generate(files, generate.Options{
		OutDir:       filepath.Clean(cfg.OutDir),
		EmbedDir:     cfg.EmbedDir,
		DecodeCase:   cfg.CaseStyle(),
		EmitDefaults: cfg.EmitDefaults,
		Parallelism:  cfg.Parallelism,
		Inputs:       names,
		Logger:       logger,
	})
	if err != nil {
		return fmt.Errorf("%s generator: %w", gen.Name(), err)
	}

	// Modules of messages that no longer exist must not linger.
	if err := os.RemoveAll(filepath.Join(cfg.OutDir, brs.MessagesDir)); err != nil {
		return err
	}
	if err := generate.WriteFiles(outputs, logger); err != nil {
		return err
	}
	if cfg.EmbedDir != "" {
		return generate.Mirror(cfg.OutDir, cfg.EmbedDir, logger)
	}
	return nil
}

func runBaseline(ctx context.Context, cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup(cmd, args)
	if err != nil {
		return err
	}
	names, p, err := load(cfg, logger)
	if err != nil {
		return err
	}
	fds, err := p.Compile(ctx, names)
	if err != nil {
		return err
	}
	doc, err := baseline.Build(fds, names, time.Now())
	if err != nil {
		return err
	}
	level.Info(logger).Log("msg", "built baseline cases", "cases", len(doc.Cases), "messages", countMessages(fds))

	sourceDir := cfg.OutDir
	if cfg.EmbedDir != "" {
		sourceDir = cfg.EmbedDir
	}
	outputs, err := baseline.Outputs(doc, cfg.FixtureDir, sourceDir)
	if err != nil {
		return err
	}
	return generate.WriteFiles(outputs, logger)
}

func countMessages(fds []protoreflect.FileDescriptor) int {
	n := 0
	for _, fd := range fds {
		n += fd.Messages().Len()
	}
	return n
}
