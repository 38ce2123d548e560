package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/polygen/polygen/ast"
	"github.com/polygen/polygen/emit"
	"github.com/polygen/polygen/errors"
	"github.com/polygen/polygen/modifier"
	"github.com/polygen/polygen/postprocess"
	"github.com/polygen/polygen/preprocessor"
)

// backendRegistry is the set of backends this binary ships with. Each
// SPEC_FULL.md backend descriptor/runner pair would add an entry here;
// only the Go backend is built out for now.
var backendRegistry = map[string]emit.Backend{
	"go": emit.NewGoBackend(),
}

func newGenerateCmd() *cobra.Command {
	var backendName, outDir, skeletonPath, configPath string
	var optionFlags []string
	var trace bool

	cmd := &cobra.Command{
		Use:   "generate <grammar-file>",
		Short: "Generate a backend's parser source from a grammar file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(generateArgs{
				grammarFile:  args[0],
				backendName:  backendName,
				outDir:       outDir,
				skeletonPath: skeletonPath,
				configPath:   configPath,
				optionFlags:  optionFlags,
				trace:        trace,
			})
		},
	}

	cmd.Flags().StringVarP(&backendName, "backend", "b", "", "target backend name (required)")
	cmd.Flags().StringVarP(&outDir, "out-dir", "o", "", "output directory (default \".\")")
	cmd.Flags().StringVar(&skeletonPath, "skeleton", "", "skeleton file to splice generated fragments into")
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "YAML config file")
	cmd.Flags().StringArrayVarP(&optionFlags, "option", "d", nil, "backend option as key=value (repeatable)")
	cmd.Flags().BoolVar(&trace, "trace", false, "emit an OpenTelemetry span per pipeline stage")
	cmd.MarkFlagRequired("backend")

	return cmd
}

type generateArgs struct {
	grammarFile  string
	backendName  string
	outDir       string
	skeletonPath string
	configPath   string
	optionFlags  []string
	trace        bool
}

func runGenerate(args generateArgs) error {
	b, ok := backendRegistry[args.backendName]
	if !ok {
		return fmt.Errorf("unknown backend %q", args.backendName)
	}

	fileCfg, err := loadConfigFile(args.configPath)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	flagCfg := generateConfig{OutDir: args.outDir, Options: parseOptionFlags(args.optionFlags)}
	cfg, err := mergeConfig(generateConfig{Backend: args.backendName, OutDir: "."}, fileCfg, flagCfg)
	if err != nil {
		return fmt.Errorf("merge config: %w", err)
	}

	desc := b.Descriptor()
	opts, errs := desc.ValidateOptions(cfg.Options)
	if len(errs) > 0 {
		return fmt.Errorf("invalid options: %v", errs)
	}

	tracer := newTracer(args.trace)
	ctx := context.Background()

	log.WithFields(map[string]interface{}{"grammar": args.grammarFile, "backend": args.backendName}).Info("preprocessing grammar")

	var g *ast.Grammar
	err = traceStage(ctx, tracer, "preprocessor", func(context.Context) error {
		var bag *errors.Bag
		g, bag = preprocessor.Process(preprocessor.OSFileSystem{}, args.grammarFile, nil, args.backendName)
		if bag.HasErrors() {
			return fmt.Errorf("%s", bag.Error())
		}
		return nil
	})
	if err != nil {
		return err
	}

	err = traceStage(ctx, tracer, "modifier", func(context.Context) error {
		var bag *errors.Bag
		g, bag = modifier.Run(g, modifier.DefaultOptions())
		if bag.HasErrors() {
			return fmt.Errorf("%s", bag.Error())
		}
		return nil
	})
	if err != nil {
		return err
	}

	e := emit.NewEmitter()
	err = traceStage(ctx, tracer, "emitter", func(context.Context) error {
		return b.Generate(e, g, opts)
	})
	if err != nil {
		return fmt.Errorf("generate: %w", err)
	}

	return traceStage(ctx, tracer, "postprocessor", func(context.Context) error {
		return writeOutput(e, cfg.OutDir, args.skeletonPath)
	})
}

func writeOutput(e *emit.Emitter, outDir, skeletonPath string) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create out dir: %w", err)
	}

	if skeletonPath == "" {
		var combined strings.Builder
		for _, name := range []string{"header", "entry", "rules"} {
			combined.WriteString(e.Fragment(name))
			combined.WriteByte('\n')
		}
		return os.WriteFile(filepath.Join(outDir, "parser.go"), []byte(combined.String()), 0o644)
	}

	skeleton, err := os.ReadFile(skeletonPath)
	if err != nil {
		return fmt.Errorf("read skeleton: %w", err)
	}

	out, err := postprocess.Process(string(skeleton), e.Fragments())
	if err != nil {
		return fmt.Errorf("postprocess skeleton: %w", err)
	}

	name := filepath.Base(skeletonPath)
	name = strings.TrimSuffix(name, ".in")
	return os.WriteFile(filepath.Join(outDir, name), []byte(out), 0o644)
}

func parseOptionFlags(flags []string) map[string]string {
	out := make(map[string]string, len(flags))
	for _, f := range flags {
		k, v, ok := strings.Cut(f, "=")
		if !ok {
			continue
		}
		out[k] = v
	}
	return out
}
