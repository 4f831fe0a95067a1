package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/parcelgen"
	"github.com/wippyai/parcelgen/config"
	"github.com/wippyai/parcelgen/gogen"
	"github.com/wippyai/parcelgen/hierarchy"
	"github.com/wippyai/parcelgen/schema"
)

type options struct {
	schemaFile  string
	witFile     string
	witPackage  string
	configFile  string
	output      string
	pkg         string
	name        string
	models      bool
	list        bool
	interactive bool
}

func main() {
	var o options
	flag.StringVar(&o.schemaFile, "schema", "", "Path to YAML schema")
	flag.StringVar(&o.witFile, "wit", "", "Path to WIT package in JSON form")
	flag.StringVar(&o.witPackage, "wit-package", "", "Go import path for WIT records and enums")
	flag.StringVar(&o.configFile, "config", "", "Path to parcelgen.toml (default: search upward)")
	flag.StringVar(&o.output, "o", "", "Output file (default: stdout)")
	flag.StringVar(&o.pkg, "package", "", "Import path of the generated file")
	flag.StringVar(&o.name, "name", "", "Package clause of the generated file")
	flag.BoolVar(&o.models, "models", false, "Also declare aggregate structs and enums")
	flag.BoolVar(&o.list, "list", false, "Print program listings and exit")
	flag.BoolVar(&o.interactive, "i", false, "Interactive mode with TUI")
	flag.Parse()

	if o.schemaFile == "" && o.witFile == "" {
		fmt.Fprintln(os.Stderr, "Usage: parcelgen -schema <model.yaml> [-wit <pkg.json>] [-o out.go]")
		fmt.Fprintln(os.Stderr, "       parcelgen -schema <model.yaml> -list")
		fmt.Fprintln(os.Stderr, "       parcelgen -schema <model.yaml> -i  (interactive mode)")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, o); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	cfg, err := config.FindAndLoad(".")
	if err != nil || cfg != nil {
		return cfg, err
	}
	return config.Default(), nil
}

func loadSchema(o options) (*schema.Schema, *hierarchy.Index, error) {
	s := &schema.Schema{}
	if o.schemaFile != "" {
		yamlSchema, err := schema.ReadFile(o.schemaFile)
		if err != nil {
			return nil, nil, err
		}
		s = s.Merge(yamlSchema)
		s.Package = yamlSchema.Package
	}
	if o.witFile != "" {
		witSchema, err := schema.LoadWIT(o.witFile, o.witPackage)
		if err != nil {
			return nil, nil, err
		}
		s = s.Merge(witSchema)
		if s.Package == "" {
			s.Package = witSchema.Package
		}
	}
	idx, err := s.Index()
	if err != nil {
		return nil, nil, err
	}
	return s, idx, nil
}

func run(ctx context.Context, o options) error {
	cfg, err := loadConfig(o.configFile)
	if err != nil {
		return err
	}
	logger, err := cfg.Logger()
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	s, idx, err := loadSchema(o)
	if err != nil {
		return err
	}
	logger.Debug("schema loaded",
		zap.Int("classes", len(s.Classes)),
		zap.Int("aggregates", len(s.Aggregates)))

	gen := parcelgen.New(idx).
		WithLogger(logger).
		WithDefaults(cfg.Implementations).
		WithLimit(cfg.Generate.Parallelism)

	procs, genErr := gen.GenerateAll(ctx, s.Aggregates)

	opts := gogen.Options{
		Package: firstNonEmpty(o.pkg, cfg.Generate.Package, s.Package),
		Name:    firstNonEmpty(o.name, cfg.Generate.Name),
		Models:  o.models || cfg.Generate.Models,
	}

	if o.interactive {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			return fmt.Errorf("interactive mode needs a terminal")
		}
		return runInteractive(s.Aggregates, procs, genErr, idx, opts)
	}

	if o.list {
		for _, p := range procs {
			if p != nil {
				fmt.Println(p)
			}
		}
		return genErr
	}

	if genErr != nil {
		return genErr
	}
	src, err := gogen.Render(procs, idx, opts)
	if err != nil {
		return err
	}

	out := o.output
	if out == "" {
		out = cfg.OutputPath()
	}
	if out == "" {
		_, err = os.Stdout.Write(src)
		return err
	}
	if err := os.WriteFile(out, src, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	logger.Info("wrote output", zap.String("path", out), zap.Int("aggregates", len(procs)))
	return nil
}

func firstNonEmpty(vs ...string) string {
	for _, v := range vs {
		if v != "" {
			return v
		}
	}
	return ""
}
