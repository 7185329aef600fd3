package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"gopkg.in/yaml.v3"

	"github.com/MyCarrier-DevOps/go-gitversion/internal/config"
	"github.com/MyCarrier-DevOps/go-gitversion/internal/describe"
	"github.com/MyCarrier-DevOps/go-gitversion/internal/git"
	"github.com/MyCarrier-DevOps/go-gitversion/internal/logger"
	"github.com/MyCarrier-DevOps/go-gitversion/internal/output"
	"github.com/MyCarrier-DevOps/go-gitversion/internal/version"
)

const tracerName = "github.com/MyCarrier-DevOps/go-gitversion/cmd"

func runDescribe(cmd *cobra.Command, opts *rootOptions) error {
	// Config lives at the work tree root; git.Open reports a bad path.
	root, err := version.RootWorkTree(opts.path)
	if err != nil {
		root = opts.path
	}

	cfg, err := opts.loadConfig(root)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	if opts.showConfig {
		return showConfig(cmd.OutOrStdout(), cfg)
	}
	ec := config.NewEffectiveConfiguration(cfg)

	log, closer := newLogger(cmd.ErrOrStderr(), ec)
	defer closer.Close()

	repo, err := git.Open(opts.path)
	if err != nil {
		return fmt.Errorf("opening repository: %w", err)
	}

	return opts.describe(cmd, repo, ec, log)
}

// describe runs the engine over repo and writes the requested output.
// Shared by the local and remote commands.
func (o *rootOptions) describe(cmd *cobra.Command, repo git.Repository, ec config.EffectiveConfiguration, log *slog.Logger) error {
	engine, err := buildEngine(repo, ec, log)
	if err != nil {
		return err
	}

	timer, shutdown, err := o.newTimer(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer shutdown()

	d, err := version.NewLoader(repo, engine, ec.Prefix,
		version.WithTimer(timer),
		version.WithRev(o.rev),
	).Load(cmd.Context())
	if err != nil {
		return err
	}
	log.Debug("described", "repo", repo.Path(), "version", d.Version(), "sha", d.GitHash())

	if o.explain {
		if err := output.WriteExplanation(cmd.ErrOrStderr(), d); err != nil {
			return fmt.Errorf("writing explanation: %w", err)
		}
	}

	if err := o.writeOutput(cmd.OutOrStdout(), d); err != nil {
		return err
	}

	if o.timings {
		data, err := timer.JSON()
		if err != nil {
			return fmt.Errorf("encoding timings: %w", err)
		}
		fmt.Fprintln(cmd.ErrOrStderr(), string(data))
	}
	return nil
}

// buildEngine returns the search engine, wrapped in a cross-check against
// the linear walk when verification is on.
func buildEngine(repo git.Repository, ec config.EffectiveConfiguration, log *slog.Logger) (describe.Engine, error) {
	opts := ec.DescribeOptions(log)
	primary := describe.New(repo, opts...)
	if !ec.Verify {
		return primary, nil
	}
	if !ec.FirstParent {
		return nil, errors.New("verify requires first-parent: the linear walk only follows first parents")
	}
	return describe.Verify(primary, describe.NewLinear(repo, opts...)), nil
}

// newTimer returns the step timer. With --timings every step is also
// exported as a span to w.
func (o *rootOptions) newTimer(w io.Writer) (*version.Timer, func(), error) {
	if !o.timings {
		return version.NewTimer(nil), func() {}, nil
	}
	exp, err := stdouttrace.New(stdouttrace.WithWriter(w), stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, nil, fmt.Errorf("creating trace exporter: %w", err)
	}
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exp))
	return version.NewTimer(tp.Tracer(tracerName)), func() { _ = tp.Shutdown(context.Background()) }, nil
}

func newLogger(w io.Writer, ec config.EffectiveConfiguration) (*slog.Logger, io.Closer) {
	return logger.New(logger.Options{Writer: w, Level: ec.LogLevel(), File: ec.LogFile})
}

// writeOutput writes the version variables in the requested format.
func (o *rootOptions) writeOutput(w io.Writer, d version.Details) error {
	vars := output.GetVariables(d)

	switch {
	case o.describeOnly:
		return output.WriteVariable(w, vars, output.VarDescribe)
	case o.showVariable != "":
		return output.WriteVariable(w, vars, o.showVariable)
	}

	f, err := output.ParseFormat(o.output)
	if err != nil {
		return err
	}
	return output.Write(w, f, vars)
}

// showConfig prints the effective configuration as YAML.
func showConfig(w io.Writer, cfg *config.Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	_, err = w.Write(data)
	return err
}
