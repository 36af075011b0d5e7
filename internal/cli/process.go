package cli

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"metabulo/internal/exporter"
	"metabulo/internal/infrastructure"
	"metabulo/internal/processing"
	"metabulo/internal/services"
	"metabulo/internal/validation"
	"metabulo/pkg/contracts/domain"
)

type processOptions struct {
	normalization     string
	normalizationArg  string
	transformation    string
	transformationArg string
	scaling           string
	output            string
	precision         int
}

func newProcessCommand() *cobra.Command {
	opts := &processOptions{}

	cmd := &cobra.Command{
		Use:   "process FILE",
		Short: "Process a local table without the API",
		Long: `Read a CSV, TSV or XLSX table, apply the selected normalization,
transformation and scaling and write the result as CSV.

The first column holds sample keys and the first row holds column names.
Non-numeric columns are dropped and a missing value is replaced by a fifth of
the smallest positive value in its column. The result goes to stdout unless --output is given.`,
		Example: `  metabulo process samples.csv --normalization sum --transformation log2 --scaling pareto
  metabulo process samples.xlsx --normalization reference-sample --normalization-arg s1 -o out.csv`,
		Args: cobra.ExactArgs(1),
		PreRunE: func(_ *cobra.Command, _ []string) error {
			return opts.check()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProcess(cmd, opts, args[0])
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.normalization, "normalization", "", methodHelp(domain.StepNormalization))
	flags.StringVar(&opts.normalizationArg, "normalization-arg", "", "normalization argument (reference sample key)")
	flags.StringVar(&opts.transformation, "transformation", "", methodHelp(domain.StepTransformation))
	flags.StringVar(&opts.transformationArg, "transformation-arg", "", "transformation argument (offset)")
	flags.StringVar(&opts.scaling, "scaling", "", methodHelp(domain.StepScaling))
	flags.StringVarP(&opts.output, "output", "o", "", "output file (default: stdout)")
	flags.IntVar(&opts.precision, "precision", -1, "decimals to write (-1 for shortest exact)")

	for kind, name := range map[domain.StepKind]string{
		domain.StepNormalization:  "normalization",
		domain.StepTransformation: "transformation",
		domain.StepScaling:        "scaling",
	} {
		methods := processing.Methods(kind)
		_ = cmd.RegisterFlagCompletionFunc(name, func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
			return methods, cobra.ShellCompDirectiveNoFileComp
		})
	}

	return cmd
}

func (o *processOptions) check() error {
	for _, s := range []struct {
		kind   domain.StepKind
		method string
	}{
		{domain.StepNormalization, o.normalization},
		{domain.StepTransformation, o.transformation},
		{domain.StepScaling, o.scaling},
	} {
		if s.method != "" && !processing.Supported(s.kind, s.method) {
			return fmt.Errorf("%w: %s %q, expected one of %s", services.ErrInvalidMethod,
				s.kind, s.method, strings.Join(processing.Methods(s.kind), ", "))
		}
	}
	if o.precision < -1 {
		return fmt.Errorf("precision must be -1 or greater, got %d", o.precision)
	}
	return nil
}

func (o *processOptions) pipeline() processing.Pipeline {
	return processing.Pipeline{
		Normalization:  processing.Step{Method: o.normalization, Argument: o.normalizationArg},
		Transformation: processing.Step{Method: o.transformation, Argument: o.transformationArg},
		Scaling:        processing.Step{Method: o.scaling},
	}
}

func runProcess(cmd *cobra.Command, opts *processOptions, path string) error {
	e := envFrom(cmd)
	files := validation.NewFileValidator(e.logger, e.cfg.Upload.MaxBytes, e.cfg.Upload.AllowedExtensions)

	frame, imputed, err := services.ProcessFile(files, path, opts.pipeline())
	if err != nil {
		return err
	}

	writer := exporter.NewCSVWriter(e.logger)
	options := exporter.WriteOptions{Precision: &opts.precision}
	if opts.output == "" {
		err = writer.WriteFrame(cmd.OutOrStdout(), frame, options)
	} else {
		err = writer.WriteFrameFile(opts.output, frame, options)
	}
	if err != nil {
		return err
	}

	samples, measurements := frame.Dims()
	infrastructure.WithComponent(e.logger, "process").InfoContext(cmd.Context(), "table processed",
		slog.String("file", path),
		slog.Int("samples", samples),
		slog.Int("measurements", measurements),
		slog.Int("imputed", imputed))
	if imputed > 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "imputed %d missing values\n", imputed)
	}
	return nil
}

func methodHelp(kind domain.StepKind) string {
	return fmt.Sprintf("%s method (%s)", kind, strings.Join(processing.Methods(kind), "|"))
}
