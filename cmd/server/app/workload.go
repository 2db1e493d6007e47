package app

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"

	"kubemin-workload/cmd/server/app/options"
	"kubemin-workload/pkg/apiserver/domain/service"
	"kubemin-workload/pkg/apiserver/domain/spec"
	apisv1 "kubemin-workload/pkg/apiserver/interfaces/api/dto/v1"
	"kubemin-workload/pkg/apiserver/utils/manifest"
)

const stdinFilename = "-"

type compileOptions struct {
	*options.ServerRunOptions
	filename       string
	kind           string
	output         string
	skipValidation bool
}

func newCompileCommand() *cobra.Command {
	o := &compileOptions{ServerRunOptions: options.NewServerRunOptions(), filename: stdinFilename, output: apisv1.FormatYAML}
	cmd := &cobra.Command{
		Use:   "compile",
		Short: "Compile a workload config into a manifest",
		Example: `  kubemin-workload compile -f web.yaml --kind Rollout
  cat web.json | kubemin-workload compile -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run(cmd)
		},
	}
	fs := cmd.Flags()
	fs.StringVarP(&o.filename, "filename", "f", o.filename, "Config file in YAML or JSON; - reads stdin.")
	fs.StringVar(&o.kind, "kind", "", "Workload kind; overrides the kind field of the config.")
	fs.StringVarP(&o.output, "output", "o", o.output, "Output format: yaml or json.")
	fs.BoolVar(&o.skipValidation, "skip-validation", false, "Compile without validating the config first.")
	for _, set := range o.CompilerFlags().FlagSets {
		fs.AddFlagSet(set)
	}
	return cmd
}

func (o *compileOptions) run(cmd *cobra.Command) error {
	if err := checkOutput(o.output); err != nil {
		return err
	}
	data, err := readInput(cmd, o.filename)
	if err != nil {
		return err
	}
	var cfg spec.WorkloadConfig
	if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
		return fmt.Errorf("parse workload config: %w", err)
	}

	ctx := cmd.Context()
	svc := service.NewWorkloadService(*o.GenericServerRunOptions)
	if !o.skipValidation {
		if result := svc.Validate(ctx, o.kind, &cfg); !result.Valid {
			for _, e := range result.Errors {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s [%s]\n", e.Field, e.Message, e.Code)
			}
			return fmt.Errorf("workload config is invalid: %d error(s)", len(result.Errors))
		}
	}
	resp, err := svc.Compile(ctx, apisv1.CompileWorkloadRequest{Kind: o.kind, Config: cfg})
	if err != nil {
		return err
	}
	if o.output == apisv1.FormatYAML {
		_, err = io.WriteString(cmd.OutOrStdout(), resp.YAML)
		return err
	}
	return writeJSON(cmd.OutOrStdout(), resp.Manifest)
}

type decompileOptions struct {
	*options.ServerRunOptions
	filename string
	output   string
}

func newDecompileCommand() *cobra.Command {
	o := &decompileOptions{ServerRunOptions: options.NewServerRunOptions(), filename: stdinFilename, output: apisv1.FormatYAML}
	cmd := &cobra.Command{
		Use:   "decompile",
		Short: "Recover workload configs from manifests",
		Long: `Recover the workload config of every document in a manifest file. Documents
are decompiled in order; the first unrecognizable one stops the command.`,
		Example: `  kubemin-workload decompile -f deploy.yaml -o json`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run(cmd)
		},
	}
	fs := cmd.Flags()
	fs.StringVarP(&o.filename, "filename", "f", o.filename, "Manifest file in YAML or JSON, may hold several documents; - reads stdin.")
	fs.StringVarP(&o.output, "output", "o", o.output, "Output format: yaml or json.")
	for _, set := range o.CompilerFlags().FlagSets {
		fs.AddFlagSet(set)
	}
	return cmd
}

func (o *decompileOptions) run(cmd *cobra.Command) error {
	if err := checkOutput(o.output); err != nil {
		return err
	}
	data, err := readInput(cmd, o.filename)
	if err != nil {
		return err
	}
	docs, err := manifest.Decode(data)
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		return manifest.ErrNoDocument
	}

	svc := service.NewWorkloadService(*o.GenericServerRunOptions)
	configs := make([]*spec.WorkloadConfig, 0, len(docs))
	for i, doc := range docs {
		resp, err := svc.Decompile(cmd.Context(), apisv1.DecompileWorkloadRequest{Manifest: doc})
		if err != nil {
			return fmt.Errorf("document %d: %w", i, err)
		}
		configs = append(configs, resp.Config)
	}

	out := cmd.OutOrStdout()
	if o.output == apisv1.FormatJSON {
		if len(configs) == 1 {
			return writeJSON(out, configs[0])
		}
		return writeJSON(out, configs)
	}
	for i, cfg := range configs {
		text, err := yaml.Marshal(cfg)
		if err != nil {
			return err
		}
		if i > 0 {
			if _, err := io.WriteString(out, "---\n"); err != nil {
				return err
			}
		}
		if _, err := out.Write(text); err != nil {
			return err
		}
	}
	return nil
}

func newKindsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "kinds",
		Short: "List the supported workload kinds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := service.NewWorkloadService(*options.NewServerRunOptions().GenericServerRunOptions)
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "KIND\tAPIVERSION\tREPLICAS\tBATCH")
			for _, k := range svc.ListKinds(cmd.Context()).Kinds {
				fmt.Fprintf(w, "%s\t%s\t%t\t%t\n", k.Kind, k.APIVersion, k.HasReplicas, k.Batch)
			}
			return w.Flush()
		},
	}
}

func checkOutput(format string) error {
	switch format {
	case apisv1.FormatYAML, apisv1.FormatJSON:
		return nil
	}
	return fmt.Errorf("unsupported output format %q, want %s or %s", format, apisv1.FormatYAML, apisv1.FormatJSON)
}

func readInput(cmd *cobra.Command, filename string) ([]byte, error) {
	if filename == stdinFilename {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(string(data)) == "" {
		return nil, fmt.Errorf("%s is empty", filename)
	}
	return data, nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
