package main

import (
	"fmt"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/mathieuprog/tzdb-test/internal/fixture"
	"github.com/mathieuprog/tzdb-test/internal/metrics"
	"github.com/mathieuprog/tzdb-test/internal/resolver"
)

func newGenerateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write fixture files for every input file",
		Long: `generate reads every file of the input directory and writes one fixture file
of the same name to <output>/<tzdata version>/<runtime>/.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.generate(cmd)
		},
	}
	f := cmd.Flags()
	f.StringP("input", "i", "", "directory of timezone;date input files")
	f.StringP("output", "o", "", "root directory for generated fixtures")
	f.String("runtime", fixture.DefaultRuntime, "runtime name used as the last output directory")
	f.Duration("step", fixture.DefaultStep, "spacing of the ticks generated for each date")
	f.Bool("clean", true, "remove stale files from the output directories first")
	f.Bool("skip-invalid", false, "log and skip malformed records and unknown zones")
	f.IntP("concurrency", "j", 0, "number of input files processed in parallel")
	f.String("metrics-file", "", "write Prometheus metrics in textfile format to this path")
	return cmd
}

func (a *app) generate(cmd *cobra.Command) error {
	p, version, err := a.openProvider()
	if err != nil {
		return err
	}
	m := metrics.New()
	g := fixture.NewGenerator(afero.NewOsFs(), resolver.New(p), a.cfg.GeneratorOptions(), m, a.log)

	start := time.Now()
	sum, err := g.Run(cmd.Context(), version)
	if a.cfg.MetricsFile != "" {
		if werr := m.WriteTextfile(a.cfg.MetricsFile); werr != nil {
			a.log.Error("writing metrics", "path", a.cfg.MetricsFile, "error", werr)
		}
	}
	if err != nil {
		return err
	}
	a.log.Info("fixtures generated",
		"dir", sum.Dir,
		"files", sum.Files,
		"records", sum.Records,
		"skipped", sum.Skipped,
		"ok", sum.Entries[resolver.CaseOK],
		"gap", sum.Entries[resolver.CaseGap],
		"ambiguous", sum.Entries[resolver.CaseAmbiguous],
		"elapsed", time.Since(start))
	fmt.Fprintln(cmd.OutOrStdout(), sum.Dir)
	return nil
}
