package fixture

import (
	"bytes"
	"context"
	"log/slog"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"github.com/mathieuprog/tzdb-test/internal/metrics"
	"github.com/mathieuprog/tzdb-test/internal/resolver"
)

// DefaultRuntime names the output subdirectory of this generator, next to
// the fixtures other runtimes produce for the same tzdata version.
const DefaultRuntime = "go"

type Options struct {
	InputDir  string
	OutputDir string
	Runtime   string
	Step      time.Duration
	// Clean removes stale files from the output root and the target
	// directory before writing.
	Clean bool
	// SkipInvalid logs and drops malformed records and unknown zones
	// instead of failing the run.
	SkipInvalid bool
	// Concurrency is the number of input files processed at once.
	Concurrency int
}

// Summary counts what a run wrote.
type Summary struct {
	Dir     string
	Files   int
	Records int
	Skipped int
	Entries map[resolver.Case]int
}

func (s *Summary) add(o fileSummary) {
	s.Files++
	s.Records += o.records
	s.Skipped += o.skipped
	for c, n := range o.entries {
		s.Entries[c] += n
	}
}

type fileSummary struct {
	records int
	skipped int
	entries map[resolver.Case]int
}

// Generator turns the input directory into one fixture file per input
// file under <output>/<version>/<runtime>/.
type Generator struct {
	fs       afero.Fs
	resolver *resolver.Resolver
	opts     Options
	metrics  *metrics.Recorder
	log      *slog.Logger
}

// NewGenerator fills unset options with their defaults. m may be nil.
func NewGenerator(fsys afero.Fs, r *resolver.Resolver, opts Options, m *metrics.Recorder, log *slog.Logger) *Generator {
	if opts.Runtime == "" {
		opts.Runtime = DefaultRuntime
	}
	if opts.Step == 0 {
		opts.Step = DefaultStep
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	if log == nil {
		log = slog.Default()
	}
	return &Generator{fs: fsys, resolver: r, opts: opts, metrics: m, log: log}
}

// Run writes the fixtures for version, which becomes both a path element
// and the first line of every file.
func (g *Generator) Run(ctx context.Context, version string) (Summary, error) {
	if err := checkPathElement("version", version); err != nil {
		return Summary{}, err
	}
	if err := checkPathElement("runtime", g.opts.Runtime); err != nil {
		return Summary{}, err
	}
	if g.opts.Clean && path.Clean(g.opts.OutputDir) == path.Clean(g.opts.InputDir) {
		return Summary{}, errors.New("refusing to clean the input directory")
	}
	start := time.Now()
	dir := path.Join(g.opts.OutputDir, version, g.opts.Runtime)
	summary := Summary{Dir: dir, Entries: map[resolver.Case]int{}}

	inputs, err := g.inputFiles()
	if err != nil {
		return summary, err
	}
	if g.opts.Clean {
		if err := g.clean(g.opts.OutputDir); err != nil {
			return summary, err
		}
		if err := g.clean(dir); err != nil {
			return summary, err
		}
	}
	if err := g.fs.MkdirAll(dir, 0o755); err != nil {
		return summary, errors.Wrapf(err, "creating %s", dir)
	}
	g.log.Info("generating fixtures", "version", version, "inputs", len(inputs), "output", dir)

	var mu sync.Mutex
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(g.opts.Concurrency)
	for _, name := range inputs {
		name := name
		eg.Go(func() error {
			fileSum, err := g.generateFile(ctx, version, name, path.Join(dir, name))
			if err != nil {
				return errors.Wrapf(err, "input %s", name)
			}
			mu.Lock()
			summary.add(fileSum)
			mu.Unlock()
			return nil
		})
	}
	err = eg.Wait()
	g.metrics.Run(version, g.opts.Runtime, time.Since(start))
	return summary, err
}

func (g *Generator) inputFiles() ([]string, error) {
	infos, err := afero.ReadDir(g.fs, g.opts.InputDir)
	if err != nil {
		return nil, errors.Wrapf(err, "reading input directory %s", g.opts.InputDir)
	}
	var names []string
	for _, info := range infos {
		if info.IsDir() || strings.HasPrefix(info.Name(), ".") {
			continue
		}
		names = append(names, info.Name())
	}
	sort.Strings(names)
	return names, nil
}

// clean removes the regular files directly inside dir.
func (g *Generator) clean(dir string) error {
	infos, err := afero.ReadDir(g.fs, dir)
	if err != nil {
		if ok, _ := afero.DirExists(g.fs, dir); !ok {
			return nil
		}
		return errors.Wrapf(err, "reading %s", dir)
	}
	for _, info := range infos {
		if info.IsDir() {
			continue
		}
		p := path.Join(dir, info.Name())
		if err := g.fs.Remove(p); err != nil {
			return errors.Wrapf(err, "removing %s", p)
		}
		g.log.Debug("removed stale fixture", "path", p)
	}
	return nil
}

func (g *Generator) generateFile(ctx context.Context, version, name, out string) (fileSummary, error) {
	sum := fileSummary{entries: map[resolver.Case]int{}}

	f, err := g.fs.Open(path.Join(g.opts.InputDir, name))
	if err != nil {
		return sum, err
	}
	var skip func(error)
	if g.opts.SkipInvalid {
		skip = func(err error) {
			sum.skipped++
			g.metrics.Record(metrics.OutcomeSkipped)
			g.log.Warn("skipping record", "input", name, "error", err)
		}
	}
	records, err := ReadRecords(f, skip)
	f.Close()
	if err != nil {
		return sum, err
	}

	var buf bytes.Buffer
	buf.WriteString(version)
	buf.WriteByte('\n')
	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		entries, err := ResolveRecord(g.resolver, rec, g.opts.Step)
		if err != nil {
			var unknown *resolver.UnknownTimezoneError
			if g.opts.SkipInvalid && errors.As(err, &unknown) {
				skip(err)
				continue
			}
			return sum, err
		}
		for _, e := range entries {
			buf.WriteString(FormatEntry(e))
			buf.WriteByte('\n')
			sum.entries[e.Case]++
			g.metrics.Entry(e.Case.String())
		}
		sum.records++
		g.metrics.Record(metrics.OutcomeResolved)
	}

	if err := afero.WriteFile(g.fs, out, buf.Bytes(), 0o644); err != nil {
		return sum, errors.Wrapf(err, "writing %s", out)
	}
	g.metrics.File()
	g.log.Debug("wrote fixture", "path", out, "records", sum.records, "skipped", sum.skipped)
	return sum, nil
}

// ResolveRecord resolves every tick of rec's date, in order.
func ResolveRecord(r *resolver.Resolver, rec Record, step time.Duration) ([]resolver.Entry, error) {
	ticks, err := Ticks(rec.Date, step)
	if err != nil {
		return nil, err
	}
	entries := make([]resolver.Entry, 0, len(ticks))
	for _, local := range ticks {
		e, err := r.Resolve(rec.Zone, local)
		if err != nil {
			if rec.Line > 0 {
				return nil, errors.Wrapf(err, "line %d", rec.Line)
			}
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func checkPathElement(what, v string) error {
	if v == "" || v == "." || v == ".." || strings.ContainsAny(v, `/\`) {
		return errors.Errorf("%s %q is not usable as a directory name", what, v)
	}
	return nil
}
