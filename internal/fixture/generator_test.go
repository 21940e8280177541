package fixture

import (
	"context"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mathieuprog/tzdb-test/internal/metrics"
	"github.com/mathieuprog/tzdb-test/internal/resolver"
)

func readLines(t *testing.T, fsys afero.Fs, name string) []string {
	t.Helper()
	data, err := afero.ReadFile(fsys, name)
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(string(data), "\n"))
	return strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
}

func TestGeneratorRun(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/in/america", []byte("America/New_York;2024-03-10\nAmerica/New_York;2024-11-03\n"), 0o644))
	require.NoError(t, afero.WriteFile(fsys, "/in/europe", []byte("# one day\nEurope/Paris;2024-07-14\n"), 0o644))
	require.NoError(t, afero.WriteFile(fsys, "/out/stale.txt", []byte("old"), 0o644))
	require.NoError(t, afero.WriteFile(fsys, "/out/2024a/go/removed", []byte("old"), 0o644))

	m := metrics.New()
	g := NewGenerator(fsys, embeddedResolver(t), Options{
		InputDir:    "/in",
		OutputDir:   "/out",
		Clean:       true,
		Concurrency: 2,
	}, m, nil)

	sum, err := g.Run(context.Background(), "2024a")
	require.NoError(t, err)
	assert.Equal(t, "/out/2024a/go", sum.Dir)
	assert.Equal(t, 2, sum.Files)
	assert.Equal(t, 3, sum.Records)
	assert.Equal(t, map[resolver.Case]int{resolver.CaseOK: 96*3 - 8, resolver.CaseGap: 4, resolver.CaseAmbiguous: 4}, sum.Entries)

	exists, _ := afero.Exists(fsys, "/out/stale.txt")
	assert.False(t, exists)
	exists, _ = afero.Exists(fsys, "/out/2024a/go/removed")
	assert.False(t, exists)

	lines := readLines(t, fsys, "/out/2024a/go/america")
	require.Len(t, lines, 1+2*96)
	assert.Equal(t, "2024a", lines[0])
	assert.Equal(t, "America/New_York;2024-03-10T00:00:00;ok;2024-03-10T00:00:00-05:00;EST;2024-03-09T19:00:00-05:00;EST", lines[1])
	assert.Equal(t, "America/New_York;2024-03-10T02:00:00;gap;2024-03-10T01:59:59.999999-05:00;EST;2024-03-10T03:00:00-04:00;EDT;2024-03-09T21:00:00-05:00;EST", lines[9])
	assert.Equal(t, "America/New_York;2024-11-03T23:45:00;ok;2024-11-03T23:45:00-05:00;EST;2024-11-03T18:45:00-05:00;EST", lines[192])
	for _, line := range lines[1:] {
		_, err := ParseEntry(line)
		assert.NoError(t, err, line)
	}

	lines = readLines(t, fsys, "/out/2024a/go/europe")
	assert.Len(t, lines, 1+96)
}

func TestGeneratorFailsOnInvalidRecords(t *testing.T) {
	var tests = []struct {
		name  string
		input string
		check func(t *testing.T, err error)
	}{
		{
			name:  "malformed",
			input: "America/New_York;2024-13-01\n",
			check: func(t *testing.T, err error) {
				var mr *MalformedRecordError
				assert.True(t, errors.As(err, &mr), "%v", err)
			},
		},
		{
			name:  "unknown zone",
			input: "Mars/Olympus_Mons;2024-01-01\n",
			check: func(t *testing.T, err error) {
				var unknown *resolver.UnknownTimezoneError
				assert.True(t, errors.As(err, &unknown), "%v", err)
				assert.Contains(t, err.Error(), "line 1")
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fsys := afero.NewMemMapFs()
			require.NoError(t, afero.WriteFile(fsys, "/in/bad", []byte(tt.input), 0o644))
			g := NewGenerator(fsys, embeddedResolver(t), Options{InputDir: "/in", OutputDir: "/out"}, nil, nil)

			_, err := g.Run(context.Background(), "2024a")
			require.Error(t, err)
			tt.check(t, err)

			exists, _ := afero.Exists(fsys, "/out/2024a/go/bad")
			assert.False(t, exists)
		})
	}
}

func TestGeneratorSkipInvalid(t *testing.T) {
	fsys := afero.NewMemMapFs()
	input := "Mars/Olympus_Mons;2024-01-01\nnot a record\nAsia/Tokyo;2024-01-01\n"
	require.NoError(t, afero.WriteFile(fsys, "/in/mixed", []byte(input), 0o644))

	g := NewGenerator(fsys, embeddedResolver(t), Options{InputDir: "/in", OutputDir: "/out", SkipInvalid: true}, nil, nil)
	sum, err := g.Run(context.Background(), "2024a")
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Records)
	assert.Equal(t, 2, sum.Skipped)

	lines := readLines(t, fsys, "/out/2024a/go/mixed")
	require.Len(t, lines, 1+96)
	assert.True(t, strings.HasPrefix(lines[1], "Asia/Tokyo;2024-01-01T00:00:00;ok;2024-01-01T00:00:00+09:00;JST;"), lines[1])
}

func TestGeneratorRejectsUnsafeNames(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, fsys.MkdirAll("/in", 0o755))

	g := NewGenerator(fsys, embeddedResolver(t), Options{InputDir: "/in", OutputDir: "/out"}, nil, nil)
	for _, v := range []string{"", "..", "2024a/../../etc"} {
		_, err := g.Run(context.Background(), v)
		assert.Error(t, err, v)
	}

	g = NewGenerator(fsys, embeddedResolver(t), Options{InputDir: "/in", OutputDir: "/in/", Clean: true}, nil, nil)
	_, err := g.Run(context.Background(), "2024a")
	assert.Error(t, err)
}

func TestGeneratorCancelled(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/in/a", []byte("Asia/Tokyo;2024-01-01\n"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	g := NewGenerator(fsys, embeddedResolver(t), Options{InputDir: "/in", OutputDir: "/out"}, nil, nil)
	_, err := g.Run(ctx, "2024a")
	assert.ErrorIs(t, err, context.Canceled)
}
