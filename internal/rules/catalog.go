package rules

import (
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/pkg/errors"

	"github.com/mathieuprog/tzdb-test/rfc9636"
)

// LocalOffset is an abbreviation and its offset in seconds east of UTC.
type LocalOffset struct {
	Abbrev string
	Offset int
}

// ZoneInfo summarises one zoneinfo file.
type ZoneInfo struct {
	Name    string
	Aliases []string
	// Offsets[0] is standard time, Offsets[1] daylight time when the zone
	// observes DST in the catalog year.
	Offsets []LocalOffset
	Extend  string
}

func (zi ZoneInfo) HasDST() bool {
	return len(zi.Offsets) > 1
}

// Catalog is the set of zones found in zoneinfo directories.
type Catalog struct {
	year  int
	zones map[string]*ZoneInfo
	raw   map[string]*rfc9636.Location
}

// BuildCatalog walks dirs and records every TZif file under a capitalized
// path. Symlinked files are recorded as aliases of their target. Offsets
// are sampled on January 1 and July 1 of year.
func BuildCatalog(dirs []string, year int) (*Catalog, error) {
	c := &Catalog{
		year:  year,
		zones: make(map[string]*ZoneInfo),
		raw:   make(map[string]*rfc9636.Location),
	}
	found := false
	for _, dir := range dirs {
		root, err := filepath.Abs(dir)
		if err != nil {
			return nil, errors.Wrapf(err, "zoneinfo directory %s", dir)
		}
		if _, err := os.Stat(root); err != nil {
			slog.Debug("zoneinfo directory is not available", "path", root)
			continue
		}
		found = true
		c.walk(root, "")
	}
	if !found {
		return nil, errors.Errorf("no zoneinfo directory among %s", strings.Join(dirs, ", "))
	}
	return c, nil
}

// Names returns the canonical zone names, sorted.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.zones))
	for name := range c.zones {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (c *Catalog) Lookup(name string) (ZoneInfo, bool) {
	zi, ok := c.zones[name]
	if !ok {
		return ZoneInfo{}, false
	}
	return *zi, true
}

// Location returns the parsed TZif content of a canonical zone.
func (c *Catalog) Location(name string) (*rfc9636.Location, bool) {
	raw, ok := c.raw[name]
	return raw, ok
}

// capitalized filters out "posix", "right", "posixrules", "localtime" and
// the other lowercase helpers that live next to the zone files.
func capitalized(name string) bool {
	r := []rune(name)
	return len(r) > 0 && unicode.IsUpper(r[0])
}

func (c *Catalog) walk(root, rel string) {
	entries, err := os.ReadDir(filepath.Join(root, rel))
	if err != nil {
		slog.Debug("cannot read zoneinfo directory", "path", filepath.Join(root, rel), "error", err)
		return
	}
	for _, entry := range entries {
		if !capitalized(entry.Name()) {
			continue
		}
		name := filepath.ToSlash(filepath.Join(rel, entry.Name()))
		if entry.IsDir() {
			c.walk(root, name)
			continue
		}
		data, err := rfc9636.LoadTzinfo(name, root)
		if err != nil {
			slog.Debug("cannot read zoneinfo file", "file", name, "error", err)
			continue
		}
		raw, err := rfc9636.LoadLocationFromTZData(name, data)
		if err != nil {
			slog.Debug("file is not a timezone file", "file", name)
			continue
		}

		if entry.Type()&os.ModeSymlink != 0 {
			target, err := c.aliasTarget(root, name)
			if err != nil {
				slog.Error("cannot resolve zoneinfo alias", "path", name, "error", err)
				continue
			}
			if target != name {
				slog.Debug("timezone has alias", "timezone", target, "alias", name)
				c.addAlias(target, name)
				continue
			}
		}
		if err := c.add(name, data, raw); err != nil {
			slog.Error("cannot load zoneinfo", "timezone", name, "error", err)
		}
	}
}

func (c *Catalog) aliasTarget(root, name string) (string, error) {
	resolved, err := filepath.EvalSymlinks(filepath.Join(root, name))
	if err != nil {
		return "", err
	}
	realRoot, err := filepath.EvalSymlinks(root)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(realRoot, resolved)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", errors.Errorf("%s points outside %s", name, root)
	}
	return filepath.ToSlash(rel), nil
}

func (c *Catalog) entry(name string) *ZoneInfo {
	zi, ok := c.zones[name]
	if !ok {
		zi = &ZoneInfo{Name: name}
		c.zones[name] = zi
	}
	return zi
}

func (c *Catalog) addAlias(zone, alias string) {
	zi := c.entry(zone)
	index, found := slices.BinarySearch(zi.Aliases, alias)
	if !found {
		zi.Aliases = slices.Insert(zi.Aliases, index, alias)
	}
}

func (c *Catalog) add(name string, data []byte, raw *rfc9636.Location) error {
	loc, err := time.LoadLocationFromTZData(name, data)
	if err != nil {
		return err
	}

	winter := time.Date(c.year, time.January, 1, 0, 0, 0, 0, loc)
	summer := time.Date(c.year, time.July, 1, 0, 0, 0, 0, loc)
	wName, wOff := winter.Zone()
	sName, sOff := summer.Zone()

	c.raw[name] = raw
	zi := c.entry(name)
	zi.Extend = raw.Extend()
	switch {
	case wOff == sOff:
		zi.Offsets = []LocalOffset{{wName, wOff}}
	case winter.IsDST():
		// Southern hemisphere: January is the daylight half.
		zi.Offsets = []LocalOffset{{sName, sOff}, {wName, wOff}}
	default:
		zi.Offsets = []LocalOffset{{wName, wOff}, {sName, sOff}}
	}
	return nil
}
