// Package rules supplies timezone rule data to the resolver. A Provider
// turns an IANA identifier into a Zone backed by a *time.Location, and
// names the tzdata release the data comes from so fixtures can be pinned.
package rules

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	"4d63.com/tz"
	"github.com/golang/groupcache/lru"
	"github.com/pkg/errors"
	"github.com/spf13/afero"

	"github.com/mathieuprog/tzdb-test/rfc9636"
)

// Provider kinds accepted by Open.
const (
	KindSystem   = "system"
	KindEmbedded = "embedded"
	KindDir      = "dir"
)

// DefaultZoneDirs are the usual zoneinfo locations, in lookup order.
var DefaultZoneDirs = []string{
	"/usr/share/zoneinfo",
	"/usr/lib/zoneinfo",
	"/usr/share/lib/zoneinfo",
}

// ErrUnknownZone is wrapped by LoadZone when the identifier is not in the
// provider's data.
var ErrUnknownZone = errors.New("unknown time zone")

// Provider is the source of timezone rule data.
type Provider interface {
	Name() string
	LoadZone(name string) (*Zone, error)
	Version() (string, error)
}

// Options selects and configures a provider.
type Options struct {
	Kind string
	// Dir is the zoneinfo directory for KindDir. For KindSystem it is
	// searched first for the version file.
	Dir string
	// Version overrides version discovery.
	Version string
	// CacheSize is the number of loaded zones kept in memory; 0 disables
	// the cache.
	CacheSize int
}

// Open builds the provider described by opts. fsys is used for version
// discovery.
func Open(fsys afero.Fs, opts Options) (Provider, error) {
	var p Provider
	switch strings.ToLower(opts.Kind) {
	case "", KindSystem:
		dirs := DefaultZoneDirs
		if opts.Dir != "" {
			dirs = append([]string{opts.Dir}, dirs...)
		}
		p = &systemProvider{fs: fsys, dirs: dirs, version: opts.Version}
	case KindEmbedded:
		p = &embeddedProvider{version: opts.Version}
	case KindDir:
		if opts.Dir == "" {
			return nil, errors.New("dir provider needs a zoneinfo directory")
		}
		p = &dirProvider{fs: fsys, dir: opts.Dir, version: opts.Version}
	default:
		return nil, errors.Errorf("unknown rule provider %q", opts.Kind)
	}
	if opts.CacheSize > 0 {
		p = Cached(p, opts.CacheSize)
	}
	return p, nil
}

// systemProvider reads the host tzdata through time.LoadLocation, which
// honours the ZONEINFO environment variable.
type systemProvider struct {
	fs      afero.Fs
	dirs    []string
	version string
}

func (p *systemProvider) Name() string { return KindSystem }

func (p *systemProvider) LoadZone(name string) (*Zone, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, errors.Wrapf(ErrUnknownZone, "%s: %v", name, err)
	}
	return NewZone(name, loc), nil
}

func (p *systemProvider) Version() (string, error) {
	if p.version != "" {
		return p.version, nil
	}
	return DetectVersion(p.fs, p.dirs)
}

// embeddedProvider uses the zoneinfo copy compiled into 4d63.com/tz, which
// gives the same answers on every host. That copy carries no release name,
// so the version has to be configured.
type embeddedProvider struct {
	version string
}

func (p *embeddedProvider) Name() string { return KindEmbedded }

func (p *embeddedProvider) LoadZone(name string) (*Zone, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}
	loc, err := tz.LoadLocation(name)
	if err != nil {
		return nil, errors.Wrapf(ErrUnknownZone, "%s: %v", name, err)
	}
	return NewZone(name, loc), nil
}

func (p *embeddedProvider) Version() (string, error) {
	if p.version == "" {
		return "", errors.New("embedded rule data has no release name; set tzdata_version")
	}
	return p.version, nil
}

// dirProvider reads TZif files from one zoneinfo directory through the
// rfc9636 loader, which caps the file size, and hands them to the runtime.
type dirProvider struct {
	fs      afero.Fs
	dir     string
	version string
}

func (p *dirProvider) Name() string { return KindDir }

func (p *dirProvider) LoadZone(name string) (*Zone, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}
	data, err := rfc9636.LoadTzinfo(name, p.dir)
	if err != nil {
		return nil, errors.Wrapf(ErrUnknownZone, "%s: %v", name, err)
	}
	loc, err := time.LoadLocationFromTZData(name, data)
	if err != nil {
		return nil, errors.Wrapf(ErrUnknownZone, "%s: %v", name, err)
	}
	slog.Debug("loaded zoneinfo", "zone", name, "dir", p.dir, "bytes", len(data))
	return NewZone(name, loc), nil
}

func (p *dirProvider) Version() (string, error) {
	if p.version != "" {
		return p.version, nil
	}
	return DetectVersion(p.fs, []string{p.dir})
}

// checkName rejects identifiers that would silently resolve to a default:
// time.LoadLocation maps "" to UTC and "Local" to the host zone.
func checkName(name string) error {
	switch {
	case name == "", name == "Local":
		return errors.Wrapf(ErrUnknownZone, "%q", name)
	case strings.HasPrefix(name, "/"), strings.Contains(name, ".."):
		return errors.Wrapf(ErrUnknownZone, "%q is not a zone identifier", name)
	}
	return nil
}

type cachedProvider struct {
	Provider
	mu    sync.Mutex
	zones *lru.Cache
}

// Cached keeps up to size loaded zones of p in memory. The result is safe
// for concurrent use. Failed lookups are not cached.
func Cached(p Provider, size int) Provider {
	return &cachedProvider{Provider: p, zones: lru.New(size)}
}

func (c *cachedProvider) LoadZone(name string) (*Zone, error) {
	c.mu.Lock()
	if v, ok := c.zones.Get(name); ok {
		c.mu.Unlock()
		return v.(*Zone), nil
	}
	c.mu.Unlock()

	z, err := c.Provider.LoadZone(name)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.zones.Add(name, z)
	c.mu.Unlock()
	return z, nil
}
