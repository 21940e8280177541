package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/mathieuprog/tzdb-test/internal/rules"
	"github.com/mathieuprog/tzdb-test/posix/tzposix"
	"github.com/mathieuprog/tzdb-test/rfc9636"
)

// zoneJSON is one element of the zones --json output.
type zoneJSON struct {
	Name    string   `json:"Name"`
	HasDst  bool     `json:"HasDst"`
	Std     string   `json:"Std"`
	Dst     string   `json:"Dst,omitempty"`
	Aliases []string `json:"Aliases,omitempty"`
	Rules   string   `json:"Rules,omitempty"`
}

func newZonesCmd(a *app) *cobra.Command {
	var (
		year   int
		asJSON bool
		dump   bool
	)
	cmd := &cobra.Command{
		Use:   "zones",
		Short: "List the zones of the zoneinfo directories",
		Long: `zones walks the zoneinfo directories (--zoneinfo, or the usual system
locations) and lists every zone with its DST flag, aliases and POSIX TZ
footer described in words. Use it to pick the zones of an input file.
With --dump every zone is followed by its TZif local types and transitions.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.zones(cmd, year, asJSON, dump)
		},
	}
	cmd.Flags().IntVar(&year, "year", time.Now().Year(), "year whose January and July offsets are sampled")
	cmd.Flags().BoolVarP(&asJSON, "json", "j", false, "print the catalog as JSON")
	cmd.Flags().BoolVar(&dump, "dump", false, "dump the TZif content of every zone")
	return cmd
}

func (a *app) zones(cmd *cobra.Command, year int, asJSON, dump bool) error {
	dirs := rules.DefaultZoneDirs
	if a.cfg.ZoneinfoDir != "" {
		dirs = []string{a.cfg.ZoneinfoDir}
	}
	catalog, err := rules.BuildCatalog(dirs, year)
	if err != nil {
		return err
	}
	names := catalog.Names()
	out := cmd.OutOrStdout()

	if asJSON {
		list := make([]zoneJSON, 0, len(names))
		for _, name := range names {
			zi, _ := catalog.Lookup(name)
			std, dst, ruleDesc, err := tzposix.DecodeTZ(zi.Extend)
			if err != nil {
				slog.Error("DecodeTZ failure", "TZ", zi.Extend, "error", err)
			}
			list = append(list, zoneJSON{
				Name:    name,
				HasDst:  zi.HasDST(),
				Std:     std,
				Dst:     dst,
				Aliases: zi.Aliases,
				Rules:   ruleDesc,
			})
		}
		data, err := json.MarshalIndent(list, "", "  ")
		if err != nil {
			return errors.Wrap(err, "marshaling zones")
		}
		_, err = fmt.Fprintln(out, string(data))
		return err
	}

	keylen := 0
	for _, name := range names {
		keylen = max(keylen, len(name))
	}
	keylen += 3

	numAliases := 0
	for _, name := range names {
		zi, _ := catalog.Lookup(name)
		description, err := tzposix.HumanReadableTZ(zi.Extend)
		if err != nil {
			slog.Error("HumanReadableTZ failure", "extend", zi.Extend, "error", err)
		}
		fmt.Fprintf(out, "%-*s DST: %-3s %+v Extend %s\n", keylen, name, yesNo(zi.HasDST()), zi.Aliases, zi.Extend)
		if description != "" {
			fmt.Fprintln(out, description)
		}
		if dump {
			if raw, ok := catalog.Location(name); ok {
				rfc9636.DumpLocation(out, raw)
			}
		}
		numAliases += len(zi.Aliases)
	}
	a.log.Info("Statistics", "zoneinfos", len(names), "aliases", numAliases, "total", len(names)+numAliases)
	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
