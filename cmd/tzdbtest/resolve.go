package main

import (
	"fmt"

	"cloud.google.com/go/civil"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/mathieuprog/tzdb-test/internal/fixture"
	"github.com/mathieuprog/tzdb-test/internal/resolver"
)

func newResolveCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve ZONE WHEN...",
		Short: "Print fixture lines for a zone",
		Long: `resolve prints the fixture line of each WHEN in ZONE. WHEN is either a local
date-time such as 2024-03-10T02:30:00 or a date such as 2024-03-10, which
expands to every tick of that day.`,
		Example: "  tzdbtest resolve America/New_York 2024-03-10T02:30:00 2024-11-03",
		Args:    cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.resolve(cmd, args[0], args[1:])
		},
	}
	cmd.Flags().Duration("step", fixture.DefaultStep, "spacing of the ticks generated for a date")
	return cmd
}

func (a *app) resolve(cmd *cobra.Command, zone string, whens []string) error {
	p, _, err := a.openProvider()
	if err != nil {
		return err
	}
	r := resolver.New(p)
	out := cmd.OutOrStdout()

	for _, when := range whens {
		entries, err := a.resolveWhen(r, zone, when)
		if err != nil {
			return err
		}
		for _, e := range entries {
			fmt.Fprintln(out, fixture.FormatEntry(e))
		}
	}
	return nil
}

func (a *app) resolveWhen(r *resolver.Resolver, zone, when string) ([]resolver.Entry, error) {
	if d, err := civil.ParseDate(when); err == nil {
		return fixture.ResolveRecord(r, fixture.Record{Zone: zone, Date: d}, a.cfg.Step)
	}
	local, err := civil.ParseDateTime(when)
	if err != nil {
		return nil, errors.Errorf("%q is neither a date nor a local date-time", when)
	}
	e, err := r.Resolve(zone, local)
	if err != nil {
		return nil, err
	}
	return []resolver.Entry{e}, nil
}
