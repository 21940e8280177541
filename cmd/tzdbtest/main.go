// Command tzdbtest generates timezone conformance fixtures: for every
// "timezone;date" record of the input files it classifies each tick of the
// day as ok, gap or ambiguous and writes the offsets the rule data yields.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/mathieuprog/tzdb-test/internal/config"
	"github.com/mathieuprog/tzdb-test/internal/logging"
	"github.com/mathieuprog/tzdb-test/internal/rules"
)

// app carries what the subcommands share once the root has loaded the
// configuration.
type app struct {
	configFile string
	envFile    string
	logLevel   string

	cfg config.Config
	log *slog.Logger
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		logging.Fatal("tzdbtest failed", "error", err)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "tzdbtest",
		Short: "Generate timezone conformance fixtures",
		Long: `tzdbtest reads "timezone;date" records and, for every 15 minute tick of each
date, records whether the local time exists once, not at all (gap) or twice
(ambiguous), along with the offsets and abbreviations the tz rules give.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&a.configFile, "config", "c", "", "YAML configuration file")
	pf.StringVar(&a.envFile, "env-file", "", "dotenv file with TZDBTEST_* variables")
	pf.FuncP("loglevel", "l", "Set loglevel to trace, debug, info, warning, error or fatal", func(value string) error {
		if _, err := logging.ParseLevel(value); err != nil {
			return err
		}
		a.logLevel = value
		return nil
	})
	pf.String("log-format", "text", "log output format, text or json")
	pf.String("provider", rules.KindSystem, "rule data provider: system, embedded or dir")
	pf.String("zoneinfo", "", "zoneinfo directory for the dir provider")
	pf.String("tzdata-version", "", "tzdata release name, overrides discovery")

	root.AddCommand(
		newGenerateCmd(a),
		newResolveCmd(a),
		newZonesCmd(a),
		newVersionCmd(a),
	)
	return root
}

// setup loads the configuration, applies the flags the user set and
// installs the logger.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configFile, a.envFile, func(c *config.Config) error {
		if a.logLevel != "" {
			c.LogLevel = a.logLevel
		}
		return applyFlags(cmd.Flags(), c)
	})
	if err != nil {
		return err
	}

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	a.log, err = logging.Setup(cmd.ErrOrStderr(), level, cfg.LogFormat)
	if err != nil {
		return err
	}
	a.cfg = cfg
	logging.Trace("configuration", "config", cfg)
	return nil
}

// applyFlags copies the flags present on the command line into cfg. Flags
// left at their default do not override the file or the environment.
func applyFlags(fs *pflag.FlagSet, cfg *config.Config) error {
	var err error
	fs.Visit(func(f *pflag.Flag) {
		if err != nil {
			return
		}
		switch f.Name {
		case "log-format":
			cfg.LogFormat, err = fs.GetString(f.Name)
		case "provider":
			cfg.Provider, err = fs.GetString(f.Name)
		case "zoneinfo":
			cfg.ZoneinfoDir, err = fs.GetString(f.Name)
		case "tzdata-version":
			cfg.TZDataVersion, err = fs.GetString(f.Name)
		case "input":
			cfg.InputDir, err = fs.GetString(f.Name)
		case "output":
			cfg.OutputDir, err = fs.GetString(f.Name)
		case "runtime":
			cfg.Runtime, err = fs.GetString(f.Name)
		case "metrics-file":
			cfg.MetricsFile, err = fs.GetString(f.Name)
		case "step":
			cfg.Step, err = fs.GetDuration(f.Name)
		case "clean":
			cfg.Clean, err = fs.GetBool(f.Name)
		case "skip-invalid":
			cfg.SkipInvalid, err = fs.GetBool(f.Name)
		case "concurrency":
			cfg.Concurrency, err = fs.GetInt(f.Name)
		}
	})
	return err
}

// openProvider opens the configured rule provider and reads the tzdata
// version once.
func (a *app) openProvider() (rules.Provider, string, error) {
	p, err := rules.Open(afero.NewOsFs(), a.cfg.RuleOptions())
	if err != nil {
		return nil, "", err
	}
	version, err := p.Version()
	if err != nil {
		return nil, "", err
	}
	a.log.Debug("rule provider ready", "provider", p.Name(), "version", version)
	return p, version, nil
}
