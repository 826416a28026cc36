// Rangectl applies add and remove operations to a set of half-open integer
// intervals, or to a pool of IP addresses, and prints the resulting set.
//
//	rangectl --add 3-4 --add 10-17 --add 32-40 --remove 13-28
//	rangectl --script ops.yaml
//	rangectl --pool 10.0.0.0/24 --add 10.0.0.1-10.0.0.9 --remove 10.0.0.5-10.0.0.5
//
// Adds are applied before removes. Diagnostic messages are written to stderr.
package main

import (
	"fmt"
	"io"
	"net/netip"
	"os"

	"github.com/henderiw/intervalset/pkg/interval"
	"github.com/henderiw/intervalset/pkg/intervalset"
	"github.com/henderiw/intervalset/pkg/iprangeset"
	"github.com/henderiw/intervalset/pkg/script"
	"github.com/henderiw/intervalset/pkg/sink"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go4.org/netipx"
)

type options struct {
	script string
	pool   string
	add    []string
	remove []string
	debug  bool
}

func parseFlags(args []string) (options, error) {
	var o options

	fs := pflag.NewFlagSet("rangectl", pflag.ContinueOnError)
	fs.StringVar(&o.script, "script", "", "yaml file with the steps to run")
	fs.StringVar(&o.pool, "pool", "", "operate on ip addresses out of this prefix or range instead of integers")
	fs.StringArrayVar(&o.add, "add", nil, "interval to add, as 3-4 or \"[3, 4)\", or an ip range with --pool (repeatable)")
	fs.StringArrayVar(&o.remove, "remove", nil, "interval to remove, same format as --add (repeatable)")
	fs.BoolVar(&o.debug, "debug", false, "log every applied operation")

	if err := fs.Parse(args); err != nil {
		return o, err
	}
	if o.script != "" && o.pool != "" {
		return o, errors.New("--script can't be combined with --pool")
	}
	return o, nil
}

func newLogger(debug bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if debug {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	return cfg.Build()
}

func run(o options, out io.Writer, log *zap.Logger) error {
	if o.pool != "" {
		return runPool(o, out, log)
	}

	set := intervalset.New()

	if o.script != "" {
		fh, err := os.Open(o.script)
		if err != nil {
			return errors.Wrap(err, "opening script")
		}
		defer fh.Close()

		s, err := script.Load(fh)
		if err != nil {
			return errors.Wrapf(err, "loading %s", o.script)
		}
		log.Debug("script loaded", zap.String("path", o.script), zap.Int("steps", len(s.Steps)))

		if err := s.Run(set, sink.Writer(out)); err != nil {
			return errors.Wrapf(err, "running %s", o.script)
		}
	}

	for _, a := range o.add {
		i, err := interval.Parse(a)
		if err != nil {
			return errors.Wrapf(err, "--add %s", a)
		}
		if err := set.AddInterval(i); err != nil {
			return errors.Wrapf(err, "adding %s", i)
		}
		log.Debug("added", zap.Stringer("interval", i), zap.Int("size", set.Size()))
	}
	for _, rm := range o.remove {
		i, err := interval.Parse(rm)
		if err != nil {
			return errors.Wrapf(err, "--remove %s", rm)
		}
		if err := set.RemoveInterval(i); err != nil {
			return errors.Wrapf(err, "removing %s", i)
		}
		log.Debug("removed", zap.Stringer("interval", i), zap.Int("size", set.Size()))
	}

	set.Print(sink.Writer(out))
	return nil
}

func runPool(o options, out io.Writer, log *zap.Logger) error {
	pool, err := parsePool(o.pool)
	if err != nil {
		return err
	}
	set, err := iprangeset.New(pool)
	if err != nil {
		return err
	}

	for _, a := range o.add {
		r, err := iprangeset.ParseRange(a)
		if err != nil {
			return errors.Wrapf(err, "--add %s", a)
		}
		if err := set.AddRange(r); err != nil {
			return errors.Wrapf(err, "adding %s", r)
		}
		log.Debug("added", zap.Stringer("range", r), zap.Int("size", set.Size()))
	}
	for _, rm := range o.remove {
		r, err := iprangeset.ParseRange(rm)
		if err != nil {
			return errors.Wrapf(err, "--remove %s", rm)
		}
		if err := set.RemoveRange(r); err != nil {
			return errors.Wrapf(err, "removing %s", r)
		}
		log.Debug("removed", zap.Stringer("range", r), zap.Int("size", set.Size()))
	}

	set.Print(sink.Writer(out))
	return nil
}

// parsePool accepts a prefix (10.0.0.0/24) or an inclusive range
// (10.0.0.1-10.0.0.9).
func parsePool(s string) (netipx.IPRange, error) {
	if p, err := netip.ParsePrefix(s); err == nil {
		return netipx.RangeOfPrefix(p.Masked()), nil
	}
	r, err := netipx.ParseIPRange(s)
	if err != nil {
		return netipx.IPRange{}, fmt.Errorf("invalid pool %q: %w", s, err)
	}
	return r, nil
}

func main() {
	o, err := parseFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	log, err := newLogger(o.debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "can't create logger: %s\n", err)
		os.Exit(1)
	}
	defer log.Sync() //nolint:errcheck

	if err := run(o, os.Stdout, log); err != nil {
		log.Error("rangectl failed", zap.Error(err))
		log.Sync() //nolint:errcheck
		os.Exit(1)
	}
}
