// Command cachectl inspects and edits an omegacache keyspace from the command line.
//
//	cachectl [flags] get KEY
//	cachectl [flags] put KEY VALUE
//	cachectl [flags] del KEY...
//	cachectl [flags] exists KEY
//	cachectl [flags] count KEY...
//	cachectl [flags] put-if-absent KEY...
//	cachectl [flags] bloom-add KEY
//	cachectl [flags] bloom-contains KEY
//
// Settings come from -config, .env and OMEGA_CACHE_* variables.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/lcsk42/omegacache"
	"github.com/lcsk42/omegacache/autoconfig"
	"github.com/lcsk42/omegacache/codec"
	"github.com/lcsk42/omegacache/config"
	zaplog "github.com/lcsk42/omegacache/log/zap"
)

var errUsage = errors.New("usage: cachectl [flags] get|put|del|exists|count|put-if-absent|bloom-add|bloom-contains ARGS")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "cachectl:", err)
		if errors.Is(err, errUsage) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("cachectl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "Path to a YAML config file.")
	redisAddr := fs.String("redis", "", "Redis address; overrides the configured list.")
	ttl := fs.Duration("ttl", 0, "TTL for put; 0 uses the configured value timeout.")
	timeout := fs.Duration("timeout", 10*time.Second, "Deadline for the whole command.")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if fs.NArg() < 2 {
		return errUsage
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *redisAddr != "" {
		cfg.Redis.Addrs = []string{*redisAddr}
	}

	zl, err := newZap(cfg.Log.Level, stderr)
	if err != nil {
		return err
	}
	defer func() { _ = zl.Sync() }()

	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	comp, err := autoconfig.Build(ctx, cfg, nil)
	if err != nil {
		return err
	}
	defer comp.Close(ctx)

	cache, err := autoconfig.NewCache[string](comp, codec.String{},
		autoconfig.WithLogger[string](zaplog.New(zl)))
	if err != nil {
		return err
	}

	cmd, rest := fs.Arg(0), fs.Args()[1:]
	return dispatch(ctx, cache, comp, cmd, rest, *ttl, stdout)
}

func dispatch(ctx context.Context, cache omegacache.DistributedCache[string], comp *autoconfig.Components,
	cmd string, args []string, ttl time.Duration, out io.Writer) error {
	switch cmd {
	case "get":
		v, ok, err := cache.Get(ctx, args[0])
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(out, "(nil)")
			return nil
		}
		fmt.Fprintln(out, v)
	case "put":
		if len(args) != 2 {
			return errUsage
		}
		if err := cache.SafePut(ctx, args[0], args[1], ttl, comp.BloomFilter()); err != nil {
			return err
		}
		fmt.Fprintln(out, "OK")
	case "del":
		n, err := cache.DeleteMany(ctx, args)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, n)
	case "exists":
		ok, err := cache.HasKey(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(out, ok)
	case "count":
		n, err := cache.CountExistingKeys(ctx, args...)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, n)
	case "put-if-absent":
		ok, err := cache.PutIfAllAbsent(ctx, args)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, ok)
	case "bloom-add", "bloom-contains":
		if comp.Bloom == nil {
			return errors.New("bloom filter is disabled (set bloom_filter.enabled)")
		}
		if cmd == "bloom-add" {
			if err := comp.Bloom.Add(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintln(out, "OK")
			return nil
		}
		ok, err := comp.Bloom.Contains(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(out, ok)
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}
	return nil
}

func newZap(level string, w io.Writer) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(strings.ToLower(level))
	if err != nil {
		return nil, err
	}
	enc := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	return zap.New(zapcore.NewCore(enc, zapcore.AddSync(w), lvl)), nil
}
