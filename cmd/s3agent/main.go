// Command s3agent summarizes objects from a bucket with a completion model.
//
// Usage:
//
//	s3agent run   [-config file] [-env-file file] -bucket b -input-key k -output-key k
//	s3agent serve [-config file] [-env-file file] [-addr :8080]
//
// run performs a single invocation and prints the final state as JSON.
// serve exposes POST /invoke, POST /invocations and GET /ping.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/hupe1980/s3agent/config"
	"github.com/hupe1980/s3agent/core"
	"github.com/hupe1980/s3agent/server"
)

const usage = `usage: s3agent <command> [flags]

commands:
  run    run the pipeline once and print the final state
  serve  serve the pipeline over HTTP
`

var errUsage = errors.New("invalid usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return errUsage
	}

	switch args[0] {
	case "run":
		return runOnce(ctx, args[1:], stdout, stderr)
	case "serve":
		return serve(ctx, args[1:], stderr)
	case "help", "-h", "--help":
		fmt.Fprint(stdout, usage)
		return nil
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n%s", args[0], usage)
		return errUsage
	}
}

type commonFlags struct {
	configFile string
	envFile    string
}

func (c *commonFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&c.configFile, "config", "", "path to config.yml (searched when empty)")
	fs.StringVar(&c.envFile, "env-file", "", "path to .env (searched when empty)")
}

func (c *commonFlags) load() (*config.Config, error) {
	var opts []config.LoaderOption
	if c.configFile != "" {
		opts = append(opts, config.WithConfigFile(c.configFile))
	}
	if c.envFile != "" {
		opts = append(opts, config.WithEnvFile(c.envFile))
	}
	return config.Load(opts...)
}

func runOnce(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var common commonFlags
	common.register(fs)
	bucket := fs.String("bucket", "my-langgraph-bedrock-agent", "bucket holding input and output objects")
	inputKey := fs.String("input-key", "input/input.txt", "key of the object to summarize")
	outputKey := fs.String("output-key", "output/output.txt", "key the summary is written to")

	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	cfg, err := common.load()
	if err != nil {
		return err
	}

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.logger.StartTimer("run")()

	res, err := a.runner.Invoke(ctx, core.State{
		Bucket:    *bucket,
		InputKey:  *inputKey,
		OutputKey: *outputKey,
	})
	if err != nil {
		return fmt.Errorf("invocation %s: %w", res.InvocationID, err)
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(res.State.ToMap())
}

func serve(ctx context.Context, args []string, stderr io.Writer) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var common commonFlags
	common.register(fs)
	addr := fs.String("addr", "", "listen address (overrides server.addr)")

	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	cfg, err := common.load()
	if err != nil {
		return err
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}

	srv := server.New(a.runner, func(o *server.Options) {
		o.Addr = cfg.Server.Addr
		o.ReadTimeout = cfg.Server.ReadTimeout
		o.WriteTimeout = cfg.Server.WriteTimeout
		o.Logger = a.logger.WithComponent("server")
	})

	return srv.ListenAndServe(ctx)
}
