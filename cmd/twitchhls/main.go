package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/k0kubun/pp"
	log "github.com/sirupsen/logrus"
	"github.com/wmw9/twitchhls"
)

const (
	VERSION      = "0.3"
	defaultLogin = "972tv"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("twitchhls", flag.ContinueOnError)
	fs.SetOutput(stderr)
	onlyURL := fs.Bool("u", false, "Print the signed manifest URL instead of the manifest")
	format := fs.String("o", "", "Print one variant instead of the manifest: json, text or pp")
	quality := fs.String("q", "best", "Variant to print with -o: best, worst or audio")
	timeout := fs.Duration("timeout", 0, "Overall deadline, 0 waits forever")
	verbose := fs.Bool("v", false, "Debug logging")
	envPath := fs.String("env", "", "Optional .env file with TWITCHHLS_* overrides, read only when set")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "twitchhls %v - Gets the m3u8 HTTP Live Streaming (HLS) master manifest of a live stream on twitch.tv\n", VERSION)
		fmt.Fprintf(stderr, "Usage: twitchhls [flags] [channel] (default %s)\n", defaultLogin)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() > 1 {
		fs.Usage()
		return 2
	}
	switch *format {
	case "", "json", "text", "pp":
	default:
		fmt.Fprintf(stderr, "unknown output format %q\n", *format)
		return 2
	}

	login := defaultLogin
	if fs.NArg() == 1 {
		login = fs.Arg(0)
	}

	logger := log.New()
	logger.SetOutput(stderr)
	if *verbose {
		logger.SetLevel(log.DebugLevel)
	}

	cfg, err := twitchhls.LoadConfig(*envPath)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	client, err := twitchhls.NewClient(cfg, twitchhls.WithLogger(logger))
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	ctx := context.Background()
	if *timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *timeout)
		defer cancel()
	}

	if *onlyURL {
		u, err := client.GetURL(ctx, login)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		fmt.Fprintln(stdout, u.String())
		return 0
	}

	manifest, err := client.Get(ctx, login)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	if *format == "" {
		fmt.Fprintln(stdout, manifest)
		return 0
	}

	if err := printVariant(stdout, login, manifest, *format, *quality); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	return 0
}

func printVariant(w io.Writer, login, manifest, format, quality string) error {
	variants, err := twitchhls.ParseVariants(manifest)
	if err != nil {
		return err
	}
	variant, err := twitchhls.SelectVariant(variants, quality)
	if err != nil {
		return err
	}
	out := twitchhls.NewOutput(login, quality, variant)

	switch format {
	case "json":
		js, err := out.AsJSON()
		if err != nil {
			return err
		}
		fmt.Fprintln(w, js)
	case "text":
		fmt.Fprintln(w, out.AsText())
	case "pp":
		if _, err := pp.Fprintln(w, out); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
	return nil
}
