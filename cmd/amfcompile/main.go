package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/acescolor/amfcompile/amf"
	"github.com/acescolor/amfcompile/observability"
)

type options struct {
	amfPath    string
	refConfig  string
	cameraPath string
	verbose    bool
}

func main() {
	opts, err := parseFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "amfcompile: %v\n", err)
		os.Exit(2)
	}
	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "amfcompile: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags() (options, error) {
	var opts options
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: amfcompile [flags] <amf-file>\n")
		flag.PrintDefaults()
	}
	refConfig := flag.String("ref-config", "", "Path to a reference OCIO config (defaults to the builtin studio config)")
	cameraPath := flag.String("camera-table", "", "Path to a camera log-to-linear mapping table (defaults to the builtin table)")
	verbose := flag.Bool("v", false, "Log router state transitions at debug level")
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		return options{}, fmt.Errorf("missing amf file")
	}
	opts.amfPath = flag.Arg(0)
	opts.refConfig = *refConfig
	opts.cameraPath = *cameraPath
	opts.verbose = *verbose
	return opts, nil
}

func run(opts options) error {
	level := slog.LevelInfo
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := observability.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	var info amf.Info
	_, err := amf.Compile(context.Background(), opts.amfPath, &info, amf.CompileOptions{
		ReferenceConfigPath: opts.refConfig,
		CameraTablePath:     opts.cameraPath,
		Logger:              logger,
	})
	if err != nil {
		return fmt.Errorf("compile %q: %w", opts.amfPath, err)
	}

	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	fmt.Println(string(data))
	return nil
}
