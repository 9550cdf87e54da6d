// Package amf compiles ACES AMF (Academy Color Encoding Specification
// Metadata File) XML documents into an in-memory ocio.Config plus an Info
// summary. Compile is its only exported entry point; everything else in
// this package is the five internal components (router, intermediate
// model, resolver, builder, working-location reassembler) that Compile
// drives in sequence.
package amf

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/acescolor/amfcompile/amf/camera"
	"github.com/acescolor/amfcompile/observability"
	"github.com/acescolor/amfcompile/ocio"
)

// defaultReferenceConfig is the builtin reference config a compile falls
// back to when CompileOptions.ReferenceConfigPath is empty, per spec.md §6.
const defaultReferenceConfig = "studio-config-v2.1.0_aces-v1.3_ocio-v2.3"

// CompileOptions carries the ambient knobs around one Compile call: which
// reference config and camera mapping to resolve against, and where to
// send logs and trace spans. The zero value is a valid, fully-defaulted
// CompileOptions.
type CompileOptions struct {
	// ReferenceConfigPath, if set, loads a reference config from disk
	// instead of the builtin studio-config-v2.1.0_aces-v1.3_ocio-v2.3.
	ReferenceConfigPath string
	// CameraTablePath, if set, overrides the embedded eleven-entry
	// camera log-to-linear mapping table.
	CameraTablePath string
	Logger          observability.Logger
	Tracer          observability.Tracer
}

func (o CompileOptions) logger() observability.Logger {
	if o.Logger == nil {
		return observability.NopLogger{}
	}
	return o.Logger
}

func (o CompileOptions) tracer() observability.Tracer {
	if o.Tracer == nil {
		return observability.NopTracer()
	}
	return o.Tracer
}

// Compile parses the AMF document at amfPath, resolves it against a
// reference config, and builds the corresponding AMF config. info is
// populated in place with whatever was determined, even on failure — per
// spec.md §7, a non-nil error always means the returned config is nil and
// must not be used.
func Compile(ctx context.Context, amfPath string, info *Info, opts CompileOptions) (ocio.ReadOnlyConfig, error) {
	if info == nil {
		return nil, fmt.Errorf("amf: Compile requires a non-nil Info to populate")
	}

	logger := opts.logger()
	tracer := opts.tracer()
	ctx, span := tracer.StartSpan(ctx, "amf.Compile")
	defer span.Finish()
	start := time.Now()

	logger.Info("amf compile started", observability.String("path", amfPath))

	file, err := os.Open(amfPath)
	if err != nil {
		err = fmt.Errorf("amf: opening %q: %w", amfPath, err)
		span.SetError(err)
		return nil, err
	}
	defer file.Close()

	routerLog := func(event string, line int) {
		logger.Debug("amf router event", observability.String("event", event), observability.Int("line", line))
	}

	model, lineCount, err := parseAMF(file, routerLog)
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	logger.Info("amf intermediate model parsed",
		observability.Int(observability.MetricLookCount, len(model.looks)),
		observability.String("clipName", model.clipName()))

	ref, err := loadReferenceConfig(opts.ReferenceConfigPath)
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	cameraTable, err := camera.Load(opts.CameraTablePath)
	if err != nil {
		err = fmt.Errorf("amf: loading camera mapping table: %w", err)
		span.SetError(err)
		return nil, err
	}

	res := newResolver(ref, cameraTable)

	b, err := build(model, ref, res, amfPath, lineCount, logger)
	if b != nil {
		*info = *b.info
	}
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	if model.numLooksBeforeWorkingLocation != nil {
		logger.Info("reassembling working-location transform",
			observability.String(observability.MetricWorkingLocation, "true"),
			observability.Int("numLooksBeforeWorkingLocation", *model.numLooksBeforeWorkingLocation))
		span.SetTag(observability.MetricWorkingLocation, true)
		b.reassembleWorkingLocation()
	}

	if err := b.cfg.Validate(); err != nil {
		err = newCompileError(ErrKindInternalParse, lineCount, "built config failed validation: %w", err)
		span.SetError(err)
		return nil, err
	}

	if b.resolverMisses > 0 {
		logger.Warn("amf compile finished with unresolved references",
			observability.Int(observability.MetricResolverMiss, b.resolverMisses))
	}

	*info = *b.info
	duration := time.Since(start)
	span.SetTag(observability.MetricCompileDuration, duration.String())
	logger.Info("amf compile finished",
		observability.String("clipIdentifier", info.ClipIdentifier),
		observability.Int(observability.MetricLooksApplied, info.NumLooksApplied),
		observability.Int(observability.MetricColorSpaceCount, b.cfg.NumColorSpaces()),
		observability.Int64(observability.MetricCompileDuration, duration.Milliseconds()))
	return b.cfg, nil
}

func loadReferenceConfig(path string) (ocio.ReadOnlyConfig, error) {
	if path == "" {
		cfg, err := ocio.CreateFromBuiltin(defaultReferenceConfig)
		if err != nil {
			return nil, fmt.Errorf("amf: loading builtin reference config: %w", err)
		}
		return cfg, nil
	}
	cfg, err := ocio.CreateFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("amf: loading reference config %q: %w", path, err)
	}
	return cfg, nil
}
