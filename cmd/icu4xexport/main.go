// Command icu4xexport runs the C4 export/deduplication driver over a
// blob-backed data source, per spec.md §6 ("CLI surface (export
// tool)").
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"
	"github.com/jessevdk/go-flags"
	"gopkg.in/yaml.v2"

	"github.com/icu4x-go/corei18n/datakey"
	"github.com/icu4x-go/corei18n/export"
	"github.com/icu4x-go/corei18n/provider"
	"github.com/icu4x-go/corei18n/provider/blob"
)

const (
	exitOK          = 0
	exitBadArgs     = 2
	exitProvider    = 3
	exitSink        = 4
	exitDataGap     = 5
	defaultDataDir  = "./data"
	defaultBlobName = "data.blob"
)

type options struct {
	Markers  string `long:"markers" description:"marker paths: comma-separated list, @file.yaml, or \"all\"" required:"true"`
	Locales  string `long:"locales" description:"comma-separated locale families (see §3 grammar), or \"full\"" required:"true"`
	Format   string `long:"format" description:"output format" choice:"baked" choice:"blob" choice:"fs" default:"fs"`
	Fallback string `long:"fallback" description:"runtime fallback placement" choice:"internal" choice:"external" choice:"none" default:"external"`
	Dedup    string `long:"dedup" description:"deduplication strategy" choice:"maximal" choice:"retain-base" choice:"none" default:"maximal"`
	Out      string `long:"out" description:"output path (directory for baked/fs, file for blob)" required:"true"`
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	logger := hclog.New(&hclog.LoggerOptions{
		Name:   "icu4xexport",
		Level:  hclog.Info,
		Output: os.Stderr,
	})

	var opts options
	parser := flags.NewParser(&opts, flags.Default)
	parser.Usage = "--markers <list|@file|all> --locales <family>[,<family>...]|full --format baked|blob|fs --fallback internal|external|none --dedup maximal|retain-base|none --out <path>"
	if _, err := parser.ParseArgs(args); err != nil {
		if flags.WroteHelp(err) {
			return exitOK
		}
		logger.Error("bad arguments", "error", err)
		return exitBadArgs
	}

	markers, err := resolveMarkers(opts.Markers)
	if err != nil {
		logger.Error("bad --markers", "error", err)
		return exitBadArgs
	}

	families, err := resolveFamilies(opts.Locales)
	if err != nil {
		logger.Error("bad --locales", "error", err)
		return exitBadArgs
	}

	dedup, ok := export.ParseDedupStrategy(opts.Dedup)
	if !ok {
		logger.Error("bad --dedup", "value", opts.Dedup)
		return exitBadArgs
	}

	placement, err := parsePlacement(opts.Fallback)
	if err != nil {
		logger.Error("bad --fallback", "error", err)
		return exitBadArgs
	}

	src, err := openSource()
	if err != nil {
		logger.Error("failed to open data source", "error", err)
		return exitProvider
	}

	sink, err := openSink(opts.Format, opts.Out)
	if err != nil {
		logger.Error("failed to open sink", "error", err)
		return exitSink
	}

	driver := export.NewDriver(src, sink)
	driver.Dedup = dedup
	driver.Placement = placement
	driver.Logger = logger

	report, err := driver.Export(markers, families)
	if err != nil {
		return exitForError(logger, err)
	}

	for _, m := range report.Markers {
		logger.Info("exported marker", "marker", m.Marker.Path, "locales", m.ExportedLocales, "dropped", m.DroppedEntries, "bytes_saved", m.BytesSaved)
	}
	return exitOK
}

// openSource opens the filesystem-rooted blob that acts as this
// invocation's export.Source, per spec §6's ICU_DATA_DIR environment
// variable ("optional override for the default filesystem provider
// root").
func openSource() (*blob.Blob, error) {
	dir := os.Getenv("ICU_DATA_DIR")
	if dir == "" {
		dir = defaultDataDir
	}
	path := filepath.Join(dir, defaultBlobName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	b, err := blob.Open(data)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return b, nil
}

func openSink(format, out string) (export.Sink, error) {
	switch format {
	case "blob":
		f, err := os.Create(out)
		if err != nil {
			return nil, fmt.Errorf("create %s: %w", out, err)
		}
		return &closingBlobSink{BlobSink: export.NewBlobSink(1, f), f: f}, nil
	case "fs":
		return export.NewFilesystemSink(out, "postcard"), nil
	case "baked":
		return export.NewBakedSink(out, "bakeddata"), nil
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}
}

// closingBlobSink closes the underlying file once BlobSink.Close has
// finished writing to it.
type closingBlobSink struct {
	*export.BlobSink
	f *os.File
}

func (s *closingBlobSink) Close() error {
	if err := s.BlobSink.Close(); err != nil {
		_ = s.f.Close()
		return err
	}
	return s.f.Close()
}

func resolveMarkers(spec string) ([]datakey.Marker, error) {
	var paths []string
	switch {
	case spec == "all":
		out := make([]datakey.Marker, len(registry))
		copy(out, registry)
		return out, nil
	case strings.HasPrefix(spec, "@"):
		data, err := os.ReadFile(spec[1:])
		if err != nil {
			return nil, fmt.Errorf("read marker file %s: %w", spec[1:], err)
		}
		if err := yaml.Unmarshal(data, &paths); err != nil {
			return nil, fmt.Errorf("parse marker file %s: %w", spec[1:], err)
		}
	default:
		for _, p := range strings.Split(spec, ",") {
			if p = strings.TrimSpace(p); p != "" {
				paths = append(paths, p)
			}
		}
	}

	if len(paths) == 0 {
		return nil, errors.New("no markers given")
	}
	out := make([]datakey.Marker, 0, len(paths))
	for _, p := range paths {
		m, ok := lookupMarker(p)
		if !ok {
			return nil, fmt.Errorf("unregistered marker %q", p)
		}
		out = append(out, m)
	}
	return out, nil
}

func resolveFamilies(spec string) ([]export.Family, error) {
	if strings.EqualFold(spec, "full") {
		return []export.Family{export.FullFamily()}, nil
	}
	var out []export.Family
	for _, tok := range strings.Split(spec, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		f, err := export.ParseFamily(tok)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	if len(out) == 0 {
		return nil, errors.New("no locale families given")
	}
	return out, nil
}

func parsePlacement(s string) (export.FallbackPlacement, error) {
	switch s {
	case "internal":
		return export.PlacementInternal, nil
	case "external", "none":
		return export.PlacementExternal, nil
	default:
		return 0, fmt.Errorf("unknown fallback placement %q", s)
	}
}

// exitForError classifies the joined per-marker export error into the
// exit codes spec §6 documents: a missing marker/locale is a data gap
// (5); any other *provider.Error is a provider error (3); anything
// else (sink put/flush/close failures) is a sink error (4).
func exitForError(logger hclog.Logger, err error) int {
	logger.Error("export failed", "error", err)

	code := exitSink
	walkErrors(err, func(e error) {
		var pe *provider.Error
		if errors.As(e, &pe) {
			switch pe.Kind {
			case provider.MissingMarker, provider.MissingLocale:
				code = exitDataGap
			default:
				if code != exitDataGap {
					code = exitProvider
				}
			}
		}
	})
	return code
}

// walkErrors calls f for err and, if err is a *multierror.Error (as
// Driver.Export returns), for each of its wrapped causes.
func walkErrors(err error, f func(error)) {
	if merr, ok := err.(*multierror.Error); ok {
		for _, e := range merr.WrappedErrors() {
			walkErrors(e, f)
		}
		return
	}
	f(err)
	if u := errors.Unwrap(err); u != nil {
		walkErrors(u, f)
	}
}
