package catalog

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/abelbrown/herbal/internal/otel"
)

// ErrUnsupportedSource is returned for locations and formats herbal cannot read.
var ErrUnsupportedSource = errors.New("unsupported catalog source")

// Source supplies catalog records. Fetch may be slow; it honors ctx.
type Source interface {
	Fetch(ctx context.Context) ([]Plant, error)
	String() string
}

// Options configures the sources built by Open.
type Options struct {
	Timeout time.Duration // HTTP timeout; 0 means 30s
	S3      S3Config
}

// Open returns the Source for location:
//
//	""                 built-in sample catalog
//	http(s)://...      HTTPSource
//	s3://bucket/key    S3Source
//	path.json|yaml|yml|xlsx|html  FileSource
func Open(location string, opts Options) (Source, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return Embedded(), nil
	}

	if u, err := url.Parse(location); err == nil {
		switch strings.ToLower(u.Scheme) {
		case "http", "https":
			return NewHTTPSource(location, opts.Timeout), nil
		case "s3":
			key := strings.TrimPrefix(u.Path, "/")
			if u.Host == "" || key == "" {
				return nil, fmt.Errorf("%w: s3 location needs bucket and key: %q", ErrUnsupportedSource, location)
			}
			return NewS3Source(u.Host, key, opts.S3), nil
		case "file":
			location = u.Path
		}
	}

	if FormatFor(location, "") == "" {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedSource, location)
	}
	return FileSource{Path: location}, nil
}

// Load fetches from src and normalizes the result. Duplicate names are
// dropped and returned so the caller can report them.
func Load(ctx context.Context, src Source) ([]Plant, []string, error) {
	plants, err := src.Fetch(ctx)
	if err != nil {
		return nil, nil, err
	}
	plants, dups := Normalize(plants)
	return plants, dups, nil
}

// LoadOrEmpty loads src and degrades any failure to an empty catalog. The
// failure and any dropped duplicates are reported through log.
func LoadOrEmpty(ctx context.Context, src Source, log *otel.Logger) []Plant {
	start := time.Now()
	plants, dups, err := Load(ctx, src)
	if err != nil {
		log.Emit(otel.Event{
			Level:  otel.LevelError,
			Kind:   otel.KindCatalogError,
			Comp:   "catalog",
			Source: src.String(),
			Err:    err.Error(),
		})
		return []Plant{}
	}
	for _, name := range dups {
		log.Emit(otel.Event{
			Level:  otel.LevelWarn,
			Kind:   otel.KindCatalogDuplicate,
			Comp:   "catalog",
			Source: src.String(),
			Plant:  name,
		})
	}
	log.Emit(otel.Event{
		Level:  otel.LevelInfo,
		Kind:   otel.KindCatalogLoad,
		Comp:   "catalog",
		Source: src.String(),
		Count:  len(plants),
		Dur:    time.Since(start),
	})
	return plants
}

// FileSource reads a catalog file; the format follows the extension.
type FileSource struct {
	Path string
}

func (s FileSource) Fetch(ctx context.Context) ([]Plant, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()

	format := FormatFor(s.Path, "")
	if format == "" {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedSource, s.Path)
	}
	return Decode(f, format)
}

func (s FileSource) String() string { return s.Path }

//go:embed plants.json
var embeddedPlants []byte

type embeddedSource struct{}

// Embedded returns the sample catalog compiled into the binary.
func Embedded() Source { return embeddedSource{} }

func (embeddedSource) Fetch(ctx context.Context) ([]Plant, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return Decode(bytes.NewReader(embeddedPlants), FormatJSON)
}

func (embeddedSource) String() string { return "embedded" }
