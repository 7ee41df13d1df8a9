// Package catalog supplies the initial list of book titles the library
// service starts with.
package catalog

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"github.com/dmitrijs2005/librarian/internal/logging"
)

// ErrNoSource means no catalog source was configured.
var ErrNoSource = errors.New("no catalog source")

// Default is used whenever no catalog can be loaded.
var Default = []string{"Harry_Potter", "1984", "To_Kill_a_Mockingbird"}

// Loader returns catalog titles in the order they should be added.
type Loader interface {
	Load(ctx context.Context) ([]string, error)
}

// Load asks loader for the catalog and falls back to a copy of Default when
// loader is nil, fails, or returns no titles.
func Load(ctx context.Context, loader Loader, logger logging.Logger) []string {
	if loader == nil {
		logger.Info(ctx, "no catalog source configured, using default catalog")
		return defaults()
	}

	titles, err := loader.Load(ctx)
	if err != nil {
		logger.Warn(ctx, "catalog unavailable, using default catalog", "error", err)
		return defaults()
	}
	if len(titles) == 0 {
		logger.Warn(ctx, "catalog is empty, using default catalog")
		return defaults()
	}

	logger.Info(ctx, "catalog loaded", "titles", len(titles))
	return titles
}

func defaults() []string {
	out := make([]string, len(Default))
	copy(out, Default)
	return out
}

// Normalize makes titles addressable by a request line: inner whitespace
// becomes "_" and each title is cut to maxLen bytes, the same cut applied to
// request tokens. Blank titles are dropped. maxLen <= 0 means no limit.
// changed counts titles that were rewritten or dropped.
func Normalize(titles []string, maxLen int) (out []string, changed int) {
	out = make([]string, 0, len(titles))
	for _, t := range titles {
		n := strings.Join(strings.Fields(t), "_")
		if maxLen > 0 && len(n) > maxLen {
			n = n[:maxLen]
		}
		if n != t {
			changed++
		}
		if n != "" {
			out = append(out, n)
		}
	}
	return out, changed
}

// FromSource picks a loader for source: nil for an empty source, an
// S3Loader for s3://bucket/key, a FileLoader otherwise.
func FromSource(source string, s3cfg S3Config) (Loader, error) {
	switch {
	case source == "":
		return nil, nil
	case strings.HasPrefix(source, "s3://"):
		bucket, key, err := ParseS3URL(source)
		if err != nil {
			return nil, err
		}
		return NewS3Loader(s3cfg, bucket, key), nil
	default:
		return NewFileLoader(source), nil
	}
}

// Parse decodes a catalog document. Names ending in ".json" hold a JSON
// array of strings; anything else is one title per line, with blank lines
// and lines starting with "#" skipped. Titles are trimmed of surrounding
// whitespace.
func Parse(name string, r io.Reader) ([]string, error) {
	if strings.EqualFold(path.Ext(name), ".json") {
		var titles []string
		if err := jsoniter.ConfigCompatibleWithStandardLibrary.NewDecoder(r).Decode(&titles); err != nil {
			return nil, fmt.Errorf("decode catalog %s: %w", name, err)
		}

		out := titles[:0]
		for _, t := range titles {
			if t = strings.TrimSpace(t); t != "" {
				out = append(out, t)
			}
		}
		return out, nil
	}

	var titles []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		titles = append(titles, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", name, err)
	}
	return titles, nil
}
