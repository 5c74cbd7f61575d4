// Package catalogfile loads the bucket catalog from a TOML configuration
// file: an array of limits, each naming a bucket, its frequency unit, and
// its count.
package catalogfile

import (
	"fmt"

	"github.com/BurntSushi/toml"
	apperrors "github.com/samir-okafor/quotaguard/pkg/errors"
	"github.com/samir-okafor/quotaguard/pkg/ratelimit"
)

// limitEntry mirrors one element of the file's `limits` array.
type limitEntry struct {
	Bucket string `toml:"bucket"`
	Type   string `toml:"type"`
	Freq   uint32 `toml:"freq"`
}

type fileFormat struct {
	Limits []limitEntry `toml:"limits"`
}

// Load reads and parses the catalog file at path into a ratelimit.Catalog.
// A malformed file or an unrecognized frequency type is a fatal startup
// error (pkg/errors.CodeInvalidArgument), not a runtime one.
func Load(path string) (*ratelimit.Catalog, error) {
	var doc fileFormat
	if _, err := toml.DecodeFile(path, &doc); err != nil {
		return nil, apperrors.New(apperrors.CodeInvalidArgument, "config file unreadable or malformed", err)
	}

	entries := make([]ratelimit.LimitView, 0, len(doc.Limits))
	for _, e := range doc.Limits {
		unit, err := parseUnit(e.Type)
		if err != nil {
			return nil, apperrors.New(apperrors.CodeInvalidArgument, fmt.Sprintf("bucket %q: %s", e.Bucket, err), err)
		}
		entries = append(entries, ratelimit.LimitView{
			Bucket: e.Bucket,
			Freq:   ratelimit.Frequency{Unit: unit, Count: e.Freq},
		})
	}

	return ratelimit.NewCatalog(entries), nil
}

func parseUnit(s string) (ratelimit.Unit, error) {
	switch ratelimit.Unit(s) {
	case ratelimit.Secondly, ratelimit.Minutely, ratelimit.Hourly, ratelimit.Daily, ratelimit.Weekly, ratelimit.Monthly:
		return ratelimit.Unit(s), nil
	default:
		return "", fmt.Errorf("unrecognized frequency type %q", s)
	}
}
