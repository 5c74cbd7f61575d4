package ratelimit

// LimitView is an immutable, read-only view of a configured bucket.
type LimitView struct {
	Bucket string
	Freq   Frequency
}

// Catalog is an immutable, process-lifetime map from bucket name to its
// configured frequency. It is safe for concurrent reads by construction:
// nothing ever mutates it after NewCatalog returns.
type Catalog struct {
	limits map[string]Frequency
	all    []LimitView
}

// NewCatalog builds a Catalog from bucket configuration entries. Later
// entries for the same bucket name overwrite earlier ones.
func NewCatalog(entries []LimitView) *Catalog {
	limits := make(map[string]Frequency, len(entries))
	for _, e := range entries {
		limits[e.Bucket] = e.Freq
	}
	all := make([]LimitView, 0, len(limits))
	for bucket, freq := range limits {
		all = append(all, LimitView{Bucket: bucket, Freq: freq})
	}
	return &Catalog{limits: limits, all: all}
}

// BucketConfig returns the configured frequency for bucket, and whether it
// is configured at all.
func (c *Catalog) BucketConfig(bucket string) (Frequency, bool) {
	freq, ok := c.limits[bucket]
	return freq, ok
}

// All returns every configured bucket. Used by the cleanup worker to know
// which buckets to trim.
func (c *Catalog) All() []LimitView {
	return c.all
}
