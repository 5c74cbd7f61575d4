package ratelimit

import "github.com/samir-okafor/quotaguard/pkg/errors"

const maxCost = 1000

// ErrUnknownBucket is returned when a charge names a bucket the catalog has
// no configuration for.
func ErrUnknownBucket(bucket string) error {
	return errors.NotFound("unknown bucket: "+bucket, nil)
}

// ErrUnreasonableCost is returned when a charge's cost exceeds maxCost.
func ErrUnreasonableCost(cost uint32) error {
	return errors.InvalidArgument("cost exceeds maximum allowed charge", nil)
}
