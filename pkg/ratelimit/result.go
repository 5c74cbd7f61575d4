package ratelimit

// ChargeResult is the engine's output for a single charge.
//
// Invariants: BlockedSecs is set iff Blocked is true iff CurrentCount is
// unset. ChargeSuccess is false only for a charge that arrived while the
// bucket was already blocked; the charge that first crosses the quota is
// recorded (ChargeSuccess true) and reported as Blocked. WindowStartMs and
// WindowEndMs are AsOfMs minus and plus one period, so WindowEnd -
// WindowStart equals twice WindowLengthSecs seconds.
type ChargeResult struct {
	Bucket           string
	BlockedSecs      uint32
	Blocked          bool
	ChargeSuccess    bool
	MaxQuota         uint32
	AsOfMs           int64
	WindowStartMs    int64
	WindowEndMs      int64
	WindowLengthSecs uint32
	CurrentCount     uint32
	HasCurrentCount  bool
}

// Decision is the label returned at the HTTP boundary.
type Decision string

const (
	DecisionOk       Decision = "ok"
	DecisionSlowDown Decision = "slow_down"
	DecisionStop     Decision = "stop"
	DecisionBlock    Decision = "block"
)

// slowDownThreshold is the fraction of max quota above which a charge that
// is still under quota is reported as SlowDown rather than Ok.
const slowDownThreshold = 0.9

// Derive computes the decision label for a ChargeResult, keeping the
// threshold logic outside the atomic store script so operators can retune it
// without touching the scripted path.
func (r ChargeResult) Derive() Decision {
	if r.Blocked {
		return DecisionBlock
	}
	if r.CurrentCount == r.MaxQuota {
		return DecisionStop
	}
	if float64(r.CurrentCount) > slowDownThreshold*float64(r.MaxQuota) {
		return DecisionSlowDown
	}
	return DecisionOk
}

// HTTPStatus returns the status code associated with the decision.
func (d Decision) HTTPStatus() int {
	if d == DecisionBlock {
		return 429
	}
	return 200
}
