package httpapi

// chargeRequest is the JSON body of POST /api/v1/buckets/{bucket}/charges.
//
// Amount's upper bound (1000) is enforced by the decision engine, not here.
// A body that fails to bind is rejected by the handler before the engine is
// called; both cases are answered with 400.
type chargeRequest struct {
	Amount uint32 `json:"amount"`
}
