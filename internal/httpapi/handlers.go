package httpapi

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	apperrors "github.com/samir-okafor/quotaguard/pkg/errors"
	"github.com/samir-okafor/quotaguard/pkg/ratelimit"
)

// postCharge handles POST /api/v1/buckets/:bucket/charges.
func (s *Server) postCharge(c echo.Context) error {
	bucket := c.Param("bucket")

	var req chargeRequest
	if err := c.Bind(&req); err != nil {
		return writeError(c, apperrors.InvalidArgument("malformed request body", err))
	}

	result, err := s.engine.Charge(c.Request().Context(), bucket, req.Amount)
	if err != nil {
		return writeError(c, err)
	}

	decision := result.Derive()
	setRateLimitHeaders(c, result)
	return c.JSON(decision.HTTPStatus(), decision)
}

func setRateLimitHeaders(c echo.Context, r ratelimit.ChargeResult) {
	remaining := uint32(0)
	if !r.Blocked {
		remaining = r.MaxQuota - r.CurrentCount
	}

	h := c.Response().Header()
	h.Set("RateLimit-Limit", fmt.Sprintf("%d", r.MaxQuota))
	h.Set("RateLimit-Remaining", fmt.Sprintf("%d", remaining))
	h.Set("RateLimit-Policy", fmt.Sprintf("%d;w=%d", r.MaxQuota, r.WindowLengthSecs))
	h.Set("RateLimit-Reset", fmt.Sprintf("%d", r.WindowLengthSecs))
}

// writeError maps an engine error to its HTTP status via pkg/errors and
// writes a minimal JSON body.
func writeError(c echo.Context, err error) error {
	status := apperrors.HTTPStatus(err)
	if status == 0 {
		status = http.StatusInternalServerError
	}
	return c.JSON(status, map[string]string{"error": err.Error()})
}
