package httpapi

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/samir-okafor/quotaguard/pkg/ratelimit"
	memstore "github.com/samir-okafor/quotaguard/pkg/ratelimit/store/adapters/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer() *Server {
	catalog := ratelimit.NewCatalog([]ratelimit.LimitView{
		{Bucket: "a", Freq: ratelimit.Frequency{Unit: ratelimit.Minutely, Count: 10}},
	})
	st := memstore.New()
	engine := ratelimit.NewEngine(catalog, st, ratelimit.NewStaticBlockPolicy(5*time.Second, 60*time.Second))
	return New(engine, slog.Default())
}

func doCharge(t *testing.T, s *Server, bucket string, amount uint32) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(chargeRequest{Amount: amount})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/buckets/"+bucket+"/charges", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)
	return rec
}

func TestPostCharge_UnderLimit(t *testing.T) {
	s := newTestServer()
	rec := doCharge(t, s, "a", 3)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "10", rec.Header().Get("RateLimit-Limit"))
	assert.Equal(t, "7", rec.Header().Get("RateLimit-Remaining"))
	assert.Equal(t, "10;w=60", rec.Header().Get("RateLimit-Policy"))
	assert.Equal(t, "60", rec.Header().Get("RateLimit-Reset"))
	assert.JSONEq(t, `"ok"`, rec.Body.String())
}

func TestPostCharge_UnknownBucket(t *testing.T) {
	s := newTestServer()
	rec := doCharge(t, s, "zzz", 1)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPostCharge_UnreasonableCost(t *testing.T) {
	s := newTestServer()
	rec := doCharge(t, s, "a", 1001)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPostCharge_CrossThresholdBlocks(t *testing.T) {
	s := newTestServer()

	rec := doCharge(t, s, "a", 9)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doCharge(t, s, "a", 1)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `"stop"`, rec.Body.String())
	assert.Equal(t, "0", rec.Header().Get("RateLimit-Remaining"))

	rec = doCharge(t, s, "a", 1)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.JSONEq(t, `"block"`, rec.Body.String())
	assert.Equal(t, "0", rec.Header().Get("RateLimit-Remaining"))
}
