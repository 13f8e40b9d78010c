package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashIPForLog(t *testing.T) {
	a := hashIPForLog("203.0.113.7")
	assert.Len(t, a, 12)
	assert.Equal(t, a, hashIPForLog("203.0.113.7"))
	assert.NotEqual(t, a, hashIPForLog("203.0.113.8"))
	assert.NotContains(t, a, "203")
}

func TestRequestLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var buf bytes.Buffer
	prev := Logger
	Logger = zerolog.New(&buf)
	t.Cleanup(func() { Logger = prev })

	r := gin.New()
	r.Use(RequestLogger())
	r.GET("/api/submissions", func(c *gin.Context) { c.Status(http.StatusOK) })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/submissions?x=1", nil))

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "/api/submissions", line["path"])
	assert.Equal(t, float64(http.StatusOK), line["status"])
	assert.Equal(t, "info", line["level"])

	buf.Reset()
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nowhere", nil))
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "unmatched", line["path"])
	assert.Equal(t, "warn", line["level"])
}

func TestMetricsMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(MetricsMiddleware())
	r.GET("/api/roster", func(c *gin.Context) { c.Status(http.StatusOK) })

	before := testutil.CollectAndCount(Metrics.RequestDuration)
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/roster", nil))

	assert.Equal(t, before+1, testutil.CollectAndCount(Metrics.RequestDuration))
	assert.Equal(t, float64(0), testutil.ToFloat64(Metrics.RequestsInFlight))
}
