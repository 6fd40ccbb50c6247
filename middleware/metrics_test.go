package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"storefront-dashboard/metrics"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type recordingCloudWatch struct {
	names chan string
}

func (r *recordingCloudWatch) PutMetricData(_ context.Context, in *cloudwatch.PutMetricDataInput, _ ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error) {
	for _, d := range in.MetricData {
		r.names <- aws.ToString(d.MetricName)
	}
	return &cloudwatch.PutMetricDataOutput{}, nil
}

func collect(ch <-chan string, n int) []string {
	var out []string
	timeout := time.After(2 * time.Second)
	for len(out) < n {
		select {
		case name := <-ch:
			out = append(out, name)
		case <-timeout:
			return out
		}
	}
	return out
}

func TestMetrics(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cw := &recordingCloudWatch{names: make(chan string, 16)}

	r := gin.New()
	r.Use(Metrics(metrics.New(cw, "Dash", true), "dash"))
	r.GET("/ok", okHandler)
	r.GET("/fail", func(c *gin.Context) { c.Status(http.StatusBadGateway) })

	t.Run("Success records count and latency", func(t *testing.T) {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ok", nil))

		got := collect(cw.names, 2)
		assert.ElementsMatch(t, []string{metrics.MetricHTTPRequests, metrics.MetricHTTPLatency}, got)
	})

	t.Run("Server errors are counted", func(t *testing.T) {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/fail", nil))

		got := collect(cw.names, 4)
		assert.ElementsMatch(t, []string{
			metrics.MetricHTTPRequests, metrics.MetricHTTPLatency,
			metrics.MetricHTTPErrors, metrics.MetricHTTP5xx,
		}, got)
	})
}

func TestMetrics_DisabledPassesThrough(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Metrics(nil, "dash"))
	r.GET("/ok", okHandler)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ok", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
