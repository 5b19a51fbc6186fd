package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_ObserveEmployeeWrite(t *testing.T) {
	t.Parallel()

	m := New()
	m.ObserveEmployeeWrite("create", nil)
	m.ObserveEmployeeWrite("create", nil)
	m.ObserveEmployeeWrite("create", errors.New("boom"))

	if got := testutil.ToFloat64(m.EmployeeWrites.WithLabelValues("create", "success")); got != 2 {
		t.Fatalf("expected 2 successful creates, got %v", got)
	}
	if got := testutil.ToFloat64(m.EmployeeWrites.WithLabelValues("create", "error")); got != 1 {
		t.Fatalf("expected 1 failed create, got %v", got)
	}
}

func TestMetrics_HandlerExposesRequests(t *testing.T) {
	t.Parallel()

	m := New()
	m.ObserveRequest("/empleados", http.MethodGet, http.StatusOK, 15*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), `hr_records_http_requests_total{code="200",method="GET",route="/empleados"} 1`) {
		t.Fatalf("expected request counter in exposition, got:\n%s", body)
	}
}

func TestMetrics_NilSafe(t *testing.T) {
	t.Parallel()

	var m *Metrics
	m.ObserveRequest("/", http.MethodGet, http.StatusOK, time.Millisecond)
	m.ObserveEmployeeWrite("delete", nil)
}
