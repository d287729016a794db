package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// findMetricFamily はレジストリから指定名のメトリクスファミリーを探す。
func findMetricFamily(t *testing.T, reg *prometheus.Registry, name string) *dto.MetricFamily {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() == name {
			return mf
		}
	}
	t.Fatalf("%s metric not found", name)
	return nil
}

// labelValue はメトリクスから指定ラベルの値を取り出す。
func labelValue(m *dto.Metric, name string) string {
	for _, lp := range m.GetLabel() {
		if lp.GetName() == name {
			return lp.GetValue()
		}
	}
	return ""
}

// TestNewCollector_ReturnsNonNil はCollectorが正常に生成されることを検証する。
func TestNewCollector_ReturnsNonNil(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	if c == nil {
		t.Fatal("expected non-nil Collector")
	}
}

// TestRecordHTTPRequest_IncrementsCounterWithLabels はリクエストカウンタがラベル付きで増加することを検証する。
func TestRecordHTTPRequest_IncrementsCounterWithLabels(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordHTTPRequest("GET", "/inventory/{id}", 200, 10*time.Millisecond)
	c.RecordHTTPRequest("GET", "/inventory/{id}", 200, 20*time.Millisecond)
	c.RecordHTTPRequest("GET", "/myInventories", 401, time.Millisecond)

	mf := findMetricFamily(t, reg, "easystock_http_requests_total")
	if len(mf.GetMetric()) != 2 {
		t.Fatalf("expected 2 label sets, got %d", len(mf.GetMetric()))
	}

	for _, m := range mf.GetMetric() {
		route := labelValue(m, "route")
		val := m.GetCounter().GetValue()
		switch route {
		case "/inventory/{id}":
			if labelValue(m, "status_code") != "200" || val != 2 {
				t.Errorf("inventory: status=%s count=%v, want 200/2", labelValue(m, "status_code"), val)
			}
		case "/myInventories":
			if labelValue(m, "status_code") != "401" || val != 1 {
				t.Errorf("myInventories: status=%s count=%v, want 401/1", labelValue(m, "status_code"), val)
			}
		default:
			t.Errorf("unexpected route label %q", route)
		}
	}

	hist := findMetricFamily(t, reg, "easystock_http_request_duration_seconds")
	var samples uint64
	for _, m := range hist.GetMetric() {
		samples += m.GetHistogram().GetSampleCount()
	}
	if samples != 3 {
		t.Errorf("duration sample count = %d, want 3", samples)
	}
}

// TestRecordTokenIssued_IncrementsCounter はトークン発行カウンタが増加することを検証する。
func TestRecordTokenIssued_IncrementsCounter(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordTokenIssued()
	c.RecordTokenIssued()

	mf := findMetricFamily(t, reg, "easystock_tokens_issued_total")
	if val := mf.GetMetric()[0].GetCounter().GetValue(); val != 2 {
		t.Errorf("tokens_issued_total = %v, want 2", val)
	}
}

// TestRecordAuthFailure_IncrementsCounterWithReason は認証失敗が理由別に記録されることを検証する。
func TestRecordAuthFailure_IncrementsCounterWithReason(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordAuthFailure("missing_token")
	c.RecordAuthFailure("invalid_token")
	c.RecordAuthFailure("invalid_token")

	mf := findMetricFamily(t, reg, "easystock_auth_failures_total")
	got := map[string]float64{}
	for _, m := range mf.GetMetric() {
		got[labelValue(m, "reason")] = m.GetCounter().GetValue()
	}
	if got["missing_token"] != 1 || got["invalid_token"] != 2 {
		t.Errorf("auth failures = %v, want missing_token=1 invalid_token=2", got)
	}
}

// TestMetricsHandler_ReturnsPrometheusFormat は/metricsエンドポイントがPrometheus形式で返すことを検証する。
func TestMetricsHandler_ReturnsPrometheusFormat(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordHTTPRequest("POST", "/login", 200, 5*time.Millisecond)
	c.RecordTokenIssued()
	c.RecordAuthFailure("invalid_token")

	handler := Handler(reg)
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	body, _ := io.ReadAll(resp.Body)
	bodyStr := string(body)

	expectedMetrics := []string{
		"easystock_http_requests_total",
		"easystock_http_request_duration_seconds",
		"easystock_tokens_issued_total",
		"easystock_auth_failures_total",
	}

	for _, metric := range expectedMetrics {
		if !strings.Contains(bodyStr, metric) {
			t.Errorf("response body does not contain %q", metric)
		}
	}
}

// TestCollector_ImplementsMetricsCollectorInterface はCollectorがMetricsCollectorインターフェースを実装することを検証する。
func TestCollector_ImplementsMetricsCollectorInterface(t *testing.T) {
	reg := prometheus.NewRegistry()
	var _ MetricsCollector = NewCollector(reg)
}

// TestMultipleCollectors_IndependentRegistries は異なるレジストリで独立に動作することを検証する。
func TestMultipleCollectors_IndependentRegistries(t *testing.T) {
	reg1 := prometheus.NewRegistry()
	reg2 := prometheus.NewRegistry()
	c1 := NewCollector(reg1)
	c2 := NewCollector(reg2)

	c1.RecordTokenIssued()
	c2.RecordTokenIssued()
	c2.RecordTokenIssued()

	val1 := findMetricFamily(t, reg1, "easystock_tokens_issued_total").GetMetric()[0].GetCounter().GetValue()
	val2 := findMetricFamily(t, reg2, "easystock_tokens_issued_total").GetMetric()[0].GetCounter().GetValue()

	if val1 != 1 {
		t.Errorf("reg1 tokens_issued = %v, want 1", val1)
	}
	if val2 != 2 {
		t.Errorf("reg2 tokens_issued = %v, want 2", val2)
	}
}
