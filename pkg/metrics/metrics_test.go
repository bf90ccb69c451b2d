package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// TestInitMetrics 测试指标初始化
func TestInitMetrics(t *testing.T) {
	InitMetrics()
	InitMetrics() // 重复调用不应panic（重复注册）

	if !Enabled() {
		t.Fatal("InitMetrics之后应为已启用")
	}
	if HTTPRequestsTotal == nil || OrderWorkflowTotal == nil || TxRetriesTotal == nil {
		t.Error("指标未初始化")
	}

	t.Log("✅ 所有指标初始化成功")
}

// TestRecordOrderWorkflow 测试订单流程指标
func TestRecordOrderWorkflow(t *testing.T) {
	InitMetrics()

	RecordOrderWorkflow("place", "success", 0.02)
	RecordOrderWorkflow("place", "success", 0.03)
	RecordOrderWorkflow("place", "RESERVING", 0.01)

	success := getCounterVecValue(t, OrderWorkflowTotal, map[string]string{"operation": "place", "result": "success"})
	if success != 2 {
		t.Errorf("成功次数错误: expected=2, got=%f", success)
	}
	failed := getCounterVecValue(t, OrderWorkflowTotal, map[string]string{"operation": "place", "result": "RESERVING"})
	if failed != 1 {
		t.Errorf("失败次数错误: expected=1, got=%f", failed)
	}

	count := getHistogramVecCount(t, OrderWorkflowDuration, map[string]string{"operation": "place"})
	if count != 3 {
		t.Errorf("耗时观测次数错误: expected=3, got=%d", count)
	}

	t.Log("✅ 订单流程指标测试通过")
}

// TestRecordTxRetry 测试事务重试计数
func TestRecordTxRetry(t *testing.T) {
	InitMetrics()

	before := getCounterValue(t, TxRetriesTotal)
	RecordTxRetry()
	RecordTxRetry()
	if got := getCounterValue(t, TxRetriesTotal); got != before+2 {
		t.Errorf("重试次数错误: expected=%f, got=%f", before+2, got)
	}

	t.Log("✅ 事务重试指标测试通过")
}

// TestTrackInProgress 测试处理中请求数
func TestTrackInProgress(t *testing.T) {
	InitMetrics()
	HTTPRequestsInProgress.Set(0)

	done1 := TrackInProgress()
	done2 := TrackInProgress()
	if v := getGaugeValue(t, HTTPRequestsInProgress); v != 2 {
		t.Errorf("Gauge递增后值错误: expected=2, got=%f", v)
	}

	done1()
	done2()
	if v := getGaugeValue(t, HTTPRequestsInProgress); v != 0 {
		t.Errorf("Gauge递减后值错误: expected=0, got=%f", v)
	}

	t.Log("✅ Gauge测试通过")
}

// TestRecordHTTPRequest 测试HTTP请求指标
func TestRecordHTTPRequest(t *testing.T) {
	InitMetrics()

	RecordHTTPRequest("GET", "/api/v1/orders/:id", "200", 0.05)
	RecordHTTPRequest("GET", "/api/v1/orders/:id", "200", 0.1)
	RecordHTTPRequest("POST", "/api/v1/orders", "200", 0.2)

	labels := map[string]string{"method": "GET", "path": "/api/v1/orders/:id", "status": "200"}
	if v := getCounterVecValue(t, HTTPRequestsTotal, labels); v != 2 {
		t.Errorf("CounterVec值错误: expected=2, got=%f", v)
	}

	count := getHistogramVecCount(t, HTTPRequestDuration, map[string]string{"method": "GET", "path": "/api/v1/orders/:id"})
	if count != 2 {
		t.Errorf("HistogramVec观测次数错误: expected=2, got=%d", count)
	}

	t.Log("✅ HTTP指标测试通过")
}

// TestRecordCircuitBreaker 测试熔断器指标
func TestRecordCircuitBreaker(t *testing.T) {
	InitMetrics()

	RecordCircuitBreaker("order-cache", "rejected", 1)

	if v := getGaugeVecValue(t, CircuitBreakerState, map[string]string{"name": "order-cache"}); v != 1 {
		t.Errorf("GaugeVec值错误: expected=1, got=%f", v)
	}
	if v := getCounterVecValue(t, CircuitBreakerRequests, map[string]string{"name": "order-cache", "result": "rejected"}); v != 1 {
		t.Errorf("CounterVec值错误: expected=1, got=%f", v)
	}

	t.Log("✅ 熔断器指标测试通过")
}

// 辅助函数：获取Counter值
func getCounterValue(t *testing.T, counter prometheus.Counter) float64 {
	var metric dto.Metric
	if err := counter.Write(&metric); err != nil {
		t.Fatalf("读取Counter值失败: %v", err)
	}
	return metric.Counter.GetValue()
}

// 辅助函数：获取CounterVec值
func getCounterVecValue(t *testing.T, counterVec *prometheus.CounterVec, labels map[string]string) float64 {
	var metric dto.Metric
	counter := counterVec.With(labels)
	if err := counter.(prometheus.Counter).Write(&metric); err != nil {
		t.Fatalf("读取CounterVec值失败: %v", err)
	}
	return metric.Counter.GetValue()
}

// 辅助函数：获取Gauge值
func getGaugeValue(t *testing.T, gauge prometheus.Gauge) float64 {
	var metric dto.Metric
	if err := gauge.Write(&metric); err != nil {
		t.Fatalf("读取Gauge值失败: %v", err)
	}
	return metric.Gauge.GetValue()
}

// 辅助函数：获取GaugeVec值
func getGaugeVecValue(t *testing.T, gaugeVec *prometheus.GaugeVec, labels map[string]string) float64 {
	var metric dto.Metric
	gauge := gaugeVec.With(labels)
	if err := gauge.(prometheus.Gauge).Write(&metric); err != nil {
		t.Fatalf("读取GaugeVec值失败: %v", err)
	}
	return metric.Gauge.GetValue()
}

// 辅助函数：获取HistogramVec观测次数
func getHistogramVecCount(t *testing.T, histogramVec *prometheus.HistogramVec, labels map[string]string) uint64 {
	var metric dto.Metric
	histogram := histogramVec.With(labels)
	if err := histogram.(prometheus.Histogram).Write(&metric); err != nil {
		t.Fatalf("读取HistogramVec值失败: %v", err)
	}
	return metric.Histogram.GetSampleCount()
}
