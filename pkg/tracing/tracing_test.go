package tracing

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// useRecorder 安装一个内存Span记录器作为全局Provider
func useRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return recorder
}

// TestStartSpan 测试Span创建与父子关系
func TestStartSpan(t *testing.T) {
	recorder := useRecorder(t)

	ctx, root := StartSpan(context.Background(), "test-service", "RootOperation")
	_, child := StartSpan(ctx, "test-service", "ChildOperation")
	child.End()
	root.End()

	spans := recorder.Ended()
	if len(spans) != 2 {
		t.Fatalf("Span数量错误: expected=2, got=%d", len(spans))
	}

	childSpan, rootSpan := spans[0], spans[1]
	if childSpan.Name() != "ChildOperation" || rootSpan.Name() != "RootOperation" {
		t.Errorf("Span名称错误: %s, %s", childSpan.Name(), rootSpan.Name())
	}
	if childSpan.SpanContext().TraceID() != rootSpan.SpanContext().TraceID() {
		t.Error("子Span应继承根Span的TraceID")
	}
	if childSpan.Parent().SpanID() != rootSpan.SpanContext().SpanID() {
		t.Error("子Span的父Span不正确")
	}

	t.Log("✅ 父子Span创建成功")
}

// TestExtractTraceID 测试TraceID/SpanID提取
func TestExtractTraceID(t *testing.T) {
	t.Run("没有Span时返回空串", func(t *testing.T) {
		if id := ExtractTraceID(context.Background()); id != "" {
			t.Errorf("expected empty, got=%s", id)
		}
		if id := ExtractSpanID(context.Background()); id != "" {
			t.Errorf("expected empty, got=%s", id)
		}
	})

	t.Run("有Span时返回十六进制ID", func(t *testing.T) {
		useRecorder(t)
		ctx, span := StartSpan(context.Background(), "test-service", "Op")
		defer span.End()

		if id := ExtractTraceID(ctx); len(id) != 32 {
			t.Errorf("TraceID长度错误: %s", id)
		}
		if id := ExtractSpanID(ctx); len(id) != 16 {
			t.Errorf("SpanID长度错误: %s", id)
		}
	})
}

// TestMapCarrier 测试通过消息头传递trace上下文
func TestMapCarrier(t *testing.T) {
	useRecorder(t)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	ctx, span := StartSpan(context.Background(), "test-service", "Publish")
	defer span.End()

	headers := map[string]interface{}{"x-retry": 3}
	Inject(ctx, MapCarrier(headers))
	if _, ok := headers["traceparent"].(string); !ok {
		t.Fatalf("消息头缺少traceparent: %v", headers)
	}

	restored := Extract(context.Background(), MapCarrier(headers))
	if got, want := ExtractTraceID(restored), ExtractTraceID(ctx); got != want {
		t.Errorf("TraceID不一致: got=%s, want=%s", got, want)
	}

	if v := MapCarrier(headers).Get("x-retry"); v != "" {
		t.Errorf("非字符串值应视为不存在, got=%q", v)
	}
	if v := MapCarrier(nil).Get("traceparent"); v != "" {
		t.Errorf("nil载体应返回空串, got=%q", v)
	}
}
