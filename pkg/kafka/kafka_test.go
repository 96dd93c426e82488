package kafka

import (
	"context"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
)

func TestEncodeValue(t *testing.T) {
	tests := []struct {
		in   interface{}
		want string
	}{
		{[]byte("raw"), "raw"},
		{"text", "text"},
		{map[string]int{"a": 1}, `{"a":1}`},
	}
	for _, tt := range tests {
		got, err := encodeValue(tt.in)
		if err != nil {
			t.Fatalf("%v: %v", tt.in, err)
		}
		if string(got) != tt.want {
			t.Fatalf("got %s want %s", got, tt.want)
		}
	}
	if _, err := encodeValue(make(chan int)); err == nil {
		t.Fatalf("expected marshal error")
	}
}

func TestBackoffWithJitterBounds(t *testing.T) {
	for attempt := 1; attempt <= 10; attempt++ {
		d := backoffWithJitter(50*time.Millisecond, 2*time.Second, attempt)
		if d <= 0 || d > 2*time.Second {
			t.Fatalf("attempt %d: %v", attempt, d)
		}
	}
}

func TestTracingHook(t *testing.T) {
	km := kafka.Message{Headers: []kafka.Header{{Key: TraceHeader, Value: []byte("req-42")}}}
	ctx, _, data, err := TracingHook().BeforeHandle(context.Background(), "predictions", km, []byte("x"))
	if err != nil {
		t.Fatalf("before: %v", err)
	}
	if TraceIDFrom(ctx) != "req-42" || string(data) != "x" {
		t.Fatalf("trace=%q data=%q", TraceIDFrom(ctx), data)
	}
	if _, ok := ctx.Value(CtxStartTime).(time.Time); !ok {
		t.Fatalf("start time missing")
	}
}

func TestConstructorsRequireBrokers(t *testing.T) {
	if _, err := NewProducer(); err == nil {
		t.Fatalf("producer without brokers")
	}
	if _, err := NewConsumer(); err == nil {
		t.Fatalf("consumer without brokers")
	}
	c, err := NewConsumer(WithConsumerBrokers([]string{"localhost:9092"}))
	if err != nil {
		t.Fatalf("consumer: %v", err)
	}
	if err := c.Start(); err == nil {
		t.Fatalf("start without handlers should fail")
	}
}
