package hostcall

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_Calls(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	r := NewRegistry(WithMetrics(m), WithMaxPayload(8))
	_ = r.Register("echo", echo)

	ctx := context.Background()
	_, _ = r.Invoke(ctx, "echo", []byte("a"))
	_, _ = r.Invoke(ctx, "echo", []byte("bb"))
	_, _ = r.Invoke(ctx, "echo", []byte("too large payload"))
	_, _ = r.Invoke(ctx, "no-such-op", nil)
	_, _ = r.Invoke(ctx, "another-missing-op", nil)

	tests := []struct {
		op, status string
		want       float64
	}{
		{"echo", "200", 2},
		{"echo", "413", 1},
		{"unknown", "404", 2},
	}
	for _, tt := range tests {
		if got := testutil.ToFloat64(m.calls.WithLabelValues(tt.op, tt.status)); got != tt.want {
			t.Errorf("calls{op=%q,status=%q} = %v, want %v", tt.op, tt.status, got, tt.want)
		}
	}

	if n := testutil.CollectAndCount(m.calls); n != 3 {
		t.Errorf("calls series = %d, want 3", n)
	}

	series := []struct {
		metric string
		want   int
	}{
		{"textcodec_bridge_call_duration_seconds", 2},
		{"textcodec_bridge_payload_bytes", 3},
	}
	for _, tt := range series {
		n, err := testutil.GatherAndCount(reg, tt.metric)
		if err != nil {
			t.Fatalf("GatherAndCount(%s): %v", tt.metric, err)
		}
		if n != tt.want {
			t.Errorf("%s series = %d, want %d", tt.metric, n, tt.want)
		}
	}
}

func TestMetrics_OpenDecoders(t *testing.T) {
	m := NewMetrics(nil)

	m.DecoderOpened()
	m.DecoderOpened()
	m.DecoderClosed()

	if got := testutil.ToFloat64(m.openDecoders); got != 1 {
		t.Errorf("open_decoders = %v, want 1", got)
	}
}
