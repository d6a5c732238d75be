package ctxutil

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRequestDataRoundTrip(t *testing.T) {
	if RequestDataFrom(context.Background()) != nil {
		t.Fatalf("empty context should carry no request data")
	}
	SetVariationKey(context.Background(), "ignored")

	rd := &RequestData{TraceID: "4bf92f3577b34da6a3ce929d0e0e4736", RequestID: "req-1"}
	ctx := WithRequestData(context.Background(), rd)
	SetVariationKey(ctx, "acoustics_july11_192:2024-07-11:8:fun:english")

	got := RequestDataFrom(ctx)
	if got != rd {
		t.Fatalf("RequestDataFrom returned a different value")
	}
	want := []any{
		"trace_id", "4bf92f3577b34da6a3ce929d0e0e4736",
		"request_id", "req-1",
		"variation_key", "acoustics_july11_192:2024-07-11:8:fun:english",
	}
	if diff := cmp.Diff(want, got.LogFields()); diff != "" {
		t.Fatalf("LogFields (-want +got):\n%s", diff)
	}
}

func TestLogFieldsSkipsEmpty(t *testing.T) {
	var nilData *RequestData
	if f := nilData.LogFields(); f != nil {
		t.Fatalf("nil data: %v", f)
	}
	if diff := cmp.Diff([]any{"request_id", "r"}, (&RequestData{RequestID: "r"}).LogFields()); diff != "" {
		t.Fatalf("LogFields (-want +got):\n%s", diff)
	}
}
