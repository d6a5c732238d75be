package ctxutil

import "context"

type requestDataKey struct{}

// RequestData correlates one HTTP request across logs. VariationKey is
// filled in by handlers once the key is resolved and is read by the request
// logger after the chain returns, so it is only written from the handler
// goroutine.
type RequestData struct {
	TraceID      string
	RequestID    string
	VariationKey string
}

func WithRequestData(ctx context.Context, rd *RequestData) context.Context {
	return context.WithValue(ctx, requestDataKey{}, rd)
}

func RequestDataFrom(ctx context.Context) *RequestData {
	if rd, ok := ctx.Value(requestDataKey{}).(*RequestData); ok {
		return rd
	}
	return nil
}

// SetVariationKey annotates the request in ctx. No-op outside a request.
func SetVariationKey(ctx context.Context, key string) {
	if rd := RequestDataFrom(ctx); rd != nil {
		rd.VariationKey = key
	}
}

// LogFields returns the non-empty ids as logger key/value pairs.
func (rd *RequestData) LogFields() []any {
	if rd == nil {
		return nil
	}
	var out []any
	if rd.TraceID != "" {
		out = append(out, "trace_id", rd.TraceID)
	}
	if rd.RequestID != "" {
		out = append(out, "request_id", rd.RequestID)
	}
	if rd.VariationKey != "" {
		out = append(out, "variation_key", rd.VariationKey)
	}
	return out
}
