package audit

import "context"

// RequestInfo is the client metadata stamped on activity entries.
type RequestInfo struct {
	IPAddress string
	UserAgent string
}

type requestInfoKey struct{}

// WithRequestInfo attaches request metadata for Record to pick up.
func WithRequestInfo(ctx context.Context, info RequestInfo) context.Context {
	return context.WithValue(ctx, requestInfoKey{}, info)
}

func RequestInfoFrom(ctx context.Context) (RequestInfo, bool) {
	info, ok := ctx.Value(requestInfoKey{}).(RequestInfo)
	return info, ok
}

func (i RequestInfo) ipAddress() *string {
	if i.IPAddress == "" {
		return nil
	}
	ip := i.IPAddress
	return &ip
}

func (i RequestInfo) userAgent() *string {
	if i.UserAgent == "" {
		return nil
	}
	ua := i.UserAgent
	return &ua
}
