package llm

import "context"

type purposeKey struct{}

// WithPurpose labels the requests made with ctx, e.g. "cloze-gen". The
// label ends up in the request log.
func WithPurpose(ctx context.Context, purpose string) context.Context {
	return context.WithValue(ctx, purposeKey{}, purpose)
}

// PurposeFrom returns the label set by WithPurpose or "unspecified".
func PurposeFrom(ctx context.Context) string {
	if v, ok := ctx.Value(purposeKey{}).(string); ok && v != "" {
		return v
	}
	return "unspecified"
}
