package apiclient

import "context"

type accessTokenKey struct{}

// WithAccessToken makes requests made with ctx use token instead of the
// stored one. An empty token leaves ctx unchanged.
func WithAccessToken(ctx context.Context, token string) context.Context {
	if token == "" {
		return ctx
	}
	return context.WithValue(ctx, accessTokenKey{}, token)
}

func accessTokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(accessTokenKey{}).(string)
	return token, ok
}
