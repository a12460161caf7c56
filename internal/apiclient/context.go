package apiclient

import "context"

// TokenStore is the single cell that holds a browser's bearer token. The
// client reads it on every call and clears it when the API answers 401.
type TokenStore interface {
	BearerToken() string
	ClearBearerToken(ctx context.Context) error
}

type contextKey string

const tokenStoreKey contextKey = "tokenStore"

// WithTokenStore binds store to ctx for every call made with it.
func WithTokenStore(ctx context.Context, store TokenStore) context.Context {
	return context.WithValue(ctx, tokenStoreKey, store)
}

func tokenStoreFrom(ctx context.Context) TokenStore {
	store, _ := ctx.Value(tokenStoreKey).(TokenStore)
	return store
}
