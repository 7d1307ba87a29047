package testutil

import (
	"net/http"

	id "bursar/pkg/domain"
	"bursar/pkg/requestcontext"
)

// WithPrincipal adds a caller identity to the request context, as the auth
// middleware does for a valid bearer token.
func WithPrincipal(req *http.Request, principal string) *http.Request {
	ctx := requestcontext.WithPrincipal(req.Context(), id.NormalizePrincipal(principal))
	return req.WithContext(ctx)
}

// WithCapability sets the capability header.
func WithCapability(req *http.Request, token string) *http.Request {
	req.Header.Set("X-Capability", token)
	return req
}
