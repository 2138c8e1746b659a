package http

import (
	"net/http"
	"strconv"

	"budget/internal/auth"
	"budget/internal/core"
)

// pathID parses the {id} path segment into a positive integer.
func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		ve := core.NewValidationError()
		ve.Add("id", "must be a positive integer")
		return 0, ve
	}
	return id, nil
}

// caller returns the authenticated identity. Protected routes always
// carry one; the error path covers a handler wired without requireAuth.
func caller(r *http.Request) (auth.Identity, error) {
	identity, ok := identityFromContext(r.Context())
	if !ok {
		return auth.Identity{}, core.ErrUnauthorized
	}
	return identity, nil
}

// checkOwnBody rejects a userId body field that names anyone other
// than the caller. Clients may send their own ID for compatibility;
// they may not act on behalf of another user.
func checkOwnBody(b body, identity auth.Identity) error {
	if b.has("userId") && b.getInt64("userId") != identity.UserID {
		ve := core.NewValidationError()
		ve.Add("userId", "must match the authenticated user")
		return ve
	}
	return nil
}
