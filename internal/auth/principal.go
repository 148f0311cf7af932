package auth

// Principal is the authenticated caller attached to a request after the
// access token has been resolved, revocation-checked and validated. It is
// passed explicitly through the request context rather than through any
// ambient global.
type Principal struct {
	ID     int64
	Email  string
	Role   string
	Active bool
}
