package user

// Principal is the identity resolved from a verified bearer token.
type Principal struct {
	UserID string
	Email  string
	Name   string
}
