package domain

// RequestContext carries the caller identity when a bearer token was sent.
// Quotes are anonymous; the email only feeds per-user coupon limits.
type RequestContext struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

// Anonymous reports whether no identity was attached.
func (r RequestContext) Anonymous() bool {
	return r.UserID == "" && r.Email == ""
}
