package model

// Kind identifies which account category is currently authenticated.
type Kind int

const (
	// KindNone means no session marker is present.
	KindNone Kind = iota
	// KindPrimary is the administrative account.
	KindPrimary
	// KindSecondary is the store/merchant account.
	KindSecondary
)

// String returns the lowercase name used in logs and metric labels.
func (k Kind) String() string {
	switch k {
	case KindPrimary:
		return "primary"
	case KindSecondary:
		return "secondary"
	default:
		return "none"
	}
}

// Route binds a principal kind to its marker key and its server/client paths.
type Route struct {
	Marker      string
	RefreshPath string
	LoginPath   string
}

// Routes holds the route for each principal kind.
type Routes struct {
	Primary   Route
	Secondary Route
}

// For returns the route configured for kind. KindNone resolves to the primary route
// so that a login destination always exists.
func (r Routes) For(kind Kind) Route {
	if kind == KindSecondary {
		return r.Secondary
	}
	return r.Primary
}

// Markers returns every marker key, in the order they are cleared.
func (r Routes) Markers() []string {
	return []string{r.Primary.Marker, r.Secondary.Marker}
}
