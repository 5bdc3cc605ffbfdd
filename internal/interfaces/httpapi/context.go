package httpapi

import (
	"context"

	"github.com/riskibarqy/fantasy-cricket/internal/domain/user"
)

type contextKey string

const (
	principalContextKey  contextKey = "auth_principal"
	routeLabelContextKey contextKey = "route_label"
)

// routeLabel is filled in by recordRoute once the mux picked a pattern.
type routeLabel struct {
	pattern string
}

func withPrincipal(ctx context.Context, p user.Principal) context.Context {
	return context.WithValue(ctx, principalContextKey, p)
}

func principalFromContext(ctx context.Context) (user.Principal, bool) {
	p, ok := ctx.Value(principalContextKey).(user.Principal)
	return p, ok
}

func withRouteLabel(ctx context.Context, label *routeLabel) context.Context {
	return context.WithValue(ctx, routeLabelContextKey, label)
}

func routeLabelFromContext(ctx context.Context) *routeLabel {
	label, _ := ctx.Value(routeLabelContextKey).(*routeLabel)
	return label
}
