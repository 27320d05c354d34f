package metrics

import (
	"context"

	"github.com/newrelic/go-agent/v3/newrelic"
)

// NewRelicContextKey is the context key holding the *newrelic.Application.
type NewRelicContextKey struct{}

// NewContext returns a context carrying the New Relic application used for
// custom events and metrics. A nil app leaves the context unchanged.
func NewContext(ctx context.Context, app *newrelic.Application) context.Context {
	if app == nil {
		return ctx
	}
	return context.WithValue(ctx, NewRelicContextKey{}, app)
}

func appFromContext(ctx context.Context) (*newrelic.Application, bool) {
	app, ok := ctx.Value(NewRelicContextKey{}).(*newrelic.Application)
	return app, ok && app != nil
}

// StartTransaction starts a New Relic transaction using the application in the
// context, so that TraceMethodCall segments have a parent. The returned end
// function must be called once the work completes, and is safe to call when
// the context carries no application.
func StartTransaction(ctx context.Context, name string) (context.Context, func()) {
	app, ok := appFromContext(ctx)
	if !ok {
		return ctx, func() {}
	}

	txn := app.StartTransaction(name)
	return newrelic.NewContext(ctx, txn), txn.End
}
