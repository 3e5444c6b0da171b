package middleware

import (
	"net/http"

	"blogicum/internal/observability"

	"github.com/gofiber/fiber/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// TracingMiddleware opens a server span per request, continuing a trace
// propagated by the caller. Once routing is done the span takes the name of
// the matched route, so /posts/1/ and /posts/2/ share "GET /posts/:id/".
func TracingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		method := c.Method()
		carrier := propagation.HeaderCarrier(c.GetReqHeaders())
		ctx := otel.GetTextMapPropagator().Extract(c.UserContext(), carrier)

		ctx, span := observability.Tracer.Start(ctx, method+" "+c.Path(),
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.request.method", method),
				attribute.String("url.path", c.Path()),
				attribute.String("client.address", c.IP()),
			),
		)
		defer span.End()

		if id, ok := c.Locals("requestid").(string); ok {
			span.SetAttributes(attribute.String("request.id", id))
		}
		c.Locals("traceID", span.SpanContext().TraceID().String())
		c.SetUserContext(ctx)

		err := c.Next()

		if route := c.Route(); route != nil && route.Path != "" && route.Path != "/" {
			span.SetName(method + " " + route.Path)
			span.SetAttributes(attribute.String("http.route", route.Path))
		}
		if viewer := Viewer(c); viewer != nil {
			span.SetAttributes(attribute.Int("user.id", int(viewer.ID)))
		}

		// errors are turned into a response by the app's error handler later
		if err != nil {
			span.RecordError(err)
			return err
		}
		status := c.Response().StatusCode()
		span.SetAttributes(attribute.Int("http.response.status_code", status))
		if status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(status))
		}
		return nil
	}
}
