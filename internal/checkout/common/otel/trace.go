package otel

import "go.opentelemetry.io/otel"

var Tracer = otel.Tracer("checkout-service")
