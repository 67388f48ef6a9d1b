package otel

import "go.opentelemetry.io/otel"

var Tracer = otel.Tracer("github.com/Alturino/storefront/internal")
