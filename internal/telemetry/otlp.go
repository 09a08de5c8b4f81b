package telemetry

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// buildOTLPMetricExporter dials a gRPC OTLP collector. Endpoints are
// host:port; an https:// prefix switches to TLS, anything else stays
// plaintext since collectors are normally local sidecars.
func buildOTLPMetricExporter(ctx context.Context, endpoint string) (sdkmetric.Exporter, error) {
	if rest, ok := strings.CutPrefix(endpoint, "https://"); ok {
		return otlpmetricgrpc.New(ctx, otlpmetricgrpc.WithEndpoint(rest))
	}
	return otlpmetricgrpc.New(ctx,
		otlpmetricgrpc.WithEndpoint(strings.TrimPrefix(endpoint, "http://")),
		otlpmetricgrpc.WithInsecure(),
	)
}
