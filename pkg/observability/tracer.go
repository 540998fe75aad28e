// Package observability wires the OTLP/gRPC trace exporter and names the
// span/attribute taxonomy the rest of the service must preserve — spec
// §9's "trace/span taxonomy is a contract, not an implementation detail".
package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

const ServiceName = "assistant-orchestrator"

// Span and trace names the service's taxonomy contract fixes — spec §9.
const (
	TraceAssistantQuery = "assistant-query"

	SpanPlanningDecision     = "planning-decision"
	SpanVectorSearchNotes    = "vector-search-notes"
	SpanVectorSearchCombined = "vector-search-combined"
	SpanCypherGeneration     = "cypher-generation"
	SpanGraphExecution       = "neo4j-query-execution"
	SpanResponseSynthesis    = "response-synthesis"
)

// Langfuse-facing attribute keys, set directly on spans so an OTel-native
// Langfuse ingestion path recognizes generation-type observations without
// a dedicated SDK — spec §4.4/§9.
const (
	AttrLangfuseObservationType = "langfuse.observation.type"
	AttrLangfusePromptName      = "langfuse.observation.prompt.name"
	AttrLangfusePromptVersion   = "langfuse.observation.prompt.version"
	AttrLangfuseTraceName       = "langfuse.trace.name"

	ObservationTypeGeneration = "generation"
)

// Config configures the OTLP/gRPC exporter.
type Config struct {
	Endpoint string
	Insecure bool
	Env      string
	Release  string
}

// NewTracerProvider dials the OTLP collector and returns a TracerProvider
// carrying the service name plus the env/release resource attributes
// propagated to every trace per spec §6's configuration table.
func NewTracerProvider(ctx context.Context, cfg Config) (*sdktrace.TracerProvider, error) {
	var dialOpts []grpc.DialOption
	if cfg.Insecure {
		dialOpts = append(dialOpts, grpc.WithTransportCredentials(insecure.NewCredentials()))
	}

	conn, err := grpc.NewClient(cfg.Endpoint, dialOpts...)
	if err != nil {
		return nil, fmt.Errorf("dialing otlp collector %s: %w", cfg.Endpoint, err)
	}

	exporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
	if err != nil {
		return nil, fmt.Errorf("creating otlp exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String(ServiceName),
			attribute.String("deployment.environment", cfg.Env),
			attribute.String("service.version", cfg.Release),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("building otel resource: %w", err)
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithResource(res),
		sdktrace.WithBatcher(exporter),
	)

	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return provider, nil
}

// StartRequestTrace opens the top-level assistant-query trace and tags it
// with the langfuse.trace.name attribute the spec's taxonomy names.
func StartRequestTrace(ctx context.Context) (context.Context, trace.Span) {
	tracer := otel.Tracer(ServiceName)
	ctx, span := tracer.Start(ctx, TraceAssistantQuery)
	span.SetAttributes(attribute.String(AttrLangfuseTraceName, TraceAssistantQuery))
	return ctx, span
}

// StartSpan opens a named child span, used for the fixed per-stage names
// (planning-decision, vector-search-*, cypher-generation,
// neo4j-query-execution, response-synthesis).
func StartSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return otel.Tracer(ServiceName).Start(ctx, name)
}

// MarkGeneration tags span as an LLM generation observation, for the
// spans wrapping an llm.Client.Complete call.
func MarkGeneration(span trace.Span) {
	span.SetAttributes(attribute.String(AttrLangfuseObservationType, ObservationTypeGeneration))
}
