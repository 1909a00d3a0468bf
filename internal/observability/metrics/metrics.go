package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config configures the metrics provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
	Environment      string
}

// Metrics exposes application-level instruments.
type Metrics struct {
	invitesSent      metric.Int64Counter
	invitesAccepted  metric.Int64Counter
	invitesRevoked   metric.Int64Counter
	membersRemoved   metric.Int64Counter
	roleChanges      metric.Int64Counter
	rateLimitAllowed metric.Int64Counter
	rateLimitDenied  metric.Int64Counter
}

// NewProvider configures and registers the meter provider.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.ExporterProtocol, cfg.ExporterEndpoint)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(10*time.Second))
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				if log != nil {
					log.Info("shutting down meter provider")
				}
				return provider.Shutdown(ctx)
			},
		})
	}

	if log != nil {
		log.Info("metrics initialized",
			zap.String("endpoint", cfg.ExporterEndpoint),
			zap.String("protocol", cfg.ExporterProtocol),
		)
	}

	return provider, nil
}

// New configures the domain metrics instruments.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "workspaces"
	}
	meter := provider.Meter(name)

	invitesSent, err := meter.Int64Counter("workspaces_invites_sent_total")
	if err != nil {
		return nil, err
	}
	invitesAccepted, err := meter.Int64Counter("workspaces_invites_accepted_total")
	if err != nil {
		return nil, err
	}
	invitesRevoked, err := meter.Int64Counter("workspaces_invites_revoked_total")
	if err != nil {
		return nil, err
	}
	membersRemoved, err := meter.Int64Counter("workspaces_members_removed_total")
	if err != nil {
		return nil, err
	}
	roleChanges, err := meter.Int64Counter("workspaces_member_role_changes_total")
	if err != nil {
		return nil, err
	}
	rateLimitAllowed, err := meter.Int64Counter("workspaces_rate_limit_allowed_total")
	if err != nil {
		return nil, err
	}
	rateLimitDenied, err := meter.Int64Counter("workspaces_rate_limit_denied_total")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		invitesSent:      invitesSent,
		invitesAccepted:  invitesAccepted,
		invitesRevoked:   invitesRevoked,
		membersRemoved:   membersRemoved,
		roleChanges:      roleChanges,
		rateLimitAllowed: rateLimitAllowed,
		rateLimitDenied:  rateLimitDenied,
	}, nil
}

// RecordInvitesSent increments sent-invite counts by batch size.
func (m *Metrics) RecordInvitesSent(ctx context.Context, workspaceID string, count int) {
	if m == nil || count <= 0 {
		return
	}
	attrs := FilterAttributes(attribute.String("workspace_id", strings.TrimSpace(workspaceID)))
	m.invitesSent.Add(ctx, int64(count), metric.WithAttributes(attrs...))
}

// RecordInviteAccepted increments accepted-invite counts.
func (m *Metrics) RecordInviteAccepted(ctx context.Context, workspaceID string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("workspace_id", strings.TrimSpace(workspaceID)))
	m.invitesAccepted.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordInviteRevoked increments revoked-invite counts.
func (m *Metrics) RecordInviteRevoked(ctx context.Context, workspaceID string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("workspace_id", strings.TrimSpace(workspaceID)))
	m.invitesRevoked.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordMemberRemoved increments removed-member counts.
func (m *Metrics) RecordMemberRemoved(ctx context.Context, workspaceID string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("workspace_id", strings.TrimSpace(workspaceID)))
	m.membersRemoved.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordRoleChange increments role-change counts.
func (m *Metrics) RecordRoleChange(ctx context.Context, workspaceID, role string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("workspace_id", strings.TrimSpace(workspaceID)),
		attribute.String("role", strings.TrimSpace(role)),
	)
	m.roleChanges.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordRateLimit increments allow/deny counts for the invite limiter.
func (m *Metrics) RecordRateLimit(ctx context.Context, scope string, allowed bool) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("scope", strings.TrimSpace(scope)))
	if allowed {
		m.rateLimitAllowed.Add(ctx, 1, metric.WithAttributes(attrs...))
		return
	}
	m.rateLimitDenied.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// FilterAttributes drops attributes with empty values to keep cardinality sane.
func FilterAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	out := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if strings.TrimSpace(attr.Value.AsString()) == "" {
			continue
		}
		out = append(out, attr)
	}
	return out
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	endpoint = strings.TrimSpace(endpoint)
	switch strings.ToLower(strings.TrimSpace(protocol)) {
	case "", "grpc":
		return otlpmetricgrpc.New(context.Background(),
			otlpmetricgrpc.WithEndpoint(endpoint),
			otlpmetricgrpc.WithInsecure(),
		)
	case "http", "http/protobuf":
		return otlpmetrichttp.New(context.Background(),
			otlpmetrichttp.WithEndpoint(endpoint),
			otlpmetrichttp.WithInsecure(),
		)
	default:
		return nil, fmt.Errorf("unsupported otlp metrics protocol %q", protocol)
	}
}
