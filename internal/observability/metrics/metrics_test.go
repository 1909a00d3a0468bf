package metrics

import (
	"testing"

	"go.opentelemetry.io/otel/attribute"
)

func TestFilterAttributesDropsEmptyValues(t *testing.T) {
	attrs := FilterAttributes(
		attribute.String("workspace_id", "123"),
		attribute.String("role", ""),
		attribute.String("scope", "workspace"),
	)
	if len(attrs) != 2 {
		t.Fatalf("expected 2 attributes, got %d", len(attrs))
	}
	if attrs[0].Key != "workspace_id" {
		t.Fatalf("expected workspace_id to be retained first, got %s", attrs[0].Key)
	}
	if attrs[1].Key != "scope" {
		t.Fatalf("expected scope to be retained, got %s", attrs[1].Key)
	}
}

func TestFilterAttributesKeepsAllWhenPopulated(t *testing.T) {
	attrs := FilterAttributes(
		attribute.String("workspace_id", "123"),
		attribute.String("role", "admin"),
	)
	if len(attrs) != 2 {
		t.Fatalf("expected 2 attributes, got %d", len(attrs))
	}
}
