package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeOrderStatus(t *testing.T) {
	tests := []struct {
		label string
		want  string
		ok    bool
	}{
		{"Not processed", OrderStatusNotProcessed, true},
		{"not processed", OrderStatusNotProcessed, true},
		{"NOT PROCESSED", OrderStatusNotProcessed, true},
		{"  delivered  ", OrderStatusDelivered, true},
		{"shipped", OrderStatusShipped, true},
		{"CANCELLED", OrderStatusCancelled, true},
		{"archived", "", false},
		{"", "", false},
		{"Not  processed", "", false},
	}

	for _, tt := range tests {
		got, ok := NormalizeOrderStatus(tt.label)
		assert.Equal(t, tt.ok, ok, "label %q", tt.label)
		assert.Equal(t, tt.want, got, "label %q", tt.label)
	}
}

func TestTransitionRelationIsTotal(t *testing.T) {
	for _, from := range orderStatuses {
		for _, to := range orderStatuses {
			assert.True(t, CanTransition(from, to), "%s -> %s", from, to)
		}
	}
}

func TestCanTransitionRejectsUnknownLabels(t *testing.T) {
	assert.False(t, CanTransition("archived", OrderStatusShipped))
	assert.False(t, CanTransition(OrderStatusShipped, "archived"))
}
