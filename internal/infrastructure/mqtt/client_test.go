package mqtt

import (
	"testing"
)

// =============================================================================
// Topics Tests
// =============================================================================

func TestTopicBuilders(t *testing.T) {
	tests := []struct {
		name     string
		builder  func() string
		expected string
	}{
		{
			name: "Availability",
			builder: func() string {
				return Topics{}.Availability("stove")
			},
			expected: "fourheat/stove/availability",
		},
		{
			name: "Status",
			builder: func() string {
				return Topics{}.Status("stove")
			},
			expected: "fourheat/stove/status",
		},
		{
			name: "SensorState",
			builder: func() string {
				return Topics{}.SensorState("stove", "30001")
			},
			expected: "fourheat/stove/sensor/30001",
		},
		{
			name: "Command",
			builder: func() string {
				return Topics{}.Command("stove")
			},
			expected: "fourheat/stove/command",
		},
		{
			name: "SensorSet",
			builder: func() string {
				return Topics{}.SensorSet("stove", "00300")
			},
			expected: "fourheat/stove/sensor/00300/set",
		},
		{
			name: "AllSensorStates",
			builder: func() string {
				return Topics{}.AllSensorStates("stove")
			},
			expected: "fourheat/stove/sensor/+",
		},
		{
			name: "AllSensorSets",
			builder: func() string {
				return Topics{}.AllSensorSets("stove")
			},
			expected: "fourheat/stove/sensor/+/set",
		},
		{
			name: "AllTopics",
			builder: func() string {
				return Topics{}.AllTopics()
			},
			expected: "fourheat/#",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.builder()
			if result != tt.expected {
				t.Errorf("%s() = %q, want %q", tt.name, result, tt.expected)
			}
		})
	}
}

// =============================================================================
// Offline Client Tests
// =============================================================================

func TestCloseNil(t *testing.T) {
	client := &Client{}
	err := client.Close()
	if err != nil {
		t.Errorf("Close() on nil client error = %v, want nil", err)
	}
}

func TestIsConnected_InitialState(t *testing.T) {
	client := &Client{}

	if client.IsConnected() {
		t.Error("IsConnected() should be false for uninitialised client")
	}
}

func TestSubscriptionTrackingOffline(t *testing.T) {
	client := &Client{subscriptions: make(map[string]subscription)}

	if client.SubscriptionCount() != 0 {
		t.Errorf("SubscriptionCount() = %d, want 0", client.SubscriptionCount())
	}

	if client.HasSubscription("nonexistent/topic") {
		t.Error("HasSubscription() should be false for unsubscribed topic")
	}
}

func TestAvailabilityPayloads(t *testing.T) {
	if availabilityOnline != "online" {
		t.Errorf("availabilityOnline = %q, want %q", availabilityOnline, "online")
	}
	if availabilityOffline != "offline" {
		t.Errorf("availabilityOffline = %q, want %q", availabilityOffline, "offline")
	}
}
