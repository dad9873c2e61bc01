package models

import (
	"testing"
)

func TestIsValidRole(t *testing.T) {
	tests := []struct {
		name     string
		role     Role
		expected bool
	}{
		{"dispatcher role", RoleDispatcher, true},
		{"viewer role", RoleViewer, true},
		{"invalid role", "invalid", false},
		{"empty role", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IsValidRole(tt.role)
			if result != tt.expected {
				t.Errorf("IsValidRole(%s) = %v, want %v", tt.role, result, tt.expected)
			}
		})
	}
}

func TestRole_HasPermission(t *testing.T) {
	tests := []struct {
		name     string
		role     Role
		action   string
		expected bool
	}{
		{"dispatcher can start", RoleDispatcher, ActionStartSimulation, true},
		{"dispatcher can reset", RoleDispatcher, ActionResetSimulation, true},
		{"dispatcher can view", RoleDispatcher, ActionViewSimulation, true},

		{"viewer cannot start", RoleViewer, ActionStartSimulation, false},
		{"viewer cannot reset", RoleViewer, ActionResetSimulation, false},
		{"viewer can view", RoleViewer, ActionViewSimulation, true},

		{"unknown role has nothing", Role("guest"), ActionViewSimulation, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.role.HasPermission(tt.action)
			if result != tt.expected {
				t.Errorf("%s.HasPermission(%s) = %v, want %v", tt.role, tt.action, result, tt.expected)
			}
		})
	}
}

func TestParseVehicleType(t *testing.T) {
	tests := []struct {
		input   string
		want    VehicleType
		wantErr bool
	}{
		{"", VehicleAmbulance, false},
		{"ambulance", VehicleAmbulance, false},
		{"fire", VehicleFire, false},
		{"police", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseVehicleType(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseVehicleType(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseVehicleType(%q) = %s, want %s", tt.input, got, tt.want)
			}
		})
	}
}
