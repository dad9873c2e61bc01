package models

import "fmt"

// VehicleType only affects presentation.
type VehicleType string

const (
	VehicleAmbulance VehicleType = "ambulance"
	VehicleFire      VehicleType = "fire"
)

// ParseVehicleType maps user input to a vehicle type, defaulting to ambulance.
func ParseVehicleType(s string) (VehicleType, error) {
	switch VehicleType(s) {
	case "":
		return VehicleAmbulance, nil
	case VehicleAmbulance, VehicleFire:
		return VehicleType(s), nil
	default:
		return "", fmt.Errorf("unknown vehicle type %q", s)
	}
}
