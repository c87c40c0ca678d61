package models

import "time"

// InspectionStatus represents the lifecycle state of an inspection.
type InspectionStatus string

const (
	InspectionStatusDraft      InspectionStatus = "DRAFT"
	InspectionStatusInProgress InspectionStatus = "IN_PROGRESS"
	InspectionStatusCompleted  InspectionStatus = "COMPLETED"
	InspectionStatusCancelled  InspectionStatus = "CANCELLED"
)

// InspectionType is a backend-defined category (cargo, container, vehicle).
type InspectionType struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Inspection is the backend record the workflow run feeds into.
type Inspection struct {
	ID                int              `json:"id"`
	Title             string           `json:"title"`
	InspectionType    int              `json:"inspection_type"`
	Status            InspectionStatus `json:"status"`
	ExternalReference string           `json:"external_reference,omitempty"`
	Location          string           `json:"location,omitempty"`
	CustomerName      string           `json:"customer_name,omitempty"`

	// Container / cargo metadata.
	ContainerNumber  string `json:"container_number,omitempty"`
	SealNumber       string `json:"seal_number,omitempty"`
	BookingNumber    string `json:"booking_number,omitempty"`
	VesselName       string `json:"vessel_name,omitempty"`
	VoyageNumber     string `json:"voyage_number,omitempty"`
	ContainerType    string `json:"container_type,omitempty"`
	ContainerSize    string `json:"container_size,omitempty"`
	CargoDescription string `json:"cargo_description,omitempty"`
	CargoWeight      string `json:"cargo_weight,omitempty"`

	// Vehicle metadata.
	VehiclePlate string `json:"vehicle_plate,omitempty"`
	VehicleModel string `json:"vehicle_model,omitempty"`
	VehicleYear  string `json:"vehicle_year,omitempty"`
	VehicleVIN   string `json:"vehicle_vin,omitempty"`

	CreatedAt   time.Time  `json:"created_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}
