// FilePath: internal/models/models.device.go
package models

// DeviceCategory classifies a registered device
type DeviceCategory string

const (
	DeviceCategoryMicrocontroller DeviceCategory = "microcontroller"
	DeviceCategorySensor          DeviceCategory = "sensor"
)

// Valid reports whether the category is one of the supported values.
func (c DeviceCategory) Valid() bool {
	return c == DeviceCategoryMicrocontroller || c == DeviceCategorySensor
}

// Device represents a registered microcontroller or sensor. Microcontroller
// names double as controller identifiers for analytics queries.
type Device struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description *string        `json:"description"`
	Version     *string        `json:"version"`
	Category    DeviceCategory `json:"category"`
	CreatedAt   string         `json:"created_at"`
	UpdatedAt   string         `json:"updated_at"`
}

// DeviceCreate is the payload for POST /devices
type DeviceCreate struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Version     string         `json:"version,omitempty"`
	Category    DeviceCategory `json:"category"`
}

// DeviceUpdate is the payload for PUT /devices/{id}
type DeviceUpdate struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Version     string         `json:"version,omitempty"`
	Category    DeviceCategory `json:"category,omitempty"`
}
