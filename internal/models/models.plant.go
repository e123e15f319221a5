// FilePath: internal/models/models.plant.go
package models

// Plant represents a monitored plant owned by a user
type Plant struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Species       string  `json:"species"`
	Description   *string `json:"description"`
	UserID        string  `json:"user_id"`
	PhotoFilename *string `json:"photo_filename"`
	CreatedAt     string  `json:"created_at"`
	UpdatedAt     string  `json:"updated_at"`
}

// PlantCreate is the payload for POST /plants
type PlantCreate struct {
	Name        string `json:"name"`
	Species     string `json:"species"`
	Description string `json:"description,omitempty"`
	UserID      string `json:"user_id"`
}

// PlantUpdate is the payload for PUT /plants/{id}
type PlantUpdate struct {
	Name        string `json:"name"`
	Species     string `json:"species"`
	Description string `json:"description,omitempty"`
}

// SensorReading is a single timestamped value from the plant metrics endpoint
type SensorReading struct {
	Time  string  `json:"time"`
	Value float64 `json:"value"`
}

// PlantMetrics groups per-sensor reading series for one plant
type PlantMetrics struct {
	Temperature  []SensorReading `json:"temperature"`
	Humidity     []SensorReading `json:"humidity"`
	SoilMoisture []SensorReading `json:"soilMoisture"`
	LightLevel   []SensorReading `json:"lightLevel"`
}

// CurrentMetrics is the latest spot value per sensor for one plant
type CurrentMetrics struct {
	Temperature  float64 `json:"temperature"`
	Humidity     float64 `json:"humidity"`
	SoilMoisture float64 `json:"soilMoisture"`
	LightLevel   float64 `json:"lightLevel"`
}

// PlantAlert is an advisory message produced by the backend for one plant
type PlantAlert struct {
	ID        string `json:"id"`
	Type      string `json:"type"` // "warning", "error", "info" or "success"
	Title     string `json:"title"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}
