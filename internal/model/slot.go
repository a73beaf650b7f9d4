package model

// Slot is one grid point of a professional's day.
type Slot struct {
	// Value is HH:mm:ss.
	Value string `json:"value"`
	// Label is HH:mm.
	Label     string `json:"label"`
	Available bool   `json:"available"`
}
