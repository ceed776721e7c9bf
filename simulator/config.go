package simulator

import "fmt"

// Config parameterizes the simulated technician fleet.
type Config struct {
	Technicians     int     `json:"technicians"`
	IntervalSeconds int     `json:"interval_seconds"`
	CenterLat       float64 `json:"center_lat"`
	CenterLng       float64 `json:"center_lng"`
	// RadiusKm bounds the random walk around the center.
	RadiusKm float64 `json:"radius_km"`
}

// SetDefaults applies sane defaults. The default center is Chennai.
func (c *Config) SetDefaults() {
	if c.Technicians == 0 {
		c.Technicians = 5
	}
	if c.IntervalSeconds == 0 {
		c.IntervalSeconds = 15
	}
	if c.CenterLat == 0 && c.CenterLng == 0 {
		c.CenterLat = 13.0827
		c.CenterLng = 80.2707
	}
	if c.RadiusKm == 0 {
		c.RadiusKm = 10
	}
}

// Validate checks parameter sanity.
func (c Config) Validate() error {
	if c.Technicians < 0 {
		return fmt.Errorf("simulator: technicians must not be negative")
	}
	if c.IntervalSeconds < 0 {
		return fmt.Errorf("simulator: interval_seconds must not be negative")
	}
	return nil
}
