package sim

import "fmt"

// Config groups the parameters of a single run.
type Config struct {
	// Horizon is the number of completed products that ends the run.
	// Zero or negative means an empty run.
	Horizon int
	// WarmUp is the number of initial completions excluded from statistics.
	// Zero disables warm-up removal.
	WarmUp int
}

// NewConfig returns a Config with the given horizon and warm-up window.
func NewConfig(horizon, warmUp int) Config {
	return Config{Horizon: horizon, WarmUp: warmUp}
}

// Validate checks the warm-up window against the horizon. A non-positive horizon
// is valid and yields an empty run.
func (c Config) Validate() error {
	if c.WarmUp < 0 {
		return fmt.Errorf("warm-up must be >= 0, got %d", c.WarmUp)
	}
	if c.Horizon > 0 && c.WarmUp >= c.Horizon {
		return fmt.Errorf("warm-up (%d) must be less than horizon (%d)", c.WarmUp, c.Horizon)
	}
	return nil
}
