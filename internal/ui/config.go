package ui

// Config contains window and input related settings.
type Config struct {
	Title string // window title
	Scale int    // integer upscaling factor
	// SavePath receives battery RAM on exit and from the menu. Empty disables
	// saving.
	SavePath      string
	ScreenshotDir string
}

// Defaults fills missing fields with reasonable defaults.
func (c *Config) Defaults() {
	if c.Title == "" {
		c.Title = "gbemu"
	}
	if c.Scale <= 0 {
		c.Scale = 3
	}
	if c.ScreenshotDir == "" {
		c.ScreenshotDir = "."
	}
}
