package telemetry

// Environment describes the host the session runs in. In the browser these
// come from navigator/window/screen globals; any host can supply equivalent
// data through an EnvironmentProbe.
type Environment struct {
	Language         string  `json:"language"`
	Platform         string  `json:"platform"`
	UserAgent        string  `json:"userAgent"`
	ScreenResolution string  `json:"screenResolution"`
	Viewport         string  `json:"viewport"`
	Timezone         string  `json:"timezone"`
	DevicePixelRatio float64 `json:"devicePixelRatio"`
	ConnectionType   string  `json:"connectionType"`
}

// EnvironmentProbe supplies environment descriptors at snapshot time.
// Injecting it keeps derivation and assembly testable without a
// browser-like host.
type EnvironmentProbe interface {
	Environment() Environment
}

// StaticProbe returns a fixed Environment, typically captured once from the
// client at session start.
type StaticProbe struct {
	Env Environment
}

func (p StaticProbe) Environment() Environment { return p.Env }

// unknownEnvironment mirrors the placeholder values used when the host
// cannot be probed.
func unknownEnvironment() Environment {
	return Environment{
		Language:         "en",
		Platform:         "unknown",
		Timezone:         "UTC",
		ScreenResolution: "0x0",
		Viewport:         "0x0",
		DevicePixelRatio: 1,
		ConnectionType:   "unknown",
	}
}
