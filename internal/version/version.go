// Package version provides build and version information.
package version

// Version is the current application version.
const Version = "0.3.0"

// Milestones:
// 0.3.0 - Observing schedule windows and plan export, -schedule flag
// 0.2.0 - Dynamic solar system bodies, moon phase, horizon mask
// 0.1.0 - Initial release: catalog browser, altitude tracks, headless modes
