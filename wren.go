// Package wren runs external tools behind a loading pattern.
package wren

// Version is the current release of the wren tool.
const Version = "0.1.0"
