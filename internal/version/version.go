// ABOUTME: Version information for opusrec
// ABOUTME: Product identity reported by the CLI and written into logs
package version

const (
	// Version is the release version
	Version = "0.3.0"

	// Product is the product name
	Product = "opusrec"

	// Manufacturer identifies who ships the binary
	Manufacturer = "oply"
)
