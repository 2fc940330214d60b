// ABOUTME: Decoder interface definition
// ABOUTME: Common interface for audio packet decoders
package decode

// Decoder decodes encoded packets to PCM int16 samples
type Decoder interface {
	// Decode converts one encoded packet to interleaved PCM samples
	Decode(data []byte) ([]int16, error)

	// Close releases decoder resources
	Close() error
}
