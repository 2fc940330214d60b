// ABOUTME: Audio decoder package for reading recordings back
// ABOUTME: Provides the Decoder interface, an Opus packet decoder and an Ogg Opus file reader
// Package decode reads recordings produced by package encode.
//
// Supports: Opus packets, Ogg Opus files
//
// Decoders output interleaved int16 samples.
//
// Example:
//
//	f, err := decode.OpenOpusFile("take1.opus")
//	defer f.Close()
//	for {
//	    samples, err := f.Next()
//	    if err == io.EOF {
//	        break
//	    }
//	}
package decode
