// Package audio provides audio processing utilities.
//
// This package serves as an umbrella for audio-related sub-packages:
//
//   - codec/opus: Opus encoding (libopus via cgo), packet padding and TOC parsing
//
// For buffer utilities, use the separate github.com/toniebox-reverse-engineering/teddy-cloud/pkg/buffer package.
package audio
