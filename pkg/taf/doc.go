// Package taf implements the Tonie Audio Format codec pipeline: encoding a
// stream of 16-bit stereo PCM into the fixed-page, protobuf-headed
// container a cartridge-tag audio player accepts, and reading one back.
package taf
