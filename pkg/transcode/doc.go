// Package transcode bridges a PCM source to a TAF encoder in two modes:
// a batch Convert that runs until the decoder exhausts its URIs, and a
// live Stream that runs until externally cancelled, restarting the
// decoder and opening a new chapter between sources.
package transcode
