// Package contenthandler serves rUID-addressed TAF content over HTTP,
// implementing the GET/POST surface a cartridge-backed player expects:
// range-aware playback, live-stream tailing, and raw PCM upload.
package contenthandler
