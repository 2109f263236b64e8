// Package audio handles PCM audio accumulation and WAV container framing.
// It implements a concurrency-safe capture buffer and a pure framing function
// that wraps raw 16-bit little-endian PCM samples into a RIFF/WAVE container
// suitable for upload to the transcription service.
package audio
