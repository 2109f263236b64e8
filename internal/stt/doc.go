// Package stt implements the HTTP client for the local Whisper ASR service.
// It frames raw PCM audio into WAV, posts it as multipart form data to the
// /asr endpoint, and returns the plain-text transcript. Failures surface as
// typed errors carrying the response status and diagnostic text; requests
// are never retried automatically.
package stt
