// Package server implements the HTTP ingress for the STT bridge.
// It accepts raw PCM audio uploads, frames them for the ASR service via the
// stt client, and provides monitoring endpoints for health, statistics, and
// Prometheus metrics.
package server
