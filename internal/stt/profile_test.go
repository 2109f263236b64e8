package stt

import (
	"errors"
	"testing"
)

func TestAudioMetadataValidate(t *testing.T) {
	valid := AudioMetadata{
		Format:        FormatWAV,
		Codec:         CodecPCM,
		SampleRate:    16000,
		Channels:      1,
		BitsPerSample: 16,
	}

	tests := []struct {
		name        string
		mutate      func(*AudioMetadata)
		expectError bool
		field       string
	}{
		{
			name:   "valid wav pcm",
			mutate: func(m *AudioMetadata) {},
		},
		{
			name:   "valid ogg opus",
			mutate: func(m *AudioMetadata) { m.Format = FormatOGG; m.Codec = CodecOpus },
		},
		{
			name:   "valid with language",
			mutate: func(m *AudioMetadata) { m.Language = "en" },
		},
		{
			name:        "unsupported format",
			mutate:      func(m *AudioMetadata) { m.Format = "mp3" },
			expectError: true,
			field:       "format",
		},
		{
			name:        "unsupported codec",
			mutate:      func(m *AudioMetadata) { m.Codec = "flac" },
			expectError: true,
			field:       "codec",
		},
		{
			name:        "unsupported sample rate",
			mutate:      func(m *AudioMetadata) { m.SampleRate = 44100 },
			expectError: true,
			field:       "sample rate",
		},
		{
			name:        "unsupported channels",
			mutate:      func(m *AudioMetadata) { m.Channels = 2 },
			expectError: true,
			field:       "channel count",
		},
		{
			name:        "unsupported bit depth",
			mutate:      func(m *AudioMetadata) { m.BitsPerSample = 24 },
			expectError: true,
			field:       "bit depth",
		},
		{
			name:        "unknown language",
			mutate:      func(m *AudioMetadata) { m.Language = "xx" },
			expectError: true,
			field:       "language",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta := valid
			tt.mutate(&meta)

			err := meta.Validate()
			if !tt.expectError {
				if err != nil {
					t.Errorf("Expected no error, got %v", err)
				}
				return
			}

			var formatErr *UnsupportedFormatError
			if !errors.As(err, &formatErr) {
				t.Fatalf("Expected *UnsupportedFormatError, got %T: %v", err, err)
			}

			if formatErr.Field != tt.field {
				t.Errorf("Expected field %q, got %q", tt.field, formatErr.Field)
			}
		})
	}
}

func TestSupportsLanguage(t *testing.T) {
	for _, lang := range []string{"en", "uk", "de", "ja"} {
		if !SupportsLanguage(lang) {
			t.Errorf("Expected %q to be supported", lang)
		}
	}

	for _, lang := range []string{"", "xx", "EN", "english"} {
		if SupportsLanguage(lang) {
			t.Errorf("Expected %q to be unsupported", lang)
		}
	}
}
