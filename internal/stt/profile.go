package stt

import "fmt"

// Container formats and codecs accepted by the local ASR service.
const (
	FormatWAV = "wav"
	FormatOGG = "ogg"

	CodecPCM  = "pcm"
	CodecOpus = "opus"
)

// Audio profile the local ASR service accepts. Inputs outside this profile
// are the caller's responsibility to convert before framing.
const (
	SupportedSampleRate = 16000
	SupportedChannels   = 1
	SupportedBitDepth   = 16
)

// SupportedLanguages lists the ISO 639-1 codes the Whisper backend accepts.
var SupportedLanguages = []string{
	"af", "ar", "hy", "az", "be", "bs", "bg", "ca", "zh", "hr",
	"cs", "da", "nl", "en", "et", "fi", "fr", "gl", "de", "el",
	"he", "hi", "hu", "is", "id", "it", "ja", "kn", "kk", "ko",
	"lv", "lt", "mk", "ms", "mr", "mi", "ne", "no", "fa", "pl",
	"pt", "ro", "ru", "sr", "sk", "sl", "es", "sw", "sv", "tl",
	"ta", "th", "tr", "uk", "ur", "vi", "cy",
}

var supportedLanguageSet = func() map[string]bool {
	set := make(map[string]bool, len(SupportedLanguages))
	for _, lang := range SupportedLanguages {
		set[lang] = true
	}
	return set
}()

// SupportsLanguage reports whether the given ISO 639-1 code is accepted
func SupportsLanguage(lang string) bool {
	return supportedLanguageSet[lang]
}

// AudioMetadata describes the format of a raw PCM capture handed to the
// client for transcription.
type AudioMetadata struct {
	Format        string // container format, FormatWAV or FormatOGG
	Codec         string // CodecPCM or CodecOpus
	SampleRate    int    // Hz
	Channels      int
	BitsPerSample int
	Language      string // optional ISO 639-1 code, empty for auto-detect
}

// Validate checks the metadata against the profile the ASR service accepts.
// Violations are reported as *UnsupportedFormatError.
func (m AudioMetadata) Validate() error {
	switch m.Format {
	case FormatWAV, FormatOGG:
	default:
		return &UnsupportedFormatError{Field: "format", Value: m.Format}
	}

	switch m.Codec {
	case CodecPCM, CodecOpus:
	default:
		return &UnsupportedFormatError{Field: "codec", Value: m.Codec}
	}

	if m.SampleRate != SupportedSampleRate {
		return &UnsupportedFormatError{Field: "sample rate", Value: fmt.Sprintf("%d Hz", m.SampleRate)}
	}

	if m.Channels != SupportedChannels {
		return &UnsupportedFormatError{Field: "channel count", Value: fmt.Sprintf("%d", m.Channels)}
	}

	if m.BitsPerSample != SupportedBitDepth {
		return &UnsupportedFormatError{Field: "bit depth", Value: fmt.Sprintf("%d", m.BitsPerSample)}
	}

	if m.Language != "" && !SupportsLanguage(m.Language) {
		return &UnsupportedFormatError{Field: "language", Value: m.Language}
	}

	return nil
}
