package audio

import "strconv"

const (
	// CaptureSampleRate is the fixed microphone sample rate expected by the
	// listening session.
	CaptureSampleRate = 16000
	// PlaybackSampleRate is the fixed sample rate of narration audio emitted
	// by a live session.
	PlaybackSampleRate = 24000

	DefaultFormat = "linear16"
)

// CaptureEncodingInfo returns the fixed capture-side encoding (16 kHz mono
// 16-bit PCM).
func CaptureEncodingInfo() EncodingInfo {
	return EncodingInfo{SampleRate: CaptureSampleRate, Format: EncodingLinear16}
}

// PlaybackEncodingInfo returns the fixed playback-side encoding (24 kHz mono
// 16-bit PCM).
func PlaybackEncodingInfo() EncodingInfo {
	return EncodingInfo{SampleRate: PlaybackSampleRate, Format: EncodingLinear16}
}

type EncodingInfo struct {
	SampleRate int
	Format     encodingFormat
}

func (e EncodingInfo) IsZero() bool {
	return e.SampleRate == 0 || e.Format.Name() == ""
}

// MIMEType returns the MIME tag used when uploading audio to a live session,
// e.g. "audio/pcm;rate=16000".
func (e EncodingInfo) MIMEType() string {
	return "audio/pcm;rate=" + strconv.Itoa(e.SampleRate)
}

type encodingFormat string

func (e encodingFormat) Name() string {
	return string(e)
}

func (e encodingFormat) ByteSize() int {
	switch e {
	case EncodingLinear16:
		return 2
	}
	return -1
}

const (
	EncodingLinear16 encodingFormat = "linear16"
)
