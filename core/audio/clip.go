package audio

import "time"

// Clip is one fully synthesized utterance: raw audio bytes plus the encoding
// they were produced in. Clips are immutable once built and may be played any
// number of times.
type Clip struct {
	Data     []byte
	Encoding EncodingInfo
}

func NewClip(data []byte, encoding EncodingInfo) *Clip {
	return &Clip{Data: data, Encoding: encoding}
}

func (c *Clip) IsEmpty() bool {
	return c == nil || len(c.Data) == 0
}

// PlaybackDuration reports how long the clip takes to play to completion.
func (c *Clip) PlaybackDuration() time.Duration {
	if c == nil {
		return 0
	}
	return c.Encoding.Duration(len(c.Data))
}
