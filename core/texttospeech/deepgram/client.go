package deepgram

import (
	"fmt"
	"slices"
	"sync"
)

// SynthesisClient produces one clip per Synthesize call over the Deepgram
// speak API. It is safe for concurrent use; each synthesis opens its own
// websocket connection.
type SynthesisClient struct {
	voice deepgramVoice
	mu    sync.Mutex
}

func NewSynthesisClient(voice deepgramVoice) (*SynthesisClient, error) {
	client := &SynthesisClient{voice: defaultVoice}

	if !slices.Contains(GetAvailableVoices(), voice) {
		return nil, fmt.Errorf("invalid voice")
	}

	client.voice = voice

	return client, nil
}

func (c *SynthesisClient) SetVoice(voice deepgramVoice) error {
	if !slices.Contains(GetAvailableVoices(), voice) {
		return fmt.Errorf("invalid voice")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.voice = voice
	return nil
}

func (c *SynthesisClient) Voice() deepgramVoice {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.voice
}
