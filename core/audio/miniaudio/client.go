package miniaudio

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/gen2brain/malgo"
	"github.com/koscakluka/quizvox-core/core/audio"
)

type Client struct {
	// audioContext is only saved to be able to uninitialize it, it is an
	// ownership thing
	audioContext *malgo.AllocatedContext
	playbackClient
	captureClient
}

func NewClient() (*Client, error) {
	audioCtx, err := malgo.InitContext(
		nil,
		malgo.ContextConfig{},
		func(message string) {},
	)
	if err != nil {
		log.Fatalf("malgo InitContext failed: %v", err)
	}

	client := Client{
		audioContext: audioCtx,
	}

	if err := client.playbackClient.Init(audioCtx); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to initialize playback client: %w", err)
	}

	if err := client.playbackClient.Start(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to start playback device: %w", err)
	}

	if err := client.captureClient.Init(audioCtx); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to initialize capture client: %w", err)
	}

	return &client, nil
}

// Play queues the clip and blocks until the device has consumed it or the
// context is cancelled. Cancelling drops the remaining audio.
func (c *Client) Play(ctx context.Context, clip *audio.Clip) error {
	if clip.IsEmpty() {
		return nil
	}

	played := make(chan struct{})
	if err := c.playbackClient.EnqueueClip(clip.Data, func() { close(played) }); err != nil {
		return fmt.Errorf("failed to enqueue clip: %w", err)
	}

	select {
	case <-played:
		return nil
	case <-ctx.Done():
		c.playbackClient.ClearBuffer()
		<-played
		return ctx.Err()
	}
}

// Stop drops any queued playback audio. Clips currently waiting in Play are
// released.
func (c *Client) Stop() error {
	c.playbackClient.ClearBuffer()
	return nil
}

func (c *Client) StartCapture(_ context.Context, onAudio func(audio []byte)) error {
	return c.captureClient.Start(onAudio)
}

func (c *Client) StopCapture() error {
	return c.captureClient.Stop()
}

func (c *Client) Close() error {
	err := errors.Join(
		c.captureClient.Uninit(),
		c.playbackClient.Uninit(),
		c.audioContext.Uninit(),
	)
	c.audioContext.Free()
	return err
}

func (c *Client) EncodingInfo() audio.EncodingInfo {
	return audio.GetDefaultEncodingInfo()
}
