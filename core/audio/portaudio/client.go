package portaudio

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"log"
	"sync"
	"sync/atomic"

	"github.com/gordonklaus/portaudio"
	"github.com/koscakluka/quizvox-core/core/audio"
)

type Client struct {
	bufferSize int
	stream     *portaudio.Stream

	in  []int16
	out []int16

	capturing     atomic.Bool
	captureCancel context.CancelFunc
	playbackStop  atomic.Bool

	mu sync.Mutex
}

func NewClient(bufferSize int) (*Client, error) {
	err := portaudio.Initialize()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize PortAudio: %w", err)
	}

	in := make([]int16, bufferSize)
	out := make([]int16, bufferSize)
	stream, err := portaudio.OpenDefaultStream(1, 1, audio.DefaultSampleRate, bufferSize, in, out)
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("failed to open PortAudio stream: %w", err)
	}

	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return nil, fmt.Errorf("failed to start PortAudio stream: %w", err)
	}

	return &Client{
		bufferSize: bufferSize,
		stream:     stream,
		in:         in,
		out:        out,
	}, nil
}

// StartCapture begins reading microphone audio and forwarding it to onAudio
// until StopCapture is called or the context ends.
func (c *Client) StartCapture(ctx context.Context, onAudio func(audio []byte)) error {
	if !c.capturing.CompareAndSwap(false, true) {
		return nil
	}

	captureCtx, cancel := context.WithCancel(ctx)
	c.captureCancel = cancel

	go func() {
		defer c.capturing.Store(false)
		for {
			select {
			case <-captureCtx.Done():
				return
			default:
				if err := c.stream.Read(); err != nil {
					log.Printf("Failed to read from PortAudio stream: %v", err)
					continue
				}

				audioBuffer := bytes.Buffer{}
				binary.Write(&audioBuffer, binary.LittleEndian, c.in)
				onAudio(audioBuffer.Bytes())
			}
		}
	}()

	return nil
}

func (c *Client) StopCapture() error {
	if c.captureCancel != nil {
		c.captureCancel()
	}
	return nil
}

// Play writes the clip to the output stream chunk by chunk and returns when
// the last chunk has been written, Stop was called, or the context ended.
func (c *Client) Play(ctx context.Context, clip *audio.Clip) error {
	if clip.IsEmpty() {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.playbackStop.Store(false)
	chunkSize := c.bufferSize * 2

	data := clip.Data
	for offset := 0; offset < len(data); offset += chunkSize {
		if c.playbackStop.Load() {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		end := min(offset+chunkSize, len(data))
		chunk := data[offset:end]
		if len(chunk) < chunkSize {
			padded := make([]byte, chunkSize)
			copy(padded, chunk)
			chunk = padded
		}

		binary.Read(bytes.NewBuffer(chunk), binary.LittleEndian, c.out)
		if err := c.stream.Write(); err != nil {
			return fmt.Errorf("failed to write to PortAudio stream: %w", err)
		}
	}

	return nil
}

func (c *Client) Stop() error {
	c.playbackStop.Store(true)
	return nil
}

func (c *Client) Close() {
	c.StopCapture()
	c.stream.Close()
	portaudio.Terminate()
}

func (c *Client) EncodingInfo() audio.EncodingInfo {
	return audio.GetDefaultEncodingInfo()
}
