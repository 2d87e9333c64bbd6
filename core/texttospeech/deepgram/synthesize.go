package deepgram

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"strconv"

	"github.com/gorilla/websocket"
	"github.com/koscakluka/quizvox-core/core/audio"
	"github.com/koscakluka/quizvox-core/core/texttospeech"
)

// Synthesize converts text into a single audio clip. The whole clip is
// collected before returning so it can be cached and replayed. Only the
// encoding option is applied; the speak API exposes no rate, pitch, or
// volume controls.
func (c *SynthesisClient) Synthesize(ctx context.Context, text string, opts ...texttospeech.SynthesisOption) (*audio.Clip, error) {
	options := texttospeech.DefaultSynthesisOptions()
	for _, opt := range opts {
		opt(&options)
	}

	conn, err := connectWebsocket(c.Voice(), options.EncodingInfo)
	if err != nil {
		return nil, fmt.Errorf("failed to open websocket: %w", err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(speakMsg(text)); err != nil {
		return nil, fmt.Errorf("failed to send websocket speak message: %w", err)
	}
	if err := conn.WriteJSON(flushMsg); err != nil {
		return nil, fmt.Errorf("failed to send websocket flush message: %w", err)
	}

	clip, err := collectAudio(ctx, conn, options.EncodingInfo)
	if err != nil {
		return nil, err
	}

	if err := conn.WriteJSON(closeMsg); err != nil {
		log.Printf("Failed to send websocket close message: %v", err)
	}

	return clip, nil
}

func collectAudio(ctx context.Context, conn *websocket.Conn, encodingInfo audio.EncodingInfo) (*audio.Clip, error) {
	type readResult struct {
		clip *audio.Clip
		err  error
	}

	resultChan := make(chan readResult, 1)
	go func() {
		data := []byte{}
		for {
			msgType, msg, err := conn.ReadMessage()
			if err != nil {
				resultChan <- readResult{err: fmt.Errorf("failed to read websocket message: %w", err)}
				return
			}

			switch msgType {
			case websocket.BinaryMessage:
				data = append(data, msg...)
			case websocket.TextMessage:
				var parsedMsg struct {
					Type string `json:"type"`
				}
				if err := json.Unmarshal(msg, &parsedMsg); err != nil {
					continue
				}

				switch parsedMsg.Type {
				case "Flushed":
					resultChan <- readResult{clip: audio.NewClip(data, encodingInfo)}
					return
				case "Warning":
					log.Printf("Deepgram speak warning: %s", msg)
				}
			}
		}
	}()

	select {
	case result := <-resultChan:
		return result.clip, result.err
	case <-ctx.Done():
		conn.Close()
		return nil, ctx.Err()
	}
}

func connectWebsocket(voice deepgramVoice, encodingInfo audio.EncodingInfo) (*websocket.Conn, error) {
	apiKey, ok := os.LookupEnv("DEEPGRAM_API_KEY")
	if !ok {
		return nil, fmt.Errorf("deepgram api key not found")
	}

	urlValues := url.Values{}
	urlValues.Set("encoding", encodingInfo.Format.Name())
	urlValues.Set("sample_rate", strconv.Itoa(encodingInfo.SampleRate))
	urlValues.Set("model", string(voice))
	urlValues.Set("container", "none")

	conn, _, err := websocket.DefaultDialer.Dial(
		(&url.URL{
			Scheme: "wss",
			Host:   "api.deepgram.com", Path: "/v1/speak",
			RawQuery: urlValues.Encode(),
		}).String(),
		http.Header{"Authorization": {"token " + apiKey}})
	if err != nil {
		return nil, fmt.Errorf("failed to open socket connection to deepgram: %w", err)
	}

	return conn, nil
}

type websocketMessage struct {
	Type string `json:"type"`
}

var (
	speakMsg = func(text string) struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} {
		return struct {
			Type string `json:"type"`
			Text string `json:"text"`
		}{Type: "Speak", Text: text}
	}
	flushMsg = websocketMessage{Type: "Flush"}
	closeMsg = websocketMessage{Type: "Close"}
)
