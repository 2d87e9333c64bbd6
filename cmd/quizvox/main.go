package main

import (
	"context"
	"fmt"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	orchestration "github.com/koscakluka/quizvox-core/core"
	"github.com/koscakluka/quizvox-core/core/audio/miniaudio"
	"github.com/koscakluka/quizvox-core/core/quiz"
	sttdeepgram "github.com/koscakluka/quizvox-core/core/speechtotext/deepgram"
	ttsdeepgram "github.com/koscakluka/quizvox-core/core/texttospeech/deepgram"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "schema" {
		printBankSchema()
		return
	}

	bankPath := "questions.json"
	if len(os.Args) > 1 {
		bankPath = os.Args[1]
	}

	store, err := quiz.NewJSONStore(os.DirFS("."), bankPath)
	if err != nil {
		log.Fatalf("Failed to load question bank: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	questions, err := store.Questions(ctx)
	if err != nil {
		log.Fatalf("Failed to read questions: %v", err)
	}

	audioClient, err := miniaudio.NewClient()
	if err != nil {
		log.Fatalf("Failed to initialize audio: %v", err)
	}
	defer audioClient.Close()

	synthesizer, err := ttsdeepgram.NewSynthesisClient(ttsdeepgram.VoicePandoraFR)
	if err != nil {
		log.Fatalf("Failed to initialize synthesis: %v", err)
	}

	orchestrator := orchestration.NewOrchestrator(
		orchestration.WithSynthesizer(synthesizer),
		orchestration.WithPlayback(audioClient),
		orchestration.WithRecognizer(sttdeepgram.NewRecognitionClient()),
		orchestration.WithAudioCapture(audioClient),
		orchestration.WithRecognitionLanguage("fr"),
	)

	model := newQuizModel(ctx, orchestrator, questions)
	program := tea.NewProgram(model, tea.WithAltScreen())
	model.program = program

	if _, err := program.Run(); err != nil {
		log.Fatalf("Failed to run quiz: %v", err)
	}
}

func printBankSchema() {
	schema := quiz.BankSchema()
	data, err := schema.MarshalJSON()
	if err != nil {
		log.Fatalf("Failed to marshal question bank schema: %v", err)
	}
	fmt.Println(string(data))
}
