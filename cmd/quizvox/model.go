package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	orchestration "github.com/koscakluka/quizvox-core/core"
	"github.com/koscakluka/quizvox-core/core/quiz"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	questionStyle = lipgloss.NewStyle().PaddingLeft(2)
	optionStyle   = lipgloss.NewStyle().PaddingLeft(4)
	statusStyle   = lipgloss.NewStyle().Faint(true)
	correctStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	wrongStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

type questionMsg struct {
	index    int
	question quiz.Question
}

type answerMsg struct {
	option  int
	correct bool
}

type tickMsg struct {
	remaining time.Duration
}

type scoreMsg struct{ score int }

type finishedMsg struct{ score int }

type quizModel struct {
	ctx          context.Context
	orchestrator *orchestration.Orchestrator
	session      *orchestration.Session
	program      *tea.Program

	spinner spinner.Model

	index     int
	question  quiz.Question
	remaining time.Duration
	score     int
	lastNote  string
	finished  bool
	width     int
}

func newQuizModel(ctx context.Context, orchestrator *orchestration.Orchestrator, questions []quiz.Question) *quizModel {
	m := &quizModel{
		ctx:          ctx,
		orchestrator: orchestrator,
		spinner:      spinner.New(spinner.WithSpinner(spinner.Dot)),
		width:        80,
	}

	m.session = orchestration.NewSession(orchestrator, questions,
		orchestration.WithQuestionCallback(func(index int, question quiz.Question) {
			m.send(questionMsg{index: index, question: question})
		}),
		orchestration.WithAnswerCallback(func(index, option int, correct bool) {
			m.send(answerMsg{option: option, correct: correct})
		}),
		orchestration.WithTickCallback(func(index int, remaining time.Duration) {
			m.send(tickMsg{remaining: remaining})
		}),
		orchestration.WithScoreCallback(func(score int) {
			m.send(scoreMsg{score: score})
		}),
		orchestration.WithFinishedCallback(func(score int) {
			m.send(finishedMsg{score: score})
		}),
		orchestration.WithHomeCallback(func() {
			m.send(finishedMsg{score: m.score})
		}),
	)

	return m
}

func (m *quizModel) send(msg tea.Msg) {
	if m.program != nil {
		m.program.Send(msg)
	}
}

func (m *quizModel) Init() tea.Cmd {
	go func() {
		if err := m.session.Run(m.ctx); err != nil {
			m.send(finishedMsg{score: m.session.Score()})
		}
	}()
	return m.spinner.Tick
}

func (m *quizModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.session.GoHome()
			return m, tea.Quit
		case "n":
			m.session.Skip()
			return m, nil
		case "r":
			m.session.Repeat()
			return m, nil
		case "1", "2", "3", "4":
			m.session.Answer(int(msg.String()[0] - '1'))
			return m, nil
		}

	case questionMsg:
		m.index = msg.index
		m.question = msg.question
		m.lastNote = ""
		return m, nil

	case answerMsg:
		letter := string(rune('A' + msg.option))
		if msg.correct {
			m.lastNote = correctStyle.Render(fmt.Sprintf("%s — bonne réponse !", letter))
		} else {
			m.lastNote = wrongStyle.Render(fmt.Sprintf("%s — mauvaise réponse", letter))
		}
		return m, nil

	case tickMsg:
		m.remaining = msg.remaining
		return m, nil

	case scoreMsg:
		m.score = msg.score
		return m, nil

	case finishedMsg:
		m.score = msg.score
		m.finished = true
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *quizModel) View() string {
	if m.finished {
		return titleStyle.Render("Quiz terminé") + fmt.Sprintf("\n\nScore final : %d points\n", m.score)
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("QuizVox"))
	b.WriteString("\n\n")

	if m.question.Text == "" {
		b.WriteString(m.spinner.View())
		b.WriteString(" Préparation de la première question...\n")
		return b.String()
	}

	b.WriteString(questionStyle.Render(wordwrap.String(
		fmt.Sprintf("Question %d : %s", m.index+1, m.question.Text), m.width-4)))
	b.WriteString("\n\n")

	for i, option := range m.question.Options {
		b.WriteString(optionStyle.Render(fmt.Sprintf("%s. %s", string(rune('A'+i)), option.Text)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.lastNote != "" {
		b.WriteString("  " + m.lastNote + "\n")
	}

	state := m.orchestrator.State()
	status := "en attente"
	if state.IsSpeaking {
		status = "lecture en cours"
	} else if state.IsListening {
		status = "à l'écoute — dites votre réponse"
	}

	b.WriteString(statusStyle.Render(fmt.Sprintf(
		"\n  %s | temps restant : %s | score : %d\n  [1-4] répondre  [n] passer  [r] répéter  [q] quitter",
		status, m.remaining.Round(time.Second), m.score)))

	return b.String()
}
