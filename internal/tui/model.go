// Package tui is a terminal front end that plays games against a local
// engine. It talks to the questioner directly and never goes through HTTP.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/zhouzirui/twenty-questions/backend/internal/model/game"
	gameservice "github.com/zhouzirui/twenty-questions/backend/internal/service/game"
)

// Model is the bubbletea model for the terminal client. While busy is set a
// command owns the engine; Update and View only read the cached fields.
type Model struct {
	keys      KeyMap
	spinner   spinner.Model
	newEngine func() *gameservice.Engine

	engine     *gameservice.Engine
	transcript []game.Message
	status     game.Status
	outcome    game.Outcome
	verdict    game.Verdict
	busy       bool
	err        error
	width      int
}

// turnMsg carries the result of one engine call back to Update, together
// with a transcript snapshot taken on the goroutine that made the call.
type turnMsg struct {
	outcome    game.Outcome
	transcript []game.Message
	status     game.Status
	err        error
}

type turnFunc func(context.Context, *gameservice.Engine) (game.Outcome, error)

// NewModel creates a client that plays games produced by newEngine. The first
// game starts as soon as the program runs.
func NewModel(newEngine func() *gameservice.Engine) Model {
	return Model{
		keys:      DefaultKeyMap,
		spinner:   spinner.New(spinner.WithSpinner(spinner.Dot)),
		newEngine: newEngine,
		engine:    newEngine(),
		status:    game.StatusNew,
		busy:      true,
	}
}

func (model Model) Init() tea.Cmd {
	return tea.Batch(model.spinner.Tick, model.run(startTurn))
}

func (model Model) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch message := message.(type) {
	case tea.WindowSizeMsg:
		model.width = message.Width
		return model, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		model.spinner, cmd = model.spinner.Update(message)
		return model, cmd

	case turnMsg:
		model.busy = false
		model.transcript = message.transcript
		model.status = message.status
		model.err = message.err
		if message.err == nil {
			model.outcome = message.outcome
		}
		return model, nil

	case tea.KeyMsg:
		return model.handleKeys(message)
	}

	return model, nil
}

func (model Model) handleKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(message, model.keys.Quit) {
		return model, tea.Quit
	}
	if model.busy {
		return model, nil
	}

	switch {
	case model.err != nil:
		if key.Matches(message, model.keys.Retry) {
			return model.begin(retryTurn)
		}

	case model.status.Terminal():
		if key.Matches(message, model.keys.NewGame) {
			model.engine = model.newEngine()
			model.transcript = nil
			model.status = game.StatusNew
			model.outcome = game.Outcome{}
			model.verdict = game.VerdictNone
			return model.begin(startTurn)
		}
		if model.status == game.StatusWon && model.verdict == game.VerdictNone {
			switch {
			case key.Matches(message, model.keys.Yes):
				model.verdict = game.VerdictCorrect
			case key.Matches(message, model.keys.No):
				model.verdict = game.VerdictIncorrect
			}
		}

	case model.status == game.StatusInProgress:
		if answer, ok := model.answerFor(message); ok {
			return model.begin(answerTurn(answer))
		}
	}

	return model, nil
}

func (model Model) answerFor(message tea.KeyMsg) (game.Answer, bool) {
	switch {
	case key.Matches(message, model.keys.Yes):
		return game.AnswerYes, true
	case key.Matches(message, model.keys.No):
		return game.AnswerNo, true
	case key.Matches(message, model.keys.Sometimes):
		return game.AnswerSometimes, true
	case key.Matches(message, model.keys.Unknown):
		return game.AnswerUnknown, true
	}
	return "", false
}

func (model Model) begin(turn turnFunc) (tea.Model, tea.Cmd) {
	model.busy = true
	model.err = nil
	return model, model.run(turn)
}

// run plays turn on the current engine off the UI goroutine.
func (model Model) run(turn turnFunc) tea.Cmd {
	engine := model.engine
	return func() tea.Msg {
		outcome, err := turn(context.Background(), engine)
		return turnMsg{
			outcome:    outcome,
			transcript: engine.DisplayHistory(),
			status:     engine.Status(),
			err:        err,
		}
	}
}

func startTurn(ctx context.Context, engine *gameservice.Engine) (game.Outcome, error) {
	return engine.Start(ctx)
}

// retryTurn repeats whichever call failed: the opening question or the
// pending answer.
func retryTurn(ctx context.Context, engine *gameservice.Engine) (game.Outcome, error) {
	if engine.Status() == game.StatusNew {
		return engine.Start(ctx)
	}
	return engine.Retry(ctx)
}

func answerTurn(answer game.Answer) turnFunc {
	return func(ctx context.Context, engine *gameservice.Engine) (game.Outcome, error) {
		return engine.ProcessAnswer(ctx, answer)
	}
}

func (model Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("20 Questions"))
	if model.outcome.Limit > 0 {
		b.WriteString("  ")
		b.WriteString(counterStyle.Render(fmt.Sprintf("Questions asked: %d/%d", model.outcome.QuestionsAsked, model.outcome.Limit)))
	}
	b.WriteString("\n\n")

	questioner, answerer := questionerStyle, answererStyle
	if model.width > 0 {
		questioner = questioner.Width(model.width)
		answerer = answerer.Width(model.width)
	}
	for _, msg := range model.transcript {
		switch msg.Role {
		case game.RoleQuestioner:
			b.WriteString(questioner.Render("AI: " + msg.Text))
		case game.RoleAnswerer:
			b.WriteString(answerer.Render("You: " + msg.Text))
		default:
			continue
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")

	switch {
	case model.busy:
		b.WriteString(model.spinner.View() + " thinking...\n")
	case model.err != nil:
		b.WriteString(errorStyle.Render("The questioner is unavailable: "+model.err.Error()) + "\n")
	case model.status == game.StatusWon:
		b.WriteString(resultStyle.Render("I think the word is: "+model.outcome.Guess) + "\n")
		switch model.verdict {
		case game.VerdictCorrect:
			b.WriteString("Got it!\n")
		case game.VerdictIncorrect:
			b.WriteString("Thanks for playing! The word was tricky to guess.\n")
		default:
			b.WriteString("Was I correct? (y/n)\n")
		}
	case model.status == game.StatusExhausted:
		b.WriteString(resultStyle.Render("Game over!") + "\n")
		b.WriteString(fmt.Sprintf("I couldn't guess the word in %d questions. You win!\n", model.outcome.QuestionsAsked))
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render(model.helpLine()))
	b.WriteString("\n")
	return b.String()
}

func (model Model) helpLine() string {
	var bindings []key.Binding
	switch {
	case model.busy:
	case model.err != nil:
		bindings = append(bindings, model.keys.Retry)
	case model.status == game.StatusInProgress:
		bindings = append(bindings, model.keys.Yes, model.keys.No, model.keys.Sometimes, model.keys.Unknown)
	case model.status.Terminal():
		bindings = append(bindings, model.keys.NewGame)
	}
	bindings = append(bindings, model.keys.Quit)

	parts := make([]string, 0, len(bindings))
	for _, binding := range bindings {
		help := binding.Help()
		parts = append(parts, help.Key+" "+help.Desc)
	}
	return strings.Join(parts, " • ")
}
