package tui

import (
	"fmt"
	"strings"

	"trivia-quiz-service/internal/domain"
)

func (m Model) View() string {
	var b strings.Builder
	switch m.screen {
	case screenLanding:
		m.renderLanding(&b)
	case screenLoading:
		fmt.Fprintf(&b, "%s Loading questions...\n", m.spinner.View())
	case screenQuiz:
		m.renderQuiz(&b)
	case screenNoQuestions:
		b.WriteString(errorStyle.Render("No questions available."))
		b.WriteString("\n")
		if m.err != nil {
			b.WriteString(dimStyle.Render(m.err.Error()))
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(dimStyle.Render("a: try again  r: back  q: quit"))
	case screenResults:
		m.renderResults(&b)
	}
	return boxStyle.Render(b.String())
}

func (m Model) renderLanding(b *strings.Builder) {
	b.WriteString(titleStyle.Render("Trivia Quiz"))
	b.WriteString("\n\n")
	fmt.Fprintf(b, "High score: %d\n\n", m.highScore)
	b.WriteString(dimStyle.Render("enter: start  q: quit"))
}

func (m Model) renderQuiz(b *strings.Builder) {
	v := m.view
	if v.State == domain.StateFinished {
		b.WriteString("Scoring...")
		return
	}
	if v.Question == nil {
		return
	}

	timer := fmt.Sprintf("%ds", v.TimeRemaining)
	if v.Warning {
		timer = warningStyle.Render(timer)
	}
	fmt.Fprintf(b, "%s  Score: %d  Time: %s\n\n",
		titleStyle.Render(fmt.Sprintf("Question %d / %d", v.Index+1, v.Total)), v.Score, timer)
	b.WriteString(v.Question.Text)
	b.WriteString("\n\n")

	for i, opt := range v.Question.Options {
		line := fmt.Sprintf("%d. %s", i+1, opt)
		if v.Selected != nil && *v.Selected == opt {
			line = selectedStyle.Render("> " + line)
		} else {
			line = "  " + line
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	var keys []string
	if v.CanPrevious {
		keys = append(keys, "p: previous")
	}
	if v.CanCommit {
		keys = append(keys, "enter: "+strings.ToLower(v.CommitLabel))
	}
	if v.CanSkip {
		keys = append(keys, "s: skip")
	}
	keys = append(keys, "r: quit quiz")
	b.WriteString(dimStyle.Render(strings.Join(keys, "  ")))
}

func (m Model) renderResults(b *strings.Builder) {
	b.WriteString(titleStyle.Render("Results"))
	b.WriteString("\n\n")
	if m.err != nil {
		b.WriteString(errorStyle.Render("Could not save the high score: " + m.err.Error()))
		b.WriteString("\n\n")
	}

	r := m.results
	fmt.Fprintf(b, "Score: %d / %d\n", r.Score, r.Total)
	high := fmt.Sprintf("High score: %d", r.HighScore)
	if r.NewHighScore {
		high = successStyle.Render(high + " (new!)")
	}
	b.WriteString(high)
	b.WriteString("\n\n")

	for _, item := range r.Review {
		mark := errorStyle.Render("x")
		if item.Correct {
			mark = successStyle.Render("v")
		}
		fmt.Fprintf(b, "%s %d. %s\n", mark, item.Index+1, item.Question)
		switch {
		case !item.Answered:
			b.WriteString(dimStyle.Render("    Not answered"))
			b.WriteString("\n")
		default:
			fmt.Fprintf(b, "    Your answer: %s\n", *item.Answer)
		}
		if !item.Correct {
			fmt.Fprintf(b, "    Correct answer: %s\n", item.CorrectAnswer)
		}
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render("a: play again  r: restart  q: quit"))
}
