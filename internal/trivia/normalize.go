package trivia

import (
	"math/rand"
	"strings"
	"time"

	"golang.org/x/net/html"

	"trivia-quiz-service/internal/domain"
)

// Normalize decodes raw records into questions: HTML entities are unescaped,
// the correct answer is mixed into the incorrect ones in random order, and ids
// are the 1-based position in the batch.
func Normalize(raw []domain.RawQuestion, rnd *rand.Rand) []domain.Question {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	questions := make([]domain.Question, 0, len(raw))
	for i, r := range raw {
		options := make([]string, 0, len(r.IncorrectAnswers)+1)
		for _, opt := range r.IncorrectAnswers {
			options = append(options, decode(opt))
		}
		correct := decode(r.CorrectAnswer)
		options = append(options, correct)
		shuffle(options, rnd)

		questions = append(questions, domain.Question{
			ID:            i + 1,
			Text:          decode(r.Question),
			Options:       options,
			CorrectAnswer: correct,
		})
	}
	return questions
}

func decode(s string) string {
	return strings.TrimSpace(html.UnescapeString(s))
}

// shuffle is a Fisher-Yates shuffle.
func shuffle(options []string, rnd *rand.Rand) {
	for i := len(options) - 1; i > 0; i-- {
		j := rnd.Intn(i + 1)
		options[i], options[j] = options[j], options[i]
	}
}
