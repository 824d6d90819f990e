package domain

// SessionState is the lifecycle phase of a quiz session.
type SessionState string

const (
	StateLoading     SessionState = "loading"
	StateReady       SessionState = "ready"
	StateFinished    SessionState = "finished"
	StateNoQuestions SessionState = "no_questions"
)

// RawQuestion is a multiple-choice record as returned by the trivia provider.
// Text fields are HTML-entity-encoded.
type RawQuestion struct {
	Category         string   `json:"category"`
	Type             string   `json:"type"`
	Difficulty       string   `json:"difficulty"`
	Question         string   `json:"question"`
	CorrectAnswer    string   `json:"correct_answer"`
	IncorrectAnswers []string `json:"incorrect_answers"`
}

// Question models a decoded MCQ question with exactly one correct option.
type Question struct {
	ID            int      `json:"id"`
	Text          string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
}

// HasOption reports whether opt is one of the question's options.
func (q Question) HasOption(opt string) bool {
	for _, o := range q.Options {
		if o == opt {
			return true
		}
	}
	return false
}

// QuestionView is a question as shown while it can still be answered.
type QuestionView struct {
	ID      int      `json:"id"`
	Text    string   `json:"question"`
	Options []string `json:"options"`
}

// FinishedSession is the immutable snapshot handed to the results step.
// A nil answer marks a question that was never answered.
type FinishedSession struct {
	Score     int        `json:"score"`
	Total     int        `json:"total"`
	Answers   []*string  `json:"answers"`
	Questions []Question `json:"questions"`
}

// SessionView is everything a quiz view needs to render the current step.
type SessionView struct {
	SessionID     string           `json:"sessionId"`
	State         SessionState     `json:"state"`
	Index         int              `json:"index"`
	Total         int              `json:"total"`
	Score         int              `json:"score"`
	TimeRemaining int              `json:"timeRemaining"`
	Warning       bool             `json:"warning"`
	Question      *QuestionView    `json:"question,omitempty"`
	Selected      *string          `json:"selected"`
	CanCommit     bool             `json:"canCommit"`
	CanPrevious   bool             `json:"canPrevious"`
	CanSkip       bool             `json:"canSkip"`
	CommitLabel   string           `json:"commitLabel,omitempty"`
	Finished      *FinishedSession `json:"finished,omitempty"`

	// Turn increments on every change of the current question.
	Turn int `json:"-"`
}

// ReviewItem is one scored line of the results review.
type ReviewItem struct {
	Index         int     `json:"index"`
	Question      string  `json:"question"`
	Answer        *string `json:"answer"`
	Answered      bool    `json:"answered"`
	Correct       bool    `json:"correct"`
	CorrectAnswer string  `json:"correctAnswer,omitempty"`
}

// Results is the scored review of a finished session.
type Results struct {
	Score        int          `json:"score"`
	Total        int          `json:"total"`
	HighScore    int          `json:"highScore"`
	NewHighScore bool         `json:"newHighScore"`
	Review       []ReviewItem `json:"review"`
}
