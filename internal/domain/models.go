package domain

import "time"

// Option is a selectable answer shown for a question.
type Option struct {
	Value string `json:"value" bson:"value"`
	Text  string `json:"text" bson:"text"`
}

// AnswerValue is one accepted answer of a question.
type AnswerValue struct {
	Value string `json:"value" bson:"value"`
}

// Question is a catalog question. Survey questions collect opinions and are never scored.
type Question struct {
	ID             string        `json:"id"`
	Prompt         string        `json:"prompt"`
	Description    string        `json:"description"`
	Options        []Option      `json:"options"`
	CorrectAnswers []AnswerValue `json:"correctAnswers"`
	Points         int           `json:"points"`
	IsSurvey       bool          `json:"isSurvey"`
	IsDeleted      bool          `json:"isDeleted"`
}

// Scorable reports whether the question can receive an answer.
func (q Question) Scorable() bool {
	return !q.IsDeleted && !q.IsSurvey
}

// Quiz is a collection of questions.
type Quiz struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Questions []Question `json:"questions"`
	IsDeleted bool       `json:"isDeleted"`
}

// Question returns the scorable question with the given id.
func (q Quiz) Question(questionID string) (Question, bool) {
	if q.IsDeleted {
		return Question{}, false
	}
	for _, question := range q.Questions {
		if question.ID == questionID && question.Scorable() {
			return question, true
		}
	}
	return Question{}, false
}

// TotalQuestionCount is the number of questions a user must answer to complete the quiz.
func (q Quiz) TotalQuestionCount() int {
	n := 0
	for _, question := range q.Questions {
		if question.Scorable() {
			n++
		}
	}
	return n
}

// UserProfile is the display data of a registered user.
type UserProfile struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Photo string `json:"photo"`
}

// QuestionAttempt is a user's single answer to a quiz question.
type QuestionAttempt struct {
	QuestionID string    `json:"questionId" bson:"questionId"`
	Answer     []string  `json:"answer" bson:"answer"`
	IsCorrect  bool      `json:"isCorrect" bson:"isCorrect"`
	Duration   float64   `json:"duration" bson:"duration"`
	AnsweredOn time.Time `json:"answeredOn" bson:"answeredOn"`
}

// QuizProgress tracks the answered questions of one quiz.
type QuizProgress struct {
	QuizID      string            `json:"quizId" bson:"quizId"`
	Questions   []QuestionAttempt `json:"questions" bson:"questions"`
	CompletedOn *time.Time        `json:"completedOn,omitempty" bson:"completedOn,omitempty"`
}

// Answered reports whether questionID already has an attempt.
func (p QuizProgress) Answered(questionID string) bool {
	for _, attempt := range p.Questions {
		if attempt.QuestionID == questionID {
			return true
		}
	}
	return false
}

// ProgressState is the position of a quiz in the NotStarted -> InProgress -> Completed machine.
type ProgressState string

const (
	ProgressNotStarted ProgressState = "not_started"
	ProgressInProgress ProgressState = "in_progress"
	ProgressCompleted  ProgressState = "completed"
)

// State derives the progress state of the quiz.
func (p *QuizProgress) State() ProgressState {
	switch {
	case p == nil || len(p.Questions) == 0:
		return ProgressNotStarted
	case p.CompletedOn != nil:
		return ProgressCompleted
	default:
		return ProgressInProgress
	}
}

// Lives is the remaining attempt budget.
type Lives struct {
	Value     int       `json:"value" bson:"value"`
	UpdatedOn time.Time `json:"updatedOn" bson:"updatedOn"`
}

// Activity is the per-user progress document.
type Activity struct {
	UserID    string         `json:"userId" bson:"userId"`
	Lives     Lives          `json:"lives" bson:"lives"`
	Walnut    Ledger         `json:"walnut" bson:"walnut"`
	XP        Ledger         `json:"xp" bson:"xp"`
	Quizzes   []QuizProgress `json:"quizzes" bson:"quizzes"`
	Interests []string       `json:"interests" bson:"interests"`
	IsDeleted bool           `json:"isDeleted" bson:"isDeleted"`
	CreatedAt time.Time      `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt" bson:"updatedAt"`
}

// NewActivity builds the record created at registration.
func NewActivity(userID string, interests []string, maxLives int, now time.Time) Activity {
	return Activity{
		UserID:    userID,
		Lives:     Lives{Value: maxLives, UpdatedOn: now},
		Walnut:    Ledger{Transactions: []Transaction{}},
		XP:        Ledger{Transactions: []Transaction{}},
		Quizzes:   []QuizProgress{},
		Interests: append([]string(nil), interests...),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Progress returns the progress entry for quizID, or nil when the quiz was never started.
func (a *Activity) Progress(quizID string) *QuizProgress {
	for i := range a.Quizzes {
		if a.Quizzes[i].QuizID == quizID {
			return &a.Quizzes[i]
		}
	}
	return nil
}

// RecordAttempt appends an attempt for quizID, creating the progress entry on first use.
// total is the quiz's question count; reaching it stamps the completion time once.
func (a *Activity) RecordAttempt(quizID string, attempt QuestionAttempt, total int) (*QuizProgress, error) {
	progress := a.Progress(quizID)
	if progress == nil {
		a.Quizzes = append(a.Quizzes, QuizProgress{QuizID: quizID})
		progress = &a.Quizzes[len(a.Quizzes)-1]
	}
	if progress.Answered(attempt.QuestionID) {
		return nil, ErrAlreadyAnswered
	}
	progress.Questions = append(progress.Questions, attempt)
	if progress.CompletedOn == nil && total > 0 && len(progress.Questions) >= total {
		completed := attempt.AnsweredOn
		progress.CompletedOn = &completed
	}
	return progress, nil
}

// CompletionDays returns the completion timestamp of every completed quiz.
func (a *Activity) CompletionDays() []time.Time {
	var out []time.Time
	for _, progress := range a.Quizzes {
		if progress.CompletedOn != nil {
			out = append(out, *progress.CompletedOn)
		}
	}
	return out
}

// Ledger returns the ledger of the given kind.
func (a *Activity) Ledger(kind LedgerKind) (*Ledger, error) {
	switch kind {
	case LedgerWalnut:
		return &a.Walnut, nil
	case LedgerXP:
		return &a.XP, nil
	default:
		return nil, ErrUnknownLedger
	}
}

// Clone returns a deep copy so callers can mutate it without touching stored state.
func (a Activity) Clone() Activity {
	out := a
	out.Walnut = a.Walnut.clone()
	out.XP = a.XP.clone()
	out.Interests = append([]string(nil), a.Interests...)
	out.Quizzes = make([]QuizProgress, len(a.Quizzes))
	for i, progress := range a.Quizzes {
		cp := progress
		cp.Questions = make([]QuestionAttempt, len(progress.Questions))
		for j, attempt := range progress.Questions {
			attempt.Answer = append([]string(nil), attempt.Answer...)
			cp.Questions[j] = attempt
		}
		if progress.CompletedOn != nil {
			completed := *progress.CompletedOn
			cp.CompletedOn = &completed
		}
		out.Quizzes[i] = cp
	}
	return out
}

// StreakDay is one cell of the weekly completion grid.
type StreakDay struct {
	Date        time.Time `json:"date"`
	IsCompleted bool      `json:"isCompleted"`
}

// StreakReport is the weekly grid plus the current consecutive-day streak.
type StreakReport struct {
	Week   []StreakDay `json:"week"`
	Streak int         `json:"streak"`
}

// SortDirection orders leaderboard rows by xp.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// LeaderboardEntry is a ranked user.
type LeaderboardEntry struct {
	ID    string  `json:"id"`
	XP    float64 `json:"xp"`
	Name  string  `json:"name"`
	Photo string  `json:"photo"`
}

// Leaderboard is a page of ranked users with pagination metadata.
type Leaderboard struct {
	Data        []LeaderboardEntry `json:"data"`
	Existing    LeaderboardEntry   `json:"existing"`
	TotalDocs   int                `json:"totalDocs"`
	Limit       int                `json:"limit"`
	Page        int                `json:"page"`
	TotalPages  int                `json:"totalPages"`
	HasPrevPage bool               `json:"hasPrevPage"`
	HasNextPage bool               `json:"hasNextPage"`
	PrevPage    *int               `json:"prevPage"`
	NextPage    *int               `json:"nextPage"`
}

// AnswerResult summarizes the outcome of a submission.
type AnswerResult struct {
	QuizID        string `json:"quizId"`
	QuestionID    string `json:"questionId"`
	IsCorrect     bool   `json:"isCorrect"`
	CorrectAnswer string `json:"correctAnswerValue"`
	Description   string `json:"description"`
	Completed     bool   `json:"completed"`
	LivesLeft     int    `json:"livesLeft"`
}

// Balance is the derived state of a ledger.
type Balance struct {
	Total     float64 `json:"total"`
	Remaining float64 `json:"remaining"`
}

// ActivitySummary is the compact view of a user's activity.
type ActivitySummary struct {
	UserID           string  `json:"userId"`
	Lives            Lives   `json:"lives"`
	Walnut           Balance `json:"walnut"`
	XP               Balance `json:"xp"`
	CompletedQuizzes int     `json:"completedQuizzes"`
}
