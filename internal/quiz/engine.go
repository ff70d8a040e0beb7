package quiz

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"slices"
	"sync"
	"time"

	"category-quiz-service/internal/domain"
	"github.com/google/uuid"
)

// State is the lifecycle position of a quiz session.
type State int

const (
	Idle State = iota
	Loading
	Active
	Revealing
	Terminal
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Active:
		return "active"
	case Revealing:
		return "revealing"
	case Terminal:
		return "terminal"
	default:
		return "unknown"
	}
}

// QuestionSource returns the question records of one category, in no particular order.
type QuestionSource interface {
	QuestionsByCategory(ctx context.Context, category domain.Category) ([]domain.Question, error)
}

// Submitter persists the score of a finished session.
type Submitter interface {
	SubmitScore(ctx context.Context, submission domain.ScoreSubmission) error
}

// Options tunes an Engine. Zero values fall back to the defaults below.
type Options struct {
	SessionSize  int
	RevealDelay  time.Duration
	SubmitDelay  time.Duration
	StoreTimeout time.Duration
	Scheduler    Scheduler
	Shuffle      func(n int, swap func(i, j int))
	Now          func() time.Time
}

const (
	DefaultSessionSize  = 10
	DefaultRevealDelay  = 2 * time.Second
	DefaultSubmitDelay  = time.Second
	DefaultStoreTimeout = 10 * time.Second
)

func (o Options) withDefaults() Options {
	if o.SessionSize <= 0 {
		o.SessionSize = DefaultSessionSize
	}
	if o.RevealDelay <= 0 {
		o.RevealDelay = DefaultRevealDelay
	}
	if o.SubmitDelay <= 0 {
		o.SubmitDelay = DefaultSubmitDelay
	}
	if o.StoreTimeout <= 0 {
		o.StoreTimeout = DefaultStoreTimeout
	}
	if o.Scheduler == nil {
		o.Scheduler = RealScheduler
	}
	if o.Shuffle == nil {
		o.Shuffle = rand.Shuffle
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// Snapshot is an immutable copy of a session's observable state.
type Snapshot struct {
	UserID    string
	State     State
	Category  domain.Category
	Questions []domain.Question
	Index     int
	Score     int
	Selected  string
	Reveal    bool
	Submitted bool
	LastError string
}

// Current returns the question at Index, if any.
func (s Snapshot) Current() (domain.Question, bool) {
	if s.Index < 0 || s.Index >= len(s.Questions) {
		return domain.Question{}, false
	}
	return s.Questions[s.Index], true
}

// Outcome is the immediate result of SubmitAnswer.
type Outcome struct {
	Correct      bool   `json:"correct"`
	CorrectLabel string `json:"correctLabel"`
	Score        int    `json:"score"`
}

// Engine owns the lifecycle of one user's quiz attempts.
//
// Every scheduled transition captures the epoch that was current when it was
// scheduled; a restart or abandon bumps the epoch so stale timers become no-ops.
type Engine struct {
	userID    string
	source    QuestionSource
	submitter Submitter
	opts      Options

	mu          sync.Mutex
	state       State
	epoch       uint64
	category    domain.Category
	questions   []domain.Question
	index       int
	score       int
	selected    string
	reveal      bool
	submitted   bool
	lastErr     error
	pending     []Timer
	subscribers map[chan Snapshot]struct{}
	closed      bool
}

func NewEngine(userID string, source QuestionSource, submitter Submitter, opts Options) *Engine {
	return &Engine{
		userID:      userID,
		source:      source,
		submitter:   submitter,
		opts:        opts.withDefaults(),
		subscribers: make(map[chan Snapshot]struct{}),
	}
}

// SelectCategory starts a session: Idle -> Loading -> Active, or back to Idle on failure.
func (e *Engine) SelectCategory(ctx context.Context, category domain.Category) error {
	e.mu.Lock()
	if e.state != Idle {
		e.mu.Unlock()
		return fmt.Errorf("select category in %s: %w", e.state, domain.ErrInvalidState)
	}
	e.epoch++
	epoch := e.epoch
	e.state = Loading
	e.category = category
	e.lastErr = nil
	e.broadcastLocked()
	e.mu.Unlock()

	fetchCtx, cancel := context.WithTimeout(ctx, e.opts.StoreTimeout)
	fetched, err := e.source.QuestionsByCategory(fetchCtx, category)
	cancel()

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.epoch != epoch || e.state != Loading {
		return fmt.Errorf("session abandoned while loading: %w", domain.ErrInvalidState)
	}
	if err != nil {
		if !errors.Is(err, domain.ErrStoreUnavailable) {
			err = domain.Unavailable("fetch questions", err)
		}
		log.Printf("question fetch failed for user %s category %s: %v", e.userID, category, err)
		e.failLoadingLocked(err)
		return err
	}

	questions := make([]domain.Question, 0, len(fetched))
	for _, q := range fetched {
		if q.Category == category {
			questions = append(questions, q)
		}
	}
	if len(questions) == 0 {
		e.failLoadingLocked(domain.ErrNoQuestions)
		return domain.ErrNoQuestions
	}
	e.opts.Shuffle(len(questions), func(i, j int) {
		questions[i], questions[j] = questions[j], questions[i]
	})
	if len(questions) > e.opts.SessionSize {
		questions = questions[:e.opts.SessionSize]
	}

	e.questions = questions
	e.index = 0
	e.score = 0
	e.selected = ""
	e.reveal = false
	e.state = Active
	e.broadcastLocked()
	return nil
}

func (e *Engine) failLoadingLocked(err error) {
	e.state = Idle
	e.category = ""
	e.lastErr = err
	e.broadcastLocked()
}

// SubmitAnswer locks in an answer for the current question and schedules the reveal transition.
func (e *Engine) SubmitAnswer(label string) (Outcome, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == Revealing || (e.state == Active && e.selected != "") {
		return Outcome{}, domain.ErrAnswerAlreadySelected
	}
	if e.state != Active {
		return Outcome{}, fmt.Errorf("submit answer in %s: %w", e.state, domain.ErrInvalidState)
	}
	if !slices.Contains(domain.Labels, label) {
		return Outcome{}, domain.ErrInvalidLabel
	}

	question := e.questions[e.index]
	e.selected = label
	correct := label == question.Correct
	if correct {
		e.score++
	}
	e.reveal = true
	e.state = Revealing

	epoch := e.epoch
	e.scheduleLocked(e.opts.RevealDelay, func() { e.advance(epoch) })
	e.broadcastLocked()

	return Outcome{Correct: correct, CorrectLabel: question.Correct, Score: e.score}, nil
}

func (e *Engine) advance(epoch uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.epoch != epoch || e.state != Revealing {
		return
	}
	e.selected = ""
	e.reveal = false
	if e.index < len(e.questions)-1 {
		e.index++
		e.state = Active
	} else {
		e.state = Terminal
		e.scheduleLocked(e.opts.SubmitDelay, func() { e.submit(epoch) })
	}
	e.broadcastLocked()
}

func (e *Engine) submit(epoch uint64) {
	e.mu.Lock()
	if e.epoch != epoch || e.state != Terminal || e.submitted {
		e.mu.Unlock()
		return
	}
	e.submitted = true
	submission := domain.ScoreSubmission{
		ID:         uuid.NewString(),
		UserID:     e.userID,
		Category:   e.category,
		FinalScore: e.score,
		Timestamp:  e.opts.Now().UTC(),
	}
	e.broadcastLocked()
	e.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), e.opts.StoreTimeout)
	defer cancel()
	if err := e.submitter.SubmitScore(ctx, submission); err != nil {
		log.Printf("score submission failed for user %s category %s: %v", submission.UserID, submission.Category, err)
	}
}

// Restart returns a terminated session to Idle.
func (e *Engine) Restart() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != Terminal {
		return fmt.Errorf("restart in %s: %w", e.state, domain.ErrInvalidState)
	}
	e.resetLocked()
	e.broadcastLocked()
	return nil
}

// Abandon discards the session in any state and cancels every pending transition.
func (e *Engine) Abandon() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.resetLocked()
	e.broadcastLocked()
}

// Close abandons the session and ends every subscription. A closed engine
// hands new subscribers its final snapshot on an already closed channel.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.resetLocked()
	e.broadcastLocked()
	for ch := range e.subscribers {
		delete(e.subscribers, ch)
		close(ch)
	}
	e.closed = true
}

func (e *Engine) resetLocked() {
	for _, t := range e.pending {
		t.Stop()
	}
	e.pending = nil
	e.epoch++
	e.state = Idle
	e.category = ""
	e.questions = nil
	e.index = 0
	e.score = 0
	e.selected = ""
	e.reveal = false
	e.submitted = false
	e.lastErr = nil
}

func (e *Engine) scheduleLocked(d time.Duration, f func()) {
	e.pending = append(e.pending, e.opts.Scheduler.AfterFunc(d, f))
}

// Snapshot returns the current state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

func (e *Engine) snapshotLocked() Snapshot {
	s := Snapshot{
		UserID:    e.userID,
		State:     e.state,
		Category:  e.category,
		Questions: slices.Clone(e.questions),
		Index:     e.index,
		Score:     e.score,
		Selected:  e.selected,
		Reveal:    e.reveal,
		Submitted: e.submitted,
	}
	if e.lastErr != nil {
		s.LastError = e.lastErr.Error()
	}
	return s
}

// Subscribe returns a channel of state changes, starting with the current state.
// The caller must invoke the returned cancel function to avoid leaks.
func (e *Engine) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 8)

	e.mu.Lock()
	ch <- e.snapshotLocked()
	if e.closed {
		close(ch)
		e.mu.Unlock()
		return ch, func() {}
	}
	e.subscribers[ch] = struct{}{}
	e.mu.Unlock()

	cancel := func() {
		e.mu.Lock()
		if _, ok := e.subscribers[ch]; ok {
			delete(e.subscribers, ch)
			close(ch)
		}
		e.mu.Unlock()
	}
	return ch, cancel
}

func (e *Engine) broadcastLocked() {
	if len(e.subscribers) == 0 {
		return
	}
	snap := e.snapshotLocked()
	for ch := range e.subscribers {
		select {
		case ch <- snap:
		default:
			// slow subscriber: drop the oldest update, keep the newest
			select {
			case <-ch:
			default:
			}
			ch <- snap
		}
	}
}
