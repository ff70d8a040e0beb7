package quiz_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"category-quiz-service/internal/domain"
	"category-quiz-service/internal/quiz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// manualScheduler queues transitions until the test fires them.
type manualScheduler struct {
	mu      sync.Mutex
	pending []*manualTimer
}

type manualTimer struct {
	delay   time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (t *manualTimer) Stop() bool {
	if t.fired || t.stopped {
		return false
	}
	t.stopped = true
	return true
}

func (s *manualScheduler) AfterFunc(d time.Duration, f func()) quiz.Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &manualTimer{delay: d, f: f}
	s.pending = append(s.pending, t)
	return t
}

// fireNext runs the oldest timer, even if it was stopped, to prove stale transitions are ignored.
func (s *manualScheduler) fireNext(t *testing.T, ignoreStop bool) time.Duration {
	t.Helper()
	s.mu.Lock()
	if len(s.pending) == 0 {
		s.mu.Unlock()
		t.Fatalf("no pending timers")
	}
	next := s.pending[0]
	s.pending = s.pending[1:]
	s.mu.Unlock()
	if next.stopped && !ignoreStop {
		return next.delay
	}
	next.fired = true
	next.f()
	return next.delay
}

func (s *manualScheduler) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

type fakeSource struct {
	questions []domain.Question
	err       error
	calls     int
}

func (f *fakeSource) QuestionsByCategory(_ context.Context, category domain.Category) ([]domain.Question, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	var out []domain.Question
	for _, q := range f.questions {
		if q.Category == category {
			out = append(out, q)
		}
	}
	return out, nil
}

type recordingSubmitter struct {
	mu          sync.Mutex
	submissions []domain.ScoreSubmission
	err         error
}

func (r *recordingSubmitter) SubmitScore(_ context.Context, s domain.ScoreSubmission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.submissions = append(r.submissions, s)
	return r.err
}

func makeQuestions(category domain.Category, n int) []domain.Question {
	out := make([]domain.Question, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, domain.Question{
			ID:       fmt.Sprintf("%s-%d", category, i),
			Category: category,
			Prompt:   fmt.Sprintf("question %d", i),
			Options:  [4]string{"A", "B", "C", "D"},
			Correct:  "b",
		})
	}
	return out
}

func identityShuffle(int, func(i, j int)) {}

func newEngine(source quiz.QuestionSource, submitter quiz.Submitter, sched *manualScheduler) *quiz.Engine {
	return quiz.NewEngine("u1", source, submitter, quiz.Options{
		Scheduler: sched,
		Shuffle:   identityShuffle,
		Now:       func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) },
	})
}

func TestSelectCategoryTruncatesToTen(t *testing.T) {
	source := &fakeSource{questions: append(makeQuestions(domain.Sport, 25), makeQuestions(domain.Music, 5)...)}
	engine := quiz.NewEngine("u1", source, &recordingSubmitter{}, quiz.Options{Scheduler: &manualScheduler{}})

	require.NoError(t, engine.SelectCategory(context.Background(), domain.Sport))

	snap := engine.Snapshot()
	require.Equal(t, quiz.Active, snap.State)
	require.Len(t, snap.Questions, 10)
	seen := make(map[string]bool)
	for _, q := range snap.Questions {
		assert.Equal(t, domain.Sport, q.Category)
		assert.False(t, seen[q.ID], "duplicate question %s", q.ID)
		seen[q.ID] = true
	}
	assert.Equal(t, 0, snap.Index)
	assert.Equal(t, 0, snap.Score)
}

func TestSelectCategoryDropsForeignCategories(t *testing.T) {
	mixed := append(makeQuestions(domain.History, 3), makeQuestions(domain.Movies, 4)...)
	source := &unfilteredSource{questions: mixed}
	engine := newEngine(source, &recordingSubmitter{}, &manualScheduler{})

	require.NoError(t, engine.SelectCategory(context.Background(), domain.History))
	assert.Len(t, engine.Snapshot().Questions, 3)
}

type unfilteredSource struct{ questions []domain.Question }

func (u *unfilteredSource) QuestionsByCategory(context.Context, domain.Category) ([]domain.Question, error) {
	return u.questions, nil
}

func TestSelectCategoryOnlyFromIdle(t *testing.T) {
	source := &fakeSource{questions: makeQuestions(domain.Sport, 3)}
	engine := newEngine(source, &recordingSubmitter{}, &manualScheduler{})

	require.NoError(t, engine.SelectCategory(context.Background(), domain.Sport))
	err := engine.SelectCategory(context.Background(), domain.Sport)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
	assert.Equal(t, 1, source.calls)
}

func TestStoreFailureReturnsToIdleAndAllowsRetry(t *testing.T) {
	source := &fakeSource{err: errors.New("connection refused")}
	engine := newEngine(source, &recordingSubmitter{}, &manualScheduler{})

	err := engine.SelectCategory(context.Background(), domain.Sport)
	require.ErrorIs(t, err, domain.ErrStoreUnavailable)
	snap := engine.Snapshot()
	assert.Equal(t, quiz.Idle, snap.State)
	assert.Contains(t, snap.LastError, "connection refused")

	source.err = nil
	source.questions = makeQuestions(domain.Sport, 2)
	require.NoError(t, engine.SelectCategory(context.Background(), domain.Sport))
	snap = engine.Snapshot()
	assert.Equal(t, quiz.Active, snap.State)
	assert.Empty(t, snap.LastError)
}

type slowSource struct{}

func (slowSource) QuestionsByCategory(ctx context.Context, _ domain.Category) ([]domain.Question, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestStoreTimeoutSurfacesUnavailable(t *testing.T) {
	engine := quiz.NewEngine("u1", slowSource{}, &recordingSubmitter{}, quiz.Options{
		Scheduler:    &manualScheduler{},
		StoreTimeout: 10 * time.Millisecond,
	})

	err := engine.SelectCategory(context.Background(), domain.Sport)
	require.ErrorIs(t, err, domain.ErrStoreUnavailable)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, quiz.Idle, engine.Snapshot().State)
}

func TestEmptyCategoryIsAnError(t *testing.T) {
	engine := newEngine(&fakeSource{}, &recordingSubmitter{}, &manualScheduler{})

	err := engine.SelectCategory(context.Background(), domain.Music)
	require.ErrorIs(t, err, domain.ErrNoQuestions)
	assert.Equal(t, quiz.Idle, engine.Snapshot().State)
}

func TestSubmitAnswerTwiceIsStateError(t *testing.T) {
	sched := &manualScheduler{}
	engine := newEngine(&fakeSource{questions: makeQuestions(domain.Sport, 2)}, &recordingSubmitter{}, sched)
	require.NoError(t, engine.SelectCategory(context.Background(), domain.Sport))

	out, err := engine.SubmitAnswer("b")
	require.NoError(t, err)
	assert.True(t, out.Correct)
	assert.Equal(t, 1, out.Score)

	_, err = engine.SubmitAnswer("b")
	require.ErrorIs(t, err, domain.ErrAnswerAlreadySelected)
	require.ErrorIs(t, err, domain.ErrInvalidState)
	assert.Equal(t, 1, engine.Snapshot().Score)
	assert.Equal(t, quiz.Revealing, engine.Snapshot().State)
}

func TestSubmitAnswerRejectsUnknownLabelAndCase(t *testing.T) {
	engine := newEngine(&fakeSource{questions: makeQuestions(domain.Sport, 1)}, &recordingSubmitter{}, &manualScheduler{})
	require.NoError(t, engine.SelectCategory(context.Background(), domain.Sport))

	_, err := engine.SubmitAnswer("e")
	require.ErrorIs(t, err, domain.ErrInvalidLabel)
	_, err = engine.SubmitAnswer("B")
	require.ErrorIs(t, err, domain.ErrInvalidLabel)
	assert.Equal(t, quiz.Active, engine.Snapshot().State)
}

func TestSubmitAnswerBeforeStartIsStateError(t *testing.T) {
	engine := newEngine(&fakeSource{}, &recordingSubmitter{}, &manualScheduler{})
	_, err := engine.SubmitAnswer("a")
	require.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestRevealAdvancesAfterDelay(t *testing.T) {
	sched := &manualScheduler{}
	engine := newEngine(&fakeSource{questions: makeQuestions(domain.Sport, 2)}, &recordingSubmitter{}, sched)
	require.NoError(t, engine.SelectCategory(context.Background(), domain.Sport))

	_, err := engine.SubmitAnswer("a")
	require.NoError(t, err)
	snap := engine.Snapshot()
	assert.True(t, snap.Reveal)
	assert.Equal(t, "a", snap.Selected)
	assert.Equal(t, 0, snap.Score)

	delay := sched.fireNext(t, false)
	assert.Equal(t, quiz.DefaultRevealDelay, delay)

	snap = engine.Snapshot()
	assert.Equal(t, quiz.Active, snap.State)
	assert.Equal(t, 1, snap.Index)
	assert.Empty(t, snap.Selected)
	assert.False(t, snap.Reveal)
}

func TestScoreNeverExceedsAnsweredCount(t *testing.T) {
	sched := &manualScheduler{}
	engine := newEngine(&fakeSource{questions: makeQuestions(domain.Sport, 10)}, &recordingSubmitter{}, sched)
	require.NoError(t, engine.SelectCategory(context.Background(), domain.Sport))

	for i := 0; i < 10; i++ {
		label := "b"
		if i%3 == 0 {
			label = "c"
		}
		_, err := engine.SubmitAnswer(label)
		require.NoError(t, err)
		snap := engine.Snapshot()
		assert.LessOrEqual(t, snap.Score, snap.Index+1)
		sched.fireNext(t, false)
	}
	assert.Equal(t, quiz.Terminal, engine.Snapshot().State)
	assert.Equal(t, 6, engine.Snapshot().Score)
}

func TestShortCategoryEndToEnd(t *testing.T) {
	sched := &manualScheduler{}
	submitter := &recordingSubmitter{}
	engine := newEngine(&fakeSource{questions: makeQuestions(domain.Sport, 3)}, submitter, sched)
	require.NoError(t, engine.SelectCategory(context.Background(), domain.Sport))
	require.Len(t, engine.Snapshot().Questions, 3)

	for _, label := range []string{"b", "a", "b"} {
		_, err := engine.SubmitAnswer(label)
		require.NoError(t, err)
		sched.fireNext(t, false)
	}

	snap := engine.Snapshot()
	require.Equal(t, quiz.Terminal, snap.State)
	require.Equal(t, 2, snap.Score)
	assert.Empty(t, submitter.submissions, "submission waits for the completion delay")

	delay := sched.fireNext(t, false)
	assert.Equal(t, quiz.DefaultSubmitDelay, delay)
	require.Len(t, submitter.submissions, 1)
	sub := submitter.submissions[0]
	assert.Equal(t, "u1", sub.UserID)
	assert.Equal(t, domain.Sport, sub.Category)
	assert.Equal(t, 2, sub.FinalScore)
	assert.NotEmpty(t, sub.ID)
	assert.True(t, engine.Snapshot().Submitted)
}

func TestRestartYieldsFreshSession(t *testing.T) {
	sched := &manualScheduler{}
	engine := newEngine(&fakeSource{questions: makeQuestions(domain.Sport, 1)}, &recordingSubmitter{}, sched)
	require.ErrorIs(t, engine.Restart(), domain.ErrInvalidState)

	require.NoError(t, engine.SelectCategory(context.Background(), domain.Sport))
	_, err := engine.SubmitAnswer("b")
	require.NoError(t, err)
	require.ErrorIs(t, engine.Restart(), domain.ErrInvalidState)
	sched.fireNext(t, false)
	sched.fireNext(t, false)

	require.NoError(t, engine.Restart())
	fresh := newEngine(&fakeSource{}, &recordingSubmitter{}, &manualScheduler{})
	assert.Equal(t, fresh.Snapshot(), engine.Snapshot())
}

func TestRestartCancelsPendingSubmission(t *testing.T) {
	sched := &manualScheduler{}
	submitter := &recordingSubmitter{}
	engine := newEngine(&fakeSource{questions: makeQuestions(domain.Sport, 1)}, submitter, sched)
	require.NoError(t, engine.SelectCategory(context.Background(), domain.Sport))
	_, err := engine.SubmitAnswer("b")
	require.NoError(t, err)
	sched.fireNext(t, false) // -> Terminal, submission scheduled

	require.NoError(t, engine.Restart())
	require.NoError(t, engine.SelectCategory(context.Background(), domain.Sport))

	// Fire the stale submission timer even though it was stopped.
	sched.fireNext(t, true)
	assert.Empty(t, submitter.submissions)
	assert.Equal(t, quiz.Active, engine.Snapshot().State)
}

func TestAbandonInvalidatesRevealTimer(t *testing.T) {
	sched := &manualScheduler{}
	engine := newEngine(&fakeSource{questions: makeQuestions(domain.Sport, 3)}, &recordingSubmitter{}, sched)
	require.NoError(t, engine.SelectCategory(context.Background(), domain.Sport))
	_, err := engine.SubmitAnswer("b")
	require.NoError(t, err)

	engine.Abandon()
	require.NoError(t, engine.SelectCategory(context.Background(), domain.Sport))

	sched.fireNext(t, true)
	snap := engine.Snapshot()
	assert.Equal(t, quiz.Active, snap.State)
	assert.Equal(t, 0, snap.Index)
	assert.Equal(t, 0, snap.Score)
}

func TestCloseEndsSubscriptions(t *testing.T) {
	sched := &manualScheduler{}
	engine := newEngine(&fakeSource{questions: makeQuestions(domain.Sport, 3)}, &recordingSubmitter{}, sched)
	updates, cancel := engine.Subscribe()
	defer cancel()
	require.NoError(t, engine.SelectCategory(context.Background(), domain.Sport))

	engine.Close()

	var last quiz.Snapshot
	for snap := range updates {
		last = snap
	}
	assert.Equal(t, quiz.Idle, last.State)

	late, lateCancel := engine.Subscribe()
	defer lateCancel()
	snap, ok := <-late
	require.True(t, ok)
	assert.Equal(t, quiz.Idle, snap.State)
	_, ok = <-late
	assert.False(t, ok)
}

func TestSubmissionFailureIsNotRetried(t *testing.T) {
	sched := &manualScheduler{}
	submitter := &recordingSubmitter{err: errors.New("write failed")}
	engine := newEngine(&fakeSource{questions: makeQuestions(domain.Sport, 1)}, submitter, sched)
	require.NoError(t, engine.SelectCategory(context.Background(), domain.Sport))
	_, err := engine.SubmitAnswer("b")
	require.NoError(t, err)
	sched.fireNext(t, false)
	sched.fireNext(t, false)

	assert.Len(t, submitter.submissions, 1)
	assert.Equal(t, 0, sched.len())
	assert.Equal(t, quiz.Terminal, engine.Snapshot().State)
}

func TestSubscribeReceivesTransitions(t *testing.T) {
	sched := &manualScheduler{}
	engine := newEngine(&fakeSource{questions: makeQuestions(domain.Sport, 1)}, &recordingSubmitter{}, sched)

	ch, cancel := engine.Subscribe()
	defer cancel()
	assert.Equal(t, quiz.Idle, (<-ch).State)

	require.NoError(t, engine.SelectCategory(context.Background(), domain.Sport))
	assert.Equal(t, quiz.Loading, (<-ch).State)
	assert.Equal(t, quiz.Active, (<-ch).State)

	_, err := engine.SubmitAnswer("b")
	require.NoError(t, err)
	assert.Equal(t, quiz.Revealing, (<-ch).State)
}
