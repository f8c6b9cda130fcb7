package session

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/IT-Nick/quizbot/internal/domain/model"
	"github.com/IT-Nick/quizbot/internal/infra/logger"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultHeartbeatInterval = 30 * time.Second
	DefaultCountdownInterval = time.Second
	DefaultCallTimeout       = 10 * time.Second
)

// Option настройка контроллера
type Option func(*Controller)

func WithClock(clock Clock) Option {
	return func(c *Controller) { c.clock = clock }
}

func WithLogger(log *logger.Logger) Option {
	return func(c *Controller) { c.log = log }
}

func WithHeartbeatInterval(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.heartbeatEvery = d
		}
	}
}

func WithCountdownInterval(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.countdownEvery = d
		}
	}
}

func WithCallTimeout(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.callTimeout = d
		}
	}
}

// Controller ведёт одну сессию прохождения викторины для одного пользователя:
// старт, возобновление, heartbeat, обратный отсчёт, отправку и отказ.
//
// Порядок блокировок: emitMu, затем mu. Колбэки Presenter вызываются
// под emitMu, поэтому после терминального перехода тиков не бывает.
type Controller struct {
	backend   Backend
	quizzes   QuizProvider
	presenter Presenter
	clock     Clock
	log       *logger.Logger

	heartbeatEvery time.Duration
	countdownEvery time.Duration
	callTimeout    time.Duration

	emitMu sync.Mutex
	mu     sync.Mutex

	state           State
	prevState       State
	quiz            *model.Quiz
	session         model.Session
	draft           Draft
	result          *model.SubmissionResult
	attemptID       string
	warning         string
	tabHidden       bool
	expiryConfirmed bool
	closed          bool

	stopTimers context.CancelFunc
	generation uint64
	counting   bool
	wg         sync.WaitGroup
}

func NewController(backend Backend, quizzes QuizProvider, presenter Presenter, opts ...Option) *Controller {
	if presenter == nil {
		presenter = NopPresenter{}
	}
	c := &Controller{
		backend:        backend,
		quizzes:        quizzes,
		presenter:      presenter,
		clock:          SystemClock{},
		log:            logger.NewNop(),
		heartbeatEvery: DefaultHeartbeatInterval,
		countdownEvery: DefaultCountdownInterval,
		callTimeout:    DefaultCallTimeout,
		draft:          Draft{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start создаёт новую сессию для викторины. Активная сессия той же
// викторины возобновляется, сессия другой викторины возвращается как
// OutcomeBusyElsewhere без создания новой.
func (c *Controller) Start(ctx context.Context, quizID string) (Outcome, error) {
	quizID = strings.TrimSpace(quizID)
	if quizID == "" {
		return Outcome{}, ErrEmptyQuizID
	}
	if err := c.begin(quizID); err != nil {
		return Outcome{}, err
	}
	log := c.log.With("quiz_id", quizID)

	quiz, err := c.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		c.toIdle()
		return Outcome{}, fmt.Errorf("failed to load quiz %s: %w", quizID, err)
	}
	if quiz.Taken {
		c.block(quiz.AttemptID)
		return Outcome{Kind: OutcomeAlreadyTaken, AttemptID: quiz.AttemptID}, nil
	}
	// содержимое могло прийти из кеша без признака прохождения
	if status, err := c.backend.QuizStatus(ctx, quizID); err != nil {
		log.Warn("quiz status check failed", "error", err)
	} else if status != nil && status.Taken {
		c.block(status.AttemptID)
		return Outcome{Kind: OutcomeAlreadyTaken, AttemptID: status.AttemptID}, nil
	}

	active, err := c.backend.ActiveSession(ctx)
	if err != nil {
		log.Warn("active session check failed", "error", err)
	} else if active != nil && active.HasActiveSession && active.SessionID != "" {
		// сессия без викторины не может быть нашей
		if active.QuizID == "" || active.QuizID != quizID {
			c.busyElsewhere(*active)
			return Outcome{Kind: OutcomeBusyElsewhere, Other: *active}, nil
		}
		s := model.Session{SessionID: active.SessionID, QuizID: quizID}
		if active.ExpiresAt != nil {
			s.ExpiresAt = *active.ExpiresAt
		}
		if err := c.activate(quiz, s, ""); err != nil {
			return Outcome{}, err
		}
		log.Info("resumed active session", "session_id", s.SessionID)
		return Outcome{Kind: OutcomeResumed, Session: s}, nil
	}

	s, err := c.backend.StartSession(ctx, quizID)
	if err != nil {
		return c.startConflict(ctx, quiz, err)
	}
	if err := c.activate(quiz, *s, ""); err != nil {
		return Outcome{}, err
	}
	log.Info("quiz session started", "session_id", s.SessionID, "expires_at", s.ExpiresAt)
	return Outcome{Kind: OutcomeStarted, Session: *s}, nil
}

func (c *Controller) startConflict(ctx context.Context, quiz *model.Quiz, err error) (Outcome, error) {
	conflict, ok := model.AsConflict(err)
	if !ok {
		c.toIdle()
		return Outcome{}, fmt.Errorf("failed to start quiz %s: %w", quiz.ID, err)
	}
	switch conflict.Code {
	case model.ConflictQuizAlreadyTaken:
		c.block(conflict.AttemptID)
		return Outcome{Kind: OutcomeAlreadyTaken, AttemptID: conflict.AttemptID}, nil
	case model.ConflictActiveSessionExists:
		if conflict.QuizID != "" && conflict.QuizID != quiz.ID {
			other := model.ActiveSession{
				HasActiveSession: true,
				SessionID:        conflict.SessionID,
				QuizID:           conflict.QuizID,
			}
			c.busyElsewhere(other)
			return Outcome{Kind: OutcomeBusyElsewhere, Other: other}, nil
		}
		if conflict.SessionID == "" {
			c.toIdle()
			return Outcome{}, fmt.Errorf("failed to start quiz %s: %w", quiz.ID, err)
		}
		s := model.Session{SessionID: conflict.SessionID, QuizID: quiz.ID}
		// срок в ответе 409 не приходит, уточняем его отдельно
		if active, aerr := c.backend.ActiveSession(ctx); aerr == nil && active.Matches(s.SessionID) && active.ExpiresAt != nil {
			s.ExpiresAt = *active.ExpiresAt
		}
		if err := c.activate(quiz, s, ""); err != nil {
			return Outcome{}, err
		}
		return Outcome{Kind: OutcomeResumed, Session: s}, nil
	default:
		c.toIdle()
		return Outcome{}, fmt.Errorf("failed to start quiz %s: %w", quiz.ID, err)
	}
}

// Resume продолжает сессию, идентификатор которой уже известен.
// Статус викторины, её содержимое и активная сессия запрашиваются параллельно.
func (c *Controller) Resume(ctx context.Context, quizID, sessionID string) (Outcome, error) {
	quizID = strings.TrimSpace(quizID)
	sessionID = strings.TrimSpace(sessionID)
	if quizID == "" {
		return Outcome{}, ErrEmptyQuizID
	}
	if sessionID == "" {
		c.setWarning(WarningSessionMissing)
		return Outcome{}, ErrMissingSession
	}
	if err := c.begin(quizID); err != nil {
		return Outcome{}, err
	}

	var (
		status *model.QuizStatus
		quiz   *model.Quiz
		active *model.ActiveSession
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s, err := c.backend.QuizStatus(gctx, quizID)
		if err != nil {
			c.log.Warn("quiz status check failed", "quiz_id", quizID, "error", err)
			return nil
		}
		status = s
		return nil
	})
	g.Go(func() error {
		q, err := c.quizzes.GetQuiz(gctx, quizID)
		if err != nil {
			return fmt.Errorf("failed to load quiz %s: %w", quizID, err)
		}
		quiz = q
		return nil
	})
	g.Go(func() error {
		a, err := c.backend.ActiveSession(gctx)
		if err != nil {
			c.log.Warn("active session check failed", "quiz_id", quizID, "error", err)
			return nil
		}
		active = a
		return nil
	})
	if err := g.Wait(); err != nil {
		c.toIdle()
		return Outcome{}, err
	}

	if status != nil && status.Taken {
		c.block(status.AttemptID)
		return Outcome{Kind: OutcomeAlreadyTaken, AttemptID: status.AttemptID}, nil
	}
	if quiz.Taken {
		c.block(quiz.AttemptID)
		return Outcome{Kind: OutcomeAlreadyTaken, AttemptID: quiz.AttemptID}, nil
	}

	s := model.Session{SessionID: sessionID, QuizID: quizID}
	warning := ""
	if active != nil {
		if active.Matches(sessionID) {
			if active.ExpiresAt != nil {
				s.ExpiresAt = *active.ExpiresAt
			}
		} else {
			warning = WarningNotActive
		}
	}
	if err := c.activate(quiz, s, warning); err != nil {
		return Outcome{}, err
	}
	return Outcome{Kind: OutcomeResumed, Session: s}, nil
}

// ResumeQuiz продолжает активную сессию викторины. Идентификатор сессии
// берётся у сервера, поэтому кнопке достаточно знать викторину.
func (c *Controller) ResumeQuiz(ctx context.Context, quizID string) (Outcome, error) {
	quizID = strings.TrimSpace(quizID)
	if quizID == "" {
		return Outcome{}, ErrEmptyQuizID
	}
	active, err := c.backend.ActiveSession(ctx)
	if err != nil {
		return Outcome{}, fmt.Errorf("failed to get active session for quiz %s: %w", quizID, err)
	}
	sessionID := ""
	if active != nil && active.HasActiveSession && active.QuizID == quizID {
		sessionID = active.SessionID
	}
	return c.Resume(ctx, quizID, sessionID)
}

// ActiveSession активная сессия пользователя на сервере
func (c *Controller) ActiveSession(ctx context.Context) (*model.ActiveSession, error) {
	return c.backend.ActiveSession(ctx)
}

// Select запоминает ответ на вопрос. Ничего не отправляет.
func (c *Controller) Select(questionID, optionID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.acceptsAnswersLocked() {
		return ErrNotActive
	}
	return c.draft.Select(c.quiz, questionID, optionID)
}

// Submit отправляет ответы. Повторный вызов во время отправки отклоняется.
// После локального истечения отправка всё равно разрешена: решает сервер.
func (c *Controller) Submit(ctx context.Context) (*model.SubmissionResult, error) {
	c.emitMu.Lock()
	c.mu.Lock()
	if c.state == StateSubmitting {
		c.mu.Unlock()
		c.emitMu.Unlock()
		return nil, ErrSubmitInProgress
	}
	if !c.acceptsAnswersLocked() {
		c.mu.Unlock()
		c.emitMu.Unlock()
		return nil, ErrNotActive
	}
	if c.session.SessionID == "" {
		c.mu.Unlock()
		c.emitMu.Unlock()
		return nil, ErrMissingSession
	}
	answers, err := c.draft.Answers(c.quiz)
	if err != nil {
		c.mu.Unlock()
		c.emitMu.Unlock()
		return nil, err
	}
	quizID, sessionID := c.session.QuizID, c.session.SessionID
	c.prevState = c.state
	c.state = StateSubmitting
	c.mu.Unlock()
	c.presenter.OnState(StateSubmitting)
	c.emitMu.Unlock()

	result, err := c.backend.Submit(ctx, quizID, model.Submission{SessionID: sessionID, Answers: answers})

	c.emitMu.Lock()
	defer c.emitMu.Unlock()
	c.mu.Lock()
	if c.state != StateSubmitting || c.session.SessionID != sessionID {
		c.mu.Unlock()
		if err != nil {
			return nil, fmt.Errorf("failed to submit quiz %s: %w", quizID, err)
		}
		return result, nil
	}
	if err == nil {
		c.stopTimersLocked()
		c.state = StateFinished
		c.result = result
		c.attemptID = result.AttemptID
		c.warning = ""
		c.tabHidden = false
		c.mu.Unlock()
		c.presenter.OnState(StateFinished)
		c.presenter.OnWarning("")
		c.presenter.OnFinished(*result)
		c.log.Info("quiz submitted", "quiz_id", quizID, "session_id", sessionID, "score", result.Score)
		return result, nil
	}

	conflict, ok := model.AsConflict(err)
	if !ok {
		restored := c.prevState
		c.state = restored
		c.mu.Unlock()
		c.presenter.OnState(restored)
		return nil, fmt.Errorf("failed to submit quiz %s: %w", quizID, err)
	}
	switch conflict.Code {
	case model.ConflictQuizAlreadyTaken:
		route := c.blockLocked(conflict.AttemptID)
		c.mu.Unlock()
		c.emitBlocked(route)
	case model.ConflictSessionExpired, model.ConflictSessionNotActive:
		warning := WarningSessionExpired
		if conflict.Code == model.ConflictSessionNotActive {
			warning = WarningNotActive
		}
		c.stopTimersLocked()
		c.state = StateExpired
		c.expiryConfirmed = true
		c.warning = warning
		c.tabHidden = false
		c.mu.Unlock()
		c.presenter.OnState(StateExpired)
		c.presenter.OnWarning(warning)
		c.presenter.OnNavigate(Route{Kind: RouteDashboard, QuizID: quizID, Message: warning})
	default:
		restored := c.prevState
		c.state = restored
		c.mu.Unlock()
		c.presenter.OnState(restored)
	}
	return nil, fmt.Errorf("failed to submit quiz %s: %w", quizID, err)
}

// Abandon явный отказ от сессии. Ошибки сервера не мешают уйти на дашборд.
// Пока ответы отправляются, отказ отклоняется с ErrSubmitInProgress.
func (c *Controller) Abandon(ctx context.Context) error {
	c.emitMu.Lock()
	c.mu.Lock()
	switch c.state {
	case StateAbandoning:
		c.mu.Unlock()
		c.emitMu.Unlock()
		return nil
	case StateSubmitting:
		c.mu.Unlock()
		c.emitMu.Unlock()
		return ErrSubmitInProgress
	}
	sessionID := c.session.SessionID
	notify := c.holdsSessionLocked()
	c.stopTimersLocked()
	c.state = StateAbandoning
	c.mu.Unlock()
	c.presenter.OnState(StateAbandoning)
	c.emitMu.Unlock()

	if notify && sessionID != "" {
		callCtx, cancel := context.WithTimeout(ctx, c.callTimeout)
		if err := c.backend.AbandonSession(callCtx, sessionID); err != nil {
			c.log.Debug("abandon session failed", "session_id", sessionID, "error", err)
		}
		cancel()
	}

	c.emitMu.Lock()
	defer c.emitMu.Unlock()
	c.mu.Lock()
	c.state = StateAbandoned
	c.warning = ""
	c.tabHidden = false
	c.mu.Unlock()
	c.presenter.OnState(StateAbandoned)
	c.presenter.OnNavigate(Route{Kind: RouteDashboard})
	return nil
}

// NeedsLeaveConfirmation уход прервёт незавершённую сессию
func (c *Controller) NeedsLeaveConfirmation() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.holdsSessionLocked()
}

// Leave уход со страницы викторины. Пока сессия жива, спрашивает confirm.
// При согласии таймеры останавливаются, отказ уходит на сервер в фоне.
// Возвращает false, если пользователь остался. Во время отправки
// ответов уйти нельзя: ErrSubmitInProgress.
func (c *Controller) Leave(confirm func() bool) (bool, error) {
	c.mu.Lock()
	holds, submitting := c.holdsSessionLocked(), c.state == StateSubmitting
	c.mu.Unlock()
	if submitting {
		return false, ErrSubmitInProgress
	}
	if !holds {
		return true, nil
	}
	if confirm != nil && !confirm() {
		return false, nil
	}

	c.emitMu.Lock()
	c.mu.Lock()
	if c.state == StateSubmitting {
		c.mu.Unlock()
		c.emitMu.Unlock()
		return false, ErrSubmitInProgress
	}
	if !c.holdsSessionLocked() {
		c.mu.Unlock()
		c.emitMu.Unlock()
		return true, nil
	}
	sessionID := c.session.SessionID
	closed := c.closed
	c.stopTimersLocked()
	c.state = StateAbandoned
	c.warning = ""
	c.tabHidden = false
	if !closed {
		c.wg.Add(1)
	}
	c.mu.Unlock()
	c.presenter.OnState(StateAbandoned)
	c.emitMu.Unlock()

	abandon := func() {
		ctx, cancel := context.WithTimeout(context.Background(), c.callTimeout)
		defer cancel()
		if err := c.backend.AbandonSession(ctx, sessionID); err != nil {
			c.log.Debug("abandon on leave failed", "session_id", sessionID, "error", err)
		}
	}
	if closed {
		abandon()
		return true, nil
	}
	go func() {
		defer c.wg.Done()
		abandon()
	}()
	return true, nil
}

// SetHidden пользователь переключился в другое окно или вернулся
func (c *Controller) SetHidden(hidden bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tabHidden = hidden && c.state.Live()
}

// Snapshot текущее состояние для отрисовки
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	remaining, known := c.remainingLocked()
	selected := make(map[string]string, len(c.draft))
	for k, v := range c.draft {
		selected[k] = v
	}
	total := 0
	if c.quiz != nil {
		total = len(c.quiz.Questions)
	}
	return Snapshot{
		State:       c.state,
		QuizID:      c.session.QuizID,
		SessionID:   c.session.SessionID,
		Quiz:        c.quiz,
		ExpiresAt:   c.session.ExpiresAt,
		Remaining:   remaining,
		HasDeadline: known,
		Answered:    c.draft.Answered(c.quiz),
		Total:       total,
		Selected:    selected,
		Warning:     c.warning,
		TabWarning:  c.tabHidden,
		Result:      c.result,
		AttemptID:   c.attemptID,

		HoldsSession: c.holdsSessionLocked(),
	}
}

// Close останавливает таймеры и ждёт фоновые запросы.
// Нельзя вызывать из колбэков Presenter.
func (c *Controller) Close() {
	c.emitMu.Lock()
	c.mu.Lock()
	c.closed = true
	c.stopTimersLocked()
	c.mu.Unlock()
	c.emitMu.Unlock()
	c.wg.Wait()
}

// begin переводит контроллер в Starting, сбрасывая прошлую сессию
func (c *Controller) begin(quizID string) error {
	c.emitMu.Lock()
	defer c.emitMu.Unlock()
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	switch c.state {
	case StateStarting, StateActive, StateSubmitting, StateAbandoning:
		c.mu.Unlock()
		return ErrSessionInProgress
	}
	c.stopTimersLocked()
	c.state = StateStarting
	c.quiz = nil
	c.session = model.Session{QuizID: quizID}
	c.draft = Draft{}
	c.result = nil
	c.attemptID = ""
	c.warning = ""
	c.tabHidden = false
	c.expiryConfirmed = false
	c.mu.Unlock()
	c.presenter.OnState(StateStarting)
	c.presenter.OnWarning("")
	return nil
}

func (c *Controller) activate(quiz *model.Quiz, s model.Session, warning string) error {
	c.emitMu.Lock()
	defer c.emitMu.Unlock()
	c.mu.Lock()
	if c.closed {
		c.state = StateIdle
		c.mu.Unlock()
		return ErrClosed
	}
	c.quiz = quiz
	c.session = s
	c.draft = Draft{}
	c.warning = warning
	c.state = StateActive
	c.startTimersLocked()
	remaining, known := c.remainingLocked()
	c.mu.Unlock()
	c.presenter.OnState(StateActive)
	if warning != "" {
		c.presenter.OnWarning(warning)
	}
	if known {
		c.presenter.OnTick(remaining)
	}
	return nil
}

func (c *Controller) toIdle() {
	c.emitMu.Lock()
	defer c.emitMu.Unlock()
	c.mu.Lock()
	c.stopTimersLocked()
	c.state = StateIdle
	c.mu.Unlock()
	c.presenter.OnState(StateIdle)
}

// busyElsewhere возвращает в Idle и ведёт к викторине, сессия которой уже идёт
func (c *Controller) busyElsewhere(other model.ActiveSession) {
	c.emitMu.Lock()
	defer c.emitMu.Unlock()
	c.mu.Lock()
	c.stopTimersLocked()
	c.state = StateIdle
	c.mu.Unlock()
	c.presenter.OnState(StateIdle)
	c.presenter.OnNavigate(Route{Kind: RouteQuiz, QuizID: other.QuizID, SessionID: other.SessionID, Message: WarningFinishOther})
}

func (c *Controller) block(attemptID string) {
	c.emitMu.Lock()
	defer c.emitMu.Unlock()
	c.mu.Lock()
	route := c.blockLocked(attemptID)
	c.mu.Unlock()
	c.emitBlocked(route)
}

func (c *Controller) blockLocked(attemptID string) Route {
	c.stopTimersLocked()
	c.state = StateBlocked
	c.attemptID = attemptID
	c.warning = WarningAlreadyTaken
	c.tabHidden = false
	if attemptID == "" {
		return Route{Kind: RouteDashboard, QuizID: c.session.QuizID, Message: WarningAlreadyTaken}
	}
	return Route{Kind: RouteAttempt, AttemptID: attemptID, QuizID: c.session.QuizID, Message: WarningAlreadyTaken}
}

func (c *Controller) emitBlocked(route Route) {
	c.presenter.OnState(StateBlocked)
	c.presenter.OnWarning(WarningAlreadyTaken)
	c.presenter.OnNavigate(route)
}

func (c *Controller) setWarning(warning string) {
	c.emitMu.Lock()
	defer c.emitMu.Unlock()
	c.mu.Lock()
	c.warning = warning
	c.mu.Unlock()
	c.presenter.OnWarning(warning)
}

// acceptsAnswersLocked ответы принимаются в Active и после истечения,
// которое сервер ещё не подтвердил
func (c *Controller) acceptsAnswersLocked() bool {
	return c.state == StateActive || (c.state == StateExpired && !c.expiryConfirmed)
}

func (c *Controller) holdsSessionLocked() bool {
	return c.state.Live() || (c.state == StateExpired && !c.expiryConfirmed)
}

func (c *Controller) remainingLocked() (time.Duration, bool) {
	if c.session.ExpiresAt.IsZero() {
		return 0, false
	}
	remaining := c.session.ExpiresAt.Sub(c.clock.Now()).Truncate(time.Second)
	if remaining < 0 {
		remaining = 0
	}
	return remaining, true
}

func (c *Controller) startTimersLocked() {
	c.stopTimersLocked()
	ctx, cancel := context.WithCancel(context.Background())
	c.stopTimers = cancel
	gen := c.generation
	c.counting = true
	c.wg.Add(2)
	go c.heartbeatLoop(ctx, gen, c.session.SessionID)
	go c.countdownLoop(ctx, gen)
}

// stopTimersLocked отменяет таймеры и делает устаревшими их ответы в полёте
func (c *Controller) stopTimersLocked() {
	if c.stopTimers != nil {
		c.stopTimers()
		c.stopTimers = nil
	}
	c.counting = false
	c.generation++
}

func (c *Controller) heartbeatLoop(ctx context.Context, gen uint64, sessionID string) {
	defer c.wg.Done()
	ticker := c.clock.NewTicker(c.heartbeatEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C():
			if ctx.Err() != nil {
				return
			}
			c.beat(ctx, gen, sessionID)
		}
	}
}

func (c *Controller) beat(ctx context.Context, gen uint64, sessionID string) {
	callCtx, cancel := context.WithTimeout(ctx, c.callTimeout)
	resp, err := c.backend.Heartbeat(callCtx, sessionID)
	cancel()

	c.emitMu.Lock()
	defer c.emitMu.Unlock()
	c.mu.Lock()
	if c.generation != gen || !c.holdsSessionLocked() {
		c.mu.Unlock()
		return
	}
	if err != nil {
		c.log.Warn("heartbeat failed", "session_id", sessionID, "error", err)
		if c.state == StateExpired {
			c.mu.Unlock()
			return
		}
		c.warning = WarningHeartbeatFailed
		c.mu.Unlock()
		c.presenter.OnWarning(WarningHeartbeatFailed)
		return
	}
	if resp.ExpiresAt != nil {
		c.session.ExpiresAt = *resp.ExpiresAt
	}
	remaining, known := c.remainingLocked()
	extended := known && remaining > 0
	revived := false
	switch {
	case c.state == StateExpired && extended:
		// сервер продлил сессию, локальное истечение отменяется
		c.state = StateActive
		revived = true
	case c.state == StateSubmitting && c.prevState == StateExpired && extended:
		c.prevState = StateActive
	}
	if extended && !c.counting {
		c.counting = true
		c.wg.Add(1)
		go c.countdownLoop(ctx, gen)
	}
	cleared := c.warning == WarningHeartbeatFailed || (revived && c.warning == WarningSessionExpired)
	if cleared {
		c.warning = ""
	}
	c.mu.Unlock()
	if revived {
		c.log.Info("session extended after local expiry", "session_id", sessionID)
		c.presenter.OnState(StateActive)
	}
	if cleared {
		c.presenter.OnWarning("")
	}
	if known {
		c.presenter.OnTick(remaining)
	}
}

func (c *Controller) countdownLoop(ctx context.Context, gen uint64) {
	defer c.wg.Done()
	ticker := c.clock.NewTicker(c.countdownEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C():
			if ctx.Err() != nil {
				return
			}
			if done := c.tick(gen); done {
				return
			}
		}
	}
}

// tick true, если отсчёт больше не нужен
func (c *Controller) tick(gen uint64) bool {
	c.emitMu.Lock()
	defer c.emitMu.Unlock()
	c.mu.Lock()
	if c.generation != gen || !c.state.Live() {
		c.mu.Unlock()
		return true
	}
	remaining, known := c.remainingLocked()
	if !known {
		c.mu.Unlock()
		return false
	}
	// во время отправки ждём ответа сервера
	if remaining > 0 || c.state == StateSubmitting {
		c.mu.Unlock()
		c.presenter.OnTick(remaining)
		return false
	}
	// heartbeat продолжает работать: сервер может продлить сессию
	sessionID := c.session.SessionID
	c.counting = false
	c.state = StateExpired
	c.expiryConfirmed = false
	c.warning = WarningSessionExpired
	c.tabHidden = false
	c.mu.Unlock()
	c.log.Info("session expired locally", "session_id", sessionID)
	c.presenter.OnTick(0)
	c.presenter.OnState(StateExpired)
	c.presenter.OnWarning(WarningSessionExpired)
	return true
}
