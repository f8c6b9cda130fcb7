package session

import (
	"fmt"
	"time"

	"github.com/IT-Nick/quizbot/internal/domain/model"
)

// Presenter представление, которым управляет контроллер.
// Вызовы сериализованы. Из колбэков можно вызывать только Snapshot.
type Presenter interface {
	OnState(state State)
	OnTick(remaining time.Duration)
	// OnWarning пустая строка снимает предупреждение
	OnWarning(message string)
	OnNavigate(route Route)
	OnFinished(result model.SubmissionResult)
}

// NopPresenter ничего не показывает
type NopPresenter struct{}

func (NopPresenter) OnState(State)                     {}
func (NopPresenter) OnTick(time.Duration)              {}
func (NopPresenter) OnWarning(string)                  {}
func (NopPresenter) OnNavigate(Route)                  {}
func (NopPresenter) OnFinished(model.SubmissionResult) {}

// Тексты предупреждений
const (
	WarningHeartbeatFailed = "Session heartbeat failed. Please check your connection."
	WarningSessionExpired  = "Session expired. Please restart the quiz."
	WarningNotActive       = "Session is not active. Please restart the quiz."
	WarningSessionMissing  = "Session is missing. Please start the quiz again."
	WarningAlreadyTaken    = "You already completed this quiz."
	WarningFinishOther     = "Finish your active quiz session before starting another."
)

// FormatRemaining форматирует остаток времени как m:ss
func FormatRemaining(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d / time.Second)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
