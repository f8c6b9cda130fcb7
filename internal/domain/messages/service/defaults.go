package service

// Ключи текстов бота
const (
	WelcomeUnlinkedKey     = "welcome_unlinked"
	WelcomeLinkedKey       = "welcome_linked"
	LoginUsageKey          = "login_usage"
	LoginSuccessKey        = "login_success"
	LoginFailedKey         = "login_failed"
	NotLinkedKey           = "not_linked"
	UnauthorizedKey        = "session_unauthorized"
	QuizzesEmptyKey        = "quizzes_empty"
	QuizzesHeaderKey       = "quizzes_header"
	ActiveSessionCardKey   = "active_session_card"
	QuizAlreadyTakenKey    = "quiz_already_taken"
	BusyElsewhereKey       = "busy_elsewhere"
	QuizStartedKey         = "quiz_started"
	QuizResumedKey         = "quiz_resumed"
	TimerKey               = "timer"
	TimerNoDeadlineKey     = "timer_no_deadline"
	TimerExpiredKey        = "timer_expired"
	QuestionKey            = "question"
	AnswerSavedKey         = "answer_saved"
	SubmitIncompleteKey    = "submit_incomplete"
	SubmittingKey          = "submitting"
	ResultKey              = "result"
	ResultWrongHeaderKey   = "result_wrong_header"
	ResultWrongItemKey     = "result_wrong_item"
	AttemptLinkKey         = "attempt_link"
	AbandonedKey           = "abandoned"
	LeaveConfirmKey        = "leave_confirm"
	LeaveStayedKey         = "leave_stayed"
	NoActiveSessionKey     = "no_active_session"
	ErrorGenericKey        = "error_generic"
	WarningHeartbeatKey    = "warning_heartbeat_failed"
	WarningExpiredKey      = "warning_session_expired"
	WarningNotActiveKey    = "warning_not_active"
	WarningMissingKey      = "warning_session_missing"
	WarningAlreadyTakenKey = "warning_already_taken"
	WarningFinishOtherKey  = "warning_finish_other"
	ButtonQuizzesKey       = "btn_quizzes"
	ButtonResumeKey        = "btn_resume"
	ButtonSubmitKey        = "btn_submit"
	ButtonAbandonKey       = "btn_abandon"
	ButtonLeaveConfirmKey  = "btn_leave_confirm"
	ButtonLeaveCancelKey   = "btn_leave_cancel"
)

// defaults тексты, которые используются, пока их нет в таблице messages
var defaults = map[string]string{
	WelcomeUnlinkedKey:     "Привет, %s! Чтобы проходить викторины, привяжите аккаунт платформы: /login <токен>",
	WelcomeLinkedKey:       "Привет, %s! Выберите викторину.",
	LoginUsageKey:          "Использование: /login <токен>",
	LoginSuccessKey:        "Аккаунт %s привязан.",
	LoginFailedKey:         "Не удалось проверить токен: %s",
	NotLinkedKey:           "Сначала привяжите аккаунт: /login <токен>",
	UnauthorizedKey:        "Сессия платформы истекла. Выполните /login заново.",
	QuizzesEmptyKey:        "Доступных викторин нет.",
	QuizzesHeaderKey:       "📋 Доступные викторины:",
	ActiveSessionCardKey:   "У вас есть незавершённая викторина, осталось %s. Продолжить?",
	QuizAlreadyTakenKey:    "Вы уже прошли эту викторину.",
	BusyElsewhereKey:       "Сначала завершите активную викторину.",
	QuizStartedKey:         "Викторина «%s» началась. Вопросов: %d.",
	QuizResumedKey:         "Продолжаем викторину «%s». Ответов %d из %d.",
	TimerKey:               "⏰ Осталось: %s · Ответов %d/%d",
	TimerNoDeadlineKey:     "⏰ Ответов %d/%d",
	TimerExpiredKey:        "⏰ Время вышло!",
	QuestionKey:            "❓ Вопрос %d/%d:\n%s",
	AnswerSavedKey:         "Ответ сохранён",
	SubmitIncompleteKey:    "Ответьте на все вопросы (%d из %d)",
	SubmittingKey:          "Отправляем ответы…",
	ResultKey:              "Результат: %d/%d (%d%%)\nБаллы: +%d, всего %d",
	ResultWrongHeaderKey:   "Ошибки:",
	ResultWrongItemKey:     "• %s",
	AttemptLinkKey:         "Подробности попытки: %s",
	AbandonedKey:           "Вы покинули викторину.",
	LeaveConfirmKey:        "Викторина ещё идёт. Выйти? Сессия будет прервана.",
	LeaveStayedKey:         "Продолжаем викторину.",
	NoActiveSessionKey:     "Нет активной викторины.",
	ErrorGenericKey:        "Что-то пошло не так: %s",
	WarningHeartbeatKey:    "⚠️ Связь с платформой потеряна. Проверьте подключение.",
	WarningExpiredKey:      "⚠️ Время сессии вышло. Начните викторину заново.",
	WarningNotActiveKey:    "⚠️ Сессия не активна. Начните викторину заново.",
	WarningMissingKey:      "⚠️ Сессия не найдена. Начните викторину заново.",
	WarningAlreadyTakenKey: "⚠️ Вы уже прошли эту викторину.",
	WarningFinishOtherKey:  "⚠️ Сначала завершите активную викторину.",
	ButtonQuizzesKey:       "📋 Викторины",
	ButtonResumeKey:        "▶️ Продолжить",
	ButtonSubmitKey:        "✅ Отправить",
	ButtonAbandonKey:       "🚪 Покинуть",
	ButtonLeaveConfirmKey:  "Да, выйти",
	ButtonLeaveCancelKey:   "Остаться",
}
