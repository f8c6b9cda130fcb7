package model

// Константы для кнопок. Привязаны к названиям обработчиков.
// Не следует добавлять/изменять константы без изменения логики в соответствующем обработчике
const (
	QuizzesKey = "quizzes"
	QuizKey    = "quiz"
	ResumeKey  = "resume"
	AnswerKey  = "answer"
	SubmitKey  = "submit"
	AbandonKey = "abandon"
	LeaveKey   = "leave"
)
