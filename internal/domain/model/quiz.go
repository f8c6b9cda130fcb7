package model

import "time"

// Subject представляет предметную область викторины
type Subject struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Option вариант ответа на вопрос
type Option struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Question представляет вопрос викторины
type Question struct {
	ID      string   `json:"id"`
	Text    string   `json:"text"`
	Type    string   `json:"type"` // "mcq"
	Options []Option `json:"options"`
}

// HasOption проверяет, принадлежит ли вариант ответа вопросу
func (q Question) HasOption(optionID string) bool {
	for _, o := range q.Options {
		if o.ID == optionID {
			return true
		}
	}
	return false
}

// Quiz викторина. Правильные ответы до отправки сервер не раскрывает.
type Quiz struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Level        string     `json:"level"` // "beginner", "middle", "intermediate"
	Subject      *Subject   `json:"subject,omitempty"`
	Questions    []Question `json:"questions"`
	Taken        bool       `json:"taken"`
	AttemptID    string     `json:"attemptId,omitempty"`
	TimerMinutes int        `json:"timerMinutes,omitempty"`
	CreatedAt    *time.Time `json:"createdAt,omitempty"`
}

// Question ищет вопрос по идентификатору
func (q *Quiz) Question(id string) (Question, bool) {
	for _, question := range q.Questions {
		if question.ID == id {
			return question, true
		}
	}
	return Question{}, false
}

// QuizStatus признак того, что пользователь уже проходил викторину
type QuizStatus struct {
	Taken     bool   `json:"taken"`
	AttemptID string `json:"attemptId,omitempty"`
}

// QuizFilter параметры выборки списка викторин
type QuizFilter struct {
	SubjectID string
	Level     string
}
