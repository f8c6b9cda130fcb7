package platform

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/IT-Nick/quizbot/internal/domain/model"
)

// Сервер может отдавать идентификаторы как "id" или как "_id"
type rawOption struct {
	ID       string `json:"id"`
	LegacyID string `json:"_id"`
	Text     string `json:"text"`
}

type rawQuestion struct {
	ID       string      `json:"id"`
	LegacyID string      `json:"_id"`
	Text     string      `json:"text"`
	Type     string      `json:"type"`
	Options  []rawOption `json:"options"`
}

type rawSubject struct {
	ID          string `json:"id"`
	LegacyID    string `json:"_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type rawQuiz struct {
	ID           string        `json:"id"`
	LegacyID     string        `json:"_id"`
	Title        string        `json:"title"`
	Level        string        `json:"level"`
	Subject      *rawSubject   `json:"subject"`
	Questions    []rawQuestion `json:"questions"`
	Taken        *bool         `json:"taken"`
	HasTaken     bool          `json:"hasTaken"`
	AttemptID    string        `json:"attemptId"`
	TimerMinutes int           `json:"timerMinutes"`
	CreatedAt    *time.Time    `json:"createdAt"`
}

// normalize приводит ответ сервера к model.Quiz
func (r rawQuiz) normalize() model.Quiz {
	quiz := model.Quiz{
		ID:           firstNonEmpty(r.ID, r.LegacyID),
		Title:        r.Title,
		Level:        r.Level,
		Taken:        r.HasTaken,
		AttemptID:    r.AttemptID,
		TimerMinutes: r.TimerMinutes,
		CreatedAt:    r.CreatedAt,
		Questions:    make([]model.Question, 0, len(r.Questions)),
	}
	if r.Taken != nil {
		quiz.Taken = *r.Taken
	}
	if r.Subject != nil {
		quiz.Subject = &model.Subject{
			ID:          firstNonEmpty(r.Subject.ID, r.Subject.LegacyID),
			Name:        r.Subject.Name,
			Description: r.Subject.Description,
		}
	}
	for _, q := range r.Questions {
		question := model.Question{
			ID:      firstNonEmpty(q.ID, q.LegacyID),
			Text:    q.Text,
			Type:    q.Type,
			Options: make([]model.Option, 0, len(q.Options)),
		}
		if question.Type == "" {
			question.Type = "mcq"
		}
		for _, o := range q.Options {
			question.Options = append(question.Options, model.Option{
				ID:   firstNonEmpty(o.ID, o.LegacyID),
				Text: o.Text,
			})
		}
		quiz.Questions = append(quiz.Questions, question)
	}
	return quiz
}

// ListQuizzes возвращает список викторин с необязательными фильтрами
func (c *Client) ListQuizzes(ctx context.Context, filter model.QuizFilter) ([]model.Quiz, error) {
	query := url.Values{}
	if s := strings.TrimSpace(filter.SubjectID); s != "" {
		query.Set("subjectId", s)
	}
	if s := strings.TrimSpace(filter.Level); s != "" {
		query.Set("level", s)
	}
	path := "/quizzes"
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	var raw []rawQuiz
	if err := c.do(ctx, http.MethodGet, path, nil, &raw); err != nil {
		return nil, err
	}
	quizzes := make([]model.Quiz, 0, len(raw))
	for _, r := range raw {
		quizzes = append(quizzes, r.normalize())
	}
	return quizzes, nil
}

// GetQuiz возвращает викторину с вопросами
func (c *Client) GetQuiz(ctx context.Context, quizID string) (*model.Quiz, error) {
	var raw rawQuiz
	if err := c.do(ctx, http.MethodGet, "/quizzes/"+url.PathEscape(quizID), nil, &raw); err != nil {
		return nil, err
	}
	quiz := raw.normalize()
	return &quiz, nil
}

// QuizStatus проверяет, проходил ли пользователь викторину
func (c *Client) QuizStatus(ctx context.Context, quizID string) (*model.QuizStatus, error) {
	var status model.QuizStatus
	path := fmt.Sprintf("/quizzes/%s/status", url.PathEscape(quizID))
	if err := c.do(ctx, http.MethodGet, path, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// Submit отправляет ответы. Некорректное тело отклоняется до сетевого запроса.
func (c *Client) Submit(ctx context.Context, quizID string, submission model.Submission) (*model.SubmissionResult, error) {
	payload, err := validateSubmission(quizID, submission)
	if err != nil {
		return nil, err
	}

	var result model.SubmissionResult
	path := fmt.Sprintf("/quizzes/%s/submit", url.PathEscape(strings.TrimSpace(quizID)))
	if err := c.do(ctx, http.MethodPost, path, payload, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// validateSubmission проверяет и нормализует тело отправки
func validateSubmission(quizID string, submission model.Submission) (model.Submission, error) {
	if strings.TrimSpace(quizID) == "" {
		return model.Submission{}, fmt.Errorf("%w: quiz id is required", model.ErrInvalidSubmission)
	}
	sessionID := strings.TrimSpace(submission.SessionID)
	if sessionID == "" {
		return model.Submission{}, fmt.Errorf("%w: session id is required", model.ErrInvalidSubmission)
	}
	if len(submission.Answers) == 0 {
		return model.Submission{}, fmt.Errorf("%w: answers must not be empty", model.ErrInvalidSubmission)
	}

	payload := model.Submission{SessionID: sessionID, Answers: make([]model.Answer, 0, len(submission.Answers))}
	for i, a := range submission.Answers {
		questionID := strings.TrimSpace(a.QuestionID)
		optionID := strings.TrimSpace(a.SelectedOptionID)
		if questionID == "" || optionID == "" {
			return model.Submission{}, fmt.Errorf("%w: answer %d must have questionId and selectedOptionId", model.ErrInvalidSubmission, i)
		}
		payload.Answers = append(payload.Answers, model.Answer{QuestionID: questionID, SelectedOptionID: optionID})
	}
	return payload, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
