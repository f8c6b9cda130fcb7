package session

import (
	"errors"
	"fmt"
	"strings"

	"github.com/IT-Nick/quizbot/internal/domain/model"
)

var (
	ErrMissingSession  = errors.New("session is missing, please restart the quiz")
	ErrMalformedAnswer = errors.New("answer must have question and option")
	ErrUnknownQuestion = errors.New("question does not belong to the quiz")
	ErrUnknownOption   = errors.New("option does not belong to the question")
	ErrQuizNotLoaded   = errors.New("quiz is not loaded")
)

// IncompleteAnswersError отправка с неполным набором ответов
type IncompleteAnswersError struct {
	Answered int
	Total    int
}

func (e *IncompleteAnswersError) Error() string {
	return fmt.Sprintf("please answer all %d questions (answered %d)", e.Total, e.Answered)
}

// Draft локальные, ещё не отправленные ответы: вопрос -> вариант
type Draft map[string]string

// Select запоминает ответ, проверяя его по содержимому викторины
func (d Draft) Select(quiz *model.Quiz, questionID, optionID string) error {
	questionID = strings.TrimSpace(questionID)
	optionID = strings.TrimSpace(optionID)
	if questionID == "" || optionID == "" {
		return ErrMalformedAnswer
	}
	if quiz == nil {
		return ErrQuizNotLoaded
	}
	question, ok := quiz.Question(questionID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownQuestion, questionID)
	}
	if len(question.Options) > 0 && !question.HasOption(optionID) {
		return fmt.Errorf("%w: %s", ErrUnknownOption, optionID)
	}
	d[questionID] = optionID
	return nil
}

// Answered число вопросов викторины, на которые дан ответ
func (d Draft) Answered(quiz *model.Quiz) int {
	if quiz == nil {
		return 0
	}
	n := 0
	for _, q := range quiz.Questions {
		if strings.TrimSpace(d[q.ID]) != "" {
			n++
		}
	}
	return n
}

// Answers собирает ответы в порядке вопросов викторины.
// Ответ должен быть на каждый вопрос, иначе *IncompleteAnswersError.
func (d Draft) Answers(quiz *model.Quiz) ([]model.Answer, error) {
	if quiz == nil {
		return nil, ErrQuizNotLoaded
	}
	answers := make([]model.Answer, 0, len(quiz.Questions))
	for _, q := range quiz.Questions {
		questionID := strings.TrimSpace(q.ID)
		optionID := strings.TrimSpace(d[q.ID])
		if questionID == "" {
			return nil, ErrMalformedAnswer
		}
		if optionID == "" {
			continue
		}
		answers = append(answers, model.Answer{QuestionID: questionID, SelectedOptionID: optionID})
	}
	if len(answers) != len(quiz.Questions) || len(answers) == 0 {
		return nil, &IncompleteAnswersError{Answered: len(answers), Total: len(quiz.Questions)}
	}
	return answers, nil
}
