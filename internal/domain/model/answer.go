package model

// Answer выбранный вариант ответа на вопрос
type Answer struct {
	QuestionID       string `json:"questionId"`
	SelectedOptionID string `json:"selectedOptionId"`
}

// Submission тело запроса на отправку ответов
type Submission struct {
	SessionID string   `json:"sessionId"`
	Answers   []Answer `json:"answers"`
}

// ArticleRecommendation рекомендованный материал по ошибке
type ArticleRecommendation struct {
	ID                          string `json:"id"`
	Title                       string `json:"title"`
	URL                         string `json:"url"`
	Provider                    string `json:"provider"`
	EstimatedReadingTimeMinutes int    `json:"estimatedReadingTimeMinutes,omitempty"`
}

// WrongAnswerFeedback разбор неверного ответа
type WrongAnswerFeedback struct {
	QuestionID        string                  `json:"questionId"`
	QuestionText      string                  `json:"questionText"`
	SelectedOptionID  string                  `json:"selectedOptionId"`
	CorrectOptionID   string                  `json:"correctOptionId"`
	Explanation       string                  `json:"explanation,omitempty"`
	SuggestedArticles []ArticleRecommendation `json:"suggestedArticles"`
}

// SubmissionResult результат проверки попытки на сервере
type SubmissionResult struct {
	AttemptID              string                `json:"attemptId,omitempty"`
	Score                  int                   `json:"score"`
	TotalQuestions         int                   `json:"totalQuestions"`
	CorrectAnswersCount    int                   `json:"correctAnswersCount"`
	PointsEarned           int                   `json:"pointsEarned"`
	UpdatedUserTotalPoints int                   `json:"updatedUserTotalPoints"`
	WrongAnswers           []WrongAnswerFeedback `json:"wrongAnswers"`
}

// Percentage процент правильных ответов, округлённый до целого
func (r SubmissionResult) Percentage() int {
	if r.TotalQuestions <= 0 {
		return 0
	}
	return (r.Score*100 + r.TotalQuestions/2) / r.TotalQuestions
}
