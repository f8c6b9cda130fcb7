package report

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/IT-Nick/quizbot/internal/domain/model"
	"github.com/jung-kurt/gofpdf"
)

// Файлы шрифтов с кириллицей, которые ищутся в каталоге шрифтов
const (
	RegularFont = "DejaVuSans.ttf"
	BoldFont    = "DejaVuSans-Bold.ttf"
)

var ErrFontsMissing = errors.New("report fonts not found")

// Data содержит данные для формирования отчёта по попытке
type Data struct {
	UserName string
	Quiz     *model.Quiz
	Selected map[string]string // questionID -> optionID
	Result   model.SubmissionResult
}

// Renderer формирует PDF-отчёт по результату викторины
type Renderer struct {
	fontDir string
}

// NewRenderer проверяет, что в fontDir есть шрифты с кириллицей
func NewRenderer(fontDir string) (*Renderer, error) {
	for _, name := range []string{RegularFont, BoldFont} {
		if _, err := os.Stat(filepath.Join(fontDir, name)); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrFontsMissing, filepath.Join(fontDir, name))
		}
	}
	return &Renderer{fontDir: fontDir}, nil
}

// Render возвращает PDF. Отчёт формируется непрерывным текстом с переносами.
func (r *Renderer) Render(d Data) ([]byte, error) {
	// gofpdf ищет файлы шрифтов относительно fontDir, имена передаются без пути
	pdf := gofpdf.New("P", "mm", "A4", r.fontDir)
	pdf.AddUTF8Font("DejaVu", "", RegularFont)
	pdf.AddUTF8Font("DejaVu", "B", BoldFont)
	pdf.AddPage()

	title := "Отчет по викторине"
	if d.Quiz != nil && d.Quiz.Title != "" {
		title += ": " + d.Quiz.Title
	}
	pdf.SetFont("DejaVu", "B", 16)
	pdf.MultiCell(0, 10, title, "", "L", false)
	pdf.Ln(4)

	res := d.Result
	pdf.SetFont("DejaVu", "", 12)
	info := fmt.Sprintf("Имя: %s\nРезультат: %d правильных ответов из %d (%d%%)\nБаллы: +%d, всего %d\n",
		d.UserName, res.CorrectAnswersCount, res.TotalQuestions, res.Percentage(),
		res.PointsEarned, res.UpdatedUserTotalPoints)
	if res.AttemptID != "" {
		info += "Попытка: " + res.AttemptID + "\n"
	}
	pdf.MultiCell(0, 8, info, "", "L", false)
	pdf.Ln(4)

	wrong := make(map[string]model.WrongAnswerFeedback, len(res.WrongAnswers))
	for _, w := range res.WrongAnswers {
		wrong[w.QuestionID] = w
	}

	if d.Quiz != nil {
		for i, q := range d.Quiz.Questions {
			pdf.SetFont("DejaVu", "B", 12)
			pdf.MultiCell(0, 8, fmt.Sprintf("Вопрос %d:", i+1), "", "L", false)
			pdf.SetFont("DejaVu", "", 12)
			pdf.MultiCell(0, 8, q.Text, "", "L", false)
			pdf.Ln(2)

			answer := optionText(q, d.Selected[q.ID])
			line := fmt.Sprintf("Ваш ответ: %s\n", answer)
			if w, ok := wrong[q.ID]; ok {
				line += "Неверно"
				if w.Explanation != "" {
					line += ": " + w.Explanation
				}
				line += "\n"
				if w.CorrectOptionID != "" {
					line += fmt.Sprintf("Правильный: %s\n", optionText(q, w.CorrectOptionID))
				}
				for _, a := range w.SuggestedArticles {
					line += "Почитать: " + a.Title + "\n"
				}
			} else {
				line += "Верно\n"
			}
			pdf.MultiCell(0, 8, line, "", "L", false)
			pdf.Ln(4)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render report: %w", err)
	}
	return buf.Bytes(), nil
}

// FileName имя файла отчёта для попытки
func FileName(result model.SubmissionResult) string {
	if result.AttemptID == "" {
		return "quiz_report.pdf"
	}
	return "quiz_report_" + result.AttemptID + ".pdf"
}

func optionText(q model.Question, optionID string) string {
	for _, o := range q.Options {
		if o.ID == optionID {
			return o.Text
		}
	}
	return "—"
}
