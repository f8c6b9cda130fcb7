package quizzes_handler

import (
	"testing"

	"github.com/IT-Nick/quizbot/internal/domain/model"
	"github.com/stretchr/testify/require"
)

func quizzes(n int) []model.Quiz {
	out := make([]model.Quiz, n)
	for i := range out {
		out[i] = model.Quiz{ID: string(rune('a' + i)), Title: "Quiz"}
	}
	return out
}

func TestPaginate(t *testing.T) {
	items, page, pages := Paginate(quizzes(12), 2, 5)
	require.Equal(t, 2, page)
	require.Equal(t, 3, pages)
	require.Len(t, items, 5)
	require.Equal(t, "f", items[0].ID)

	items, page, _ = Paginate(quizzes(12), 10, 5)
	require.Equal(t, 3, page)
	require.Len(t, items, 2)

	items, page, _ = Paginate(quizzes(3), 0, 5)
	require.Equal(t, 1, page)
	require.Len(t, items, 3)

	items, page, pages = Paginate(nil, 1, 5)
	require.Empty(t, items)
	require.Equal(t, 1, page)
	require.Zero(t, pages)
}

func TestKeyboard_Navigation(t *testing.T) {
	filter := model.QuizFilter{SubjectID: "s1", Level: "beginner"}

	first := Keyboard(quizzes(2), 1, 3, filter)
	require.Len(t, first.InlineKeyboard, 3)
	nav := first.InlineKeyboard[2]
	require.Len(t, nav, 2)
	require.Equal(t, ">", nav[0].Text)
	require.Equal(t, "2|s1|beginner", nav[0].Data)
	require.Equal(t, "3|s1|beginner", nav[1].Data)

	middle := Keyboard(quizzes(1), 2, 3, filter)
	require.Len(t, middle.InlineKeyboard[1], 4)

	single := Keyboard(quizzes(2), 1, 1, filter)
	require.Len(t, single.InlineKeyboard, 2)
	require.Equal(t, "a", single.InlineKeyboard[0][0].Data)
}

func TestQuizLabel(t *testing.T) {
	label := quizLabel(model.Quiz{Title: "Go", Level: "middle", TimerMinutes: 10, Taken: true})
	require.Equal(t, "✅ Go · middle · 10 мин", label)
}

func TestParseFilter(t *testing.T) {
	require.Equal(t, model.QuizFilter{SubjectID: "42", Level: "beginner"},
		ParseFilter([]string{"subject=42", "Beginner"}))
	require.Equal(t, model.QuizFilter{Level: "middle"}, ParseFilter([]string{"level=MIDDLE"}))
	require.Equal(t, model.QuizFilter{}, ParseFilter(nil))
}
