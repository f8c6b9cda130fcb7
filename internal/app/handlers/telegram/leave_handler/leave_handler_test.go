package leave_handler

import (
	"testing"

	msgService "github.com/IT-Nick/quizbot/internal/domain/messages/service"
	"github.com/stretchr/testify/require"
)

func TestConfirmMarkup(t *testing.T) {
	markup := ConfirmMarkup(map[string]string{
		msgService.ButtonLeaveConfirmKey: "Да",
		msgService.ButtonLeaveCancelKey:  "Нет",
	})
	require.Len(t, markup.InlineKeyboard, 1)
	row := markup.InlineKeyboard[0]
	require.Equal(t, "Да", row[0].Text)
	require.Equal(t, confirmData, row[0].Data)
	require.Equal(t, "Нет", row[1].Text)
	require.Equal(t, cancelData, row[1].Data)
}
