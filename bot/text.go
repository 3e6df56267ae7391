package bot

import (
	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/cotabot/core/telegram/helpers"
	"github.com/m3rciful/cotabot/cota"
)

// Consume feeds plain text into the chat's session: a pending value edit
// gets first claim, then the creation wizard. Reports whether the message
// was taken so unconsumed text can fall through to command handling.
func (a *App) Consume(c tele.Context) (bool, error) {
	chat := c.Chat()
	sender := c.Sender()
	if chat == nil || sender == nil {
		return false, nil
	}

	user := cota.User{
		ID:        sender.ID,
		FirstName: sender.FirstName,
		LastName:  sender.LastName,
	}
	text := c.Text()

	consumed := false
	ctx := helpers.BuildContext(c)
	err := a.registry.WithChat(ctx, chat.ID, func(s *cota.ChatSession) error {
		if s.EditText(user, text) {
			consumed = true
			return nil
		}
		if s.WizardText(user, text) {
			consumed = true
		}
		return nil
	})
	return consumed, err
}
