package bot

import (
	tele "gopkg.in/telebot.v4"

	coretelegram "github.com/m3rciful/cotabot/core/telegram"
	"github.com/m3rciful/cotabot/core/telegram/callbacks"
	"github.com/m3rciful/cotabot/core/telegram/helpers"
	"github.com/m3rciful/cotabot/cota"
)

// sessionOp runs one session mutation for the chat the callback came from.
// viewID is the message carrying the pressed button; shareID is the parsed
// payload (zero when the token has none).
type sessionOp func(s *cota.ChatSession, user cota.User, viewID int, shareID int64)

func (a *App) setupCallbacks(rt *coretelegram.Runtime) {
	ops := map[string]sessionOp{
		cota.TokenShowShare: func(s *cota.ChatSession, _ cota.User, viewID int, shareID int64) {
			s.OpenShareDetail(viewID, shareID)
		},
		cota.TokenNewShare: func(s *cota.ChatSession, user cota.User, viewID int, _ int64) {
			s.StartShareCreation(user, viewID)
		},
		cota.TokenSetType: func(s *cota.ChatSession, _ cota.User, viewID int, arg int64) {
			s.ChooseType(viewID, cota.ShareType(arg))
		},
		cota.TokenCancelCreate: func(s *cota.ChatSession, _ cota.User, _ int, _ int64) {
			s.CancelCreation()
		},
		cota.TokenSkipStep: func(s *cota.ChatSession, _ cota.User, viewID int, _ int64) {
			s.SkipWizardStep(viewID)
		},
		cota.TokenCloseView: func(s *cota.ChatSession, _ cota.User, viewID int, _ int64) {
			s.CloseView(viewID)
		},
		cota.TokenBackToMain: func(s *cota.ChatSession, _ cota.User, viewID int, _ int64) {
			s.BackToMain(viewID)
		},
		cota.TokenJoin: func(s *cota.ChatSession, user cota.User, _ int, shareID int64) {
			s.Join(shareID, user)
		},
		cota.TokenLeave: func(s *cota.ChatSession, user cota.User, _ int, shareID int64) {
			s.Leave(shareID, user)
		},
		cota.TokenTogglePaid: func(s *cota.ChatSession, user cota.User, _ int, shareID int64) {
			s.TogglePaid(shareID, user.ID)
		},
		cota.TokenEditValue: func(s *cota.ChatSession, user cota.User, viewID int, shareID int64) {
			s.RequestValueEdit(user.ID, viewID, shareID)
		},
		cota.TokenCancelEdit: func(s *cota.ChatSession, _ cota.User, viewID int, _ int64) {
			s.CancelValueEdit(viewID)
		},
		cota.TokenCloseShare: func(s *cota.ChatSession, user cota.User, viewID int, shareID int64) {
			s.RequestClose(user.ID, viewID, shareID)
		},
		cota.TokenConfirmClose: func(s *cota.ChatSession, user cota.User, viewID int, shareID int64) {
			s.ConfirmClose(user.ID, viewID, shareID)
		},
		cota.TokenCancelClose: func(s *cota.ChatSession, _ cota.User, viewID int, _ int64) {
			s.CancelClose(viewID)
		},
		cota.TokenHistory: func(s *cota.ChatSession, _ cota.User, viewID int, _ int64) {
			s.OpenHistory(viewID)
		},
		cota.TokenHistoryNext: func(s *cota.ChatSession, _ cota.User, viewID int, _ int64) {
			s.HistoryNext(viewID)
		},
		cota.TokenHistoryPrev: func(s *cota.ChatSession, _ cota.User, viewID int, _ int64) {
			s.HistoryPrev(viewID)
		},
		cota.TokenHistoryExit: func(s *cota.ChatSession, _ cota.User, viewID int, _ int64) {
			s.BackToMain(viewID)
		},
	}

	for verb, op := range ops {
		_ = rt.Registry.RegisterCallback(verb, a.callbackHandler(op))
	}
}

func (a *App) callbackHandler(op sessionOp) tele.HandlerFunc {
	return func(c tele.Context) error {
		cb := c.Callback()
		chat := c.Chat()
		sender := c.Sender()
		if cb == nil || cb.Message == nil || chat == nil || sender == nil {
			return nil
		}

		user := cota.User{
			ID:        sender.ID,
			FirstName: sender.FirstName,
			LastName:  sender.LastName,
		}
		viewID := cb.Message.ID
		shareID, _ := callbacks.PayloadInt64(c)

		ctx := helpers.BuildContext(c)
		return a.registry.WithChat(ctx, chat.ID, func(s *cota.ChatSession) error {
			op(s, user, viewID, shareID)
			return nil
		})
	}
}
