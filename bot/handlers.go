package bot

import (
	"fmt"
	"strings"

	tele "gopkg.in/telebot.v4"

	coretelegram "github.com/m3rciful/cotabot/core/telegram"
	"github.com/m3rciful/cotabot/core/telegram/commands"
	"github.com/m3rciful/cotabot/core/telegram/helpers"
	"github.com/m3rciful/cotabot/cota"
)

func (a *App) setupCommands(reg *coretelegram.Registry) {
	reg.RegisterCommand("/cotas", commands.Command{
		Description: "Abrir a lista de cotas",
		Handler:     a.handleCotas,
	})
	reg.RegisterCommand("/help", commands.Command{
		Description: "Como usar o bot",
		Handler:     a.handleHelp,
	})
	reg.RegisterCommand("/sessions", commands.Command{
		Description: "Estado interno das sessões",
		Handler:     a.handleSessions,
		AdminOnly:   true,
		Hidden:      true,
	})
}

// handleCotas opens a fresh interactive view in the chat.
func (a *App) handleCotas(c tele.Context) error {
	chat := c.Chat()
	if chat == nil {
		return nil
	}
	_ = c.Notify(tele.Typing)
	ctx := helpers.BuildContext(c)
	return a.registry.WithChat(ctx, chat.ID, func(s *cota.ChatSession) error {
		return s.OpenNewView()
	})
}

func (a *App) handleHelp(c tele.Context) error {
	return helpers.SendText(c, "Tenta dar um /cotas")
}

// handleSessions dumps per-chat counters. Admin-only diagnostics.
func (a *App) handleSessions(c tele.Context) error {
	stats := a.registry.Stats()
	if len(stats) == 0 {
		return helpers.SendText(c, "Nenhuma sessão ativa.")
	}
	var b strings.Builder
	for _, st := range stats {
		fmt.Fprintf(&b, "%d: %d ativas, %d fechadas, %d telas\n",
			st.ChatID, st.Active, st.History, st.Views)
	}
	return helpers.SendText(c, b.String())
}
