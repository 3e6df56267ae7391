package cota

import (
	"fmt"
	"strings"

	"github.com/m3rciful/cotabot/core/telegram/format"
)

// In-chat copy, kept in the chat group's language.
const (
	textMainListHeader  = "Lista de Cotas:"
	textMainListEmpty   = "*Não tem nenhuma cota!*"
	textWizardType      = "Que tipo de cota?"
	textWizardName      = "Qual o nome da cota?"
	textWizardValue     = "Quanto custa a cota?"
	textWizardDesc      = "Alguma descrição?"
	textEditPrompt      = "Qual o novo valor?"
	textNobodyYet       = "Por enquanto ninguém!"
	textHistoryEmpty    = "*Nenhuma cota fechada ainda!*"
	textNoticeNotOwner  = "Só quem criou a cota pode fazer isso!"
	textNoticeStale     = "Essa mensagem é muito antiga, manda um /cotas!"
	textBtnNewShare     = "Nova Cota"
	textBtnCloseView    = "Fechar"
	textBtnHistory      = "Histórico"
	textBtnCancel       = "Cancelar"
	textBtnSkip         = "Pular >>"
	textBtnTypePooled   = "Rateio"
	textBtnTypeGoal     = "Meta"
	textBtnBack         = "<< Voltar"
	textBtnJoin         = "Eu vou!"
	textBtnLeave        = "Não vou"
	textBtnTogglePaid   = "Paguei!"
	textBtnEditValue    = "Editar valor"
	textBtnCloseShare   = "Fechar cota"
	textBtnConfirmClose = "Sim, fechar"
	textBtnCancelClose  = "Não"
	textBtnHistoryPrev  = "<<"
	textBtnHistoryNext  = ">>"
	textBtnHistoryExit  = "Voltar"
)

// compose builds the (text, button grid) pair for a view state. It is pure
// over the session data; clamping of stale history pages happens here.
func (s *ChatSession) compose(state ViewState) (string, [][]Button) {
	switch state.Kind {
	case ViewWizard:
		return s.composeWizard(state.Step)
	case ViewDetail:
		return s.composeDetail(state.ShareID)
	case ViewCloseConfirm:
		return s.composeCloseConfirm(state.ShareID)
	case ViewHistory:
		return s.composeHistory(state.Page)
	default:
		return s.composeMainList()
	}
}

func (s *ChatSession) composeMainList() (string, [][]Button) {
	header := textMainListHeader
	if len(s.Active) == 0 {
		header = textMainListEmpty
	}

	var grid [][]Button
	for _, share := range s.activeInOrder() {
		grid = append(grid, []Button{{
			Text:  share.SummaryLine(),
			Token: tokenWithArg(TokenShowShare, share.ID),
		}})
	}
	grid = append(grid, []Button{
		{Text: textBtnCloseView, Token: TokenCloseView},
		{Text: textBtnHistory, Token: TokenHistory},
		{Text: textBtnNewShare, Token: TokenNewShare},
	})
	return header, grid
}

func (s *ChatSession) composeWizard(step int) (string, [][]Button) {
	cancel := Button{Text: textBtnCancel, Token: TokenCancelCreate}
	switch step {
	case StepType:
		return textWizardType, [][]Button{
			{
				{Text: textBtnTypePooled, Token: tokenWithArg(TokenSetType, int64(Pooled))},
				{Text: textBtnTypeGoal, Token: tokenWithArg(TokenSetType, int64(GoalBased))},
			},
			{cancel},
		}
	case StepName:
		return textWizardName, [][]Button{{cancel}}
	case StepValue:
		return textWizardValue, [][]Button{{cancel, {Text: textBtnSkip, Token: TokenSkipStep}}}
	default:
		return textWizardDesc, [][]Button{{cancel, {Text: textBtnSkip, Token: TokenSkipStep}}}
	}
}

func (s *ChatSession) composeDetail(shareID int64) (string, [][]Button) {
	share, ok := s.Active[shareID]
	if !ok {
		// Stale detail view after a close; fall back to the list.
		return s.composeMainList()
	}

	n := share.TotalParticipants()
	var b strings.Builder
	fmt.Fprintf(&b, "*%s* - %d participantes\n", format.EscapeV1(format.DerefString(share.Name, "")), n)
	if per, ok := share.PerPerson(); ok && n > 0 {
		fmt.Fprintf(&b, "R$ %.2f para cada\n", per)
	}
	if total, ok := share.TotalValue(); ok && share.Type == Pooled && n > 0 {
		fmt.Fprintf(&b, "R$ %.2f no total\n", total)
	}
	if share.Description != nil {
		fmt.Fprintf(&b, "_%s_\n", format.EscapeV1(*share.Description))
	}
	b.WriteString("\n")

	if n == 0 {
		b.WriteString(textNobodyYet)
	} else {
		for i, p := range share.Participants() {
			fmt.Fprintf(&b, "%d - %s", i+1, format.EscapeV1(p.DisplayName()))
			if p.Count > 1 {
				fmt.Fprintf(&b, " (+%d)", p.Count-1)
			}
			if p.Payed {
				b.WriteString(" ✅")
			}
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")

	grid := [][]Button{
		{
			{Text: textBtnJoin, Token: tokenWithArg(TokenJoin, shareID)},
			{Text: textBtnLeave, Token: tokenWithArg(TokenLeave, shareID)},
		},
		{
			{Text: textBtnTogglePaid, Token: tokenWithArg(TokenTogglePaid, shareID)},
		},
		{
			{Text: textBtnEditValue, Token: tokenWithArg(TokenEditValue, shareID)},
			{Text: textBtnCloseShare, Token: tokenWithArg(TokenCloseShare, shareID)},
		},
		{
			{Text: textBtnBack, Token: TokenBackToMain},
		},
	}
	return b.String(), grid
}

func (s *ChatSession) composeCloseConfirm(shareID int64) (string, [][]Button) {
	share, ok := s.Active[shareID]
	if !ok {
		return s.composeMainList()
	}
	text := fmt.Sprintf("Fechar a cota *%s*?", format.EscapeV1(format.DerefString(share.Name, "")))
	grid := [][]Button{{
		{Text: textBtnCancelClose, Token: TokenCancelClose},
		{Text: textBtnConfirmClose, Token: tokenWithArg(TokenConfirmClose, shareID)},
	}}
	return text, grid
}

func (s *ChatSession) composeHistory(page int) (string, [][]Button) {
	total := s.historyPages()
	page = clampPage(page, total)

	var b strings.Builder
	if len(s.History) == 0 {
		b.WriteString(textHistoryEmpty)
		b.WriteString("\n")
	} else {
		fmt.Fprintf(&b, "Histórico de Cotas (%d/%d):\n\n", page, total)
		start := (page - 1) * HistoryPageSize
		end := start + HistoryPageSize
		if end > len(s.History) {
			end = len(s.History)
		}
		for _, share := range s.History[start:end] {
			b.WriteString(format.EscapeV1(share.SummaryLine()))
			b.WriteString("\n")
		}
	}

	grid := [][]Button{{
		{Text: textBtnHistoryPrev, Token: TokenHistoryPrev},
		{Text: textBtnHistoryExit, Token: TokenHistoryExit},
		{Text: textBtnHistoryNext, Token: TokenHistoryNext},
	}}
	return b.String(), grid
}

// historyPages never reports zero pages; an empty history still renders one.
func (s *ChatSession) historyPages() int {
	pages := (len(s.History) + HistoryPageSize - 1) / HistoryPageSize
	if pages < 1 {
		pages = 1
	}
	return pages
}

func clampPage(page, total int) int {
	if page < 1 {
		return 1
	}
	if page > total {
		return total
	}
	return page
}
