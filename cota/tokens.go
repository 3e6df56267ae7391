package cota

import "fmt"

// Callback command verbs. A button token is the verb alone or the verb plus
// one integer argument, space delimited.
const (
	TokenShowShare    = "show_cota"
	TokenNewShare     = "new_cota"
	TokenSetType      = "set_type"
	TokenCancelCreate = "cancel_new_cota"
	TokenSkipStep     = "skip_step"
	TokenCloseView    = "close_ibox"
	TokenBackToMain   = "back_to_main"
	TokenJoin         = "join"
	TokenLeave        = "leave"
	TokenTogglePaid   = "toggle_paid"
	TokenEditValue    = "edit_value"
	TokenCancelEdit   = "cancel_edit"
	TokenCloseShare   = "close_cota"
	TokenConfirmClose = "confirm_close"
	TokenCancelClose  = "cancel_close"
	TokenHistory      = "history"
	TokenHistoryNext  = "history_next"
	TokenHistoryPrev  = "history_prev"
	TokenHistoryExit  = "history_exit"
)

func tokenWithArg(verb string, arg int64) string {
	return fmt.Sprintf("%s %d", verb, arg)
}
