package cota

// ViewKind enumerates the screens an interactive view can show.
type ViewKind int

const (
	ViewMainList ViewKind = iota
	ViewWizard
	ViewDetail
	ViewCloseConfirm
	ViewHistory
)

// Creation wizard steps, in order.
const (
	StepType = iota
	StepName
	StepValue
	StepDescription
)

// HistoryPageSize is the number of closed shares shown per history page.
const HistoryPageSize = 5

// ViewState is the tagged union of screen payloads. Step applies to
// ViewWizard, ShareID to ViewDetail and ViewCloseConfirm, Page (1-based)
// to ViewHistory.
type ViewState struct {
	Kind    ViewKind `json:"kind"`
	Step    int      `json:"step,omitempty"`
	ShareID int64    `json:"share_id,omitempty"`
	Page    int      `json:"page,omitempty"`
}

// MainListState is the initial screen of every view and the return target
// after most flows.
func MainListState() ViewState {
	return ViewState{Kind: ViewMainList}
}

// View is one live message surface. Ref stays nil until the first render
// sends the underlying message.
type View struct {
	Ref   *MessageRef `json:"ref,omitempty"`
	State ViewState   `json:"state"`
}
