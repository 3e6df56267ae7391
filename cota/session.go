package cota

import (
	"context"
	"log/slog"
	"sort"

	"github.com/m3rciful/cotabot/core/logger"
	"github.com/m3rciful/cotabot/core/telegram/format"
)

// ChatSession is the per-chat aggregate: active shares, closed history,
// open views and the in-flight wizard/edit slots. All methods assume the
// caller serializes access per chat; see Registry.WithChat.
//
// Views reference shares by id and the wizard/edit slots reference views by
// message id, so the whole struct round-trips through JSON without cycles.
type ChatSession struct {
	ID          int64            `json:"id"`
	Active      map[int64]*Share `json:"active"`
	History     []*Share         `json:"history"`
	NextShareID int64            `json:"next_share_id"`
	Views       map[int]*View    `json:"views"`

	// Pending is the share under construction; CreationViewID is the view
	// hosting the wizard. Both are set and cleared together.
	Pending        *Share `json:"pending,omitempty"`
	CreationViewID int    `json:"creation_view_id,omitempty"`

	// EditShareID / EditViewID form the value-edit slot. The prompt
	// replaces the view's content without changing its state.
	EditShareID int64 `json:"edit_share_id,omitempty"`
	EditViewID  int   `json:"edit_view_id,omitempty"`

	tr Transport
}

// NewChatSession creates an empty session. Share ids start at 1 so a zero
// EditShareID always means "no edit in flight".
func NewChatSession(chatID int64) *ChatSession {
	return &ChatSession{
		ID:          chatID,
		Active:      make(map[int64]*Share),
		Views:       make(map[int]*View),
		NextShareID: 1,
	}
}

func (s *ChatSession) attach(tr Transport) {
	s.tr = tr
	if s.Active == nil {
		s.Active = make(map[int64]*Share)
	}
	if s.Views == nil {
		s.Views = make(map[int]*View)
	}
	if s.NextShareID < 1 {
		s.NextShareID = 1
	}
}

// activeInOrder returns active shares by ascending id, which matches
// creation order.
func (s *ChatSession) activeInOrder() []*Share {
	list := make([]*Share, 0, len(s.Active))
	for _, share := range s.Active {
		list = append(list, share)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list
}

// render sends or edits the message behind one view. A view whose id sits
// in the edit slot shows the value prompt instead of its own state.
func (s *ChatSession) render(viewID int, v *View) error {
	var text string
	var grid [][]Button
	if s.EditViewID != 0 && viewID == s.EditViewID {
		text = textEditPrompt
		grid = [][]Button{{{Text: textBtnCancel, Token: TokenCancelEdit}}}
	} else {
		text, grid = s.compose(v.State)
	}

	if v.Ref == nil {
		ref, err := s.tr.Send(s.ID, text, grid)
		if err != nil {
			return err
		}
		v.Ref = &ref
		return nil
	}
	return s.tr.Edit(*v.Ref, text, grid)
}

// renderAll re-renders every open view. Failures are logged and leave the
// view's state untouched.
func (s *ChatSession) renderAll() {
	for id, v := range s.Views {
		if err := s.render(id, v); err != nil {
			logger.SESSION.LogAttrs(context.Background(), slog.LevelWarn, "view.render_failed",
				slog.Int64("chat_id", s.ID),
				slog.Int("view", id),
				slog.String("err", err.Error()),
			)
		}
	}
}

// OpenNewView creates a fresh view in the main list and registers it under
// the message id the transport assigned.
func (s *ChatSession) OpenNewView() error {
	v := &View{State: MainListState()}
	if err := s.render(0, v); err != nil {
		return err
	}
	s.Views[v.Ref.MessageID] = v
	logger.SESSION.LogAttrs(context.Background(), slog.LevelInfo, "view.opened",
		slog.Int64("chat_id", s.ID),
		slog.Int("view", v.Ref.MessageID),
		slog.Int("views", len(s.Views)),
	)
	return nil
}

// CloseView deletes the view's message and deregisters it. A stale message
// only produces a notice; the view is deregistered either way. Closing the
// view that hosts the wizard or the edit prompt clears that slot too.
func (s *ChatSession) CloseView(viewID int) {
	v, ok := s.Views[viewID]
	if !ok {
		return
	}
	if v.Ref != nil {
		if err := s.tr.Delete(*v.Ref); err != nil {
			s.tr.Notice(s.ID, textNoticeStale)
			logger.SESSION.LogAttrs(context.Background(), slog.LevelWarn, "view.delete_failed",
				slog.Int64("chat_id", s.ID),
				slog.Int("view", viewID),
				slog.String("err", err.Error()),
			)
		}
	}
	delete(s.Views, viewID)
	if s.CreationViewID == viewID {
		s.clearWizardSlot()
	}
	if s.EditViewID == viewID {
		s.clearEditSlot()
	}
}

// BringToFront destroys the view and recreates it under a fresh message so
// it becomes the newest message in the chat again. The optional state
// overrides the carried one.
func (s *ChatSession) BringToFront(viewID int, state *ViewState) error {
	v, ok := s.Views[viewID]
	if !ok {
		return ErrNotFound
	}
	next := v.State
	if state != nil {
		next = *state
	}

	if v.Ref != nil {
		if err := s.tr.Delete(*v.Ref); err != nil {
			logger.SESSION.LogAttrs(context.Background(), slog.LevelDebug, "view.front_delete_failed",
				slog.Int64("chat_id", s.ID),
				slog.Int("view", viewID),
				slog.String("err", err.Error()),
			)
		}
	}
	delete(s.Views, viewID)

	fresh := &View{State: next}
	if err := s.render(0, fresh); err != nil {
		return err
	}
	s.Views[fresh.Ref.MessageID] = fresh

	// Carry the wizard/edit slot over to the new message id.
	if s.CreationViewID == viewID {
		s.CreationViewID = fresh.Ref.MessageID
	}
	if s.EditViewID == viewID {
		s.EditViewID = fresh.Ref.MessageID
	}
	return nil
}

// StartShareCreation opens the wizard on the given view, discarding any
// wizard already in flight in this chat.
func (s *ChatSession) StartShareCreation(initiator User, viewID int) {
	v, ok := s.Views[viewID]
	if !ok {
		return
	}
	if s.Pending != nil && s.CreationViewID != viewID {
		if prev, ok := s.Views[s.CreationViewID]; ok {
			prev.State = MainListState()
			s.renderOne(s.CreationViewID, prev)
		}
	}
	s.Pending = NewShare(initiator.ID)
	s.CreationViewID = viewID
	v.State = ViewState{Kind: ViewWizard, Step: StepType}
	s.renderOne(viewID, v)
	logger.SESSION.LogAttrs(context.Background(), slog.LevelInfo, "wizard.started",
		slog.Int64("chat_id", s.ID),
		slog.Int64("creator_id", initiator.ID),
		slog.Int("view", viewID),
	)
}

// ChooseType records the share type at wizard step 0 and advances to the
// name step. Any chat member may press the type button.
func (s *ChatSession) ChooseType(viewID int, t ShareType) {
	v, ok := s.Views[viewID]
	if !ok || s.Pending == nil || s.CreationViewID != viewID {
		return
	}
	if v.State.Kind != ViewWizard || v.State.Step != StepType {
		return
	}
	if t != Pooled && t != GoalBased {
		return
	}
	s.Pending.Type = t
	v.State.Step = StepName
	s.renderOne(viewID, v)
}

// WizardText feeds one free-text message into the wizard. Only the
// initiator's text is accepted, and only on the text-collecting steps.
// Reports whether the message was consumed.
func (s *ChatSession) WizardText(user User, text string) bool {
	if s.Pending == nil || user.ID != s.Pending.CreatorID {
		return false
	}
	v, ok := s.Views[s.CreationViewID]
	if !ok || v.State.Kind != ViewWizard {
		return false
	}

	switch v.State.Step {
	case StepName:
		s.Pending.Name = format.StringPtr(text)
		v.State.Step = StepValue
		s.renderOne(s.CreationViewID, v)
	case StepValue:
		s.Pending.SetValue(text)
		v.State.Step = StepDescription
		s.renderOne(s.CreationViewID, v)
	case StepDescription:
		s.Pending.Description = format.StringPtr(text)
		s.promotePending()
	default:
		return false
	}
	return true
}

// SkipWizardStep skips the value or description step, leaving that field
// undetermined. Skipping the description completes the wizard.
func (s *ChatSession) SkipWizardStep(viewID int) {
	v, ok := s.Views[viewID]
	if !ok || s.Pending == nil || s.CreationViewID != viewID {
		return
	}
	if v.State.Kind != ViewWizard {
		return
	}
	switch v.State.Step {
	case StepValue:
		s.Pending.Value = nil
		v.State.Step = StepDescription
		s.renderOne(viewID, v)
	case StepDescription:
		s.promotePending()
	}
}

// CancelCreation discards the pending share and returns the wizard's view
// to the main list.
func (s *ChatSession) CancelCreation() {
	if s.Pending == nil {
		return
	}
	viewID := s.CreationViewID
	s.clearWizardSlot()
	if v, ok := s.Views[viewID]; ok {
		v.State = MainListState()
		s.renderOne(viewID, v)
	}
	logger.SESSION.LogAttrs(context.Background(), slog.LevelInfo, "wizard.cancelled",
		slog.Int64("chat_id", s.ID),
		slog.Int("view", viewID),
	)
}

// promotePending assigns the next share id, moves the pending share into
// the active set and broadcasts the updated list to every open view.
func (s *ChatSession) promotePending() {
	share := s.Pending
	viewID := s.CreationViewID
	s.clearWizardSlot()

	share.ID = s.NextShareID
	s.NextShareID++
	s.Active[share.ID] = share

	if v, ok := s.Views[viewID]; ok {
		v.State = MainListState()
	}
	s.renderAll()
	logger.SESSION.LogAttrs(context.Background(), slog.LevelInfo, "share.created",
		slog.Int64("chat_id", s.ID),
		slog.Int64("share_id", share.ID),
		slog.String("share_name", format.DerefString(share.Name, "")),
		slog.Int64("creator_id", share.CreatorID),
	)
}

func (s *ChatSession) clearWizardSlot() {
	s.Pending = nil
	s.CreationViewID = 0
}

func (s *ChatSession) clearEditSlot() {
	s.EditShareID = 0
	s.EditViewID = 0
}

// OpenShareDetail switches the view to the share's detail screen. Inactive
// share ids (stale buttons) are dropped silently.
func (s *ChatSession) OpenShareDetail(viewID int, shareID int64) {
	v, ok := s.Views[viewID]
	if !ok {
		return
	}
	if _, ok := s.Active[shareID]; !ok {
		return
	}
	v.State = ViewState{Kind: ViewDetail, ShareID: shareID}
	s.renderOne(viewID, v)
}

// BackToMain returns the view to the main list.
func (s *ChatSession) BackToMain(viewID int) {
	v, ok := s.Views[viewID]
	if !ok {
		return
	}
	v.State = MainListState()
	s.renderOne(viewID, v)
}

// Join adds the user to the share's roster (or bumps their count) and
// broadcasts the change to every open view.
func (s *ChatSession) Join(shareID int64, u User) {
	share, ok := s.Active[shareID]
	if !ok {
		return
	}
	share.AddParticipant(u)
	s.renderAll()
	logger.SESSION.LogAttrs(context.Background(), slog.LevelInfo, "share.joined",
		slog.Int64("chat_id", s.ID),
		slog.Int64("share_id", shareID),
		slog.Int64("user_id", u.ID),
		slog.Int("count", share.TotalParticipants()),
	)
}

// Leave decrements the user's count on the share, removing them at zero.
func (s *ChatSession) Leave(shareID int64, u User) {
	share, ok := s.Active[shareID]
	if !ok {
		return
	}
	share.RemoveParticipant(u.ID)
	s.renderAll()
}

// TogglePaid flips the user's payment mark; a no-op for non-participants.
func (s *ChatSession) TogglePaid(shareID int64, userID int64) {
	share, ok := s.Active[shareID]
	if !ok {
		return
	}
	if !share.TogglePaid(userID) {
		return
	}
	s.renderAll()
}

// RequestValueEdit opens the value prompt on the view. Creator-only; other
// users get a transient notice and nothing changes.
func (s *ChatSession) RequestValueEdit(userID int64, viewID int, shareID int64) {
	share, ok := s.Active[shareID]
	if !ok {
		return
	}
	v, ok := s.Views[viewID]
	if !ok {
		return
	}
	if share.CreatorID != userID {
		s.tr.Notice(s.ID, textNoticeNotOwner)
		return
	}
	s.EditShareID = shareID
	s.EditViewID = viewID
	s.renderOne(viewID, v)
}

// CancelValueEdit dismisses the prompt and restores the view's own screen.
func (s *ChatSession) CancelValueEdit(viewID int) {
	if s.EditViewID != viewID {
		return
	}
	s.clearEditSlot()
	if v, ok := s.Views[viewID]; ok {
		s.renderOne(viewID, v)
	}
}

// EditText consumes the editor's next free-text message as the new value.
// Reports whether the message was consumed.
func (s *ChatSession) EditText(user User, text string) bool {
	if s.EditShareID == 0 {
		return false
	}
	share, ok := s.Active[s.EditShareID]
	if !ok {
		// The share was closed while the prompt was up.
		s.clearEditSlot()
		return false
	}
	if share.CreatorID != user.ID {
		return false
	}
	share.SetValue(text)
	s.clearEditSlot()
	s.renderAll()
	logger.SESSION.LogAttrs(context.Background(), slog.LevelInfo, "share.value_set",
		slog.Int64("chat_id", s.ID),
		slog.Int64("share_id", share.ID),
	)
	return true
}

// RequestClose asks for confirmation before closing. Creator-only.
func (s *ChatSession) RequestClose(userID int64, viewID int, shareID int64) {
	share, ok := s.Active[shareID]
	if !ok {
		return
	}
	v, ok := s.Views[viewID]
	if !ok {
		return
	}
	if share.CreatorID != userID {
		s.tr.Notice(s.ID, textNoticeNotOwner)
		return
	}
	v.State = ViewState{Kind: ViewCloseConfirm, ShareID: shareID}
	s.renderOne(viewID, v)
}

// CancelClose returns the view to the share's detail screen.
func (s *ChatSession) CancelClose(viewID int) {
	v, ok := s.Views[viewID]
	if !ok || v.State.Kind != ViewCloseConfirm {
		return
	}
	v.State = ViewState{Kind: ViewDetail, ShareID: v.State.ShareID}
	s.renderOne(viewID, v)
}

// ConfirmClose retires the share to the head of the history. Authorization
// is re-checked: the confirm button is on a shared surface.
func (s *ChatSession) ConfirmClose(userID int64, viewID int, shareID int64) {
	share, ok := s.Active[shareID]
	if !ok {
		return
	}
	if share.CreatorID != userID {
		s.tr.Notice(s.ID, textNoticeNotOwner)
		return
	}

	delete(s.Active, shareID)
	s.History = append([]*Share{share}, s.History...)
	if s.EditShareID == shareID {
		s.clearEditSlot()
	}

	// Views still pointed at the closed share fall back to the list.
	for _, v := range s.Views {
		if (v.State.Kind == ViewDetail || v.State.Kind == ViewCloseConfirm) && v.State.ShareID == shareID {
			v.State = MainListState()
		}
	}
	s.renderAll()
	logger.SESSION.LogAttrs(context.Background(), slog.LevelInfo, "share.closed",
		slog.Int64("chat_id", s.ID),
		slog.Int64("share_id", shareID),
		slog.Int("shares_active", len(s.Active)),
		slog.Int("shares_history", len(s.History)),
	)
}

// OpenHistory switches the view to the first history page.
func (s *ChatSession) OpenHistory(viewID int) {
	v, ok := s.Views[viewID]
	if !ok {
		return
	}
	v.State = ViewState{Kind: ViewHistory, Page: 1}
	s.renderOne(viewID, v)
}

// HistoryNext advances one page; reports false (and re-renders nothing) at
// the last page.
func (s *ChatSession) HistoryNext(viewID int) bool {
	return s.historyTurn(viewID, 1)
}

// HistoryPrev goes back one page; reports false at the first page.
func (s *ChatSession) HistoryPrev(viewID int) bool {
	return s.historyTurn(viewID, -1)
}

func (s *ChatSession) historyTurn(viewID, delta int) bool {
	v, ok := s.Views[viewID]
	if !ok || v.State.Kind != ViewHistory {
		return false
	}
	total := s.historyPages()
	current := clampPage(v.State.Page, total)
	next := current + delta
	if next < 1 || next > total {
		// Still persist the clamp if the stored page went stale.
		v.State.Page = current
		return false
	}
	v.State.Page = next
	s.renderOne(viewID, v)
	return true
}

// renderOne is render with the error logged instead of returned; used by
// transitions where a failed edit should not abort the state change.
func (s *ChatSession) renderOne(viewID int, v *View) {
	if err := s.render(viewID, v); err != nil {
		logger.SESSION.LogAttrs(context.Background(), slog.LevelWarn, "view.render_failed",
			slog.Int64("chat_id", s.ID),
			slog.Int("view", viewID),
			slog.String("err", err.Error()),
		)
	}
}
