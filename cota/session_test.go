package cota

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
)

// runWizard drives a complete creation flow on the given view.
func runWizard(s *ChatSession, viewID int, creator User, t ShareType, name, value string) {
	s.StartShareCreation(creator, viewID)
	s.ChooseType(viewID, t)
	s.WizardText(creator, name)
	if value == "" {
		s.SkipWizardStep(viewID)
	} else {
		s.WizardText(creator, value)
	}
	s.SkipWizardStep(viewID)
}

func TestWizardCompletion(t *testing.T) {
	s, _ := newTestSession(1)
	viewID := openView(s)

	s.StartShareCreation(alice, viewID)
	if s.Pending == nil || s.CreationViewID != viewID {
		t.Fatal("wizard slot not set")
	}
	if got := s.Views[viewID].State; got.Kind != ViewWizard || got.Step != StepType {
		t.Fatalf("view state = %+v, want wizard step 0", got)
	}

	s.ChooseType(viewID, Pooled)
	s.WizardText(alice, "Lunch")
	s.WizardText(alice, "50")
	s.SkipWizardStep(viewID)

	if len(s.Active) != 1 {
		t.Fatalf("active shares = %d, want 1", len(s.Active))
	}
	share := s.Active[1]
	if share == nil {
		t.Fatal("share should have id 1")
	}
	if share.Name == nil || *share.Name != "Lunch" {
		t.Fatalf("name = %v, want Lunch", share.Name)
	}
	if share.Value == nil || *share.Value != 50 {
		t.Fatalf("value = %v, want 50", share.Value)
	}
	if share.Description != nil {
		t.Fatalf("description = %v, want absent", *share.Description)
	}
	if share.CreatorID != alice.ID {
		t.Fatalf("creator = %d, want %d", share.CreatorID, alice.ID)
	}
	if s.Pending != nil || s.CreationViewID != 0 {
		t.Fatal("wizard slot should be cleared")
	}
	if s.NextShareID != 2 {
		t.Fatalf("next id = %d, want 2", s.NextShareID)
	}
	if got := s.Views[viewID].State.Kind; got != ViewMainList {
		t.Fatalf("view should reset to main list, got %v", got)
	}
}

func TestWizardCancelKeepsActiveSet(t *testing.T) {
	s, _ := newTestSession(1)
	viewID := openView(s)
	runWizard(s, viewID, alice, Pooled, "Pizza", "40")

	s.StartShareCreation(alice, viewID)
	s.ChooseType(viewID, GoalBased)
	s.WizardText(alice, "Presente")
	s.CancelCreation()

	if len(s.Active) != 1 {
		t.Fatalf("active shares = %d, want 1", len(s.Active))
	}
	if s.Pending != nil || s.CreationViewID != 0 {
		t.Fatal("wizard slot should be cleared after cancel")
	}
	if got := s.Views[viewID].State.Kind; got != ViewMainList {
		t.Fatalf("view should reset to main list, got %v", got)
	}
}

func TestWizardIgnoresOtherUsersText(t *testing.T) {
	s, _ := newTestSession(1)
	viewID := openView(s)
	s.StartShareCreation(alice, viewID)
	s.ChooseType(viewID, Pooled)

	if s.WizardText(bruno, "Hijacked") {
		t.Fatal("non-initiator text should not be consumed")
	}
	if !s.WizardText(alice, "Lunch") {
		t.Fatal("initiator text should be consumed")
	}
	if s.Pending.Name == nil || *s.Pending.Name != "Lunch" {
		t.Fatalf("pending name = %v", s.Pending.Name)
	}
}

func TestWizardRestartDiscardsPrevious(t *testing.T) {
	s, _ := newTestSession(1)
	first := openView(s)
	second := openView(s)

	s.StartShareCreation(alice, first)
	s.ChooseType(first, Pooled)
	s.WizardText(alice, "Primeira")

	s.StartShareCreation(bruno, second)
	if s.CreationViewID != second {
		t.Fatalf("creation view = %d, want %d", s.CreationViewID, second)
	}
	if s.Pending.CreatorID != bruno.ID {
		t.Fatal("pending share should belong to the new initiator")
	}
	if s.Pending.Name != nil {
		t.Fatal("pending share should be fresh")
	}
	if got := s.Views[first].State.Kind; got != ViewMainList {
		t.Fatalf("abandoned wizard view should reset, got %v", got)
	}
}

func TestTypeButtonAcceptedFromAnyUser(t *testing.T) {
	s, _ := newTestSession(1)
	viewID := openView(s)
	s.StartShareCreation(alice, viewID)

	// The type button is on a shared surface; any member may press it.
	s.ChooseType(viewID, GoalBased)
	if s.Pending.Type != GoalBased {
		t.Fatalf("type = %v, want goal-based", s.Pending.Type)
	}
	if got := s.Views[viewID].State.Step; got != StepName {
		t.Fatalf("step = %d, want name step", got)
	}
}

func TestAuthorizationGates(t *testing.T) {
	s, tr := newTestSession(1)
	viewID := openView(s)
	runWizard(s, viewID, alice, Pooled, "Lunch", "50")
	s.OpenShareDetail(viewID, 1)

	before, _ := json.Marshal(s.Active[1])

	s.RequestValueEdit(bruno.ID, viewID, 1)
	if s.EditShareID != 0 || s.EditViewID != 0 {
		t.Fatal("edit slot must stay empty for non-creator")
	}

	s.RequestClose(bruno.ID, viewID, 1)
	if got := s.Views[viewID].State.Kind; got != ViewDetail {
		t.Fatalf("view state changed to %v on unauthorized close", got)
	}

	s.ConfirmClose(bruno.ID, viewID, 1)
	if len(s.Active) != 1 || len(s.History) != 0 {
		t.Fatal("unauthorized confirm must not move the share")
	}

	after, _ := json.Marshal(s.Active[1])
	if !reflect.DeepEqual(before, after) {
		t.Fatal("share mutated by unauthorized operations")
	}
	if len(tr.notices) != 3 {
		t.Fatalf("notices = %d, want 3", len(tr.notices))
	}
}

func TestValueEditFlow(t *testing.T) {
	s, tr := newTestSession(1)
	viewID := openView(s)
	runWizard(s, viewID, alice, Pooled, "Lunch", "50")
	s.OpenShareDetail(viewID, 1)

	s.RequestValueEdit(alice.ID, viewID, 1)
	if s.EditShareID != 1 || s.EditViewID != viewID {
		t.Fatal("edit slot not set")
	}
	r, ok := tr.lastRender(viewID)
	if !ok || r.text != textEditPrompt {
		t.Fatalf("prompt not rendered, got %q", r.text)
	}
	if got := s.Views[viewID].State.Kind; got != ViewDetail {
		t.Fatal("prompt must not change the view state")
	}

	if s.EditText(bruno, "99") {
		t.Fatal("non-creator text must not be consumed by the edit slot")
	}
	if !s.EditText(alice, "72,5") {
		t.Fatal("creator text should be consumed")
	}
	if v := s.Active[1].Value; v == nil || *v != 72.5 {
		t.Fatalf("value = %v, want 72.5", v)
	}
	if s.EditShareID != 0 || s.EditViewID != 0 {
		t.Fatal("edit slot should be cleared")
	}
	r, _ = tr.lastRender(viewID)
	if !strings.Contains(r.text, "72.50") {
		t.Fatalf("detail should be restored with new value, got %q", r.text)
	}
}

func TestValueEditCancel(t *testing.T) {
	s, tr := newTestSession(1)
	viewID := openView(s)
	runWizard(s, viewID, alice, Pooled, "Lunch", "50")
	s.OpenShareDetail(viewID, 1)

	s.RequestValueEdit(alice.ID, viewID, 1)
	s.CancelValueEdit(viewID)
	if s.EditShareID != 0 {
		t.Fatal("edit slot should be cleared on cancel")
	}
	r, _ := tr.lastRender(viewID)
	if r.text == textEditPrompt {
		t.Fatal("view should be restored after cancel")
	}
}

func TestCloseFlowMovesShareToHistoryHead(t *testing.T) {
	s, _ := newTestSession(1)
	viewID := openView(s)
	runWizard(s, viewID, alice, Pooled, "Antiga", "10")
	runWizard(s, viewID, alice, Pooled, "Lunch", "50")
	s.Join(2, bruno)
	s.Join(2, bruno)
	s.TogglePaid(2, bruno.ID)
	s.OpenShareDetail(viewID, 2)

	before, _ := json.Marshal(s.Active[2])

	s.RequestClose(alice.ID, viewID, 2)
	if got := s.Views[viewID].State; got.Kind != ViewCloseConfirm || got.ShareID != 2 {
		t.Fatalf("view state = %+v, want close confirm for share 2", got)
	}

	s.ConfirmClose(alice.ID, viewID, 2)
	if _, ok := s.Active[2]; ok {
		t.Fatal("share should leave the active set")
	}
	if len(s.History) != 1 || s.History[0].ID != 2 {
		t.Fatal("share should sit at the history head")
	}
	after, _ := json.Marshal(s.History[0])
	if string(before) != string(after) {
		t.Fatalf("share changed across close:\nbefore %s\nafter  %s", before, after)
	}
	if got := s.Views[viewID].State.Kind; got != ViewMainList {
		t.Fatalf("view should fall back to main list, got %v", got)
	}
}

func TestCancelCloseReturnsToDetail(t *testing.T) {
	s, _ := newTestSession(1)
	viewID := openView(s)
	runWizard(s, viewID, alice, Pooled, "Lunch", "50")
	s.OpenShareDetail(viewID, 1)
	s.RequestClose(alice.ID, viewID, 1)

	s.CancelClose(viewID)
	if got := s.Views[viewID].State; got.Kind != ViewDetail || got.ShareID != 1 {
		t.Fatalf("view state = %+v, want detail for share 1", got)
	}
}

func TestCloseResetsOtherDetailViews(t *testing.T) {
	s, _ := newTestSession(1)
	first := openView(s)
	second := openView(s)
	runWizard(s, first, alice, Pooled, "Lunch", "50")
	s.OpenShareDetail(first, 1)
	s.OpenShareDetail(second, 1)

	s.RequestClose(alice.ID, first, 1)
	s.ConfirmClose(alice.ID, first, 1)

	if got := s.Views[second].State.Kind; got != ViewMainList {
		t.Fatalf("second view should reset to main list, got %v", got)
	}
}

func TestRosterMutationsBroadcast(t *testing.T) {
	s, tr := newTestSession(1)
	first := openView(s)
	second := openView(s)
	runWizard(s, first, alice, Pooled, "Lunch", "50")
	s.OpenShareDetail(second, 1)

	edits := tr.editCount()
	s.Join(1, bruno)
	// Both open views re-render on one roster change.
	if got := tr.editCount() - edits; got != 2 {
		t.Fatalf("renders after join = %d, want 2", got)
	}

	r, _ := tr.lastRender(second)
	if !strings.Contains(r.text, "Bruno B.") {
		t.Fatalf("detail should list the new participant, got %q", r.text)
	}
}

func TestTogglePaidNonParticipantIsNoop(t *testing.T) {
	s, tr := newTestSession(1)
	viewID := openView(s)
	runWizard(s, viewID, alice, Pooled, "Lunch", "50")

	edits := tr.editCount()
	s.TogglePaid(1, carla.ID)
	if tr.editCount() != edits {
		t.Fatal("toggling a non-participant should not re-render")
	}
}

func TestStaleShareButtonIsDropped(t *testing.T) {
	s, _ := newTestSession(1)
	viewID := openView(s)

	s.OpenShareDetail(viewID, 42)
	if got := s.Views[viewID].State.Kind; got != ViewMainList {
		t.Fatalf("view state = %v, want unchanged main list", got)
	}
	s.Join(42, bruno)
	s.Leave(42, bruno)
	s.TogglePaid(42, bruno.ID)
}

func TestCloseViewStaleDelete(t *testing.T) {
	s, tr := newTestSession(1)
	viewID := openView(s)
	tr.deleteErr[viewID] = ErrStaleMessage

	s.CloseView(viewID)
	if _, ok := s.Views[viewID]; ok {
		t.Fatal("view must be deregistered despite the stale delete")
	}
	if len(tr.notices) != 1 {
		t.Fatalf("notices = %d, want 1", len(tr.notices))
	}
}

func TestCloseViewClearsWizardSlot(t *testing.T) {
	s, _ := newTestSession(1)
	viewID := openView(s)
	s.StartShareCreation(alice, viewID)

	s.CloseView(viewID)
	if s.Pending != nil || s.CreationViewID != 0 {
		t.Fatal("closing the wizard's view must discard the pending share")
	}
}

func TestBringToFrontReassignsHandle(t *testing.T) {
	s, tr := newTestSession(1)
	viewID := openView(s)
	runWizard(s, viewID, alice, Pooled, "Lunch", "50")
	s.OpenShareDetail(viewID, 1)

	if err := s.BringToFront(viewID, nil); err != nil {
		t.Fatalf("bring to front: %v", err)
	}
	if _, ok := s.Views[viewID]; ok {
		t.Fatal("old handle should be gone")
	}
	if len(tr.deletes) != 1 || tr.deletes[0].MessageID != viewID {
		t.Fatal("old message should be deleted")
	}
	if len(s.Views) != 1 {
		t.Fatalf("views = %d, want 1", len(s.Views))
	}
	for id, v := range s.Views {
		if id == viewID {
			t.Fatal("handle should be fresh")
		}
		if v.State.Kind != ViewDetail || v.State.ShareID != 1 {
			t.Fatalf("state should carry over, got %+v", v.State)
		}
	}

	// An explicit state override forces the screen.
	var newID int
	for id := range s.Views {
		newID = id
	}
	reset := MainListState()
	if err := s.BringToFront(newID, &reset); err != nil {
		t.Fatalf("bring to front with override: %v", err)
	}
	for _, v := range s.Views {
		if v.State.Kind != ViewMainList {
			t.Fatalf("state override ignored, got %+v", v.State)
		}
	}
}

func TestBringToFrontCarriesWizardSlot(t *testing.T) {
	s, _ := newTestSession(1)
	viewID := openView(s)
	s.StartShareCreation(alice, viewID)

	if err := s.BringToFront(viewID, nil); err != nil {
		t.Fatalf("bring to front: %v", err)
	}
	if s.CreationViewID == viewID || s.CreationViewID == 0 {
		t.Fatalf("wizard slot should follow the new handle, got %d", s.CreationViewID)
	}
	s.ChooseType(s.CreationViewID, Pooled)
	if !s.WizardText(alice, "Ainda vivo") {
		t.Fatal("wizard should keep accepting input after the move")
	}
}

func TestHistoryPagination(t *testing.T) {
	s, _ := newTestSession(1)
	viewID := openView(s)
	for i := 0; i < 12; i++ {
		runWizard(s, viewID, alice, Pooled, "Cota", "5")
		s.OpenShareDetail(viewID, s.NextShareID-1)
		s.RequestClose(alice.ID, viewID, s.NextShareID-1)
		s.ConfirmClose(alice.ID, viewID, s.NextShareID-1)
	}
	if len(s.History) != 12 {
		t.Fatalf("history = %d, want 12", len(s.History))
	}
	if got := s.historyPages(); got != 3 {
		t.Fatalf("pages = %d, want 3", got)
	}

	s.OpenHistory(viewID)
	if !s.HistoryNext(viewID) || !s.HistoryNext(viewID) {
		t.Fatal("two forward turns should succeed")
	}
	if s.Views[viewID].State.Page != 3 {
		t.Fatalf("page = %d, want 3", s.Views[viewID].State.Page)
	}
	if s.HistoryNext(viewID) {
		t.Fatal("next at the last page must report false")
	}
	if s.Views[viewID].State.Page != 3 {
		t.Fatal("failed turn must leave the page unchanged")
	}

	if !s.HistoryPrev(viewID) || !s.HistoryPrev(viewID) {
		t.Fatal("two back turns should succeed")
	}
	if s.HistoryPrev(viewID) {
		t.Fatal("prev at the first page must report false")
	}
	if s.Views[viewID].State.Page != 1 {
		t.Fatalf("page = %d, want 1", s.Views[viewID].State.Page)
	}
}

func TestHistoryStalePageClamps(t *testing.T) {
	s, _ := newTestSession(1)
	viewID := openView(s)
	runWizard(s, viewID, alice, Pooled, "Solo", "5")
	s.OpenShareDetail(viewID, 1)
	s.RequestClose(alice.ID, viewID, 1)
	s.ConfirmClose(alice.ID, viewID, 1)

	s.OpenHistory(viewID)
	s.Views[viewID].State.Page = 7 // simulate a page recorded before shrink

	text, _ := s.compose(s.Views[viewID].State)
	if !strings.Contains(text, "(1/1)") {
		t.Fatalf("stale page should clamp silently, got %q", text)
	}
}

func TestRenderFailureLeavesStateIntact(t *testing.T) {
	s, tr := newTestSession(1)
	viewID := openView(s)
	runWizard(s, viewID, alice, Pooled, "Lunch", "50")
	tr.editErr[viewID] = ErrStaleMessage

	s.OpenShareDetail(viewID, 1)
	if got := s.Views[viewID].State; got.Kind != ViewDetail || got.ShareID != 1 {
		t.Fatalf("state = %+v, want detail despite failed render", got)
	}
}
