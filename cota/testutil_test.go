package cota

import (
	"context"
	"sync"
)

// fakeTransport records every transport call and lets tests inject
// failures per message id.
type fakeTransport struct {
	mu     sync.Mutex
	nextID int

	sends   []fakeRender
	edits   []fakeRender
	deletes []MessageRef
	notices []string

	editErr   map[int]error
	deleteErr map[int]error
}

type fakeRender struct {
	ref  MessageRef
	text string
	grid [][]Button
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		editErr:   make(map[int]error),
		deleteErr: make(map[int]error),
	}
}

func (f *fakeTransport) Send(chatID int64, text string, grid [][]Button) (MessageRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	ref := MessageRef{ChatID: chatID, MessageID: f.nextID}
	f.sends = append(f.sends, fakeRender{ref: ref, text: text, grid: grid})
	return ref, nil
}

func (f *fakeTransport) Edit(ref MessageRef, text string, grid [][]Button) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.editErr[ref.MessageID]; ok {
		return err
	}
	f.edits = append(f.edits, fakeRender{ref: ref, text: text, grid: grid})
	return nil
}

func (f *fakeTransport) Delete(ref MessageRef) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.deleteErr[ref.MessageID]; ok {
		return err
	}
	f.deletes = append(f.deletes, ref)
	return nil
}

func (f *fakeTransport) Notice(chatID int64, text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notices = append(f.notices, text)
}

func (f *fakeTransport) editCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.edits)
}

// lastRender returns the most recent send or edit touching the message id.
func (f *fakeTransport) lastRender(messageID int) (fakeRender, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.edits) - 1; i >= 0; i-- {
		if f.edits[i].ref.MessageID == messageID {
			return f.edits[i], true
		}
	}
	for i := len(f.sends) - 1; i >= 0; i-- {
		if f.sends[i].ref.MessageID == messageID {
			return f.sends[i], true
		}
	}
	return fakeRender{}, false
}

// fakeStore keeps snapshots in memory and counts saves.
type fakeStore struct {
	mu      sync.Mutex
	data    []byte
	saves   int
	loadErr error
	saveErr error
}

func (f *fakeStore) Load(_ context.Context) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return f.data, nil
}

func (f *fakeStore) Save(_ context.Context, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.data = append([]byte(nil), data...)
	f.saves++
	return nil
}

// newTestSession wires a session directly to a fake transport, bypassing
// the registry, for state machine tests.
func newTestSession(chatID int64) (*ChatSession, *fakeTransport) {
	tr := newFakeTransport()
	s := NewChatSession(chatID)
	s.attach(tr)
	return s, tr
}

// openView opens a view and returns its message id.
func openView(s *ChatSession) int {
	if err := s.OpenNewView(); err != nil {
		panic(err)
	}
	max := 0
	for id := range s.Views {
		if id > max {
			max = id
		}
	}
	return max
}

var (
	alice = User{ID: 100, FirstName: "Alice", LastName: "Almeida"}
	bruno = User{ID: 200, FirstName: "Bruno", LastName: "Barros"}
	carla = User{ID: 300, FirstName: "Carla", LastName: "Costa"}
)
