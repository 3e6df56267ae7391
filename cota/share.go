package cota

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/m3rciful/cotabot/core/telegram/format"
)

// ShareType distinguishes how the nominal value is interpreted.
type ShareType int

const (
	// Pooled means the value is the cost per head; the total scales with
	// the participant count.
	Pooled ShareType = iota
	// GoalBased means the value is a fixed total target split between
	// whoever joins.
	GoalBased
)

// User carries the identity fields the chat backend reports for a sender.
type User struct {
	ID        int64
	FirstName string
	LastName  string
}

// Participant is one roster entry. Count supports "I'm bringing N people"
// and never drops below 1; the entry is removed instead.
type Participant struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name,omitempty"`
	Count     int    `json:"count"`
	Payed     bool   `json:"payed"`
}

// DisplayName renders "First L." with the last name abbreviated.
func (p *Participant) DisplayName() string {
	name := p.FirstName
	if p.LastName != "" {
		name += " " + p.LastName[:1] + "."
	}
	return name
}

// Share is one trackable expense with its participant roster. Name, Value
// and Description stay nil while the creation wizard is collecting them;
// Value nil after completion means "undetermined".
type Share struct {
	ID          int64                  `json:"id"`
	CreatorID   int64                  `json:"creator_id"`
	Type        ShareType              `json:"type"`
	Name        *string                `json:"name,omitempty"`
	Value       *float64               `json:"value,omitempty"`
	Description *string                `json:"description,omitempty"`
	Going       map[int64]*Participant `json:"going"`
}

// NewShare creates an empty share owned by the given creator. The id is
// assigned later, when the wizard promotes the share into the active set.
func NewShare(creatorID int64) *Share {
	return &Share{
		CreatorID: creatorID,
		Going:     make(map[int64]*Participant),
	}
}

// AddParticipant inserts the user with count 1, or bumps the count on a
// repeat join.
func (s *Share) AddParticipant(u User) {
	if p, ok := s.Going[u.ID]; ok {
		p.Count++
		return
	}
	s.Going[u.ID] = &Participant{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Count:     1,
	}
}

// RemoveParticipant decrements the user's count and drops the entry at
// zero. Absent users are a no-op.
func (s *Share) RemoveParticipant(userID int64) {
	p, ok := s.Going[userID]
	if !ok {
		return
	}
	p.Count--
	if p.Count < 1 {
		delete(s.Going, userID)
	}
}

// TogglePaid flips the payment mark for the user and reports whether the
// user was on the roster.
func (s *Share) TogglePaid(userID int64) bool {
	p, ok := s.Going[userID]
	if !ok {
		return false
	}
	p.Payed = !p.Payed
	return true
}

// SetValue parses a locale-flexible decimal from free text. Parse failures
// leave the value undetermined; this never returns an error.
func (s *Share) SetValue(raw string) {
	s.Value = parseFlexibleValue(raw)
}

func parseFlexibleValue(raw string) *float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	raw = strings.TrimPrefix(raw, "R$")
	raw = strings.TrimSpace(raw)
	raw = strings.ReplaceAll(raw, ",", ".")
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 {
		return nil
	}
	return format.Float64Ptr(v)
}

// TotalParticipants sums the roster counts.
func (s *Share) TotalParticipants() int {
	total := 0
	for _, p := range s.Going {
		total += p.Count
	}
	return total
}

// TotalValue is the whole cost of the share. For goal-based shares it is
// the nominal value; for pooled shares it scales with the head count.
// The second result is false while the value is undetermined.
func (s *Share) TotalValue() (float64, bool) {
	if s.Value == nil {
		return 0, false
	}
	if s.Type == GoalBased {
		return *s.Value, true
	}
	return *s.Value * float64(s.TotalParticipants()), true
}

// PerPerson is the cost per head. Undefined while the value is
// undetermined or nobody joined.
func (s *Share) PerPerson() (float64, bool) {
	if s.Value == nil {
		return 0, false
	}
	if s.Type == Pooled {
		return *s.Value, true
	}
	n := s.TotalParticipants()
	if n == 0 {
		return 0, false
	}
	return *s.Value / float64(n), true
}

// Participants returns the roster ordered by user id, so renders are stable
// across map iterations.
func (s *Share) Participants() []*Participant {
	list := make([]*Participant, 0, len(s.Going))
	for _, p := range s.Going {
		list = append(list, p)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list
}

// SummaryLine is the one-line label used on list buttons and history rows:
// "(count) name - R$ value", with the value omitted when undetermined.
func (s *Share) SummaryLine() string {
	name := ""
	if s.Name != nil {
		name = *s.Name
	}
	line := fmt.Sprintf("(%d) %s", s.TotalParticipants(), name)
	if s.Value != nil {
		line += fmt.Sprintf(" - R$ %.2f", *s.Value)
	}
	return line
}
