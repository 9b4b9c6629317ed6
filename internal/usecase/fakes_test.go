package usecase

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/xavierca1/ligue-leads/internal/entity"
	"github.com/xavierca1/ligue-leads/internal/infra/integration/discord"
	"github.com/xavierca1/ligue-leads/internal/infra/mail"
	"github.com/xavierca1/ligue-leads/internal/infra/queue"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// memStore guarda rotações, participantes e leads em memória. O mutex faz o
// papel do lock da linha da rotação e fica preso durante a transação toda.
type memStore struct {
	mu        sync.Mutex
	rotations map[int64]*entity.Rotation
	sources   map[string]int64
	slots     map[int64][]entity.Slot
	leads     []entity.Lead
	nextLead  int64

	failInsertLead error
	failAdvance    error
}

func newMemStore() *memStore {
	return &memStore{
		rotations: map[int64]*entity.Rotation{},
		sources:   map[string]int64{},
		slots:     map[int64][]entity.Slot{},
	}
}

// addRotation cria uma rotação lançada com um participante por nome, todos
// com webhook.
func (s *memStore) addRotation(id int64, names ...string) {
	s.rotations[id] = &entity.Rotation{ID: id, Name: "Rotation", IsLaunched: true}
	for i, n := range names {
		s.slots[id] = append(s.slots[id], entity.Slot{
			ID:             id*100 + int64(i) + 1,
			RotationID:     id,
			Name:           n,
			DiscordWebhook: "https://discord.test/" + n,
			QueuePosition:  i,
			IsActive:       true,
		})
	}
}

func (s *memStore) slot(rotationID, slotID int64) *entity.Slot {
	for i := range s.slots[rotationID] {
		if s.slots[rotationID][i].ID == slotID {
			return &s.slots[rotationID][i]
		}
	}
	return nil
}

func (s *memStore) pointer(rotationID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rotations[rotationID].CurrentPosition
}

func (s *memStore) leadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.leads)
}

type memSnapshot struct {
	rotations map[int64]entity.Rotation
	slots     map[int64][]entity.Slot
	leads     int
	nextLead  int64
}

func (s *memStore) snapshot() memSnapshot {
	snap := memSnapshot{
		rotations: map[int64]entity.Rotation{},
		slots:     map[int64][]entity.Slot{},
		leads:     len(s.leads),
		nextLead:  s.nextLead,
	}
	for id, r := range s.rotations {
		snap.rotations[id] = *r
	}
	for id, sl := range s.slots {
		snap.slots[id] = append([]entity.Slot(nil), sl...)
	}
	return snap
}

func (s *memStore) restore(snap memSnapshot) {
	for id, r := range snap.rotations {
		r := r
		s.rotations[id] = &r
	}
	s.slots = snap.slots
	s.leads = s.leads[:snap.leads]
	s.nextLead = snap.nextLead
}

func (s *memStore) RunInTx(ctx context.Context, fn func(tx DistributionTx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.snapshot()
	if err := fn(memTx{s}); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

type memTx struct{ s *memStore }

func (t memTx) LockRotation(_ context.Context, id int64) (*entity.Rotation, error) {
	r, ok := t.s.rotations[id]
	if !ok {
		return nil, entity.ErrRotationNotFound
	}
	cp := *r
	return &cp, nil
}

func (t memTx) ListActiveSlots(_ context.Context, id int64) ([]entity.Slot, error) {
	return t.s.activeSlots(id), nil
}

func (t memTx) InsertLead(_ context.Context, lead *entity.Lead) error {
	if t.s.failInsertLead != nil {
		return t.s.failInsertLead
	}
	t.s.nextLead++
	lead.ID = t.s.nextLead
	lead.ReceivedAt = time.Now()
	t.s.leads = append(t.s.leads, *lead)
	return nil
}

func (t memTx) IncrementSlotLeads(_ context.Context, slotID int64) error {
	for id := range t.s.slots {
		if sl := t.s.slot(id, slotID); sl != nil {
			sl.LeadsReceived++
			return nil
		}
	}
	return entity.ErrSlotNotFound
}

func (t memTx) AdvanceRotation(_ context.Context, id int64, next int) error {
	if t.s.failAdvance != nil {
		return t.s.failAdvance
	}
	t.s.rotations[id].CurrentPosition = next
	t.s.rotations[id].TotalLeads++
	return nil
}

func (s *memStore) activeSlots(id int64) []entity.Slot {
	var out []entity.Slot
	for _, sl := range s.slots[id] {
		if sl.IsActive {
			out = append(out, sl)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].QueuePosition < out[j].QueuePosition })
	return out
}

// RotationRepository

func (s *memStore) FindByID(_ context.Context, id int64) (*entity.Rotation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rotations[id]
	if !ok {
		return nil, entity.ErrRotationNotFound
	}
	cp := *r
	return &cp, nil
}

func (s *memStore) FindBySource(_ context.Context, sourceURL, domain string) (*entity.Rotation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.sources[sourceURL]
	if !ok {
		id, ok = s.sources[domain]
	}
	if !ok {
		return nil, entity.ErrRotationNotFound
	}
	cp := *s.rotations[id]
	return &cp, nil
}

func (s *memStore) Launch(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rotations[id]
	if !ok {
		return entity.ErrRotationNotFound
	}
	r.IsLaunched = true
	return nil
}

// memSlots adapta memStore para SlotRepository.
type memSlots struct{ s *memStore }

func (m memSlots) ListOrdered(_ context.Context, id int64) ([]entity.Slot, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	return m.s.activeSlots(id), nil
}

func (m memSlots) FindByID(_ context.Context, id, slotID int64) (*entity.Slot, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	sl := m.s.slot(id, slotID)
	if sl == nil {
		return nil, entity.ErrSlotNotFound
	}
	cp := *sl
	return &cp, nil
}

func (m memSlots) Reorder(_ context.Context, id int64, ids []int64) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for pos, slotID := range ids {
		sl := m.s.slot(id, slotID)
		if sl == nil {
			return entity.ErrSlotNotFound
		}
		sl.QueuePosition = pos
	}
	return nil
}

func (m memSlots) SetPaused(_ context.Context, id, slotID int64, paused bool, reason string) (*entity.Slot, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	sl := m.s.slot(id, slotID)
	if sl == nil || !sl.IsActive {
		return nil, entity.ErrSlotNotFound
	}
	sl.IsPaused = paused
	sl.PauseReason = reason
	cp := *sl
	return &cp, nil
}

func (m memSlots) Remove(_ context.Context, id, slotID int64) (bool, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	sl := m.s.slot(id, slotID)
	if sl == nil || !sl.IsActive {
		return false, entity.ErrSlotNotFound
	}
	hard := sl.LeadsReceived == 0
	sl.IsActive = false
	return hard, nil
}

// LeadRepository

type memLeads struct{ s *memStore }

func (m memLeads) FindByID(_ context.Context, id int64) (*entity.Lead, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, l := range m.s.leads {
		if l.ID == id {
			cp := l
			return &cp, nil
		}
	}
	return nil, entity.ErrLeadNotFound
}

func (m memLeads) UpdateStatus(_ context.Context, id int64, status entity.LeadStatus, reason string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for i := range m.s.leads {
		if m.s.leads[i].ID == id {
			m.s.leads[i].Status = status
			m.s.leads[i].StatusReason = reason
			return nil
		}
	}
	return entity.ErrLeadNotFound
}

type memJunkRules struct {
	mu          sync.Mutex
	rules       []entity.JunkRule
	unprovision bool
	matchErr    error
}

func (m *memJunkRules) Match(_ context.Context, t entity.JunkRuleType, value string) (*entity.JunkRule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.unprovision {
		return nil, entity.ErrStoreUnprovisioned
	}
	if m.matchErr != nil {
		return nil, m.matchErr
	}
	for _, r := range m.rules {
		if r.Type == t && r.Value == value {
			cp := r
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memJunkRules) Insert(_ context.Context, rule *entity.JunkRule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rules {
		if r.Type == rule.Type && r.Value == rule.Value {
			return entity.ErrDuplicateJunkRule
		}
	}
	rule.ID = int64(len(m.rules) + 1)
	m.rules = append(m.rules, *rule)
	return nil
}

type memAudit struct {
	mu        sync.Mutex
	events    []entity.AuditEvent
	insertErr error
	stats     entity.NotificationStats
	since     time.Time
	limit     int
}

func (m *memAudit) Insert(_ context.Context, ev *entity.AuditEvent) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.insertErr != nil {
		return 0, m.insertErr
	}
	ev.ID = int64(len(m.events) + 1)
	m.events = append(m.events, *ev)
	return ev.ID, nil
}

func (m *memAudit) ListByLead(_ context.Context, leadID int64, limit int) ([]entity.AuditEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.limit = limit
	var out []entity.AuditEvent
	for _, ev := range m.events {
		if ev.LeadID != nil && *ev.LeadID == leadID {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (m *memAudit) ListByRotation(_ context.Context, rotationID int64, since time.Time, limit int) ([]entity.AuditEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.since, m.limit = since, limit
	return nil, nil
}

func (m *memAudit) ListFailures(_ context.Context, limit int) ([]entity.AuditEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.limit = limit
	return nil, nil
}

func (m *memAudit) NotificationStats(_ context.Context, _ *int64, since time.Time) (*entity.NotificationStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.since = since
	cp := m.stats
	return &cp, nil
}

func (m *memAudit) ofType(t entity.AuditEventType) []entity.AuditEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []entity.AuditEvent
	for _, ev := range m.events {
		if ev.EventType == t {
			out = append(out, ev)
		}
	}
	return out
}

type fakeSender struct {
	mu    sync.Mutex
	err   error
	calls []discord.LeadMessage
	urls  []string
}

func (f *fakeSender) SendLeadMessage(_ context.Context, url string, msg discord.LeadMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, msg)
	f.urls = append(f.urls, url)
	return f.err
}

func (f *fakeSender) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeAlerter struct {
	sent chan mail.NotificationFailureAlert
}

func (f *fakeAlerter) SendNotificationFailure(alert mail.NotificationFailureAlert) error {
	f.sent <- alert
	return nil
}

type fakeQueue struct {
	err  error
	jobs []queue.NotificationJob
}

func (f *fakeQueue) PublishNotification(_ context.Context, job queue.NotificationJob) error {
	if f.err != nil {
		return f.err
	}
	f.jobs = append(f.jobs, job)
	return nil
}

type harness struct {
	store  *memStore
	rules  *memJunkRules
	audit  *memAudit
	sender *fakeSender
	uc     *DistributeLeadUseCase
}

func newHarness() *harness {
	h := &harness{
		store:  newMemStore(),
		rules:  &memJunkRules{},
		audit:  &memAudit{},
		sender: &fakeSender{},
	}
	log := quietLogger()
	audit := NewAuditLogger(h.audit, log)
	junk := NewJunkFilter(h.rules, memLeads{h.store}, audit, log)
	notifier := NewNotificationDispatcher(h.sender, audit, nil, log)
	h.uc = NewDistributeLeadUseCase(h.store, h.store, junk, audit, notifier, log)
	return h
}

func validInput(rotationID int64) DistributeByIDInput {
	return DistributeByIDInput{
		RotationID: rotationID,
		Name:       "Ana Lima",
		Email:      "ana@example.com",
		Phone:      "91234567",
	}
}
