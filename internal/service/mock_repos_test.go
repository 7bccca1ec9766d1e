package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"gorm.io/gorm"

	"relief-ops/internal/model"
	"relief-ops/internal/repository"
	pkgerrors "relief-ops/pkg/errors"
)

// ── Mock CaseRepository ──

type mockCaseRepo struct {
	cases map[string]*model.Case
	order []string // insertion order, oldest first
	seq   int

	updates      int
	failUpdateAt int // 1-based; 0 never fails
}

func newMockCaseRepo() *mockCaseRepo {
	return &mockCaseRepo{cases: make(map[string]*model.Case)}
}

func (m *mockCaseRepo) Create(_ context.Context, c *model.Case) error {
	if c.CaseID == "" {
		m.seq++
		c.CaseID = fmt.Sprintf("case-%d", m.seq)
	}
	if c.Version == 0 {
		c.Version = 1
	}
	cp := *c
	m.cases[c.CaseID] = &cp
	m.order = append(m.order, c.CaseID)
	return nil
}

func (m *mockCaseRepo) GetByID(_ context.Context, id string) (*model.Case, error) {
	if c, ok := m.cases[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCaseRepo) GetForUpdate(ctx context.Context, id string) (*model.Case, error) {
	return m.GetByID(ctx, id)
}

func (m *mockCaseRepo) Update(_ context.Context, c *model.Case) error {
	m.updates++
	if m.failUpdateAt > 0 && m.updates == m.failUpdateAt {
		return errors.New("connection reset")
	}
	stored, ok := m.cases[c.CaseID]
	if !ok || stored.Version != c.Version {
		return pkgerrors.ErrOptimisticLock
	}
	c.Version++
	cp := *c
	m.cases[c.CaseID] = &cp
	return nil
}

func (m *mockCaseRepo) List(_ context.Context, filter repository.CaseFilter, offset, limit int) ([]model.Case, int64, error) {
	var result []model.Case
	for i := len(m.order) - 1; i >= 0; i-- {
		c := m.cases[m.order[i]]
		if filter.Status != "" && string(c.Status) != filter.Status {
			continue
		}
		if filter.AssignedTo != "" && (c.AssignedTo == nil || *c.AssignedTo != filter.AssignedTo) {
			continue
		}
		if filter.Region != "" && !strings.EqualFold(c.Region, filter.Region) {
			continue
		}
		result = append(result, *c)
	}
	total := int64(len(result))
	if offset >= len(result) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(result) {
		end = len(result)
	}
	return result[offset:end], total, nil
}

func (m *mockCaseRepo) ListOpenUnassigned(_ context.Context) ([]model.Case, error) {
	var result []model.Case
	for i := len(m.order) - 1; i >= 0; i-- {
		c := m.cases[m.order[i]]
		if c.Status.IsOpen() && c.AssignedTo == nil {
			result = append(result, *c)
		}
	}
	return result, nil
}

func (m *mockCaseRepo) CountOpenByAssignee(_ context.Context) (map[string]int, error) {
	out := make(map[string]int)
	for _, c := range m.cases {
		if c.Status.IsOpen() && c.AssignedTo != nil {
			out[*c.AssignedTo]++
		}
	}
	return out, nil
}

// ── Mock ShelterRepository ──

type mockShelterRepo struct {
	shelters map[string]*model.Shelter
}

func newMockShelterRepo() *mockShelterRepo {
	return &mockShelterRepo{shelters: make(map[string]*model.Shelter)}
}

func (m *mockShelterRepo) seed(s *model.Shelter) {
	m.shelters[s.ShelterID] = s
}

func (m *mockShelterRepo) GetByID(_ context.Context, id string) (*model.Shelter, error) {
	if s, ok := m.shelters[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockShelterRepo) DecrementAvailable(_ context.Context, id string) (bool, error) {
	s, ok := m.shelters[id]
	if !ok || s.Available <= 0 {
		return false, nil
	}
	s.Available--
	return true, nil
}

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[string]*model.User // key: user_id
	order []string
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if user.UserID == "" {
		user.UserID = "user-" + user.Username
	}
	m.users[user.UserID] = user
	m.order = append(m.order, user.UserID)
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok && !u.DeletedAt.Valid {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range m.users {
		if u.Username == username && !u.DeletedAt.Valid {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) ListByRoles(_ context.Context, roles ...string) ([]model.User, error) {
	var result []model.User
	for i := len(m.order) - 1; i >= 0; i-- {
		u := m.users[m.order[i]]
		if u.DeletedAt.Valid {
			continue
		}
		for _, r := range roles {
			if u.Role == r {
				result = append(result, *u)
				break
			}
		}
	}
	return result, nil
}

// ── Mock BloodRepository ──

type mockBloodRepo struct {
	units map[string]*model.BloodUnit
	seq   int
}

func newMockBloodRepo() *mockBloodRepo {
	return &mockBloodRepo{units: make(map[string]*model.BloodUnit)}
}

func (m *mockBloodRepo) Create(_ context.Context, u *model.BloodUnit) error {
	if u.UnitID == "" {
		m.seq++
		u.UnitID = fmt.Sprintf("unit-%d", m.seq)
	}
	cp := *u
	m.units[u.UnitID] = &cp
	return nil
}

func (m *mockBloodRepo) GetByID(_ context.Context, id string) (*model.BloodUnit, error) {
	if u, ok := m.units[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockBloodRepo) Update(_ context.Context, u *model.BloodUnit) error {
	cp := *u
	m.units[u.UnitID] = &cp
	return nil
}

func (m *mockBloodRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.units[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.units, id)
	return nil
}

func (m *mockBloodRepo) List(_ context.Context) ([]model.BloodUnit, error) {
	result := make([]model.BloodUnit, 0, len(m.units))
	for _, u := range m.units {
		result = append(result, *u)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].UnitID < result[j].UnitID })
	return result, nil
}

func (m *mockBloodRepo) ReplaceAll(ctx context.Context, units []model.BloodUnit) error {
	m.units = make(map[string]*model.BloodUnit)
	for i := range units {
		if err := m.Create(ctx, &units[i]); err != nil {
			return err
		}
	}
	return nil
}

// ── Mock NotificationRepository ──

type mockNotificationRepo struct {
	mu    sync.Mutex
	items []model.Notification
}

func newMockNotificationRepo() *mockNotificationRepo {
	return &mockNotificationRepo{}
}

func (m *mockNotificationRepo) Create(_ context.Context, n *model.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n.NotificationID = fmt.Sprintf("note-%d", len(m.items)+1)
	m.items = append(m.items, *n)
	return nil
}

func (m *mockNotificationRepo) ListByUser(_ context.Context, userID string, unreadOnly bool, offset, limit int) ([]model.Notification, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.Notification
	for i := len(m.items) - 1; i >= 0; i-- {
		n := m.items[i]
		if n.UserID != userID || (unreadOnly && n.IsRead) {
			continue
		}
		result = append(result, n)
	}
	total := int64(len(result))
	if offset >= len(result) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(result) {
		end = len(result)
	}
	return result[offset:end], total, nil
}

func (m *mockNotificationRepo) MarkAllRead(_ context.Context, userID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for i := range m.items {
		if m.items[i].UserID == userID && !m.items[i].IsRead {
			m.items[i].IsRead = true
			n++
		}
	}
	return n, nil
}

// messagesFor every message delivered to userID, oldest first
func (m *mockNotificationRepo) messagesFor(userID string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, n := range m.items {
		if n.UserID == userID {
			out = append(out, n.Message)
		}
	}
	return out
}

// ── Mock AuditRepository ──

type mockAuditRepo struct {
	entries []model.AuditLog
}

func newMockAuditRepo() *mockAuditRepo {
	return &mockAuditRepo{}
}

func (m *mockAuditRepo) Create(_ context.Context, entry *model.AuditLog) error {
	entry.AuditID = fmt.Sprintf("audit-%d", len(m.entries)+1)
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *mockAuditRepo) List(_ context.Context, entityKind string, offset, limit int) ([]model.AuditLog, int64, error) {
	var result []model.AuditLog
	for i := len(m.entries) - 1; i >= 0; i-- {
		if entityKind == "" || m.entries[i].EntityKind == entityKind {
			result = append(result, m.entries[i])
		}
	}
	total := int64(len(result))
	if offset >= len(result) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(result) {
		end = len(result)
	}
	return result[offset:end], total, nil
}

// countKind audit rows of one entity kind
func (m *mockAuditRepo) countKind(kind string) int {
	n := 0
	for _, e := range m.entries {
		if e.EntityKind == kind {
			n++
		}
	}
	return n
}

// ── fixture ──

type mockRepos struct {
	cases         *mockCaseRepo
	shelters      *mockShelterRepo
	users         *mockUserRepo
	blood         *mockBloodRepo
	notifications *mockNotificationRepo
	audit         *mockAuditRepo
}

func newMockRepos() (*repository.Repository, *mockRepos) {
	m := &mockRepos{
		cases:         newMockCaseRepo(),
		shelters:      newMockShelterRepo(),
		users:         newMockUserRepo(),
		blood:         newMockBloodRepo(),
		notifications: newMockNotificationRepo(),
		audit:         newMockAuditRepo(),
	}
	repo := &repository.Repository{
		Case:         m.cases,
		Shelter:      m.shelters,
		User:         m.users,
		Blood:        m.blood,
		Notification: m.notifications,
		Audit:        m.audit,
	}
	return repo, m
}

func strPtr(s string) *string { return &s }
