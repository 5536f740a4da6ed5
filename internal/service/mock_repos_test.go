package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"

	"studyhub/internal/model"
	"studyhub/internal/repository"
	"studyhub/pkg/redis"
)

// ── Mock UserRepository ──

type mockUserRepo struct {
	users   map[string]*model.User
	listErr error
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) add(u *model.User) *model.User {
	m.users[u.UserID] = u
	return u
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) ListByIDs(_ context.Context, ids []string) ([]model.User, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var result []model.User
	for _, id := range ids {
		if u, ok := m.users[id]; ok {
			result = append(result, *u)
		}
	}
	return result, nil
}

// ── Mock StudyRepository ──

type mockStudyRepo struct {
	studies map[string]*model.Study
	members map[string][]model.StudyMember
}

func newMockStudyRepo() *mockStudyRepo {
	return &mockStudyRepo{
		studies: make(map[string]*model.Study),
		members: make(map[string][]model.StudyMember),
	}
}

func (m *mockStudyRepo) add(s *model.Study) *model.Study {
	m.studies[s.StudyID] = s
	return s
}

func (m *mockStudyRepo) addMember(studyID string, member model.StudyMember) {
	member.StudyID = studyID
	m.members[studyID] = append(m.members[studyID], member)
}

func (m *mockStudyRepo) ListByIDs(_ context.Context, ids []string) ([]model.Study, error) {
	var result []model.Study
	for _, id := range ids {
		if s, ok := m.studies[id]; ok {
			result = append(result, *s)
		}
	}
	return result, nil
}

func (m *mockStudyRepo) ListMembers(_ context.Context, studyID string) ([]model.StudyMember, error) {
	return append([]model.StudyMember(nil), m.members[studyID]...), nil
}

// ── Mock ScheduleRepository ──

type mockScheduleRepo struct {
	schedules map[string]*model.Schedule
	getErr    error
}

func newMockScheduleRepo() *mockScheduleRepo {
	return &mockScheduleRepo{schedules: make(map[string]*model.Schedule)}
}

func (m *mockScheduleRepo) add(s *model.Schedule) *model.Schedule {
	m.schedules[s.ScheduleID] = s
	return s
}

func (m *mockScheduleRepo) GetByID(_ context.Context, id string) (*model.Schedule, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if s, ok := m.schedules[id]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockScheduleRepo) ListByCreator(_ context.Context, userID string) ([]model.Schedule, error) {
	var result []model.Schedule
	for _, s := range m.schedules {
		if s.CreatedBy == userID {
			result = append(result, *s)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].StartDate.Before(result[j].StartDate)
	})
	return result, nil
}

// ── Mock AttendanceRepository ──
// 行为与库内 ON CONFLICT 一致：(schedule_id, user_id) 已存在时只覆盖 status

type mockAttendanceRepo struct {
	mu      sync.Mutex
	records []*model.AttendanceRecord
	seq     int
	clock   time.Time
	listErr error
	// scheduleQueries 按日程查询的次数
	scheduleQueries int
}

func newMockAttendanceRepo() *mockAttendanceRepo {
	return &mockAttendanceRepo{clock: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
}

// tick 单调递增的写入时间，保证 created_at 排序稳定
func (m *mockAttendanceRepo) tick() time.Time {
	m.clock = m.clock.Add(time.Second)
	return m.clock
}

func (m *mockAttendanceRepo) Upsert(_ context.Context, rec *model.AttendanceRecord) (*model.AttendanceRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.tick()
	for _, r := range m.records {
		if r.ScheduleID == rec.ScheduleID && r.UserID == rec.UserID {
			r.Status = rec.Status
			r.UpdatedAt = now
			cp := *r
			return &cp, nil
		}
	}

	m.seq++
	stored := *rec
	stored.AttendanceID = fmt.Sprintf("att-%d", m.seq)
	stored.CreatedAt = now
	stored.UpdatedAt = now
	m.records = append(m.records, &stored)
	cp := stored
	return &cp, nil
}

// seed 直接写入一条记录（测试构造历史数据用）
func (m *mockAttendanceRepo) seed(rec model.AttendanceRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	rec.AttendanceID = fmt.Sprintf("att-%d", m.seq)
	rec.CreatedAt = m.tick()
	rec.UpdatedAt = rec.CreatedAt
	m.records = append(m.records, &rec)
}

func (m *mockAttendanceRepo) filter(keep func(*model.AttendanceRecord) bool, newestFirst bool) []model.AttendanceRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.AttendanceRecord
	for _, r := range m.records {
		if keep(r) {
			result = append(result, *r)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		if !newestFirst {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		if !result[i].ScheduleDate.Equal(result[j].ScheduleDate) {
			return result[i].ScheduleDate.After(result[j].ScheduleDate)
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result
}

func (m *mockAttendanceRepo) ListByUser(_ context.Context, userID string) ([]model.AttendanceRecord, error) {
	return m.filter(func(r *model.AttendanceRecord) bool { return r.UserID == userID }, true), nil
}

func (m *mockAttendanceRepo) ListByStudy(_ context.Context, studyID string) ([]model.AttendanceRecord, error) {
	return m.filter(func(r *model.AttendanceRecord) bool { return r.StudyID == studyID }, true), nil
}

func (m *mockAttendanceRepo) ListBySchedule(_ context.Context, scheduleID string) ([]model.AttendanceRecord, error) {
	m.countScheduleQuery()
	return m.filter(func(r *model.AttendanceRecord) bool { return r.ScheduleID == scheduleID }, false), nil
}

func (m *mockAttendanceRepo) ListByScheduleIDs(_ context.Context, scheduleIDs []string) ([]model.AttendanceRecord, error) {
	m.countScheduleQuery()
	if m.listErr != nil {
		return nil, m.listErr
	}
	wanted := make(map[string]bool, len(scheduleIDs))
	for _, id := range scheduleIDs {
		wanted[id] = true
	}
	return m.filter(func(r *model.AttendanceRecord) bool { return wanted[r.ScheduleID] }, false), nil
}

func (m *mockAttendanceRepo) countScheduleQuery() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scheduleQueries++
}

func (m *mockAttendanceRepo) ListByDateRange(_ context.Context, from, to time.Time) ([]model.AttendanceRecord, error) {
	return m.filter(func(r *model.AttendanceRecord) bool {
		return !r.ScheduleDate.Before(from) && r.ScheduleDate.Before(to)
	}, true), nil
}

func (m *mockAttendanceRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}

// ── Mock RankingCache ──

type mockCache struct {
	mu   sync.Mutex
	data map[string][]byte
	ints map[string]int64
	gets int
	// beforeSet 在写入前回调，用于模拟统计期间插入的签到
	beforeSet func()
}

func newMockCache() *mockCache {
	return &mockCache{data: make(map[string][]byte), ints: make(map[string]int64)}
}

func (c *mockCache) GetJSON(_ context.Context, key string, dest interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	raw, ok := c.data[key]
	if !ok {
		return redis.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (c *mockCache) SetJSON(_ context.Context, key string, value interface{}, _ time.Duration) error {
	if c.beforeSet != nil {
		hook := c.beforeSet
		c.beforeSet = nil
		hook()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.data[key] = raw
	return nil
}

func (c *mockCache) GetInt(_ context.Context, key string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ints[key], nil
}

func (c *mockCache) Incr(_ context.Context, key string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ints[key]++
	return c.ints[key], nil
}

// generation 当月排行代数
func (c *mockCache) generation(month string) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ints[rankingGenKey(month)]
}

// rankingCached 当前代数下是否存在该月排行缓存
func (c *mockCache) rankingCached(month string) bool {
	gen := c.generation(month)
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.data[rankingCacheKey(month, gen)]
	return ok
}

// ── Mock TokenBlacklist ──

type mockBlacklist struct {
	tokens map[string]time.Duration
	err    error
}

func newMockBlacklist() *mockBlacklist {
	return &mockBlacklist{tokens: make(map[string]time.Duration)}
}

func (b *mockBlacklist) BlacklistToken(_ context.Context, jti string, ttl time.Duration) error {
	if b.err != nil {
		return b.err
	}
	b.tokens[jti] = ttl
	return nil
}

// ── 测试夹具 ──

var errMockDB = errors.New("mock db failure")

type mockRepos struct {
	user       *mockUserRepo
	study      *mockStudyRepo
	schedule   *mockScheduleRepo
	attendance *mockAttendanceRepo
}

func newMockRepos() (*repository.Repository, *mockRepos) {
	m := &mockRepos{
		user:       newMockUserRepo(),
		study:      newMockStudyRepo(),
		schedule:   newMockScheduleRepo(),
		attendance: newMockAttendanceRepo(),
	}
	repo := &repository.Repository{
		User:       m.user,
		Study:      m.study,
		Schedule:   m.schedule,
		Attendance: m.attendance,
	}
	return repo, m
}

// testLoc 测试统一使用 Asia/Shanghai（UTC+8，无夏令时）
var testLoc = time.FixedZone("CST", 8*3600)

// day 构造日程日期（UTC 零点，与 date 列读出的值一致）
func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// at 构造部署时区内的时刻
func at(y int, m time.Month, d, hh, mm int) time.Time {
	return time.Date(y, m, d, hh, mm, 0, 0, testLoc)
}
