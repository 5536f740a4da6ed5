package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"studyhub/internal/dto"
	"studyhub/internal/model"
	"studyhub/internal/repository"
	"studyhub/pkg/redis"
)

// ── 出勤统计模块业务错误 ──

var (
	ErrInvalidMonth   = errors.New("月份格式应为 YYYY-MM")
	ErrStudyNotRanked = errors.New("该小组本月暂无出勤排名")
)

const (
	monthLayout     = "2006-01"
	unknownUsername = "unknown"
)

// RankingCache 月度排行缓存（由 pkg/redis.Client 实现）
//
// 每个月份维护一个代数计数器，缓存 key 带上代数；签到只需自增代数，
// 统计期间发生的签到会让随后写入的旧结果落在不会再被读取的 key 上
type RankingCache interface {
	GetJSON(ctx context.Context, key string, dest interface{}) error
	SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	GetInt(ctx context.Context, key string) (int64, error)
	Incr(ctx context.Context, key string) (int64, error)
}

func rankingGenKey(month string) string {
	return "attendance:ranking:gen:" + month
}

func rankingCacheKey(month string, gen int64) string {
	return "attendance:ranking:" + month + ":" + strconv.FormatInt(gen, 10)
}

// AttendanceReportService 出勤统计业务接口
//
// 所有查询在无数据时返回零值结果而不是错误
type AttendanceReportService interface {
	UserAttendance(ctx context.Context, userID string) (*dto.UserAttendanceResponse, error)
	StudyAttendance(ctx context.Context, studyID string) (*dto.StudyAttendanceResponse, error)
	StudyMembersAttendance(ctx context.Context, studyID string) (*dto.StudyMembersAttendanceResponse, error)
	HostSchedules(ctx context.Context, userID string) ([]dto.HostScheduleResponse, error)
	ScheduleAttendance(ctx context.Context, scheduleID string) (*dto.ScheduleAttendanceResponse, error)
	MonthlyRanking(ctx context.Context, month string) (*dto.MonthlyRankingResponse, error)
	// StudyGlobalRank month 为空时取部署时区的当月
	StudyGlobalRank(ctx context.Context, studyID, month string) (*dto.StudyRankResponse, error)
}

type attendanceReportService struct {
	repo     *repository.Repository
	window   *CheckInWindow
	cache    RankingCache
	cacheTTL time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

// NewAttendanceReportService 创建 AttendanceReportService 实例；cache 可为 nil
func NewAttendanceReportService(
	repo *repository.Repository,
	window *CheckInWindow,
	cache RankingCache,
	cacheTTL time.Duration,
	logger *zap.Logger,
) AttendanceReportService {
	return &attendanceReportService{
		repo:     repo,
		window:   window,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   logger,
		now:      time.Now,
	}
}

// ────────────────────── UserAttendance ──────────────────────

func (s *attendanceReportService) UserAttendance(ctx context.Context, userID string) (*dto.UserAttendanceResponse, error) {
	records, err := s.repo.Attendance.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("查询个人出勤失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	summary := Summarize(records)
	resp := &dto.UserAttendanceResponse{
		UserID:  userID,
		Total:   len(records),
		Summary: summary,
		Percent: WeightedPercent(summary),
		Records: make([]dto.AttendanceRecordResponse, 0, len(records)),
	}
	for i := range records {
		resp.Records = append(resp.Records, toAttendanceRecordResponse(&records[i]))
	}
	return resp, nil
}

// ────────────────────── StudyAttendance ──────────────────────

func (s *attendanceReportService) StudyAttendance(ctx context.Context, studyID string) (*dto.StudyAttendanceResponse, error) {
	records, err := s.repo.Attendance.ListByStudy(ctx, studyID)
	if err != nil {
		s.logger.Error("查询小组出勤失败", zap.String("study_id", studyID), zap.Error(err))
		return nil, err
	}

	groups := groupByUser(records)
	names := s.lookupUsernames(ctx, groups.order)

	summary := Summarize(records)
	resp := &dto.StudyAttendanceResponse{
		StudyID: studyID,
		Total:   len(records),
		Summary: summary,
		Percent: WeightedPercent(summary),
		Members: make([]dto.MemberAttendance, 0, len(groups.order)),
	}
	for _, uid := range groups.order {
		resp.Members = append(resp.Members, buildMemberAttendance(uid, names[uid], groups.byKey[uid]))
	}
	return resp, nil
}

// ────────────────────── StudyMembersAttendance ──────────────────────

func (s *attendanceReportService) StudyMembersAttendance(ctx context.Context, studyID string) (*dto.StudyMembersAttendanceResponse, error) {
	members, err := s.repo.Study.ListMembers(ctx, studyID)
	if err != nil {
		s.logger.Error("查询小组成员失败", zap.String("study_id", studyID), zap.Error(err))
		return nil, err
	}

	records, err := s.repo.Attendance.ListByStudy(ctx, studyID)
	if err != nil {
		s.logger.Error("查询小组出勤失败", zap.String("study_id", studyID), zap.Error(err))
		return nil, err
	}
	groups := groupByUser(records)

	result := make([]dto.MemberAttendance, 0, len(members)+len(groups.order))
	seen := make(map[string]bool, len(members))

	// 先以当前成员名单为底，零记录成员同样展示
	for i := range members {
		m := &members[i]
		if seen[m.UserID] {
			continue
		}
		seen[m.UserID] = true
		name := m.DisplayName()
		if name == "" {
			name = unknownUsername
		}
		result = append(result, buildMemberAttendance(m.UserID, name, groups.byKey[m.UserID]))
	}

	// 再补上已不在名单中但有历史记录的用户
	var departed []string
	for _, uid := range groups.order {
		if !seen[uid] {
			departed = append(departed, uid)
		}
	}
	if len(departed) > 0 {
		names := s.lookupUsernames(ctx, departed)
		for _, uid := range departed {
			item := buildMemberAttendance(uid, names[uid], groups.byKey[uid])
			item.Departed = true
			result = append(result, item)
		}
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Percent > result[j].Percent
	})

	return &dto.StudyMembersAttendanceResponse{StudyID: studyID, Members: result}, nil
}

// ────────────────────── HostSchedules ──────────────────────

func (s *attendanceReportService) HostSchedules(ctx context.Context, userID string) ([]dto.HostScheduleResponse, error) {
	schedules, err := s.repo.Schedule.ListByCreator(ctx, userID)
	if err != nil {
		s.logger.Error("查询主持日程失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	now := s.now()
	var future, past []dto.HostScheduleResponse
	var pastIDs []string

	for i := range schedules {
		sch := &schedules[i]
		item := toHostScheduleResponse(sch)

		if !s.window.Ended(sch, now) {
			item.CanCheckIn = s.window.Eligible(sch, now)
			future = append(future, item)
			continue
		}
		item.IsPast = true
		past = append(past, item)
		pastIDs = append(pastIDs, sch.ScheduleID)
	}

	if len(pastIDs) > 0 {
		records, err := s.repo.Attendance.ListByScheduleIDs(ctx, pastIDs)
		if err != nil {
			s.logger.Error("查询日程出勤失败", zap.String("user_id", userID), zap.Error(err))
			return nil, err
		}
		groups := groupRecords(records, func(r *model.AttendanceRecord) string { return r.ScheduleID })
		for i := range past {
			summary := Summarize(groups.byKey[past[i].ScheduleID])
			percent := WeightedPercent(summary)
			past[i].Summary = &summary
			past[i].Percent = &percent
		}
	}

	// start_date 为 YYYY-MM-DD，字典序即日期序
	sort.SliceStable(future, func(i, j int) bool { return future[i].StartDate < future[j].StartDate })
	sort.SliceStable(past, func(i, j int) bool { return past[i].StartDate > past[j].StartDate })

	result := make([]dto.HostScheduleResponse, 0, len(future)+len(past))
	result = append(result, future...)
	result = append(result, past...)
	return result, nil
}

// ────────────────────── ScheduleAttendance ──────────────────────

func (s *attendanceReportService) ScheduleAttendance(ctx context.Context, scheduleID string) (*dto.ScheduleAttendanceResponse, error) {
	schedule, err := s.repo.Schedule.GetByID(ctx, scheduleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrScheduleNotFound
		}
		s.logger.Error("查询日程失败", zap.String("schedule_id", scheduleID), zap.Error(err))
		return nil, err
	}

	records, err := s.repo.Attendance.ListBySchedule(ctx, scheduleID)
	if err != nil {
		s.logger.Error("查询日程出勤失败", zap.String("schedule_id", scheduleID), zap.Error(err))
		return nil, err
	}

	userIDs := make([]string, 0, len(records))
	for i := range records {
		userIDs = append(userIDs, records[i].UserID)
	}
	names := s.lookupUsernames(ctx, userIDs)

	summary := Summarize(records)
	resp := &dto.ScheduleAttendanceResponse{
		ScheduleID: schedule.ScheduleID,
		StudyID:    schedule.StudyID,
		Title:      schedule.Title,
		CanCheckIn: s.window.Eligible(schedule, s.now()),
		Total:      len(records),
		Summary:    summary,
		Percent:    WeightedPercent(summary),
		Records:    make([]dto.ScheduleAttendeeResponse, 0, len(records)),
	}
	for i := range records {
		resp.Records = append(resp.Records, dto.ScheduleAttendeeResponse{
			UserID:    records[i].UserID,
			Username:  names[records[i].UserID],
			Status:    records[i].Status,
			UpdatedAt: records[i].UpdatedAt.Format(time.RFC3339),
		})
	}
	return resp, nil
}

// ────────────────────── MonthlyRanking ──────────────────────

func (s *attendanceReportService) MonthlyRanking(ctx context.Context, month string) (*dto.MonthlyRankingResponse, error) {
	from, err := parseMonth(month)
	if err != nil {
		return nil, err
	}
	month = from.Format(monthLayout)

	// 代数须在读库之前取得
	gen, cacheable := s.rankingGeneration(ctx, month)
	if cacheable {
		if cached, ok := s.cachedRanking(ctx, month, gen); ok {
			return cached, nil
		}
	}

	records, err := s.repo.Attendance.ListByDateRange(ctx, from, from.AddDate(0, 1, 0))
	if err != nil {
		s.logger.Error("查询月度出勤失败", zap.String("month", month), zap.Error(err))
		return nil, err
	}

	groups := groupByStudy(records)
	titles := s.lookupStudyTitles(ctx, groups.order)

	rankings := make([]dto.RankingEntry, 0, len(groups.order))
	for _, sid := range groups.order {
		summary := Summarize(groups.byKey[sid])
		rankings = append(rankings, dto.RankingEntry{
			StudyID:    sid,
			StudyTitle: titles[sid],
			Total:      summary.Total(),
			Summary:    summary,
			Percent:    WeightedPercent(summary),
		})
	}

	// 同分不额外排序，保持首次出现顺序
	sort.SliceStable(rankings, func(i, j int) bool {
		return rankings[i].Percent > rankings[j].Percent
	})
	for i := range rankings {
		rankings[i].Rank = i + 1
	}

	resp := &dto.MonthlyRankingResponse{Month: month, Rankings: rankings}
	if cacheable {
		s.storeRanking(ctx, resp, gen)
	}
	return resp, nil
}

// ────────────────────── StudyGlobalRank ──────────────────────

func (s *attendanceReportService) StudyGlobalRank(ctx context.Context, studyID, month string) (*dto.StudyRankResponse, error) {
	if month == "" {
		month = s.now().In(s.window.Location()).Format(monthLayout)
	}

	ranking, err := s.MonthlyRanking(ctx, month)
	if err != nil {
		return nil, err
	}

	for _, entry := range ranking.Rankings {
		if entry.StudyID == studyID {
			return &dto.StudyRankResponse{
				StudyID:    studyID,
				Month:      ranking.Month,
				Rank:       entry.Rank,
				TotalRanks: len(ranking.Rankings),
				Percent:    entry.Percent,
			}, nil
		}
	}
	return nil, ErrStudyNotRanked
}

// ── 排行缓存 ──

// rankingGeneration 读取月份当前代数；缓存不可用时返回 false
func (s *attendanceReportService) rankingGeneration(ctx context.Context, month string) (int64, bool) {
	if s.cache == nil || s.cacheTTL <= 0 {
		return 0, false
	}
	gen, err := s.cache.GetInt(ctx, rankingGenKey(month))
	if err != nil {
		s.logger.Warn("读取排行缓存代数失败", zap.String("month", month), zap.Error(err))
		return 0, false
	}
	return gen, true
}

func (s *attendanceReportService) cachedRanking(ctx context.Context, month string, gen int64) (*dto.MonthlyRankingResponse, bool) {
	var resp dto.MonthlyRankingResponse
	if err := s.cache.GetJSON(ctx, rankingCacheKey(month, gen), &resp); err != nil {
		if !errors.Is(err, redis.ErrCacheMiss) {
			s.logger.Warn("读取排行缓存失败", zap.String("month", month), zap.Error(err))
		}
		return nil, false
	}
	return &resp, true
}

func (s *attendanceReportService) storeRanking(ctx context.Context, resp *dto.MonthlyRankingResponse, gen int64) {
	if err := s.cache.SetJSON(ctx, rankingCacheKey(resp.Month, gen), resp, s.cacheTTL); err != nil {
		s.logger.Warn("写入排行缓存失败", zap.String("month", resp.Month), zap.Error(err))
	}
}

// ── 内部辅助方法 ──

// recordGroups 按 key 分组并记住首次出现顺序
type recordGroups struct {
	order []string
	byKey map[string][]model.AttendanceRecord
}

func groupRecords(records []model.AttendanceRecord, key func(*model.AttendanceRecord) string) recordGroups {
	g := recordGroups{byKey: make(map[string][]model.AttendanceRecord)}
	for i := range records {
		k := key(&records[i])
		if _, ok := g.byKey[k]; !ok {
			g.order = append(g.order, k)
		}
		g.byKey[k] = append(g.byKey[k], records[i])
	}
	return g
}

func groupByUser(records []model.AttendanceRecord) recordGroups {
	return groupRecords(records, func(r *model.AttendanceRecord) string { return r.UserID })
}

func groupByStudy(records []model.AttendanceRecord) recordGroups {
	return groupRecords(records, func(r *model.AttendanceRecord) string { return r.StudyID })
}

func buildMemberAttendance(userID, username string, records []model.AttendanceRecord) dto.MemberAttendance {
	summary := Summarize(records)
	return dto.MemberAttendance{
		UserID:   userID,
		Username: username,
		Total:    len(records),
		Summary:  summary,
		Percent:  WeightedPercent(summary),
	}
}

// lookupUsernames 尽力解析用户名，查不到或查询失败时回退为 "unknown"
func (s *attendanceReportService) lookupUsernames(ctx context.Context, userIDs []string) map[string]string {
	names := make(map[string]string, len(userIDs))
	for _, id := range userIDs {
		names[id] = unknownUsername
	}
	if len(userIDs) == 0 {
		return names
	}

	users, err := s.repo.User.ListByIDs(ctx, userIDs)
	if err != nil {
		s.logger.Warn("查询用户名失败，使用默认名称", zap.Error(err))
		return names
	}
	for i := range users {
		if users[i].Name != "" {
			names[users[i].UserID] = users[i].Name
		}
	}
	return names
}

// lookupStudyTitles 尽力解析小组名称，失败时留空
func (s *attendanceReportService) lookupStudyTitles(ctx context.Context, studyIDs []string) map[string]string {
	titles := make(map[string]string, len(studyIDs))
	if len(studyIDs) == 0 {
		return titles
	}
	studies, err := s.repo.Study.ListByIDs(ctx, studyIDs)
	if err != nil {
		s.logger.Warn("查询小组名称失败", zap.Error(err))
		return titles
	}
	for i := range studies {
		titles[studies[i].StudyID] = studies[i].Title
	}
	return titles
}

func parseMonth(month string) (time.Time, error) {
	t, err := time.Parse(monthLayout, month)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidMonth, month)
	}
	return t, nil
}

func toHostScheduleResponse(s *model.Schedule) dto.HostScheduleResponse {
	endDate := s.StartDate
	if s.EndDate != nil && !s.EndDate.IsZero() {
		endDate = *s.EndDate
	}
	resp := dto.HostScheduleResponse{
		ScheduleID: s.ScheduleID,
		StudyID:    s.StudyID,
		Title:      s.Title,
		StartDate:  s.StartDate.Format(time.DateOnly),
		EndDate:    endDate.Format(time.DateOnly),
		StartTime:  s.StartTime,
		EndTime:    s.EndTime,
	}
	if s.Study != nil {
		resp.StudyTitle = s.Study.Title
	}
	return resp
}
