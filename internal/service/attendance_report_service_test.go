package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"go.uber.org/zap"

	"studyhub/internal/dto"
	"studyhub/internal/model"
)

// ── 测试辅助 ──

func setupTestReportService(now time.Time) (*attendanceReportService, *mockRepos, *mockCache) {
	repo, mocks := newMockRepos()
	cache := newMockCache()
	svc := NewAttendanceReportService(repo, NewCheckInWindow(testLoc, 5*time.Minute), cache, 10*time.Minute, zap.NewNop()).(*attendanceReportService)
	svc.now = func() time.Time { return now }
	return svc, mocks, cache
}

func seedRecord(mocks *mockRepos, studyID, scheduleID, userID string, date time.Time, st model.AttendanceStatus) {
	mocks.attendance.seed(model.AttendanceRecord{
		ScheduleID:    scheduleID,
		StudyID:       studyID,
		UserID:        userID,
		Status:        st,
		ScheduleTitle: "日程 " + scheduleID,
		ScheduleDate:  date,
	})
}

// ── UserAttendance ──

func TestUserAttendance(t *testing.T) {
	svc, mocks, _ := setupTestReportService(at(2026, 3, 20, 12, 0))
	seedRecord(mocks, "study-a", "s1", "u1", day(2026, 3, 1), model.AttendancePresent)
	seedRecord(mocks, "study-a", "s2", "u1", day(2026, 3, 8), model.AttendanceLate)
	seedRecord(mocks, "study-b", "s3", "u1", day(2026, 3, 5), model.AttendanceAbsent)
	seedRecord(mocks, "study-a", "s1", "u2", day(2026, 3, 1), model.AttendanceAbsent)

	resp, err := svc.UserAttendance(context.Background(), "u1")
	if err != nil {
		t.Fatalf("UserAttendance 应成功: %v", err)
	}
	if resp.Total != 3 {
		t.Errorf("期望 total=3，实际=%d", resp.Total)
	}
	if resp.Summary != (model.AttendanceSummary{Present: 1, Late: 1, Absent: 1}) {
		t.Errorf("summary 不正确: %+v", resp.Summary)
	}
	if resp.Percent != 50 {
		t.Errorf("期望 percent=50，实际=%v", resp.Percent)
	}
	if resp.Records[0].ScheduleDate != "2026-03-08" {
		t.Errorf("记录应按日期倒序，首条=%s", resp.Records[0].ScheduleDate)
	}
}

func TestUserAttendance_Empty(t *testing.T) {
	svc, _, _ := setupTestReportService(at(2026, 3, 20, 12, 0))

	resp, err := svc.UserAttendance(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("无记录时不应报错: %v", err)
	}
	if resp.Total != 0 || resp.Percent != 0 || resp.Records == nil {
		t.Errorf("期望零值结果且 records 为空数组，实际: %+v", resp)
	}
}

// ── StudyAttendance ──

func TestStudyAttendance(t *testing.T) {
	svc, mocks, _ := setupTestReportService(at(2026, 3, 20, 12, 0))
	mocks.user.add(&model.User{UserID: "u1", Name: "张三"})
	seedRecord(mocks, "study-a", "s1", "u1", day(2026, 3, 1), model.AttendancePresent)
	seedRecord(mocks, "study-a", "s1", "u2", day(2026, 3, 1), model.AttendanceAbsent)
	seedRecord(mocks, "study-a", "s2", "u1", day(2026, 3, 8), model.AttendancePresent)

	resp, err := svc.StudyAttendance(context.Background(), "study-a")
	if err != nil {
		t.Fatalf("StudyAttendance 应成功: %v", err)
	}
	if resp.Total != 3 || resp.Percent != 66.7 {
		t.Errorf("期望 total=3 percent=66.7，实际 total=%d percent=%v", resp.Total, resp.Percent)
	}
	if len(resp.Members) != 2 {
		t.Fatalf("期望 2 名成员，实际=%d", len(resp.Members))
	}

	byID := map[string]dto.MemberAttendance{}
	for _, m := range resp.Members {
		byID[m.UserID] = m
	}
	if byID["u1"].Username != "张三" || byID["u1"].Percent != 100 {
		t.Errorf("u1 统计不正确: %+v", byID["u1"])
	}
	if byID["u2"].Username != unknownUsername {
		t.Errorf("查不到的用户名应回退为 unknown，实际=%s", byID["u2"].Username)
	}
}

func TestStudyAttendance_UsernameLookupFailure(t *testing.T) {
	svc, mocks, _ := setupTestReportService(at(2026, 3, 20, 12, 0))
	mocks.user.listErr = errMockDB
	seedRecord(mocks, "study-a", "s1", "u1", day(2026, 3, 1), model.AttendancePresent)

	resp, err := svc.StudyAttendance(context.Background(), "study-a")
	if err != nil {
		t.Fatalf("用户名查询失败不应影响统计: %v", err)
	}
	if resp.Members[0].Username != unknownUsername {
		t.Errorf("期望 unknown，实际=%s", resp.Members[0].Username)
	}
}

// ── StudyMembersAttendance ──

func TestStudyMembersAttendance_MergesRosterAndHistory(t *testing.T) {
	svc, mocks, _ := setupTestReportService(at(2026, 3, 20, 12, 0))
	mocks.study.add(&model.Study{StudyID: "study-a", Title: "算法小组"})
	mocks.study.addMember("study-a", model.StudyMember{UserID: "u1", Nickname: "小张"})
	mocks.study.addMember("study-a", model.StudyMember{UserID: "u2", User: &model.User{UserID: "u2", Name: "李四"}})
	mocks.study.addMember("study-a", model.StudyMember{UserID: "u3"})
	mocks.user.add(&model.User{UserID: "u9", Name: "王五"})

	seedRecord(mocks, "study-a", "s1", "u1", day(2026, 3, 1), model.AttendanceLate)
	seedRecord(mocks, "study-a", "s1", "u2", day(2026, 3, 1), model.AttendancePresent)
	seedRecord(mocks, "study-a", "s1", "u9", day(2026, 3, 1), model.AttendancePresent)
	seedRecord(mocks, "study-a", "s2", "u9", day(2026, 3, 8), model.AttendanceAbsent)

	resp, err := svc.StudyMembersAttendance(context.Background(), "study-a")
	if err != nil {
		t.Fatalf("StudyMembersAttendance 应成功: %v", err)
	}
	if len(resp.Members) != 4 {
		t.Fatalf("期望 4 人（3 名在组 + 1 名已退出），实际=%d", len(resp.Members))
	}

	wantOrder := []string{"u2", "u1", "u9", "u3"}
	for i, uid := range wantOrder {
		if resp.Members[i].UserID != uid {
			t.Errorf("第 %d 位期望 %s，实际=%s", i, uid, resp.Members[i].UserID)
		}
	}

	byID := map[string]dto.MemberAttendance{}
	for _, m := range resp.Members {
		byID[m.UserID] = m
	}
	if byID["u1"].Username != "小张" {
		t.Errorf("应优先使用昵称，实际=%s", byID["u1"].Username)
	}
	if byID["u2"].Username != "李四" {
		t.Errorf("无昵称时应使用用户名，实际=%s", byID["u2"].Username)
	}
	if byID["u3"].Username != unknownUsername || byID["u3"].Total != 0 || byID["u3"].Departed {
		t.Errorf("零记录在组成员不正确: %+v", byID["u3"])
	}
	if !byID["u9"].Departed || byID["u9"].Username != "王五" || byID["u9"].Total != 2 {
		t.Errorf("已退出成员不正确: %+v", byID["u9"])
	}
}

// ── HostSchedules ──

func TestHostSchedules_PartitionAndOrder(t *testing.T) {
	now := at(2026, 3, 10, 20, 0)
	svc, mocks, _ := setupTestReportService(now)

	add := func(id string, date time.Time, start, end string) {
		mocks.schedule.add(&model.Schedule{
			ScheduleID: id, StudyID: "study-a", CreatedBy: "host",
			Title: id, StartDate: date, StartTime: start, EndTime: end,
		})
	}
	add("past-old", day(2026, 3, 1), "19:00", "21:00")
	add("past-new", day(2026, 3, 8), "19:00", "21:00")
	add("running", day(2026, 3, 10), "19:00", "21:00")
	add("future", day(2026, 3, 17), "19:00", "21:00")
	add("broken", day(2026, 3, 20), "bad", "21:00")
	mocks.schedule.add(&model.Schedule{ScheduleID: "other", CreatedBy: "someone", StartDate: day(2026, 3, 10), StartTime: "19:00", EndTime: "21:00"})

	seedRecord(mocks, "study-a", "past-new", "u1", day(2026, 3, 8), model.AttendancePresent)
	seedRecord(mocks, "study-a", "past-new", "u2", day(2026, 3, 8), model.AttendanceLate)

	items, err := svc.HostSchedules(context.Background(), "host")
	if err != nil {
		t.Fatalf("HostSchedules 应成功: %v", err)
	}

	wantOrder := []string{"running", "future", "broken", "past-new", "past-old"}
	if len(items) != len(wantOrder) {
		t.Fatalf("期望 %d 条，实际=%d", len(wantOrder), len(items))
	}
	for i, id := range wantOrder {
		if items[i].ScheduleID != id {
			t.Errorf("第 %d 位期望 %s，实际=%s", i, id, items[i].ScheduleID)
		}
	}

	if !items[0].CanCheckIn || items[0].IsPast {
		t.Errorf("进行中的日程应可签到: %+v", items[0])
	}
	if items[1].CanCheckIn {
		t.Error("未开始的日程不应可签到")
	}
	if !items[2].IsPast || items[2].CanCheckIn {
		t.Errorf("无法解析的日程应视为已结束: %+v", items[2])
	}
	pastNew := items[3]
	if pastNew.Summary == nil || pastNew.Percent == nil {
		t.Fatal("已结束日程应带出勤统计")
	}
	if pastNew.Summary.Present != 1 || pastNew.Summary.Late != 1 || *pastNew.Percent != 75 {
		t.Errorf("past-new 统计不正确: %+v percent=%v", *pastNew.Summary, *pastNew.Percent)
	}
	if items[0].Summary != nil {
		t.Error("未结束日程不应带统计")
	}
}

func TestHostSchedules_SingleRecordQuery(t *testing.T) {
	svc, mocks, _ := setupTestReportService(at(2026, 3, 10, 20, 0))
	for i, d := range []int{1, 3, 5, 7} {
		id := fmt.Sprintf("past-%d", i)
		mocks.schedule.add(&model.Schedule{
			ScheduleID: id, StudyID: "study-a", CreatedBy: "host",
			Title: id, StartDate: day(2026, 3, d), StartTime: "19:00", EndTime: "21:00",
		})
		seedRecord(mocks, "study-a", id, "u1", day(2026, 3, d), model.AttendancePresent)
	}
	seedRecord(mocks, "study-a", "past-0", "u2", day(2026, 3, 1), model.AttendanceAbsent)

	items, err := svc.HostSchedules(context.Background(), "host")
	if err != nil {
		t.Fatalf("HostSchedules 应成功: %v", err)
	}
	if mocks.attendance.scheduleQueries != 1 {
		t.Errorf("已结束日程的出勤应一次查询取回，实际查询 %d 次", mocks.attendance.scheduleQueries)
	}
	if len(items) != 4 {
		t.Fatalf("期望 4 条，实际=%d", len(items))
	}
	last := items[3]
	if last.ScheduleID != "past-0" || last.Summary.Present != 1 || last.Summary.Absent != 1 || *last.Percent != 50 {
		t.Errorf("past-0 统计不正确: %+v", last)
	}
	for _, it := range items[:3] {
		if it.Summary.Total() != 1 || *it.Percent != 100 {
			t.Errorf("%s 统计不正确: %+v", it.ScheduleID, *it.Summary)
		}
	}
}

func TestHostSchedules_RecordQueryError(t *testing.T) {
	svc, mocks, _ := setupTestReportService(at(2026, 3, 10, 20, 0))
	mocks.schedule.add(&model.Schedule{
		ScheduleID: "past", StudyID: "study-a", CreatedBy: "host",
		StartDate: day(2026, 3, 1), StartTime: "19:00", EndTime: "21:00",
	})
	mocks.attendance.listErr = errMockDB

	if _, err := svc.HostSchedules(context.Background(), "host"); !errors.Is(err, errMockDB) {
		t.Errorf("期望透传存储错误，实际: %v", err)
	}
}

func TestHostSchedules_Empty(t *testing.T) {
	svc, _, _ := setupTestReportService(at(2026, 3, 10, 20, 0))

	items, err := svc.HostSchedules(context.Background(), "host")
	if err != nil {
		t.Fatalf("HostSchedules 应成功: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("期望空列表，实际=%d", len(items))
	}
}

// ── ScheduleAttendance ──

func TestScheduleAttendance(t *testing.T) {
	svc, mocks, _ := setupTestReportService(at(2026, 3, 10, 20, 0))
	mocks.schedule.add(&model.Schedule{
		ScheduleID: "s1", StudyID: "study-a", CreatedBy: "host", Title: "周会",
		StartDate: day(2026, 3, 10), StartTime: "19:00", EndTime: "21:00",
	})
	mocks.user.add(&model.User{UserID: "u1", Name: "张三"})
	seedRecord(mocks, "study-a", "s1", "u1", day(2026, 3, 10), model.AttendancePresent)
	seedRecord(mocks, "study-a", "s1", "u2", day(2026, 3, 10), model.AttendanceAbsent)

	resp, err := svc.ScheduleAttendance(context.Background(), "s1")
	if err != nil {
		t.Fatalf("ScheduleAttendance 应成功: %v", err)
	}
	if !resp.CanCheckIn {
		t.Error("进行中的日程应可签到")
	}
	if resp.Total != 2 || resp.Percent != 50 {
		t.Errorf("期望 total=2 percent=50，实际 total=%d percent=%v", resp.Total, resp.Percent)
	}
	if resp.Records[0].UserID != "u1" || resp.Records[0].Username != "张三" {
		t.Errorf("名册应按签到先后排列: %+v", resp.Records[0])
	}
	if resp.Records[1].Username != unknownUsername {
		t.Errorf("期望 unknown，实际=%s", resp.Records[1].Username)
	}
}

func TestScheduleAttendance_NotFound(t *testing.T) {
	svc, _, _ := setupTestReportService(at(2026, 3, 10, 20, 0))

	_, err := svc.ScheduleAttendance(context.Background(), "missing")
	if !errors.Is(err, ErrScheduleNotFound) {
		t.Errorf("期望 ErrScheduleNotFound，实际: %v", err)
	}
}

// ── MonthlyRanking / StudyGlobalRank ──

func seedRankingData(mocks *mockRepos) {
	mocks.study.add(&model.Study{StudyID: "study-a", Title: "算法"})
	mocks.study.add(&model.Study{StudyID: "study-b", Title: "英语"})
	mocks.study.add(&model.Study{StudyID: "study-c", Title: "数学"})

	// study-a: 1 出席 1 缺席 → 50
	seedRecord(mocks, "study-a", "a1", "u1", day(2026, 3, 2), model.AttendancePresent)
	seedRecord(mocks, "study-a", "a1", "u2", day(2026, 3, 2), model.AttendanceAbsent)
	// study-b: 全部出席 → 100
	seedRecord(mocks, "study-b", "b1", "u1", day(2026, 3, 31), model.AttendancePresent)
	// study-c: 只有二月与四月的记录，不参与三月排名
	seedRecord(mocks, "study-c", "c1", "u1", day(2026, 2, 28), model.AttendancePresent)
	seedRecord(mocks, "study-c", "c2", "u1", day(2026, 4, 1), model.AttendancePresent)
}

func TestMonthlyRanking(t *testing.T) {
	svc, mocks, _ := setupTestReportService(at(2026, 3, 20, 12, 0))
	seedRankingData(mocks)

	resp, err := svc.MonthlyRanking(context.Background(), "2026-03")
	if err != nil {
		t.Fatalf("MonthlyRanking 应成功: %v", err)
	}
	if len(resp.Rankings) != 2 {
		t.Fatalf("只有当月有记录的小组参与排名，期望 2，实际=%d", len(resp.Rankings))
	}
	first, second := resp.Rankings[0], resp.Rankings[1]
	if first.StudyID != "study-b" || first.Rank != 1 || first.Percent != 100 || first.StudyTitle != "英语" {
		t.Errorf("第一名不正确: %+v", first)
	}
	if second.StudyID != "study-a" || second.Rank != 2 || second.Percent != 50 || second.Total != 2 {
		t.Errorf("第二名不正确: %+v", second)
	}
}

func TestMonthlyRanking_InvalidMonth(t *testing.T) {
	svc, _, _ := setupTestReportService(at(2026, 3, 20, 12, 0))

	for _, month := range []string{"", "2026-13", "2026/03", "March"} {
		if _, err := svc.MonthlyRanking(context.Background(), month); !errors.Is(err, ErrInvalidMonth) {
			t.Errorf("month=%q 期望 ErrInvalidMonth，实际: %v", month, err)
		}
	}
}

func TestMonthlyRanking_EmptyMonth(t *testing.T) {
	svc, mocks, _ := setupTestReportService(at(2026, 3, 20, 12, 0))
	seedRankingData(mocks)

	resp, err := svc.MonthlyRanking(context.Background(), "2025-01")
	if err != nil {
		t.Fatalf("无数据月份不应报错: %v", err)
	}
	if len(resp.Rankings) != 0 {
		t.Errorf("期望空排名，实际=%d", len(resp.Rankings))
	}
}

func TestMonthlyRanking_ReadThroughCache(t *testing.T) {
	svc, mocks, cache := setupTestReportService(at(2026, 3, 20, 12, 0))
	seedRankingData(mocks)
	ctx := context.Background()

	if _, err := svc.MonthlyRanking(ctx, "2026-03"); err != nil {
		t.Fatalf("MonthlyRanking 应成功: %v", err)
	}
	if !cache.rankingCached("2026-03") {
		t.Fatal("首次查询后应写入缓存")
	}

	// 缓存命中时不再读库
	seedRecord(mocks, "study-c", "c3", "u1", day(2026, 3, 15), model.AttendancePresent)
	resp, err := svc.MonthlyRanking(ctx, "2026-03")
	if err != nil {
		t.Fatalf("MonthlyRanking 应成功: %v", err)
	}
	if len(resp.Rankings) != 2 {
		t.Errorf("缓存命中应返回旧结果，实际 %d 条", len(resp.Rankings))
	}

	_, _ = cache.Incr(ctx, rankingGenKey("2026-03"))
	resp, _ = svc.MonthlyRanking(ctx, "2026-03")
	if len(resp.Rankings) != 3 {
		t.Errorf("缓存失效后应重新统计，实际 %d 条", len(resp.Rankings))
	}
}

func TestMonthlyRanking_CheckInDuringComputeNotCached(t *testing.T) {
	now := at(2026, 3, 10, 20, 0)
	repo, mocks := newMockRepos()
	cache := newMockCache()
	window := NewCheckInWindow(testLoc, 5*time.Minute)

	checkIn := NewAttendanceService(repo, window, cache, zap.NewNop()).(*attendanceService)
	checkIn.now = func() time.Time { return now }
	report := NewAttendanceReportService(repo, window, cache, time.Minute, zap.NewNop()).(*attendanceReportService)
	report.now = func() time.Time { return now }

	mocks.schedule.add(&model.Schedule{
		ScheduleID: testSchedID, StudyID: testStudyID, CreatedBy: testHostID, Title: "周会",
		StartDate: day(2026, 3, 10), StartTime: "19:00", EndTime: "21:00",
	})
	ctx := context.Background()

	// 排行已读库、尚未写缓存时插入一次签到
	cache.beforeSet = func() {
		if _, err := checkIn.CheckIn(ctx, checkInReq("present"), testHostID); err != nil {
			t.Errorf("CheckIn 应成功: %v", err)
		}
	}
	stale, err := report.MonthlyRanking(ctx, "2026-03")
	if err != nil {
		t.Fatalf("MonthlyRanking 应成功: %v", err)
	}
	if len(stale.Rankings) != 0 {
		t.Fatalf("读库时尚无记录，期望空排名，实际=%d", len(stale.Rankings))
	}

	fresh, err := report.MonthlyRanking(ctx, "2026-03")
	if err != nil {
		t.Fatalf("MonthlyRanking 应成功: %v", err)
	}
	if len(fresh.Rankings) != 1 || fresh.Rankings[0].StudyID != testStudyID {
		t.Errorf("签到后不应读到旧排行缓存: %+v", fresh.Rankings)
	}
	if !cache.rankingCached("2026-03") {
		t.Error("新一代排行应写入缓存")
	}
}

func TestStudyGlobalRank(t *testing.T) {
	svc, mocks, _ := setupTestReportService(at(2026, 3, 20, 12, 0))
	seedRankingData(mocks)
	ctx := context.Background()

	resp, err := svc.StudyGlobalRank(ctx, "study-a", "")
	if err != nil {
		t.Fatalf("StudyGlobalRank 应成功: %v", err)
	}
	if resp.Month != "2026-03" || resp.Rank != 2 || resp.TotalRanks != 2 || resp.Percent != 50 {
		t.Errorf("名次不正确: %+v", resp)
	}

	if _, err := svc.StudyGlobalRank(ctx, "study-c", "2026-03"); !errors.Is(err, ErrStudyNotRanked) {
		t.Errorf("当月无记录的小组期望 ErrStudyNotRanked，实际: %v", err)
	}

	resp, err = svc.StudyGlobalRank(ctx, "study-c", "2026-04")
	if err != nil || resp.Rank != 1 {
		t.Errorf("四月 study-c 应排第 1，实际 resp=%+v err=%v", resp, err)
	}
}

func TestStudyGlobalRank_DefaultMonthUsesDeploymentZone(t *testing.T) {
	// 2026-03-31 20:00 UTC 在 UTC+8 已是 4 月 1 日
	svc, mocks, _ := setupTestReportService(time.Date(2026, 3, 31, 20, 0, 0, 0, time.UTC))
	seedRankingData(mocks)

	resp, err := svc.StudyGlobalRank(context.Background(), "study-c", "")
	if err != nil {
		t.Fatalf("StudyGlobalRank 应成功: %v", err)
	}
	if resp.Month != "2026-04" {
		t.Errorf("期望默认月份 2026-04，实际=%s", resp.Month)
	}
}

// ── 端到端：签到后统计立即可见 ──

func TestCheckInThenReports(t *testing.T) {
	now := at(2026, 3, 10, 20, 0)
	repo, mocks := newMockRepos()
	cache := newMockCache()
	window := NewCheckInWindow(testLoc, 5*time.Minute)

	checkIn := NewAttendanceService(repo, window, cache, zap.NewNop()).(*attendanceService)
	checkIn.now = func() time.Time { return now }
	report := NewAttendanceReportService(repo, window, cache, time.Minute, zap.NewNop()).(*attendanceReportService)
	report.now = func() time.Time { return now }

	mocks.study.add(&model.Study{StudyID: testStudyID, Title: "算法"})
	mocks.schedule.add(&model.Schedule{
		ScheduleID: testSchedID, StudyID: testStudyID, CreatedBy: testHostID, Title: "周会",
		StartDate: day(2026, 3, 10), StartTime: "19:00", EndTime: "21:00",
	})
	ctx := context.Background()

	// 先查一次排行，使缓存生效
	if resp, _ := report.MonthlyRanking(ctx, "2026-03"); len(resp.Rankings) != 0 {
		t.Fatalf("签到前排行应为空")
	}

	if _, err := checkIn.CheckIn(ctx, checkInReq("late"), testHostID); err != nil {
		t.Fatalf("CheckIn 应成功: %v", err)
	}

	user, _ := report.UserAttendance(ctx, testMemberID)
	if user.Total != 1 || user.Percent != 50 {
		t.Errorf("个人统计不正确: %+v", user)
	}
	rank, err := report.StudyGlobalRank(ctx, testStudyID, "2026-03")
	if err != nil || rank.Rank != 1 {
		t.Errorf("签到后应立即出现在排行中: resp=%+v err=%v", rank, err)
	}
}

func TestCheckInThreeMembersThenStudyAttendance(t *testing.T) {
	now := at(2026, 3, 10, 20, 0)
	repo, mocks := newMockRepos()
	checkIn := NewAttendanceService(repo, NewCheckInWindow(testLoc, 5*time.Minute), nil, zap.NewNop()).(*attendanceService)
	checkIn.now = func() time.Time { return now }
	report := NewAttendanceReportService(repo, NewCheckInWindow(testLoc, 5*time.Minute), nil, 0, zap.NewNop())

	mocks.schedule.add(&model.Schedule{
		ScheduleID: testSchedID, StudyID: testStudyID, CreatedBy: testHostID, Title: "周会",
		StartDate: day(2026, 3, 10), StartTime: "19:00", EndTime: "21:00",
	})
	ctx := context.Background()

	checks := []struct {
		userID string
		status string
	}{
		{"55555555-5555-5555-5555-555555555551", "present"},
		{"55555555-5555-5555-5555-555555555552", "late"},
		{"55555555-5555-5555-5555-555555555553", "absent"},
	}
	for _, c := range checks {
		req := &dto.CheckInRequest{ScheduleID: testSchedID, UserID: c.userID, Status: c.status}
		if _, err := checkIn.CheckIn(ctx, req, testHostID); err != nil {
			t.Fatalf("CheckIn(%s) 应成功: %v", c.status, err)
		}
	}

	resp, err := report.StudyAttendance(ctx, testStudyID)
	if err != nil {
		t.Fatalf("StudyAttendance 应成功: %v", err)
	}
	if resp.Total != 3 {
		t.Errorf("期望 total=3，实际=%d", resp.Total)
	}
	want := model.AttendanceSummary{Present: 1, Late: 1, Absent: 1}
	if resp.Summary != want {
		t.Errorf("期望 summary=%+v，实际=%+v", want, resp.Summary)
	}
	if resp.Percent != 50 {
		t.Errorf("期望 percent=50，实际=%v", resp.Percent)
	}
	if len(resp.Members) != 3 {
		t.Errorf("期望 3 名成员，实际=%d", len(resp.Members))
	}
}
