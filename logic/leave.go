package logic

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"leave/model/entity"
	"leave/model/params"
	"leave/model/store"
	"leave/services"

	"go.uber.org/zap"
)

// FetchHistory 当前用户的请假记录写入 leave.History
func FetchHistory(ctx context.Context, s *Session) ([]entity.LeaveRequest, error) {
	return store.Run(s.Store, leaveAsync, func() ([]entity.LeaveRequest, error) {
		return s.Leave.MyLeaveRequests(ctx)
	}, func(st *store.State, v []entity.LeaveRequest) {
		if v == nil {
			v = []entity.LeaveRequest{}
		}
		st.Leave.History = v
	}, message)
}

func FetchRequests(ctx context.Context, s *Session) ([]entity.LeaveRequest, error) {
	return store.Run(s.Store, leaveAsync, func() ([]entity.LeaveRequest, error) {
		return s.Leave.ListLeaveRequests(ctx)
	}, func(st *store.State, v []entity.LeaveRequest) {
		if v == nil {
			v = []entity.LeaveRequest{}
		}
		st.Leave.Requests = v
	}, message)
}

func FetchBalance(ctx context.Context, s *Session) (entity.LeaveBalance, error) {
	return store.Run(s.Store, leaveAsync, func() (entity.LeaveBalance, error) {
		return s.Leave.Balances(ctx)
	}, func(st *store.State, v entity.LeaveBalance) { st.Leave.Balance = v }, message)
}

func FetchTeam(ctx context.Context, s *Session) ([]entity.TeamMember, error) {
	return store.Run(s.Store, teamAsync, func() ([]entity.TeamMember, error) {
		return s.Leave.TeamMembers(ctx)
	}, func(st *store.State, v []entity.TeamMember) {
		if v == nil {
			v = []entity.TeamMember{}
		}
		st.Team.Members = v
	}, message)
}

type DashboardStats struct {
	TotalLeaves    int `json:"totalLeaves"`
	PendingLeaves  int `json:"pendingLeaves"`
	ApprovedLeaves int `json:"approvedLeaves"`
	RejectedLeaves int `json:"rejectedLeaves"`
}

// RecentLeave 首页最近的请假，type 是审批状态
type RecentLeave struct {
	ID           entity.ID `json:"id"`
	Type         string    `json:"type"`
	LeaveType    string    `json:"leaveType"`
	StartDate    string    `json:"startDate"`
	EndDate      string    `json:"endDate"`
	NumberOfDays float64   `json:"numberOfDays"`
}

type Dashboard struct {
	Stats            DashboardStats      `json:"stats"`
	Recent           []RecentLeave       `json:"recentLeaveRequests"`
	Balance          entity.LeaveBalance `json:"leaveBalance"`
	TeammatesOnLeave []entity.TeamMember `json:"teammatesOnLeave"`
	Holidays         []Holiday           `json:"upcomingHolidays"`
}

func Stats(list []entity.LeaveRequest) DashboardStats {
	st := DashboardStats{TotalLeaves: len(list)}
	for _, l := range list {
		switch l.Status {
		case entity.StatusPending:
			st.PendingLeaves++
		case entity.StatusApproved:
			st.ApprovedLeaves++
		case entity.StatusRejected:
			st.RejectedLeaves++
		}
	}
	return st
}

// RecentLeaves 按创建时间倒序取前 n 条
func RecentLeaves(list []entity.LeaveRequest, n int) []RecentLeave {
	sorted := append([]entity.LeaveRequest(nil), list...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt.Time)
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	out := make([]RecentLeave, 0, len(sorted))
	for _, l := range sorted {
		out = append(out, RecentLeave{
			ID:           l.ID,
			Type:         l.Status,
			LeaveType:    l.LeaveType.Name,
			StartDate:    l.StartDate.Day(),
			EndDate:      l.EndDate.Day(),
			NumberOfDays: l.NumberOfDays,
		})
	}
	return out
}

func OnLeave(members []entity.TeamMember) []entity.TeamMember {
	out := make([]entity.TeamMember, 0)
	for _, m := range members {
		if m.OnLeave {
			out = append(out, m)
		}
	}
	return out
}

// LoadDashboard 三个请求并发，失败的各自提示，其余照常展示
func LoadDashboard(ctx context.Context, s *Session, holidays *HolidayCalendar, now time.Time) *Dashboard {
	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		if _, err := FetchHistory(ctx, s); err != nil {
			s.fail(err, "Failed to fetch leave requests")
		}
	}()
	go func() {
		defer wg.Done()
		if _, err := FetchBalance(ctx, s); err != nil {
			s.fail(err, "Failed to fetch leave balance")
		}
	}()
	go func() {
		defer wg.Done()
		if _, err := FetchTeam(ctx, s); err != nil {
			s.fail(err, "Failed to fetch team members")
		}
	}()
	wg.Wait()

	snap := s.Store.Snapshot()
	d := &Dashboard{
		Stats:            Stats(snap.Leave.History),
		Recent:           RecentLeaves(snap.Leave.History, 3),
		Balance:          snap.Leave.Balance,
		TeammatesOnLeave: OnLeave(snap.Team.Members),
		Holidays:         []Holiday{},
	}
	if holidays != nil {
		d.Holidays = holidays.Upcoming(now)
	}
	return d
}

// FilterHistory status/type 为空或 all 时不过滤
func FilterHistory(list []entity.LeaveRequest, f params.ParamLeaveFilter) []entity.LeaveRequest {
	typ := strings.ToLower(f.Type)
	q := strings.ToLower(f.Search)
	out := make([]entity.LeaveRequest, 0, len(list))
	for _, l := range list {
		if f.Status != "" && f.Status != "all" && l.Status != f.Status {
			continue
		}
		name := strings.ToLower(l.LeaveType.Name)
		if typ != "" && typ != "all" && !strings.Contains(name, typ) {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(l.Reason), q) && !strings.Contains(name, q) {
			continue
		}
		out = append(out, l)
	}
	return out
}

// ServerHistory /leave/history 按 status/type 查询，结果不覆盖本地的请假记录
func ServerHistory(ctx context.Context, s *Session, f params.ParamLeaveFilter) ([]entity.LeaveRequest, error) {
	query := url.Values{}
	if f.Status != "" && f.Status != "all" {
		query.Set("status", f.Status)
	}
	if f.Type != "" && f.Type != "all" {
		query.Set("type", f.Type)
	}
	return store.Run(s.Store, leaveAsync, func() ([]entity.LeaveRequest, error) {
		return s.Leave.LeaveHistory(ctx, query)
	}, nil, message)
}

// History 本地没有数据或者要求刷新时才去后端拉取
func History(ctx context.Context, s *Session, f params.ParamLeaveFilter) ([]entity.LeaveRequest, error) {
	if f.Server {
		list, err := ServerHistory(ctx, s, f)
		if err != nil {
			return nil, s.fail(err, "Failed to fetch leave history")
		}
		return FilterHistory(list, params.ParamLeaveFilter{Search: f.Search}), nil
	}
	var list []entity.LeaveRequest
	s.Store.View(func(st *store.State) { list = append(list, st.Leave.History...) })
	if len(list) == 0 || f.Refresh {
		fetched, err := FetchHistory(ctx, s)
		if err != nil {
			return nil, s.fail(err, "Failed to fetch leave requests")
		}
		list = fetched
	}
	return FilterHistory(list, f), nil
}

// ApplyResult 提交成功后跳到请假记录
type ApplyResult struct {
	Request *entity.LeaveRequest `json:"request"`
	Next    string               `json:"next"`
}

func ApplyLeave(ctx context.Context, s *Session, p *params.ParamApplyLeave, docs []services.Document) (*ApplyResult, error) {
	created, err := store.Run(s.Store, leaveAsync, func() (*entity.LeaveRequest, error) {
		return s.Leave.CreateLeaveRequest(ctx, *p, docs)
	}, func(st *store.State, v *entity.LeaveRequest) {
		st.Leave.Requests = append(st.Leave.Requests, *v)
		st.Leave.History = append(st.Leave.History, *v)
		st.Leave.Current = v
	}, message)
	if err != nil {
		return nil, s.fail(err, "Failed to submit leave request")
	}
	s.Store.ToastSuccess("Leave request submitted successfully!")
	who := "Someone"
	if u := s.Creds.User(ctx); u != nil && u.FullName() != "" {
		who = u.FullName()
	}
	s.announce(fmt.Sprintf("%s applied for %s leave from %s to %s", who, p.LeaveType, p.StartDate, p.EndDate))
	return &ApplyResult{Request: created, Next: PathHistory}, nil
}

func GetLeave(ctx context.Context, s *Session, id entity.ID) (*entity.LeaveRequest, error) {
	got, err := store.Run(s.Store, leaveAsync, func() (*entity.LeaveRequest, error) {
		return s.Leave.GetLeaveRequest(ctx, id)
	}, func(st *store.State, v *entity.LeaveRequest) { st.Leave.Current = v }, message)
	if err != nil {
		return nil, s.fail(err, "Failed to fetch leave request")
	}
	return got, nil
}

func UpdateLeave(ctx context.Context, s *Session, id entity.ID, p *params.ParamUpdateLeave) (*entity.LeaveRequest, error) {
	updated, err := store.Run(s.Store, leaveAsync, func() (*entity.LeaveRequest, error) {
		return s.Leave.UpdateLeaveRequest(ctx, id, *p)
	}, func(st *store.State, v *entity.LeaveRequest) {
		if v.ID == "" {
			v.ID = id
		}
		st.Leave.Requests = store.Replace(st.Leave.Requests, *v, store.RequestID)
		st.Leave.History = store.Replace(st.Leave.History, *v, store.RequestID)
		st.Leave.Current = v
	}, message)
	if err != nil {
		return nil, s.fail(err, "Failed to update leave request")
	}
	s.Store.ToastSuccess("Leave request updated successfully")
	return updated, nil
}

func CancelLeave(ctx context.Context, s *Session, id entity.ID) error {
	_, err := store.Run(s.Store, leaveAsync, func() (struct{}, error) {
		return struct{}{}, s.Leave.CancelLeaveRequest(ctx, id)
	}, func(st *store.State, _ struct{}) {
		st.Leave.Requests = store.Without(st.Leave.Requests, id, store.RequestID)
		st.Leave.History = store.Without(st.Leave.History, id, store.RequestID)
		st.Leave.Pending = store.Without(st.Leave.Pending, id, store.RequestID)
		if st.Leave.Current != nil && st.Leave.Current.ID == id {
			st.Leave.Current = nil
		}
	}, message)
	if err != nil {
		return s.fail(err, "Failed to cancel leave request")
	}
	s.Store.ToastSuccess("Leave request cancelled")
	return nil
}

type CalendarStats struct {
	TotalTeamMembers int `json:"totalTeamMembers"`
	CurrentlyOnLeave int `json:"currentlyOnLeave"`
	TotalLeaves      int `json:"totalLeaves"`
	UpcomingLeaves   int `json:"upcomingLeaves"`
}

// CalendarMember 休假成员带上返岗日期（结束日期的第二天）
type CalendarMember struct {
	entity.TeamMember
	ReturnDate string `json:"returnDate,omitempty"`
}

type Calendar struct {
	Stats       CalendarStats    `json:"stats"`
	Members     []CalendarMember `json:"members"`
	Departments []string         `json:"departments"`
}

func ReturnDate(end entity.Date) string {
	if end.IsZero() {
		return ""
	}
	return end.AddDate(0, 0, 1).Format("2006-01-02")
}

// UpcomingCount 开始日期在 (now, now+7d] 之间的请假
func UpcomingCount(list []entity.LeaveRequest, now time.Time) int {
	limit := now.AddDate(0, 0, 7)
	n := 0
	for _, l := range list {
		if l.StartDate.After(now) && !l.StartDate.After(limit) {
			n++
		}
	}
	return n
}

func BuildCalendar(members []entity.TeamMember, history []entity.LeaveRequest, department string, now time.Time) *Calendar {
	cal := &Calendar{
		Stats: CalendarStats{
			TotalTeamMembers: len(members),
			CurrentlyOnLeave: len(OnLeave(members)),
			TotalLeaves:      len(history),
			UpcomingLeaves:   UpcomingCount(history, now),
		},
		Members:     make([]CalendarMember, 0, len(members)),
		Departments: distinct(members, func(m entity.TeamMember) string { return m.Department }),
	}
	dept := strings.ToLower(department)
	for _, m := range members {
		if dept != "" && dept != "all" && strings.ToLower(m.Department) != dept {
			continue
		}
		cm := CalendarMember{TeamMember: m}
		if m.OnLeave && m.LeaveDetails != nil {
			cm.ReturnDate = ReturnDate(m.LeaveDetails.EndDate)
		}
		cal.Members = append(cal.Members, cm)
	}
	return cal
}

// TeamCalendar 团队成员每次都重新拉取，请假记录为空时补拉一次
func TeamCalendar(ctx context.Context, s *Session, department string, now time.Time) (*Calendar, error) {
	members, err := FetchTeam(ctx, s)
	if err != nil {
		return nil, s.fail(err, "Failed to fetch team members")
	}
	var history []entity.LeaveRequest
	s.Store.View(func(st *store.State) { history = append(history, st.Leave.History...) })
	if len(history) == 0 {
		if fetched, err := FetchHistory(ctx, s); err != nil {
			zap.L().Warn("calendar could not load leave history", zap.Error(err))
		} else {
			history = fetched
		}
	}
	return BuildCalendar(members, history, department, now), nil
}

// distinct 去重并保持首次出现的顺序，忽略空值
func distinct[T any](list []T, key func(T) string) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, v := range list {
		k := key(v)
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}
