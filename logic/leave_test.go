package logic

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"leave/model/entity"
	"leave/model/params"
	"leave/model/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const historyJSON = `[
	{"_id":"a","leaveType":{"name":"Annual"},"status":"approved","reason":"Family trip","startDate":"2025-04-01","endDate":"2025-04-03","createdAt":"2025-03-01T10:00:00Z"},
	{"_id":"b","leaveType":"Sick","status":"pending","reason":"Flu","startDate":"2025-05-01","endDate":"2025-05-02","createdAt":"2025-04-20T10:00:00Z"},
	{"_id":"c","leaveType":{"name":"Casual"},"status":"rejected","reason":"Errands","startDate":"2025-06-01","endDate":"2025-06-01","createdAt":"2025-05-10T10:00:00Z"},
	{"_id":"d","leaveType":{"name":"Annual"},"status":"pending","reason":"Wedding","startDate":"2025-07-01","endDate":"2025-07-05","createdAt":"2025-06-01T10:00:00Z"}
]`

func decodeHistory(t *testing.T) []entity.LeaveRequest {
	t.Helper()
	f := newFakeBackend(t)
	f.reply("GET /leave-api/requests/my-requests", http.StatusOK, historyJSON)
	list, err := FetchHistory(context.Background(), f.session(nil))
	require.NoError(t, err)
	return list
}

func TestStats(t *testing.T) {
	st := Stats(decodeHistory(t))
	assert.Equal(t, DashboardStats{TotalLeaves: 4, PendingLeaves: 2, ApprovedLeaves: 1, RejectedLeaves: 1}, st)
}

func TestRecentLeaves(t *testing.T) {
	recent := RecentLeaves(decodeHistory(t), 3)
	require.Len(t, recent, 3)
	assert.Equal(t, entity.ID("d"), recent[0].ID)
	assert.Equal(t, entity.ID("c"), recent[1].ID)
	assert.Equal(t, entity.ID("b"), recent[2].ID)
	assert.Equal(t, "pending", recent[0].Type)
	assert.Equal(t, "Annual", recent[0].LeaveType)
}

func TestFilterHistory(t *testing.T) {
	list := decodeHistory(t)
	tests := []struct {
		name   string
		filter params.ParamLeaveFilter
		want   []entity.ID
	}{
		{"all", params.ParamLeaveFilter{Status: "all", Type: "all"}, []entity.ID{"a", "b", "c", "d"}},
		{"status", params.ParamLeaveFilter{Status: "pending"}, []entity.ID{"b", "d"}},
		{"type substring", params.ParamLeaveFilter{Type: "ANN"}, []entity.ID{"a", "d"}},
		{"search reason", params.ParamLeaveFilter{Search: "flu"}, []entity.ID{"b"}},
		{"search type", params.ParamLeaveFilter{Search: "casual"}, []entity.ID{"c"}},
		{"combined", params.ParamLeaveFilter{Status: "approved", Type: "annual", Search: "trip"}, []entity.ID{"a"}},
		{"none", params.ParamLeaveFilter{Status: "approved", Type: "sick"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []entity.ID
			for _, l := range FilterHistory(list, tt.filter) {
				got = append(got, l.ID)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHistory_FetchesOnce(t *testing.T) {
	f := newFakeBackend(t)
	f.reply("GET /leave-api/requests/my-requests", http.StatusOK, historyJSON)
	s := f.session(nil)
	ctx := context.Background()

	_, err := History(ctx, s, params.ParamLeaveFilter{})
	require.NoError(t, err)
	list, err := History(ctx, s, params.ParamLeaveFilter{Status: "pending"})
	require.NoError(t, err)
	assert.Len(t, list, 2)
	assert.Equal(t, 1, f.count("GET /leave-api/requests/my-requests"))

	_, err = History(ctx, s, params.ParamLeaveFilter{Refresh: true})
	require.NoError(t, err)
	assert.Equal(t, 2, f.count("GET /leave-api/requests/my-requests"))
}

func TestHistory_ServerFilter(t *testing.T) {
	f := newFakeBackend(t)
	queries := make(chan string, 1)
	f.handle("GET /leave-api/leave/history", func(w http.ResponseWriter, r *http.Request) {
		queries <- r.URL.RawQuery
		_, _ = io.WriteString(w, `[{"_id":"b","leaveType":"Sick","status":"pending","reason":"Flu"},{"_id":"x","leaveType":"Sick","status":"pending","reason":"Dentist"}]`)
	})
	s := f.session(nil)

	list, err := History(context.Background(), s, params.ParamLeaveFilter{Server: true, Status: "pending", Type: "all", Search: "flu"})
	require.NoError(t, err)
	assert.Equal(t, "status=pending", <-queries)
	require.Len(t, list, 1)
	assert.Equal(t, entity.ID("b"), list[0].ID)
	assert.Zero(t, f.count("GET /leave-api/requests/my-requests"))
	assert.Empty(t, s.Store.Snapshot().Leave.History)
}

func TestLoadDashboard_PartialFailure(t *testing.T) {
	f := newFakeBackend(t)
	f.reply("GET /leave-api/requests/my-requests", http.StatusOK, historyJSON)
	f.reply("GET /leave-api/balances/all", http.StatusInternalServerError, `{}`)
	f.reply("GET /leave-api/teams/members", http.StatusOK,
		`[{"id":1,"firstName":"Bo","onLeave":true},{"id":2,"firstName":"Cy","onLeave":false}]`)
	s := f.session(nil)
	now := time.Date(2025, time.June, 20, 9, 0, 0, 0, time.UTC)

	d := LoadDashboard(context.Background(), s, NewHolidayCalendar("RW"), now)
	assert.Equal(t, 4, d.Stats.TotalLeaves)
	assert.Len(t, d.Recent, 3)
	assert.Equal(t, entity.DefaultLeaveBalance(), d.Balance)
	require.Len(t, d.TeammatesOnLeave, 1)
	assert.Equal(t, "Bo", d.TeammatesOnLeave[0].FirstName)
	require.Len(t, d.Holidays, 3)
	assert.Equal(t, "2025-07-01", d.Holidays[0].Date)
	assert.Equal(t, []string{"Failed to fetch leave balance"}, toastMessages(s, store.ToastError))
}

func TestApplyLeave(t *testing.T) {
	f := newFakeBackend(t)
	f.handle("POST /leave-api/requests", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "Annual", r.FormValue("leaveType"))
		assert.Equal(t, "2025-08-04", r.FormValue("startDate"))
		_, _ = io.WriteString(w, `{"data":{"_id":"n1","status":"pending","leaveType":"Annual"}}`)
	})
	n := &recordNotifier{}
	s := f.session(n)
	signIn(t, s, "tok", `{"id":3,"firstName":"Ann","lastName":"Lee"}`)

	res, err := ApplyLeave(context.Background(), s, &params.ParamApplyLeave{
		StartDate: "2025-08-04", EndDate: "2025-08-06", LeaveType: "Annual", Reason: "Holiday",
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, PathHistory, res.Next)
	assert.Equal(t, entity.ID("n1"), res.Request.ID)

	snap := s.Store.Snapshot()
	assert.Len(t, snap.Leave.History, 1)
	assert.Len(t, snap.Leave.Requests, 1)
	assert.False(t, snap.Leave.Loading)
	texts := n.wait(t, 1)
	require.Len(t, texts, 1)
	assert.True(t, strings.HasPrefix(texts[0], "Ann Lee applied for Annual leave"))
}

func TestApplyLeave_Failure(t *testing.T) {
	f := newFakeBackend(t)
	f.reply("POST /leave-api/requests", http.StatusBadRequest, `{"message":"Insufficient balance"}`)
	n := &recordNotifier{}
	s := f.session(n)

	_, err := ApplyLeave(context.Background(), s, &params.ParamApplyLeave{StartDate: "2025-08-04", EndDate: "2025-08-04", LeaveType: "Annual"}, nil)
	require.Error(t, err)
	assert.Equal(t, "Insufficient balance", s.Store.Snapshot().Leave.Error)
	assert.Empty(t, n.texts)
}

func TestUpdateAndCancelLeave(t *testing.T) {
	f := newFakeBackend(t)
	f.reply("GET /leave-api/requests/my-requests", http.StatusOK, historyJSON)
	f.reply("PUT /leave-api/requests/b", http.StatusOK, `{"_id":"b","status":"pending","reason":"Fever"}`)
	f.reply("DELETE /leave-api/requests/c", http.StatusOK, `{}`)
	s := f.session(nil)
	ctx := context.Background()
	_, err := FetchHistory(ctx, s)
	require.NoError(t, err)

	updated, err := UpdateLeave(ctx, s, "b", &params.ParamUpdateLeave{Reason: "Fever"})
	require.NoError(t, err)
	assert.Equal(t, "Fever", updated.Reason)
	require.NoError(t, CancelLeave(ctx, s, "c"))

	snap := s.Store.Snapshot()
	require.Len(t, snap.Leave.History, 3)
	for _, l := range snap.Leave.History {
		assert.NotEqual(t, entity.ID("c"), l.ID)
		if l.ID == "b" {
			assert.Equal(t, "Fever", l.Reason)
		}
	}
}

func TestBuildCalendar(t *testing.T) {
	end, err := entity.ParseDate("2025-06-22")
	require.NoError(t, err)
	members := []entity.TeamMember{
		{User: entity.User{ID: "1", Department: "Engineering"}, OnLeave: true, LeaveDetails: &entity.LeaveDetails{EndDate: end}},
		{User: entity.User{ID: "2", Department: "Design"}},
		{User: entity.User{ID: "3", Department: "Engineering"}},
	}
	history := decodeHistory(t)
	now := time.Date(2025, time.June, 26, 0, 0, 0, 0, time.UTC)

	cal := BuildCalendar(members, history, "engineering", now)
	assert.Equal(t, CalendarStats{TotalTeamMembers: 3, CurrentlyOnLeave: 1, TotalLeaves: 4, UpcomingLeaves: 1}, cal.Stats)
	require.Len(t, cal.Members, 2)
	assert.Equal(t, "2025-06-23", cal.Members[0].ReturnDate)
	assert.Empty(t, cal.Members[1].ReturnDate)
	assert.Equal(t, []string{"Engineering", "Design"}, cal.Departments)

	assert.Len(t, BuildCalendar(members, history, "all", now).Members, 3)
}

func TestUpcomingCount_Boundaries(t *testing.T) {
	now := time.Date(2025, time.June, 24, 0, 0, 0, 0, time.UTC)
	mk := func(day string) entity.LeaveRequest {
		d, _ := entity.ParseDate(day)
		return entity.LeaveRequest{StartDate: d}
	}
	list := []entity.LeaveRequest{mk("2025-06-24"), mk("2025-06-25"), mk("2025-07-01"), mk("2025-07-02")}
	// 当天不算，正好第 7 天算
	assert.Equal(t, 2, UpcomingCount(list, now))
}
