package store

import (
	"errors"
	"testing"
	"time"

	"leave/model/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func leaveSlice(st *State) *Async { return &st.Leave.Async }

func TestInitialState(t *testing.T) {
	st := New().Snapshot()
	assert.Equal(t, entity.LeaveBalance{"annual": 0, "sick": 0, "casual": 0}, st.Leave.Balance)
	assert.Equal(t, ThemeLight, st.UI.Theme)
	assert.True(t, st.UI.SidebarOpen)
	assert.Empty(t, st.Leave.History)
}

func TestRun_FulfilledAndRejected(t *testing.T) {
	s := New()
	got, err := Run(s, leaveSlice, func() ([]entity.LeaveRequest, error) {
		// pending 阶段
		s.View(func(st *State) {
			assert.True(t, st.Leave.Loading)
			assert.Empty(t, st.Leave.Error)
		})
		return []entity.LeaveRequest{{ID: "1"}}, nil
	}, func(st *State, v []entity.LeaveRequest) { st.Leave.History = v }, func(err error) string { return err.Error() })
	require.NoError(t, err)
	assert.Len(t, got, 1)
	st := s.Snapshot()
	assert.False(t, st.Leave.Loading)
	assert.Len(t, st.Leave.History, 1)

	_, err = Run(s, leaveSlice, func() (int, error) { return 0, errors.New("Failed to fetch leave requests") }, nil, func(err error) string { return err.Error() })
	require.Error(t, err)
	st = s.Snapshot()
	assert.False(t, st.Leave.Loading)
	assert.Equal(t, "Failed to fetch leave requests", st.Leave.Error)
	// 失败不清空已有数据
	assert.Len(t, st.Leave.History, 1)
}

func TestRun_OverlappingCallsKeepLoading(t *testing.T) {
	s := New()
	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = Run(s, leaveSlice, func() (int, error) {
			close(started)
			<-release
			return 1, nil
		}, nil, func(err error) string { return err.Error() })
	}()
	<-started

	// 第二个请求先结束，第一个还没回来
	_, err := Run(s, leaveSlice, func() (int, error) { return 2, nil }, nil, func(err error) string { return err.Error() })
	require.NoError(t, err)
	st := s.Snapshot()
	assert.True(t, st.Leave.Loading)
	assert.True(t, st.UI.Loading)

	close(release)
	<-done
	st = s.Snapshot()
	assert.False(t, st.Leave.Loading)
	assert.False(t, st.UI.Loading)
}

func TestListHelpers(t *testing.T) {
	list := []entity.Department{{ID: "a", Name: "A"}, {ID: "b", Name: "B"}}
	list = Upsert(list, entity.Department{ID: "c", Name: "C"}, DepartmentID)
	assert.Len(t, list, 3)
	list = Upsert(list, entity.Department{ID: "a", Name: "A2"}, DepartmentID)
	assert.Len(t, list, 3)
	assert.Equal(t, "A2", list[0].Name)
	list = Replace(list, entity.Department{ID: "zz", Name: "Z"}, DepartmentID)
	assert.Len(t, list, 3)
	list = Without(list, "b", DepartmentID)
	assert.Equal(t, []entity.Department{{ID: "a", Name: "A2"}, {ID: "c", Name: "C"}}, list)
}

func TestToastsAndToggles(t *testing.T) {
	s := New()
	s.ToastError("boom")
	s.ToastSuccess("ok")
	toasts := s.DrainToasts()
	require.Len(t, toasts, 2)
	assert.Equal(t, ToastError, toasts[0].Type)
	assert.Equal(t, "ok", toasts[1].Message)
	assert.Less(t, toasts[0].ID, toasts[1].ID)
	assert.Empty(t, s.DrainToasts())

	assert.Equal(t, ThemeDark, s.ToggleTheme())
	assert.Equal(t, ThemeLight, s.ToggleTheme())
	assert.False(t, s.ToggleSidebar())

	s.ToggleTheme()
	s.Update(func(st *State) { st.Leave.History = []entity.LeaveRequest{{ID: "1"}} })
	s.Reset()
	st := s.Snapshot()
	assert.Empty(t, st.Leave.History)
	assert.Equal(t, ThemeDark, st.UI.Theme)
	assert.False(t, st.UI.SidebarOpen)
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	a := r.Get("a")
	assert.Same(t, a, r.Get("a"))
	r.Get("b")
	assert.Equal(t, 2, r.Len())

	assert.Equal(t, 0, r.Evict(time.Now(), time.Hour))
	assert.Equal(t, 2, r.Evict(time.Now().Add(2*time.Hour), time.Hour))
	assert.Equal(t, 0, r.Len())

	r.Get("c")
	r.Remove("c")
	assert.Equal(t, 0, r.Len())
}

func TestRegistry_Rename(t *testing.T) {
	r := NewRegistry()
	assert.False(t, r.Has("old"))
	old := r.Get("old")
	old.ToggleTheme()
	assert.True(t, r.Has("old"))

	moved := r.Rename("old", "new")
	assert.Same(t, old, moved)
	assert.False(t, r.Has("old"))
	assert.True(t, r.Has("new"))
	assert.Equal(t, ThemeDark, r.Get("new").Snapshot().UI.Theme)
	assert.Equal(t, 1, r.Len())

	assert.NotNil(t, r.Rename("missing", "fresh"))
	assert.True(t, r.Has("fresh"))
}
