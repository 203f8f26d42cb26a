package store

import (
	"sync"
	"time"

	"leave/model/entity"
)

// Store 单个客户端的状态，读写都要经过锁
type Store struct {
	mu      sync.RWMutex
	state   State
	toastID int64
	seen    time.Time
}

func New() *Store {
	return &Store{state: initialState(), seen: time.Now()}
}

// Update 在写锁内修改状态
func (s *Store) Update(fn func(st *State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.state)
}

// View 在读锁内读取状态，fn 里不要保留切片引用
func (s *Store) View(fn func(st *State)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(&s.state)
}

// Snapshot 整体拷贝一份，切片做浅拷贝
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cp := s.state
	cp.Leave.Requests = append([]entity.LeaveRequest(nil), s.state.Leave.Requests...)
	cp.Leave.History = append([]entity.LeaveRequest(nil), s.state.Leave.History...)
	cp.Leave.Pending = append([]entity.LeaveRequest(nil), s.state.Leave.Pending...)
	cp.Team.Members = append([]entity.TeamMember(nil), s.state.Team.Members...)
	cp.Departments.Departments = append([]entity.Department(nil), s.state.Departments.Departments...)
	cp.LeaveTypes.LeaveTypes = append([]entity.LeaveType(nil), s.state.LeaveTypes.LeaveTypes...)
	cp.UI.Toasts = append([]Toast(nil), s.state.UI.Toasts...)
	balance := make(entity.LeaveBalance, len(s.state.Leave.Balance))
	for k, v := range s.state.Leave.Balance {
		balance[k] = v
	}
	cp.Leave.Balance = balance
	return cp
}

// Reset 退出登录时回到初始状态，主题和侧边栏保留
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	theme, sidebar := s.state.UI.Theme, s.state.UI.SidebarOpen
	s.state = initialState()
	s.state.UI.Theme, s.state.UI.SidebarOpen = theme, sidebar
}

func (s *Store) Toast(kind, msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.toastID++
	s.state.UI.Toasts = append(s.state.UI.Toasts, Toast{
		ID:        s.toastID,
		Type:      kind,
		Message:   msg,
		CreatedAt: time.Now(),
	})
}

func (s *Store) ToastError(msg string) { s.Toast(ToastError, msg) }
func (s *Store) ToastSuccess(msg string) { s.Toast(ToastSuccess, msg) }

// DrainToasts 取出并清空待展示的提示
func (s *Store) DrainToasts() []Toast {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.state.UI.Toasts
	s.state.UI.Toasts = []Toast{}
	if out == nil {
		out = []Toast{}
	}
	return out
}

func (s *Store) ToggleTheme() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.UI.Theme == ThemeLight {
		s.state.UI.Theme = ThemeDark
	} else {
		s.state.UI.Theme = ThemeLight
	}
	return s.state.UI.Theme
}

func (s *Store) ToggleSidebar() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.UI.SidebarOpen = !s.state.UI.SidebarOpen
	return s.state.UI.SidebarOpen
}

func (s *Store) touch(now time.Time) {
	s.mu.Lock()
	s.seen = now
	s.mu.Unlock()
}

func (s *Store) lastSeen() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.seen
}

// Run 按 pending -> fulfilled/rejected 执行一次异步操作
// slice 选出状态所在的切片，apply 在成功时写入结果
func Run[T any](s *Store, slice func(st *State) *Async, call func() (T, error), apply func(st *State, v T), message func(error) string) (T, error) {
	s.Update(func(st *State) {
		slice(st).pending()
		st.UI.begin()
	})
	v, err := call()
	s.Update(func(st *State) {
		st.UI.end()
		if err != nil {
			slice(st).rejected(message(err))
			return
		}
		if apply != nil {
			apply(st, v)
		}
		slice(st).fulfilled()
	})
	return v, err
}

// 列表的增改删，都按 id 匹配

func Upsert[T any](list []T, item T, id func(T) entity.ID) []T {
	for i := range list {
		if id(list[i]) == id(item) {
			list[i] = item
			return list
		}
	}
	return append(list, item)
}

func Replace[T any](list []T, item T, id func(T) entity.ID) []T {
	for i := range list {
		if id(list[i]) == id(item) {
			list[i] = item
		}
	}
	return list
}

func Without[T any](list []T, target entity.ID, id func(T) entity.ID) []T {
	out := make([]T, 0, len(list))
	for _, v := range list {
		if id(v) != target {
			out = append(out, v)
		}
	}
	return out
}

func RequestID(r entity.LeaveRequest) entity.ID { return r.ID }
func DepartmentID(d entity.Department) entity.ID { return d.ID }
func LeaveTypeID(t entity.LeaveType) entity.ID { return t.ID }
