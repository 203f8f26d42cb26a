package store

import (
	"time"

	"leave/model/entity"
)

// Async 每个切片共用的异步状态，同一切片上并发的请求全部结束后 Loading 才落下
type Async struct {
	Loading bool   `json:"loading"`
	Error   string `json:"error,omitempty"`

	inflight int
}

func (a *Async) pending() {
	a.inflight++
	a.Loading = true
	a.Error = ""
}

func (a *Async) settle() {
	if a.inflight > 0 {
		a.inflight--
	}
	a.Loading = a.inflight > 0
}

func (a *Async) fulfilled() {
	a.settle()
}

func (a *Async) rejected(msg string) {
	a.settle()
	a.Error = msg
}

type LeaveSlice struct {
	Async
	Requests []entity.LeaveRequest `json:"leaveRequests"`
	Balance  entity.LeaveBalance   `json:"leaveBalance"`
	History  []entity.LeaveRequest `json:"leaveHistory"`
	Pending  []entity.LeaveRequest `json:"pendingRequests"`
	Current  *entity.LeaveRequest  `json:"currentRequest"`
}

type TeamSlice struct {
	Async
	Members []entity.TeamMember `json:"teamMembers"`
}

type DepartmentSlice struct {
	Async
	Departments []entity.Department `json:"departments"`
	Selected    *entity.Department  `json:"selectedDepartment"`
}

type LeaveTypeSlice struct {
	Async
	LeaveTypes []entity.LeaveType `json:"leaveTypes"`
	Selected   *entity.LeaveType  `json:"selectedLeaveType"`
}

type UserSlice struct {
	Async
	Profile *entity.User `json:"userProfile"`
}

type Modal struct {
	IsOpen bool        `json:"isOpen"`
	Type   string      `json:"type,omitempty"`
	Data   interface{} `json:"data,omitempty"`
}

const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

const (
	ToastSuccess = "success"
	ToastError   = "error"
	ToastInfo    = "info"
)

type Toast struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

type UISlice struct {
	Loading     bool    `json:"loading"`
	Error       string  `json:"error,omitempty"`
	Success     string  `json:"success,omitempty"`
	Modal       Modal   `json:"modal"`
	Theme       string  `json:"theme"`
	SidebarOpen bool    `json:"sidebarOpen"`
	Toasts      []Toast `json:"toasts"`

	busy int
}

func (u *UISlice) begin() {
	u.busy++
	u.Loading = true
}

func (u *UISlice) end() {
	if u.busy > 0 {
		u.busy--
	}
	u.Loading = u.busy > 0
}

// State 一个浏览器客户端的全部状态
type State struct {
	Leave       LeaveSlice      `json:"leave"`
	Team        TeamSlice       `json:"team"`
	Departments DepartmentSlice `json:"departments"`
	LeaveTypes  LeaveTypeSlice  `json:"leaveTypes"`
	User        UserSlice       `json:"user"`
	UI          UISlice         `json:"ui"`
}

func initialState() State {
	return State{
		Leave: LeaveSlice{
			Requests: []entity.LeaveRequest{},
			Balance:  entity.DefaultLeaveBalance(),
			History:  []entity.LeaveRequest{},
			Pending:  []entity.LeaveRequest{},
		},
		Team:        TeamSlice{Members: []entity.TeamMember{}},
		Departments: DepartmentSlice{Departments: []entity.Department{}},
		LeaveTypes:  LeaveTypeSlice{LeaveTypes: []entity.LeaveType{}},
		UI:          UISlice{Theme: ThemeLight, SidebarOpen: true, Toasts: []Toast{}},
	}
}
