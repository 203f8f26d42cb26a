package logic

import (
	"context"
	"fmt"
	"sort"

	"leave/global"
	"leave/model/entity"
	"leave/model/store"

	"github.com/pkg/errors"
)

// CanApprove 只有经理可以审批
func CanApprove(u *entity.User) bool {
	return u != nil && u.Role == entity.RoleManager
}

type DepartmentSummary struct {
	Department      string `json:"department"`
	TotalEmployees  int    `json:"totalEmployees"`
	OnLeave         int    `json:"onLeave"`
	PendingRequests int    `json:"pendingRequests"`
}

type Approvals struct {
	Summary []DepartmentSummary   `json:"departmentSummary"`
	Pending []entity.LeaveRequest `json:"pendingRequests"`
	CanAct  bool                  `json:"canApprove"`
}

// Summarize 按部门统计人数、休假人数，待审批数按申请人所在部门累加
func Summarize(members []entity.TeamMember, pending []entity.LeaveRequest) []DepartmentSummary {
	byDept := make(map[string]*DepartmentSummary)
	deptOf := make(map[entity.ID]string, len(members))
	for _, m := range members {
		sum, ok := byDept[m.Department]
		if !ok {
			sum = &DepartmentSummary{Department: m.Department}
			byDept[m.Department] = sum
		}
		sum.TotalEmployees++
		if m.OnLeave {
			sum.OnLeave++
		}
		deptOf[m.ID] = m.Department
	}
	for _, r := range pending {
		if r.User == nil {
			continue
		}
		dept, ok := deptOf[r.User.ID]
		if !ok || dept == "" {
			continue
		}
		byDept[dept].PendingRequests++
	}
	out := make([]DepartmentSummary, 0, len(byDept))
	for _, v := range byDept {
		out = append(out, *v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Department < out[j].Department })
	return out
}

func FetchPending(ctx context.Context, s *Session) ([]entity.LeaveRequest, error) {
	return store.Run(s.Store, leaveAsync, func() ([]entity.LeaveRequest, error) {
		return s.Leave.PendingLeaveRequests(ctx)
	}, func(st *store.State, v []entity.LeaveRequest) {
		if v == nil {
			v = []entity.LeaveRequest{}
		}
		st.Leave.Pending = v
	}, message)
}

// LoadApprovals 先拉团队成员再拉待审批，任何一步失败都提示
func LoadApprovals(ctx context.Context, s *Session) (*Approvals, error) {
	members, err := FetchTeam(ctx, s)
	if err != nil {
		return nil, s.fail(err, "Failed to fetch team members")
	}
	pending, err := FetchPending(ctx, s)
	if err != nil {
		return nil, s.fail(err, "Failed to fetch pending leave requests")
	}
	return &Approvals{
		Summary: Summarize(members, pending),
		Pending: pending,
		CanAct:  CanApprove(s.Creds.User(ctx)),
	}, nil
}

func decide(ctx context.Context, s *Session, id entity.ID, approve bool, comment string) (*entity.LeaveRequest, error) {
	if !CanApprove(s.Creds.User(ctx)) {
		return nil, s.fail(errors.WithStack(global.ErrorNotManager), global.ErrorNotManager.Error())
	}
	var (
		out *entity.LeaveRequest
		err error
	)
	if approve {
		out, err = s.Leave.Approve(ctx, id, comment)
	} else {
		out, err = s.Leave.Reject(ctx, id, comment)
	}
	if err != nil {
		return nil, s.fail(err, "Failed to process leave request")
	}
	var decided entity.LeaveRequest
	s.Store.Update(func(st *store.State) {
		for _, r := range st.Leave.Pending {
			if r.ID == id {
				decided = r
			}
		}
		st.Leave.Pending = store.Without(st.Leave.Pending, id, store.RequestID)
	})
	verb := "approved"
	if !approve {
		verb = "rejected"
	}
	s.Store.ToastSuccess(fmt.Sprintf("Leave request %s successfully", verb))
	who := "A leave request"
	if decided.User != nil && decided.User.FullName() != "" {
		who = decided.User.FullName() + "'s leave request"
	}
	s.announce(fmt.Sprintf("%s was %s", who, verb))
	return out, nil
}

func Approve(ctx context.Context, s *Session, id entity.ID, comment string) (*entity.LeaveRequest, error) {
	return decide(ctx, s, id, true, comment)
}

// Reject 理由少于 10 个字符时不会调用后端
func Reject(ctx context.Context, s *Session, id entity.ID, reason string) (*entity.LeaveRequest, error) {
	return decide(ctx, s, id, false, reason)
}
