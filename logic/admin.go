package logic

import (
	"context"
	"strings"

	"leave/model/entity"
	"leave/model/params"
	"leave/model/store"

	"github.com/pkg/errors"
)

type Option struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type UserAdmin struct {
	Users       []entity.TeamMember `json:"users"`
	Departments []Option            `json:"departments"`
	Roles       []Option            `json:"roles"`
	JobTitles   []Option            `json:"jobTitles"`
}

func options(values []string) []Option {
	out := make([]Option, 0, len(values))
	for _, v := range values {
		out = append(out, Option{ID: strings.ToLower(v), Name: v})
	}
	return out
}

// FilterUsers 姓名或邮箱模糊匹配，其余字段忽略大小写精确匹配
func FilterUsers(users []entity.TeamMember, f params.ParamSearchUser) []entity.TeamMember {
	q := strings.ToLower(f.Search)
	out := make([]entity.TeamMember, 0, len(users))
	for _, u := range users {
		if q != "" &&
			!strings.Contains(strings.ToLower(u.FirstName+" "+u.LastName), q) &&
			!strings.Contains(strings.ToLower(u.Email), q) {
			continue
		}
		if f.Department != "" && strings.ToLower(u.Department) != strings.ToLower(f.Department) {
			continue
		}
		if f.Role != "" && strings.ToLower(u.Role) != strings.ToLower(f.Role) {
			continue
		}
		if f.JobTitle != "" && strings.ToLower(u.JobTitle) != strings.ToLower(f.JobTitle) {
			continue
		}
		out = append(out, u)
	}
	return out
}

func BuildUserAdmin(users []entity.TeamMember, f params.ParamSearchUser) *UserAdmin {
	return &UserAdmin{
		Users:       FilterUsers(users, f),
		Departments: options(distinct(users, func(m entity.TeamMember) string { return m.Department })),
		Roles:       options(distinct(users, func(m entity.TeamMember) string { return m.Role })),
		JobTitles:   options(distinct(users, func(m entity.TeamMember) string { return m.JobTitle })),
	}
}

func LoadUsers(ctx context.Context, s *Session, f params.ParamSearchUser) (*UserAdmin, error) {
	members, err := FetchTeam(ctx, s)
	if err != nil {
		return nil, s.fail(err, "Failed to fetch team members")
	}
	return BuildUserAdmin(members, f), nil
}

// UpdateUser 修改成功后重新拉取成员列表
func UpdateUser(ctx context.Context, s *Session, id entity.ID, p *params.ParamUpdateUser) (*entity.User, error) {
	if id == "" {
		return nil, s.fail(errors.WithStack(ErrUserIDMissing), "Failed to update user")
	}
	u, err := store.Run(s.Store, userAsync, func() (*entity.User, error) {
		return s.Auth.UpdateUser(ctx, id, *p)
	}, nil, message)
	if err != nil {
		return nil, s.fail(err, "Failed to update user")
	}
	if _, err = FetchTeam(ctx, s); err != nil {
		s.fail(err, "Failed to fetch team members")
	}
	s.Store.ToastSuccess("User updated successfully")
	return u, nil
}

func FetchDepartments(ctx context.Context, s *Session) ([]entity.Department, error) {
	list, err := store.Run(s.Store, departmentAsync, func() ([]entity.Department, error) {
		return s.Leave.Departments(ctx)
	}, func(st *store.State, v []entity.Department) {
		if v == nil {
			v = []entity.Department{}
		}
		st.Departments.Departments = v
	}, message)
	if err != nil {
		return nil, s.fail(err, "Failed to fetch departments")
	}
	return list, nil
}

func AddDepartment(ctx context.Context, s *Session, p *params.ParamDepartment) (*entity.Department, error) {
	d, err := store.Run(s.Store, departmentAsync, func() (*entity.Department, error) {
		return s.Leave.AddDepartment(ctx, *p)
	}, func(st *store.State, v *entity.Department) {
		st.Departments.Departments = append(st.Departments.Departments, *v)
	}, message)
	if err != nil {
		return nil, s.fail(err, "Failed to add department")
	}
	s.Store.ToastSuccess("Department added successfully")
	return d, nil
}

func UpdateDepartment(ctx context.Context, s *Session, id entity.ID, p *params.ParamDepartment) (*entity.Department, error) {
	d, err := store.Run(s.Store, departmentAsync, func() (*entity.Department, error) {
		return s.Leave.UpdateDepartment(ctx, id, *p)
	}, func(st *store.State, v *entity.Department) {
		if v.ID == "" {
			v.ID = id
		}
		st.Departments.Departments = store.Replace(st.Departments.Departments, *v, store.DepartmentID)
		st.Departments.Selected = v
	}, message)
	if err != nil {
		return nil, s.fail(err, "Failed to update department")
	}
	s.Store.ToastSuccess("Department updated successfully")
	return d, nil
}

func DeleteDepartment(ctx context.Context, s *Session, id entity.ID) error {
	_, err := store.Run(s.Store, departmentAsync, func() (struct{}, error) {
		return struct{}{}, s.Leave.DeleteDepartment(ctx, id)
	}, func(st *store.State, _ struct{}) {
		st.Departments.Departments = store.Without(st.Departments.Departments, id, store.DepartmentID)
		if st.Departments.Selected != nil && st.Departments.Selected.ID == id {
			st.Departments.Selected = nil
		}
	}, message)
	if err != nil {
		return s.fail(err, "Failed to delete department")
	}
	s.Store.ToastSuccess("Department deleted successfully")
	return nil
}

func FetchLeaveTypes(ctx context.Context, s *Session) ([]entity.LeaveType, error) {
	list, err := store.Run(s.Store, leaveTypeAsync, func() ([]entity.LeaveType, error) {
		return s.Leave.LeaveTypes(ctx)
	}, func(st *store.State, v []entity.LeaveType) {
		if v == nil {
			v = []entity.LeaveType{}
		}
		st.LeaveTypes.LeaveTypes = v
	}, message)
	if err != nil {
		return nil, s.fail(err, "Failed to fetch leave types")
	}
	return list, nil
}

func AddLeaveType(ctx context.Context, s *Session, p *params.ParamLeaveType) (*entity.LeaveType, error) {
	t, err := store.Run(s.Store, leaveTypeAsync, func() (*entity.LeaveType, error) {
		return s.Leave.AddLeaveType(ctx, *p)
	}, func(st *store.State, v *entity.LeaveType) {
		st.LeaveTypes.LeaveTypes = append(st.LeaveTypes.LeaveTypes, *v)
	}, message)
	if err != nil {
		return nil, s.fail(err, "Failed to add leave type")
	}
	s.Store.ToastSuccess("Leave type added successfully")
	return t, nil
}

func UpdateLeaveType(ctx context.Context, s *Session, id entity.ID, p *params.ParamLeaveType) (*entity.LeaveType, error) {
	t, err := store.Run(s.Store, leaveTypeAsync, func() (*entity.LeaveType, error) {
		return s.Leave.UpdateLeaveType(ctx, id, *p)
	}, func(st *store.State, v *entity.LeaveType) {
		if v.ID == "" {
			v.ID = id
		}
		st.LeaveTypes.LeaveTypes = store.Replace(st.LeaveTypes.LeaveTypes, *v, store.LeaveTypeID)
		st.LeaveTypes.Selected = v
	}, message)
	if err != nil {
		return nil, s.fail(err, "Failed to update leave type")
	}
	s.Store.ToastSuccess("Leave type updated successfully")
	return t, nil
}

func DeleteLeaveType(ctx context.Context, s *Session, id entity.ID) error {
	_, err := store.Run(s.Store, leaveTypeAsync, func() (struct{}, error) {
		return struct{}{}, s.Leave.DeleteLeaveType(ctx, id)
	}, func(st *store.State, _ struct{}) {
		st.LeaveTypes.LeaveTypes = store.Without(st.LeaveTypes.LeaveTypes, id, store.LeaveTypeID)
		if st.LeaveTypes.Selected != nil && st.LeaveTypes.Selected.ID == id {
			st.LeaveTypes.Selected = nil
		}
	}, message)
	if err != nil {
		return s.fail(err, "Failed to delete leave type")
	}
	s.Store.ToastSuccess("Leave type deleted successfully")
	return nil
}
