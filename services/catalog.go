package services

import (
	"context"
	"net/http"

	"leave/model/entity"
	"leave/model/params"
)

// 部门和假期类型的增删改查

func (s *LeaveService) Departments(ctx context.Context) ([]entity.Department, error) {
	raw, err := s.c.do(ctx, request{method: http.MethodGet, path: "/departments", fallback: "Failed to fetch departments"})
	if err != nil {
		return nil, err
	}
	var out []entity.Department
	if err = decodeData(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *LeaveService) AddDepartment(ctx context.Context, p params.ParamDepartment) (*entity.Department, error) {
	raw, err := s.c.do(ctx, request{method: http.MethodPost, path: "/departments", body: p, fallback: "Failed to add department"})
	if err != nil {
		return nil, err
	}
	out := new(entity.Department)
	return out, decodeData(raw, out)
}

func (s *LeaveService) UpdateDepartment(ctx context.Context, id entity.ID, p params.ParamDepartment) (*entity.Department, error) {
	raw, err := s.c.do(ctx, request{method: http.MethodPut, path: "/departments/" + pathEscape(id), body: p, fallback: "Failed to update department"})
	if err != nil {
		return nil, err
	}
	out := new(entity.Department)
	return out, decodeData(raw, out)
}

func (s *LeaveService) DeleteDepartment(ctx context.Context, id entity.ID) error {
	_, err := s.c.do(ctx, request{method: http.MethodDelete, path: "/departments/" + pathEscape(id), fallback: "Failed to delete department"})
	return err
}

func (s *LeaveService) LeaveTypes(ctx context.Context) ([]entity.LeaveType, error) {
	raw, err := s.c.do(ctx, request{method: http.MethodGet, path: "/types", fallback: "Failed to fetch leave types"})
	if err != nil {
		return nil, err
	}
	var out []entity.LeaveType
	if err = decodeData(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *LeaveService) AddLeaveType(ctx context.Context, p params.ParamLeaveType) (*entity.LeaveType, error) {
	raw, err := s.c.do(ctx, request{method: http.MethodPost, path: "/types", body: p, fallback: "Failed to add leave type"})
	if err != nil {
		return nil, err
	}
	out := new(entity.LeaveType)
	return out, decodeData(raw, out)
}

func (s *LeaveService) UpdateLeaveType(ctx context.Context, id entity.ID, p params.ParamLeaveType) (*entity.LeaveType, error) {
	raw, err := s.c.do(ctx, request{method: http.MethodPut, path: "/types/" + pathEscape(id), body: p, fallback: "Failed to update leave type"})
	if err != nil {
		return nil, err
	}
	out := new(entity.LeaveType)
	return out, decodeData(raw, out)
}

// DeleteLeaveType 和其它假期类型接口一样走 /types
func (s *LeaveService) DeleteLeaveType(ctx context.Context, id entity.ID) error {
	_, err := s.c.do(ctx, request{method: http.MethodDelete, path: "/types/" + pathEscape(id), fallback: "Failed to delete leave type"})
	return err
}
