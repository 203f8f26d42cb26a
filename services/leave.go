package services

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"

	"leave/model/entity"
	"leave/model/params"

	"github.com/pkg/errors"
)

const minRejectionReason = 10

var (
	ErrTokenNotFound   = errors.New("Authentication token not found")
	ErrRejectionReason = errors.New("Rejection reason must be at least 10 characters long")
)

// LeaveService 请假服务
type LeaveService struct {
	c *Client
}

// Document 请假申请附带的证明材料
type Document struct {
	Filename string
	Content  io.Reader
}

func pathEscape(id entity.ID) string {
	return url.PathEscape(id.String())
}

// CreateLeaveRequest 以 multipart 表单提交
func (s *LeaveService) CreateLeaveRequest(ctx context.Context, p params.ParamApplyLeave, docs []Document) (*entity.LeaveRequest, error) {
	buf := new(bytes.Buffer)
	mw := multipart.NewWriter(buf)
	for _, f := range []struct{ name, value string }{
		{"startDate", p.StartDate},
		{"endDate", p.EndDate},
		{"leaveType", p.LeaveType},
		{"reason", p.Reason},
	} {
		if err := mw.WriteField(f.name, f.value); err != nil {
			return nil, errors.Wrap(err, "write form field")
		}
	}
	for _, d := range docs {
		fw, err := mw.CreateFormFile("supportingDocuments", d.Filename)
		if err != nil {
			return nil, errors.Wrap(err, "create form file")
		}
		if _, err = io.Copy(fw, d.Content); err != nil {
			return nil, errors.Wrap(err, "copy supporting document")
		}
	}
	if err := mw.Close(); err != nil {
		return nil, errors.Wrap(err, "close multipart writer")
	}
	raw, err := s.c.do(ctx, request{
		method:      http.MethodPost,
		path:        "/requests",
		reader:      buf,
		contentType: mw.FormDataContentType(),
		fallback:    "Failed to create leave request",
	})
	if err != nil {
		return nil, err
	}
	out := new(entity.LeaveRequest)
	return out, decodeData(raw, out)
}

func (s *LeaveService) list(ctx context.Context, path, fallback string, query url.Values) ([]entity.LeaveRequest, error) {
	raw, err := s.c.do(ctx, request{method: http.MethodGet, path: path, query: query, fallback: fallback})
	if err != nil {
		return nil, err
	}
	var out []entity.LeaveRequest
	if err = decodeData(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *LeaveService) ListLeaveRequests(ctx context.Context) ([]entity.LeaveRequest, error) {
	return s.list(ctx, "/requests", "Failed to fetch leave requests", nil)
}

// MyLeaveRequests 当前用户的请假记录
func (s *LeaveService) MyLeaveRequests(ctx context.Context) ([]entity.LeaveRequest, error) {
	return s.list(ctx, "/requests/my-requests", "Failed to fetch leave requests", nil)
}

func (s *LeaveService) PendingLeaveRequests(ctx context.Context) ([]entity.LeaveRequest, error) {
	return s.list(ctx, "/requests/pending", "Failed to fetch pending leave requests", nil)
}

func (s *LeaveService) LeaveHistory(ctx context.Context, query url.Values) ([]entity.LeaveRequest, error) {
	return s.list(ctx, "/leave/history", "Failed to fetch leave history", query)
}

func (s *LeaveService) GetLeaveRequest(ctx context.Context, id entity.ID) (*entity.LeaveRequest, error) {
	raw, err := s.c.do(ctx, request{
		method:   http.MethodGet,
		path:     "/requests/" + pathEscape(id),
		fallback: "Failed to fetch leave request",
	})
	if err != nil {
		return nil, err
	}
	out := new(entity.LeaveRequest)
	return out, decodeData(raw, out)
}

func (s *LeaveService) UpdateLeaveRequest(ctx context.Context, id entity.ID, p params.ParamUpdateLeave) (*entity.LeaveRequest, error) {
	raw, err := s.c.do(ctx, request{
		method:   http.MethodPut,
		path:     "/requests/" + pathEscape(id),
		body:     p,
		fallback: "Failed to update leave request",
	})
	if err != nil {
		return nil, err
	}
	out := new(entity.LeaveRequest)
	return out, decodeData(raw, out)
}

func (s *LeaveService) CancelLeaveRequest(ctx context.Context, id entity.ID) error {
	_, err := s.c.do(ctx, request{
		method:   http.MethodDelete,
		path:     "/requests/" + pathEscape(id),
		fallback: "Failed to cancel leave request",
	})
	return err
}

func (s *LeaveService) requireToken(ctx context.Context) error {
	if s.c.creds == nil || s.c.creds.Token(ctx) == "" {
		return errors.WithStack(ErrTokenNotFound)
	}
	return nil
}

func (s *LeaveService) Approve(ctx context.Context, id entity.ID, comment string) (*entity.LeaveRequest, error) {
	if err := s.requireToken(ctx); err != nil {
		return nil, err
	}
	raw, err := s.c.do(ctx, request{
		method:   http.MethodPost,
		path:     "/requests/" + pathEscape(id) + "/approve",
		body:     map[string]string{"status": entity.StatusApproved, "comment": comment},
		fallback: "Failed to approve leave request",
	})
	if err != nil {
		return nil, err
	}
	out := new(entity.LeaveRequest)
	return out, decodeData(raw, out)
}

// Reject 理由不足 10 个字符时不发请求，和 ParamReject 的 min=10 一样按原样计数
func (s *LeaveService) Reject(ctx context.Context, id entity.ID, reason string) (*entity.LeaveRequest, error) {
	if err := s.requireToken(ctx); err != nil {
		return nil, err
	}
	if len([]rune(reason)) < minRejectionReason {
		return nil, errors.WithStack(ErrRejectionReason)
	}
	raw, err := s.c.do(ctx, request{
		method:   http.MethodPost,
		path:     "/requests/" + pathEscape(id) + "/reject",
		body:     map[string]string{"status": entity.StatusRejected, "rejectionReason": reason},
		fallback: "Failed to reject leave request",
	})
	if err != nil {
		return nil, err
	}
	out := new(entity.LeaveRequest)
	return out, decodeData(raw, out)
}

func (s *LeaveService) Balances(ctx context.Context) (entity.LeaveBalance, error) {
	raw, err := s.c.do(ctx, request{method: http.MethodGet, path: "/balances/all", fallback: "Failed to fetch leave balance"})
	if err != nil {
		return nil, err
	}
	out := entity.LeaveBalance{}
	if err = decodeData(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *LeaveService) TeamMembers(ctx context.Context) ([]entity.TeamMember, error) {
	raw, err := s.c.do(ctx, request{method: http.MethodGet, path: "/teams/members", fallback: "Failed to fetch team members"})
	if err != nil {
		return nil, err
	}
	var out []entity.TeamMember
	if err = decodeData(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}
