package entity

import (
	"bytes"
	"encoding/json"
	"strings"
)

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

const (
	RoleUser    = "ROLE_USER"
	RoleManager = "ROLE_MANAGER"
	RoleAdmin   = "ROLE_ADMIN"
	RolePending = "PENDING"
)

type User struct {
	ID                ID     `json:"id"`
	FirstName         string `json:"firstName,omitempty"`
	LastName          string `json:"lastName,omitempty"`
	Name              string `json:"name,omitempty"`
	Email             string `json:"email,omitempty"`
	Role              string `json:"role,omitempty"`
	Department        string `json:"department,omitempty"`
	JobTitle          string `json:"jobTitle,omitempty"`
	ProfilePicture    string `json:"profilePicture,omitempty"`
	TwoFactorEnabled  bool   `json:"twoFactorEnabled"`
	TwoFactorVerified bool   `json:"twoFactorVerified"`
	SecretKey         string `json:"secretKey,omitempty"`
}

// FullName 优先用 firstName lastName
func (u User) FullName() string {
	full := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if full == "" {
		return u.Name
	}
	return full
}

// AuthResponse 登录、2FA 校验、OAuth2 回调得到的认证信息，原样存进 authResponse
type AuthResponse struct {
	Token   string `json:"token,omitempty"`
	UserID  ID     `json:"userId,omitempty"`
	User    *User  `json:"user,omitempty"`
	Message string `json:"message,omitempty"`
}

// TwoFactorSetup 2FA 初始化返回的二维码和密钥
type TwoFactorSetup struct {
	QRCodeURL string `json:"qrCodeUrl"`
	SecretKey string `json:"secretKey"`
}

// LeaveTypeRef 请假记录里的假期类型，可能是字符串也可能是对象
type LeaveTypeRef struct {
	ID   ID     `json:"id,omitempty"`
	Name string `json:"name"`
}

func (r *LeaveTypeRef) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		return nil
	}
	if b[0] == '"' {
		return json.Unmarshal(b, &r.Name)
	}
	aux := struct {
		ID      ID     `json:"id"`
		MongoID ID     `json:"_id"`
		Name    string `json:"name"`
	}{}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	r.ID = firstID(aux.ID, aux.MongoID)
	r.Name = aux.Name
	return nil
}

type LeaveRequest struct {
	ID              ID           `json:"id"`
	User            *User        `json:"user,omitempty"`
	LeaveType       LeaveTypeRef `json:"leaveType"`
	StartDate       Date         `json:"startDate"`
	EndDate         Date         `json:"endDate"`
	NumberOfDays    float64      `json:"numberOfDays"`
	Reason          string       `json:"reason"`
	Status          string       `json:"status"`
	Comment         string       `json:"comment,omitempty"`
	RejectionReason string       `json:"rejectionReason,omitempty"`
	CreatedAt       Date         `json:"createdAt"`
}

func (r *LeaveRequest) UnmarshalJSON(b []byte) error {
	type alias LeaveRequest
	aux := struct {
		*alias
		MongoID ID              `json:"_id"`
		User    json.RawMessage `json:"user"`
	}{alias: (*alias)(r)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	r.ID = firstID(r.ID, aux.MongoID)
	user, err := decodeUserRef(aux.User)
	if err != nil {
		return err
	}
	r.User = user
	return nil
}

// decodeUserRef user 字段可能只是一个 id
func decodeUserRef(raw json.RawMessage) (*User, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	if raw[0] != '{' {
		var id ID
		if err := json.Unmarshal(raw, &id); err != nil {
			return nil, err
		}
		return &User{ID: id}, nil
	}
	aux := struct {
		User
		MongoID ID `json:"_id"`
	}{}
	if err := json.Unmarshal(raw, &aux); err != nil {
		return nil, err
	}
	aux.User.ID = firstID(aux.User.ID, aux.MongoID)
	return &aux.User, nil
}

type LeaveType struct {
	ID           ID      `json:"id"`
	Name         string  `json:"name"`
	AccrualRate  float64 `json:"accrualRate"`
	MaxCarryover float64 `json:"maxCarryover"`
	Description  string  `json:"description,omitempty"`
}

func (t *LeaveType) UnmarshalJSON(b []byte) error {
	type alias LeaveType
	aux := struct {
		*alias
		MongoID ID `json:"_id"`
	}{alias: (*alias)(t)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	t.ID = firstID(t.ID, aux.MongoID)
	return nil
}

type Department struct {
	ID          ID     `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	HeadCount   int    `json:"headCount"`
}

func (d *Department) UnmarshalJSON(b []byte) error {
	type alias Department
	aux := struct {
		*alias
		MongoID ID `json:"_id"`
	}{alias: (*alias)(d)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	d.ID = firstID(d.ID, aux.MongoID)
	return nil
}

// LeaveDetails 团队成员当前的请假信息
type LeaveDetails struct {
	LeaveType LeaveTypeRef `json:"leaveType"`
	StartDate Date         `json:"startDate"`
	EndDate   Date         `json:"endDate"`
}

// TeamMember 团队成员视图，带是否在休假
type TeamMember struct {
	User
	OnLeave      bool          `json:"onLeave"`
	LeaveDetails *LeaveDetails `json:"leaveDetails,omitempty"`
}

func (m *TeamMember) UnmarshalJSON(b []byte) error {
	aux := struct {
		User
		MongoID      ID            `json:"_id"`
		OnLeave      bool          `json:"onLeave"`
		LeaveDetails *LeaveDetails `json:"leaveDetails"`
	}{}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	m.User = aux.User
	m.User.ID = firstID(aux.User.ID, aux.MongoID)
	m.OnLeave = aux.OnLeave
	m.LeaveDetails = aux.LeaveDetails
	return nil
}

// LeaveBalance 各假期类型的剩余天数
type LeaveBalance map[string]float64

// UnmarshalJSON 兼容 {"annual": 10}、{"annual": {"remaining": 10}} 和
// [{"leaveType": "annual", "balance": 10}] 三种返回
func (lb *LeaveBalance) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	out := LeaveBalance{}
	if len(b) == 0 || string(b) == "null" {
		*lb = out
		return nil
	}
	if b[0] == '[' {
		var rows []balanceEntry
		if err := json.Unmarshal(b, &rows); err != nil {
			return err
		}
		for _, r := range rows {
			if name := r.name(); name != "" {
				out[strings.ToLower(name)] = r.amount()
			}
		}
		*lb = out
		return nil
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(b, &obj); err != nil {
		return err
	}
	for k, raw := range obj {
		var n float64
		if err := json.Unmarshal(raw, &n); err == nil {
			out[k] = n
			continue
		}
		var e balanceEntry
		if err := json.Unmarshal(raw, &e); err == nil {
			out[k] = e.amount()
		}
	}
	*lb = out
	return nil
}

type balanceEntry struct {
	LeaveType LeaveTypeRef `json:"leaveType"`
	Type      string       `json:"type"`
	Balance   *float64     `json:"balance"`
	Remaining *float64     `json:"remaining"`
	Days      *float64     `json:"days"`
}

func (e balanceEntry) name() string {
	if e.LeaveType.Name != "" {
		return e.LeaveType.Name
	}
	return e.Type
}

func (e balanceEntry) amount() float64 {
	for _, v := range []*float64{e.Remaining, e.Balance, e.Days} {
		if v != nil {
			return *v
		}
	}
	return 0
}

// DefaultLeaveBalance 没拿到余额之前展示的值
func DefaultLeaveBalance() LeaveBalance {
	return LeaveBalance{"annual": 0, "sick": 0, "casual": 0}
}

func firstID(ids ...ID) ID {
	for _, id := range ids {
		if id != "" {
			return id
		}
	}
	return ""
}
