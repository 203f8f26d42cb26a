package logic

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"leave/model/entity"
	"leave/model/params"
	"leave/model/store"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildUserAdmin(t *testing.T) {
	var members []entity.TeamMember
	require.NoError(t, json.Unmarshal([]byte(membersJSON), &members))

	tests := []struct {
		name   string
		filter params.ParamSearchUser
		want   []entity.ID
	}{
		{"no filter", params.ParamSearchUser{}, []entity.ID{"1", "2", "3"}},
		{"name", params.ParamSearchUser{Search: "ann l"}, []entity.ID{"1"}},
		{"email", params.ParamSearchUser{Search: "CY@"}, []entity.ID{"3"}},
		{"department", params.ParamSearchUser{Department: "engineering"}, []entity.ID{"1", "2"}},
		{"role", params.ParamSearchUser{Role: "role_manager"}, []entity.ID{"2"}},
		{"job title", params.ParamSearchUser{Department: "engineering", JobTitle: "developer"}, []entity.ID{"1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []entity.ID
			for _, u := range BuildUserAdmin(members, tt.filter).Users {
				got = append(got, u.ID)
			}
			assert.Equal(t, tt.want, got)
		})
	}

	ua := BuildUserAdmin(members, params.ParamSearchUser{})
	assert.Equal(t, []Option{{ID: "engineering", Name: "Engineering"}, {ID: "design", Name: "Design"}}, ua.Departments)
	assert.Len(t, ua.Roles, 2)
	assert.Len(t, ua.JobTitles, 3)
}

func TestUpdateUser(t *testing.T) {
	f := newFakeBackend(t)
	f.reply("GET /leave-api/teams/members", http.StatusOK, membersJSON)
	f.handle("PATCH /auth-api/users/3", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, entity.RolePending, body["role"])
		assert.Nil(t, body["jobTitle"])
		_, _ = w.Write([]byte(`{"id":3,"role":"PENDING","department":"Design"}`))
	})
	s := f.session(nil)

	u, err := UpdateUser(context.Background(), s, "3", &params.ParamUpdateUser{Department: "Design"})
	require.NoError(t, err)
	assert.Equal(t, entity.RolePending, u.Role)
	assert.Equal(t, 1, f.count("GET /leave-api/teams/members"))
	assert.Contains(t, toastMessages(s, store.ToastSuccess), "User updated successfully")
}

func TestUpdateUser_MissingID(t *testing.T) {
	f := newFakeBackend(t)
	s := f.session(nil)
	_, err := UpdateUser(context.Background(), s, "", &params.ParamUpdateUser{})
	assert.True(t, errors.Is(err, ErrUserIDMissing))
}

func TestDepartmentCRUD(t *testing.T) {
	f := newFakeBackend(t)
	f.reply("GET /leave-api/departments", http.StatusOK, `{"data":[{"_id":"d1","name":"Engineering"}]}`)
	f.reply("POST /leave-api/departments", http.StatusOK, `{"_id":"d2","name":"Design"}`)
	f.reply("PUT /leave-api/departments/d2", http.StatusOK, `{"_id":"d2","name":"Product Design"}`)
	f.reply("DELETE /leave-api/departments/d1", http.StatusOK, `{}`)
	s := f.session(nil)
	ctx := context.Background()

	list, err := FetchDepartments(ctx, s)
	require.NoError(t, err)
	require.Len(t, list, 1)
	_, err = AddDepartment(ctx, s, &params.ParamDepartment{Name: "Design"})
	require.NoError(t, err)
	_, err = UpdateDepartment(ctx, s, "d2", &params.ParamDepartment{Name: "Product Design"})
	require.NoError(t, err)
	require.NoError(t, DeleteDepartment(ctx, s, "d1"))

	depts := s.Store.Snapshot().Departments.Departments
	require.Len(t, depts, 1)
	assert.Equal(t, "Product Design", depts[0].Name)
}

func TestLeaveTypeCRUD(t *testing.T) {
	f := newFakeBackend(t)
	f.reply("GET /leave-api/types", http.StatusOK, `[{"_id":"t1","name":"Annual"}]`)
	f.reply("POST /leave-api/types", http.StatusOK, `{"_id":"t2","name":"Study"}`)
	f.reply("DELETE /leave-api/types/t1", http.StatusOK, `{}`)
	f.reply("DELETE /leave-api/types/t9", http.StatusNotFound, `{"message":"Leave type not found"}`)
	s := f.session(nil)
	ctx := context.Background()

	_, err := FetchLeaveTypes(ctx, s)
	require.NoError(t, err)
	_, err = AddLeaveType(ctx, s, &params.ParamLeaveType{Name: "Study"})
	require.NoError(t, err)
	require.NoError(t, DeleteLeaveType(ctx, s, "t1"))

	err = DeleteLeaveType(ctx, s, "t9")
	require.Error(t, err)
	snap := s.Store.Snapshot()
	assert.Equal(t, "Leave type not found", snap.LeaveTypes.Error)
	require.Len(t, snap.LeaveTypes.LeaveTypes, 1)
	assert.Equal(t, "Study", snap.LeaveTypes.LeaveTypes[0].Name)
}
