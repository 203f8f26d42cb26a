package params

// ParamLogin 登录时请求参数
type ParamLogin struct {
	Email    string `json:"email" validate:"required,notblank,email"`
	Password string `json:"password" validate:"required,notblank"`
}

// ParamRegister 注册参数，七个字段都必填
type ParamRegister struct {
	FirstName  string `json:"firstName" validate:"required,notblank"`
	LastName   string `json:"lastName" validate:"required,notblank"`
	Email      string `json:"email" validate:"required,notblank"`
	Password   string `json:"password" validate:"required,notblank"`
	Department string `json:"department" validate:"required,notblank"`
	Role       string `json:"role" validate:"required,notblank"`
	JobTitle   string `json:"jobTitle" validate:"required,notblank"`
}

type ParamVerify2FA struct {
	Code string `json:"code" validate:"required,totp"`
}

type ParamOAuth2Callback struct {
	Token string `form:"token"`
}

type ParamUpdateProfile struct {
	FirstName      string `json:"firstName,omitempty"`
	LastName       string `json:"lastName,omitempty"`
	Email          string `json:"email,omitempty" validate:"omitempty,email"`
	JobTitle       string `json:"jobTitle,omitempty"`
	ProfilePicture string `json:"profilePicture,omitempty"`
}

type ParamChangePassword struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,strong_password"`
}

// ParamUpdateUser 管理员修改用户
type ParamUpdateUser struct {
	Department string `json:"department"`
	Role       string `json:"role"`
	JobTitle   string `json:"jobTitle"`
}

type ParamSearchUser struct {
	Search     string `form:"search"`
	Department string `form:"department"`
	Role       string `form:"role"`
	JobTitle   string `form:"jobTitle"`
}
