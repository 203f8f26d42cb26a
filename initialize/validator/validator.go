package validator

import (
	"fmt"
	"regexp"
	"strings"

	"leave/global"
	"leave/model/entity"
	"leave/model/params"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/pkg/errors"
)

var (
	totpRe     = regexp.MustCompile(`^[0-9]{6}$`)
	passwordRe = regexp.MustCompile(`^[A-Za-z0-9]{8,}$`)
	lowerRe    = regexp.MustCompile(`[a-z]`)
	upperRe    = regexp.MustCompile(`[A-Z]`)
	digitRe    = regexp.MustCompile(`[0-9]`)
)

// 字段级别的提示沿用前端的文案
var fieldMessages = map[string]string{
	"ParamLogin.Email.required":                       "Email is required",
	"ParamLogin.Email.notblank":                       "Email is required",
	"ParamLogin.Email.email":                          "Please enter a valid email",
	"ParamLogin.Password.required":                    "Password is required",
	"ParamLogin.Password.notblank":                    "Password is required",
	"ParamVerify2FA.Code.required":                    "Verification code is required",
	"ParamVerify2FA.Code.totp":                        "Verification code must be 6 digits",
	"ParamReject.Comment.required":                    "Rejection reason must be at least 10 characters long",
	"ParamReject.Comment.min":                         "Rejection reason must be at least 10 characters long",
	"ParamChangePassword.NewPassword.strong_password": "Password must be at least 8 characters with upper case, lower case and a digit",
	"ParamApplyLeave.EndDate.date_order":              "End date must not be before start date",
}

func Init() error {
	v := validator.New()
	uni := ut.New(en.New())
	trans, _ := uni.GetTranslator("en")
	if err := en_translations.RegisterDefaultTranslations(v, trans); err != nil {
		return errors.Wrap(err, "register default translations")
	}
	if err := v.RegisterValidation("totp", totp); err != nil {
		return errors.Wrap(err, "register totp")
	}
	if err := v.RegisterValidation("notblank", notBlank); err != nil {
		return errors.Wrap(err, "register notblank")
	}
	if err := v.RegisterValidation("strong_password", strongPassword); err != nil {
		return errors.Wrap(err, "register strong_password")
	}
	v.RegisterStructValidation(applyLeaveDates, params.ParamApplyLeave{})
	global.GLOAB_VALIDATOR = v
	global.GLOAB_TRANS = trans
	return nil
}

func totp(fl validator.FieldLevel) bool {
	return totpRe.MatchString(fl.Field().String())
}

// notBlank 只有空白字符的也算没填
func notBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

func strongPassword(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	return passwordRe.MatchString(s) && lowerRe.MatchString(s) && upperRe.MatchString(s) && digitRe.MatchString(s)
}

// applyLeaveDates 开始日期不能晚于结束日期
func applyLeaveDates(sl validator.StructLevel) {
	p := sl.Current().Interface().(params.ParamApplyLeave)
	if p.StartDate == "" || p.EndDate == "" {
		return
	}
	start, err1 := entity.ParseDate(p.StartDate)
	end, err2 := entity.ParseDate(p.EndDate)
	if err1 != nil {
		sl.ReportError(p.StartDate, "startDate", "StartDate", "datetime", "")
		return
	}
	if err2 != nil {
		sl.ReportError(p.EndDate, "endDate", "EndDate", "datetime", "")
		return
	}
	if start.After(end.Time) {
		sl.ReportError(p.EndDate, "endDate", "EndDate", "date_order", "")
	}
}

// Messages 把校验错误转换成给前端看的提示
func Messages(err error) []string {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return []string{err.Error()}
	}
	out := make([]string, 0, len(errs))
	for _, fe := range errs {
		out = append(out, message(fe))
	}
	return out
}

// First 返回第一条校验提示
func First(err error) string {
	msgs := Messages(err)
	if len(msgs) == 0 {
		return ""
	}
	return msgs[0]
}

func message(fe validator.FieldError) string {
	ns := fe.StructNamespace()
	if i := strings.Index(ns, "."); i >= 0 {
		ns = ns[:i]
	}
	key := fmt.Sprintf("%s.%s.%s", ns, fe.StructField(), fe.Tag())
	if msg, ok := fieldMessages[key]; ok {
		return msg
	}
	if strings.HasPrefix(key, "ParamRegister.") && (fe.Tag() == "required" || fe.Tag() == "notblank") {
		return "Please fill in all fields"
	}
	if global.GLOAB_TRANS != nil {
		return fe.Translate(global.GLOAB_TRANS)
	}
	return fe.Error()
}
