package jwt

import (
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/pkg/errors"
	"github.com/spf13/cast"
)

// MyClaims 后端签发的token载荷，这里只读取不校验签名
type MyClaims struct {
	UserId string `json:"userId,omitempty"`
	Role   string `json:"role,omitempty"`
	jwt.StandardClaims
}

// ParseUnverified 不校验签名，签名由后端负责。userId 可能是数字也可能是字符串
func ParseUnverified(tokenString string) (*MyClaims, error) {
	claims := jwt.MapClaims{}
	if _, _, err := new(jwt.Parser).ParseUnverified(tokenString, claims); err != nil {
		return nil, errors.Wrap(err, "parse token")
	}
	mc := &MyClaims{UserId: cast.ToString(claims["userId"]), Role: cast.ToString(claims["role"])}
	if raw, ok := claims["exp"]; ok {
		exp, err := cast.ToInt64E(raw)
		if err != nil {
			return mc, errors.Wrapf(err, "exp %v", raw)
		}
		mc.ExpiresAt = exp
	}
	return mc, nil
}

// Expired token 能解析成JWT并且 exp 已过才算过期，不是JWT的token交给后端判断。exp 写坏了按过期处理
func Expired(tokenString string, now time.Time) bool {
	mc, err := ParseUnverified(tokenString)
	if mc == nil {
		return false
	}
	if err != nil {
		return true
	}
	if mc.ExpiresAt == 0 {
		return false
	}
	return now.Unix() >= mc.ExpiresAt
}
