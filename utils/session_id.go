package utils

import (
	"github.com/google/uuid"
)

// GenSessionID 浏览器客户端的会话ID，uuid v4 由 crypto/rand 生成
func GenSessionID() string {
	return uuid.NewString()
}

// ValidSessionID 只接受 GenSessionID 生成的格式
func ValidSessionID(sid string) bool {
	id, err := uuid.Parse(sid)
	if err != nil {
		return false
	}
	return id.Version() == 4 && id.Variant() == uuid.RFC4122 && id.String() == sid
}
