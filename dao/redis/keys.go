package redis

import "strings"

const (
	Prefix = "leave:"
)

// GetSessionKey leave:<scope>:<sid>:<key>
func GetSessionKey(scope, sid, key string) string {
	return Prefix + scope + ":" + sid + ":" + key
}

// GetClientPattern 一个客户端在某个 scope 下的全部 key
func GetClientPattern(scope, sid string) string {
	return Prefix + scope + ":" + sid + ":*"
}

// splitSessionKey 反解出 scope sid key
func splitSessionKey(full string) (scope, sid, key string, ok bool) {
	if !strings.HasPrefix(full, Prefix) {
		return "", "", "", false
	}
	parts := strings.SplitN(strings.TrimPrefix(full, Prefix), ":", 3)
	if len(parts) != 3 {
		return "", "", "", false
	}
	return parts[0], parts[1], parts[2], true
}
