package store

import (
	"sync"
	"time"
)

// Registry 每个客户端一个 Store
type Registry struct {
	mu     sync.Mutex
	stores map[string]*Store
}

func NewRegistry() *Registry {
	return &Registry{stores: make(map[string]*Store)}
}

// Get 不存在就新建
func (r *Registry) Get(sid string) *Store {
	r.mu.Lock()
	s, ok := r.stores[sid]
	if !ok {
		s = New()
		r.stores[sid] = s
	}
	r.mu.Unlock()
	s.touch(time.Now())
	return s
}

// Has 不会新建
func (r *Registry) Has(sid string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.stores[sid]
	return ok
}

// Rename 把 old 的 Store 挂到新的 sid 下，old 不存在时新建一个
func (r *Registry) Rename(old, sid string) *Store {
	r.mu.Lock()
	s, ok := r.stores[old]
	if !ok {
		s = New()
	}
	delete(r.stores, old)
	r.stores[sid] = s
	r.mu.Unlock()
	s.touch(time.Now())
	return s
}

func (r *Registry) Remove(sid string) {
	r.mu.Lock()
	delete(r.stores, sid)
	r.mu.Unlock()
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.stores)
}

// Evict 删除超过 idle 没有访问的客户端，返回删除个数
func (r *Registry) Evict(now time.Time, idle time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for sid, s := range r.stores {
		if now.Sub(s.lastSeen()) > idle {
			delete(r.stores, sid)
			n++
		}
	}
	return n
}
