package session

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// File 以 JSON 文件持久化，每次修改整体重写
type File struct {
	*Memory
	path string
}

func NewFile(path string) (*File, error) {
	f := &File{Memory: NewMemory(), path: path}
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return f, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "read session file")
	}
	if len(raw) == 0 {
		return f, nil
	}
	if err := json.Unmarshal(raw, &f.data); err != nil {
		return nil, errors.Wrapf(err, "decode session file %s", path)
	}
	if f.data == nil {
		f.data = make(map[string]bucket)
	}
	return f, nil
}

func (f *File) Set(ctx context.Context, sid, scope, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.set(sid, scope, key, value)
	return f.flush()
}

func (f *File) Remove(ctx context.Context, sid, scope, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if b, ok := f.data[sid]; ok {
		delete(b[scope], key)
		f.prune(sid)
	}
	return f.flush()
}

func (f *File) Clear(ctx context.Context, sid, scope string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if b, ok := f.data[sid]; ok {
		delete(b, scope)
		f.prune(sid)
	}
	return f.flush()
}

// flush 先写临时文件再改名，调用方持有写锁
func (f *File) flush() error {
	raw, err := json.Marshal(f.data)
	if err != nil {
		return errors.Wrap(err, "encode session file")
	}
	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".sessions-*")
	if err != nil {
		return errors.Wrap(err, "create temp session file")
	}
	if _, err = tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return errors.Wrap(err, "write session file")
	}
	if err = tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return errors.Wrap(err, "close session file")
	}
	return errors.Wrap(os.Rename(tmp.Name(), f.path), "rename session file")
}
