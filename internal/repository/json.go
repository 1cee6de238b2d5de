package repository

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/ghaggin/yoga/internal/model"
	"go.uber.org/zap"
)

var (
	errTableFileIsDir = errors.New("table file is dir")
)

type Data struct {
	Users    []model.User    `json:"users"`
	Teachers []model.Teacher `json:"teachers"`
	Sessions []model.Session `json:"sessions"`

	// highest id ever assigned per table, ids are never reused
	LastUserID    int64 `json:"lastUserId"`
	LastTeacherID int64 `json:"lastTeacherId"`
	LastSessionID int64 `json:"lastSessionId"`
}

type jsonRepo struct {
	path string
	log  *zap.Logger

	mu   sync.RWMutex
	data *Data
	now  func() time.Time
}

// NewJSON loads path if it exists. Data is written back by Flush, which the
// fx stop hook calls.
func NewJSON(path string, log *zap.Logger) *jsonRepo {
	r := &jsonRepo{
		path: path,
		log:  log,
		data: &Data{},
		now:  time.Now,
	}

	err := r.readfile()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		// only log, data will be empty and will overwrite when
		// the service is stopped
		r.log.Warn("failed reading json repo data file", zap.Error(err))
	}

	return r
}

func (r *jsonRepo) Flush(_ context.Context) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.writefile()
}

func (r *jsonRepo) readfile() error {
	finfo, err := os.Stat(r.path)
	if err != nil {
		return err
	}

	if finfo.IsDir() {
		return errTableFileIsDir
	}

	f, err := os.Open(r.path)
	if err != nil {
		return err
	}
	defer f.Close()

	return json.NewDecoder(f).Decode(&r.data)
}

func (r *jsonRepo) writefile() error {
	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return err
	}

	b, err := json.MarshalIndent(r.data, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(r.path, b, 0o600)
}

func (r *jsonRepo) stamp() model.Time {
	return model.NewTime(r.now().UTC().Truncate(time.Second))
}

func (r *jsonRepo) GetUser(_ context.Context, id int64) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.data.Users {
		if u.ID == id {
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (r *jsonRepo) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.data.Users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (r *jsonRepo) AddUser(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.data.Users {
		if strings.EqualFold(u.Email, user.Email) {
			return ErrConflict
		}
	}

	user.ID = nextID(&r.data.LastUserID, r.data.Users, func(u model.User) int64 { return u.ID })
	user.CreatedAt = r.stamp()
	user.UpdatedAt = user.CreatedAt

	r.data.Users = append(r.data.Users, *user)
	return nil
}

// DeleteUser also removes the user from every session it joined.
func (r *jsonRepo) DeleteUser(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := slices.IndexFunc(r.data.Users, func(u model.User) bool { return u.ID == id })
	if i < 0 {
		return ErrNotFound
	}
	r.data.Users = slices.Delete(r.data.Users, i, i+1)

	for i := range r.data.Sessions {
		r.data.Sessions[i].Users = slices.DeleteFunc(r.data.Sessions[i].Users, func(uid int64) bool { return uid == id })
	}
	return nil
}

func (r *jsonRepo) GetTeachers(_ context.Context) ([]model.Teacher, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.data.Teachers), nil
}

func (r *jsonRepo) GetTeacher(_ context.Context, id int64) (*model.Teacher, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, t := range r.data.Teachers {
		if t.ID == id {
			return &t, nil
		}
	}
	return nil, ErrNotFound
}

func (r *jsonRepo) AddTeacher(_ context.Context, teacher *model.Teacher) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	teacher.ID = nextID(&r.data.LastTeacherID, r.data.Teachers, func(t model.Teacher) int64 { return t.ID })
	teacher.CreatedAt = r.stamp()
	teacher.UpdatedAt = teacher.CreatedAt

	r.data.Teachers = append(r.data.Teachers, *teacher)
	return nil
}

func (r *jsonRepo) GetSessions(_ context.Context) ([]model.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.Session, 0, len(r.data.Sessions))
	for _, s := range r.data.Sessions {
		out = append(out, cloneSession(s))
	}
	return out, nil
}

func (r *jsonRepo) GetSession(_ context.Context, id int64) (*model.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, s := range r.data.Sessions {
		if s.ID == id {
			s = cloneSession(s)
			return &s, nil
		}
	}
	return nil, ErrNotFound
}

func (r *jsonRepo) AddSession(_ context.Context, session *model.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	session.ID = nextID(&r.data.LastSessionID, r.data.Sessions, func(s model.Session) int64 { return s.ID })
	if session.Users == nil {
		session.Users = []int64{}
	}
	session.CreatedAt = r.stamp()
	session.UpdatedAt = session.CreatedAt

	r.data.Sessions = append(r.data.Sessions, cloneSession(*session))
	return nil
}

// UpdateSession replaces every field except the creation time.
func (r *jsonRepo) UpdateSession(_ context.Context, session *model.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, s := range r.data.Sessions {
		if s.ID != session.ID {
			continue
		}
		if session.Users == nil {
			session.Users = []int64{}
		}
		session.CreatedAt = s.CreatedAt
		session.UpdatedAt = r.stamp()
		r.data.Sessions[i] = cloneSession(*session)
		return nil
	}
	return ErrNotFound
}

func (r *jsonRepo) DeleteSession(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := slices.IndexFunc(r.data.Sessions, func(s model.Session) bool { return s.ID == id })
	if i < 0 {
		return ErrNotFound
	}
	r.data.Sessions = slices.Delete(r.data.Sessions, i, i+1)
	return nil
}

// nextID advances last past every stored id and returns it. Files written
// without the counter start from the highest stored id.
func nextID[T any](last *int64, rows []T, id func(T) int64) int64 {
	for _, row := range rows {
		*last = max(*last, id(row))
	}
	*last++
	return *last
}

func cloneSession(s model.Session) model.Session {
	s.Users = slices.Clone(s.Users)
	if s.Users == nil {
		s.Users = []int64{}
	}
	return s
}
