// core/store.go
package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/chhz0/tasklist/logging"
	"github.com/chhz0/tasklist/storage"
	"github.com/chhz0/tasklist/types"
)

const DefaultKey = "tasks"

type Phase int

const (
	PhaseUnloaded Phase = iota
	PhaseReady
)

func (p Phase) String() string {
	if p == PhaseReady {
		return "ready"
	}
	return "unloaded"
}

type LoadOutcome int

const (
	LoadedFromStorage LoadOutcome = iota
	// 存储中没有该键，按空列表启动
	LoadedEmpty
	// 读取或解析失败，按空列表启动
	LoadFailed
	// 重复调用 Load，状态未改变
	LoadSkipped
)

func (o LoadOutcome) String() string {
	switch o {
	case LoadedFromStorage:
		return "loaded"
	case LoadedEmpty:
		return "empty"
	case LoadFailed:
		return "failed"
	case LoadSkipped:
		return "skipped"
	}
	return fmt.Sprintf("LoadOutcome(%d)", int(o))
}

type LoadResult struct {
	Tasks   []types.Task
	Outcome LoadOutcome
	Err     error
}

// Draft 是表单中尚未保存的字段
type Draft struct {
	Title       string
	Description string
	Status      types.Status
}

// Cursor 指向正在编辑的任务；ID 为空表示空闲
type Cursor struct {
	ID       string
	Position int
}

func (c Cursor) Active() bool { return c.ID != "" }

type Snapshot struct {
	Phase      Phase
	Tasks      []types.Task
	Visible    []Entry
	Filter     types.Criterion
	Draft      Draft
	Editing    Cursor
	PersistErr error
}

type Option func(*Store)

func WithKey(key string) Option {
	return func(s *Store) {
		if key != "" {
			s.key = key
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRequireDescription 控制描述是否必填，默认必填
func WithRequireDescription(required bool) Option {
	return func(s *Store) { s.requireDescription = required }
}

func WithIDGenerator(gen func() string) Option {
	return func(s *Store) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// Store 持有主任务列表和编辑游标。
// 只允许一个事件循环调用，非并发安全。
type Store struct {
	kv                 storage.KV
	key                string
	logger             *slog.Logger
	requireDescription bool
	newID              func() string

	phase      Phase
	tasks      []types.Task
	editing    string
	draft      Draft
	filter     types.Criterion
	persistErr error

	broker broker
}

func NewStore(kv storage.KV, opts ...Option) *Store {
	s := &Store{
		kv:                 kv,
		key:                DefaultKey,
		logger:             logging.Discard(),
		requireDescription: true,
		newID:              types.NewID,
		tasks:              []types.Task{},
		filter:             types.CriterionAll,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load 只在初始化时调用一次；失败只记录日志并以空列表进入就绪状态
func (s *Store) Load(ctx context.Context) LoadResult {
	if s.phase != PhaseUnloaded {
		return LoadResult{Tasks: s.Tasks(), Outcome: LoadSkipped, Err: ErrAlreadyLoaded}
	}

	res := s.read(ctx)
	if res.Err != nil {
		s.logger.WarnContext(ctx, "load tasks failed, starting with an empty list", "key", s.key, "err", res.Err)
	} else {
		s.logger.DebugContext(ctx, "tasks loaded", "key", s.key, "count", len(res.Tasks), "outcome", res.Outcome)
	}

	s.tasks = s.assignIDs(res.Tasks)
	s.phase = PhaseReady
	res.Tasks = s.Tasks()
	s.notify()
	return res
}

func (s *Store) read(ctx context.Context) LoadResult {
	data, err := s.kv.Get(ctx, s.key)
	if errors.Is(err, storage.ErrKeyNotFound) {
		return LoadResult{Tasks: []types.Task{}, Outcome: LoadedEmpty}
	}
	if err != nil {
		return LoadResult{Tasks: []types.Task{}, Outcome: LoadFailed, Err: fmt.Errorf("read %q: %w", s.key, err)}
	}
	tasks, err := types.DecodeTasks(data)
	if err != nil {
		return LoadResult{Tasks: []types.Task{}, Outcome: LoadFailed, Err: fmt.Errorf("decode %q: %w", s.key, err)}
	}
	return LoadResult{Tasks: tasks, Outcome: LoadedFromStorage}
}

// 旧数据没有ID，重复ID也重新分配
func (s *Store) assignIDs(tasks []types.Task) []types.Task {
	seen := make(map[string]bool, len(tasks))
	for i := range tasks {
		if tasks[i].ID == "" || seen[tasks[i].ID] {
			tasks[i].ID = s.newID()
		}
		seen[tasks[i].ID] = true
	}
	return tasks
}

func (s *Store) ready() error {
	if s.phase != PhaseReady {
		return ErrNotLoaded
	}
	return nil
}

func (s *Store) validate(title, description string, status types.Status) error {
	if title == "" {
		return &ValidationError{Field: "title", Reason: "must not be empty"}
	}
	if s.requireDescription && description == "" {
		return &ValidationError{Field: "description", Reason: "must not be empty"}
	}
	if !status.Valid() {
		return &ValidationError{Field: "status", Reason: fmt.Sprintf("%q is not a known status", string(status))}
	}
	return nil
}

// AddOrUpdate 编辑中则原地替换该任务，否则追加；成功后持久化并清空表单
func (s *Store) AddOrUpdate(ctx context.Context, title, description string, status types.Status) error {
	if err := s.ready(); err != nil {
		return err
	}
	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)
	if err := s.validate(title, description, status); err != nil {
		return err
	}

	next := slices.Clone(s.tasks)
	op := "add"
	if pos := s.indexOf(s.editing); pos >= 0 {
		op = "update"
		next[pos] = types.Task{ID: next[pos].ID, Title: title, Description: description, Status: status}
	} else {
		next = append(next, types.Task{ID: s.newID(), Title: title, Description: description, Status: status})
	}

	s.tasks = next
	s.editing = ""
	s.draft = Draft{}
	return s.commit(ctx, op)
}

// Submit 用当前表单字段保存
func (s *Store) Submit(ctx context.Context) error {
	return s.AddOrUpdate(ctx, s.draft.Title, s.draft.Description, s.draft.Status)
}

// Remove 按主列表位置删除
func (s *Store) Remove(ctx context.Context, position int) error {
	if err := s.ready(); err != nil {
		return err
	}
	if position < 0 || position >= len(s.tasks) {
		return fmt.Errorf("%w: %d (have %d tasks)", ErrPositionOutOfRange, position, len(s.tasks))
	}
	return s.removeAt(ctx, position)
}

func (s *Store) RemoveByID(ctx context.Context, id string) error {
	if err := s.ready(); err != nil {
		return err
	}
	pos := s.indexOf(id)
	if pos < 0 {
		return fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	return s.removeAt(ctx, pos)
}

func (s *Store) removeAt(ctx context.Context, pos int) error {
	removed := s.tasks[pos]
	s.tasks = slices.Delete(slices.Clone(s.tasks), pos, pos+1)
	// 删除正在编辑的任务时游标回到空闲
	if removed.ID == s.editing {
		s.editing = ""
		s.draft = Draft{}
	}
	return s.commit(ctx, "remove")
}

func (s *Store) Clear(ctx context.Context) error {
	if err := s.ready(); err != nil {
		return err
	}
	s.tasks = []types.Task{}
	if s.editing != "" {
		s.editing = ""
		s.draft = Draft{}
	}
	return s.commit(ctx, "clear")
}

// BeginEdit 把主列表中该位置的任务载入表单
func (s *Store) BeginEdit(position int) error {
	if err := s.ready(); err != nil {
		return err
	}
	if position < 0 || position >= len(s.tasks) {
		return fmt.Errorf("%w: %d (have %d tasks)", ErrPositionOutOfRange, position, len(s.tasks))
	}
	s.beginEditAt(position)
	return nil
}

func (s *Store) BeginEditByID(id string) error {
	if err := s.ready(); err != nil {
		return err
	}
	pos := s.indexOf(id)
	if pos < 0 {
		return fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	s.beginEditAt(pos)
	return nil
}

func (s *Store) beginEditAt(pos int) {
	t := s.tasks[pos]
	s.draft = Draft{Title: t.Title, Description: t.Description, Status: t.Status}
	s.editing = t.ID
	s.notify()
}

// CancelEdit 放弃编辑，清空表单
func (s *Store) CancelEdit() {
	if s.editing == "" {
		return
	}
	s.editing = ""
	s.draft = Draft{}
	s.notify()
}

func (s *Store) SetTitle(v string) {
	s.draft.Title = v
	s.notify()
}

func (s *Store) SetDescription(v string) {
	s.draft.Description = v
	s.notify()
}

func (s *Store) SetStatus(v types.Status) {
	s.draft.Status = v
	s.notify()
}

func (s *Store) SetFilter(c types.Criterion) {
	s.filter = c
	s.notify()
}

func (s *Store) Filter() types.Criterion { return s.filter }

// Visible 每次调用都重新计算过滤视图
func (s *Store) Visible() []Entry {
	return FilterEntries(s.tasks, s.filter)
}

func (s *Store) Tasks() []types.Task { return slices.Clone(s.tasks) }

func (s *Store) Len() int { return len(s.tasks) }

func (s *Store) Phase() Phase { return s.phase }

func (s *Store) Draft() Draft { return s.draft }

func (s *Store) Editing() Cursor {
	pos := s.indexOf(s.editing)
	if pos < 0 {
		return Cursor{Position: -1}
	}
	return Cursor{ID: s.editing, Position: pos}
}

// PersistErr 返回最近一次写入失败的错误，成功写入后清空
func (s *Store) PersistErr() error { return s.persistErr }

func (s *Store) Snapshot() Snapshot {
	return Snapshot{
		Phase:      s.phase,
		Tasks:      s.Tasks(),
		Visible:    s.Visible(),
		Filter:     s.filter,
		Draft:      s.draft,
		Editing:    s.Editing(),
		PersistErr: s.persistErr,
	}
}

// Subscribe 注册监听器，每次状态变化后同步调用；返回取消函数
func (s *Store) Subscribe(fn Listener) func() {
	return s.broker.subscribe(fn)
}

func (s *Store) indexOf(id string) int {
	if id == "" {
		return -1
	}
	return slices.IndexFunc(s.tasks, func(t types.Task) bool { return t.ID == id })
}

// commit 持久化整个列表并通知订阅者
func (s *Store) commit(ctx context.Context, op string) error {
	err := s.persist(ctx, op)
	s.notify()
	return err
}

func (s *Store) persist(ctx context.Context, op string) error {
	data, err := types.EncodeTasks(s.tasks)
	if err == nil {
		err = s.kv.Set(ctx, s.key, data)
	}
	if err != nil {
		perr := &PersistError{Op: op, Err: err}
		s.persistErr = perr
		s.logger.WarnContext(ctx, "persist tasks failed, keeping in-memory list", "op", op, "key", s.key, "count", len(s.tasks), "err", err)
		return perr
	}
	s.persistErr = nil
	return nil
}

func (s *Store) notify() {
	s.broker.publish(s.Snapshot())
}
