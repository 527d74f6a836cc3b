package session

import (
	"context"
	"net"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PanelConn 面板连接句柄，由 TCP 层实现
type PanelConn interface {
	Write(b []byte) error
	Close() error
	RemoteAddr() net.Addr
}

// Session 单个面板连接的会话状态
type Session struct {
	ID        string
	ConnID    uint64
	Remote    string
	StartedAt time.Time

	mu      sync.RWMutex
	lastIn  time.Time
	lastOut time.Time
	conn    PanelConn
}

// TouchIn 记录入站活动时间
func (s *Session) TouchIn(t time.Time) {
	s.mu.Lock()
	s.lastIn = t
	s.mu.Unlock()
}

// LastIn 返回最近入站活动时间
func (s *Session) LastIn() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastIn
}

// LastOut 返回最近出站写入时间
func (s *Session) LastOut() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastOut
}

// Write 向面板写入一帧并刷新出站时间
func (s *Session) Write(b []byte) error {
	if err := s.conn.Write(b); err != nil {
		return err
	}
	s.mu.Lock()
	s.lastOut = time.Now()
	s.mu.Unlock()
	return nil
}

// Close 关闭底层连接
func (s *Session) Close() error { return s.conn.Close() }

// Info 会话快照，用于状态接口输出
type Info struct {
	ID        string    `json:"id"`
	Remote    string    `json:"remote_addr"`
	StartedAt time.Time `json:"started_at"`
	LastIn    time.Time `json:"last_in"`
	LastOut   time.Time `json:"last_out"`
}

// Registry 面板会话注册表：跟踪活动连接并按入站静默拆除死会话
type Registry struct {
	mu         sync.RWMutex
	byID       map[string]*Session
	timeout    time.Duration
	logger     *zap.Logger
	onTeardown func(*Session)
	onChange   func(count int)
}

// NewRegistry 创建注册表；timeout 为看门狗判定会话死亡的入站静默时长
func NewRegistry(timeout time.Duration, logger *zap.Logger) *Registry {
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		byID:    make(map[string]*Session),
		timeout: timeout,
		logger:  logger,
	}
}

// SetOnTeardown 安装看门狗拆除回调（指标上报）
func (r *Registry) SetOnTeardown(f func(*Session)) { r.onTeardown = f }

// SetOnChange 安装会话数变化回调（指标上报）
func (r *Registry) SetOnChange(f func(count int)) { r.onChange = f }

// Open 为新面板连接建立会话
func (r *Registry) Open(conn PanelConn, connID uint64) *Session {
	now := time.Now()
	s := &Session{
		ID:        uuid.NewString(),
		ConnID:    connID,
		Remote:    conn.RemoteAddr().String(),
		StartedAt: now,
		lastIn:    now,
		lastOut:   now,
		conn:      conn,
	}
	r.mu.Lock()
	r.byID[s.ID] = s
	count := len(r.byID)
	r.mu.Unlock()
	r.notifyChange(count)
	r.logger.Info("panel session opened",
		zap.String("session_id", s.ID),
		zap.String("remote_addr", s.Remote))
	return s
}

// Remove 移除会话（不关闭连接，连接关闭由调用方负责）
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	_, ok := r.byID[id]
	delete(r.byID, id)
	count := len(r.byID)
	r.mu.Unlock()
	if ok {
		r.notifyChange(count)
		r.logger.Info("panel session closed", zap.String("session_id", id))
	}
}

// Get 按ID查找会话
func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.RLock()
	s, ok := r.byID[id]
	r.mu.RUnlock()
	return s, ok
}

// Target 返回注入命令的默认目标：最近建立的会话
func (r *Registry) Target() (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var best *Session
	for _, s := range r.byID {
		if best == nil || s.StartedAt.After(best.StartedAt) {
			best = s
		}
	}
	return best, best != nil
}

// All 返回当前全部会话
func (r *Registry) All() []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Session, 0, len(r.byID))
	for _, s := range r.byID {
		out = append(out, s)
	}
	return out
}

// Count 返回当前会话数
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}

// Snapshot 返回按建立时间排序的会话快照
func (r *Registry) Snapshot() []Info {
	sessions := r.All()
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].StartedAt.Before(sessions[j].StartedAt)
	})
	out := make([]Info, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, Info{
			ID:        s.ID,
			Remote:    s.Remote,
			StartedAt: s.StartedAt,
			LastIn:    s.LastIn(),
			LastOut:   s.LastOut(),
		})
	}
	return out
}

// Sweep 拆除入站静默超过 timeout 的会话，返回被拆除的会话
func (r *Registry) Sweep(now time.Time) []*Session {
	var dead []*Session
	r.mu.Lock()
	for id, s := range r.byID {
		if now.Sub(s.LastIn()) > r.timeout {
			delete(r.byID, id)
			dead = append(dead, s)
		}
	}
	count := len(r.byID)
	r.mu.Unlock()

	if len(dead) > 0 {
		r.notifyChange(count)
	}
	for _, s := range dead {
		r.logger.Warn("panel session torn down by watchdog",
			zap.String("session_id", s.ID),
			zap.String("remote_addr", s.Remote),
			zap.Time("last_in", s.LastIn()))
		_ = s.Close()
		if r.onTeardown != nil {
			r.onTeardown(s)
		}
	}
	return dead
}

// Run 启动看门狗循环，周期性清理死会话，ctx 取消后退出
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = r.timeout / 4
	}
	if interval <= 0 {
		interval = 30 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			r.Sweep(now)
		}
	}
}

func (r *Registry) notifyChange(count int) {
	if r.onChange != nil {
		r.onChange(count)
	}
}
