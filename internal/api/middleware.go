package api

import (
	"context"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/ghaggin/yoga/internal/model"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type ctxKey int

const userKey ctxKey = iota

func userFrom(ctx context.Context) *model.User {
	u, _ := ctx.Value(userKey).(*model.User)
	return u
}

// requireToken rejects requests without a valid bearer token and puts the
// caller's account in the request context.
func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), model.TokenTypeBearer+" ")
		if !ok {
			writeMessage(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		u, err := s.ctrl.UserByToken(r.Context(), strings.TrimSpace(token))
		if err != nil {
			s.log.Debug("rejected token", zap.Error(err))
			writeMessage(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey, u)))
	})
}

type limiter struct {
	rate  rate.Limit
	burst int

	mu      sync.Mutex
	clients map[string]*visitor
	now     func() time.Time
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

const limiterIdle = 10 * time.Minute

func newLimiter(r float64, burst int) *limiter {
	if r <= 0 {
		r = 0.5
	}
	if burst <= 0 {
		burst = 5
	}
	return &limiter{
		rate:    rate.Limit(r),
		burst:   burst,
		clients: map[string]*visitor{},
		now:     time.Now,
	}
}

func (l *limiter) allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	c, ok := l.clients[ip]
	if !ok {
		c = &visitor{limiter: rate.NewLimiter(l.rate, l.burst)}
		l.clients[ip] = c
	}
	c.lastSeen = now

	return c.limiter.AllowN(now, 1)
}

// sweep drops clients idle for longer than limiterIdle.
func (l *limiter) sweep() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for k, v := range l.clients {
		if now.Sub(v.lastSeen) > limiterIdle {
			delete(l.clients, k)
		}
	}
}

// run sweeps on every tick until done is closed.
func (l *limiter) run(done <-chan struct{}) {
	ticker := time.NewTicker(limiterIdle)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.sweep()
		case <-done:
			return
		}
	}
}

func (l *limiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.allow(clientIP(r)) {
			writeMessage(w, http.StatusTooManyRequests, "Too many login attempts, try again later")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
