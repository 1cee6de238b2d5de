// Package state holds the logged-in identity of one client and notifies
// subscribers when it changes.
package state

import (
	"sync"

	"github.com/ghaggin/yoga/internal/model"
)

type subscriber struct {
	id int
	fn func(bool)
}

// Holder carries the identity of one client: a process, or a browser
// session in the web layer. Controllers receive it explicitly.
type Holder struct {
	mu       sync.Mutex
	identity *model.Identity
	subs     []subscriber
	nextID   int
}

func New() *Holder {
	return &Holder{}
}

// LogIn stores the identity and notifies subscribers.
func (h *Holder) LogIn(identity model.Identity) {
	h.mu.Lock()
	h.identity = &identity
	subs := h.snapshot()
	h.mu.Unlock()

	notify(subs, true)
}

// LogOut clears the identity and notifies subscribers, whatever the prior state.
func (h *Holder) LogOut() {
	h.mu.Lock()
	h.identity = nil
	subs := h.snapshot()
	h.mu.Unlock()

	notify(subs, false)
}

// Restore loads a previously persisted identity without notifying.
func (h *Holder) Restore(identity model.Identity) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.identity = &identity
}

func (h *Holder) IsLogged() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.identity != nil
}

// Identity returns a copy of the current identity.
func (h *Holder) Identity() (model.Identity, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.identity == nil {
		return model.Identity{}, false
	}
	return *h.identity, true
}

// IsAdmin reports false when nobody is logged in.
func (h *Holder) IsAdmin() bool {
	identity, ok := h.Identity()
	return ok && identity.Admin
}

// Token returns the bearer token of the current identity, or "".
func (h *Holder) Token() string {
	identity, ok := h.Identity()
	if !ok {
		return ""
	}
	return identity.Token
}

// Subscribe calls fn with the current logged-in state right away and then on
// every LogIn/LogOut until the returned cancel func is called.
func (h *Holder) Subscribe(fn func(bool)) (cancel func()) {
	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.subs = append(h.subs, subscriber{id: id, fn: fn})
	logged := h.identity != nil
	h.mu.Unlock()

	fn(logged)

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			for i, s := range h.subs {
				if s.id == id {
					h.subs = append(h.subs[:i:i], h.subs[i+1:]...)
					return
				}
			}
		})
	}
}

func (h *Holder) snapshot() []subscriber {
	return append([]subscriber(nil), h.subs...)
}

func notify(subs []subscriber, logged bool) {
	for _, s := range subs {
		s.fn(logged)
	}
}
