package client

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// ToastType is the severity of a toast
type ToastType string

const (
	ToastSuccess ToastType = "success"
	ToastError   ToastType = "error"
	ToastInfo    ToastType = "info"
	ToastWarning ToastType = "warning"
)

const (
	// DefaultToastDuration applies when AddToast gets a zero duration
	DefaultToastDuration = 5 * time.Second

	// Sticky keeps a toast until it is removed
	Sticky time.Duration = -1
)

// Toast is one transient notification
type Toast struct {
	ID       string
	Type     ToastType
	Message  string
	Duration time.Duration
}

// UIState is a snapshot of the UI store
type UIState struct {
	Toasts        []Toast
	GlobalLoading bool
}

// UIStore holds toasts and the global loading flag. Subscribers are called
// with a snapshot after every change, outside the store lock.
type UIStore struct {
	mu            sync.Mutex
	toasts        []Toast
	timers        map[string]*time.Timer
	globalLoading bool
	subscribers   map[int]func(UIState)
	nextSub       int
}

func NewUIStore() *UIStore {
	return &UIStore{
		timers:      make(map[string]*time.Timer),
		subscribers: make(map[int]func(UIState)),
	}
}

// Subscribe registers fn and returns a func that removes it
func (s *UIStore) Subscribe(fn func(UIState)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subscribers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subscribers, id)
		s.mu.Unlock()
	}
}

// State returns a copy of the current state
func (s *UIStore) State() UIState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Toasts returns the visible toasts, oldest first
func (s *UIStore) Toasts() []Toast {
	return s.State().Toasts
}

// AddToast shows a toast and returns its id. A zero duration means
// DefaultToastDuration; a positive one removes the toast when it elapses.
func (s *UIStore) AddToast(typ ToastType, message string, duration time.Duration) string {
	if duration == 0 {
		duration = DefaultToastDuration
	}
	toast := Toast{
		ID:       uuid.NewString(),
		Type:     typ,
		Message:  message,
		Duration: duration,
	}

	s.mu.Lock()
	s.toasts = append(s.toasts, toast)
	if duration > 0 {
		s.timers[toast.ID] = time.AfterFunc(duration, func() {
			s.RemoveToast(toast.ID)
		})
	}
	s.mu.Unlock()

	s.notify()
	return toast.ID
}

// RemoveToast hides the toast with id; unknown ids are ignored
func (s *UIStore) RemoveToast(id string) {
	s.mu.Lock()
	removed := false
	for i, t := range s.toasts {
		if t.ID == id {
			s.toasts = append(s.toasts[:i:i], s.toasts[i+1:]...)
			removed = true
			break
		}
	}
	if timer, ok := s.timers[id]; ok {
		timer.Stop()
		delete(s.timers, id)
	}
	s.mu.Unlock()

	if removed {
		s.notify()
	}
}

// ClearToasts hides every toast and cancels pending expiries
func (s *UIStore) ClearToasts() {
	s.mu.Lock()
	for id, timer := range s.timers {
		timer.Stop()
		delete(s.timers, id)
	}
	s.toasts = nil
	s.mu.Unlock()

	s.notify()
}

func (s *UIStore) SetGlobalLoading(loading bool) {
	s.mu.Lock()
	changed := s.globalLoading != loading
	s.globalLoading = loading
	s.mu.Unlock()

	if changed {
		s.notify()
	}
}

func (s *UIStore) GlobalLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.globalLoading
}

func (s *UIStore) Success(message string) string {
	return s.AddToast(ToastSuccess, message, 0)
}

func (s *UIStore) Error(message string) string {
	return s.AddToast(ToastError, message, 0)
}

func (s *UIStore) Info(message string) string {
	return s.AddToast(ToastInfo, message, 0)
}

func (s *UIStore) Warning(message string) string {
	return s.AddToast(ToastWarning, message, 0)
}

func (s *UIStore) snapshotLocked() UIState {
	toasts := make([]Toast, len(s.toasts))
	copy(toasts, s.toasts)
	return UIState{Toasts: toasts, GlobalLoading: s.globalLoading}
}

func (s *UIStore) notify() {
	s.mu.Lock()
	state := s.snapshotLocked()
	subs := make([]func(UIState), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(state)
	}
}
