package session

import "sync"

// Registry контроллеры сессий по telegram id пользователя
type Registry struct {
	mu          sync.RWMutex
	controllers map[int64]*Controller
}

func NewRegistry() *Registry {
	return &Registry{controllers: make(map[int64]*Controller)}
}

func (r *Registry) Get(userID int64) (*Controller, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.controllers[userID]
	return c, ok
}

// GetOrCreate возвращает контроллер пользователя, создавая его через create
func (r *Registry) GetOrCreate(userID int64, create func() *Controller) *Controller {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.controllers[userID]; ok {
		return c
	}
	c := create()
	r.controllers[userID] = c
	return c
}

// Remove убирает контроллер и закрывает его
func (r *Registry) Remove(userID int64) {
	r.mu.Lock()
	c, ok := r.controllers[userID]
	delete(r.controllers, userID)
	r.mu.Unlock()
	if ok {
		c.Close()
	}
}

// Snapshots состояние всех контроллеров, у которых есть сессия
func (r *Registry) Snapshots() map[int64]Snapshot {
	r.mu.RLock()
	controllers := make(map[int64]*Controller, len(r.controllers))
	for id, c := range r.controllers {
		controllers[id] = c
	}
	r.mu.RUnlock()

	out := make(map[int64]Snapshot, len(controllers))
	for id, c := range controllers {
		snap := c.Snapshot()
		if snap.SessionID == "" {
			continue
		}
		out[id] = snap
	}
	return out
}

// Close закрывает все контроллеры
func (r *Registry) Close() {
	r.mu.Lock()
	controllers := r.controllers
	r.controllers = make(map[int64]*Controller)
	r.mu.Unlock()
	for _, c := range controllers {
		c.Close()
	}
}
