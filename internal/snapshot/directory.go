// Package snapshot holds pulled backend state: the server directory and the
// latest report collection. Both are replaced wholesale, never merged.
package snapshot

import (
	"context"
	"sync"

	"github.com/server-sentinel/sentinel/internal/errors"
	"github.com/server-sentinel/sentinel/pkg/sdk"
)

// ServerLister pulls the server directory.
type ServerLister interface {
	ListServers(ctx context.Context) ([]sdk.Server, error)
}

// Directory is the static list of monitored servers for a session.
type Directory struct {
	lister ServerLister

	mu      sync.RWMutex
	servers []sdk.Server
	index   map[string]int
	loaded  bool
}

func NewDirectory(lister ServerLister) *Directory {
	return &Directory{lister: lister, index: map[string]int{}}
}

// NewStaticDirectory returns an already-loaded directory.
func NewStaticDirectory(servers []sdk.Server) *Directory {
	d := &Directory{index: map[string]int{}}
	d.set(servers)
	return d
}

// Load pulls the directory. On failure the previous contents are kept and a
// PULL error is returned.
func (d *Directory) Load(ctx context.Context) error {
	if d.lister == nil {
		return errors.New(errors.ErrPull, "No server directory source configured", "")
	}
	servers, err := d.lister.ListServers(ctx)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrPull,
			"Couldn't load the server list",
			"Check that the backend is running and the configured url is correct")
	}
	d.set(servers)
	return nil
}

func (d *Directory) set(servers []sdk.Server) {
	list := make([]sdk.Server, 0, len(servers))
	index := make(map[string]int, len(servers))
	for _, s := range servers {
		if s.Name == "" {
			continue
		}
		if _, dup := index[s.Name]; dup {
			continue
		}
		index[s.Name] = len(list)
		list = append(list, s)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.servers = list
	d.index = index
	d.loaded = true
}

// Loaded reports whether a load has succeeded.
func (d *Directory) Loaded() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.loaded
}

// List returns the servers in backend order.
func (d *Directory) List() []sdk.Server {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]sdk.Server, len(d.servers))
	copy(out, d.servers)
	return out
}

func (d *Directory) Get(name string) (sdk.Server, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	i, ok := d.index[name]
	if !ok {
		return sdk.Server{}, false
	}
	return d.servers[i], true
}

func (d *Directory) Has(name string) bool {
	_, ok := d.Get(name)
	return ok
}

// Names returns server names in backend order.
func (d *Directory) Names() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	names := make([]string, len(d.servers))
	for i, s := range d.servers {
		names[i] = s.Name
	}
	return names
}

func (d *Directory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.servers)
}
