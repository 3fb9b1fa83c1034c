package registry

import (
	"sort"
	"sync/atomic"

	"github.com/sqlgate/sqlgate/core/config"
	"github.com/sqlgate/sqlgate/core/infrastructure/logging"
	"github.com/sqlgate/sqlgate/core/shared/errors"
)

// Registry is the read-only catalog of server profiles. Lookups read an
// immutable snapshot; Reload swaps the whole snapshot atomically so no
// request observes a half-updated catalog.
type Registry struct {
	snapshot atomic.Pointer[catalog]
}

type catalog struct {
	profiles    map[string]*config.Profile
	defaultName string
}

// New builds a registry from loaded configuration
func New(cfg *config.Config) *Registry {
	r := &Registry{}
	r.swap(cfg)
	return r
}

func (r *Registry) swap(cfg *config.Config) {
	snap := &catalog{
		profiles: make(map[string]*config.Profile, len(cfg.Profiles)),
	}
	for name, profile := range cfg.Profiles {
		snap.profiles[name] = profile
		if profile.Default {
			snap.defaultName = name
		}
	}
	r.snapshot.Store(snap)
}

// Reload atomically replaces the catalog with the given configuration
func (r *Registry) Reload(cfg *config.Config) {
	log := logging.New("registry")
	r.swap(cfg)
	log.Infof("Profile catalog reloaded, %d profile(s)", len(cfg.Profiles))
}

// Resolve returns the named profile, or the default profile when name is
// empty. An unknown name fails with PROFILE_NOT_FOUND before any
// connection attempt is made.
func (r *Registry) Resolve(name string) (*config.Profile, error) {
	snap := r.snapshot.Load()

	if name == "" {
		if snap.defaultName == "" {
			return nil, errors.NewAppError(errors.ErrCodeProfileNotFound, "no server profiles configured", nil)
		}
		name = snap.defaultName
	}

	profile, ok := snap.profiles[name]
	if !ok {
		return nil, errors.NewAppError(errors.ErrCodeProfileNotFound, "unknown server profile '"+name+"'", nil)
	}
	return profile, nil
}

// List returns all profiles sorted by name
func (r *Registry) List() []*config.Profile {
	snap := r.snapshot.Load()
	profiles := make([]*config.Profile, 0, len(snap.profiles))
	for _, p := range snap.profiles {
		profiles = append(profiles, p)
	}
	sort.Slice(profiles, func(i, j int) bool {
		return profiles[i].Name < profiles[j].Name
	})
	return profiles
}

// DefaultName returns the name of the default profile, or "" when the
// catalog is empty.
func (r *Registry) DefaultName() string {
	return r.snapshot.Load().defaultName
}
