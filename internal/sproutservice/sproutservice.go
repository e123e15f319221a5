// FilePath: internal/sproutservice/sproutservice.go

// Package sproutservice ties the session store, the domain services and
// the query cache together: cached read paths with per-operation stale
// times, and mutations that invalidate their dependent cache keys.
package sproutservice

import (
	"time"

	"github.com/plantsense/sprout/internal/errors"
	"github.com/plantsense/sprout/internal/querycache"
	"github.com/plantsense/sprout/internal/service"
	"github.com/plantsense/sprout/internal/session"
)

// Stale times per operation family, matching how fast each data set
// actually moves.
const (
	staleDefault          = 5 * time.Minute
	staleHealth           = 30 * time.Second
	staleSupportedMetrics = 5 * time.Minute
	staleReport           = 2 * time.Minute
	staleTrend            = 5 * time.Minute
)

// Cache key roots; detail keys nest under them so one prefix invalidation
// covers list and detail.
const (
	keyPlants    = "plants"
	keyDevices   = "devices"
	keyProfile   = "profile"
	keyAnalytics = "analytics"
)

// SproutService contains the session, services and cache used by every
// command surface.
type SproutService struct {
	Session  *session.Store
	Services *service.Services
	Cache    *querycache.Cache

	// DefaultStaleTime overrides the stale time of the plain read paths
	// (plants, devices, profile); zero keeps the built-in default. The
	// analytics paths keep their per-operation stale times.
	DefaultStaleTime time.Duration
}

// New creates a new SproutService instance
func New(sess *session.Store, services *service.Services, cache *querycache.Cache) *SproutService {
	return &SproutService{
		Session:  sess,
		Services: services,
		Cache:    cache,
	}
}

// Validate checks if all required collaborators are initialized
func (s *SproutService) Validate() error {
	if s.Session == nil {
		return ErrMissingDependency("session")
	}
	if s.Services == nil {
		return ErrMissingDependency("services")
	}
	if s.Cache == nil {
		return ErrMissingDependency("cache")
	}
	return nil
}

func ErrMissingDependency(name string) error {
	return errors.NewInternalError("missing dependency: "+name, nil)
}

func (s *SproutService) defaultStale() time.Duration {
	if s.DefaultStaleTime > 0 {
		return s.DefaultStaleTime
	}
	return staleDefault
}
