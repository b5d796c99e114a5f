package service

import (
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"gitlab.com/netops-console/vyos_console_api/cache/configcache"
	"gitlab.com/netops-console/vyos_console_api/model"
	"gitlab.com/netops-console/vyos_console_api/monitor"
	"gitlab.com/netops-console/vyos_console_api/vyos"
)

var (
	// ErrCommitInProgress is returned while a save of the same draft is running
	ErrCommitInProgress = errors.New("a save is already in progress")
	// ErrDraftPending is returned when a rule list is changed on the router
	// while a reorder of the same list is staged
	ErrDraftPending = errors.New("save or cancel the pending rule order first")
	// ErrRuleExists godoc
	ErrRuleExists = errors.New("rule number already in use")
	// ErrRuleNotFound godoc
	ErrRuleNotFound = errors.New("rule not found")
	// ErrMissingSession is returned when a request carries no session id
	ErrMissingSession = errors.New("session id is required")
)

// DashboardStore persists dashboard layouts
type DashboardStore interface {
	GetDashboardCards(dashboard string) ([]model.DashboardCard, error)
	SaveDashboardCards(dashboard string, cards []model.DashboardCard) error
}

// Service structure
type Service struct {
	repo         DashboardStore
	api          vyos.API
	cache        configcache.Cache
	cacheTTL     time.Duration
	fetchTimeout time.Duration
	fetches      singleflight.Group
	// generations of each cache key, bumped on every invalidation so a fetch
	// started before a change never writes its result back to the cache
	generations map[string]uint64
	cacheLock   *sync.Mutex
	sessions    map[string]*Session
	lock        *sync.Mutex
	now         func() time.Time
}

// NewService creates a new service. fetchTimeout bounds the configuration
// API fetches shared between sessions.
func NewService(repo DashboardStore, api vyos.API, cache configcache.Cache, cacheTTL, fetchTimeout time.Duration) *Service {
	if fetchTimeout <= 0 {
		fetchTimeout = 10 * time.Second
	}
	return &Service{
		repo:         repo,
		api:          api,
		cache:        cache,
		cacheTTL:     cacheTTL,
		fetchTimeout: fetchTimeout,
		generations:  map[string]uint64{},
		cacheLock:    &sync.Mutex{},
		sessions:     map[string]*Session{},
		lock:         &sync.Mutex{},
		now:          time.Now,
	}
}

// session returns the state of a console session, creating it on first use
func (service *Service) session(id string) (*Session, error) {
	if id == "" {
		return nil, ErrMissingSession
	}
	service.lock.Lock()
	defer service.lock.Unlock()

	sess, ok := service.sessions[id]
	if !ok {
		sess = newSession()
		service.sessions[id] = sess
		monitor.ActiveSessions.Set(float64(len(service.sessions)))
	}
	sess.touch(service.now())
	return sess, nil
}

// ExpireSessions drops the drafts of sessions idle for longer than ttl.
// Sessions with a save in flight are kept.
func (service *Service) ExpireSessions(ttl time.Duration) int {
	deadline := service.now().Add(-ttl)

	service.lock.Lock()
	defer service.lock.Unlock()

	expired := 0
	for id, sess := range service.sessions {
		if !sess.idleSince(deadline) {
			continue
		}
		delete(service.sessions, id)
		expired++
	}
	monitor.ActiveSessions.Set(float64(len(service.sessions)))
	if expired > 0 {
		log.Info().Str("section", "service").Str("action", "ExpireSessions").
			Int("expired", expired).Int("active", len(service.sessions)).
			Msg("Dropped idle console sessions")
	}
	return expired
}

// FlushConfigCache drops every cached rule list
func (service *Service) FlushConfigCache() error {
	return service.cache.Flush()
}
