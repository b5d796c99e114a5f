package service

import (
	"sync"
	"time"

	"gitlab.com/netops-console/vyos_console_api/model"
	"gitlab.com/netops-console/vyos_console_api/reorder"
)

type dashboardDraft struct {
	reorder.Draft[model.DashboardCard]
	saving bool
}

type ruleDraft struct {
	reorder.Draft[model.Rule]
	saving bool
}

// Session is the state of one console session: the staged dashboard layouts
// and rule orders that were not saved yet.
type Session struct {
	// lock guards the drafts, it is held for the whole of a request
	lock       sync.Mutex
	dashboards map[string]*dashboardDraft
	rules      map[string]*ruleDraft

	seenLock sync.Mutex
	lastSeen time.Time
}

func newSession() *Session {
	return &Session{
		dashboards: map[string]*dashboardDraft{},
		rules:      map[string]*ruleDraft{},
	}
}

func (sess *Session) touch(now time.Time) {
	sess.seenLock.Lock()
	sess.lastSeen = now
	sess.seenLock.Unlock()
}

// idleSince reports whether the session was not used after deadline and
// has no request or save running
func (sess *Session) idleSince(deadline time.Time) bool {
	sess.seenLock.Lock()
	lastSeen := sess.lastSeen
	sess.seenLock.Unlock()
	if !lastSeen.Before(deadline) {
		return false
	}

	if !sess.lock.TryLock() {
		return false
	}
	defer sess.lock.Unlock()
	for _, d := range sess.dashboards {
		if d.saving {
			return false
		}
	}
	for _, d := range sess.rules {
		if d.saving {
			return false
		}
	}
	return true
}

// dashboard must be called with the session lock held
func (sess *Session) dashboard(name string) *dashboardDraft {
	d, ok := sess.dashboards[name]
	if !ok {
		d = &dashboardDraft{}
		sess.dashboards[name] = d
	}
	return d
}

// ruleList must be called with the session lock held
func (sess *Session) ruleList(key string) *ruleDraft {
	d, ok := sess.rules[key]
	if !ok {
		d = &ruleDraft{}
		sess.rules[key] = d
	}
	return d
}
