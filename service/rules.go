package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"gitlab.com/netops-console/vyos_console_api/cache/configcache"
	"gitlab.com/netops-console/vyos_console_api/model"
	"gitlab.com/netops-console/vyos_console_api/monitor"
	"gitlab.com/netops-console/vyos_console_api/reorder"
	"gitlab.com/netops-console/vyos_console_api/vyos"
)

// ErrInvalidRuleNumber godoc
var ErrInvalidRuleNumber = errors.New("rule number must be positive")

func ruleListView(rs vyos.RuleSet, rules []model.Rule, dirty bool) model.RuleList {
	if rules == nil {
		rules = []model.Rule{}
	}
	return model.RuleList{
		Kind:       string(rs.Kind),
		Name:       rs.Name,
		Rules:      rules,
		HasChanges: dirty,
	}
}

// fetchRules reads a rule set through the config cache. Concurrent misses
// of the same set share a single call to the configuration API, which runs
// detached from any caller so one cancelled request does not fail the others.
func (service *Service) fetchRules(ctx context.Context, rs vyos.RuleSet) ([]model.Rule, error) {
	key := configcache.RulesKey(string(rs.Kind), rs.Name)

	var cached []model.Rule
	ok, err := service.cache.Get(key, &cached)
	if err != nil {
		log.Warn().Err(err).Str("section", "service").Str("key", key).Msg("Unable to read config cache")
	} else if ok {
		return cached, nil
	}

	ch := service.fetches.DoChan(key, func() (interface{}, error) {
		return service.sharedFetch(rs, key)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			log.Error().Err(res.Err).Str("section", "service").Str("rule_set", rs.String()).
				Msg("Unable to fetch rules")
			return nil, res.Err
		}
		return reorder.Clone(res.Val.([]model.Rule)), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// sharedFetch is the body of a fetch flight. Its result is cached only when
// no invalidation of the key happened while the call was running.
func (service *Service) sharedFetch(rs vyos.RuleSet, key string) ([]model.Rule, error) {
	service.cacheLock.Lock()
	generation := service.generations[key]
	service.cacheLock.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), service.fetchTimeout)
	defer cancel()
	rules, err := service.api.FetchRules(ctx, rs)
	if err != nil {
		return nil, err
	}

	service.cacheLock.Lock()
	defer service.cacheLock.Unlock()
	if service.generations[key] != generation {
		log.Debug().Str("section", "service").Str("key", key).Msg("Fetched rules outdated by a change, not cached")
		return rules, nil
	}
	if err := service.cache.Set(key, rules, service.cacheTTL); err != nil {
		log.Warn().Err(err).Str("section", "service").Str("key", key).Msg("Unable to write config cache")
	}
	return rules, nil
}

// invalidate drops the cached copy of the rule set, detaches any fetch still
// running for it and asks the configuration API to refresh its own cache
// after a change was applied
func (service *Service) invalidate(ctx context.Context, rs vyos.RuleSet) {
	key := configcache.RulesKey(string(rs.Kind), rs.Name)

	service.cacheLock.Lock()
	service.generations[key]++
	service.fetches.Forget(key)
	err := service.cache.Delete(key)
	service.cacheLock.Unlock()
	if err != nil {
		log.Warn().Err(err).Str("section", "service").Str("key", key).Msg("Unable to invalidate config cache")
	}

	if err := service.api.RefreshCache(ctx); err != nil {
		log.Warn().Err(err).Str("section", "service").Str("rule_set", rs.String()).
			Msg("Unable to refresh configuration API cache")
	}
}

// currentRules must be called with the session lock held
func (service *Service) currentRules(ctx context.Context, d *ruleDraft, rs vyos.RuleSet) ([]model.Rule, error) {
	if d.Dirty {
		return d.Staged, nil
	}
	return service.fetchRules(ctx, rs)
}

// GetRules returns the staged order of the rule set when the session has
// one, the order on the router otherwise
func (service *Service) GetRules(ctx context.Context, sessionID, kind, name string) (model.RuleList, error) {
	rs, err := vyos.NewRuleSet(kind, name)
	if err != nil {
		return model.RuleList{}, err
	}
	sess, err := service.session(sessionID)
	if err != nil {
		return model.RuleList{}, err
	}
	sess.lock.Lock()
	defer sess.lock.Unlock()

	d := sess.ruleList(rs.String())
	rules, err := service.currentRules(ctx, d, rs)
	if err != nil {
		return model.RuleList{}, err
	}
	return ruleListView(rs, rules, d.Dirty), nil
}

// StageRuleMove moves the rule numbered source to the place of the rule
// numbered target in the displayed order. Nothing is sent to the router.
func (service *Service) StageRuleMove(ctx context.Context, sessionID, kind, name string, source, target int) (model.RuleList, error) {
	rs, err := vyos.NewRuleSet(kind, name)
	if err != nil {
		return model.RuleList{}, err
	}
	sess, err := service.session(sessionID)
	if err != nil {
		return model.RuleList{}, err
	}
	sess.lock.Lock()
	defer sess.lock.Unlock()

	d := sess.ruleList(rs.String())
	if d.saving {
		return model.RuleList{}, ErrCommitInProgress
	}
	fetched, err := service.currentRules(ctx, d, rs)
	if err != nil {
		return model.RuleList{}, err
	}
	if reorder.StageReorder(&d.Draft, fetched, source, target, reorder.RuleKey) {
		log.Debug().Str("section", "service").Str("action", "StageRuleMove").
			Str("rule_set", rs.String()).Int("source", source).Int("target", target).
			Ints("order", model.RuleNumbers(d.Staged)).Msg("Rule move staged")
	}
	return ruleListView(rs, d.View(fetched), d.Dirty), nil
}

// beginRuleCommit marks the draft as saving and returns the renumbering plan.
// A nil plan means there is nothing to send.
func (service *Service) beginRuleCommit(sess *Session, rs vyos.RuleSet) (*ruleDraft, []model.ReorderEntry, error) {
	sess.lock.Lock()
	defer sess.lock.Unlock()

	d := sess.ruleList(rs.String())
	if d.saving {
		return nil, nil, ErrCommitInProgress
	}
	if !d.Dirty {
		return d, nil, nil
	}
	plan := reorder.Renumber(d.Staged, d.Original)
	if len(plan) == 0 {
		d.Reset()
		return d, nil, nil
	}
	d.saving = true
	return d, plan, nil
}

// CommitRuleOrder sends the staged order to the router, renumbering the rules
// from the smallest number the list had before the first move. On failure the
// staged order is kept so the user can retry or cancel.
func (service *Service) CommitRuleOrder(ctx context.Context, sessionID, kind, name string) (model.RuleList, error) {
	rs, err := vyos.NewRuleSet(kind, name)
	if err != nil {
		return model.RuleList{}, err
	}
	sess, err := service.session(sessionID)
	if err != nil {
		return model.RuleList{}, err
	}

	d, plan, err := service.beginRuleCommit(sess, rs)
	if err != nil {
		return model.RuleList{}, err
	}
	if plan == nil {
		return service.GetRules(ctx, sessionID, kind, name)
	}

	err = service.api.ReorderRules(ctx, rs, plan)
	monitor.RuleOrderCommits.WithLabelValues(string(rs.Kind), monitor.Result(err)).Inc()

	sess.lock.Lock()
	d.saving = false
	if err != nil {
		log.Error().Err(err).Str("section", "service").Str("action", "CommitRuleOrder").
			Str("rule_set", rs.String()).Ints("order", model.RuleNumbers(d.Staged)).
			Msg("Unable to reorder rules")
		sess.lock.Unlock()
		return model.RuleList{}, err
	}
	d.Reset()
	sess.lock.Unlock()

	log.Info().Str("section", "service").Str("action", "CommitRuleOrder").
		Str("rule_set", rs.String()).Int("rules", len(plan)).Msg("Rule order committed")

	service.invalidate(ctx, rs)
	rules, err := service.fetchRules(ctx, rs)
	if err != nil {
		// the router accepted the plan, show what was sent
		return ruleListView(rs, reorder.Apply(plan), false), nil
	}
	return ruleListView(rs, rules, false), nil
}

// CancelRuleOrder discards the staged order and the snapshot taken before
// the first move
func (service *Service) CancelRuleOrder(ctx context.Context, sessionID, kind, name string) (model.RuleList, error) {
	rs, err := vyos.NewRuleSet(kind, name)
	if err != nil {
		return model.RuleList{}, err
	}
	sess, err := service.session(sessionID)
	if err != nil {
		return model.RuleList{}, err
	}
	sess.lock.Lock()
	defer sess.lock.Unlock()

	d := sess.ruleList(rs.String())
	if d.saving {
		return model.RuleList{}, ErrCommitInProgress
	}
	d.Reset()
	rules, err := service.fetchRules(ctx, rs)
	if err != nil {
		return model.RuleList{}, err
	}
	return ruleListView(rs, rules, false), nil
}

// PreviewRuleOrder returns the renumbering plan of the staged order and the
// configuration commands it amounts to
func (service *Service) PreviewRuleOrder(sessionID, kind, name string) (model.ReorderPreview, error) {
	preview := model.ReorderPreview{Plan: []model.ReorderEntry{}, Commands: []string{}}

	rs, err := vyos.NewRuleSet(kind, name)
	if err != nil {
		return preview, err
	}
	sess, err := service.session(sessionID)
	if err != nil {
		return preview, err
	}
	sess.lock.Lock()
	defer sess.lock.Unlock()

	d := sess.ruleList(rs.String())
	if !d.Dirty {
		return preview, nil
	}
	plan := reorder.Renumber(d.Staged, d.Original)
	if len(plan) == 0 {
		return preview, nil
	}
	preview.Plan = plan
	for _, op := range vyos.ReorderOperations(rs, plan) {
		preview.Commands = append(preview.Commands, op.String())
	}
	return preview, nil
}

func nextRuleNumber(rules []model.Rule) int {
	next := 1
	for _, rule := range rules {
		if rule.Number >= next {
			next = rule.Number + 1
		}
	}
	return next
}

func ruleExists(rules []model.Rule, number int) bool {
	return reorder.IndexOf(rules, number, reorder.RuleKey) >= 0
}

// AddRule creates a rule on the router. A rule without a number is appended
// after the last rule of the set.
func (service *Service) AddRule(ctx context.Context, sessionID, kind, name string, rule model.Rule) (model.RuleList, error) {
	return service.changeRules(ctx, sessionID, kind, name, "AddRule", func(rs vyos.RuleSet, rules []model.Rule) ([]vyos.Operation, error) {
		if rule.Number < 0 {
			return nil, ErrInvalidRuleNumber
		}
		if rule.Number == 0 {
			rule.Number = nextRuleNumber(rules)
		}
		if ruleExists(rules, rule.Number) {
			return nil, ErrRuleExists
		}
		return vyos.RuleOperations(rs, rule), nil
	})
}

// DeleteRule removes a rule from the router
func (service *Service) DeleteRule(ctx context.Context, sessionID, kind, name string, number int) (model.RuleList, error) {
	return service.changeRules(ctx, sessionID, kind, name, "DeleteRule", func(rs vyos.RuleSet, rules []model.Rule) ([]vyos.Operation, error) {
		if !ruleExists(rules, number) {
			return nil, ErrRuleNotFound
		}
		return vyos.DeleteRuleOperations(rs, number), nil
	})
}

type rulesChange func(rs vyos.RuleSet, rules []model.Rule) ([]vyos.Operation, error)

// changeRules applies a batch to the router. The rule set must not have a
// staged order, its snapshot would no longer match the router.
func (service *Service) changeRules(ctx context.Context, sessionID, kind, name, action string, change rulesChange) (model.RuleList, error) {
	rs, err := vyos.NewRuleSet(kind, name)
	if err != nil {
		return model.RuleList{}, err
	}
	sess, err := service.session(sessionID)
	if err != nil {
		return model.RuleList{}, err
	}
	sess.lock.Lock()
	defer sess.lock.Unlock()

	d := sess.ruleList(rs.String())
	if d.saving {
		return model.RuleList{}, ErrCommitInProgress
	}
	if d.Dirty {
		return model.RuleList{}, ErrDraftPending
	}

	rules, err := service.fetchRules(ctx, rs)
	if err != nil {
		return model.RuleList{}, err
	}
	ops, err := change(rs, rules)
	if err != nil {
		return model.RuleList{}, err
	}
	if err := service.api.Batch(ctx, ops); err != nil {
		log.Error().Err(err).Str("section", "service").Str("action", action).
			Str("rule_set", rs.String()).Msg("Configuration batch failed")
		return model.RuleList{}, err
	}

	service.invalidate(ctx, rs)
	rules, err = service.fetchRules(ctx, rs)
	if err != nil {
		return model.RuleList{}, err
	}
	return ruleListView(rs, rules, false), nil
}
