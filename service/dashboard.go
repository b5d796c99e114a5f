package service

import (
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
	"github.com/rs/xid"
	"github.com/rs/zerolog/log"

	"gitlab.com/netops-console/vyos_console_api/grid"
	"gitlab.com/netops-console/vyos_console_api/model"
	"gitlab.com/netops-console/vyos_console_api/monitor"
	"gitlab.com/netops-console/vyos_console_api/reorder"
)

// Column sizes of the dashboard_cards table
const (
	MaxIdentifierLength = 64
	MaxTitleLength      = 255
)

// ErrValueTooLong is returned for dashboard names and card fields that do not
// fit their column
var ErrValueTooLong = errors.New("value too long")

func checkLength(field, value string, max int) error {
	if utf8.RuneCountInString(value) > max {
		return errors.Wrapf(ErrValueTooLong, "%s exceeds %d characters", field, max)
	}
	return nil
}

type cardsChange func(cards []model.DashboardCard) ([]model.DashboardCard, bool, error)

func dashboardView(name string, cards []model.DashboardCard, dirty bool) model.Dashboard {
	return model.Dashboard{
		Name:       name,
		Cards:      grid.Sort(cards),
		HasChanges: dirty,
	}
}

// currentCards must be called with the session lock held
func (service *Service) currentCards(d *dashboardDraft, name string) ([]model.DashboardCard, error) {
	if d.Dirty {
		return d.Staged, nil
	}
	cards, err := service.repo.GetDashboardCards(name)
	if err != nil {
		log.Error().Err(err).Str("section", "service").Str("dashboard", name).
			Msg("Unable to load dashboard cards")
		return nil, err
	}
	return cards, nil
}

// GetDashboard returns the staged layout of the dashboard when the session
// has unsaved changes, the saved layout otherwise
func (service *Service) GetDashboard(sessionID, name string) (model.Dashboard, error) {
	sess, err := service.session(sessionID)
	if err != nil {
		return model.Dashboard{}, err
	}
	sess.lock.Lock()
	defer sess.lock.Unlock()

	d := sess.dashboard(name)
	cards, err := service.currentCards(d, name)
	if err != nil {
		return model.Dashboard{}, err
	}
	return dashboardView(name, cards, d.Dirty), nil
}

func (service *Service) stageDashboard(sessionID, name, operation string, change cardsChange) (model.Dashboard, error) {
	if err := checkLength("dashboard name", name, MaxIdentifierLength); err != nil {
		return model.Dashboard{}, err
	}
	sess, err := service.session(sessionID)
	if err != nil {
		return model.Dashboard{}, err
	}
	sess.lock.Lock()
	defer sess.lock.Unlock()

	d := sess.dashboard(name)
	if d.saving {
		return model.Dashboard{}, ErrCommitInProgress
	}
	current, err := service.currentCards(d, name)
	if err != nil {
		return model.Dashboard{}, err
	}

	next, changed, err := change(current)
	monitor.CardPlacements.WithLabelValues(operation, monitor.Result(err)).Inc()
	if err != nil {
		log.Debug().Err(err).Str("section", "service").Str("action", operation).
			Str("dashboard", name).Msg("Card placement rejected")
		return model.Dashboard{}, err
	}
	if changed {
		d.Stage(current, next)
	}
	return dashboardView(name, d.View(current), d.Dirty), nil
}

// AddCard stages a new card. Without a requested column the card takes the
// first free slot of the grid.
func (service *Service) AddCard(sessionID, name string, req model.AddCardRequest) (model.Dashboard, error) {
	card := model.DashboardCard{
		ID:     strings.TrimSpace(req.ID),
		Title:  strings.TrimSpace(req.Title),
		Widget: req.Widget,
		Span:   req.Span,
	}
	if card.ID == "" {
		card.ID = xid.New().String()
	}
	if card.Span == 0 {
		card.Span = 1
	}
	for _, err := range []error{
		checkLength("card id", card.ID, MaxIdentifierLength),
		checkLength("card title", card.Title, MaxTitleLength),
		checkLength("card widget", card.Widget, MaxIdentifierLength),
	} {
		if err != nil {
			return model.Dashboard{}, err
		}
	}

	return service.stageDashboard(sessionID, name, "add", func(cards []model.DashboardCard) ([]model.DashboardCard, bool, error) {
		next, _, err := grid.Place(cards, card, req.Column)
		return next, err == nil, err
	})
}

// DropCard stages the outcome of dragging a card over another card or over
// an empty column region
func (service *Service) DropCard(sessionID, name, cardID string, req model.DropCardRequest) (model.Dashboard, error) {
	target := grid.DropTarget{CardID: req.OverCard, Column: req.Column}
	return service.stageDashboard(sessionID, name, "drop", func(cards []model.DashboardCard) ([]model.DashboardCard, bool, error) {
		return grid.Drop(cards, cardID, target)
	})
}

// ResizeCard godoc
func (service *Service) ResizeCard(sessionID, name, cardID string, span int) (model.Dashboard, error) {
	return service.stageDashboard(sessionID, name, "resize", func(cards []model.DashboardCard) ([]model.DashboardCard, bool, error) {
		return grid.Resize(cards, cardID, span)
	})
}

// RemoveCard godoc
func (service *Service) RemoveCard(sessionID, name, cardID string) (model.Dashboard, error) {
	return service.stageDashboard(sessionID, name, "remove", func(cards []model.DashboardCard) ([]model.DashboardCard, bool, error) {
		next, err := grid.Remove(cards, cardID)
		return next, err == nil, err
	})
}

// SaveDashboard persists the staged layout. A failed save keeps the draft
// so the user can retry or cancel.
func (service *Service) SaveDashboard(sessionID, name string) (model.Dashboard, error) {
	sess, err := service.session(sessionID)
	if err != nil {
		return model.Dashboard{}, err
	}

	sess.lock.Lock()
	d := sess.dashboard(name)
	if d.saving {
		sess.lock.Unlock()
		return model.Dashboard{}, ErrCommitInProgress
	}
	if !d.Dirty {
		defer sess.lock.Unlock()
		cards, err := service.currentCards(d, name)
		if err != nil {
			return model.Dashboard{}, err
		}
		return dashboardView(name, cards, false), nil
	}
	staged := reorder.Clone(d.Staged)
	if err := grid.Validate(staged); err != nil {
		sess.lock.Unlock()
		return model.Dashboard{}, err
	}
	d.saving = true
	sess.lock.Unlock()

	err = service.repo.SaveDashboardCards(name, staged)

	sess.lock.Lock()
	defer sess.lock.Unlock()
	d.saving = false
	monitor.DashboardSaves.WithLabelValues(monitor.Result(err)).Inc()
	if err != nil {
		log.Error().Err(err).Str("section", "service").Str("action", "SaveDashboard").
			Str("dashboard", name).Int("cards", len(staged)).
			Msg("Unable to save dashboard layout")
		return model.Dashboard{}, err
	}
	d.Reset()
	return dashboardView(name, staged, false), nil
}

// CancelDashboard discards the staged layout and returns the saved one
func (service *Service) CancelDashboard(sessionID, name string) (model.Dashboard, error) {
	sess, err := service.session(sessionID)
	if err != nil {
		return model.Dashboard{}, err
	}
	sess.lock.Lock()
	defer sess.lock.Unlock()

	d := sess.dashboard(name)
	if d.saving {
		return model.Dashboard{}, ErrCommitInProgress
	}
	d.Reset()
	cards, err := service.currentCards(d, name)
	if err != nil {
		return model.Dashboard{}, err
	}
	return dashboardView(name, cards, false), nil
}
