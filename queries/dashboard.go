package queries

import (
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"gitlab.com/netops-console/vyos_console_api/model"
)

// GetDashboardCards returns the saved cards of a dashboard in render order
func (repo *Repo) GetDashboardCards(dashboard string) ([]model.DashboardCard, error) {
	cards := make([]model.DashboardCard, 0)
	db := repo.ConnReader.
		Where("dashboard = ?", dashboard).
		Order("grid_row asc, grid_column asc").
		Find(&cards)
	if db.Error != nil {
		return nil, errors.Wrap(db.Error, "unable to load dashboard cards")
	}
	return cards, nil
}

// SaveDashboardCards replaces every card of the dashboard in a single transaction
func (repo *Repo) SaveDashboardCards(dashboard string, cards []model.DashboardCard) error {
	err := repo.Conn.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("dashboard = ?", dashboard).Delete(&model.DashboardCard{}).Error; err != nil {
			return err
		}
		if len(cards) == 0 {
			return nil
		}
		rows := make([]model.DashboardCard, len(cards))
		for i := range cards {
			rows[i] = cards[i]
			rows[i].Dashboard = dashboard
		}
		return tx.Create(&rows).Error
	})
	return errors.Wrap(err, "unable to save dashboard cards")
}
