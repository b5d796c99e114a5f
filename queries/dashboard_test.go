package queries

import (
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/rs/zerolog/log"
	. "github.com/smartystreets/goconvey/convey"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"gitlab.com/netops-console/vyos_console_api/model"
)

func setupRepo() (*Repo, sqlmock.Sqlmock) {
	logger := log.With().Str("test", "queries").Str("method", "setupRepo").Logger()
	db, mock, err := sqlmock.New()
	if err != nil {
		logger.Fatal().Msgf("can't create sqlmock: %s", err)
	}

	dialector := postgres.New(postgres.Config{
		DSN:                  "postgres-mock",
		DriverName:           "postgres",
		Conn:                 db,
		PreferSimpleProtocol: true,
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		logger.Fatal().Msgf("can't open gorm connection: %s", err)
	}

	return &Repo{Conn: gormDB, ConnReader: gormDB}, mock
}

func TestRepo_GetDashboardCards(t *testing.T) {
	r, mock := setupRepo()

	Convey("it should load the cards of a dashboard", t, func() {
		rows := sqlmock.NewRows([]string{"dashboard", "card_id", "title", "widget", "grid_column", "grid_row", "span"}).
			AddRow("main", "A", "Interfaces", "interfaces", 0, 0, 2).
			AddRow("main", "B", "DHCP leases", "dhcp", 2, 0, 1)
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "dashboard_cards" WHERE dashboard = $1`)).
			WithArgs("main").
			WillReturnRows(rows)

		cards, err := r.GetDashboardCards("main")
		So(err, ShouldBeNil)
		So(cards, ShouldResemble, []model.DashboardCard{
			{Dashboard: "main", ID: "A", Title: "Interfaces", Widget: "interfaces", Column: 0, Position: 0, Span: 2},
			{Dashboard: "main", ID: "B", Title: "DHCP leases", Widget: "dhcp", Column: 2, Position: 0, Span: 1},
		})
		So(mock.ExpectationsWereMet(), ShouldBeNil)
	})

	Convey("it should return an empty list for an unknown dashboard", t, func() {
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "dashboard_cards" WHERE dashboard = $1`)).
			WithArgs("empty").
			WillReturnRows(sqlmock.NewRows([]string{"dashboard", "card_id"}))

		cards, err := r.GetDashboardCards("empty")
		So(err, ShouldBeNil)
		So(cards, ShouldBeEmpty)
	})

	Convey("it should wrap database errors", t, func() {
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "dashboard_cards"`)).
			WillReturnError(errors.New("connection reset"))

		_, err := r.GetDashboardCards("main")
		So(err, ShouldNotBeNil)
		So(err.Error(), ShouldContainSubstring, "connection reset")
	})
}

func TestRepo_SaveDashboardCards(t *testing.T) {
	r, mock := setupRepo()

	Convey("it should replace the cards in one transaction", t, func() {
		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "dashboard_cards" WHERE dashboard = $1`)).
			WithArgs("main").
			WillReturnResult(sqlmock.NewResult(0, 3))
		mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "dashboard_cards"`)).
			WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectCommit()

		err := r.SaveDashboardCards("main", []model.DashboardCard{
			{ID: "A", Column: 0, Position: 0, Span: 2},
			{ID: "B", Column: 2, Position: 0, Span: 1},
		})
		So(err, ShouldBeNil)
		So(mock.ExpectationsWereMet(), ShouldBeNil)
	})

	Convey("saving an empty dashboard only deletes", t, func() {
		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "dashboard_cards"`)).
			WithArgs("main").
			WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectCommit()

		So(r.SaveDashboardCards("main", nil), ShouldBeNil)
		So(mock.ExpectationsWereMet(), ShouldBeNil)
	})

	Convey("a failed insert rolls the transaction back", t, func() {
		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "dashboard_cards"`)).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "dashboard_cards"`)).
			WillReturnError(errors.New("check constraint"))
		mock.ExpectRollback()

		err := r.SaveDashboardCards("main", []model.DashboardCard{{ID: "A", Span: 1}})
		So(err, ShouldNotBeNil)
		So(mock.ExpectationsWereMet(), ShouldBeNil)
	})
}
