package queries

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DatabaseConfig structure
type DatabaseConfig struct {
	Host            string
	Port            int
	Username        string
	Password        string
	Name            string
	SSLmode         string `mapstructure:"sslmode"`
	ApplicationName string `mapstructure:"application_name"`
}

// DSN returns the postgres connection string
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s application_name=%s",
		c.Host, c.Port, c.Username, c.Password, c.Name, c.SSLmode, c.ApplicationName)
}

// URL returns the postgres url used by migrations
func (c DatabaseConfig) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s", c.Username, c.Password, c.Host, c.Port, c.Name, c.SSLmode)
}

// DatabaseClusterConfig structure
type DatabaseClusterConfig struct {
	Writer DatabaseConfig `mapstructure:"writer"`
	Reader DatabaseConfig `mapstructure:"reader"`
}

// Repo of the console's own data
type Repo struct {
	Conn       *gorm.DB
	ConnReader *gorm.DB
}

var repo *Repo

// Open connects the writer and reader pools
func Open(cfg DatabaseClusterConfig) (*Repo, error) {
	writer, err := connect(cfg.Writer)
	if err != nil {
		return nil, errors.Wrap(err, "unable to connect to database [WRITER]")
	}
	reader := writer
	if cfg.Reader.Host != "" {
		if reader, err = connect(cfg.Reader); err != nil {
			return nil, errors.Wrap(err, "unable to connect to database [READER]")
		}
	}
	repo = &Repo{Conn: writer, ConnReader: reader}
	return repo, nil
}

func connect(cfg DatabaseConfig) (*gorm.DB, error) {
	return gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
}

// Close the database connections opened by Open
func Close() {
	if repo == nil {
		return
	}
	for _, conn := range []*gorm.DB{repo.Conn, repo.ConnReader} {
		db, err := conn.DB()
		if err != nil {
			continue
		}
		if err := db.Close(); err != nil {
			log.Error().Err(err).Str("section", "queries").Msg("Unable to close database connection")
		}
	}
	repo = nil
}
