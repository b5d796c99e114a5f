package redis

import (
	"errors"

	"github.com/mediocregopher/radix/v3"
	"github.com/rs/zerolog/log"
)

// Config of the redis connection pool
type Config struct {
	Addr     string `mapstructure:"addr"`
	PoolSize int    `mapstructure:"pool_size"`
}

// ErrNotConnected godoc
var ErrNotConnected = errors.New("redis client not connected")

// Client is a thin wrapper over a radix connection pool
type Client struct {
	cfg  Config
	pool *radix.Pool
}

// NewClient godoc
func NewClient(cfg Config) *Client {
	if cfg.PoolSize <= 0 {
		cfg.PoolSize = 10
	}
	return &Client{cfg: cfg}
}

// Connect opens the connection pool
func (c *Client) Connect() error {
	pool, err := radix.NewPool("tcp", c.cfg.Addr, c.cfg.PoolSize)
	if err != nil {
		log.Error().Err(err).Str("section", "redis").Str("addr", c.cfg.Addr).Msg("Unable to connect to redis")
		return err
	}
	c.pool = pool
	log.Debug().Str("section", "redis").Str("addr", c.cfg.Addr).Msg("Connected to redis")
	return nil
}

// Disconnect closes the connection pool
func (c *Client) Disconnect() error {
	if c.pool == nil {
		return nil
	}
	err := c.pool.Close()
	c.pool = nil
	return err
}

// Exec runs a command and decodes the reply into rcv
func (c *Client) Exec(rcv interface{}, cmd, key string, args ...interface{}) error {
	if c.pool == nil {
		return ErrNotConnected
	}
	return c.pool.Do(radix.FlatCmd(rcv, cmd, key, args...))
}

// GetBytes reads a key and reports whether it exists
func (c *Client) GetBytes(key string) ([]byte, bool, error) {
	if c.pool == nil {
		return nil, false, ErrNotConnected
	}
	var data []byte
	mn := radix.MaybeNil{Rcv: &data}
	if err := c.pool.Do(radix.Cmd(&mn, "GET", key)); err != nil {
		return nil, false, err
	}
	if mn.Nil {
		return nil, false, nil
	}
	return data, true, nil
}

// Keys returns every key matching the pattern, using SCAN
func (c *Client) Keys(pattern string) ([]string, error) {
	if c.pool == nil {
		return nil, ErrNotConnected
	}
	scanner := radix.NewScanner(c.pool, radix.ScanOpts{Command: "SCAN", Pattern: pattern})
	var (
		key  string
		keys []string
	)
	for scanner.Next(&key) {
		keys = append(keys, key)
	}
	if err := scanner.Close(); err != nil {
		return nil, err
	}
	return keys, nil
}
