// ABOUTME: Charm KV gateway client built on the transactional Do API
// ABOUTME: Opens the area database per operation so CLI and MCP processes can share it

package charm

import (
	"os"

	"github.com/charmbracelet/charm/kv"
)

const (
	// DBName is the Charm KV database holding area records.
	DBName = "acreage"

	// DefaultCharmHost is used when neither config nor CHARM_HOST names a server.
	DefaultCharmHost = "charm.2389.dev"

	// AreaPrefix namespaces area records in the key space.
	AreaPrefix = "area:"
)

// Client is the Charm KV area gateway. It holds no connection; every call
// opens the database, runs one transaction and closes it again.
type Client struct {
	dbName   string
	autoSync bool
}

// Config holds client configuration options.
type Config struct {
	CharmHost string
	// AutoSync pushes to the Charm server after every write.
	AutoSync bool
}

// DefaultConfig honours CHARM_HOST and syncs after writes.
func DefaultConfig() *Config {
	host := os.Getenv("CHARM_HOST")
	if host == "" {
		host = DefaultCharmHost
	}
	return &Config{CharmHost: host, AutoSync: true}
}

// NewClient points the Charm libraries at cfg.CharmHost and returns a gateway.
func NewClient(cfg *Config) (*Client, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	host := cfg.CharmHost
	if host == "" {
		host = DefaultCharmHost
	}
	// kv reads the server from the environment when it first connects
	if err := os.Setenv("CHARM_HOST", host); err != nil {
		return nil, err
	}
	return &Client{dbName: DBName, autoSync: cfg.AutoSync}, nil
}

// NewTestClient returns a gateway on a local-only database that never syncs.
func NewTestClient(dbName string) (*Client, error) {
	return &Client{dbName: dbName}, nil
}

// read runs fn in a read-only transaction.
func (c *Client) read(fn func(k *kv.KV) error) error {
	return kv.DoReadOnly(c.dbName, fn)
}

// write runs fn in a write transaction and syncs afterwards when enabled.
// A failed fn skips the sync.
func (c *Client) write(fn func(k *kv.KV) error) error {
	return kv.Do(c.dbName, func(k *kv.KV) error {
		if err := fn(k); err != nil {
			return err
		}
		if c.autoSync {
			return k.Sync()
		}
		return nil
	})
}

// Sync pulls and pushes changes with the Charm server.
func (c *Client) Sync() error {
	return kv.Do(c.dbName, func(k *kv.KV) error {
		return k.Sync()
	})
}

// Reset deletes every key in the database, areas of all owners included.
func (c *Client) Reset() error {
	return kv.Do(c.dbName, func(k *kv.KV) error {
		return k.Reset()
	})
}

// Close is a no-op; connections never outlive a call.
func (c *Client) Close() error {
	return nil
}
