package storage

import (
	"net/url"

	"github.com/pkg/errors"
)

// Config selects the leveldb backend: `memory://` for an in-memory db,
// `file:///path/to/db` for an on-disk one.
type Config struct {
	Scheme string
	Path   string
}

func NewConfigFromString(s string) (*Config, error) {
	u, err := url.Parse(s)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid storage uri: %s", s)
	}

	return NewConfigFromURL(u)
}

func NewConfigFromURL(u *url.URL) (*Config, error) {
	switch u.Scheme {
	case "memory":
		return &Config{Scheme: u.Scheme}, nil
	case "file":
		path := u.Path
		if len(u.Host) > 0 {
			path = u.Host + u.Path
		}
		if len(path) < 1 {
			return nil, errors.Errorf("empty path in storage uri: %s", u.String())
		}
		return &Config{Scheme: u.Scheme, Path: path}, nil
	default:
		return nil, errors.Errorf("unsupported storage scheme: %s", u.Scheme)
	}
}

func (c *Config) String() string {
	u := url.URL{Scheme: c.Scheme, Path: c.Path}
	return u.String()
}
