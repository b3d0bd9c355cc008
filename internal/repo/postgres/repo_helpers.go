package postgres

import "errors"

var errDBUnavailable = errors.New("db not configured")
