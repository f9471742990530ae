package repository

import "errors"

var (
	ErrNotFound   = errors.New("resume not found")
	ErrNoDatabase = errors.New("database not configured")
)
