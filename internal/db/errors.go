package db

import "errors"

// Sentinel errors shared by every driver.
var (
	ErrKeyNotFound       = errors.New("db: key not found")
	ErrIndexNotFound     = errors.New("db: index not found")
	ErrIndexExists       = errors.New("db: index already exists")
	ErrInvalidIndex      = errors.New("db: invalid index definition")
	ErrUnsupportedFilter = errors.New("db: unsupported filter condition")
)

// Command names recorded in Error.Op.
const (
	OpCreateIndex = "FT.CREATE"
	OpDropIndex   = "FT.DROPINDEX"
	OpIndexInfo   = "FT.INFO"
	OpSearch      = "FT.SEARCH"
	OpDel         = "DEL"
	OpHGetAll     = "HGETALL"
	OpHSetNX      = "HSETNX"
	OpScan        = "SCAN"
)

// Error is a failed database command. Not-found conditions are reported with the
// sentinels above instead.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return "db: " + e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }
