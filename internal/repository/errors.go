package repository

import "errors"

var (
	ErrNotFound = errors.New("not found")

	// ユニーク制約違反。冪等判定に使う。
	ErrDuplicate = errors.New("duplicate")
)
