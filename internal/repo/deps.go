package repo

import (
	"errors"

	"github.com/zeromicro/go-zero/core/stores/sqlx"
)

// Dependencies bundles the shared infrastructure required by the Postgres
// repository implementations.
type Dependencies struct {
	DBConn sqlx.SqlConn
}

// Set exposes strongly typed repositories to application logic.
type Set struct {
	Securities SecurityRepo
	Portfolios PortfolioRepo
}

// New constructs the Postgres-backed repository set.
func New(deps Dependencies) (*Set, error) {
	if deps.DBConn == nil {
		return nil, errors.New("repo: missing DBConn dependency")
	}
	return &Set{
		Securities: newSecurityRepo(deps),
		Portfolios: newPortfolioRepo(deps),
	}, nil
}

// NewMemorySet returns a repository set backed by a single in-process store.
// The store is returned too so callers can seed it.
func NewMemorySet() (*Set, *Memory) {
	mem := NewMemory()
	return &Set{Securities: mem, Portfolios: mem}, mem
}
