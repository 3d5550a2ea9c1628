// Package rowactions decides which row actions render inline and which go
// to the overflow menu.
package rowactions

import (
	"sync"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/grid/pkg/types"
)

// Layout is the split of a row's visible actions.
type Layout[T any] struct {
	Inline   []types.RowAction[T]
	Overflow []types.RowAction[T]
}

// Planner splits actions against a maximum inline count. When more than
// max actions ask to render inline, the configuration is treated as an
// error: every action moves to the overflow menu and a warning is logged
// once.
type Planner[T any] struct {
	actions []types.RowAction[T]
	max     int
	logger  *zap.Logger
	warn    sync.Once
}

// NewPlanner returns a planner. A negative limit selects
// types.DefaultMaxInlineActions. A nil logger disables the warning.
func NewPlanner[T any](actions []types.RowAction[T], limit int, logger *zap.Logger) *Planner[T] {
	if limit < 0 {
		limit = types.DefaultMaxInlineActions
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Planner[T]{actions: actions, max: limit, logger: logger}
}

// Overflowing reports whether the configuration has too many inline
// actions.
func (p *Planner[T]) Overflowing() bool {
	n := 0
	for _, a := range p.actions {
		if !a.Overflow {
			n++
		}
	}
	return n > p.max
}

// Layout returns the actions visible for row. Hidden actions are dropped.
func (p *Planner[T]) Layout(row T) Layout[T] {
	all := p.Overflowing()
	if all {
		p.warn.Do(func() {
			p.logger.Warn("too many inline row actions, moving all to overflow",
				zap.Int("max", p.max),
				zap.Int("actions", len(p.actions)))
		})
	}
	var out Layout[T]
	for _, a := range p.actions {
		if a.Hidden != nil && a.Hidden(row) {
			continue
		}
		if all || a.Overflow {
			out.Overflow = append(out.Overflow, a)
		} else {
			out.Inline = append(out.Inline, a)
		}
	}
	return out
}
