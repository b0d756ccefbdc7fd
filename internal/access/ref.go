// Package access decides board ownership and membership for a request
// principal. Resources are read-only projections fetched on demand from
// the board service; nothing here is cached across checks.
package access

import (
	"context"
	"errors"
)

// ErrNotFound is returned by fetchers for missing entities. The checker
// treats it as "deny", never as a request failure.
var ErrNotFound = errors.New("access: entity not found")

// Board is the projection the permission predicates evaluate against.
type Board struct {
	ID      int64    `json:"id"`
	OwnerID string   `json:"owner"`
	Members []string `json:"members"`
}

// List belongs to a board.
type List struct {
	ID      int64 `json:"id"`
	BoardID int64 `json:"board"`
}

// Card belongs to a list.
type Card struct {
	ID     int64 `json:"id"`
	ListID int64 `json:"list"`
}

type refKind int

const (
	kindUnresolved refKind = iota
	kindEmbedded
	kindBoard
	kindList
	kindCard
)

// Ref is a tagged reference to the resource a check targets. The tag
// determines how many lookups resolution needs: an embedded board none,
// a board id one, a list or card two (list→board). The zero value is
// Unresolved and always denies.
type Ref struct {
	kind  refKind
	id    int64
	board *Board
}

// EmbeddedRef wraps a board the caller already holds, skipping lookups.
func EmbeddedRef(b *Board) Ref {
	if b == nil {
		return Ref{}
	}
	return Ref{kind: kindEmbedded, board: b}
}

func BoardRef(id int64) Ref {
	return Ref{kind: kindBoard, id: id}
}

func ListRef(id int64) Ref {
	return Ref{kind: kindList, id: id}
}

// CardRef targets a card through the list id the card projection carries.
func CardRef(c Card) Ref {
	return Ref{kind: kindCard, id: c.ListID}
}

// Fetcher resolves boards and lists from the external board service.
// Implementations must honor ctx cancellation; lookups are sequential
// because each depends on the previous result.
type Fetcher interface {
	Board(ctx context.Context, id int64) (*Board, error)
	List(ctx context.Context, id int64) (*List, error)
}
