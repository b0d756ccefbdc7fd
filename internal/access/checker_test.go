package access

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/icebob/kantab-sub001/internal/auth"
)

type fakeFetcher struct {
	boards map[int64]*Board
	lists  map[int64]*List
	calls  int
}

func (f *fakeFetcher) Board(_ context.Context, id int64) (*Board, error) {
	f.calls++
	b, ok := f.boards[id]
	if !ok {
		return nil, ErrNotFound
	}
	return b, nil
}

func (f *fakeFetcher) List(_ context.Context, id int64) (*List, error) {
	f.calls++
	l, ok := f.lists[id]
	if !ok {
		return nil, ErrNotFound
	}
	return l, nil
}

func testFetcher() *fakeFetcher {
	return &fakeFetcher{
		boards: map[int64]*Board{
			1: {ID: 1, OwnerID: "u1", Members: []string{"u1", "u2"}},
		},
		lists: map[int64]*List{
			10: {ID: 10, BoardID: 1},
		},
	}
}

func TestChecker_BoardPredicates(t *testing.T) {
	c := NewChecker(testFetcher())
	ctx := context.Background()

	tests := []struct {
		name       string
		principal  auth.Principal
		wantOwner  bool
		wantMember bool
	}{
		{"owner", auth.Principal{UserID: "u1"}, true, true},
		{"member only", auth.Principal{UserID: "u2"}, false, true},
		{"stranger", auth.Principal{UserID: "u3"}, false, false},
		{"anonymous", auth.Principal{}, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			owner, err := c.IsOwner(ctx, tt.principal, BoardRef(1))
			require.NoError(t, err)
			assert.Equal(t, tt.wantOwner, owner)

			member, err := c.IsMember(ctx, tt.principal, BoardRef(1))
			require.NoError(t, err)
			assert.Equal(t, tt.wantMember, member)
		})
	}
}

func TestChecker_CardResolvesThroughListToBoard(t *testing.T) {
	f := testFetcher()
	c := NewChecker(f)
	ctx := context.Background()

	card := Card{ID: 100, ListID: 10}

	member, err := c.IsMember(ctx, auth.Principal{UserID: "u2"}, CardRef(card))
	require.NoError(t, err)
	assert.True(t, member)

	owner, err := c.IsOwner(ctx, auth.Principal{UserID: "u2"}, CardRef(card))
	require.NoError(t, err)
	assert.False(t, owner)

	// card predicate must agree with the resolved board's predicate
	direct, err := c.IsOwner(ctx, auth.Principal{UserID: "u1"}, BoardRef(1))
	require.NoError(t, err)
	viaCard, err := c.IsOwner(ctx, auth.Principal{UserID: "u1"}, CardRef(card))
	require.NoError(t, err)
	assert.Equal(t, direct, viaCard)
}

func TestChecker_EmbeddedBoardSkipsLookups(t *testing.T) {
	f := testFetcher()
	c := NewChecker(f)

	board := &Board{ID: 7, OwnerID: "u9", Members: []string{"u9"}}
	owner, err := c.IsOwner(context.Background(), auth.Principal{UserID: "u9"}, EmbeddedRef(board))
	require.NoError(t, err)
	assert.True(t, owner)
	assert.Zero(t, f.calls, "embedded board must not hit the fetcher")
}

func TestChecker_UnresolvableDenies(t *testing.T) {
	c := NewChecker(testFetcher())
	ctx := context.Background()
	p := auth.Principal{UserID: "u1"}

	for name, ref := range map[string]Ref{
		"zero ref":      {},
		"missing board": BoardRef(999),
		"missing list":  ListRef(999),
		"embedded nil":  EmbeddedRef(nil),
	} {
		allowed, err := c.IsOwner(ctx, p, ref)
		require.NoError(t, err, name)
		assert.False(t, allowed, name)
	}
}

func TestChecker_ImpersonatorBypass(t *testing.T) {
	c := NewChecker(testFetcher())
	p := auth.Principal{UserID: "ops", Impersonator: true}

	// bypass applies even to unresolvable targets
	allowed, err := c.IsOwner(context.Background(), p, BoardRef(999))
	require.NoError(t, err)
	assert.True(t, allowed)
}

type failingFetcher struct{}

func (failingFetcher) Board(context.Context, int64) (*Board, error) {
	return nil, errors.New("connection refused")
}
func (failingFetcher) List(context.Context, int64) (*List, error) {
	return nil, errors.New("connection refused")
}

func TestChecker_TransportErrorsSurface(t *testing.T) {
	c := NewChecker(failingFetcher{})

	_, err := c.IsOwner(context.Background(), auth.Principal{UserID: "u1"}, BoardRef(1))
	assert.Error(t, err)
}
