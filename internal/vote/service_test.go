package vote

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePoster 依次返回预置的响应体，并记录每次提交的表单
type fakePoster struct {
	mu        sync.Mutex
	responses []string
	err       error
	calls     []url.Values
	refs      []string
}

func (p *fakePoster) PostForm(_ context.Context, ref string, form url.Values, out any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, form)
	p.refs = append(p.refs, ref)
	if p.err != nil {
		return p.err
	}
	body := p.responses[0]
	p.responses = p.responses[1:]
	return json.Unmarshal([]byte(body), out)
}

func newBoard(t Target, score int, state State) *MemoryBoard {
	b := NewMemoryBoard()
	b.Set(t, score, state)
	return b
}

var sub = Target{WhatType: WhatSubmission, WhatID: "7"}

func TestHandleVote_AppliesDiffAndToggle(t *testing.T) {
	poster := &fakePoster{responses: []string{`{"error": null, "voteDiff": 1}`}}
	board := newBoard(sub, 10, StateNone)
	c := NewController(poster, "", nil)

	res, err := c.HandleVote(context.Background(), board, sub, Up)
	require.NoError(t, err)

	assert.True(t, res.Applied)
	assert.Equal(t, 11, res.Score)
	assert.Equal(t, StateUpvoted, res.State)
	assert.Equal(t, 1, res.VoteDiff)

	score, state, err := board.Snapshot(sub)
	require.NoError(t, err)
	assert.Equal(t, 11, score)
	assert.Equal(t, StateUpvoted, state)

	require.Len(t, poster.calls, 1)
	assert.Equal(t, DefaultEndpoint, poster.refs[0])
	assert.Equal(t, "submission", poster.calls[0].Get("what"))
	assert.Equal(t, "7", poster.calls[0].Get("what_id"))
	assert.Equal(t, "1", poster.calls[0].Get("vote_value"))
}

func TestHandleVote_UpWhileDownvoted(t *testing.T) {
	poster := &fakePoster{responses: []string{`{"error": null, "voteDiff": 2}`}}
	board := newBoard(sub, 3, StateDownvoted)
	c := NewController(poster, "", nil)

	res, err := c.HandleVote(context.Background(), board, sub, Up)
	require.NoError(t, err)
	assert.Equal(t, 5, res.Score)
	assert.Equal(t, StateUpvoted, res.State)
}

func TestHandleVote_ServerErrorLeavesBoard(t *testing.T) {
	poster := &fakePoster{responses: []string{`{"error": "nope", "voteDiff": 1}`}}
	board := newBoard(sub, 10, StateNone)
	c := NewController(poster, "", nil)

	_, err := c.HandleVote(context.Background(), board, sub, Up)
	assert.ErrorIs(t, err, ErrRejected)

	score, state, _ := board.Snapshot(sub)
	assert.Equal(t, 10, score)
	assert.Equal(t, StateNone, state)
}

func TestHandleVote_TransportErrorLeavesBoard(t *testing.T) {
	boom := errors.New("connection refused")
	poster := &fakePoster{err: boom}
	board := newBoard(sub, 10, StateUpvoted)
	c := NewController(poster, "", nil)

	_, err := c.HandleVote(context.Background(), board, sub, Down)
	assert.ErrorIs(t, err, boom)

	score, state, _ := board.Snapshot(sub)
	assert.Equal(t, 10, score)
	assert.Equal(t, StateUpvoted, state)
}

func TestHandleVote_InvalidInputSendsNothing(t *testing.T) {
	poster := &fakePoster{}
	board := newBoard(sub, 0, StateNone)
	c := NewController(poster, "", nil)

	_, err := c.HandleVote(context.Background(), board, Target{WhatType: "thread", WhatID: "7"}, Up)
	assert.ErrorIs(t, err, ErrInvalidTarget)

	_, err = c.HandleVote(context.Background(), board, sub, Direction(2))
	assert.Error(t, err)

	_, err = c.HandleVote(context.Background(), board, Target{WhatType: WhatComment, WhatID: "99"}, Up)
	assert.ErrorIs(t, err, ErrTargetNotFound)

	assert.Empty(t, poster.calls)
}

func TestHandleClick_NonVoteLabelIsNoop(t *testing.T) {
	poster := &fakePoster{}
	board := newBoard(sub, 4, StateDownvoted)
	c := NewController(poster, "", nil)

	res, err := c.HandleClick(context.Background(), board, sub, "reply")
	require.NoError(t, err)
	assert.False(t, res.Applied)
	assert.Empty(t, poster.calls)

	score, state, _ := board.Snapshot(sub)
	assert.Equal(t, 4, score)
	assert.Equal(t, StateDownvoted, state)
}

func TestHandleClick_CustomEndpoint(t *testing.T) {
	poster := &fakePoster{responses: []string{`{"error": null, "voteDiff": -1}`}}
	board := newBoard(sub, 1, StateNone)
	c := NewController(poster, "/api/vote/", nil)

	res, err := c.HandleClick(context.Background(), board, sub, "downvote")
	require.NoError(t, err)
	assert.Equal(t, 0, res.Score)
	assert.Equal(t, StateDownvoted, res.State)
	assert.Equal(t, "/api/vote/", poster.refs[0])
}

// 分数始终等于页面加载时的分数加上所有成功应用的 voteDiff 之和
func TestHandleVote_ScoreIsSumOfAppliedDiffs(t *testing.T) {
	responses := []string{
		`{"error": null, "voteDiff": 1}`,
		`{"error": "rate limited", "voteDiff": 5}`,
		`{"error": null, "voteDiff": -2}`,
		`{"error": null, "voteDiff": 1}`,
		`{"error": null, "voteDiff": -1}`,
	}
	dirs := []Direction{Up, Up, Down, Down, Up}

	poster := &fakePoster{responses: responses}
	board := newBoard(sub, 100, StateNone)
	c := NewController(poster, "", nil)

	applied := 0
	for _, d := range dirs {
		res, err := c.HandleVote(context.Background(), board, sub, d)
		if err != nil {
			continue
		}
		applied += res.VoteDiff
	}

	score, _, _ := board.Snapshot(sub)
	assert.Equal(t, 100+applied, score)
	assert.Equal(t, 99, score)
}
