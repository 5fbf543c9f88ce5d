package comment

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePoster struct {
	body  string
	err   error
	refs  []string
	forms []url.Values
}

func (p *fakePoster) PostForm(_ context.Context, ref string, form url.Values, out any) error {
	p.refs = append(p.refs, ref)
	p.forms = append(p.forms, form)
	if p.err != nil {
		return p.err
	}
	return json.Unmarshal([]byte(p.body), out)
}

// fakeHost 是只记录状态的展示层
type fakeHost struct {
	drafts    map[Parent]Draft
	responses map[Parent]string
	forms     map[Parent]bool // 值为是否可见
	injected  int
}

func newFakeHost() *fakeHost {
	return &fakeHost{
		drafts:    make(map[Parent]Draft),
		responses: make(map[Parent]string),
		forms:     make(map[Parent]bool),
	}
}

func (h *fakeHost) Draft(p Parent) (Draft, error) {
	d, ok := h.drafts[p]
	if !ok {
		return Draft{}, ErrFormNotFound
	}
	return d, nil
}

func (h *fakeHost) ShowResponse(p Parent, msg string) error {
	h.responses[p] = msg
	return nil
}

func (h *fakeHost) HasForm(p Parent) (bool, error) {
	_, ok := h.forms[p]
	return ok, nil
}

func (h *fakeHost) InjectForm(p Parent) error {
	h.injected++
	h.forms[p] = true
	return nil
}

func (h *fakeHost) FormVisible(p Parent) (bool, error) {
	return h.forms[p], nil
}

func (h *fakeHost) SetFormVisible(p Parent, visible bool) error {
	h.forms[p] = visible
	return nil
}

var post = Parent{Type: ParentSubmission, ID: "7"}

func TestHandleCommentSubmit_PostsForm(t *testing.T) {
	poster := &fakePoster{body: `{"msg": "Your comment has been posted."}`}
	c := NewController(poster, "", nil)

	resp, err := c.HandleCommentSubmit(context.Background(), Draft{Parent: post, Content: "hello"})
	require.NoError(t, err)
	assert.Equal(t, "Your comment has been posted.", resp.Msg)

	require.Len(t, poster.forms, 1)
	assert.Equal(t, DefaultAction, poster.refs[0])
	assert.Equal(t, "submission", poster.forms[0].Get("parentType"))
	assert.Equal(t, "7", poster.forms[0].Get("parentId"))
	assert.Equal(t, "hello", poster.forms[0].Get("commentContent"))
}

func TestHandleCommentSubmit_UsesFormAction(t *testing.T) {
	poster := &fakePoster{body: `{}`}
	c := NewController(poster, "", nil)

	_, err := c.HandleCommentSubmit(context.Background(), Draft{Action: "/r/go/comment/", Parent: post})
	require.NoError(t, err)
	assert.Equal(t, "/r/go/comment/", poster.refs[0])
}

func TestHandleCommentSubmit_InvalidParent(t *testing.T) {
	poster := &fakePoster{}
	c := NewController(poster, "", nil)

	_, err := c.HandleCommentSubmit(context.Background(), Draft{Parent: Parent{Type: "thread", ID: "1"}})
	assert.ErrorIs(t, err, ErrInvalidParent)
	_, err = c.HandleCommentSubmit(context.Background(), Draft{Parent: Parent{Type: ParentComment}})
	assert.ErrorIs(t, err, ErrInvalidParent)
	assert.Empty(t, poster.forms)
}

func TestSubmit_ShowsMessage(t *testing.T) {
	host := newFakeHost()
	host.drafts[post] = Draft{Parent: post, Content: "hi"}
	c := NewController(&fakePoster{body: `{"msg": "You have to write something."}`}, "", nil)

	resp, err := c.Submit(context.Background(), host, post)
	require.NoError(t, err)
	assert.Equal(t, "You have to write something.", resp.Msg)
	assert.Equal(t, "You have to write something.", host.responses[post])
}

func TestSubmit_NoMessageNoFeedback(t *testing.T) {
	host := newFakeHost()
	host.drafts[post] = Draft{Parent: post, Content: "hi"}
	c := NewController(&fakePoster{body: `{}`}, "", nil)

	_, err := c.Submit(context.Background(), host, post)
	require.NoError(t, err)
	assert.Empty(t, host.responses)
}

func TestSubmit_TransportErrorNoFeedback(t *testing.T) {
	host := newFakeHost()
	host.drafts[post] = Draft{Parent: post, Content: "hi"}
	boom := errors.New("timeout")
	c := NewController(&fakePoster{err: boom}, "", nil)

	_, err := c.Submit(context.Background(), host, post)
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, host.responses)
}

func TestSubmit_MissingForm(t *testing.T) {
	poster := &fakePoster{}
	c := NewController(poster, "", nil)

	_, err := c.Submit(context.Background(), newFakeHost(), post)
	assert.ErrorIs(t, err, ErrFormNotFound)
	assert.Empty(t, poster.forms)
}

func TestToggleReply(t *testing.T) {
	host := newFakeHost()
	p := Parent{Type: ParentComment, ID: "12"}

	action, err := ToggleReply(host, p)
	require.NoError(t, err)
	assert.Equal(t, ReplyInjected, action)

	action, err = ToggleReply(host, p)
	require.NoError(t, err)
	assert.Equal(t, ReplyHidden, action)

	action, err = ToggleReply(host, p)
	require.NoError(t, err)
	assert.Equal(t, ReplyShown, action)

	assert.Equal(t, 1, host.injected)
	assert.True(t, host.forms[p])
}

func TestToggleReply_InvalidParent(t *testing.T) {
	_, err := ToggleReply(newFakeHost(), Parent{Type: ParentComment})
	assert.ErrorIs(t, err, ErrInvalidParent)
}
