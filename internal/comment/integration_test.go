package comment_test

import (
	"context"
	"testing"

	"github.com/SlpAus/discussion-enhancer/internal/ajax"
	"github.com/SlpAus/discussion-enhancer/internal/comment"
	"github.com/SlpAus/discussion-enhancer/internal/testutil/upstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openThread(t *testing.T, site *upstream.Server, loggedIn bool) *ajax.Client {
	t.Helper()
	client, err := ajax.New(ajax.Options{BaseURL: site.URL})
	require.NoError(t, err)
	t.Cleanup(client.CloseIdleConnections)
	if loggedIn {
		client.SetCookie(upstream.SessionCookie, upstream.Session)
	}
	_, err = client.Get(context.Background(), "/comments/7")
	require.NoError(t, err)
	return client
}

func TestCommentAgainstSite(t *testing.T) {
	site := upstream.New(t, "<html></html>")
	site.AddItem("submission", "7")
	site.AddItem("comment", "12")

	c := comment.NewController(openThread(t, site, true), "", nil)
	ctx := context.Background()

	resp, err := c.HandleCommentSubmit(ctx, comment.Draft{
		Parent:  comment.Parent{Type: comment.ParentComment, ID: "12"},
		Content: "a reply",
	})
	require.NoError(t, err)
	assert.Equal(t, upstream.MsgPosted, resp.Msg)

	resp, err = c.HandleCommentSubmit(ctx, comment.Draft{
		Parent: comment.Parent{Type: comment.ParentSubmission, ID: "7"},
	})
	require.NoError(t, err)
	assert.Equal(t, upstream.MsgEmptyComment, resp.Msg)

	posted := site.Comments()
	require.Len(t, posted, 1)
	assert.Equal(t, "a reply", posted[0].Get("commentContent"))
	assert.Equal(t, "12", posted[0].Get("parentId"))

	for _, r := range site.RequestsTo("/post/comment/") {
		assert.Equal(t, upstream.Token, r.Header.Get(upstream.CSRFHeader))
	}
}

func TestCommentAgainstSite_LoggedOut(t *testing.T) {
	site := upstream.New(t, "<html></html>")
	site.AddItem("submission", "7")

	c := comment.NewController(openThread(t, site, false), "", nil)
	resp, err := c.HandleCommentSubmit(context.Background(), comment.Draft{
		Parent:  comment.Parent{Type: comment.ParentSubmission, ID: "7"},
		Content: "hello",
	})
	require.NoError(t, err)
	assert.Equal(t, upstream.MsgLoginRequired, resp.Msg)
	assert.Empty(t, site.Comments())
}
