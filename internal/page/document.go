// Package page 把HTML页面解析为可修改的DOM，并在其上实现投票展示层与评论表单宿主。
//
// 页面约定：
//   - 投票容器带有 data-what-type 与 data-what-id；容器内 title 为 upvote / downvote 的控件是箭头，
//     当前投票状态以 upvoted / downvoted 类名标在箭头上
//   - 帖子的分数是容器内的 div.score；评论的分数是容器祖父节点下第一个 div.media-body 中的第一个 a.score
//   - 评论表单是 form#commentForm，带 data-parent-type 与 data-parent-id，
//     内含 textarea#commentContent 与 span#postResponse
//   - 回复按钮所在的 div.media-body 带 data-parent-id，新表单插入到第一个 .reply-container 中
package page

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// ErrNotFound 表示页面上缺少某个约定的元素
var ErrNotFound = errors.New("页面元素不存在")

// Option 用于定制 Document
type Option func(*Document)

// WithReplyAction 设置插入的回复表单的提交地址
func WithReplyAction(action string) Option {
	return func(d *Document) {
		d.replyAction = action
	}
}

// Document 是一个加锁保护的页面DOM。
// 所有读写都在锁内完成，并发的修改以最后一次写入为准。
type Document struct {
	mu          sync.Mutex
	doc         *goquery.Document
	replyAction string
}

// Load 从 r 中解析页面
func Load(r io.Reader, opts ...Option) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("无法解析页面: %w", err)
	}
	d := &Document{doc: doc, replyAction: "/post/comment/"}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Parse 从字符串解析页面
func Parse(s string, opts ...Option) (*Document, error) {
	return Load(strings.NewReader(s), opts...)
}

// Render 把当前的DOM写出为HTML
func (d *Document) Render(w io.Writer) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, n := range d.doc.Nodes {
		if err := html.Render(w, n); err != nil {
			return fmt.Errorf("无法输出页面: %w", err)
		}
	}
	return nil
}

// HTML 返回当前DOM的HTML文本
func (d *Document) HTML() (string, error) {
	var buf bytes.Buffer
	if err := d.Render(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// filterAttr 选出 attr 属性值等于 value 的元素
func filterAttr(sel *goquery.Selection, attr, value string) *goquery.Selection {
	return sel.FilterFunction(func(_ int, s *goquery.Selection) bool {
		v, ok := s.Attr(attr)
		return ok && v == value
	})
}
