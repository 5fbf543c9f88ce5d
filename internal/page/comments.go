package page

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/PuerkitoBio/goquery"
	"github.com/SlpAus/discussion-enhancer/internal/comment"
)

var replyFormTemplate = template.Must(template.New("replyForm").Parse(
	`<form id="commentForm" class="form-horizontal" action="{{.Action}}" data-parent-type="{{.ParentType}}" data-parent-id="{{.ParentID}}">
<fieldset>
<div class="form-group comment-group">
<label for="commentContent" class="col-lg-2 control-label">New comment</label>
<div class="col-lg-10">
<textarea class="form-control" rows="3" id="commentContent"></textarea>
<span id="postResponse" class="text-success" style="display: none"></span>
</div>
</div>
<div class="form-group">
<div class="col-lg-10 col-lg-offset-2">
<button type="submit" class="btn btn-primary">Submit</button>
</div>
</div>
</fieldset>
</form>`))

type replyFormData struct {
	Action     string
	ParentType string
	ParentID   string
}

func (d *Document) form(p comment.Parent) (*goquery.Selection, error) {
	sel := d.doc.Find("form#commentForm")
	sel = filterAttr(filterAttr(sel, "data-parent-type", string(p.Type)), "data-parent-id", p.ID).First()
	if sel.Length() == 0 {
		return nil, fmt.Errorf("%w: %s", comment.ErrFormNotFound, p)
	}
	return sel, nil
}

// Draft 读取表单的提交地址与文本框内容
func (d *Document) Draft(p comment.Parent) (comment.Draft, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	f, err := d.form(p)
	if err != nil {
		return comment.Draft{}, err
	}
	action, _ := f.Attr("action")
	return comment.Draft{
		Action:  action,
		Parent:  p,
		Content: f.Find("textarea#commentContent").First().Text(),
	}, nil
}

// SetContent 填写表单文本框
func (d *Document) SetContent(p comment.Parent, content string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	f, err := d.form(p)
	if err != nil {
		return err
	}
	area := f.Find("textarea#commentContent").First()
	if area.Length() == 0 {
		return fmt.Errorf("%w: %s 的文本框", ErrNotFound, p)
	}
	area.SetText(content)
	return nil
}

// ShowResponse 把提示写入响应标签并移除其内联样式使其可见
func (d *Document) ShowResponse(p comment.Parent, msg string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	f, err := d.form(p)
	if err != nil {
		return err
	}
	label := f.Find("span#postResponse").First()
	if label.Length() == 0 {
		return fmt.Errorf("%w: %s 的响应标签", ErrNotFound, p)
	}
	label.SetText(msg)
	label.RemoveAttr("style")
	return nil
}

// Response 返回响应标签的文字及其是否可见
func (d *Document) Response(p comment.Parent) (string, bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	f, err := d.form(p)
	if err != nil {
		return "", false, err
	}
	label := f.Find("span#postResponse").First()
	if label.Length() == 0 {
		return "", false, fmt.Errorf("%w: %s 的响应标签", ErrNotFound, p)
	}
	_, hidden := label.Attr("style")
	return label.Text(), !hidden, nil
}

// HasForm 判断回复对象是否已有表单
func (d *Document) HasForm(p comment.Parent) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	_, err := d.form(p)
	return err == nil, nil
}

// replyContainer 找到回复对象所在的 media-body 及应插入表单的容器
func (d *Document) replyContainer(p comment.Parent) (*goquery.Selection, error) {
	bodies := filterAttr(d.doc.Find("div.media-body[data-parent-id]"), "data-parent-id", p.ID)
	body := bodies.FilterFunction(func(_ int, s *goquery.Selection) bool {
		t, ok := s.Attr("data-parent-type")
		return !ok || t == string(p.Type)
	}).First()
	if body.Length() == 0 {
		return nil, fmt.Errorf("%w: %s 的 media-body", ErrNotFound, p)
	}

	container := body.ChildrenFiltered(".reply-container").First()
	if container.Length() == 0 {
		container = body.Parent().Find(".reply-container").First()
	}
	if container.Length() == 0 {
		return nil, fmt.Errorf("%w: %s 的 reply-container", ErrNotFound, p)
	}
	return container, nil
}

// InjectForm 在回复容器中插入一个新的评论表单，并标记回复对象
func (d *Document) InjectForm(p comment.Parent) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, err := d.form(p); err == nil {
		return fmt.Errorf("%s 已有评论表单", p)
	}
	container, err := d.replyContainer(p)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	err = replyFormTemplate.Execute(&buf, replyFormData{
		Action:     d.replyAction,
		ParentType: string(p.Type),
		ParentID:   p.ID,
	})
	if err != nil {
		return fmt.Errorf("无法渲染回复表单: %w", err)
	}
	container.AppendHtml(buf.String())
	return nil
}

// FormVisible 判断表单是否可见：没有内联样式即为可见
func (d *Document) FormVisible(p comment.Parent) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	f, err := d.form(p)
	if err != nil {
		return false, err
	}
	_, styled := f.Attr("style")
	return !styled, nil
}

// SetFormVisible 通过内联样式显示或隐藏表单
func (d *Document) SetFormVisible(p comment.Parent, visible bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	f, err := d.form(p)
	if err != nil {
		return err
	}
	if visible {
		f.RemoveAttr("style")
	} else {
		f.SetAttr("style", "display: none")
	}
	return nil
}
