package comment

import (
	"errors"
	"fmt"
	"net/url"
)

// ParentType 表示回复对象的种类
type ParentType string

const (
	ParentSubmission ParentType = "submission"
	ParentComment    ParentType = "comment"
)

// Parent 定义了评论回复的对象，对应表单上的 data-parent-type / data-parent-id
type Parent struct {
	Type ParentType
	ID   string
}

func (p Parent) String() string {
	return fmt.Sprintf("%s:%s", p.Type, p.ID)
}

// Validate 检查回复对象是否完整
func (p Parent) Validate() error {
	switch p.Type {
	case ParentSubmission, ParentComment:
	default:
		return fmt.Errorf("%w: 未知的对象类型 %q", ErrInvalidParent, p.Type)
	}
	if p.ID == "" {
		return fmt.Errorf("%w: 缺少对象ID", ErrInvalidParent)
	}
	return nil
}

// Draft 是一次评论提交的临时内容，提交后即丢弃
type Draft struct {
	// Action 是表单的提交地址，为空时使用控制器的默认地址
	Action  string
	Parent  Parent
	Content string
}

// Form 把草稿编码为提交给站点的表单
func (d Draft) Form() url.Values {
	form := url.Values{}
	form.Set("parentType", string(d.Parent.Type))
	form.Set("parentId", d.Parent.ID)
	form.Set("commentContent", d.Content)
	return form
}

// Response 是评论接口返回的JSON结构
type Response struct {
	Msg string `json:"msg,omitempty"`
}

// ReplyAction 描述点击回复按钮的效果
type ReplyAction int

const (
	// ReplyInjected 表示新插入了一个回复表单
	ReplyInjected ReplyAction = iota + 1
	// ReplyHidden 表示已有的表单被隐藏
	ReplyHidden
	// ReplyShown 表示已有的表单重新显示
	ReplyShown
)

func (a ReplyAction) String() string {
	switch a {
	case ReplyInjected:
		return "injected"
	case ReplyHidden:
		return "hidden"
	case ReplyShown:
		return "shown"
	}
	return fmt.Sprintf("ReplyAction(%d)", int(a))
}

var (
	// ErrInvalidParent 表示回复对象不完整或类型未知
	ErrInvalidParent = errors.New("无效的回复对象")
	// ErrFormNotFound 表示页面上没有对应的评论表单
	ErrFormNotFound = errors.New("找不到评论表单")
)
