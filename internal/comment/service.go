package comment

import (
	"context"
	"fmt"
	"net/url"

	"github.com/SlpAus/discussion-enhancer/internal/platform/logging"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultAction 是评论表单默认的提交地址
const DefaultAction = "/post/comment/"

// Poster 是异步POST的抽象，ajax.Client 实现了它
type Poster interface {
	PostForm(ctx context.Context, ref string, form url.Values, out any) error
}

// FormHost 是承载评论表单的展示层
type FormHost interface {
	// Draft 读取表单的提交地址、回复对象和文本框内容
	Draft(p Parent) (Draft, error)
	// ShowResponse 把站点返回的提示写入表单的响应标签并使其可见
	ShowResponse(p Parent, msg string) error
}

// ReplyHost 是可以插入回复表单的展示层
type ReplyHost interface {
	HasForm(p Parent) (bool, error)
	// InjectForm 插入一个全新的、绑定到 p 的回复表单
	InjectForm(p Parent) error
	FormVisible(p Parent) (bool, error)
	SetFormVisible(p Parent, visible bool) error
}

// Controller 负责提交评论并展示站点返回的提示
type Controller struct {
	poster        Poster
	defaultAction string
	logger        *zap.Logger
}

// NewController 创建评论控制器，defaultAction 为空时使用 /post/comment/
func NewController(poster Poster, defaultAction string, logger *zap.Logger) *Controller {
	if defaultAction == "" {
		defaultAction = DefaultAction
	}
	return &Controller{
		poster:        poster,
		defaultAction: defaultAction,
		logger:        logging.OrNop(logger),
	}
}

// HandleCommentSubmit 把草稿提交到表单地址并返回站点的响应
func (c *Controller) HandleCommentSubmit(ctx context.Context, d Draft) (Response, error) {
	if err := d.Parent.Validate(); err != nil {
		return Response{}, err
	}
	action := d.Action
	if action == "" {
		action = c.defaultAction
	}

	log := c.logger.With(
		zap.String("interaction", uuid.NewString()),
		zap.Stringer("parent", d.Parent),
		zap.String("action", action),
	)

	var resp Response
	if err := c.poster.PostForm(ctx, action, d.Form(), &resp); err != nil {
		log.Warn("评论提交失败", zap.Error(err))
		return Response{}, fmt.Errorf("提交评论失败: %w", err)
	}

	log.Info("评论已提交", zap.String("msg", resp.Msg))
	return resp, nil
}

// Submit 读取页面上的表单并提交。
// 站点返回了 msg 时写入响应标签；没有 msg 时不给任何反馈。
func (c *Controller) Submit(ctx context.Context, host FormHost, p Parent) (Response, error) {
	d, err := host.Draft(p)
	if err != nil {
		return Response{}, err
	}
	resp, err := c.HandleCommentSubmit(ctx, d)
	if err != nil {
		return Response{}, err
	}
	if resp.Msg != "" {
		if err := host.ShowResponse(p, resp.Msg); err != nil {
			return resp, fmt.Errorf("无法显示站点提示: %w", err)
		}
	}
	return resp, nil
}

// ToggleReply 处理回复按钮：没有表单时插入一个，已有表单时切换其可见性。
// 同一个回复对象最多只会有一个表单。
func ToggleReply(host ReplyHost, p Parent) (ReplyAction, error) {
	if err := p.Validate(); err != nil {
		return 0, err
	}

	exists, err := host.HasForm(p)
	if err != nil {
		return 0, err
	}
	if !exists {
		if err := host.InjectForm(p); err != nil {
			return 0, fmt.Errorf("无法插入回复表单: %w", err)
		}
		return ReplyInjected, nil
	}

	visible, err := host.FormVisible(p)
	if err != nil {
		return 0, err
	}
	if err := host.SetFormVisible(p, !visible); err != nil {
		return 0, err
	}
	if visible {
		return ReplyHidden, nil
	}
	return ReplyShown, nil
}
