package vote

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/SlpAus/discussion-enhancer/internal/platform/logging"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultEndpoint 是站点接收投票的地址
const DefaultEndpoint = "/vote/"

// Poster 是异步POST的抽象，ajax.Client 实现了它
type Poster interface {
	PostForm(ctx context.Context, ref string, form url.Values, out any) error
}

// Controller 负责提交投票并把站点的响应反映到展示层
type Controller struct {
	poster   Poster
	endpoint string
	logger   *zap.Logger
}

// NewController 创建投票控制器，endpoint 为空时使用 /vote/
func NewController(poster Poster, endpoint string, logger *zap.Logger) *Controller {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &Controller{
		poster:   poster,
		endpoint: endpoint,
		logger:   logging.OrNop(logger),
	}
}

// Form 把投票请求编码为表单
func (r Request) Form() url.Values {
	form := url.Values{}
	form.Set("what", string(r.What))
	form.Set("what_id", r.WhatID)
	form.Set("vote_value", strconv.Itoa(int(r.VoteValue)))
	return form
}

// HandleVote 提交一次投票。
// 只有在请求成功且响应的 error 字段为空时才修改展示层：分数加上 voteDiff，箭头状态按转移表切换。
// 任何错误都不会修改展示层。
func (c *Controller) HandleVote(ctx context.Context, board Board, target Target, dir Direction) (Result, error) {
	// 1. 校验投票对象和方向
	if err := target.Validate(); err != nil {
		return Result{}, err
	}
	if dir != Up && dir != Down {
		return Result{}, fmt.Errorf("无效的投票方向: %d", int(dir))
	}

	// 2. 确认展示层中存在这个对象，避免为页面上没有的对象发出请求
	if _, _, err := board.Snapshot(target); err != nil {
		return Result{}, err
	}

	log := c.logger.With(
		zap.String("interaction", uuid.NewString()),
		zap.Stringer("target", target),
		zap.Stringer("direction", dir),
	)

	// 3. 提交投票
	req := Request{What: target.WhatType, WhatID: target.WhatID, VoteValue: dir}
	var resp Response
	if err := c.poster.PostForm(ctx, c.endpoint, req.Form(), &resp); err != nil {
		log.Warn("投票请求失败", zap.Error(err))
		return Result{}, fmt.Errorf("提交投票失败: %w", err)
	}
	if resp.Error != nil {
		log.Warn("站点拒绝了投票", zap.String("error", *resp.Error))
		return Result{}, fmt.Errorf("%w: %s", ErrRejected, *resp.Error)
	}

	// 4. 重新读取当前状态再写回，期间的其他写入以最后一次为准
	score, state, err := board.Snapshot(target)
	if err != nil {
		return Result{}, err
	}
	newScore := score + resp.VoteDiff
	newState := state.Apply(dir)
	if err := board.Commit(target, newScore, newState); err != nil {
		return Result{}, fmt.Errorf("无法更新投票对象 %s: %w", target, err)
	}

	log.Info("投票已生效",
		zap.Int("voteDiff", resp.VoteDiff),
		zap.Int("score", newScore),
		zap.Stringer("state", newState),
	)

	return Result{
		Applied:   true,
		Target:    target,
		Direction: dir,
		VoteDiff:  resp.VoteDiff,
		Score:     newScore,
		State:     newState,
	}, nil
}

// HandleClick 处理对一个带标签控件的点击。
// 标签不是 "upvote" 或 "downvote" 时什么也不做。
func (c *Controller) HandleClick(ctx context.Context, board Board, target Target, label string) (Result, error) {
	dir, ok := ParseDirection(label)
	if !ok {
		c.logger.Debug("忽略非投票控件", zap.String("label", label))
		return Result{}, nil
	}
	return c.HandleVote(ctx, board, target, dir)
}
