package vote

import (
	"errors"
	"fmt"
)

// WhatType 表示投票对象的种类
type WhatType string

const (
	// WhatSubmission 表示对帖子投票
	WhatSubmission WhatType = "submission"
	// WhatComment 表示对评论投票
	WhatComment WhatType = "comment"
)

// Target 定义了一次投票作用的对象，对应页面上 data-what-type / data-what-id 两个属性
type Target struct {
	WhatType WhatType
	WhatID   string
}

func (t Target) String() string {
	return fmt.Sprintf("%s:%s", t.WhatType, t.WhatID)
}

// Validate 检查投票对象是否可以提交给站点
func (t Target) Validate() error {
	switch t.WhatType {
	case WhatSubmission, WhatComment:
	default:
		return fmt.Errorf("%w: 未知的对象类型 %q", ErrInvalidTarget, t.WhatType)
	}
	if t.WhatID == "" {
		return fmt.Errorf("%w: 缺少对象ID", ErrInvalidTarget)
	}
	return nil
}

// Direction 定义了投票方向，数值即提交给站点的 vote_value
type Direction int

const (
	// Up 是赞成票
	Up Direction = 1
	// Down 是反对票
	Down Direction = -1
)

// 投票按钮上的文字标签
const (
	LabelUpvote   = "upvote"
	LabelDownvote = "downvote"
)

func (d Direction) String() string {
	switch d {
	case Up:
		return LabelUpvote
	case Down:
		return LabelDownvote
	}
	return fmt.Sprintf("Direction(%d)", int(d))
}

// ParseDirection 根据按钮标签解析投票方向。
// 除 "upvote" 与 "downvote" 以外的标签都不是投票操作。
func ParseDirection(label string) (Direction, bool) {
	switch label {
	case LabelUpvote:
		return Up, true
	case LabelDownvote:
		return Down, true
	}
	return 0, false
}

// State 是单个投票对象的箭头状态，三种状态互斥
type State int

const (
	StateNone State = iota
	StateUpvoted
	StateDownvoted
)

func (s State) String() string {
	switch s {
	case StateNone:
		return "none"
	case StateUpvoted:
		return "upvoted"
	case StateDownvoted:
		return "downvoted"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// transitions 是箭头状态的转移表。
// 同方向再投一次即取消；反方向投票直接切换。
var transitions = map[State]map[Direction]State{
	StateNone:      {Up: StateUpvoted, Down: StateDownvoted},
	StateUpvoted:   {Up: StateNone, Down: StateDownvoted},
	StateDownvoted: {Up: StateUpvoted, Down: StateNone},
}

// Apply 返回在当前状态下按 d 方向投票后的新状态。
// 未知的状态或方向保持原状态不变。
func (s State) Apply(d Direction) State {
	next, ok := transitions[s][d]
	if !ok {
		return s
	}
	return next
}

// Flags 把状态展开成页面上的两个互斥标记
func (s State) Flags() (upvoted, downvoted bool) {
	return s == StateUpvoted, s == StateDownvoted
}

// StateFromFlags 把页面上的两个标记还原成状态。
// 两个标记同时存在属于异常页面，按无投票处理。
func StateFromFlags(upvoted, downvoted bool) State {
	switch {
	case upvoted && !downvoted:
		return StateUpvoted
	case downvoted && !upvoted:
		return StateDownvoted
	}
	return StateNone
}

// Request 是提交给 /vote/ 的表单
type Request struct {
	What      WhatType
	WhatID    string
	VoteValue Direction
}

// Response 是 /vote/ 返回的JSON结构
type Response struct {
	Error    *string `json:"error"`
	VoteDiff int     `json:"voteDiff"`
}

// Result 描述一次投票操作在页面上产生的效果
type Result struct {
	// Applied 为假表示点击的不是投票按钮，没有发出请求也没有修改页面
	Applied   bool
	Target    Target
	Direction Direction
	VoteDiff  int
	Score     int
	State     State
}

var (
	// ErrInvalidTarget 表示投票对象不完整或类型未知
	ErrInvalidTarget = errors.New("无效的投票对象")
	// ErrRejected 表示站点在响应的 error 字段中拒绝了投票
	ErrRejected = errors.New("站点拒绝了投票")
	// ErrScoreNotNumeric 表示页面上的分数无法解析为整数
	ErrScoreNotNumeric = errors.New("分数不是整数")
)
