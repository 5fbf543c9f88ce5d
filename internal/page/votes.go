package page

import (
	"fmt"
	"strconv"

	"github.com/PuerkitoBio/goquery"
	"github.com/SlpAus/discussion-enhancer/internal/vote"
)

const (
	classUpvoted   = "upvoted"
	classDownvoted = "downvoted"
)

// VoteEntry 是页面上一个投票对象的当前显示
type VoteEntry struct {
	Target vote.Target
	Score  int
	State  vote.State
}

func (d *Document) voteContainer(t vote.Target) (*goquery.Selection, error) {
	sel := d.doc.Find("[data-what-type][data-what-id]")
	sel = filterAttr(filterAttr(sel, "data-what-type", string(t.WhatType)), "data-what-id", t.WhatID).First()
	if sel.Length() == 0 {
		return nil, fmt.Errorf("%w: %s", vote.ErrTargetNotFound, t)
	}
	return sel, nil
}

// scoreElement 按对象类型定位分数元素
func scoreElement(container *goquery.Selection, t vote.Target) (*goquery.Selection, error) {
	var score *goquery.Selection
	switch t.WhatType {
	case vote.WhatSubmission:
		score = container.Find("div.score").First()
	case vote.WhatComment:
		media := container.Parent().Parent()
		score = media.Find("div.media-body").First().Find("a.score").First()
	default:
		return nil, fmt.Errorf("%w: 未知的对象类型 %q", vote.ErrInvalidTarget, t.WhatType)
	}
	if score.Length() == 0 {
		return nil, fmt.Errorf("%w: %s 的分数", ErrNotFound, t)
	}
	return score, nil
}

func arrows(container *goquery.Selection) (up, down *goquery.Selection) {
	up = container.Find(`[title="upvote"]`).First()
	down = container.Find(`[title="downvote"]`).First()
	return up, down
}

func readEntry(container *goquery.Selection, t vote.Target) (VoteEntry, error) {
	scoreSel, err := scoreElement(container, t)
	if err != nil {
		return VoteEntry{}, err
	}
	score, err := vote.ParseScore(scoreSel.Text())
	if err != nil {
		return VoteEntry{}, err
	}
	up, down := arrows(container)
	return VoteEntry{
		Target: t,
		Score:  score,
		State:  vote.StateFromFlags(up.HasClass(classUpvoted), down.HasClass(classDownvoted)),
	}, nil
}

// Snapshot 读取投票对象当前显示的分数与箭头状态
func (d *Document) Snapshot(t vote.Target) (int, vote.State, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	container, err := d.voteContainer(t)
	if err != nil {
		return 0, vote.StateNone, err
	}
	e, err := readEntry(container, t)
	if err != nil {
		return 0, vote.StateNone, err
	}
	return e.Score, e.State, nil
}

// Commit 写回分数文本，并按状态设置箭头上的类名
func (d *Document) Commit(t vote.Target, score int, state vote.State) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	container, err := d.voteContainer(t)
	if err != nil {
		return err
	}
	scoreSel, err := scoreElement(container, t)
	if err != nil {
		return err
	}

	scoreSel.SetText(strconv.Itoa(score))

	upvoted, downvoted := state.Flags()
	up, down := arrows(container)
	setClass(up, classUpvoted, upvoted)
	setClass(down, classDownvoted, downvoted)
	return nil
}

func setClass(sel *goquery.Selection, class string, on bool) {
	if on {
		sel.AddClass(class)
	} else {
		sel.RemoveClass(class)
	}
}

// Votes 列出页面上所有可以解析的投票对象，按文档顺序排列
func (d *Document) Votes() []VoteEntry {
	d.mu.Lock()
	defer d.mu.Unlock()

	var entries []VoteEntry
	d.doc.Find("[data-what-type][data-what-id]").Each(func(_ int, s *goquery.Selection) {
		what, _ := s.Attr("data-what-type")
		id, _ := s.Attr("data-what-id")
		e, err := readEntry(s, vote.Target{WhatType: vote.WhatType(what), WhatID: id})
		if err != nil {
			return
		}
		entries = append(entries, e)
	})
	return entries
}
