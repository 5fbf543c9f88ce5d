package vote

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"unicode"
)

// ErrTargetNotFound 表示展示层中没有这个投票对象
var ErrTargetNotFound = errors.New("找不到投票对象")

// Board 是承载分数与箭头状态的展示层。
// 页面DOM与内存实现都满足这个接口；投票控制器只通过它读写状态。
type Board interface {
	// Snapshot 读取对象当前显示的分数与箭头状态
	Snapshot(t Target) (score int, state State, err error)
	// Commit 写回新的分数与箭头状态
	Commit(t Target, score int, state State) error
}

// ParseScore 按照浏览器 parseInt 的规则解析分数文本：
// 忽略前导空白，允许一个正负号，只读取紧随其后的数字，其余内容忽略。
func ParseScore(text string) (int, error) {
	s := strings.TrimLeftFunc(text, unicode.IsSpace)
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digitsStart := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digitsStart {
		return 0, fmt.Errorf("%w: %q", ErrScoreNotNumeric, text)
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", ErrScoreNotNumeric, text, err)
	}
	return n, nil
}

type boardEntry struct {
	score int
	state State
}

// MemoryBoard 是一个线程安全的内存展示层
type MemoryBoard struct {
	mu      sync.RWMutex
	entries map[Target]boardEntry
}

// NewMemoryBoard 创建一个空的内存展示层
func NewMemoryBoard() *MemoryBoard {
	return &MemoryBoard{entries: make(map[Target]boardEntry)}
}

// Set 注册或覆盖一个投票对象的显示状态
func (b *MemoryBoard) Set(t Target, score int, state State) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries[t] = boardEntry{score: score, state: state}
}

func (b *MemoryBoard) Snapshot(t Target) (int, State, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	e, ok := b.entries[t]
	if !ok {
		return 0, StateNone, fmt.Errorf("%w: %s", ErrTargetNotFound, t)
	}
	return e.score, e.state, nil
}

func (b *MemoryBoard) Commit(t Target, score int, state State) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.entries[t]; !ok {
		return fmt.Errorf("%w: %s", ErrTargetNotFound, t)
	}
	b.entries[t] = boardEntry{score: score, state: state}
	return nil
}
