// Package upstream 提供一个用于测试的讨论站点替身，
// 它按照站点的真实规则响应 /vote/ 与 /post/comment/，并记录收到的每个请求。
package upstream

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
)

const (
	CSRFCookie    = "csrftoken"
	CSRFHeader    = "X-CSRFToken"
	SessionCookie = "sessionid"

	// Token 是替身在页面响应中下发的CSRF令牌
	Token = "test-csrf-token"
	// Session 是替身认可的登录会话
	Session = "logged-in"
)

// 评论接口返回的提示文字
const (
	MsgLoginRequired = "You need to log in to post new comments."
	MsgEmptyComment  = "You have to write something."
	MsgPosted        = "Your comment has been posted."
)

// Recorded 是替身收到的一次请求
type Recorded struct {
	Method string
	Path   string
	Header http.Header
	Form   url.Values
}

type voteKey struct {
	what string
	id   string
}

// Server 是测试用的站点替身
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	requests []Recorded
	votes    map[voteKey]int
	items    map[voteKey]bool
	comments []url.Values
	page     string

	// VoteError 非空时 /vote/ 返回 {"error": VoteError}
	VoteError string
	// SkipCSRFCheck 关闭令牌校验，用于观察客户端行为
	SkipCSRFCheck bool
}

// New 启动替身并在测试结束时关闭。page 是 GET /comments/:id 返回的HTML。
func New(t testing.TB, page string) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	s := &Server{
		votes: make(map[voteKey]int),
		items: make(map[voteKey]bool),
		page:  page,
	}

	r := gin.New()
	r.Use(s.record())
	r.GET("/comments/:id", s.thread)
	r.POST("/vote/", s.requireCSRF(), s.vote)
	r.POST("/post/comment/", s.requireCSRF(), s.postComment)
	r.NoRoute(func(c *gin.Context) {
		if c.Request.URL.Path == "/vote/" || c.Request.URL.Path == "/post/comment/" {
			c.Status(http.StatusMethodNotAllowed)
			return
		}
		c.Status(http.StatusNotFound)
	})

	s.Server = httptest.NewServer(r)
	t.Cleanup(s.Close)
	return s
}

// AddItem 登记一个可以被投票或回复的对象
func (s *Server) AddItem(what, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[voteKey{what, id}] = true
}

// SetVote 预置当前用户在某个对象上的已有投票
func (s *Server) SetVote(what, id string, value int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.votes[voteKey{what, id}] = value
}

// Requests 返回收到的请求副本
func (s *Server) Requests() []Recorded {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Recorded, len(s.requests))
	copy(out, s.requests)
	return out
}

// RequestsTo 返回发往指定路径的请求
func (s *Server) RequestsTo(path string) []Recorded {
	var out []Recorded
	for _, r := range s.Requests() {
		if r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

// Comments 返回成功发布的评论表单
func (s *Server) Comments() []url.Values {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]url.Values, len(s.comments))
	copy(out, s.comments)
	return out
}

func (s *Server) record() gin.HandlerFunc {
	return func(c *gin.Context) {
		_ = c.Request.ParseForm()
		s.mu.Lock()
		s.requests = append(s.requests, Recorded{
			Method: c.Request.Method,
			Path:   c.Request.URL.Path,
			Header: c.Request.Header.Clone(),
			Form:   c.Request.PostForm,
		})
		s.mu.Unlock()
		c.Next()
	}
}

func (s *Server) requireCSRF() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.SkipCSRFCheck {
			c.Next()
			return
		}
		cookie, err := c.Cookie(CSRFCookie)
		if err != nil || cookie == "" || c.GetHeader(CSRFHeader) != cookie {
			c.AbortWithStatus(http.StatusForbidden)
			return
		}
		c.Next()
	}
}

func loggedIn(c *gin.Context) bool {
	v, err := c.Cookie(SessionCookie)
	return err == nil && v == Session
}

func (s *Server) thread(c *gin.Context) {
	c.SetCookie(CSRFCookie, Token, 3600, "/", "", false, false)
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(s.page))
}

// vote 复刻站点的投票规则：新投票得到 vote_value；同值再投即取消；换方向得到两倍差值
func (s *Server) vote(c *gin.Context) {
	if !loggedIn(c) {
		c.Status(http.StatusForbidden)
		return
	}

	what := c.PostForm("what")
	id := c.PostForm("what_id")
	value, err := strconv.Atoi(c.PostForm("vote_value"))
	if err != nil || (value != 1 && value != -1) || id == "" || (what != "comment" && what != "submission") {
		c.Status(http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.VoteError != "" {
		c.JSON(http.StatusOK, gin.H{"error": s.VoteError, "voteDiff": 0})
		return
	}

	key := voteKey{what, id}
	if !s.items[key] {
		c.Status(http.StatusBadRequest)
		return
	}

	old, voted := s.votes[key]
	var diff int
	switch {
	case !voted || old == 0:
		s.votes[key] = value
		diff = value
	case old == value:
		s.votes[key] = 0
		diff = -value
	default:
		s.votes[key] = value
		diff = value - old
	}

	c.JSON(http.StatusOK, gin.H{"error": nil, "voteDiff": diff})
}

func (s *Server) postComment(c *gin.Context) {
	if !loggedIn(c) {
		c.JSON(http.StatusOK, gin.H{"msg": MsgLoginRequired})
		return
	}

	parentType := c.PostForm("parentType")
	parentID := c.PostForm("parentId")
	if parentID == "" || (parentType != "comment" && parentType != "submission") {
		c.Status(http.StatusBadRequest)
		return
	}
	if _, err := strconv.Atoi(parentID); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}
	if c.PostForm("commentContent") == "" {
		c.JSON(http.StatusOK, gin.H{"msg": MsgEmptyComment})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.items[voteKey{parentType, parentID}] {
		c.Status(http.StatusBadRequest)
		return
	}
	s.comments = append(s.comments, c.Request.PostForm)
	c.JSON(http.StatusOK, gin.H{"msg": MsgPosted})
}
