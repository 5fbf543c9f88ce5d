package ajax

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/SlpAus/discussion-enhancer/internal/platform/config"
	"github.com/SlpAus/discussion-enhancer/internal/platform/logging"
	"github.com/SlpAus/discussion-enhancer/pkg/csrf"
	"github.com/goccy/go-json"
	"go.uber.org/zap"
	"golang.org/x/net/publicsuffix"
)

// maxErrorBody 限制错误响应体被读入内存的大小
const maxErrorBody = 4 << 10

// StatusError 表示站点返回了非2xx状态码
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s %s: 状态码 %d", e.Method, e.URL, e.StatusCode)
	}
	return fmt.Sprintf("%s %s: 状态码 %d: %s", e.Method, e.URL, e.StatusCode, e.Body)
}

// Options 是构造 Client 所需的参数
type Options struct {
	BaseURL        string
	Timeout        time.Duration
	UserAgent      string
	CSRFCookieName string
	// HTTPClient 可选；为nil时会创建一个带cookie jar的客户端
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Client 是对站点的异步POST封装。
// 它持有cookie jar，CSRF令牌在每次请求时从jar中读取并显式传给请求构造函数。
type Client struct {
	base       *url.URL
	http       *http.Client
	csrfCookie string
	userAgent  string
	logger     *zap.Logger
}

// New 创建一个新的 Client
func New(opts Options) (*Client, error) {
	base, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("无效的站点地址 %q: %w", opts.BaseURL, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("站点地址必须是绝对URL: %q", opts.BaseURL)
	}

	hc := opts.HTTPClient
	if hc == nil {
		jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
		if err != nil {
			return nil, fmt.Errorf("无法创建cookie jar: %w", err)
		}
		hc = &http.Client{Jar: jar, Timeout: opts.Timeout}
	}
	if hc.Jar == nil {
		return nil, fmt.Errorf("HTTP客户端必须配置cookie jar")
	}

	cookieName := opts.CSRFCookieName
	if cookieName == "" {
		cookieName = csrf.CookieName
	}

	return &Client{
		base:       base,
		http:       hc,
		csrfCookie: cookieName,
		userAgent:  opts.UserAgent,
		logger:     logging.OrNop(opts.Logger),
	}, nil
}

// NewFromConfig 根据应用配置创建 Client，并在配置了会话值时写入会话cookie
func NewFromConfig(cfg *config.Config, logger *zap.Logger) (*Client, error) {
	c, err := New(Options{
		BaseURL:        cfg.Upstream.BaseURL,
		Timeout:        cfg.Upstream.Timeout,
		UserAgent:      cfg.Upstream.UserAgent,
		CSRFCookieName: cfg.CSRF.CookieName,
		Logger:         logger,
	})
	if err != nil {
		return nil, err
	}
	if cfg.Session.Value != "" {
		c.SetCookie(cfg.Session.CookieName, cfg.Session.Value)
	}
	if cfg.CSRF.Token != "" {
		c.SetCookie(c.csrfCookie, cfg.CSRF.Token)
	}
	return c, nil
}

// BaseURL 返回站点根地址
func (c *Client) BaseURL() *url.URL {
	u := *c.base
	return &u
}

// Resolve 将相对路径解析为站点下的绝对地址
func (c *Client) Resolve(ref string) (*url.URL, error) {
	u, err := url.Parse(ref)
	if err != nil {
		return nil, fmt.Errorf("无效的地址 %q: %w", ref, err)
	}
	return c.base.ResolveReference(u), nil
}

// SetCookie 在站点域下写入一个cookie
func (c *Client) SetCookie(name, value string) {
	c.http.Jar.SetCookies(c.base, []*http.Cookie{{Name: name, Value: value, Path: "/"}})
}

// Token 返回jar中对给定地址可见的CSRF令牌
func (c *Client) Token(u *url.URL) string {
	return csrf.FromCookies(c.http.Jar.Cookies(u), c.csrfCookie)
}

// sameOrigin 判断目标地址是否与站点同源
func (c *Client) sameOrigin(u *url.URL) bool {
	return strings.EqualFold(u.Scheme, c.base.Scheme) && strings.EqualFold(u.Host, c.base.Host)
}

// NewPostRequest 构造一个表单编码的POST请求，并按CSRF规则附加令牌
func NewPostRequest(ctx context.Context, target string, form url.Values, token string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded; charset=UTF-8")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	csrf.Apply(req, token)
	return req, nil
}

// PostForm 向站点提交表单，并把JSON响应解码到 out 中。
// 跨域请求不会携带CSRF令牌。
func (c *Client) PostForm(ctx context.Context, ref string, form url.Values, out any) error {
	target, err := c.Resolve(ref)
	if err != nil {
		return err
	}

	token := ""
	if c.sameOrigin(target) {
		token = c.Token(target)
	}

	req, err := NewPostRequest(ctx, target.String(), form, token)
	if err != nil {
		return fmt.Errorf("无法构造请求: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	c.logger.Debug("发送POST请求",
		zap.String("url", target.String()),
		zap.Bool("csrf", token != ""),
	)

	body, err := c.do(req)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("无法解析 %s 的响应: %w", target, err)
	}
	return nil
}

// Get 获取一个页面的原始内容，站点下发的cookie会进入jar
func (c *Client) Get(ctx context.Context, ref string) ([]byte, error) {
	target, err := c.Resolve(ref)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("无法构造请求: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	c.logger.Debug("获取页面", zap.String("url", target.String()))
	return c.do(req)
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s 请求失败: %w", req.Method, req.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &StatusError{
			Method:     req.Method,
			URL:        req.URL.String(),
			StatusCode: resp.StatusCode,
			Body:       string(bytes.TrimSpace(snippet)),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("读取 %s 的响应失败: %w", req.URL, err)
	}
	return body, nil
}

// CloseIdleConnections 关闭底层客户端的空闲连接
func (c *Client) CloseIdleConnections() {
	c.http.CloseIdleConnections()
}
