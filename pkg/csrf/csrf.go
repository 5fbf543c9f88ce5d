package csrf

import (
	"net/http"
	"net/url"
	"strings"
)

const (
	// CookieName 是站点下发CSRF令牌时使用的默认cookie名。
	CookieName = "csrftoken"

	// HeaderName 是提交非安全请求时携带令牌的请求头。
	HeaderName = "X-CSRFToken"
)

// IsSafeMethod 判断一个HTTP方法是否无需CSRF保护。
// GET、HEAD、OPTIONS、TRACE 不会修改服务端状态。
func IsSafeMethod(method string) bool {
	switch strings.ToUpper(method) {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return true
	}
	return false
}

// FromCookieHeader 从形如 "a=1; csrftoken=xyz" 的Cookie头中读取指定名称的值。
// 第一个匹配项生效，值会经过URL解码；找不到时返回空字符串。
func FromCookieHeader(header, name string) string {
	if header == "" || name == "" {
		return ""
	}
	prefix := name + "="
	for _, part := range strings.Split(header, ";") {
		part = strings.TrimSpace(part)
		if !strings.HasPrefix(part, prefix) {
			continue
		}
		raw := part[len(prefix):]
		value, err := url.PathUnescape(raw)
		if err != nil {
			// 解码失败时退回原始值
			return raw
		}
		return value
	}
	return ""
}

// FromCookies 在一组cookie中查找令牌。
func FromCookies(cookies []*http.Cookie, name string) string {
	for _, c := range cookies {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

// Apply 为非安全方法的请求附加CSRF令牌。
// 令牌为空或方法安全时请求保持不变，返回值表示是否附加了请求头。
func Apply(req *http.Request, token string) bool {
	if token == "" || IsSafeMethod(req.Method) {
		return false
	}
	req.Header.Set(HeaderName, token)
	return true
}
