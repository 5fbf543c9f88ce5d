package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"os"

	"github.com/SlpAus/discussion-enhancer/internal/ajax"
	"github.com/SlpAus/discussion-enhancer/internal/page"
	"go.uber.org/zap"
)

// session 是一次命令执行中共享的站点客户端与页面
type session struct {
	client *ajax.Client
	doc    *page.Document
}

// isRemote 判断 --page 是否是站点URL
func isRemote(ref string) (*url.URL, bool) {
	u, err := url.Parse(ref)
	if err != nil || u.Host == "" {
		return nil, false
	}
	return u, u.Scheme == "http" || u.Scheme == "https"
}

// openSession 创建站点客户端并加载页面。
// 页面是URL时以页面所在的站点为请求目标，并先请求一次页面以获得CSRF cookie。
func openSession(ctx context.Context) (*session, error) {
	if pagePath == "" {
		return nil, fmt.Errorf("必须通过 --page 指定页面")
	}

	remote, isURL := isRemote(pagePath)
	if isURL {
		cfg.Upstream.BaseURL = (&url.URL{Scheme: remote.Scheme, Host: remote.Host}).String()
	}

	client, err := ajax.NewFromConfig(cfg, logger)
	if err != nil {
		return nil, err
	}

	var body io.Reader
	if isURL {
		raw, err := client.Get(ctx, remote.String())
		if err != nil {
			return nil, fmt.Errorf("无法获取页面: %w", err)
		}
		body = bytes.NewReader(raw)
	} else {
		f, err := os.Open(pagePath)
		if err != nil {
			return nil, fmt.Errorf("无法打开页面文件: %w", err)
		}
		defer f.Close()
		body = f
	}

	doc, err := page.Load(body, page.WithReplyAction(cfg.Upstream.CommentPath))
	if err != nil {
		return nil, err
	}
	logger.Debug("页面已加载", zap.String("page", pagePath), zap.String("site", cfg.Upstream.BaseURL))
	return &session{client: client, doc: doc}, nil
}

// writePage 把修改后的页面写到 --out 指定的位置
func (s *session) writePage(stdout io.Writer) error {
	if outPath == "" || outPath == "-" {
		return s.doc.Render(stdout)
	}
	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("无法创建输出文件: %w", err)
	}
	if err := s.doc.Render(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
