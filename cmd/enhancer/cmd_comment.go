package main

import (
	"github.com/SlpAus/discussion-enhancer/internal/comment"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	commentParentType string
	commentParentID   string
	commentContent    string
	commentOpenReply  bool
)

// commentCmd 填写并提交页面上的评论表单
var commentCmd = &cobra.Command{
	Use:   "comment",
	Short: "提交评论表单并显示站点返回的提示",
	RunE:  runComment,
}

// replyCmd 模拟点击评论下的回复按钮
var replyCmd = &cobra.Command{
	Use:   "reply",
	Short: "在评论下插入回复表单，或切换已有表单的可见性",
	RunE:  runReply,
}

func init() {
	commentCmd.Flags().StringVar(&commentParentType, "parent-type", string(comment.ParentSubmission), "回复对象类型：submission 或 comment")
	commentCmd.Flags().StringVar(&commentParentID, "parent-id", "", "回复对象ID")
	commentCmd.Flags().StringVar(&commentContent, "content", "", "评论内容")
	commentCmd.Flags().BoolVar(&commentOpenReply, "open", false, "表单不存在时先点击回复按钮插入表单")
	_ = commentCmd.MarkFlagRequired("parent-id")

	replyCmd.Flags().StringVar(&commentParentID, "parent-id", "", "被回复的评论ID")
	_ = replyCmd.MarkFlagRequired("parent-id")
}

func runComment(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd.Context())
	if err != nil {
		return err
	}

	p := comment.Parent{Type: comment.ParentType(commentParentType), ID: commentParentID}
	if commentOpenReply {
		if exists, _ := s.doc.HasForm(p); !exists {
			if _, err := comment.ToggleReply(s.doc, p); err != nil {
				return err
			}
		}
	}
	if err := s.doc.SetContent(p, commentContent); err != nil {
		return err
	}

	controller := comment.NewController(s.client, cfg.Upstream.CommentPath, logger)
	resp, err := controller.Submit(cmd.Context(), s.doc, p)
	if err != nil {
		logger.Error("评论提交失败，页面未修改", zap.Error(err))
		return err
	}
	if resp.Msg != "" {
		logger.Info("站点提示", zap.String("msg", resp.Msg))
	}
	return s.writePage(cmd.OutOrStdout())
}

func runReply(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd.Context())
	if err != nil {
		return err
	}

	action, err := comment.ToggleReply(s.doc, comment.Parent{Type: comment.ParentComment, ID: commentParentID})
	if err != nil {
		return err
	}
	logger.Info("回复表单", zap.Stringer("action", action), zap.String("parentId", commentParentID))
	return s.writePage(cmd.OutOrStdout())
}
