package main

import (
	"github.com/SlpAus/discussion-enhancer/internal/vote"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	voteWhat  string
	voteID    string
	voteLabel string
)

// voteCmd 模拟点击页面上的投票按钮
var voteCmd = &cobra.Command{
	Use:   "vote",
	Short: "点击一个投票按钮并更新分数与箭头",
	RunE:  runVote,
}

func init() {
	voteCmd.Flags().StringVar(&voteWhat, "what", string(vote.WhatSubmission), "投票对象类型：submission 或 comment")
	voteCmd.Flags().StringVar(&voteID, "id", "", "投票对象ID")
	voteCmd.Flags().StringVar(&voteLabel, "label", vote.LabelUpvote, "被点击控件的标签：upvote 或 downvote")
	_ = voteCmd.MarkFlagRequired("id")
}

func runVote(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd.Context())
	if err != nil {
		return err
	}

	controller := vote.NewController(s.client, cfg.Upstream.VotePath, logger)
	target := vote.Target{WhatType: vote.WhatType(voteWhat), WhatID: voteID}
	res, err := controller.HandleClick(cmd.Context(), s.doc, target, voteLabel)
	if err != nil {
		logger.Error("投票失败，页面未修改", zap.Error(err))
		return err
	}
	if !res.Applied {
		logger.Info("不是投票按钮，页面未修改", zap.String("label", voteLabel))
	}
	return s.writePage(cmd.OutOrStdout())
}
