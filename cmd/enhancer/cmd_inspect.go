package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// inspectCmd 列出页面上的投票对象
var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "列出页面上的投票对象、分数与箭头状态",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd.Context())
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "TYPE\tID\tSCORE\tSTATE")
		for _, e := range s.doc.Votes() {
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", e.Target.WhatType, e.Target.WhatID, e.Score, e.State)
		}
		return w.Flush()
	},
}
