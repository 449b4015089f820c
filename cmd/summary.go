package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"MatchSync/internal/service"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
)

// renderSummary 单次运行结果表：每场比赛一行，页脚为统计
func renderSummary(res *service.RunResult) string {
	if res == nil || res.Snapshot == nil {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"mgdbId", "赛事", "对阵", "时间", "节点"})
	for _, m := range res.Snapshot.Data {
		tw.AppendRow(table.Row{m.MgdbID.String(), m.CompetitionName, m.PkInfoTitle, m.Keyword, len(m.Nodes)})
	}

	if st := res.Stats; st != nil {
		tw.AppendFooter(table.Row{
			"run " + st.RunID,
			"匹配 " + strconv.Itoa(st.Correlated),
			"跳过 " + strconv.Itoa(st.CorrelationSkipped),
			"节点失败 " + strconv.Itoa(st.NodeFailures),
			st.Matches,
		})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 5, Align: text.AlignRight, AlignFooter: text.AlignRight},
	})
	if !res.Snapshot.Success {
		tw.SetCaption("同步失败: %s", res.Snapshot.Error)
	}
	return tw.Render()
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// printSummary 仅在终端中输出表格，重定向到文件或管道时不输出
func printSummary(w io.Writer, res *service.RunResult) {
	if !isTerminal(w) {
		return
	}
	if out := renderSummary(res); out != "" {
		fmt.Fprintln(w, out)
	}
}
