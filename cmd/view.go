package cmd

import (
	"fmt"
	"io"

	"github.com/GrainArc/SketchMap/sketch"
	"github.com/charmbracelet/lipgloss"
	ltable "github.com/charmbracelet/lipgloss/table"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	activeStyle = cellStyle.Foreground(lipgloss.Color("2")).Bold(true)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	levelStyles = map[sketch.Level]lipgloss.Style{
		sketch.LevelInfo:    lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
		sketch.LevelSuccess: lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		sketch.LevelError:   lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
	}
)

// tableList 以表格输出数据集列表，当前数据集高亮
type tableList struct {
	out   io.Writer
	cards []sketch.DatasetCard
	err   string
	quiet bool
}

var _ sketch.ListView = (*tableList)(nil)

func newTableList(out io.Writer) *tableList {
	return &tableList{out: out, quiet: true}
}

func (t *tableList) ShowLoading() {
	t.err = ""
}

func (t *tableList) ShowDatasets(cards []sketch.DatasetCard) {
	t.cards = cards
	if !t.quiet {
		t.Render()
	}
}

func (t *tableList) ShowError(msg string) {
	t.err = msg
	if !t.quiet {
		fmt.Fprintln(t.out, levelStyles[sketch.LevelError].Render("Failed to load datasets: "+msg))
	}
}

// Render 输出最近一次的列表
func (t *tableList) Render() {
	if len(t.cards) == 0 {
		fmt.Fprintln(t.out, mutedStyle.Render("No datasets saved yet"))
		return
	}

	rows := make([][]string, len(t.cards))
	for i, card := range t.cards {
		mark := ""
		if card.Active {
			mark = "*"
		}
		rows[i] = []string{mark, card.ID.String(), card.Name, card.Meta, card.Date}
	}
	table := ltable.New().
		Border(lipgloss.RoundedBorder()).
		Headers("", "ID", "NAME", "CONTENT", "UPLOADED").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == ltable.HeaderRow {
				return headerStyle
			}
			if row >= 0 && row < len(t.cards) && t.cards[row].Active {
				return activeStyle
			}
			return cellStyle
		})
	fmt.Fprintln(t.out, table.String())
}

// termNotifier 把提示打印到 stderr
type termNotifier struct {
	out io.Writer
}

func newTermNotifier(out io.Writer) termNotifier {
	return termNotifier{out: out}
}

func (n termNotifier) Notify(level sketch.Level, msg string) {
	style, ok := levelStyles[level]
	if !ok {
		style = lipgloss.NewStyle()
	}
	fmt.Fprintln(n.out, style.Render(msg))
}
