package console

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"text/tabwriter"

	"tokendict/internal/domain"
)

// Printer 命令行输出：一次性对账后的概况与视图导出
type Printer struct {
	w io.Writer
}

func NewPrinter(w io.Writer) *Printer {
	if w == nil {
		w = os.Stdout
	}
	return &Printer{w: w}
}

// Summary 每个视图的代币数，以及按交易所统计的条目数
func (p *Printer) Summary(dir *domain.Directory, dexItems int) error {
	if dir == nil {
		_, err := fmt.Fprintln(p.w, "no directory published")
		return err
	}

	tw := tabwriter.NewWriter(p.w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "cycle\t%s\n", dir.CycleID)
	fmt.Fprintf(tw, "built\t%s\n", dir.BuiltAt.Format("2006-01-02 15:04:05"))
	for _, name := range domain.Views() {
		v, _ := dir.View(name)
		fmt.Fprintf(tw, "%s\t%d\n", name, len(v))
	}
	fmt.Fprintf(tw, "%s\t%d\n", domain.DexBlobKey, dexItems)
	fmt.Fprintln(tw)

	counts := make(map[string]int)
	confirmed := make(map[string]int)
	for _, t := range dir.All {
		for _, ex := range t.Exchanges {
			counts[ex.Name]++
			if ex.Confirmed {
				confirmed[ex.Name]++
			}
		}
	}
	names := make([]string, 0, len(counts))
	for n := range counts {
		names = append(names, n)
	}
	sort.Strings(names)

	fmt.Fprintln(tw, "exchange\tlistings\tconfirmed")
	for _, n := range names {
		fmt.Fprintf(tw, "%s\t%d\t%d\n", n, counts[n], confirmed[n])
	}
	return tw.Flush()
}

// View 以 JSON 输出单个视图
func (p *Printer) View(dir *domain.Directory, name string) error {
	v, ok := dir.View(name)
	if !ok {
		return fmt.Errorf("unknown or empty view %q", name)
	}
	if v == nil {
		v = []domain.TokenEntry{}
	}
	enc := json.NewEncoder(p.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
