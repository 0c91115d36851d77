package reports

import (
	"fmt"
	"io"

	g "maragu.dev/gomponents"
	html "maragu.dev/gomponents/html"
)

const printStyle = `body{font-family:sans-serif;margin:2rem}
table{border-collapse:collapse;width:100%;margin-bottom:2rem}
th,td{border:1px solid #444;padding:4px 8px;text-align:left}
h2{margin-top:2rem}
@media print{.no-print{display:none}}`

// RenderDaily writes the printable attendance sheet for report.
func RenderDaily(w io.Writer, report *DailyReport) error {
	return dailyPage(report).Render(w)
}

func dailyPage(report *DailyReport) g.Node {
	title := "Arranchamento " + report.Date.String()
	return html.Doctype(
		html.HTML(
			html.Lang("pt-BR"),
			html.Head(
				html.Meta(html.Charset("utf-8")),
				html.TitleEl(g.Text(title)),
				html.StyleEl(g.Raw(printStyle)),
			),
			html.Body(
				html.H1(g.Text(title)),
				html.P(g.Text(fmt.Sprintf("Total: %d  Presentes: %d  Ausentes: %d",
					report.Total, len(report.Present), len(report.Absent)))),
				html.Button(html.Class("no-print"), g.Attr("onclick", "window.print()"), g.Text("Imprimir")),
				section("Presentes", report.Present),
				section("Ausentes", report.Absent),
			),
		),
	)
}

func section(heading string, entries []Entry) g.Node {
	return g.Group([]g.Node{
		html.H2(g.Text(heading)),
		html.Table(
			html.THead(html.Tr(
				html.Th(g.Text("#")),
				html.Th(g.Text("Posto/Grad")),
				html.Th(g.Text("Nome de guerra")),
				html.Th(g.Text("Nome")),
				html.Th(g.Text("Setor")),
			)),
			html.TBody(g.Group(rows(entries))),
		),
	})
}

func rows(entries []Entry) []g.Node {
	if len(entries) == 0 {
		return []g.Node{html.Tr(html.Td(html.ColSpan("5"), g.Text("Nenhum registro")))}
	}
	out := make([]g.Node, 0, len(entries))
	for i, e := range entries {
		sector := e.SectorName
		if sector == "" {
			sector = "-"
		}
		out = append(out, html.Tr(
			html.Td(g.Text(fmt.Sprintf("%d", i+1))),
			html.Td(g.Text(e.Rank)),
			html.Td(g.Text(e.WarName)),
			html.Td(g.Text(e.Name)),
			html.Td(g.Text(sector)),
		))
	}
	return out
}
