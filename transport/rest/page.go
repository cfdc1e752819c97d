package rest

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/rocketscienceinc/tictactoe-audit/internal/audit"
	"github.com/rocketscienceinc/tictactoe-audit/internal/entity"
	"github.com/rocketscienceinc/tictactoe-audit/internal/tictactoe"
	"github.com/rocketscienceinc/tictactoe-audit/internal/usecase"
)

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Tic-Tac-Toe</title>
<style>
body { font-family: sans-serif; margin: 2rem; }
.board { display: grid; grid-template-columns: repeat(3, 4rem); gap: .25rem; }
.board button { width: 4rem; height: 4rem; font-size: 2rem; }
.board button.win { background: #c8f7c5; }
.banner { color: #a00; }
.audit td { padding: 0 .5rem; font-family: monospace; }
</style>
</head>
<body>
<main>
<h1>Tic-Tac-Toe</h1>
<p role="status">{{.Status}}</p>
{{if .Error}}<p class="banner" role="alert">{{.Error}}</p>{{end}}
<form class="board" method="post" action="/move">
{{range .Cells}}<button type="submit" name="cell" value="{{.Index}}" aria-label="cell {{.Index}}"{{if .Win}} class="win"{{end}}{{if .Disabled}} disabled{{end}}>{{.Mark}}</button>
{{end}}</form>
<form method="post" action="/reset"><button type="submit">New game</button></form>
<section class="audit" aria-label="Audit log">
<h2>Audit log</h2>
<table>
{{range .Audit}}<tr><td>{{.Time}}</td><td>{{.Action}}</td><td>{{.Detail}}</td></tr>
{{else}}<tr><td>No events yet.</td></tr>
{{end}}</table>
</section>
</main>
</body>
</html>
`))

type pageCell struct {
	Index    int
	Mark     string
	Win      bool
	Disabled bool
}

type auditRow struct {
	Time   string
	Action string
	Detail string
}

type pageData struct {
	Status string
	Error  string
	Cells  []pageCell
	Audit  []auditRow
}

func newPageData(state usecase.State, events []audit.Event) pageData {
	data := pageData{
		Status: statusLine(state),
		Error:  state.Error,
		Cells:  make([]pageCell, 0, entity.BoardSize),
		Audit:  make([]auditRow, 0, len(events)),
	}

	winning := map[int]bool{}
	for _, index := range state.WinningLine {
		winning[index] = true
	}

	for index, mark := range state.Board {
		data.Cells = append(data.Cells, pageCell{
			Index:    index,
			Mark:     string(mark),
			Win:      winning[index],
			Disabled: state.IsOver() || mark != entity.EmptyCell,
		})
	}

	// newest first, like a log tail
	for i := len(events) - 1; i >= 0; i-- {
		data.Audit = append(data.Audit, newAuditRow(events[i]))
	}

	return data
}

func renderPage(w io.Writer, data pageData) error {
	if err := pageTemplate.Execute(w, data); err != nil {
		return fmt.Errorf("failed to execute page template: %w", err)
	}

	return nil
}

func statusLine(state usecase.State) string {
	switch state.Status {
	case tictactoe.StatusWon:
		return fmt.Sprintf("Player %s wins!", state.Winner)
	case tictactoe.StatusDrawn:
		return "It's a draw."
	default:
		return fmt.Sprintf("Player %s to move.", state.Turn)
	}
}

func newAuditRow(evt audit.Event) auditRow {
	row := auditRow{
		Time:   evt.Timestamp.UTC().Format(time.RFC3339),
		Action: string(evt.Action),
	}

	switch meta := evt.Meta.(type) {
	case audit.MoveMeta:
		row.Detail = fmt.Sprintf("%s played cell %d", meta.Player, meta.Index)
	case audit.ResetMeta:
		row.Detail = "new game"
	case audit.ErrorMeta:
		row.Detail = meta.Message
		if meta.Index != nil {
			row.Detail = fmt.Sprintf("%s (cell %d)", meta.Message, *meta.Index)
		}
	}

	return row
}
