package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/eringen/spacetraveling"
	"github.com/eringen/spacetraveling/content"
)

// postRow is one line of `list` output.
type postRow struct {
	UID         string `json:"uid"`
	Date        string `json:"date"`
	ReadingTime string `json:"reading_time"`
	Author      string `json:"author"`
	Title       string `json:"title"`
}

func newListCmd() *cobra.Command {
	var (
		formatFlag string
		noHeader   bool
		limit      int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List published posts, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, _, err := setup(logLevelFlag(cmd))
			if err != nil {
				return err
			}
			defer app.Close()
			if err := app.Open(); err != nil {
				return err
			}

			posts, err := app.Cache.AllPosts(cmd.Context())
			if err != nil {
				return err
			}
			if limit > 0 && len(posts) > limit {
				posts = posts[:limit]
			}

			out := cmd.OutOrStdout()
			format := strings.ToLower(formatFlag)
			if format == "" {
				format = "plain"
				if isTerminal(out) {
					format = "table"
				}
			}
			return writePosts(out, toRows(app, posts), !noHeader, format)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&formatFlag, "format", "", "output format: table, plain or json (default table on a terminal, else plain)")
	flags.BoolVar(&noHeader, "no-header", false, "omit the header row")
	flags.IntVar(&limit, "limit", 0, "limit number of posts listed (0 means no limit)")
	return cmd
}

func toRows(app *spacetraveling.App, posts []content.Post) []postRow {
	rows := make([]postRow, 0, len(posts))
	for _, p := range posts {
		rows = append(rows, postRow{
			UID:         p.UID,
			Date:        spacetraveling.FormatDate(p.FirstPublicationDate, app.Config.Location),
			ReadingTime: app.ReadingTime(p),
			Author:      p.Author,
			Title:       p.Title,
		})
	}
	return rows
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// writePosts writes rows to w in the requested format.
func writePosts(w io.Writer, rows []postRow, includeHeader bool, format string) error {
	switch format {
	case "table":
		return writePostsTable(w, rows, includeHeader)
	case "plain":
		return writePostsPlain(w, rows, includeHeader)
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

func writePostsPlain(w io.Writer, rows []postRow, includeHeader bool) error {
	if includeHeader {
		if _, err := fmt.Fprintln(w, "uid\tdate\treading_time\tauthor\ttitle"); err != nil {
			return err
		}
	}
	for _, r := range rows {
		if _, err := fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", r.UID, r.Date, r.ReadingTime, r.Author, r.Title); err != nil {
			return err
		}
	}
	return nil
}

func writePostsTable(w io.Writer, rows []postRow, includeHeader bool) error {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleRounded)
	tw.Style().Options.SeparateHeader = true
	tw.Style().Options.DrawBorder = true

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft, AlignHeader: text.AlignCenter},
		{Number: 2, Align: text.AlignLeft, AlignHeader: text.AlignCenter},
		{Number: 3, Align: text.AlignRight, AlignHeader: text.AlignCenter},
		{Number: 4, Align: text.AlignLeft, AlignHeader: text.AlignCenter},
		{Number: 5, Align: text.AlignLeft, AlignHeader: text.AlignCenter, WidthMax: 60},
	})

	if includeHeader {
		tw.AppendHeader(table.Row{"UID", "Date", "Reading", "Author", "Title"})
	}
	for _, r := range rows {
		tw.AppendRow(table.Row{r.UID, r.Date, r.ReadingTime, r.Author, r.Title})
	}
	if len(rows) == 0 {
		tw.AppendRow(table.Row{"-", "-", "-", "-", "(no posts)"})
	}

	_ = tw.Render()
	return nil
}
