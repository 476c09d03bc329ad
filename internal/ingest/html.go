package ingest

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/wonny/cohesion/internal/contracts"
)

// ParseCoachRolesHTML reads coaching staff windows from the first HTML table
// carrying the coach columns. The header row names the columns (th or td),
// every following row with td cells is one window.
func ParseCoachRolesHTML(r io.Reader) ([]contracts.CoachWindow, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var (
		windows  []contracts.CoachWindow
		found    bool
		parseErr error
	)

	doc.Find("table").EachWithBreak(func(_ int, table *goquery.Selection) bool {
		rows := table.Find("tr")
		if rows.Length() == 0 {
			return true
		}

		cols := make(header)
		rows.First().Children().Each(func(i int, cell *goquery.Selection) {
			name := strings.ToLower(strings.TrimSpace(cell.Text()))
			if _, dup := cols[name]; !dup {
				cols[name] = i
			}
		})
		for _, name := range coachColumns {
			if _, ok := cols[name]; !ok {
				return true
			}
		}
		found = true

		// 헤더 다음 행부터 데이터
		rows.Slice(1, rows.Length()).EachWithBreak(func(i int, row *goquery.Selection) bool {
			cells := row.Find("td")
			if cells.Length() == 0 {
				return true
			}
			fields := make([]string, cells.Length())
			cells.Each(func(j int, cell *goquery.Selection) {
				fields[j] = cell.Text()
			})

			w, err := coachWindow(record{line: i + 2, fields: fields, cols: cols})
			if err != nil {
				parseErr = err
				return false
			}
			windows = append(windows, w)
			return true
		})
		return false
	})

	if parseErr != nil {
		return nil, parseErr
	}
	if !found {
		return nil, &contracts.ValidationError{
			Field:   "table",
			Message: "no table with columns " + strings.Join(coachColumns, ", "),
		}
	}
	return windows, nil
}

// ParseCoachRolesAuto picks the HTML or CSV reader by file name
func ParseCoachRolesAuto(name string, r io.Reader) ([]contracts.CoachWindow, error) {
	base := strings.ToLower(BaseName(name))
	if strings.HasSuffix(base, ".html") || strings.HasSuffix(base, ".htm") {
		return ParseCoachRolesHTML(r)
	}
	return ParseCoachRoles(r)
}
