package views

import (
	"context"
	"io"
	"net/url"
	"strconv"
	"strings"

	"github.com/a-h/templ"

	"github.com/pavelanni/mockinterview/internal/dashboard"
	appI18n "github.com/pavelanni/mockinterview/internal/i18n"
)

// DashboardData is the model of the candidate list page. Summary covers
// every stored interview, Rows only those matching Query.
type DashboardData struct {
	Summary dashboard.Summary
	Query   dashboard.Query
	Rows    []dashboard.Details
}

type option struct {
	value string
	msgID string
}

var (
	scoreOptions = []option{
		{string(dashboard.ScoreAll), "CategoryAll"},
		{string(dashboard.ScoreExcellent), "CategoryExcellent"},
		{string(dashboard.ScoreGood), "CategoryGood"},
		{string(dashboard.ScoreAverage), "CategoryAverage"},
		{string(dashboard.ScorePoor), "CategoryPoor"},
	}
	sortOptions = []option{
		{string(dashboard.SortDate), "SortDate"},
		{string(dashboard.SortScore), "SortScore"},
		{string(dashboard.SortName), "SortName"},
	}
	orderOptions = []option{
		{string(dashboard.OrderDesc), "OrderDesc"},
		{string(dashboard.OrderAsc), "OrderAsc"},
	}
)

// CandidateURL is the detail page of one candidate.
func CandidateURL(id string) templ.SafeURL {
	return templ.URL("/dashboard/candidates/" + url.PathEscape(id))
}

// ExportURL downloads the CSV of the rows matching q.
func ExportURL(q dashboard.Query) templ.SafeURL {
	return templ.URL("/api/candidates/export.csv?" + q.Values().Encode())
}

// DashboardPage lists completed interviews with summary metrics and filters.
func DashboardPage(data DashboardData) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := &page{w: w}
		s := data.Summary

		p.raw(`<h1>`)
		p.text(appI18n.T(ctx, "DashboardTitle"))
		p.raw(`</h1><section class="cards">`)
		card(p, appI18n.T(ctx, "DashboardTotal"), strconv.Itoa(s.TotalInterviews))
		card(p, appI18n.T(ctx, "DashboardAverage"), strconv.Itoa(s.AverageScore))
		card(p, appI18n.T(ctx, "DashboardCompletion"), strconv.Itoa(s.CompletionRate)+"%")
		card(p, appI18n.T(ctx, "DashboardStrong"), strconv.Itoa(s.StrongAnswers)+"/"+strconv.Itoa(s.TotalAnswers))
		p.raw(`</section>`)

		p.raw(`<form class="filters" method="get" action="/dashboard"><input type="search" name="search"`)
		p.attr("value", data.Query.Search)
		p.attr("placeholder", appI18n.T(ctx, "FilterSearch"))
		p.raw(`>`)
		selectBox(ctx, p, "score", string(data.Query.Score), scoreOptions)
		selectBox(ctx, p, "sort", string(data.Query.Sort), sortOptions)
		selectBox(ctx, p, "order", string(data.Query.Order), orderOptions)
		p.raw(`<button type="submit">`)
		p.text(appI18n.T(ctx, "FilterApply"))
		p.raw(`</button><a class="export"`)
		p.href(ExportURL(data.Query))
		p.raw(`>`)
		p.text(appI18n.T(ctx, "ExportCSV"))
		p.raw(`</a></form>`)

		if len(data.Rows) == 0 {
			p.raw(`<p class="empty">`)
			p.text(appI18n.T(ctx, "NoCandidates"))
			p.raw(`</p>`)
			return p.err
		}

		p.raw(`<table><thead><tr>`)
		for _, id := range []string{"ColName", "ColEmail", "ColScore", "ColCategory", "ColCompleted"} {
			p.raw(`<th>`)
			p.text(appI18n.T(ctx, id))
			p.raw(`</th>`)
		}
		p.raw(`</tr></thead><tbody>`)
		for _, d := range data.Rows {
			p.raw(`<tr><td><a`)
			p.href(CandidateURL(d.Candidate.ID))
			p.raw(`>`)
			p.text(d.Candidate.Name)
			p.raw(`</a></td><td>`)
			p.text(d.Candidate.Email)
			p.raw(`</td><td>`)
			p.text(strconv.Itoa(d.FinalScore))
			p.raw(`</td><td`)
			p.attr("class", categoryClass(d.Category))
			p.raw(`>`)
			p.text(appI18n.T(ctx, "Category"+d.Category))
			p.raw(`</td><td>`)
			p.text(d.CompletedAt)
			p.raw(`</td></tr>`)
		}
		p.raw(`</tbody></table>`)
		return p.err
	})
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return Layout(appI18n.T(ctx, "DashboardTitle"), body).Render(ctx, w)
	})
}

func card(p *page, label, value string) {
	p.raw(`<div class="card"><b>`)
	p.text(value)
	p.raw(`</b>`)
	p.text(label)
	p.raw(`</div>`)
}

func selectBox(ctx context.Context, p *page, name, selected string, opts []option) {
	p.raw(`<select`)
	p.attr("name", name)
	p.raw(`>`)
	for _, o := range opts {
		p.raw(`<option`)
		p.attr("value", o.value)
		if o.value == selected {
			p.raw(` selected`)
		}
		p.raw(`>`)
		p.text(appI18n.T(ctx, o.msgID))
		p.raw(`</option>`)
	}
	p.raw(`</select>`)
}

func categoryClass(category string) string {
	return "cat-" + strings.ToLower(category)
}
