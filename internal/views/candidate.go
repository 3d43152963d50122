package views

import (
	"context"
	"io"
	"strconv"

	"github.com/a-h/templ"

	"github.com/pavelanni/mockinterview/internal/dashboard"
	appI18n "github.com/pavelanni/mockinterview/internal/i18n"
)

// CandidatePage shows one completed interview question by question.
func CandidatePage(d dashboard.Details) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := &page{w: w}
		c := d.Candidate

		p.raw(`<p><a`)
		p.href(templ.URL("/dashboard"))
		p.raw(`>&larr; `)
		p.text(appI18n.T(ctx, "BackToList"))
		p.raw(`</a></p><h1>`)
		p.text(c.Name)
		p.raw(`</h1><section class="cards">`)
		card(p, appI18n.T(ctx, "ColScore"), strconv.Itoa(d.FinalScore))
		card(p, appI18n.T(ctx, "ColCategory"), appI18n.T(ctx, "Category"+d.Category))
		card(p, appI18n.T(ctx, "ColCompleted"), d.CompletedAt)
		p.raw(`</section><table><tbody>`)
		for _, row := range [][2]string{
			{appI18n.T(ctx, "ColEmail"), c.Email},
			{appI18n.T(ctx, "ColPhone"), c.Phone},
		} {
			p.raw(`<tr><th>`)
			p.text(row[0])
			p.raw(`</th><td>`)
			p.text(row[1])
			p.raw(`</td></tr>`)
		}
		p.raw(`</tbody></table><p>`)
		p.text(appI18n.Tp(ctx, "StrongAnswers", d.StrongAnswers))
		p.raw(` &middot; `)
		p.text(appI18n.Tp(ctx, "TotalMinutes", d.TotalMinutes))
		p.raw(`</p>`)

		for i, qd := range d.Questions {
			p.render(ctx, questionCard(i+1, len(d.Questions), qd))
		}
		return p.err
	})
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return Layout(d.Candidate.Name, body).Render(ctx, w)
	})
}

func questionCard(n, total int, qd dashboard.QuestionDetail) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := &page{w: w}
		q, a := qd.Question, qd.Answer

		p.raw(`<article class="question"><h3>`)
		p.text(appI18n.Td(ctx, "QuestionProgress", map[string]any{"Current": n, "Total": total}))
		p.raw(` <small>[`)
		p.text(string(q.Difficulty))
		p.raw(`] `)
		p.text(q.Category)
		p.raw(`</small></h3><p>`)
		p.text(q.Text)
		p.raw(`</p><h4>`)
		p.text(appI18n.T(ctx, "DetailAnswer"))
		p.raw(`</h4><div class="answer">`)
		p.text(a.Text)
		p.raw(`</div><p><b>`)
		p.text(appI18n.Td(ctx, "AnswerScored", map[string]any{"Score": a.Score}))
		p.raw(`</b> &middot; `)
		p.text(appI18n.Td(ctx, "DetailTime", map[string]any{"Spent": a.TimeSpent, "Limit": q.TimeLimit}))
		if a.IsTimeout {
			p.raw(` <span class="timeout">`)
			p.text(appI18n.T(ctx, "DetailTimedOut"))
			p.raw(`</span>`)
		}
		p.raw(`</p><p>`)
		p.text(appI18n.Td(ctx, "Feedback", map[string]any{"Feedback": a.Feedback}))
		p.raw(`</p>`)
		if qd.Review != "" {
			p.raw(`<p class="review"><b>`)
			p.text(appI18n.T(ctx, "DetailReview"))
			p.raw(`:</b> `)
			p.text(qd.Review)
			p.raw(`</p>`)
		}
		p.raw(`</article>`)
		return p.err
	})
}
