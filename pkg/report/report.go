// Package report renders the bookkeeping documents caselog produces:
// case-closure confirmations, issue-closure summaries, CI-failure logs,
// worktree-monitoring notes and next-steps checklists.
package report

import (
	"embed"
	"strings"
	"text/template"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/caselog-dev/caselog/pkg/domain/model"
)

//go:embed templates/*.md.tmpl
var templateFiles embed.FS

var templates = template.Must(template.New("report").Funcs(template.FuncMap{
	"shortSHA": shortSHA,
	"utc":      func(t time.Time) string { return t.UTC().Format(time.RFC3339) },
	"checkbox": func(done bool) string {
		if done {
			return "[x]"
		}
		return "[ ]"
	},
}).ParseFS(templateFiles, "templates/*.md.tmpl"))

func shortSHA(sha string) string {
	if len(sha) > 12 {
		return sha[:12]
	}
	return sha
}

func render(name string, data any) (string, error) {
	var buf strings.Builder
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", goerr.Wrap(err, "failed to render report", goerr.V("template", name))
	}
	return buf.String(), nil
}

// CaseClosure renders the case-closure confirmation for a closed case.
func CaseClosure(c *model.Case) (string, error) {
	return render("case_closure.md.tmpl", c)
}

// IssueClosure renders an issue-closure summary.
func IssueClosure(c *model.Case, issue *model.GitHubIssue) (string, error) {
	return render("issue_closure.md.tmpl", map[string]any{
		"Case":  c,
		"Issue": issue,
	})
}

// CIFailure renders a CI-failure log entry.
func CIFailure(f *model.CIFailure) (string, error) {
	return render("ci_failure.md.tmpl", f)
}

// WorktreeNote renders a worktree-monitoring note for one snapshot.
func WorktreeNote(s *model.WorktreeSnapshot) (string, error) {
	return render("worktree_note.md.tmpl", s)
}

// NextSteps renders the remaining checklist of a case.
func NextSteps(c *model.Case) (string, error) {
	return render("next_steps.md.tmpl", c)
}
