package report

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/bigkaa/goartstore/rms-report/internal/domain/model"
)

func TestRender_Report(t *testing.T) {
	defer goleak.VerifyNone(t)

	tmpl, err := LoadTemplates()
	require.NoError(t, err)

	r, err := NewFileResolver(t.TempDir())
	require.NoError(t, err)
	sub, agg := sampleSubmission()
	sub.Metadata.Agency = "Acme <b>&</b> Co"

	doc, err := NewAssembler("assets/logo.svg").Assemble(sub, agg, r)
	require.NoError(t, err)

	out, err := tmpl.Render(ReportTemplate, doc)
	require.NoError(t, err)
	html := string(out)

	assert.Contains(t, html, "RMS-20260101-ABC123")
	assert.Contains(t, html, "Acme &lt;b&gt;&amp;&lt;/b&gt; Co")
	assert.Contains(t, html, string(doc.Evidence[0].URL))
	assert.Contains(t, html, string(doc.LogoURL))
	assert.NotContains(t, html, "ZgotmplZ")

	// фото категории выводятся в её разделе
	for _, sec := range doc.Sections {
		start := strings.Index(html, `id="section-`+sec.Key+`"`)
		require.GreaterOrEqual(t, start, 0, sec.Key)
		end := start + strings.Index(html[start:], "</div>\n</div>")
		require.Greater(t, end, start, sec.Key)
		require.NotEmpty(t, sec.Photos, sec.Key)
		for _, p := range sec.Photos {
			assert.Contains(t, html[start:end], `src="`+string(p.URL)+`"`, sec.Key)
		}
	}

	// строки таблицы в порядке реестра
	assert.Less(t, strings.Index(html, `id="row-bathroom"`), strings.Index(html, `id="row-heating"`))
}

func TestRender_Form(t *testing.T) {
	tmpl, err := LoadTemplates()
	require.NoError(t, err)

	cats := []model.CategoryDefinition{
		{Key: "bathroom", DisplayName: "Bathroom", ChecklistItems: []string{"Working toilet"}},
	}
	out, err := tmpl.Render(FormTemplate, NewFormPage(cats, time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, err)
	html := string(out)

	assert.Contains(t, html, `name="bathroom_status"`)
	assert.Contains(t, html, `value="non_compliant"`)
	assert.Contains(t, html, `name="bathroom_comment"`)
	assert.Contains(t, html, `name="bathroom_photos"`)
	assert.Contains(t, html, "04 Mar 2026")
}

func TestRender_ResultAndError(t *testing.T) {
	tmpl, err := LoadTemplates()
	require.NoError(t, err)

	out, err := tmpl.Render(ResultTemplate, ResultPage{
		Reference:   "RMS-20260101-ABC123",
		DownloadURL: "/static/reports/rms_report_x.pdf",
	})
	require.NoError(t, err)
	assert.Contains(t, string(out), `href="/static/reports/rms_report_x.pdf"`)

	out, err = tmpl.Render(ErrorTemplate, ErrorPage{Message: "<script>"})
	require.NoError(t, err)
	assert.Contains(t, string(out), "&lt;script&gt;")
}

func TestRender_UnknownTemplate(t *testing.T) {
	tmpl, err := LoadTemplates()
	require.NoError(t, err)

	_, err = tmpl.Render("missing.html", nil)
	assert.Error(t, err)
}
