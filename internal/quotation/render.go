package quotation

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/venuequote/api/internal/domain"
)

type renderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

func newRenderer() *renderer {
	return &renderer{
		md: goldmark.New(
			goldmark.WithExtensions(
				extension.NewTable(extension.WithTableCellAlignMethod(extension.TableCellAlignAttribute)),
				extension.Strikethrough,
			),
			goldmark.WithRendererOptions(html.WithHardWraps()),
		),
		policy: newDocumentHTMLPolicy(),
	}
}

func newDocumentHTMLPolicy() *bluemonday.Policy {
	policy := bluemonday.UGCPolicy()
	policy.AllowAttrs("align").OnElements("th", "td")
	policy.RequireNoFollowOnLinks(true)
	policy.AddTargetBlankToFullyQualifiedLinks(true)
	return policy
}

// render writes the document as markdown, converts it to HTML and sanitises the result.
// Customer notes are embedded verbatim so their markdown formatting survives.
func (r *renderer) render(doc Document, t func(string) string, f Formatter) (string, error) {
	var md strings.Builder
	line := func(format string, args ...any) {
		fmt.Fprintf(&md, format, args...)
		md.WriteByte('\n')
	}
	field := func(key, value string) {
		if value == "" {
			return
		}
		line("**%s:** %s", mdEscape(t(key)), mdEscape(value))
	}

	line("# %s", mdEscape(doc.Title))
	line("")
	field("quotation.number", doc.Number)
	field("quotation.issued", doc.IssuedText)
	field("quotation.valid_until", doc.ValidUntilText)
	field("quotation.issuer", doc.Issuer)
	line("")

	if doc.Customer.Name != "" || doc.Customer.Email != "" || doc.Customer.Phone != "" {
		line("## %s", mdEscape(t("quotation.customer")))
		line("")
		field("quotation.customer", doc.Customer.Name)
		contact := strings.Join(nonEmpty(doc.Customer.Email, doc.Customer.Phone), " · ")
		field("quotation.contact", contact)
		line("")
	}

	field("quotation.package", doc.Package.Name)
	field("quotation.event_type", doc.EventTypeLabel)
	guests := f.Number(doc.GuestCount)
	if doc.GuestsIncluded > 0 {
		guests += fmt.Sprintf(" (%s %s)", t("quotation.guests_included"), f.Number(doc.GuestsIncluded))
	}
	field("quotation.guests", guests)
	if doc.DayType != "" {
		field("quotation.day_type", t("day_type."+string(doc.DayType)))
	}
	field("quotation.period", doc.PeriodLabel)
	line("")

	if len(doc.Lines) > 0 {
		line("| %s | %s | %s | %s |", mdEscape(t("quotation.item")), mdEscape(t("quotation.quantity")),
			mdEscape(t("quotation.unit_price")), mdEscape(t("quotation.amount")))
		line("|---|---:|---:|---:|")
		for _, l := range doc.Lines {
			label := mdEscape(l.Label)
			if l.IsDiscount {
				label = "_" + label + "_"
			}
			line("| %s | %s | %s | %s |", label, f.Number(l.Quantity), mdEscape(l.UnitPriceText), mdEscape(l.AmountText))
		}
		line("")
	}

	line("| | |")
	line("|---|---:|")
	for _, row := range doc.Summary {
		if row.Key == "total" {
			line("| **%s** | **%s** |", mdEscape(row.Label), mdEscape(row.Text))
			continue
		}
		line("| %s | %s |", mdEscape(row.Label), mdEscape(row.Text))
	}
	line("")

	if doc.EventType == domain.EventTypeEvent {
		line("> %s", mdEscape(t("quotation.base_not_included")))
		line("")
	}
	if !doc.Breakdown.IsMinimumMet {
		line("> **%s** %s", mdEscape(t("quotation.minimum_spend_unmet")), mdEscape(f.Amount(doc.Breakdown.Shortfall)))
		line("")
	}
	for _, notice := range doc.Notices {
		text := notice.Message
		if notice.Subject != "" && notice.Code == domain.NoticeMalformedAddonAmount {
			text += " " + notice.Subject
		}
		line("> %s", mdEscape(text))
		line("")
	}

	if doc.Customer.Notes != "" {
		line("## %s", mdEscape(t("quotation.notes")))
		line("")
		line("%s", doc.Customer.Notes)
	}

	var buf bytes.Buffer
	if err := r.md.Convert([]byte(md.String()), &buf); err != nil {
		return "", fmt.Errorf("quotation: render markdown: %w", err)
	}
	return r.policy.Sanitize(buf.String()), nil
}

var mdEscaper = strings.NewReplacer(
	`\`, `\\`,
	"`", "\\`",
	"*", `\*`,
	"_", `\_`,
	"[", `\[`,
	"]", `\]`,
	"|", `\|`,
	"#", `\#`,
	"<", `\<`,
	">", `\>`,
)

func mdEscape(s string) string {
	return mdEscaper.Replace(s)
}

func nonEmpty(values ...string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
