// Package timeparse resolves the free-form date and time expressions accepted
// by the tool surface ("tomorrow at 8pm", "next friday", "2025-12-25") into
// timezone-aware times anchored to the user's local timezone.
package timeparse

import (
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

// Parser resolves natural-language and absolute expressions.
type Parser struct {
	w   *when.Parser
	loc *time.Location
	now func() time.Time
}

// New creates a parser anchored to the given timezone.
func New(loc *time.Location) *Parser {
	if loc == nil {
		loc = time.Local
	}
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return &Parser{
		w:   w,
		loc: loc,
		now: time.Now,
	}
}

// Parse resolves expr to a time in the parser's timezone. Natural-language
// expressions are tried first; absolute formats fall back to dateparse.
// Clock times that already passed today are pushed to tomorrow (future
// preference), matching how users phrase watch plans.
func (p *Parser) Parse(expr string) (time.Time, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return time.Time{}, fmt.Errorf("empty time expression")
	}

	base := p.now().In(p.loc)
	if r, err := p.w.Parse(expr, base); err == nil && r != nil {
		t := r.Time.In(p.loc)
		if t.Before(base) && base.Sub(t) < 24*time.Hour {
			t = t.Add(24 * time.Hour)
		}
		return t, nil
	}

	if t, err := dateparse.ParseIn(expr, p.loc); err == nil {
		return t.In(p.loc), nil
	}

	return time.Time{}, fmt.Errorf("could not parse %q", expr)
}

// ParseDate resolves expr like Parse but without the future nudge, for
// cancellation windows where "today" must stay today even late in the day.
func (p *Parser) ParseDate(expr string) (time.Time, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return time.Time{}, fmt.Errorf("empty date expression")
	}

	base := p.now().In(p.loc)
	if r, err := p.w.Parse(expr, base); err == nil && r != nil {
		return r.Time.In(p.loc), nil
	}

	if t, err := dateparse.ParseIn(expr, p.loc); err == nil {
		return t.In(p.loc), nil
	}

	return time.Time{}, fmt.Errorf("could not parse %q", expr)
}

// Location returns the timezone the parser anchors to.
func (p *Parser) Location() *time.Location {
	return p.loc
}
