package convert

import (
	"regexp"
	"sort"

	"github.com/gerunddev/blockmark/internal/blocks"
)

// inlinePattern is one recognized span syntax. Inner content never contains
// the delimiter character, so **a**b**c** yields two strong spans.
type inlinePattern struct {
	re   *regexp.Regexp
	mark blocks.Decorator
	link bool
}

// inlinePatterns is ordered by precedence; the index is the tie-break rank
// when two candidates start at the same offset.
var inlinePatterns = []inlinePattern{
	{re: regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`), link: true},
	{re: regexp.MustCompile(`\*\*([^*]+)\*\*`), mark: blocks.Strong},
	{re: regexp.MustCompile(`__([^_]+)__`), mark: blocks.Strong},
	{re: regexp.MustCompile(`\*([^*]+)\*`), mark: blocks.Emphasis},
	{re: regexp.MustCompile(`_([^_]+)_`), mark: blocks.Emphasis},
	{re: regexp.MustCompile("`([^`]+)`"), mark: blocks.Code},
	{re: regexp.MustCompile(`~~([^~]+)~~`), mark: blocks.StrikeThrough},
}

type inlineMatch struct {
	start, end int
	rank       int
	text       string
	href       string
}

// ResolveSpans splits one line of rich text into spans. Link matches mint a
// MarkDef each, returned alongside the spans so the caller can attach them to
// the owning block. Input without any recognized syntax comes back as a single
// plain span, even when empty.
func ResolveSpans(line string, keys blocks.KeySource) ([]blocks.Span, []blocks.MarkDef) {
	accepted := acceptMatches(line)

	if len(accepted) == 0 {
		return []blocks.Span{{Key: keys.NextKey(), Text: line}}, nil
	}

	var (
		spans    []blocks.Span
		markDefs []blocks.MarkDef
		offset   int
	)
	for _, m := range accepted {
		if m.start > offset {
			spans = append(spans, blocks.Span{Key: keys.NextKey(), Text: line[offset:m.start]})
		}

		span := blocks.Span{Key: keys.NextKey(), Text: m.text}
		p := inlinePatterns[m.rank]
		if p.link {
			def := blocks.MarkDef{Key: keys.NextKey(), Href: m.href, Blank: true}
			markDefs = append(markDefs, def)
			span.Link = def.Key
		} else {
			span.Marks = []blocks.Decorator{p.mark}
		}
		spans = append(spans, span)

		offset = m.end
	}
	if offset < len(line) {
		spans = append(spans, blocks.Span{Key: keys.NextKey(), Text: line[offset:]})
	}

	return spans, markDefs
}

// acceptMatches gathers candidates from every pattern, orders them by start
// offset then precedence, and keeps each one whose range is still free.
// Every accepted match reserves its full range, links included.
func acceptMatches(line string) []inlineMatch {
	var candidates []inlineMatch
	for rank, p := range inlinePatterns {
		for _, loc := range p.re.FindAllStringSubmatchIndex(line, -1) {
			m := inlineMatch{
				start: loc[0],
				end:   loc[1],
				rank:  rank,
				text:  line[loc[2]:loc[3]],
			}
			if p.link {
				m.href = line[loc[4]:loc[5]]
			}
			candidates = append(candidates, m)
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].start != candidates[j].start {
			return candidates[i].start < candidates[j].start
		}
		return candidates[i].rank < candidates[j].rank
	})

	var reserved reservations
	accepted := candidates[:0]
	for _, c := range candidates {
		if reserved.overlaps(c.start, c.end) {
			continue
		}
		reserved.add(c.start, c.end)
		accepted = append(accepted, c)
	}
	return accepted
}

// reservations is the set of byte ranges [start, end) claimed by accepted matches
type reservations [][2]int

func (r reservations) overlaps(start, end int) bool {
	for _, iv := range r {
		if start < iv[1] && iv[0] < end {
			return true
		}
	}
	return false
}

func (r *reservations) add(start, end int) {
	*r = append(*r, [2]int{start, end})
}
