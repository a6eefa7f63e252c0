// Package markup hides Discord markdown and formatting tokens from the
// translation engine by wrapping them in translate="no" spans, and restores
// them afterwards.
package markup

import (
	"regexp"
	"strings"
)

const (
	KindURL            = "url"
	KindCodeBlock      = "code-block"
	KindCode           = "code"
	KindStrongOrItalic = "strong-or-italic"
	KindFormatting     = "formatting"
)

// segment is a piece of text during escaping. Protected segments were
// produced by an earlier rule and are never matched again.
type segment struct {
	text      string
	protected bool
}

type unwrap struct {
	match   *regexp.Regexp
	replace string
}

type rule struct {
	kind string
	// match finds spans in unprotected text
	match *regexp.Regexp
	// wrap turns the submatches of one match into output segments
	wrap func(groups []string) []segment
	// unwraps are applied in order by Unescape
	unwraps []unwrap
}

// Marker returns the opening tag used for spans of the given kind.
func Marker(kind string) string {
	return `<span translate="no" data-type="` + kind + `">`
}

const closeTag = "</span>"

func wrapped(kind, s string) string {
	return Marker(kind) + s + closeTag
}

// wrapGroup wraps submatch n as one protected span.
func wrapGroup(kind string, n int) func([]string) []segment {
	return func(g []string) []segment {
		return []segment{{text: wrapped(kind, g[n]), protected: true}}
	}
}

// wrapDelimiters wraps the emphasis delimiters on both sides and leaves the
// inner text translatable. Groups 1,2 hold a ** match, groups 3,4 a * match.
func wrapDelimiters(g []string) []segment {
	delim, inner := g[1], g[2]
	if delim == "" {
		delim, inner = g[3], g[4]
	}
	return []segment{
		{text: wrapped(KindStrongOrItalic, delim), protected: true},
		{text: inner},
		{text: wrapped(KindStrongOrItalic, delim), protected: true},
	}
}

func unwrapPattern(kind, inner string) *regexp.Regexp {
	return regexp.MustCompile(regexp.QuoteMeta(Marker(kind)) + inner + regexp.QuoteMeta(closeTag))
}

func strongUnwrap(delim string) unwrap {
	tag := regexp.QuoteMeta(Marker(KindStrongOrItalic) + delim + closeTag)
	return unwrap{
		match:   regexp.MustCompile(tag + `([\S\s]+?)` + tag),
		replace: delim + "${1}" + delim,
	}
}

// rules is the ordered escape table. Unescape walks the same table.
var rules = []rule{
	{
		// <https://example.com>, <example.com/path>
		kind:    KindURL,
		match:   regexp.MustCompile(`<((?:https?://)?[\w.-]+(?:\.[\w.-]+)+(?:/[\w%&./=?-]*)?)>`),
		wrap:    wrapGroup(KindURL, 1),
		unwraps: []unwrap{{unwrapPattern(KindURL, `([\S\s]+?)`), "<${1}>"}},
	},
	{
		kind:    KindCodeBlock,
		match:   regexp.MustCompile("```([\\S\\s]+?)```"),
		wrap:    wrapGroup(KindCodeBlock, 1),
		unwraps: []unwrap{{unwrapPattern(KindCodeBlock, `([\S\s]+?)`), "```${1}```"}},
	},
	{
		kind:    KindCode,
		match:   regexp.MustCompile("`([\\S\\s]+?)`"),
		wrap:    wrapGroup(KindCode, 1),
		unwraps: []unwrap{{unwrapPattern(KindCode, `([\S\s]+?)`), "`${1}`"}},
	},
	{
		// RE2 has no backreferences: the ** alternative is tried first,
		// same as a greedy \*{1,2} with \1.
		kind:    KindStrongOrItalic,
		match:   regexp.MustCompile(`(\*\*)(\S+?)\*\*|(\*)(\S+?)\*`),
		wrap:    wrapDelimiters,
		unwraps: []unwrap{strongUnwrap("**"), strongUnwrap("*")},
	},
	{
		// <@id> <@!id> <@&id> <#id> <:name:id> <a:name:id> <t:unix:R>
		kind:    KindFormatting,
		match:   regexp.MustCompile(`<[#:@at]\S+>`),
		wrap:    wrapGroup(KindFormatting, 0),
		unwraps: []unwrap{{unwrapPattern(KindFormatting, `(<[#:@at]\S+?>)`), "${1}"}},
	},
	{
		// <1234567890:customize>
		kind:    KindFormatting,
		match:   regexp.MustCompile(`<\d+:\S+>`),
		wrap:    wrapGroup(KindFormatting, 0),
		unwraps: []unwrap{{unwrapPattern(KindFormatting, `(<\d+:\S+?>)`), "${1}"}},
	},
}

// Escape wraps every markup span of text so the translation engine leaves it alone.
func Escape(text string) string {
	segs := []segment{{text: text}}
	for _, r := range rules {
		segs = r.apply(segs)
	}

	var b strings.Builder
	b.Grow(len(text))
	for _, s := range segs {
		b.WriteString(s.text)
	}
	return b.String()
}

func (r rule) apply(segs []segment) []segment {
	out := make([]segment, 0, len(segs))
	for _, s := range segs {
		if s.protected {
			out = append(out, s)
			continue
		}
		matches := r.match.FindAllStringSubmatchIndex(s.text, -1)
		if len(matches) == 0 {
			out = append(out, s)
			continue
		}
		last := 0
		for _, m := range matches {
			if m[0] > last {
				out = append(out, segment{text: s.text[last:m[0]]})
			}
			out = append(out, r.wrap(submatches(s.text, m))...)
			last = m[1]
		}
		if last < len(s.text) {
			out = append(out, segment{text: s.text[last:]})
		}
	}
	return out
}

func submatches(s string, idx []int) []string {
	groups := make([]string, len(idx)/2)
	for i := range groups {
		if idx[2*i] >= 0 {
			groups[i] = s[idx[2*i]:idx[2*i+1]]
		}
	}
	return groups
}

// Unescape restores the markup wrapped by Escape. Markers it does not
// recognise are left as they are.
func Unescape(text string) string {
	for _, r := range rules {
		for _, u := range r.unwraps {
			text = u.match.ReplaceAllString(text, u.replace)
		}
	}
	return text
}
