package dsl

import (
	"regexp"
	"strings"
)

// Kind classifies a program line.
type Kind int

const (
	// KindLiteral lines are copied to the output unchanged.
	KindLiteral Kind = iota
	KindHere
	KindWhere
	KindLinks
	// KindElse is the alternative marker following a HERE block.
	KindElse
	// KindUnknown is an uppercase-leading word with no meaning; it is skipped.
	KindUnknown
)

// HereForm is the emission variant of a HERE directive.
type HereForm int

const (
	HereScope    HereForm = iota // HERE
	HereNode                     // HERE NODE
	HereAnnotate                 // HERE NODE word
	HereInvalid
)

// LinksForm is the emission variant of a LINKS directive.
type LinksForm int

const (
	LinksBare     LinksForm = iota // LINKS
	LinksFromHere                  // LINKS HERE -> NODE
	LinksToHere                    // LINKS NODE -> HERE
	LinksInvalid
)

// FilterForm is the pattern variant of a WHERE directive.
type FilterForm int

const (
	FilterRegexp    FilterForm = iota // WHERE /re/
	FilterFold                        // WHERE FOLD name
	FilterAttribute                   // WHERE attr
	FilterInvalid
)

// Directive is a program line parsed once into its tagged variant.
type Directive struct {
	Kind Kind
	Line string

	Here HereForm
	Word string

	Links LinksForm
	Arrow string

	Filter  FilterForm
	Pattern string
}

var (
	hereNode      = regexp.MustCompile(`^HERE NODE$`)
	hereAnnotate  = regexp.MustCompile(`^HERE NODE (\w+)`)
	linksFromHere = regexp.MustCompile(`^LINKS HERE (->|--) NODE$`)
	linksToHere   = regexp.MustCompile(`^LINKS NODE (->|--) HERE$`)
	whereRegexp   = regexp.MustCompile(`^WHERE /(.*)/$`)
	whereFold     = regexp.MustCompile(`^WHERE FOLD (.+)$`)
	whereAttr     = regexp.MustCompile(`^WHERE ([a-z_]+)$`)
)

// Classify parses one stripped program line.
func Classify(line string) Directive {
	d := Directive{Kind: KindLiteral, Line: line}
	if line == "" || line[0] < 'A' || line[0] > 'Z' {
		return d
	}

	text := strings.TrimRight(line, " \t")
	keyword, _, _ := strings.Cut(text, " ")

	switch keyword {
	case "HERE":
		d.Kind = KindHere
		d.Here = classifyHere(text, &d)
	case "WHERE":
		d.Kind = KindWhere
		d.Filter = classifyWhere(text, &d)
	case "LINKS":
		d.Kind = KindLinks
		d.Links = classifyLinks(text, &d)
	case "ELSE":
		d.Kind = KindElse
		if text != "ELSE" {
			d.Kind = KindUnknown
		}
	default:
		d.Kind = KindUnknown
	}
	return d
}

func classifyHere(text string, d *Directive) HereForm {
	switch {
	case text == "HERE":
		return HereScope
	case hereNode.MatchString(text):
		return HereNode
	}
	if m := hereAnnotate.FindStringSubmatch(text); m != nil {
		d.Word = m[1]
		return HereAnnotate
	}
	return HereInvalid
}

func classifyLinks(text string, d *Directive) LinksForm {
	if text == "LINKS" {
		return LinksBare
	}
	if m := linksFromHere.FindStringSubmatch(text); m != nil {
		d.Arrow = m[1]
		return LinksFromHere
	}
	if m := linksToHere.FindStringSubmatch(text); m != nil {
		d.Arrow = m[1]
		return LinksToHere
	}
	return LinksInvalid
}

func classifyWhere(text string, d *Directive) FilterForm {
	if m := whereRegexp.FindStringSubmatch(text); m != nil {
		d.Pattern = m[1]
		return FilterRegexp
	}
	if m := whereFold.FindStringSubmatch(text); m != nil {
		d.Pattern = strings.TrimSpace(m[1])
		return FilterFold
	}
	if m := whereAttr.FindStringSubmatch(text); m != nil {
		d.Pattern = m[1]
		return FilterAttribute
	}
	return FilterInvalid
}
