package parser

import (
	"regexp"
	"strings"

	"github.com/charmbracelet/log"

	"termaid/diagram"
)

const classID = `[A-Za-z_][\w]*(?:~[^~]+~)?`

var (
	reClassRel = regexp.MustCompile(`^(` + classID + `)\s*(?:"([^"]*)"\s*)?` +
		`(<\|--|<\|\.\.|--\|>|\.\.\|>|\*--|--\*|o--|--o|<--|-->|<\.\.|\.\.>|--|\.\.)` +
		`\s*(?:"([^"]*)"\s*)?(` + classID + `)\s*(?::\s*(.*))?$`)
	reClassOpen   = regexp.MustCompile(`^class\s+(` + classID + `)\s*(?:\["([^"]*)"\])?\s*(?:<<([^>]+)>>)?\s*(?::::[\w-]+)?\s*\{\s*(.*)$`)
	reClassDecl   = regexp.MustCompile(`^class\s+(` + classID + `)\s*(?:\["([^"]*)"\])?\s*(?:<<([^>]+)>>)?\s*(?::::[\w-]+)?$`)
	reAnnotation  = regexp.MustCompile(`^<<([^>]+)>>\s*(` + classID + `)?$`)
	reMemberLine  = regexp.MustCompile(`^(` + classID + `)\s*:\s*(.+)$`)
	reGeneric     = regexp.MustCompile(`~([^~]+)~`)
	reClassIgnore = regexp.MustCompile(`^(direction|note|link|click|callback|style|classDef|cssClass)\b`)
)

// relOps maps a class relationship operator to its type, marker end and stroke.
var relOps = map[string]struct {
	typ    diagram.RelationType
	marker diagram.MarkerEnd
	dashed bool
}{
	"<|--": {diagram.RelInheritance, diagram.MarkerFrom, false},
	"--|>": {diagram.RelInheritance, diagram.MarkerTo, false},
	"<|..": {diagram.RelRealization, diagram.MarkerFrom, true},
	"..|>": {diagram.RelRealization, diagram.MarkerTo, true},
	"*--":  {diagram.RelComposition, diagram.MarkerFrom, false},
	"--*":  {diagram.RelComposition, diagram.MarkerTo, false},
	"o--":  {diagram.RelAggregation, diagram.MarkerFrom, false},
	"--o":  {diagram.RelAggregation, diagram.MarkerTo, false},
	"<--":  {diagram.RelAssociation, diagram.MarkerFrom, false},
	"-->":  {diagram.RelAssociation, diagram.MarkerTo, false},
	"<..":  {diagram.RelDependency, diagram.MarkerFrom, true},
	"..>":  {diagram.RelDependency, diagram.MarkerTo, true},
	"--":   {diagram.RelLink, diagram.MarkerNone, false},
	"..":   {diagram.RelLink, diagram.MarkerNone, true},
}

// ParseClass parses a classDiagram source.
func ParseClass(lines []Line, logger *log.Logger) (*diagram.ClassDiagram, error) {
	if logger == nil {
		logger = discard()
	}
	if len(lines) == 0 {
		return nil, ErrEmptyInput
	}
	if kw := headerKeyword(lines[0]); kw != "classdiagram" && kw != "classdiagram-v2" {
		return nil, headerError(ErrUnknownHeader, lines[0], "classDiagram", "class diagrams start with 'classDiagram'")
	}

	d := &diagram.ClassDiagram{}
	var open *diagram.Class // class whose { } block is being read
	for _, l := range lines[1:] {
		text := l.Text
		if open != nil {
			if text == "}" {
				open = nil
				continue
			}
			classBody(open, text)
			continue
		}
		if m := reClassOpen.FindStringSubmatch(text); m != nil {
			open = declareClass(d, m[1], m[2], m[3])
			if body := strings.TrimSpace(m[4]); body != "" {
				// Single-line form: class A { +x }
				if strings.HasSuffix(body, "}") {
					body = strings.TrimSpace(strings.TrimSuffix(body, "}"))
					if body != "" {
						classBody(open, body)
					}
					open = nil
				} else {
					classBody(open, body)
				}
			}
			continue
		}
		if m := reClassDecl.FindStringSubmatch(text); m != nil {
			declareClass(d, m[1], m[2], m[3])
			continue
		}
		if m := reAnnotation.FindStringSubmatch(text); m != nil {
			if m[2] == "" {
				skip(logger, l, "annotation without class")
				continue
			}
			declareClass(d, m[2], "", m[1])
			continue
		}
		if m := reClassRel.FindStringSubmatch(text); m != nil {
			op := relOps[m[3]]
			from := declareClass(d, m[1], "", "")
			to := declareClass(d, m[5], "", "")
			d.Relationships = append(d.Relationships, diagram.Relationship{
				From:             from.ID,
				To:               to.ID,
				Type:             op.typ,
				Marker:           op.marker,
				Label:            label(m[6]),
				Dashed:           op.dashed,
				FromMultiplicity: m[2],
				ToMultiplicity:   m[4],
			})
			continue
		}
		if m := reMemberLine.FindStringSubmatch(text); m != nil {
			c := declareClass(d, m[1], "", "")
			addMember(c, m[2])
			continue
		}
		if reClassIgnore.MatchString(text) {
			skip(logger, l, "unsupported statement")
			continue
		}
		skip(logger, l, "no matching statement")
	}
	logger.Debug("parsed class diagram", "classes", len(d.Classes), "relationships", len(d.Relationships))
	return d, nil
}

// declareClass ensures a class exists and applies an optional label and
// annotation. Generic parameters Name~T~ display as Name<T>.
func declareClass(d *diagram.ClassDiagram, raw, lbl, annotation string) *diagram.Class {
	id, generic, _ := strings.Cut(raw, "~")
	c := d.Ensure(id)
	if generic != "" {
		c.Label = id + "<" + strings.TrimSuffix(generic, "~") + ">"
	}
	if lbl != "" {
		c.Label = label(lbl)
	}
	if annotation != "" {
		c.Annotation = strings.TrimSpace(annotation)
	}
	return c
}

// classBody handles one line inside a class { } block.
func classBody(c *diagram.Class, text string) {
	if m := reAnnotation.FindStringSubmatch(text); m != nil && m[2] == "" {
		c.Annotation = strings.TrimSpace(m[1])
		return
	}
	addMember(c, text)
}

// addMember parses a member line. A member with a parameter list is a
// method; anything else is an attribute kept as written.
func addMember(c *diagram.Class, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	var m diagram.Member
	if strings.ContainsRune("+-#~", rune(text[0])) {
		m.Visibility, text = text[:1], strings.TrimSpace(text[1:])
	}
	text = reGeneric.ReplaceAllString(text, "<$1>")
	if lp := strings.IndexByte(text, '('); lp >= 0 {
		if rp := strings.LastIndexByte(text, ')'); rp > lp {
			m.Method = true
			end := rp + 1
			for end < len(text) && (text[end] == '$' || text[end] == '*') {
				end++
			}
			m.Name = text[:end]
			m.Type = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(text[end:]), ":"))
			c.Methods = append(c.Methods, m)
			return
		}
	}
	if name, typ, ok := strings.Cut(text, ":"); ok {
		m.Name, m.Type = strings.TrimSpace(name), strings.TrimSpace(typ)
	} else {
		m.Name = text
	}
	c.Attributes = append(c.Attributes, m)
}
