package parser

import (
	"regexp"
	"strings"

	"github.com/charmbracelet/log"

	"termaid/diagram"
)

const erEntity = `([\w-]+)(?:\[\s*"?([^\]"]*)"?\s*\])?`

var (
	reEROpen     = regexp.MustCompile(`^` + erEntity + `\s*\{\s*$`)
	reERBare     = regexp.MustCompile(`^` + erEntity + `$`)
	reERRel      = regexp.MustCompile(`^` + erEntity + `\s*(\|o|\|\||\}o|\}\|)(--|\.\.)(o\||\|\||o\{|\|\{)\s*` + erEntity + `\s*(?::\s*(.*))?$`)
	reERAttr     = regexp.MustCompile(`^(\S+)\s+(\S+)((?:\s+(?:PK|FK|UK)(?:\s*,\s*(?:PK|FK|UK))*)?)(?:\s+"([^"]*)")?$`)
	reERIgnore   = regexp.MustCompile(`^(direction|style|classDef|class)\b`)
	erLeftCards  = map[string]diagram.Cardinality{"|o": diagram.ZeroOrOne, "||": diagram.ExactlyOne, "}o": diagram.ZeroOrMore, "}|": diagram.OneOrMore}
	erRightCards = map[string]diagram.Cardinality{"o|": diagram.ZeroOrOne, "||": diagram.ExactlyOne, "o{": diagram.ZeroOrMore, "|{": diagram.OneOrMore}
)

// ParseER parses an erDiagram source.
func ParseER(lines []Line, logger *log.Logger) (*diagram.ERDiagram, error) {
	if logger == nil {
		logger = discard()
	}
	if len(lines) == 0 {
		return nil, ErrEmptyInput
	}
	if headerKeyword(lines[0]) != "erdiagram" {
		return nil, headerError(ErrUnknownHeader, lines[0], "erDiagram", "entity-relationship diagrams start with 'erDiagram'")
	}

	d := &diagram.ERDiagram{}
	var open *diagram.Entity
	for _, l := range lines[1:] {
		text := l.Text
		if open != nil {
			if text == "}" {
				open = nil
				continue
			}
			if m := reERAttr.FindStringSubmatch(text); m != nil {
				attr := diagram.Attribute{Type: m[1], Name: m[2], Comment: m[4]}
				for _, k := range strings.Split(m[3], ",") {
					if k = strings.TrimSpace(k); k != "" {
						attr.Keys = append(attr.Keys, k)
					}
				}
				open.Attributes = append(open.Attributes, attr)
				continue
			}
			skip(logger, l, "invalid attribute")
			continue
		}
		if m := reEROpen.FindStringSubmatch(text); m != nil {
			open = ensureEntity(d, m[1], m[2])
			continue
		}
		if m := reERRel.FindStringSubmatch(text); m != nil {
			from := ensureEntity(d, m[1], m[2])
			to := ensureEntity(d, m[6], m[7])
			d.Relations = append(d.Relations, diagram.EntityRelation{
				From:        from.ID,
				To:          to.ID,
				FromCard:    erLeftCards[m[3]],
				ToCard:      erRightCards[m[5]],
				Identifying: m[4] == "--",
				Label:       label(m[8]),
			})
			continue
		}
		if m := reERBare.FindStringSubmatch(text); m != nil {
			ensureEntity(d, m[1], m[2])
			continue
		}
		if reERIgnore.MatchString(text) {
			skip(logger, l, "unsupported statement")
			continue
		}
		skip(logger, l, "no matching statement")
	}
	logger.Debug("parsed er diagram", "entities", len(d.Entities), "relations", len(d.Relations))
	return d, nil
}

func ensureEntity(d *diagram.ERDiagram, id, alias string) *diagram.Entity {
	e := d.Ensure(id)
	if alias = strings.TrimSpace(alias); alias != "" {
		e.Label = alias
	}
	return e
}
