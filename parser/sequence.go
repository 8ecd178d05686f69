package parser

import (
	"regexp"
	"strings"

	"github.com/charmbracelet/log"

	"termaid/diagram"
)

var (
	reParticipant = regexp.MustCompile(`^(participant|actor)\s+(\S+?)(?:\s+as\s+(.+))?$`)
	reMessage     = regexp.MustCompile(`^([^\s:+<>-][^:<>]*?)\s*(-->>|->>|-->|->|--x|-x|--\)|-\))\s*([+-]?)\s*([^\s:+-][^:]*?)\s*(?::\s*(.*))?$`)
	reActivation  = regexp.MustCompile(`^(activate|deactivate)\s+(\S+)$`)
	reNote        = regexp.MustCompile(`(?i)^note\s+(left of|right of|over)\s+([^:]+?)\s*:\s*(.*)$`)
	reBlockOpen   = regexp.MustCompile(`^(loop|alt|opt|par|critical|break)\b\s*(.*)$`)
	reDivider     = regexp.MustCompile(`^(else|and|option)\b\s*(.*)$`)
	reGroupOpen   = regexp.MustCompile(`^(rect|box)\b`)
	reSeqIgnore   = regexp.MustCompile(`^(title|links?|properties|details|create|destroy)\b`)
)

// seqArrows maps a message operator to its stroke and head.
var seqArrows = map[string]struct {
	line diagram.LineStyle
	head diagram.ArrowHead
}{
	"->":   {diagram.LineSolid, diagram.HeadNone},
	"-->":  {diagram.LineDashed, diagram.HeadNone},
	"->>":  {diagram.LineSolid, diagram.HeadFilled},
	"-->>": {diagram.LineDashed, diagram.HeadFilled},
	"-x":   {diagram.LineSolid, diagram.HeadCross},
	"--x":  {diagram.LineDashed, diagram.HeadCross},
	"-)":   {diagram.LineSolid, diagram.HeadOpen},
	"--)":  {diagram.LineDashed, diagram.HeadOpen},
}

// ParseSequence parses a sequenceDiagram source.
func ParseSequence(lines []Line, logger *log.Logger) (*diagram.SequenceDiagram, error) {
	if logger == nil {
		logger = discard()
	}
	if len(lines) == 0 {
		return nil, ErrEmptyInput
	}
	if headerKeyword(lines[0]) != "sequencediagram" {
		return nil, headerError(ErrUnknownHeader, lines[0], "sequenceDiagram", "sequence diagrams start with 'sequenceDiagram'")
	}

	d := &diagram.SequenceDiagram{}
	// Open frames; -1 marks rect/box groups that are not drawn as blocks.
	var stack []int
	autonumber := false

	for _, l := range lines[1:] {
		text := l.Text
		switch {
		case text == "autonumber" || strings.HasPrefix(text, "autonumber "):
			autonumber = true
			continue
		case text == "end":
			if len(stack) == 0 {
				skip(logger, l, "unbalanced end")
				continue
			}
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if top >= 0 {
				d.Blocks[top].End = len(d.Messages)
				d.Events = append(d.Events, diagram.Event{Kind: diagram.EventBlockEnd, Ref: top})
			}
			continue
		}

		if m := reParticipant.FindStringSubmatch(text); m != nil {
			a := d.Ensure(m[2])
			a.Kind = diagram.ActorKind(m[1])
			if m[3] != "" {
				a.Label = label(m[3])
			}
			continue
		}
		if m := reNote.FindStringSubmatch(text); m != nil {
			note := diagram.Note{
				Position: diagram.NotePosition(strings.ToLower(m[1])),
				Text:     label(m[3]),
				Index:    len(d.Messages),
			}
			for _, id := range strings.Split(m[2], ",") {
				if id = strings.TrimSpace(id); id != "" {
					d.Ensure(id)
					note.Actors = append(note.Actors, id)
				}
			}
			d.Events = append(d.Events, diagram.Event{Kind: diagram.EventNote, Ref: len(d.Notes)})
			d.Notes = append(d.Notes, note)
			continue
		}
		if m := reActivation.FindStringSubmatch(text); m != nil {
			d.Ensure(m[2])
			kind := diagram.EventActivate
			if m[1] == "deactivate" {
				kind = diagram.EventDeactivate
			}
			d.Events = append(d.Events, diagram.Event{Kind: kind, Actor: m[2]})
			continue
		}
		if m := reBlockOpen.FindStringSubmatch(text); m != nil {
			stack = append(stack, len(d.Blocks))
			d.Events = append(d.Events, diagram.Event{Kind: diagram.EventBlockStart, Ref: len(d.Blocks)})
			d.Blocks = append(d.Blocks, diagram.Block{
				Type:  diagram.BlockType(m[1]),
				Label: label(m[2]),
				Start: len(d.Messages),
				End:   -1,
			})
			continue
		}
		if m := reDivider.FindStringSubmatch(text); m != nil {
			top := -1
			for i := len(stack) - 1; i >= 0 && top < 0; i-- {
				top = stack[i]
			}
			if top < 0 {
				skip(logger, l, "divider outside block")
				continue
			}
			b := &d.Blocks[top]
			d.Events = append(d.Events, diagram.Event{Kind: diagram.EventDivider, Ref: top, Sub: len(b.Dividers)})
			b.Dividers = append(b.Dividers, diagram.Divider{Label: label(m[2]), Index: len(d.Messages)})
			continue
		}
		if reGroupOpen.MatchString(text) {
			stack = append(stack, -1)
			continue
		}
		if m := reMessage.FindStringSubmatch(text); m != nil {
			from, to := strings.TrimSpace(m[1]), strings.TrimSpace(m[4])
			d.Ensure(from)
			d.Ensure(to)
			arrow := seqArrows[m[2]]
			msg := diagram.Message{
				From:       from,
				To:         to,
				Label:      label(m[5]),
				Line:       arrow.line,
				Head:       arrow.head,
				Activate:   m[3] == "+",
				Deactivate: m[3] == "-",
			}
			if autonumber {
				msg.Number = len(d.Messages) + 1
			}
			d.Events = append(d.Events, diagram.Event{Kind: diagram.EventMessage, Ref: len(d.Messages)})
			d.Messages = append(d.Messages, msg)
			if msg.Activate {
				d.Events = append(d.Events, diagram.Event{Kind: diagram.EventActivate, Actor: to})
			}
			if msg.Deactivate {
				d.Events = append(d.Events, diagram.Event{Kind: diagram.EventDeactivate, Actor: from})
			}
			continue
		}
		if reSeqIgnore.MatchString(text) {
			skip(logger, l, "unsupported statement")
			continue
		}
		skip(logger, l, "no matching statement")
	}

	for i := len(stack) - 1; i >= 0; i-- {
		if top := stack[i]; top >= 0 {
			logger.Debug("closing unterminated block at end of input", "type", d.Blocks[top].Type)
			d.Blocks[top].End = len(d.Messages)
			d.Events = append(d.Events, diagram.Event{Kind: diagram.EventBlockEnd, Ref: top})
		}
	}
	logger.Debug("parsed sequence diagram", "actors", len(d.Actors), "messages", len(d.Messages), "blocks", len(d.Blocks))
	return d, nil
}
