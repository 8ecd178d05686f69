package diagram

// ActorKind selects how a sequence participant is drawn.
type ActorKind string

const (
	ActorParticipant ActorKind = "participant"
	ActorFigure      ActorKind = "actor"
)

// LineStyle is the stroke of a sequence message.
type LineStyle string

const (
	LineSolid  LineStyle = "solid"
	LineDashed LineStyle = "dashed"
)

// ArrowHead is the head drawn at the receiving end of a message.
type ArrowHead string

const (
	HeadFilled ArrowHead = "filled"
	HeadOpen   ArrowHead = "open"
	HeadCross  ArrowHead = "cross"
	HeadNone   ArrowHead = "none"
)

// Actor is a participant column.
type Actor struct {
	ID    string
	Label string
	Kind  ActorKind
}

// Message is a single arrow between two actors.
type Message struct {
	From, To   string
	Label      string
	Line       LineStyle
	Head       ArrowHead
	Activate   bool // activates the receiver
	Deactivate bool // deactivates the sender
	Number     int  // 1-based when autonumber is on, otherwise 0
}

// BlockType is the keyword that opened a structured block.
type BlockType string

const (
	BlockLoop     BlockType = "loop"
	BlockAlt      BlockType = "alt"
	BlockOpt      BlockType = "opt"
	BlockPar      BlockType = "par"
	BlockCritical BlockType = "critical"
	BlockBreak    BlockType = "break"
)

// Divider splits a block into labelled sections (else, and, option).
type Divider struct {
	Label string
	Index int // index of the first message after the divider
}

// Block frames a contiguous run of messages.
type Block struct {
	Type     BlockType
	Label    string
	Start    int // index of the first message inside the block
	End      int // index one past the last message inside the block
	Dividers []Divider
}

// NotePosition places a note relative to its anchor actors.
type NotePosition string

const (
	NoteLeftOf  NotePosition = "left of"
	NoteRightOf NotePosition = "right of"
	NoteOver    NotePosition = "over"
)

// Note is free text attached to one or more actor columns.
type Note struct {
	Position NotePosition
	Actors   []string
	Text     string
	Index    int // number of messages preceding the note
}

// EventKind identifies an entry in the sequence timeline.
type EventKind int

const (
	EventMessage EventKind = iota
	EventNote
	EventBlockStart
	EventDivider
	EventBlockEnd
	EventActivate
	EventDeactivate
)

// Event is one step of the timeline. Ref indexes Messages, Notes or Blocks
// depending on Kind; for dividers Sub is the divider index within the block.
// Activation events carry the actor id.
type Event struct {
	Kind  EventKind
	Ref   int
	Sub   int
	Actor string
}

// SequenceDiagram is the parsed model of a sequenceDiagram source.
type SequenceDiagram struct {
	Actors   []*Actor
	Messages []Message
	Blocks   []Block
	Notes    []Note
	Events   []Event

	index map[string]int
}

// Actor returns the actor with the given id, or nil.
func (d *SequenceDiagram) Actor(id string) *Actor {
	if i, ok := d.index[id]; ok {
		return d.Actors[i]
	}
	return nil
}

// ActorIndex returns the column of actor id, or -1.
func (d *SequenceDiagram) ActorIndex(id string) int {
	if i, ok := d.index[id]; ok {
		return i
	}
	return -1
}

// Ensure returns the actor id, creating a participant on first reference.
func (d *SequenceDiagram) Ensure(id string) *Actor {
	if a := d.Actor(id); a != nil {
		return a
	}
	if d.index == nil {
		d.index = make(map[string]int)
	}
	a := &Actor{ID: id, Label: id, Kind: ActorParticipant}
	d.index[id] = len(d.Actors)
	d.Actors = append(d.Actors, a)
	return a
}
