package diagram

// Cardinality is one end of an entity-relationship line.
type Cardinality string

const (
	ZeroOrOne  Cardinality = "0..1"
	ExactlyOne Cardinality = "1"
	ZeroOrMore Cardinality = "0..*"
	OneOrMore  Cardinality = "1..*"
)

// Attribute is a row in an entity box.
type Attribute struct {
	Type    string
	Name    string
	Keys    []string // PK, FK, UK
	Comment string
}

// Entity is a box in an entity-relationship diagram.
type Entity struct {
	ID         string
	Label      string
	Attributes []Attribute
}

// EntityRelation connects two entities.
type EntityRelation struct {
	From, To    string
	FromCard    Cardinality
	ToCard      Cardinality
	Identifying bool
	Label       string
}

// ERDiagram is the parsed model of an erDiagram source.
type ERDiagram struct {
	Entities  []*Entity
	Relations []EntityRelation

	index map[string]int
}

// Entity returns the entity with the given id, or nil.
func (d *ERDiagram) Entity(id string) *Entity {
	if i, ok := d.index[id]; ok {
		return d.Entities[i]
	}
	return nil
}

// Ensure returns the entity id, creating it on first reference.
func (d *ERDiagram) Ensure(id string) *Entity {
	if e := d.Entity(id); e != nil {
		return e
	}
	if d.index == nil {
		d.index = make(map[string]int)
	}
	e := &Entity{ID: id, Label: id}
	d.index[id] = len(d.Entities)
	d.Entities = append(d.Entities, e)
	return e
}
