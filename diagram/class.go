package diagram

import "strings"

// RelationType is the UML relationship kind between two classes.
type RelationType string

const (
	RelInheritance RelationType = "inheritance"
	RelRealization RelationType = "realization"
	RelComposition RelationType = "composition"
	RelAggregation RelationType = "aggregation"
	RelAssociation RelationType = "association"
	RelDependency  RelationType = "dependency"
	RelLink        RelationType = "link" // plain line, no marker
)

// MarkerEnd tells which end of a relationship carries the UML marker.
type MarkerEnd int

const (
	MarkerNone MarkerEnd = iota
	MarkerFrom
	MarkerTo
)

// Member is an attribute or method line in a class box.
type Member struct {
	Visibility string // one of "+", "-", "#", "~" or empty
	Name       string // for methods this includes the parameter list
	Type       string // attribute type after ':' or method return type
	Method     bool
}

// String formats the member the way it is written in the class compartment.
func (m Member) String() string {
	var b strings.Builder
	b.WriteString(m.Visibility)
	b.WriteString(m.Name)
	if m.Type != "" {
		if m.Method {
			b.WriteString(" ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(m.Type)
	}
	return b.String()
}

// Class is a single box in a class diagram.
type Class struct {
	ID         string
	Label      string // may contain '\n'
	Annotation string // e.g. "interface", without the << >> delimiters
	Attributes []Member
	Methods    []Member
}

// Relationship connects two classes.
type Relationship struct {
	From, To         string
	Type             RelationType
	Marker           MarkerEnd
	Label            string
	Dashed           bool
	FromMultiplicity string
	ToMultiplicity   string
}

// Parent returns the id treated as the senior end when assigning levels.
// Inheritance and realization point at the parent with their marker; every
// other relationship treats From as senior.
func (r Relationship) Parent() string {
	if (r.Type == RelInheritance || r.Type == RelRealization) && r.Marker == MarkerTo {
		return r.To
	}
	return r.From
}

// Child returns the end opposite to Parent.
func (r Relationship) Child() string {
	if r.Parent() == r.From {
		return r.To
	}
	return r.From
}

// ClassDiagram is the parsed model of a classDiagram source.
type ClassDiagram struct {
	Classes       []*Class
	Relationships []Relationship

	index map[string]int
}

// Class returns the class with the given id, or nil.
func (d *ClassDiagram) Class(id string) *Class {
	if i, ok := d.index[id]; ok {
		return d.Classes[i]
	}
	return nil
}

// Ensure returns the class with id, creating it in declaration order if needed.
func (d *ClassDiagram) Ensure(id string) *Class {
	if c := d.Class(id); c != nil {
		return c
	}
	if d.index == nil {
		d.index = make(map[string]int)
	}
	c := &Class{ID: id, Label: id}
	d.index[id] = len(d.Classes)
	d.Classes = append(d.Classes, c)
	return c
}
