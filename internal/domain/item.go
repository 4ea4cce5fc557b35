package domain

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ItemKind identifies which kind of content a learnable item reference points at.
type ItemKind string

// Supported item kinds
const (
	ItemKindFlashCard ItemKind = "flashcard"
	ItemKindQuestion  ItemKind = "question"
	ItemKindTopic     ItemKind = "topic"
)

// ItemKinds lists every supported kind in a stable order.
var ItemKinds = []ItemKind{ItemKindFlashCard, ItemKindQuestion, ItemKindTopic}

// Valid reports whether k is one of the supported item kinds.
func (k ItemKind) Valid() bool {
	switch k {
	case ItemKindFlashCard, ItemKindQuestion, ItemKindTopic:
		return true
	default:
		return false
	}
}

// ParseItemKind converts the wire form of an item kind ("flashcard",
// "question", "topic") into an ItemKind. Matching is case-insensitive.
func ParseItemKind(s string) (ItemKind, error) {
	k := ItemKind(strings.ToLower(strings.TrimSpace(s)))
	if !k.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidItemKind, s)
	}
	return k, nil
}

// ItemRef references exactly one learnable item: a flashcard, a question or a
// topic reviewed as a unit. The zero value is not a valid reference.
//
// Two references are equal (==) when they have the same kind and the same id.
type ItemRef struct {
	kind ItemKind
	id   uuid.UUID
}

// NewItemRef builds a reference from the three optional identifiers used at
// the persistence and transport boundaries. Exactly one of them must be set.
func NewItemRef(flashCardID, questionID, topicID *uuid.UUID) (ItemRef, error) {
	var (
		ref   ItemRef
		count int
	)
	if flashCardID != nil {
		ref = ItemRef{kind: ItemKindFlashCard, id: *flashCardID}
		count++
	}
	if questionID != nil {
		ref = ItemRef{kind: ItemKindQuestion, id: *questionID}
		count++
	}
	if topicID != nil {
		ref = ItemRef{kind: ItemKindTopic, id: *topicID}
		count++
	}

	if count != 1 {
		return ItemRef{}, fmt.Errorf("%w: expected exactly one item id, got %d",
			ErrInvalidItemReference, count)
	}
	if ref.id == uuid.Nil {
		return ItemRef{}, fmt.Errorf("%w: %s id is empty", ErrInvalidItemReference, ref.kind)
	}

	return ref, nil
}

// NewKindRef builds a reference of the given kind.
func NewKindRef(kind ItemKind, id uuid.UUID) (ItemRef, error) {
	if !kind.Valid() {
		return ItemRef{}, fmt.Errorf("%w: unknown kind %q", ErrInvalidItemReference, kind)
	}
	if id == uuid.Nil {
		return ItemRef{}, fmt.Errorf("%w: %s id is empty", ErrInvalidItemReference, kind)
	}
	return ItemRef{kind: kind, id: id}, nil
}

// NewFlashCardRef references a flashcard.
func NewFlashCardRef(id uuid.UUID) (ItemRef, error) {
	return NewKindRef(ItemKindFlashCard, id)
}

// NewQuestionRef references a question.
func NewQuestionRef(id uuid.UUID) (ItemRef, error) {
	return NewKindRef(ItemKindQuestion, id)
}

// NewTopicRef references a topic reviewed as a unit.
func NewTopicRef(id uuid.UUID) (ItemRef, error) {
	return NewKindRef(ItemKindTopic, id)
}

// Kind returns the kind of item referenced.
func (r ItemRef) Kind() ItemKind {
	return r.kind
}

// ID returns the identifier of the referenced item.
func (r ItemRef) ID() uuid.UUID {
	return r.id
}

// Validate returns ErrInvalidItemReference for the zero value or any reference
// not built through one of the constructors.
func (r ItemRef) Validate() error {
	if !r.kind.Valid() || r.id == uuid.Nil {
		return ErrInvalidItemReference
	}
	return nil
}

// IsZero reports whether r is the zero value.
func (r ItemRef) IsZero() bool {
	return r == ItemRef{}
}

// Columns spreads the reference over the three nullable item columns used by
// the review_records table. Exactly one of the returned pointers is non-nil for
// a valid reference.
func (r ItemRef) Columns() (flashCardID, questionID, topicID *uuid.UUID) {
	id := r.id
	switch r.kind {
	case ItemKindFlashCard:
		flashCardID = &id
	case ItemKindQuestion:
		questionID = &id
	case ItemKindTopic:
		topicID = &id
	}
	return flashCardID, questionID, topicID
}

// String returns "kind:id".
func (r ItemRef) String() string {
	if r.IsZero() {
		return "<none>"
	}
	return string(r.kind) + ":" + r.id.String()
}
