package memstore

import (
	"time"

	"github.com/google/uuid"

	"github.com/SkPhilipp/records/pkg/record"
)

// eventKind tags one reversible state change in the mutation log.
type eventKind int

const (
	eventDefineType eventKind = iota
	eventDefineAttribute
	eventInsert
	eventUpdate
	eventDelete
)

func (k eventKind) String() string {
	switch k {
	case eventDefineType:
		return "define_type"
	case eventDefineAttribute:
		return "define_attribute"
	case eventInsert:
		return "insert"
	case eventUpdate:
		return "update"
	case eventDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// event is one entry in the mutation log. Every event carries enough
// information to construct its own inverse and is never mutated after append.
// The payload fields used depend on the kind:
//
//	define_type       typeName
//	define_attribute  typeName, attr, attrType
//	insert            typeName, id, fields
//	update            typeName, id, attr, old/oldAbsent, new
//	delete            typeName, id, fields
type event struct {
	seq     uint64
	kind    eventKind
	at      time.Time
	session string

	typeName string
	attr     string
	attrType *record.Type
	id       int64
	fields   map[string]record.Value
	old      record.Value
	oldAbsent bool
	new      record.Value
}

// mutationLog is the single append-only chronological sequence shared by the
// registry and the store. Truncation back to the checkpoint (session start)
// happens only through undo.
type mutationLog struct {
	session string
	seq     uint64
	events  []event
}

func newMutationLog() *mutationLog {
	return &mutationLog{session: newSessionID()}
}

// newSessionID generates a UUID v7 identifying this session; every logged
// event is stamped with it.
func newSessionID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}

// append stamps the event with the next sequence number, the current time,
// and the session id, then appends it.
func (l *mutationLog) append(e event) {
	l.seq++
	e.seq = l.seq
	e.at = time.Now()
	e.session = l.session
	l.events = append(l.events, e)
}

func (l *mutationLog) size() int {
	return len(l.events)
}

// truncate clears the log back to the checkpoint.
func (l *mutationLog) truncate() {
	l.events = nil
}
