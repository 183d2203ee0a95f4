package session

import (
	"time"

	"github.com/oklog/ulid/v2"
)

type SessionScopeStartedEvent struct {
	Session Session
}

type SessionScopeEndedEvent struct {
	Session Session
}

type QueryStartedEvent struct {
	EventID ulid.ULID
	Query   string
	Params  []any
	Sender  any
	Session DbSession
}

func NewQueryStartedEvent(query string, params []any, sender any, s DbSession) QueryStartedEvent {
	return QueryStartedEvent{
		EventID: ulid.Make(),
		Query:   query,
		Params:  params,
		Sender:  sender,
		Session: s,
	}
}

type QueryEndedEvent struct {
	EventID      ulid.ULID
	Query        string
	Params       []any
	Sender       any
	Session      DbSession
	ResponseTime time.Duration
}

func NewQueryEndedEvent(started QueryStartedEvent, responseTime time.Duration) QueryEndedEvent {
	return QueryEndedEvent{
		EventID:      started.EventID,
		Query:        started.Query,
		Params:       started.Params,
		Sender:       started.Sender,
		Session:      started.Session,
		ResponseTime: responseTime,
	}
}
