package testutils

import (
	"context"
	"errors"

	"github.com/krew-solutions/queryset-go/queryset/session"
	"github.com/krew-solutions/queryset-go/queryset/session/identitymap"
	"github.com/krew-solutions/queryset-go/queryset/session/result"
	"github.com/krew-solutions/queryset-go/queryset/signals"
)

func NewDbSessionStub(rows *RowsStub) *DbSessionStub {
	stub := &DbSessionStub{
		Rows:           rows,
		identityMap:    identitymap.New(100, identitymap.ReadUncommitted),
		onScopeStarted: signals.NewSignal[session.SessionScopeStartedEvent](),
		onScopeEnded:   signals.NewSignal[session.SessionScopeEndedEvent](),
		onQueryStarted: signals.NewSignal[session.QueryStartedEvent](),
		onQueryEnded:   signals.NewSignal[session.QueryEndedEvent](),
	}
	stub.conn = &connectionStub{session: stub}
	return stub
}

type DbSessionStub struct {
	Rows           *RowsStub
	ActualQuery    string
	ActualParams   []any
	conn           *connectionStub
	identityMap    *identitymap.IdentityMap
	onScopeStarted *signals.SignalImp[session.SessionScopeStartedEvent]
	onScopeEnded   *signals.SignalImp[session.SessionScopeEndedEvent]
	onQueryStarted *signals.SignalImp[session.QueryStartedEvent]
	onQueryEnded   *signals.SignalImp[session.QueryEndedEvent]
}

func (s *DbSessionStub) Context() context.Context {
	return context.Background()
}

func (s *DbSessionStub) Atomic(callback session.SessionCallback) error {
	s.onScopeStarted.Notify(session.SessionScopeStartedEvent{Session: s})
	defer s.onScopeEnded.Notify(session.SessionScopeEndedEvent{Session: s})
	return callback(s)
}

func (s *DbSessionStub) Connection() session.DbConnection {
	return s.conn
}

func (s *DbSessionStub) IdentityMap() *identitymap.IdentityMap {
	return s.identityMap
}

func (s *DbSessionStub) OnScopeStarted() signals.Signal[session.SessionScopeStartedEvent] {
	return s.onScopeStarted
}

func (s *DbSessionStub) OnScopeEnded() signals.Signal[session.SessionScopeEndedEvent] {
	return s.onScopeEnded
}

func (s *DbSessionStub) OnQueryStarted() signals.Signal[session.QueryStartedEvent] {
	return s.onQueryStarted
}

func (s *DbSessionStub) OnQueryEnded() signals.Signal[session.QueryEndedEvent] {
	return s.onQueryEnded
}

type connectionStub struct {
	session *DbSessionStub
}

func (c *connectionStub) Exec(query string, args ...any) (session.Result, error) {
	c.session.ActualQuery = query
	c.session.ActualParams = args
	return result.NewResult(0, 0), nil
}

func (c *connectionStub) Query(query string, args ...any) (session.Rows, error) {
	c.session.ActualQuery = query
	c.session.ActualParams = args
	return c.session.Rows, nil
}

func (c *connectionStub) QueryRow(query string, args ...any) session.Row {
	c.session.ActualQuery = query
	c.session.ActualParams = args
	return &RowStub{rows: c.session.Rows}
}

func NewRowsStub(rows ...[]any) *RowsStub {
	return &RowsStub{
		rows:   rows,
		idx:    -1,
		Closed: false,
	}
}

type RowsStub struct {
	rows   [][]any
	idx    int
	Closed bool
}

func (r *RowsStub) Close() error {
	r.Closed = true
	return nil
}

func (r *RowsStub) Err() error {
	return nil
}

func (r *RowsStub) Next() bool {
	r.idx++
	return r.idx < len(r.rows)
}

func (r *RowsStub) Scan(dest ...any) error {
	if r.idx < 0 || r.idx >= len(r.rows) {
		return errors.New("no current row")
	}

	row := r.rows[r.idx]
	for i, val := range row {
		if i >= len(dest) {
			break
		}

		switch d := dest[i].(type) {
		case *any:
			*d = val
		case *int:
			*d = val.(int)
		case *int64:
			*d = val.(int64)
		case *string:
			*d = val.(string)
		case *bool:
			*d = val.(bool)
		default:
			return errors.New("unsupported scan type")
		}
	}
	return nil
}

type RowStub struct {
	rows *RowsStub
}

func (r *RowStub) Err() error {
	return nil
}

func (r *RowStub) Scan(dest ...any) error {
	if !r.rows.Next() {
		return errors.New("no rows")
	}
	return r.rows.Scan(dest...)
}
