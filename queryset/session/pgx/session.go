package pgx

import (
	"context"
	"regexp"

	"github.com/hashicorp/go-multierror"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"

	"github.com/krew-solutions/queryset-go/queryset/session"
	"github.com/krew-solutions/queryset-go/queryset/session/identitymap"
	"github.com/krew-solutions/queryset-go/queryset/session/result"
	"github.com/krew-solutions/queryset-go/queryset/signals"
)

// Session represents a database session without transaction
type Session struct {
	ctx            context.Context
	conn           *pgxpool.Conn
	parent         session.Session
	identityMap    *identitymap.IdentityMap
	onScopeStarted *signals.SignalImp[session.SessionScopeStartedEvent]
	onScopeEnded   *signals.SignalImp[session.SessionScopeEndedEvent]
	onQueryStarted *signals.SignalImp[session.QueryStartedEvent]
	onQueryEnded   *signals.SignalImp[session.QueryEndedEvent]
}

func NewSession(ctx context.Context, conn *pgxpool.Conn) *Session {
	return &Session{
		ctx:            ctx,
		conn:           conn,
		parent:         nil,
		identityMap:    identitymap.New(1000, identitymap.Serializable),
		onScopeStarted: signals.NewSignal[session.SessionScopeStartedEvent](),
		onScopeEnded:   signals.NewSignal[session.SessionScopeEndedEvent](),
		onQueryStarted: signals.NewSignal[session.QueryStartedEvent](),
		onQueryEnded:   signals.NewSignal[session.QueryEndedEvent](),
	}
}

func (s *Session) Context() context.Context {
	return s.ctx
}

func (s *Session) Connection() session.DbConnection {
	return &connection{ctx: s.ctx, exec: s.conn}
}

func (s *Session) IdentityMap() *identitymap.IdentityMap {
	return s.identityMap
}

func (s *Session) OnScopeStarted() signals.Signal[session.SessionScopeStartedEvent] {
	return s.onScopeStarted
}

func (s *Session) OnScopeEnded() signals.Signal[session.SessionScopeEndedEvent] {
	return s.onScopeEnded
}

func (s *Session) OnQueryStarted() signals.Signal[session.QueryStartedEvent] {
	return s.onQueryStarted
}

func (s *Session) OnQueryEnded() signals.Signal[session.QueryEndedEvent] {
	return s.onQueryEnded
}

func (s *Session) Atomic(callback session.SessionCallback) error {
	// Start new transaction
	tx, err := s.conn.Begin(s.ctx)
	if err != nil {
		return errors.Wrap(err, "unable to start transaction")
	}

	txSession := NewTransactionSession(s.ctx, tx, s)
	s.onScopeStarted.Notify(session.SessionScopeStartedEvent{Session: txSession})
	defer s.onScopeEnded.Notify(session.SessionScopeEndedEvent{Session: txSession})

	err = callback(txSession)
	if err != nil {
		if txErr := tx.Rollback(s.ctx); txErr != nil {
			return multierror.Append(err, txErr)
		}
		return err
	}

	if txErr := tx.Commit(s.ctx); txErr != nil {
		return errors.Wrap(txErr, "failed to commit transaction")
	}

	return nil
}

// TransactionSession represents a session inside transaction
type TransactionSession struct {
	ctx    context.Context
	tx     pgx.Tx
	parent *Session
}

func NewTransactionSession(ctx context.Context, tx pgx.Tx, parent *Session) *TransactionSession {
	return &TransactionSession{
		ctx:    ctx,
		tx:     tx,
		parent: parent,
	}
}

func (s *TransactionSession) Context() context.Context {
	return s.ctx
}

func (s *TransactionSession) Connection() session.DbConnection {
	return &connection{ctx: s.ctx, exec: s.tx}
}

func (s *TransactionSession) IdentityMap() *identitymap.IdentityMap {
	return s.parent.IdentityMap()
}

func (s *TransactionSession) OnScopeStarted() signals.Signal[session.SessionScopeStartedEvent] {
	return s.parent.OnScopeStarted()
}

func (s *TransactionSession) OnScopeEnded() signals.Signal[session.SessionScopeEndedEvent] {
	return s.parent.OnScopeEnded()
}

func (s *TransactionSession) OnQueryStarted() signals.Signal[session.QueryStartedEvent] {
	return s.parent.OnQueryStarted()
}

func (s *TransactionSession) OnQueryEnded() signals.Signal[session.QueryEndedEvent] {
	return s.parent.OnQueryEnded()
}

func (s *TransactionSession) Atomic(callback session.SessionCallback) error {
	// Create savepoint (nested transaction)
	nestedTx, err := s.tx.Begin(s.ctx)
	if err != nil {
		return errors.Wrap(err, "unable to start savepoint")
	}

	savepointSession := NewSavepointSession(s.ctx, nestedTx, s.parent)
	s.parent.onScopeStarted.Notify(session.SessionScopeStartedEvent{Session: savepointSession})
	defer s.parent.onScopeEnded.Notify(session.SessionScopeEndedEvent{Session: savepointSession})

	err = callback(savepointSession)
	if err != nil {
		if txErr := nestedTx.Rollback(s.ctx); txErr != nil {
			return multierror.Append(err, txErr)
		}
		return err
	}

	if txErr := nestedTx.Commit(s.ctx); txErr != nil {
		return errors.Wrap(txErr, "failed to commit savepoint")
	}

	return nil
}

// SavepointSession represents a session inside savepoint (nested transaction)
type SavepointSession struct {
	ctx    context.Context
	tx     pgx.Tx
	parent *Session
}

func NewSavepointSession(ctx context.Context, tx pgx.Tx, parent *Session) *SavepointSession {
	return &SavepointSession{
		ctx:    ctx,
		tx:     tx,
		parent: parent,
	}
}

func (s *SavepointSession) Context() context.Context {
	return s.ctx
}

func (s *SavepointSession) Connection() session.DbConnection {
	return &connection{ctx: s.ctx, exec: s.tx}
}

func (s *SavepointSession) IdentityMap() *identitymap.IdentityMap {
	return s.parent.IdentityMap()
}

func (s *SavepointSession) OnScopeStarted() signals.Signal[session.SessionScopeStartedEvent] {
	return s.parent.OnScopeStarted()
}

func (s *SavepointSession) OnScopeEnded() signals.Signal[session.SessionScopeEndedEvent] {
	return s.parent.OnScopeEnded()
}

func (s *SavepointSession) OnQueryStarted() signals.Signal[session.QueryStartedEvent] {
	return s.parent.OnQueryStarted()
}

func (s *SavepointSession) OnQueryEnded() signals.Signal[session.QueryEndedEvent] {
	return s.parent.OnQueryEnded()
}

func (s *SavepointSession) Atomic(callback session.SessionCallback) error {
	// Create nested savepoint
	nestedTx, err := s.tx.Begin(s.ctx)
	if err != nil {
		return errors.Wrap(err, "unable to start nested savepoint")
	}

	nestedSession := NewSavepointSession(s.ctx, nestedTx, s.parent)
	s.parent.onScopeStarted.Notify(session.SessionScopeStartedEvent{Session: nestedSession})
	defer s.parent.onScopeEnded.Notify(session.SessionScopeEndedEvent{Session: nestedSession})

	err = callback(nestedSession)
	if err != nil {
		if txErr := nestedTx.Rollback(s.ctx); txErr != nil {
			return multierror.Append(err, txErr)
		}
		return err
	}

	if txErr := nestedTx.Commit(s.ctx); txErr != nil {
		return errors.Wrap(txErr, "failed to commit nested savepoint")
	}

	return nil
}

// executor interface for both *pgxpool.Conn and pgx.Tx
type executor interface {
	Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, query string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, query string, args ...any) pgx.Row
}

// connection implements session.DbConnection
type connection struct {
	ctx  context.Context
	exec executor
}

var returningIDPattern = regexp.MustCompile(`(?i)\bRETURNING\s+id\s*$`)

func (c *connection) Exec(query string, args ...any) (session.Result, error) {
	if returningIDPattern.MatchString(query) {
		return c.insert(query, args...)
	}

	tag, err := c.exec.Exec(c.ctx, query, args...)
	if err != nil {
		return nil, err
	}

	return result.NewResult(0, tag.RowsAffected()), nil
}

func (c *connection) insert(query string, args ...any) (session.Result, error) {
	var id int64
	err := c.exec.QueryRow(c.ctx, query, args...).Scan(&id)
	if err != nil {
		return nil, err
	}

	return result.NewResult(id, 0), nil
}

func (c *connection) Query(query string, args ...any) (session.Rows, error) {
	rows, err := c.exec.Query(c.ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return rowsAdapter{rows}, nil
}

func (c *connection) QueryRow(query string, args ...any) session.Row {
	return rowAdapter{c.exec.QueryRow(c.ctx, query, args...)}
}

// rowsAdapter aligns pgx.Rows with session.Rows: pgx closes a rows set
// without returning an error.
type rowsAdapter struct {
	pgx.Rows
}

func (r rowsAdapter) Close() error {
	r.Rows.Close()
	return nil
}

// rowAdapter aligns pgx.Row with session.Row. pgx surfaces row errors
// through Scan, so Err has nothing to report.
type rowAdapter struct {
	pgx.Row
}

func (rowAdapter) Err() error {
	return nil
}
