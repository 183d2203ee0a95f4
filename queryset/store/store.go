// Package store executes compiled queries over a session and materializes
// the resulting rows into tracked instances.
package store

import (
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/krew-solutions/queryset-go/queryset/lookup"
	"github.com/krew-solutions/queryset-go/queryset/postgres"
	"github.com/krew-solutions/queryset-go/queryset/query"
	"github.com/krew-solutions/queryset-go/queryset/schema"
	"github.com/krew-solutions/queryset-go/queryset/session"
	"github.com/krew-solutions/queryset-go/queryset/session/identitymap"
	"github.com/krew-solutions/queryset-go/queryset/signals"
	"github.com/krew-solutions/queryset-go/queryset/state"
)

var ErrNotFound = errors.New("store: instance not found")

type Option func(*Store)

func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// Store turns queries into SELECT statements, runs them over a session and
// hydrates instances. Hydrated rows are registered in the session's identity
// map when the session carries one. Query events are published on the
// store's own signals and, through a composite, on the session's signals
// when the session is observable.
type Store struct {
	logger         *zap.Logger
	onQueryStarted *signals.SignalImp[session.QueryStartedEvent]
	onQueryEnded   *signals.SignalImp[session.QueryEndedEvent]
}

func New(opts ...Option) *Store {
	s := &Store{
		logger:         zap.NewNop(),
		onQueryStarted: signals.NewSignal[session.QueryStartedEvent](),
		onQueryEnded:   signals.NewSignal[session.QueryEndedEvent](),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OnQueryStarted fires for every SELECT the store runs, on any session.
func (st *Store) OnQueryStarted() signals.Signal[session.QueryStartedEvent] {
	return st.onQueryStarted
}

// OnQueryEnded fires after every SELECT with its response time.
func (st *Store) OnQueryEnded() signals.Signal[session.QueryEndedEvent] {
	return st.onQueryEnded
}

// instanceKey identifies a persisted row in the identity map by its entity
// name and primary key value.
type instanceKey struct {
	identitymap.IdentityKeyBase[*state.Instance]
	entity string
	pk     any
}

// FindAll runs the query and returns one instance per distinct base row.
// Rows fanned out by a to-many join collapse back into a single instance
// with its eager-loaded children accumulated.
func (st *Store) FindAll(s session.DbSession, q query.Query) ([]*state.Instance, error) {
	stmt, err := postgres.CompileSelect(q)
	if err != nil {
		return nil, err
	}

	obs, _ := s.(session.ObservableSession)
	startSignal := signals.Signal[session.QueryStartedEvent](st.onQueryStarted)
	endSignal := signals.Signal[session.QueryEndedEvent](st.onQueryEnded)
	if obs != nil {
		startSignal = signals.NewCompositeSignal[session.QueryStartedEvent](st.onQueryStarted, obs.OnQueryStarted())
		endSignal = signals.NewCompositeSignal[session.QueryEndedEvent](st.onQueryEnded, obs.OnQueryEnded())
	}

	started := session.NewQueryStartedEvent(stmt.SQL, stmt.Args, st, s)
	startSignal.Notify(started)
	startedAt := time.Now()

	rows, err := s.Connection().Query(stmt.SQL, stmt.Args...)
	if err != nil {
		return nil, errors.Wrap(err, "execute select")
	}
	defer rows.Close()

	h := &hydrator{obs: obs, local: make(map[instanceKey]*state.Instance)}
	emitted := make(map[*state.Instance]bool)
	var instances []*state.Instance

	for rows.Next() {
		vals := make([]any, len(stmt.Selections))
		dest := make([]any, len(stmt.Selections))
		for i := range vals {
			dest[i] = &vals[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, errors.Wrap(err, "scan row")
		}
		inst, err := h.row(q.Base(), stmt.Selections, vals)
		if err != nil {
			return nil, err
		}
		if !emitted[inst] {
			emitted[inst] = true
			instances = append(instances, inst)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate rows")
	}

	elapsed := time.Since(startedAt)
	endSignal.Notify(session.NewQueryEndedEvent(started, elapsed))
	st.logger.Debug("select executed",
		zap.String("sql", stmt.SQL),
		zap.Int("rows", len(instances)),
		zap.Duration("elapsed", elapsed))

	return instances, nil
}

// FindOne runs the query and returns the first instance, or ErrNotFound.
func (st *Store) FindOne(s session.DbSession, q query.Query) (*state.Instance, error) {
	instances, err := st.FindAll(s, q)
	if err != nil {
		return nil, err
	}
	if len(instances) == 0 {
		return nil, ErrNotFound
	}
	return instances[0], nil
}

// Refresh re-reads the instance's row by primary key and replaces every
// column value, clearing expiry marks along the way.
func (st *Store) Refresh(s session.DbSession, inst *state.Instance) error {
	entity := inst.Entity()
	pkCol := entity.PrimaryKey()
	if pkCol == nil {
		return errors.Errorf("store: entity %q has no primary key", entity.Name())
	}
	pk, ok := inst.Value(pkCol.Name())
	if !ok {
		return errors.Errorf("store: instance of %q has no primary key value", entity.Name())
	}

	q, err := query.New(entity).FilterBy(map[string]any{pkCol.Name(): pk})
	if err != nil {
		return err
	}
	stmt, err := postgres.CompileSelect(q)
	if err != nil {
		return err
	}

	rows, err := s.Connection().Query(stmt.SQL, stmt.Args...)
	if err != nil {
		return errors.Wrap(err, "execute refresh")
	}
	defer rows.Close()

	if !rows.Next() {
		return ErrNotFound
	}
	vals := make([]any, len(stmt.Selections))
	dest := make([]any, len(stmt.Selections))
	for i := range vals {
		dest[i] = &vals[i]
	}
	if err := rows.Scan(dest...); err != nil {
		return errors.Wrap(err, "scan refresh row")
	}
	for i, sel := range stmt.Selections {
		inst.RefreshValue(sel.Column.Name(), vals[i])
	}
	st.logger.Debug("instance refreshed",
		zap.String("entity", entity.Name()),
		zap.Any("pk", pk))
	return rows.Err()
}

// hydrator materializes row slices into instances. The local map unifies
// repeated rows within a single result set; the identity map (when present)
// unifies across queries in the same session.
type hydrator struct {
	obs   session.ObservableSession
	local map[instanceKey]*state.Instance
}

func (h *hydrator) row(base *schema.Entity, selections []postgres.Selection, vals []any) (*state.Instance, error) {
	baseAlias := base.Table()
	groups, order := groupByAlias(selections, vals)

	baseInst := h.resolve(base, groups[baseAlias])
	if baseInst == nil {
		return nil, errors.Errorf("store: row for %q has NULL primary key", base.Name())
	}

	byAlias := map[string]*state.Instance{baseAlias: baseInst}
	for _, alias := range order {
		if alias == baseAlias {
			continue
		}
		join := aliasJoin(selections, alias)
		if join == nil {
			continue
		}
		parent, ok := byAlias[join.ParentAlias]
		if !ok || parent == nil {
			// Absent intermediate row; nothing to attach the child to.
			byAlias[alias] = nil
			continue
		}
		child := h.resolve(join.Rel.Target(), groups[alias])
		byAlias[alias] = child
		attach(parent, join.Rel, child)
	}
	return baseInst, nil
}

// resolve finds or creates the instance for one alias group. A nil primary
// key value means the LEFT JOIN matched nothing.
func (h *hydrator) resolve(entity *schema.Entity, values map[string]any) *state.Instance {
	pkCol := entity.PrimaryKey()
	pk := values[pkCol.Name()]
	if pk == nil {
		return nil
	}

	key := instanceKey{entity: entity.Name(), pk: pk}
	if inst, ok := h.local[key]; ok {
		return inst
	}
	if h.obs != nil {
		if inst, err := identitymap.Get(h.obs.IdentityMap(), key); err == nil {
			for name, value := range values {
				inst.RefreshValue(name, value)
			}
			h.local[key] = inst
			return inst
		}
	}

	inst := state.NewPersisted(entity, values)
	h.local[key] = inst
	if h.obs != nil {
		identitymap.Add(h.obs.IdentityMap(), key, inst)
	}
	return inst
}

func attach(parent *state.Instance, rel *schema.Relationship, child *state.Instance) {
	if !rel.Plural() {
		parent.SetValue(rel.Name(), child)
		return
	}
	existing, _ := parent.Value(rel.Name())
	list, _ := existing.([]*state.Instance)
	if child != nil {
		for _, present := range list {
			if present == child {
				parent.SetValue(rel.Name(), list)
				return
			}
		}
		list = append(list, child)
	}
	parent.SetValue(rel.Name(), list)
}

func groupByAlias(selections []postgres.Selection, vals []any) (map[string]map[string]any, []string) {
	groups := make(map[string]map[string]any)
	var order []string
	for i, sel := range selections {
		group, ok := groups[sel.Alias]
		if !ok {
			group = make(map[string]any)
			groups[sel.Alias] = group
			order = append(order, sel.Alias)
		}
		group[sel.Column.Name()] = vals[i]
	}
	return groups, order
}

func aliasJoin(selections []postgres.Selection, alias string) *lookup.Join {
	for _, sel := range selections {
		if sel.Eager && sel.Alias == alias {
			return sel.EagerRel
		}
	}
	return nil
}
