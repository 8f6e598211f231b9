package attach

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-attach/pkg/activity"
	"github.com/google/uuid"
)

// Session is one overlay of a namespace onto a scope, bounded by Begin and
// End. It holds the backup snapshot used for validation and for the
// unconditional restoration of the scope.
//
// Sessions are one-shot and single-threaded. Opening a second session against
// a scope that already has an active one is misuse: the inner backup would
// capture the outer session's injected bindings and restoration would no
// longer round-trip.
type Session struct {
	ns     *Namespace
	scope  Scope
	backup map[string]any
	// nsKeys freezes the namespace's key set at begin time for deletion
	// reconciliation.
	nsKeys []string
	cfg    sessionConfig
	report Report
	active bool
}

// SessionOption configures an overlay session.
type SessionOption func(*sessionConfig)

type sessionConfig struct {
	skipUnderscored bool
	scopeName       string
	logger          SessionLogger
	emitter         *activity.Emitter
	actorID         string
}

func applySessionOptions(opts []SessionOption) sessionConfig {
	cfg := sessionConfig{skipUnderscored: true}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// SkipUnderscored controls whether underscore-prefixed bindings introduced
// during the session are persisted into the namespace. They are skipped by
// default.
func SkipUnderscored(skip bool) SessionOption {
	return func(cfg *sessionConfig) {
		cfg.skipUnderscored = skip
	}
}

// WithScopeName labels the scope in log events, reports, and activity events.
func WithScopeName(name string) SessionOption {
	return func(cfg *sessionConfig) {
		cfg.scopeName = name
	}
}

// WithSessionLogger attaches a logger that observes begin and end events.
func WithSessionLogger(logger SessionLogger) SessionOption {
	return func(cfg *sessionConfig) {
		if logger == nil {
			cfg.logger = noopSessionLogger{}
			return
		}
		cfg.logger = logger
	}
}

// WithActivityEmitter wires session lifecycle events into an activity emitter.
func WithActivityEmitter(emitter *activity.Emitter) SessionOption {
	return func(cfg *sessionConfig) {
		cfg.emitter = emitter
	}
}

// WithActorID records who opened the session on emitted activity events.
func WithActorID(id string) SessionOption {
	return func(cfg *sessionConfig) {
		cfg.actorID = id
	}
}

// Begin overlays ns onto scope: it validates every namespace key, snapshots
// the scope's current bindings, verifies no namespace key collides with an
// existing binding, and injects the namespace entries. On any failure the
// scope is left untouched.
func Begin(scope Scope, ns *Namespace, opts ...SessionOption) (*Session, error) {
	cfg := applySessionOptions(opts)
	if scope == nil {
		return nil, ErrNilScope
	}
	if ns == nil {
		return nil, ErrNilNamespace
	}

	start := time.Now()
	session := &Session{
		ns:     ns,
		scope:  scope,
		nsKeys: ns.Keys(),
		cfg:    cfg,
		report: Report{BackupID: uuid.NewString(), Scope: cfg.scopeName},
	}

	for _, key := range session.nsKeys {
		if !ValidIdentifier(key) {
			return nil, session.failBegin(start, fmt.Errorf("%w: %q", ErrInvalidKey, key))
		}
	}

	session.backup = snapshotScope(scope)
	for _, key := range session.nsKeys {
		if _, exists := session.backup[key]; exists {
			return nil, session.failBegin(start, fmt.Errorf("%w: %q", ErrCollision, key))
		}
	}

	for _, entry := range ns.Entries() {
		scope.Set(entry.Key, entry.Value)
	}
	session.active = true
	session.report.Injected = append([]string(nil), session.nsKeys...)

	session.logger().LogSession(SessionLogEvent{
		Op:       OpBegin,
		BackupID: session.report.BackupID,
		Scope:    cfg.scopeName,
		Keys:     session.report.Injected,
		Duration: time.Since(start),
	})
	session.emit(activity.VerbAttach, nil)
	return session, nil
}

// End reconciles the session: bindings deleted from the scope are deleted
// from the namespace, new bindings are persisted (subject to the underscore
// rule), and any pre-existing binding found rebound fails with an
// ImmutableGlobalError chained to blockErr. The scope is restored to its
// begin-time bindings unconditionally, reconciliation failure included.
//
// End never swallows blockErr: callers propagate it themselves unless End
// returns an error, which then wraps it.
func (s *Session) End(blockErr error) error {
	if s == nil || !s.active {
		return ErrSessionEnded
	}
	s.active = false
	start := time.Now()

	// Bindings the block removed outright are removed from the namespace too.
	for _, key := range s.nsKeys {
		if _, exists := s.scope.Get(key); !exists {
			s.ns.Delete(key)
			s.report.Deleted = append(s.report.Deleted, key)
		}
	}

	var endErr error
	func() {
		defer restoreScope(s.scope, s.backup)

		for _, key := range sortedKeys(s.scope) {
			current, _ := s.scope.Get(key)
			original, preexisting := s.backup[key]
			if !preexisting {
				if s.cfg.skipUnderscored && strings.HasPrefix(key, "_") {
					s.report.Dropped = append(s.report.Dropped, key)
					continue
				}
				s.ns.Set(key, current)
				s.report.Persisted = append(s.report.Persisted, key)
				continue
			}
			if !sameBinding(current, original) {
				s.report.FailedKey = key
				endErr = &ImmutableGlobalError{Key: key, BlockErr: blockErr}
				return
			}
		}
	}()

	s.logger().LogSession(SessionLogEvent{
		Op:       OpEnd,
		BackupID: s.report.BackupID,
		Scope:    s.cfg.scopeName,
		Keys:     s.report.Persisted,
		Duration: time.Since(start),
		Err:      endErr,
	})
	if endErr != nil {
		s.emit(activity.VerbReconcileFailed, endErr)
		return endErr
	}
	s.emit(activity.VerbDetach, nil)
	return nil
}

// Report describes what the session did. It is complete once End returns.
func (s *Session) Report() Report {
	if s == nil {
		return Report{}
	}
	return s.report.clone()
}

// Active reports whether the overlay is currently applied to the scope.
func (s *Session) Active() bool {
	return s != nil && s.active
}

// With runs fn between Begin and End, guaranteeing reconciliation and scope
// restoration even when fn fails or panics. It returns fn's error unless End
// itself fails, in which case the returned error wraps both.
func With(scope Scope, ns *Namespace, fn func(Scope) error, opts ...SessionOption) (err error) {
	session, err := Begin(scope, ns, opts...)
	if err != nil {
		return err
	}
	defer func() {
		r := recover()
		if endErr := session.End(err); endErr != nil {
			err = endErr
		}
		if r != nil {
			panic(r)
		}
	}()
	err = fn(scope)
	return err
}

func (s *Session) failBegin(start time.Time, err error) error {
	s.logger().LogSession(SessionLogEvent{
		Op:       OpBegin,
		BackupID: s.report.BackupID,
		Scope:    s.cfg.scopeName,
		Duration: time.Since(start),
		Err:      err,
	})
	return err
}

func (s *Session) logger() SessionLogger {
	if s.cfg.logger != nil {
		return s.cfg.logger
	}
	return noopSessionLogger{}
}

func (s *Session) emit(verb string, err error) {
	if !s.cfg.emitter.Enabled() {
		return
	}
	input := activity.SessionEventInput{
		ActorID:   s.cfg.actorID,
		ScopeName: s.cfg.scopeName,
		BackupID:  s.report.BackupID,
		Injected:  s.report.Injected,
		Persisted: s.report.Persisted,
		Dropped:   s.report.Dropped,
		Deleted:   s.report.Deleted,
		FailedKey: s.report.FailedKey,
	}
	if err != nil {
		input.Metadata = map[string]any{"error": err.Error()}
	}
	var event activity.Event
	switch verb {
	case activity.VerbAttach:
		event = activity.BuildAttachEvent(input)
	case activity.VerbReconcileFailed:
		event = activity.BuildReconcileFailedEvent(input)
	default:
		event = activity.BuildDetachEvent(input)
	}
	_ = s.cfg.emitter.Emit(context.Background(), event)
}
