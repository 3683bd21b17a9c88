package dispatch

import (
	"context"
	"strings"
	"sync"
	"time"

	"wazmeow/internal/domain/dedup"
	"wazmeow/pkg/logger"
)

const (
	actionDBUpdate         = dedup.Action("db-update")
	groupmenuRetryAttempts = 2
	groupmenuRetryUnit     = 100 * time.Millisecond
)

// BotModeGate reports whether a session currently runs in "self" mode,
// where only the creator's own messages are processed.
type BotModeGate interface {
	IsSelfMode(sessionID string) bool
}

// GroupSettings answers the per-chat group-only toggle consulted by the
// group-only gate.
type GroupSettings interface {
	GroupOnlyModeEnabled(chatID string) bool
}

// Verdict is what a PermissionChecker decides for one command invocation.
type Verdict struct {
	Allowed    bool
	Silent     bool   // true: deny without any reply
	DenyReason string // non-empty when !Allowed && !Silent
}

// PermissionChecker decides the category/role permission rules for one
// command invocation.
// Results are cached by the Dispatcher (TTL 30s, cap 500).
type PermissionChecker interface {
	Check(ctx context.Context, msgCtx MessageContext, category Category, perm RequiredPermission) (Verdict, error)
}

// Sender is the narrow reply-sink the Dispatcher needs to answer a chat
// from a specific hosted session.
type Sender interface {
	SendText(ctx context.Context, sessionID, chatID, text string) error
}

// Dispatcher implements the inbound command pipeline and the anti-plugin
// scan.
type Dispatcher struct {
	idx       *index
	permCache *permCache
	dedup     dedup.Ledger
	botMode   BotModeGate
	groupGate GroupSettings
	perm      PermissionChecker
	sender    Sender
	log       logger.Logger

	mu   sync.Mutex
	base map[string]*Descriptor // compiled-in plugins, keyed by name
}

// New builds a Dispatcher. perm/botMode/groupGate/sender may be nil stubs
// during early bring-up; a nil PermissionChecker allows everything.
func New(ledger dedup.Ledger, botMode BotModeGate, groupGate GroupSettings, perm PermissionChecker, sender Sender, log logger.Logger) *Dispatcher {
	return &Dispatcher{
		idx:       newIndex(),
		permCache: newPermCache(),
		dedup:     ledger,
		botMode:   botMode,
		groupGate: groupGate,
		perm:      perm,
		sender:    sender,
		log:       log,
		base:      make(map[string]*Descriptor),
	}
}

// ReloadPlugins atomically replaces the command index. Tests and simple
// callers that don't need manifest overrides use this directly.
func (d *Dispatcher) ReloadPlugins(descriptors []*Descriptor) {
	d.idx.rebuild(descriptors)
	d.permCache = newPermCache()
}

// RegisterPlugins installs the compiled-in plugin set once at startup.
// Manifest overrides (see ApplyManifests) are layered on top of this base
// set on every hot-reload, never replacing it.
func (d *Dispatcher) RegisterPlugins(descriptors []*Descriptor) {
	base := make(map[string]*Descriptor, len(descriptors))
	for _, p := range descriptors {
		if p.Name != "" {
			base[p.Name] = p
		}
	}

	d.mu.Lock()
	d.base = base
	d.mu.Unlock()

	d.ReloadPlugins(descriptors)
}

// ApplyManifests merges manifest overrides onto the registered base set
// and rebuilds the command index.
func (d *Dispatcher) ApplyManifests(manifests []Manifest) {
	d.mu.Lock()
	merged := mergeManifests(d.base, manifests)
	d.mu.Unlock()

	d.ReloadPlugins(merged)
}

// CommandCount reports the current index size, for health/status surfaces.
func (d *Dispatcher) CommandCount() int {
	return d.idx.size()
}

// resetPermCache drops every cached permission verdict, used by the
// hot-reload watcher's 30s temporary-state sweep.
func (d *Dispatcher) resetPermCache() {
	d.permCache = newPermCache()
}

// Dispatch runs the full command pipeline for one inbound, prefix-matched
// message. msgCtx must already carry Command/Args/RawText/IsGroup/
// IsCreator/SessionID/ChatID/SenderID/MessageID.
func (d *Dispatcher) Dispatch(ctx context.Context, msgCtx MessageContext) error {
	descriptor, ok := d.idx.lookup(msgCtx.Command)
	if !ok {
		return nil
	}

	if descriptor.GroupOnly && !msgCtx.IsGroup {
		return nil
	}

	if d.botMode != nil && d.botMode.IsSelfMode(msgCtx.SessionID) && !msgCtx.IsCreator {
		return nil
	}

	if msgCtx.IsGroup && !descriptor.BypassGroupGate && d.groupGate != nil && !d.groupGate.GroupOnlyModeEnabled(msgCtx.ChatID) {
		if msgCtx.IsCreator || msgCtx.IsGroupAdmin {
			return d.reply(ctx, msgCtx, "group-only mode is disabled for this group")
		}
		return nil
	}

	verdict, err := d.checkPermission(ctx, msgCtx, descriptor)
	if err != nil {
		return err
	}
	if !verdict.Allowed {
		return d.deny(ctx, msgCtx, descriptor, verdict)
	}

	// db-update is marked done optimistically, before execute completes.
	if isDBMutatingAdmin(descriptor) && d.dedup != nil {
		key := dedup.Key{ChatID: msgCtx.ChatID, MessageID: msgCtx.MessageID}
		if err := d.dedup.MarkDone(ctx, key, msgCtx.SessionID, actionDBUpdate); err != nil {
			d.log.WarnWithFields("dispatch: failed to mark db-update done", logger.Fields{"error": err.Error()})
		}
	}

	reply, err := d.execute(ctx, msgCtx, descriptor)
	if err != nil {
		d.log.ErrorWithFields("dispatch: plugin execute failed", logger.Fields{"command": descriptor.Name, "error": err.Error()})
		return nil
	}

	if reply != nil && reply.Text != "" {
		return d.reply(ctx, msgCtx, reply.Text)
	}
	return nil
}

func (d *Dispatcher) checkPermission(ctx context.Context, msgCtx MessageContext, descriptor *Descriptor) (Verdict, error) {
	if d.perm == nil {
		return Verdict{Allowed: true}, nil
	}

	key := permKey(msgCtx.SessionID, msgCtx.SenderID, msgCtx.ChatID, descriptor.Category, descriptor.Permission)
	if allowed, ok := d.permCache.get(key); ok {
		return Verdict{Allowed: allowed}, nil
	}

	verdict, err := d.perm.Check(ctx, msgCtx, descriptor.Category, descriptor.Permission)
	if err != nil {
		return Verdict{}, err
	}
	d.permCache.put(key, verdict.Allowed)
	return verdict, nil
}

// deny handles a failed permission check: silent denials drop; groupmenu/
// gamemenu denials are routed through the DedupLedger so only the first
// session in the fleet answers, and every other category answers
// independently per session.
func (d *Dispatcher) deny(ctx context.Context, msgCtx MessageContext, descriptor *Descriptor, verdict Verdict) error {
	if verdict.Silent || descriptor.Silent || verdict.DenyReason == "" {
		return nil
	}

	if !descriptor.Category.needsDedupRouting() || d.dedup == nil {
		return d.reply(ctx, msgCtx, verdict.DenyReason)
	}

	key := dedup.Key{ChatID: msgCtx.ChatID, MessageID: msgCtx.MessageID}
	action := dedup.Action("deny-" + string(descriptor.Category))
	won, err := d.dedup.TryLock(ctx, key, msgCtx.SessionID, action)
	if err != nil {
		return err
	}
	if !won {
		return nil
	}
	if err := d.reply(ctx, msgCtx, verdict.DenyReason); err != nil {
		return err
	}
	return d.dedup.MarkDone(ctx, key, msgCtx.SessionID, action)
}

// execute invokes the resolved plugin, including the groupmenu-only retry on
// errors whose message contains "database".
func (d *Dispatcher) execute(ctx context.Context, msgCtx MessageContext, descriptor *Descriptor) (*Reply, error) {
	reply, err := descriptor.invoke(ctx, msgCtx)
	if err == nil || descriptor.Category != CategoryGroupMenu || !isDatabaseError(err) {
		return reply, err
	}

	for attempt := 1; attempt <= groupmenuRetryAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(attempt) * groupmenuRetryUnit):
		}
		reply, err = descriptor.invoke(ctx, msgCtx)
		if err == nil || !isDatabaseError(err) {
			return reply, err
		}
	}
	return reply, err
}

func isDatabaseError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "database")
}

func isDBMutatingAdmin(d *Descriptor) bool {
	return d.Category == CategoryAdmin && d.Permission >= PermissionAdmin
}

func (d *Dispatcher) reply(ctx context.Context, msgCtx MessageContext, text string) error {
	if d.sender == nil {
		return nil
	}
	return d.sender.SendText(ctx, msgCtx.SessionID, msgCtx.ChatID, text)
}

// ScanAntiPlugins runs the anti-plugin pass for
// one inbound message: every registered processMessage plugin is offered
// the message, gated by its own isEnabled/shouldProcess predicates and a
// per-plugin dedup lock so only one session in the fleet runs it.
func (d *Dispatcher) ScanAntiPlugins(ctx context.Context, msgCtx MessageContext) {
	for _, p := range d.idx.antiPlugins() {
		p := p
		if p.IsEnabled != nil && !p.IsEnabled(msgCtx.ChatID) {
			continue
		}
		if p.ShouldProcess != nil && !p.ShouldProcess(msgCtx) {
			continue
		}

		if d.dedup != nil {
			key := dedup.Key{ChatID: msgCtx.ChatID, MessageID: msgCtx.MessageID}
			action := dedup.Action("anti-" + p.Name)
			won, err := d.dedup.TryLock(ctx, key, msgCtx.SessionID, action)
			if err != nil || !won {
				continue
			}
			// markDone fires optimistically for the first winner, before
			// ProcessMessage returns: a crash mid-execution must not let a
			// second session retry the same side effect.
			if err := d.dedup.MarkDone(ctx, key, msgCtx.SessionID, action); err != nil {
				d.log.WarnWithFields("dispatch: failed to mark anti-plugin done", logger.Fields{"plugin": p.Name, "error": err.Error()})
			}
			if err := p.ProcessMessage(ctx, msgCtx); err != nil {
				d.log.WarnWithFields("dispatch: anti-plugin failed", logger.Fields{"plugin": p.Name, "error": err.Error()})
			}
			continue
		}

		if err := p.ProcessMessage(ctx, msgCtx); err != nil {
			d.log.WarnWithFields("dispatch: anti-plugin failed", logger.Fields{"plugin": p.Name, "error": err.Error()})
		}
	}
}
