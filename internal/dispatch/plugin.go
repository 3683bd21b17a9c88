// Package dispatch implements the inbound message Dispatcher:
// command lookup, the per-message gate pipeline, the anti-plugin scan, and
// hot-reload of the plugin manifest tree.
package dispatch

import "context"

// Category groups a command for the permission and dedup-routing rules.
type Category string

const (
	CategoryPublic    Category = "public"
	CategoryVIP       Category = "vip"
	CategoryOwner     Category = "owner"
	CategoryAdmin     Category = "admin"
	CategoryGroupMenu Category = "groupmenu"
	CategoryGameMenu  Category = "gamemenu"
)

// needsDedupRouting reports whether a deny message for this category must
// be routed through the DedupLedger so only the first session answers.
func (c Category) needsDedupRouting() bool {
	return c == CategoryGroupMenu || c == CategoryGameMenu
}

// RequiredPermission is the owner/admin/vip bit a command may require, on
// top of its Category default.
type RequiredPermission int

const (
	PermissionNone RequiredPermission = iota
	PermissionVIP
	PermissionAdmin
	PermissionOwner
)

// MessageContext is the enriched context built for each inbound command.
type MessageContext struct {
	ChatID       string
	SenderID     string
	MessageID    string
	IsGroup      bool
	IsCreator    bool
	IsGroupAdmin bool
	SessionID    string
	Command      string
	Args         []string
	RawText      string
}

// Reply is what a plugin call (or a gate) wants sent back to the chat.
type Reply struct {
	Text string
}

// Plugin4 is the 4-arg call shape: (ctx, msgCtx, args), with the reply
// returned rather than written to a fourth reply-sink argument.
type Plugin4 func(ctx context.Context, msgCtx MessageContext, args []string) (*Reply, error)

// Plugin3 is the 3-arg call shape some commands declare: (ctx, msgCtx,
// rawText).
type Plugin3 func(ctx context.Context, msgCtx MessageContext, rawText string) (*Reply, error)

// Descriptor is one registered command plugin.
type Descriptor struct {
	Name       string
	Category   Category
	Permission RequiredPermission
	GroupOnly  bool
	Silent     bool // deny messages for this command are dropped, never replied to

	// BypassGroupGate exempts a command (typically the group-only mode
	// toggle itself) from the group-only gate.
	BypassGroupGate bool

	Call4 Plugin4 // exactly one of Call4/Call3 is set
	Call3 Plugin3

	// ProcessMessage, when set, makes this plugin an anti-plugin: it's
	// invoked for every inbound message (not just addressed commands),
	// subject to IsEnabled/ShouldProcess and a per-plugin dedup lock.
	ProcessMessage func(ctx context.Context, msgCtx MessageContext) error
	IsEnabled      func(chatID string) bool
	ShouldProcess  func(msgCtx MessageContext) bool
}

// isAntiPlugin reports whether this descriptor participates in the
// anti-plugin scan.
func (d *Descriptor) isAntiPlugin() bool {
	return d.ProcessMessage != nil
}

func (d *Descriptor) invoke(ctx context.Context, msgCtx MessageContext) (*Reply, error) {
	if d.Call4 != nil {
		return d.Call4(ctx, msgCtx, msgCtx.Args)
	}
	if d.Call3 != nil {
		return d.Call3(ctx, msgCtx, msgCtx.RawText)
	}
	return nil, nil
}
