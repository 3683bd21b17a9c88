package dedup

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	valkeylib "github.com/valkey-io/valkey-go"

	domaindedup "wazmeow/internal/domain/dedup"
)

// tryLockScript atomically grants the lock when the key is unset, expired,
// or already held by the caller; it never overwrites a fresh foreign lock.
// KEYS[1]=lock key, ARGV[1]=sessionID, ARGV[2]=now unix ms, ARGV[3]=lockAgeOutMs, ARGV[4]=entryTTLSeconds
const tryLockScript = `
local v = redis.call("get", KEYS[1])
if v == false then
	redis.call("set", KEYS[1], ARGV[1] .. ":" .. ARGV[2], "EX", ARGV[4])
	return 1
end
local sep = string.find(v, ":")
local owner = string.sub(v, 1, sep - 1)
local lockedAt = tonumber(string.sub(v, sep + 1))
local now = tonumber(ARGV[2])
if owner == ARGV[1] then
	redis.call("set", KEYS[1], ARGV[1] .. ":" .. ARGV[2], "EX", ARGV[4])
	return 1
end
if (now - lockedAt) >= tonumber(ARGV[3]) then
	redis.call("set", KEYS[1], ARGV[1] .. ":" .. ARGV[2], "EX", ARGV[4])
	return 1
end
return 0
`

// VLedger is a Valkey-backed dedup.Ledger for multi-process fleets, where
// the in-memory Ledger can't see locks taken by sibling processes. Lock
// acquisition runs as a compare-and-set Lua script since TryLock must
// grant same-owner renewal and age-out takeover in one atomic step.
type VLedger struct {
	inner     valkeylib.Client
	keyPrefix string
}

// NewVLedger builds a Valkey-backed Ledger over an already-connected client.
func NewVLedger(client valkeylib.Client, keyPrefix string) *VLedger {
	prefix := keyPrefix
	if prefix == "" {
		prefix = "dedup"
	}
	if !strings.HasSuffix(prefix, ":") {
		prefix += ":"
	}
	return &VLedger{inner: client, keyPrefix: prefix}
}

func (v *VLedger) lockKey(key domaindedup.Key, action domaindedup.Action) string {
	return v.keyPrefix + "lock:" + key.ChatID + ":" + key.MessageID + ":" + string(action)
}

func (v *VLedger) doneKey(key domaindedup.Key, action domaindedup.Action) string {
	return v.keyPrefix + "done:" + key.ChatID + ":" + key.MessageID + ":" + string(action)
}

func (v *VLedger) TryLock(ctx context.Context, key domaindedup.Key, sessionID string, action domaindedup.Action) (bool, error) {
	done, err := v.IsDone(ctx, key, action)
	if err != nil {
		return false, err
	}
	if done {
		return false, nil
	}

	nowMS := time.Now().UnixMilli()
	cmd := v.inner.B().Eval().
		Script(tryLockScript).
		Numkeys(1).
		Key(v.lockKey(key, action)).
		Arg(sessionID, strconv.FormatInt(nowMS, 10), strconv.FormatInt(domaindedup.LockAgeOut.Milliseconds(), 10), strconv.Itoa(int(domaindedup.EntryTTL.Seconds()))).
		Build()

	result, err := v.inner.Do(ctx, cmd).AsInt64()
	if err != nil {
		return false, fmt.Errorf("dedup: valkey trylock: %w", err)
	}
	return result == 1, nil
}

func (v *VLedger) MarkDone(ctx context.Context, key domaindedup.Key, sessionID string, action domaindedup.Action) error {
	cmd := v.inner.B().Set().
		Key(v.doneKey(key, action)).
		Value(sessionID).
		Ex(domaindedup.EntryTTL).
		Build()
	if err := v.inner.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("dedup: valkey markdone: %w", err)
	}
	return nil
}

func (v *VLedger) IsDone(ctx context.Context, key domaindedup.Key, action domaindedup.Action) (bool, error) {
	cmd := v.inner.B().Exists().Key(v.doneKey(key, action)).Build()
	count, err := v.inner.Do(ctx, cmd).AsInt64()
	if err != nil {
		return false, fmt.Errorf("dedup: valkey isdone: %w", err)
	}
	return count > 0, nil
}

func (v *VLedger) Close() error {
	return nil
}
