package gate

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/JzuvGTI/jzrestapi/internal/model"
	"github.com/JzuvGTI/jzrestapi/internal/op"
)

// NormalizeBan lifts an expired time-bound block the moment it is observed
// instead of waiting for a background sweep. Callers must use the returned
// snapshot for every later decision in the same request: when the clear
// fires, the input snapshot is stale.
//
// Safe to call concurrently for one user. Competing clears write identical
// values, so last write wins without corruption, and re-running it on an
// already-clean or still-blocked snapshot performs no write at all.
func NormalizeBan(user model.User, ctx context.Context) (model.User, error) {
	if !user.IsBlocked {
		return user, nil
	}
	if user.BanUntil > 0 && user.BanUntil <= time.Now().Unix() {
		return op.UserClearBan(user.ID, ctx)
	}
	return user, nil
}

// BanInfo is the user-facing view of a normalized ban snapshot.
type BanInfo struct {
	Blocked   bool   `json:"blocked"`
	Permanent bool   `json:"permanent,omitempty"`
	Reason    string `json:"reason,omitempty"`
	Until     string `json:"until,omitempty"`
	Remaining string `json:"remaining,omitempty"`
}

func BanInfoOf(user model.User, now time.Time) BanInfo {
	if !user.IsBlocked {
		return BanInfo{}
	}
	info := BanInfo{
		Blocked: true,
		Reason:  user.BanReason,
	}
	if user.BanUntil == 0 {
		info.Permanent = true
		return info
	}
	until := time.Unix(user.BanUntil, 0).UTC()
	info.Until = until.Format("2006-01-02 15:04:05 MST")
	info.Remaining = formatRemaining(until.Sub(now))
	return info
}

// BanMessage renders the snapshot into the message surfaced on a 403.
func BanMessage(user model.User, now time.Time) string {
	info := BanInfoOf(user, now)
	if !info.Blocked {
		return ""
	}
	var b strings.Builder
	if info.Permanent {
		b.WriteString("account is blocked permanently")
	} else {
		fmt.Fprintf(&b, "account is blocked for %s (until %s)", info.Remaining, info.Until)
	}
	if info.Reason != "" {
		fmt.Fprintf(&b, ", reason: %s", info.Reason)
	}
	return b.String()
}

// formatRemaining buckets a duration into days/hours/minutes and keeps at
// most the two largest non-zero units.
func formatRemaining(d time.Duration) string {
	if d < time.Minute {
		return "less than a minute"
	}
	days := int(d / (24 * time.Hour))
	hours := int(d%(24*time.Hour)) / int(time.Hour)
	minutes := int(d%time.Hour) / int(time.Minute)

	parts := make([]string, 0, 2)
	for _, unit := range []struct {
		n    int
		name string
	}{
		{days, "day"},
		{hours, "hour"},
		{minutes, "minute"},
	} {
		if unit.n == 0 {
			continue
		}
		label := unit.name
		if unit.n > 1 {
			label += "s"
		}
		parts = append(parts, fmt.Sprintf("%d %s", unit.n, label))
		if len(parts) == 2 {
			break
		}
	}
	return strings.Join(parts, " ")
}
