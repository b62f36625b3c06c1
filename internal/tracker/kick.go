package tracker

import (
	"strings"
	"time"

	"github.com/mikrosense/mikrosense/internal/model"
)

// DefaultShortSessionThreshold marks sessions shorter than this as likely
// forced disconnects when no explicit indicator is present.
const DefaultShortSessionThreshold = 30 * time.Minute

// Classifier decides whether a disconnect was an ordinary client-initiated
// one or a forced removal. The result is a best-effort heuristic with
// known false positives for legitimately short sessions; callers must
// treat the reason as advisory.
type Classifier struct {
	ShortSessionThreshold time.Duration
}

// NewClassifier returns a classifier with the default threshold.
func NewClassifier() Classifier {
	return Classifier{ShortSessionThreshold: DefaultShortSessionThreshold}
}

// Keyword indicators checked against the named router fields, in reason
// priority order.
var kickReasons = []struct {
	keywords []string
	reason   string
}{
	{keywords: []string{"idle", "timeout"}, reason: "idle timeout"},
	{keywords: []string{"expired"}, reason: "session expired"},
	{keywords: []string{"kicked", "removed"}, reason: "manual removal"},
	{keywords: []string{"forced"}, reason: "forced disconnect"},
}

// Classify inspects the final router record and tracked session. The
// keyword scan covers only the named metadata fields (comment, login-by,
// idle-timeout) rather than a serialized blob.
func (c Classifier) Classify(session *model.Session, final model.ClientRecord) (bool, string) {
	fields := strings.ToLower(strings.Join([]string{
		final.Comment,
		final.LoginBy,
		final.IdleTimeout,
	}, " "))

	for _, entry := range kickReasons {
		for _, keyword := range entry.keywords {
			if strings.Contains(fields, keyword) {
				return true, entry.reason
			}
		}
	}

	if final.QuotaExceeded() {
		return true, "session expired"
	}

	threshold := c.ShortSessionThreshold
	if threshold <= 0 {
		threshold = DefaultShortSessionThreshold
	}
	uptime := final.Uptime
	if uptime == 0 && session != nil {
		uptime = final.FetchedAt.Sub(session.StartedAt)
	}
	if uptime > 0 && uptime < threshold {
		return true, "session timeout"
	}
	return false, ""
}
