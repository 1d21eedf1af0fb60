package recommend

import (
	"context"
	"crypto/md5"
	"encoding/binary"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/khanglvm/editorial-toolkit/internal/storage"
)

const (
	// DefaultCooldown is how long a shown tool stays penalised.
	DefaultCooldown = 24 * time.Hour

	// seedBucketHours is the width of the diversity seed's time bucket.
	seedBucketHours = 4

	penaltyBase   = 15.0
	penaltySpread = 10.0
	jitterSpread  = 6.0
)

// DiversitySeed derives the rotation seed from the user and the current
// 4-hour bucket of the UTC day. The seed is stable inside one bucket and
// differs across users and buckets.
func DiversitySeed(userID string, now time.Time) int64 {
	now = now.UTC()
	key := fmt.Sprintf("%s-%d-%d", userID, now.YearDay(), now.Hour()/seedBucketHours)
	sum := md5.Sum([]byte(key))
	return int64(binary.BigEndian.Uint32(sum[:4]))
}

// Rotation applies the recently-shown penalty and diversity jitter.
// It owns a private seeded RNG and is not safe for concurrent use;
// create one per recommendation pass and call Adjust in candidate order.
type Rotation struct {
	rng *rand.Rand
}

// NewRotation creates a rotation seeded with seed.
func NewRotation(seed int64) *Rotation {
	return &Rotation{rng: rand.New(rand.NewSource(seed))}
}

// Adjust returns score after rotation. A recently shown tool loses a
// penalty in [15,25); every tool then gets jitter in [-3,3). The result is
// floored at 0 after each step.
func (r *Rotation) Adjust(score float64, recentlyShown bool) float64 {
	if recentlyShown {
		penalty := penaltyBase + r.rng.Float64()*penaltySpread
		score = math.Max(0, score-penalty)
	}
	jitter := (r.rng.Float64() - 0.5) * jitterSpread
	return math.Max(0, score+jitter)
}

// RecentlyShown returns the slugs shown to userID within window before now.
// Older records are ignored, never deleted.
func RecentlyShown(ctx context.Context, log ActivityLog, userID string, window time.Duration, now time.Time) (map[string]struct{}, error) {
	if window <= 0 {
		window = DefaultCooldown
	}
	events, err := log.ActivitySince(ctx, userID, storage.ActivityRecommendationShown, now.Add(-window))
	if err != nil {
		return nil, fmt.Errorf("failed to read shown records: %w", err)
	}

	shown := make(map[string]struct{})
	for _, ev := range events {
		for _, slug := range ev.Details.ToolSlugs {
			shown[slug] = struct{}{}
		}
	}
	return shown, nil
}
