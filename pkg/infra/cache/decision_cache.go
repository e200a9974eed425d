package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"strconv"
	"time"

	"github.com/NeuralTrust/MediaGuard/pkg/domain/moderation"
	"github.com/corona10/goimagehash"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

const (
	DecisionKeyPattern = "decision:%s:%s"
	DefaultDecisionTTL = 10 * time.Minute
)

// Lookup is the outcome of DecisionCache.GetOrCompute.
type Lookup int

const (
	LookupMiss Lookup = iota
	LookupLocalHit
	LookupRemoteHit
	LookupShared
)

func (l Lookup) Hit() bool {
	return l == LookupLocalHit || l == LookupRemoteHit
}

// DecisionCache remembers finished decisions in process and, when a redis
// client is given, across replicas. Concurrent computations of the same key
// share one result. Cache failures never fail the request.
type DecisionCache struct {
	local  *TTLMap[moderation.Decision]
	remote Client
	ttl    time.Duration
	group  singleflight.Group
	logger *logrus.Logger
}

func NewDecisionCache(remote Client, ttl time.Duration, logger *logrus.Logger) *DecisionCache {
	if ttl <= 0 {
		ttl = DefaultDecisionTTL
	}
	return &DecisionCache{
		local:  NewTTLMap[moderation.Decision](ttl),
		remote: remote,
		ttl:    ttl,
		logger: logger,
	}
}

type computeResult struct {
	decision moderation.Decision
	lookup   Lookup
}

// GetOrCompute returns the cached decision for key or stores the result of
// compute. Errors from compute are returned as is and never cached.
func (c *DecisionCache) GetOrCompute(
	ctx context.Context,
	key string,
	compute func() (moderation.Decision, error),
) (moderation.Decision, Lookup, error) {
	if d, ok := c.local.Get(key); ok {
		return d, LookupLocalHit, nil
	}

	v, err, shared := c.group.Do(key, func() (interface{}, error) {
		if d, ok := c.fetchRemote(ctx, key); ok {
			c.local.Set(key, d)
			return computeResult{decision: d, lookup: LookupRemoteHit}, nil
		}
		d, err := compute()
		if err != nil {
			return nil, err
		}
		c.store(ctx, key, d)
		return computeResult{decision: d, lookup: LookupMiss}, nil
	})
	if err != nil {
		return moderation.Decision{}, LookupMiss, err
	}
	res := v.(computeResult) //nolint:errcheck
	if shared && res.lookup == LookupMiss {
		res.lookup = LookupShared
	}
	return res.decision, res.lookup, nil
}

func (c *DecisionCache) fetchRemote(ctx context.Context, key string) (moderation.Decision, bool) {
	if c.remote == nil {
		return moderation.Decision{}, false
	}
	raw, err := c.remote.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrMiss) {
			c.logger.WithError(err).WithField("key", key).Warn("decision cache read failed")
		}
		return moderation.Decision{}, false
	}
	var d moderation.Decision
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("discarding malformed cached decision")
		return moderation.Decision{}, false
	}
	return d, true
}

func (c *DecisionCache) store(ctx context.Context, key string, d moderation.Decision) {
	c.local.Set(key, d)
	if c.remote == nil {
		return
	}
	raw, err := json.Marshal(d)
	if err != nil {
		return
	}
	if err := c.remote.Set(ctx, key, string(raw), c.ttl); err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("decision cache write failed")
	}
}

// Purge drops expired in-process entries.
func (c *DecisionCache) Purge() int {
	return c.local.Purge()
}

// DecisionKey derives the cache key of one classification request. Labels
// are hashed in order because order decides which label is reported.
func DecisionKey(
	mediaType moderation.MediaType,
	identity string,
	labels []string,
	settings moderation.Settings,
	base float64,
) string {
	h := sha256.New()
	write := func(s string) {
		h.Write([]byte(s))
		h.Write([]byte{0})
	}
	write(identity)
	for _, label := range labels {
		write(label + "=" + string(settings.Level(label)))
	}
	write(strconv.FormatFloat(base, 'f', -1, 64))

	return fmt.Sprintf(DecisionKeyPattern, mediaType, hex.EncodeToString(h.Sum(nil)))
}

// ContentIdentity is the SHA-256 of the media bytes. Decisions are only
// reused for byte-identical media.
func ContentIdentity(raw []byte) string {
	sum := sha256.Sum256(raw)
	return "sha256:" + hex.EncodeToString(sum[:])
}

// PerceptualHash is the difference hash of img, or "" when it cannot be
// computed. Visually similar images share it, so it is logged to spot
// near-duplicates and never used as a cache identity.
func PerceptualHash(img image.Image) string {
	if img == nil {
		return ""
	}
	hash, err := goimagehash.DifferenceHash(img)
	if err != nil {
		return ""
	}
	return hash.ToString()
}
