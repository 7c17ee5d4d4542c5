package services

import (
	"fmt"
	"time"

	"github.com/Am-duojie/amdo-s/config"
	"github.com/Am-duojie/amdo-s/internal/recycle"
)

const draftKeyPrefix = "recycle:draft:"

// OpenDraft opens (and hydrates) the recycling questionnaire draft for one
// user. The draft survives across requests until submitted, reset, or
// expired by the snapshot TTL.
func OpenDraft(userID uint) *recycle.DraftStore {
	cfg, _ := config.LoadConfig()

	ttl := time.Duration(0)
	if cfg != nil && cfg.DraftTTLHours > 0 {
		ttl = time.Duration(cfg.DraftTTLHours) * time.Hour
	}

	key := fmt.Sprintf("%s%d", draftKeyPrefix, userID)
	return recycle.OpenDraftStore(key, &RedisSnapshotStore{TTL: ttl})
}
