package services

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"

	"github.com/Am-duojie/amdo-s/internal/database"
	"github.com/Am-duojie/amdo-s/internal/recycle"
)

func setupDraftTestRedis() *miniredis.Miniredis {
	mr, err := miniredis.Run()
	if err != nil {
		panic(err)
	}

	database.RedisClient = redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	return mr
}

func TestOpenDraftRoundTrip(t *testing.T) {
	mr := setupDraftTestRedis()
	defer mr.Close()

	store := OpenDraft(42)
	store.SetSelection(recycle.SelectionPatch{Brand: strPtr("苹果")})
	store.SetSelection(recycle.SelectionPatch{Model: strPtr("iPhone 13")})
	store.SetCurrentStep(3)
	store.SetAnswer("battery", "healthy")

	// 新的 store 实例从 redis 快照还原
	reopened := OpenDraft(42)
	d := reopened.Draft()
	assert.Equal(t, "苹果", d.Selection.Brand)
	assert.Equal(t, "iPhone 13", d.Selection.Model)
	assert.Equal(t, 3, d.CurrentStep)
	assert.Equal(t, "healthy", d.Answers["battery"])
}

func TestOpenDraftIsPerUser(t *testing.T) {
	mr := setupDraftTestRedis()
	defer mr.Close()

	OpenDraft(1).SetSelection(recycle.SelectionPatch{Brand: strPtr("华为")})

	d := OpenDraft(2).Draft()
	assert.Empty(t, d.Selection.Brand)
}

func TestOpenDraftToleratesCorruptSnapshot(t *testing.T) {
	mr := setupDraftTestRedis()
	defer mr.Close()

	mr.Set("recycle:draft:7", "{not valid json")

	d := OpenDraft(7).Draft()
	assert.Equal(t, recycle.DefaultDeviceType, d.Selection.DeviceType)
	assert.Equal(t, 1, d.CurrentStep)
}

func TestOpenDraftReset(t *testing.T) {
	mr := setupDraftTestRedis()
	defer mr.Close()

	store := OpenDraft(9)
	store.SetSelection(recycle.SelectionPatch{Brand: strPtr("小米")})
	assert.True(t, mr.Exists("recycle:draft:9"))

	store.Reset()
	assert.False(t, mr.Exists("recycle:draft:9"))
	assert.Empty(t, store.Draft().Selection.Brand)
}

func strPtr(s string) *string {
	return &s
}
