package recycle

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

// memorySnapshots is an in-memory SnapshotStore for exercising persistence.
type memorySnapshots struct {
	data    map[string][]byte
	failing bool
}

func newMemorySnapshots() *memorySnapshots {
	return &memorySnapshots{data: map[string][]byte{}}
}

func (m *memorySnapshots) Save(key string, data []byte) error {
	if m.failing {
		return errors.New("storage unavailable")
	}
	m.data[key] = data
	return nil
}

func (m *memorySnapshots) Load(key string) ([]byte, error) {
	if m.failing {
		return nil, errors.New("storage unavailable")
	}
	return m.data[key], nil
}

func (m *memorySnapshots) Delete(key string) error {
	delete(m.data, key)
	return nil
}

func str(s string) *string { return &s }

func TestDefaultDraft(t *testing.T) {
	d := DefaultDraft()
	assert.Equal(t, "手机", d.Selection.DeviceType)
	assert.Equal(t, "全部", d.Selection.Series)
	assert.Empty(t, d.Selection.Brand)
	assert.Equal(t, 1, d.CurrentStep)
	assert.NotNil(t, d.Answers)
}

func TestSetSelectionCascade(t *testing.T) {
	t.Run("device type change clears everything below", func(t *testing.T) {
		store := OpenDraftStore("k", newMemorySnapshots())
		store.SetSelection(SelectionPatch{Brand: str("苹果")})
		store.SetSelection(SelectionPatch{Model: str("iPhone 15")})
		store.SetAnswer("screen", AnswerOption{Value: "cracked", Impact: ImpactMajor})
		store.SetCurrentStep(3)
		store.SetQuote(f64(100), f64(10), f64(90))

		store.SetSelection(SelectionPatch{DeviceType: str("平板")})

		d := store.Draft()
		assert.Equal(t, Selection{DeviceType: "平板", Series: "全部"}, d.Selection)
		assert.Empty(t, d.Answers)
		assert.Equal(t, 1, d.CurrentStep)
		assert.Nil(t, d.EstimatedPrice)
		assert.Nil(t, d.Bonus)
		assert.Nil(t, d.BasePrice)
		assert.Nil(t, d.TemplateID)
	})

	t.Run("brand change clears series and model", func(t *testing.T) {
		store := OpenDraftStore("k", newMemorySnapshots())
		store.SetSelection(SelectionPatch{Brand: str("苹果")})
		store.SetSelection(SelectionPatch{Series: str("15系列")})
		store.SetSelection(SelectionPatch{Model: str("iPhone 15")})

		store.SetSelection(SelectionPatch{Brand: str("华为")})

		d := store.Draft()
		assert.Equal(t, "手机", d.Selection.DeviceType)
		assert.Equal(t, "华为", d.Selection.Brand)
		assert.Equal(t, "全部", d.Selection.Series)
		assert.Empty(t, d.Selection.Model)
	})

	t.Run("series change clears model only", func(t *testing.T) {
		store := OpenDraftStore("k", newMemorySnapshots())
		store.SetSelection(SelectionPatch{Brand: str("苹果")})
		store.SetSelection(SelectionPatch{Series: str("15系列")})
		store.SetSelection(SelectionPatch{Model: str("iPhone 15")})

		store.SetSelection(SelectionPatch{Series: str("14系列")})

		d := store.Draft()
		assert.Equal(t, "苹果", d.Selection.Brand)
		assert.Equal(t, "14系列", d.Selection.Series)
		assert.Empty(t, d.Selection.Model)
	})

	t.Run("model change keeps selection but resets estimate", func(t *testing.T) {
		store := OpenDraftStore("k", newMemorySnapshots())
		store.SetSelection(SelectionPatch{Brand: str("苹果")})
		store.SetSelection(SelectionPatch{Model: str("iPhone 15")})
		store.SetAnswer("battery", AnswerOption{Value: "healthy"})
		store.SetTemplate(5)
		store.SetSelectedConfig(ConfigPatch{Color: str("黑色")})

		store.SetSelection(SelectionPatch{Model: str("iPhone 14")})

		d := store.Draft()
		assert.Equal(t, "苹果", d.Selection.Brand)
		assert.Equal(t, "iPhone 14", d.Selection.Model)
		assert.Empty(t, d.Answers)
		assert.Nil(t, d.TemplateID)
		assert.Empty(t, d.SelectedColor)
	})

	t.Run("query merges shallowly without reset", func(t *testing.T) {
		store := OpenDraftStore("k", newMemorySnapshots())
		store.SetSelection(SelectionPatch{Brand: str("苹果")})
		store.SetAnswer("battery", AnswerOption{Value: "healthy"})

		store.SetSelection(SelectionPatch{Q: str("iphone")})

		d := store.Draft()
		assert.Equal(t, "iphone", d.Selection.Q)
		assert.Equal(t, "苹果", d.Selection.Brand)
		assert.Len(t, d.Answers, 1)
	})

	t.Run("repeating the same value does not cascade", func(t *testing.T) {
		store := OpenDraftStore("k", newMemorySnapshots())
		store.SetSelection(SelectionPatch{Brand: str("苹果")})
		store.SetSelection(SelectionPatch{Model: str("iPhone 15")})
		store.SetAnswer("battery", AnswerOption{Value: "healthy"})

		store.SetSelection(SelectionPatch{Model: str("iPhone 15")})

		assert.Len(t, store.Draft().Answers, 1)
	})
}

func TestResetSelection(t *testing.T) {
	store := OpenDraftStore("k", newMemorySnapshots())
	store.SetSelection(SelectionPatch{DeviceType: str("平板"), Brand: str("苹果")})
	store.SetStorage("256GB")
	store.SetCondition("good")

	store.ResetSelection()

	d := store.Draft()
	assert.Equal(t, Selection{DeviceType: "手机", Series: "全部"}, d.Selection)
	assert.Empty(t, d.Storage)
	assert.Empty(t, d.Condition)
}

func TestSetQuoteIsAtomic(t *testing.T) {
	store := OpenDraftStore("k", newMemorySnapshots())

	store.SetQuote(f64(100), f64(10), f64(90))
	d := store.Draft()
	assert.Equal(t, 100.0, *d.EstimatedPrice)
	assert.Equal(t, 10.0, *d.Bonus)
	assert.Equal(t, 90.0, *d.BasePrice)

	// 模板写入不影响报价三元组
	store.SetTemplate(5)
	d = store.Draft()
	assert.Equal(t, 100.0, *d.EstimatedPrice)
	assert.Equal(t, 10.0, *d.Bonus)
	assert.Equal(t, 90.0, *d.BasePrice)
	assert.Equal(t, uint(5), *d.TemplateID)

	// 缺省参数归零而不是保留旧值
	store.SetQuote(f64(120), nil, nil)
	d = store.Draft()
	assert.Equal(t, 120.0, *d.EstimatedPrice)
	assert.Nil(t, d.Bonus)
	assert.Nil(t, d.BasePrice)
}

func TestSetSelectedConfigPartialWrite(t *testing.T) {
	store := OpenDraftStore("k", newMemorySnapshots())
	store.SetSelectedConfig(ConfigPatch{Storage: str("256GB"), Color: str("黑色")})
	store.SetSelectedConfig(ConfigPatch{RAM: str("8GB")})

	d := store.Draft()
	assert.Equal(t, "256GB", d.SelectedStorage)
	assert.Equal(t, "黑色", d.SelectedColor)
	assert.Equal(t, "8GB", d.SelectedRAM)
	assert.Empty(t, d.SelectedVersion)
}

func TestGetImpactCounts(t *testing.T) {
	store := OpenDraftStore("k", newMemorySnapshots())
	store.SetAnswer("q1", AnswerOption{Value: "scratched", Impact: ImpactMajor})
	store.SetAnswer("q2", []AnswerOption{
		{Value: "dent", Impact: ImpactMinor},
		{Value: "water", Impact: ImpactCritical},
	})
	store.SetAnswer("q3", nil)
	store.SetAnswer("q4", AnswerOption{Value: "official", Impact: ImpactPositive})

	counts := store.GetImpactCounts()
	assert.Equal(t, ImpactCounts{Minor: 1, Major: 1, Critical: 1}, counts)
}

func TestGetImpactCountsOverDecodedJSON(t *testing.T) {
	// 从快照恢复后答案是 map/[]any 形态，聚合结果必须一致
	store := OpenDraftStore("k", newMemorySnapshots())
	store.SetAnswer("q1", map[string]any{"value": "scratched", "impact": "major"})
	store.SetAnswer("q2", []any{
		map[string]any{"value": "dent", "impact": "minor"},
		map[string]any{"value": "water", "impact": "critical"},
	})

	counts := store.GetImpactCounts()
	assert.Equal(t, ImpactCounts{Minor: 1, Major: 1, Critical: 1}, counts)
}

func TestSnapshotRoundTrip(t *testing.T) {
	snapshots := newMemorySnapshots()

	store := OpenDraftStore("draft:1", snapshots)
	store.SetSelection(SelectionPatch{Brand: str("苹果")})
	store.SetSelection(SelectionPatch{Model: str("iPhone 15")})
	store.SetAnswer("screen", AnswerOption{Value: "ok"})
	store.SetCurrentStep(2)
	store.SetStorage("256GB")
	store.SetCondition("good")
	store.SetQuote(f64(3200), f64(160), f64(3040))
	store.SetTemplate(7)
	store.SetSelectedConfig(ConfigPatch{Color: str("蓝色")})

	reopened := OpenDraftStore("draft:1", snapshots)
	d := reopened.Draft()
	assert.Equal(t, "iPhone 15", d.Selection.Model)
	assert.Equal(t, 2, d.CurrentStep)
	assert.Equal(t, "256GB", d.Storage)
	assert.Equal(t, "good", d.Condition)
	assert.Equal(t, 3200.0, *d.EstimatedPrice)
	assert.Equal(t, 160.0, *d.Bonus)
	assert.Equal(t, 3040.0, *d.BasePrice)
	assert.Equal(t, uint(7), *d.TemplateID)
	assert.Equal(t, "蓝色", d.SelectedColor)
	assert.Contains(t, d.Answers, "screen")
}

func TestHydrateToleratesBadSnapshots(t *testing.T) {
	t.Run("missing snapshot yields defaults", func(t *testing.T) {
		store := OpenDraftStore("nope", newMemorySnapshots())
		assert.Equal(t, DefaultDraft().Selection, store.Draft().Selection)
	})

	t.Run("corrupt snapshot yields defaults", func(t *testing.T) {
		snapshots := newMemorySnapshots()
		snapshots.data["draft:1"] = []byte("{not json")
		store := OpenDraftStore("draft:1", snapshots)
		assert.Equal(t, DefaultDraft().Selection, store.Draft().Selection)
		assert.Equal(t, 1, store.Draft().CurrentStep)
	})

	t.Run("partial snapshot merges over defaults", func(t *testing.T) {
		snapshots := newMemorySnapshots()
		snapshots.data["draft:1"] = []byte(`{"storage":"512GB"}`)
		store := OpenDraftStore("draft:1", snapshots)
		d := store.Draft()
		assert.Equal(t, "512GB", d.Storage)
		assert.Equal(t, "手机", d.Selection.DeviceType)
		assert.Equal(t, 1, d.CurrentStep)
	})

	t.Run("failing store never fails mutations", func(t *testing.T) {
		snapshots := newMemorySnapshots()
		snapshots.failing = true
		store := OpenDraftStore("draft:1", snapshots)
		store.SetSelection(SelectionPatch{Brand: str("苹果")})
		store.SetAnswer("screen", AnswerOption{Value: "ok"})
		assert.Equal(t, "苹果", store.Draft().Selection.Brand)
	})
}

func TestReset(t *testing.T) {
	snapshots := newMemorySnapshots()
	store := OpenDraftStore("draft:1", snapshots)
	store.SetSelection(SelectionPatch{Brand: str("苹果")})

	store.Reset()

	assert.Equal(t, DefaultDraft().Selection, store.Draft().Selection)
	_, ok := snapshots.data["draft:1"]
	assert.False(t, ok)
}
