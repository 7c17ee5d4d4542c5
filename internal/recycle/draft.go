package recycle

import "encoding/json"

const (
	DefaultDeviceType = "手机"
	DefaultSeries     = "全部"
)

// Impact severity tags carried by questionnaire answer options.
const (
	ImpactPositive = "positive"
	ImpactMinor    = "minor"
	ImpactMajor    = "major"
	ImpactCritical = "critical"
)

// Selection 机型选择，层级为 设备类型 → 品牌 → 系列 → 型号
type Selection struct {
	DeviceType string `json:"device_type,omitempty"`
	Brand      string `json:"brand,omitempty"`
	Series     string `json:"series,omitempty"`
	Model      string `json:"model,omitempty"`
	Q          string `json:"q,omitempty"`
}

// SelectionPatch is a partial selection update. Nil fields are absent, so a
// patch can distinguish "not touched" from "set to empty".
type SelectionPatch struct {
	DeviceType *string `json:"device_type,omitempty"`
	Brand      *string `json:"brand,omitempty"`
	Series     *string `json:"series,omitempty"`
	Model      *string `json:"model,omitempty"`
	Q          *string `json:"q,omitempty"`
}

// AnswerOption 问卷答案选项，impact 标注该选项对估价的影响程度
type AnswerOption struct {
	Value  string `json:"value,omitempty"`
	Label  string `json:"label,omitempty"`
	Impact string `json:"impact,omitempty"`
}

// ConfigPatch updates SKU-level sub-choices. Only non-nil fields are written.
type ConfigPatch struct {
	Storage *string `json:"storage,omitempty"`
	Color   *string `json:"color,omitempty"`
	RAM     *string `json:"ram,omitempty"`
	Version *string `json:"version,omitempty"`
}

// ImpactCounts tallies declared damage flags across the questionnaire.
type ImpactCounts struct {
	Minor    int `json:"minor"`
	Major    int `json:"major"`
	Critical int `json:"critical"`
}

// Draft 一次进行中的回收估价问卷会话
type Draft struct {
	Selection   Selection      `json:"selection"`
	Answers     map[string]any `json:"answers"`
	CurrentStep int            `json:"current_step"`
	Storage     string         `json:"storage,omitempty"`
	Condition   string         `json:"condition,omitempty"`

	// 报价三元组，始终整体读写
	BasePrice      *float64 `json:"base_price"`
	EstimatedPrice *float64 `json:"estimated_price"`
	Bonus          *float64 `json:"bonus"`

	TemplateID *uint `json:"template_id,omitempty"`

	SelectedStorage string `json:"selected_storage,omitempty"`
	SelectedColor   string `json:"selected_color,omitempty"`
	SelectedRAM     string `json:"selected_ram,omitempty"`
	SelectedVersion string `json:"selected_version,omitempty"`
}

// DefaultDraft returns the blank questionnaire state.
func DefaultDraft() Draft {
	return Draft{
		Selection:   Selection{DeviceType: DefaultDeviceType, Series: DefaultSeries},
		Answers:     map[string]any{},
		CurrentStep: 1,
	}
}

// SnapshotStore persists the whole draft as one opaque blob under one key.
// Load returns (nil, nil) when no snapshot exists.
type SnapshotStore interface {
	Save(key string, data []byte) error
	Load(key string) ([]byte, error)
	Delete(key string) error
}

// DraftStore owns one user's draft and mirrors every mutation into the
// snapshot store. Persistence is best-effort: a failing store never fails
// the mutation that triggered it.
type DraftStore struct {
	key       string
	snapshots SnapshotStore
	draft     Draft
}

// OpenDraftStore hydrates a store from any existing snapshot, merging it
// field by field over the defaults. A missing or corrupt snapshot yields
// the default draft.
func OpenDraftStore(key string, snapshots SnapshotStore) *DraftStore {
	s := &DraftStore{key: key, snapshots: snapshots, draft: DefaultDraft()}
	if snapshots == nil {
		return s
	}
	data, err := snapshots.Load(key)
	if err != nil || len(data) == 0 {
		return s
	}
	merged := DefaultDraft()
	if err := json.Unmarshal(data, &merged); err != nil {
		// 损坏的快照视同没有快照
		return s
	}
	if merged.Answers == nil {
		merged.Answers = map[string]any{}
	}
	if merged.CurrentStep < 1 {
		merged.CurrentStep = 1
	}
	if merged.Selection.DeviceType == "" {
		merged.Selection = Selection{DeviceType: DefaultDeviceType, Series: DefaultSeries}
	}
	s.draft = merged
	return s
}

// Draft returns a copy of the current draft state.
func (s *DraftStore) Draft() Draft {
	d := s.draft
	d.Answers = make(map[string]any, len(s.draft.Answers))
	for k, v := range s.draft.Answers {
		d.Answers[k] = v
	}
	return d
}

// cascadeRule is one entry of the ordered invalidation table: when changed
// fires for a patch, apply rewrites the selection and the rule chain stops.
type cascadeRule struct {
	changed func(cur Selection, p SelectionPatch) bool
	apply   func(d *Draft, p SelectionPatch)
}

// 级联失效规则，从上游到下游依次判定，命中即止
var cascadeRules = []cascadeRule{
	{
		changed: func(cur Selection, p SelectionPatch) bool {
			return p.DeviceType != nil && *p.DeviceType != "" && *p.DeviceType != cur.DeviceType
		},
		apply: func(d *Draft, p SelectionPatch) {
			d.Selection = Selection{DeviceType: *p.DeviceType, Series: DefaultSeries}
		},
	},
	{
		changed: func(cur Selection, p SelectionPatch) bool {
			return p.Brand != nil && *p.Brand != "" && *p.Brand != cur.Brand
		},
		apply: func(d *Draft, p SelectionPatch) {
			d.Selection.Brand = *p.Brand
			d.Selection.Series = DefaultSeries
			d.Selection.Model = ""
		},
	},
	{
		changed: func(cur Selection, p SelectionPatch) bool {
			return p.Series != nil && *p.Series != "" && *p.Series != cur.Series
		},
		apply: func(d *Draft, p SelectionPatch) {
			d.Selection.Series = *p.Series
			d.Selection.Model = ""
		},
	},
	{
		changed: func(cur Selection, p SelectionPatch) bool {
			return p.Model != nil && *p.Model != "" && *p.Model != cur.Model
		},
		apply: func(d *Draft, p SelectionPatch) {
			d.Selection.Model = *p.Model
		},
	},
}

// SetSelection merges a partial selection, applying cascade invalidation:
// an upstream change clears everything below it, and any change of the
// effective model discards the collected estimate state.
func (s *DraftStore) SetSelection(p SelectionPatch) {
	for _, rule := range cascadeRules {
		if rule.changed(s.draft.Selection, p) {
			rule.apply(&s.draft, p)
			s.resetEstimate()
			s.persist()
			return
		}
	}
	// 没有触发级联的字段做浅合并
	if p.DeviceType != nil {
		s.draft.Selection.DeviceType = *p.DeviceType
	}
	if p.Brand != nil {
		s.draft.Selection.Brand = *p.Brand
	}
	if p.Series != nil {
		s.draft.Selection.Series = *p.Series
	}
	if p.Model != nil {
		s.draft.Selection.Model = *p.Model
	}
	if p.Q != nil {
		s.draft.Selection.Q = *p.Q
	}
	s.persist()
}

// ResetSelection returns the selection to the defaults and discards the
// estimate state.
func (s *DraftStore) ResetSelection() {
	s.draft.Selection = Selection{DeviceType: DefaultDeviceType, Series: DefaultSeries}
	s.resetEstimate()
	s.persist()
}

// SetAnswer upserts one answer by question key.
func (s *DraftStore) SetAnswer(key string, value any) {
	if s.draft.Answers == nil {
		s.draft.Answers = map[string]any{}
	}
	s.draft.Answers[key] = value
	s.persist()
}

func (s *DraftStore) SetCurrentStep(n int) {
	s.draft.CurrentStep = n
	s.persist()
}

func (s *DraftStore) SetStorage(storage string) {
	s.draft.Storage = storage
	s.persist()
}

func (s *DraftStore) SetCondition(condition string) {
	s.draft.Condition = condition
	s.persist()
}

// SetQuote writes the quote triple atomically. A nil argument clears the
// corresponding field rather than leaving it unchanged, so a reader never
// sees a stale estimate next to a fresh base price.
func (s *DraftStore) SetQuote(estimated, bonus, base *float64) {
	s.draft.EstimatedPrice = estimated
	s.draft.Bonus = bonus
	s.draft.BasePrice = base
	s.persist()
}

// SetTemplate binds the draft to a server-side question template.
func (s *DraftStore) SetTemplate(id uint) {
	s.draft.TemplateID = &id
	s.persist()
}

// SetSelectedConfig writes only the SKU sub-choices present in the patch,
// in contrast to SetQuote's all-or-nothing semantics.
func (s *DraftStore) SetSelectedConfig(p ConfigPatch) {
	if p.Storage != nil {
		s.draft.SelectedStorage = *p.Storage
	}
	if p.Color != nil {
		s.draft.SelectedColor = *p.Color
	}
	if p.RAM != nil {
		s.draft.SelectedRAM = *p.RAM
	}
	if p.Version != nil {
		s.draft.SelectedVersion = *p.Version
	}
	s.persist()
}

// Reset discards the whole draft and removes the snapshot.
func (s *DraftStore) Reset() {
	s.draft = DefaultDraft()
	if s.snapshots != nil {
		_ = s.snapshots.Delete(s.key)
	}
}

// GetImpactCounts tallies minor/major/critical impact tags across all
// answers, whatever shape each answer takes.
func (s *DraftStore) GetImpactCounts() ImpactCounts {
	var counts ImpactCounts
	for _, answer := range s.draft.Answers {
		for _, opt := range normalizeOptions(answer) {
			switch opt.Impact {
			case ImpactMinor:
				counts.Minor++
			case ImpactMajor:
				counts.Major++
			case ImpactCritical:
				counts.Critical++
			}
		}
	}
	return counts
}

// normalizeOptions flattens a heterogeneous answer value (single option,
// list of options, or decoded JSON equivalents) into a flat option list.
// Falsy answers normalize to nothing.
func normalizeOptions(answer any) []AnswerOption {
	switch v := answer.(type) {
	case nil:
		return nil
	case AnswerOption:
		return []AnswerOption{v}
	case *AnswerOption:
		if v == nil {
			return nil
		}
		return []AnswerOption{*v}
	case []AnswerOption:
		return v
	case map[string]any:
		return []AnswerOption{optionFromMap(v)}
	case []any:
		var opts []AnswerOption
		for _, item := range v {
			opts = append(opts, normalizeOptions(item)...)
		}
		return opts
	default:
		return nil
	}
}

func optionFromMap(m map[string]any) AnswerOption {
	var opt AnswerOption
	if s, ok := m["value"].(string); ok {
		opt.Value = s
	}
	if s, ok := m["label"].(string); ok {
		opt.Label = s
	}
	if s, ok := m["impact"].(string); ok {
		opt.Impact = s
	}
	return opt
}

// resetEstimate drops everything collected after model selection. Answers,
// wizard cursor, configuration and the bound template all refer to the
// previous model and would be dirty data against the new one.
func (s *DraftStore) resetEstimate() {
	s.draft.Answers = map[string]any{}
	s.draft.CurrentStep = 1
	s.draft.Storage = ""
	s.draft.Condition = ""
	s.draft.EstimatedPrice = nil
	s.draft.Bonus = nil
	s.draft.BasePrice = nil
	s.draft.TemplateID = nil
	s.draft.SelectedStorage = ""
	s.draft.SelectedColor = ""
	s.draft.SelectedRAM = ""
	s.draft.SelectedVersion = ""
}

// persist snapshots the full draft. Failures are swallowed: the in-memory
// draft stays authoritative even when the storage medium is unavailable.
func (s *DraftStore) persist() {
	if s.snapshots == nil {
		return
	}
	data, err := json.Marshal(s.draft)
	if err != nil {
		return
	}
	_ = s.snapshots.Save(s.key, data)
}
