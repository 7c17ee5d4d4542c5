package recycle

import "time"

// Stage 回收订单生命周期阶段（派生值，不落库）
type Stage string

const (
	StagePending   Stage = "pending"
	StageShipped   Stage = "shipped"
	StageReceived  Stage = "received"
	StageInspected Stage = "inspected"
	StageCompleted Stage = "completed"
	StagePaid      Stage = "paid"
	StageCancelled Stage = "cancelled"
)

// StepStages 进度条固定的六步骨架（cancelled 不在其中）
var StepStages = []Stage{
	StagePending,
	StageShipped,
	StageReceived,
	StageInspected,
	StageCompleted,
	StagePaid,
}

// Severity classifies a status tag for display purposes.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityDanger  Severity = "danger"
	SeverityPrimary Severity = "primary"
)

// OrderView is the read-only slice of a recycle order the flow logic needs.
// A nil view is treated as a brand-new pending order.
type OrderView struct {
	Status              string
	FinalPrice          *float64
	FinalPriceConfirmed bool
	PriceDispute        bool
	PaymentStatus       string
	PaidAt              *time.Time
}

// StatusTag 订单状态展示标签
type StatusTag struct {
	Text     string   `json:"text"`
	Severity Severity `json:"severity"`
}

// Step 进度条中的一步
type Step struct {
	Stage Stage  `json:"stage"`
	Label string `json:"label"`
}

// StepState 单个步骤相对当前阶段的状态
type StepState string

const (
	StepPending   StepState = "pending"
	StepActive    StepState = "active"
	StepCompleted StepState = "completed"
)

func (v *OrderView) status() string {
	if v == nil || v.Status == "" {
		return string(StagePending)
	}
	return v.Status
}

func (v *OrderView) hasFinalPrice() bool {
	return v != nil && v.FinalPrice != nil
}

func (v *OrderView) paid() bool {
	if v == nil {
		return false
	}
	return v.PaymentStatus == "paid" || v.PaidAt != nil
}

// ResolveStage maps a possibly inconsistent order record to exactly one
// canonical stage. Precedence: cancelled, then payment facts, then the
// literal pre-receipt statuses, then the price/dispute sub-states.
func ResolveStage(v *OrderView) Stage {
	status := v.status()
	if status == string(StageCancelled) {
		return StageCancelled
	}

	// 打款信号优先于 status 字段本身（status 可能还没被后台更新）
	if v.paid() {
		return StagePaid
	}

	switch status {
	case string(StagePending), string(StageShipped), string(StageReceived):
		return Stage(status)
	}

	if v.PriceDispute {
		return StageInspected
	}
	if v.hasFinalPrice() && !v.FinalPriceConfirmed {
		return StageInspected
	}

	switch status {
	case string(StageInspected):
		return StageInspected
	case string(StageCompleted):
		return StageCompleted
	}

	return StagePending
}

var baseStatusTags = map[string]StatusTag{
	string(StagePending):   {Text: "待寄出", Severity: SeverityInfo},
	string(StageShipped):   {Text: "已寄出", Severity: SeverityPrimary},
	string(StageReceived):  {Text: "已收货", Severity: SeveritySuccess},
	string(StageInspected): {Text: "已检测", Severity: SeveritySuccess},
	string(StageCompleted): {Text: "已完成", Severity: SeveritySuccess},
}

// ResolveStatusTag 根据订单派生展示标签，比 ResolveStage 的粒度更细：
// 区分“待确认价格”“价格异议处理中”以及已确认未打款的“待打款”。
func ResolveStatusTag(v *OrderView) StatusTag {
	status := v.status()

	if ResolveStage(v) == StagePaid {
		return StatusTag{Text: "已打款", Severity: SeveritySuccess}
	}
	if status == string(StageCancelled) {
		return StatusTag{Text: "已取消", Severity: SeverityDanger}
	}

	if v != nil && v.PriceDispute {
		return StatusTag{Text: "价格异议处理中", Severity: SeverityWarning}
	}
	if v.hasFinalPrice() && !v.FinalPriceConfirmed &&
		(status == string(StageInspected) || status == string(StageCompleted)) {
		return StatusTag{Text: "待确认价格", Severity: SeverityWarning}
	}
	if status == string(StageCompleted) && v != nil && v.FinalPriceConfirmed {
		return StatusTag{Text: "待打款", Severity: SeverityWarning}
	}

	if tag, ok := baseStatusTags[status]; ok {
		return tag
	}
	return StatusTag{Text: status, Severity: SeverityInfo}
}

// ProcessSteps returns the fixed six-step backbone with the inspected and
// completed labels re-derived from the price/dispute flags, so progress UIs
// can show the sub-state in place of the generic label.
func ProcessSteps(v *OrderView) []Step {
	status := v.status()

	inspectedLabel := "已检测"
	if v != nil && v.PriceDispute {
		inspectedLabel = "价格异议"
	} else if v.hasFinalPrice() && !v.FinalPriceConfirmed {
		inspectedLabel = "待确认价格"
	}

	completedLabel := "已完成"
	if status == string(StageCompleted) && v != nil && v.FinalPriceConfirmed {
		completedLabel = "待打款"
	}

	return []Step{
		{Stage: StagePending, Label: "提交订单"},
		{Stage: StageShipped, Label: "已寄出"},
		{Stage: StageReceived, Label: "已收货"},
		{Stage: StageInspected, Label: inspectedLabel},
		{Stage: StageCompleted, Label: completedLabel},
		{Stage: StagePaid, Label: "已打款"},
	}
}

// StageIndex returns the backbone position of the resolved stage.
// Cancelled orders collapse to position 0.
func StageIndex(v *OrderView) int {
	stage := ResolveStage(v)
	if stage == StageCancelled {
		return 0
	}
	for i, s := range StepStages {
		if s == stage {
			return i
		}
	}
	return 0
}

func stepIndex(stage Stage) int {
	for i, s := range StepStages {
		if s == stage {
			return i
		}
	}
	return -1
}

// StepIsCompleted reports whether the given backbone step lies strictly
// before the resolved stage. The first step counts as completed as soon as
// the order exists; cancelled orders keep every later step uncompleted.
func StepIsCompleted(v *OrderView, step Stage) bool {
	if step == StagePending {
		return true
	}
	stage := ResolveStage(v)
	if stage == StageCancelled {
		return false
	}
	si, ci := stepIndex(step), stepIndex(stage)
	if si == -1 || ci == -1 {
		return false
	}
	return ci > si
}

// StepIsActive reports whether the step equals the resolved stage. For
// cancelled orders only the first step registers as active.
func StepIsActive(v *OrderView, step Stage) bool {
	stage := ResolveStage(v)
	if stage == StageCancelled {
		return step == StagePending
	}
	return stage == step
}

// ResolveStepState collapses the completed/active checks into one value.
func ResolveStepState(v *OrderView, step Stage) StepState {
	if StepIsCompleted(v, step) {
		return StepCompleted
	}
	if StepIsActive(v, step) {
		return StepActive
	}
	return StepPending
}
