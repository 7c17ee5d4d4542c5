package recycle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func f64(v float64) *float64 { return &v }

func TestResolveStage(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name  string
		order *OrderView
		want  Stage
	}{
		{
			name:  "nil order defaults to pending",
			order: nil,
			want:  StagePending,
		},
		{
			name:  "empty status defaults to pending",
			order: &OrderView{},
			want:  StagePending,
		},
		{
			name:  "cancelled wins over everything",
			order: &OrderView{Status: "cancelled", PaymentStatus: "paid", PriceDispute: true},
			want:  StageCancelled,
		},
		{
			name:  "payment_status paid wins over status",
			order: &OrderView{Status: "received", PaymentStatus: "paid"},
			want:  StagePaid,
		},
		{
			name:  "paid_at alone counts as paid",
			order: &OrderView{Status: "completed", PaidAt: &now},
			want:  StagePaid,
		},
		{
			name:  "literal shipped",
			order: &OrderView{Status: "shipped"},
			want:  StageShipped,
		},
		{
			name:  "literal received ignores price flags",
			order: &OrderView{Status: "received", FinalPrice: f64(1200)},
			want:  StageReceived,
		},
		{
			name:  "dispute forces inspected",
			order: &OrderView{Status: "completed", PriceDispute: true},
			want:  StageInspected,
		},
		{
			name:  "unconfirmed final price forces inspected",
			order: &OrderView{Status: "completed", FinalPrice: f64(1200)},
			want:  StageInspected,
		},
		{
			name:  "confirmed final price keeps completed",
			order: &OrderView{Status: "completed", FinalPrice: f64(1200), FinalPriceConfirmed: true},
			want:  StageCompleted,
		},
		{
			name:  "literal inspected without flags",
			order: &OrderView{Status: "inspected", FinalPrice: f64(900), FinalPriceConfirmed: true},
			want:  StageInspected,
		},
		{
			name:  "unknown status falls back to pending",
			order: &OrderView{Status: "quoted"},
			want:  StagePending,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveStage(tt.order))
		})
	}
}

func TestResolveStatusTag(t *testing.T) {
	tests := []struct {
		name         string
		order        *OrderView
		wantText     string
		wantSeverity Severity
	}{
		{
			name:         "paid",
			order:        &OrderView{Status: "completed", PaymentStatus: "paid"},
			wantText:     "已打款",
			wantSeverity: SeveritySuccess,
		},
		{
			name:         "cancelled",
			order:        &OrderView{Status: "cancelled"},
			wantText:     "已取消",
			wantSeverity: SeverityDanger,
		},
		{
			name:         "dispute in progress",
			order:        &OrderView{Status: "inspected", PriceDispute: true},
			wantText:     "价格异议处理中",
			wantSeverity: SeverityWarning,
		},
		{
			name:         "awaiting price confirmation",
			order:        &OrderView{Status: "inspected", FinalPrice: f64(1200)},
			wantText:     "待确认价格",
			wantSeverity: SeverityWarning,
		},
		{
			name:         "confirmed but unpaid means awaiting payout",
			order:        &OrderView{Status: "completed", FinalPrice: f64(1200), FinalPriceConfirmed: true},
			wantText:     "待打款",
			wantSeverity: SeverityWarning,
		},
		{
			name:         "plain pending",
			order:        &OrderView{Status: "pending"},
			wantText:     "待寄出",
			wantSeverity: SeverityInfo,
		},
		{
			name:         "plain shipped",
			order:        &OrderView{Status: "shipped"},
			wantText:     "已寄出",
			wantSeverity: SeverityPrimary,
		},
		{
			name:         "unknown status echoes the raw value",
			order:        &OrderView{Status: "quoted"},
			wantText:     "quoted",
			wantSeverity: SeverityInfo,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tag := ResolveStatusTag(tt.order)
			assert.Equal(t, tt.wantText, tag.Text)
			assert.Equal(t, tt.wantSeverity, tag.Severity)
		})
	}
}

func TestProcessSteps(t *testing.T) {
	t.Run("backbone is always six steps", func(t *testing.T) {
		steps := ProcessSteps(nil)
		assert.Len(t, steps, 6)
		for i, step := range steps {
			assert.Equal(t, StepStages[i], step.Stage)
		}
		assert.Equal(t, "已检测", steps[3].Label)
		assert.Equal(t, "已完成", steps[4].Label)
	})

	t.Run("dispute relabels inspected", func(t *testing.T) {
		steps := ProcessSteps(&OrderView{Status: "inspected", PriceDispute: true})
		assert.Equal(t, "价格异议", steps[3].Label)
	})

	t.Run("unconfirmed price relabels inspected", func(t *testing.T) {
		steps := ProcessSteps(&OrderView{Status: "inspected", FinalPrice: f64(800)})
		assert.Equal(t, "待确认价格", steps[3].Label)
	})

	t.Run("confirmed completed relabels to awaiting payout", func(t *testing.T) {
		steps := ProcessSteps(&OrderView{Status: "completed", FinalPrice: f64(800), FinalPriceConfirmed: true})
		assert.Equal(t, "待打款", steps[4].Label)
	})
}

func TestStepStates(t *testing.T) {
	t.Run("cancelled keeps only the first step relevant", func(t *testing.T) {
		order := &OrderView{Status: "cancelled"}
		assert.Equal(t, StepCompleted, ResolveStepState(order, StagePending))
		for _, step := range StepStages[1:] {
			assert.Equal(t, StepPending, ResolveStepState(order, step))
		}
	})

	t.Run("received order", func(t *testing.T) {
		order := &OrderView{Status: "received"}
		assert.Equal(t, StepCompleted, ResolveStepState(order, StagePending))
		assert.Equal(t, StepCompleted, ResolveStepState(order, StageShipped))
		assert.Equal(t, StepActive, ResolveStepState(order, StageReceived))
		assert.Equal(t, StepPending, ResolveStepState(order, StageInspected))
		assert.Equal(t, StepPending, ResolveStepState(order, StagePaid))
	})

	t.Run("paid order completes every earlier step", func(t *testing.T) {
		order := &OrderView{Status: "completed", PaymentStatus: "paid"}
		for _, step := range StepStages[:5] {
			assert.Equal(t, StepCompleted, ResolveStepState(order, step))
		}
		assert.Equal(t, StepActive, ResolveStepState(order, StagePaid))
	})

	t.Run("stage index", func(t *testing.T) {
		assert.Equal(t, 0, StageIndex(nil))
		assert.Equal(t, 0, StageIndex(&OrderView{Status: "cancelled"}))
		assert.Equal(t, 3, StageIndex(&OrderView{Status: "inspected"}))
		assert.Equal(t, 5, StageIndex(&OrderView{Status: "received", PaymentStatus: "paid"}))
	})
}
