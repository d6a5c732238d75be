package render

import "time"

const (
	WorkflowName     = "lesson_render"
	ActivitySubmit   = "lesson_render_submit"
	ActivityCheck    = "lesson_render_check"
	ActivityFinalize = "lesson_render_finalize"
)

type CheckResult struct {
	VideoID  string `json:"video_id"`
	Status   string `json:"status"`
	VideoURL string `json:"video_url,omitempty"`
	Error    string `json:"error,omitempty"`
}

type FinalizeInput struct {
	VariationKey string `json:"variation_key"`
	VideoURL     string `json:"video_url"`
}

type Result struct {
	VariationKey string `json:"variation_key"`
	VideoID      string `json:"video_id"`
	VideoURL     string `json:"video_url"`
}

// Options are workflow tunables. Zero values use the defaults.
type Options struct {
	PollInterval time.Duration `json:"poll_interval"`
	PollBudget   time.Duration `json:"poll_budget"`
}
