package lesson

// RenderJob asks the avatar-video pipeline to produce media for a variation.
type RenderJob struct {
	JobID        string          `json:"job_id"`
	VariationKey string          `json:"variation_key"`
	LessonID     string          `json:"lesson_id"`
	Scripts      []ScriptSegment `json:"scripts"`
	Age          int             `json:"age"`
	Tone         Tone            `json:"tone"`
	Language     string          `json:"language"`
}

type RenderReceipt struct {
	Accepted bool   `json:"accepted"`
	JobID    string `json:"job_id"`
}

func NewRenderJob(v *LessonVariation) (RenderJob, error) {
	k, err := ParseKey(v.Key)
	if err != nil {
		return RenderJob{}, err
	}
	return RenderJob{
		VariationKey: v.Key,
		LessonID:     v.LessonID,
		Scripts:      v.Scripts,
		Age:          k.Age,
		Tone:         k.Tone,
		Language:     k.Language,
	}, nil
}
