package pipeline

// State is a point in the lifecycle of one request
type State string

const (
	Received       State = "received"
	Converted      State = "converted"
	VocalsIsolated State = "vocals_isolated"
	Segmented      State = "segmented"
	Transcribing   State = "transcribing"
	Stitched       State = "stitched"
	Persisted      State = "persisted"
	CleanedUp      State = "cleaned_up"
	Failed         State = "failed"
)

// Stage names the step a failure happened in
type Stage string

const (
	StageConvert    Stage = "convert"
	StageIsolate    Stage = "isolate"
	StageSegment    Stage = "segment"
	StageTranscribe Stage = "transcribe"
	StageStitch     Stage = "stitch"
	StagePersist    Stage = "persist"
	StageCleanup    Stage = "cleanup"
)
