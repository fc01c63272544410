package pipeline

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/leonardotrapani/lyricsync/internal/audio"
	"github.com/leonardotrapani/lyricsync/internal/lyrics"
	"github.com/leonardotrapani/lyricsync/internal/media"
	"github.com/leonardotrapani/lyricsync/internal/metrics"
	"github.com/leonardotrapani/lyricsync/internal/segment"
	"github.com/leonardotrapani/lyricsync/internal/transcriber"
)

// Converter decodes any supported media file into PCM WAV
type Converter interface {
	Convert(ctx context.Context, src, dst string, opts media.ConvertOptions) error
}

// Isolator separates the vocal stem and returns its path
type Isolator interface {
	Isolate(ctx context.Context, src, outDir string) (string, error)
}

// Recognizer turns one WAV clip into a tagged result
type Recognizer interface {
	Transcribe(ctx context.Context, wav []byte) transcriber.Result
}

// Refiner rewrites a single lyric line, e.g. llm.Adapter
type Refiner interface {
	Process(ctx context.Context, text string) (string, error)
}

type Deps struct {
	Converter  Converter
	Isolator   Isolator
	Recognizer Recognizer
	Refiner    Refiner // optional
}

type Options struct {
	TempDir               string // empty = os.TempDir()
	Window                int
	Policy                lyrics.Policy
	Decode                media.ConvertOptions
	RecognitionSampleRate int // 0 = transcribe the isolated stem as is
	Retries               int
	RetryBackoff          time.Duration
	RefineTimeout         time.Duration
}

// Request is one song to turn into a document
type Request struct {
	ID     string // empty = generated
	Source string
	Output string
}

// Report describes what a run did. It is returned on failure too.
type Report struct {
	RequestID  string
	OutputPath string // set once a document, full or partial, is on disk
	Duration   float64
	Segments   int
	Lines      int
	Failed     []int
	States     []State
	Elapsed    time.Duration
}

// State returns the last state the run reached
func (r *Report) State() State {
	if len(r.States) == 0 {
		return ""
	}
	return r.States[len(r.States)-1]
}

type Pipeline struct {
	deps Deps
	opts Options
}

func New(deps Deps, opts Options) (*Pipeline, error) {
	if deps.Converter == nil || deps.Isolator == nil || deps.Recognizer == nil {
		return nil, fmt.Errorf("pipeline: converter, isolator and recognizer are required")
	}
	if opts.Policy == "" {
		opts.Policy = lyrics.PolicyTolerant
	}
	if opts.Retries < 0 {
		opts.Retries = 0
	}
	return &Pipeline{deps: deps, opts: opts}, nil
}

// Options returns the options the pipeline was built with
func (p *Pipeline) Options() Options {
	return p.opts
}

type run struct {
	p      *Pipeline
	req    Request
	report *Report
	tag    string
}

// Run executes every stage for req. The workspace is removed before Run
// returns whatever the outcome.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Report, error) {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	r := &run{
		p:      p,
		req:    req,
		report: &Report{RequestID: req.ID},
		tag:    shortID(req.ID),
	}

	done := metrics.TrackInflight()
	defer done()

	started := time.Now()
	err := r.execute(ctx)
	r.report.Elapsed = time.Since(started)

	if err != nil {
		r.enter(Failed)
		var se *StageError
		if errors.As(err, &se) {
			metrics.RecordStageFailure(string(se.Stage), KindName(se))
		}
		if r.report.OutputPath != "" {
			metrics.RecordRequest("partial")
		} else {
			metrics.RecordRequest("error")
		}
		log.Printf("Pipeline[%s]: failed after %s: %v", r.tag, r.report.Elapsed.Round(time.Millisecond), err)
		return r.report, err
	}

	metrics.RecordRequest("success")
	log.Printf("Pipeline[%s]: done in %s, %d lines written to %s", r.tag, r.report.Elapsed.Round(time.Millisecond), r.report.Lines, r.report.OutputPath)
	return r.report, nil
}

func (r *run) execute(ctx context.Context) (err error) {
	r.enter(Received)
	log.Printf("Pipeline[%s]: received %s", r.tag, r.req.Source)

	if strings.TrimSpace(r.req.Source) == "" || strings.TrimSpace(r.req.Output) == "" {
		return &StageError{Stage: StageConvert, Kind: ErrInvalidRequest, Err: errors.New("source and output are required")}
	}
	if _, err := os.Stat(r.req.Source); err != nil {
		kind := ErrSourceNotFound
		if !errors.Is(err, os.ErrNotExist) {
			kind = ErrInvalidRequest
		}
		return &StageError{Stage: StageConvert, Kind: kind, Err: err}
	}

	workspace, err := r.makeWorkspace()
	if err != nil {
		return &StageError{Stage: StageConvert, Kind: ErrPersistence, Err: err}
	}
	defer func() { r.cleanup(workspace, err == nil) }()

	decoded := filepath.Join(workspace, "decoded.wav")
	if err := r.stage(ctx, StageConvert, ErrConversion, func(ctx context.Context) error {
		return r.p.deps.Converter.Convert(ctx, r.req.Source, decoded, r.p.opts.Decode)
	}); err != nil {
		return err
	}
	r.enter(Converted)

	vocals, err := r.isolate(ctx, workspace, decoded)
	if err != nil {
		return err
	}
	r.enter(VocalsIsolated)

	asset, err := audio.Probe(vocals)
	if err != nil {
		return &StageError{Stage: StageSegment, Kind: ErrUnreadableAudio, Err: err}
	}
	defer asset.Release()

	plan, err := segment.Plan(asset.Duration, r.p.opts.Window)
	if err != nil {
		return &StageError{Stage: StageSegment, Kind: ErrInvalidWindow, Err: err}
	}
	r.report.Duration = asset.Duration
	r.report.Segments = segment.Count(asset.Duration, r.p.opts.Window)
	r.enter(Segmented)
	log.Printf("Pipeline[%s]: %.2fs of vocals in %d segments of %ds", r.tag, asset.Duration, r.report.Segments, r.p.opts.Window)

	r.enter(Transcribing)
	entries, err := r.transcribe(ctx, asset, plan)
	if err != nil {
		return err
	}

	doc, stitchErr := lyrics.Stitch(entries, r.p.opts.Policy)
	r.report.Failed = doc.Gaps
	if r.p.deps.Refiner != nil && stitchErr == nil {
		r.refine(ctx, &doc)
	}
	r.enter(Stitched)

	if err := r.stage(ctx, StagePersist, ErrPersistence, func(context.Context) error {
		return lyrics.Save(r.req.Output, doc)
	}); err != nil {
		return err
	}
	r.report.OutputPath = r.req.Output
	r.report.Lines = len(doc.Lines)
	r.enter(Persisted)

	if stitchErr != nil {
		log.Printf("Pipeline[%s]: partial document with %d lines kept at %s", r.tag, len(doc.Lines), r.req.Output)
		return &StageError{Stage: StageTranscribe, Kind: ErrRecognitionService, Err: stitchErr}
	}
	return nil
}

// stage runs fn, times it and turns its error into a StageError. A context
// error wins over whatever fn returned.
func (r *run) stage(ctx context.Context, stage Stage, kind error, fn func(context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return &StageError{Stage: stage, Kind: err, Err: err}
	}

	started := time.Now()
	err := fn(ctx)
	metrics.RecordStageDuration(string(stage), time.Since(started).Seconds())

	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return &StageError{Stage: stage, Kind: ctxErr, Err: err}
	}
	return &StageError{Stage: stage, Kind: kind, Err: err}
}

func (r *run) isolate(ctx context.Context, workspace, decoded string) (string, error) {
	var stem string
	if err := r.stage(ctx, StageIsolate, ErrIsolation, func(ctx context.Context) error {
		var err error
		stem, err = r.p.deps.Isolator.Isolate(ctx, decoded, filepath.Join(workspace, "stems"))
		return err
	}); err != nil {
		return "", err
	}

	if r.p.opts.RecognitionSampleRate <= 0 {
		return stem, nil
	}

	vocals := filepath.Join(workspace, "vocals.wav")
	opts := media.ConvertOptions{SampleRate: r.p.opts.RecognitionSampleRate, Channels: 1}
	if err := r.stage(ctx, StageIsolate, ErrConversion, func(ctx context.Context) error {
		return r.p.deps.Converter.Convert(ctx, stem, vocals, opts)
	}); err != nil {
		return "", err
	}
	return vocals, nil
}

func (r *run) transcribe(ctx context.Context, asset *audio.Asset, plan iter.Seq[segment.Segment]) ([]lyrics.Entry, error) {
	started := time.Now()
	defer func() {
		metrics.RecordStageDuration(string(StageTranscribe), time.Since(started).Seconds())
	}()

	entries := make([]lyrics.Entry, 0, r.report.Segments)
	for seg := range plan {
		if err := ctx.Err(); err != nil {
			return nil, &StageError{Stage: StageTranscribe, Kind: err, Err: err}
		}

		clip, err := asset.ReadRange(seg.Start, seg.Length)
		if err != nil {
			return nil, &StageError{Stage: StageTranscribe, Kind: ErrUnreadableAudio, Err: err}
		}

		res := r.recognize(ctx, seg, clip)
		if err := ctx.Err(); err != nil {
			return nil, &StageError{Stage: StageTranscribe, Kind: err, Err: err}
		}
		metrics.RecordSegment(res.Outcome.String())

		switch res.Outcome {
		case transcriber.OutcomeUnrecoverable:
			log.Printf("Pipeline[%s]: segment %d at %s failed: %v", r.tag, seg.Index, lyrics.FormatTimestamp(lyrics.TimestampFor(seg.Start)), res.Err)
		case transcriber.OutcomeEmpty:
			log.Printf("Pipeline[%s]: segment %d has no speech", r.tag, seg.Index)
		}

		entries = append(entries, lyrics.Entry{Segment: seg, Result: res})
		if res.Outcome == transcriber.OutcomeUnrecoverable && r.p.opts.Policy == lyrics.PolicyFailFast {
			break
		}
	}
	return entries, nil
}

// recognize retries unrecoverable results with a linear backoff
func (r *run) recognize(ctx context.Context, seg segment.Segment, clip []byte) transcriber.Result {
	res := r.p.deps.Recognizer.Transcribe(ctx, clip)

	for attempt := 1; attempt <= r.p.opts.Retries && res.Outcome == transcriber.OutcomeUnrecoverable; attempt++ {
		wait := r.p.opts.RetryBackoff * time.Duration(attempt)
		log.Printf("Pipeline[%s]: retrying segment %d in %s (attempt %d/%d)", r.tag, seg.Index, wait, attempt, r.p.opts.Retries)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return res
		case <-timer.C:
		}

		res = r.p.deps.Recognizer.Transcribe(ctx, clip)
	}
	return res
}

// refine passes each non empty line through the refiner. Failures keep the
// original text.
func (r *run) refine(ctx context.Context, doc *lyrics.Document) {
	for i, line := range doc.Lines {
		if line.Text == "" {
			continue
		}

		callCtx, cancel := ctx, context.CancelFunc(func() {})
		if r.p.opts.RefineTimeout > 0 {
			callCtx, cancel = context.WithTimeout(ctx, r.p.opts.RefineTimeout)
		}
		out, err := r.p.deps.Refiner.Process(callCtx, line.Text)
		cancel()

		out = strings.TrimSpace(out)
		switch {
		case err != nil:
			log.Printf("Pipeline[%s]: refine line %d failed, keeping original: %v", r.tag, i, err)
		case out == "" || strings.ContainsAny(out, "\r\n"):
			log.Printf("Pipeline[%s]: refine line %d returned unusable text, keeping original", r.tag, i)
		default:
			doc.Lines[i].Text = out
		}
	}
}

func (r *run) makeWorkspace() (string, error) {
	root := r.p.opts.TempDir
	if root == "" {
		root = os.TempDir()
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return "", fmt.Errorf("create temp root: %w", err)
	}

	dir := filepath.Join(root, "lyricsync-"+r.req.ID)
	if err := os.Mkdir(dir, 0o700); err != nil {
		return "", fmt.Errorf("create workspace: %w", err)
	}
	return dir, nil
}

func (r *run) cleanup(workspace string, succeeded bool) {
	if err := os.RemoveAll(workspace); err != nil {
		log.Printf("Pipeline[%s]: failed to remove workspace %s: %v", r.tag, workspace, err)
		metrics.RecordStageFailure(string(StageCleanup), "internal")
		return
	}
	if succeeded {
		r.enter(CleanedUp)
	}
}

func (r *run) enter(s State) {
	r.report.States = append(r.report.States, s)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
