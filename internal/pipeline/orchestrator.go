package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"podcastgen/internal/audio"
	"podcastgen/internal/domain"
	"podcastgen/internal/infra"
	"podcastgen/internal/providers/music"
	"podcastgen/internal/providers/research"
	"podcastgen/internal/providers/script"
	"podcastgen/internal/providers/voice"
)

const (
	jobIDAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	jobIDLength   = 10
)

// Assembler combines clips and an optional jingle into one segment.
type Assembler interface {
	Assemble(ctx context.Context, clips []domain.SpeechClip, jingle *domain.Jingle) (audio.Segment, audio.Report)
}

// MasterExporter persists the assembled segment.
type MasterExporter interface {
	Export(ctx context.Context, jobID string, seg audio.Segment) (domain.PodcastMaster, error)
}

// ArtifactStore persists auxiliary job files.
type ArtifactStore interface {
	Write(ctx context.Context, key string, data []byte) (string, error)
}

// Options wires every stage of the pipeline.
type Options struct {
	Researcher research.Researcher
	Scripter   script.Generator
	Voice      voice.Synthesizer
	Jingles    music.Generator
	Assembler  Assembler
	Exporter   MasterExporter
	Store      ArtifactStore
	Logger     *infra.Logger
	NewJobID   func() (string, error)
	Now        func() time.Time
	OnState    func(job domain.Job)
}

// Orchestrator runs research, script, voice, jingle and assembly in sequence.
// Stages degrade on their own; only missing input fails a job.
type Orchestrator struct {
	researcher research.Researcher
	scripter   script.Generator
	voice      voice.Synthesizer
	jingles    music.Generator
	assembler  Assembler
	exporter   MasterExporter
	store      ArtifactStore
	logger     *infra.Logger
	newJobID   func() (string, error)
	now        func() time.Time
	onState    func(job domain.Job)
}

// NewOrchestrator validates the stage wiring.
func NewOrchestrator(opts Options) (*Orchestrator, error) {
	switch {
	case opts.Researcher == nil:
		return nil, fmt.Errorf("pipeline: researcher is required")
	case opts.Scripter == nil:
		return nil, fmt.Errorf("pipeline: script generator is required")
	case opts.Voice == nil:
		return nil, fmt.Errorf("pipeline: voice synthesizer is required")
	case opts.Jingles == nil:
		return nil, fmt.Errorf("pipeline: jingle generator is required")
	case opts.Assembler == nil:
		return nil, fmt.Errorf("pipeline: assembler is required")
	case opts.Exporter == nil:
		return nil, fmt.Errorf("pipeline: exporter is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = infra.NopLogger()
	}
	newJobID := opts.NewJobID
	if newJobID == nil {
		newJobID = NewJobID
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Orchestrator{
		researcher: opts.Researcher,
		scripter:   opts.Scripter,
		voice:      opts.Voice,
		jingles:    opts.Jingles,
		assembler:  opts.Assembler,
		exporter:   opts.Exporter,
		store:      opts.Store,
		logger:     logger,
		newJobID:   newJobID,
		now:        now,
		onState:    opts.OnState,
	}, nil
}

// NewJobID returns a short lowercase alphanumeric identifier.
func NewJobID() (string, error) {
	return gonanoid.Generate(jobIDAlphabet, jobIDLength)
}

// Run executes one job to completion. The job keeps running if ctx is
// canceled; every stage bounds its own work.
func (o *Orchestrator) Run(ctx context.Context, req Request) (*Result, error) {
	topic := strings.TrimSpace(req.Topic)
	url := strings.TrimSpace(req.URL)
	if topic == "" && url == "" {
		return nil, domain.ErrMissingInput
	}
	tone, known := domain.ParseTone(req.Tone)

	id, err := o.newJobID()
	if err != nil {
		return nil, fmt.Errorf("pipeline: job id: %w", err)
	}
	ctx = context.WithoutCancel(ctx)
	job := domain.Job{ID: id, Topic: topic, URL: url, Tone: tone, CreatedAt: o.now()}
	log := o.logger.With().Str("job_id", id).Logger()
	if !known {
		log.Warn().Str("tone", req.Tone).Msg("unknown tone, using default")
	}
	o.transition(&job, domain.JobStateCreated)
	started := o.now()

	job.Brief = o.researcher.Research(ctx, topic, url)
	if job.Topic == "" {
		job.Topic = "Article from " + url
	}
	o.transition(&job, domain.JobStateResearched)

	lines := o.scripter.Generate(ctx, job.Topic, job.Brief, job.Tone)
	o.persistScript(ctx, &log, job.ID, lines)
	o.transition(&job, domain.JobStateScripted)

	clips := o.voice.Synthesize(ctx, job.ID, lines)
	o.transition(&job, domain.JobStateVoiced)

	jingle := o.jingles.Generate(ctx, job.Topic, job.ID)
	o.transition(&job, domain.JobStateScored)

	seg, report := o.assembler.Assemble(ctx, clips, jingle)
	o.transition(&job, domain.JobStateAssembled)

	result := &Result{
		JobID:         job.ID,
		Topic:         job.Topic,
		Tone:          job.Tone,
		Script:        lines,
		ResearchBrief: previewBrief(job.Brief),
		HasAudio:      report.ClipsUsed > 0,
		ClipCount:     len(clips),
		HasJingle:     report.JingleUsed,
	}
	master, err := o.exporter.Export(ctx, job.ID, seg)
	if err != nil {
		log.Error().Err(err).Msg("export master failed")
	} else {
		result.Master = &master
		result.AudioURL = &master.URL
		result.DurationMS = master.Duration.Milliseconds()
	}

	o.transition(&job, domain.JobStateDone)
	result.State = job.State
	log.Info().
		Str("topic", job.Topic).
		Int("lines", len(lines)).
		Int("clips", len(clips)).
		Bool("jingle", report.JingleUsed).
		Dur("elapsed", o.now().Sub(started)).
		Msg("job finished")
	return result, nil
}

func (o *Orchestrator) persistScript(ctx context.Context, log *infra.Logger, jobID string, lines []domain.DialogueLine) {
	if o.store == nil {
		return
	}
	data, err := json.MarshalIndent(lines, "", "  ")
	if err != nil {
		log.Warn().Err(err).Msg("encode script failed")
		return
	}
	if _, err := o.store.Write(ctx, domain.ScriptKey(jobID), data); err != nil {
		log.Warn().Err(err).Msg("store script failed")
	}
}

func (o *Orchestrator) transition(job *domain.Job, state domain.JobState) {
	job.State = state
	o.logger.Debug().Str("job_id", job.ID).Str("state", string(state)).Msg("job state")
	if o.onState != nil {
		o.onState(*job)
	}
}
