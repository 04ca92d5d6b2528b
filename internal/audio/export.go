package audio

import (
	"context"
	"fmt"
	"os"
	"strings"

	"podcastgen/internal/domain"
	"podcastgen/internal/infra"
)

// MasterStore is the subset of the output store the exporter needs.
type MasterStore interface {
	Create(ctx context.Context, key string) (*os.File, string, error)
	Path(key string) (string, error)
	Remove(key string) error
	URL(key string) string
}

// Exporter persists an assembled segment as the job's master file.
type Exporter struct {
	store      MasterStore
	format     string
	transcoder *Transcoder
	logger     *infra.Logger
}

// NewExporter writes WAV masters, transcoding to MP3 when format is "mp3".
func NewExporter(store MasterStore, format string, transcoder *Transcoder, logger *infra.Logger) *Exporter {
	format = strings.ToLower(strings.TrimSpace(format))
	if format != string(ContainerMP3) {
		format = string(ContainerWAV)
	}
	if logger == nil {
		logger = infra.NopLogger()
	}
	return &Exporter{store: store, format: format, transcoder: transcoder, logger: logger}
}

// Export writes seg under the job directory. A failed MP3 transcode keeps the
// WAV master instead of failing the job.
func (x *Exporter) Export(ctx context.Context, jobID string, seg Segment) (domain.PodcastMaster, error) {
	wavKey := domain.MasterKey(jobID, string(ContainerWAV))
	f, key, err := x.store.Create(ctx, wavKey)
	if err != nil {
		return domain.PodcastMaster{}, fmt.Errorf("audio: create master: %w", err)
	}
	if err := EncodeWAV(f, seg); err != nil {
		_ = f.Close()
		return domain.PodcastMaster{}, err
	}
	if err := f.Close(); err != nil {
		return domain.PodcastMaster{}, fmt.Errorf("audio: close master: %w", err)
	}

	master := domain.PodcastMaster{
		JobID:      jobID,
		StorageKey: key,
		URL:        x.store.URL(key),
		Format:     string(ContainerWAV),
		Duration:   seg.Duration(),
	}
	if x.format != string(ContainerMP3) {
		return master, nil
	}

	log := x.logger.With().Str("stage", "assembly").Str("job_id", jobID).Logger()
	mp3Key := domain.MasterKey(jobID, string(ContainerMP3))
	src, err := x.store.Path(key)
	if err != nil {
		return master, nil
	}
	dst, err := x.store.Path(mp3Key)
	if err != nil {
		return master, nil
	}
	if err := x.transcoder.ToMP3(ctx, src, dst); err != nil {
		log.Warn().Err(err).Msg("mp3 transcode failed, keeping wav master")
		_ = x.store.Remove(mp3Key)
		return master, nil
	}
	if err := x.store.Remove(key); err != nil {
		log.Warn().Err(err).Msg("remove intermediate wav failed")
	}
	master.StorageKey = mp3Key
	master.URL = x.store.URL(mp3Key)
	master.Format = string(ContainerMP3)
	return master, nil
}

// Format reports the requested master format.
func (x *Exporter) Format() string {
	return x.format
}
