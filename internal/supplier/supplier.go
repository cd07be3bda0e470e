package supplier

import (
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/osoriano/spinnaker-dry-run-plugins/internal/clock"
	"github.com/osoriano/spinnaker-dry-run-plugins/internal/domain"
)

// ErrInvalidInterval — publishInterval не кратен секунде или не положителен.
var ErrInvalidInterval = errors.New("publish interval must be a positive whole number of seconds")

const (
	repoName = "spinnaker-dry-run-plugins"
	repoLink = "https://github.com/osoriano/spinnaker-dry-run-plugins"
	jobName  = "dryrun artifact publisher"
	jobID    = 1908
)

// PublishedArtifact — версия артефакта, видимая потребителю.
type PublishedArtifact struct {
	Name      string         `json:"name"`
	Type      string         `json:"type"`
	Version   string         `json:"version"`
	CreatedAt time.Time      `json:"createdAt"`
	Git       GitMetadata    `json:"gitMetadata"`
	Build     BuildMetadata  `json:"buildMetadata"`
	Metadata  map[string]any `json:"metadata"`
}

// BuildMetadata — синтетические данные сборки.
type BuildMetadata struct {
	ID          int    `json:"id"`
	Number      string `json:"number"`
	UID         string `json:"uid"`
	JobName     string `json:"jobName"`
	StartedAt   string `json:"startedAt"`
	CompletedAt string `json:"completedAt"`
	Status      string `json:"status"`
}

// GitMetadata — синтетические данные коммита.
type GitMetadata struct {
	Commit        string `json:"commit"`
	Author        string `json:"author"`
	Project       string `json:"project"`
	Branch        string `json:"branch"`
	RepoName      string `json:"repoName"`
	RepoLink      string `json:"repoLink"`
	CommitMessage string `json:"commitMessage"`
}

// Supplier — источник версий артефактов.
type Supplier struct {
	interval time.Duration
	base     time.Time
	clock    clock.Clock
}

// New создаёт Supplier с базовым временем clk.Now().
func New(interval time.Duration, clk clock.Clock) (*Supplier, error) {
	if clk == nil {
		clk = clock.System{}
	}
	return NewWithBase(interval, clk.Now(), clk)
}

// NewWithBase создаёт Supplier с базовым временем from.
func NewWithBase(interval time.Duration, from time.Time, clk clock.Clock) (*Supplier, error) {
	if interval < time.Second || interval%time.Second != 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInterval, interval)
	}
	if clk == nil {
		clk = clock.System{}
	}

	// Округление вниз: при интервале 15m — 12:00, 12:15, 12:30...
	sec := from.Unix()
	step := int64(interval / time.Second)
	base := time.Unix(sec-sec%step, 0).UTC()

	return &Supplier{interval: interval, base: base, clock: clk}, nil
}

// Base возвращает время первой версии.
func (s *Supplier) Base() time.Time {
	return s.base
}

// LatestArtifacts возвращает до limit последних версий, от новой к старой.
// Версии раньше Base не существуют.
func (s *Supplier) LatestArtifacts(name string, limit int) []PublishedArtifact {
	if limit <= 0 {
		return []PublishedArtifact{}
	}

	elapsed := s.clock.Now().Sub(s.base)
	if elapsed < 0 {
		return []PublishedArtifact{}
	}

	steps := elapsed / s.interval
	at := s.base.Add(s.interval * steps)

	// Версий на сетке не больше steps+1.
	if points := int64(steps) + 1; int64(limit) > points {
		limit = int(points)
	}

	result := make([]PublishedArtifact, 0, limit)
	for !at.Before(s.base) && len(result) < limit {
		result = append(result, s.published(name, at))
		at = at.Add(-s.interval)
	}
	return result
}

// LatestArtifact возвращает последнюю версию.
func (s *Supplier) LatestArtifact(name string) (PublishedArtifact, bool) {
	latest := s.LatestArtifacts(name, 1)
	if len(latest) == 0 {
		return PublishedArtifact{}, false
	}
	return latest[0], true
}

// ArtifactByVersion восстанавливает версию по строке RFC 3339.
// Время, не кратное интервалу, не является версией: ok=false.
func (s *Supplier) ArtifactByVersion(name, version string) (PublishedArtifact, bool, error) {
	at, err := time.Parse(time.RFC3339Nano, version)
	if err != nil {
		return PublishedArtifact{}, false, fmt.Errorf("parse version %q: %w", version, err)
	}
	if at.Unix()%int64(s.interval/time.Second) != 0 {
		return PublishedArtifact{}, false, nil
	}
	return s.published(name, at.UTC()), true, nil
}

// MetadataFor строит метаданные сборки и коммита для версии с createdAt (ms).
func MetadataFor(createdAtMillis int64) (BuildMetadata, GitMetadata) {
	at := time.UnixMilli(createdAtMillis).UTC()
	commit := CommitSHA(at)
	return buildMetadata(at, commit), gitMetadata(at, commit)
}

// CommitSHA возвращает синтетический короткий sha коммита для времени.
func CommitSHA(at time.Time) string {
	sum := sha1.Sum([]byte(FormatVersion(at)))
	return hex.EncodeToString(sum[:])[:7]
}

// FormatVersion возвращает строку версии для времени.
func FormatVersion(at time.Time) string {
	return at.UTC().Format(time.RFC3339Nano)
}

func (s *Supplier) published(name string, at time.Time) PublishedArtifact {
	commit := CommitSHA(at)
	return PublishedArtifact{
		Name:      name,
		Type:      domain.ArtifactType,
		Version:   FormatVersion(at),
		CreatedAt: at,
		Git:       gitMetadata(at, commit),
		Build:     buildMetadata(at, commit),
		Metadata: map[string]any{
			"buildNumber": commit,
			"commitId":    commit,
		},
	}
}

func buildMetadata(at time.Time, commit string) BuildMetadata {
	ts := FormatVersion(at)
	return BuildMetadata{
		ID:          jobID,
		Number:      commit,
		UID:         commit,
		JobName:     jobName,
		StartedAt:   ts,
		CompletedAt: ts,
		Status:      "SUCCESS",
	}
}

func gitMetadata(at time.Time, commit string) GitMetadata {
	return GitMetadata{
		Commit:        commit,
		Author:        "keel",
		Project:       "osoriano",
		Branch:        "main",
		RepoName:      repoName,
		RepoLink:      repoLink,
		CommitMessage: fmt.Sprintf("published at %s\n\nThis is an example commit message", FormatVersion(at)),
	}
}
