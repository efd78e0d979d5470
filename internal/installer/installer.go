// Package installer orchestrates a MeldMC install: it plans the paths for a
// selected version, creates the version directory, obtains the client
// manifest via the manifest package and merges the launcher profile via the
// profile package. Each failure is terminal for the attempt and is returned
// as a *StepError naming the stage and the cause.
package installer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/coosanta/meldmc-installer/internal/catalog"
	"github.com/coosanta/meldmc-installer/internal/fsutil"
	"github.com/coosanta/meldmc-installer/internal/logger"
	"github.com/coosanta/meldmc-installer/internal/manifest"
	"github.com/coosanta/meldmc-installer/internal/platform"
	"github.com/coosanta/meldmc-installer/internal/profile"
	"github.com/coosanta/meldmc-installer/internal/repo"
)

// Milestone marks a completed phase, for progress display only.
type Milestone string

const (
	MilestoneDirectoryCreated Milestone = "directory-created"
	MilestoneManifestFetched  Milestone = "manifest-fetched"
	MilestoneProfileMerged    Milestone = "profile-merged"
	MilestoneDone             Milestone = "done"
)

// Request is one install attempt.
type Request struct {
	MinecraftDir string
	Version      catalog.Entry
	Platform     platform.Tag
}

// Result is returned after a successful Install.
type Result struct {
	Plan           Plan
	ManifestSource manifest.Source
	// ManifestErr is why the remote manifest was not used, if it was not.
	ManifestErr error
	Profile     *profile.Outcome
	Duration    time.Duration
}

// Degraded reports whether the install used anything but the real manifest.
func (r *Result) Degraded() bool { return r.ManifestSource != manifest.SourceRemote }

// ProfileRecovered reports whether an unreadable profile store was reset.
func (r *Result) ProfileRecovered() bool { return r.Profile != nil && r.Profile.Recovered }

// Installer runs install attempts. Callers serialize Install calls against
// the same Minecraft directory; nothing here locks files.
type Installer struct {
	Fetcher manifest.Fetcher
	Layout  catalog.Layout
	Log     *logger.Logger
	// AllowFallback permits a synthesized manifest when the download fails.
	AllowFallback bool
	// ManifestOverride is a local manifest tried after a failed download.
	ManifestOverride string
	// Icon is the launcher icon for new profiles; empty means the default.
	Icon string

	OnStep      func(step, total int, label string) // called at each stage start
	OnMilestone func(m Milestone)                   // called as phases complete
}

const totalSteps = 4

// Install runs the state machine for req:
//
//	validate → create-version-dir → fetch-manifest → write-manifest → merge-profile
//
// Validation failures touch nothing on disk. No stage is retried.
func (ins *Installer) Install(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()

	if strings.TrimSpace(req.MinecraftDir) == "" {
		return nil, userInput("minecraft directory not specified")
	}
	if req.Version.ID == "" {
		return nil, userInput("version not selected")
	}
	if !req.Platform.Valid() {
		return nil, userInput("unknown platform %q", req.Platform)
	}

	plan := NewPlan(ins.Layout, req.MinecraftDir, req.Version, req.Platform)
	log := ins.log()
	log.Printf("Installing MeldMC %s (%s, %s) into %s", plan.Version.ID, plan.Version.Channel, plan.Platform, plan.MinecraftDir)

	ins.step(1, "Creating version directory")
	if err := os.MkdirAll(plan.VersionDir, 0o755); err != nil {
		return nil, &StepError{Stage: StageCreateDir, Kind: ErrFilesystem, Path: plan.VersionDir, Err: err}
	}
	ins.milestone(MilestoneDirectoryCreated)

	ins.step(2, "Downloading client configuration")
	m, err := manifest.Load(ctx, manifest.LoadOptions{
		RemoteURL:     plan.ManifestURL,
		Fetcher:       ins.Fetcher,
		LocalOverride: ins.ManifestOverride,
		AllowFallback: ins.AllowFallback,
		VersionID:     plan.VersionID,
	})
	if err != nil {
		return nil, fetchError(plan, ins.ManifestOverride, err)
	}
	if m.Source != manifest.SourceRemote {
		log.Warnf("Client manifest not downloaded (%v); using %s manifest", m.RemoteErr, m.Source)
	}
	if id := m.ID(); id != plan.VersionID {
		log.Warnf("Client manifest id is %q, expected %q", id, plan.VersionID)
	}
	ins.milestone(MilestoneManifestFetched)

	ins.step(3, "Saving client configuration")
	if err := fsutil.WriteFileAtomic(plan.ManifestPath, m.Data, 0o644); err != nil {
		return nil, &StepError{Stage: StageWriteManifest, Kind: ErrFilesystem, Path: plan.ManifestPath, Err: err}
	}
	log.Printf("  wrote %s", plan.ManifestPath)

	ins.step(4, "Creating launcher profile")
	outcome, err := profile.Merge(plan.ProfilesPath, profile.NewEntry(plan.Version.ID, ins.Icon))
	if err != nil {
		return nil, &StepError{Stage: StageMergeProfile, Kind: ErrProfile, Path: plan.ProfilesPath, Err: err}
	}
	if outcome.Recovered {
		log.Warnf("Existing %s could not be read and was reset: %v", plan.ProfilesPath, outcome.RecoverCause)
	}
	log.Printf("  profile %q -> %s", outcome.Key, plan.VersionID)
	ins.milestone(MilestoneProfileMerged)

	ins.milestone(MilestoneDone)
	log.Printf("Installed MeldMC %s", plan.Version.ID)

	return &Result{
		Plan:           plan,
		ManifestSource: m.Source,
		ManifestErr:    m.RemoteErr,
		Profile:        outcome,
		Duration:       time.Since(start),
	}, nil
}

// ── helpers ──────────────────────────────────────────────────────────────────

func fetchError(plan Plan, override string, err error) *StepError {
	se := &StepError{Stage: StageFetchManifest, Path: plan.ManifestURL, Err: err}
	switch {
	case errors.Is(err, manifest.ErrOverride):
		se.Path = override
		se.Kind = ErrFilesystem
		if errors.Is(err, manifest.ErrInvalid) {
			se.Kind = ErrUserInput
		}
	case errors.Is(err, repo.ErrNetwork):
		se.Kind = ErrNetwork
	default:
		// An unusable downloaded body is still a download failure.
		se.Kind = ErrNetwork
		se.Err = fmt.Errorf("%w: %v", repo.ErrNetwork, err)
	}
	return se
}

func (ins *Installer) log() *logger.Logger {
	if ins.Log == nil {
		return logger.NewDiscard()
	}
	return ins.Log
}

func (ins *Installer) step(n int, label string) {
	ins.log().Printf("[%d/%d] %s", n, totalSteps, label)
	if ins.OnStep != nil {
		ins.OnStep(n, totalSteps, label)
	}
}

func (ins *Installer) milestone(m Milestone) {
	if ins.OnMilestone != nil {
		ins.OnMilestone(m)
	}
}
