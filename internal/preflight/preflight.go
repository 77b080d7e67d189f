package preflight

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"

	"pvrsync/internal/config"
	"pvrsync/internal/dvr"
	"pvrsync/internal/sysinfo"
)

// Result reports the outcome of a single readiness check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// Deps carries the collaborators RunAll needs so tests can substitute them.
type Deps struct {
	DVR     dvr.Client
	Service sysinfo.ServiceRunner
}

// RunAll executes every applicable readiness check for the given config.
// Checks never abort one another; the caller gets the full picture.
func RunAll(ctx context.Context, cfg *config.Config, deps Deps) []Result {
	if cfg == nil {
		return nil
	}
	if deps.DVR == nil {
		deps.DVR = dvr.NewFromConfig(cfg)
	}
	if deps.Service == nil {
		deps.Service = sysinfo.SystemdRunner{}
	}

	results := []Result{
		CheckChecksum(),
		CheckDirectoryAccess("Schedule directory", cfg.Paths.DVRLogDir),
		CheckShare(ctx, cfg),
		CheckSchedule(cfg, time.Now()),
		CheckFreeSpace(cfg),
	}
	if deps.DVR.Enabled() {
		results = append(results, CheckTVHeadend(ctx, deps.DVR))
	}
	results = append(results, CheckService(ctx, deps.Service, cfg.TVHeadend.ServiceName))
	return results
}

// CheckFreeSpace compares free space under the schedule directory's
// filesystem against the configured minimum.
func CheckFreeSpace(cfg *config.Config) Result {
	const name = "Free disk space"
	free, err := sysinfo.FreeBytes(cfg.Paths.DVRLogDir)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("statfs failed (%v)", err)}
	}
	min := cfg.MinFreeBytes()
	detail := fmt.Sprintf("%s free, minimum %s", humanize.IBytes(free), humanize.IBytes(min))
	if free < min {
		return Result{Name: name, Detail: detail}
	}
	return Result{Name: name, Passed: true, Detail: detail}
}

// CheckTVHeadend verifies API connectivity and reads the server's view of
// recording disk usage.
func CheckTVHeadend(ctx context.Context, client dvr.Client) Result {
	const name = "TVHeadend API"

	checkCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	info, err := client.Ping(checkCtx)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("unreachable (%v)", err)}
	}
	detail := fmt.Sprintf("%s %s", info.Name, info.Version)
	if space, err := client.DiskSpace(checkCtx); err == nil && space.TotalBytes > 0 {
		detail = fmt.Sprintf("%s, %s free of %s",
			detail, humanize.IBytes(uint64(space.FreeBytes)), humanize.IBytes(uint64(space.TotalBytes)))
	}
	return Result{Name: name, Passed: true, Detail: detail}
}

// CheckService reports whether the DVR system service is active.
func CheckService(ctx context.Context, runner sysinfo.ServiceRunner, service string) Result {
	name := fmt.Sprintf("Service %s", service)
	active, err := runner.IsActive(ctx, service)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("query failed (%v)", err)}
	}
	if !active {
		return Result{Name: name, Detail: "not active"}
	}
	return Result{Name: name, Passed: true, Detail: "active"}
}
