// SPDX-FileCopyrightText: 2026 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package bench

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-logr/logr"
	utilexec "k8s.io/utils/exec"
	"k8s.io/utils/ptr"

	"github.com/ironcore-dev/board-bist/internal/api/bist"
	"github.com/ironcore-dev/board-bist/internal/probe"
)

// DefaultMountRoot is where disks under test are mounted.
const DefaultMountRoot = "/media/disk"

// medium is storage that has been resolved and can be driven through the pipeline.
type medium interface {
	device() bist.ResolvedDevice
	checkCapacity(ctx context.Context, req bist.Request) error
	// mount makes the medium writable; media without a filesystem do nothing.
	mount(ctx context.Context, s *Scope) error
	erase(ctx context.Context, s *Scope, req bist.Request) error
	// write returns nil when the write path does not measure throughput.
	write(ctx context.Context, s *Scope, req bist.Request, payload string) (*Throughput, error)
	read(ctx context.Context, s *Scope, req bist.Request) (*Throughput, error)
	verify(ctx context.Context, s *Scope, req bist.Request, payload string) error
}

// Options wires a Benchmark to the system. Zero values select the host implementations.
type Options struct {
	Exec          utilexec.Interface
	Resolver      *probe.Resolver
	MTD           *probe.MTDLister
	Mounter       Mounter
	Caches        CacheInvalidator
	MountRoot     string
	TempDir       string
	StreamTimeout time.Duration
	// DescribeDisk adds inventory data to resolved disks. Lookup failures are only logged.
	DescribeDisk func(name string) (*bist.DiskInfo, error)
}

// Benchmark runs storage test cases one at a time.
type Benchmark struct {
	log          logr.Logger
	resolver     *probe.Resolver
	mtd          *probe.MTDLister
	mounter      Mounter
	caches       CacheInvalidator
	capacity     *Capacity
	executor     *Executor
	mountRoot    string
	tempDir      string
	describeDisk func(name string) (*bist.DiskInfo, error)
}

func New(log logr.Logger, opts Options) *Benchmark {
	if opts.Exec == nil {
		opts.Exec = utilexec.New()
	}
	if opts.Resolver == nil {
		opts.Resolver = probe.NewHostResolver(log.WithName("resolver"))
	}
	if opts.MTD == nil {
		opts.MTD = probe.NewHostMTDLister(log.WithName("mtd"))
	}
	if opts.Mounter == nil {
		opts.Mounter = NewSystemMounter(opts.Exec)
	}
	if opts.Caches == nil {
		opts.Caches = NewCacheDropper(log.WithName("cache"))
	}
	if opts.MountRoot == "" {
		opts.MountRoot = DefaultMountRoot
	}
	if opts.TempDir == "" {
		opts.TempDir = os.TempDir()
	}
	return &Benchmark{
		log:          log,
		resolver:     opts.Resolver,
		mtd:          opts.MTD,
		mounter:      opts.Mounter,
		caches:       opts.Caches,
		capacity:     NewCapacity(log.WithName("capacity"), opts.Exec),
		executor:     NewExecutor(log.WithName("executor"), opts.Exec, opts.StreamTimeout),
		mountRoot:    opts.MountRoot,
		tempDir:      opts.TempDir,
		describeDisk: opts.DescribeDisk,
	}
}

// Run executes one test case. It always returns a result and releases everything the
// run acquired before returning, whichever stage failed.
func (b *Benchmark) Run(ctx context.Context, tc bist.TestCase) bist.Result {
	log := b.log.WithValues("label", tc.Label)
	res := bist.Result{
		Label:   tc.Label,
		Port:    tc.Port,
		Mode:    tc.Request.Mode,
		Started: time.Now(),
	}

	s := NewScope(log)
	err := b.run(ctx, log, s, tc, &res)
	if cerr := s.Close(); cerr != nil {
		log.Error(cerr, "Cleanup incomplete")
	}
	res.Duration = time.Since(res.Started)

	if err != nil {
		var se *StageError
		if errors.As(err, &se) {
			res.FailedStage = se.Stage
		}
		res.FailureReason = err.Error()
		log.Error(err, "Benchmark failed", "port", tc.Port, "stage", res.FailedStage)
		return res
	}
	res.Passed = true
	log.Info("Benchmark passed", "port", tc.Port)
	return res
}

func (b *Benchmark) run(ctx context.Context, log logr.Logger, s *Scope, tc bist.TestCase, res *bist.Result) error {
	req := tc.Request
	if err := ValidateRequest(req); err != nil {
		return err
	}

	step := func(stage bist.Stage, fn func() error) error {
		log.V(1).Info("Running stage", "stage", stage)
		if err := fn(); err != nil {
			return &StageError{Stage: stage, Err: err}
		}
		return nil
	}

	var m medium
	if err := step(bist.StageResolve, func() (err error) {
		m, err = b.open(ctx, log, tc)
		return err
	}); err != nil {
		return err
	}
	dev := m.device()
	res.Device = &dev

	if err := step(bist.StageCapacityCheck, func() error { return m.checkCapacity(ctx, req) }); err != nil {
		return err
	}
	if err := step(bist.StageMount, func() error { return m.mount(ctx, s) }); err != nil {
		return err
	}

	var payload string
	if err := step(bist.StagePrepare, func() (err error) {
		payload, err = b.prepare(log, s, req)
		return err
	}); err != nil {
		return err
	}
	if err := step(bist.StageErase, func() error { return m.erase(ctx, s, req) }); err != nil {
		return err
	}

	var written *Throughput
	if err := step(bist.StageWrite, func() (err error) {
		written, err = m.write(ctx, s, req, payload)
		return err
	}); err != nil {
		return err
	}
	if written != nil {
		log.Info("Measured write speed", "speed", written.String())
	}
	if req.Mode.ScoresWrite() {
		res.WriteMBps = mbpsOf(written)
		if err := step(bist.StageClassify, func() error {
			return Classify(dev.SpeedClass, bist.DirectionWrite, written)
		}); err != nil {
			return err
		}
	}

	if !req.Mode.Reads() {
		return nil
	}
	if req.Mode != bist.ModeIntegrity {
		if err := step(bist.StageClearCache, b.caches.Drop); err != nil {
			return err
		}
	}

	var read *Throughput
	if err := step(bist.StageRead, func() (err error) {
		read, err = m.read(ctx, s, req)
		return err
	}); err != nil {
		return err
	}
	if read != nil {
		log.Info("Measured read speed", "speed", read.String())
	}
	if err := step(bist.StageVerify, func() error { return m.verify(ctx, s, req, payload) }); err != nil {
		return err
	}
	log.Info("Read-back data matches written data")

	if req.Mode == bist.ModeIntegrity {
		return nil
	}
	res.ReadMBps = mbpsOf(read)
	return step(bist.StageClassify, func() error {
		return Classify(dev.SpeedClass, bist.DirectionRead, read)
	})
}

// open resolves the test case to a medium.
func (b *Benchmark) open(ctx context.Context, log logr.Logger, tc bist.TestCase) (medium, error) {
	switch tc.Medium {
	case bist.MediumDisk:
		dev, err := b.resolver.Resolve(tc.HardwarePath, tc.Port)
		if err != nil {
			return nil, err
		}
		if b.describeDisk != nil {
			if info, err := b.describeDisk(dev.BlockDevice); err != nil {
				log.V(1).Info("No inventory data for disk", "device", dev.BlockDevice, "error", err.Error())
			} else {
				dev.Disk = info
				log.Info("Disk under test", "vendor", info.Vendor, "model", info.Model,
					"size", humanize.IBytes(info.SizeBytes))
			}
		}
		return &diskMedium{
			dev:        dev,
			capacity:   b.capacity,
			executor:   b.executor,
			mounter:    b.mounter,
			mountPoint: mountPointFor(b.mountRoot, dev),
		}, nil
	case bist.MediumMTD:
		partition := tc.Partition
		if partition == "" {
			partition = probe.DefaultMTDPartition
		}
		dev, err := b.mtd.Resolve(ctx, partition)
		if err != nil {
			return nil, err
		}
		return &flashMedium{
			dev:      dev,
			executor: b.executor,
			tempDir:  b.tempDir,
		}, nil
	}
	return nil, fmt.Errorf("%w: unknown medium %q", ErrInvalidRequest, tc.Medium)
}

// prepare writes the payload into a private directory removed with the scope.
func (b *Benchmark) prepare(log logr.Logger, s *Scope, req bist.Request) (string, error) {
	dir, err := os.MkdirTemp(b.tempDir, "bist-")
	if err != nil {
		return "", err
	}
	s.Defer("remove payload directory", func() error { return os.RemoveAll(dir) })

	payload, err := writePayload(dir, req.PayloadSizeBytes)
	if err != nil {
		return "", err
	}
	log.V(1).Info("Prepared payload", "file", payload, "size", humanize.IBytes(uint64(req.PayloadSizeBytes)))
	return payload, nil
}

// ValidateRequest checks the payload geometry before any resource is acquired.
func ValidateRequest(req bist.Request) error {
	switch req.Mode {
	case bist.ModeWrite, bist.ModeRead, bist.ModeReadWrite, bist.ModeIntegrity:
	default:
		return fmt.Errorf("%w: unknown mode %q", ErrInvalidRequest, req.Mode)
	}
	if req.PayloadSizeBytes <= 0 {
		return fmt.Errorf("%w: payload size must be positive", ErrInvalidRequest)
	}
	if req.BlockSizeBytes <= 0 {
		return fmt.Errorf("%w: block size must be positive", ErrInvalidRequest)
	}
	if req.PayloadSizeBytes%req.BlockSizeBytes != 0 {
		return fmt.Errorf("%w: payload size %d is not a multiple of block size %d",
			ErrInvalidRequest, req.PayloadSizeBytes, req.BlockSizeBytes)
	}
	if req.OffsetBytes < 0 || req.OffsetBytes%req.BlockSizeBytes != 0 {
		return fmt.Errorf("%w: offset %d is not a non-negative multiple of block size %d",
			ErrInvalidRequest, req.OffsetBytes, req.BlockSizeBytes)
	}
	return nil
}

func mbpsOf(t *Throughput) *float64 {
	if t == nil {
		return nil
	}
	return ptr.To(t.MBps())
}
