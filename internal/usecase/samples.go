package usecase

import (
	"context"

	"github.com/dhruv-ramu/FragmentFusion/internal/domain"
	"github.com/dhruv-ramu/FragmentFusion/internal/ports"
)

// GenerateSamples builds the sample list consumed by the workflow.
type GenerateSamples struct {
	logged
	store    ports.SampleStore
	workflow ports.WorkflowConfigWriter
	watcher  ports.DirWatcher
}

func NewGenerateSamples(store ports.SampleStore, workflow ports.WorkflowConfigWriter, watcher ports.DirWatcher) *GenerateSamples {
	return &GenerateSamples{store: store, workflow: workflow, watcher: watcher}
}

var _ ports.SampleScanner = (*GenerateSamples)(nil)

// Scan discovers samples without writing anything.
func (uc *GenerateSamples) Scan(req domain.SamplesRequest) (domain.SampleList, error) {
	return uc.store.Scan(req.Dir, req.Suffix)
}

// Execute scans req.Dir and writes the sample list, then the workflow config
// when requested.
func (uc *GenerateSamples) Execute(req domain.SamplesRequest) (domain.SampleList, error) {
	list, err := uc.store.Scan(req.Dir, req.Suffix)
	if err != nil {
		return list, err
	}
	if err := uc.store.WriteList(req.Out, list); err != nil {
		return list, err
	}
	if req.WorkflowConfig != "" && uc.workflow != nil {
		if err := uc.workflow.SetSamples(req.WorkflowConfig, list.Names()); err != nil {
			return list, err
		}
	}

	uc.logger().Info("samples.generated",
		"dir", req.Dir,
		"out", req.Out,
		"count", len(list.Samples),
		"workflow_config", req.WorkflowConfig,
	)
	return list, nil
}

// Watch generates once, then again after every change below req.Dir until ctx
// ends. onUpdate sees every regeneration; a failed regeneration does not stop
// the watch.
func (uc *GenerateSamples) Watch(ctx context.Context, req domain.SamplesRequest, onUpdate func(domain.SampleList, error)) error {
	list, err := uc.Execute(req)
	if err != nil {
		return err
	}
	if onUpdate != nil {
		onUpdate(list, nil)
	}

	return uc.watcher.Watch(ctx, req.Dir, func() error {
		list, err := uc.Execute(req)
		if err != nil {
			uc.logger().Warn("samples.watch.regenerate_failed", "dir", req.Dir, "error", err)
		}
		if onUpdate != nil {
			onUpdate(list, err)
		}
		return nil
	})
}
