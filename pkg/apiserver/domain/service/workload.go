package service

import (
	"context"
	"errors"
	"fmt"

	"k8s.io/klog/v2"

	"kubemin-workload/pkg/apiserver/config"
	"kubemin-workload/pkg/apiserver/domain/spec"
	assembler "kubemin-workload/pkg/apiserver/interfaces/api/assembler/v1"
	apisv1 "kubemin-workload/pkg/apiserver/interfaces/api/dto/v1"
	"kubemin-workload/pkg/apiserver/utils/bcode"
	"kubemin-workload/pkg/apiserver/utils/manifest"
	"kubemin-workload/pkg/apiserver/workload"
)

// WorkloadService compiles workload configs into manifests and recovers
// configs from manifests.
type WorkloadService interface {
	// Validate checks a config against the rules Compile itself does not enforce.
	Validate(ctx context.Context, kind string, cfg *spec.WorkloadConfig) *apisv1.ValidateWorkloadResponse
	// Compile renders a config. Validation is the caller's business.
	Compile(ctx context.Context, req apisv1.CompileWorkloadRequest) (*apisv1.CompileWorkloadResponse, error)
	// Decompile recovers a config from a manifest tree or YAML text.
	Decompile(ctx context.Context, req apisv1.DecompileWorkloadRequest) (*apisv1.DecompileWorkloadResponse, error)
	// ListKinds describes the supported workload kinds.
	ListKinds(ctx context.Context) *apisv1.ListKindsResponse
}

type workloadServiceImpl struct {
	compiler  *workload.Compiler
	validator *configValidator
}

// NewWorkloadService creates a WorkloadService whose compiler uses the
// configured defaults.
func NewWorkloadService(c config.Config) WorkloadService {
	return &workloadServiceImpl{
		compiler:  workload.NewCompiler(c.Compiler.Defaults()),
		validator: newConfigValidator(),
	}
}

func (w *workloadServiceImpl) Validate(ctx context.Context, kind string, cfg *spec.WorkloadConfig) *apisv1.ValidateWorkloadResponse {
	errs := w.validator.validate(resolveKind(kind, cfg), cfg)
	if len(errs) > 0 {
		klog.V(4).InfoS("workload config failed validation", "name", cfg.Name, "errors", len(errs))
	}
	return &apisv1.ValidateWorkloadResponse{Valid: len(errs) == 0, Errors: errs}
}

func (w *workloadServiceImpl) Compile(ctx context.Context, req apisv1.CompileWorkloadRequest) (*apisv1.CompileWorkloadResponse, error) {
	kind := resolveKind(req.Kind, &req.Config)
	obj, err := w.compiler.Compile(kind, &req.Config)
	if err != nil {
		return nil, err
	}
	text, err := manifest.Encode(obj.Object)
	if err != nil {
		klog.ErrorS(err, "render compiled manifest", "kind", kind, "name", obj.GetName())
		return nil, bcode.ErrServer
	}
	klog.V(4).InfoS("compiled workload", "kind", kind, "name", obj.GetName(), "namespace", obj.GetNamespace())
	return &apisv1.CompileWorkloadResponse{
		Kind:       obj.GetKind(),
		APIVersion: obj.GetAPIVersion(),
		Manifest:   obj.Object,
		YAML:       string(text),
	}, nil
}

func (w *workloadServiceImpl) Decompile(ctx context.Context, req apisv1.DecompileWorkloadRequest) (*apisv1.DecompileWorkloadResponse, error) {
	doc := req.Manifest
	if doc == nil {
		if req.YAML == "" {
			return nil, fmt.Errorf("%w: request carries neither manifest nor yaml", workload.ErrUnrecognizedManifest)
		}
		var err error
		if doc, err = manifest.DecodeOne([]byte(req.YAML)); err != nil {
			if errors.Is(err, manifest.ErrNoDocument) {
				return nil, fmt.Errorf("%w: %v", workload.ErrUnrecognizedManifest, err)
			}
			klog.V(4).InfoS("manifest text is not parseable", "err", err)
			return nil, bcode.ErrManifestSyntax
		}
	}
	cfg, err := w.compiler.Decompile(doc)
	if err != nil {
		return nil, err
	}
	klog.V(4).InfoS("decompiled workload", "kind", cfg.Kind, "name", cfg.Name)
	return &apisv1.DecompileWorkloadResponse{Kind: string(cfg.Kind), Config: cfg}, nil
}

func (w *workloadServiceImpl) ListKinds(ctx context.Context) *apisv1.ListKindsResponse {
	return assembler.ConvertKindsToList(spec.Kinds())
}

// resolveKind prefers an explicit kind name over cfg.Kind. Names are
// matched case-insensitively; an unknown name is passed through so the
// compiler reports it.
func resolveKind(name string, cfg *spec.WorkloadConfig) spec.Kind {
	if name == "" {
		if cfg == nil {
			return ""
		}
		name = string(cfg.Kind)
	}
	if kind, ok := spec.ParseKind(name); ok {
		return kind
	}
	return spec.Kind(name)
}
