package main

import (
	"errors"
	"testing"

	"github.com/tsukumogami/vx/internal/pipeline"
)

func TestExitCodeForNil(t *testing.T) {
	if got := exitCodeFor(nil); got != ExitSuccess {
		t.Errorf("exitCodeFor(nil) = %d, want %d", got, ExitSuccess)
	}
}

func TestExitCodeForUnclassifiedError(t *testing.T) {
	if got := exitCodeFor(errors.New("boom")); got != ExitGeneral {
		t.Errorf("exitCodeFor(plain error) = %d, want %d", got, ExitGeneral)
	}
}

func TestExitCodeForPipelineErrors(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{
			name: "unsupported required runtime",
			err: &pipeline.PipelineError{
				Stage: pipeline.StageEnsure,
				Err:   &pipeline.ErrUnsupportedRequired{Runtime: "fake-tool", Reason: "excluded by os filter"},
			},
			want: ExitNotFound,
		},
		{
			name: "auto-install disabled",
			err: &pipeline.PipelineError{
				Stage: pipeline.StageEnsure,
				Err:   &pipeline.ErrAutoInstallDisabled{Missing: []string{"node"}},
			},
			want: ExitNotFound,
		},
		{
			name: "no executable",
			err: &pipeline.PipelineError{
				Stage: pipeline.StagePrepare,
				Err:   &pipeline.ErrNoExecutable{Runtime: "node", Path: "bin/node"},
			},
			want: ExitNotExecutable,
		},
		{
			name: "spawn failed",
			err: &pipeline.PipelineError{
				Stage: pipeline.StageExecute,
				Err:   &pipeline.ErrSpawnFailed{Executable: "node", Err: errors.New("no such file")},
			},
			want: ExitNotFound,
		},
		{
			name: "unclassified pipeline error",
			err: &pipeline.PipelineError{
				Stage: pipeline.StageResolve,
				Err:   &pipeline.ErrUnknownRuntime{Name: "nope"},
			},
			want: ExitGeneral,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := exitCodeFor(c.err); got != c.want {
				t.Errorf("exitCodeFor(%v) = %d, want %d", c.err, got, c.want)
			}
		})
	}
}
