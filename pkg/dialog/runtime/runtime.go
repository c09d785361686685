package runtime

import (
	"context"
	"fmt"

	"scentence-be/pkg/dialog"
	"scentence-be/pkg/store"
)

// Stage names. StageEnd is the terminal pseudo-stage.
const (
	StageRouter      = "router"
	StageInterviewer = "interviewer"
	StageResearcher  = "researcher"
	StageWriter      = "writer"
	StageEnd         = "end"
)

// Stage contracts. Each stage mutates state and sets state.Route; stage
// errors are internal to the stage, so an error return here means the
// runtime itself cannot continue.
type RouterStage interface {
	Route(ctx context.Context, state *store.ConversationState, emit dialog.EventSink) error
}

type InterviewStage interface {
	Run(ctx context.Context, state *store.ConversationState, emit dialog.EventSink) error
}

type ResearchStage interface {
	RunEpisode(ctx context.Context, state *store.ConversationState, emit dialog.EventSink) error
}

type ComposeStage interface {
	Compose(ctx context.Context, state *store.ConversationState, emit dialog.EventSink) error
}

type stageFunc func(ctx context.Context, state *store.ConversationState, emit dialog.EventSink) error

// Runtime drives one turn through the stage graph. Transitions are an
// explicit table keyed by (stage, emitted route) with a validated default
// per stage, so an unexpected route can never wedge a turn.
type Runtime struct {
	stages      map[string]stageFunc
	transitions map[string]map[string]string
	defaults    map[string]string
}

func NewRuntime(router RouterStage, interviewer InterviewStage, researcher ResearchStage, composer ComposeStage) (*Runtime, error) {
	r := &Runtime{
		stages: map[string]stageFunc{
			StageRouter:      router.Route,
			StageInterviewer: interviewer.Run,
			StageResearcher:  researcher.RunEpisode,
			StageWriter:      composer.Compose,
		},
		transitions: map[string]map[string]string{
			StageRouter: {
				store.RouteInterview: StageInterviewer,
				store.RouteResearch:  StageResearcher,
				store.RouteWrite:     StageWriter,
			},
			StageInterviewer: {
				store.RouteResearch: StageResearcher,
				store.RouteWrite:    StageWriter,
				store.RouteEnd:      StageEnd,
			},
			StageResearcher: {
				store.RouteWrite: StageWriter,
			},
			StageWriter: {
				store.RouteEnd: StageEnd,
			},
		},
		defaults: map[string]string{
			StageRouter:      StageWriter,
			StageInterviewer: StageWriter,
			StageResearcher:  StageWriter,
			StageWriter:      StageEnd,
		},
	}
	if err := r.compile(); err != nil {
		return nil, err
	}
	return r, nil
}

// compile verifies every transition target and default resolves to a known
// stage, so table mistakes fail at startup instead of mid-conversation.
func (r *Runtime) compile() error {
	known := func(stage string) bool {
		if stage == StageEnd {
			return true
		}
		_, ok := r.stages[stage]
		return ok
	}

	for stage, routes := range r.transitions {
		if !known(stage) {
			return fmt.Errorf("transition table references unknown stage %q", stage)
		}
		for route, target := range routes {
			if !known(target) {
				return fmt.Errorf("stage %q route %q targets unknown stage %q", stage, route, target)
			}
		}
	}
	for stage, target := range r.defaults {
		if !known(target) {
			return fmt.Errorf("stage %q default targets unknown stage %q", stage, target)
		}
	}
	for stage := range r.stages {
		if _, ok := r.defaults[stage]; !ok {
			return fmt.Errorf("stage %q has no default transition", stage)
		}
	}
	return nil
}

func (r *Runtime) next(stage string, route string) string {
	if target, ok := r.transitions[stage][route]; ok {
		return target
	}
	return r.defaults[stage]
}

// ProcessTurn runs one user turn to completion. The final response is
// emitted as an answer event; state carries everything else.
func (r *Runtime) ProcessTurn(ctx context.Context, state *store.ConversationState, emit dialog.EventSink) error {
	// Generous upper bound; the graph is acyclic per turn
	const maxSteps = 8

	current := StageRouter
	for step := 0; step < maxSteps; step++ {
		fn, ok := r.stages[current]
		if !ok {
			return fmt.Errorf("unknown stage %q", current)
		}
		if err := fn(ctx, state, emit); err != nil {
			emit(dialog.EventError, "Something went wrong while processing the request.")
			return err
		}

		next := r.next(current, state.Route)
		if next == StageEnd {
			emit(dialog.EventAnswer, state.FinalResponse)
			return nil
		}
		current = next
	}
	return fmt.Errorf("turn exceeded %d stage transitions", maxSteps)
}
