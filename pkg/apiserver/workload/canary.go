package workload

import (
	"github.com/spf13/cast"

	"kubemin-workload/pkg/apiserver/domain/spec"
)

// Primitive step keys, in the priority used when a manifest step carries
// more than one of them.
const (
	stepSetWeight      = "setWeight"
	stepPause          = "pause"
	stepSetCanaryScale = "setCanaryScale"
	stepAnalysis       = "analysis"
)

var primitiveOrder = []string{stepSetWeight, stepPause, stepSetCanaryScale, stepAnalysis}

// BuildCanarySteps splits step cards into primitive steps. Within a card
// the order is setWeight, pause, setCanaryScale, analysis, each as its own
// list entry. A pause without a duration is emitted as an empty pause.
func BuildCanarySteps(steps []spec.CanaryStep) []interface{} {
	var out []interface{}
	for i := range steps {
		step := &steps[i]
		if step.SetWeight != nil {
			out = append(out, object{stepSetWeight: int64(*step.SetWeight)})
		}
		if step.Pause != nil {
			pause := object{}
			setString(pause, "duration", step.Pause.Duration)
			out = append(out, object{stepPause: pause})
		}
		if scale := buildCanaryScale(step.SetCanaryScale); len(scale) > 0 {
			out = append(out, object{stepSetCanaryScale: scale})
		}
		if analysis := buildAnalysis(step.Analysis); len(analysis) > 0 {
			out = append(out, object{stepAnalysis: analysis})
		}
	}
	return out
}

func buildCanaryScale(s *spec.SetCanaryScaleSpec) object {
	if s == nil {
		return nil
	}
	out := object{}
	setInt32(out, "replicas", s.Replicas)
	setInt32(out, "weight", s.Weight)
	if s.MatchTrafficWeight {
		out["matchTrafficWeight"] = true
	}
	return out
}

type mergeState int

const (
	awaitingWeight mergeState = iota
	weightPendingPause
)

// stepMerger pairs primitive steps back into cards in one left to right
// pass. A setWeight waits for the very next primitive: a timed pause joins
// its card, anything else closes it.
type stepMerger struct {
	state   mergeState
	pending spec.CanaryStep
	cards   []spec.CanaryStep
}

func (m *stepMerger) feed(step object) {
	kind := primitiveKind(step)
	if m.state == weightPendingPause {
		if kind == stepPause {
			if pause := parsePause(step[stepPause]); !pause.Indefinite() {
				m.pending.Pause = pause
				m.flush()
				return
			}
		}
		m.flush()
	}

	switch kind {
	case stepSetWeight:
		w := cast.ToInt32(step[stepSetWeight])
		m.pending = spec.CanaryStep{SetWeight: &w}
		m.state = weightPendingPause
	case stepPause:
		m.cards = append(m.cards, spec.CanaryStep{Pause: parsePause(step[stepPause])})
	case stepSetCanaryScale:
		m.cards = append(m.cards, spec.CanaryStep{SetCanaryScale: parseCanaryScale(getObject(step, stepSetCanaryScale))})
	case stepAnalysis:
		m.cards = append(m.cards, spec.CanaryStep{Analysis: parseAnalysis(getObject(step, stepAnalysis))})
	}
}

func (m *stepMerger) flush() {
	if m.state == weightPendingPause {
		m.cards = append(m.cards, m.pending)
		m.pending = spec.CanaryStep{}
		m.state = awaitingWeight
	}
}

// ParseCanarySteps merges primitive steps into step cards. A setWeight
// immediately followed by a pause with a duration becomes one card; an
// indefinite pause always stays on its own. Unknown primitives are dropped.
func ParseCanarySteps(steps []interface{}) []spec.CanaryStep {
	m := &stepMerger{}
	for _, raw := range steps {
		step, ok := raw.(map[string]interface{})
		if !ok {
			m.flush()
			continue
		}
		m.feed(step)
	}
	m.flush()
	return m.cards
}

func primitiveKind(step object) string {
	for _, key := range primitiveOrder {
		if _, ok := step[key]; ok {
			return key
		}
	}
	return ""
}

// parsePause accepts a duration given as a string or as seconds.
func parsePause(raw interface{}) *spec.PauseSpec {
	m, _ := raw.(map[string]interface{})
	if m == nil || m["duration"] == nil {
		return &spec.PauseSpec{}
	}
	return &spec.PauseSpec{Duration: cast.ToString(m["duration"])}
}

func parseCanaryScale(m object) *spec.SetCanaryScaleSpec {
	s := &spec.SetCanaryScaleSpec{
		Replicas: getInt32(m, "replicas"),
		Weight:   getInt32(m, "weight"),
	}
	if match := getBool(m, "matchTrafficWeight"); match != nil {
		s.MatchTrafficWeight = *match
	}
	return s
}

func buildAnalysis(a *spec.RolloutAnalysis) object {
	if a == nil {
		return nil
	}
	out := object{}
	var templates []interface{}
	for _, t := range a.Templates {
		templates = append(templates, object{"templateName": t.TemplateName})
	}
	setList(out, "templates", templates)
	var args []interface{}
	for _, arg := range a.Args {
		item := object{"name": arg.Name}
		if from := buildArgSource(arg.ValueFrom); len(from) > 0 {
			item["valueFrom"] = from
		} else {
			setString(item, "value", arg.Value)
		}
		args = append(args, item)
	}
	setList(out, "args", args)
	setInt32(out, "startingStep", a.StartingStep)
	return out
}

func buildArgSource(src *spec.AnalysisArgSource) object {
	if src == nil {
		return nil
	}
	out := object{}
	setString(out, "podTemplateHashValue", src.PodTemplateHashValue)
	if src.FieldRef != nil {
		out["fieldRef"] = object{"fieldPath": src.FieldRef.FieldPath}
	}
	return out
}

func parseAnalysis(m object) *spec.RolloutAnalysis {
	if m == nil {
		return nil
	}
	a := &spec.RolloutAnalysis{StartingStep: getInt32(m, "startingStep")}
	for _, t := range getObjects(m, "templates") {
		a.Templates = append(a.Templates, spec.AnalysisTemplateRef{TemplateName: getString(t, "templateName")})
	}
	for _, item := range getObjects(m, "args") {
		arg := spec.AnalysisArg{Name: getString(item, "name"), Value: getString(item, "value")}
		if from := getObject(item, "valueFrom"); from != nil {
			arg.ValueFrom = &spec.AnalysisArgSource{PodTemplateHashValue: getString(from, "podTemplateHashValue")}
			if ref := getObject(from, "fieldRef"); ref != nil {
				arg.ValueFrom.FieldRef = &spec.FieldSelectorSpec{FieldPath: getString(ref, "fieldPath")}
			}
		}
		a.Args = append(a.Args, arg)
	}
	return a
}
