// Package editor is an interactive terminal editor for a draft layer
// sequence. Kind changes start from the family's empty layer and every
// numeric answer is clamped to the family's bounds table.
package editor

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-netgen/pkg/layer"
	"github.com/goliatone/go-netgen/pkg/session"
	"github.com/goliatone/go-netgen/pkg/topology"
)

// Action is one entry of the main menu.
type Action int

const (
	ActionAdd Action = iota
	ActionEdit
	ActionChangeKind
	ActionRemove
	ActionMoveUp
	ActionShow
	ActionCommit
	ActionQuit
)

var actionLabels = []string{
	ActionAdd:        "Add layer",
	ActionEdit:       "Edit layer",
	ActionChangeKind: "Change layer kind",
	ActionRemove:     "Remove layer",
	ActionMoveUp:     "Move layer up",
	ActionShow:       "Show layers",
	ActionCommit:     "Commit",
	ActionQuit:       "Quit",
}

func (a Action) String() string {
	if a < 0 || int(a) >= len(actionLabels) {
		return fmt.Sprintf("Action(%d)", int(a))
	}
	return actionLabels[a]
}

// Option configures an Editor.
type Option func(*Editor)

// WithPromptDriver overrides the survey-backed prompt driver.
func WithPromptDriver(driver PromptDriver) Option {
	return func(e *Editor) {
		if driver != nil {
			e.driver = driver
		}
	}
}

// WithPageSize sets how many options a select prompt shows at once.
func WithPageSize(size int) Option {
	return func(e *Editor) {
		if size > 0 {
			e.pageSize = size
		}
	}
}

// Editor edits drafts of one family.
type Editor struct {
	family   layer.Family
	limits   layer.Limits
	driver   PromptDriver
	pageSize int
}

// New creates an editor for family.
func New(family layer.Family, options ...Option) *Editor {
	e := &Editor{
		family:   family,
		limits:   family.Limits(),
		pageSize: 10,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(e)
	}
	if e.driver == nil {
		e.driver = NewSurveyDriver(nil)
	}
	return e
}

// Run edits a copy of draft until the user commits a sequence that passes
// the topology validator, which is then returned. A confirmed quit returns
// the current draft together with ErrAborted.
func (e *Editor) Run(ctx context.Context, draft []layer.Layer) (layer.Sequence, error) {
	if ctx == nil {
		return nil, errors.New("editor: context is required")
	}
	work := layer.Clone(draft)

	for {
		if err := ctx.Err(); err != nil {
			return work, err
		}

		choice, err := e.driver.Select(ctx, SelectConfig{
			Message:  fmt.Sprintf("%s network (%d layers)", e.family, len(work)),
			Options:  actionLabels,
			PageSize: e.pageSize,
		})
		if err != nil {
			return work, err
		}

		switch Action(choice) {
		case ActionAdd:
			work, err = e.add(ctx, work)
		case ActionEdit:
			work, err = e.edit(ctx, work)
		case ActionChangeKind:
			work, err = e.changeKind(ctx, work)
		case ActionRemove:
			work, err = e.remove(ctx, work)
		case ActionMoveUp:
			work, err = e.moveUp(ctx, work)
		case ActionShow:
			err = e.driver.Info(ctx, Summary(work))
		case ActionCommit:
			verdict := topology.Validate(e.family, work)
			if verdict.OK {
				return work, nil
			}
			err = e.driver.Info(ctx, "Cannot commit: "+verdict.Reason)
		case ActionQuit:
			leave, confirmErr := e.driver.Confirm(ctx, ConfirmConfig{Message: "Leave without committing?"})
			if confirmErr != nil {
				return work, confirmErr
			}
			if leave {
				return work, ErrAborted
			}
		default:
			err = e.driver.Info(ctx, "Unknown action")
		}
		if err != nil {
			return work, err
		}
	}
}

// RunWorkspace edits the workspace draft and commits it on success. The
// edited draft is stored even when the user quits.
func (e *Editor) RunWorkspace(ctx context.Context, ws *session.Workspace) (*session.Snapshot, error) {
	if ws == nil {
		return nil, errors.New("editor: workspace is required")
	}
	edited, err := e.Run(ctx, ws.Draft())
	ws.SetDraft(edited)
	if err != nil {
		return nil, err
	}
	return ws.Commit()
}

func (e *Editor) add(ctx context.Context, work layer.Sequence) (layer.Sequence, error) {
	kind, err := e.selectKind(ctx, "Layer kind", 0)
	if err != nil {
		return work, err
	}

	pos, err := e.askInt(ctx, InputConfig{
		Message: "Insert at position",
		Default: strconv.Itoa(len(work)),
		Help:    fmt.Sprintf("0 to %d", len(work)),
	}, len(work))
	if err != nil {
		return work, err
	}
	pos = layer.Range{Min: 0, Max: float64(len(work))}.ClampInt(pos)

	next, err := e.editFields(ctx, e.family.Empty(kind))
	if err != nil {
		return work, err
	}

	work = append(work, nil)
	copy(work[pos+1:], work[pos:])
	work[pos] = next
	return work, nil
}

func (e *Editor) edit(ctx context.Context, work layer.Sequence) (layer.Sequence, error) {
	idx, ok, err := e.pickLayer(ctx, work, "Layer to edit")
	if err != nil || !ok {
		return work, err
	}
	next, err := e.editFields(ctx, work[idx])
	if err != nil {
		return work, err
	}
	work[idx] = next
	return work, nil
}

func (e *Editor) changeKind(ctx context.Context, work layer.Sequence) (layer.Sequence, error) {
	idx, ok, err := e.pickLayer(ctx, work, "Layer to change")
	if err != nil || !ok {
		return work, err
	}
	kinds := e.family.Kinds()
	current := 0
	for i, kind := range kinds {
		if kind == work[idx].Kind() {
			current = i
		}
	}
	kind, err := e.selectKind(ctx, "New kind", current)
	if err != nil {
		return work, err
	}
	work[idx] = e.family.Empty(kind)
	return work, nil
}

func (e *Editor) remove(ctx context.Context, work layer.Sequence) (layer.Sequence, error) {
	idx, ok, err := e.pickLayer(ctx, work, "Layer to remove")
	if err != nil || !ok {
		return work, err
	}
	return append(work[:idx], work[idx+1:]...), nil
}

func (e *Editor) moveUp(ctx context.Context, work layer.Sequence) (layer.Sequence, error) {
	idx, ok, err := e.pickLayer(ctx, work, "Layer to move up")
	if err != nil || !ok {
		return work, err
	}
	if idx == 0 {
		return work, e.driver.Info(ctx, "Layer is already first")
	}
	work[idx-1], work[idx] = work[idx], work[idx-1]
	return work, nil
}

func (e *Editor) pickLayer(ctx context.Context, work layer.Sequence, message string) (int, bool, error) {
	if len(work) == 0 {
		return 0, false, e.driver.Info(ctx, "No layers yet")
	}
	options := make([]string, len(work))
	for i, l := range work {
		options[i] = fmt.Sprintf("%d: %s", i, Describe(l))
	}
	idx, err := e.driver.Select(ctx, SelectConfig{Message: message, Options: options, PageSize: e.pageSize})
	if err != nil {
		return 0, false, err
	}
	if idx < 0 || idx >= len(work) {
		return 0, false, nil
	}
	return idx, true, nil
}

func (e *Editor) selectKind(ctx context.Context, message string, defaultIndex int) (layer.Kind, error) {
	kinds := e.family.Kinds()
	options := make([]string, len(kinds))
	for i, kind := range kinds {
		options[i] = string(kind)
	}
	idx, err := e.driver.Select(ctx, SelectConfig{
		Message:      message,
		Options:      options,
		DefaultIndex: defaultIndex,
		PageSize:     e.pageSize,
	})
	if err != nil {
		return "", err
	}
	if idx < 0 || idx >= len(kinds) {
		idx = defaultIndex
	}
	return kinds[idx], nil
}

// editFields prompts for every field of l and returns the clamped result.
func (e *Editor) editFields(ctx context.Context, l layer.Layer) (layer.Layer, error) {
	var err error
	switch v := l.(type) {
	case layer.Input:
		shape := append([]int(nil), v.Shape...)
		for i := range shape {
			r := e.limits.InputDim(len(shape), i)
			if shape[i], err = e.askInt(ctx, intPrompt(inputDimLabel(len(shape), i), shape[i], r), shape[i]); err != nil {
				return l, err
			}
		}
		v.Shape = shape
		l = v
	case layer.Conv:
		if v.Size, err = e.askInt(ctx, intPrompt("Filters", v.Size, e.limits.Conv.Size), v.Size); err != nil {
			return l, err
		}
		if v.Kernel, err = e.askPair(ctx, "Kernel", v.Kernel, e.limits.Conv.Kernel); err != nil {
			return l, err
		}
		l = v
	case layer.Pool:
		if v.Stride, err = e.askPair(ctx, "Stride", v.Stride, e.limits.Pool.Stride); err != nil {
			return l, err
		}
		if v.Kernel, err = e.askPair(ctx, "Kernel", v.Kernel, e.limits.Pool.Kernel); err != nil {
			return l, err
		}
		l = v
	case layer.Padding:
		if v.Padding, err = e.askPair(ctx, "Padding", v.Padding, e.limits.Padding.Pad); err != nil {
			return l, err
		}
		l = v
	case layer.Dense:
		if v.Size, err = e.askInt(ctx, intPrompt("Units", v.Size, e.limits.Dense.Size), v.Size); err != nil {
			return l, err
		}
		if v.Activation, err = e.selectActivation(ctx, v.Activation); err != nil {
			return l, err
		}
		l = v
	case layer.Dropout:
		if v.Rate, err = e.askFloat(ctx, v.Rate, e.limits.Dropout.Rate); err != nil {
			return l, err
		}
		l = v
	case layer.Output:
		if v.Size, err = e.askInt(ctx, intPrompt("Classes", v.Size, e.limits.Output.Size), v.Size); err != nil {
			return l, err
		}
		if v.Activation, err = e.selectActivation(ctx, v.Activation); err != nil {
			return l, err
		}
		l = v
	}
	return e.limits.Clamp(l), nil
}

func (e *Editor) selectActivation(ctx context.Context, current layer.Activation) (layer.Activation, error) {
	activations := layer.Activations()
	options := make([]string, len(activations))
	defaultIndex := 0
	for i, activation := range activations {
		options[i] = string(activation)
		if activation == current {
			defaultIndex = i
		}
	}
	idx, err := e.driver.Select(ctx, SelectConfig{Message: "Activation", Options: options, DefaultIndex: defaultIndex})
	if err != nil {
		return current, err
	}
	if idx < 0 || idx >= len(activations) {
		return current, nil
	}
	return activations[idx], nil
}

func (e *Editor) askPair(ctx context.Context, label string, current [2]int, r layer.Range) ([2]int, error) {
	var err error
	for i, axis := range []string{"height", "width"} {
		if current[i], err = e.askInt(ctx, intPrompt(label+" "+axis, current[i], r), current[i]); err != nil {
			return current, err
		}
	}
	return current, nil
}

// askInt returns fallback when the answer is not an integer.
func (e *Editor) askInt(ctx context.Context, cfg InputConfig, fallback int) (int, error) {
	if cfg.Validator == nil {
		cfg.Validator = validateInt
	}
	answer, err := e.driver.Input(ctx, cfg)
	if err != nil {
		return fallback, err
	}
	n, convErr := strconv.Atoi(strings.TrimSpace(answer))
	if convErr != nil {
		return fallback, nil
	}
	return n, nil
}

func (e *Editor) askFloat(ctx context.Context, current float64, r layer.Range) (float64, error) {
	answer, err := e.driver.Input(ctx, InputConfig{
		Message:   "Rate",
		Default:   strconv.FormatFloat(current, 'f', -1, 64),
		Help:      rangeHelp(r),
		Validator: validateFloat,
	})
	if err != nil {
		return current, err
	}
	v, convErr := strconv.ParseFloat(strings.TrimSpace(answer), 64)
	if convErr != nil {
		return current, nil
	}
	return v, nil
}

func intPrompt(label string, current int, r layer.Range) InputConfig {
	return InputConfig{
		Message: label,
		Default: strconv.Itoa(current),
		Help:    rangeHelp(r),
	}
}

func inputDimLabel(rank, i int) string {
	if rank == 3 {
		return []string{"Channels", "Height", "Width"}[i]
	}
	if rank == 1 {
		return "Features"
	}
	return fmt.Sprintf("Dimension %d", i)
}

func rangeHelp(r layer.Range) string {
	if r.IsZero() {
		return ""
	}
	return fmt.Sprintf("values outside %g to %g are clamped", r.Min, r.Max)
}

func validateInt(answer string) error {
	if _, err := strconv.Atoi(strings.TrimSpace(answer)); err != nil {
		return errors.New("enter a whole number")
	}
	return nil
}

func validateFloat(answer string) error {
	if _, err := strconv.ParseFloat(strings.TrimSpace(answer), 64); err != nil {
		return errors.New("enter a number")
	}
	return nil
}
