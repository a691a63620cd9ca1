package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	goerrors "github.com/go-errors/errors"
	"github.com/jesseduffield/gocui"

	"github.com/Joseda-hg/lazytodo/internal/deadline"
	"github.com/Joseda-hg/lazytodo/internal/model"
)

const viewForm = "form"

type formField struct {
	Label string
	Value string
}

const (
	fieldTitle = iota
	fieldDescription
	fieldTags
	fieldDeadline
	fieldDifficulty
)

// formState is an open add or edit dialog. taskID is set when editing,
// parentID when adding a subtask.
type formState struct {
	taskID   string
	parentID string
	fields   []formField
	initial  []formField
	index    int
}

type formEditor struct {
	ui *UI
}

func buildFormFields(task *model.Task) []formField {
	fields := []formField{
		{Label: "Title"},
		{Label: "Description"},
		{Label: "Tags (comma separated)"},
		{Label: "Deadline (today, fri, +3d, 2026-02-10)"},
		{Label: "Difficulty (0-10)"},
	}
	if task == nil {
		return fields
	}

	fields[fieldTitle].Value = task.Title
	fields[fieldDescription].Value = task.Description
	fields[fieldTags].Value = strings.Join(task.Tags, ",")
	if task.Deadline != nil {
		fields[fieldDeadline].Value = deadline.Format(*task.Deadline)
	}
	if task.Difficulty != nil {
		fields[fieldDifficulty].Value = strconv.Itoa(*task.Difficulty)
	}
	return fields
}

// parseFormFields builds the input of a new task. The deadline stays a raw
// expression; the store parses it against its own clock.
func parseFormFields(fields []formField) (model.TaskInput, error) {
	difficulty, err := parseDifficulty(fields[fieldDifficulty].Value)
	if err != nil {
		return model.TaskInput{}, err
	}
	return model.TaskInput{
		Title:       fields[fieldTitle].Value,
		Description: strings.TrimSpace(fields[fieldDescription].Value),
		Difficulty:  difficulty,
		Deadline:    strings.TrimSpace(fields[fieldDeadline].Value),
		Tags:        parseTags(fields[fieldTags].Value),
	}, nil
}

// patchFromFields carries only the fields that differ from their initial
// values. A cleared difficulty cannot be expressed as a patch and is left
// unchanged.
func patchFromFields(initial, fields []formField) (model.TaskPatch, error) {
	var patch model.TaskPatch
	changed := func(index int) bool {
		return strings.TrimSpace(fields[index].Value) != strings.TrimSpace(initial[index].Value)
	}

	if changed(fieldTitle) {
		title := fields[fieldTitle].Value
		patch.Title = &title
	}
	if changed(fieldDescription) {
		description := strings.TrimSpace(fields[fieldDescription].Value)
		patch.Description = &description
	}
	if changed(fieldTags) {
		tags := parseTags(fields[fieldTags].Value)
		patch.Tags = &tags
	}
	if changed(fieldDeadline) {
		expr := strings.TrimSpace(fields[fieldDeadline].Value)
		patch.Deadline = &expr
	}
	if changed(fieldDifficulty) {
		difficulty, err := parseDifficulty(fields[fieldDifficulty].Value)
		if err != nil {
			return model.TaskPatch{}, err
		}
		patch.Difficulty = difficulty
	}
	return patch, nil
}

func parseDifficulty(value string) (*int, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, nil
	}
	parsed, err := strconv.Atoi(trimmed)
	if err != nil {
		return nil, model.Invalid("difficulty", "%q is not a number", trimmed)
	}
	return &parsed, nil
}

func parseTags(value string) []string {
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		result = append(result, trimmed)
	}
	return result
}

func newFormState(task *model.Task) *formState {
	fields := buildFormFields(task)
	initial := make([]formField, len(fields))
	copy(initial, fields)
	return &formState{fields: fields, initial: initial}
}

func (u *UI) addTask(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	u.form = newFormState(nil)
	return nil
}

// addSubtask opens a new task form under the selected task, prefilled with
// its tags.
func (u *UI) addSubtask(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	selected := u.selectedTask()
	if selected == nil {
		return nil
	}
	u.form = newFormState(nil)
	u.form.fields[fieldTags].Value = strings.Join(selected.Tags, ",")
	u.form.parentID = selected.ID
	return nil
}

func (u *UI) editTask(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	selected := u.selectedTask()
	if selected == nil {
		return nil
	}
	u.form = newFormState(selected)
	u.form.taskID = selected.ID
	return nil
}

func (u *UI) showForm(gui *gocui.Gui) error {
	if u.form == nil {
		return nil
	}

	maxX, maxY := gui.Size()
	width := max(60, maxX/2)
	height := min(10, max(8, maxY/2))
	x0 := (maxX - width) / 2
	y0 := (maxY - height) / 2

	view, err := gui.SetView(viewForm, x0, y0, x0+width, y0+height, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	if goerrors.Is(err, gocui.ErrUnknownView) {
		view.Wrap = true
	}
	switch {
	case u.form.taskID != "":
		view.Title = "Edit Task " + model.ShortID(u.form.taskID)
	case u.form.parentID != "":
		view.Title = "New Subtask of " + model.ShortID(u.form.parentID)
	default:
		view.Title = "New Task"
	}
	view.Editable = true
	view.KeybindOnEdit = true
	view.Editor = u.formEditor
	u.renderForm(view)
	_, _ = gui.SetCurrentView(viewForm)
	return nil
}

// submitFormNow saves the form. On a validation error the form stays open
// and the error is shown in the footer.
func (u *UI) submitFormNow(gui *gocui.Gui, _ *gocui.View) error {
	if u.form == nil {
		return nil
	}
	ctx := context.Background()

	var (
		task model.Task
		err  error
	)
	if u.form.taskID == "" {
		var input model.TaskInput
		input, err = parseFormFields(u.form.fields)
		if err == nil {
			input.Parent = u.form.parentID
			task, err = u.store.CreateTask(ctx, input)
		}
	} else {
		var patch model.TaskPatch
		patch, err = patchFromFields(u.form.initial, u.form.fields)
		if err == nil && patch.Empty() {
			return u.closeForm(gui, "Nothing to update")
		}
		if err == nil {
			task, err = u.store.UpdateTask(ctx, u.form.taskID, patch)
		}
	}
	if err != nil {
		u.status = err.Error()
		return nil
	}

	status := fmt.Sprintf("Added task with ID %s", model.ShortID(task.ID))
	if u.form.taskID != "" {
		status = fmt.Sprintf("Updated task with ID %s", model.ShortID(task.ID))
	}
	if err := u.closeForm(gui, status); err != nil {
		return err
	}
	return u.loadTasks()
}

func (u *UI) cancelForm(gui *gocui.Gui, _ *gocui.View) error {
	return u.closeForm(gui, "")
}

func (u *UI) closeForm(gui *gocui.Gui, status string) error {
	u.form = nil
	u.status = status
	if gui != nil {
		_ = gui.DeleteView(viewForm)
		_, _ = gui.SetCurrentView(u.focus)
	}
	return nil
}

func (u *UI) nextFormField(_ *gocui.Gui, view *gocui.View) error {
	if u.form == nil {
		return nil
	}
	if u.form.index < len(u.form.fields)-1 {
		u.form.index++
	}
	u.renderForm(view)
	return nil
}

func (u *UI) prevFormField(_ *gocui.Gui, view *gocui.View) error {
	if u.form == nil {
		return nil
	}
	if u.form.index > 0 {
		u.form.index--
	}
	u.renderForm(view)
	return nil
}

func (u *UI) renderForm(view *gocui.View) {
	if u.form == nil || view == nil {
		return
	}
	view.Clear()
	for index, field := range u.form.fields {
		prefix := "  "
		if index == u.form.index {
			prefix = "> "
		}
		fmt.Fprintf(view, "%s%s: %s\n", prefix, field.Label, field.Value)
	}
	current := u.form.fields[u.form.index]
	cursorX := len([]rune(current.Label)) + len([]rune(current.Value)) + 4
	view.SetCursor(cursorX, u.form.index)
}

func (e *formEditor) Edit(view *gocui.View, key gocui.Key, ch rune, mod gocui.Modifier) bool {
	ui := e.ui
	if ui == nil || ui.form == nil || view == nil {
		return false
	}
	field := &ui.form.fields[ui.form.index]

	switch key {
	case gocui.KeyBackspace, gocui.KeyBackspace2:
		runes := []rune(field.Value)
		if len(runes) > 0 {
			field.Value = string(runes[:len(runes)-1])
		}
	case gocui.KeySpace:
		field.Value += " "
	case gocui.KeyCtrlU:
		field.Value = ""
	}

	if ch != 0 && ch != '\n' && ch != '\r' && mod == 0 {
		field.Value += string(ch)
	}

	ui.renderForm(view)
	return true
}
