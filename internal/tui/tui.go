package tui

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	goerrors "github.com/go-errors/errors"
	"github.com/jesseduffield/gocui"

	"github.com/Joseda-hg/lazytodo/internal/db"
	"github.com/Joseda-hg/lazytodo/internal/display"
	"github.com/Joseda-hg/lazytodo/internal/model"
)

const (
	viewHeader  = "header"
	viewFooter  = "footer"
	viewPending = "pending"
	viewDone    = "done"
	viewTags    = "tags"
	viewDetails = "details"
	viewHelp    = "help"
)

// UI is the interactive task browser. Every read and write goes through the
// store; the UI only keeps the last loaded snapshot.
type UI struct {
	store *db.Store
	gui   *gocui.Gui

	pending            []model.Task
	pendingDepth       map[string]int
	pendingHasChildren map[string]bool
	pendingByID        map[string]model.Task

	done            []model.Task
	doneDepth       map[string]int
	doneHasChildren map[string]bool

	tags []tagCountEntry

	collapsed map[string]bool

	selectedPending int
	selectedDone    int
	selectedTags    int
	focus           string

	activeTags map[string]struct{}
	form       *formState
	formEditor *formEditor
	helpActive bool
	status     string
}

func newUI(store *db.Store) *UI {
	ui := &UI{
		store:      store,
		focus:      viewPending,
		activeTags: make(map[string]struct{}),
		collapsed:  make(map[string]bool),
	}
	ui.formEditor = &formEditor{ui: ui}
	return ui
}

func Run(store *db.Store) error {
	gui, err := gocui.NewGui(gocui.NewGuiOpts{OutputMode: gocui.OutputNormal})
	if err != nil {
		return err
	}
	defer gui.Close()

	ui := newUI(store)
	ui.gui = gui

	gui.SetManagerFunc(ui.layout)
	if err := ui.bindKeys(gui); err != nil {
		return err
	}
	if err := ui.loadTasks(); err != nil {
		return err
	}

	if err := gui.MainLoop(); err != nil && !goerrors.Is(err, gocui.ErrQuit) {
		return err
	}

	return nil
}

type binding struct {
	view    string
	key     interface{}
	handler func(*gocui.Gui, *gocui.View) error
}

func (u *UI) bindKeys(gui *gocui.Gui) error {
	bindings := []binding{
		{"", gocui.KeyCtrlC, u.quit},
		{"", 'q', u.quit},
		{"", 'r', u.reload},
		{"", 'g', u.clearFilters},
		{"", 'a', u.addTask},
		{"", 'A', u.addSubtask},
		{"", 'e', u.editTask},
		{"", 'x', u.completeTask},
		{"", 'd', u.deleteTask},
		{"", 'n', u.jumpToNext},
		{"", '?', u.toggleHelp},
		{"", gocui.KeyTab, u.switchFocus},
		{"", '1', u.focusPending},
		{"", '2', u.focusDone},
		{"", '3', u.focusTags},
		{"", '4', u.focusDetails},
		{viewPending, gocui.KeyEnter, u.toggleCollapse},
		{viewDone, gocui.KeyEnter, u.toggleCollapse},
		{viewTags, gocui.KeySpace, u.toggleTagFilter},
		{viewTags, gocui.KeyEnter, u.toggleTagFilter},
		{viewHelp, gocui.KeyEsc, u.closeHelp},
		{viewForm, gocui.KeyEnter, u.submitFormNow},
		{viewForm, gocui.KeyCtrlJ, u.submitFormNow},
		{viewForm, gocui.KeyTab, u.nextFormField},
		{viewForm, gocui.KeyBacktab, u.prevFormField},
		{viewForm, gocui.KeyArrowDown, u.nextFormField},
		{viewForm, gocui.KeyArrowUp, u.prevFormField},
		{viewForm, gocui.KeyEsc, u.cancelForm},
	}
	for _, name := range []string{viewPending, viewDone, viewTags} {
		bindings = append(bindings,
			binding{name, gocui.KeyArrowDown, u.moveDown},
			binding{name, 'j', u.moveDown},
			binding{name, gocui.KeyArrowUp, u.moveUp},
			binding{name, 'k', u.moveUp},
		)
	}

	for _, b := range bindings {
		if err := gui.SetKeybinding(b.view, b.key, gocui.ModNone, b.handler); err != nil {
			return err
		}
	}
	return nil
}

func (u *UI) layout(gui *gocui.Gui) error {
	maxX, maxY := gui.Size()
	if maxX <= 0 || maxY <= 0 {
		return nil
	}

	headerView, err := gui.SetView(viewHeader, 0, 0, maxX-1, 0, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	headerView.Frame = false
	headerView.Wrap = true
	headerView.FgColor = gocui.ColorDefault
	u.renderHeader(headerView)

	footerY1 := max(maxY-2, 1)
	footerY0 := max(footerY1-2, 1)
	footerView, err := gui.SetView(viewFooter, 0, footerY0, maxX-1, footerY1, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	footerView.Frame = false
	footerView.Wrap = true
	footerView.FgColor = gocui.ColorDefault | gocui.AttrDim
	footerView.BgColor = gocui.ColorDefault
	u.renderFooter(footerView)

	bodyTop := 1
	bodyBottom := footerY0 - 1
	if bodyBottom < bodyTop {
		return nil
	}

	layout := computeLayout(maxX, bodyBottom-bodyTop+1)
	leftX0 := 0
	leftX1 := leftX0 + layout.leftWidth - 1
	rightX0 := leftX1 + 1
	if rightX0 >= maxX {
		rightX0 = leftX1
	}
	rightX1 := maxX - 1

	pendingY0 := bodyTop
	pendingY1 := pendingY0 + layout.pendingHeight - 1
	doneY0 := pendingY1 + 1
	doneY1 := doneY0 + layout.doneHeight - 1
	tagsY0 := doneY1 + 1
	tagsY1 := bodyBottom

	pendingView, err := gui.SetView(viewPending, leftX0, pendingY0, leftX1, pendingY1, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	if goerrors.Is(err, gocui.ErrUnknownView) {
		pendingView.Title = "1 Pending"
	}
	applyViewStyle(pendingView, u.focus == viewPending, true)
	u.renderTaskList(pendingView, u.pending, u.selectedPending, u.focus == viewPending, u.pendingDepth, u.pendingHasChildren)

	doneView, err := gui.SetView(viewDone, leftX0, doneY0, leftX1, doneY1, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	if goerrors.Is(err, gocui.ErrUnknownView) {
		doneView.Title = "2 Done"
	}
	applyViewStyle(doneView, u.focus == viewDone, true)
	u.renderTaskList(doneView, u.done, u.selectedDone, u.focus == viewDone, u.doneDepth, u.doneHasChildren)

	tagsView, err := gui.SetView(viewTags, leftX0, tagsY0, leftX1, tagsY1, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	if goerrors.Is(err, gocui.ErrUnknownView) {
		tagsView.Title = "3 Tags"
	}
	applyViewStyle(tagsView, u.focus == viewTags, false)
	u.renderTags(tagsView)

	detailsView, err := gui.SetView(viewDetails, rightX0, bodyTop, rightX1, bodyBottom, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	if goerrors.Is(err, gocui.ErrUnknownView) {
		detailsView.Title = "4 Details"
		detailsView.Wrap = true
	}
	applyViewStyle(detailsView, u.focus == viewDetails, false)
	u.renderDetails(detailsView)

	_, _ = gui.SetViewOnTop(viewHeader)
	_, _ = gui.SetViewOnTop(viewFooter)

	if u.helpActive {
		if err := u.showHelp(gui); err != nil {
			return err
		}
	} else {
		_ = gui.DeleteView(viewHelp)
	}

	if u.form != nil {
		if err := u.showForm(gui); err != nil {
			return err
		}
	} else {
		_ = gui.DeleteView(viewForm)
	}
	gui.Cursor = u.form != nil

	if gui.CurrentView() == nil {
		_, _ = gui.SetCurrentView(u.focus)
	}
	return nil
}

type layout struct {
	leftWidth     int
	pendingHeight int
	doneHeight    int
	tagsHeight    int
}

func computeLayout(width, height int) layout {
	safeWidth := max(width-2, 20)
	safeHeight := max(height, 8)

	leftWidth := safeWidth * 3 / 5
	if leftWidth < 30 {
		leftWidth = 30
	}
	if leftWidth > safeWidth-18 {
		leftWidth = safeWidth / 2
	}

	pendingHeight := max(int(float64(safeHeight)*0.5), 4)
	doneHeight := max(int(float64(safeHeight)*0.25), 4)
	tagsHeight := safeHeight - pendingHeight - doneHeight
	if tagsHeight < 4 {
		tagsHeight = 4
		doneHeight = max(safeHeight-pendingHeight-tagsHeight, 4)
	}

	return layout{
		leftWidth:     leftWidth,
		pendingHeight: pendingHeight,
		doneHeight:    doneHeight,
		tagsHeight:    tagsHeight,
	}
}

// loadTasks refreshes every pane from the store. The tag filter applies to
// both task panes; tag counts always cover every task.
func (u *UI) loadTasks() error {
	ctx := context.Background()
	activeTags := u.activeTagList()

	pending, err := u.store.ListTasks(ctx, model.Filter{Tags: activeTags})
	if err != nil {
		return err
	}
	done, err := u.store.ListTasks(ctx, model.Filter{Tags: activeTags, Scope: model.ScopeCompleted})
	if err != nil {
		return err
	}
	all, err := u.store.ListTasks(ctx, model.Filter{Scope: model.ScopeAll})
	if err != nil {
		return err
	}

	u.pendingByID = make(map[string]model.Task, len(pending))
	for _, task := range pending {
		u.pendingByID[task.ID] = task
	}

	u.pending, u.pendingDepth, u.pendingHasChildren = buildVisibleTaskTree(pending, u.collapsed)
	u.done, u.doneDepth, u.doneHasChildren = buildVisibleTaskTree(done, u.collapsed)
	u.tags = countTags(all)

	for name := range u.activeTags {
		if !u.hasTag(name) {
			delete(u.activeTags, name)
		}
	}

	if u.selectedPending >= len(u.pending) {
		u.selectedPending = max(len(u.pending)-1, 0)
	}
	if u.selectedDone >= len(u.done) {
		u.selectedDone = max(len(u.done)-1, 0)
	}
	if u.selectedTags >= len(u.tags) {
		u.selectedTags = max(len(u.tags)-1, 0)
	}
	return nil
}

func (u *UI) renderHeader(view *gocui.View) {
	view.Clear()
	tagsLabel := "none"
	if tags := u.activeTagList(); len(tags) > 0 {
		tagsLabel = strings.Join(tags, ",")
	}
	fmt.Fprintf(view, "Pending: %d | Done: %d | Tag filter: %s", len(u.pendingByID), len(u.done), tagsLabel)
}

func (u *UI) renderFooter(view *gocui.View) {
	view.Clear()
	view.SetOrigin(0, 0)
	view.SetCursor(0, 0)

	if u.form != nil {
		fmt.Fprintln(view, "enter save | tab/arrows move between fields | ctrl-u clear field | esc cancel")
		if u.status != "" {
			fmt.Fprint(view, u.status)
		}
		return
	}
	fmt.Fprintln(view, "a add | A add subtask | e edit | x complete | d delete | n next task | enter collapse | g clear filters")
	fmt.Fprintln(view, "j/k move | tab cycle | 1-4 panes | r reload | ? help | q quit")
	if u.status != "" {
		fmt.Fprint(view, u.status)
	}
}

func (u *UI) renderTaskList(view *gocui.View, tasks []model.Task, selected int, focused bool, depthByID map[string]int, hasChildrenByID map[string]bool) {
	view.Clear()
	for i, task := range tasks {
		prefix := " "
		if i == selected {
			if focused {
				prefix = ">"
			} else {
				prefix = "*"
			}
		}

		indent := strings.Repeat("  ", depthByID[task.ID])

		marker := " "
		if hasChildrenByID[task.ID] {
			if u.collapsed[task.ID] {
				marker = "+"
			} else {
				marker = "-"
			}
		}

		fmt.Fprintf(view, "%s %s%s %s\n", prefix, indent, marker, formatTaskSummary(task))
	}
	if focused {
		view.SetCursor(0, min(selected, len(tasks)-1))
	}
}

func (u *UI) renderTags(view *gocui.View) {
	view.Clear()
	for index, entry := range u.tags {
		prefix := " "
		if index == u.selectedTags {
			prefix = ">"
		}
		marker := " "
		if u.isTagActive(entry.Name) {
			marker = "x"
		}
		fmt.Fprintf(view, "%s [%s] %s (%d)\n", prefix, marker, entry.Name, entry.Count)
	}
	if u.focus == viewTags {
		view.SetCursor(0, min(u.selectedTags, len(u.tags)-1))
	}
}

func (u *UI) renderDetails(view *gocui.View) {
	view.Clear()
	selected := u.selectedTask()
	if selected == nil {
		fmt.Fprint(view, "No task selected")
		return
	}
	if err := display.RenderTask(view, *selected, u.store.Now()); err != nil {
		fmt.Fprint(view, err.Error())
	}
}

// selectedTask returns the task under the cursor of the last focused task
// pane.
func (u *UI) selectedTask() *model.Task {
	if u.focus == viewDone {
		if u.selectedDone >= 0 && u.selectedDone < len(u.done) {
			return &u.done[u.selectedDone]
		}
		return nil
	}
	if u.selectedPending >= 0 && u.selectedPending < len(u.pending) {
		return &u.pending[u.selectedPending]
	}
	return nil
}

func (u *UI) switchFocus(gui *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	switch u.focus {
	case viewPending:
		u.focus = viewDone
	case viewDone:
		u.focus = viewTags
	case viewTags:
		u.focus = viewDetails
	default:
		u.focus = viewPending
	}
	return u.applyFocus(gui)
}

func (u *UI) focusPending(gui *gocui.Gui, _ *gocui.View) error {
	return u.setFocus(gui, viewPending)
}

func (u *UI) focusDone(gui *gocui.Gui, _ *gocui.View) error {
	return u.setFocus(gui, viewDone)
}

func (u *UI) focusTags(gui *gocui.Gui, _ *gocui.View) error {
	return u.setFocus(gui, viewTags)
}

func (u *UI) focusDetails(gui *gocui.Gui, _ *gocui.View) error {
	return u.setFocus(gui, viewDetails)
}

func (u *UI) setFocus(gui *gocui.Gui, name string) error {
	if u.inputActive() {
		return nil
	}
	u.focus = name
	return u.applyFocus(gui)
}

func (u *UI) applyFocus(gui *gocui.Gui) error {
	if gui != nil {
		_, _ = gui.SetCurrentView(u.focus)
	}
	return nil
}

func (u *UI) moveDown(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	switch u.focus {
	case viewPending:
		if u.selectedPending < len(u.pending)-1 {
			u.selectedPending++
		}
	case viewDone:
		if u.selectedDone < len(u.done)-1 {
			u.selectedDone++
		}
	case viewTags:
		if u.selectedTags < len(u.tags)-1 {
			u.selectedTags++
		}
	}
	return nil
}

func (u *UI) moveUp(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	switch u.focus {
	case viewPending:
		if u.selectedPending > 0 {
			u.selectedPending--
		}
	case viewDone:
		if u.selectedDone > 0 {
			u.selectedDone--
		}
	case viewTags:
		if u.selectedTags > 0 {
			u.selectedTags--
		}
	}
	return nil
}

func (u *UI) reload(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	u.status = ""
	return u.loadTasks()
}

func (u *UI) clearFilters(gui *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	u.activeTags = make(map[string]struct{})
	return u.reload(gui, nil)
}

func (u *UI) completeTask(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	selected := u.selectedTask()
	if selected == nil {
		return nil
	}
	if selected.Completed {
		u.status = fmt.Sprintf("%s is already complete", model.ShortID(selected.ID))
		return nil
	}
	if _, err := u.store.CompleteTask(context.Background(), selected.ID); err != nil {
		u.status = err.Error()
		return nil
	}
	u.status = fmt.Sprintf("Task with ID %s marked as complete", model.ShortID(selected.ID))
	return u.loadTasks()
}

// deleteTask removes the selected task together with its subtasks.
func (u *UI) deleteTask(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() || (u.focus != viewPending && u.focus != viewDone) {
		return nil
	}
	selected := u.selectedTask()
	if selected == nil {
		return nil
	}
	result, err := u.store.RemoveByIDs(context.Background(), []string{selected.ID})
	if err != nil {
		u.status = err.Error()
		return nil
	}
	u.status = fmt.Sprintf("Removed %d task(s)", result.Removed)
	if len(result.Warnings) > 0 {
		u.status = strings.Join(result.Warnings, "; ")
	}
	return u.loadTasks()
}

// jumpToNext selects the task the next command would pick, expanding its
// ancestors and dropping tag filters that hide it.
func (u *UI) jumpToNext(gui *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	next, err := u.store.NextTask(context.Background())
	if errors.Is(err, model.ErrNoneAvailable) {
		u.status = "No pending tasks"
		return nil
	}
	if err != nil {
		u.status = err.Error()
		return nil
	}

	if _, ok := u.pendingByID[next.ID]; !ok && len(u.activeTags) > 0 {
		u.activeTags = make(map[string]struct{})
		if err := u.loadTasks(); err != nil {
			return err
		}
	}
	for parent := next.ParentID; parent != nil; {
		u.collapsed[*parent] = false
		ancestor, ok := u.pendingByID[*parent]
		if !ok {
			break
		}
		parent = ancestor.ParentID
	}
	if err := u.loadTasks(); err != nil {
		return err
	}

	for i, task := range u.pending {
		if task.ID == next.ID {
			u.selectedPending = i
			break
		}
	}
	u.status = ""
	u.focus = viewPending
	return u.applyFocus(gui)
}

func (u *UI) toggleCollapse(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() || (u.focus != viewPending && u.focus != viewDone) {
		return nil
	}
	selected := u.selectedTask()
	if selected == nil {
		return nil
	}

	hasChildren := u.pendingHasChildren[selected.ID]
	if u.focus == viewDone {
		hasChildren = u.doneHasChildren[selected.ID]
	}
	if !hasChildren {
		return nil
	}

	u.collapsed[selected.ID] = !u.collapsed[selected.ID]
	return u.loadTasks()
}

func (u *UI) toggleTagFilter(gui *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() || u.focus != viewTags {
		return nil
	}
	if u.selectedTags < 0 || u.selectedTags >= len(u.tags) {
		return nil
	}
	name := u.tags[u.selectedTags].Name
	if u.isTagActive(name) {
		delete(u.activeTags, name)
	} else {
		u.activeTags[name] = struct{}{}
	}
	return u.reload(gui, nil)
}

func (u *UI) activeTagList() []string {
	result := make([]string, 0, len(u.activeTags))
	for name := range u.activeTags {
		result = append(result, name)
	}
	sort.Strings(result)
	return result
}

func (u *UI) isTagActive(name string) bool {
	_, ok := u.activeTags[name]
	return ok
}

func (u *UI) hasTag(name string) bool {
	for _, entry := range u.tags {
		if entry.Name == name {
			return true
		}
	}
	return false
}

func (u *UI) toggleHelp(gui *gocui.Gui, _ *gocui.View) error {
	if u.form != nil {
		return nil
	}
	if u.helpActive {
		return u.closeHelp(gui, nil)
	}
	u.helpActive = true
	return nil
}

func (u *UI) closeHelp(gui *gocui.Gui, _ *gocui.View) error {
	u.helpActive = false
	if gui != nil {
		_ = gui.DeleteView(viewHelp)
		_, _ = gui.SetCurrentView(u.focus)
	}
	return nil
}

func (u *UI) showHelp(gui *gocui.Gui) error {
	maxX, maxY := gui.Size()
	width := max(60, maxX/2)
	height := 17
	x0 := (maxX - width) / 2
	y0 := (maxY - height) / 2

	view, err := gui.SetView(viewHelp, x0, y0, x0+width, y0+height, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	if goerrors.Is(err, gocui.ErrUnknownView) {
		view.Title = "Help"
		view.Wrap = true
	}
	view.Clear()
	fmt.Fprint(view, helpText())
	_, _ = gui.SetCurrentView(viewHelp)
	return nil
}

func (u *UI) inputActive() bool {
	return u.form != nil || u.helpActive
}

func (u *UI) quit(_ *gocui.Gui, _ *gocui.View) error {
	return gocui.ErrQuit
}

func helpText() string {
	return strings.Join([]string{
		"Navigation:",
		"  tab cycle panes | 1 Pending | 2 Done | 3 Tags | 4 Details",
		"  j/k or arrows move selection",
		"  n jump to the task to work on next",
		"",
		"Tasks:",
		"  a add task | A add subtask to selection | e edit selection",
		"  x mark complete",
		"  d delete with subtasks",
		"  enter collapse/expand subtasks",
		"",
		"Tags:",
		"  space/enter toggle tag filter (Tags pane)",
		"  g clear filters",
		"",
		"Other:",
		"  r reload | ? or esc close help | q quit",
	}, "\n")
}

func applyViewStyle(view *gocui.View, focused bool, highlight bool) {
	view.Frame = true
	view.Highlight = focused && highlight
	view.HighlightInactive = false
	view.SelBgColor = gocui.ColorBlue
	view.SelFgColor = gocui.ColorBlack
	view.InactiveViewSelBgColor = gocui.ColorDefault
	if focused {
		view.FrameColor = gocui.ColorCyan
		view.TitleColor = gocui.ColorCyan
	} else {
		view.FrameColor = gocui.ColorDefault
		view.TitleColor = gocui.ColorDefault
	}
}
