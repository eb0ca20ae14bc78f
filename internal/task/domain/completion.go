package domain

// Completion-consistency rules linking a task's own flag to its subtasks.
//
// The functions here are pure state transitions over a single task value;
// callers own persistence and the reward side effect. Each returns whether
// the task just transitioned into completed, which is the one and only
// trigger for awarding luck.

// ToggleCompletion flips the task's completed flag. Completing the task
// marks every subtask done; reopening it leaves subtask states untouched.
func ToggleCompletion(t *Task) (justCompleted bool) {
	t.Completed = !t.Completed
	if !t.Completed {
		return false
	}
	for i := range t.Subtasks {
		t.Subtasks[i].Completed = true
	}
	return true
}

// ToggleSubtask flips the named subtask and re-evaluates the parent flag:
// all subtasks done promotes an incomplete parent (justCompleted true),
// reopening a subtask demotes a completed parent. Returns found=false and
// changes nothing when the subtask id is unknown.
func ToggleSubtask(t *Task, subtaskID string) (justCompleted, found bool) {
	idx := -1
	for i := range t.Subtasks {
		if t.Subtasks[i].ID == subtaskID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false, false
	}

	t.Subtasks[idx].Completed = !t.Subtasks[idx].Completed

	if allSubtasksDone(t) {
		if !t.Completed {
			t.Completed = true
			return true, true
		}
	} else if t.Completed {
		// A reopened subtask contradicts the parent flag. No luck is
		// revoked; rewards only ever accrue.
		t.Completed = false
	}
	return false, true
}

// ReconcileOnWrite applies the forward consistency direction to a task
// written wholesale (create or full update): all subtasks done promotes an
// incomplete parent. The reverse direction is deliberately not enforced
// here — a caller-provided task with completed=true and open subtasks is
// accepted as-is, matching how historical state entered the system.
func ReconcileOnWrite(t *Task) (justCompleted bool) {
	if len(t.Subtasks) == 0 {
		return false
	}
	if allSubtasksDone(t) && !t.Completed {
		t.Completed = true
		return true
	}
	return false
}

func allSubtasksDone(t *Task) bool {
	for _, st := range t.Subtasks {
		if !st.Completed {
			return false
		}
	}
	return true
}
