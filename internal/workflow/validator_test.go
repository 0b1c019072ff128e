package workflow_test

import (
	"errors"
	"testing"
	"time"

	"github.com/Aleut-Geoff-Vaughan/myScheduling-sub003/internal/workflow"
	"github.com/Aleut-Geoff-Vaughan/myScheduling-sub003/internal/workflow/workflowtest"
	"github.com/stretchr/testify/assert"
)

var allStatuses = []workflow.Status{
	workflow.StatusDraft,
	workflow.StatusPendingApproval,
	workflow.StatusApproved,
	workflow.StatusRejected,
	workflow.StatusSuspended,
	workflow.StatusClosed,
}

func TestValidateSubmitRequiresApprover(t *testing.T) {
	for _, status := range []workflow.Status{workflow.StatusDraft, workflow.StatusRejected} {
		item := workflowtest.NewItem("a", status, "")
		err := workflow.Validate(item, workflow.TransitionSubmit, "")
		assert.ErrorIs(t, err, workflow.ErrPreconditionFailed, "status %s", status)

		// 审批组同样满足前置条件
		item.ApproverGroupID = "group-1"
		assert.NoError(t, workflow.Validate(item, workflow.TransitionSubmit, ""), "status %s", status)
	}
}

func TestValidateRejectRequiresNotesInEveryState(t *testing.T) {
	for _, status := range allStatuses {
		item := workflowtest.NewItem("a", status, "approver")
		for _, notes := range []string{"", "   ", "\t\n"} {
			err := workflow.Validate(item, workflow.TransitionReject, notes)
			assert.ErrorIs(t, err, workflow.ErrPreconditionFailed, "status %s notes %q", status, notes)
		}
	}
}

func TestValidateApproveRejectOnlyFromPending(t *testing.T) {
	for _, status := range allStatuses {
		item := workflowtest.NewItem("a", status, "approver")
		approveErr := workflow.Validate(item, workflow.TransitionApprove, "")
		rejectErr := workflow.Validate(item, workflow.TransitionReject, "not yet")
		if status == workflow.StatusPendingApproval {
			assert.NoError(t, approveErr)
			assert.NoError(t, rejectErr)
			continue
		}
		assert.ErrorIs(t, approveErr, workflow.ErrInvalidTransition, "status %s", status)
		assert.ErrorIs(t, rejectErr, workflow.ErrInvalidTransition, "status %s", status)
	}
}

func TestValidateClose(t *testing.T) {
	for _, status := range allStatuses {
		item := workflowtest.NewItem("a", status, "")
		err := workflow.Validate(item, workflow.TransitionClose, "")
		if status == workflow.StatusClosed {
			assert.ErrorIs(t, err, workflow.ErrInvalidTransition)
		} else {
			assert.NoError(t, err, "status %s", status)
		}
	}
}

func TestValidateSuspendOnlyFromApproved(t *testing.T) {
	for _, status := range allStatuses {
		err := workflow.Validate(workflowtest.NewItem("a", status, "x"), workflow.TransitionSuspend, "")
		if status == workflow.StatusApproved {
			assert.NoError(t, err)
		} else {
			assert.ErrorIs(t, err, workflow.ErrInvalidTransition, "status %s", status)
		}
	}
}

func TestInvalidTransitionMessageNamesStates(t *testing.T) {
	err := workflow.Validate(workflowtest.NewItem("a", workflow.StatusSuspended, "x"), workflow.TransitionApprove, "")
	var werr *workflow.Error
	assert.True(t, errors.As(err, &werr))
	assert.Contains(t, werr.Message, "Suspended")
	assert.Contains(t, werr.Message, "approve")
}

func TestClosedHasNoExits(t *testing.T) {
	assert.Empty(t, workflow.AvailableTransitions(workflow.StatusClosed))
	assert.ElementsMatch(t,
		[]workflow.Transition{workflow.TransitionSubmit, workflow.TransitionClose},
		workflow.AvailableTransitions(workflow.StatusDraft))
}

func TestValidateEdit(t *testing.T) {
	for _, status := range allStatuses {
		err := workflow.ValidateEdit(workflowtest.NewItem("a", status, ""))
		if status == workflow.StatusDraft || status == workflow.StatusRejected {
			assert.NoError(t, err)
		} else {
			assert.ErrorIs(t, err, workflow.ErrImmutableInCurrentState, "status %s", status)
		}
	}
}

func TestNextCoupledFields(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	prev := workflow.State{ApprovalStatus: workflow.StatusPendingApproval, OperationalStatus: workflow.OperationalDraft}

	approved := workflow.Next(prev, workflow.TransitionApprove, " looks good ", now)
	assert.Equal(t, workflow.StatusApproved, approved.ApprovalStatus)
	assert.Equal(t, workflow.OperationalActive, approved.OperationalStatus)
	assert.Equal(t, "looks good", approved.ApprovalNotes)
	if assert.NotNil(t, approved.ApprovedAt) {
		assert.True(t, approved.ApprovedAt.Equal(now))
	}

	suspended := workflow.Next(approved, workflow.TransitionSuspend, "", now)
	assert.Equal(t, workflow.OperationalDraft, suspended.OperationalStatus)
	assert.Equal(t, "looks good", suspended.ApprovalNotes)

	rejected := workflow.Next(prev, workflow.TransitionReject, "missing codes", now)
	assert.Equal(t, workflow.StatusRejected, rejected.ApprovalStatus)
	assert.Equal(t, workflow.OperationalDraft, rejected.OperationalStatus)
	assert.Equal(t, "missing codes", rejected.ApprovalNotes)

	closed := workflow.Next(prev, workflow.TransitionClose, "", now)
	assert.Equal(t, workflow.OperationalClosed, closed.OperationalStatus)
}

func TestParseTransitionAndKind(t *testing.T) {
	tr, err := workflow.ParseTransition("Approve")
	assert.NoError(t, err)
	assert.Equal(t, workflow.TransitionApprove, tr)

	_, err = workflow.ParseTransition("archive")
	assert.ErrorIs(t, err, workflow.ErrInvalidTransition)

	k, err := workflow.ParseKind("forecasts")
	assert.NoError(t, err)
	assert.Equal(t, workflow.KindForecast, k)

	_, err = workflow.ParseKind("timesheets")
	assert.ErrorIs(t, err, workflow.ErrNotFound)
}

func TestErrorClassification(t *testing.T) {
	assert.True(t, workflow.IsCallerError(workflow.NewError(workflow.CodeNotFound, "x")))
	assert.False(t, workflow.IsCallerError(errors.New("disk full")))
	assert.Equal(t, workflow.CodeInfrastructureFailure, workflow.CodeOf(errors.New("disk full")))

	wrapped := workflow.Infrastructure("save", errors.New("disk full"))
	assert.ErrorIs(t, wrapped, workflow.ErrInfrastructureFailure)

	// 已是工作流错误时保持原错误码
	conflict := workflow.NewError(workflow.CodeConcurrentModification, "stale")
	assert.ErrorIs(t, workflow.Infrastructure("save", conflict), workflow.ErrConcurrentModification)
}
