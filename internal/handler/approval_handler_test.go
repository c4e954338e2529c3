package handler_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/campushub/examcore-api/internal/dto"
	"github.com/campushub/examcore-api/internal/handler"
	"github.com/campushub/examcore-api/internal/models"
	"github.com/campushub/examcore-api/internal/service"
)

type mockApprovalService struct {
	lastCommittee uint
	lastSemester  uint
	lastActor     service.ActivityActor
	response      dto.ApprovalResponse
	err           error
}

func (m *mockApprovalService) Transition(_ context.Context, committeeID, semesterID uint, _ dto.ApprovalTransitionRequest, actor service.ActivityActor) (dto.ApprovalResponse, error) {
	m.lastCommittee = committeeID
	m.lastSemester = semesterID
	m.lastActor = actor
	if m.err != nil {
		return dto.ApprovalResponse{}, m.err
	}
	return m.response, nil
}

func (m *mockApprovalService) Get(_ context.Context, committeeID, semesterID uint) (dto.ApprovalResponse, error) {
	m.lastCommittee = committeeID
	m.lastSemester = semesterID
	return m.response, m.err
}

func (m *mockApprovalService) ListByCommittee(_ context.Context, committeeID uint) ([]dto.ApprovalResponse, error) {
	m.lastCommittee = committeeID
	if m.err != nil {
		return nil, m.err
	}
	return []dto.ApprovalResponse{m.response}, nil
}

func approvalTestApp(svc *mockApprovalService) *fiber.App {
	app := fiber.New()
	group := app.Group("/api/v1/approvals", authLocals(50, handler.RolePresident))
	handler.NewApprovalHandler(svc, zerolog.New(io.Discard)).Register(group)
	return app
}

func TestApprovalHandlerTransition(t *testing.T) {
	svc := &mockApprovalService{response: dto.ApprovalResponse{
		CommitteeID: 30,
		SemesterID:  20,
		Internal:    dto.ApprovalDecision{State: models.MarkStateApproved},
	}}
	app := approvalTestApp(svc)

	req := jsonRequest(t, http.MethodPut, "/api/v1/approvals/30/20", dto.ApprovalTransitionRequest{
		MarkType: "internal",
		NewState: "approved",
	})
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, uint(30), svc.lastCommittee)
	require.Equal(t, uint(20), svc.lastSemester)
	require.Equal(t, uint(50), svc.lastActor.ID)

	var body struct {
		Success bool                 `json:"success"`
		Data    dto.ApprovalResponse `json:"data"`
	}
	decodeResponse(t, resp, &body)
	require.True(t, body.Success)
	require.Equal(t, models.MarkStateApproved, body.Data.Internal.State)
}

func TestApprovalHandlerErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"not president", service.ErrNotPresident, fiber.StatusForbidden},
		{"terminal", service.ErrApprovalFinal, fiber.StatusConflict},
		{"missing committee", service.ErrCommitteeNotFound, fiber.StatusNotFound},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := approvalTestApp(&mockApprovalService{err: tc.err})

			req := jsonRequest(t, http.MethodPut, "/api/v1/approvals/30/20", dto.ApprovalTransitionRequest{
				MarkType: "internal",
				NewState: "approved",
			})
			resp, err := app.Test(req)
			require.NoError(t, err)
			require.Equal(t, tc.status, resp.StatusCode)
		})
	}
}

func TestApprovalHandlerListByCommittee(t *testing.T) {
	svc := &mockApprovalService{response: dto.ApprovalResponse{CommitteeID: 30, SemesterID: 20}}
	app := approvalTestApp(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/approvals/30", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Success bool                   `json:"success"`
		Data    []dto.ApprovalResponse `json:"data"`
	}
	decodeResponse(t, resp, &body)
	require.Len(t, body.Data, 1)
}
