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
	"github.com/campushub/examcore-api/internal/service"
)

type mockReportService struct {
	lastIncludeUnapproved bool
	response              dto.StudentReportResponse
	err                   error
}

func (m *mockReportService) StudentReport(_ context.Context, _ uint, includeUnapproved bool) (dto.StudentReportResponse, error) {
	m.lastIncludeUnapproved = includeUnapproved
	if m.err != nil {
		return dto.StudentReportResponse{}, m.err
	}
	return m.response, nil
}

func reportTestApp(svc *mockReportService, role string) *fiber.App {
	app := fiber.New()
	group := app.Group("/api/v1/students", authLocals(100, role))
	handler.NewReportHandler(svc, zerolog.New(io.Discard)).Register(group)
	return app
}

func TestReportHandlerIncludeUnapproved(t *testing.T) {
	svc := &mockReportService{response: dto.StudentReportResponse{StudentID: 100, GPA: 3.5}}
	app := reportTestApp(svc, handler.RoleAdmin)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/students/100/report?include_unapproved=true", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.True(t, svc.lastIncludeUnapproved)
}

func TestReportHandlerStudentsNeverSeeUnapproved(t *testing.T) {
	svc := &mockReportService{response: dto.StudentReportResponse{StudentID: 100}}
	app := reportTestApp(svc, handler.RoleStudent)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/students/100/report?include_unapproved=true", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.False(t, svc.lastIncludeUnapproved)
}

func TestReportHandlerStudentNotFound(t *testing.T) {
	app := reportTestApp(&mockReportService{err: service.ErrStudentNotFound}, handler.RoleAdmin)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/students/404/report", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
