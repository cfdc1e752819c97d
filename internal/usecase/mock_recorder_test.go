package usecase

import (
	"context"

	"github.com/rocketscienceinc/tictactoe-audit/internal/audit"
	"github.com/stretchr/testify/mock"
)

type mockAuditRecorder struct {
	mock.Mock
}

func newMockAuditRecorder(t interface {
	mock.TestingT
	Cleanup(func())
},
) *mockAuditRecorder {
	m := &mockAuditRecorder{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (that *mockAuditRecorder) Record(ctx context.Context, evt audit.Event) error {
	args := that.Called(ctx, evt)
	return args.Error(0)
}

func (that *mockAuditRecorder) Events(ctx context.Context, actor string) ([]audit.Event, error) {
	args := that.Called(ctx, actor)

	events, _ := args.Get(0).([]audit.Event)
	return events, args.Error(1)
}
